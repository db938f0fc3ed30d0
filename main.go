package main

import "github.com/cursorvault/cursor-vault/cmd"

func main() {
	cmd.Execute()
}
