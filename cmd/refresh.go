package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/cursorvault/cursor-vault/internal"
	"github.com/spf13/cobra"
)

// refreshCmd represents the refresh command
var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Re-derive the working copy from Cursor's store",
	Long: `Throw away the cached working copy and derive a fresh one.

Run this after Cursor has written new conversations, or after editing the
allow-list file by hand, to make the other commands see the current state.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openVault()
		if err != nil {
			return err
		}

		var path string
		err = internal.ShowProgress(context.Background(), "Deriving working copy", func() error {
			env.events.Event("refresh requested via cli")
			path = env.manager.Invalidate()
			if _, err := os.Stat(path); err != nil {
				return fmt.Errorf("no store available at %s", path)
			}
			return nil
		})
		if err != nil {
			return err
		}

		internal.PrintSuccess(fmt.Sprintf("Working copy ready at %s", path))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(refreshCmd)
}
