package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/cursorvault/cursor-vault/internal"
	"github.com/spf13/cobra"
)

var (
	snoopSuccessStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("42")).
		Bold(true)

	snoopWarningStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("214")).
		Bold(true)

	snoopErrorStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("196")).
		Bold(true)

	snoopInfoStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("39"))

	snoopSectionStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("62")).
		Bold(true).
		Underline(true)

	snoopPathStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("243"))
)

// snoopCmd represents the snoop command
var snoopCmd = &cobra.Command{
	Use:   "snoop",
	Short: "Attempt to find the correct path to cursor database files",
	Long: `Snoop attempts to locate Cursor database files across different operating systems.

This command will:
  • Check standard storage paths for your OS
  • Verify if database files exist at those locations
  • Probe alternative locations when the standard ones are empty
  • Display detailed information about what was found`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Detect standard paths
		fmt.Println(snoopSectionStyle.Render("📂 Standard Path Detection"))
		paths, err := internal.DetectStoragePaths(storagePath)
		if err != nil {
			fmt.Printf("%s ❌ Failed to detect storage paths: %v\n", snoopErrorStyle.Render(""), err)
		} else {
			displayPathInfo(paths)
		}
		fmt.Println()

		// Try alternative paths
		fmt.Println(snoopSectionStyle.Render("🔎 Alternative Path Search"))
		checkAlternativePaths()
		fmt.Println()

		// Summary
		fmt.Println(snoopSectionStyle.Render("📊 Summary"))
		displaySummary(paths)

		return nil
	},
}

func displayPathInfo(paths internal.StoragePaths) {
	fmt.Println(snoopInfoStyle.Render("Base Path:"))
	fmt.Printf("  %s\n", snoopPathStyle.Render(paths.BasePath))
	checkPath(paths.BasePath, "  ")

	fmt.Println()
	fmt.Println(snoopInfoStyle.Render("Global Storage:"))
	fmt.Printf("  %s\n", snoopPathStyle.Render(paths.GlobalStorage))
	checkPath(paths.GlobalStorage, "  ")

	// Check for state.vscdb in globalStorage
	dbPath := paths.GetGlobalStorageDBPath()
	fmt.Printf("  Database: %s\n", snoopPathStyle.Render(dbPath))
	if paths.GlobalStorageExists() {
		fmt.Printf("  %s\n", snoopSuccessStyle.Render("✅ Database file exists"))
		// Try to open it
		if db, err := internal.OpenDatabase(dbPath); err == nil {
			db.Close()
			fmt.Printf("  %s\n", snoopSuccessStyle.Render("✅ Database is accessible"))
		} else {
			fmt.Printf("%s ⚠️  Database exists but cannot be opened: %v\n", snoopWarningStyle.Render("  "), err)
		}
	} else {
		fmt.Printf("  %s\n", snoopWarningStyle.Render("⚠️  Database file does not exist"))
	}

	fmt.Println()
	fmt.Println(snoopInfoStyle.Render("Workspace Storage:"))
	fmt.Printf("  %s\n", snoopPathStyle.Render(paths.WorkspaceStorage))
	checkPath(paths.WorkspaceStorage, "  ")

	// Check for workspace descriptors in workspaceStorage subdirectories
	if info, err := os.Stat(paths.WorkspaceStorage); err == nil && info.IsDir() {
		workspaces, err := internal.DetectWorkspaces(paths.BasePath)
		if err != nil {
			fmt.Printf("%s ⚠️  Error scanning workspace storage: %v\n", snoopWarningStyle.Render("  "), err)
		} else if len(workspaces) > 0 {
			named := 0
			for _, ws := range workspaces {
				if ws.Name != "" {
					named++
				}
			}
			fmt.Printf("%s ✅ Found %d workspace folder(s), %d with a project name\n", snoopSuccessStyle.Render("  "), len(workspaces), named)
		} else {
			fmt.Printf("  %s\n", snoopWarningStyle.Render("⚠️  No workspace folders found in subdirectories"))
		}
	}
}

func checkPath(path string, indent string) {
	if info, err := os.Stat(path); err == nil {
		if info.IsDir() {
			fmt.Printf("%s%s\n", indent, snoopSuccessStyle.Render("✅ Directory exists"))
		} else {
			fmt.Printf("%s%s\n", indent, snoopSuccessStyle.Render("✅ File exists"))
		}
	} else if os.IsNotExist(err) {
		fmt.Printf("%s%s\n", indent, snoopWarningStyle.Render("⚠️  Does not exist"))
	} else {
		fmt.Printf("%s%s ❌ Error checking: %v\n", indent, snoopErrorStyle.Render(""), err)
	}
}

func checkAlternativePaths() {
	home, err := os.UserHomeDir()
	if err != nil {
		fmt.Println(snoopWarningStyle.Render("⚠️  Could not get home directory"))
		return
	}

	// Try various alternative locations
	alternatives := []struct {
		name string
		path string
	}{
		{"Windows-style config (if on Linux)", filepath.Join(home, "AppData", "Roaming", "Cursor", "User")},
		{"Alternative Linux config", filepath.Join(home, ".cursor", "User")},
		{"Alternative macOS location", filepath.Join(home, "Library", "Preferences", "Cursor", "User")},
		{"XDG config home (if set)", filepath.Join(os.Getenv("XDG_CONFIG_HOME"), "Cursor", "User")},
		{"XDG data home (if set)", filepath.Join(os.Getenv("XDG_DATA_HOME"), "Cursor", "User")},
	}

	foundAny := false
	for _, alt := range alternatives {
		if alt.path == "" {
			continue
		}
		fmt.Printf("%s: %s\n", snoopInfoStyle.Render(alt.name), snoopPathStyle.Render(alt.path))
		if _, err := os.Stat(alt.path); err == nil {
			fmt.Printf("  %s\n", snoopSuccessStyle.Render("✅ Found!"))
			foundAny = true

			// Check for database files
			globalStoragePath := filepath.Join(alt.path, "globalStorage")
			dbPath := filepath.Join(globalStoragePath, "state.vscdb")
			if _, err := os.Stat(dbPath); err == nil {
				fmt.Printf("%s ✅ Database found: %s\n", snoopSuccessStyle.Render("  "), dbPath)
			}
		} else {
			fmt.Printf("  %s\n", snoopWarningStyle.Render("⚠️  Not found"))
		}
	}

	if !foundAny {
		fmt.Println(snoopInfoStyle.Render("ℹ️  No alternative paths found"))
	}
}

func displaySummary(paths internal.StoragePaths) {
	var found []string
	var missing []string

	// Check globalStorage
	if paths.GlobalStorageExists() {
		found = append(found, "Desktop app storage (globalStorage)")
	} else {
		missing = append(missing, "Desktop app storage (globalStorage)")
	}

	// Check workspace descriptors
	if workspaces, err := internal.DetectWorkspaces(paths.BasePath); err == nil && len(workspaces) > 0 {
		found = append(found, fmt.Sprintf("Workspace storage (%d folder(s))", len(workspaces)))
	} else {
		missing = append(missing, "Workspace storage (no folders found)")
	}

	if len(found) > 0 {
		fmt.Println(snoopSuccessStyle.Render("✅ Found storage:"))
		for _, item := range found {
			fmt.Printf("  • %s\n", item)
		}
	}

	if len(missing) > 0 {
		fmt.Println()
		fmt.Println(snoopWarningStyle.Render("⚠️  Missing storage:"))
		for _, item := range missing {
			fmt.Printf("  • %s\n", item)
		}
	}

	if len(found) == 0 && len(missing) > 0 {
		fmt.Println()
		fmt.Println(snoopInfoStyle.Render("💡 Tip: Point --storage at your Cursor User directory or state.vscdb file"))
	}
}

func init() {
	rootCmd.AddCommand(snoopCmd)
}
