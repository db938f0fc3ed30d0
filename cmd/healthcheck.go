package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/cursorvault/cursor-vault/internal"
	"github.com/spf13/cobra"
)

var (
	successStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("42")).
		Bold(true)

	warningStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("214")).
		Bold(true)

	errorStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("196")).
		Bold(true)

	infoStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("39"))

	sectionStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("62")).
		Bold(true).
		Underline(true)
)

// healthcheckCmd represents the healthcheck command
var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Check if cursor-vault can locate and read conversation data",
	Long: `Check the health of cursor-vault by verifying:
  • Storage path detection
  • Presence of Cursor's globalStorage database
  • Allow-list configuration
  • Working copy derivation
  • Conversation record counts

This command is useful for debugging storage issues, especially when the
other commands come up empty.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(sectionStyle.Render("🔍 Cursor Vault Health Check"))
		fmt.Println()

		cfg, err := internal.LoadConfig(cfgFile)
		if err != nil {
			fmt.Println(errorStyle.Render("❌ Failed to load config:"), err)
			os.Exit(1)
		}

		// Step 1: Detect storage paths
		fmt.Println(infoStyle.Render("Step 1: Detecting storage paths..."))
		override := storagePath
		if override == "" {
			override = cfg.StoragePath
		}
		paths, err := internal.DetectStoragePaths(override)
		if err != nil {
			fmt.Println(errorStyle.Render("❌ Failed to detect storage paths:"), err)
			os.Exit(1)
		}
		fmt.Println(successStyle.Render("✅ Storage paths detected"))
		if verbose {
			fmt.Printf("   Base path: %s\n", paths.BasePath)
			fmt.Printf("   Global storage: %s\n", paths.GlobalStorage)
			fmt.Printf("   Workspace storage: %s\n", paths.WorkspaceStorage)
		}
		fmt.Println()

		// Step 2: Check the source store
		fmt.Println(infoStyle.Render("Step 2: Checking Cursor's store..."))
		sourceExists := paths.GlobalStorageExists()
		if sourceExists {
			fmt.Println(successStyle.Render("✅ Store found"))
			if verbose {
				fmt.Printf("   Database: %s\n", paths.GetGlobalStorageDBPath())
			}
		} else {
			fmt.Println(warningStyle.Render("⚠️  Store not found"))
			if verbose {
				fmt.Printf("   Expected: %s\n", paths.GetGlobalStorageDBPath())
			}
		}
		fmt.Println()

		// Step 3: Check allow-list configuration
		fmt.Println(infoStyle.Render("Step 3: Checking allow-list..."))
		allowed := internal.LoadAllowedProjects(cfg.AllowedProjectsFile)
		if len(allowed) > 0 {
			fmt.Println(successStyle.Render(fmt.Sprintf("✅ Allow-list has %d project(s), filtering is enabled", len(allowed))))
			if verbose {
				for _, name := range allowed {
					fmt.Printf("   • %s\n", name)
				}
			}
		} else {
			fmt.Println(infoStyle.Render("ℹ️  Allow-list is empty, filtering is disabled"))
			if verbose {
				fmt.Printf("   File: %s\n", cfg.AllowedProjectsFile)
			}
		}
		fmt.Println()

		// Step 4: Derive the working copy
		fmt.Println(infoStyle.Render("Step 4: Deriving working copy..."))
		events := internal.NewEventLog(cfg.EventLogFile)
		manager := internal.NewShadowManager(paths, cfg.TempDir, cfg.AllowedProjectsFile, events)
		activePath := manager.ActivePath()
		copyReady := false
		if _, err := os.Stat(activePath); err == nil {
			copyReady = true
			fmt.Println(successStyle.Render("✅ Working copy ready"))
			if verbose {
				fmt.Printf("   Path: %s\n", activePath)
			}
		} else {
			fmt.Println(warningStyle.Render("⚠️  No working copy available"))
			if verbose {
				fmt.Printf("   Would be: %s\n", activePath)
			}
		}
		fmt.Println()

		// Step 5: Count conversation records
		fmt.Println(infoStyle.Render("Step 5: Counting conversation records..."))
		var conversationCount int64
		if copyReady {
			db, err := internal.OpenDatabase(activePath)
			if err != nil {
				fmt.Println(errorStyle.Render("❌ Failed to open working copy:"), err)
				os.Exit(1)
			}
			defer func() { _ = db.Close() }()

			families := append([]internal.RecordFamily{}, internal.ConversationFamilies...)
			families = append(families, internal.FamilyCodeBlockDiff)
			for _, family := range families {
				count, err := internal.CountFamily(db, family)
				if err != nil {
					fmt.Println(warningStyle.Render(fmt.Sprintf("⚠️  Failed to count %s records:", family.Prefix())), err)
					continue
				}
				if family == internal.FamilyComposer {
					conversationCount = count
				}
				if verbose {
					fmt.Printf("   %s %d\n", family.Prefix(), count)
				}
			}

			if conversationCount > 0 {
				fmt.Println(successStyle.Render(fmt.Sprintf("✅ Found %d conversation(s)", conversationCount)))
			} else {
				fmt.Println(warningStyle.Render("⚠️  No conversations found"))
				fmt.Println("   This could mean:")
				fmt.Println("   • No chat conversations have been created yet")
				fmt.Println("   • The allow-list filtered everything out")
			}
		} else {
			fmt.Println(warningStyle.Render("⚠️  Skipped, no working copy to read"))
		}
		fmt.Println()

		// Summary
		fmt.Println(sectionStyle.Render("📊 Summary"))
		fmt.Println()

		switch {
		case copyReady && conversationCount > 0:
			fmt.Println(successStyle.Render("✅ Health check passed!"))
			fmt.Println(successStyle.Render("   • Storage: Available"))
			fmt.Println(successStyle.Render(fmt.Sprintf("   • Conversations: %d found", conversationCount)))
			return nil
		case copyReady:
			fmt.Println(warningStyle.Render("⚠️  Storage available but no conversations found"))
			fmt.Println("   • Working copy derivation is working")
			fmt.Println("   • No conversations are currently visible")
			return nil
		default:
			fmt.Println(errorStyle.Render("❌ Health check failed"))
			fmt.Println("   • No store is available")
			fmt.Println("   • Cannot access conversation data")
			return fmt.Errorf("health check failed: no storage available")
		}
	},
}

func init() {
	rootCmd.AddCommand(healthcheckCmd)
}
