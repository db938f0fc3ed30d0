package cmd

import (
	"fmt"
	"os"

	"github.com/cursorvault/cursor-vault/internal"
	"github.com/spf13/cobra"
)

var (
	verbose     bool
	storagePath string
	cfgFile     string
	version     string = "dev"
	commit      string = "unknown"
	date        string = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "cursor-vault",
	Short: "Browse, search and export Cursor IDE chat history",
	Long: `A CLI tool to browse, search and export chat history from Cursor IDE.

cursor-vault never reads Cursor's own database directly. It works on a
shadow copy, attributes every conversation to a project, and when an
allow-list of projects is configured it filters the copy down to those
projects before anything else reads it.

Features:
  • List conversations with project attribution
  • View individual conversations with full context
  • Fuzzy search across all conversation text
  • Export in multiple formats (JSONL, Markdown, YAML, JSON)
  • Allow-list based privacy filtering of the working copy
  • Local HTTP API over the same filtered view

Quick Start:
  cursor-vault list                      # List all conversations
  cursor-vault show <conversation-id>    # View a specific conversation
  cursor-vault export --format md        # Export as Markdown
  cursor-vault projects set Foo Bar      # Restrict the store to two projects

For detailed usage, see: https://github.com/cursorvault/cursor-vault`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		internal.SetVerbose(verbose)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// vaultEnv bundles the pieces every subcommand wires the same way: resolved
// config, storage layout, event log, shadow manager and the session source
// reading through it.
type vaultEnv struct {
	cfg     *internal.Config
	paths   internal.StoragePaths
	events  *internal.EventLog
	manager *internal.ShadowManager
	catalog internal.ProjectCatalog
	source  *internal.SessionSource
}

// openVault resolves config and storage and wires the shared components.
// The --storage flag wins over the config file's storage_path.
func openVault() (*vaultEnv, error) {
	cfg, err := internal.LoadConfig(cfgFile)
	if err != nil {
		return nil, err
	}

	override := storagePath
	if override == "" {
		override = cfg.StoragePath
	}
	paths, err := internal.DetectStoragePaths(override)
	if err != nil {
		return nil, fmt.Errorf("failed to detect storage paths: %w", err)
	}

	events := internal.NewEventLog(cfg.EventLogFile)
	manager := internal.NewShadowManager(paths, cfg.TempDir, cfg.AllowedProjectsFile, events)

	workspaces, err := internal.DetectWorkspaces(paths.BasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to scan workspaces: %w", err)
	}
	catalog := internal.BuildProjectCatalog(workspaces)

	return &vaultEnv{
		cfg:     cfg,
		paths:   paths,
		events:  events,
		manager: manager,
		catalog: catalog,
		source:  internal.NewSessionSource(manager, catalog),
	}, nil
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&storagePath, "storage", "", "Custom storage location (path to database file or storage directory)")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to config file (default: config.yaml under the user config dir)")

	// Set version template to ensure --version flag works
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}
