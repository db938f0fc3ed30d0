package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cursorvault/cursor-vault/internal"
	"github.com/cursorvault/cursor-vault/internal/export"
	"github.com/spf13/cobra"
)

var (
	format         string
	outputDir      string
	exportProject  string
	conversationID string
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export conversations to file",
	Long: `Export chat conversations to various formats (jsonl, md, yaml, json).

You can export all conversations, filter by project, or export a specific
conversation by ID. Use 'cursor-vault list' to see available IDs.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openVault()
		if err != nil {
			return err
		}

		var sessions []*internal.Session

		ctx := context.Background()
		steps := []internal.ProgressStep{
			{
				Message: "Deriving working copy",
				Fn: func() error {
					path := env.manager.ActivePath()
					if _, err := os.Stat(path); err != nil {
						return fmt.Errorf("no store available at %s", path)
					}
					return nil
				},
			},
			{
				Message: "Loading and reconstructing conversations",
				Fn: func() error {
					var loadErr error
					sessions, loadErr = env.source.Sessions()
					if loadErr != nil {
						return fmt.Errorf("failed to load conversations: %w", loadErr)
					}
					return nil
				},
			},
		}
		if err := internal.ShowProgressWithSteps(ctx, steps); err != nil {
			return err
		}

		// Filter by project if specified
		sessions = internal.FilterSessionsByProject(sessions, exportProject)

		// Filter by conversation ID if specified
		if conversationID != "" {
			filtered := make([]*internal.Session, 0)
			for _, session := range sessions {
				if session.ID == conversationID {
					filtered = append(filtered, session)
					break // Only one conversation should match
				}
			}
			if len(filtered) == 0 {
				return fmt.Errorf("conversation not found: %s (use 'cursor-vault list' to see available IDs)", conversationID)
			}
			sessions = filtered
		}

		// Create exporter
		exporter, err := export.NewExporter(format)
		if err != nil {
			return err
		}

		// Ensure output directory exists
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}

		// Export sessions with progress
		err = internal.ShowProgress(ctx, fmt.Sprintf("Exporting %d conversation(s) to %s", len(sessions), outputDir), func() error {
			for _, session := range sessions {
				if session == nil {
					internal.LogWarn("Skipping nil session")
					continue
				}
				filename := fmt.Sprintf("session_%s.%s", session.ID, exporter.Extension())
				target := filepath.Join(outputDir, filename)

				file, err := os.Create(target)
				if err != nil {
					internal.LogError("%v", &internal.ExportError{Format: exporter.Extension(), Path: target, Err: err})
					continue
				}

				if err := exporter.Export(session, file); err != nil {
					_ = file.Close()
					internal.LogError("%v", &internal.ExportError{Format: exporter.Extension(), Path: target, Err: err})
					continue
				}

				if err := file.Close(); err != nil {
					internal.LogWarn("Failed to close file %s: %v", target, err)
				}
			}
			return nil
		})
		if err != nil {
			return err
		}

		internal.PrintSuccess(fmt.Sprintf("Export complete: %d conversation(s) exported to %s", len(sessions), outputDir))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&format, "format", "f", "jsonl", "Export format (jsonl, md, yaml, json)")
	exportCmd.Flags().StringVarP(&outputDir, "out", "o", "./exports", "Output directory")
	exportCmd.Flags().StringVar(&exportProject, "project", "", "Only export conversations attributed to this project")
	exportCmd.Flags().StringVar(&conversationID, "session-id", "", "Export a specific conversation by ID")
}
