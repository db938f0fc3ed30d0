package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cursorvault/cursor-vault/internal"
	"github.com/spf13/cobra"
)

var (
	reconstructOutput string
)

// reconstructCmd represents the reconstruct command
var reconstructCmd = &cobra.Command{
	Use:   "reconstruct",
	Short: "Reconstruct and save intermediary format",
	Long:  `Reconstruct conversations and save to intermediary JSON format for debugging.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openVault()
		if err != nil {
			return err
		}

		// Open the working copy
		db, err := internal.OpenDatabase(env.manager.ActivePath())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		storage := internal.NewStorage(db)

		bubbles, err := storage.LoadBubbles()
		if err != nil {
			return fmt.Errorf("failed to load bubbles: %w", err)
		}
		composers, skipped, err := storage.LoadComposers()
		if err != nil {
			return fmt.Errorf("failed to load composers: %w", err)
		}
		if skipped > 0 {
			internal.LogDebug("skipped %d unparseable composer record(s)", skipped)
		}
		contexts, err := storage.LoadMessageContexts()
		if err != nil {
			return fmt.Errorf("failed to load contexts: %w", err)
		}

		// Reconstruct conversations
		reconstructor := internal.NewReconstructor(bubbles, contexts)
		conversations, err := reconstructor.ReconstructAllConversations(composers)
		if err != nil {
			return fmt.Errorf("failed to reconstruct conversations: %w", err)
		}

		// Ensure output directory exists
		if err := os.MkdirAll(reconstructOutput, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}

		// Save intermediary format
		internal.LogInfo("Saving %d conversation(s) to intermediary format", len(conversations))
		for i, conv := range conversations {
			filename := fmt.Sprintf("conversation_%s.json", conv.ComposerID)
			target := filepath.Join(reconstructOutput, filename)

			data, err := json.MarshalIndent(conv, "", "  ")
			if err != nil {
				internal.LogError("Failed to marshal conversation %s: %v", conv.ComposerID, err)
				continue
			}

			if err := os.WriteFile(target, data, 0644); err != nil {
				internal.LogError("Failed to write file %s: %v", target, err)
				continue
			}

			internal.LogInfo("Saved conversation %d/%d: %s", i+1, len(conversations), target)
		}

		internal.LogInfo("Reconstruction complete: %d conversation(s) saved", len(conversations))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reconstructCmd)
	reconstructCmd.Flags().StringVarP(&reconstructOutput, "out", "o", "./intermediary", "Output directory for intermediary format")
}
