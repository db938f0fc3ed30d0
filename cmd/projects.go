package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/cursorvault/cursor-vault/internal"
	"github.com/spf13/cobra"
)

var (
	projectsAllowedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("42")).
				Bold(true)

	projectsKnownStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("135"))

	projectsHintStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240")).
				Italic(true)
)

// projectsCmd represents the projects command
var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "Show or edit the project allow-list",
	Long: `Show or edit the allow-list that controls privacy filtering.

When the allow-list is non-empty, the working copy of the store is filtered
down to conversations attributed to the listed projects before any other
command or the HTTP API reads it. An empty allow-list disables filtering.

Any change to the list invalidates the working copy, so the next read sees
the new filtering immediately.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openVault()
		if err != nil {
			return err
		}

		allowed := internal.LoadAllowedProjects(env.cfg.AllowedProjectsFile)
		if len(allowed) == 0 {
			fmt.Println(projectsHintStyle.Render("Allow-list is empty: filtering is disabled, all conversations are visible."))
		} else {
			fmt.Println(projectsAllowedStyle.Render(fmt.Sprintf("✓ %d allowed project(s):", len(allowed))))
			for _, name := range allowed {
				fmt.Printf("  • %s\n", name)
			}
		}

		known := env.catalog.Names()
		if len(known) > 0 {
			fmt.Println()
			fmt.Println(projectsKnownStyle.Render(fmt.Sprintf("Known projects from workspace storage (%d):", len(known))))
			for _, name := range known {
				fmt.Printf("  • %s\n", name)
			}
		}

		fmt.Println()
		fmt.Println(projectsHintStyle.Render("💡 Tip: `cursor-vault projects set <name>...` replaces the list, `add`/`remove` edit it, `clear` disables filtering"))
		return nil
	},
}

var projectsSetCmd = &cobra.Command{
	Use:   "set <name>...",
	Short: "Replace the allow-list with the given project names",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return updateAllowedProjects(func(current []string) []string {
			return args
		})
	},
}

var projectsAddCmd = &cobra.Command{
	Use:   "add <name>...",
	Short: "Add project names to the allow-list",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return updateAllowedProjects(func(current []string) []string {
			return append(current, args...)
		})
	},
}

var projectsRemoveCmd = &cobra.Command{
	Use:   "remove <name>...",
	Short: "Remove project names from the allow-list",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		drop := make(map[string]bool, len(args))
		for _, name := range args {
			drop[name] = true
		}
		return updateAllowedProjects(func(current []string) []string {
			kept := make([]string, 0, len(current))
			for _, name := range current {
				if !drop[name] {
					kept = append(kept, name)
				}
			}
			return kept
		})
	},
}

var projectsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Empty the allow-list and disable filtering",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return updateAllowedProjects(func(current []string) []string {
			return nil
		})
	},
}

// updateAllowedProjects applies edit to the stored list, persists the
// result, and invalidates the working copy so the change takes effect now
// rather than on the next process start.
func updateAllowedProjects(edit func(current []string) []string) error {
	env, err := openVault()
	if err != nil {
		return err
	}

	current := internal.LoadAllowedProjects(env.cfg.AllowedProjectsFile)
	stored, err := internal.SaveAllowedProjects(env.cfg.AllowedProjectsFile, edit(current))
	if err != nil {
		return fmt.Errorf("failed to save allow-list: %w", err)
	}
	env.events.Event("allow-list updated via cli: %d project(s)", len(stored))

	path := env.manager.Invalidate()
	internal.LogDebug("working copy re-derived at %s", path)

	if len(stored) == 0 {
		internal.PrintSuccess("Allow-list cleared: filtering is disabled")
	} else {
		internal.PrintSuccess(fmt.Sprintf("Allow-list saved: %d project(s)", len(stored)))
		for _, name := range stored {
			fmt.Printf("  • %s\n", name)
		}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(projectsCmd)
	projectsCmd.AddCommand(projectsSetCmd)
	projectsCmd.AddCommand(projectsAddCmd)
	projectsCmd.AddCommand(projectsRemoveCmd)
	projectsCmd.AddCommand(projectsClearCmd)
}
