package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/cursorvault/cursor-vault/internal"
	"github.com/spf13/cobra"
)

var (
	searchProject string
	searchLimit   int
)

var (
	searchHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("62")).
				Padding(0, 1)

	searchNameStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("255"))

	searchSnippetStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("250")).
				Padding(0, 2)
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Fuzzy search across conversation names and text",
	Long: `Search all conversations in the working copy for a query string.

Matching is fuzzy and ranked, so partial words and out-of-order characters
still find the conversations you mean. Each hit is shown with a snippet of
the surrounding text when the query appears literally.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")

		env, err := openVault()
		if err != nil {
			return err
		}

		sessions, err := env.source.Sessions()
		if err != nil {
			return fmt.Errorf("failed to load conversations: %w", err)
		}
		sessions = internal.FilterSessionsByProject(sessions, searchProject)

		results := internal.SearchSessions(sessions, query)
		if searchLimit > 0 && len(results) > searchLimit {
			results = results[:searchLimit]
		}

		if len(results) == 0 {
			fmt.Println(searchHeaderStyle.Render(fmt.Sprintf("🔎 No matches for %q", query)))
			return nil
		}

		fmt.Println(searchHeaderStyle.Render(fmt.Sprintf("🔎 %d match(es) for %q", len(results), query)))
		fmt.Println()

		for _, result := range results {
			displaySearchResult(result)
		}

		fmt.Println(idStyle.Render("💡 Tip: Use the full ID (e.g., ") +
			lipgloss.NewStyle().Foreground(lipgloss.Color("62")).Render(results[0].Session.ID) +
			idStyle.Render(") with `cursor-vault show <id>`"))
		return nil
	},
}

func displaySearchResult(result *internal.SearchResult) {
	session := result.Session

	name := session.Metadata.Name
	if name == "" {
		name = "Untitled"
	}
	if len(name) > 60 {
		name = name[:57] + "..."
	}

	shortID := session.ID
	if len(shortID) > 8 {
		shortID = shortID[:8]
	}

	title := idStyle.Render(shortID) + " " + searchNameStyle.Render(name)
	if session.Project != "" {
		title += " " + projectStyle.Render("["+session.Project+"]")
	}
	if session.Metadata.UpdatedAt != "" {
		if t, err := time.Parse(time.RFC3339, session.Metadata.UpdatedAt); err == nil {
			title += " " + dateStyle.Render(formatRelativeDate(t))
		}
	}
	fmt.Println(title)

	if result.Snippet != "" {
		fmt.Println(searchSnippetStyle.Render(result.Snippet))
	}
	fmt.Println()
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().StringVarP(&searchProject, "project", "p", "", "Only search conversations attributed to this project")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "Limit the number of results shown (0 = all)")
}
