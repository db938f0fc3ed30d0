package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/cursorvault/cursor-vault/internal"
	"github.com/spf13/cobra"
)

var (
	listProject string
	listLimit   int
)

var (
	// Styles
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	idStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Italic(true)

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	dateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	projectStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("135")).
			Italic(true)
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List available conversations",
	Long: `List chat conversations from the working copy of Cursor's globalStorage.

When an allow-list of projects is configured, conversations outside it have
already been filtered out of the working copy and will not appear here.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openVault()
		if err != nil {
			return err
		}

		sessions, err := env.source.Sessions()
		if err != nil {
			return fmt.Errorf("failed to load conversations: %w", err)
		}

		sessions = internal.FilterSessionsByProject(sessions, listProject)
		if listLimit > 0 && len(sessions) > listLimit {
			sessions = sessions[:listLimit]
		}

		displaySessions(sessions)
		return nil
	},
}

func displaySessions(sessions []*internal.Session) {
	if len(sessions) == 0 {
		fmt.Println(headerStyle.Render("📋 No conversations found"))
		return
	}

	header := headerStyle.Render(fmt.Sprintf("📋 Found %d conversation(s)", len(sessions)))
	fmt.Println(header)
	fmt.Println()

	// Use tabwriter for aligned columns with better spacing
	w := tabwriter.NewWriter(lipgloss.DefaultRenderer().Output(), 0, 0, 3, ' ', tabwriter.AlignRight)

	// Header row
	_, _ = fmt.Fprintln(w, titleStyle.Render("ID")+"\t"+titleStyle.Render("Name")+"\t"+titleStyle.Render("Messages")+"\t"+titleStyle.Render("Updated")+"\t"+titleStyle.Render("Project")+"\t")
	_, _ = fmt.Fprintln(w, strings.Repeat("─", 120))

	for _, session := range sessions {
		name := session.Metadata.Name
		if name == "" {
			name = "Untitled"
		}

		// Truncate long names but keep them readable
		if len(name) > 50 {
			name = name[:47] + "..."
		}
		nameStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
		name = nameStyle.Render(name)

		msgCount := countStyle.Render(strconv.Itoa(session.Metadata.MessageCount))

		updated := dateStyle.Render("—")
		if session.Metadata.UpdatedAt != "" {
			if t, err := time.Parse(time.RFC3339, session.Metadata.UpdatedAt); err == nil {
				updated = dateStyle.Render(formatRelativeDate(t))
			} else {
				updated = dateStyle.Render(session.Metadata.UpdatedAt)
			}
		}

		project := dateStyle.Render("—")
		if session.Project != "" {
			p := session.Project
			if len(p) > 25 {
				p = p[:22] + "..."
			}
			project = projectStyle.Render(p)
		}

		// Show short ID (first 8 chars) for readability, but it's the full composerId
		shortID := session.ID
		if len(shortID) > 8 {
			shortID = shortID[:8]
		}
		id := idStyle.Render(shortID)

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t\n", id, name, msgCount, updated, project)
	}

	_ = w.Flush()
	fmt.Println()
	fmt.Println(idStyle.Render("💡 Tip: Use the full ID (e.g., ") +
		lipgloss.NewStyle().Foreground(lipgloss.Color("62")).Render(sessions[0].ID) +
		idStyle.Render(") with `cursor-vault show <id>`"))
}

// formatRelativeDate compacts recent timestamps the way the list and search
// tables show them.
func formatRelativeDate(t time.Time) string {
	now := time.Now()
	diff := now.Sub(t)
	if diff < 24*time.Hour {
		return t.Format("Today 15:04")
	} else if diff < 7*24*time.Hour {
		return t.Format("Mon 15:04")
	} else if diff < 365*24*time.Hour {
		return t.Format("Jan 02 15:04")
	}
	return t.Format("2006-01-02")
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().StringVarP(&listProject, "project", "p", "", "Only show conversations attributed to this project")
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 0, "Limit the number of conversations shown (0 = all)")
}
