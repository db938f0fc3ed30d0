package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/cursorvault/cursor-vault/internal"
	"github.com/spf13/cobra"
)

var (
	limit int
	since string
)

var (
	// Styles for show command
	sessionHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("212")).
				Padding(0, 1).
				MarginBottom(1)

	sessionMetaStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("243")).
				MarginBottom(1)

	userMessageStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("39")).
				Bold(true).
				Padding(0, 1)

	assistantMessageStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("135")).
				Bold(true).
				Padding(0, 1)

	messageContentStyle = lipgloss.NewStyle().
				Padding(0, 2).
				MarginBottom(1)

	timestampStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Italic(true)
)

// showCmd represents the show command
var showCmd = &cobra.Command{
	Use:   "show <conversation-id>",
	Short: "Show messages for a specific conversation",
	Long: `Display messages from a specific chat conversation.

The conversation may be given by its full ID or by any unique ID prefix.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		conversationID := args[0]

		env, err := openVault()
		if err != nil {
			return err
		}

		session, err := env.source.Session(conversationID)
		if errors.Is(err, internal.ErrSessionNotFound) {
			session, err = resolveConversationPrefix(env.source, conversationID)
		}
		if err != nil {
			if errors.Is(err, internal.ErrSessionNotFound) {
				return fmt.Errorf("conversation not found: %s (run `cursor-vault list` to see available IDs)", conversationID)
			}
			return err
		}

		// Display session header
		displaySessionHeader(session)

		// Filter by timestamp if --since is provided
		messagesToShow := session.Messages
		if since != "" {
			sinceTime, err := time.Parse(time.RFC3339, since)
			if err != nil {
				return fmt.Errorf("invalid --since timestamp format (expected RFC3339): %w", err)
			}
			filtered := make([]internal.Message, 0, len(messagesToShow))
			for _, msg := range messagesToShow {
				if msg.Timestamp == "" {
					continue
				}
				if msgTime, err := time.Parse(time.RFC3339, msg.Timestamp); err == nil {
					if !msgTime.Before(sinceTime) {
						filtered = append(filtered, msg)
					}
				}
			}
			messagesToShow = filtered
		}

		// Apply limit if specified
		totalFiltered := len(messagesToShow)
		if limit > 0 && limit < len(messagesToShow) {
			messagesToShow = messagesToShow[:limit]
		}

		// Display messages
		for i, msg := range messagesToShow {
			displayMessage(i+1, msg, totalFiltered)
		}

		// Show remaining count if limit was applied
		if limit > 0 && limit < totalFiltered {
			remaining := totalFiltered - limit
			fmt.Println()
			fmt.Println(lipgloss.NewStyle().
				Foreground(lipgloss.Color("243")).
				Italic(true).
				Render(fmt.Sprintf("... (%d more message(s))", remaining)))
		}

		return nil
	},
}

// resolveConversationPrefix resolves a partial conversation id. Exactly one
// conversation whose id starts with the prefix resolves; zero matches keep
// ErrSessionNotFound, several are an error naming the count.
func resolveConversationPrefix(source *internal.SessionSource, prefix string) (*internal.Session, error) {
	sessions, err := source.Sessions()
	if err != nil {
		return nil, err
	}

	var match *internal.Session
	matches := 0
	for _, session := range sessions {
		if strings.HasPrefix(session.ID, prefix) {
			match = session
			matches++
		}
	}

	if matches == 0 {
		return nil, fmt.Errorf("%w: %s", internal.ErrSessionNotFound, prefix)
	}
	if matches > 1 {
		return nil, fmt.Errorf("conversation id prefix %q is ambiguous (%d matches)", prefix, matches)
	}
	return match, nil
}

func displaySessionHeader(session *internal.Session) {
	if session == nil {
		return
	}
	name := session.Metadata.Name
	if name == "" {
		name = "Untitled"
	}
	header := sessionHeaderStyle.Render(fmt.Sprintf("💬 %s", name))
	fmt.Println(header)

	// Create metadata line
	var metaParts []string
	if session.Metadata.CreatedAt != "" {
		metaParts = append(metaParts, fmt.Sprintf("Created: %s", session.Metadata.CreatedAt))
	}
	metaParts = append(metaParts, fmt.Sprintf("Messages: %d", len(session.Messages)))
	if session.Project != "" {
		metaParts = append(metaParts, fmt.Sprintf("Project: %s", session.Project))
	}
	if session.Metadata.AttributedBy != "" {
		metaParts = append(metaParts, fmt.Sprintf("Attributed via: %s", session.Metadata.AttributedBy))
	}

	if len(metaParts) > 0 {
		meta := sessionMetaStyle.Render(strings.Join(metaParts, " • "))
		fmt.Println(meta)
	}

	fmt.Println()
}

func displayMessage(index int, msg internal.Message, total int) {
	var actorStyle lipgloss.Style
	var actorLabel string

	switch msg.Actor {
	case "user":
		actorStyle = userMessageStyle
		actorLabel = "👤 User"
	case "assistant":
		actorStyle = assistantMessageStyle
		actorLabel = "🤖 Assistant"
	default:
		actorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
		actorLabel = fmt.Sprintf("🔧 %s", msg.Actor)
	}

	// Message header
	header := actorStyle.Render(actorLabel) + " " + timestampStyle.Render(fmt.Sprintf("[%d/%d]", index, total))
	if msg.Timestamp != "" {
		// Parse and format timestamp
		if t, err := time.Parse(time.RFC3339, msg.Timestamp); err == nil {
			header += " " + timestampStyle.Render(t.Format("15:04:05"))
		} else {
			header += " " + timestampStyle.Render(msg.Timestamp)
		}
	}

	fmt.Println(header)

	// Message content
	content := strings.TrimSpace(msg.Content)
	if content != "" {
		// Wrap long lines
		content = wrapText(content, 80)
		fmt.Println(messageContentStyle.Render(content))
	} else {
		fmt.Println(messageContentStyle.Foreground(lipgloss.Color("240")).Render("(empty message)"))
	}

	fmt.Println()
}

func wrapText(text string, width int) string {
	lines := strings.Split(text, "\n")
	var wrapped []string

	for _, line := range lines {
		if len(line) <= width {
			wrapped = append(wrapped, line)
			continue
		}

		// Wrap long lines
		words := strings.Fields(line)
		currentLine := ""
		for _, word := range words {
			if len(currentLine)+len(word)+1 > width {
				if currentLine != "" {
					wrapped = append(wrapped, currentLine)
					currentLine = word
				} else {
					wrapped = append(wrapped, word)
					currentLine = ""
				}
			} else {
				if currentLine == "" {
					currentLine = word
				} else {
					currentLine += " " + word
				}
			}
		}
		if currentLine != "" {
			wrapped = append(wrapped, currentLine)
		}
	}

	return strings.Join(wrapped, "\n")
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().IntVarP(&limit, "limit", "n", 0, "Limit number of messages to show")
	showCmd.Flags().StringVar(&since, "since", "", "Show messages since timestamp (ISO8601)")
}
