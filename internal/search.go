package internal

import (
	"strings"

	"github.com/sahilm/fuzzy"
)

// searchPreviewLimit bounds how much message content per session feeds the
// fuzzy matcher
const searchPreviewLimit = 500

// SearchResult pairs a matched session with its score and a content snippet
type SearchResult struct {
	Session *Session
	Score   int
	Snippet string
}

// sessionSearchSource implements fuzzy.Source over session names plus a
// preview of their content
type sessionSearchSource struct {
	sessions []*Session
}

func (s sessionSearchSource) String(i int) string {
	session := s.sessions[i]
	preview := sessionPreview(session, searchPreviewLimit)
	if preview == "" {
		return session.Metadata.Name
	}
	return session.Metadata.Name + " " + preview
}

func (s sessionSearchSource) Len() int {
	return len(s.sessions)
}

// SearchSessions fuzzy-matches query against session names and message
// content. Results come back best match first.
func SearchSessions(sessions []*Session, query string) []*SearchResult {
	if query == "" {
		return nil
	}

	matches := fuzzy.FindFrom(query, sessionSearchSource{sessions: sessions})

	results := make([]*SearchResult, 0, len(matches))
	for _, match := range matches {
		session := sessions[match.Index]
		results = append(results, &SearchResult{
			Session: session,
			Score:   match.Score,
			Snippet: sessionSnippet(session, query, 60),
		})
	}

	return results
}

// sessionPreview concatenates message content up to limit bytes
func sessionPreview(session *Session, limit int) string {
	var b strings.Builder
	for _, msg := range session.Messages {
		if b.Len() >= limit {
			break
		}
		b.WriteString(msg.Content)
		b.WriteString(" ")
	}

	preview := strings.TrimSpace(b.String())
	if len(preview) > limit {
		preview = preview[:limit]
	}
	return preview
}

// sessionSnippet returns a window of content around the first literal hit,
// or the head of the first non-empty message when the match was fuzzy
func sessionSnippet(session *Session, query string, width int) string {
	lowerQuery := strings.ToLower(query)

	for _, msg := range session.Messages {
		idx := strings.Index(strings.ToLower(msg.Content), lowerQuery)
		if idx < 0 {
			continue
		}

		start := idx - width/2
		if start < 0 {
			start = 0
		}
		end := idx + len(query) + width/2
		if end > len(msg.Content) {
			end = len(msg.Content)
		}

		snippet := strings.TrimSpace(msg.Content[start:end])
		if start > 0 {
			snippet = "..." + snippet
		}
		if end < len(msg.Content) {
			snippet += "..."
		}
		return snippet
	}

	for _, msg := range session.Messages {
		if msg.Content == "" {
			continue
		}
		if len(msg.Content) <= width {
			return msg.Content
		}
		return strings.TrimSpace(msg.Content[:width]) + "..."
	}

	return ""
}
