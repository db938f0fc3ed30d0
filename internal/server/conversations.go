package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/cursorvault/cursor-vault/internal"
)

// sessionReader is the read side the conversation routes need
type sessionReader interface {
	Sessions() ([]*internal.Session, error)
	Session(id string) (*internal.Session, error)
}

// ConversationsHandler serves conversation listings, single conversations
// and search
type ConversationsHandler struct {
	source sessionReader
}

// NewConversationsHandler creates a handler over the given session source
func NewConversationsHandler(source sessionReader) *ConversationsHandler {
	return &ConversationsHandler{source: source}
}

// Register mounts the conversation routes on g
func (h *ConversationsHandler) Register(g *echo.Group) {
	g.GET("/conversations", h.list)
	g.GET("/conversations/:id", h.get)
	g.GET("/search", h.search)
}

type conversationSummary struct {
	ID           string `json:"id"`
	Name         string `json:"name,omitempty"`
	Project      string `json:"project,omitempty"`
	MessageCount int    `json:"message_count"`
	CreatedAt    string `json:"created_at,omitempty"`
	UpdatedAt    string `json:"updated_at,omitempty"`
	AttributedBy string `json:"attributed_by,omitempty"`
}

type conversationListResponse struct {
	Conversations []conversationSummary `json:"conversations"`
	Total         int                   `json:"total"`
}

func (h *ConversationsHandler) list(c echo.Context) error {
	sessions, err := h.source.Sessions()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	sessions = internal.FilterSessionsByProject(sessions, c.QueryParam("project"))

	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a non-negative integer")
		}
	}

	total := len(sessions)
	if limit > 0 && limit < len(sessions) {
		sessions = sessions[:limit]
	}

	resp := conversationListResponse{
		Conversations: make([]conversationSummary, 0, len(sessions)),
		Total:         total,
	}
	for _, session := range sessions {
		resp.Conversations = append(resp.Conversations, summarize(session))
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *ConversationsHandler) get(c echo.Context) error {
	session, err := h.source.Session(c.Param("id"))
	if errors.Is(err, internal.ErrSessionNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, session)
}

type searchHit struct {
	ID      string `json:"id"`
	Name    string `json:"name,omitempty"`
	Project string `json:"project,omitempty"`
	Score   int    `json:"score"`
	Snippet string `json:"snippet,omitempty"`
}

type searchResponse struct {
	Query string      `json:"query"`
	Hits  []searchHit `json:"hits"`
}

func (h *ConversationsHandler) search(c echo.Context) error {
	query := c.QueryParam("q")
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing query parameter q")
	}

	sessions, err := h.source.Sessions()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	results := internal.SearchSessions(sessions, query)

	if raw := c.QueryParam("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a non-negative integer")
		}
		if limit > 0 && limit < len(results) {
			results = results[:limit]
		}
	}

	resp := searchResponse{Query: query, Hits: make([]searchHit, 0, len(results))}
	for _, result := range results {
		resp.Hits = append(resp.Hits, searchHit{
			ID:      result.Session.ID,
			Name:    result.Session.Metadata.Name,
			Project: result.Session.Project,
			Score:   result.Score,
			Snippet: result.Snippet,
		})
	}

	return c.JSON(http.StatusOK, resp)
}

func summarize(session *internal.Session) conversationSummary {
	return conversationSummary{
		ID:           session.ID,
		Name:         session.Metadata.Name,
		Project:      session.Project,
		MessageCount: session.Metadata.MessageCount,
		CreatedAt:    session.Metadata.CreatedAt,
		UpdatedAt:    session.Metadata.UpdatedAt,
		AttributedBy: session.Metadata.AttributedBy,
	}
}
