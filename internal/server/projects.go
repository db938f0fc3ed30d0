package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cursorvault/cursor-vault/internal"
)

// storeRefresher re-derives the active store after the allow-list changes
type storeRefresher interface {
	Invalidate() string
}

// ProjectsHandler serves the allow-list config and the refresh trigger
type ProjectsHandler struct {
	configPath string
	manager    storeRefresher
	events     *internal.EventLog
}

// NewProjectsHandler creates a handler over the allow-list file and the
// shadow manager
func NewProjectsHandler(configPath string, manager storeRefresher, events *internal.EventLog) *ProjectsHandler {
	return &ProjectsHandler{configPath: configPath, manager: manager, events: events}
}

// Register mounts the project and refresh routes on g
func (h *ProjectsHandler) Register(g *echo.Group) {
	g.GET("/projects", h.get)
	g.PUT("/projects", h.put)
	g.POST("/projects", h.put)
	g.POST("/refresh", h.refresh)
}

type projectsPayload struct {
	AllowedProjects []string `json:"allowedProjects"`
}

func (h *ProjectsHandler) get(c echo.Context) error {
	allowed := internal.LoadAllowedProjects(h.configPath)
	if allowed == nil {
		allowed = []string{}
	}
	return c.JSON(http.StatusOK, projectsPayload{AllowedProjects: allowed})
}

func (h *ProjectsHandler) put(c echo.Context) error {
	var payload projectsPayload
	if err := c.Bind(&payload); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	normalized, err := internal.SaveAllowedProjects(h.configPath, payload.AllowedProjects)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if normalized == nil {
		normalized = []string{}
	}

	h.events.Event("allow-list updated via api: %d project(s)", len(normalized))
	h.manager.Invalidate()

	return c.JSON(http.StatusOK, projectsPayload{AllowedProjects: normalized})
}

type refreshResponse struct {
	Status     string `json:"status"`
	ActivePath string `json:"active_path"`
}

func (h *ProjectsHandler) refresh(c echo.Context) error {
	h.events.Event("refresh requested via api")
	path := h.manager.Invalidate()
	return c.JSON(http.StatusOK, refreshResponse{Status: "ok", ActivePath: path})
}
