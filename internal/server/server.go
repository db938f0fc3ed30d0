package server

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/cursorvault/cursor-vault/internal"
)

// Server exposes the vault over HTTP. Every read goes through the shadow
// manager's active path, so this surface never sees records the allow-list
// excludes.
type Server struct {
	echo *echo.Echo
}

// New builds the HTTP server and registers all routes
func New(source *internal.SessionSource, manager *internal.ShadowManager, configPath string, events *internal.EventLog) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	// Unified error handler with structured JSON and logging
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		internal.LogWarn("%d %s %s: %v", code, req.Method, req.URL.Path, err)
		if !c.Response().Committed {
			_ = c.JSON(code, map[string]interface{}{"error": msg})
		}
	}

	// Local web UIs talk to the vault from file:// or dev-server origins
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders: []string{"Content-Type"},
	}))

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	api := e.Group("/api")
	NewConversationsHandler(source).Register(api)
	NewProjectsHandler(configPath, manager, events).Register(api)

	return &Server{echo: e}
}

// Start listens on addr until the process exits or the listener fails
func (s *Server) Start(addr string) error {
	internal.LogInfo("listening on %s", addr)
	return s.echo.Start(addr)
}
