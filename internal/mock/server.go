// Package mock implements a small in-process console node.
//
// It serves the same /v1/console surface a real monitoring node exposes,
// backed by a toy evaluator with per-session variables. It exists for local
// development (`consolectl mock-serve`) and for exercising the client in
// tests without a node.
package mock

import (
	"net/http"
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/watchpost/consolectl/internal/api"
)

// Server holds the mock node state: the accepted credentials and the
// variable store of every session seen so far.
type Server struct {
	user     string
	password string

	mu       sync.Mutex
	sessions map[string]map[string]string
}

// NewServer returns a mock node accepting the given Basic credentials.
func NewServer(user, password string) *Server {
	return &Server{
		user:     user,
		password: password,
		sessions: make(map[string]map[string]string),
	}
}

// RegisterRoutes mounts the console endpoints on e.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	v1 := e.Group("/v1/console", s.authMiddleware)
	v1.POST("/execute-script", s.executeScript)
	v1.POST("/auto-complete-script", s.autocompleteScript)
}

func (s *Server) authMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, password, ok := c.Request().BasicAuth()
		if !ok || user != s.user || password != s.password {
			c.Response().Header().Set(echo.HeaderWWWAuthenticate, `Basic realm="console"`)
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or missing credentials")
		}
		return next(c)
	}
}

func (s *Server) executeScript(c echo.Context) error {
	session := c.QueryParam("session")
	command := c.QueryParam("command")
	sandboxed := c.QueryParam("sandboxed") == "1"

	log.Debug().
		Str("session", session).
		Bool("sandboxed", sandboxed).
		Msg("execute-script")

	entry := s.eval(session, command, sandboxed)
	return c.JSON(http.StatusOK, api.ResultEnvelope{Results: []api.ResultEntry{entry}})
}

func (s *Server) autocompleteScript(c echo.Context) error {
	session := c.QueryParam("session")
	command := c.QueryParam("command")

	entry := api.ResultEntry{
		Status:      "Auto-completed successfully.",
		Code:        200,
		Suggestions: s.complete(session, command),
	}
	return c.JSON(http.StatusOK, api.ResultEnvelope{Results: []api.ResultEntry{entry}})
}

// varsLocked returns the variable store for a session, creating it on first
// use. Callers must hold s.mu.
func (s *Server) varsLocked(session string) map[string]string {
	v, ok := s.sessions[session]
	if !ok {
		v = make(map[string]string)
		s.sessions[session] = v
	}
	return v
}
