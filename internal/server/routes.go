package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// RegisterRoutes sets up all the application routes.
func (s *Server) RegisterRoutes() {
	// Mint a fresh room id. GET matches the original client.
	s.E.GET("/api/create-room", s.createRoom)

	// Bidirectional transport for everything else.
	s.E.GET("/ws", s.bridge.Handler())

	s.E.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})

	// Serve the built single-page client. HTML5 mode rewrites unknown paths
	// to index.html so client-side routes survive a refresh.
	s.E.Use(middleware.StaticWithConfig(middleware.StaticConfig{
		Root:  s.Cfg.StaticDir,
		HTML5: true,
	}))
}

// createRoom allocates a room and returns its id. Never fails.
func (s *Server) createRoom(c echo.Context) error {
	id := s.store.CreateRoom()
	return c.JSON(http.StatusOK, map[string]string{"roomId": id})
}
