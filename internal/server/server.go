package server

import (
	"context"
	"log/slog"
	"os"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/M-Abdul-RAFAY/anonymous-chat-app/internal/config"
	"github.com/M-Abdul-RAFAY/anonymous-chat-app/internal/gateway"
	"github.com/M-Abdul-RAFAY/anonymous-chat-app/internal/logging"
	"github.com/M-Abdul-RAFAY/anonymous-chat-app/internal/pubsub"
	"github.com/M-Abdul-RAFAY/anonymous-chat-app/internal/room"
	"github.com/M-Abdul-RAFAY/anonymous-chat-app/internal/session"
)

// Server holds the dependencies for the HTTP server and the room
// coordinator behind it.
type Server struct {
	E           *echo.Echo
	Cfg         *config.Config
	bus         *pubsub.WatermillBridge
	bridge      *gateway.Bridge
	store       *room.Store
	lifecycle   *room.Lifecycle
	tracker     *session.Tracker
	coordinator *session.Coordinator
	cancel      context.CancelFunc
}

// New creates a fully wired Server instance.
func New() *Server {
	logging.New()
	cfg := config.New()
	return NewWithConfig(cfg)
}

// NewWithConfig wires a server from an explicit config, which is what the
// integration tests use to shrink the grace period.
func NewWithConfig(cfg *config.Config) *Server {
	bus := pubsub.NewWatermillBridge()
	bridge := gateway.NewBridge(bus)

	store := room.NewStore()
	lifecycle := room.NewLifecycle(store, cfg.GracePeriod)
	relay := session.NewRelay(bridge)
	tracker := session.NewTracker(store, lifecycle, relay)
	coordinator := session.NewCoordinator(tracker)

	ctx, cancel := context.WithCancel(context.Background())
	if err := coordinator.Start(ctx, bus); err != nil {
		slog.Error("Failed to start coordinator", "error", err)
		cancel()
		os.Exit(1)
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	// The client is served from arbitrary origins (link sharing), mirror
	// that on the API.
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{echo.GET, echo.POST},
	}))

	return &Server{
		E:           e,
		Cfg:         cfg,
		bus:         bus,
		bridge:      bridge,
		store:       store,
		lifecycle:   lifecycle,
		tracker:     tracker,
		coordinator: coordinator,
		cancel:      cancel,
	}
}

// Store is a getter for the server's room store, useful for testing.
func (s *Server) Store() *room.Store {
	return s.store
}

// Tracker is a getter for the server's session tracker, useful for testing.
func (s *Server) Tracker() *session.Tracker {
	return s.tracker
}

// Close tears down the coordinator, timers and bus.
func (s *Server) Close() {
	s.cancel()
	s.lifecycle.Shutdown()
	if err := s.bus.Close(); err != nil {
		slog.Error("Failed to close pub/sub bus", "error", err)
	}
}
