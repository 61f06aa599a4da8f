// Package gateway serves player websocket sessions and the moderator REST API.
package gateway

import (
	"context"
	"log"

	"banwarden/services/banregistry"
)

type Config struct {
	HTTPAddr string
	ServerID string
}

// Service ties the websocket session server and the HTTP surface together.
type Service struct {
	httpServer *HTTPServer
	wsServer   *WebSocketServer
	handlers   *ModerationHandlers
	cfg        Config
}

func NewService(cfg Config, wsServer *WebSocketServer, registry *banregistry.Registry) *Service {
	return &Service{
		httpServer: NewHTTPServer(cfg.HTTPAddr),
		wsServer:   wsServer,
		handlers:   NewModerationHandlers(registry),
		cfg:        cfg,
	}
}

// Start registers routes and launches the HTTP server.
func (s *Service) Start(ctx context.Context) {
	s.httpServer.RegisterRoutes(s.handlers, s.wsServer)
	s.httpServer.Start()
	log.Println("Gateway started.")
}

func (s *Service) Stop() {
	s.httpServer.Stop()
}
