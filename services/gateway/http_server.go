package gateway

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

type HTTPServer struct {
	server *http.Server
	router *mux.Router
}

func NewHTTPServer(addr string) *HTTPServer {
	router := mux.NewRouter()

	srv := &http.Server{
		Addr:         addr,
		WriteTimeout: time.Second * 15,
		ReadTimeout:  time.Second * 15,
		IdleTimeout:  time.Second * 60,
		Handler:      router,
	}

	return &HTTPServer{
		server: srv,
		router: router,
	}
}

func (hs *HTTPServer) Start() {
	go func() {
		log.Printf("HTTP server starting on %s", hs.server.Addr)
		if err := hs.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("HTTP server error: %v", err)
		}
	}()
}

func (hs *HTTPServer) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := hs.server.Shutdown(ctx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}
	log.Println("HTTP server stopped")
}

func (hs *HTTPServer) RegisterRoutes(handlers *ModerationHandlers, wsServer *WebSocketServer) {
	// WebSocket endpoint for player sessions
	hs.router.HandleFunc("/ws/session", wsServer.HandleWebSocket)

	// Moderator-facing REST API
	hs.router.HandleFunc("/bans", handlers.ListBansHandler).Methods("GET")
	hs.router.HandleFunc("/bans/{player_name}", handlers.IssueBanHandler).Methods("POST")
	hs.router.HandleFunc("/bans/{player_name}", handlers.LiftBanHandler).Methods("DELETE")
	hs.router.HandleFunc("/healthz", handlers.HealthHandler).Methods("GET")
}
