package gateway

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"banwarden/internal/eventbus"
	"banwarden/internal/session"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Allow any origin; the gateway sits behind the game server's edge.
		return true
	},
}

// joinMessage is the first frame a client sends after upgrading.
type joinMessage struct {
	PlayerName string `json:"player_name"`
}

// sessionCommand is pushed to a client whenever moderation mutates its state.
type sessionCommand struct {
	Type  string      `json:"type"`
	Value interface{} `json:"value,omitempty"`
}

// PlayerSession is one connected player over a websocket. It implements
// session.Session: every mutation updates the gateway-side view and pushes a
// command frame to the client, so a failed write surfaces as an error.
type PlayerSession struct {
	name string
	conn *websocket.Conn

	mu          sync.Mutex
	displayName string
	mode        session.Mode
	muted       bool
	mutedUntil  int64
	tags        map[string]bool
}

func newPlayerSession(name string, conn *websocket.Conn) *PlayerSession {
	return &PlayerSession{
		name:        name,
		conn:        conn,
		displayName: name,
		mode:        session.ModeNormal,
		tags:        make(map[string]bool),
	}
}

func (p *PlayerSession) Name() string { return p.name }

func (p *PlayerSession) DisplayName() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.displayName
}

func (p *PlayerSession) Mode() session.Mode {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mode
}

func (p *PlayerSession) Muted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.muted
}

func (p *PlayerSession) MutedUntil() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mutedUntil
}

func (p *PlayerSession) Tags() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	tags := make([]string, 0, len(p.tags))
	for tag := range p.tags {
		tags = append(tags, tag)
	}
	return tags
}

func (p *PlayerSession) HasTag(tag string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tags[tag]
}

func (p *PlayerSession) SetDisplayName(ctx context.Context, name string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.writeCommand(sessionCommand{Type: "display_name", Value: name}); err != nil {
		return err
	}
	p.displayName = name
	return nil
}

func (p *PlayerSession) SetMode(ctx context.Context, mode session.Mode) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.writeCommand(sessionCommand{Type: "mode", Value: string(mode)}); err != nil {
		return err
	}
	p.mode = mode
	return nil
}

func (p *PlayerSession) SetMuted(ctx context.Context, muted bool, until int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.writeCommand(sessionCommand{Type: "muted", Value: map[string]interface{}{
		"muted": muted,
		"until": until,
	}}); err != nil {
		return err
	}
	p.muted = muted
	p.mutedUntil = until
	return nil
}

func (p *PlayerSession) AddTag(ctx context.Context, tag string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tags[tag] = true
	return nil
}

func (p *PlayerSession) RemoveTag(ctx context.Context, tag string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.tags, tag)
	return nil
}

func (p *PlayerSession) SendMessage(ctx context.Context, message string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.writeCommand(sessionCommand{Type: "message", Value: message})
}

func (p *PlayerSession) Disconnect(ctx context.Context, message string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.writeCommand(sessionCommand{Type: "kick", Value: message}); err != nil {
		return err
	}
	return p.conn.Close()
}

// writeCommand must be called with p.mu held; the websocket allows one
// concurrent writer.
func (p *PlayerSession) writeCommand(cmd sessionCommand) error {
	return p.conn.WriteJSON(cmd)
}

// WebSocketServer owns the live session directory. It implements
// session.Directory for the moderation engine and serves as the broadcast
// announcement channel.
type WebSocketServer struct {
	mu       sync.RWMutex
	sessions map[string]*PlayerSession

	bus       *eventbus.EventBus
	serverID  string
	onConnect func(ctx context.Context, s session.Session)
}

func NewWebSocketServer(bus *eventbus.EventBus, serverID string) *WebSocketServer {
	return &WebSocketServer{
		sessions: make(map[string]*PlayerSession),
		bus:      bus,
		serverID: serverID,
	}
}

// SetConnectHook registers the callback invoked for every joining session.
func (w *WebSocketServer) SetConnectHook(hook func(ctx context.Context, s session.Session)) {
	w.onConnect = hook
}

// Sessions returns all currently connected sessions.
func (w *WebSocketServer) Sessions() []session.Session {
	w.mu.RLock()
	defer w.mu.RUnlock()
	sessions := make([]session.Session, 0, len(w.sessions))
	for _, s := range w.sessions {
		sessions = append(sessions, s)
	}
	return sessions
}

// Find returns the session with the given player name, if connected.
func (w *WebSocketServer) Find(name string) (session.Session, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	s, ok := w.sessions[name]
	return s, ok
}

// Announce broadcasts a public notice to every connected session.
func (w *WebSocketServer) Announce(message string) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	for _, s := range w.sessions {
		if err := s.SendMessage(context.Background(), message); err != nil {
			log.Printf("Failed to announce to %s: %v", s.Name(), err)
		}
	}
}

// HandleWebSocket upgrades the connection, registers the session after its
// join frame and runs the read loop until the client goes away.
func (w *WebSocketServer) HandleWebSocket(wr http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(wr, r, nil)
	if err != nil {
		log.Printf("Failed to upgrade connection: %v", err)
		return
	}
	defer conn.Close()

	var join joinMessage
	if err := conn.ReadJSON(&join); err != nil || join.PlayerName == "" {
		log.Printf("Rejecting connection without a valid join message: %v", err)
		return
	}

	sess := newPlayerSession(join.PlayerName, conn)

	w.mu.Lock()
	if old, ok := w.sessions[join.PlayerName]; ok {
		old.conn.Close()
	}
	w.sessions[join.PlayerName] = sess
	w.mu.Unlock()

	w.publishSessionEvent(r.Context(), eventbus.EventSessionConnected, join.PlayerName)

	// The connect hook is the moderation engine's entry point; a banned
	// player is enforced and kicked here before any gameplay traffic.
	if w.onConnect != nil {
		w.onConnect(r.Context(), sess)
	}

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			log.Printf("Client %s disconnected: %v", join.PlayerName, err)
			break
		}

		var payload map[string]interface{}
		if err := json.Unmarshal(message, &payload); err != nil {
			log.Printf("Failed to parse client message from %s: %v", join.PlayerName, err)
			continue
		}
	}

	w.mu.Lock()
	if current, ok := w.sessions[join.PlayerName]; ok && current == sess {
		delete(w.sessions, join.PlayerName)
	}
	w.mu.Unlock()

	w.publishSessionEvent(context.Background(), eventbus.EventSessionDisconnected, join.PlayerName)
}

func (w *WebSocketServer) publishSessionEvent(ctx context.Context, eventType, playerName string) {
	event := eventbus.NewEvent(eventType, "gateway", w.serverID, map[string]interface{}{
		"player": playerName,
	})
	if err := w.bus.Publish(ctx, eventbus.TopicSessionEvents, event); err != nil {
		log.Printf("Warning: Failed to publish %s event: %v", eventType, err)
	}
}
