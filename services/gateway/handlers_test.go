package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"banwarden/internal/config"
	"banwarden/internal/eventbus"
	"banwarden/internal/objstore"
	"banwarden/internal/session"
	"banwarden/services/banregistry"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
)

type memObjects struct {
	objects map[string][]byte
}

func (m *memObjects) PutObject(bucket, object string, data io.Reader, size int64) error {
	blob, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	m.objects[bucket+"/"+object] = blob
	return nil
}

func (m *memObjects) GetObject(bucket, object string) ([]byte, error) {
	blob, ok := m.objects[bucket+"/"+object]
	if !ok {
		return nil, fmt.Errorf("object %s not found", object)
	}
	return blob, nil
}

func (m *memObjects) ListObjects(bucket, prefix string) ([]objstore.ObjectInfo, error) {
	return nil, nil
}

type stubSession struct {
	name        string
	displayName string
	mode        session.Mode
	muted       bool
	mutedUntil  int64
	tags        map[string]bool
	kicked      bool
}

func newStubSession(name string) *stubSession {
	return &stubSession{name: name, displayName: name, mode: session.ModeNormal, tags: make(map[string]bool)}
}

func (s *stubSession) Name() string         { return s.name }
func (s *stubSession) DisplayName() string  { return s.displayName }
func (s *stubSession) Mode() session.Mode   { return s.mode }
func (s *stubSession) Muted() bool          { return s.muted }
func (s *stubSession) MutedUntil() int64    { return s.mutedUntil }
func (s *stubSession) HasTag(t string) bool { return s.tags[t] }

func (s *stubSession) Tags() []string {
	tags := make([]string, 0, len(s.tags))
	for tag := range s.tags {
		tags = append(tags, tag)
	}
	return tags
}

func (s *stubSession) SetDisplayName(ctx context.Context, name string) error {
	s.displayName = name
	return nil
}

func (s *stubSession) SetMode(ctx context.Context, mode session.Mode) error {
	s.mode = mode
	return nil
}

func (s *stubSession) SetMuted(ctx context.Context, muted bool, until int64) error {
	s.muted = muted
	s.mutedUntil = until
	return nil
}

func (s *stubSession) AddTag(ctx context.Context, tag string) error {
	s.tags[tag] = true
	return nil
}

func (s *stubSession) RemoveTag(ctx context.Context, tag string) error {
	delete(s.tags, tag)
	return nil
}

func (s *stubSession) SendMessage(ctx context.Context, message string) error { return nil }

func (s *stubSession) Disconnect(ctx context.Context, message string) error {
	s.kicked = true
	return nil
}

type stubDirectory struct {
	sessions map[string]*stubSession
}

func (d *stubDirectory) Sessions() []session.Session {
	out := make([]session.Session, 0, len(d.sessions))
	for _, s := range d.sessions {
		out = append(out, s)
	}
	return out
}

func (d *stubDirectory) Find(name string) (session.Session, bool) {
	s, ok := d.sessions[name]
	return s, ok
}

type nopPublisher struct{}

func (nopPublisher) Publish(ctx context.Context, topic string, event eventbus.Event) error {
	return nil
}

type nopAnnouncer struct{}

func (nopAnnouncer) Announce(message string) {}

func newTestRouter(sessions ...*stubSession) *mux.Router {
	objects := &memObjects{objects: make(map[string][]byte)}
	dir := &stubDirectory{sessions: make(map[string]*stubSession)}
	for _, s := range sessions {
		dir.sessions[s.name] = s
	}

	profiles := config.NewStore(objects, "moderation")
	store := banregistry.NewStore(objects, "moderation")
	registry := banregistry.NewRegistry(store, dir, banregistry.NewApplicator(profiles),
		profiles, nopPublisher{}, nopAnnouncer{}, "test")

	handlers := NewModerationHandlers(registry)

	router := mux.NewRouter()
	router.HandleFunc("/bans", handlers.ListBansHandler).Methods("GET")
	router.HandleFunc("/bans/{player_name}", handlers.IssueBanHandler).Methods("POST")
	router.HandleFunc("/bans/{player_name}", handlers.LiftBanHandler).Methods("DELETE")
	return router
}

func issueBody(reason string) []byte {
	body, _ := json.Marshal(map[string]interface{}{
		"minutes":   5,
		"reason":    reason,
		"issued_by": "mod",
	})
	return body
}

func TestIssueBanHandlerCreatesRecord(t *testing.T) {
	alice := newStubSession("alice")
	router := newTestRouter(alice)

	req := httptest.NewRequest("POST", "/bans/alice", bytes.NewReader(issueBody("griefing")))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var record banregistry.Record
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &record))
	assert.Equal(t, "griefing", record.Reason)
	assert.Equal(t, "mod", record.BannedBy)
	assert.True(t, alice.kicked)
}

func TestIssueBanHandlerRejectsEmptyReason(t *testing.T) {
	alice := newStubSession("alice")
	router := newTestRouter(alice)

	req := httptest.NewRequest("POST", "/bans/alice", bytes.NewReader(issueBody("   ")))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, alice.kicked)
}

func TestIssueBanHandlerRejectsInvalidBody(t *testing.T) {
	router := newTestRouter(newStubSession("alice"))

	// Schema requires issued_by.
	body, _ := json.Marshal(map[string]interface{}{"reason": "griefing"})
	req := httptest.NewRequest("POST", "/bans/alice", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestIssueBanHandlerOfflineTarget(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest("POST", "/bans/ghost", bytes.NewReader(issueBody("griefing")))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLiftBanHandler(t *testing.T) {
	alice := newStubSession("alice")
	router := newTestRouter(alice)

	req := httptest.NewRequest("DELETE", "/bans/alice", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)

	req = httptest.NewRequest("POST", "/bans/alice", bytes.NewReader(issueBody("griefing")))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusCreated, w.Code)

	req = httptest.NewRequest("DELETE", "/bans/alice", bytes.NewReader([]byte(`{"lifted_by":"admin"}`)))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, session.ModeNormal, alice.Mode())
}

func TestListBansHandler(t *testing.T) {
	alice := newStubSession("alice")
	router := newTestRouter(alice)

	req := httptest.NewRequest("POST", "/bans/alice", bytes.NewReader(issueBody("griefing")))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusCreated, w.Code)

	req = httptest.NewRequest("GET", "/bans", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Bans  []banregistry.ActiveBan `json:"bans"`
		Count int                     `json:"count"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, "alice", resp.Bans[0].Name)
	assert.Equal(t, "griefing", resp.Bans[0].Reason)
	assert.NotEmpty(t, resp.Bans[0].TimeLeft)
}
