package banregistry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"banwarden/internal/config"
	"banwarden/internal/eventbus"
	"banwarden/internal/objstore"
	"banwarden/internal/session"
)

// fakeClock drives the injected now() functions in millisecond steps.
type fakeClock struct {
	mu sync.Mutex
	ms int64
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return time.UnixMilli(c.ms)
}

func (c *fakeClock) Advance(ms int64) {
	c.mu.Lock()
	c.ms += ms
	c.mu.Unlock()
}

func (c *fakeClock) SetMs(ms int64) {
	c.mu.Lock()
	c.ms = ms
	c.mu.Unlock()
}

// fakeObjectStore is an in-memory objstore.ObjectStore.
type fakeObjectStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	failPut bool
	gets    int
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{objects: make(map[string][]byte)}
}

func (f *fakeObjectStore) PutObject(bucket, object string, data io.Reader, size int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failPut {
		return errors.New("storage unavailable")
	}
	blob, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	f.objects[bucket+"/"+object] = blob
	return nil
}

func (f *fakeObjectStore) GetObject(bucket, object string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	blob, ok := f.objects[bucket+"/"+object]
	if !ok {
		return nil, fmt.Errorf("object %s not found", object)
	}
	return blob, nil
}

func (f *fakeObjectStore) ListObjects(bucket, prefix string) ([]objstore.ObjectInfo, error) {
	return nil, nil
}

// fakeSession is a session.Session with switchable failure behavior.
type fakeSession struct {
	mu          sync.Mutex
	name        string
	displayName string
	mode        session.Mode
	muted       bool
	mutedUntil  int64
	tags        map[string]bool
	messages    []string
	kicked      bool
	kickMessage string
	failCalls   bool
}

func newFakeSession(name string) *fakeSession {
	return &fakeSession{
		name:        name,
		displayName: name,
		mode:        session.ModeNormal,
		tags:        make(map[string]bool),
	}
}

func (s *fakeSession) Name() string { return s.name }

func (s *fakeSession) DisplayName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.displayName
}

func (s *fakeSession) Mode() session.Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

func (s *fakeSession) Muted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.muted
}

func (s *fakeSession) MutedUntil() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mutedUntil
}

func (s *fakeSession) Tags() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	tags := make([]string, 0, len(s.tags))
	for tag := range s.tags {
		tags = append(tags, tag)
	}
	return tags
}

func (s *fakeSession) HasTag(tag string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tags[tag]
}

func (s *fakeSession) fail() error {
	if s.failCalls {
		return errors.New("session call failed")
	}
	return nil
}

func (s *fakeSession) SetDisplayName(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail(); err != nil {
		return err
	}
	s.displayName = name
	return nil
}

func (s *fakeSession) SetMode(ctx context.Context, mode session.Mode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail(); err != nil {
		return err
	}
	s.mode = mode
	return nil
}

func (s *fakeSession) SetMuted(ctx context.Context, muted bool, until int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail(); err != nil {
		return err
	}
	s.muted = muted
	s.mutedUntil = until
	return nil
}

func (s *fakeSession) AddTag(ctx context.Context, tag string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail(); err != nil {
		return err
	}
	s.tags[tag] = true
	return nil
}

func (s *fakeSession) RemoveTag(ctx context.Context, tag string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail(); err != nil {
		return err
	}
	delete(s.tags, tag)
	return nil
}

func (s *fakeSession) SendMessage(ctx context.Context, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail(); err != nil {
		return err
	}
	s.messages = append(s.messages, message)
	return nil
}

func (s *fakeSession) Disconnect(ctx context.Context, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail(); err != nil {
		return err
	}
	s.kicked = true
	s.kickMessage = message
	return nil
}

// fakeDirectory is an in-memory session.Directory.
type fakeDirectory struct {
	sessions map[string]*fakeSession
}

func newFakeDirectory(sessions ...*fakeSession) *fakeDirectory {
	dir := &fakeDirectory{sessions: make(map[string]*fakeSession)}
	for _, s := range sessions {
		dir.sessions[s.name] = s
	}
	return dir
}

func (d *fakeDirectory) Sessions() []session.Session {
	out := make([]session.Session, 0, len(d.sessions))
	for _, s := range d.sessions {
		out = append(out, s)
	}
	return out
}

func (d *fakeDirectory) Find(name string) (session.Session, bool) {
	s, ok := d.sessions[name]
	return s, ok
}

// fakePublisher records published events.
type fakePublisher struct {
	mu     sync.Mutex
	events []eventbus.Event
}

func (p *fakePublisher) Publish(ctx context.Context, topic string, event eventbus.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *fakePublisher) eventTypes() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		types = append(types, ev.EventType)
	}
	return types
}

// fakeAnnouncer records broadcast notices.
type fakeAnnouncer struct {
	mu       sync.Mutex
	messages []string
}

func (a *fakeAnnouncer) Announce(message string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.messages = append(a.messages, message)
}

// testEnv bundles a fully wired registry with controllable time and storage.
type testEnv struct {
	clock     *fakeClock
	objects   *fakeObjectStore
	store     *Store
	directory *fakeDirectory
	publisher *fakePublisher
	announcer *fakeAnnouncer
	registry  *Registry
}

func newTestEnv(sessions ...*fakeSession) *testEnv {
	clock := &fakeClock{}
	objects := newFakeObjectStore()
	store := NewStore(objects, "moderation")
	store.now = clock.Now

	directory := newFakeDirectory(sessions...)
	publisher := &fakePublisher{}
	announcer := &fakeAnnouncer{}
	profiles := config.NewStore(objects, "moderation")

	registry := NewRegistry(store, directory, NewApplicator(profiles), profiles, publisher, announcer, "test")
	registry.now = clock.Now

	return &testEnv{
		clock:     clock,
		objects:   objects,
		store:     store,
		directory: directory,
		publisher: publisher,
		announcer: announcer,
		registry:  registry,
	}
}

func (e *testEnv) reconciler() *Reconciler {
	rec := NewReconciler(e.registry)
	rec.now = e.clock.Now
	return rec
}
