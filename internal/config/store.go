// Package config manages the moderation presentation profile stored in the
// object store (hot-reloadable without a service restart).
package config

import (
	"log"
	"path"
	"sync"
	"time"

	"banwarden/internal/objstore"

	"gopkg.in/yaml.v3"
)

// Profile holds the presentation defaults used when a ban record carries no
// custom overrides.
type Profile struct {
	DefaultTitle     string `yaml:"default_title,omitempty"`
	DefaultMessage   string `yaml:"default_message,omitempty"`
	AppealContact    string `yaml:"appeal_contact,omitempty"`
	BannedNamePrefix string `yaml:"banned_name_prefix,omitempty"`
	AnnounceBans     *bool  `yaml:"announce_bans,omitempty"`
	AnnounceLifts    *bool  `yaml:"announce_lifts,omitempty"`
}

// DefaultProfile is used when no profile object exists or it fails to parse.
func DefaultProfile() *Profile {
	t := true
	return &Profile{
		DefaultTitle:     "YOU ARE BANNED!",
		DefaultMessage:   "",
		AppealContact:    "Contact an admin in game for appeal",
		BannedNamePrefix: "[Banned] ",
		AnnounceBans:     &t,
		AnnounceLifts:    &t,
	}
}

// Store serves the profile with caching and periodic refresh.
type Store struct {
	objects   objstore.ObjectStore
	bucket    string
	cacheLock sync.RWMutex
	cached    *Profile
}

// NewStore creates a profile store and starts its refresh loop.
func NewStore(objects objstore.ObjectStore, bucket string) *Store {
	store := &Store{
		objects: objects,
		bucket:  bucket,
	}
	go store.backgroundRefresh()
	return store
}

// Profile returns the current profile, loading it on first access. A missing
// or malformed profile falls back to the built-in defaults.
func (s *Store) Profile() *Profile {
	s.cacheLock.RLock()
	if s.cached != nil {
		p := s.cached
		s.cacheLock.RUnlock()
		return p
	}
	s.cacheLock.RUnlock()

	profile := s.load()

	s.cacheLock.Lock()
	s.cached = profile
	s.cacheLock.Unlock()

	return profile
}

func (s *Store) load() *Profile {
	key := path.Join("profiles", "moderation.yaml")
	data, err := s.objects.GetObject(s.bucket, key)
	if err != nil {
		log.Printf("Moderation profile not found, using defaults: %v", err)
		return DefaultProfile()
	}

	profile := DefaultProfile()
	if err := yaml.Unmarshal(data, profile); err != nil {
		log.Printf("Invalid moderation profile YAML, using defaults: %v", err)
		return DefaultProfile()
	}
	return profile
}

// backgroundRefresh drops the cached profile every 2 minutes (hot-reload).
func (s *Store) backgroundRefresh() {
	ticker := time.NewTicker(120 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		s.cacheLock.Lock()
		s.cached = nil
		s.cacheLock.Unlock()
	}
}
