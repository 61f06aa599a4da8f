package banregistry

import (
	"bytes"
	"encoding/json"
	"log"
	"sync"
	"time"

	"banwarden/internal/objstore"
	"banwarden/internal/schema"
)

// The full ban mapping is persisted as one JSON object under a well-known key.
const banRecordsObject = "banned_players.json"

// cacheTTL bounds how stale a cached snapshot may be. Reads within the window
// skip deserialization entirely.
const cacheTTL = 5000 * time.Millisecond

// Store persists the player-name → Record mapping as a single blob and
// mirrors it in a time-bounded in-memory cache. All mutation is read-full,
// modify-in-memory, write-full; no partial updates exist.
type Store struct {
	objects   objstore.ObjectStore
	bucket    string
	validator *schema.Validator

	mu       sync.Mutex
	cached   map[string]Record
	cachedAt time.Time

	now func() time.Time
}

// NewStore creates a ban record store over the given bucket.
func NewStore(objects objstore.ObjectStore, bucket string) *Store {
	validator, err := schema.NewBanRecordsValidator()
	if err != nil {
		log.Printf("Failed to build ban records validator: %v", err)
	}
	return &Store{
		objects:   objects,
		bucket:    bucket,
		validator: validator,
		now:       time.Now,
	}
}

// Get returns the current ban mapping. A fresh cached snapshot is served
// without touching storage; otherwise the blob is fetched and deserialized.
// Absent or malformed data yields an empty mapping, never an error.
func (s *Store) Get() map[string]Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached != nil && s.now().Sub(s.cachedAt) < cacheTTL {
		return copyRecords(s.cached)
	}

	records := s.load()
	s.cached = records
	s.cachedAt = s.now()
	return copyRecords(records)
}

func (s *Store) load() map[string]Record {
	data, err := s.objects.GetObject(s.bucket, banRecordsObject)
	if err != nil {
		log.Printf("Ban records not readable, treating as empty: %v", err)
		return make(map[string]Record)
	}

	if s.validator != nil {
		if err := s.validator.ValidateBytes(data); err != nil {
			log.Printf("Ban records blob is malformed, treating as empty: %v", err)
			return make(map[string]Record)
		}
	}

	var records map[string]Record
	if err := json.Unmarshal(data, &records); err != nil {
		log.Printf("Failed to parse ban records, treating as empty: %v", err)
		return make(map[string]Record)
	}
	if records == nil {
		records = make(map[string]Record)
	}
	return records
}

// Set persists the full mapping. On success the cache is refreshed to the
// just-written snapshot and true is returned. On failure the previously
// persisted state and the cache are left untouched and false is returned;
// callers must not apply dependent side effects in that case.
func (s *Store) Set(records map[string]Record) bool {
	data, err := json.Marshal(records)
	if err != nil {
		log.Printf("Failed to serialize ban records: %v", err)
		return false
	}

	if err := s.objects.PutObject(s.bucket, banRecordsObject, bytes.NewReader(data), int64(len(data))); err != nil {
		log.Printf("Failed to save ban records: %v", err)
		return false
	}

	s.mu.Lock()
	s.cached = copyRecords(records)
	s.cachedAt = s.now()
	s.mu.Unlock()
	return true
}

func copyRecords(records map[string]Record) map[string]Record {
	out := make(map[string]Record, len(records))
	for name, rec := range records {
		out[name] = rec
	}
	return out
}
