// Package store persists search results and media probes in BoltDB so
// repeated queries and library scans skip the network and ffprobe.
package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/mmcdole/ytdown/internal/domain"
	bolt "go.etcd.io/bbolt"
)

// Bucket names
var (
	bucketSearches = []byte("searches")
	bucketProbes   = []byte("probes")
)

// searchEntry wraps cached results with their storage time for TTL checks
type searchEntry struct {
	StoredAt time.Time             `json:"stored_at"`
	Results  []domain.SearchResult `json:"results"`
}

// probeEntry is keyed by path; ModTime and Size invalidate it
type probeEntry struct {
	ModTime time.Time         `json:"mod_time"`
	Size    int64             `json:"size"`
	Probe   domain.MediaProbe `json:"probe"`
}

// Store is a BoltDB-backed cache with an in-memory promotion layer.
type Store struct {
	db  *bolt.DB
	ttl time.Duration
	now func() time.Time

	mu sync.RWMutex // Protects memory cache

	// In-memory cache for hot-path reads (promoted on access)
	cache map[string][]byte
}

// Open opens (or creates) the cache database in dir. An empty dir yields a
// memory-only store. ttl bounds the age of cached search results.
func Open(dir string, ttl time.Duration) (*Store, error) {
	s := &Store{ttl: ttl, now: time.Now, cache: make(map[string][]byte)}
	if dir == "" {
		// Memory-only mode (no persistence)
		return s, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, goerr.Wrap(err, "failed to create cache directory", goerr.V("dir", dir))
	}

	dbPath := filepath.Join(dir, "ytdown.db")
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open bolt db", goerr.V("path", dbPath))
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketSearches, bucketProbes} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, goerr.Wrap(err, "failed to create buckets")
	}

	s.db = db
	return s, nil
}

// Close releases the database file
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SearchKey normalises a query and result cap into a cache key.
func SearchKey(query string, maxResults int) string {
	return strings.ToLower(domain.CollapseWhitespace(query)) + ":" + strconv.Itoa(maxResults)
}

// GetResults returns cached results for the query if they are younger than
// the TTL.
func (s *Store) GetResults(query string, maxResults int) ([]domain.SearchResult, bool) {
	var entry searchEntry
	if !s.get(bucketSearches, SearchKey(query, maxResults), &entry) {
		return nil, false
	}
	if s.ttl > 0 && s.now().Sub(entry.StoredAt) > s.ttl {
		s.delete(bucketSearches, SearchKey(query, maxResults))
		return nil, false
	}
	return entry.Results, true
}

// PutResults caches results for the query.
func (s *Store) PutResults(query string, maxResults int, results []domain.SearchResult) error {
	return s.set(bucketSearches, SearchKey(query, maxResults), searchEntry{
		StoredAt: s.now(),
		Results:  results,
	})
}

// GetProbe returns the cached probe for path when the file is unchanged.
func (s *Store) GetProbe(path string, modTime time.Time, size int64) (domain.MediaProbe, bool) {
	var entry probeEntry
	if !s.get(bucketProbes, path, &entry) {
		return domain.MediaProbe{}, false
	}
	if !entry.ModTime.Equal(modTime) || entry.Size != size {
		return domain.MediaProbe{}, false
	}
	return entry.Probe, true
}

// PutProbe caches the probe for path.
func (s *Store) PutProbe(path string, modTime time.Time, size int64, probe domain.MediaProbe) error {
	return s.set(bucketProbes, path, probeEntry{ModTime: modTime, Size: size, Probe: probe})
}

// ClearSearches drops every cached search.
func (s *Store) ClearSearches() {
	s.deletePrefix(bucketSearches, "")
}

// === Generic helpers ===

func (s *Store) get(bucket []byte, key string, dest interface{}) bool {
	cacheKey := string(bucket) + ":" + key

	// Check memory cache first
	s.mu.RLock()
	if data, ok := s.cache[cacheKey]; ok {
		s.mu.RUnlock()
		return json.Unmarshal(data, dest) == nil
	}
	s.mu.RUnlock()

	if s.db == nil {
		return false
	}

	var data []byte
	s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})

	if data == nil {
		return false
	}

	// Promote to memory cache
	s.mu.Lock()
	s.cache[cacheKey] = data
	s.mu.Unlock()

	return json.Unmarshal(data, dest) == nil
}

func (s *Store) set(bucket []byte, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return goerr.Wrap(err, "failed to encode cache entry", goerr.V("key", key))
	}

	cacheKey := string(bucket) + ":" + key

	s.mu.Lock()
	s.cache[cacheKey] = data
	s.mu.Unlock()

	if s.db == nil {
		return nil // Memory-only mode
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		return b.Put([]byte(key), data)
	})
}

func (s *Store) delete(bucket []byte, key string) {
	cacheKey := string(bucket) + ":" + key

	s.mu.Lock()
	delete(s.cache, cacheKey)
	s.mu.Unlock()

	if s.db == nil {
		return
	}

	s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b != nil {
			b.Delete([]byte(key))
		}
		return nil
	})
}

func (s *Store) deletePrefix(bucket []byte, prefix string) {
	memPrefix := string(bucket) + ":" + prefix

	s.mu.Lock()
	for k := range s.cache {
		if strings.HasPrefix(k, memPrefix) {
			delete(s.cache, k)
		}
	}
	s.mu.Unlock()

	if s.db == nil {
		return
	}

	s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		var keys [][]byte
		c := b.Cursor()
		for k, _ := c.Seek([]byte(prefix)); k != nil && strings.HasPrefix(string(k), prefix); k, _ = c.Next() {
			keys = append(keys, append([]byte(nil), k...))
		}
		for _, k := range keys {
			b.Delete(k)
		}
		return nil
	})
}
