// Package cache implements the content-addressed store for fetched
// responses. Entries are durable and immutable once written, which is
// what makes interrupted runs resumable: a restarted run re-derives its
// work list by probing the store, never from in-memory progress.
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/periodical-labs/readlevel/internal/hash"
)

// Entry records the metadata persisted alongside each payload.
type Entry struct {
	Key         string    `json:"key"`
	FetchedAt   time.Time `json:"fetched_at"`
	ContentHash string    `json:"content_hash"`
}

// Store is a filesystem-backed content-addressed cache, partitioned by
// resource type and sharded by key digest. Concurrent readers are safe;
// writers to the same key are serialized by a per-key lock.
type Store struct {
	root string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates a store rooted at dir, creating it if needed.
func New(dir string) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("cache root is required")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create cache root: %w", err)
	}
	return &Store{
		root:  dir,
		locks: make(map[string]*sync.Mutex),
	}, nil
}

// Get returns the payload and entry for key, if present.
func (s *Store) Get(resourceType, key string) ([]byte, Entry, bool) {
	payloadPath, metaPath := s.pathsFor(resourceType, key)
	payload, err := os.ReadFile(payloadPath)
	if err != nil {
		return nil, Entry{}, false
	}
	var entry Entry
	if raw, err := os.ReadFile(metaPath); err == nil {
		if err := json.Unmarshal(raw, &entry); err != nil {
			entry = Entry{Key: key}
		}
	} else {
		entry = Entry{Key: key}
	}
	return payload, entry, true
}

// Has reports whether a payload exists for key without reading it.
func (s *Store) Has(resourceType, key string) bool {
	payloadPath, _ := s.pathsFor(resourceType, key)
	_, err := os.Stat(payloadPath)
	return err == nil
}

// Put writes payload under key. Writes are atomic (temp file + rename)
// so a run interrupted mid-write never leaves a truncated entry behind.
// Existing entries are overwritten, which callers use deliberately when
// a rendered body replaces a static one.
func (s *Store) Put(resourceType, key string, payload []byte) (Entry, error) {
	lock := s.lockFor(resourceType + "\x00" + key)
	lock.Lock()
	defer lock.Unlock()

	payloadPath, metaPath := s.pathsFor(resourceType, key)
	if err := os.MkdirAll(filepath.Dir(payloadPath), 0o750); err != nil {
		return Entry{}, fmt.Errorf("create cache shard: %w", err)
	}

	entry := Entry{
		Key:         key,
		FetchedAt:   time.Now().UTC(),
		ContentHash: hash.Digest(payload),
	}

	if err := writeAtomic(payloadPath, payload); err != nil {
		return Entry{}, fmt.Errorf("write cache payload: %w", err)
	}
	meta, err := json.Marshal(entry)
	if err != nil {
		return Entry{}, fmt.Errorf("marshal cache entry: %w", err)
	}
	if err := writeAtomic(metaPath, meta); err != nil {
		return Entry{}, fmt.Errorf("write cache entry: %w", err)
	}
	return entry, nil
}

// Bust removes the entry for key so the next fetch goes to the network.
func (s *Store) Bust(resourceType, key string) error {
	lock := s.lockFor(resourceType + "\x00" + key)
	lock.Lock()
	defer lock.Unlock()

	payloadPath, metaPath := s.pathsFor(resourceType, key)
	for _, p := range []string{payloadPath, metaPath} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("bust cache entry: %w", err)
		}
	}
	return nil
}

// Keys rebuilds the resume index for a resource type by scanning the
// durable sidecar records on disk.
func (s *Store) Keys(resourceType string) ([]string, error) {
	base := filepath.Join(s.root, resourceType)
	var keys []string
	err := filepath.WalkDir(base, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return filepath.SkipAll
			}
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".json") {
			return nil
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read cache entry %s: %w", path, err)
		}
		var entry Entry
		if err := json.Unmarshal(raw, &entry); err != nil {
			// A corrupt sidecar only loses resume credit for one entry.
			return nil
		}
		keys = append(keys, entry.Key)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan cache: %w", err)
	}
	return keys, nil
}

func (s *Store) pathsFor(resourceType, key string) (string, string) {
	digest := hash.DigestString(key)
	dir := filepath.Join(s.root, resourceType, digest[:2])
	return filepath.Join(dir, digest+".bin"), filepath.Join(dir, digest+".json")
}

func (s *Store) lockFor(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[key] = lock
	}
	return lock
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}
