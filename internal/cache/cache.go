// Package cache persists fetched movie data on disk: one directory per
// storage key holding at most a canonical-size poster (thumb.jpg) and a
// metadata record (data.json). Directory existence is the sole evidence
// that a fetch has happened; an absent data.json means "not yet fetched",
// a present one with empty fields means "fetched but unresolved".
package cache

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	posterFile   = "thumb.jpg"
	metadataFile = "data.json"

	// DefaultSummary is the documented degraded state when every
	// metadata source failed.
	DefaultSummary = "The summary could not be retrieved."
)

// Record is the metadata persisted for one movie.
type Record struct {
	Title   string   `json:"title"`
	Summary string   `json:"summary"`
	Actors  []string `json:"actors"`
	Genre   []string `json:"genre"`
	Trailer string   `json:"trailer"`
	IMDb    string   `json:"imdb"`
}

// DefaultRecord builds a record that is renderable even under total fetch
// failure: every field holds its safe default.
func DefaultRecord(displayTitle string, year int) Record {
	return Record{
		Title:   fmt.Sprintf("%s (%d)", displayTitle, year),
		Summary: DefaultSummary,
		Actors:  []string{},
		Genre:   []string{},
	}
}

// Store maps storage keys to cache directories under one root. Directory
// creation is lazy and writes are idempotent, so concurrent re-fetches for
// the same key settle as last-write-wins on identical derived data.
type Store struct {
	root string
}

// NewStore creates a cache store rooted at dir. The root itself is created
// eagerly; per-entry directories are created on first write.
func NewStore(root string) (*Store, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache root: %w", err)
	}
	return &Store{root: root}, nil
}

// Root returns the cache root directory.
func (s *Store) Root() string {
	return s.root
}

// EntryDir returns the directory for a storage key.
func (s *Store) EntryDir(key string) string {
	return filepath.Join(s.root, key)
}

// PosterPath returns the poster path for a storage key.
func (s *Store) PosterPath(key string) string {
	return filepath.Join(s.root, key, posterFile)
}

// MetadataPath returns the data.json path for a storage key.
func (s *Store) MetadataPath(key string) string {
	return filepath.Join(s.root, key, metadataFile)
}

// Exists reports whether any cache entry exists for the key.
func (s *Store) Exists(key string) bool {
	info, err := os.Stat(s.EntryDir(key))
	return err == nil && info.IsDir()
}

// HasPoster reports whether a poster has been written for the key.
func (s *Store) HasPoster(key string) bool {
	_, err := os.Stat(s.PosterPath(key))
	return err == nil
}

// HasMetadata reports whether a metadata record has been written for the
// key. Once true, the record is sticky: only an explicit override or cache
// deletion triggers a new fetch.
func (s *Store) HasMetadata(key string) bool {
	_, err := os.Stat(s.MetadataPath(key))
	return err == nil
}

// ReadMetadata loads the record for a key, reporting whether one exists.
func (s *Store) ReadMetadata(key string) (Record, bool) {
	data, err := os.ReadFile(s.MetadataPath(key))
	if err != nil {
		return Record{}, false
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, false
	}
	return rec, true
}

// WriteMetadata persists the record for a key, creating the entry
// directory if needed.
func (s *Store) WriteMetadata(key string, rec Record) error {
	if err := s.ensureDir(key); err != nil {
		return err
	}
	data, err := json.MarshalIndent(rec, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode metadata for %q: %w", key, err)
	}
	if err := os.WriteFile(s.MetadataPath(key), data, 0644); err != nil {
		return fmt.Errorf("failed to write metadata for %q: %w", key, err)
	}
	return nil
}

// WritePoster normalizes a raw downloaded image to the canonical poster
// size and persists it as thumb.jpg.
func (s *Store) WritePoster(key string, raw []byte) error {
	normalized, err := NormalizePoster(raw)
	if err != nil {
		return fmt.Errorf("failed to process poster for %q: %w", key, err)
	}
	if err := s.ensureDir(key); err != nil {
		return err
	}
	if err := os.WriteFile(s.PosterPath(key), normalized, 0644); err != nil {
		return fmt.Errorf("failed to write poster for %q: %w", key, err)
	}
	return nil
}

// SetLocalPoster assigns a poster from a local image file, applying the
// same canonical resize as a downloaded one.
func (s *Store) SetLocalPoster(key string, srcPath string) error {
	raw, err := os.ReadFile(srcPath)
	if err != nil {
		return fmt.Errorf("failed to read local poster: %w", err)
	}
	return s.WritePoster(key, raw)
}

// Delete removes the entire cache entry for a key. Deleting an absent
// entry is not an error.
func (s *Store) Delete(key string) error {
	return os.RemoveAll(s.EntryDir(key))
}

// Move migrates a cache entry to a new storage key after a rename. A plain
// rename is attempted first; across filesystems it falls back to a copy
// followed by deletion of the old entry.
func (s *Store) Move(oldKey, newKey string) error {
	if oldKey == newKey || !s.Exists(oldKey) {
		return nil
	}
	if err := s.Delete(newKey); err != nil {
		return err
	}
	if err := os.Rename(s.EntryDir(oldKey), s.EntryDir(newKey)); err == nil {
		return nil
	}
	if err := copyDir(s.EntryDir(oldKey), s.EntryDir(newKey)); err != nil {
		return fmt.Errorf("failed to migrate cache entry %q -> %q: %w", oldKey, newKey, err)
	}
	return s.Delete(oldKey)
}

// Keys lists every storage key currently cached, sorted.
func (s *Store) Keys() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("failed to list cache root: %w", err)
	}
	var keys []string
	for _, e := range entries {
		if e.IsDir() {
			keys = append(keys, e.Name())
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// AllActors returns the unique actor names across every cached record,
// sorted case-insensitively.
func (s *Store) AllActors() ([]string, error) {
	keys, err := s.Keys()
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	var actors []string
	for _, key := range keys {
		rec, ok := s.ReadMetadata(key)
		if !ok {
			continue
		}
		for _, name := range rec.Actors {
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			actors = append(actors, name)
		}
	}
	sort.Slice(actors, func(i, j int) bool {
		return strings.ToLower(actors[i]) < strings.ToLower(actors[j])
	})
	return actors, nil
}

func (s *Store) ensureDir(key string) error {
	if key == "" {
		return fmt.Errorf("storage key cannot be empty")
	}
	if err := os.MkdirAll(s.EntryDir(key), 0755); err != nil {
		return fmt.Errorf("failed to create cache entry for %q: %w", key, err)
	}
	return nil
}

func copyDir(src, dst string) error {
	if err := os.MkdirAll(dst, 0755); err != nil {
		return err
	}
	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsDir() {
			continue // cache entries are flat
		}
		if err := copyFile(filepath.Join(src, e.Name()), filepath.Join(dst, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
