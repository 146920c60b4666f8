package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// movieEntry is the persisted form of one movie inside a collection file.
type movieEntry struct {
	Title  string `json:"title"`
	Year   int    `json:"year"`
	Path   string `json:"path"`
	Rating string `json:"rating"`
}

// Store persists collections as one JSON file each under a single
// directory. It is explicitly owned by the caller and passed by reference;
// the fetch and reconcile layers only ever read from it.
type Store struct {
	dir string
}

// NewStore creates a collection store rooted at dir, creating it if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create collections directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the directory holding the collection files.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) filePath(name string) string {
	return filepath.Join(s.dir, strings.ReplaceAll(name, " ", "_")+".json")
}

// Save writes the collection to its file.
func (s *Store) Save(c *Collection) error {
	entries := make([]movieEntry, 0, len(c.Movies))
	for _, m := range c.Movies {
		entries = append(entries, movieEntry{
			Title:  m.Title,
			Year:   m.Year,
			Path:   m.Path,
			Rating: string(m.Rating),
		})
	}
	data, err := json.MarshalIndent(entries, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode collection %q: %w", c.Name, err)
	}
	if err := os.WriteFile(s.filePath(c.Name), data, 0644); err != nil {
		return fmt.Errorf("failed to save collection %q: %w", c.Name, err)
	}
	return nil
}

// Load reads one collection file. Entries that no longer validate (a year
// out of range, a corrupted title) are skipped rather than failing the
// whole collection.
func (s *Store) Load(name string) (*Collection, error) {
	data, err := os.ReadFile(s.filePath(name))
	if err != nil {
		return nil, fmt.Errorf("failed to read collection %q: %w", name, err)
	}
	var entries []movieEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse collection %q: %w", name, err)
	}

	c := &Collection{Name: name}
	for _, e := range entries {
		m, err := NewMovie(e.Title, e.Year, e.Path, e.Rating)
		if err != nil {
			continue
		}
		c.Add(m)
	}
	return c, nil
}

// LoadAll recovers every collection saved in the store directory.
func (s *Store) LoadAll() ([]*Collection, error) {
	matches, err := filepath.Glob(filepath.Join(s.dir, "*.json"))
	if err != nil {
		return nil, err
	}
	var collections []*Collection
	for _, file := range matches {
		name := strings.ReplaceAll(strings.TrimSuffix(filepath.Base(file), ".json"), "_", " ")
		c, err := s.Load(name)
		if err != nil {
			continue
		}
		collections = append(collections, c)
	}
	return collections, nil
}

// Rename moves a collection to a new name on disk and in memory.
func (s *Store) Rename(c *Collection, newName string) error {
	oldPath := s.filePath(c.Name)
	if err := c.Rename(newName); err != nil {
		return err
	}
	if _, err := os.Stat(oldPath); err != nil {
		return nil // nothing saved yet
	}
	if err := s.Save(c); err != nil {
		return err
	}
	if oldPath != s.filePath(c.Name) {
		return os.Remove(oldPath)
	}
	return nil
}

// Delete removes the collection's file from disk.
func (s *Store) Delete(c *Collection) error {
	err := os.Remove(s.filePath(c.Name))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// AllMovies returns every movie reachable from every saved collection.
func (s *Store) AllMovies() ([]Movie, error) {
	collections, err := s.LoadAll()
	if err != nil {
		return nil, err
	}
	var movies []Movie
	for _, c := range collections {
		movies = append(movies, c.Movies...)
	}
	return movies, nil
}

// LiveKeys returns the set of storage keys implied by every saved
// collection. This is the reconciler's notion of "still owned".
func (s *Store) LiveKeys() (map[string]struct{}, error) {
	movies, err := s.AllMovies()
	if err != nil {
		return nil, err
	}
	live := make(map[string]struct{}, len(movies))
	for _, m := range movies {
		live[m.StorageKey()] = struct{}{}
	}
	return live, nil
}

// ExportText writes the collection as a human-readable movie list.
func (s *Store) ExportText(c *Collection, w io.Writer) error {
	for _, m := range c.Movies {
		if _, err := fmt.Fprintf(w, "- %s (%d)\n", m.Title, m.Year); err != nil {
			return err
		}
	}
	return nil
}
