package catalog

import (
	"fmt"
	"sort"
	"strings"
)

// Collection is a named, ordered list of unique movies. Uniqueness is by
// movie identity, so adding "the matrix" to a collection holding
// "The Matrix" is a no-op.
type Collection struct {
	Name   string
	Movies []Movie
}

// NewCollection validates the name and creates an empty collection.
func NewCollection(name string) (*Collection, error) {
	clean, err := Sanitize(name, NameLimit)
	if err != nil {
		return nil, fmt.Errorf("invalid collection name: %w", err)
	}
	return &Collection{Name: clean}, nil
}

// Add appends a movie unless an equal one is already present. It reports
// whether the movie was added.
func (c *Collection) Add(m Movie) bool {
	if c.Contains(m) {
		return false
	}
	c.Movies = append(c.Movies, m)
	return true
}

// Contains reports whether an equal movie is already in the collection.
func (c *Collection) Contains(m Movie) bool {
	for _, have := range c.Movies {
		if have.Equal(m) {
			return true
		}
	}
	return false
}

// Remove deletes the movie with the same identity, reporting whether one
// was found. The movie's cache entry is untouched; orphan cleanup is the
// reconciler's job.
func (c *Collection) Remove(m Movie) bool {
	for i, have := range c.Movies {
		if have.Equal(m) {
			c.Movies = append(c.Movies[:i], c.Movies[i+1:]...)
			return true
		}
	}
	return false
}

// Replace swaps the movie equal to old for updated, keeping list order.
// Used after a rename, where the identity itself changes.
func (c *Collection) Replace(old, updated Movie) bool {
	for i, have := range c.Movies {
		if have.Equal(old) {
			c.Movies[i] = updated
			return true
		}
	}
	return false
}

// Sort orders the movies by case-folded title.
func (c *Collection) Sort() {
	sort.SliceStable(c.Movies, func(i, j int) bool {
		return strings.ToLower(c.Movies[i].Title) < strings.ToLower(c.Movies[j].Title)
	})
}

// Rename validates and applies a new collection name. The on-disk file, if
// any, is moved by Store.Rename, not here.
func (c *Collection) Rename(newName string) error {
	clean, err := Sanitize(newName, NameLimit)
	if err != nil {
		return fmt.Errorf("invalid collection name: %w", err)
	}
	c.Name = clean
	return nil
}

// String implements fmt.Stringer.
func (c *Collection) String() string {
	return c.Name
}
