// Package catalog holds the movie and collection domain model: validation,
// the derived storage identity used as cache key, and JSON persistence of
// collections.
package catalog

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

const (
	// TitleLimit is the maximum length of a movie title.
	TitleLimit = 60
	// NameLimit is the maximum length of a collection name.
	NameLimit = 25

	minTitleLen = 2
	minYear     = 1900
)

// Rating is a user rating on a fixed six-symbol scale. "-" means unrated.
type Rating string

const Unrated Rating = "-"

var ratingStars = map[Rating]string{
	Unrated: "☆☆☆☆☆",
	"1":     "★☆☆☆☆",
	"2":     "★★☆☆☆",
	"3":     "★★★☆☆",
	"4":     "★★★★☆",
	"5":     "★★★★★",
}

// ParseRating validates a rating symbol.
func ParseRating(s string) (Rating, error) {
	if s == "" {
		return Unrated, nil
	}
	r := Rating(s)
	if _, ok := ratingStars[r]; !ok {
		return Unrated, fmt.Errorf("unknown rating %q", s)
	}
	return r, nil
}

// Stars renders the rating as a five-star string.
func (r Rating) Stars() string {
	if s, ok := ratingStars[r]; ok {
		return s
	}
	return ratingStars[Unrated]
}

var (
	onlySpacesRE = regexp.MustCompile(`^ +$`)
	// Non-word in any script: a title is usable as soon as it carries one
	// letter, digit, or underscore, whether Latin, Cyrillic, or CJK.
	onlySpecialRE = regexp.MustCompile(`^[^\p{L}\p{N}_]+$`)
)

// pathHostile are the characters stripped from titles and collection names.
const pathHostile = `/\:;"`

// Sanitize validates and cleans a movie title or collection name. It rejects
// names that are empty, whitespace-only, composed solely of non-word
// characters, or longer than limit, then strips path-hostile characters and
// trims surrounding whitespace. Sanitize is idempotent on its own output.
func Sanitize(name string, limit int) (string, error) {
	switch {
	case name == "":
		return "", fmt.Errorf("name cannot be empty")
	case onlySpacesRE.MatchString(name):
		return "", fmt.Errorf("name cannot contain only spaces")
	case onlySpecialRE.MatchString(name):
		return "", fmt.Errorf("name cannot contain only special characters")
	case len([]rune(name)) > limit:
		return "", fmt.Errorf("name cannot exceed %d characters", limit)
	}

	cleaned := name
	for _, c := range pathHostile {
		cleaned = strings.ReplaceAll(cleaned, string(c), "")
	}
	cleaned = strings.TrimSpace(cleaned)

	if cleaned == "" {
		return "", fmt.Errorf("name %q contains nothing usable", name)
	}
	return cleaned, nil
}

// DeriveStorageKey derives the canonical cache-directory name for a title:
// lowercase, whitespace runs collapsed to single underscores, and a leading
// "the_" segment stripped. The key is stable under case and internal
// whitespace variation, so "The Matrix" and "the  matrix" share one key.
func DeriveStorageKey(title string) string {
	key := strings.Join(strings.Fields(strings.ToLower(title)), "_")
	key = strings.TrimPrefix(key, "the_")
	return key
}

// Movie is one owned film. Identity is (storage key, year): two movies whose
// titles differ only in casing or spacing are the same movie.
type Movie struct {
	Title  string
	Year   int
	Path   string // optional local video file; owned by the user, never touched
	Rating Rating
}

// NewMovie validates raw input and builds a Movie. Title is sanitized and
// must be 2-60 characters; year must lie in [1900, current year + 5].
func NewMovie(title string, year int, path string, rating string) (Movie, error) {
	if len([]rune(title)) < minTitleLen {
		return Movie{}, fmt.Errorf("title must be at least %d characters long", minTitleLen)
	}
	clean, err := Sanitize(title, TitleLimit)
	if err != nil {
		return Movie{}, fmt.Errorf("invalid title: %w", err)
	}
	maxYear := time.Now().Year() + 5
	if year < minYear || year > maxYear {
		return Movie{}, fmt.Errorf("year must be between %d and %d", minYear, maxYear)
	}
	r, err := ParseRating(rating)
	if err != nil {
		return Movie{}, err
	}
	return Movie{Title: clean, Year: year, Path: path, Rating: r}, nil
}

// StorageKey returns the movie's cache-directory name.
func (m Movie) StorageKey() string {
	return DeriveStorageKey(m.Title)
}

// SetRating validates and applies a rating symbol.
func (m *Movie) SetRating(s string) error {
	r, err := ParseRating(s)
	if err != nil {
		return err
	}
	m.Rating = r
	return nil
}

// Equal reports whether two movies share the same identity.
func (m Movie) Equal(other Movie) bool {
	return m.StorageKey() == other.StorageKey() && m.Year == other.Year
}

// Rename validates the new title and returns the updated movie together with
// the old and new storage keys, so the caller can migrate the cache entry.
func (m Movie) Rename(newTitle string) (Movie, string, string, error) {
	renamed, err := NewMovie(newTitle, m.Year, m.Path, string(m.Rating))
	if err != nil {
		return m, "", "", err
	}
	return renamed, m.StorageKey(), renamed.StorageKey(), nil
}

// String implements fmt.Stringer.
func (m Movie) String() string {
	return fmt.Sprintf("%s (%d)", m.Title, m.Year)
}

// officialCleanups are applied in order to a raw official title pulled from
// a metadata source, removing "(film)" qualifiers and normalizing leftovers.
var officialCleanups = [][2]string{
	{"(film)", ""},
	{"film", ""},
	{" )", ")"},
	{"( ", "("},
	{"()", ""},
	{"/", ""},
	{"\\", ""},
	{": ", " - "},
	{"  ", " "},
}

// OfficialTitle cleans a raw official title from a metadata record. When raw
// is empty it falls back to a title-cased rendering of the user's title.
func (m Movie) OfficialTitle(raw string) string {
	if raw == "" {
		return TitleCase(m.Title)
	}
	for _, pair := range officialCleanups {
		raw = strings.ReplaceAll(raw, pair[0], pair[1])
	}
	return strings.TrimSpace(raw)
}

// TitleCase capitalizes the first letter of each word.
func TitleCase(s string) string {
	words := strings.Fields(s)
	for i, word := range words {
		runes := []rune(word)
		words[i] = strings.ToUpper(string(runes[0])) + strings.ToLower(string(runes[1:]))
	}
	return strings.Join(words, " ")
}
