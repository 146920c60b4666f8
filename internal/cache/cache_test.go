package cache

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)
	return s
}

// testImage renders a small solid-color image in the given encoding.
func testImage(t *testing.T, format string, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 30, B: 30, A: 255})
		}
	}
	var buf bytes.Buffer
	switch format {
	case "png":
		require.NoError(t, png.Encode(&buf, img))
	default:
		require.NoError(t, jpeg.Encode(&buf, img, nil))
	}
	return buf.Bytes()
}

func TestMetadataRoundTrip(t *testing.T) {
	s := newTestStore(t)

	rec := Record{
		Title:   "Inception (2010)",
		Summary: "A thief who steals corporate secrets.",
		Actors:  []string{"Elliot Page", "Leonardo DiCaprio"},
		Genre:   []string{"Science Fiction", "Thriller"},
		Trailer: "https://www.youtube.com/embed/YoHD9XEInc0",
		IMDb:    "https://www.imdb.com/title/tt1375666/",
	}
	require.NoError(t, s.WriteMetadata("inception", rec))

	assert.True(t, s.Exists("inception"))
	assert.True(t, s.HasMetadata("inception"))
	assert.False(t, s.HasPoster("inception"))

	got, ok := s.ReadMetadata("inception")
	require.True(t, ok)
	assert.Equal(t, rec, got)
}

func TestDefaultRecord(t *testing.T) {
	rec := DefaultRecord("The Matrix", 1999)

	assert.Equal(t, "The Matrix (1999)", rec.Title)
	assert.Equal(t, DefaultSummary, rec.Summary)
	// Empty but non-nil, so the persisted JSON carries [] rather than null.
	assert.NotNil(t, rec.Actors)
	assert.NotNil(t, rec.Genre)
	assert.Empty(t, rec.Actors)
	assert.Empty(t, rec.Genre)
}

func TestWritePosterNormalizes(t *testing.T) {
	s := newTestStore(t)

	for _, format := range []string{"jpeg", "png"} {
		raw := testImage(t, format, 800, 1200)
		require.NoError(t, s.WritePoster("matrix", raw))

		data, err := os.ReadFile(s.PosterPath("matrix"))
		require.NoError(t, err)

		img, kind, err := image.Decode(bytes.NewReader(data))
		require.NoError(t, err)
		assert.Equal(t, "jpeg", kind, "poster is always persisted as JPEG")
		assert.Equal(t, PosterWidth, img.Bounds().Dx())
		assert.Equal(t, PosterHeight, img.Bounds().Dy())
	}
}

func TestWritePosterRejectsGarbage(t *testing.T) {
	s := newTestStore(t)

	assert.Error(t, s.WritePoster("matrix", []byte("<html>not found</html>")))
	assert.Error(t, s.WritePoster("matrix", nil))
	assert.False(t, s.HasPoster("matrix"), "a failed write must leave no poster behind")
}

func TestSetLocalPoster(t *testing.T) {
	s := newTestStore(t)

	src := filepath.Join(t.TempDir(), "holiday.png")
	require.NoError(t, os.WriteFile(src, testImage(t, "png", 640, 480), 0644))

	require.NoError(t, s.SetLocalPoster("matrix", src))

	data, err := os.ReadFile(s.PosterPath("matrix"))
	require.NoError(t, err)
	img, _, err := image.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, PosterWidth, img.Bounds().Dx())
	assert.Equal(t, PosterHeight, img.Bounds().Dy())
}

func TestDeleteIsIdempotent(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.WriteMetadata("matrix", DefaultRecord("The Matrix", 1999)))
	require.NoError(t, s.Delete("matrix"))
	assert.False(t, s.Exists("matrix"))
	require.NoError(t, s.Delete("matrix"))
}

func TestMoveMigratesEntry(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.WriteMetadata("matrix", DefaultRecord("The Matrix", 1999)))
	require.NoError(t, s.WritePoster("matrix", testImage(t, "jpeg", 400, 600)))

	require.NoError(t, s.Move("matrix", "matrix_reloaded"))

	assert.False(t, s.Exists("matrix"))
	assert.True(t, s.HasMetadata("matrix_reloaded"))
	assert.True(t, s.HasPoster("matrix_reloaded"))

	// Moving an absent key or onto itself is a no-op.
	require.NoError(t, s.Move("ghost", "elsewhere"))
	require.NoError(t, s.Move("matrix_reloaded", "matrix_reloaded"))
	assert.True(t, s.Exists("matrix_reloaded"))
}

func TestKeys(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.WriteMetadata("zulu", DefaultRecord("Zulu", 1964)))
	require.NoError(t, s.WriteMetadata("alien", DefaultRecord("Alien", 1979)))
	// A stray file in the root is not an entry.
	require.NoError(t, os.WriteFile(filepath.Join(s.Root(), "notes.txt"), []byte("x"), 0644))

	keys, err := s.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"alien", "zulu"}, keys)
}

func TestAllActors(t *testing.T) {
	s := newTestStore(t)

	recA := DefaultRecord("Heat", 1995)
	recA.Actors = []string{"Val Kilmer", "Al Pacino", "Robert De Niro"}
	recB := DefaultRecord("The Irishman", 2019)
	recB.Actors = []string{"Robert De Niro", "Joe Pesci"}

	require.NoError(t, s.WriteMetadata("heat", recA))
	require.NoError(t, s.WriteMetadata("irishman", recB))

	actors, err := s.AllActors()
	require.NoError(t, err)
	assert.Equal(t, []string{"Al Pacino", "Joe Pesci", "Robert De Niro", "Val Kilmer"}, actors)
}

func TestClearOrphans(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.WriteMetadata("matrix", DefaultRecord("The Matrix", 1999)))
	require.NoError(t, s.WriteMetadata("heat", DefaultRecord("Heat", 1995)))
	require.NoError(t, s.WriteMetadata("ghost", DefaultRecord("Ghost", 1990)))

	live := map[string]struct{}{
		"matrix": {},
		"heat":   {},
	}
	removed, err := s.ClearOrphans(live)
	require.NoError(t, err)

	assert.Equal(t, []string{"ghost"}, removed)
	assert.False(t, s.Exists("ghost"))
	assert.True(t, s.Exists("matrix"))
	assert.True(t, s.Exists("heat"))

	// A second pass over a clean cache removes nothing.
	removed, err = s.ClearOrphans(live)
	require.NoError(t, err)
	assert.Empty(t, removed)
}

func TestClearOrphansEmptyLiveSet(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.WriteMetadata("matrix", DefaultRecord("The Matrix", 1999)))

	removed, err := s.ClearOrphans(map[string]struct{}{})
	require.NoError(t, err)
	assert.Equal(t, []string{"matrix"}, removed)

	keys, err := s.Keys()
	require.NoError(t, err)
	assert.Empty(t, keys)
}
