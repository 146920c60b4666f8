package scrape

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marco/cinelog/internal/cache"
)

// fastOptions keeps the courtesy and pacing sleeps out of test time.
func fastOptions() Options {
	return Options{
		Timeout:        2 * time.Second,
		CourtesyDelay:  time.Millisecond,
		PacingDelay:    time.Millisecond,
		MaxAttempts:    1,
		InitialBackoff: time.Millisecond,
	}
}

// stubSources points every provider at the one test server.
func stubSources(baseURL string) Sources {
	return Sources{
		ImpAwards:    baseURL,
		PosterDB:     baseURL,
		CineMaterial: baseURL,
		Wikipedia:    baseURL,
		YouTube:      baseURL,
		TasteDive:    baseURL,
	}
}

func readFile(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}

func posterJPEG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 400, 600))
	for y := 0; y < 600; y++ {
		for x := 0; x < 400; x++ {
			img.Set(x, y, color.RGBA{R: 10, G: 10, B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func TestFetchPosterWritesFromCandidate(t *testing.T) {
	poster := posterJPEG(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/1999/posters/matrix_ver3.jpg" {
			w.Write(poster)
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	store, err := cache.NewStore(t.TempDir())
	require.NoError(t, err)
	s := New(store, nil, stubSources(srv.URL), fastOptions())

	m := testMovie(t, "The Matrix", 1999)
	require.NoError(t, s.FetchPoster(context.Background(), m, false))

	require.True(t, store.HasPoster("matrix"))
	rec, _, err := image.DecodeConfig(bytes.NewReader(readFile(t, store.PosterPath("matrix"))))
	require.NoError(t, err)
	assert.Equal(t, cache.PosterWidth, rec.Width)
	assert.Equal(t, cache.PosterHeight, rec.Height)
}

func TestFetchPosterExhaustionLeavesNoFile(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	store, err := cache.NewStore(t.TempDir())
	require.NoError(t, err)
	s := New(store, nil, stubSources(srv.URL), fastOptions())

	m := testMovie(t, "The Matrix", 1999)
	require.NoError(t, s.FetchPoster(context.Background(), m, false),
		"running out of candidates is terminal success")
	assert.False(t, store.HasPoster("matrix"))
}

func TestFetchPosterSkipsWhenCached(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	store, err := cache.NewStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.WritePoster("matrix", posterJPEG(t)))

	s := New(store, nil, stubSources(srv.URL), fastOptions())
	require.NoError(t, s.FetchPoster(context.Background(), testMovie(t, "The Matrix", 1999), false))
	assert.Zero(t, hits.Load(), "a cached poster must not trigger network traffic")
}

func TestFetchPosterOverrideRefetches(t *testing.T) {
	poster := posterJPEG(t)
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if strings.HasSuffix(r.URL.Path, "/posters/matrix.jpg") {
			w.Write(poster)
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	store, err := cache.NewStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.WritePoster("matrix", posterJPEG(t)))

	s := New(store, nil, stubSources(srv.URL), fastOptions())
	require.NoError(t, s.FetchPoster(context.Background(), testMovie(t, "The Matrix", 1999), true))
	assert.Positive(t, hits.Load(), "override must go back to the sources")
	assert.True(t, store.HasPoster("matrix"))
}

func TestFetchInfoAssemblesRecord(t *testing.T) {
	extract := "Inception is a 2010 science fiction action film written and directed by Christopher Nolan. " +
		"A thief infiltrates dreams. He is offered a clean slate. The cast is large."

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/api/rest_v1/page/summary/"):
			if !strings.HasSuffix(r.URL.Path, "/Inception 2010") {
				http.NotFound(w, r)
				return
			}
			fmt.Fprintf(w, `{"title": "Inception", "type": "standard", "extract": %q}`, extract)
		case strings.HasPrefix(r.URL.Path, "/api/rest_v1/page/html/"):
			fmt.Fprint(w, `<table><tbody><tr><th>Starring</th><td><ul>
                <li><a>Leonardo DiCaprio</a></li>
                <li>Elliot Page</li>
            </ul></td></tr></tbody></table>`)
		case r.URL.Path == "/results":
			fmt.Fprint(w, `watch?v=YoHD9XEInc0`)
		case r.URL.Path == "/2010/inception.html":
			fmt.Fprint(w, `<div class="rightsidesmallbordered">
                <a href="https://www.imdb.com/title/tt1375666">IMDb</a>
            </div>`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	store, err := cache.NewStore(t.TempDir())
	require.NoError(t, err)
	s := New(store, nil, stubSources(srv.URL), fastOptions())

	require.NoError(t, s.FetchInfo(context.Background(), testMovie(t, "Inception", 2010)))

	rec, ok := store.ReadMetadata("inception")
	require.True(t, ok)

	assert.Equal(t, "Inception", rec.Title)
	assert.Equal(t,
		"Inception is a 2010 science fiction action film written and directed by Christopher Nolan. "+
			"A thief infiltrates dreams. He is offered a clean slate.",
		rec.Summary)
	assert.Equal(t, []string{"Elliot Page", "Leonardo DiCaprio"}, rec.Actors)
	assert.Equal(t, []string{"Action", "Science Fiction"}, rec.Genre)
	assert.Equal(t, srv.URL+"/embed/YoHD9XEInc0", rec.Trailer)
	assert.Equal(t, "https://www.imdb.com/title/tt1375666/", rec.IMDb)
}

func TestFetchInfoRetriesWithFilmQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/Solaris film"):
			fmt.Fprint(w, `{"title": "Solaris (film)", "type": "standard",
                "extract": "Solaris is a film. It is slow. It is beautiful."}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	store, err := cache.NewStore(t.TempDir())
	require.NoError(t, err)
	s := New(store, nil, stubSources(srv.URL), fastOptions())

	require.NoError(t, s.FetchInfo(context.Background(), testMovie(t, "Solaris", 1972)))

	rec, ok := store.ReadMetadata("solaris")
	require.True(t, ok)
	assert.Equal(t, "Solaris (film)", rec.Title)
	assert.Equal(t, "Solaris is a film. It is slow. It is beautiful.", rec.Summary)
}

func TestFetchInfoTimeoutAbandonsLookup(t *testing.T) {
	var summaryHits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/rest_v1/page/summary/") {
			summaryHits.Add(1)
			time.Sleep(300 * time.Millisecond)
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	opts := fastOptions()
	opts.Timeout = 50 * time.Millisecond

	store, err := cache.NewStore(t.TempDir())
	require.NoError(t, err)
	s := New(store, nil, stubSources(srv.URL), opts)

	require.NoError(t, s.FetchInfo(context.Background(), testMovie(t, "Solaris", 1972)))

	assert.Equal(t, int64(1), summaryHits.Load(),
		"a hard timeout abandons the lookup, no refined-query retry")

	rec, ok := store.ReadMetadata("solaris")
	require.True(t, ok)
	assert.Equal(t, "Solaris (1972)", rec.Title)
	assert.Equal(t, cache.DefaultSummary, rec.Summary)
}

func TestFetchInfoDegradesToDefaults(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	store, err := cache.NewStore(t.TempDir())
	require.NoError(t, err)
	s := New(store, nil, stubSources(srv.URL), fastOptions())

	require.NoError(t, s.FetchInfo(context.Background(), testMovie(t, "Obscure Film", 1963)))

	rec, ok := store.ReadMetadata("obscure_film")
	require.True(t, ok, "total source failure still writes a complete record")
	assert.Equal(t, "Obscure Film (1963)", rec.Title)
	assert.Equal(t, cache.DefaultSummary, rec.Summary)
	assert.Empty(t, rec.Actors)
	assert.NotNil(t, rec.Actors)
	assert.Empty(t, rec.Trailer)
	assert.Empty(t, rec.IMDb)
}

func TestFetchInfoSticky(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	store, err := cache.NewStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.WriteMetadata("inception", cache.DefaultRecord("Inception", 2010)))

	s := New(store, nil, stubSources(srv.URL), fastOptions())
	require.NoError(t, s.FetchInfo(context.Background(), testMovie(t, "Inception", 2010)))
	assert.Zero(t, hits.Load(), "an existing record must not trigger a refetch")
}
