package scrape

import (
	"reflect"
	"testing"
)

func TestInferGenres(t *testing.T) {
	testCases := []struct {
		name    string
		summary string
		title   string
		want    []string
	}{
		{
			name:    "keyword match",
			summary: "A science fiction thriller about dreams. It was a hit.",
			title:   "Inception",
			want:    []string{"Science Fiction", "Thriller"},
		},
		{
			name:    "synonym match",
			summary: "A sci-fi whodunit set on a mining station.",
			title:   "Outland",
			want:    []string{"Mystery", "Science Fiction"},
		},
		{
			name:    "only the first sentence counts",
			summary: "A quiet family portrait. It later turns into a supernatural horror spectacle.",
			title:   "Hereditary",
			want:    nil,
		},
		{
			name:    "title words cannot trigger a match",
			summary: "War Horse follows a farm boy and his horse.",
			title:   "War Horse",
			want:    nil,
		},
		{
			name:    "no matches",
			summary: "A man walks across Aruba.",
			title:   "The Walk",
			want:    nil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := InferGenres(tc.summary, tc.title)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("InferGenres(%q, %q) = %v, want %v", tc.summary, tc.title, got, tc.want)
			}
		})
	}
}
