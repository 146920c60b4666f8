package scrape

import (
	"sort"
	"strings"

	"github.com/marco/cinelog/internal/catalog"
)

// genreKeywords maps each canonical genre keyword to one synonym. A genre
// is inferred when either form appears in the summary's opening sentence.
// The vocabulary is fixed: tags come from here, never from source sites.
var genreKeywords = map[string]string{
	"action":          "spy",
	"adventure":       "quest",
	"animation":       "animated",
	"comedy":          "comedic",
	"crime":           "heist",
	"documentary":     "docudrama",
	"drama":           "tragedy",
	"experimental":    "avant-garde",
	"fantasy":         "sword and sorcery",
	"historical":      "period drama",
	"horror":          "supernatural",
	"martial arts":    "kung fu",
	"mystery":         "whodunit",
	"romance":         "romantic",
	"science fiction": "sci-fi",
	"thriller":        "suspense",
	"war":             "wartime",
	"western":         "frontier",
}

// InferGenres derives genre tags from a summary: the first sentence is
// lowercased, the movie title substring is stripped out so the title's own
// words cannot trigger false matches, and what remains is tested against
// the keyword dictionary. Zero matches is a valid result.
func InferGenres(summary, title string) []string {
	sentence := strings.ToLower(strings.SplitN(summary, ".", 2)[0])
	sentence = strings.ReplaceAll(sentence, strings.ToLower(title), "")

	var genres []string
	for keyword, synonym := range genreKeywords {
		if strings.Contains(sentence, keyword) || strings.Contains(sentence, synonym) {
			genres = append(genres, catalog.TitleCase(keyword))
		}
	}
	sort.Strings(genres)
	return genres
}
