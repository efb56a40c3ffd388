package importers

import (
	"regexp"
	"strings"

	"github.com/readstack/readstack/internal/dedupe"
	"github.com/readstack/readstack/internal/entities"
	"github.com/readstack/readstack/internal/tabular"
)

// Column layout of the Readwise CSV export: one row per highlight.
const (
	rwColHighlight     = 0
	rwColTitle         = 1
	rwColAuthor        = 2
	rwColExternalID    = 3
	rwColNote          = 4
	rwColColor         = 5
	rwColTags          = 6
	rwColLocationType  = 7
	rwColLocation      = 8
	rwColHighlightedAt = 9
	rwColDocumentTags  = 10

	readwiseColumnCount = 11
)

var (
	rwURLPattern      = regexp.MustCompile(`(?i)^(https?://|www\.)`)
	rwSpeakerPattern  = regexp.MustCompile(`(?i)^speaker\s*\d*\s*:?\s*$`)
	rwTimecodePattern = regexp.MustCompile(`^\d{1,2}:\d{2}`)

	// Conservative podcast cues; anything not matching stays a book.
	rwPodcastAuthorCues = []string{"podcast", "uploads", "private feed"}
)

// rwBundle accumulates all highlight rows belonging to one source document.
type rwBundle struct {
	title      string
	author     string
	externalID string
	highlights []string
	notes      []string
	tags       []string
	tagSeen    map[string]bool
	latestDate string // ISO, lexicographic max
}

// ParseReadwiseCSV converts a Readwise highlights export into candidate
// books. The presence of a highlight implies completed engagement, so every
// candidate comes out finished.
func ParseReadwiseCSV(text string) []entities.BookInput {
	rows := tabular.Parse(text)

	bundles := make(map[string]*rwBundle)
	var order []string

	for i, row := range rows {
		if i == 0 {
			continue
		}
		if len(row) < readwiseColumnCount {
			continue
		}
		title := strings.TrimSpace(row[rwColTitle])
		author := strings.TrimSpace(row[rwColAuthor])
		if title == "" || author == "" {
			continue
		}
		if isReadwiseGarbageTitle(title) {
			continue
		}

		key := groupKey(title, firstReadwiseAuthor(author))
		b, ok := bundles[key]
		if !ok {
			b = &rwBundle{title: title, author: author, tagSeen: map[string]bool{}}
			bundles[key] = b
			order = append(order, key)
		}

		if b.externalID == "" {
			b.externalID = strings.TrimSpace(row[rwColExternalID])
		}
		if h := strings.TrimSpace(row[rwColHighlight]); h != "" {
			b.highlights = append(b.highlights, h)
		}
		if n := strings.TrimSpace(row[rwColNote]); n != "" {
			b.notes = append(b.notes, n)
		}
		b.addTags(row[rwColTags])
		b.addTags(row[rwColDocumentTags])

		if d := parseFlexibleDate(row[rwColHighlightedAt]); d > b.latestDate {
			b.latestDate = d
		}
	}

	var candidates []entities.BookInput
	for _, key := range order {
		candidates = append(candidates, readwiseBundleToBook(bundles[key]))
	}

	return dedupe.DedupeBookInputs(candidates)
}

func (b *rwBundle) addTags(raw string) {
	for _, part := range strings.Split(raw, ",") {
		tag := strings.Trim(strings.TrimSpace(part), ".")
		if tag == "" || b.tagSeen[tag] {
			continue
		}
		b.tagSeen[tag] = true
		b.tags = append(b.tags, tag)
	}
}

func readwiseBundleToBook(b *rwBundle) entities.BookInput {
	book := entities.BookInput{
		Title:        b.title,
		Authors:      splitAuthors(b.author, ""),
		Status:       entities.StatusFinished,
		Source:       entities.SourceReadwise,
		SourceID:     b.externalID,
		Highlights:   b.highlights,
		Tags:         b.tags,
		Notes:        joinNotes(b.notes...),
		DateAdded:    b.latestDate,
		DateFinished: b.latestDate,
	}

	if looksLikePodcast(b.title, b.author) {
		book = entities.Reclassify(book, entities.LabelPodcast)
	}

	return book
}

// isReadwiseGarbageTitle filters rows whose title is a transcript fragment,
// a speaker label, a bare URL, or too short to be a real title.
func isReadwiseGarbageTitle(title string) bool {
	if len(title) < 3 {
		return true
	}
	if rwURLPattern.MatchString(title) {
		return true
	}
	if rwSpeakerPattern.MatchString(title) {
		return true
	}
	if rwTimecodePattern.MatchString(title) {
		return true
	}
	return strings.Contains(strings.ToLower(title), "transcript")
}

// looksLikePodcast is the conservative heuristic flag. A definitive answer
// needs the external classification collaborator; by default everything
// stays classified as a book.
func looksLikePodcast(title, author string) bool {
	loweredAuthor := strings.ToLower(author)
	for _, cue := range rwPodcastAuthorCues {
		if strings.Contains(loweredAuthor, cue) {
			return true
		}
	}
	return strings.Contains(title, " | ")
}

func firstReadwiseAuthor(author string) string {
	if idx := strings.IndexAny(author, ",;"); idx >= 0 {
		return strings.TrimSpace(author[:idx])
	}
	return author
}
