package importers

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/readstack/readstack/internal/dedupe"
	"github.com/readstack/readstack/internal/entities"
	"github.com/readstack/readstack/internal/tabular"
)

// Text pasted from the Kobo web library has no column delimiters: the fields
// of one book are contiguous lines, anchored by a trailing status+date line.
// Field attribution is pure content classification, implemented as an
// ordered chain of predicates (genre → series → author → title) so each
// rule stays independently testable.

var (
	// Anchor: a status fragment ending in a M/D/YYYY date.
	koboAnchorPattern = regexp.MustCompile(`^(.*?)\s*(\d{1,2}/\d{1,2}/\d{4})$`)

	koboProgressPattern = regexp.MustCompile(`(?i)^(\d{1,3})%\s*(read|played)$`)
	koboBuyNowPattern   = regexp.MustCompile(`(?i)^buy now\b`)

	// Series shapes: "Book 3", "... Series", "Vol. 2", "... Guide".
	koboSeriesPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bbook\s+\d+\b`),
		regexp.MustCompile(`(?i)\bseries\b`),
		regexp.MustCompile(`(?i)\bvol\.?\s*\d+\b`),
		regexp.MustCompile(`(?i)guide$`),
		regexp.MustCompile(`(?i)\btrilogy\b`),
		regexp.MustCompile(`#\d+`),
	}

	// Author shapes.
	koboCoAuthorSuffix    = regexp.MustCompile(`\s*\+\s*\d+$`)
	koboProfessionalName  = regexp.MustCompile(`(?i),?\s*(phd|md|m\.d\.|ph\.d\.|dr\.?|esq\.?)$`)
	koboTwoWordName       = regexp.MustCompile(`^[A-Z][\p{L}'.-]*\s+[A-Z][\p{L}'.-]*$`)
	koboCommaSeparatedRow = regexp.MustCompile(`^[A-Z][\p{L}'.-]*(\s+[A-Z][\p{L}'.-]*)+(,\s*[A-Z][\p{L}'.-]*(\s+[A-Z][\p{L}'.-]*)+)+$`)
)

// koboGenres is the fixed vocabulary used to recognize the genre line.
var koboGenres = map[string]bool{
	"fiction":          true,
	"nonfiction":       true,
	"non-fiction":      true,
	"mystery":          true,
	"romance":          true,
	"science fiction":  true,
	"sci-fi":           true,
	"fantasy":          true,
	"thriller":         true,
	"horror":           true,
	"biography":        true,
	"memoir":           true,
	"history":          true,
	"self-help":        true,
	"business":         true,
	"comics":           true,
	"graphic novels":   true,
	"young adult":      true,
	"children's books": true,
	"poetry":           true,
	"audiobooks":       true,
	"magazines":        true,
}

// maximum field lines collected per anchor when walking backwards.
const koboMaxFieldLines = 6

// ParseKoboList parses freeform text pasted from the Kobo web library table.
// Items the user does not own ("Buy Now", "Preview") are filtered out.
// Partial progress never maps to reading: a stale 40% is far more common
// than an active read, so everything short of 100% stays tbd.
func ParseKoboList(text string) []entities.BookInput {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	lines = dropKoboHeaderLines(lines)

	// Locate anchors first so the backward walks know where the previous
	// book ends.
	anchorIdx := make(map[int]bool)
	for i, line := range lines {
		if koboAnchorPattern.MatchString(strings.TrimSpace(line)) {
			anchorIdx[i] = true
		}
	}

	var candidates []entities.BookInput
	for i, raw := range lines {
		if !anchorIdx[i] {
			continue
		}
		m := koboAnchorPattern.FindStringSubmatch(strings.TrimSpace(raw))
		statusText := strings.TrimSpace(m[1])

		var collected []string // nearest-to-anchor first
		for j := i - 1; j >= 0 && len(collected) < koboMaxFieldLines; j-- {
			if anchorIdx[j] {
				break
			}
			line := strings.TrimSpace(lines[j])
			if line == "" || isKoboNoise(line) {
				continue
			}
			collected = append(collected, line)
		}

		book, ok := koboFieldsToBook(collected, statusText)
		if !ok {
			continue
		}
		candidates = append(candidates, book)
	}

	return dedupe.DedupeBookInputs(candidates)
}

// dropKoboHeaderLines removes leading column-header chrome ("Title",
// "Author", "Status"...) that the backward walk would otherwise sweep into
// the first book's field block. The probe stops at the first line that reads
// like data.
func dropKoboHeaderLines(lines []string) []string {
	start := 0
	for start < len(lines) {
		line := strings.TrimSpace(lines[start])
		if line == "" {
			start++
			continue
		}
		if !isKoboHeaderLine(line) {
			break
		}
		start++
	}
	return lines[start:]
}

func isKoboHeaderLine(line string) bool {
	// Real titles can contain header words ("The Status Game"); a header
	// cell is at most two words.
	if len(strings.Fields(line)) > 2 {
		return false
	}
	return tabular.LooksLikeHeader([]string{line}, "title", "author", "status", "progress", "genre", "series")
}

func isKoboNoise(line string) bool {
	// Ellipsis buttons and other non-text chrome.
	trimmed := strings.Trim(line, ".•·|-–— ")
	return trimmed == ""
}

// koboFieldsToBook classifies the collected field lines. The walk is
// anchor-outward: collected[0] is the line immediately above the status
// line, which is where the genre column lands in the pasted layout.
func koboFieldsToBook(collected []string, statusText string) (entities.BookInput, bool) {
	status, progress, owned := parseKoboStatus(statusText)
	if !owned {
		return entities.BookInput{}, false
	}

	var genre, author string
	var unclassified []string

	for idx, line := range collected {
		if idx == 0 && isKoboGenre(line) {
			genre = line
			continue
		}
		if isKoboSeries(line) {
			continue
		}
		if author == "" && isKoboAuthor(line) {
			author = cleanKoboAuthor(line)
			continue
		}
		unclassified = append(unclassified, line)
	}

	// The title is the furthest unclassified line from the anchor, i.e. the
	// top line of the book's block.
	var title string
	if len(unclassified) > 0 {
		title = unclassified[len(unclassified)-1]
	} else if author != "" && len(collected) > 0 {
		// Known fuzzy fallback: everything classified away, reuse the last
		// collected line as title unless it is the author itself.
		last := collected[len(collected)-1]
		if cleanKoboAuthor(last) != author {
			title = last
		}
	}

	if title == "" || author == "" {
		return entities.BookInput{}, false
	}

	book := entities.BookInput{
		Title:    title,
		Authors:  splitAuthors(author, ""),
		Status:   status,
		Progress: progress,
		Source:   entities.SourceKobo,
	}
	if genre != "" {
		book.Genres = []string{genre}
	}
	return book, true
}

// parseKoboStatus interprets the status fragment preceding the anchor date.
// owned=false marks store items ("Buy Now ...", "Preview") that must be
// excluded entirely.
func parseKoboStatus(text string) (status entities.Status, progress int, owned bool) {
	switch {
	case koboBuyNowPattern.MatchString(text):
		return "", 0, false
	case strings.EqualFold(text, "preview"):
		return "", 0, false
	}

	if m := koboProgressPattern.FindStringSubmatch(text); m != nil {
		progress, _ = strconv.Atoi(m[1])
		if progress == 100 {
			return entities.StatusFinished, progress, true
		}
		return entities.StatusTBD, progress, true
	}

	// unread / unplayed / empty all mean owned-but-untouched.
	return entities.StatusTBD, 0, true
}

func isKoboGenre(line string) bool {
	return koboGenres[strings.ToLower(strings.TrimSpace(line))]
}

func isKoboSeries(line string) bool {
	for _, p := range koboSeriesPatterns {
		if p.MatchString(line) {
			return true
		}
	}
	return false
}

func isKoboAuthor(line string) bool {
	stripped := koboCoAuthorSuffix.ReplaceAllString(line, "")
	if koboProfessionalName.MatchString(stripped) {
		return true
	}
	if stripped != line {
		// A "+N" co-author suffix is a strong author signal by itself.
		return true
	}
	if koboCommaSeparatedRow.MatchString(stripped) {
		return true
	}
	return koboTwoWordName.MatchString(stripped)
}

func cleanKoboAuthor(line string) string {
	return strings.TrimSpace(koboCoAuthorSuffix.ReplaceAllString(line, ""))
}
