// Package importers converts third-party reading-tracker exports into
// canonical candidate book records.
//
// # Architecture
//
// Each export format gets its own parser:
//
//	raw text → format parser → []entities.BookInput → dedupe → caller
//
// Parsers are pure and deterministic. Malformed rows are dropped silently so
// a dirty export can still partially import; dates that cannot be parsed are
// omitted, never guessed. Every parser runs its output through
// dedupe.DedupeBookInputs before returning.
package importers

import (
	"regexp"
	"strings"
	"time"

	"github.com/readstack/readstack/internal/entities"
)

// noteSeparator joins note fragments collected from multiple source fields.
const noteSeparator = "\n\n---\n\n"

var isbnDigitsPattern = regexp.MustCompile(`[0-9Xx]+`)

// cleanISBN unwraps the spreadsheet-formula guard pattern `="..."` that
// Goodreads uses to stop Excel from eating leading zeros, and reduces the
// result to bare ISBN characters.
func cleanISBN(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "=")
	s = strings.Trim(s, `"`)
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	matches := isbnDigitsPattern.FindAllString(s, -1)
	joined := strings.ToUpper(strings.Join(matches, ""))
	if len(joined) < 10 {
		return ""
	}
	return joined
}

// splitAuthors builds the ordered author list from a primary author field
// and a comma-separated additional-authors field. Empty entries are dropped;
// when nothing remains the Unknown sentinel is used.
func splitAuthors(primary, additional string) []string {
	var authors []string
	if a := strings.TrimSpace(primary); a != "" {
		authors = append(authors, a)
	}
	for _, part := range strings.Split(additional, ",") {
		if a := strings.TrimSpace(part); a != "" {
			authors = append(authors, a)
		}
	}
	if len(authors) == 0 {
		authors = []string{entities.UnknownAuthor}
	}
	return authors
}

// groupKey is the composite consolidation key used by the Libby and
// Readwise importers: normalized core title plus normalized first author.
func groupKey(title, author string) string {
	return strings.ToLower(strings.TrimSpace(title)) + "|" + strings.ToLower(strings.TrimSpace(author))
}

// flexibleDateFormats covers the timestamp shapes seen across exports.
var flexibleDateFormats = []string{
	time.RFC3339,
	"2006-01-02 15:04:05-07:00",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"January 2, 2006",
	"Jan 2, 2006",
	"01/02/2006",
	"1/2/2006",
}

// parseFlexibleDate tries the known timestamp formats and returns the date
// truncated to YYYY-MM-DD. Unparseable input yields the empty string; a
// missing date is always preferable to a fabricated one.
func parseFlexibleDate(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	for _, layout := range flexibleDateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return ""
}

// joinNotes concatenates non-empty note fragments with the separator banner.
func joinNotes(fragments ...string) string {
	var kept []string
	for _, f := range fragments {
		if f = strings.TrimSpace(f); f != "" {
			kept = append(kept, f)
		}
	}
	return strings.Join(kept, noteSeparator)
}
