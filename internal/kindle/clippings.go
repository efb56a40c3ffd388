// Package kindle parses the Kindle "My Clippings.txt" log.
//
// Unlike the CSV importers this parser does not emit candidate books: its
// output is a set of per-book highlight bundles that are matched against the
// existing library by title and merged into the matched book's highlights.
package kindle

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/readstack/readstack/internal/entities"
)

// Entry types in Kindle clippings.
type entryType string

const (
	entryTypeHighlight entryType = "highlight"
	entryTypeNote      entryType = "note"
	entryTypeBookmark  entryType = "bookmark"
)

const entrySeparator = "=========="

var (
	// Matches: "- Your Highlight on page 8 | Location 64-64 | Added on ..."
	// or: "- Your Note on page 31 | ..." or "- Your Bookmark at location 346 | ..."
	metadataPattern = regexp.MustCompile(`^- Your (Highlight|Note|Bookmark)`)

	// Title with author: "Book Title (Author Name)". Some books carry no
	// author parenthetical at all.
	titleAuthorPattern = regexp.MustCompile(`^(.+?)\s*\(([^)]+)\)\s*$`)
)

// clippingEntry is a single parsed entry from My Clippings.txt.
type clippingEntry struct {
	Title  string
	Author string
	Type   entryType
	Text   string
}

// Bundle collects every highlight and note clipped from one book,
// duplicate content suppressed, input order preserved.
type Bundle struct {
	Title      string
	Author     string
	Highlights []string
	Notes      []string
}

// Parser parses the Kindle My Clippings.txt format.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

// Parse reads a clippings file and returns per-book bundles in first-seen
// order. Bookmarks and empty-content entries are discarded outright.
func (p *Parser) Parse(r io.Reader) ([]Bundle, error) {
	entries, err := p.parseEntries(r)
	if err != nil {
		return nil, err
	}
	return groupEntries(entries), nil
}

func (p *Parser) parseEntries(r io.Reader) ([]clippingEntry, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var entries []clippingEntry
	var currentLines []string

	flush := func() {
		if len(currentLines) == 0 {
			return
		}
		if entry, ok := parseEntry(currentLines); ok {
			entries = append(entries, entry)
		}
		currentLines = nil
	}

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == entrySeparator {
			flush()
			continue
		}
		currentLines = append(currentLines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading clippings: %w", err)
	}

	// Last entry when the file does not end with a separator.
	flush()

	return entries, nil
}

func parseEntry(lines []string) (clippingEntry, bool) {
	if len(lines) < 2 {
		return clippingEntry{}, false
	}

	titleLine := strings.TrimSpace(lines[0])
	if titleLine == "" {
		return clippingEntry{}, false
	}
	title, author := parseTitleAuthor(titleLine)

	metadataLine := strings.TrimSpace(lines[1])
	if !metadataPattern.MatchString(metadataLine) {
		return clippingEntry{}, false
	}
	typ := parseEntryType(metadataLine)

	// Bookmarks have no textual content to preserve.
	if typ == entryTypeBookmark {
		return clippingEntry{}, false
	}

	text := strings.TrimSpace(strings.Join(lines[2:], "\n"))
	if text == "" {
		return clippingEntry{}, false
	}

	return clippingEntry{Title: title, Author: author, Type: typ, Text: text}, true
}

func parseTitleAuthor(line string) (title, author string) {
	if m := titleAuthorPattern.FindStringSubmatch(line); len(m) == 3 {
		return strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
	}
	return strings.TrimSpace(line), ""
}

func parseEntryType(line string) entryType {
	lower := strings.ToLower(line)
	switch {
	case strings.Contains(lower, "your note"):
		return entryTypeNote
	case strings.Contains(lower, "your bookmark"):
		return entryTypeBookmark
	default:
		return entryTypeHighlight
	}
}

// groupEntries buckets entries by normalized title, suppressing exact
// duplicate content within each bucket.
func groupEntries(entries []clippingEntry) []Bundle {
	byTitle := make(map[string]*Bundle)
	seen := make(map[string]map[string]bool)
	var order []string

	for _, e := range entries {
		key := normalizeTitle(e.Title)
		b, ok := byTitle[key]
		if !ok {
			b = &Bundle{Title: e.Title, Author: e.Author}
			byTitle[key] = b
			seen[key] = make(map[string]bool)
			order = append(order, key)
		}
		if b.Author == "" {
			b.Author = e.Author
		}
		if seen[key][e.Text] {
			continue
		}
		seen[key][e.Text] = true
		if e.Type == entryTypeNote {
			b.Notes = append(b.Notes, e.Text)
		} else {
			b.Highlights = append(b.Highlights, e.Text)
		}
	}

	bundles := make([]Bundle, 0, len(order))
	for _, key := range order {
		bundles = append(bundles, *byTitle[key])
	}
	return bundles
}

func normalizeTitle(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}

// MatchBook finds the library book a bundle belongs to: exact normalized
// title match first, then substring containment in either direction. No
// fuzzier heuristic runs here; attaching highlights to the wrong book is
// worse than leaving them unmatched.
func MatchBook(b Bundle, library []entities.Book) (*entities.Book, bool) {
	want := normalizeTitle(b.Title)
	if want == "" {
		return nil, false
	}

	for i := range library {
		if normalizeTitle(library[i].Title) == want {
			return &library[i], true
		}
	}
	for i := range library {
		have := normalizeTitle(library[i].Title)
		if have == "" {
			continue
		}
		if strings.Contains(have, want) || strings.Contains(want, have) {
			return &library[i], true
		}
	}
	return nil, false
}

// NewHighlights returns the bundle's highlights that are not already
// present, preserving bundle order.
func (b Bundle) NewHighlights(existing []string) []string {
	have := make(map[string]bool, len(existing))
	for _, h := range existing {
		have[h] = true
	}
	var out []string
	for _, h := range b.Highlights {
		if !have[h] {
			out = append(out, h)
		}
	}
	return out
}
