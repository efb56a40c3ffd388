package importers

import (
	"regexp"
	"strings"

	"github.com/readstack/readstack/internal/dedupe"
	"github.com/readstack/readstack/internal/entities"
)

// The pasted Kindle library list alternates title and author lines with UI
// chrome interspersed. Known chrome shapes are skipped outright.
var kindleNoisePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^\d+\s+(books?|titles?|items?)\b`),
	regexp.MustCompile(`(?i)^sort by\b`),
	regexp.MustCompile(`(?i)^page \d+(\s+of\s+\d+)?$`),
	regexp.MustCompile(`(?i)^(showing|filters?|collections?|view:|list view|grid view)\b`),
	regexp.MustCompile(`(?i)^(deliver|download|more actions|read now)\b`),
}

var (
	// "Firstname Lastname" or "Firstname M. Lastname" name shapes.
	kindleNamePattern = regexp.MustCompile(`^[A-Z][\p{L}'-]+(\s+[A-Z]\.?)*\s+[A-Z][\p{L}'-]+$`)

	// "(Book 3)"-style series annotations and bracketed tags.
	kindleSeriesPattern  = regexp.MustCompile(`(?i)\s*\([^)]*\bbook\s+\d+[^)]*\)`)
	kindleBracketPattern = regexp.MustCompile(`\s*\[[^\]]*\]`)
)

// ParseKindleList parses freeform text pasted from the Kindle library page.
// Ownership says nothing about read state, so every candidate comes out tbd.
func ParseKindleList(text string) []entities.BookInput {
	var lines []string
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(strings.TrimSuffix(raw, "\r"))
		if line == "" || isKindleNoise(line) {
			continue
		}
		lines = append(lines, line)
	}

	var candidates []entities.BookInput
	for i := 0; i < len(lines); i++ {
		title := lines[i]
		if i+1 >= len(lines) {
			// A trailing line with no author candidate cannot safely be
			// assumed title-only.
			break
		}
		author := lines[i+1]
		if !kindleAuthorCandidate(title, author) {
			continue
		}

		candidates = append(candidates, entities.BookInput{
			Title:   cleanKindleTitle(title),
			Authors: splitAuthors(author, ""),
			Status:  entities.StatusTBD,
			Source:  entities.SourceKindle,
		})
		i++ // author line consumed
	}

	return dedupe.DedupeBookInputs(candidates)
}

func isKindleNoise(line string) bool {
	for _, p := range kindleNoisePatterns {
		if p.MatchString(line) {
			return true
		}
	}
	return false
}

// kindleAuthorCandidate decides whether the line following a candidate
// title reads like an author: no colon, or shorter than the title, or a
// plain "Firstname [Middle.] Lastname" shape.
func kindleAuthorCandidate(title, author string) bool {
	if !strings.Contains(author, ":") {
		return true
	}
	if len(author) < len(title) {
		return true
	}
	return kindleNamePattern.MatchString(author)
}

func cleanKindleTitle(title string) string {
	t := kindleSeriesPattern.ReplaceAllString(title, "")
	t = kindleBracketPattern.ReplaceAllString(t, "")
	return strings.TrimSpace(t)
}
