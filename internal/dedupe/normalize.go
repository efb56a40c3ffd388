package dedupe

import (
	"regexp"
	"strings"
)

// Normalization helpers shared by the matching heuristics. Everything here
// is lossy on purpose: the output is only ever compared, never displayed.

var (
	editionParenPattern   = regexp.MustCompile(`(?i)\(([^)]*\b(?:edition|version)\b[^)]*)\)`)
	goodreadsAuthorSuffix = regexp.MustCompile(`(?i)\(goodreads author\)`)
	punctuationPattern    = regexp.MustCompile(`[^\p{L}\p{N}\s]`)
	whitespacePattern     = regexp.MustCompile(`\s+`)

	honorificPattern = regexp.MustCompile(`(?i)\b(?:jr|sr|phd|md|dr|prof|ii|iii|iv)\b\.?`)
)

// NormalizeTitle lowercases a title, strips edition/version parentheticals
// and the "(Goodreads Author)" marker, removes punctuation and collapses
// whitespace.
func NormalizeTitle(title string) string {
	t := strings.ToLower(title)
	t = editionParenPattern.ReplaceAllString(t, " ")
	t = goodreadsAuthorSuffix.ReplaceAllString(t, " ")
	t = punctuationPattern.ReplaceAllString(t, " ")
	t = whitespacePattern.ReplaceAllString(t, " ")
	return strings.TrimSpace(t)
}

// CoreTitle returns the normalized portion of a title before the first
// subtitle separator (colon, dash, en dash or em dash). Used to ignore
// subtitles during matching.
func CoreTitle(title string) string {
	cut := len(title)
	for _, sep := range []string{":", " - ", "–", "—"} {
		if idx := strings.Index(title, sep); idx >= 0 && idx < cut {
			cut = idx
		}
	}
	return NormalizeTitle(title[:cut])
}

// NormalizeAuthor lowercases an author name, strips honorifics and
// suffixes (Jr., PhD, roman numerals), removes punctuation and collapses
// whitespace.
func NormalizeAuthor(author string) string {
	a := strings.ToLower(author)
	a = goodreadsAuthorSuffix.ReplaceAllString(a, " ")
	a = honorificPattern.ReplaceAllString(a, " ")
	a = punctuationPattern.ReplaceAllString(a, " ")
	a = whitespacePattern.ReplaceAllString(a, " ")
	return strings.TrimSpace(a)
}

// lastName returns the last whitespace-delimited token of a normalized name.
func lastName(normalized string) string {
	fields := strings.Fields(normalized)
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}

// titleSimilarity computes token-overlap similarity between two normalized
// strings: the size of the intersection of their word sets divided by the
// size of the larger set. If one string fully contains the other the length
// ratio is used instead, which scores subtitled variants higher.
func titleSimilarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}

	if strings.Contains(a, b) || strings.Contains(b, a) {
		shorter, longer := len(a), len(b)
		if shorter > longer {
			shorter, longer = longer, shorter
		}
		return float64(shorter) / float64(longer)
	}

	wordsA := strings.Fields(a)
	wordsB := strings.Fields(b)
	setA := make(map[string]struct{}, len(wordsA))
	for _, w := range wordsA {
		setA[w] = struct{}{}
	}
	setB := make(map[string]struct{}, len(wordsB))
	for _, w := range wordsB {
		setB[w] = struct{}{}
	}

	shared := 0
	for w := range setA {
		if _, ok := setB[w]; ok {
			shared++
		}
	}

	larger := len(setA)
	if len(setB) > larger {
		larger = len(setB)
	}
	if larger == 0 {
		return 0
	}
	return float64(shared) / float64(larger)
}
