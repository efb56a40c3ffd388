package dedupe

import (
	"strings"

	"github.com/readstack/readstack/internal/entities"
)

// Minimum-length guards for the title-matching ladder. Short strings match
// each other far too easily, so every heuristic below exact matching only
// runs when the compared string is long enough to be meaningful.
const (
	minCoreTitleLen      = 3
	minContainmentLen    = 5
	minFuzzyCoreLen      = 5
	minSharedLastNameLen = 3
	fuzzyMatchThreshold  = 0.7
)

// IsSameBook reports whether two records refer to the same underlying book.
//
// ISBN equality is definitive and short-circuits everything else. Otherwise
// at least one author pair must match before any title heuristic runs: two
// unrelated books frequently share generic titles but almost never share an
// author. The title ladder then goes exact → core → containment → fuzzy,
// in increasing order of false-positive risk.
func IsSameBook(a, b entities.BookInput) bool {
	if a.ISBN != "" && b.ISBN != "" && a.ISBN == b.ISBN {
		return true
	}

	if !authorsOverlap(a.Authors, b.Authors) {
		return false
	}

	return titlesMatch(a.Title, b.Title)
}

func authorsOverlap(as, bs []string) bool {
	for _, rawA := range as {
		normA := NormalizeAuthor(rawA)
		if normA == "" {
			continue
		}
		for _, rawB := range bs {
			normB := NormalizeAuthor(rawB)
			if normB == "" {
				continue
			}
			if normA == normB {
				return true
			}
			// Last-name-only comparison, guarded against single-letter
			// collisions.
			lnA, lnB := lastName(normA), lastName(normB)
			if lnA != "" && lnA == lnB && len(lnA) >= minSharedLastNameLen {
				return true
			}
		}
	}
	return false
}

func titlesMatch(rawA, rawB string) bool {
	fullA := NormalizeTitle(rawA)
	fullB := NormalizeTitle(rawB)

	// Exact match of fully normalized titles.
	if fullA != "" && fullA == fullB {
		return true
	}

	// Core-title match: everything before the first subtitle separator.
	coreA := CoreTitle(rawA)
	coreB := CoreTitle(rawB)
	if len(coreA) >= minCoreTitleLen && coreA == coreB {
		return true
	}

	// Containment of one full title in the other.
	if len(fullA) >= minContainmentLen && len(fullB) >= minContainmentLen {
		if strings.Contains(fullA, fullB) || strings.Contains(fullB, fullA) {
			return true
		}
	}

	// Fuzzy fallback on core titles.
	if len(coreA) >= minFuzzyCoreLen && len(coreB) >= minFuzzyCoreLen {
		if titleSimilarity(coreA, coreB) >= fuzzyMatchThreshold {
			return true
		}
	}

	return false
}

// Key is a cheap hash-bucket approximation of book identity used to limit
// comparison scope during dedup. It can miss valid matches that the
// containment and fuzzy heuristics would still catch, so bucket lookups are
// always confirmed (and misses re-scanned) with IsSameBook.
func Key(title, author string) string {
	return CoreTitle(title) + "|" + NormalizeAuthor(author)
}
