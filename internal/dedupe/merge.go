package dedupe

import (
	"github.com/readstack/readstack/internal/entities"
)

// completenessScore measures how much useful data a candidate carries.
// The higher-scoring record of a duplicate pair becomes the merge base.
func completenessScore(b entities.BookInput) int {
	score := 0
	if b.Rating > 0 {
		score += 10
	}
	if b.AvgRating > 0 {
		score += 5
	}
	if b.Notes != "" {
		score += 3
	}
	switch b.Status {
	case entities.StatusFinished:
		score += 3
	case entities.StatusReading:
		score += 2
	}
	if b.ISBN != "" {
		score += 2
	}
	if b.CoverURL != "" {
		score += 2
	}
	if b.PageCount > 0 {
		score += 1
	}
	if len(b.Tags) > 0 {
		score += 1
	}
	if len(b.Title) > 30 {
		score += 1
	}
	if b.DateFinished != "" {
		score += 2
	}
	return score
}

// Merge combines two records judged to be the same book. The more complete
// record is the base (ties favor a, the first seen); the other donates only
// fields the base lacks. Existing non-empty base fields are never
// overwritten. Tags are unioned. Status resolution is independent of which
// record won the completeness comparison: the higher-priority status always
// wins.
func Merge(a, b entities.BookInput) entities.BookInput {
	base, donor := a, b
	if completenessScore(b) > completenessScore(a) {
		base, donor = b, a
	}

	merged := base
	merged.Authors = append([]string(nil), base.Authors...)
	merged.Genres = append([]string(nil), base.Genres...)
	merged.Highlights = append([]string(nil), base.Highlights...)

	if merged.Rating == 0 {
		merged.Rating = donor.Rating
	}
	if merged.Notes == "" {
		merged.Notes = donor.Notes
	}
	if merged.ISBN == "" {
		merged.ISBN = donor.ISBN
	}
	if merged.CoverURL == "" {
		merged.CoverURL = donor.CoverURL
	}
	if merged.PageCount == 0 {
		merged.PageCount = donor.PageCount
	}
	if merged.Publisher == "" {
		merged.Publisher = donor.Publisher
	}
	if merged.AvgRating == 0 {
		merged.AvgRating = donor.AvgRating
	}
	if merged.RatingsCount == 0 {
		merged.RatingsCount = donor.RatingsCount
	}
	if merged.DateStarted == "" {
		merged.DateStarted = donor.DateStarted
	}
	if merged.DateFinished == "" {
		merged.DateFinished = donor.DateFinished
	}

	merged.Tags = unionTags(base.Tags, donor.Tags)

	if donor.Status.Priority() > merged.Status.Priority() {
		merged.Status = donor.Status
	}

	return merged
}

func unionTags(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	var out []string
	for _, list := range [][]string{a, b} {
		for _, tag := range list {
			if tag == "" {
				continue
			}
			if _, ok := seen[tag]; ok {
				continue
			}
			seen[tag] = struct{}{}
			out = append(out, tag)
		}
	}
	return out
}

// DedupeBookInputs reduces a batch of candidates to unique books, merging
// data from duplicates.
//
// Candidates are bucketed by Key for the common case; because the key is
// only an approximation, a key miss falls back to a linear scan over every
// accumulated entry with the full IsSameBook check. Quadratic in the worst
// case, which is acceptable for offline batch imports.
func DedupeBookInputs(candidates []entities.BookInput) []entities.BookInput {
	byKey := make(map[string]entities.BookInput)
	var order []string

	for _, candidate := range candidates {
		key := Key(candidate.Title, candidate.FirstAuthor())

		if existing, ok := byKey[key]; ok && IsSameBook(existing, candidate) {
			byKey[key] = Merge(existing, candidate)
			continue
		}

		merged := false
		for _, k := range order {
			if IsSameBook(byKey[k], candidate) {
				byKey[k] = Merge(byKey[k], candidate)
				merged = true
				break
			}
		}
		if merged {
			continue
		}

		if _, taken := byKey[key]; taken {
			// Distinct book colliding on the approximate key; keep both
			// under disambiguated keys.
			key += "|" + candidate.Title
		}
		byKey[key] = candidate
		order = append(order, key)
	}

	out := make([]entities.BookInput, 0, len(order))
	for _, k := range order {
		out = append(out, byKey[k])
	}
	return out
}

// FindDuplicateOfExisting scans a persisted library for a book matching the
// candidate and returns the first hit. Linear per candidate; imports are
// batch operations, not interactive hot paths.
func FindDuplicateOfExisting(candidate entities.BookInput, existing []entities.Book) (*entities.Book, bool) {
	for i := range existing {
		if IsSameBook(candidate, existing[i].Input()) {
			return &existing[i], true
		}
	}
	return nil, false
}

// FindDuplicateGroups partitions a library into groups of mutually
// equivalent books. Only groups with more than one member are returned.
// Reporting-only: nothing is merged or deleted here.
func FindDuplicateGroups(library []entities.Book) []entities.DuplicateGroup {
	assigned := make([]bool, len(library))
	var groups []entities.DuplicateGroup

	for i := range library {
		if assigned[i] {
			continue
		}
		group := entities.DuplicateGroup{Books: []entities.Book{library[i]}}
		assigned[i] = true
		for j := i + 1; j < len(library); j++ {
			if assigned[j] {
				continue
			}
			if IsSameBook(library[i].Input(), library[j].Input()) {
				group.Books = append(group.Books, library[j])
				assigned[j] = true
			}
		}
		if len(group.Books) > 1 {
			groups = append(groups, group)
		}
	}
	return groups
}
