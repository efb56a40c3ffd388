// Package services orchestrates the import pipeline: parse, dedupe,
// cross-check against the owner's library, persist in batches.
package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/readstack/readstack/internal/dedupe"
	"github.com/readstack/readstack/internal/entities"
	"github.com/readstack/readstack/internal/importers"
	"github.com/readstack/readstack/internal/kindle"
	"github.com/readstack/readstack/internal/metadata"
)

// koboFallbackRatio is the lines-per-book threshold above which a Kobo parse
// is considered to have missed most of the input.
const koboFallbackRatio = 12

// ImportService runs parsed candidates through deduplication and persists
// what is genuinely new.
type ImportService struct {
	store      BookStore
	fallback   FallbackParser // nil when no fallback capability is configured
	classifier Classifier     // nil when no lookup classification is configured
}

// NewImportService creates a new ImportService.
func NewImportService(store BookStore) *ImportService {
	return &ImportService{store: store}
}

// SetFallbackParser configures the optional fallback for fragile pasted-text
// parses.
func (s *ImportService) SetFallbackParser(parser FallbackParser) {
	s.fallback = parser
}

// SetClassifier configures the optional lookup-backed override of the
// Readwise parser's heuristic podcast/article flag.
func (s *ImportService) SetClassifier(classifier Classifier) {
	s.classifier = classifier
}

// ImportBooks deduplicates candidates, drops the ones already in the owner's
// library, and batch-creates the rest. Batch failures are collected into the
// result; earlier batches stay committed.
func (s *ImportService) ImportBooks(ownerID uint, candidates []entities.BookInput) (ImportResult, error) {
	result := ImportResult{}
	if len(candidates) == 0 {
		return result, nil
	}

	unique := dedupe.DedupeBookInputs(candidates)

	library, err := s.store.ListByOwner(ownerID)
	if err != nil {
		return result, fmt.Errorf("list library: %w", err)
	}

	var fresh []entities.Book
	for _, candidate := range unique {
		if _, found := dedupe.FindDuplicateOfExisting(candidate, library); found {
			result.Skipped++
			continue
		}
		fresh = append(fresh, candidate.Record(ownerID))
	}

	created, errs := s.store.CreateBatch(fresh)
	result.Created = created
	result.Errors = errs

	log.Printf("Import for owner %d: %d created, %d skipped, %d errors",
		ownerID, result.Created, result.Skipped, len(result.Errors))
	return result, nil
}

// ImportGoodreads parses a Goodreads library export and imports it.
func (s *ImportService) ImportGoodreads(ownerID uint, text string) (ImportResult, error) {
	return s.ImportBooks(ownerID, importers.ParseGoodreadsCSV(text))
}

// ImportLibby parses a Libby timeline export and imports it.
func (s *ImportService) ImportLibby(ownerID uint, text string) (ImportResult, error) {
	return s.ImportBooks(ownerID, importers.ParseLibbyCSV(text))
}

// ImportKindleList parses a pasted Kindle library listing and imports it.
func (s *ImportService) ImportKindleList(ownerID uint, text string) (ImportResult, error) {
	return s.ImportBooks(ownerID, importers.ParseKindleList(text))
}

// ImportReadwise parses a Readwise highlights export and imports it. With a
// classifier configured, its labels override the parser's heuristic
// podcast/article flag before persistence.
func (s *ImportService) ImportReadwise(ctx context.Context, ownerID uint, text string) (ImportResult, error) {
	candidates := importers.ParseReadwiseCSV(text)

	if s.classifier != nil && len(candidates) > 0 {
		items := make([]metadata.TitleAuthor, len(candidates))
		for i, c := range candidates {
			items[i] = metadata.TitleAuthor{Title: c.Title}
			if len(c.Authors) > 0 {
				items[i].Author = c.Authors[0]
			}
		}
		labels := metadata.NormalizeLabels(s.classifier.Classify(ctx, items), len(candidates))
		for i := range candidates {
			candidates[i] = entities.Reclassify(candidates[i], labels[i])
		}
	}

	return s.ImportBooks(ownerID, candidates)
}

// ImportKobo parses a pasted Kobo library table and imports it. When the
// heuristic parse clearly missed the input (lots of text, almost no books)
// and a fallback parser is configured, the fallback result is used instead.
func (s *ImportService) ImportKobo(ctx context.Context, ownerID uint, text string) (ImportResult, error) {
	candidates := importers.ParseKoboList(text)

	if s.fallback != nil && koboParseLooksBad(text, len(candidates)) {
		recovered, err := s.fallback.ParseBookList(ctx, text)
		if err != nil {
			log.Printf("Kobo fallback parse failed, keeping heuristic result: %v", err)
		} else if len(recovered) > len(candidates) {
			candidates = recovered
		}
	}

	return s.ImportBooks(ownerID, candidates)
}

// koboParseLooksBad flags a parse that extracted suspiciously few books from
// a large paste.
func koboParseLooksBad(text string, books int) bool {
	lines := 0
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			lines++
		}
	}
	if lines < koboFallbackRatio {
		return false
	}
	return books == 0 || lines/books > koboFallbackRatio
}

// ImportClippings parses a My Clippings.txt export and merges each bundle's
// highlights into the matching library book. Only highlights not already
// stored are added; bundles with no matching book are reported, not created.
func (s *ImportService) ImportClippings(ownerID uint, text string) (ClippingsResult, error) {
	result := ClippingsResult{}

	parser := kindle.NewParser()
	bundles, err := parser.Parse(strings.NewReader(text))
	if err != nil {
		return result, fmt.Errorf("parse clippings: %w", err)
	}
	if len(bundles) == 0 {
		return result, nil
	}

	library, err := s.store.ListByOwner(ownerID)
	if err != nil {
		return result, fmt.Errorf("list library: %w", err)
	}

	for _, bundle := range bundles {
		book, found := kindle.MatchBook(bundle, library)
		if !found {
			result.Unmatched = append(result.Unmatched, bundle.Title)
			continue
		}

		existing := make([]string, 0, len(book.Highlights))
		for _, h := range book.Highlights {
			existing = append(existing, h.Text)
		}

		fresh := bundle.NewHighlights(existing)
		fresh = append(fresh, bundle.Notes...)
		added, err := s.store.AppendHighlights(book.ID, fresh)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", bundle.Title, err))
			continue
		}

		result.BooksMatched++
		result.HighlightsAdded += added
	}

	return result, nil
}

// DuplicateReport groups mutually equivalent books in the owner's library.
// Reporting only; nothing is merged or deleted.
func (s *ImportService) DuplicateReport(ownerID uint) ([]entities.DuplicateGroup, error) {
	library, err := s.store.ListByOwner(ownerID)
	if err != nil {
		return nil, fmt.Errorf("list library: %w", err)
	}
	return dedupe.FindDuplicateGroups(library), nil
}
