package metadata

import (
	"context"
	"fmt"
	"log"

	"github.com/readstack/readstack/internal/entities"
)

// Provider fetches catalog metadata for a book.
type Provider interface {
	SearchByISBN(ctx context.Context, isbn string) (*BookMetadata, error)
	SearchByTitle(ctx context.Context, title, author string) (*BookMetadata, error)
}

// BookPatcher is the storage surface enrichment needs.
type BookPatcher interface {
	GetBookByID(id uint) (*entities.Book, error)
	Update(id uint, fields map[string]any) error
	GetBooksMissingMetadata(limit int) ([]entities.Book, error)
}

// EnrichmentResult describes one enrichment run over a single book.
type EnrichmentResult struct {
	Book          *entities.Book `json:"book"`
	FieldsUpdated []string       `json:"fields_updated"`
	Source        string         `json:"source"`
	SearchMethod  string         `json:"search_method"` // "isbn" or "title"
}

// CoverCache mirrors remote cover images onto local disk.
type CoverCache interface {
	Ensure(bookID uint, coverURL string) (string, error)
}

// Enricher fills empty metadata fields on stored books from a catalog
// provider. Populated fields are never overwritten: whatever the import
// recorded wins over whatever the catalog says.
type Enricher struct {
	provider Provider
	store    BookPatcher
	covers   CoverCache
}

// NewEnricher creates a new Enricher.
func NewEnricher(provider Provider, store BookPatcher) *Enricher {
	return &Enricher{provider: provider, store: store}
}

// SetCoverCache enables local caching of cover images found during
// enrichment. Optional; without it cover URLs are stored but not mirrored.
func (e *Enricher) SetCoverCache(cache CoverCache) {
	e.covers = cache
}

// EnrichBook fetches metadata for a book and fills its gaps. ISBN lookup is
// tried first when the book has one; otherwise title+author search.
func (e *Enricher) EnrichBook(ctx context.Context, bookID uint) (*EnrichmentResult, error) {
	book, err := e.store.GetBookByID(bookID)
	if err != nil {
		return nil, fmt.Errorf("get book: %w", err)
	}

	var metadata *BookMetadata
	searchMethod := ""

	if book.ISBN != "" {
		metadata, err = e.provider.SearchByISBN(ctx, book.ISBN)
		if err == nil {
			searchMethod = "isbn"
		}
	}

	if metadata == nil {
		author := ""
		if len(book.Authors) > 0 {
			author = book.Authors[0]
		}
		metadata, err = e.provider.SearchByTitle(ctx, book.Title, author)
		if err != nil {
			return nil, fmt.Errorf("metadata search failed: %w", err)
		}
		searchMethod = "title"
	}

	updates, fieldsUpdated := buildGapUpdates(book, metadata)

	if len(fieldsUpdated) > 0 {
		if err := e.store.Update(bookID, updates); err != nil {
			return nil, fmt.Errorf("update book metadata: %w", err)
		}
		book, err = e.store.GetBookByID(bookID)
		if err != nil {
			return nil, fmt.Errorf("refresh book: %w", err)
		}
	}

	if e.covers != nil && book.CoverURL != "" {
		if _, err := e.covers.Ensure(book.ID, book.CoverURL); err != nil {
			log.Printf("Failed to cache cover for book %d: %v", book.ID, err)
		}
	}

	return &EnrichmentResult{
		Book:          book,
		FieldsUpdated: fieldsUpdated,
		Source:        "openlibrary",
		SearchMethod:  searchMethod,
	}, nil
}

// BulkEnrichmentResult summarizes a sweep over books missing metadata.
type BulkEnrichmentResult struct {
	TotalBooks int      `json:"total_books"`
	Enriched   int      `json:"enriched"`
	Failed     int      `json:"failed"`
	Skipped    int      `json:"skipped"`
	Errors     []string `json:"errors,omitempty"`
}

// EnrichAllMissing enriches up to limit books with missing cover, publisher
// or page count. Individual failures are collected, not fatal.
func (e *Enricher) EnrichAllMissing(ctx context.Context, limit int) (*BulkEnrichmentResult, error) {
	books, err := e.store.GetBooksMissingMetadata(limit)
	if err != nil {
		return nil, fmt.Errorf("get books missing metadata: %w", err)
	}

	result := &BulkEnrichmentResult{TotalBooks: len(books)}

	for _, book := range books {
		select {
		case <-ctx.Done():
			result.Errors = append(result.Errors, "operation cancelled")
			return result, ctx.Err()
		default:
		}

		enrichResult, err := e.EnrichBook(ctx, book.ID)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", book.Title, err))
			continue
		}

		if len(enrichResult.FieldsUpdated) > 0 {
			result.Enriched++
		} else {
			result.Skipped++
		}
	}

	if result.Failed > 0 {
		log.Printf("Enrichment sweep: %d enriched, %d failed, %d skipped", result.Enriched, result.Failed, result.Skipped)
	}
	return result, nil
}

// buildGapUpdates returns a patch containing only the fields the book is
// missing and the catalog can supply.
func buildGapUpdates(book *entities.Book, metadata *BookMetadata) (map[string]any, []string) {
	updates := map[string]any{}
	var fieldsUpdated []string

	set := func(column string, value any) {
		updates[column] = value
		fieldsUpdated = append(fieldsUpdated, column)
	}

	if book.ISBN == "" && metadata.ISBN != "" {
		set("isbn", metadata.ISBN)
	}
	if book.CoverURL == "" && metadata.CoverURL != "" {
		set("cover_url", metadata.CoverURL)
	}
	if book.Publisher == "" && metadata.Publisher != "" {
		set("publisher", metadata.Publisher)
	}
	if book.PageCount == 0 && metadata.PageCount > 0 {
		set("page_count", metadata.PageCount)
	}
	if book.FirstPublished == 0 && metadata.FirstPublished > 0 {
		set("first_published", metadata.FirstPublished)
	}
	if book.Description == "" && metadata.Description != "" {
		set("description", metadata.Description)
	}

	return updates, fieldsUpdated
}
