package services

import (
	"context"

	"github.com/readstack/readstack/internal/entities"
	"github.com/readstack/readstack/internal/metadata"
)

// BookStore is the storage surface the import pipeline needs.
// Implemented by internal/database/books.Repository.
type BookStore interface {
	ListByOwner(ownerID uint) ([]entities.Book, error)
	CreateBatch(books []entities.Book) (created int, errs []string)
	Update(id uint, fields map[string]any) error
	AppendHighlights(bookID uint, texts []string) (added int, err error)
}

// FallbackParser re-parses a pasted export the heuristic parsers could not
// make sense of. External capability, typically an LLM-backed service;
// optional everywhere it appears.
type FallbackParser interface {
	ParseBookList(ctx context.Context, text string) ([]entities.BookInput, error)
}

// Classifier overrides the parsers' heuristic podcast/article flag with a
// higher-precision label per item, same length and order, never an error.
// Optional everywhere it appears; implemented by metadata.LookupClassifier.
type Classifier interface {
	Classify(ctx context.Context, items []metadata.TitleAuthor) []entities.Label
}

// ImportResult is the outcome of one book import run. Partial success is
// normal: Created counts what was persisted, Skipped counts candidates
// already in the library, Errors carries per-batch failure messages.
type ImportResult struct {
	Created int      `json:"created"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors,omitempty"`
}

// ClippingsResult is the outcome of a highlights import run.
type ClippingsResult struct {
	BooksMatched    int      `json:"books_matched"`
	HighlightsAdded int      `json:"highlights_added"`
	Unmatched       []string `json:"unmatched,omitempty"`
	Errors          []string `json:"errors,omitempty"`
}
