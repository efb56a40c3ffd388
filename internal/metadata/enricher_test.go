package metadata

import (
	"context"
	"errors"
	"testing"

	"github.com/readstack/readstack/internal/entities"
)

type mockProvider struct {
	isbnResult   *BookMetadata
	isbnError    error
	titleResult  *BookMetadata
	titleError   error
	isbnQueries  []string
	titleQueries []string
}

func (m *mockProvider) SearchByISBN(_ context.Context, isbn string) (*BookMetadata, error) {
	m.isbnQueries = append(m.isbnQueries, isbn)
	return m.isbnResult, m.isbnError
}

func (m *mockProvider) SearchByTitle(_ context.Context, title, author string) (*BookMetadata, error) {
	m.titleQueries = append(m.titleQueries, title)
	return m.titleResult, m.titleError
}

type mockPatcher struct {
	books       map[uint]*entities.Book
	missing     []entities.Book
	lastPatch   map[string]any
	updateError error
}

func (m *mockPatcher) GetBookByID(id uint) (*entities.Book, error) {
	book, ok := m.books[id]
	if !ok {
		return nil, errors.New("record not found")
	}
	return book, nil
}

func (m *mockPatcher) Update(id uint, fields map[string]any) error {
	if m.updateError != nil {
		return m.updateError
	}
	m.lastPatch = fields
	book := m.books[id]
	if v, ok := fields["isbn"].(string); ok {
		book.ISBN = v
	}
	if v, ok := fields["cover_url"].(string); ok {
		book.CoverURL = v
	}
	if v, ok := fields["publisher"].(string); ok {
		book.Publisher = v
	}
	if v, ok := fields["page_count"].(int); ok {
		book.PageCount = v
	}
	if v, ok := fields["first_published"].(int); ok {
		book.FirstPublished = v
	}
	if v, ok := fields["description"].(string); ok {
		book.Description = v
	}
	return nil
}

func (m *mockPatcher) GetBooksMissingMetadata(limit int) ([]entities.Book, error) {
	if limit > 0 && len(m.missing) > limit {
		return m.missing[:limit], nil
	}
	return m.missing, nil
}

func TestEnrichBook_FillsGapsOnly(t *testing.T) {
	store := &mockPatcher{books: map[uint]*entities.Book{
		1: {
			ID:        1,
			Title:     "Deep Work",
			Authors:   []string{"Cal Newport"},
			Publisher: "Grand Central", // already set, must survive
		},
	}}
	provider := &mockProvider{
		titleResult: &BookMetadata{
			Title:     "Deep Work",
			ISBN:      "9781455586691",
			CoverURL:  "https://covers.openlibrary.org/b/isbn/9781455586691-L.jpg",
			Publisher: "Some Other Publisher",
			PageCount: 304,
		},
	}

	enricher := NewEnricher(provider, store)
	result, err := enricher.EnrichBook(context.Background(), 1)
	if err != nil {
		t.Fatalf("EnrichBook returned error: %v", err)
	}

	if result.SearchMethod != "title" {
		t.Errorf("SearchMethod = %q, expected title (no ISBN on book)", result.SearchMethod)
	}
	if _, touched := store.lastPatch["publisher"]; touched {
		t.Error("publisher was already populated and must not be overwritten")
	}
	if store.books[1].Publisher != "Grand Central" {
		t.Errorf("Publisher = %q, expected untouched value", store.books[1].Publisher)
	}
	if store.books[1].ISBN != "9781455586691" {
		t.Errorf("ISBN was not filled: %q", store.books[1].ISBN)
	}
	if store.books[1].PageCount != 304 {
		t.Errorf("PageCount was not filled: %d", store.books[1].PageCount)
	}
}

func TestEnrichBook_PrefersISBNLookup(t *testing.T) {
	store := &mockPatcher{books: map[uint]*entities.Book{
		1: {ID: 1, Title: "Dune", Authors: []string{"Frank Herbert"}, ISBN: "9780441013593"},
	}}
	provider := &mockProvider{
		isbnResult: &BookMetadata{Title: "Dune", PageCount: 412},
	}

	enricher := NewEnricher(provider, store)
	result, err := enricher.EnrichBook(context.Background(), 1)
	if err != nil {
		t.Fatalf("EnrichBook returned error: %v", err)
	}

	if result.SearchMethod != "isbn" {
		t.Errorf("SearchMethod = %q, expected isbn", result.SearchMethod)
	}
	if len(provider.titleQueries) != 0 {
		t.Error("title search should not run when the ISBN lookup succeeds")
	}
}

func TestEnrichBook_FallsBackToTitleSearch(t *testing.T) {
	store := &mockPatcher{books: map[uint]*entities.Book{
		1: {ID: 1, Title: "Dune", Authors: []string{"Frank Herbert"}, ISBN: "9780441013593"},
	}}
	provider := &mockProvider{
		isbnError:   errors.New("ISBN not found"),
		titleResult: &BookMetadata{Title: "Dune", PageCount: 412},
	}

	enricher := NewEnricher(provider, store)
	result, err := enricher.EnrichBook(context.Background(), 1)
	if err != nil {
		t.Fatalf("EnrichBook returned error: %v", err)
	}

	if result.SearchMethod != "title" {
		t.Errorf("SearchMethod = %q, expected title fallback", result.SearchMethod)
	}
}

func TestEnrichBook_BothLookupsFail(t *testing.T) {
	store := &mockPatcher{books: map[uint]*entities.Book{
		1: {ID: 1, Title: "Obscure Book", Authors: []string{"Nobody"}},
	}}
	provider := &mockProvider{titleError: errors.New("no results")}

	enricher := NewEnricher(provider, store)
	_, err := enricher.EnrichBook(context.Background(), 1)
	if err == nil {
		t.Fatal("expected error when every lookup fails")
	}
	if store.lastPatch != nil {
		t.Error("no update should run on lookup failure")
	}
}

func TestEnrichBook_NothingToFill(t *testing.T) {
	store := &mockPatcher{books: map[uint]*entities.Book{
		1: {
			ID: 1, Title: "Complete", Authors: []string{"Author"},
			ISBN: "9780000000001", CoverURL: "https://example.com/c.jpg",
			Publisher: "Pub", PageCount: 100, FirstPublished: 2001,
			Description: "done",
		},
	}}
	provider := &mockProvider{
		isbnResult: &BookMetadata{Title: "Complete", PageCount: 999, Publisher: "Other"},
	}

	enricher := NewEnricher(provider, store)
	result, err := enricher.EnrichBook(context.Background(), 1)
	if err != nil {
		t.Fatalf("EnrichBook returned error: %v", err)
	}

	if len(result.FieldsUpdated) != 0 {
		t.Errorf("FieldsUpdated = %v, expected none", result.FieldsUpdated)
	}
}

type mockCoverCache struct {
	ensured map[uint]string
	err     error
}

func (m *mockCoverCache) Ensure(bookID uint, coverURL string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	if m.ensured == nil {
		m.ensured = map[uint]string{}
	}
	m.ensured[bookID] = coverURL
	return "/covers/cached.jpg", nil
}

func TestEnrichBook_WarmsCoverCache(t *testing.T) {
	store := &mockPatcher{books: map[uint]*entities.Book{
		1: {ID: 1, Title: "Deep Work", Authors: []string{"Cal Newport"}},
	}}
	provider := &mockProvider{
		titleResult: &BookMetadata{
			Title:    "Deep Work",
			CoverURL: "https://covers.openlibrary.org/b/isbn/9781455586691-L.jpg",
		},
	}
	cache := &mockCoverCache{}

	enricher := NewEnricher(provider, store)
	enricher.SetCoverCache(cache)
	if _, err := enricher.EnrichBook(context.Background(), 1); err != nil {
		t.Fatalf("EnrichBook returned error: %v", err)
	}

	if cache.ensured[1] != provider.titleResult.CoverURL {
		t.Errorf("cover cache not warmed: %v", cache.ensured)
	}
}

func TestEnrichBook_CoverCacheFailureNotFatal(t *testing.T) {
	store := &mockPatcher{books: map[uint]*entities.Book{
		1: {ID: 1, Title: "Deep Work", Authors: []string{"Cal Newport"}},
	}}
	provider := &mockProvider{
		titleResult: &BookMetadata{Title: "Deep Work", CoverURL: "https://example.com/c.jpg"},
	}

	enricher := NewEnricher(provider, store)
	enricher.SetCoverCache(&mockCoverCache{err: errors.New("disk full")})
	if _, err := enricher.EnrichBook(context.Background(), 1); err != nil {
		t.Fatalf("cover cache failure must not fail enrichment: %v", err)
	}
	if store.books[1].CoverURL == "" {
		t.Error("cover URL should still be stored")
	}
}

func TestEnrichAllMissing(t *testing.T) {
	store := &mockPatcher{
		books: map[uint]*entities.Book{
			1: {ID: 1, Title: "Gappy", Authors: []string{"A"}},
			2: {ID: 2, Title: "Broken", Authors: []string{"B"}},
		},
		missing: []entities.Book{{ID: 1, Title: "Gappy"}, {ID: 3, Title: "Vanished"}},
	}
	provider := &mockProvider{
		titleResult: &BookMetadata{Title: "Gappy", PageCount: 200},
	}

	enricher := NewEnricher(provider, store)
	result, err := enricher.EnrichAllMissing(context.Background(), 0)
	if err != nil {
		t.Fatalf("EnrichAllMissing returned error: %v", err)
	}

	if result.TotalBooks != 2 {
		t.Errorf("TotalBooks = %d, expected 2", result.TotalBooks)
	}
	if result.Enriched != 1 {
		t.Errorf("Enriched = %d, expected 1", result.Enriched)
	}
	// Book 3 no longer exists; its failure is collected, not fatal.
	if result.Failed != 1 {
		t.Errorf("Failed = %d, expected 1", result.Failed)
	}
	if len(result.Errors) != 1 {
		t.Errorf("Errors = %v, expected one entry", result.Errors)
	}
}

func TestEnrichAllMissing_Cancelled(t *testing.T) {
	store := &mockPatcher{
		books:   map[uint]*entities.Book{1: {ID: 1, Title: "Gappy"}},
		missing: []entities.Book{{ID: 1, Title: "Gappy"}},
	}
	enricher := NewEnricher(&mockProvider{}, store)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := enricher.EnrichAllMissing(ctx, 0)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, expected context.Canceled", err)
	}
}
