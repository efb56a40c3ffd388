// Package metadata fetches book metadata from external catalogs and fills
// the gaps imports leave behind.
package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// BookMetadata is the catalog view of a book, as returned by a provider.
type BookMetadata struct {
	Title          string   `json:"title,omitempty"`
	Authors        []string `json:"authors,omitempty"`
	ISBN           string   `json:"isbn,omitempty"`
	CoverURL       string   `json:"cover_url,omitempty"`
	Publisher      string   `json:"publisher,omitempty"`
	FirstPublished int      `json:"first_published,omitempty"`
	Description    string   `json:"description,omitempty"`
	Subjects       []string `json:"subjects,omitempty"`
	PageCount      int      `json:"page_count,omitempty"`
	OpenLibraryKey string   `json:"open_library_key,omitempty"`
}

// FirstAuthor returns the primary author, or the empty string.
func (m *BookMetadata) FirstAuthor() string {
	if len(m.Authors) == 0 {
		return ""
	}
	return m.Authors[0]
}

// OpenLibraryClient fetches book metadata from the OpenLibrary API.
type OpenLibraryClient struct {
	httpClient  *http.Client
	baseURL     string
	userAgent   string
	rateLimiter *rateLimiter
}

// rateLimiter spaces calls out so the upstream API never sees bursts.
type rateLimiter struct {
	mu       sync.Mutex
	lastCall time.Time
	interval time.Duration
}

func newRateLimiter(interval time.Duration) *rateLimiter {
	return &rateLimiter{interval: interval}
}

func (r *rateLimiter) wait() {
	r.mu.Lock()
	defer r.mu.Unlock()

	since := time.Since(r.lastCall)
	if since < r.interval {
		time.Sleep(r.interval - since)
	}
	r.lastCall = time.Now()
}

// NewOpenLibraryClient creates a new OpenLibrary API client limited to one
// request per second.
func NewOpenLibraryClient() *OpenLibraryClient {
	return &OpenLibraryClient{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL:     "https://openlibrary.org",
		userAgent:   "ReadStack/1.0 (https://github.com/readstack/readstack)",
		rateLimiter: newRateLimiter(time.Second),
	}
}

// getJSON issues a rate-limited GET and decodes the JSON body into out.
func (c *OpenLibraryClient) getJSON(ctx context.Context, requestURL string, out any) error {
	c.rateLimiter.wait()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", requestURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// ErrNotFound is returned when the catalog has no record for the query.
var ErrNotFound = fmt.Errorf("not found in catalog")

// SearchByISBN looks up a book by its ISBN and returns metadata.
func (c *OpenLibraryClient) SearchByISBN(ctx context.Context, isbn string) (*BookMetadata, error) {
	isbn = normalizeISBN(isbn)
	if isbn == "" {
		return nil, fmt.Errorf("invalid ISBN")
	}

	var bookData openLibraryBook
	if err := c.getJSON(ctx, fmt.Sprintf("%s/isbn/%s.json", c.baseURL, isbn), &bookData); err != nil {
		if err == ErrNotFound {
			return nil, fmt.Errorf("ISBN not found: %s", isbn)
		}
		return nil, err
	}

	metadata := c.convertToMetadata(&bookData, isbn)

	// The ISBN endpoint only returns author references, not names.
	if len(metadata.Authors) == 0 && len(bookData.Authors) > 0 {
		name, err := c.fetchAuthorName(ctx, bookData.Authors[0].Key)
		if err == nil && name != "" {
			metadata.Authors = []string{name}
		}
	}

	return metadata, nil
}

// SearchByTitle looks up a book by title and author, returning the best match.
func (c *OpenLibraryClient) SearchByTitle(ctx context.Context, title, author string) (*BookMetadata, error) {
	if title == "" {
		return nil, fmt.Errorf("title is required")
	}

	q := title
	if author != "" {
		q = fmt.Sprintf("%s %s", title, author)
	}
	searchURL := fmt.Sprintf("%s/search.json?q=%s&limit=5", c.baseURL, url.QueryEscape(q))

	var searchResult openLibrarySearchResult
	if err := c.getJSON(ctx, searchURL, &searchResult); err != nil {
		return nil, fmt.Errorf("search books: %w", err)
	}

	if len(searchResult.Docs) == 0 {
		return nil, fmt.Errorf("no results found for: %s", title)
	}

	bestDoc := c.findBestMatch(searchResult.Docs, title, author)
	metadata := c.convertSearchDocToMetadata(bestDoc)

	// Search docs often omit ISBNs; the linked edition record carries them.
	if metadata.ISBN == "" && bestDoc.CoverEditionKey != "" {
		edition, err := c.fetchEditionDetails(ctx, bestDoc.CoverEditionKey)
		if err == nil {
			c.enrichMetadataFromEdition(metadata, edition)
		}
	}

	return metadata, nil
}

// findBestMatch scores candidates: exact title and author matches first,
// records with ISBNs and covers as tiebreakers.
func (c *OpenLibraryClient) findBestMatch(docs []openLibrarySearchDoc, title, author string) *openLibrarySearchDoc {
	titleLower := strings.ToLower(title)
	authorLower := strings.ToLower(author)

	var bestMatch *openLibrarySearchDoc
	bestScore := -1

	for i := range docs {
		doc := &docs[i]
		score := 0

		if strings.ToLower(doc.Title) == titleLower {
			score += 10
		} else if strings.Contains(strings.ToLower(doc.Title), titleLower) {
			score += 5
		}

		if author != "" {
			for _, docAuthor := range doc.AuthorName {
				if strings.ToLower(docAuthor) == authorLower {
					score += 10
					break
				} else if strings.Contains(strings.ToLower(docAuthor), authorLower) {
					score += 5
					break
				}
			}
		}

		if len(doc.ISBN) > 0 {
			score += 2
		}
		if doc.CoverI != 0 {
			score++
		}

		if score > bestScore {
			bestScore = score
			bestMatch = doc
		}
	}

	if bestMatch == nil && len(docs) > 0 {
		bestMatch = &docs[0]
	}
	return bestMatch
}

func (c *OpenLibraryClient) fetchEditionDetails(ctx context.Context, editionKey string) (*openLibraryEdition, error) {
	if editionKey == "" {
		return nil, fmt.Errorf("empty edition key")
	}
	var edition openLibraryEdition
	if err := c.getJSON(ctx, fmt.Sprintf("%s/books/%s.json", c.baseURL, editionKey), &edition); err != nil {
		return nil, err
	}
	return &edition, nil
}

func (c *OpenLibraryClient) fetchAuthorName(ctx context.Context, authorKey string) (string, error) {
	if authorKey == "" {
		return "", fmt.Errorf("empty author key")
	}
	var authorData struct {
		Name string `json:"name"`
	}
	if err := c.getJSON(ctx, fmt.Sprintf("%s%s.json", c.baseURL, authorKey), &authorData); err != nil {
		return "", err
	}
	return authorData.Name, nil
}

func (c *OpenLibraryClient) convertToMetadata(book *openLibraryBook, isbn string) *BookMetadata {
	metadata := &BookMetadata{
		Title:          book.Title,
		ISBN:           isbn,
		OpenLibraryKey: book.Key,
		PageCount:      book.NumberOfPages,
		Subjects:       book.Subjects,
	}

	if isbn != "" {
		metadata.CoverURL = fmt.Sprintf("https://covers.openlibrary.org/b/isbn/%s-L.jpg", isbn)
	}
	if book.PublishDate != "" {
		metadata.FirstPublished = extractYear(book.PublishDate)
	}
	if len(book.Publishers) > 0 {
		metadata.Publisher = book.Publishers[0]
	}

	// Description is either a string or a {type, value} wrapper.
	switch v := book.Description.(type) {
	case string:
		metadata.Description = v
	case map[string]any:
		if val, ok := v["value"].(string); ok {
			metadata.Description = val
		}
	}

	return metadata
}

func (c *OpenLibraryClient) enrichMetadataFromEdition(metadata *BookMetadata, edition *openLibraryEdition) {
	if metadata.ISBN == "" {
		if len(edition.ISBN13) > 0 {
			metadata.ISBN = edition.ISBN13[0]
		} else if len(edition.ISBN10) > 0 {
			metadata.ISBN = edition.ISBN10[0]
		}
	}
	if metadata.ISBN != "" && metadata.CoverURL == "" {
		metadata.CoverURL = fmt.Sprintf("https://covers.openlibrary.org/b/isbn/%s-L.jpg", metadata.ISBN)
	}
	if metadata.Publisher == "" && len(edition.Publishers) > 0 {
		metadata.Publisher = edition.Publishers[0]
	}
	if metadata.PageCount == 0 && edition.NumberOfPages > 0 {
		metadata.PageCount = edition.NumberOfPages
	}
	if metadata.FirstPublished == 0 && edition.PublishDate != "" {
		metadata.FirstPublished = extractYear(edition.PublishDate)
	}
}

func (c *OpenLibraryClient) convertSearchDocToMetadata(doc *openLibrarySearchDoc) *BookMetadata {
	metadata := &BookMetadata{
		Title:          doc.Title,
		Authors:        doc.AuthorName,
		FirstPublished: doc.FirstPublishYear,
		OpenLibraryKey: doc.Key,
	}

	if len(doc.Publisher) > 0 {
		metadata.Publisher = doc.Publisher[0]
	}

	if len(doc.ISBN) > 0 {
		metadata.ISBN = doc.ISBN[0]
		metadata.CoverURL = fmt.Sprintf("https://covers.openlibrary.org/b/isbn/%s-L.jpg", doc.ISBN[0])
	} else if doc.CoverI != 0 {
		metadata.CoverURL = fmt.Sprintf("https://covers.openlibrary.org/b/id/%d-L.jpg", doc.CoverI)
	}

	if len(doc.Subject) > 0 {
		metadata.Subjects = doc.Subject
		if len(metadata.Subjects) > 10 {
			metadata.Subjects = metadata.Subjects[:10]
		}
	}

	return metadata
}

// normalizeISBN strips hyphens and spaces and rejects anything that is not
// ISBN-10 or ISBN-13 shaped.
func normalizeISBN(isbn string) string {
	isbn = strings.ReplaceAll(isbn, "-", "")
	isbn = strings.ReplaceAll(isbn, " ", "")
	isbn = strings.TrimSpace(isbn)

	if len(isbn) != 10 && len(isbn) != 13 {
		return ""
	}
	return isbn
}

// extractYear pulls a 4-digit year out of the free-text dates OpenLibrary
// returns ("2006", "January 2, 2006", "Jan 2006", ...).
func extractYear(dateStr string) int {
	dateStr = strings.TrimSpace(dateStr)
	if len(dateStr) < 4 {
		return 0
	}

	formats := []string{
		"2006",
		"January 2, 2006",
		"Jan 2, 2006",
		"2006-01-02",
		"January 2006",
	}
	for _, format := range formats {
		if t, err := time.Parse(format, dateStr); err == nil {
			return t.Year()
		}
	}

	// Last resort: find 4 consecutive digits.
	for i := 0; i <= len(dateStr)-4; i++ {
		if dateStr[i] >= '0' && dateStr[i] <= '9' {
			var year int
			if _, err := fmt.Sscanf(dateStr[i:i+4], "%d", &year); err == nil && year > 1000 && year < 3000 {
				return year
			}
		}
	}
	return 0
}

// OpenLibrary API response types (internal)

type openLibraryBook struct {
	Key           string      `json:"key"`
	Title         string      `json:"title"`
	Authors       []authorRef `json:"authors"`
	Publishers    []string    `json:"publishers"`
	PublishDate   string      `json:"publish_date"`
	NumberOfPages int         `json:"number_of_pages"`
	Description   any         `json:"description"`
	Subjects      []string    `json:"subjects"`
	Covers        []int       `json:"covers"`
}

type authorRef struct {
	Key string `json:"key"`
}

type openLibrarySearchResult struct {
	NumFound int                    `json:"numFound"`
	Docs     []openLibrarySearchDoc `json:"docs"`
}

type openLibrarySearchDoc struct {
	Key              string   `json:"key"`
	Title            string   `json:"title"`
	AuthorName       []string `json:"author_name"`
	FirstPublishYear int      `json:"first_publish_year"`
	Publisher        []string `json:"publisher"`
	ISBN             []string `json:"isbn"`
	CoverI           int      `json:"cover_i"`
	CoverEditionKey  string   `json:"cover_edition_key"`
	Subject          []string `json:"subject"`
}

type openLibraryEdition struct {
	Key           string   `json:"key"`
	Title         string   `json:"title"`
	Publishers    []string `json:"publishers"`
	PublishDate   string   `json:"publish_date"`
	ISBN10        []string `json:"isbn_10"`
	ISBN13        []string `json:"isbn_13"`
	NumberOfPages int      `json:"number_of_pages"`
	Covers        []int    `json:"covers"`
}
