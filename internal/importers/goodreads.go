package importers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/readstack/readstack/internal/dedupe"
	"github.com/readstack/readstack/internal/entities"
	"github.com/readstack/readstack/internal/tabular"
)

// Column layout of the Goodreads "export library" CSV. The export carries a
// documented 24-column header; shorter rows are damaged and dropped.
const (
	grColBookID            = 0
	grColTitle             = 1
	grColAuthor            = 2
	grColAdditionalAuthors = 4
	grColISBN              = 5
	grColISBN13            = 6
	grColMyRating          = 7
	grColAvgRating         = 8
	grColPublisher         = 9
	grColPageCount         = 11
	grColYearPublished     = 12
	grColOriginalYear      = 13
	grColDateRead          = 14
	grColDateAdded         = 15
	grColBookshelves       = 16
	grColExclusiveShelf    = 18
	grColMyReview          = 19
	grColPrivateNotes      = 21

	goodreadsColumnCount = 24
)

// The three standard shelves are reading state, not tags.
var goodreadsStandardShelves = map[string]bool{
	"to-read":           true,
	"currently-reading": true,
	"read":              true,
}

// ParseGoodreadsCSV converts a Goodreads library export into candidate
// books, deduplicated.
func ParseGoodreadsCSV(text string) []entities.BookInput {
	rows := tabular.Parse(text)

	var candidates []entities.BookInput
	for i, row := range rows {
		if i == 0 {
			// Documented header row, always present.
			continue
		}
		if len(row) < goodreadsColumnCount {
			continue
		}
		if book, ok := goodreadsRowToBook(row); ok {
			candidates = append(candidates, book)
		}
	}

	return dedupe.DedupeBookInputs(candidates)
}

func goodreadsRowToBook(row []string) (entities.BookInput, bool) {
	title := strings.TrimSpace(row[grColTitle])
	if title == "" {
		return entities.BookInput{}, false
	}

	book := entities.BookInput{
		Title:    title,
		Authors:  splitAuthors(row[grColAuthor], row[grColAdditionalAuthors]),
		Source:   entities.SourceGoodreads,
		SourceID: strings.TrimSpace(row[grColBookID]),
		Status:   goodreadsStatus(row[grColExclusiveShelf]),
	}

	// Prefer ISBN13, fall back to ISBN10.
	if isbn := cleanISBN(row[grColISBN13]); isbn != "" {
		book.ISBN = isbn
	} else {
		book.ISBN = cleanISBN(row[grColISBN])
	}

	if rating, err := strconv.Atoi(strings.TrimSpace(row[grColMyRating])); err == nil && rating > 0 {
		book.Rating = rating
	}
	if avg, err := strconv.ParseFloat(strings.TrimSpace(row[grColAvgRating]), 64); err == nil && avg > 0 {
		book.AvgRating = avg
	}

	book.Publisher = strings.TrimSpace(row[grColPublisher])
	if pages, err := strconv.Atoi(strings.TrimSpace(row[grColPageCount])); err == nil && pages > 0 {
		book.PageCount = pages
	}
	if year := goodreadsYear(row[grColOriginalYear]); year != 0 {
		book.FirstPublished = year
	} else {
		book.FirstPublished = goodreadsYear(row[grColYearPublished])
	}

	book.Tags = goodreadsTags(row[grColBookshelves])
	book.Notes = joinNotes(row[grColMyReview], row[grColPrivateNotes])
	book.DateFinished = goodreadsDate(row[grColDateRead])
	book.DateAdded = goodreadsDate(row[grColDateAdded])

	return book, true
}

// goodreadsStatus maps the exclusive shelf to a reading status. Only "read"
// is trusted; "currently-reading" deliberately maps to tbd because a stale
// shelf is far more common than an actual in-progress read.
func goodreadsStatus(shelf string) entities.Status {
	if strings.EqualFold(strings.TrimSpace(shelf), "read") {
		return entities.StatusFinished
	}
	return entities.StatusTBD
}

func goodreadsTags(bookshelves string) []string {
	var tags []string
	for _, shelf := range strings.Split(bookshelves, ",") {
		shelf = strings.TrimSpace(shelf)
		if shelf == "" || goodreadsStandardShelves[strings.ToLower(shelf)] {
			continue
		}
		tags = append(tags, shelf)
	}
	return tags
}

// goodreadsDate converts the export's YYYY/MM/DD form to ISO. Anything else
// is treated as absent.
func goodreadsDate(raw string) string {
	s := strings.TrimSpace(raw)
	parts := strings.Split(s, "/")
	if len(parts) != 3 {
		return ""
	}
	year, errY := strconv.Atoi(parts[0])
	month, errM := strconv.Atoi(parts[1])
	day, errD := strconv.Atoi(parts[2])
	if errY != nil || errM != nil || errD != nil {
		return ""
	}
	if year < 1000 || month < 1 || month > 12 || day < 1 || day > 31 {
		return ""
	}
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
}

func goodreadsYear(raw string) int {
	year, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || year == 0 {
		return 0
	}
	return year
}
