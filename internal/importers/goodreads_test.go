package importers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/readstack/readstack/internal/entities"
)

const goodreadsHeader = "Book Id,Title,Author,Author l-f,Additional Authors,ISBN,ISBN13,My Rating,Average Rating,Publisher,Binding,Number of Pages,Year Published,Original Publication Year,Date Read,Date Added,Bookshelves,Bookshelves with positions,Exclusive Shelf,My Review,Spoiler,Private Notes,Read Count,Owned Copies"

// goodreadsRow builds a 24-field CSV row with the given overrides, quoting
// fields that embed commas or newlines.
func goodreadsRow(overrides map[int]string) string {
	fields := make([]string, goodreadsColumnCount)
	fields[grColBookID] = "1"
	fields[grColTitle] = "Placeholder"
	fields[grColAuthor] = "Some Author"
	for idx, val := range overrides {
		if idx == grColISBN || idx == grColISBN13 {
			// Formula-guarded fields go in raw.
			fields[idx] = val
			continue
		}
		if strings.ContainsAny(val, ",\n\"") {
			val = `"` + strings.ReplaceAll(val, `"`, `""`) + `"`
		}
		fields[idx] = val
	}
	return strings.Join(fields, ",")
}

func TestParseGoodreadsCSV_EndToEnd(t *testing.T) {
	csv := goodreadsHeader + "\n" + goodreadsRow(map[int]string{
		grColBookID:         "25744928",
		grColTitle:          "Atomic Habits",
		grColAuthor:         "James Clear",
		grColISBN13:         `="9780735211292"`,
		grColMyRating:       "5",
		grColExclusiveShelf: "read",
		grColDateRead:       "2023/06/15",
	})

	books := ParseGoodreadsCSV(csv)

	require.Len(t, books, 1)
	b := books[0]
	assert.Equal(t, "Atomic Habits", b.Title)
	assert.Equal(t, []string{"James Clear"}, b.Authors)
	assert.Equal(t, "9780735211292", b.ISBN)
	assert.Equal(t, 5, b.Rating)
	assert.Equal(t, entities.StatusFinished, b.Status)
	assert.Equal(t, "2023-06-15", b.DateFinished)
	assert.Equal(t, entities.SourceGoodreads, b.Source)
	assert.Equal(t, "25744928", b.SourceID)
}

func TestParseGoodreadsCSV_StatusMapping(t *testing.T) {
	tests := []struct {
		shelf string
		want  entities.Status
	}{
		{"read", entities.StatusFinished},
		{"to-read", entities.StatusTBD},
		{"currently-reading", entities.StatusTBD},
		{"some-custom-shelf", entities.StatusTBD},
		{"", entities.StatusTBD},
	}

	for _, tt := range tests {
		t.Run(tt.shelf, func(t *testing.T) {
			csv := goodreadsHeader + "\n" + goodreadsRow(map[int]string{
				grColTitle:          "Shelf Test",
				grColExclusiveShelf: tt.shelf,
			})
			books := ParseGoodreadsCSV(csv)
			require.Len(t, books, 1)
			assert.Equal(t, tt.want, books[0].Status)
		})
	}
}

func TestParseGoodreadsCSV_ShortRowsDropped(t *testing.T) {
	csv := goodreadsHeader + "\nonly,three,fields\n" + goodreadsRow(map[int]string{grColTitle: "Kept"})

	books := ParseGoodreadsCSV(csv)

	require.Len(t, books, 1)
	assert.Equal(t, "Kept", books[0].Title)
}

func TestParseGoodreadsCSV_ISBNFormulaGuardUnwrapped(t *testing.T) {
	csv := goodreadsHeader + "\n" + goodreadsRow(map[int]string{
		grColTitle:  "Dune",
		grColAuthor: "Frank Herbert",
		grColISBN:   `="0441172717"`,
		grColISBN13: `=""`,
	})

	books := ParseGoodreadsCSV(csv)

	require.Len(t, books, 1)
	assert.Equal(t, "0441172717", books[0].ISBN)
}

func TestParseGoodreadsCSV_AdditionalAuthorsAppended(t *testing.T) {
	csv := goodreadsHeader + "\n" + goodreadsRow(map[int]string{
		grColTitle:             "Good Omens",
		grColAuthor:            "Terry Pratchett",
		grColAdditionalAuthors: "Neil Gaiman,  ",
	})

	books := ParseGoodreadsCSV(csv)

	require.Len(t, books, 1)
	assert.Equal(t, []string{"Terry Pratchett", "Neil Gaiman"}, books[0].Authors)
}

func TestParseGoodreadsCSV_StandardShelvesExcludedFromTags(t *testing.T) {
	csv := goodreadsHeader + "\n" + goodreadsRow(map[int]string{
		grColTitle:       "Dune",
		grColAuthor:      "Frank Herbert",
		grColBookshelves: "to-read, sci-fi, Currently-Reading, favorites, read",
	})

	books := ParseGoodreadsCSV(csv)

	require.Len(t, books, 1)
	assert.Equal(t, []string{"sci-fi", "favorites"}, books[0].Tags)
}

func TestParseGoodreadsCSV_NotesJoined(t *testing.T) {
	csv := goodreadsHeader + "\n" + goodreadsRow(map[int]string{
		grColTitle:        "Dune",
		grColAuthor:       "Frank Herbert",
		grColMyReview:     "Loved the worldbuilding",
		grColPrivateNotes: "re-read in 2025",
	})

	books := ParseGoodreadsCSV(csv)

	require.Len(t, books, 1)
	notes := books[0].Notes
	assert.Contains(t, notes, "Loved the worldbuilding")
	assert.Contains(t, notes, "re-read in 2025")
	assert.Contains(t, notes, "---")
}

func TestParseGoodreadsCSV_MalformedDatesOmitted(t *testing.T) {
	csv := goodreadsHeader + "\n" + goodreadsRow(map[int]string{
		grColTitle:    "Dune",
		grColAuthor:   "Frank Herbert",
		grColDateRead: "not-a-date",
	})

	books := ParseGoodreadsCSV(csv)

	require.Len(t, books, 1)
	assert.Empty(t, books[0].DateFinished)
}

func TestParseGoodreadsCSV_ZeroRatingsDropped(t *testing.T) {
	csv := goodreadsHeader + "\n" + goodreadsRow(map[int]string{
		grColTitle:     "Dune",
		grColAuthor:    "Frank Herbert",
		grColMyRating:  "0",
		grColAvgRating: "0.00",
	})

	books := ParseGoodreadsCSV(csv)

	require.Len(t, books, 1)
	assert.Zero(t, books[0].Rating)
	assert.Zero(t, books[0].AvgRating)
}

func TestParseGoodreadsCSV_DuplicateRowsMerged(t *testing.T) {
	csv := goodreadsHeader + "\n" +
		goodreadsRow(map[int]string{grColTitle: "Dune", grColAuthor: "Frank Herbert", grColMyRating: "5"}) + "\n" +
		goodreadsRow(map[int]string{grColTitle: "Dune: Deluxe Edition", grColAuthor: "Frank Herbert", grColPrivateNotes: "gift copy"})

	books := ParseGoodreadsCSV(csv)

	require.Len(t, books, 1)
	assert.Equal(t, 5, books[0].Rating)
	assert.Contains(t, books[0].Notes, "gift copy")
}
