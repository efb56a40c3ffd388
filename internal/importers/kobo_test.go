package importers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/readstack/readstack/internal/entities"
)

func TestParseKoboList_FullBlock(t *testing.T) {
	text := `The Fifth Season
N.K. Jemisin
The Broken Earth Book 1
Fantasy
100% read 3/4/2024`

	books := ParseKoboList(text)

	require.Len(t, books, 1)
	b := books[0]
	assert.Equal(t, "The Fifth Season", b.Title)
	assert.Equal(t, []string{"N.K. Jemisin"}, b.Authors)
	assert.Equal(t, []string{"Fantasy"}, b.Genres)
	assert.Equal(t, entities.StatusFinished, b.Status)
	assert.Equal(t, 100, b.Progress)
	assert.Equal(t, entities.SourceKobo, b.Source)
}

func TestParseKoboList_LeadingHeaderLinesDropped(t *testing.T) {
	// Pastes that include the table header must not turn the column names
	// into the first book's fields.
	text := `Title
Author
Status
The Fifth Season
N.K. Jemisin
100% read 3/4/2024`

	books := ParseKoboList(text)

	require.Len(t, books, 1)
	assert.Equal(t, "The Fifth Season", books[0].Title)
	assert.Equal(t, []string{"N.K. Jemisin"}, books[0].Authors)
}

func TestParseKoboList_HeaderProbeSparesRealTitles(t *testing.T) {
	// Titles containing header words survive: header cells are at most two
	// words, and the probe stops at the first data line.
	text := `Title
The Status Game
Will Storr
45% read 5/1/2024`

	books := ParseKoboList(text)

	require.Len(t, books, 1)
	assert.Equal(t, "The Status Game", books[0].Title)
	assert.Equal(t, []string{"Will Storr"}, books[0].Authors)
}

func TestParseKoboList_PartialProgressStaysTBD(t *testing.T) {
	// Partial progress deliberately never maps to reading: a stale 45% is
	// far more common than an active read.
	text := `The Obelisk Gate
N.K. Jemisin
45% read 5/1/2024`

	books := ParseKoboList(text)

	require.Len(t, books, 1)
	assert.Equal(t, entities.StatusTBD, books[0].Status)
	assert.Equal(t, 45, books[0].Progress)
}

func TestParseKoboList_UnreadStaysTBD(t *testing.T) {
	text := `The Stone Sky
N.K. Jemisin
Unread 6/12/2024`

	books := ParseKoboList(text)

	require.Len(t, books, 1)
	assert.Equal(t, entities.StatusTBD, books[0].Status)
	assert.Zero(t, books[0].Progress)
}

func TestParseKoboList_BuyNowFilteredOut(t *testing.T) {
	text := `Store Teaser Title
Famous Author
Buy Now $9.99 1/2/2024
Owned Book
Real Author
100% read 1/3/2024`

	books := ParseKoboList(text)

	require.Len(t, books, 1)
	assert.Equal(t, "Owned Book", books[0].Title)
}

func TestParseKoboList_PreviewFilteredOut(t *testing.T) {
	text := `Sampler Title
Some Writer
Preview 1/2/2024`

	assert.Empty(t, ParseKoboList(text))
}

func TestParseKoboList_MissingAuthorDropped(t *testing.T) {
	// Both title and author are required; a block without a recognizable
	// author line is dropped rather than guessed.
	text := `just some lowercased fragment line
another stray fragment here
Unread 2/2/2024`

	assert.Empty(t, ParseKoboList(text))
}

func TestParseKoboList_MultipleBooksAnchored(t *testing.T) {
	text := `First Novel Title
Jane Writer
Fiction
100% read 1/1/2024
Second Novel Title
John Scribe
12% read 2/2/2024`

	books := ParseKoboList(text)

	require.Len(t, books, 2)
	assert.Equal(t, "First Novel Title", books[0].Title)
	assert.Equal(t, []string{"Jane Writer"}, books[0].Authors)
	assert.Equal(t, "Second Novel Title", books[1].Title)
	assert.Equal(t, []string{"John Scribe"}, books[1].Authors)
}

func TestParseKoboList_CoAuthorSuffixStripped(t *testing.T) {
	text := `Good Omens
Terry Pratchett +1
100% read 7/7/2024`

	books := ParseKoboList(text)

	require.Len(t, books, 1)
	assert.Equal(t, []string{"Terry Pratchett"}, books[0].Authors)
}

func TestKoboLinePredicates(t *testing.T) {
	assert.True(t, isKoboGenre("Fantasy"))
	assert.True(t, isKoboGenre("science fiction"))
	assert.False(t, isKoboGenre("The Fifth Season"))

	assert.True(t, isKoboSeries("The Broken Earth Book 1"))
	assert.True(t, isKoboSeries("Vol. 3"))
	assert.True(t, isKoboSeries("The Complete Hitchhiker's Guide"))
	assert.False(t, isKoboSeries("Project Hail Mary"))

	assert.True(t, isKoboAuthor("Andy Weir"))
	assert.True(t, isKoboAuthor("Terry Pratchett +1"))
	assert.True(t, isKoboAuthor("Brene Brown, PhD"))
	assert.False(t, isKoboAuthor("a lowercase fragment"))
}

func TestParseKoboList_Empty(t *testing.T) {
	assert.Empty(t, ParseKoboList(""))
	assert.Empty(t, ParseKoboList("no anchors in this text\nat all"))
}
