package tabular

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_SimpleRows(t *testing.T) {
	rows := Parse("a,b,c\nd,e,f")

	require.Len(t, rows, 2)
	assert.Equal(t, []string{"a", "b", "c"}, rows[0])
	assert.Equal(t, []string{"d", "e", "f"}, rows[1])
}

func TestParse_QuotedFieldWithCommaAndNewline(t *testing.T) {
	rows := Parse("title,note\r\n\"Hello, \"\"World\"\"\nLine2\",plain")

	require.Len(t, rows, 2)
	require.Len(t, rows[1], 2)
	assert.Equal(t, "Hello, \"World\"\nLine2", rows[1][0])
	assert.Equal(t, "plain", rows[1][1])
}

func TestParse_RowSeparators(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"unix", "a,b\nc,d"},
		{"windows", "a,b\r\nc,d"},
		{"bare carriage return", "a,b\rc,d"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := Parse(tt.input)
			require.Len(t, rows, 2)
			assert.Equal(t, []string{"a", "b"}, rows[0])
			assert.Equal(t, []string{"c", "d"}, rows[1])
		})
	}
}

func TestParse_NewlineInsideQuotesIsNotARowBreak(t *testing.T) {
	rows := Parse("\"line one\nline two\",x")

	require.Len(t, rows, 1)
	assert.Equal(t, "line one\nline two", rows[0][0])
}

func TestParse_BlankRowsDropped(t *testing.T) {
	rows := Parse("a,b\n\n , \nc,d\n")

	require.Len(t, rows, 2)
	assert.Equal(t, []string{"a", "b"}, rows[0])
	assert.Equal(t, []string{"c", "d"}, rows[1])
}

func TestParse_FieldsAreTrimmed(t *testing.T) {
	rows := Parse("  a , b  ,  c ")

	require.Len(t, rows, 1)
	assert.Equal(t, []string{"a", "b", "c"}, rows[0])
}

func TestParse_UnterminatedQuoteRecovers(t *testing.T) {
	// The open quote swallows the rest of the text; nothing is lost and no
	// error is raised.
	rows := Parse("a,\"unterminated\nb,c")

	require.Len(t, rows, 1)
	assert.Equal(t, "a", rows[0][0])
	assert.Equal(t, "unterminated\nb,c", rows[0][1])
}

func TestParse_TrailingNewlineProducesNoEmptyRow(t *testing.T) {
	rows := Parse("a,b\n")

	assert.Len(t, rows, 1)
}

func TestParse_Empty(t *testing.T) {
	assert.Empty(t, Parse(""))
	assert.Empty(t, Parse("\n\n"))
}

func TestLooksLikeHeader(t *testing.T) {
	assert.True(t, LooksLikeHeader([]string{"Title", "Author"}, "title"))
	assert.True(t, LooksLikeHeader([]string{"BOOK TITLE"}, "book title"))
	assert.False(t, LooksLikeHeader([]string{"Dune", "Frank Herbert"}, "title", "author"))
	assert.False(t, LooksLikeHeader(nil, "title"))
}
