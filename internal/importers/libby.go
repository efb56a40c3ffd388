package importers

import (
	"fmt"
	"sort"
	"strings"

	"github.com/readstack/readstack/internal/dedupe"
	"github.com/readstack/readstack/internal/entities"
	"github.com/readstack/readstack/internal/tabular"
)

// Column layout of the Libby timeline export CSV (9 columns).
const (
	libbyColCover     = 0
	libbyColTitle     = 1
	libbyColAuthor    = 2
	libbyColPublisher = 3
	libbyColISBN      = 4
	libbyColTimestamp = 5
	libbyColActivity  = 6
	libbyColDetails   = 7
	libbyColLibrary   = 8

	libbyColumnCount = 9
)

// libbyLoan is one consolidated book across all of its loan rows.
type libbyLoan struct {
	representative []string // row with the longest cover URL
	borrows        []string // ISO dates
	returns        []string // ISO dates
	borrowCount    int
	hasReturn      bool // any return row, even with an unparseable timestamp
	library        string
}

// ParseLibbyCSV converts a Libby timeline export into candidate books.
// A book borrowed multiple times collapses to one candidate carrying the
// earliest borrow and latest return dates.
func ParseLibbyCSV(text string) []entities.BookInput {
	rows := tabular.Parse(text)

	loans := make(map[string]*libbyLoan)
	var order []string

	for i, row := range rows {
		if i == 0 {
			continue
		}
		if len(row) < libbyColumnCount {
			continue
		}
		title := strings.TrimSpace(row[libbyColTitle])
		author := strings.TrimSpace(row[libbyColAuthor])
		if title == "" {
			continue
		}

		key := groupKey(dedupe.CoreTitle(title), dedupe.NormalizeAuthor(author))
		loan, ok := loans[key]
		if !ok {
			loan = &libbyLoan{representative: row}
			loans[key] = loan
			order = append(order, key)
		}

		// Keep the row with the richest cover URL as the metadata source.
		if len(row[libbyColCover]) > len(loan.representative[libbyColCover]) {
			loan.representative = row
		}
		if lib := strings.TrimSpace(row[libbyColLibrary]); lib != "" {
			loan.library = lib
		}

		date := parseFlexibleDate(row[libbyColTimestamp])
		switch strings.ToLower(strings.TrimSpace(row[libbyColActivity])) {
		case "borrowed":
			loan.borrowCount++
			if date != "" {
				loan.borrows = append(loan.borrows, date)
			}
		case "returned":
			loan.hasReturn = true
			if date != "" {
				loan.returns = append(loan.returns, date)
			}
		}
	}

	var candidates []entities.BookInput
	for _, key := range order {
		candidates = append(candidates, libbyLoanToBook(loans[key]))
	}

	return dedupe.DedupeBookInputs(candidates)
}

func libbyLoanToBook(loan *libbyLoan) entities.BookInput {
	row := loan.representative

	book := entities.BookInput{
		Title:     strings.TrimSpace(row[libbyColTitle]),
		Authors:   splitAuthors(row[libbyColAuthor], ""),
		Publisher: strings.TrimSpace(row[libbyColPublisher]),
		ISBN:      cleanISBN(row[libbyColISBN]),
		CoverURL:  strings.TrimSpace(row[libbyColCover]),
		Source:    entities.SourceLibby,
		Status:    entities.StatusTBD,
	}

	if len(loan.borrows) > 0 {
		sort.Strings(loan.borrows)
		book.DateStarted = loan.borrows[0]
	}
	if len(loan.returns) > 0 {
		sort.Strings(loan.returns)
		book.DateFinished = loan.returns[len(loan.returns)-1]
	}
	if loan.hasReturn {
		// A recorded return is the only signal we trust for completion,
		// whether or not its timestamp parsed. "Still borrowed" stays tbd:
		// it is ambiguous whether the user is actually reading.
		book.Status = entities.StatusFinished
	}

	if loan.borrowCount > 1 {
		book.Notes = fmt.Sprintf("Borrowed %d times from %s", loan.borrowCount, loan.library)
	}

	return book
}
