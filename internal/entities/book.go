package entities

import (
	"time"

	"gorm.io/gorm"
)

// Status is the reading state of a book.
type Status string

const (
	StatusTBD        Status = "tbd"
	StatusWantToRead Status = "want-to-read"
	StatusReading    Status = "reading"
	StatusFinished   Status = "finished"
	StatusParked     Status = "parked"
)

// Priority orders statuses for merge resolution: the more "advanced"
// state always wins when two duplicate records disagree.
func (s Status) Priority() int {
	switch s {
	case StatusFinished:
		return 4
	case StatusReading:
		return 3
	case StatusWantToRead:
		return 2
	case StatusParked:
		return 1
	default:
		return 0
	}
}

// Import source identifiers.
const (
	SourceGoodreads = "goodreads"
	SourceLibby     = "libby"
	SourceKindle    = "kindle"
	SourceKobo      = "kobo"
	SourceReadwise  = "readwise"
	SourceSnipd     = "snipd"
	SourceManual    = "manual"
)

// UnknownAuthor is the sentinel used when a source provides no author at all.
const UnknownAuthor = "Unknown"

// BookInput is a parsed-but-not-yet-persisted book produced by an importer.
// Instances are transient: they are created by a parser, possibly merged with
// siblings during dedup, then either discarded as a duplicate of an existing
// book or submitted for creation.
//
// Dates are ISO strings (YYYY-MM-DD); empty means absent, never guessed.
type BookInput struct {
	Title          string   `json:"title"`
	Authors        []string `json:"authors"`
	ISBN           string   `json:"isbn,omitempty"`
	CoverURL       string   `json:"cover_url,omitempty"`
	PageCount      int      `json:"page_count,omitempty"`
	FirstPublished int      `json:"first_published,omitempty"`
	Publisher      string   `json:"publisher,omitempty"`
	Description    string   `json:"description,omitempty"`
	Genres         []string `json:"genres,omitempty"`
	Status         Status   `json:"status,omitempty"`
	Rating         int      `json:"rating,omitempty"` // 1-5, 0 = unset
	Notes          string   `json:"notes,omitempty"`
	Tags           []string `json:"tags,omitempty"`
	Highlights     []string `json:"highlights,omitempty"`
	Progress       int      `json:"progress,omitempty"` // 0-100
	DateAdded      string   `json:"date_added,omitempty"`
	DateStarted    string   `json:"date_started,omitempty"`
	DateFinished   string   `json:"date_finished,omitempty"`
	Source         string   `json:"source,omitempty"`
	SourceID       string   `json:"source_id,omitempty"`

	// Community rating carried over from Goodreads exports.
	AvgRating    float64 `json:"goodreads_avg_rating,omitempty"`
	RatingsCount int     `json:"goodreads_ratings_count,omitempty"`
}

// FirstAuthor returns the primary author, or the empty string.
func (b BookInput) FirstAuthor() string {
	if len(b.Authors) == 0 {
		return ""
	}
	return b.Authors[0]
}

// Record converts a candidate into a persistable book owned by ownerID.
func (b BookInput) Record(ownerID uint) Book {
	highlights := make([]Highlight, 0, len(b.Highlights))
	for _, text := range b.Highlights {
		highlights = append(highlights, Highlight{Text: text})
	}
	return Book{
		OwnerID:        ownerID,
		Title:          b.Title,
		Authors:        b.Authors,
		ISBN:           b.ISBN,
		CoverURL:       b.CoverURL,
		PageCount:      b.PageCount,
		FirstPublished: b.FirstPublished,
		Publisher:      b.Publisher,
		Description:    b.Description,
		Genres:         b.Genres,
		Status:         b.Status,
		Rating:         b.Rating,
		Notes:          b.Notes,
		Tags:           b.Tags,
		Progress:       b.Progress,
		DateAdded:      b.DateAdded,
		DateStarted:    b.DateStarted,
		DateFinished:   b.DateFinished,
		Source:         b.Source,
		SourceID:       b.SourceID,
		AvgRating:      b.AvgRating,
		RatingsCount:   b.RatingsCount,
		Highlights:     highlights,
	}
}

// Book is a persisted book record. Identity (ID) is stable across updates:
// title and authors are mutable but the ID never changes on merge.
type Book struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	OwnerID uint `gorm:"index" json:"owner_id"`

	Title          string   `gorm:"index;size:512" json:"title"`
	Authors        []string `gorm:"serializer:json" json:"authors"`
	ISBN           string   `gorm:"index;size:20" json:"isbn,omitempty"`
	CoverURL       string   `gorm:"size:2048" json:"cover_url,omitempty"`
	PageCount      int      `json:"page_count,omitempty"`
	FirstPublished int      `json:"first_published,omitempty"`
	Publisher      string   `gorm:"size:256" json:"publisher,omitempty"`
	Description    string   `gorm:"type:text" json:"description,omitempty"`
	Genres         []string `gorm:"serializer:json" json:"genres,omitempty"`
	Status         Status   `gorm:"size:20;default:'tbd'" json:"status"`
	Rating         int      `json:"rating,omitempty"`
	Notes          string   `gorm:"type:text" json:"notes,omitempty"`
	Tags           []string `gorm:"serializer:json" json:"tags,omitempty"`
	Progress       int      `json:"progress,omitempty"`
	DateAdded      string   `gorm:"size:10" json:"date_added,omitempty"`
	DateStarted    string   `gorm:"size:10" json:"date_started,omitempty"`
	DateFinished   string   `gorm:"size:10" json:"date_finished,omitempty"`
	Source         string   `gorm:"size:32" json:"source,omitempty"`
	SourceID       string   `gorm:"size:256" json:"source_id,omitempty"`
	AvgRating      float64  `json:"goodreads_avg_rating,omitempty"`
	RatingsCount   int      `json:"goodreads_ratings_count,omitempty"`

	Highlights []Highlight `gorm:"foreignKey:BookID" json:"highlights,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Book) TableName() string {
	return "books"
}

// Highlight is a single saved passage attached to a book.
type Highlight struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	BookID    uint      `gorm:"index" json:"book_id"`
	Text      string    `gorm:"type:text" json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

func (Highlight) TableName() string {
	return "highlights"
}

// Input converts a persisted book into the transient candidate shape, for
// matching and merge operations that run over both.
func (b *Book) Input() BookInput {
	highlights := make([]string, 0, len(b.Highlights))
	for _, h := range b.Highlights {
		highlights = append(highlights, h.Text)
	}
	return BookInput{
		Title:          b.Title,
		Authors:        b.Authors,
		ISBN:           b.ISBN,
		CoverURL:       b.CoverURL,
		PageCount:      b.PageCount,
		FirstPublished: b.FirstPublished,
		Publisher:      b.Publisher,
		Description:    b.Description,
		Genres:         b.Genres,
		Status:         b.Status,
		Rating:         b.Rating,
		Notes:          b.Notes,
		Tags:           b.Tags,
		Highlights:     highlights,
		Progress:       b.Progress,
		DateAdded:      b.DateAdded,
		DateStarted:    b.DateStarted,
		DateFinished:   b.DateFinished,
		Source:         b.Source,
		SourceID:       b.SourceID,
		AvgRating:      b.AvgRating,
		RatingsCount:   b.RatingsCount,
	}
}

// DuplicateGroup is a non-empty set of persisted books judged mutually
// equivalent by the matching engine. Reporting-only, never persisted.
type DuplicateGroup struct {
	Books []Book `json:"books"`
}

// User owns books. Imports are always scoped to a single owner.
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Username  string         `gorm:"uniqueIndex;size:100" json:"username"`
	Email     string         `gorm:"uniqueIndex;size:255" json:"email"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (User) TableName() string {
	return "users"
}
