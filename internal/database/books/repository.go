// Package books provides database operations for book and highlight storage.
//
// This package implements the BookStore interface defined in
// internal/services/interfaces.go.
//
// # Usage
//
//	repo := books.NewRepository(db)
//	book, err := repo.GetBookByID(123)
package books

import (
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/readstack/readstack/internal/entities"
)

// CreateBatchSize bounds how many books go into a single insert transaction.
// Large imports are persisted in chunks so one bad record cannot void an
// entire multi-hundred-book upload.
const CreateBatchSize = 50

// Repository handles all book and highlight database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetBookByID retrieves a book by its ID with its highlights.
func (r *Repository) GetBookByID(id uint) (*entities.Book, error) {
	var book entities.Book
	err := r.db.Preload("Highlights", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at ASC, id ASC")
	}).First(&book, id).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// ListByOwner retrieves all books for a specific owner with their highlights.
func (r *Repository) ListByOwner(ownerID uint) ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.Preload("Highlights", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at ASC, id ASC")
	}).Where("owner_id = ?", ownerID).Order("id ASC").Find(&books).Error
	return books, err
}

// Create inserts a single book with its highlights.
func (r *Repository) Create(book *entities.Book) error {
	return r.db.Create(book).Error
}

// CreateBatch inserts books in chunks of CreateBatchSize. A failed chunk is
// recorded and skipped; the remaining chunks are still attempted, so a
// partial import persists everything that could be saved. The returned count
// is the number of books actually created, the error strings describe the
// chunks that failed.
func (r *Repository) CreateBatch(books []entities.Book) (created int, errs []string) {
	for start := 0; start < len(books); start += CreateBatchSize {
		end := start + CreateBatchSize
		if end > len(books) {
			end = len(books)
		}
		chunk := books[start:end]
		if err := r.db.Create(&chunk).Error; err != nil {
			log.Printf("Failed to save books %d-%d: %v", start+1, end, err)
			errs = append(errs, fmt.Sprintf("books %d-%d: %v", start+1, end, err))
			continue
		}
		// Write IDs back so callers see what was persisted.
		copy(books[start:end], chunk)
		created += len(chunk)
	}
	return created, errs
}

// Update applies a partial patch to a book. Only the fields present in the
// map are touched; everything else keeps its stored value.
func (r *Repository) Update(id uint, fields map[string]any) error {
	return r.db.Model(&entities.Book{}).Where("id = ?", id).Updates(fields).Error
}

// UpdateStatusBatch sets the status of every listed book in one statement.
func (r *Repository) UpdateStatusBatch(ids []uint, status entities.Status) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.Model(&entities.Book{}).Where("id IN ?", ids).Update("status", status).Error
}

// DeleteBatch soft deletes the listed books and their highlights.
func (r *Repository) DeleteBatch(ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("book_id IN ?", ids).Delete(&entities.Highlight{}).Error; err != nil {
			return err
		}
		return tx.Delete(&entities.Book{}, ids).Error
	})
}

// AppendHighlights attaches new highlight rows to an existing book, skipping
// any passage whose text is already stored for that book.
func (r *Repository) AppendHighlights(bookID uint, texts []string) (added int, err error) {
	if len(texts) == 0 {
		return 0, nil
	}

	var existing []entities.Highlight
	if err := r.db.Where("book_id = ?", bookID).Find(&existing).Error; err != nil {
		return 0, err
	}
	seen := make(map[string]bool, len(existing))
	for _, h := range existing {
		seen[h.Text] = true
	}

	var fresh []entities.Highlight
	for _, text := range texts {
		if text == "" || seen[text] {
			continue
		}
		seen[text] = true
		fresh = append(fresh, entities.Highlight{BookID: bookID, Text: text})
	}
	if len(fresh) == 0 {
		return 0, nil
	}
	if err := r.db.Create(&fresh).Error; err != nil {
		return 0, err
	}
	return len(fresh), nil
}

// FindByISBN finds a book by ISBN for an owner.
func (r *Repository) FindByISBN(isbn string, ownerID uint) (*entities.Book, error) {
	var book entities.Book
	err := r.db.Where("isbn = ? AND owner_id = ?", isbn, ownerID).First(&book).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// GetBooksMissingMetadata returns books without a cover URL, publisher, or
// page count, candidates for the enrichment sweep.
func (r *Repository) GetBooksMissingMetadata(limit int) ([]entities.Book, error) {
	var books []entities.Book
	q := r.db.Where(
		"cover_url = '' OR cover_url IS NULL OR publisher = '' OR publisher IS NULL OR page_count = 0 OR page_count IS NULL",
	).Order("id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&books).Error
	return books, err
}

// GetStatsForOwner returns book and highlight counts for an owner.
func (r *Repository) GetStatsForOwner(ownerID uint) (totalBooks int64, totalHighlights int64, err error) {
	err = r.db.Model(&entities.Book{}).Where("owner_id = ?", ownerID).Count(&totalBooks).Error
	if err != nil {
		return
	}
	err = r.db.Model(&entities.Highlight{}).
		Joins("JOIN books ON books.id = highlights.book_id").
		Where("books.owner_id = ?", ownerID).
		Count(&totalHighlights).Error
	return
}
