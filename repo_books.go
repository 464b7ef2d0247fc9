package bookly

import (
	"context"
	"database/sql"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Books is the store for book records
type Books interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Book, error)
	ListAll(ctx context.Context, limit, offset int) ([]*Book, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Book, error)
	Create(ctx context.Context, record *Book) (*Book, error)
	Update(ctx context.Context, record *Book) (*Book, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// BooksRepository implements Books using Bun.
type BooksRepository struct {
	db *bun.DB
}

var _ Books = (*BooksRepository)(nil)

// NewBooksRepository creates a new repository.
func NewBooksRepository(db *bun.DB) *BooksRepository {
	return &BooksRepository{db: db}
}

// GetByID loads a single book with its reviews.
func (r *BooksRepository) GetByID(ctx context.Context, id uuid.UUID) (*Book, error) {
	record := &Book{}
	err := r.db.NewSelect().
		Model(record).
		Relation("Reviews").
		Where("?TableAlias.id = ?", id).
		Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.New("book not found", errors.CategoryNotFound).
				WithCode(errors.CodeNotFound).
				WithMetadata(map[string]any{"id": id.String()})
		}
		return nil, err
	}
	return record, nil
}

// ListAll returns books ordered by creation date, newest first.
func (r *BooksRepository) ListAll(ctx context.Context, limit, offset int) ([]*Book, error) {
	if limit <= 0 {
		limit = 50
	}

	var records []*Book
	err := r.db.NewSelect().
		Model(&records).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return []*Book{}, nil
		}
		return nil, err
	}
	return records, nil
}

// ListByUser returns the books submitted by a given user.
func (r *BooksRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*Book, error) {
	var records []*Book
	err := r.db.NewSelect().
		Model(&records).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return []*Book{}, nil
		}
		return nil, err
	}
	return records, nil
}

// Create inserts a new book record.
func (r *BooksRepository) Create(ctx context.Context, record *Book) (*Book, error) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	_, err := r.db.NewInsert().
		Model(record).
		Exec(ctx)
	if err != nil {
		return nil, err
	}
	return record, nil
}

// Update persists changes to an existing book.
func (r *BooksRepository) Update(ctx context.Context, record *Book) (*Book, error) {
	now := time.Now()
	record.UpdatedAt = &now

	res, err := r.db.NewUpdate().
		Model(record).
		OmitZero().
		WherePK().
		Exec(ctx)
	if err != nil {
		return nil, err
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, errors.New("book not found", errors.CategoryNotFound).
			WithCode(errors.CodeNotFound).
			WithMetadata(map[string]any{"id": record.ID.String()})
	}

	return record, nil
}

// Delete removes a book by id.
func (r *BooksRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.NewDelete().
		Model((*Book)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	return err
}
