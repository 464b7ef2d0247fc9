package bookly

import (
	"context"
	"database/sql"

	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Reviews is the store for review records
type Reviews interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Review, error)
	ListByBook(ctx context.Context, bookID uuid.UUID) ([]*Review, error)
	Create(ctx context.Context, record *Review) (*Review, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ReviewsRepository implements Reviews using Bun.
type ReviewsRepository struct {
	db *bun.DB
}

var _ Reviews = (*ReviewsRepository)(nil)

// NewReviewsRepository creates a new repository.
func NewReviewsRepository(db *bun.DB) *ReviewsRepository {
	return &ReviewsRepository{db: db}
}

// GetByID loads a single review.
func (r *ReviewsRepository) GetByID(ctx context.Context, id uuid.UUID) (*Review, error) {
	record := &Review{}
	err := r.db.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.New("review not found", errors.CategoryNotFound).
				WithCode(errors.CodeNotFound).
				WithMetadata(map[string]any{"id": id.String()})
		}
		return nil, err
	}
	return record, nil
}

// ListByBook returns the reviews for a given book, newest first.
func (r *ReviewsRepository) ListByBook(ctx context.Context, bookID uuid.UUID) ([]*Review, error) {
	var records []*Review
	err := r.db.NewSelect().
		Model(&records).
		Where("book_id = ?", bookID).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return []*Review{}, nil
		}
		return nil, err
	}
	return records, nil
}

// Create inserts a new review record.
func (r *ReviewsRepository) Create(ctx context.Context, record *Review) (*Review, error) {
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

// Delete removes a review by id.
func (r *ReviewsRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.NewDelete().
		Model((*Review)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	return err
}
