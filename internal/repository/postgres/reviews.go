package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/nvoronin/bookly/internal/models"
)

type ReviewRepo struct {
	DB DBTX
}

const createReview = `-- name: CreateReview
INSERT INTO reviews (id, user_id, book_id, rating, review_text)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, user_id, book_id, rating, review_text, created_at, updated_at
`

func (r *ReviewRepo) CreateReview(ctx context.Context, review models.Review) (models.Review, error) {
	id := review.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	rows, _ := r.DB.Query(ctx, createReview, id, review.UserID, review.BookID, review.Rating, review.ReviewText)
	created, err := pgx.CollectOneRow(rows, rowToReview)
	if err != nil {
		return created, fmt.Errorf("db error: %w", err)
	}

	return created, nil
}

const listReviews = `-- name: ListReviews
SELECT id, user_id, book_id, rating, review_text, created_at, updated_at
FROM reviews
ORDER BY created_at DESC
`

func (r *ReviewRepo) ListReviews(ctx context.Context) ([]models.Review, error) {
	rows, _ := r.DB.Query(ctx, listReviews)
	reviews, err := pgx.CollectRows(rows, rowToReview)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return reviews, nil
}

const listBookReviews = `-- name: ListBookReviews
SELECT id, user_id, book_id, rating, review_text, created_at, updated_at
FROM reviews
WHERE book_id = $1
ORDER BY created_at DESC
`

func (r *ReviewRepo) ListBookReviews(ctx context.Context, bookID uuid.UUID) ([]models.Review, error) {
	rows, _ := r.DB.Query(ctx, listBookReviews, bookID)
	reviews, err := pgx.CollectRows(rows, rowToReview)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return reviews, nil
}

func rowToReview(row pgx.CollectableRow) (models.Review, error) {
	var rv models.Review
	err := row.Scan(&rv.ID, &rv.UserID, &rv.BookID, &rv.Rating, &rv.ReviewText, &rv.CreatedAt, &rv.UpdatedAt)
	return rv, err
}
