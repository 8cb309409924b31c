package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/nvoronin/bookly/internal/apperrors"
	"github.com/nvoronin/bookly/internal/models"
	"github.com/nvoronin/bookly/internal/repository"
)

type BookRepo struct {
	DB DBTX
}

const createBook = `-- name: CreateBook
INSERT INTO books (id, user_id, title, publisher, published_date, page_count, language)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, user_id, title, publisher, published_date, page_count, language, created_at, updated_at
`

func (r *BookRepo) CreateBook(ctx context.Context, book models.Book) (models.Book, error) {
	id := book.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	rows, _ := r.DB.Query(ctx, createBook, id, book.UserID, book.Title, book.Publisher, book.PublishedDate, book.PageCount, book.Language)
	created, err := pgx.CollectOneRow(rows, rowToBook)
	if err != nil {
		return created, fmt.Errorf("db error: %w", err)
	}

	return created, nil
}

const getBook = `-- name: GetBook
SELECT id, user_id, title, publisher, published_date, page_count, language, created_at, updated_at
FROM books
WHERE id = $1
`

func (r *BookRepo) GetBook(ctx context.Context, bookID uuid.UUID) (models.Book, error) {
	rows, _ := r.DB.Query(ctx, getBook, bookID)
	return collectBook(rows)
}

const listBooks = `-- name: ListBooks
SELECT id, user_id, title, publisher, published_date, page_count, language, created_at, updated_at
FROM books
ORDER BY created_at DESC
`

func (r *BookRepo) ListBooks(ctx context.Context) ([]models.Book, error) {
	rows, _ := r.DB.Query(ctx, listBooks)
	books, err := pgx.CollectRows(rows, rowToBook)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return books, nil
}

const listUserBooks = `-- name: ListUserBooks
SELECT id, user_id, title, publisher, published_date, page_count, language, created_at, updated_at
FROM books
WHERE user_id = $1
ORDER BY created_at DESC
`

func (r *BookRepo) ListUserBooks(ctx context.Context, userID uuid.UUID) ([]models.Book, error) {
	rows, _ := r.DB.Query(ctx, listUserBooks, userID)
	books, err := pgx.CollectRows(rows, rowToBook)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return books, nil
}

const updateBook = `-- name: UpdateBook
UPDATE books
SET title = $2, publisher = $3, page_count = $4, language = $5, updated_at = now()
WHERE id = $1
RETURNING id, user_id, title, publisher, published_date, page_count, language, created_at, updated_at
`

func (r *BookRepo) UpdateBook(ctx context.Context, bookID uuid.UUID, arg repository.UpdateBookParams) (models.Book, error) {
	rows, _ := r.DB.Query(ctx, updateBook, bookID, arg.Title, arg.Publisher, arg.PageCount, arg.Language)
	return collectBook(rows)
}

const deleteBook = `-- name: DeleteBook
DELETE FROM books
WHERE id = $1
`

func (r *BookRepo) DeleteBook(ctx context.Context, bookID uuid.UUID) error {
	tag, err := r.DB.Exec(ctx, deleteBook, bookID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo error: %w", apperrors.ErrBookNotFound)
	}

	return nil
}

func collectBook(rows pgx.Rows) (models.Book, error) {
	book, err := pgx.CollectOneRow(rows, rowToBook)

	switch {
	case err == nil:
		return book, nil
	case errors.Is(err, pgx.ErrNoRows):
		return book, fmt.Errorf("repo error: %w", apperrors.ErrBookNotFound)
	default:
		return book, fmt.Errorf("db error: %w", err)
	}
}

func rowToBook(row pgx.CollectableRow) (models.Book, error) {
	var b models.Book
	err := row.Scan(&b.ID, &b.UserID, &b.Title, &b.Publisher, &b.PublishedDate, &b.PageCount, &b.Language, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}
