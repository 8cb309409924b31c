package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/nvoronin/bookly/internal/models"
)

type CreateUserParams struct {
	Username     string
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
	Role         string
}

// User repository interface
type UserRepo interface {
	// Create user
	// If user with the same email or username exists already has to return apperrors.ErrUserAlreadyExists
	CreateUser(ctx context.Context, arg CreateUserParams) (models.User, error)

	// Get user by id, email or username
	// If user not found must return apperrors.ErrUserNotFound
	GetUserByID(ctx context.Context, userID uuid.UUID) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	GetUserByUsername(ctx context.Context, username string) (models.User, error)
}

type UpdateBookParams struct {
	Title     string
	Publisher string
	PageCount int
	Language  string
}

// Book repository interface
type BookRepo interface {
	// Create book owned by user
	CreateBook(ctx context.Context, book models.Book) (models.Book, error)

	// Get book by id
	// If book not found must return apperrors.ErrBookNotFound
	GetBook(ctx context.Context, bookID uuid.UUID) (models.Book, error)

	// List all books ordered by creation time, newest first
	ListBooks(ctx context.Context) ([]models.Book, error)

	// List books submitted by user, newest first
	ListUserBooks(ctx context.Context, userID uuid.UUID) ([]models.Book, error)

	// Update book fields
	// If book not found must return apperrors.ErrBookNotFound
	UpdateBook(ctx context.Context, bookID uuid.UUID, arg UpdateBookParams) (models.Book, error)

	// Delete book
	// If book not found must return apperrors.ErrBookNotFound
	DeleteBook(ctx context.Context, bookID uuid.UUID) error
}

// Review repository interface
type ReviewRepo interface {
	// Create review attached to book and user
	CreateReview(ctx context.Context, review models.Review) (models.Review, error)

	// List all reviews ordered by creation time, newest first
	ListReviews(ctx context.Context) ([]models.Review, error)

	// List reviews attached to book, newest first
	ListBookReviews(ctx context.Context, bookID uuid.UUID) ([]models.Review, error)
}

// Storage aggregates all repositories over a single connection source
type Storage interface {
	User() UserRepo
	Book() BookRepo
	Review() ReviewRepo

	// Run fn within a database transaction
	InTx(ctx context.Context, fn func(Storage) error) error
}
