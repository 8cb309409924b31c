package book

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/nvoronin/bookly/internal/models"
	"github.com/nvoronin/bookly/internal/repository"
)

// Book catalogue service
type BookService struct {
	bookRepo repository.BookRepo
}

func NewService(bookRepo repository.BookRepo) *BookService {
	return &BookService{bookRepo: bookRepo}
}

// CreateBook stores a book owned by user
func (s *BookService) CreateBook(ctx context.Context, book models.Book, user *models.User) (models.Book, error) {
	book.UserID = user.ID

	created, err := s.bookRepo.CreateBook(ctx, book)
	if err != nil {
		return created, fmt.Errorf("can't create book. Err: %w", err)
	}

	return created, nil
}

func (s *BookService) GetBook(ctx context.Context, bookID uuid.UUID) (models.Book, error) {
	return s.bookRepo.GetBook(ctx, bookID)
}

func (s *BookService) ListBooks(ctx context.Context) ([]models.Book, error) {
	return s.bookRepo.ListBooks(ctx)
}

func (s *BookService) ListUserBooks(ctx context.Context, userID uuid.UUID) ([]models.Book, error) {
	return s.bookRepo.ListUserBooks(ctx, userID)
}

func (s *BookService) UpdateBook(ctx context.Context, bookID uuid.UUID, arg repository.UpdateBookParams) (models.Book, error) {
	return s.bookRepo.UpdateBook(ctx, bookID, arg)
}

func (s *BookService) DeleteBook(ctx context.Context, bookID uuid.UUID) error {
	return s.bookRepo.DeleteBook(ctx, bookID)
}
