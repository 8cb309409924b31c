package book

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/nvoronin/bookly/internal/models"
	"github.com/nvoronin/bookly/internal/repository"
)

type AddReviewParams struct {
	Rating     int
	ReviewText string
}

// Review service: reviews always belong to an existing book and user
type ReviewService struct {
	bookRepo   repository.BookRepo
	reviewRepo repository.ReviewRepo
}

func NewReviewService(bookRepo repository.BookRepo, reviewRepo repository.ReviewRepo) *ReviewService {
	return &ReviewService{
		bookRepo:   bookRepo,
		reviewRepo: reviewRepo,
	}
}

// AddReview attaches a review by user to the book.
// Missing book returns apperrors.ErrBookNotFound.
func (s *ReviewService) AddReview(ctx context.Context, bookID uuid.UUID, user *models.User, arg AddReviewParams) (models.Review, error) {
	var review models.Review

	book, err := s.bookRepo.GetBook(ctx, bookID)
	if err != nil {
		return review, err
	}

	review, err = s.reviewRepo.CreateReview(ctx, models.Review{
		UserID:     user.ID,
		BookID:     book.ID,
		Rating:     arg.Rating,
		ReviewText: arg.ReviewText,
	})
	if err != nil {
		return review, fmt.Errorf("can't create review. Err: %w", err)
	}

	return review, nil
}

func (s *ReviewService) ListReviews(ctx context.Context) ([]models.Review, error) {
	return s.reviewRepo.ListReviews(ctx)
}

func (s *ReviewService) ListBookReviews(ctx context.Context, bookID uuid.UUID) ([]models.Review, error) {
	if _, err := s.bookRepo.GetBook(ctx, bookID); err != nil {
		return nil, err
	}

	return s.reviewRepo.ListBookReviews(ctx, bookID)
}
