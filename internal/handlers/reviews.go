package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/nvoronin/bookly/internal/apperrors"
	"github.com/nvoronin/bookly/internal/handlers/authctx"
	"github.com/nvoronin/bookly/internal/handlers/render"
	"github.com/nvoronin/bookly/internal/logger"
	"github.com/nvoronin/bookly/internal/models"
	"github.com/nvoronin/bookly/internal/service/book"
)

type reviewResponse struct {
	UID        uuid.UUID `json:"uid"`
	UserUID    uuid.UUID `json:"user_uid"`
	BookUID    uuid.UUID `json:"book_uid"`
	Rating     int       `json:"rating"`
	ReviewText string    `json:"review_text"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func newReviewResponse(rv models.Review) reviewResponse {
	return reviewResponse{
		UID:        rv.ID,
		UserUID:    rv.UserID,
		BookUID:    rv.BookID,
		Rating:     rv.Rating,
		ReviewText: rv.ReviewText,
		CreatedAt:  rv.CreatedAt,
		UpdatedAt:  rv.UpdatedAt,
	}
}

func newReviewListResponse(reviews []models.Review) []reviewResponse {
	resp := make([]reviewResponse, 0, len(reviews))
	for _, rv := range reviews {
		resp = append(resp, newReviewResponse(rv))
	}
	return resp
}

func handleAddReview(reviewService reviewService, l logger.Logger) http.Handler {
	type request struct {
		Rating     int    `json:"rating" validate:"required,gte=1,lte=5"`
		ReviewText string `json:"review_text" validate:"required,max=1000"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := authctx.UserFromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		bookID, ok := pathUUID(w, r, "bookID")
		if !ok {
			return
		}

		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		review, err := reviewService.AddReview(r.Context(), bookID, &user, book.AddReviewParams{
			Rating:     data.Rating,
			ReviewText: data.ReviewText,
		})
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrBookNotFound):
				render.ServiceError(w, "Book not found", http.StatusNotFound)
			default:
				l.Error("Failed to add review", "error", err)
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		render.JSONWithStatus(w, newReviewResponse(review), http.StatusCreated)
	})
}

func handleListReviews(reviewService reviewService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reviews, err := reviewService.ListReviews(r.Context())
		if err != nil {
			l.Error("Failed to list reviews", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, newReviewListResponse(reviews))
	})
}

func handleListBookReviews(reviewService reviewService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		bookID, ok := pathUUID(w, r, "bookID")
		if !ok {
			return
		}

		reviews, err := reviewService.ListBookReviews(r.Context(), bookID)
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrBookNotFound):
				render.ServiceError(w, "Book not found", http.StatusNotFound)
			default:
				l.Error("Failed to list book reviews", "error", err)
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		render.JSON(w, newReviewListResponse(reviews))
	})
}
