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
	"github.com/nvoronin/bookly/internal/repository"
)

// Publication dates travel as plain "YYYY-MM-DD" strings
const dateLayout = "2006-01-02"

type bookResponse struct {
	UID           uuid.UUID `json:"uid"`
	UserUID       uuid.UUID `json:"user_uid"`
	Title         string    `json:"title"`
	Publisher     string    `json:"publisher"`
	PublishedDate string    `json:"published_date"`
	PageCount     int       `json:"page_count"`
	Language      string    `json:"language"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func newBookResponse(b models.Book) bookResponse {
	return bookResponse{
		UID:           b.ID,
		UserUID:       b.UserID,
		Title:         b.Title,
		Publisher:     b.Publisher,
		PublishedDate: b.PublishedDate.Format(dateLayout),
		PageCount:     b.PageCount,
		Language:      b.Language,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
}

func newBookListResponse(books []models.Book) []bookResponse {
	resp := make([]bookResponse, 0, len(books))
	for _, b := range books {
		resp = append(resp, newBookResponse(b))
	}
	return resp
}

// pathUUID parses the named path segment as uuid or renders 400
func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		render.ServiceError(w, "Invalid identifier in path", http.StatusBadRequest)
		return uuid.UUID{}, false
	}
	return id, true
}

func handleListBooks(bookService bookService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		books, err := bookService.ListBooks(r.Context())
		if err != nil {
			l.Error("Failed to list books", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, newBookListResponse(books))
	})
}

func handleListUserBooks(bookService bookService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := pathUUID(w, r, "userID")
		if !ok {
			return
		}

		books, err := bookService.ListUserBooks(r.Context(), userID)
		if err != nil {
			l.Error("Failed to list user books", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, newBookListResponse(books))
	})
}

func handleCreateBook(bookService bookService, l logger.Logger) http.Handler {
	type request struct {
		Title         string `json:"title" validate:"required,max=200"`
		Publisher     string `json:"publisher" validate:"required,max=100"`
		PublishedDate string `json:"published_date" validate:"required"`
		PageCount     int    `json:"page_count" validate:"required,gte=1"`
		Language      string `json:"language" validate:"required,max=50"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := authctx.UserFromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		published, err := time.Parse(dateLayout, data.PublishedDate)
		if err != nil {
			render.ServiceError(w, "Invalid published_date, expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		book, err := bookService.CreateBook(r.Context(), models.Book{
			Title:         data.Title,
			Publisher:     data.Publisher,
			PublishedDate: published,
			PageCount:     data.PageCount,
			Language:      data.Language,
		}, &user)
		if err != nil {
			l.Error("Failed to create book", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		render.JSONWithStatus(w, newBookResponse(book), http.StatusCreated)
	})
}

func handleGetBook(bookService bookService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		bookID, ok := pathUUID(w, r, "bookID")
		if !ok {
			return
		}

		book, err := bookService.GetBook(r.Context(), bookID)
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrBookNotFound):
				render.ServiceError(w, "Book not found", http.StatusNotFound)
			default:
				l.Error("Failed to get book", "error", err)
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		render.JSON(w, newBookResponse(book))
	})
}

func handleUpdateBook(bookService bookService, l logger.Logger) http.Handler {
	type request struct {
		Title     string `json:"title" validate:"required,max=200"`
		Publisher string `json:"publisher" validate:"required,max=100"`
		PageCount int    `json:"page_count" validate:"required,gte=1"`
		Language  string `json:"language" validate:"required,max=50"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		bookID, ok := pathUUID(w, r, "bookID")
		if !ok {
			return
		}

		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		book, err := bookService.UpdateBook(r.Context(), bookID, repository.UpdateBookParams{
			Title:     data.Title,
			Publisher: data.Publisher,
			PageCount: data.PageCount,
			Language:  data.Language,
		})
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrBookNotFound):
				render.ServiceError(w, "Book not found", http.StatusNotFound)
			default:
				l.Error("Failed to update book", "error", err)
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		render.JSON(w, newBookResponse(book))
	})
}

func handleDeleteBook(bookService bookService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		bookID, ok := pathUUID(w, r, "bookID")
		if !ok {
			return
		}

		err := bookService.DeleteBook(r.Context(), bookID)
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrBookNotFound):
				render.ServiceError(w, "Book not found", http.StatusNotFound)
			default:
				l.Error("Failed to delete book", "error", err)
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		w.WriteHeader(http.StatusNoContent)
	})
}
