package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/nvoronin/bookly/internal/handlers/middleware"
	"github.com/nvoronin/bookly/internal/logger"
	"github.com/nvoronin/bookly/internal/models"
	"github.com/nvoronin/bookly/internal/repository"
	"github.com/nvoronin/bookly/internal/service/auth"
	"github.com/nvoronin/bookly/internal/service/auth/tokenmanager"
	"github.com/nvoronin/bookly/internal/service/book"
)

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

func NewRouter(
	authService authService,
	bookService bookService,
	reviewService reviewService,
	logger logger.Logger,
) http.Handler {
	guard := middleware.NewAuth(authService)

	// Access token + live user + role check, the default protection for
	// catalogue routes
	protected := func(h http.Handler) http.Handler {
		return chain(h,
			guard.RequireAccessToken,
			guard.WithUser,
			guard.RequireRole(models.RoleUser, models.RoleAdmin),
		)
	}

	apiauth := http.NewServeMux()
	apiauth.Handle("POST /signup", handleSignup(authService, logger))
	apiauth.Handle("POST /login", handleLogin(authService, logger))
	apiauth.Handle("GET /refresh", guard.RequireRefreshToken(handleTokenRefresh(authService, logger)))
	apiauth.Handle("GET /logout", guard.RequireAccessToken(handleLogout(authService, logger)))
	apiauth.Handle("GET /me", chain(handleUserMe(), guard.RequireAccessToken, guard.WithUser))

	apibooks := http.NewServeMux()
	apibooks.Handle("GET /", protected(handleListBooks(bookService, logger)))
	apibooks.Handle("GET /user/{userID}", protected(handleListUserBooks(bookService, logger)))
	apibooks.Handle("POST /", protected(handleCreateBook(bookService, logger)))
	apibooks.Handle("GET /{bookID}", protected(handleGetBook(bookService, logger)))
	apibooks.Handle("PATCH /{bookID}", protected(handleUpdateBook(bookService, logger)))
	apibooks.Handle("DELETE /{bookID}", protected(handleDeleteBook(bookService, logger)))

	apireviews := http.NewServeMux()
	apireviews.Handle("GET /", protected(handleListReviews(reviewService, logger)))
	apireviews.Handle("POST /book/{bookID}", protected(handleAddReview(reviewService, logger)))
	apireviews.Handle("GET /book/{bookID}", protected(handleListBookReviews(reviewService, logger)))

	root := http.NewServeMux()
	root.Handle("/api/auth/", http.StripPrefix("/api/auth", apiauth))
	root.Handle("/api/books/", http.StripPrefix("/api/books", apibooks))
	root.Handle("/api/reviews/", http.StripPrefix("/api/reviews", apireviews))

	handler := chain(root,
		middleware.LoggerMiddleware(logger),
	)

	return handler
}

type authService interface {
	// Register user account with the default "user" role
	// Has to return apperrors.ErrUserAlreadyExists if email or username is taken
	Register(ctx context.Context, arg auth.RegisterParams) (models.User, error)

	// Login with email and password, issue a token pair
	// Has to return apperrors.ErrInvalidCredentials on any credential failure
	Login(ctx context.Context, email string, password string) (models.TokenPair, models.User, error)

	// Mint a new access token from validated refresh claims
	RefreshAccess(ctx context.Context, claims tokenmanager.Claims) (models.IssuedToken, error)

	// Revoke the token the claims came from
	Logout(ctx context.Context, claims tokenmanager.Claims) error

	// Guard primitives used by middleware
	BearerToken(r *http.Request) (string, error)
	Authenticate(ctx context.Context, tokenString string, wantRefresh bool) (tokenmanager.Claims, error)
	CurrentUser(ctx context.Context, claims tokenmanager.Claims) (models.User, error)
}

type bookService interface {
	CreateBook(ctx context.Context, b models.Book, user *models.User) (models.Book, error)
	GetBook(ctx context.Context, bookID uuid.UUID) (models.Book, error)
	ListBooks(ctx context.Context) ([]models.Book, error)
	ListUserBooks(ctx context.Context, userID uuid.UUID) ([]models.Book, error)
	UpdateBook(ctx context.Context, bookID uuid.UUID, arg repository.UpdateBookParams) (models.Book, error)
	DeleteBook(ctx context.Context, bookID uuid.UUID) error
}

type reviewService interface {
	AddReview(ctx context.Context, bookID uuid.UUID, user *models.User, arg book.AddReviewParams) (models.Review, error)
	ListReviews(ctx context.Context) ([]models.Review, error)
	ListBookReviews(ctx context.Context, bookID uuid.UUID) ([]models.Review, error)
}
