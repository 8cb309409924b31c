package middleware

import (
	"context"
	"errors"
	"net/http"
	"slices"

	"github.com/nvoronin/bookly/internal/apperrors"
	"github.com/nvoronin/bookly/internal/handlers/authctx"
	"github.com/nvoronin/bookly/internal/handlers/render"
	"github.com/nvoronin/bookly/internal/models"
	"github.com/nvoronin/bookly/internal/service/auth/tokenmanager"
)

type authService interface {
	BearerToken(r *http.Request) (string, error)
	Authenticate(ctx context.Context, tokenString string, wantRefresh bool) (tokenmanager.Claims, error)
	CurrentUser(ctx context.Context, claims tokenmanager.Claims) (models.User, error)
}

type Auth struct {
	service authService
}

func NewAuth(as authService) *Auth {
	return &Auth{service: as}
}

// RequireAccessToken guards the wrapped handler with the access token variant.
// Valid claims are stored in the request context.
func (m *Auth) RequireAccessToken(next http.Handler) http.Handler {
	return m.require(next, false)
}

// RequireRefreshToken is the refresh token variant of the same guard
func (m *Auth) RequireRefreshToken(next http.Handler) http.Handler {
	return m.require(next, true)
}

func (m *Auth) require(next http.Handler, wantRefresh bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := m.service.BearerToken(r)
		if err != nil {
			renderAuthError(w, err)
			return
		}

		claims, err := m.service.Authenticate(r.Context(), token, wantRefresh)
		if err != nil {
			renderAuthError(w, err)
			return
		}

		ctx := authctx.NewContextWithClaims(r.Context(), claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// WithUser resolves the live user record for claims set by RequireAccessToken
// and stores it in the request context. A user that vanished since token
// issuance gets 404.
func (m *Auth) WithUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := authctx.ClaimsFromContext(r.Context())
		if !ok {
			renderAuthError(w, apperrors.ErrNoToken)
			return
		}

		user, err := m.service.CurrentUser(r.Context(), claims)
		if err != nil {
			renderAuthError(w, err)
			return
		}

		ctx := authctx.NewContextWithUser(r.Context(), user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole allows only users whose current role is in roles.
// Must be wired after WithUser: the decision is made on the database role,
// not the role snapshot inside the token.
func (m *Auth) RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := authctx.UserFromContext(r.Context())
			if !ok {
				renderAuthError(w, apperrors.ErrNoToken)
				return
			}

			if !slices.Contains(roles, user.Role) {
				renderAuthError(w, apperrors.ErrRoleNotAllowed)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func renderAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperrors.ErrNoToken):
		render.ServiceError(w, "Authentication required", http.StatusUnauthorized)
	case errors.Is(err, apperrors.ErrTokenMalformed):
		render.ServiceError(w, "Token is invalid or expired", http.StatusUnauthorized)
	case errors.Is(err, apperrors.ErrTokenInvalid):
		render.ServiceError(w, "Token is invalid or expired", http.StatusForbidden)
	case errors.Is(err, apperrors.ErrTokenRevoked):
		render.ServiceError(w, "Token has been revoked", http.StatusForbidden)
	case errors.Is(err, apperrors.ErrAccessTokenRequired):
		render.ServiceError(w, "Please provide a valid access token", http.StatusForbidden)
	case errors.Is(err, apperrors.ErrRefreshTokenRequired):
		render.ServiceError(w, "Please provide a valid refresh token", http.StatusForbidden)
	case errors.Is(err, apperrors.ErrRoleNotAllowed):
		render.ServiceError(w, "You are not allowed to perform this action", http.StatusForbidden)
	case errors.Is(err, apperrors.ErrUserNotFound):
		render.ServiceError(w, "User not found", http.StatusNotFound)
	default:
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
	}
}
