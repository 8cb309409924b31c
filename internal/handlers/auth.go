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
	"github.com/nvoronin/bookly/internal/service/auth"
)

func handleSignup(authService authService, l logger.Logger) http.Handler {
	type request struct {
		Username  string `json:"username" validate:"required,min=2,max=50"`
		Email     string `json:"email" validate:"required,email,max=254"`
		FirstName string `json:"first_name" validate:"required,max=50"`
		LastName  string `json:"last_name" validate:"required,max=50"`
		Password  string `json:"password" validate:"required,min=6"`
	}
	type response struct {
		UID       uuid.UUID `json:"uid"`
		Username  string    `json:"username"`
		Email     string    `json:"email"`
		FirstName string    `json:"first_name"`
		LastName  string    `json:"last_name"`
		Role      string    `json:"role"`
		CreatedAt time.Time `json:"created_at"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		user, err := authService.Register(r.Context(), auth.RegisterParams{
			Username:  data.Username,
			Email:     data.Email,
			FirstName: data.FirstName,
			LastName:  data.LastName,
			Password:  data.Password,
		})
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrUserAlreadyExists):
				render.ServiceError(w, "User with email or username already exists", http.StatusConflict)
			default:
				l.Error("Failed to register user", "error", err)
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		render.JSONWithStatus(w, response{
			UID:       user.ID,
			Username:  user.Username,
			Email:     user.Email,
			FirstName: user.FirstName,
			LastName:  user.LastName,
			Role:      user.Role,
			CreatedAt: user.CreatedAt,
		}, http.StatusCreated)
	})
}

func handleLogin(authService authService, l logger.Logger) http.Handler {
	type request struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}
	type userPayload struct {
		Email string    `json:"email"`
		UID   uuid.UUID `json:"uid"`
	}
	type response struct {
		Message      string      `json:"message"`
		AccessToken  string      `json:"access_token"`
		RefreshToken string      `json:"refresh_token"`
		User         userPayload `json:"user"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		pair, user, err := authService.Login(r.Context(), data.Email, data.Password)
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrInvalidCredentials):
				render.ServiceError(w, "Invalid email or password", http.StatusForbidden)
			default:
				l.Error("Failed to login user", "error", err)
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		render.JSON(w, response{
			Message:      "Login successful",
			AccessToken:  pair.Access.Value,
			RefreshToken: pair.Refresh.Value,
			User:         userPayload{Email: user.Email, UID: user.ID},
		})
	})
}

// handleTokenRefresh mints a new access token from refresh claims.
// Expects RequireRefreshToken to run before it.
func handleTokenRefresh(authService authService, l logger.Logger) http.Handler {
	type response struct {
		AccessToken string `json:"access_token"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := authctx.ClaimsFromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		access, err := authService.RefreshAccess(r.Context(), claims)
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrTokenExpired):
				render.ServiceError(w, "Token is invalid or expired", http.StatusBadRequest)
			default:
				l.Error("Failed to refresh access token", "error", err)
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		render.JSON(w, response{AccessToken: access.Value})
	})
}

// handleLogout revokes the presented access token.
// Expects RequireAccessToken to run before it.
func handleLogout(authService authService, l logger.Logger) http.Handler {
	type response struct {
		Message string `json:"message"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := authctx.ClaimsFromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		if err := authService.Logout(r.Context(), claims); err != nil {
			l.Error("Failed to revoke token", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, response{Message: "Logged out successfully"})
	})
}

// handleUserMe returns the live user record for the authenticated request.
// Expects WithUser to run before it.
func handleUserMe() http.Handler {
	type response struct {
		UID        uuid.UUID `json:"uid"`
		Username   string    `json:"username"`
		Email      string    `json:"email"`
		FirstName  string    `json:"first_name"`
		LastName   string    `json:"last_name"`
		Role       string    `json:"role"`
		IsVerified bool      `json:"is_verified"`
		CreatedAt  time.Time `json:"created_at"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := authctx.UserFromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, response{
			UID:        user.ID,
			Username:   user.Username,
			Email:      user.Email,
			FirstName:  user.FirstName,
			LastName:   user.LastName,
			Role:       user.Role,
			IsVerified: user.IsVerified,
			CreatedAt:  user.CreatedAt,
		})
	})
}
