package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/nvoronin/bookly/internal/blocklist"
	"github.com/nvoronin/bookly/internal/logger"
	"github.com/nvoronin/bookly/internal/repository/postgres"
	"github.com/nvoronin/bookly/internal/service/auth"
	"github.com/nvoronin/bookly/internal/service/auth/tokenmanager"
	"github.com/nvoronin/bookly/internal/service/book"
	"github.com/nvoronin/bookly/internal/testutil"
)

// Run full production router in a rolled back transaction
func serveWithTx(dbpool *pgxpool.Pool, t *testing.T, fn func(url string, as *auth.AuthService)) {
	t.Helper()

	testutil.WithTx(dbpool, t, func(tx pgx.Tx) {
		userRepo := &postgres.UserRepo{DB: tx}
		bookRepo := &postgres.BookRepo{DB: tx}
		reviewRepo := &postgres.ReviewRepo{DB: tx}

		tokenManager, err := tokenmanager.New(tokenmanager.Config{SecretKey: "test-secret"})
		require.NoError(t, err, "token manager should be created without errors")

		as, err := auth.NewService(auth.Config{}, tokenManager, blocklist.NewMemory(), userRepo, logger.NewNoOp())
		require.NoError(t, err, "auth service starting error")

		bs := book.NewService(bookRepo)
		rs := book.NewReviewService(bookRepo, reviewRepo)

		router := NewRouter(as, bs, rs, logger.NewNoOp())
		srv := httptest.NewServer(router)
		defer srv.Close()

		fn(srv.URL, as)
	})
}

// Send request with optional bearer token, return response code and body
func doRequest(t *testing.T, method, url, token, body string) (int, string) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err, "should build request")
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err, "should make request to test server")
	defer resp.Body.Close() // nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "should read response body")

	return resp.StatusCode, string(respBody)
}

func registerUser(t *testing.T, as *auth.AuthService, email string) {
	t.Helper()

	_, err := as.Register(t.Context(), auth.RegisterParams{
		Username:  strings.Split(email, "@")[0],
		Email:     email,
		FirstName: "Test",
		LastName:  "Reader",
		Password:  "StrongEnoughPassword",
	})
	require.NoError(t, err, "should register user")
}

func loginUser(t *testing.T, url, email string) (access string, refresh string) {
	t.Helper()

	data := `{"email": "` + email + `", "password": "StrongEnoughPassword"}`
	code, body := doRequest(t, http.MethodPost, url+"/api/auth/login", "", data)
	require.Equalf(t, http.StatusOK, code, "login should succeed. Body: %s", body)

	var parsed struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &parsed))
	require.NotEmpty(t, parsed.AccessToken, "access token should be set")
	require.NotEmpty(t, parsed.RefreshToken, "refresh token should be set")

	return parsed.AccessToken, parsed.RefreshToken
}

func Test_AuthRoutes(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	t.Run("signup ok", func(t *testing.T) {
		serveWithTx(pg.Pool, t, func(url string, as *auth.AuthService) {
			data := `{
				"username": "reader",
				"email": "reader@example.com",
				"first_name": "Test",
				"last_name": "Reader",
				"password": "StrongEnoughPassword"
			}`

			code, body := doRequest(t, http.MethodPost, url+"/api/auth/signup", "", data)

			require.Equalf(t, http.StatusCreated, code, "not expected code. Body: %s", body)

			var parsed map[string]any
			require.NoError(t, json.Unmarshal([]byte(body), &parsed))
			require.Equal(t, "reader@example.com", parsed["email"])
			require.Equal(t, "reader", parsed["username"])
			require.Equal(t, "user", parsed["role"], "new accounts must get the default role")
			require.NotEmpty(t, parsed["uid"], "uid should be set")
			require.NotContains(t, body, "password", "password data must never leak to response")
		})
	})

	t.Run("signup duplicate email fails", func(t *testing.T) {
		serveWithTx(pg.Pool, t, func(url string, as *auth.AuthService) {
			registerUser(t, as, "reader@example.com")

			data := `{
				"username": "otherreader",
				"email": "reader@example.com",
				"first_name": "Test",
				"last_name": "Reader",
				"password": "StrongEnoughPassword"
			}`

			code, body := doRequest(t, http.MethodPost, url+"/api/auth/signup", "", data)

			require.Equalf(t, http.StatusConflict, code, "not expected code. Body: %s", body)
			require.JSONEq(t, `
				{
					"error": "service_error",
					"message": "User with email or username already exists"
				}`, body)
		})
	})

	t.Run("signup invalid payload fails", func(t *testing.T) {
		serveWithTx(pg.Pool, t, func(url string, as *auth.AuthService) {
			data := `{"username": "reader", "email": "not-an-email", "password": "short"}`

			code, body := doRequest(t, http.MethodPost, url+"/api/auth/signup", "", data)

			require.Equalf(t, http.StatusBadRequest, code, "not expected code. Body: %s", body)
			require.Contains(t, body, "validation_failed")
			require.Contains(t, body, "email", "error should reference the email field")
		})
	})

	t.Run("login ok", func(t *testing.T) {
		serveWithTx(pg.Pool, t, func(url string, as *auth.AuthService) {
			registerUser(t, as, "reader@example.com")

			access, refresh := loginUser(t, url, "reader@example.com")
			require.NotEqual(t, access, refresh, "pair must consist of two distinct tokens")
		})
	})

	t.Run("login wrong password and unknown email fail the same", func(t *testing.T) {
		serveWithTx(pg.Pool, t, func(url string, as *auth.AuthService) {
			registerUser(t, as, "reader@example.com")

			wrongPassword := `{"email": "reader@example.com", "password": "WrongPassword"}`
			unknownEmail := `{"email": "ghost@example.com", "password": "StrongEnoughPassword"}`

			for _, data := range []string{wrongPassword, unknownEmail} {
				code, body := doRequest(t, http.MethodPost, url+"/api/auth/login", "", data)

				require.Equalf(t, http.StatusForbidden, code, "not expected code. Body: %s", body)
				require.JSONEq(t, `
					{
						"error": "service_error",
						"message": "Invalid email or password"
					}`, body)
			}
		})
	})

	t.Run("me returns live user", func(t *testing.T) {
		serveWithTx(pg.Pool, t, func(url string, as *auth.AuthService) {
			registerUser(t, as, "reader@example.com")
			access, _ := loginUser(t, url, "reader@example.com")

			code, body := doRequest(t, http.MethodGet, url+"/api/auth/me", access, "")

			require.Equalf(t, http.StatusOK, code, "not expected code. Body: %s", body)

			var parsed map[string]any
			require.NoError(t, json.Unmarshal([]byte(body), &parsed))
			require.Equal(t, "reader@example.com", parsed["email"])
			require.Equal(t, "user", parsed["role"])
		})
	})

	t.Run("me without token", func(t *testing.T) {
		serveWithTx(pg.Pool, t, func(url string, as *auth.AuthService) {
			code, body := doRequest(t, http.MethodGet, url+"/api/auth/me", "", "")

			require.Equalf(t, http.StatusUnauthorized, code, "not expected code. Body: %s", body)
		})
	})

	t.Run("refresh mints new access token", func(t *testing.T) {
		serveWithTx(pg.Pool, t, func(url string, as *auth.AuthService) {
			registerUser(t, as, "reader@example.com")
			_, refresh := loginUser(t, url, "reader@example.com")

			code, body := doRequest(t, http.MethodGet, url+"/api/auth/refresh", refresh, "")

			require.Equalf(t, http.StatusOK, code, "not expected code. Body: %s", body)

			var parsed struct {
				AccessToken string `json:"access_token"`
			}
			require.NoError(t, json.Unmarshal([]byte(body), &parsed))
			require.NotEmpty(t, parsed.AccessToken, "new access token should be set")

			// The minted token actually works as an access token
			code, body = doRequest(t, http.MethodGet, url+"/api/auth/me", parsed.AccessToken, "")
			require.Equalf(t, http.StatusOK, code, "minted token should pass access guard. Body: %s", body)
		})
	})

	t.Run("refresh rejects access token", func(t *testing.T) {
		serveWithTx(pg.Pool, t, func(url string, as *auth.AuthService) {
			registerUser(t, as, "reader@example.com")
			access, _ := loginUser(t, url, "reader@example.com")

			code, body := doRequest(t, http.MethodGet, url+"/api/auth/refresh", access, "")

			require.Equalf(t, http.StatusForbidden, code, "not expected code. Body: %s", body)
			require.Contains(t, body, "refresh token")
		})
	})

	t.Run("access guard rejects refresh token", func(t *testing.T) {
		serveWithTx(pg.Pool, t, func(url string, as *auth.AuthService) {
			registerUser(t, as, "reader@example.com")
			_, refresh := loginUser(t, url, "reader@example.com")

			code, body := doRequest(t, http.MethodGet, url+"/api/auth/me", refresh, "")

			require.Equalf(t, http.StatusForbidden, code, "not expected code. Body: %s", body)
			require.Contains(t, body, "access token")
		})
	})

	t.Run("logout revokes the token", func(t *testing.T) {
		serveWithTx(pg.Pool, t, func(url string, as *auth.AuthService) {
			registerUser(t, as, "reader@example.com")
			access, _ := loginUser(t, url, "reader@example.com")

			code, body := doRequest(t, http.MethodGet, url+"/api/auth/logout", access, "")
			require.Equalf(t, http.StatusOK, code, "logout should succeed. Body: %s", body)
			require.JSONEq(t, `{"message": "Logged out successfully"}`, body)

			// Same token is dead now
			code, body = doRequest(t, http.MethodGet, url+"/api/auth/me", access, "")
			require.Equalf(t, http.StatusForbidden, code, "revoked token must be rejected. Body: %s", body)
			require.Contains(t, body, "revoked")
		})
	})

	t.Run("garbage token rejected", func(t *testing.T) {
		serveWithTx(pg.Pool, t, func(url string, as *auth.AuthService) {
			code, body := doRequest(t, http.MethodGet, url+"/api/auth/me", "not.a.token", "")

			require.Equalf(t, http.StatusForbidden, code, "not expected code. Body: %s", body)
			require.Contains(t, body, "invalid or expired")
		})
	})
}
