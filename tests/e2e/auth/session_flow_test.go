package auth

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/nvoronin/bookly/internal/testutil"
	"github.com/nvoronin/bookly/tests/e2e"
)

const (
	signupURL  = "/api/auth/signup"
	loginURL   = "/api/auth/login"
	refreshURL = "/api/auth/refresh"
	logoutURL  = "/api/auth/logout"
	meURL      = "/api/auth/me"
)

// Send request with optional bearer token, return status code and body
func do(t *testing.T, method, url, token, body string) (int, string) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, string(respBody)
}

func Test_SessionFlow(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	e2e.ServeWithTx(pg.Pool, t, func(tx pgx.Tx, srvURL string, s e2e.Services) {
		t.Run("full session lifecycle", func(t *testing.T) {
			testutil.WithTx(tx, t, func(_ pgx.Tx) {
				// Signup
				signup := `{
					"username": "reader",
					"email": "reader@example.com",
					"first_name": "Test",
					"last_name": "Reader",
					"password": "StrongEnoughPassword"
				}`
				code, body := do(t, http.MethodPost, srvURL+signupURL, "", signup)
				require.Equalf(t, http.StatusCreated, code, "signup should succeed. Body: %s", body)

				// Login
				login := `{"email": "reader@example.com", "password": "StrongEnoughPassword"}`
				code, body = do(t, http.MethodPost, srvURL+loginURL, "", login)
				require.Equalf(t, http.StatusOK, code, "login should succeed. Body: %s", body)

				var tokens struct {
					AccessToken  string `json:"access_token"`
					RefreshToken string `json:"refresh_token"`
				}
				require.NoError(t, json.Unmarshal([]byte(body), &tokens))
				require.NotEmpty(t, tokens.AccessToken)
				require.NotEmpty(t, tokens.RefreshToken)

				// Access token opens protected routes
				code, body = do(t, http.MethodGet, srvURL+meURL, tokens.AccessToken, "")
				require.Equalf(t, http.StatusOK, code, "me should succeed. Body: %s", body)
				require.Contains(t, body, "reader@example.com")

				// Create a book and review it through the guarded catalogue
				bookData := `{
					"title": "The Go Programming Language",
					"publisher": "Addison-Wesley",
					"published_date": "2015-11-16",
					"page_count": 380,
					"language": "en"
				}`
				code, body = do(t, http.MethodPost, srvURL+"/api/books/", tokens.AccessToken, bookData)
				require.Equalf(t, http.StatusCreated, code, "book create should succeed. Body: %s", body)

				var created struct {
					UID string `json:"uid"`
				}
				require.NoError(t, json.Unmarshal([]byte(body), &created))

				review := `{"rating": 5, "review_text": "Still the best introduction around"}`
				code, body = do(t, http.MethodPost, srvURL+"/api/reviews/book/"+created.UID, tokens.AccessToken, review)
				require.Equalf(t, http.StatusCreated, code, "review create should succeed. Body: %s", body)

				// Refresh mints a working access token
				code, body = do(t, http.MethodGet, srvURL+refreshURL, tokens.RefreshToken, "")
				require.Equalf(t, http.StatusOK, code, "refresh should succeed. Body: %s", body)

				var refreshed struct {
					AccessToken string `json:"access_token"`
				}
				require.NoError(t, json.Unmarshal([]byte(body), &refreshed))

				code, body = do(t, http.MethodGet, srvURL+meURL, refreshed.AccessToken, "")
				require.Equalf(t, http.StatusOK, code, "minted access token should work. Body: %s", body)

				// Logout kills the first access token only
				code, body = do(t, http.MethodGet, srvURL+logoutURL, tokens.AccessToken, "")
				require.Equalf(t, http.StatusOK, code, "logout should succeed. Body: %s", body)

				code, body = do(t, http.MethodGet, srvURL+meURL, tokens.AccessToken, "")
				require.Equalf(t, http.StatusForbidden, code, "revoked token must be rejected. Body: %s", body)

				code, body = do(t, http.MethodGet, srvURL+meURL, refreshed.AccessToken, "")
				require.Equalf(t, http.StatusOK, code, "other tokens must survive logout. Body: %s", body)

				// Revocation record landed in redis with a sane TTL
				keys := s.Redis.Keys()
				require.Len(t, keys, 1, "exactly one jti should be revoked")
				require.True(t, strings.HasPrefix(keys[0], "jti:"), "revocation keys should be namespaced")
				require.Greater(t, s.Redis.TTL(keys[0]), time.Minute, "revocation record must outlive the token")
			})
		})

		t.Run("revocation record expiry frees the jti", func(t *testing.T) {
			testutil.WithTx(tx, t, func(_ pgx.Tx) {
				signup := `{
					"username": "expiringreader",
					"email": "expiring@example.com",
					"first_name": "Test",
					"last_name": "Reader",
					"password": "StrongEnoughPassword"
				}`
				code, body := do(t, http.MethodPost, srvURL+signupURL, "", signup)
				require.Equalf(t, http.StatusCreated, code, "signup should succeed. Body: %s", body)

				login := `{"email": "expiring@example.com", "password": "StrongEnoughPassword"}`
				code, body = do(t, http.MethodPost, srvURL+loginURL, "", login)
				require.Equalf(t, http.StatusOK, code, "login should succeed. Body: %s", body)

				var tokens struct {
					AccessToken string `json:"access_token"`
				}
				require.NoError(t, json.Unmarshal([]byte(body), &tokens))

				code, _ = do(t, http.MethodGet, srvURL+logoutURL, tokens.AccessToken, "")
				require.Equal(t, http.StatusOK, code)

				code, _ = do(t, http.MethodGet, srvURL+meURL, tokens.AccessToken, "")
				require.Equal(t, http.StatusForbidden, code, "token is dead while record lives")

				// Push redis clock past every record TTL. The guard accepts the
				// token again: by then the token itself has long expired in
				// production, the ledger only has to outlive it
				s.Redis.FastForward(49 * time.Hour)

				code, body = do(t, http.MethodGet, srvURL+meURL, tokens.AccessToken, "")
				require.Equalf(t, http.StatusOK, code, "ledger forgets expired records. Body: %s", body)
			})
		})
	})
}
