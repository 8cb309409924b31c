package tokenmanager

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/nvoronin/bookly/internal/models"
)

const (
	defaultAccessTokenTTL  = 30 * time.Minute
	defaultRefreshTokenTTL = 48 * time.Hour
	defaultSigningMethod   = "HS256"
)

// UserClaims is the user snapshot embedded into every issued token.
// Role is set on access tokens only.
type UserClaims struct {
	ID    uuid.UUID `json:"uid"`
	Email string    `json:"email"`
	Role  string    `json:"role,omitempty"`
}

// Claims carried by issued tokens. User and Refresh are pointers so that
// a claim missing from the payload is distinguishable from a zero value.
type Claims struct {
	jwt.RegisteredClaims
	User    *UserClaims `json:"user,omitempty"`
	Refresh *bool       `json:"refresh,omitempty"`
}

// IsRefresh reports the refresh flag, false when the claim is missing
func (c Claims) IsRefresh() bool {
	return c.Refresh != nil && *c.Refresh
}

// HasRequiredFields checks the jti, exp, user and refresh claims are all present
func (c Claims) HasRequiredFields() bool {
	return c.ID != "" && c.ExpiresAt != nil && c.User != nil && c.Refresh != nil
}

// Token manager with sensible defaults
type Config struct {
	// Secret key to sign tokens
	// Required to be set
	SecretKey string

	// JWT MAC (Message Authentication Code) algorithm
	// If not set then default is used
	Alg string

	// Access and refresh token lifetimes
	// If not set then default is used
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

type TokenManager struct {
	// Secret key to sign tokens
	key string

	// JWT MAC (Message Authentication Code) algorithm
	alg jwt.SigningMethod

	// Access and refresh token lifetimes
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func New(cfg Config) (*TokenManager, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("secret key must not be empty")
	}

	if cfg.Alg == "" {
		cfg.Alg = defaultSigningMethod
	}
	alg := jwt.GetSigningMethod(cfg.Alg)
	if alg == nil {
		return nil, fmt.Errorf("unknown signing method: %q", cfg.Alg)
	}

	setDefaultDuration := func(field *time.Duration, def time.Duration) {
		if *field == 0 {
			*field = def
		}
	}
	setDefaultDuration(&cfg.AccessTTL, defaultAccessTokenTTL)
	setDefaultDuration(&cfg.RefreshTTL, defaultRefreshTokenTTL)

	return &TokenManager{
		key:        cfg.SecretKey,
		alg:        alg,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
	}, nil
}

// Issue signs a token for user with the given lifetime and refresh flag.
// Every call embeds a fresh random jti: the jti is the only revocation handle.
func (m *TokenManager) Issue(user UserClaims, lifetime time.Duration, refresh bool) (models.IssuedToken, error) {
	now := time.Now().Truncate(time.Second)
	expiresAt := now.Add(lifetime)

	token := jwt.NewWithClaims(
		m.alg,
		Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				ID:        uuid.NewString(),
				Subject:   user.Email,
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(expiresAt),
			},
			User:    &user,
			Refresh: &refresh,
		},
	)

	signed, err := token.SignedString([]byte(m.key))
	if err != nil {
		return models.IssuedToken{}, fmt.Errorf("error while signing token. Err: %w", err)
	}

	return models.IssuedToken{Value: signed, ExpiresAt: expiresAt}, nil
}

// IssueAccess signs an access token with the configured access lifetime
func (m *TokenManager) IssueAccess(user UserClaims) (models.IssuedToken, error) {
	return m.Issue(user, m.accessTTL, false)
}

// GeneratePair issues an access and a refresh token for user.
// The refresh token embeds email and id only: the role is looked up fresh
// on every authorized request, so there is no point carrying it that long.
func (m *TokenManager) GeneratePair(user models.User) (models.TokenPair, error) {
	var pair models.TokenPair

	access, err := m.Issue(UserClaims{ID: user.ID, Email: user.Email, Role: user.Role}, m.accessTTL, false)
	if err != nil {
		return pair, fmt.Errorf("error while issuing access token. Err: %w", err)
	}

	refresh, err := m.Issue(UserClaims{ID: user.ID, Email: user.Email}, m.refreshTTL, true)
	if err != nil {
		return pair, fmt.Errorf("error while issuing refresh token. Err: %w", err)
	}

	return models.TokenPair{Access: access, Refresh: refresh}, nil
}

// Parse validates the signature and expiry and returns the decoded claims.
// Any structural or cryptographic failure is total: no partial claims
// are ever returned.
func (m *TokenManager) Parse(tokenString string) (Claims, error) {
	claims := &Claims{}

	_, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(t *jwt.Token) (any, error) { return []byte(m.key), nil },
		jwt.WithValidMethods([]string{m.alg.Alg()}),
	)
	if err != nil {
		return Claims{}, fmt.Errorf("error while parsing or validating token. Err: %w", err)
	}

	return *claims, nil
}
