package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/nvoronin/bookly/internal/apperrors"
	"github.com/nvoronin/bookly/internal/blocklist"
	"github.com/nvoronin/bookly/internal/logger"
	"github.com/nvoronin/bookly/internal/models"
	"github.com/nvoronin/bookly/internal/repository"
	"github.com/nvoronin/bookly/internal/service/auth/tokenmanager"
)

const (
	defaultAuthScheme   = "Bearer"
	defaultBlocklistTTL = time.Hour
)

type Config struct {
	// Hasher to use during registration or login
	// BcryptHasher is used if not set
	Hasher PasswordHasher

	// Minimal lifetime of revocation ledger entries
	// An entry always lives at least this long and at least until the
	// revoked token itself expires
	BlocklistTTL time.Duration
}

type RegisterParams struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
	Password  string
}

// Auth service: issues sessions, guards requests
type AuthService struct {
	// Codec to issue and verify signed tokens
	tokens *tokenmanager.TokenManager

	// Ledger of revoked token identifiers
	blocklist blocklist.Blocklist

	// hasher to hash or compare user passwords
	hasher PasswordHasher

	// Repository to access long term user data
	userRepo repository.UserRepo

	blocklistTTL time.Duration
	logger       logger.Logger
}

func NewService(cfg Config, tokens *tokenmanager.TokenManager, bl blocklist.Blocklist, userRepo repository.UserRepo, l logger.Logger) (*AuthService, error) {
	hasher := cfg.Hasher
	if hasher == nil {
		hasher = DefaultHasher
	}

	if cfg.BlocklistTTL == 0 {
		cfg.BlocklistTTL = defaultBlocklistTTL
	}

	if l == nil {
		l = logger.NewNoOp()
	}

	if tokens == nil || bl == nil || userRepo == nil {
		return nil, errors.New("token manager, blocklist and user repo must not be nil")
	}

	return &AuthService{
		tokens:       tokens,
		blocklist:    bl,
		hasher:       hasher,
		userRepo:     userRepo,
		blocklistTTL: cfg.BlocklistTTL,
		logger:       l,
	}, nil
}

// Register creates a user account with the "user" role.
// Duplicate email or username returns apperrors.ErrUserAlreadyExists.
func (s *AuthService) Register(ctx context.Context, arg RegisterParams) (models.User, error) {
	var user models.User

	hash, err := s.hasher.Hash(arg.Password)
	if err != nil {
		return user, fmt.Errorf("can't use this as password. Err: %w", err)
	}

	user, err = s.userRepo.CreateUser(ctx, repository.CreateUserParams{
		Username:     arg.Username,
		Email:        arg.Email,
		FirstName:    arg.FirstName,
		LastName:     arg.LastName,
		PasswordHash: hash,
		Role:         models.RoleUser,
	})
	if err != nil {
		return user, err
	}

	return user, nil
}

// Login verifies credentials and issues a token pair.
// Unknown email and wrong password both return apperrors.ErrInvalidCredentials:
// the caller must not be able to tell which one happened.
func (s *AuthService) Login(ctx context.Context, email string, password string) (models.TokenPair, models.User, error) {
	var pair models.TokenPair

	// A missing user falls through to the compare: matching against the empty
	// hash fails the same way a wrong password does. Anything else is an
	// infrastructure failure and must not look like bad credentials.
	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil && !errors.Is(err, apperrors.ErrUserNotFound) {
		return pair, models.User{}, fmt.Errorf("user lookup failed. Err: %w", err)
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return pair, models.User{}, apperrors.ErrInvalidCredentials
	}

	pair, err = s.tokens.GeneratePair(user)
	if err != nil {
		return pair, models.User{}, fmt.Errorf("token could not be generated. Err: %w", err)
	}

	return pair, user, nil
}

// Authenticate runs the guard state machine over a bearer token string.
// wantRefresh selects the variant: false demands an access token, true a
// refresh token. On success the decoded claims are returned unchanged.
func (s *AuthService) Authenticate(ctx context.Context, tokenString string, wantRefresh bool) (tokenmanager.Claims, error) {
	var zero tokenmanager.Claims

	if tokenString == "" {
		return zero, apperrors.ErrNoToken
	}

	claims, err := s.tokens.Parse(tokenString)
	if err != nil {
		s.logger.Error("token decode failed", "error", err.Error())
		return zero, apperrors.ErrTokenInvalid
	}

	if !claims.HasRequiredFields() {
		return zero, apperrors.ErrTokenMalformed
	}

	if claims.IsRefresh() != wantRefresh {
		if wantRefresh {
			return zero, apperrors.ErrRefreshTokenRequired
		}
		return zero, apperrors.ErrAccessTokenRequired
	}

	revoked, err := s.blocklist.Contains(ctx, claims.ID)
	if err != nil {
		return zero, fmt.Errorf("revocation check failed. Err: %w", err)
	}
	if revoked {
		s.logger.Warn("revoked token used", "jti", claims.ID)
		return zero, apperrors.ErrTokenRevoked
	}

	return claims, nil
}

// RefreshAccess issues a new access token from validated refresh claims.
// The embedded user payload is reused as is, so the new token's role is only
// as fresh as the refresh token issuance. Expiry is re-checked against the
// clock on top of decode-time validation.
func (s *AuthService) RefreshAccess(ctx context.Context, claims tokenmanager.Claims) (models.IssuedToken, error) {
	if claims.ExpiresAt == nil || !claims.ExpiresAt.After(time.Now()) {
		return models.IssuedToken{}, apperrors.ErrTokenExpired
	}

	access, err := s.tokens.IssueAccess(*claims.User)
	if err != nil {
		return models.IssuedToken{}, fmt.Errorf("token could not be generated. Err: %w", err)
	}

	return access, nil
}

// Logout revokes the token by recording its jti in the blocklist.
// The entry outlives the token: TTL is the greater of the configured minimum
// and the token's own remaining lifetime, so a revoked token can never become
// usable again after the ledger entry expires.
func (s *AuthService) Logout(ctx context.Context, claims tokenmanager.Claims) error {
	ttl := s.blocklistTTL
	if claims.ExpiresAt != nil {
		if remaining := time.Until(claims.ExpiresAt.Time); remaining > ttl {
			ttl = remaining
		}
	}

	if err := s.blocklist.Add(ctx, claims.ID, ttl); err != nil {
		return fmt.Errorf("token could not be revoked. Err: %w", err)
	}

	return nil
}

// CurrentUser resolves the live user record for validated access claims.
// The role comes from the database, not from the token snapshot.
func (s *AuthService) CurrentUser(ctx context.Context, claims tokenmanager.Claims) (models.User, error) {
	if claims.User == nil {
		return models.User{}, apperrors.ErrUserNotFound
	}

	return s.userRepo.GetUserByEmail(ctx, claims.User.Email)
}

// BearerToken extracts the token from the Authorization header.
// Missing header or wrong scheme returns apperrors.ErrNoToken.
func (s *AuthService) BearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", apperrors.ErrNoToken
	}

	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, defaultAuthScheme) || token == "" {
		return "", apperrors.ErrNoToken
	}

	return token, nil
}
