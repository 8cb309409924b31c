package e2e

import (
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/nvoronin/bookly/internal/blocklist"
	"github.com/nvoronin/bookly/internal/handlers"
	"github.com/nvoronin/bookly/internal/logger"
	"github.com/nvoronin/bookly/internal/repository/postgres"
	"github.com/nvoronin/bookly/internal/service/auth"
	"github.com/nvoronin/bookly/internal/service/auth/tokenmanager"
	"github.com/nvoronin/bookly/internal/service/book"
	"github.com/nvoronin/bookly/internal/testutil"
)

type Services struct {
	AuthService   *auth.AuthService
	BookService   *book.BookService
	ReviewService *book.ReviewService

	// Redis behind the revocation ledger, to inspect stored records
	Redis *miniredis.Miniredis
}

// Create db transaction and run server with that connection (one connection cause one transaction)
// The created transaction passed to inner function: so, you can safely use testutil.WithTx with it
// The revocation ledger runs on a fresh miniredis per call
func ServeWithTx(dbpool *pgxpool.Pool, t *testing.T, fn func(tx pgx.Tx, srvURL string, services Services)) {
	testutil.WithTx(dbpool, t, func(tx pgx.Tx) {
		// Initialize repositories
		userRepo := &postgres.UserRepo{DB: tx}
		bookRepo := &postgres.BookRepo{DB: tx}
		reviewRepo := &postgres.ReviewRepo{DB: tx}

		// Revocation ledger on redis
		mr := miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		ledger := blocklist.NewRedis(client)

		// Initialize services
		tokenManager, err := tokenmanager.New(tokenmanager.Config{SecretKey: "test-secret"})
		require.NoError(t, err, "token manager should be created without errors")

		as, err := auth.NewService(auth.Config{}, tokenManager, ledger, userRepo, logger.NewNoOp())
		require.NoError(t, err, "auth service starting error")

		bs := book.NewService(bookRepo)
		rs := book.NewReviewService(bookRepo, reviewRepo)

		// Complete all together as router
		router := handlers.NewRouter(as, bs, rs, logger.NewNoOp())

		// Run http server with the router in transaction
		srv := httptest.NewServer(router)
		defer srv.Close()

		fn(tx, srv.URL, Services{
			AuthService:   as,
			BookService:   bs,
			ReviewService: rs,
			Redis:         mr,
		})
	})
}
