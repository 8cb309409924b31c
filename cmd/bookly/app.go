package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nvoronin/bookly/internal/blocklist"
	"github.com/nvoronin/bookly/internal/db"
	"github.com/nvoronin/bookly/internal/handlers"
	"github.com/nvoronin/bookly/internal/logger"
	"github.com/nvoronin/bookly/internal/repository/postgres"
	"github.com/nvoronin/bookly/internal/service/auth"
	"github.com/nvoronin/bookly/internal/service/auth/tokenmanager"
	"github.com/nvoronin/bookly/internal/service/book"
)

type ServerApp struct {
	ListenAddr string
	Handler    http.Handler

	logger logger.Logger
}

func NewServerApp(ctx context.Context, c *Config) (*ServerApp, error) {
	// Initialize logger
	l, err := logger.New(c.Environment, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("error while initializing logger: %w", err)
	}

	// Connect to the database and run migrations
	pool, err := db.ConnectAndMigrate(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("error while connecting to db. Err: %w", err)
	}

	// Initialize repositories
	storage := postgres.NewStorage(pool)

	// Revocation ledger: redis when configured, in-process map otherwise
	var ledger blocklist.Blocklist
	switch c.RedisAddr {
	case "":
		l.Warn("REDIS_ADDR not set, using in-process revocation ledger")
		ledger = blocklist.NewMemory()
	default:
		client := redis.NewClient(&redis.Options{Addr: c.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("error while connecting to redis. Err: %w", err)
		}
		ledger = blocklist.NewRedis(client)
	}

	// Initialize services
	tokenManager, err := tokenmanager.New(tokenmanager.Config{
		SecretKey:  c.SecretKey,
		Alg:        c.JWTAlgorithm,
		AccessTTL:  time.Duration(c.AccessTokenTTLMin) * time.Minute,
		RefreshTTL: time.Duration(c.RefreshTokenTTLMin) * time.Minute,
	})
	if err != nil {
		return nil, fmt.Errorf("error while creating token manager. Err: %w", err)
	}

	authService, err := auth.NewService(
		auth.Config{BlocklistTTL: time.Duration(c.BlocklistTTLSec) * time.Second},
		tokenManager,
		ledger,
		storage.User(),
		l,
	)
	if err != nil {
		return nil, fmt.Errorf("error while creating auth service. Err: %w", err)
	}

	bookService := book.NewService(storage.Book())
	reviewService := book.NewReviewService(storage.Book(), storage.Review())

	mux := handlers.NewRouter(
		authService,
		bookService,
		reviewService,
		l,
	)

	return &ServerApp{
		ListenAddr: c.ListenAddr,
		Handler:    mux,
		logger:     l,
	}, nil
}

// Run starts http server and closes gracefully on context cancellation
func (s *ServerApp) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:    s.ListenAddr,
		Handler: s.Handler,
	}

	idleConnsClosed := make(chan struct{})
	srvCtx, srvCtxCancel := context.WithCancel(ctx)
	defer srvCtxCancel()

	go func() {
		<-srvCtx.Done()

		timeoutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(timeoutCtx); err == context.DeadlineExceeded {
			s.logger.Error("HTTP server shutdown timeout exceeded, forcing shutdown...")
		}
		s.logger.Info("HTTP server stopped")
		close(idleConnsClosed)
	}()

	// Listen and serve until context is cancelled; then close gracefully connections
	s.logger.Info("Starting server", "addr", s.ListenAddr)
	err := httpServer.ListenAndServe()
	srvCtxCancel()
	<-idleConnsClosed

	return err
}
