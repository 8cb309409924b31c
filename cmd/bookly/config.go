package main

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/nvoronin/bookly/internal/logger"
)

const (
	defaultListenAddr      = "localhost:8000"
	defaultLoggingLevel    = logger.LevelInfo
	defaultEnvironment     = logger.EnvProduction
	defaultJWTAlgorithm    = "HS256"
	defaultAccessTTLMin    = 30
	defaultRefreshTTLMin   = 48 * 60
	defaultBlocklistTTLSec = 3600
)

type Config struct {
	// Default logging level
	LogLevel string

	// Address on which the bookly service will be run
	ListenAddr string

	// Database to connect to
	DatabaseDSN string

	// Redis address for the revocation ledger
	// When empty an in-process ledger is used instead
	RedisAddr string

	// Secret key used to sign JWT tokens
	SecretKey string

	// JWT signing algorithm
	JWTAlgorithm string

	// Token lifetimes
	AccessTokenTTLMin  int
	RefreshTokenTTLMin int

	// Minimal lifetime of revoked token records, seconds
	BlocklistTTLSec int

	// Environment
	Environment string
}

func NewConfig() *Config {
	return &Config{
		LogLevel:           defaultLoggingLevel,
		ListenAddr:         defaultListenAddr,
		Environment:        defaultEnvironment,
		JWTAlgorithm:       defaultJWTAlgorithm,
		AccessTokenTTLMin:  defaultAccessTTLMin,
		RefreshTokenTTLMin: defaultRefreshTTLMin,
		BlocklistTTLSec:    defaultBlocklistTTLSec,
	}
}

// Load variable from '.env' file (should be located at working directory)
func (c *Config) LoadDotEnv(getwd func() (string, error)) error {
	wd, err := getwd()
	if err != nil {
		return err
	}

	envMap, err := godotenv.Read(filepath.Join(wd, ".env"))

	switch {
	case err == nil:
		c.LoadEnv(func(key string) string {
			return envMap[key]
		})
		return nil
	case errors.Is(err, os.ErrNotExist):
		return nil
	default:
		return err
	}
}

func (c *Config) LoadEnv(getenv func(string) string) {
	// Set option to value if it not empty
	setString := func(o *string) func(value string) {
		return func(value string) {
			if value != "" {
				*o = value
			}
		}
	}
	setInt := func(o *int) func(value string) {
		return func(value string) {
			if parsed, err := strconv.Atoi(value); err == nil {
				*o = parsed
			}
		}
	}

	envMap := map[string]func(string){
		"RUN_ADDRESS":       setString(&c.ListenAddr),
		"DATABASE_URI":      setString(&c.DatabaseDSN),
		"REDIS_ADDR":        setString(&c.RedisAddr),
		"SECRET_KEY":        setString(&c.SecretKey),
		"JWT_ALGORITHM":     setString(&c.JWTAlgorithm),
		"ACCESS_TOKEN_TTL":  setInt(&c.AccessTokenTTLMin),
		"REFRESH_TOKEN_TTL": setInt(&c.RefreshTokenTTLMin),
		"BLOCKLIST_TTL":     setInt(&c.BlocklistTTLSec),
		"LOG_LEVEL":         setString(&c.LogLevel),
		"ENVIRONMENT":       setString(&c.Environment),
	}

	for key, parseFn := range envMap {
		parseFn(getenv(key))
	}
}

func (c *Config) ParseFlags(args []string) error {
	fs := pflag.NewFlagSet("bookly", pflag.ContinueOnError)

	fs.StringVarP(&c.ListenAddr, "address", "a", c.ListenAddr, "Server listen address")
	fs.StringVarP(&c.DatabaseDSN, "database", "d", c.DatabaseDSN, "Database connection string")
	fs.StringVarP(&c.RedisAddr, "redis", "r", c.RedisAddr, "Redis address for the revocation ledger")
	fs.StringVarP(&c.SecretKey, "secret-key", "s", c.SecretKey, "Secret key")
	fs.StringVar(&c.JWTAlgorithm, "jwt-algorithm", c.JWTAlgorithm, "JWT signing algorithm")
	fs.IntVar(&c.AccessTokenTTLMin, "access-ttl", c.AccessTokenTTLMin, "Access token lifetime, minutes")
	fs.IntVar(&c.RefreshTokenTTLMin, "refresh-ttl", c.RefreshTokenTTLMin, "Refresh token lifetime, minutes")
	fs.IntVar(&c.BlocklistTTLSec, "blocklist-ttl", c.BlocklistTTLSec, "Minimal lifetime of revoked token records, seconds")
	fs.StringVarP(&c.LogLevel, "log-level", "l", c.LogLevel, "Logging level (debug, info, warn, error)")
	fs.StringVarP(&c.Environment, "environment", "e", c.Environment, "Environment (dev, prod)")

	return fs.Parse(args)
}
