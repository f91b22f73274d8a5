package db

import (
	"fmt"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Options selects the database backend. A non-empty TursoURL takes
// precedence over the local SQLite file.
type Options struct {
	Path        string
	TursoURL    string
	TursoToken  string
	Environment string
}

// Initialize sets up the database connection. Local files run in WAL mode for
// concurrency; remote Turso databases go through the libsql driver.
func Initialize(opts Options) error {
	var err error

	// Determine log level based on environment
	logLevel := logger.Info
	if opts.Environment == "production" {
		logLevel = logger.Warn
	}

	dialector, backend, err := dialectorFor(opts)
	if err != nil {
		return err
	}

	DB, err = gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Info().Str("backend", backend).Msg("Database connection established")
	return nil
}

func dialectorFor(opts Options) (gorm.Dialector, string, error) {
	if opts.TursoURL == "" {
		if opts.Path == "" {
			return nil, "", fmt.Errorf("database path is empty")
		}
		return sqlite.Open(opts.Path + "?_journal_mode=WAL"), "sqlite", nil
	}

	dsn, err := tursoDSN(opts.TursoURL, opts.TursoToken)
	if err != nil {
		return nil, "", err
	}
	return sqlite.New(sqlite.Config{
		DriverName: "libsql",
		DSN:        dsn,
	}), "turso", nil
}

// tursoDSN appends the auth token to a libsql:// URL.
func tursoDSN(rawURL, token string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid turso url: %w", err)
	}
	if u.Scheme != "libsql" && u.Scheme != "https" && u.Scheme != "http" {
		return "", fmt.Errorf("unsupported turso url scheme %q", u.Scheme)
	}
	if token != "" {
		q := u.Query()
		q.Set("authToken", token)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// AutoMigrate runs database migrations for the provided models
func AutoMigrate(models ...interface{}) error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	start := time.Now()
	if err := DB.AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info().Dur("took", time.Since(start)).Msg("Database migrations completed")
	return nil
}

// Close closes the database connection
func Close() error {
	if DB == nil {
		return nil
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	return sqlDB.Close()
}
