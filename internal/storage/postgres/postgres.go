// Package postgres implements the catalog on PostgreSQL through the GORM
// backend's queued writer.
package postgres

import (
	"fmt"

	"github.com/OCAP2/osu-parsers/internal/database"
	"github.com/OCAP2/osu-parsers/internal/logging"
	gormstorage "github.com/OCAP2/osu-parsers/internal/storage/gorm"
	"github.com/rs/zerolog"

	"gorm.io/gorm"
)

// Backend wraps the GORM backend with a Postgres connection.
type Backend struct {
	*gormstorage.Backend
	db   *gorm.DB
	log  zerolog.Logger
	open func(zerolog.Logger) (*gorm.DB, error)
}

// New creates a Postgres backend. The connection described by the "db"
// config keys is opened in Init.
func New(log zerolog.Logger) *Backend {
	return &Backend{log: log, open: database.OpenPostgres}
}

// Init connects, runs schema migration and starts the DB writer goroutine.
func (b *Backend) Init() error {
	db, err := b.open(b.log)
	if err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}
	if err := database.Migrate(db, b.log); err != nil {
		return fmt.Errorf("failed to setup DB: %w", err)
	}
	b.db = db
	b.Backend = gormstorage.New(gormstorage.Dependencies{
		DB:     db,
		Logger: logging.NewStoreLogger(b.log),
	})
	b.log.Info().Msg("Database setup complete")
	return b.Backend.Init()
}

// Close flushes pending writes and closes the connection pool.
func (b *Backend) Close() error {
	if b.Backend == nil {
		return nil
	}
	if err := b.Backend.Close(); err != nil {
		return err
	}
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
