// Package sqlitestorage implements the catalog on an in-memory SQLite
// database with periodic disk dumps via VACUUM INTO.
// It wraps the GORM backend; the only SQLite-specific concerns are creating
// the in-memory DB and dumping it to disk.
package sqlitestorage

import (
	"fmt"
	"time"

	"github.com/OCAP2/osu-parsers/internal/database"
	"github.com/OCAP2/osu-parsers/internal/logging"
	gormstorage "github.com/OCAP2/osu-parsers/internal/storage/gorm"
	"github.com/rs/zerolog"

	"gorm.io/gorm"
)

// Config holds configuration for the SQLite storage backend.
type Config struct {
	DumpInterval time.Duration
	DumpPath     string // Path for periodic VACUUM INTO dumps
}

// Backend wraps the GORM backend for SQLite-specific behavior.
type Backend struct {
	*gormstorage.Backend
	db       *gorm.DB
	cfg      Config
	log      zerolog.Logger
	stopChan chan struct{}
	done     chan struct{}
}

// New creates a new SQLite storage backend. The database is opened in Init.
func New(cfg Config, log zerolog.Logger) *Backend {
	return &Backend{cfg: cfg, log: log}
}

// Init opens and migrates the in-memory database, then starts the writer
// and the dump goroutine.
func (b *Backend) Init() error {
	db, err := database.OpenSQLite("", b.log)
	if err != nil {
		return fmt.Errorf("failed to create in-memory SQLite DB: %w", err)
	}
	if err := database.Migrate(db, b.log); err != nil {
		return err
	}
	b.db = db
	b.Backend = gormstorage.New(gormstorage.Dependencies{
		DB:     db,
		Logger: logging.NewStoreLogger(b.log),
	})
	if err := b.Backend.Init(); err != nil {
		return err
	}

	if b.cfg.DumpPath != "" && b.cfg.DumpInterval > 0 {
		b.stopChan = make(chan struct{})
		b.done = make(chan struct{})
		go b.dumpLoop()
	}
	return nil
}

// Close stops the dump goroutine, flushes the writer and writes a final dump.
func (b *Backend) Close() error {
	if b.Backend == nil {
		return nil
	}
	if b.stopChan != nil {
		close(b.stopChan)
		<-b.done
	}
	if err := b.Backend.Close(); err != nil {
		return err
	}
	if b.cfg.DumpPath != "" {
		if err := database.DumpMemoryDBToDisk(b.db, b.cfg.DumpPath, b.log); err != nil {
			return err
		}
	}
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// DumpPath is where the database is written on Close.
func (b *Backend) DumpPath() string {
	return b.cfg.DumpPath
}

// dumpLoop periodically dumps the in-memory SQLite database to disk.
// VACUUM INTO creates a point-in-time snapshot, so no pause mechanism is needed.
func (b *Backend) dumpLoop() {
	defer close(b.done)
	ticker := time.NewTicker(b.cfg.DumpInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopChan:
			return
		case <-ticker.C:
			if err := b.Backend.Flush(); err != nil {
				b.log.Error().Err(err).Msg("Error flushing before dump")
				continue
			}
			if err := database.DumpMemoryDBToDisk(b.db, b.cfg.DumpPath, b.log); err != nil {
				b.log.Error().Err(err).Msg("Error dumping to disk")
			}
		}
	}
}
