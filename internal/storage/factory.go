// internal/storage/factory.go
package storage

import (
	"fmt"

	"github.com/OCAP2/osu-parsers/internal/config"
	gormstorage "github.com/OCAP2/osu-parsers/internal/storage/gorm"
	"github.com/OCAP2/osu-parsers/internal/storage/memory"
	"github.com/OCAP2/osu-parsers/internal/storage/postgres"
	sqlitestorage "github.com/OCAP2/osu-parsers/internal/storage/sqlite"
	"github.com/rs/zerolog"
)

// NewBackend creates a catalog backend based on configuration
func NewBackend(cfg config.StorageConfig, log zerolog.Logger) (Backend, error) {
	switch cfg.Type {
	case "postgres":
		return postgres.New(log), nil
	case "sqlite":
		return sqlitestorage.New(sqlitestorage.Config{
			DumpPath:     cfg.SQLite.Path,
			DumpInterval: cfg.SQLite.DumpInterval,
		}, log), nil
	case "memory":
		return memory.New(cfg.Memory), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}

var (
	_ Backend    = (*memory.Backend)(nil)
	_ Exportable = (*memory.Backend)(nil)
	_ Backend    = (*gormstorage.Backend)(nil)
	_ Backend    = (*sqlitestorage.Backend)(nil)
	_ Backend    = (*postgres.Backend)(nil)
)
