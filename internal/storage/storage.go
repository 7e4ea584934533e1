// internal/storage/storage.go
package storage

import "github.com/OCAP2/osu-parsers/internal/model"

// Backend is the interface all catalog implementations must satisfy
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// Catalog writes. Beatmaps are keyed by content hash and scores by path;
	// saving an existing key replaces the entry.
	SaveBeatmap(b *model.Beatmap) error
	SaveScore(s *model.Score) error
	RecordIndexRun(r *model.IndexRun) error

	// Catalog reads
	Beatmaps() ([]model.Beatmap, error)
	Scores() ([]model.Score, error)
}

// Exportable is an optional interface for backends that write the catalog to
// a file when closed.
type Exportable interface {
	ExportedFilePath() string
}

