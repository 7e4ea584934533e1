// internal/storage/memory/memory.go
package memory

import (
	"sync"
	"time"

	"github.com/OCAP2/osu-parsers/internal/config"
	"github.com/OCAP2/osu-parsers/internal/model"
)

// Backend keeps the catalog in memory and exports it to JSON on Close
type Backend struct {
	cfg config.MemoryConfig

	beatmaps     map[string]*model.Beatmap // keyed by MD5
	beatmapOrder []string
	scores       map[string]*model.Score // keyed by Path
	scoreOrder   []string
	runs         []model.IndexRun

	idCounter      uint
	lastExportPath string
	now            func() time.Time
	mu             sync.RWMutex
}

// New creates a new memory backend
func New(cfg config.MemoryConfig) *Backend {
	return &Backend{
		cfg:      cfg,
		beatmaps: make(map[string]*model.Beatmap),
		scores:   make(map[string]*model.Score),
		now:      time.Now,
	}
}

// Init initializes the backend
func (b *Backend) Init() error {
	return nil
}

// Close exports the catalog when an output directory is configured
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.cfg.OutputDir == "" {
		return nil
	}
	return b.exportJSON()
}

// ExportedFilePath returns the file written by the last Close
func (b *Backend) ExportedFilePath() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastExportPath
}

// SaveBeatmap stores a beatmap. Saving a known MD5 replaces the entry in place
// and keeps its ID.
func (b *Backend) SaveBeatmap(bm *model.Beatmap) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if existing, ok := b.beatmaps[bm.MD5]; ok {
		bm.ID = existing.ID
		bm.CreatedAt = existing.CreatedAt
	} else {
		b.idCounter++
		bm.ID = b.idCounter
		bm.CreatedAt = b.now()
		b.beatmapOrder = append(b.beatmapOrder, bm.MD5)
	}
	bm.UpdatedAt = b.now()

	stored := *bm
	b.beatmaps[bm.MD5] = &stored
	return nil
}

// SaveScore stores a score. Saving a known path replaces the entry in place.
func (b *Backend) SaveScore(s *model.Score) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if existing, ok := b.scores[s.Path]; ok {
		s.ID = existing.ID
		s.CreatedAt = existing.CreatedAt
	} else {
		b.idCounter++
		s.ID = b.idCounter
		s.CreatedAt = b.now()
		b.scoreOrder = append(b.scoreOrder, s.Path)
	}
	s.UpdatedAt = b.now()

	stored := *s
	b.scores[s.Path] = &stored
	return nil
}

// RecordIndexRun appends a run
func (b *Backend) RecordIndexRun(r *model.IndexRun) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	r.ID = uint(len(b.runs) + 1)
	b.runs = append(b.runs, *r)
	return nil
}

// Beatmaps returns copies of the stored beatmaps in insertion order
func (b *Backend) Beatmaps() ([]model.Beatmap, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.beatmapList(), nil
}

// Scores returns copies of the stored scores in insertion order
func (b *Backend) Scores() ([]model.Score, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.scoreList(), nil
}

func (b *Backend) beatmapList() []model.Beatmap {
	out := make([]model.Beatmap, 0, len(b.beatmapOrder))
	for _, md5 := range b.beatmapOrder {
		out = append(out, *b.beatmaps[md5])
	}
	return out
}

func (b *Backend) scoreList() []model.Score {
	out := make([]model.Score, 0, len(b.scoreOrder))
	for _, path := range b.scoreOrder {
		out = append(out, *b.scores[path])
	}
	return out
}
