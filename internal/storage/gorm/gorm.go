// Package gormstorage implements the catalog backend on top of any GORM
// dialect. Writes are queued and drained by a background writer so indexing
// never waits on the database; reads flush the queues first.
package gormstorage

import (
	"fmt"
	"sync"
	"time"

	"github.com/OCAP2/osu-parsers/internal/model"
	"github.com/OCAP2/osu-parsers/internal/queue"

	"gorm.io/gorm"
)

// DefaultFlushInterval is how often the writer drains the queues.
const DefaultFlushInterval = 500 * time.Millisecond

// Logger is the key-value logger the backend reports through.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// Dependencies holds all dependencies for the GORM storage backend. The schema
// must already be migrated.
type Dependencies struct {
	DB            *gorm.DB
	Logger        Logger
	FlushInterval time.Duration
}

type queues struct {
	Beatmaps *queue.Queue[model.Beatmap]
	Scores   *queue.Queue[model.Score]
}

func newQueues() *queues {
	return &queues{
		Beatmaps: queue.New[model.Beatmap](),
		Scores:   queue.New[model.Score](),
	}
}

// Backend implements the catalog with GORM and queue-based batch writes.
type Backend struct {
	deps     Dependencies
	queues   *queues
	flushMu  sync.Mutex
	stopChan chan struct{}
	done     chan struct{}
}

// New creates a new GORM storage backend.
func New(deps Dependencies) *Backend {
	if deps.FlushInterval <= 0 {
		deps.FlushInterval = DefaultFlushInterval
	}
	return &Backend{
		deps:   deps,
		queues: newQueues(),
	}
}

// Init starts the DB writer goroutine.
func (b *Backend) Init() error {
	if b.deps.DB == nil {
		return fmt.Errorf("gorm backend has no database")
	}
	b.stopChan = make(chan struct{})
	b.done = make(chan struct{})
	b.startDBWriter()
	return nil
}

// Close stops the writer and writes whatever is still queued.
func (b *Backend) Close() error {
	if b.stopChan != nil {
		close(b.stopChan)
		<-b.done
		b.stopChan = nil
	}
	return b.Flush()
}

// SaveBeatmap queues a beatmap. An entry with the same MD5 is replaced.
func (b *Backend) SaveBeatmap(bm *model.Beatmap) error {
	b.queues.Beatmaps.Push(*bm)
	return nil
}

// SaveScore queues a score. An entry with the same path is replaced.
func (b *Backend) SaveScore(s *model.Score) error {
	b.queues.Scores.Push(*s)
	return nil
}

// RecordIndexRun inserts the run synchronously so the caller gets its ID.
func (b *Backend) RecordIndexRun(r *model.IndexRun) error {
	if err := b.deps.DB.Create(r).Error; err != nil {
		return fmt.Errorf("failed to insert index run: %w", err)
	}
	return nil
}

// Beatmaps returns every catalogued beatmap in insertion order.
func (b *Backend) Beatmaps() ([]model.Beatmap, error) {
	if err := b.Flush(); err != nil {
		return nil, err
	}
	var out []model.Beatmap
	if err := b.deps.DB.Order("id").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to read beatmaps: %w", err)
	}
	return out, nil
}

// Scores returns every catalogued score in insertion order.
func (b *Backend) Scores() ([]model.Score, error) {
	if err := b.Flush(); err != nil {
		return nil, err
	}
	var out []model.Score
	if err := b.deps.DB.Order("id").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to read scores: %w", err)
	}
	return out, nil
}

// Flush writes both queues to the database. Items from a failed batch are
// put back at the head of their queue.
func (b *Backend) Flush() error {
	b.flushMu.Lock()
	defer b.flushMu.Unlock()

	if err := writeQueue(b.deps.DB, b.queues.Beatmaps, "beatmaps", "md5", func(m model.Beatmap) string { return m.MD5 }, b.deps.Logger); err != nil {
		return err
	}
	return writeQueue(b.deps.DB, b.queues.Scores, "scores", "path", func(s model.Score) string { return s.Path }, b.deps.Logger)
}

// writeQueue replaces the rows matching the queued keys and inserts the
// queued items in one transaction. Within a batch the last item for a key wins.
func writeQueue[T any](db *gorm.DB, q *queue.Queue[T], name, keyColumn string, key func(T) string, log Logger) error {
	if q.Empty() {
		return nil
	}

	items := q.GetAndEmpty()
	batch := dedupe(items, key)
	keys := make([]string, len(batch))
	for i, item := range batch {
		keys[i] = key(item)
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		var zero T
		if err := tx.Unscoped().Where(keyColumn+" IN ?", keys).Delete(&zero).Error; err != nil {
			return err
		}
		return tx.Create(&batch).Error
	})
	if err != nil {
		log.Error("Error writing "+name, "error", err, "count", len(items))
		q.Requeue(items...)
		return fmt.Errorf("failed to write %s: %w", name, err)
	}

	log.Debug("Wrote "+name, "count", len(batch))
	return nil
}

func dedupe[T any](items []T, key func(T) string) []T {
	last := make(map[string]int, len(items))
	for i, item := range items {
		last[key(item)] = i
	}
	out := make([]T, 0, len(last))
	for i, item := range items {
		if last[key(item)] == i {
			out = append(out, item)
		}
	}
	return out
}

// startDBWriter starts the background goroutine that periodically drains
// the queues into the DB.
func (b *Backend) startDBWriter() {
	go func() {
		defer close(b.done)
		ticker := time.NewTicker(b.deps.FlushInterval)
		defer ticker.Stop()

		for {
			select {
			case <-b.stopChan:
				return
			case <-ticker.C:
				_ = b.Flush()
			}
		}
	}()
}
