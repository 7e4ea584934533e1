package worker

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/OCAP2/osu-parsers/internal/cache"
	"github.com/OCAP2/osu-parsers/internal/dispatcher"
	"github.com/OCAP2/osu-parsers/internal/files"
	"github.com/OCAP2/osu-parsers/internal/library"
	"github.com/OCAP2/osu-parsers/internal/model"
	"github.com/OCAP2/osu-parsers/internal/storage"
)

// DefaultWorkers is used when Dependencies.Workers is not positive.
const DefaultWorkers = 4

// Dependencies holds all dependencies for the worker manager
type Dependencies struct {
	Files   files.Source
	Library *library.Library
	Hashes  *cache.HashCache
	Logger  *slog.Logger
	Workers int
}

// Manager indexes directories of beatmaps and scores into a catalog backend.
type Manager struct {
	deps    Dependencies
	backend storage.Backend

	beatmaps   cache.SafeCounter
	scores     cache.SafeCounter
	duplicates cache.SafeCounter
	failures   cache.SafeCounter
}

// NewManager creates a new worker manager
func NewManager(deps Dependencies, backend storage.Backend) *Manager {
	if deps.Hashes == nil {
		deps.Hashes = cache.NewHashCache()
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Workers <= 0 {
		deps.Workers = DefaultWorkers
	}
	return &Manager{
		deps:    deps,
		backend: backend,
	}
}

func (m *Manager) reset() {
	m.deps.Hashes.Reset()
	m.beatmaps.Set(0)
	m.scores.Set(0)
	m.duplicates.Set(0)
	m.failures.Set(0)
}

// Duplicates returns how many beatmaps the last run skipped because their
// content was already indexed under another path.
func (m *Manager) Duplicates() int {
	return m.duplicates.Value()
}

// IndexDir decodes every .osu and .osr file under root, saves the results to
// the backend and records the run. Files that fail to decode are counted as
// failures and do not stop the run; a cancelled context does.
func (m *Manager) IndexDir(ctx context.Context, root string) (model.IndexRun, error) {
	m.reset()
	run := model.IndexRun{Root: root, StartedAt: time.Now()}

	d, err := dispatcher.New(m.deps.Logger)
	if err != nil {
		return run, fmt.Errorf("failed to create dispatcher: %w", err)
	}
	m.RegisterHandlers(d)

	walkErr := m.deps.Files.Walk(root, func(path string, _ fs.FileInfo) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		var kind string
		switch files.Ext(path) {
		case library.ExtBeatmap:
			kind = library.KindBeatmap
		case library.ExtReplay:
			kind = library.KindScore
		default:
			return nil
		}
		return d.Dispatch(ctx, dispatcher.Job{Kind: kind, Path: path})
	})

	if err := d.Close(); err != nil {
		m.deps.Logger.Warn("Failed to close dispatcher", "error", err)
	}

	run.FinishedAt = time.Now()
	run.Beatmaps = m.beatmaps.Value()
	run.Scores = m.scores.Value()
	run.Failures = m.failures.Value()

	if walkErr != nil {
		return run, fmt.Errorf("failed to index %s: %w", root, walkErr)
	}
	if err := m.backend.RecordIndexRun(&run); err != nil {
		return run, err
	}

	m.deps.Logger.Info("Index run complete",
		"root", root,
		"beatmaps", run.Beatmaps,
		"scores", run.Scores,
		"duplicates", m.duplicates.Value(),
		"failures", run.Failures,
		"duration", run.FinishedAt.Sub(run.StartedAt))
	return run, nil
}
