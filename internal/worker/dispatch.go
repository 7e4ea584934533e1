package worker

import (
	"context"
	"fmt"

	"github.com/OCAP2/osu-parsers/internal/dispatcher"
	"github.com/OCAP2/osu-parsers/internal/library"
	"github.com/OCAP2/osu-parsers/internal/model/convert"
)

// queueSize bounds how far the directory walk runs ahead of the decoders.
const queueSize = 256

// RegisterHandlers registers the beatmap and score handlers with the dispatcher.
// Both block the walk when their queue is full so no file is dropped.
func (m *Manager) RegisterHandlers(d *dispatcher.Dispatcher) {
	opts := []dispatcher.Option{
		dispatcher.Buffered(queueSize),
		dispatcher.Workers(m.deps.Workers),
		dispatcher.Blocking(),
		dispatcher.Logged(),
	}
	d.Register(library.KindBeatmap, m.counted(m.handleBeatmap), opts...)
	d.Register(library.KindScore, m.counted(m.handleScore), opts...)
}

func (m *Manager) counted(h dispatcher.HandlerFunc) dispatcher.HandlerFunc {
	return func(ctx context.Context, j dispatcher.Job) error {
		err := h(ctx, j)
		if err != nil {
			m.failures.Inc()
		}
		return err
	}
}

func (m *Manager) handleBeatmap(ctx context.Context, j dispatcher.Job) error {
	f, err := m.deps.Library.DecodeBeatmapFile(ctx, j.Path)
	if err != nil {
		return err
	}

	if owner, fresh := m.deps.Hashes.Claim(f.MD5, j.Path); !fresh {
		m.duplicates.Inc()
		m.deps.Logger.Debug("Skipping duplicate beatmap", "path", j.Path, "sameAs", owner)
		return nil
	}

	entry := convert.CoreToBeatmap(f.Beatmap, f.MD5, j.Path)
	if err := m.backend.SaveBeatmap(&entry); err != nil {
		return fmt.Errorf("failed to save beatmap %s: %w", j.Path, err)
	}
	m.beatmaps.Inc()
	return nil
}

func (m *Manager) handleScore(ctx context.Context, j dispatcher.Job) error {
	f, err := m.deps.Library.DecodeScoreFile(ctx, j.Path)
	if err != nil {
		return err
	}

	entry := convert.CoreToScore(f.Score, j.Path)
	if err := m.backend.SaveScore(&entry); err != nil {
		return fmt.Errorf("failed to save score %s: %w", j.Path, err)
	}
	m.scores.Inc()
	return nil
}
