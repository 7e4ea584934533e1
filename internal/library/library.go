// Package library decodes and encodes beatmap, storyboard and score files
// by path. It checks extensions, stamps beatmaps with their file
// modification time and records per-file metrics.
package library

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/OCAP2/osu-parsers/internal/beatmap"
	"github.com/OCAP2/osu-parsers/internal/compress"
	"github.com/OCAP2/osu-parsers/internal/files"
	"github.com/OCAP2/osu-parsers/internal/influx"
	"github.com/OCAP2/osu-parsers/internal/score"
	"github.com/OCAP2/osu-parsers/internal/storyboard"
	"github.com/OCAP2/osu-parsers/pkg/core"
)

// File extensions of the three formats.
const (
	ExtBeatmap    = ".osu"
	ExtStoryboard = ".osb"
	ExtReplay     = ".osr"
)

// File kinds, used as metric attributes and dispatcher job kinds.
const (
	KindBeatmap    = "beatmap"
	KindStoryboard = "storyboard"
	KindScore      = "score"
)

var ErrUnexpectedExtension = errors.New("unexpected file extension")

// StatsRecorder receives one record per decoded file.
type StatsRecorder interface {
	RecordDecode(ctx context.Context, s influx.DecodeStats) error
}

// BeatmapFile is a decoded .osu file.
type BeatmapFile struct {
	Path    string
	MD5     string
	Size    int
	Beatmap *core.Beatmap
}

// ScoreFile is a decoded .osr file.
type ScoreFile struct {
	Path  string
	MD5   string
	Size  int
	Score *core.Score
}

// Library reads and writes files through a files.Source. It may be shared
// between goroutines.
type Library struct {
	src       files.Source
	logger    *slog.Logger
	decodeOpt beatmap.Options
	scoreOpt  score.Options
	codec     compress.Codec
	stats     StatsRecorder
	metrics   *metrics

	beatmaps    *beatmap.Decoder
	storyboards *storyboard.Decoder
	scores      *score.Decoder
	scoreEnc    *score.Encoder
}

// Option configures a Library.
type Option func(*Library)

// WithLogger sets the logger handed to the decoders.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Library) { l.logger = logger }
}

// WithDecodeOptions selects the beatmap sections to decode.
func WithDecodeOptions(opts beatmap.Options) Option {
	return func(l *Library) { l.decodeOpt = opts }
}

// WithScoreOptions configures score decoding.
func WithScoreOptions(opts score.Options) Option {
	return func(l *Library) { l.scoreOpt = opts }
}

// WithCodec replaces the LZMA replay codec.
func WithCodec(codec compress.Codec) Option {
	return func(l *Library) { l.codec = codec }
}

// WithStats sends decode statistics to r.
func WithStats(r StatsRecorder) Option {
	return func(l *Library) { l.stats = r }
}

// New creates a library over src.
func New(src files.Source, opts ...Option) (*Library, error) {
	l := &Library{
		src:       src,
		logger:    slog.Default(),
		decodeOpt: beatmap.DefaultOptions(),
		scoreOpt:  score.DefaultOptions(),
	}
	for _, opt := range opts {
		opt(l)
	}

	m, err := newMetrics()
	if err != nil {
		return nil, err
	}
	l.metrics = m

	l.beatmaps = beatmap.NewDecoder(l.logger)
	l.storyboards = storyboard.NewDecoder(l.logger)
	l.scores = score.NewDecoder(l.logger, l.codec)
	l.scoreEnc = score.NewEncoder(l.codec)
	return l, nil
}

func checkExt(path string, allowed ...string) error {
	ext := files.Ext(path)
	for _, a := range allowed {
		if ext == a {
			return nil
		}
	}
	return fmt.Errorf("%w: %s (expected %v)", ErrUnexpectedExtension, path, allowed)
}

func hash(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}

// DecodeBeatmapFile decodes a .osu file. FileUpdateDate is set from the
// file's modification time and MD5 is the hash scores reference it by.
func (l *Library) DecodeBeatmapFile(ctx context.Context, path string) (*BeatmapFile, error) {
	if err := checkExt(path, ExtBeatmap); err != nil {
		return nil, err
	}
	start := time.Now()

	f, err := l.decodeBeatmap(ctx, path)

	stats := influx.DecodeStats{Kind: KindBeatmap, Path: path, Err: err, Duration: time.Since(start)}
	if f != nil {
		stats.Bytes = f.Size
		stats.Mode = f.Beatmap.General.Mode
		stats.Objects = len(f.Beatmap.HitObjects)
	}
	l.record(ctx, stats)
	return f, err
}

func (l *Library) decodeBeatmap(ctx context.Context, path string) (*BeatmapFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := l.src.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to decode a beatmap: %w", err)
	}
	modTime, err := l.src.ModTime(path)
	if err != nil {
		return nil, fmt.Errorf("failed to decode a beatmap: %w", err)
	}

	b, err := l.beatmaps.DecodeBytes(data, l.decodeOpt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	b.FileUpdateDate = modTime

	return &BeatmapFile{Path: path, MD5: hash(data), Size: len(data), Beatmap: b}, nil
}

// DecodeStoryboardFiles decodes a storyboard from a .osu or .osb file,
// optionally merged with a second .osb file. Pass "" for no second file.
func (l *Library) DecodeStoryboardFiles(ctx context.Context, first, second string) (*core.Storyboard, error) {
	if err := checkExt(first, ExtBeatmap, ExtStoryboard); err != nil {
		return nil, err
	}
	if second != "" {
		if err := checkExt(second, ExtStoryboard); err != nil {
			return nil, err
		}
	}
	start := time.Now()

	sb, size, err := l.decodeStoryboard(ctx, first, second)

	stats := influx.DecodeStats{Kind: KindStoryboard, Path: first, Bytes: size, Err: err, Duration: time.Since(start)}
	if sb != nil {
		for _, t := range core.LayerOrder {
			if layer := sb.Layer(t); layer != nil {
				stats.Objects += len(layer.Elements)
			}
		}
	}
	l.record(ctx, stats)
	return sb, err
}

func (l *Library) decodeStoryboard(ctx context.Context, first, second string) (*core.Storyboard, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	sources := make([]string, 0, 2)
	size := 0
	for _, path := range []string{first, second} {
		if path == "" {
			continue
		}
		data, err := l.src.ReadFile(path)
		if err != nil {
			return nil, size, fmt.Errorf("failed to decode a storyboard: %w", err)
		}
		size += len(data)
		sources = append(sources, string(data))
	}

	sb, err := l.storyboards.DecodeString(sources...)
	if err != nil {
		return nil, size, fmt.Errorf("failed to decode a storyboard: %s: %w", first, err)
	}
	return sb, size, nil
}

// DecodeScoreFile decodes a .osr file.
func (l *Library) DecodeScoreFile(ctx context.Context, path string) (*ScoreFile, error) {
	if err := checkExt(path, ExtReplay); err != nil {
		return nil, err
	}
	start := time.Now()

	f, err := l.decodeScore(ctx, path)

	stats := influx.DecodeStats{Kind: KindScore, Path: path, Err: err, Duration: time.Since(start)}
	if f != nil {
		stats.Bytes = f.Size
		stats.Mode = f.Score.Info.RulesetID
		if f.Score.Replay != nil {
			stats.Frames = len(f.Score.Replay.Frames)
		}
	}
	l.record(ctx, stats)
	return f, err
}

func (l *Library) decodeScore(ctx context.Context, path string) (*ScoreFile, error) {
	data, err := l.src.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to decode a score: %w", err)
	}
	s, err := l.scores.Decode(ctx, data, l.scoreOpt)
	if err != nil {
		return nil, fmt.Errorf("failed to decode a score: %s: %w", path, err)
	}
	return &ScoreFile{Path: path, MD5: hash(data), Size: len(data), Score: s}, nil
}

// withExt appends ext unless path already ends with it.
func withExt(path, ext string) string {
	if files.Ext(path) == ext {
		return path
	}
	return path + ext
}

// EncodeBeatmapFile writes b to path, adding the .osu extension if missing,
// and returns the path written.
func (l *Library) EncodeBeatmapFile(ctx context.Context, path string, b *core.Beatmap) (string, error) {
	path = withExt(path, ExtBeatmap)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	err := l.src.WriteFile(path, []byte(beatmap.Encode(b)))
	l.metrics.encoded(ctx, KindBeatmap, err)
	if err != nil {
		return "", fmt.Errorf("failed to encode a beatmap: %w", err)
	}
	return path, nil
}

// EncodeStoryboardFile writes sb to path, adding the .osb extension if
// missing, and returns the path written.
func (l *Library) EncodeStoryboardFile(ctx context.Context, path string, sb *core.Storyboard) (string, error) {
	path = withExt(path, ExtStoryboard)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	err := l.src.WriteFile(path, []byte(storyboard.Encode(sb)))
	l.metrics.encoded(ctx, KindStoryboard, err)
	if err != nil {
		return "", fmt.Errorf("failed to encode a storyboard: %w", err)
	}
	return path, nil
}

// EncodeScoreFile writes s to path, adding the .osr extension if missing,
// and returns the path written.
func (l *Library) EncodeScoreFile(ctx context.Context, path string, s *core.Score) (string, error) {
	path = withExt(path, ExtReplay)
	data, err := l.scoreEnc.Encode(ctx, s)
	if err == nil {
		err = l.src.WriteFile(path, data)
	}
	l.metrics.encoded(ctx, KindScore, err)
	if err != nil {
		return "", fmt.Errorf("failed to encode a score: %w", err)
	}
	return path, nil
}

func (l *Library) record(ctx context.Context, s influx.DecodeStats) {
	l.metrics.decoded(ctx, s.Kind, s.Duration, s.Err)
	if l.stats == nil {
		return
	}
	s.At = time.Now()
	if err := l.stats.RecordDecode(ctx, s); err != nil {
		l.logger.Warn("Failed to record decode stats", "path", s.Path, "error", err)
	}
}
