// Package score decodes and encodes .osr score files.
package score

import (
	"context"
	"log/slog"

	"github.com/OCAP2/osu-parsers/internal/compress"
	"github.com/OCAP2/osu-parsers/internal/replay"
	"github.com/OCAP2/osu-parsers/internal/serialization"
	"github.com/OCAP2/osu-parsers/pkg/core"
)

const (
	// DefaultGameVersion is written when a score has no replay to take it from.
	DefaultGameVersion = 20230621

	// Score ids are 64-bit from this version, 32-bit from versionIntID, and
	// absent before that.
	versionLongID = 20140721
	versionIntID  = 20121008
)

type Options struct {
	ParseReplay bool
}

func DefaultOptions() Options {
	return Options{ParseReplay: true}
}

// Decoder reads .osr buffers. It may be shared between goroutines.
type Decoder struct {
	logger *slog.Logger
	codec  compress.Codec
}

// NewDecoder creates a decoder. A nil logger uses the default logger and a
// nil codec uses LZMA.
func NewDecoder(logger *slog.Logger, codec compress.Codec) *Decoder {
	if logger == nil {
		logger = slog.Default()
	}
	if codec == nil {
		codec = compress.NewLZMA()
	}
	return &Decoder{logger: logger, codec: codec}
}

// Decode reads a score. Truncated or corrupt input is not an error: decoding
// stops at the first failed read and the fields read so far are returned.
// Only context cancellation during decompression fails the call.
func (d *Decoder) Decode(ctx context.Context, data []byte, opts Options) (*core.Score, error) {
	r := serialization.NewReader(data)
	s := &core.Score{}
	info := &s.Info

	info.RulesetID = int(r.ReadUint8())
	gameVersion := int(r.ReadInt32())
	info.BeatmapHashMD5 = r.ReadString()
	info.Username = r.ReadString()
	replayHash := r.ReadString()
	info.Count300 = int(r.ReadUint16())
	info.Count100 = int(r.ReadUint16())
	info.Count50 = int(r.ReadUint16())
	info.CountGeki = int(r.ReadUint16())
	info.CountKatu = int(r.ReadUint16())
	info.CountMiss = int(r.ReadUint16())
	info.TotalScore = int(r.ReadInt32())
	info.MaxCombo = int(r.ReadUint16())
	info.Perfect = r.ReadUint8() != 0
	info.RawMods = int(r.ReadInt32())
	lifeBar := r.ReadString()
	info.Date = r.ReadDate()
	replayLength := int(r.ReadInt32())
	compressed := r.ReadBytes(replayLength)
	if err := r.Err(); err != nil {
		d.logger.Debug("Score decoding stopped early", "error", err, "bytesRead", r.BytesRead())
		return s, nil
	}

	if opts.ParseReplay && replayLength > 0 {
		payload, err := d.codec.Decompress(ctx, compressed)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if err != nil {
			d.logger.Debug("Replay payload could not be decompressed", "error", err)
		}
		s.Replay = &core.Replay{
			GameVersion: gameVersion,
			Mode:        info.RulesetID,
			HashMD5:     replayHash,
			Frames:      replay.DecodeFrames(string(payload)),
			LifeBar:     replay.DecodeLifeBar(lifeBar),
		}
	}

	switch {
	case gameVersion >= versionLongID:
		info.ID = r.ReadInt64()
	case gameVersion >= versionIntID:
		info.ID = int64(r.ReadInt32())
	}
	if err := r.Err(); err != nil {
		info.ID = 0
		d.logger.Debug("Score id is missing", "error", err, "gameVersion", gameVersion)
	}

	d.logger.Debug("Decoded score",
		"player", info.Username,
		"gameVersion", gameVersion,
		"replay", s.Replay != nil)
	return s, nil
}
