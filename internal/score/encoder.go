package score

import (
	"context"
	"fmt"

	"github.com/OCAP2/osu-parsers/internal/compress"
	"github.com/OCAP2/osu-parsers/internal/replay"
	"github.com/OCAP2/osu-parsers/internal/serialization"
	"github.com/OCAP2/osu-parsers/pkg/core"
)

type Encoder struct {
	codec compress.Codec
}

// NewEncoder creates an encoder. A nil codec uses LZMA.
func NewEncoder(codec compress.Codec) *Encoder {
	if codec == nil {
		codec = compress.NewLZMA()
	}
	return &Encoder{codec: codec}
}

// Encode writes a score. A nil score encodes to an empty buffer.
func (e *Encoder) Encode(ctx context.Context, s *core.Score) ([]byte, error) {
	if s == nil {
		return []byte{}, nil
	}
	info := s.Info

	gameVersion := DefaultGameVersion
	var replayHash string
	var lifeBar []core.LifeBarFrame
	if s.Replay != nil {
		if s.Replay.GameVersion != 0 {
			gameVersion = s.Replay.GameVersion
		}
		replayHash = s.Replay.HashMD5
		lifeBar = s.Replay.LifeBar
	}

	w := serialization.NewWriter()
	w.WriteUint8(byte(info.RulesetID))
	w.WriteInt32(int32(gameVersion))
	w.WriteString(info.BeatmapHashMD5)
	w.WriteString(info.Username)
	w.WriteString(replayHash)
	w.WriteUint16(uint16(info.Count300))
	w.WriteUint16(uint16(info.Count100))
	w.WriteUint16(uint16(info.Count50))
	w.WriteUint16(uint16(info.CountGeki))
	w.WriteUint16(uint16(info.CountKatu))
	w.WriteUint16(uint16(info.CountMiss))
	w.WriteInt32(int32(info.TotalScore))
	w.WriteUint16(uint16(info.MaxCombo))
	if info.Perfect {
		w.WriteUint8(1)
	} else {
		w.WriteUint8(0)
	}
	w.WriteInt32(int32(info.RawMods))
	w.WriteString(replay.EncodeLifeBar(lifeBar))
	w.WriteDate(info.Date)

	if s.Replay != nil {
		frames, err := replay.EncodeFrames(s.Replay.Frames)
		if err != nil {
			return nil, fmt.Errorf("failed to encode a score: %w", err)
		}
		payload, err := e.codec.Compress(ctx, []byte(frames))
		if err != nil {
			return nil, fmt.Errorf("failed to encode a score: %w", err)
		}
		w.WriteInt32(int32(len(payload)))
		w.WriteBytes(payload)
	} else {
		w.WriteInt32(0)
	}

	switch {
	case gameVersion >= versionLongID:
		w.WriteInt64(info.ID)
	case gameVersion >= versionIntID:
		w.WriteInt32(int32(info.ID))
	}
	return w.Bytes(), nil
}
