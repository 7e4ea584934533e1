// Package compress wraps the LZMA payload codec used by .osr files.
package compress

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/ulikunitz/xz/lzma"
)

// Codec compresses and decompresses replay payloads.
type Codec interface {
	Compress(ctx context.Context, data []byte) ([]byte, error)
	Decompress(ctx context.Context, data []byte) ([]byte, error)
}

// DefaultDictCap matches the dictionary size of the game's fastest preset.
const DefaultDictCap = 1 << 16

// LZMA produces classic .lzma streams with the uncompressed size declared in
// the header.
type LZMA struct {
	DictCap int
}

func NewLZMA() *LZMA {
	return &LZMA{DictCap: DefaultDictCap}
}

type result struct {
	data []byte
	err  error
}

// run executes fn on its own goroutine and returns early when ctx is done.
// The goroutine finishes in the background in that case.
func run(ctx context.Context, fn func() ([]byte, error)) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	done := make(chan result, 1)
	go func() {
		data, err := fn()
		done <- result{data, err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-done:
		return r.data, r.err
	}
}

func (c *LZMA) Compress(ctx context.Context, data []byte) ([]byte, error) {
	return run(ctx, func() ([]byte, error) {
		var buf bytes.Buffer
		cfg := lzma.WriterConfig{
			DictCap:      c.DictCap,
			SizeInHeader: true,
			Size:         int64(len(data)),
		}
		w, err := cfg.NewWriter(&buf)
		if err != nil {
			return nil, fmt.Errorf("failed to create lzma writer: %w", err)
		}
		if _, err := w.Write(data); err != nil {
			return nil, fmt.Errorf("failed to compress: %w", err)
		}
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("failed to finish lzma stream: %w", err)
		}
		return buf.Bytes(), nil
	})
}

func (c *LZMA) Decompress(ctx context.Context, data []byte) ([]byte, error) {
	return run(ctx, func() ([]byte, error) {
		r, err := lzma.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to read lzma header: %w", err)
		}
		out, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("failed to decompress: %w", err)
		}
		return out, nil
	})
}
