// Package serialization reads and writes the little-endian primitives of the
// .osr binary layout.
package serialization

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"
)

const (
	// StringMarker precedes a present string. A zero byte marks an empty one.
	StringMarker = 0x0b

	// epochMillis is the distance between 0001-01-01 and the Unix epoch.
	epochMillis   = 62135596800000
	ticksPerMilli = 10000
)

var ErrULEB128Overflow = errors.New("uleb128 value overflows 64 bits")

// Reader consumes a byte buffer. The first failed read is kept in Err and
// turns every later read into a zero-value no-op.
type Reader struct {
	data []byte
	pos  int
	err  error
}

func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Err returns the first read error, if any.
func (r *Reader) Err() error { return r.err }

// BytesRead is the current read offset.
func (r *Reader) BytesRead() int { return r.pos }

// Remaining is the number of unread bytes.
func (r *Reader) Remaining() int { return len(r.data) - r.pos }

func (r *Reader) take(n int, what string) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || r.Remaining() < n {
		r.err = fmt.Errorf("reading %s at offset %d: %w", what, r.pos, io.ErrUnexpectedEOF)
		return nil
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b
}

func (r *Reader) ReadUint8() byte {
	b := r.take(1, "byte")
	if b == nil {
		return 0
	}
	return b[0]
}

// ReadBytes returns a copy of the next n bytes.
func (r *Reader) ReadBytes(n int) []byte {
	b := r.take(n, "bytes")
	if b == nil {
		return nil
	}
	out := make([]byte, n)
	copy(out, b)
	return out
}

func (r *Reader) ReadUint16() uint16 {
	b := r.take(2, "uint16")
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

func (r *Reader) ReadInt32() int32 {
	b := r.take(4, "int32")
	if b == nil {
		return 0
	}
	return int32(binary.LittleEndian.Uint32(b))
}

func (r *Reader) ReadInt64() int64 {
	b := r.take(8, "int64")
	if b == nil {
		return 0
	}
	return int64(binary.LittleEndian.Uint64(b))
}

// ReadDate reads a tick count of 100 ns since 0001-01-01 and returns it in
// UTC with millisecond precision.
func (r *Reader) ReadDate() time.Time {
	ticks := r.ReadInt64()
	if r.err != nil {
		return time.Time{}
	}
	return time.UnixMilli(ticks/ticksPerMilli - epochMillis).UTC()
}

func (r *Reader) ReadULEB128() uint64 {
	var value uint64
	var shift uint
	for {
		b := r.ReadUint8()
		if r.err != nil {
			return 0
		}
		if shift > 63 {
			r.err = fmt.Errorf("reading uleb128 at offset %d: %w", r.pos, ErrULEB128Overflow)
			return 0
		}
		value |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return value
		}
		shift += 7
	}
}

// ReadString reads a marker-prefixed UTF-8 string. Any marker other than
// StringMarker yields "".
func (r *Reader) ReadString() string {
	if r.ReadUint8() != StringMarker {
		return ""
	}
	length := r.ReadULEB128()
	if r.err != nil || length == 0 {
		return ""
	}
	if length > uint64(r.Remaining()) {
		r.err = fmt.Errorf("reading string of %d bytes at offset %d: %w", length, r.pos, io.ErrUnexpectedEOF)
		return ""
	}
	return string(r.take(int(length), "string"))
}
