package serialization

import (
	"bytes"
	"encoding/binary"
	"time"
)

// Writer accumulates the binary layout in memory.
type Writer struct {
	buf bytes.Buffer
}

func NewWriter() *Writer {
	return &Writer{}
}

// BytesWritten is the length of the output so far.
func (w *Writer) BytesWritten() int { return w.buf.Len() }

// Bytes returns the output. It aliases the writer's buffer until the next write.
func (w *Writer) Bytes() []byte { return w.buf.Bytes() }

func (w *Writer) WriteUint8(v byte) {
	w.buf.WriteByte(v)
}

func (w *Writer) WriteBytes(v []byte) {
	w.buf.Write(v)
}

func (w *Writer) WriteUint16(v uint16) {
	w.buf.Write(binary.LittleEndian.AppendUint16(nil, v))
}

func (w *Writer) WriteInt32(v int32) {
	w.buf.Write(binary.LittleEndian.AppendUint32(nil, uint32(v)))
}

func (w *Writer) WriteInt64(v int64) {
	w.buf.Write(binary.LittleEndian.AppendUint64(nil, uint64(v)))
}

// WriteDate writes t as 100 ns ticks since 0001-01-01, truncated to the
// millisecond.
func (w *Writer) WriteDate(t time.Time) {
	w.WriteInt64((t.UnixMilli() + epochMillis) * ticksPerMilli)
}

func (w *Writer) WriteULEB128(v uint64) {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		w.buf.WriteByte(b)
		if v == 0 {
			return
		}
	}
}

// WriteString writes s as UTF-8 behind StringMarker and its byte length, or a
// single zero byte when s is empty.
func (w *Writer) WriteString(s string) {
	if s == "" {
		w.buf.WriteByte(0)
		return
	}
	w.buf.WriteByte(StringMarker)
	w.WriteULEB128(uint64(len(s)))
	w.buf.WriteString(s)
}
