// Package wire implements the lowest layer of the decoder: a bounded,
// little-endian byte cursor (Buffer), compact size decoding, the aggregate
// sequence-size guard, and UTF-8 string decoding with a reusable scratch
// buffer.
package wire

import (
	"math"
	"unicode/utf8"

	icerrors "github.com/wippyai/icewire/errors"
	"github.com/wippyai/icewire/telemetry"
)

// Buffer is a bounded byte region with a mutable read cursor. It owns the
// aggregate sequence-size budget (minTotalSeqSize) and the UTF-8 scratch
// buffer for the lifetime of one decode.
type Buffer struct {
	buf   []byte
	pos   int
	limit int

	seqSizeBudget int // ceiling for the cumulative counter below; 0 = buf length
	seqSizeUsed   int

	scratch []byte // grows monotonically to the largest string seen
}

// NewBuffer wraps data for reading. The initial limit is len(data).
func NewBuffer(data []byte) *Buffer {
	return &Buffer{buf: data, limit: len(data)}
}

// SetSeqSizeBudget overrides the aggregate sequence-size ceiling (defaults
// to the buffer length, i.e. one unit of budget per input byte).
func (b *Buffer) SetSeqSizeBudget(n int) {
	b.seqSizeBudget = n
}

func (b *Buffer) budget() int {
	if b.seqSizeBudget > 0 {
		return b.seqSizeBudget
	}
	return len(b.buf)
}

// Len returns the total number of bytes in the underlying buffer.
func (b *Buffer) Len() int { return len(b.buf) }

// Limit returns the current read limit.
func (b *Buffer) Limit() int { return b.limit }

// SetLimit narrows or widens the read limit (used when entering/leaving a
// nested encapsulation). It does not move the cursor.
func (b *Buffer) SetLimit(limit int) {
	b.limit = limit
}

// Position returns the current cursor position.
func (b *Buffer) Position() int { return b.pos }

// SetPosition moves the cursor. Used to jump to/from indirection tables and
// to rewind after an unmatched tagged-member header.
func (b *Buffer) SetPosition(pos int) error {
	if pos < 0 || pos > b.limit {
		return icerrors.OutOfBounds(icerrors.PhaseReadPrimitive, nil, "position out of range")
	}
	b.pos = pos
	return nil
}

// Remaining returns the number of unread bytes before the limit.
func (b *Buffer) Remaining() int { return b.limit - b.pos }

func (b *Buffer) require(n int) error {
	if n < 0 || b.pos+n > b.limit {
		return icerrors.OutOfBounds(icerrors.PhaseReadPrimitive, nil, "read past buffer limit")
	}
	return nil
}

// ReadByte reads one byte and advances the cursor.
func (b *Buffer) ReadByte() (byte, error) {
	if err := b.require(1); err != nil {
		return 0, err
	}
	v := b.buf[b.pos]
	b.pos++
	return v, nil
}

// ReadBool reads one byte as a boolean; any nonzero byte is true.
func (b *Buffer) ReadBool() (bool, error) {
	v, err := b.ReadByte()
	if err != nil {
		return false, err
	}
	return v != 0, nil
}

// ReadInt16 reads a little-endian 16-bit signed integer.
func (b *Buffer) ReadInt16() (int16, error) {
	if err := b.require(2); err != nil {
		return 0, err
	}
	v := int16(uint16(b.buf[b.pos]) | uint16(b.buf[b.pos+1])<<8)
	b.pos += 2
	return v, nil
}

// ReadInt32 reads a little-endian 32-bit signed integer.
func (b *Buffer) ReadInt32() (int32, error) {
	if err := b.require(4); err != nil {
		return 0, err
	}
	v := int32(uint32(b.buf[b.pos]) | uint32(b.buf[b.pos+1])<<8 |
		uint32(b.buf[b.pos+2])<<16 | uint32(b.buf[b.pos+3])<<24)
	b.pos += 4
	return v, nil
}

// ReadInt64 reads a little-endian 64-bit signed integer.
func (b *Buffer) ReadInt64() (int64, error) {
	if err := b.require(8); err != nil {
		return 0, err
	}
	var v uint64
	for i := 0; i < 8; i++ {
		v |= uint64(b.buf[b.pos+i]) << (8 * uint(i))
	}
	b.pos += 8
	return int64(v), nil
}

// ReadFloat32 reads a little-endian IEEE-754 single-precision float.
func (b *Buffer) ReadFloat32() (float32, error) {
	v, err := b.ReadInt32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(uint32(v)), nil
}

// ReadFloat64 reads a little-endian IEEE-754 double-precision float.
func (b *Buffer) ReadFloat64() (float64, error) {
	v, err := b.ReadInt64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(uint64(v)), nil
}

// ReadBlob returns a view (not a copy) of the next n bytes and advances the
// cursor past them.
func (b *Buffer) ReadBlob(n int) ([]byte, error) {
	if err := b.require(n); err != nil {
		return nil, err
	}
	v := b.buf[b.pos : b.pos+n]
	b.pos += n
	return v, nil
}

// BytesRange returns a fresh copy of buf[start:end] from the underlying
// storage, independent of the current cursor or limit. Used to preserve the
// raw bytes of an unknown slice for later re-encoding.
func (b *Buffer) BytesRange(start, end int) ([]byte, error) {
	if start < 0 || end > len(b.buf) || start > end {
		return nil, icerrors.OutOfBounds(icerrors.PhaseReadPrimitive, nil, "byte range out of bounds")
	}
	out := make([]byte, end-start)
	copy(out, b.buf[start:end])
	return out, nil
}

// Skip advances the cursor by n bytes without returning them.
func (b *Buffer) Skip(n int) error {
	if err := b.require(n); err != nil {
		return err
	}
	b.pos += n
	return nil
}

// ReadSize reads a compact size integer: one byte, or (if that byte is 255)
// a following little-endian int32 which must be non-negative.
func (b *Buffer) ReadSize() (int, error) {
	v, err := b.ReadByte()
	if err != nil {
		return 0, err
	}
	if v != 255 {
		return int(v), nil
	}
	n, err := b.ReadInt32()
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, icerrors.OutOfBounds(icerrors.PhaseReadSize, nil, "negative size")
	}
	return int(n), nil
}

// SkipSize reads and discards a compact size integer (used when skipping a
// Size-format tagged member).
func (b *Buffer) SkipSize() error {
	_, err := b.ReadSize()
	return err
}

// ReadAndCheckSeqSize reads a size and enforces both the local containment
// bound (size*minElementSize must fit before the limit) and the cumulative
// aggregate budget across the whole stream. It fails closed, before any
// allocation happens on the caller's side.
func (b *Buffer) ReadAndCheckSeqSize(minElementSize int) (int, error) {
	size, err := b.ReadSize()
	if err != nil {
		return 0, err
	}
	if size == 0 {
		return 0, nil
	}

	need := size * minElementSize
	if need < 0 {
		return 0, icerrors.Overflow(icerrors.PhaseReadSize, nil, "sequence size computation overflowed")
	}
	if b.pos+need > b.limit {
		return 0, icerrors.OutOfBounds(icerrors.PhaseReadSize, nil, "sequence size exceeds remaining buffer")
	}

	b.seqSizeUsed += need
	if b.seqSizeUsed < 0 || b.seqSizeUsed > b.budget() {
		telemetry.SequenceSizeRejected(b.seqSizeUsed, b.budget())
		return 0, icerrors.OutOfBounds(icerrors.PhaseReadSize, nil, "aggregate sequence size budget exceeded")
	}

	return size, nil
}

// SeqSizeUsed returns the cumulative aggregate sequence-size budget consumed
// so far; exposed for the §8 aggregate-allocation-bound property test.
func (b *Buffer) SeqSizeUsed() int { return b.seqSizeUsed }

// ReadString reads a size-prefixed UTF-8 string. The returned string is
// backed by a fresh copy from the reusable scratch buffer, which grows
// monotonically to the largest string seen so its backing array can be
// reused across calls without per-string heap churn for the intermediate
// validation copy.
func (b *Buffer) ReadString() (string, error) {
	n, err := b.ReadAndCheckSeqSize(1)
	if err != nil {
		return "", err
	}
	if n == 0 {
		return "", nil
	}
	data, err := b.ReadBlob(n)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", icerrors.InvalidUTF8(icerrors.PhaseReadPrimitive, nil, data)
	}
	if cap(b.scratch) < n {
		b.scratch = make([]byte, n)
	}
	copy(b.scratch[:n], data)
	return string(b.scratch[:n]), nil
}
