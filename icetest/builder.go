// Package icetest provides small byte-buffer builders for constructing
// encapsulations and slice headers by hand in tests, mirroring the
// teacher's mockMemory helper: a thin, hand-rolled stand-in for the real
// wire writer (which this module doesn't implement, being input-side only).
package icetest

import "encoding/binary"

// Builder accumulates raw wire bytes.
type Builder struct {
	buf []byte
}

// NewBuilder returns an empty byte builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Bytes returns the accumulated bytes.
func (b *Builder) Bytes() []byte { return b.buf }

// Byte appends one raw byte.
func (b *Builder) Byte(v byte) *Builder {
	b.buf = append(b.buf, v)
	return b
}

// Raw appends raw bytes verbatim.
func (b *Builder) Raw(v ...byte) *Builder {
	b.buf = append(b.buf, v...)
	return b
}

// Int32 appends a little-endian int32.
func (b *Builder) Int32(v int32) *Builder {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], uint32(v))
	b.buf = append(b.buf, tmp[:]...)
	return b
}

// Size appends a compact size: one byte if < 255, else 0xFF followed by an
// int32.
func (b *Builder) Size(n int) *Builder {
	if n < 255 {
		return b.Byte(byte(n))
	}
	b.Byte(255)
	return b.Int32(int32(n))
}

// String appends a size-prefixed UTF-8 string.
func (b *Builder) String(s string) *Builder {
	b.Size(len(s))
	b.buf = append(b.buf, s...)
	return b
}

// Encaps wraps the bytes produced by fill in an encapsulation header (size,
// major, minor), computing the size field itself.
func Encaps(major, minor byte, fill func(*Builder)) []byte {
	inner := NewBuilder()
	fill(inner)
	body := inner.Bytes()

	out := NewBuilder()
	out.Int32(int32(len(body) + 6))
	out.Byte(major)
	out.Byte(minor)
	out.Raw(body...)
	return out.Bytes()
}

// SliceHeader appends the start of a class/exception slice header: the flags
// byte and the type-id in string form. It does not append a slice size; a
// caller that sets HasSliceSize appends the int32 size (its own 4 bytes plus
// the body) and the body after this call.
func (b *Builder) SliceHeader(flags byte, typeID string) *Builder {
	b.Byte(flags)
	b.String(typeID)
	return b
}
