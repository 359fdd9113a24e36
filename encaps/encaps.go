// Package encaps implements the encapsulation stack: header parsing for
// nested, length-prefixed, version-tagged byte containers, with a
// single-slot free-list for frame reuse.
//
// The free-list technique mirrors the teacher's resource-handle backend
// (a pooled freeList of released slots reused on the next Create), applied
// here to encapsulation frames instead of resource handles.
package encaps

import (
	icerrors "github.com/wippyai/icewire/errors"
	"github.com/wippyai/icewire/wire"
)

// minHeaderSize is the 4-byte size word plus 2-byte version.
const minHeaderSize = 6

// Frame describes one pushed encapsulation.
type Frame struct {
	Start    int     // absolute buffer position of the size word
	Sz       int     // total size in bytes, including the 6-byte header
	Encoding Version

	previous *Frame
}

func (f *Frame) reset() {
	f.Start = 0
	f.Sz = 0
	f.Encoding = Version{}
	f.previous = nil
}

// End returns the absolute buffer position one past the end of this
// encapsulation.
func (f *Frame) End() int {
	return f.Start + f.Sz
}

// Stack tracks nested encapsulation frames. Frames popped via Pop are
// retained on a single-slot free-list and handed back out by the next Push,
// avoiding an allocation for the common case of sequential (non-nested)
// encapsulations.
type Stack struct {
	top  *Frame
	free *Frame // at most one retained frame
}

// NewStack returns an empty encapsulation stack.
func NewStack() *Stack {
	return &Stack{}
}

// Current returns the innermost active frame, or nil if the stack is empty.
func (s *Stack) Current() *Frame {
	return s.top
}

func (s *Stack) alloc() *Frame {
	if s.free != nil {
		f := s.free
		s.free = nil
		f.reset()
		return f
	}
	return &Frame{}
}

func (s *Stack) push(f *Frame) {
	f.previous = s.top
	s.top = f
}

func (s *Stack) pop() *Frame {
	f := s.top
	if f == nil {
		return nil
	}
	s.top = f.previous
	if s.free == nil {
		s.free = f
	}
	return f
}

// StartEncapsulation reads an encapsulation header (4-byte size, 2-byte
// version) at the buffer's current position, validates it, and pushes a new
// frame. The buffer's limit is narrowed to the new frame's end.
func (s *Stack) StartEncapsulation(buf *wire.Buffer) (*Frame, error) {
	start := buf.Position()

	sz, err := buf.ReadInt32()
	if err != nil {
		return nil, err
	}
	if sz < minHeaderSize {
		return nil, icerrors.Encapsulation(nil, "encapsulation size less than minimum header size")
	}
	if start+int(sz) > buf.Limit() {
		return nil, icerrors.Encapsulation(nil, "encapsulation size extends past the end of the buffer")
	}

	major, err := buf.ReadByte()
	if err != nil {
		return nil, err
	}
	minor, err := buf.ReadByte()
	if err != nil {
		return nil, err
	}
	enc := Version{Major: major, Minor: minor}
	if !enc.Supported() {
		return nil, icerrors.Encapsulation(nil, "unsupported encoding version "+enc.String())
	}

	f := s.alloc()
	f.Start = start
	f.Sz = int(sz)
	f.Encoding = enc
	s.push(f)

	buf.SetLimit(f.End())
	return f, nil
}

// EndEncapsulation validates that decoding consumed exactly the
// encapsulation's bytes (modulo the 1.0 legacy trailing-byte allowance) and
// pops the frame, restoring the buffer's limit to the parent frame's end, or
// to the whole buffer's length when no parent frame remains.
func (s *Stack) EndEncapsulation(buf *wire.Buffer) error {
	f := s.top
	if f == nil {
		return icerrors.Encapsulation(nil, "endEncapsulation called with no active encapsulation")
	}

	end := f.End()
	switch {
	case buf.Position() == end:
		// exact
	case f.Encoding == Encoding10 && buf.Position()+1 == end:
		// legacy sender bug: one tolerated trailing byte
		if err := buf.SetPosition(end); err != nil {
			return err
		}
	default:
		return icerrors.Encapsulation(nil, "buffer size does not match encapsulation size")
	}

	s.pop()
	if parent := s.top; parent != nil {
		buf.SetLimit(parent.End())
	} else {
		buf.SetLimit(buf.Len())
	}
	return nil
}

// SkipEmptyEncapsulation reads and discards a header known to carry no
// payload. For encoding 1.0 it additionally requires sz == 6.
func (s *Stack) SkipEmptyEncapsulation(buf *wire.Buffer) (Version, error) {
	start := buf.Position()
	sz, err := buf.ReadInt32()
	if err != nil {
		return Version{}, err
	}
	if sz < minHeaderSize {
		return Version{}, icerrors.Encapsulation(nil, "encapsulation size less than minimum header size")
	}
	major, err := buf.ReadByte()
	if err != nil {
		return Version{}, err
	}
	minor, err := buf.ReadByte()
	if err != nil {
		return Version{}, err
	}
	enc := Version{Major: major, Minor: minor}
	if !enc.Supported() {
		return Version{}, icerrors.Encapsulation(nil, "unsupported encoding version "+enc.String())
	}
	if enc == Encoding10 && sz != minHeaderSize {
		return Version{}, icerrors.Encapsulation(nil, "1.0 empty encapsulation size must be 6")
	}
	if err := buf.SetPosition(start + int(sz)); err != nil {
		return Version{}, err
	}
	return enc, nil
}

// SkipEncapsulation reads a header and skips its payload wholesale, without
// pushing a frame. Returns the encoding version found.
func (s *Stack) SkipEncapsulation(buf *wire.Buffer) (Version, error) {
	start := buf.Position()
	sz, err := buf.ReadInt32()
	if err != nil {
		return Version{}, err
	}
	if sz < minHeaderSize {
		return Version{}, icerrors.Encapsulation(nil, "encapsulation size less than minimum header size")
	}
	major, err := buf.ReadByte()
	if err != nil {
		return Version{}, err
	}
	minor, err := buf.ReadByte()
	if err != nil {
		return Version{}, err
	}
	enc := Version{Major: major, Minor: minor}
	if !enc.Supported() {
		return Version{}, icerrors.Encapsulation(nil, "unsupported encoding version "+enc.String())
	}
	if err := buf.SetPosition(start + int(sz)); err != nil {
		return Version{}, err
	}
	return enc, nil
}

// ReadEncapsulation reads a header and returns its raw payload bytes
// (excluding the header) plus the encoding version, without pushing a frame.
func (s *Stack) ReadEncapsulation(buf *wire.Buffer) ([]byte, Version, error) {
	start := buf.Position()
	sz, err := buf.ReadInt32()
	if err != nil {
		return nil, Version{}, err
	}
	if sz < minHeaderSize {
		return nil, Version{}, icerrors.Encapsulation(nil, "encapsulation size less than minimum header size")
	}
	major, err := buf.ReadByte()
	if err != nil {
		return nil, Version{}, err
	}
	minor, err := buf.ReadByte()
	if err != nil {
		return nil, Version{}, err
	}
	enc := Version{Major: major, Minor: minor}
	if !enc.Supported() {
		return nil, Version{}, icerrors.Encapsulation(nil, "unsupported encoding version "+enc.String())
	}
	payload, err := buf.ReadBlob(start + int(sz) - buf.Position())
	if err != nil {
		return nil, Version{}, err
	}
	return payload, enc, nil
}
