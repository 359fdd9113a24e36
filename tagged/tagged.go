// Package tagged implements the tagged (optional) member reader: a
// seek-and-match scanner over tag/format header bytes, with skip support
// for the formats that don't match what the caller expects.
package tagged

import (
	icerrors "github.com/wippyai/icewire/errors"
	"github.com/wippyai/icewire/wire"
)

// Format is the lower-3-bit width class of a tagged member header byte.
type Format byte

const (
	F1    Format = 0
	F2    Format = 1
	F4    Format = 2
	F8    Format = 3
	Size  Format = 4
	VSize Format = 5
	FSize Format = 6
	Class Format = 7
)

// EndMarker terminates a tagged-member section.
const EndMarker = 0xFF

// bigTag is the upper-5-bit sentinel meaning "the real tag follows as a
// size integer".
const bigTag = 30

// Reader scans a sequence of tagged-member headers within the buffer's
// current limit (an encapsulation or enclosing slice). ClassSkipper is
// consulted when an out-of-order Class-format member must be skipped; it is
// supplied by the decoder package to avoid a tagged→decoder import cycle.
type Reader struct {
	ClassSkipper func(buf *wire.Buffer) error
}

// ReadOptional scans forward for a member tagged expectedTag. It returns
// false (without consuming bytes beyond its own header) if the section ends
// or a later tag is found first; it skips over earlier tags that the caller
// doesn't want. A tag match with the wrong format is a Marshal error.
func (r *Reader) ReadOptional(buf *wire.Buffer, expectedTag uint32, expectedFormat Format) (bool, error) {
	for {
		if buf.Position() >= buf.Limit() {
			return false, nil
		}

		headerStart := buf.Position()
		b, err := buf.ReadByte()
		if err != nil {
			return false, err
		}
		if b == EndMarker {
			if err := buf.SetPosition(headerStart); err != nil {
				return false, err
			}
			return false, nil
		}

		format := Format(b & 0x07)
		tag := uint32(b >> 3)
		if tag == bigTag {
			n, err := buf.ReadSize()
			if err != nil {
				return false, err
			}
			tag = uint32(n)
		}

		if tag > expectedTag {
			if err := buf.SetPosition(headerStart); err != nil {
				return false, err
			}
			return false, nil
		}
		if tag < expectedTag {
			if err := r.skipOptional(buf, format); err != nil {
				return false, err
			}
			continue
		}

		// tag == expectedTag
		if format != expectedFormat {
			return false, icerrors.Marshal(icerrors.PhaseReadTagged, nil,
				"tagged member format mismatch")
		}
		return true, nil
	}
}

func (r *Reader) skipOptional(buf *wire.Buffer, format Format) error {
	switch format {
	case F1:
		return buf.Skip(1)
	case F2:
		return buf.Skip(2)
	case F4:
		return buf.Skip(4)
	case F8:
		return buf.Skip(8)
	case Size:
		return buf.SkipSize()
	case VSize:
		n, err := buf.ReadSize()
		if err != nil {
			return err
		}
		return buf.Skip(n)
	case FSize:
		n, err := buf.ReadInt32()
		if err != nil {
			return err
		}
		return buf.Skip(int(n))
	case Class:
		if r.ClassSkipper == nil {
			return icerrors.Marshal(icerrors.PhaseReadTagged, nil,
				"cannot skip Class-format tagged member: no class skipper configured")
		}
		return r.ClassSkipper(buf)
	default:
		return icerrors.InvalidDiscriminant(icerrors.PhaseReadTagged, nil, "unknown tagged member format")
	}
}

// SkipToEnd consumes tagged members until the end marker or the limit is
// reached. Used by endSlice/endEncapsulation to discard any trailing tagged
// section the caller didn't read.
func (r *Reader) SkipToEnd(buf *wire.Buffer) error {
	for {
		if buf.Position() >= buf.Limit() {
			return nil
		}
		b, err := buf.ReadByte()
		if err != nil {
			return err
		}
		if b == EndMarker {
			return nil
		}
		format := Format(b & 0x07)
		tag := uint32(b >> 3)
		if tag == bigTag {
			if _, err := buf.ReadSize(); err != nil {
				return err
			}
		}
		if err := r.skipOptional(buf, format); err != nil {
			return err
		}
	}
}
