package tagged

import (
	"testing"

	icerrors "github.com/wippyai/icewire/errors"
	"github.com/wippyai/icewire/wire"
)

func TestReadOptional_AbsentAtEndMarker(t *testing.T) {
	buf := wire.NewBuffer([]byte{0xFF})
	r := &Reader{}

	found, err := r.ReadOptional(buf, 5, F4)
	if err != nil {
		t.Fatal(err)
	}
	if found {
		t.Error("expected not found")
	}
	if buf.Position() != 0 {
		t.Errorf("position = %d, want 0 (rewound to the marker)", buf.Position())
	}
}

func TestReadOptional_F4Present(t *testing.T) {
	// tag=5 (5<<3=40), format=F4(2) -> byte = 0x2A; payload DE AD BE EF; then end marker.
	header := byte(5<<3) | byte(F4)
	buf := wire.NewBuffer([]byte{header, 0xDE, 0xAD, 0xBE, 0xEF, 0xFF})
	r := &Reader{}

	found, err := r.ReadOptional(buf, 5, F4)
	if err != nil {
		t.Fatal(err)
	}
	if !found {
		t.Fatal("expected tag 5 to be found")
	}
	v, err := buf.ReadInt32()
	if err != nil {
		t.Fatal(err)
	}
	if uint32(v) != 0xEFBEADDE {
		t.Errorf("got %#x, want %#x", uint32(v), 0xEFBEADDE)
	}

	found, err = r.ReadOptional(buf, 9, F4)
	if err != nil {
		t.Fatal(err)
	}
	if found {
		t.Error("expected no more tagged members")
	}
}

func TestReadOptional_SkipsLowerTags(t *testing.T) {
	// tag=1 F1 (value 0x01), tag=5 F4.
	lowHeader := byte(1<<3) | byte(F1)
	highHeader := byte(5<<3) | byte(F4)
	buf := wire.NewBuffer([]byte{
		lowHeader, 0x00,
		highHeader, 1, 2, 3, 4,
		0xFF,
	})
	r := &Reader{}

	found, err := r.ReadOptional(buf, 5, F4)
	if err != nil {
		t.Fatal(err)
	}
	if !found {
		t.Fatal("expected to find tag 5 after skipping tag 1")
	}
}

func TestReadOptional_HigherTagRewinds(t *testing.T) {
	highHeader := byte(7<<3) | byte(F1)
	buf := wire.NewBuffer([]byte{highHeader, 0x00, 0xFF})
	r := &Reader{}

	found, err := r.ReadOptional(buf, 5, F1)
	if err != nil {
		t.Fatal(err)
	}
	if found {
		t.Error("expected tag 7 not to satisfy request for tag 5")
	}
	if buf.Position() != 0 {
		t.Errorf("position = %d, want 0 (rewound before the tag 7 header)", buf.Position())
	}

	// The same tag should now be found when asked for directly.
	found, err = r.ReadOptional(buf, 7, F1)
	if err != nil {
		t.Fatal(err)
	}
	if !found {
		t.Error("expected tag 7 to be found on the second pass")
	}
}

func TestReadOptional_FormatMismatchIsMarshalError(t *testing.T) {
	header := byte(5<<3) | byte(F1)
	buf := wire.NewBuffer([]byte{header, 0x00})
	r := &Reader{}

	if _, err := r.ReadOptional(buf, 5, F4); err == nil {
		t.Error("expected format mismatch error")
	}
}

func TestReadOptional_BigTagEncoding(t *testing.T) {
	// tag field = 30 (bigTag) with format F2, followed by a size byte = 40.
	header := byte(bigTag<<3) | byte(F2)
	buf := wire.NewBuffer([]byte{header, 40, 0xAA, 0xBB, 0xFF})
	r := &Reader{}

	found, err := r.ReadOptional(buf, 40, F2)
	if err != nil {
		t.Fatal(err)
	}
	if !found {
		t.Fatal("expected big tag 40 to be found")
	}
}

func TestReadOptional_ClassFormatWithoutSkipperFails(t *testing.T) {
	lowHeader := byte(1<<3) | byte(Class)
	buf := wire.NewBuffer([]byte{lowHeader, 0x00, 0xFF})
	r := &Reader{}

	if _, err := r.ReadOptional(buf, 5, F1); err == nil {
		t.Error("expected error skipping Class-format tag without a ClassSkipper")
	}
}

func TestReadOptional_ClassFormatWithSkipperDelegates(t *testing.T) {
	lowHeader := byte(1<<3) | byte(Class)
	highHeader := byte(5<<3) | byte(F1)
	buf := wire.NewBuffer([]byte{lowHeader, 0x00, highHeader, 0x00, 0xFF})
	called := false
	r := &Reader{ClassSkipper: func(b *wire.Buffer) error {
		called = true
		return b.Skip(1)
	}}

	found, err := r.ReadOptional(buf, 5, F1)
	if err != nil {
		t.Fatal(err)
	}
	if !found {
		t.Fatal("expected to reach tag 5 after skipper consumed tag 1's payload")
	}
	if !called {
		t.Error("expected ClassSkipper to be invoked")
	}
}

func TestSkipOptional_RejectsUnknownFormat(t *testing.T) {
	buf := wire.NewBuffer([]byte{})
	r := &Reader{}

	err := r.skipOptional(buf, Format(99))
	if err == nil {
		t.Fatal("expected an error for an unrecognized tagged-member format")
	}
	iceErr, ok := err.(*icerrors.Error)
	if !ok {
		t.Fatalf("got %T, want *errors.Error", err)
	}
	if iceErr.Kind != icerrors.KindInvalidDiscriminant {
		t.Errorf("Kind = %v, want KindInvalidDiscriminant", iceErr.Kind)
	}
}

func TestSkipToEnd(t *testing.T) {
	lowHeader := byte(1<<3) | byte(F1)
	buf := wire.NewBuffer([]byte{lowHeader, 0x00, 0xFF, 0xAA})
	r := &Reader{}
	if err := r.SkipToEnd(buf); err != nil {
		t.Fatal(err)
	}
	if buf.Position() != 3 {
		t.Errorf("position = %d, want 3 (just past the end marker)", buf.Position())
	}
}
