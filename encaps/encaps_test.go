package encaps

import (
	"testing"

	"github.com/wippyai/icewire/wire"
)

func TestStack_EmptyEncaps11(t *testing.T) {
	buf := wire.NewBuffer([]byte{0x06, 0, 0, 0, 0x01, 0x01})
	s := NewStack()

	f, err := s.StartEncapsulation(buf)
	if err != nil {
		t.Fatal(err)
	}
	if f.Encoding != Encoding11 {
		t.Errorf("encoding = %v, want 1.1", f.Encoding)
	}
	if err := s.EndEncapsulation(buf); err != nil {
		t.Fatal(err)
	}
	if buf.Position() != 6 {
		t.Errorf("position = %d, want 6", buf.Position())
	}
}

func TestStack_EndEncapsulation_RequiresExactPosition(t *testing.T) {
	buf := wire.NewBuffer([]byte{0x07, 0, 0, 0, 0x01, 0x01, 0x00})
	s := NewStack()
	if _, err := s.StartEncapsulation(buf); err != nil {
		t.Fatal(err)
	}
	// Don't consume the trailing payload byte.
	if err := s.EndEncapsulation(buf); err == nil {
		t.Error("expected Encapsulation error for short position under 1.1")
	}
}

func TestStack_EndEncapsulation_Encoding10TrailingByteTolerated(t *testing.T) {
	buf := wire.NewBuffer([]byte{0x07, 0, 0, 0, 0x01, 0x00, 0x00})
	s := NewStack()
	if _, err := s.StartEncapsulation(buf); err != nil {
		t.Fatal(err)
	}
	if err := s.EndEncapsulation(buf); err != nil {
		t.Fatalf("expected 1.0 trailing byte tolerated: %v", err)
	}
}

func TestStack_RejectsUnsupportedEncoding(t *testing.T) {
	buf := wire.NewBuffer([]byte{0x06, 0, 0, 0, 0x02, 0x00})
	s := NewStack()
	if _, err := s.StartEncapsulation(buf); err == nil {
		t.Error("expected rejection of encoding 2.0")
	}
}

func TestStack_RejectsTooSmallSize(t *testing.T) {
	buf := wire.NewBuffer([]byte{0x04, 0, 0, 0, 0x01, 0x01})
	s := NewStack()
	if _, err := s.StartEncapsulation(buf); err == nil {
		t.Error("expected rejection of sz < 6")
	}
}

func TestStack_FrameFreeListReused(t *testing.T) {
	buf := wire.NewBuffer([]byte{
		0x06, 0, 0, 0, 0x01, 0x01,
		0x06, 0, 0, 0, 0x01, 0x01,
	})
	s := NewStack()

	f1, err := s.StartEncapsulation(buf)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.EndEncapsulation(buf); err != nil {
		t.Fatal(err)
	}

	f2, err := s.StartEncapsulation(buf)
	if err != nil {
		t.Fatal(err)
	}
	if f1 != f2 {
		t.Error("expected the freed frame to be reused by the next Push")
	}
	if err := s.EndEncapsulation(buf); err != nil {
		t.Fatal(err)
	}
}

func TestStack_NestedEncapsulation(t *testing.T) {
	// outer sz=14 {1,1}, inner encaps sz=6 {1,1} inside it, then 2 trailing bytes.
	buf := wire.NewBuffer([]byte{
		14, 0, 0, 0, 1, 1, // outer header (6) + inner (6) + 2 payload bytes = 14
		6, 0, 0, 0, 1, 1, // inner
		0xAA, 0xBB, // outer payload after inner
	})
	s := NewStack()

	outer, err := s.StartEncapsulation(buf)
	if err != nil {
		t.Fatal(err)
	}
	inner, err := s.StartEncapsulation(buf)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.EndEncapsulation(buf); err != nil {
		t.Fatalf("inner end: %v", err)
	}
	if buf.Limit() != outer.End() {
		t.Errorf("limit after popping inner = %d, want outer end %d", buf.Limit(), outer.End())
	}
	if _, err := buf.ReadBlob(2); err != nil {
		t.Fatal(err)
	}
	if err := s.EndEncapsulation(buf); err != nil {
		t.Fatalf("outer end: %v", err)
	}
	_ = inner
}

func TestStack_SkipEmptyEncapsulation_Encoding10RequiresSizeSix(t *testing.T) {
	buf := wire.NewBuffer([]byte{0x07, 0, 0, 0, 0x01, 0x00, 0x00})
	s := NewStack()
	if _, err := s.SkipEmptyEncapsulation(buf); err == nil {
		t.Error("expected rejection of non-6 sized 1.0 empty encapsulation")
	}
}

func TestStack_SkipEncapsulation(t *testing.T) {
	buf := wire.NewBuffer([]byte{0x08, 0, 0, 0, 0x01, 0x01, 0xAA, 0xBB})
	s := NewStack()
	enc, err := s.SkipEncapsulation(buf)
	if err != nil {
		t.Fatal(err)
	}
	if enc != Encoding11 {
		t.Errorf("encoding = %v, want 1.1", enc)
	}
	if buf.Position() != 8 {
		t.Errorf("position = %d, want 8", buf.Position())
	}
}

func TestStack_ReadEncapsulation(t *testing.T) {
	buf := wire.NewBuffer([]byte{0x08, 0, 0, 0, 0x01, 0x01, 0xAA, 0xBB})
	s := NewStack()
	payload, enc, err := s.ReadEncapsulation(buf)
	if err != nil {
		t.Fatal(err)
	}
	if enc != Encoding11 {
		t.Errorf("encoding = %v, want 1.1", enc)
	}
	if len(payload) != 2 || payload[0] != 0xAA || payload[1] != 0xBB {
		t.Errorf("payload = %v, want [0xAA 0xBB]", payload)
	}
}
