package typeid

import (
	"testing"

	"github.com/wippyai/icewire/wire"
)

func TestReadTypeID_StringThenIndex(t *testing.T) {
	// First reference: string "::Mod::Widget" (size-prefixed). Second
	// reference: index 1 (one size byte).
	table := NewTable()

	strBuf := wire.NewBuffer(append([]byte{13}, []byte("::Mod::Widget")...))
	first, err := table.ReadTypeID(strBuf, false)
	if err != nil {
		t.Fatal(err)
	}
	if first != "::Mod::Widget" {
		t.Fatalf("got %q", first)
	}

	idxBuf := wire.NewBuffer([]byte{1})
	startPos := idxBuf.Position()
	second, err := table.ReadTypeID(idxBuf, true)
	if err != nil {
		t.Fatal(err)
	}
	if second != first {
		t.Errorf("index read = %q, want %q", second, first)
	}
	if idxBuf.Position()-startPos != 1 {
		t.Errorf("index read consumed %d bytes, want exactly 1", idxBuf.Position()-startPos)
	}
}

func TestResolve_UnknownIndexFails(t *testing.T) {
	table := NewTable()
	if _, err := table.Resolve(1); err == nil {
		t.Error("expected error resolving unassigned index")
	}
}

func TestReset_ClearsTable(t *testing.T) {
	table := NewTable()
	table.Add("::Mod::Widget")
	table.Reset()
	if _, err := table.Resolve(1); err == nil {
		t.Error("expected error after Reset")
	}
}
