// Package typeid implements the per-encapsulation type-id interning table:
// a string is assigned the next index the first time it's read, and later
// references to the same type-id cost one size integer instead of the full
// string.
//
// Grounded on the teacher's component.TypeIndexSpace incremental
// index-assignment pattern (WASM Component Model type indices), re-expressed
// here over wire type-id strings instead of parsed type definitions.
package typeid

import (
	icerrors "github.com/wippyai/icewire/errors"
	"github.com/wippyai/icewire/wire"
)

// Table interns type-id strings for one encapsulation. Index 0 is never
// assigned; valid indices start at 1.
type Table struct {
	byIndex []string
}

// NewTable returns an empty type-id table.
func NewTable() *Table {
	return &Table{}
}

// Reset clears the table for reuse across encapsulations.
func (t *Table) Reset() {
	t.byIndex = t.byIndex[:0]
}

// Add interns a freshly-read type-id string and returns its new index.
func (t *Table) Add(typeID string) int {
	t.byIndex = append(t.byIndex, typeID)
	return len(t.byIndex)
}

// Resolve looks up a previously-interned type-id by its 1-based index.
func (t *Table) Resolve(index int) (string, error) {
	if index < 1 || index > len(t.byIndex) {
		return "", icerrors.Marshal(icerrors.PhaseTypeID, nil, "unknown type-id index")
	}
	return t.byIndex[index-1], nil
}

// ReadTypeID reads a type-id, either as a fresh string (interning it) or as
// an index into previously-interned strings, depending on asIndex.
func (t *Table) ReadTypeID(buf *wire.Buffer, asIndex bool) (string, error) {
	if asIndex {
		index, err := buf.ReadSize()
		if err != nil {
			return "", err
		}
		return t.Resolve(index)
	}
	s, err := buf.ReadString()
	if err != nil {
		return "", err
	}
	t.Add(s)
	return s, nil
}
