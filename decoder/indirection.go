package decoder

import (
	icerrors "github.com/wippyai/icewire/errors"
)

// readIndirectionTable reads a non-empty size-prefixed array of class
// references, each itself a readSize() dispatched through resolveClassIndex
// (so entries can be null, inline, or a back-reference to an
// already-registered instance).
func (s *InputStream) readIndirectionTable() ([]AnyClass, error) {
	size, err := s.buf.ReadAndCheckSeqSize(1)
	if err != nil {
		return nil, err
	}
	if size <= 0 {
		return nil, icerrors.Marshal(icerrors.PhaseReadSlice, nil, "indirection table size must be positive")
	}
	table := make([]AnyClass, size)
	for i := 0; i < size; i++ {
		idx, err := s.buf.ReadSize()
		if err != nil {
			return nil, err
		}
		v, err := s.resolveClassIndex(idx)
		if err != nil {
			return nil, err
		}
		table[i] = v
	}
	return table, nil
}

// skipIndirectionTable advances past a table without constructing values,
// used while skipping an unknown class slice so the owning instance can be
// registered before the table's inline instances (which may back-reference
// it) are properly decoded via the deferred mechanism in readClassInstance.
//
// Type-id reads performed here still intern into the shared per-encapsulation
// type-id table, since those bytes are part of the wire format regardless of
// whether this pass or the later deferred pass observes them; a stream whose
// only back-reference to a type-id index crosses a skipped, indirection-table-
// bearing unknown slice can observe a shifted index as a result (see
// DESIGN.md).
func (s *InputStream) skipIndirectionTable(depth int) error {
	size, err := s.buf.ReadAndCheckSeqSize(1)
	if err != nil {
		return err
	}
	for i := 0; i < size; i++ {
		idx, err := s.buf.ReadSize()
		if err != nil {
			return err
		}
		if idx == 1 {
			if err := s.skipInlineInstance(depth); err != nil {
				return err
			}
		}
	}
	return nil
}

// skipInlineInstance advances the cursor past one inline class instance's
// slices (and, recursively, any nested indirection tables) without
// constructing a value. Used only from the skip path.
func (s *InputStream) skipInlineInstance(depth int) error {
	depth++
	if depth > s.cfg.EffectiveClassGraphDepthMax() {
		return icerrors.Marshal(icerrors.PhaseReadClass, nil, "class graph too deep while skipping")
	}

	for {
		flags, err := s.buf.ReadByte()
		if err != nil {
			return err
		}
		if err := s.skipSliceHeaderTypeID(flags, sliceClass); err != nil {
			return err
		}

		if flags&flagHasSliceSize == 0 {
			return icerrors.NoClassFactory(nil, "")
		}
		sliceSize, err := s.buf.ReadInt32()
		if err != nil {
			return err
		}
		if sliceSize < 4 {
			return icerrors.Marshal(icerrors.PhaseReadSlice, nil, "slice size must be at least 4")
		}

		bodyStart := s.buf.Position()
		bodyEnd := bodyStart + int(sliceSize) - 4
		if err := s.buf.SetPosition(bodyEnd); err != nil {
			return err
		}

		if flags&flagHasIndirectionTable != 0 {
			if err := s.skipIndirectionTable(depth); err != nil {
				return err
			}
		}
		if flags&flagIsLastSlice != 0 {
			return nil
		}
	}
}

// skipSliceHeaderTypeID reads just the type-id portion of a slice header
// (flags already read) for the skip path, which never needs the resolved
// type since the slice is being skipped wholesale.
func (s *InputStream) skipSliceHeaderTypeID(flags byte, kind SliceType) error {
	st := s.current()
	if kind == sliceException {
		_, err := st.typeIDs.ReadTypeID(s.buf, false)
		return err
	}
	switch flags & flagTypeIDMask {
	case flagHasTypeIDCompact:
		_, err := s.buf.ReadSize()
		return err
	case flagHasTypeIDIndex:
		_, err := st.typeIDs.ReadTypeID(s.buf, true)
		return err
	case flagHasTypeIDString:
		_, err := st.typeIDs.ReadTypeID(s.buf, false)
		return err
	default:
		return nil
	}
}
