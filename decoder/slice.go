package decoder

import (
	"strings"

	icerrors "github.com/wippyai/icewire/errors"
	"github.com/wippyai/icewire/tagged"
)

// startSlice reads the next slice's header (flags, type-id, optional slice
// size) into inst, or — on the first call for an instance whose header was
// already consumed by readClassInstance/readUserException to discover its
// type — replays nothing and only resolves the indirection table if
// requested and not already done.
func (s *InputStream) startSlice(inst *instanceData, readIndirectionTable bool) error {
	if inst.skipFirstSlice {
		inst.skipFirstSlice = false
		return s.maybeReadIndirectionTable(inst, readIndirectionTable)
	}

	inst.headerStart = s.buf.Position()
	flags, err := s.buf.ReadByte()
	if err != nil {
		return err
	}
	inst.flags = flags

	st := s.current()
	if inst.sliceType == sliceClass {
		switch flags & flagTypeIDMask {
		case flagHasTypeIDCompact:
			cid, err := s.buf.ReadSize()
			if err != nil {
				return err
			}
			inst.compactID = int32(cid)
			inst.typeID = ""
		case flagHasTypeIDIndex:
			tid, err := st.typeIDs.ReadTypeID(s.buf, true)
			if err != nil {
				return err
			}
			inst.typeID = tid
			inst.compactID = -1
		case flagHasTypeIDString:
			tid, err := st.typeIDs.ReadTypeID(s.buf, false)
			if err != nil {
				return err
			}
			inst.typeID = tid
			inst.compactID = -1
		default:
			inst.typeID = ""
			inst.compactID = -1
		}
	} else {
		tid, err := st.typeIDs.ReadTypeID(s.buf, false)
		if err != nil {
			return err
		}
		inst.typeID = tid
		inst.compactID = -1
	}

	inst.sliceSize = 0
	if flags&flagHasSliceSize != 0 {
		sz, err := s.buf.ReadInt32()
		if err != nil {
			return err
		}
		if sz < 4 {
			return icerrors.Marshal(icerrors.PhaseReadSlice, nil, "slice size must be at least 4")
		}
		inst.sliceSize = sz
	}
	inst.bodyStart = s.buf.Position()
	inst.indirectionTableDone = false

	return s.maybeReadIndirectionTable(inst, readIndirectionTable)
}

// maybeReadIndirectionTable prefetches the current slice's indirection
// table (stored at sliceSize-relative end-of-body, after the declared
// payload) without disturbing the cursor, so readClass calls made while
// reading the slice's own fields can resolve indirection-relative indices.
func (s *InputStream) maybeReadIndirectionTable(inst *instanceData, want bool) error {
	if inst.indirectionTableDone || !want {
		return nil
	}
	inst.indirectionTableDone = true
	if inst.flags&flagHasIndirectionTable == 0 {
		return nil
	}

	savedPos := s.buf.Position()
	bodyEnd := inst.bodyStart + int(inst.sliceSize) - 4
	if err := s.buf.SetPosition(bodyEnd); err != nil {
		return err
	}
	table, err := s.readIndirectionTable()
	if err != nil {
		return err
	}
	inst.indirectionTable = table
	inst.posAfterIndirectionTable = s.buf.Position()
	return s.buf.SetPosition(savedPos)
}

// endSlice discards any trailing tagged section and restores the cursor to
// just past the indirection table, if one was read.
func (s *InputStream) endSlice(inst *instanceData) error {
	if inst.flags&flagHasOptionalMembers != 0 {
		if err := s.tagged.SkipToEnd(s.buf); err != nil {
			return err
		}
	}
	if inst.flags&flagHasIndirectionTable != 0 && inst.indirectionTable != nil {
		if err := s.buf.SetPosition(inst.posAfterIndirectionTable); err != nil {
			return err
		}
		inst.indirectionTable = nil
	}
	return nil
}

// skipSlice preserves the current slice's raw bytes (for a type this
// decoder has no factory for) and advances past it, including its
// indirection table if it has one. Class-slice tables are skipped cheaply
// and their positions recorded for later deferred resolution, once the
// owning instance is registered; exception-slice tables are resolved
// eagerly since exceptions have no back-reference map to protect.
func (s *InputStream) skipSlice(inst *instanceData) (*SliceInfo, error) {
	if inst.flags&flagHasSliceSize == 0 {
		if inst.sliceType == sliceClass {
			return nil, icerrors.NoClassFactory(nil, inst.typeID)
		}
		return nil, icerrors.UnknownUserException(strings.TrimPrefix(inst.typeID, "::"))
	}

	bodyEnd := inst.bodyStart + int(inst.sliceSize) - 4
	if err := s.buf.SetPosition(bodyEnd); err != nil {
		return nil, err
	}

	raw, err := s.buf.BytesRange(inst.headerStart, bodyEnd)
	if err != nil {
		return nil, err
	}

	info := &SliceInfo{
		TypeID:             inst.typeID,
		CompactID:          inst.compactID,
		HasOptionalMembers: inst.flags&flagHasOptionalMembers != 0,
		IsLastSlice:        inst.flags&flagIsLastSlice != 0,
	}
	if info.HasOptionalMembers && len(raw) > 0 && raw[len(raw)-1] == tagged.EndMarker {
		raw = raw[:len(raw)-1]
	}
	info.Bytes = raw

	if inst.flags&flagHasIndirectionTable == 0 {
		if inst.sliceType == sliceClass {
			inst.deferredIndirectionTableList = append(inst.deferredIndirectionTableList, 0)
		} else {
			inst.indirectionTableList = append(inst.indirectionTableList, nil)
		}
		return info, nil
	}

	if inst.sliceType == sliceClass {
		pos := s.buf.Position()
		if err := s.skipIndirectionTable(0); err != nil {
			return nil, err
		}
		inst.deferredIndirectionTableList = append(inst.deferredIndirectionTableList, pos)
	} else {
		// startSlice already prefetched this exception slice's table; reuse
		// it rather than decoding its inline instances a second time.
		table := inst.indirectionTable
		if table != nil {
			if err := s.buf.SetPosition(inst.posAfterIndirectionTable); err != nil {
				return nil, err
			}
			inst.indirectionTable = nil
		} else {
			t, err := s.readIndirectionTable()
			if err != nil {
				return nil, err
			}
			table = t
		}
		inst.indirectionTableList = append(inst.indirectionTableList, table)
	}
	return info, nil
}

// StartSlice is called by a type's Read method at the start of each
// inheritance level's own slice. The very first call for an instance is a
// no-op over the header (already consumed while resolving the type), but
// still resolves the indirection table if this slice declares one.
func (s *InputStream) StartSlice() error {
	st := s.current()
	if st.instanceTop == nil {
		return icerrors.Marshal(icerrors.PhaseReadSlice, nil, "StartSlice called outside an instance Read")
	}
	return s.startSlice(st.instanceTop, true)
}

// EndSlice is called by a type's Read method after reading its own slice's
// fields, discarding any trailing tagged members it didn't read.
func (s *InputStream) EndSlice() error {
	st := s.current()
	if st.instanceTop == nil {
		return icerrors.Marshal(icerrors.PhaseReadSlice, nil, "EndSlice called outside an instance Read")
	}
	return s.endSlice(st.instanceTop)
}

func (s *InputStream) endInstance(inst *instanceData) *SlicedData {
	if len(inst.slices) == 0 {
		return nil
	}
	sd := &SlicedData{Slices: inst.slices}
	for i, info := range sd.Slices {
		if i < len(inst.indirectionTableList) {
			info.Instances = inst.indirectionTableList[i]
		}
	}
	return sd
}
