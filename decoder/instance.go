package decoder

// SliceType distinguishes a class instance's slices from a user exception's
// slices: exceptions read their indirection tables eagerly and have no
// unmarshaled (back-reference) map, since they are never shared values.
type SliceType int

const (
	sliceClass SliceType = iota
	sliceException
)

// Slice header flag bits (encoding 1.1).
const (
	flagHasTypeIDString    = 0x01
	flagHasTypeIDIndex     = 0x02
	flagHasTypeIDCompact   = 0x03
	flagTypeIDMask         = 0x03
	flagHasOptionalMembers = 0x04
	flagHasIndirectionTable = 0x08
	flagHasSliceSize       = 0x10
	flagIsLastSlice        = 0x20
)

// SliceInfo preserves one slice of an instance whose type was not
// recognized by any registered factory, so the bytes can be re-encoded
// verbatim if the value is later passed back out.
type SliceInfo struct {
	TypeID             string
	CompactID          int32 // -1 when the slice carried a string/index type-id instead
	Bytes              []byte
	HasOptionalMembers bool
	IsLastSlice        bool
	Instances          []AnyClass // this slice's resolved indirection table, if any
}

// SlicedData is the ordered collection of preserved slices attached to an
// instance or exception whose most-derived type (or some intermediate type)
// was not recognized.
type SlicedData struct {
	Slices []*SliceInfo
}

// SlicedDataCarrier is implemented by values that want to retain the slices
// a decoder could not map to a known type, so a later re-encode doesn't
// silently drop data a sender encoded for a type this process doesn't know.
type SlicedDataCarrier interface {
	SetSlicedData(*SlicedData)
}

// instanceData is the mutable "current slice" state machine for one active
// class or exception instance. It is reused across the slices of a single
// instance (via startSlice/endSlice) and across instances in the same
// encapsulation (via a free-list chained through previous/next), the way
// the teacher's UnifiedTable reuses released resource-handle slots.
type instanceData struct {
	sliceType      SliceType
	skipFirstSlice bool

	flags     byte
	typeID    string
	compactID int32
	sliceSize int32

	headerStart int // position of the flags byte
	bodyStart   int // position right after sliceSize (or right after typeId/flags if no HAS_SLICE_SIZE)

	indirectionTableDone  bool
	indirectionTable      []AnyClass // this instance's CURRENT slice's resolved table, if any (only set while inside v.Read)
	posAfterIndirectionTable int

	slices                       []*SliceInfo
	indirectionTableList         [][]AnyClass // parallel to slices, for already-resolved (exception) tables
	deferredIndirectionTableList []int        // parallel to slices, class tables: 0 = none, else the buffer position to re-seek to

	previous, next *instanceData
}

func (inst *instanceData) resetForPush(sliceType SliceType) {
	inst.sliceType = sliceType
	inst.skipFirstSlice = false
	inst.flags = 0
	inst.typeID = ""
	inst.compactID = -1
	inst.sliceSize = 0
	inst.headerStart = 0
	inst.bodyStart = 0
	inst.indirectionTableDone = false
	inst.indirectionTable = nil
	inst.posAfterIndirectionTable = 0
	inst.slices = inst.slices[:0]
	inst.indirectionTableList = inst.indirectionTableList[:0]
	inst.deferredIndirectionTableList = inst.deferredIndirectionTableList[:0]
}
