// Package decoder is the hard core of the wire-format reader: the slice
// state machine, indirection tables, and the class/exception graph decoder
// that sit on top of wire.Buffer, encaps.Stack, tagged.Reader and
// typeid.Table. It is kept as one cohesive package, the way the teacher
// keeps its own decode/encode/compile/stack machinery together in a single
// transcoder package, because the pieces here are mutually recursive:
// starting a slice may need to read an indirection table, which may need to
// construct a class instance, which starts its own slices.
package decoder

import (
	icerrors "github.com/wippyai/icewire/errors"
	"github.com/wippyai/icewire/config"
	"github.com/wippyai/icewire/encaps"
	"github.com/wippyai/icewire/tagged"
	"github.com/wippyai/icewire/telemetry"
	"github.com/wippyai/icewire/typeid"
	"github.com/wippyai/icewire/wire"
)

// AnyClass is any decodable class instance. Read is invoked once the
// instance has already been registered in the current encapsulation's
// unmarshaled map, so cyclic references resolve correctly.
type AnyClass interface {
	Read(s *InputStream) error
}

// UserException is a decodable Slice user exception.
type UserException interface {
	error
	Read(s *InputStream) error
}

// UnknownSlicedClass is the fallback value for a class instance whose
// most-derived (and every base) type-id has no registered factory. Its
// SlicedData carries the preserved wire bytes so the caller can still
// forward or inspect the instance.
type UnknownSlicedClass struct {
	TypeID     string
	SlicedData *SlicedData
}

// Read is a no-op: every byte of this instance's slices was already
// consumed while resolving its type.
func (u *UnknownSlicedClass) Read(s *InputStream) error { return nil }

// SetSlicedData implements SlicedDataCarrier.
func (u *UnknownSlicedClass) SetSlicedData(sd *SlicedData) { u.SlicedData = sd }

// encapsState is the lazily-constructed slice state machine bound to one
// active encapsulation frame: its type-id table, its unmarshaled (instance
// back-reference) map, and the free-list chain of instanceData frames for
// the classes/exceptions decoded within it.
type encapsState struct {
	typeIDs      *typeid.Table
	unmarshaled  map[int]AnyClass
	valueIDIndex int

	instanceTop *instanceData

	typeIDKnown    map[string]bool
	compactIDCache map[int32]compactResolution
}

type compactResolution struct {
	typeID string
	found  bool
}

func newEncapsState() *encapsState {
	return &encapsState{
		typeIDs: typeid.NewTable(),
		// Wire index 1 is the reserved sentinel meaning "inline value
		// follows"; the first actually-registered instance gets back-
		// reference index 2, so the counter starts at 1.
		valueIDIndex:   1,
		unmarshaled:    make(map[int]AnyClass),
		typeIDKnown:    make(map[string]bool),
		compactIDCache: make(map[int32]compactResolution),
	}
}

func (st *encapsState) nextValueID() int {
	st.valueIDIndex++
	return st.valueIDIndex
}

func (st *encapsState) pushInstance(sliceType SliceType) *instanceData {
	var inst *instanceData
	if st.instanceTop != nil && st.instanceTop.next != nil {
		inst = st.instanceTop.next
	} else {
		inst = &instanceData{}
		if st.instanceTop != nil {
			st.instanceTop.next = inst
			inst.previous = st.instanceTop
		}
	}
	inst.resetForPush(sliceType)
	st.instanceTop = inst
	return inst
}

func (st *encapsState) popInstance() {
	if st.instanceTop != nil {
		st.instanceTop = st.instanceTop.previous
	}
}

// Deps supplies the decoder's consumed collaborators. Every field is
// optional; a nil factory simply means its type-ids are never resolvable,
// so instances of that kind get preserved/skipped or reported unknown.
type Deps struct {
	ClassFactory         ClassFactory
	ExceptionFactory     ExceptionFactory
	UserExceptionFactory UserExceptionFactoryFunc
	CompactIDResolver    CompactIDResolver
	Communicator         Communicator
}

// InputStream decodes one top-level encapsulation (and any nested ones)
// from a byte slice. It is not safe for concurrent use; create one per
// decode.
type InputStream struct {
	buf         *wire.Buffer
	encapsStack *encaps.Stack
	cfg         config.Config
	deps        Deps

	tagged *tagged.Reader

	classGraphDepth int
	states          []*encapsState
}

// New returns an InputStream over data, ready to decapsulate and decode.
func New(data []byte, cfg config.Config, deps Deps) *InputStream {
	s := &InputStream{
		buf:         wire.NewBuffer(data),
		encapsStack: encaps.NewStack(),
		cfg:         cfg,
		deps:        deps,
	}
	if cfg.SequenceSizeMax > 0 {
		s.buf.SetSeqSizeBudget(cfg.SequenceSizeMax)
	}
	if cfg.TraceSlicing {
		telemetry.SetTraceLevel(1)
	}
	s.tagged = &tagged.Reader{ClassSkipper: s.skipClassRef}
	return s
}

// Buffer exposes the underlying cursor for callers that need direct access
// (e.g. container wrappers in the seqs package).
func (s *InputStream) Buffer() *wire.Buffer { return s.buf }

func (s *InputStream) current() *encapsState {
	if len(s.states) == 0 {
		panic("decoder: no active encapsulation")
	}
	return s.states[len(s.states)-1]
}

// StartEncapsulation decapsulates at the current position and pushes a
// fresh slice state machine (type-id table, unmarshaled map) for it.
func (s *InputStream) StartEncapsulation() (encaps.Version, error) {
	f, err := s.encapsStack.StartEncapsulation(s.buf)
	if err != nil {
		return encaps.Version{}, err
	}
	s.states = append(s.states, newEncapsState())
	return f.Encoding, nil
}

// EndEncapsulation discards any trailing tagged section (1.1 only) and pops
// the encapsulation, restoring the parent's limit.
func (s *InputStream) EndEncapsulation() error {
	if f := s.encapsStack.Current(); f != nil && f.Encoding == encaps.Encoding11 {
		if err := s.tagged.SkipToEnd(s.buf); err != nil {
			return err
		}
	}
	if len(s.states) > 0 {
		s.states = s.states[:len(s.states)-1]
	}
	return s.encapsStack.EndEncapsulation(s.buf)
}

// SkipEmptyEncapsulation delegates to the encapsulation stack without
// pushing slice state.
func (s *InputStream) SkipEmptyEncapsulation() (encaps.Version, error) {
	return s.encapsStack.SkipEmptyEncapsulation(s.buf)
}

// SkipEncapsulation delegates to the encapsulation stack without pushing
// slice state.
func (s *InputStream) SkipEncapsulation() (encaps.Version, error) {
	return s.encapsStack.SkipEncapsulation(s.buf)
}

// ReadEncapsulation delegates to the encapsulation stack without pushing
// slice state.
func (s *InputStream) ReadEncapsulation() ([]byte, encaps.Version, error) {
	return s.encapsStack.ReadEncapsulation(s.buf)
}

// Primitive passthroughs: InputStream is the single object generated or
// hand-written Read methods call against, matching how Ice's own stream
// object exposes read(bool&)-style methods directly rather than making
// callers reach into a lower-level buffer.

func (s *InputStream) ReadBool() (bool, error)       { return s.buf.ReadBool() }
func (s *InputStream) ReadByte() (byte, error)        { return s.buf.ReadByte() }
func (s *InputStream) ReadInt16() (int16, error)      { return s.buf.ReadInt16() }
func (s *InputStream) ReadInt32() (int32, error)      { return s.buf.ReadInt32() }
func (s *InputStream) ReadInt64() (int64, error)      { return s.buf.ReadInt64() }
func (s *InputStream) ReadFloat32() (float32, error)  { return s.buf.ReadFloat32() }
func (s *InputStream) ReadFloat64() (float64, error)  { return s.buf.ReadFloat64() }
func (s *InputStream) ReadString() (string, error)    { return s.buf.ReadString() }

func (s *InputStream) ReadBoolSeq() ([]bool, error)      { return s.buf.ReadBoolSeq() }
func (s *InputStream) ReadByteSeq() ([]byte, error)      { return s.buf.ReadByteSeq() }
func (s *InputStream) ReadShortSeq() ([]int16, error)    { return s.buf.ReadShortSeq() }
func (s *InputStream) ReadIntSeq() ([]int32, error)      { return s.buf.ReadIntSeq() }
func (s *InputStream) ReadLongSeq() ([]int64, error)     { return s.buf.ReadLongSeq() }
func (s *InputStream) ReadFloatSeq() ([]float32, error)  { return s.buf.ReadFloatSeq() }
func (s *InputStream) ReadDoubleSeq() ([]float64, error) { return s.buf.ReadDoubleSeq() }
func (s *InputStream) ReadStringSeq() ([]string, error)  { return s.buf.ReadStringSeq() }

// ReadOptional reports whether a tagged member matching expectedTag and
// expectedFormat is present next, skipping over earlier tags the caller
// doesn't read.
func (s *InputStream) ReadOptional(expectedTag uint32, expectedFormat tagged.Format) (bool, error) {
	if f := s.encapsStack.Current(); f != nil && !f.Encoding.SupportsClasses() {
		return false, icerrors.Marshal(icerrors.PhaseReadTagged, nil, "tagged members require encoding 1.1, got "+f.Encoding.String())
	}
	return s.tagged.ReadOptional(s.buf, expectedTag, expectedFormat)
}

// ReadEnum reads an enumerator index bounded by maxValue (the enumeration's
// highest valid ordinal). Encoding 1.1 reads a compact size; 1.0 has no
// compact size format and instead reads a fixed-width integer sized by
// maxValue: u8 below 127, i16 below 32767, else i32.
func (s *InputStream) ReadEnum(maxValue int) (int, error) {
	var v int
	if f := s.encapsStack.Current(); f != nil && !f.Encoding.SupportsClasses() {
		switch {
		case maxValue < 127:
			b, err := s.buf.ReadByte()
			if err != nil {
				return 0, err
			}
			v = int(b)
		case maxValue < 32767:
			n, err := s.buf.ReadInt16()
			if err != nil {
				return 0, err
			}
			v = int(n)
		default:
			n, err := s.buf.ReadInt32()
			if err != nil {
				return 0, err
			}
			v = int(n)
		}
	} else {
		n, err := s.buf.ReadSize()
		if err != nil {
			return 0, err
		}
		v = n
	}
	if v < 0 || v > maxValue {
		return 0, icerrors.Marshal(icerrors.PhaseReadClass, nil, "enumerator out of range")
	}
	return v, nil
}

func (s *InputStream) skipClassRef(buf *wire.Buffer) error {
	idx, err := buf.ReadSize()
	if err != nil {
		return err
	}
	if idx == 1 {
		return s.skipInlineInstance(0)
	}
	return nil
}
