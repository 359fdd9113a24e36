package decoder

import (
	"strings"

	icerrors "github.com/wippyai/icewire/errors"
	"github.com/wippyai/icewire/telemetry"
)

// ReadUserException decodes a user exception: the per-invocation
// UserExceptionFactory is tried first, then the communicator-wide
// ExceptionFactory, slicing away any intermediate type neither recognizes.
// Unlike a class instance, an exception has no back-reference map — it is
// never shared — so its indirection tables are resolved eagerly as each
// slice is processed, and reaching the last slice with nothing recognized
// is always a hard failure rather than an opaque fallback value.
func (s *InputStream) ReadUserException() (UserException, error) {
	if f := s.encapsStack.Current(); f != nil && !f.Encoding.SupportsClasses() {
		return nil, icerrors.Marshal(icerrors.PhaseReadSlice, nil, "user exceptions require encoding 1.1, got "+f.Encoding.String())
	}

	st := s.current()
	inst := st.pushInstance(sliceException)
	defer st.popInstance()

	if err := s.startSlice(inst, true); err != nil {
		return nil, err
	}
	mostDerivedID := inst.typeID

	var ex UserException
	for {
		if s.deps.UserExceptionFactory != nil {
			if e, ok := s.deps.UserExceptionFactory(inst.typeID); ok {
				ex = e
			}
		}
		if ex == nil && s.deps.ExceptionFactory != nil {
			if e, ok := s.deps.ExceptionFactory.New(inst.typeID); ok {
				ex = e
			}
		}
		if ex != nil {
			break
		}

		info, err := s.skipSlice(inst)
		if err != nil {
			return nil, err
		}
		inst.slices = append(inst.slices, info)
		telemetry.SlicingUnknownType("exception", inst.typeID)

		if inst.flags&flagIsLastSlice != 0 {
			return nil, icerrors.UnknownUserException(strings.TrimPrefix(mostDerivedID, "::"))
		}
		if err := s.startSlice(inst, true); err != nil {
			return nil, err
		}
	}

	// The slice header Read is about to process via its own StartSlice call
	// was already consumed above while resolving the type; don't re-read it.
	inst.skipFirstSlice = true
	if err := ex.Read(s); err != nil {
		return nil, err
	}

	if sd := s.endInstance(inst); sd != nil {
		if carrier, ok := ex.(SlicedDataCarrier); ok {
			carrier.SetSlicedData(sd)
		}
	}
	return ex, nil
}
