package decoder

import (
	icerrors "github.com/wippyai/icewire/errors"
	"github.com/wippyai/icewire/telemetry"
)

// ReadClass reads one class reference. Within a slice that declares an
// indirection table, a reference is a 1-based index into that table;
// otherwise it is the general encoding: 0 is null, 1 means an inline
// instance follows, and anything higher is a back-reference to an
// already-registered instance in this encapsulation.
func (s *InputStream) ReadClass() (AnyClass, error) {
	st := s.current()
	if st.instanceTop != nil && st.instanceTop.indirectionTable != nil {
		idx, err := s.buf.ReadSize()
		if err != nil {
			return nil, err
		}
		if idx < 1 || idx > len(st.instanceTop.indirectionTable) {
			return nil, icerrors.Marshal(icerrors.PhaseReadClass, nil, "indirection table index out of range")
		}
		return st.instanceTop.indirectionTable[idx-1], nil
	}

	idx, err := s.buf.ReadSize()
	if err != nil {
		return nil, err
	}
	return s.resolveClassIndex(idx)
}

func (s *InputStream) resolveClassIndex(index int) (AnyClass, error) {
	if index < 0 {
		return nil, icerrors.Marshal(icerrors.PhaseReadClass, nil, "negative object id")
	}
	if index == 0 {
		return nil, nil
	}
	if index == 1 {
		if f := s.encapsStack.Current(); f != nil && !f.Encoding.SupportsClasses() {
			return nil, icerrors.Marshal(icerrors.PhaseReadClass, nil, "class instances require encoding 1.1, got "+f.Encoding.String())
		}
		return s.readClassInstance()
	}
	st := s.current()
	v, ok := st.unmarshaled[index]
	if !ok {
		return nil, icerrors.Marshal(icerrors.PhaseReadClass, nil, "could not find instance for back-reference")
	}
	return v, nil
}

// readClassInstance decodes one inline class instance: it resolves the
// most-derived recognizable type by walking slices (preserving the ones it
// can't map to a factory), registers the resulting value before filling it
// so cyclic self-references resolve, then invokes its Read method.
func (s *InputStream) readClassInstance() (AnyClass, error) {
	st := s.current()
	newIndex := st.nextValueID()

	inst := st.pushInstance(sliceClass)
	defer st.popInstance()

	if err := s.startSlice(inst, false); err != nil {
		return nil, err
	}
	mostDerivedID := inst.typeID

	var v AnyClass
	for {
		typeID := inst.typeID
		if inst.compactID >= 0 {
			resolved, err := s.resolveCompactID(inst.compactID)
			if err != nil {
				return nil, err
			}
			typeID = resolved
		}
		if typeID != "" {
			if ctor, ok := s.lookupClassCtor(typeID); ok {
				v = ctor
			}
		}
		if v != nil {
			break
		}
		if s.cfg.DisableSliceClasses {
			return nil, icerrors.NoClassFactory(nil, inst.typeID)
		}

		info, err := s.skipSlice(inst)
		if err != nil {
			return nil, err
		}
		inst.slices = append(inst.slices, info)
		telemetry.SlicingUnknownType("class", inst.typeID)

		if inst.flags&flagIsLastSlice != 0 {
			if ctor, ok := s.lookupClassCtor("::Ice::Object"); ok {
				v = ctor
			} else {
				v = &UnknownSlicedClass{TypeID: mostDerivedID}
			}
			break
		}
		if err := s.startSlice(inst, false); err != nil {
			return nil, err
		}
	}

	s.classGraphDepth++
	if s.classGraphDepth > s.cfg.EffectiveClassGraphDepthMax() {
		s.classGraphDepth--
		telemetry.ClassGraphDepthRejected(s.classGraphDepth+1, s.cfg.EffectiveClassGraphDepthMax())
		return nil, icerrors.Marshal(icerrors.PhaseReadClass, nil, "class graph too deep")
	}

	// The slice header Read is about to process via its own StartSlice call
	// was already consumed above while resolving the type; don't re-read it.
	inst.skipFirstSlice = true
	st.unmarshaled[newIndex] = v

	for _, pos := range inst.deferredIndirectionTableList {
		if pos == 0 {
			inst.indirectionTableList = append(inst.indirectionTableList, nil)
			continue
		}
		saved := s.buf.Position()
		if err := s.buf.SetPosition(pos); err != nil {
			return nil, err
		}
		table, err := s.readIndirectionTable()
		if err != nil {
			return nil, err
		}
		inst.indirectionTableList = append(inst.indirectionTableList, table)
		if err := s.buf.SetPosition(saved); err != nil {
			return nil, err
		}
	}

	if err := v.Read(s); err != nil {
		s.classGraphDepth--
		return nil, err
	}
	s.classGraphDepth--

	if sd := s.endInstance(inst); sd != nil {
		if carrier, ok := v.(SlicedDataCarrier); ok {
			carrier.SetSlicedData(sd)
		}
	}
	return v, nil
}

// lookupClassCtor asks the configured ClassFactory for typeID, caching
// negative resolutions (per-encapsulation) so repeated misses for the same
// unregistered type don't re-probe the factory.
func (s *InputStream) lookupClassCtor(typeID string) (AnyClass, bool) {
	if typeID == "" {
		return nil, false
	}
	st := s.current()
	if can, ok := st.typeIDKnown[typeID]; ok {
		if !can {
			return nil, false
		}
	}
	if s.deps.ClassFactory == nil {
		st.typeIDKnown[typeID] = false
		return nil, false
	}
	v, ok := s.deps.ClassFactory.New(typeID)
	st.typeIDKnown[typeID] = ok
	return v, ok
}

// resolveCompactID maps a compact id to a type-id via the configured
// resolver, falling back to the communicator, and caches the resolution
// (including a negative one) per encapsulation.
func (s *InputStream) resolveCompactID(id int32) (string, error) {
	st := s.current()
	if r, ok := st.compactIDCache[id]; ok {
		if !r.found {
			return "", nil
		}
		return r.typeID, nil
	}

	var typeID string
	found := false
	if s.deps.CompactIDResolver != nil {
		tid, ok, err := s.deps.CompactIDResolver(id)
		if err != nil {
			return "", icerrors.New(icerrors.PhaseReadClass, icerrors.KindMarshal).
				Cause(err).Detail("compact id resolver failed").Build()
		}
		if ok {
			typeID, found = tid, true
		}
	}
	if !found && s.deps.Communicator != nil {
		if tid, ok := s.deps.Communicator.ResolveCompactID(id); ok {
			typeID, found = tid, true
		}
	}

	st.compactIDCache[id] = compactResolution{typeID: typeID, found: found}
	return typeID, nil
}
