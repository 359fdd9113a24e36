// Package registry provides concrete, in-memory implementations of the
// decoder's consumed interfaces (ClassFactory, ExceptionFactory,
// Communicator); compact ids are resolved through Communicator's table, and
// no CompactIDResolver function is provided here. The decoder package defines those
// interfaces; this package supplies them, the same direction the teacher's
// transcoder package takes with its Memory/Allocator consumed interfaces
// implemented by the runtime package.
package registry

import "github.com/wippyai/icewire/decoder"

// Classes is a map-backed decoder.ClassFactory. Each registered constructor
// is called fresh per lookup so every decoded instance gets its own value.
type Classes struct {
	ctors map[string]func() decoder.AnyClass
}

// NewClasses returns an empty class registry.
func NewClasses() *Classes {
	return &Classes{ctors: make(map[string]func() decoder.AnyClass)}
}

// Register installs a constructor for typeID.
func (c *Classes) Register(typeID string, ctor func() decoder.AnyClass) {
	c.ctors[typeID] = ctor
}

// New implements decoder.ClassFactory.
func (c *Classes) New(typeID string) (decoder.AnyClass, bool) {
	ctor, ok := c.ctors[typeID]
	if !ok {
		return nil, false
	}
	return ctor(), true
}

// Exceptions is a map-backed decoder.ExceptionFactory.
type Exceptions struct {
	ctors map[string]func() decoder.UserException
}

// NewExceptions returns an empty exception registry.
func NewExceptions() *Exceptions {
	return &Exceptions{ctors: make(map[string]func() decoder.UserException)}
}

// Register installs a constructor for typeID.
func (e *Exceptions) Register(typeID string, ctor func() decoder.UserException) {
	e.ctors[typeID] = ctor
}

// New implements decoder.ExceptionFactory.
func (e *Exceptions) New(typeID string) (decoder.UserException, bool) {
	ctor, ok := e.ctors[typeID]
	if !ok {
		return nil, false
	}
	return ctor(), true
}

// Communicator is a minimal in-memory decoder.Communicator: a compact-id
// table plus a trivial opaque reference constructor, enough to exercise
// proxy/compact-id decoding in tests without a real object adapter.
type Communicator struct {
	compactIDs map[int32]string
}

// NewCommunicator returns a Communicator with no registered compact ids.
func NewCommunicator() *Communicator {
	return &Communicator{compactIDs: make(map[int32]string)}
}

// RegisterCompactID associates a compact id with a type-id, the way
// Slice-generated code registers its compile-time compact id table.
func (c *Communicator) RegisterCompactID(id int32, typeID string) {
	c.compactIDs[id] = typeID
}

// ResolveCompactID implements decoder.Communicator.
func (c *Communicator) ResolveCompactID(id int32) (string, bool) {
	typeID, ok := c.compactIDs[id]
	return typeID, ok
}

// CreateReference implements decoder.Communicator with an opaque reference
// that simply records the parsed proxy data; embedding applications that
// need a real invocation path supply their own Communicator.
func (c *Communicator) CreateReference(data decoder.ProxyData) (decoder.Reference, error) {
	return &reference{data: data}, nil
}

type reference struct {
	data decoder.ProxyData
}

func (r *reference) Identity() decoder.Identity { return r.data.Identity }

// UncheckedProxy is a Reference wrapped directly as a decoder.Proxy, with no
// type narrowing. DefaultProxyFactory builds these; an application with its
// own generated proxy types supplies its own decoder.ProxyFactory instead.
type UncheckedProxy struct {
	ref decoder.Reference
}

// Reference implements decoder.Proxy.
func (p *UncheckedProxy) Reference() decoder.Reference { return p.ref }

// DefaultProxyFactory wraps any Reference in an UncheckedProxy, the
// registry's stand-in for a generated ice_uncheckedCast.
func DefaultProxyFactory(ref decoder.Reference) decoder.Proxy {
	return &UncheckedProxy{ref: ref}
}
