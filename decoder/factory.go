package decoder

// ClassFactory constructs a fresh, zero-valued instance for a class type-id,
// or reports that none is registered so the slice can be preserved/skipped
// instead. Implemented by the registry package.
type ClassFactory interface {
	New(typeID string) (AnyClass, bool)
}

// ExceptionFactory constructs a fresh user exception for a type-id.
// Implemented by the registry package.
type ExceptionFactory interface {
	New(typeID string) (UserException, bool)
}

// UserExceptionFactoryFunc is consulted before ExceptionFactory, mirroring
// Ice's per-invocation "user exception factory" that takes precedence over
// the communicator-wide one.
type UserExceptionFactoryFunc func(typeID string) (UserException, bool)

// CompactIDResolver maps a numeric compact id to its type-id string, e.g. by
// consulting a generated compile-time table. ok is false when the id is
// unknown to this resolver (the Communicator is then consulted as a
// fallback); err signals a resolver-internal failure.
type CompactIDResolver func(id int32) (typeID string, ok bool, err error)

// Communicator resolves compact ids and constructs proxy references, the way
// an Ice communicator's object-adapter registry does.
type Communicator interface {
	ResolveCompactID(id int32) (typeID string, ok bool)
	CreateReference(data ProxyData) (Reference, error)
}

// ProxyFactory narrows a generic Reference down to an application-specific
// Proxy type, the way generated proxy classes wrap ice_uncheckedCast.
type ProxyFactory func(ref Reference) Proxy
