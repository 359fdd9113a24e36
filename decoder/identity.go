package decoder

// Identity names an Ice object: an empty Name means "no object" (a null
// proxy), the same convention the wire format uses for optional identities.
type Identity struct {
	Name     string
	Category string
}

// EndpointData is one opaque, transport-specific endpoint of a direct
// proxy. Its Encoded payload is the endpoint's own encapsulated encoding;
// interpreting it is a transport concern outside this decoder's scope.
type EndpointData struct {
	Type    int16
	Encoded []byte
}

// ProxyData is the fully-parsed, transport-agnostic body of a non-null
// proxy reference, handed to Communicator.CreateReference to produce an
// invocable Reference.
type ProxyData struct {
	Identity Identity
	Facet    string
	Mode     byte
	Secure   bool

	ProtocolMajor, ProtocolMinor byte
	EncodingMajor, EncodingMinor byte

	// Endpoints is non-empty for a direct proxy; AdapterID is set instead
	// for an indirect one. Exactly one of the two is populated.
	Endpoints []EndpointData
	AdapterID string
}

// Reference is an opaque, resolved proxy target. Implementations are
// supplied by the Communicator.
type Reference interface {
	Identity() Identity
}

// Proxy is the application-facing handle produced from a Reference by a
// ProxyFactory, narrowing it to a specific Slice interface the way a
// generated ice_uncheckedCast does.
type Proxy interface {
	Reference() Reference
}

// ReadProxy reads a proxy: a null identity (empty Name) yields a nil
// Reference/Proxy; otherwise the remaining proxy fields are parsed and
// handed to the Communicator to construct a Reference, then to factory (if
// non-nil) to narrow it to an application Proxy type.
func (s *InputStream) ReadProxy(factory ProxyFactory) (Proxy, error) {
	identity, err := s.readIdentity()
	if err != nil {
		return nil, err
	}
	if identity.Name == "" {
		return nil, nil
	}

	data, err := s.readProxyData(identity)
	if err != nil {
		return nil, err
	}

	var ref Reference
	if s.deps.Communicator != nil {
		ref, err = s.deps.Communicator.CreateReference(data)
		if err != nil {
			return nil, err
		}
	}
	if factory == nil || ref == nil {
		return nil, nil
	}
	return factory(ref), nil
}

func (s *InputStream) readIdentity() (Identity, error) {
	name, err := s.buf.ReadString()
	if err != nil {
		return Identity{}, err
	}
	category, err := s.buf.ReadString()
	if err != nil {
		return Identity{}, err
	}
	return Identity{Name: name, Category: category}, nil
}

func (s *InputStream) readProxyData(identity Identity) (ProxyData, error) {
	var data ProxyData
	data.Identity = identity

	facets, err := s.buf.ReadStringSeq()
	if err != nil {
		return data, err
	}
	if len(facets) > 0 {
		data.Facet = facets[0]
	}

	mode, err := s.buf.ReadByte()
	if err != nil {
		return data, err
	}
	data.Mode = mode

	secure, err := s.buf.ReadBool()
	if err != nil {
		return data, err
	}
	data.Secure = secure

	data.ProtocolMajor, err = s.buf.ReadByte()
	if err != nil {
		return data, err
	}
	data.ProtocolMinor, err = s.buf.ReadByte()
	if err != nil {
		return data, err
	}
	data.EncodingMajor, err = s.buf.ReadByte()
	if err != nil {
		return data, err
	}
	data.EncodingMinor, err = s.buf.ReadByte()
	if err != nil {
		return data, err
	}

	count, err := s.buf.ReadAndCheckSeqSize(2)
	if err != nil {
		return data, err
	}
	if count > 0 {
		data.Endpoints = make([]EndpointData, count)
		for i := 0; i < count; i++ {
			typ, err := s.buf.ReadInt16()
			if err != nil {
				return data, err
			}
			payload, _, err := s.ReadEncapsulation()
			if err != nil {
				return data, err
			}
			data.Endpoints[i] = EndpointData{Type: typ, Encoded: payload}
		}
	} else {
		adapterID, err := s.buf.ReadString()
		if err != nil {
			return data, err
		}
		data.AdapterID = adapterID
	}

	return data, nil
}
