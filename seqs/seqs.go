// Package seqs provides thin sequence-of-X helpers built directly on
// decoder.InputStream for the element kinds that need more than a
// fixed-width primitive read: class references, proxies, and struct/enum
// element types a caller decodes itself via a callback.
//
// original_source/ had nothing substantive to mine for this layer — these
// wrappers follow the wire-format spec's own container rules (size read via
// the aggregate seq-size guard, then one decode call per element) directly.
package seqs

import (
	"github.com/wippyai/icewire/decoder"
)

// ReadClassSeq reads a sequence of class references.
func ReadClassSeq(s *decoder.InputStream) ([]decoder.AnyClass, error) {
	n, err := s.Buffer().ReadAndCheckSeqSize(1)
	if err != nil || n == 0 {
		return nil, err
	}
	out := make([]decoder.AnyClass, n)
	for i := range out {
		if out[i], err = s.ReadClass(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// ReadProxySeq reads a sequence of proxies, narrowed via factory.
func ReadProxySeq(s *decoder.InputStream, factory decoder.ProxyFactory) ([]decoder.Proxy, error) {
	n, err := s.Buffer().ReadAndCheckSeqSize(1)
	if err != nil || n == 0 {
		return nil, err
	}
	out := make([]decoder.Proxy, n)
	for i := range out {
		if out[i], err = s.ReadProxy(factory); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// ReadElemFunc decodes one element of a caller-defined sequence (structs,
// enums, dictionaries, anything the wire package and decoder don't already
// cover as a primitive).
type ReadElemFunc[T any] func(s *decoder.InputStream) (T, error)

// ReadSeq reads a sequence whose element type is decoded by read, enforcing
// the aggregate size guard with minElementSize as the per-element lower
// bound (the smallest possible wire encoding of one element).
func ReadSeq[T any](s *decoder.InputStream, minElementSize int, read ReadElemFunc[T]) ([]T, error) {
	n, err := s.Buffer().ReadAndCheckSeqSize(minElementSize)
	if err != nil || n == 0 {
		return nil, err
	}
	out := make([]T, n)
	for i := range out {
		if out[i], err = read(s); err != nil {
			return nil, err
		}
	}
	return out, nil
}
