package wire

// Bulk primitive-array reads. Each validates the sequence size against the
// aggregate budget (via ReadAndCheckSeqSize) before allocating the result
// slice, so a hostile size claim fails before any allocation.

// ReadBoolSeq reads a bool sequence.
func (b *Buffer) ReadBoolSeq() ([]bool, error) {
	n, err := b.ReadAndCheckSeqSize(1)
	if err != nil || n == 0 {
		return nil, err
	}
	out := make([]bool, n)
	for i := range out {
		if out[i], err = b.ReadBool(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// ReadByteSeq reads a byte sequence as a single blob.
func (b *Buffer) ReadByteSeq() ([]byte, error) {
	n, err := b.ReadAndCheckSeqSize(1)
	if err != nil || n == 0 {
		return nil, err
	}
	blob, err := b.ReadBlob(n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, blob)
	return out, nil
}

// ReadShortSeq reads an int16 sequence.
func (b *Buffer) ReadShortSeq() ([]int16, error) {
	n, err := b.ReadAndCheckSeqSize(2)
	if err != nil || n == 0 {
		return nil, err
	}
	out := make([]int16, n)
	for i := range out {
		if out[i], err = b.ReadInt16(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// ReadIntSeq reads an int32 sequence.
func (b *Buffer) ReadIntSeq() ([]int32, error) {
	n, err := b.ReadAndCheckSeqSize(4)
	if err != nil || n == 0 {
		return nil, err
	}
	out := make([]int32, n)
	for i := range out {
		if out[i], err = b.ReadInt32(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// ReadLongSeq reads an int64 sequence.
func (b *Buffer) ReadLongSeq() ([]int64, error) {
	n, err := b.ReadAndCheckSeqSize(8)
	if err != nil || n == 0 {
		return nil, err
	}
	out := make([]int64, n)
	for i := range out {
		if out[i], err = b.ReadInt64(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// ReadFloatSeq reads a float32 sequence.
func (b *Buffer) ReadFloatSeq() ([]float32, error) {
	n, err := b.ReadAndCheckSeqSize(4)
	if err != nil || n == 0 {
		return nil, err
	}
	out := make([]float32, n)
	for i := range out {
		if out[i], err = b.ReadFloat32(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// ReadDoubleSeq reads a float64 sequence.
func (b *Buffer) ReadDoubleSeq() ([]float64, error) {
	n, err := b.ReadAndCheckSeqSize(8)
	if err != nil || n == 0 {
		return nil, err
	}
	out := make([]float64, n)
	for i := range out {
		if out[i], err = b.ReadFloat64(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// ReadStringSeq reads a string sequence.
func (b *Buffer) ReadStringSeq() ([]string, error) {
	n, err := b.ReadAndCheckSeqSize(1)
	if err != nil || n == 0 {
		return nil, err
	}
	out := make([]string, n)
	for i := range out {
		if out[i], err = b.ReadString(); err != nil {
			return nil, err
		}
	}
	return out, nil
}
