package decoder_test

import (
	"testing"

	"github.com/wippyai/icewire/decoder"
	icerrors "github.com/wippyai/icewire/errors"
	"github.com/wippyai/icewire/icetest"
	"github.com/wippyai/icewire/tagged"
)

func TestReadClass_RejectsEncoding10(t *testing.T) {
	data := icetest.Encaps(1, 0, func(b *icetest.Builder) {
		b.Byte(1) // would otherwise mean "inline instance follows"
	})

	s := newStream(t, data, decoder.Deps{})
	if _, err := s.StartEncapsulation(); err != nil {
		t.Fatal(err)
	}
	_, err := s.ReadClass()
	if err == nil {
		t.Fatal("expected an error decoding a class under encoding 1.0")
	}
	iceErr, ok := err.(*icerrors.Error)
	if !ok {
		t.Fatalf("got %T, want *errors.Error", err)
	}
	if iceErr.Kind != icerrors.KindMarshal {
		t.Errorf("Kind = %v, want KindMarshal", iceErr.Kind)
	}
}

func TestReadOptional_RejectsEncoding10(t *testing.T) {
	data := icetest.Encaps(1, 0, func(b *icetest.Builder) {
		b.Byte(0x2F) // tag 5, Class format header, never reached
	})

	s := newStream(t, data, decoder.Deps{})
	if _, err := s.StartEncapsulation(); err != nil {
		t.Fatal(err)
	}
	_, err := s.ReadOptional(5, tagged.Class)
	if err == nil {
		t.Fatal("expected an error reading a tagged member under encoding 1.0")
	}
	iceErr, ok := err.(*icerrors.Error)
	if !ok {
		t.Fatalf("got %T, want *errors.Error", err)
	}
	if iceErr.Kind != icerrors.KindMarshal {
		t.Errorf("Kind = %v, want KindMarshal", iceErr.Kind)
	}
}

func TestReadEnum_Encoding10UsesFixedWidth(t *testing.T) {
	cases := []struct {
		name     string
		maxValue int
		build    func(b *icetest.Builder)
		want     int
	}{
		{
			name:     "u8 below 127",
			maxValue: 5,
			build:    func(b *icetest.Builder) { b.Byte(3) },
			want:     3,
		},
		{
			name:     "i16 below 32767",
			maxValue: 200,
			build:    func(b *icetest.Builder) { b.Raw(150, 0) },
			want:     150,
		},
		{
			name:     "i32 otherwise",
			maxValue: 40000,
			build:    func(b *icetest.Builder) { b.Int32(35000) },
			want:     35000,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			data := icetest.Encaps(1, 0, tc.build)

			s := newStream(t, data, decoder.Deps{})
			if _, err := s.StartEncapsulation(); err != nil {
				t.Fatal(err)
			}
			got, err := s.ReadEnum(tc.maxValue)
			if err != nil {
				t.Fatalf("ReadEnum: %v", err)
			}
			if got != tc.want {
				t.Errorf("ReadEnum(%d) = %d, want %d", tc.maxValue, got, tc.want)
			}
		})
	}
}

func TestReadEnum_Encoding11UsesCompactSize(t *testing.T) {
	data := icetest.Encaps(1, 1, func(b *icetest.Builder) {
		b.Byte(3) // compact size 3
	})

	s := newStream(t, data, decoder.Deps{})
	if _, err := s.StartEncapsulation(); err != nil {
		t.Fatal(err)
	}
	got, err := s.ReadEnum(200)
	if err != nil {
		t.Fatalf("ReadEnum: %v", err)
	}
	if got != 3 {
		t.Errorf("ReadEnum(200) = %d, want 3", got)
	}
}

func TestReadEnum_RejectsOutOfRange(t *testing.T) {
	data := icetest.Encaps(1, 1, func(b *icetest.Builder) {
		b.Byte(9) // compact size 9, exceeds maxValue below
	})

	s := newStream(t, data, decoder.Deps{})
	if _, err := s.StartEncapsulation(); err != nil {
		t.Fatal(err)
	}
	if _, err := s.ReadEnum(5); err == nil {
		t.Fatal("expected an error for an out-of-range enumerator")
	}
}

func TestReadUserException_RejectsEncoding10(t *testing.T) {
	data := icetest.Encaps(1, 0, func(b *icetest.Builder) {
		b.Byte(0x31).String("::Test::Whatever").Int32(4)
	})

	s := newStream(t, data, decoder.Deps{})
	if _, err := s.StartEncapsulation(); err != nil {
		t.Fatal(err)
	}
	_, err := s.ReadUserException()
	if err == nil {
		t.Fatal("expected an error decoding a user exception under encoding 1.0")
	}
	iceErr, ok := err.(*icerrors.Error)
	if !ok {
		t.Fatalf("got %T, want *errors.Error", err)
	}
	if iceErr.Kind != icerrors.KindMarshal {
		t.Errorf("Kind = %v, want KindMarshal", iceErr.Kind)
	}
}
