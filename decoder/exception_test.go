package decoder_test

import (
	"testing"

	"github.com/wippyai/icewire/config"
	"github.com/wippyai/icewire/decoder"
	icerrors "github.com/wippyai/icewire/errors"
	"github.com/wippyai/icewire/icetest"
	"github.com/wippyai/icewire/registry"
)

type myException struct {
	Msg string
}

func (e *myException) Error() string { return "myException: " + e.Msg }

func (e *myException) Read(s *decoder.InputStream) error {
	if err := s.StartSlice(); err != nil {
		return err
	}
	msg, err := s.ReadString()
	if err != nil {
		return err
	}
	e.Msg = msg
	return s.EndSlice()
}

func TestReadUserException_Known(t *testing.T) {
	body := icetest.NewBuilder().String("oops")
	slice := icetest.NewBuilder().
		Byte(0x30). // HasSliceSize | IsLastSlice
		String("::Test::MyException").
		Int32(int32(len(body.Bytes()) + 4)).
		Raw(body.Bytes()...)
	data := icetest.Encaps(1, 1, func(b *icetest.Builder) {
		b.Raw(slice.Bytes()...)
	})

	exceptions := registry.NewExceptions()
	exceptions.Register("::Test::MyException", func() decoder.UserException { return &myException{} })

	s := decoder.New(data, config.Default(), decoder.Deps{ExceptionFactory: exceptions})
	if _, err := s.StartEncapsulation(); err != nil {
		t.Fatal(err)
	}
	ex, err := s.ReadUserException()
	if err != nil {
		t.Fatal(err)
	}
	my, ok := ex.(*myException)
	if !ok {
		t.Fatalf("got %T, want *myException", ex)
	}
	if my.Msg != "oops" {
		t.Errorf("Msg = %q, want %q", my.Msg, "oops")
	}
}

func TestReadUserException_Unknown(t *testing.T) {
	body := icetest.NewBuilder()
	slice := icetest.NewBuilder().
		Byte(0x30).
		String("::Test::Mystery").
		Int32(int32(len(body.Bytes()) + 4)).
		Raw(body.Bytes()...)
	data := icetest.Encaps(1, 1, func(b *icetest.Builder) {
		b.Raw(slice.Bytes()...)
	})

	s := decoder.New(data, config.Default(), decoder.Deps{})
	if _, err := s.StartEncapsulation(); err != nil {
		t.Fatal(err)
	}
	_, err := s.ReadUserException()
	if err == nil {
		t.Fatal("expected an unknown-user-exception error")
	}
	ice, ok := err.(*icerrors.Error)
	if !ok {
		t.Fatalf("got %T, want *icerrors.Error", err)
	}
	if ice.Kind != icerrors.KindUnknownUserException {
		t.Errorf("Kind = %v, want %v", ice.Kind, icerrors.KindUnknownUserException)
	}
}
