package registry_test

import (
	"testing"

	"github.com/wippyai/icewire/decoder"
	"github.com/wippyai/icewire/registry"
)

// stubClass is not zero-sized, so separate allocations have distinct addresses.
type stubClass struct{ _ byte }

func (s *stubClass) Read(*decoder.InputStream) error { return nil }

func TestClasses_RegisterAndNew(t *testing.T) {
	c := registry.NewClasses()
	c.Register("::Test::Stub", func() decoder.AnyClass { return &stubClass{} })

	v, ok := c.New("::Test::Stub")
	if !ok {
		t.Fatal("expected New to find the registered type")
	}
	if _, ok := v.(*stubClass); !ok {
		t.Fatalf("got %T, want *stubClass", v)
	}

	if _, ok := c.New("::Test::Unknown"); ok {
		t.Error("expected New to report false for an unregistered type")
	}
}

func TestClasses_New_FreshInstancePerCall(t *testing.T) {
	c := registry.NewClasses()
	c.Register("::Test::Stub", func() decoder.AnyClass { return &stubClass{} })

	a, _ := c.New("::Test::Stub")
	b, _ := c.New("::Test::Stub")
	if a == b {
		t.Error("expected each New call to construct a distinct instance")
	}
}

func TestCommunicator_CompactID(t *testing.T) {
	c := registry.NewCommunicator()
	if _, ok := c.ResolveCompactID(5); ok {
		t.Error("expected an unregistered compact id to miss")
	}

	c.RegisterCompactID(5, "::Test::Widget")
	typeID, ok := c.ResolveCompactID(5)
	if !ok || typeID != "::Test::Widget" {
		t.Errorf("ResolveCompactID(5) = (%q, %v), want (::Test::Widget, true)", typeID, ok)
	}
}

func TestCommunicator_CreateReference(t *testing.T) {
	c := registry.NewCommunicator()
	data := decoder.ProxyData{Identity: decoder.Identity{Name: "widget", Category: "cat"}}

	ref, err := c.CreateReference(data)
	if err != nil {
		t.Fatal(err)
	}
	if ref.Identity() != data.Identity {
		t.Errorf("Identity() = %+v, want %+v", ref.Identity(), data.Identity)
	}

	p := registry.DefaultProxyFactory(ref)
	up, ok := p.(*registry.UncheckedProxy)
	if !ok {
		t.Fatalf("got %T, want *registry.UncheckedProxy", p)
	}
	if up.Reference() != ref {
		t.Error("UncheckedProxy.Reference() does not return the same reference")
	}
}
