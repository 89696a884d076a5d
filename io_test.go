package gofunge

import (
	"strings"
	"testing"
)

func TestStorePortReadsPending(t *testing.T) {
	p := NewStorePort()
	if _, err := p.ReadChar(); err != ErrInputPending {
		t.Errorf("ReadChar on empty store = %v, want ErrInputPending", err)
	}
	if _, err := p.ReadNumber(); err != ErrInputPending {
		t.Errorf("ReadNumber on empty store = %v, want ErrInputPending", err)
	}
}

func TestStorePortReadNumber(t *testing.T) {
	p := NewStorePort()
	p.SupplyString("ab-12 7\n")

	n, err := p.ReadNumber()
	if err != nil || n != -12 {
		t.Errorf("ReadNumber = %d/%v, want -12", n, err)
	}
	n, err = p.ReadNumber()
	if err != nil || n != 7 {
		t.Errorf("second ReadNumber = %d/%v, want 7", n, err)
	}
}

func TestStorePortReadNumberNoDigits(t *testing.T) {
	p := NewStorePort()
	p.SupplyString("abc")
	if _, err := p.ReadNumber(); err != ErrInputPending {
		t.Errorf("ReadNumber with no digits = %v, want ErrInputPending", err)
	}
	// A later supply can complete the read.
	p.SupplyString("31 ")
	n, err := p.ReadNumber()
	if err != nil || n != 31 {
		t.Errorf("ReadNumber after supply = %d/%v, want 31", n, err)
	}
}

func TestStorePortOutput(t *testing.T) {
	p := NewStorePort()
	p.WriteNumber(42)
	p.WriteChar('!')
	if got := p.Output(); got != "42 !" {
		t.Errorf("Output = %q, want %q", got, "42 !")
	}
}

func TestConsolePortReadNumber(t *testing.T) {
	p := NewConsolePort(strings.NewReader("xx-5,12"), &strings.Builder{})

	n, err := p.ReadNumber()
	if err != nil || n != -5 {
		t.Errorf("ReadNumber = %d/%v, want -5", n, err)
	}
	n, err = p.ReadNumber()
	if err != nil || n != 12 {
		t.Errorf("second ReadNumber = %d/%v, want 12", n, err)
	}
}

func TestConsolePortDashWithoutDigits(t *testing.T) {
	p := NewConsolePort(strings.NewReader("- 8"), &strings.Builder{})
	n, err := p.ReadNumber()
	if err != nil || n != 8 {
		t.Errorf("ReadNumber = %d/%v, want 8", n, err)
	}
}

func TestConsolePortWrites(t *testing.T) {
	var out strings.Builder
	p := NewConsolePort(strings.NewReader(""), &out)
	p.WriteNumber(-3)
	p.WriteChar('x')
	if out.String() != "-3 x" {
		t.Errorf("wrote %q, want %q", out.String(), "-3 x")
	}
}
