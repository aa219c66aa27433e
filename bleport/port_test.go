package bleport

import "testing"

func TestPortEqualityIsTransportSymmetric(t *testing.T) {
	a := Port{AdapterIndex: 0, Peripheral: NewPeripheralID("aa:bb"), Name: "Keyboard"}
	b := Port{AdapterIndex: 0, Peripheral: NewPeripheralID("aa:bb"), Name: "Different Name"}

	if !a.Equal(b) {
		t.Errorf("expected ports with equal adapter index and peripheral id to be equal regardless of name")
	}

	c := Port{AdapterIndex: 1, Peripheral: NewPeripheralID("aa:bb"), Name: "Keyboard"}
	if a.Equal(c) {
		t.Errorf("expected ports on different adapters to be unequal")
	}
}

func TestPortIDFormat(t *testing.T) {
	p := Port{AdapterIndex: 2, Peripheral: NewPeripheralID("11:22:33")}
	if got, want := p.ID(), "2:11:22:33"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestPortFallbackName(t *testing.T) {
	if FallbackName != "Bluetooth MIDI" {
		t.Errorf("got %q, want %q", FallbackName, "Bluetooth MIDI")
	}
}
