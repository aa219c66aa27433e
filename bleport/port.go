// Package bleport defines the stable port descriptor handed to callers
// of the façade, and the directory that discovers peripherals
// advertising the BLE MIDI service.
package bleport

import "fmt"

// FallbackName is used when a peripheral advertises no local name.
const FallbackName = "Bluetooth MIDI"

// PeripheralID is an opaque, comparable handle to a BLE peripheral as
// supplied by the host's BLE stack. Its textual form is stable only for
// the lifetime of the process.
type PeripheralID struct {
	raw string
}

// NewPeripheralID wraps a BLE stack's own address/identity string.
func NewPeripheralID(raw string) PeripheralID { return PeripheralID{raw: raw} }

func (id PeripheralID) String() string { return id.raw }

// Port is an immutable descriptor for a discovered BLE MIDI peripheral,
// usable as both an input and an output port.
type Port struct {
	AdapterIndex int
	Peripheral   PeripheralID
	Name         string
}

// Equal reports whether two ports refer to the same peripheral on the
// same adapter. Names are not compared.
func (p Port) Equal(other Port) bool {
	return p.AdapterIndex == other.AdapterIndex && p.Peripheral == other.Peripheral
}

// ID returns a stable-within-process identifier for the port.
func (p Port) ID() string {
	return fmt.Sprintf("%d:%s", p.AdapterIndex, p.Peripheral.String())
}
