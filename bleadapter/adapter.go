// Package bleadapter narrows the BLE central API down to the handful
// of operations the connection state machine (bleconn) needs, so that
// both a real tinygo.org/x/bluetooth-backed adapter and a fake for
// tests can satisfy the same interface.
package bleadapter

import (
	"context"
	"time"
)

// ScanResult is one advertisement observed during a scan.
type ScanResult struct {
	ID             string
	LocalName      string
	HasMIDIService bool
}

// Peripheral is a connected (or connectable) BLE peripheral.
type Peripheral interface {
	ID() string
	IsConnected() bool
	Connect(ctx context.Context) error
	Disconnect() error
	DiscoverService(ctx context.Context, serviceUUID string) (Service, error)
}

// Service is a GATT service on a peripheral.
type Service interface {
	DiscoverCharacteristic(ctx context.Context, charUUID string) (Characteristic, error)
}

// Characteristic is a single GATT characteristic value.
type Characteristic interface {
	EnableNotifications(handler func(payload []byte)) error
	Unsubscribe() error
	WriteWithoutResponse(data []byte) (int, error)
}

// Adapter is one BLE radio/central on the host.
type Adapter interface {
	// Scan starts scanning with no filter, invoking onResult for every
	// advertisement seen, until StopScan is called or ctx is done.
	Scan(ctx context.Context, onResult func(ScanResult)) error
	StopScan() error
	// Peripheral returns the peripheral most recently seen with this ID
	// during a scan. It does not itself scan.
	Peripheral(id string) (Peripheral, bool)
}

// Manager enumerates the adapters available on the host.
type Manager interface {
	Adapters() ([]Adapter, error)
}

// DiscoveryWindow is how long Directory.Enumerate lets each adapter's
// scan run before reading back results (§4.3).
const DiscoveryWindow = 400 * time.Millisecond

// ResolveWindow is how long the connection state machine scans before
// looking up the already-resolved peripheral by id (§4.4).
const ResolveWindow = 250 * time.Millisecond
