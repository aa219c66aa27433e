package bleconn

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/bleportable/blemidi/bleadapter"
	"github.com/bleportable/blemidi/bleport"
)

// ServiceUUID and CharacteristicUUID are the Bluetooth SIG MIDI over
// BLE identifiers used by both input and output connections.
const (
	ServiceUUID        = "03B80E5A-EDE8-4B33-A751-6CE34EC4C700"
	CharacteristicUUID = "7772E5DB-3868-4112-A1A9-F2669D106BF3"
)

// resolveWindow is how long Machine.Open scans before looking up the
// peripheral it is trying to reach.
var resolveWindow = bleadapter.ResolveWindow

// Machine drives one peripheral from Idle to Ready (Connected,
// services and the MIDI characteristic discovered) and back down
// through Closing to Closed. Callers drive the input- or
// output-specific terminal state (Subscribed or Writable) themselves.
type Machine struct {
	id    string
	state State

	adapter        bleadapter.Adapter
	peripheral     bleadapter.Peripheral
	characteristic bleadapter.Characteristic
}

// ID is a per-attempt correlation ID, generated fresh by Open, useful
// for tying log lines and metrics to one connection attempt.
func (m *Machine) ID() string { return m.id }

// Open resolves the peripheral named by port on the given manager and
// drives the machine to Ready: connected, with services and the MIDI
// characteristic discovered. It always attempts to stop the scan
// before returning, success or failure.
func Open(ctx context.Context, manager bleadapter.Manager, port bleport.Port) (*Machine, error) {
	m := &Machine{id: uuid.NewString(), state: Idle}

	adapters, err := manager.Adapters()
	if err != nil {
		return nil, fail(TagAdapters, err)
	}
	if port.AdapterIndex < 0 || port.AdapterIndex >= len(adapters) {
		return nil, fail(TagAdapters, fmt.Errorf("adapter index %d out of range (have %d)", port.AdapterIndex, len(adapters)))
	}
	m.adapter = adapters[port.AdapterIndex]

	m.state = Scanning
	scanCtx, cancelScan := context.WithTimeout(ctx, resolveWindow)
	defer cancelScan()

	scanErr := make(chan error, 1)
	go func() {
		scanErr <- m.adapter.Scan(scanCtx, func(bleadapter.ScanResult) {})
	}()

	<-scanCtx.Done()
	m.adapter.StopScan()
	if err := <-scanErr; err != nil && err != context.DeadlineExceeded && err != context.Canceled {
		return nil, fail(TagScan, err)
	}

	m.state = Resolved
	peripheral, ok := m.adapter.Peripheral(port.Peripheral.String())
	if !ok {
		return nil, fail(TagPeripheralGone, nil)
	}
	m.peripheral = peripheral

	m.state = Connecting
	if !peripheral.IsConnected() {
		if err := peripheral.Connect(ctx); err != nil {
			return nil, fail(TagConnect, err)
		}
	}
	m.state = Connected

	m.state = Discovering
	service, err := peripheral.DiscoverService(ctx, ServiceUUID)
	if err != nil {
		peripheral.Disconnect()
		return nil, fail(TagDiscovery, err)
	}
	characteristic, err := service.DiscoverCharacteristic(ctx, CharacteristicUUID)
	if err != nil {
		peripheral.Disconnect()
		return nil, fail(TagCharacteristic, err)
	}
	m.characteristic = characteristic

	m.state = Ready
	return m, nil
}

// Subscribe drives Ready to Subscribed, enabling notifications.
func (m *Machine) Subscribe(handler func(payload []byte)) error {
	if err := m.characteristic.EnableNotifications(handler); err != nil {
		return fail(TagSubscribe, err)
	}
	m.state = Subscribed
	return nil
}

// Writable drives Ready to Writable. No BLE operation is required;
// write-without-response needs no prior subscription.
func (m *Machine) Writable() {
	m.state = Writable
}

// Write performs one write-without-response of a single BLE packet.
func (m *Machine) Write(packet []byte) error {
	if _, err := m.characteristic.WriteWithoutResponse(packet); err != nil {
		return fail(TagSend, err)
	}
	return nil
}

// State returns the machine's current position in the lifecycle.
func (m *Machine) State() State { return m.state }

// Close tears the connection down: unsubscribe then disconnect,
// best-effort. Errors are never returned; teardown is advisory.
func (m *Machine) Close() {
	m.state = Closing
	if m.characteristic != nil {
		m.characteristic.Unsubscribe()
	}
	if m.peripheral != nil {
		m.peripheral.Disconnect()
	}
	m.state = Closed
}
