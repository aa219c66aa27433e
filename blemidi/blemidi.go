// Package blemidi is the user-facing façade: MidiInput and MidiOutput
// construct from a client name, enumerate BLE MIDI ports, and connect
// to drive an input or output connection.
package blemidi

import (
	"context"

	"github.com/bleportable/blemidi/bleadapter"
	"github.com/bleportable/blemidi/bleconn"
	"github.com/bleportable/blemidi/bleinput"
	"github.com/bleportable/blemidi/bleoutput"
	"github.com/bleportable/blemidi/bleport"
	"github.com/bleportable/blemidi/midi"
)

// InitError reports that the Bluetooth manager could not be created.
type InitError struct {
	Tag   bleconn.Tag
	Cause error
}

func (e *InitError) Error() string { return string(e.Tag) }
func (e *InitError) Unwrap() error { return e.Cause }

// ConnectError reports a connection attempt that failed before
// reaching a usable state. It carries the façade the caller held, so a
// failed connect never strands the caller without its MidiInput or
// MidiOutput.
type ConnectError[T any] struct {
	Tag    bleconn.Tag
	Cause  error
	Facade T
}

func (e *ConnectError[T]) Error() string { return string(e.Tag) }
func (e *ConnectError[T]) Unwrap() error { return e.Cause }

func newManager() (bleadapter.Manager, error) {
	return bleadapter.TinyGoManager{}, nil
}

// MidiInput discovers and connects to BLE MIDI input peripherals.
type MidiInput struct {
	clientName string
	ignore     midi.Ignore
	manager    bleadapter.Manager

	ports []bleport.Port
}

// NewMidiInput constructs a MidiInput for clientName. The client name
// is not used over the wire; it exists for symmetry with the other
// backends' façades that must register a CoreMIDI/ALSA client.
func NewMidiInput(clientName string) (*MidiInput, error) {
	manager, err := newManager()
	if err != nil {
		return nil, &InitError{Tag: bleconn.TagRuntime, Cause: err}
	}
	return &MidiInput{clientName: clientName, manager: manager}, nil
}

// Ignore updates which message classes are dropped before reaching a
// connected input's callback.
func (m *MidiInput) Ignore(flags midi.Ignore) { m.ignore = flags }

// Ports enumerates BLE MIDI ports, refreshing the façade's cached port
// list. Infallible by contract: a transient failure yields an empty
// list.
func (m *MidiInput) Ports() []bleport.Port {
	m.ports = bleport.Directory{Manager: m.manager}.Enumerate(context.Background())
	return m.ports
}

// PortCount returns the number of ports in the list cached by the last
// Ports call. It does not scan; before any Ports call it returns 0.
func (m *MidiInput) PortCount() int { return len(m.ports) }

// PortName looks up the cached name for port, or bleport.FallbackName
// if it is not (or no longer) in the cached list.
func (m *MidiInput) PortName(port bleport.Port) string {
	for _, p := range m.ports {
		if p.Equal(port) {
			return p.Name
		}
	}
	return bleport.FallbackName
}

// InputConnection is a connected, streaming BLE MIDI input.
type InputConnection struct {
	facade *MidiInput
	conn   *bleinput.Connection
}

// Connect drives port to Subscribed and starts delivering decoded
// messages to callback on a dedicated goroutine. On failure it returns
// the MidiInput unchanged inside a *ConnectError so the caller is
// never left without its façade.
func (m *MidiInput) Connect(port bleport.Port, callback bleinput.Callback, userData interface{}) (*InputConnection, error) {
	conn, err := bleinput.Connect(context.Background(), m.manager, port, m.ignore, callback, userData)
	if err != nil {
		tag := bleconn.TagConnect
		if connErr, ok := err.(*bleconn.Error); ok {
			tag = connErr.Tag
		}
		return nil, &ConnectError[*MidiInput]{Tag: tag, Cause: err, Facade: m}
	}
	return &InputConnection{facade: m, conn: conn}, nil
}

// CreateVirtual always fails: BLE MIDI has no concept of a
// host-created virtual port.
func (m *MidiInput) CreateVirtual(name string) (*InputConnection, error) {
	return nil, &ConnectError[*MidiInput]{Tag: bleconn.TagVirtualNotSupp, Facade: m}
}

// Close stops the worker goroutine and returns the façade together
// with the user data originally passed to Connect.
func (c *InputConnection) Close() (*MidiInput, interface{}) {
	return c.facade, c.conn.Close()
}

// MidiOutput discovers and connects to BLE MIDI output peripherals.
type MidiOutput struct {
	clientName string
	manager    bleadapter.Manager

	ports []bleport.Port
}

// NewMidiOutput constructs a MidiOutput for clientName.
func NewMidiOutput(clientName string) (*MidiOutput, error) {
	manager, err := newManager()
	if err != nil {
		return nil, &InitError{Tag: bleconn.TagRuntime, Cause: err}
	}
	return &MidiOutput{clientName: clientName, manager: manager}, nil
}

// Ports enumerates BLE MIDI ports.
func (m *MidiOutput) Ports() []bleport.Port {
	m.ports = bleport.Directory{Manager: m.manager}.Enumerate(context.Background())
	return m.ports
}

// PortCount returns the number of ports in the list cached by the last
// Ports call. It does not scan; before any Ports call it returns 0.
func (m *MidiOutput) PortCount() int { return len(m.ports) }

// PortName looks up the cached name for port.
func (m *MidiOutput) PortName(port bleport.Port) string {
	for _, p := range m.ports {
		if p.Equal(port) {
			return p.Name
		}
	}
	return bleport.FallbackName
}

// OutputConnection is a connected, write-ready BLE MIDI output.
type OutputConnection struct {
	facade *MidiOutput
	conn   *bleoutput.Connection
}

// Connect synchronously drives port to Writable.
func (m *MidiOutput) Connect(port bleport.Port) (*OutputConnection, error) {
	conn, err := bleoutput.Connect(context.Background(), m.manager, port)
	if err != nil {
		tag := bleconn.TagConnect
		if connErr, ok := err.(*bleconn.Error); ok {
			tag = connErr.Tag
		}
		return nil, &ConnectError[*MidiOutput]{Tag: tag, Cause: err, Facade: m}
	}
	return &OutputConnection{facade: m, conn: conn}, nil
}

// CreateVirtual always fails: BLE MIDI has no concept of a
// host-created virtual port.
func (m *MidiOutput) CreateVirtual(name string) (*OutputConnection, error) {
	return nil, &ConnectError[*MidiOutput]{Tag: bleconn.TagVirtualNotSupp, Facade: m}
}

// Send encodes and writes message, blocking the caller.
func (c *OutputConnection) Send(message []byte) error {
	return c.conn.Send(message)
}

// Close unsubscribes and disconnects, best-effort, and returns the
// façade.
func (c *OutputConnection) Close() *MidiOutput {
	c.conn.Close()
	return c.facade
}
