// Package bleoutput implements the output side of a BLE MIDI
// connection: a synchronous connect to Writable followed by
// encode-and-write sends.
package bleoutput

import (
	"context"

	"github.com/bleportable/blemidi/bleadapter"
	"github.com/bleportable/blemidi/bleconn"
	"github.com/bleportable/blemidi/bleport"
	"github.com/bleportable/blemidi/midi"
)

// Connection is a live output connection: the peripheral is connected
// and its MIDI characteristic is ready for write-without-response.
type Connection struct {
	machine *bleconn.Machine
}

// Connect drives port synchronously to Writable and returns a
// connection ready for Send.
func Connect(ctx context.Context, manager bleadapter.Manager, port bleport.Port) (*Connection, error) {
	machine, err := bleconn.Open(ctx, manager, port)
	if err != nil {
		return nil, err
	}
	machine.Writable()
	return &Connection{machine: machine}, nil
}

// Send encodes message via the BLE MIDI packet framing and performs
// one write-without-response per packet, in order. An empty message is
// a no-op.
func (c *Connection) Send(message []byte) error {
	if len(message) == 0 {
		return nil
	}
	for _, packet := range midi.Encode(message) {
		if err := c.machine.Write(packet); err != nil {
			return err
		}
	}
	return nil
}

// Close unsubscribes and disconnects, best-effort.
func (c *Connection) Close() {
	c.machine.Close()
}
