// Package bleconn drives one BLE peripheral through the scan,
// connect, discover and subscribe/write sequence shared by both input
// and output connections.
package bleconn

// State is a position in the connection lifecycle.
type State int

const (
	Idle State = iota
	Scanning
	Resolved
	Connecting
	Connected
	Discovering
	Ready
	Subscribed
	Writable
	Closing
	Closed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Scanning:
		return "Scanning"
	case Resolved:
		return "Resolved"
	case Connecting:
		return "Connecting"
	case Connected:
		return "Connected"
	case Discovering:
		return "Discovering"
	case Ready:
		return "Ready"
	case Subscribed:
		return "Subscribed"
	case Writable:
		return "Writable"
	case Closing:
		return "Closing"
	case Closed:
		return "Closed"
	default:
		return "Unknown"
	}
}

// Tag is one of the stable, user-visible error strings a connection
// attempt can fail with.
type Tag string

const (
	TagRuntime         Tag = "failed to create Bluetooth runtime"
	TagManager         Tag = "failed to access Bluetooth manager"
	TagAdapters        Tag = "failed to query Bluetooth adapters"
	TagScan            Tag = "failed to start Bluetooth scan"
	TagPeripheralGone  Tag = "Bluetooth MIDI device no longer available"
	TagConnect         Tag = "failed to connect to Bluetooth MIDI device"
	TagDiscovery       Tag = "failed to discover Bluetooth MIDI services"
	TagCharacteristic  Tag = "Bluetooth MIDI characteristic not available"
	TagSubscribe       Tag = "failed to subscribe to Bluetooth MIDI notifications"
	TagNotification    Tag = "failed to receive Bluetooth MIDI notifications"
	TagSend            Tag = "failed to send Bluetooth MIDI data"
	TagVirtualNotSupp  Tag = "virtual Bluetooth MIDI ports are not supported"
)

// Error pairs a stable tag with the underlying cause, if any.
type Error struct {
	Tag   Tag
	Cause error
}

func (e *Error) Error() string { return string(e.Tag) }

func (e *Error) Unwrap() error { return e.Cause }

func fail(tag Tag, cause error) *Error { return &Error{Tag: tag, Cause: cause} }
