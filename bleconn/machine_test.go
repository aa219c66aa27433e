package bleconn

import (
	"context"
	"testing"
	"time"

	"github.com/bleportable/blemidi/bleadapter/fake"
	"github.com/bleportable/blemidi/bleport"
)

func init() {
	resolveWindow = 5 * time.Millisecond
}

func newFakePeripheral(id string) *fake.Peripheral {
	return &fake.Peripheral{
		IDValue:     id,
		LocalName:   "Test MIDI",
		HasMIDI:     true,
		ServiceUUID: ServiceUUID,
		CharUUID:    CharacteristicUUID,
	}
}

func TestOpenReachesReady(t *testing.T) {
	peripheral := newFakePeripheral("aa:bb")
	adapter := &fake.Adapter{Peripherals: []*fake.Peripheral{peripheral}}
	manager := &fake.Manager{AdapterList: []*fake.Adapter{adapter}}

	port := bleport.Port{AdapterIndex: 0, Peripheral: bleport.NewPeripheralID("aa:bb")}
	m, err := Open(context.Background(), manager, port)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if m.State() != Ready {
		t.Errorf("state = %v, want Ready", m.State())
	}
}

func TestOpenPeripheralGone(t *testing.T) {
	adapter := &fake.Adapter{Peripherals: nil}
	manager := &fake.Manager{AdapterList: []*fake.Adapter{adapter}}

	port := bleport.Port{AdapterIndex: 0, Peripheral: bleport.NewPeripheralID("missing")}
	_, err := Open(context.Background(), manager, port)
	connErr, ok := err.(*Error)
	if !ok {
		t.Fatalf("err = %v, want *Error", err)
	}
	if connErr.Tag != TagPeripheralGone {
		t.Errorf("tag = %v, want %v", connErr.Tag, TagPeripheralGone)
	}
}

func TestOpenAdapterIndexOutOfRange(t *testing.T) {
	manager := &fake.Manager{AdapterList: nil}
	port := bleport.Port{AdapterIndex: 3, Peripheral: bleport.NewPeripheralID("aa:bb")}
	_, err := Open(context.Background(), manager, port)
	connErr, ok := err.(*Error)
	if !ok || connErr.Tag != TagAdapters {
		t.Fatalf("err = %v, want *Error with tag %v", err, TagAdapters)
	}
}

func TestSubscribeAndWrite(t *testing.T) {
	peripheral := newFakePeripheral("aa:bb")
	adapter := &fake.Adapter{Peripherals: []*fake.Peripheral{peripheral}}
	manager := &fake.Manager{AdapterList: []*fake.Adapter{adapter}}

	port := bleport.Port{AdapterIndex: 0, Peripheral: bleport.NewPeripheralID("aa:bb")}
	m, err := Open(context.Background(), manager, port)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	received := make(chan []byte, 1)
	if err := m.Subscribe(func(payload []byte) { received <- payload }); err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	if m.State() != Subscribed {
		t.Errorf("state = %v, want Subscribed", m.State())
	}

	peripheral.Notify([]byte{0x80, 0x80, 0xFE})
	select {
	case payload := <-received:
		if len(payload) != 3 {
			t.Errorf("payload = %v, want 3 bytes", payload)
		}
	case <-time.After(time.Second):
		t.Fatal("notification not delivered")
	}

	if err := m.Write([]byte{0x80, 0x80, 0x90, 60, 100}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if got := peripheral.Written(); len(got) != 1 {
		t.Fatalf("written = %v, want 1 packet", got)
	}

	m.Close()
	if m.State() != Closed {
		t.Errorf("state = %v, want Closed", m.State())
	}
}
