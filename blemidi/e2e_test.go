package blemidi

import (
	"bytes"
	"testing"
	"time"

	"github.com/bleportable/blemidi/bleadapter/fake"
	"github.com/bleportable/blemidi/bleconn"
	"github.com/bleportable/blemidi/bleport"
	"github.com/bleportable/blemidi/midi"
)

func fakeSetup(id string) (*fake.Peripheral, *fake.Manager) {
	peripheral := &fake.Peripheral{
		IDValue:     id,
		LocalName:   "Test MIDI",
		HasMIDI:     true,
		ServiceUUID: bleconn.ServiceUUID,
		CharUUID:    bleconn.CharacteristicUUID,
	}
	adapter := &fake.Adapter{Peripherals: []*fake.Peripheral{peripheral}}
	return peripheral, &fake.Manager{AdapterList: []*fake.Adapter{adapter}}
}

func TestEndToEndArpeggio(t *testing.T) {
	peripheral, manager := fakeSetup("aa:bb")
	out := &MidiOutput{manager: manager}
	port := bleport.Port{AdapterIndex: 0, Peripheral: bleport.NewPeripheralID("aa:bb")}

	conn, err := out.Connect(port)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer conn.Close()

	for _, msg := range [][]byte{{0x90, 60, 100}, {0x80, 60, 100}, {0x90, 64, 100}} {
		if err := conn.Send(msg); err != nil {
			t.Fatalf("Send() error = %v", err)
		}
	}

	want := [][]byte{
		{0x80, 0x80, 0x90, 0x3C, 0x64},
		{0x80, 0x80, 0x80, 0x3C, 0x64},
		{0x80, 0x80, 0x90, 0x40, 0x64},
	}
	got := peripheral.Written()
	if len(got) != len(want) {
		t.Fatalf("got %d writes, want %d", len(got), len(want))
	}
	for i := range want {
		if !bytes.Equal(got[i], want[i]) {
			t.Errorf("write %d = % X, want % X", i, got[i], want[i])
		}
	}
}

func TestEndToEndActiveSensingIgnored(t *testing.T) {
	peripheral, manager := fakeSetup("aa:bb")
	in := &MidiInput{manager: manager, ignore: midi.IgnoreActiveSense}
	port := bleport.Port{AdapterIndex: 0, Peripheral: bleport.NewPeripheralID("aa:bb")}

	calls := make(chan []byte, 1)
	conn, err := in.Connect(port, func(_ int64, msg []byte, _ interface{}) {
		calls <- msg
	}, nil)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer conn.Close()

	peripheral.Notify([]byte{0x80, 0x80, 0xFE})
	select {
	case msg := <-calls:
		t.Fatalf("unexpected callback: %v", msg)
	case <-time.After(50 * time.Millisecond):
	}
}
