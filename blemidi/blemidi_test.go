package blemidi

import (
	"testing"

	"github.com/bleportable/blemidi/bleconn"
	"github.com/bleportable/blemidi/bleport"
)

func TestCreateVirtualAlwaysFails(t *testing.T) {
	in := &MidiInput{}
	_, err := in.CreateVirtual("virtual port")
	connErr, ok := err.(*ConnectError[*MidiInput])
	if !ok {
		t.Fatalf("err = %v, want *ConnectError[*MidiInput]", err)
	}
	if connErr.Tag != bleconn.TagVirtualNotSupp {
		t.Errorf("tag = %v, want %v", connErr.Tag, bleconn.TagVirtualNotSupp)
	}

	out := &MidiOutput{}
	_, err = out.CreateVirtual("virtual port")
	outErr, ok := err.(*ConnectError[*MidiOutput])
	if !ok || outErr.Tag != bleconn.TagVirtualNotSupp {
		t.Fatalf("err = %v, want *ConnectError[*MidiOutput] with tag %v", err, bleconn.TagVirtualNotSupp)
	}
}

func TestPortNameFallsBackWhenUncached(t *testing.T) {
	in := &MidiInput{}
	port := bleport.Port{AdapterIndex: 0, Peripheral: bleport.NewPeripheralID("aa:bb")}
	if got := in.PortName(port); got != bleport.FallbackName {
		t.Errorf("got %q, want %q", got, bleport.FallbackName)
	}
}
