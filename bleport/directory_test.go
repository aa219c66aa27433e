package bleport

import (
	"context"
	"testing"
	"time"

	"github.com/bleportable/blemidi/bleadapter/fake"
)

func init() {
	discoveryWindow = 5 * time.Millisecond
}

func TestEnumerateFiltersByMIDIService(t *testing.T) {
	midi := &fake.Peripheral{IDValue: "aa:bb", LocalName: "Keyboard", HasMIDI: true}
	other := &fake.Peripheral{IDValue: "cc:dd", LocalName: "Headphones", HasMIDI: false}
	adapter := &fake.Adapter{Peripherals: []*fake.Peripheral{midi, other}}
	manager := &fake.Manager{AdapterList: []*fake.Adapter{adapter}}

	ports := Directory{Manager: manager}.Enumerate(context.Background())
	if len(ports) != 1 {
		t.Fatalf("got %d ports, want 1: %v", len(ports), ports)
	}
	if ports[0].Name != "Keyboard" {
		t.Errorf("name = %q, want %q", ports[0].Name, "Keyboard")
	}
	if ports[0].AdapterIndex != 0 {
		t.Errorf("adapter index = %d, want 0", ports[0].AdapterIndex)
	}
}

func TestEnumerateFallbackName(t *testing.T) {
	midi := &fake.Peripheral{IDValue: "aa:bb", LocalName: "", HasMIDI: true}
	adapter := &fake.Adapter{Peripherals: []*fake.Peripheral{midi}}
	manager := &fake.Manager{AdapterList: []*fake.Adapter{adapter}}

	ports := Directory{Manager: manager}.Enumerate(context.Background())
	if len(ports) != 1 || ports[0].Name != FallbackName {
		t.Fatalf("got %v, want one port named %q", ports, FallbackName)
	}
}

func TestEnumerateManagerErrorYieldsEmptyList(t *testing.T) {
	manager := &fake.Manager{Err: fake.ErrNoAdapters}
	ports := Directory{Manager: manager}.Enumerate(context.Background())
	if ports != nil {
		t.Errorf("got %v, want nil", ports)
	}
}
