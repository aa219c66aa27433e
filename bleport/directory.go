package bleport

import (
	"context"

	"github.com/bleportable/blemidi/bleadapter"
)

// discoveryWindow is how long Directory.Enumerate lets each adapter
// scan before reading back what it has seen.
var discoveryWindow = bleadapter.DiscoveryWindow

// Directory discovers peripherals advertising the BLE MIDI service
// across every adapter the host exposes.
type Directory struct {
	Manager bleadapter.Manager
}

// Enumerate lists ports by scanning every adapter in turn for
// discoveryWindow and keeping peripherals that advertise the MIDI
// service. Failure to acquire the manager or an adapter yields an
// empty list rather than an error: port enumeration is infallible by
// contract.
func (d Directory) Enumerate(ctx context.Context) []Port {
	adapters, err := d.Manager.Adapters()
	if err != nil {
		return nil
	}

	var ports []Port
	for index, adapter := range adapters {
		ports = append(ports, scanAdapter(ctx, index, adapter)...)
	}
	return ports
}

func scanAdapter(ctx context.Context, index int, adapter bleadapter.Adapter) []Port {
	scanCtx, cancel := context.WithTimeout(ctx, discoveryWindow)
	defer cancel()

	var results []bleadapter.ScanResult
	done := make(chan error, 1)
	go func() {
		done <- adapter.Scan(scanCtx, func(r bleadapter.ScanResult) {
			results = append(results, r)
		})
	}()

	<-scanCtx.Done()
	adapter.StopScan()
	<-done

	var ports []Port
	seen := make(map[string]bool)
	for _, r := range results {
		if !r.HasMIDIService || seen[r.ID] {
			continue
		}
		seen[r.ID] = true
		name := r.LocalName
		if name == "" {
			name = FallbackName
		}
		ports = append(ports, Port{
			AdapterIndex: index,
			Peripheral:   NewPeripheralID(r.ID),
			Name:         name,
		})
	}
	return ports
}
