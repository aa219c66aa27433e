package bleadapter

import (
	"context"
	"fmt"
	"sync"

	"tinygo.org/x/bluetooth"
)

// TinyGoManager exposes the host's Bluetooth radio through
// tinygo.org/x/bluetooth. Real hardware backends expose a single
// default adapter per process; TinyGoManager reports that one adapter
// at index 0 rather than pretending to enumerate several.
type TinyGoManager struct{}

func (TinyGoManager) Adapters() ([]Adapter, error) {
	adapter := bluetooth.DefaultAdapter
	if err := adapter.Enable(); err != nil {
		return nil, fmt.Errorf("enable default adapter: %w", err)
	}
	return []Adapter{&tinyGoAdapter{adapter: adapter}}, nil
}

type tinyGoAdapter struct {
	adapter *bluetooth.Adapter

	mu      sync.Mutex
	seen    map[string]bluetooth.ScanResult
	scanErr error
}

func (a *tinyGoAdapter) Scan(ctx context.Context, onResult func(ScanResult)) error {
	a.mu.Lock()
	if a.seen == nil {
		a.seen = make(map[string]bluetooth.ScanResult)
	}
	a.mu.Unlock()

	done := make(chan error, 1)
	go func() {
		done <- a.adapter.Scan(func(_ *bluetooth.Adapter, result bluetooth.ScanResult) {
			id := result.Address.String()

			a.mu.Lock()
			a.seen[id] = result
			a.mu.Unlock()

			onResult(ScanResult{
				ID:             id,
				LocalName:      result.LocalName(),
				HasMIDIService: result.HasServiceUUID(midiServiceUUID),
			})
		})
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		a.adapter.StopScan()
		<-done
		return ctx.Err()
	}
}

func (a *tinyGoAdapter) StopScan() error {
	return a.adapter.StopScan()
}

func (a *tinyGoAdapter) Peripheral(id string) (Peripheral, bool) {
	a.mu.Lock()
	result, ok := a.seen[id]
	a.mu.Unlock()
	if !ok {
		return nil, false
	}
	return &tinyGoPeripheral{adapter: a.adapter, address: result.Address, id: id}, true
}

type tinyGoPeripheral struct {
	adapter *bluetooth.Adapter
	address bluetooth.Address
	id      string

	mu        sync.Mutex
	device    *bluetooth.Device
	connected bool
}

func (p *tinyGoPeripheral) ID() string { return p.id }

func (p *tinyGoPeripheral) IsConnected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.connected
}

func (p *tinyGoPeripheral) Connect(ctx context.Context) error {
	device, err := p.adapter.Connect(p.address, bluetooth.ConnectionParams{})
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.device = &device
	p.connected = true
	p.mu.Unlock()
	return nil
}

func (p *tinyGoPeripheral) Disconnect() error {
	p.mu.Lock()
	device := p.device
	p.connected = false
	p.mu.Unlock()
	if device == nil {
		return nil
	}
	return device.Disconnect()
}

func (p *tinyGoPeripheral) DiscoverService(ctx context.Context, serviceUUID string) (Service, error) {
	uuid, err := bluetooth.ParseUUID(serviceUUID)
	if err != nil {
		return nil, fmt.Errorf("parse service uuid: %w", err)
	}
	services, err := p.device.DiscoverServices([]bluetooth.UUID{uuid})
	if err != nil {
		return nil, err
	}
	if len(services) == 0 {
		return nil, fmt.Errorf("service %s not found", serviceUUID)
	}
	return &tinyGoService{service: services[0]}, nil
}

type tinyGoService struct {
	service bluetooth.DeviceService
}

func (s *tinyGoService) DiscoverCharacteristic(ctx context.Context, charUUID string) (Characteristic, error) {
	uuid, err := bluetooth.ParseUUID(charUUID)
	if err != nil {
		return nil, fmt.Errorf("parse characteristic uuid: %w", err)
	}
	chars, err := s.service.DiscoverCharacteristics([]bluetooth.UUID{uuid})
	if err != nil {
		return nil, err
	}
	if len(chars) == 0 {
		return nil, fmt.Errorf("characteristic %s not found", charUUID)
	}
	return &tinyGoCharacteristic{char: chars[0]}, nil
}

type tinyGoCharacteristic struct {
	char bluetooth.DeviceCharacteristic
}

func (c *tinyGoCharacteristic) EnableNotifications(handler func(payload []byte)) error {
	return c.char.EnableNotifications(func(buf []byte) {
		payload := make([]byte, len(buf))
		copy(payload, buf)
		handler(payload)
	})
}

func (c *tinyGoCharacteristic) Unsubscribe() error {
	return c.char.EnableNotifications(nil)
}

func (c *tinyGoCharacteristic) WriteWithoutResponse(data []byte) (int, error) {
	return c.char.WriteWithoutResponse(data)
}

// midiServiceUUID is the Bluetooth SIG BLE MIDI service UUID.
var midiServiceUUID = mustParseUUID("03B80E5A-EDE8-4B33-A751-6CE34EC4C700")

func mustParseUUID(s string) bluetooth.UUID {
	uuid, err := bluetooth.ParseUUID(s)
	if err != nil {
		panic(err)
	}
	return uuid
}
