// Package fake is an in-memory bleadapter.Manager used by tests that
// exercise the connection state machine and façade without a real
// Bluetooth radio.
package fake

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/bleportable/blemidi/bleadapter"
)

// Peripheral is a scripted BLE peripheral: it advertises, accepts a
// connection, and serves one characteristic whose notifications are
// driven by the test via Notify.
type Peripheral struct {
	IDValue       string
	LocalName     string
	HasMIDI       bool
	ServiceUUID   string
	CharUUID      string
	ConnectErr    error
	DiscoverErr   error
	SubscribeErr  error
	WriteErr      error

	mu        sync.Mutex
	connected bool
	notify    func([]byte)
	written   [][]byte
}

// Written returns every payload handed to WriteWithoutResponse, in order.
func (p *Peripheral) Written() [][]byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([][]byte, len(p.written))
	copy(out, p.written)
	return out
}

// Notify delivers a characteristic notification to a subscribed handler.
// It is a no-op if nothing has subscribed yet.
func (p *Peripheral) Notify(payload []byte) {
	p.mu.Lock()
	handler := p.notify
	p.mu.Unlock()
	if handler != nil {
		handler(payload)
	}
}

func (p *Peripheral) ID() string { return p.IDValue }

func (p *Peripheral) IsConnected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.connected
}

func (p *Peripheral) Connect(ctx context.Context) error {
	if p.ConnectErr != nil {
		return p.ConnectErr
	}
	p.mu.Lock()
	p.connected = true
	p.mu.Unlock()
	return nil
}

func (p *Peripheral) Disconnect() error {
	p.mu.Lock()
	p.connected = false
	p.notify = nil
	p.mu.Unlock()
	return nil
}

func (p *Peripheral) DiscoverService(ctx context.Context, serviceUUID string) (bleadapter.Service, error) {
	if p.DiscoverErr != nil {
		return nil, p.DiscoverErr
	}
	if p.ServiceUUID != "" && serviceUUID != p.ServiceUUID {
		return nil, fmt.Errorf("service %s not advertised", serviceUUID)
	}
	return &service{peripheral: p}, nil
}

type service struct {
	peripheral *Peripheral
}

func (s *service) DiscoverCharacteristic(ctx context.Context, charUUID string) (bleadapter.Characteristic, error) {
	p := s.peripheral
	if p.DiscoverErr != nil {
		return nil, p.DiscoverErr
	}
	if p.CharUUID != "" && charUUID != p.CharUUID {
		return nil, fmt.Errorf("characteristic %s not found", charUUID)
	}
	return &characteristic{peripheral: p}, nil
}

type characteristic struct {
	peripheral *Peripheral
}

func (c *characteristic) EnableNotifications(handler func([]byte)) error {
	p := c.peripheral
	if p.SubscribeErr != nil {
		return p.SubscribeErr
	}
	p.mu.Lock()
	p.notify = handler
	p.mu.Unlock()
	return nil
}

func (c *characteristic) Unsubscribe() error {
	p := c.peripheral
	p.mu.Lock()
	p.notify = nil
	p.mu.Unlock()
	return nil
}

func (c *characteristic) WriteWithoutResponse(data []byte) (int, error) {
	p := c.peripheral
	if p.WriteErr != nil {
		return 0, p.WriteErr
	}
	p.mu.Lock()
	p.written = append(p.written, append([]byte(nil), data...))
	p.mu.Unlock()
	return len(data), nil
}

// Adapter is a scripted bleadapter.Adapter backed by a fixed set of
// peripherals, all of which advertise immediately when Scan starts.
type Adapter struct {
	Peripherals []*Peripheral
	ScanErr     error

	mu       sync.Mutex
	scanning bool
}

func (a *Adapter) Scan(ctx context.Context, onResult func(bleadapter.ScanResult)) error {
	if a.ScanErr != nil {
		return a.ScanErr
	}
	a.mu.Lock()
	a.scanning = true
	a.mu.Unlock()

	for _, p := range a.Peripherals {
		onResult(bleadapter.ScanResult{
			ID:             p.IDValue,
			LocalName:      p.LocalName,
			HasMIDIService: p.HasMIDI,
		})
	}

	<-ctx.Done()
	return ctx.Err()
}

func (a *Adapter) StopScan() error {
	a.mu.Lock()
	a.scanning = false
	a.mu.Unlock()
	return nil
}

func (a *Adapter) Peripheral(id string) (bleadapter.Peripheral, bool) {
	for _, p := range a.Peripherals {
		if p.IDValue == id {
			return p, true
		}
	}
	return nil, false
}

// Manager is a bleadapter.Manager exposing a fixed list of adapters.
type Manager struct {
	AdapterList []*Adapter
	Err         error
}

func (m *Manager) Adapters() ([]bleadapter.Adapter, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	out := make([]bleadapter.Adapter, len(m.AdapterList))
	for i, a := range m.AdapterList {
		out[i] = a
	}
	return out, nil
}

// ErrNoAdapters is an error a test can set as Manager.Err to stand in
// for what a host with Bluetooth disabled would report. A Manager with
// an empty AdapterList returns an empty list and no error.
var ErrNoAdapters = errors.New("no bluetooth adapters available")
