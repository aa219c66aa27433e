// Package bleinput hosts the background worker that drives an input
// connection's state machine and bridges decoded MIDI messages to a
// user callback.
package bleinput

import (
	"context"
	"sync"
	"time"

	"github.com/bleportable/blemidi/bleadapter"
	"github.com/bleportable/blemidi/bleconn"
	"github.com/bleportable/blemidi/bleport"
	"github.com/bleportable/blemidi/midi"
)

// Callback receives one decoded MIDI message: a host-clock timestamp
// in microseconds since the connection's worker started, the message
// bytes, and the user data supplied at Connect. It never runs
// concurrently with itself.
type Callback func(timestampMicros int64, message []byte, userData interface{})

// handlerData is the state shared between the caller and the worker
// goroutine. The mutex serialises the notification handler, SetIgnore
// and the worker's shutdown step that sets closed.
type handlerData struct {
	mu       sync.Mutex
	ignore   midi.Ignore
	callback Callback
	userData interface{}
	parser   midi.ParserState
	closed   bool
}

// Connection is a live input connection: a dedicated goroutine running
// the input loop, and the handler data it bridges notifications
// through.
type Connection struct {
	handler *handlerData

	shutdown chan struct{}
	done     chan struct{}

	startTime time.Time
}

// Connect resolves port, drives it to Subscribed, and starts the
// background worker goroutine (the "blemidi-in" loop). It blocks until
// the worker either starts streaming notifications or fails; on
// failure the worker has already exited and the returned error is a
// *bleconn.Error carrying the stable failure tag.
func Connect(ctx context.Context, manager bleadapter.Manager, port bleport.Port, ignore midi.Ignore, callback Callback, userData interface{}) (*Connection, error) {
	c := &Connection{
		handler: &handlerData{
			ignore:   ignore,
			callback: callback,
			userData: userData,
		},
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}

	init := make(chan error, 1)
	go c.run(ctx, manager, port, init)

	if err := <-init; err != nil {
		<-c.done
		return nil, err
	}
	return c, nil
}

// run is the body of the "blemidi-in" worker goroutine: it drives the
// connection to Subscribed, reports init success or failure, then
// blocks until shutdown is signalled.
func (c *Connection) run(ctx context.Context, manager bleadapter.Manager, port bleport.Port, init chan<- error) {
	defer close(c.done)

	machine, err := bleconn.Open(ctx, manager, port)
	if err != nil {
		init <- err
		return
	}

	if err := machine.Subscribe(c.onNotification); err != nil {
		machine.Close()
		init <- err
		return
	}

	c.startTime = time.Now()
	init <- nil

	<-c.shutdown

	c.handler.mu.Lock()
	c.handler.closed = true
	c.handler.mu.Unlock()

	machine.Close()
}

// onNotification decodes one BLE notification payload under the
// handler mutex, filters it, and invokes the callback for each
// surviving message. It is a no-op once the connection has begun
// closing: the worker must never call the callback after shutdown.
func (c *Connection) onNotification(payload []byte) {
	c.handler.mu.Lock()
	defer c.handler.mu.Unlock()

	if c.handler.closed {
		return
	}

	messages := midi.Filter(c.handler.ignore, midi.Decode(payload, &c.handler.parser))
	timestamp := time.Since(c.startTime).Microseconds()
	for _, msg := range messages {
		c.handler.callback(timestamp, msg, c.handler.userData)
	}
}

// SetIgnore updates the active ignore flags.
func (c *Connection) SetIgnore(flags midi.Ignore) {
	c.handler.mu.Lock()
	c.handler.ignore = flags
	c.handler.mu.Unlock()
}

// Close signals the worker to shut down, waits for it to exit, and
// returns the user data supplied at Connect.
func (c *Connection) Close() interface{} {
	close(c.shutdown)
	<-c.done
	return c.handler.userData
}
