package testutil

import (
	"errors"
	"sync"
)

// RecordedEvent is one outbound event captured by FakeConn.
type RecordedEvent struct {
	Event   string
	Payload interface{}
}

// FakeConn records every event sent to it. It satisfies presence.Conn.
type FakeConn struct {
	id string

	mu     sync.Mutex
	events []RecordedEvent
	broken bool
}

func NewFakeConn(id string) *FakeConn {
	return &FakeConn{id: id}
}

func (c *FakeConn) ID() string {
	return c.id
}

func (c *FakeConn) Send(event string, payload interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.broken {
		return errors.New("connection closed")
	}
	c.events = append(c.events, RecordedEvent{Event: event, Payload: payload})
	return nil
}

// Break makes every later Send fail.
func (c *FakeConn) Break() {
	c.mu.Lock()
	c.broken = true
	c.mu.Unlock()
}

func (c *FakeConn) Events() []RecordedEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]RecordedEvent, len(c.events))
	copy(out, c.events)
	return out
}

// Payloads returns the payloads of every captured event with the given name.
func (c *FakeConn) Payloads(event string) []interface{} {
	var out []interface{}
	for _, e := range c.Events() {
		if e.Event == event {
			out = append(out, e.Payload)
		}
	}
	return out
}

func (c *FakeConn) Count(event string) int {
	return len(c.Payloads(event))
}

func (c *FakeConn) Reset() {
	c.mu.Lock()
	c.events = nil
	c.mu.Unlock()
}
