// Package domain contains the core types shared across the relay:
// the viewer connection contract and the frame value.
package domain

import "time"

// Connection is a handle to a single viewer's persistent transport.
// The registry holds connections for lookup and fan-out; lifecycle
// (creation on accept, teardown on close or error) belongs to the
// handler that accepted the connection. A registered connection is
// believed live, but liveness is advisory until a send proves it.
type Connection interface {
	// ID uniquely identifies the connection for registry membership.
	ID() string

	// Send queues one message for delivery. A non-nil error means the
	// connection is dead or cannot keep up and should be evicted.
	Send(data []byte) error

	// IsClosed reports whether the transport is known to be closed.
	IsClosed() bool

	// Close tears down the transport. Safe to call more than once.
	Close(reason string)
}

// Frame is one published image payload. The relay treats the data as
// an opaque, already-validated blob; MediaType travels with it so
// viewers know how to render it.
type Frame struct {
	Data        []byte
	MediaType   string
	PublishedAt time.Time
}

// IsEmpty reports whether the frame carries no payload.
func (f Frame) IsEmpty() bool {
	return len(f.Data) == 0
}
