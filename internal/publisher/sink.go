package publisher

import (
	"context"
	"time"
)

// Envelope is one outgoing message, already serialized.
type Envelope struct {
	RoutingKey string
	Body       []byte
	MessageID  string
	Timestamp  time.Time
}

// Sink is the broker capability the publisher builds on. Implementations
// own the client library specifics; the publisher owns retry, reconnect
// and timeout policy. A Sink is used by one publisher at a time.
type Sink interface {
	// Connect establishes the underlying connection. Called again after
	// Alive turns false or after a failed publish.
	Connect(ctx context.Context) error

	// DeclareDestination idempotently ensures the durable destination
	// exists. Called after every successful Connect.
	DeclareDestination(ctx context.Context) error

	// Publish submits one envelope with persistent delivery. It returns
	// ErrUnconfirmed (possibly wrapped) when the broker accepted the
	// message but did not confirm it in time.
	Publish(ctx context.Context, env Envelope) error

	// Alive reports whether the connection is still usable. It turns
	// false when the peer closes the connection.
	Alive() bool

	// Close releases the connection. Safe to call more than once.
	Close() error
}
