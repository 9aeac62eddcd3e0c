package messaging

import (
	"context"
)

type Event interface {
	Subject() string
	Payload() ([]byte, error)
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NopPublisher discards events. Used when messaging is disabled in configuration.
type NopPublisher struct{}

func (NopPublisher) Publish(_ context.Context, _ Event) error { return nil }
