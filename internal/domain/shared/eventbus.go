package shared

import "context"

// EventHandler reacts to domain events. Handlers run on the publisher's goroutine
// and write through the transaction carried by ctx.
type EventHandler interface {
	Handle(ctx context.Context, event DomainEvent) error
	// EventTypes lists the event types the handler subscribes to
	EventTypes() []string
}

// EventPublisher dispatches the events pulled from saved aggregates
type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}
