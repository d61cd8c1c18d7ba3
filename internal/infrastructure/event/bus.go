// Package event dispatches domain events to their handlers in-process.
package event

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/practice/backend/internal/domain/shared"
	"github.com/practice/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// Bus delivers events synchronously on the publisher's goroutine, in handler
// registration order. A handler failure or panic is logged and never reaches the
// publisher, so the mutation that raised the event still commits.
type Bus struct {
	registry *HandlerRegistry
	logger   *zap.Logger
}

// NewBus creates an empty bus
func NewBus(l *zap.Logger) *Bus {
	if l == nil {
		l = zap.NewNop()
	}
	return &Bus{registry: NewHandlerRegistry(), logger: l.Named("event_bus")}
}

// Publish delivers each event to every handler subscribed to its type. It always
// returns nil.
func (b *Bus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	for _, ev := range events {
		if ev == nil {
			continue
		}
		for _, h := range b.registry.GetHandlers(ev.EventType()) {
			if err := b.dispatch(ctx, h, ev); err != nil {
				logger.Enrich(ctx, b.logger).Error("event handler failed",
					zap.String("event_type", ev.EventType()),
					zap.String("event_id", ev.EventID().String()),
					zap.String("aggregate_type", ev.AggregateType()),
					zap.String("aggregate_id", ev.AggregateID().String()),
					zap.String("handler", fmt.Sprintf("%T", h)),
					zap.Error(err),
				)
			}
		}
	}
	return nil
}

// Subscribe registers handler for eventTypes, or for handler.EventTypes() when none are given
func (b *Bus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	b.registry.Register(handler, eventTypes...)
	b.logger.Debug("handler subscribed",
		zap.String("handler", fmt.Sprintf("%T", handler)),
		zap.Strings("event_types", eventTypes),
	)
}

// Unsubscribe removes handler from every event type
func (b *Bus) Unsubscribe(handler shared.EventHandler) {
	b.registry.Unregister(handler)
}

func (b *Bus) dispatch(ctx context.Context, h shared.EventHandler, ev shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
			logger.Enrich(ctx, b.logger).Error("event handler panicked",
				zap.String("event_type", ev.EventType()),
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()),
			)
		}
	}()
	return h.Handle(ctx, ev)
}

var _ shared.EventPublisher = (*Bus)(nil)
