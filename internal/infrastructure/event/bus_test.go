package event

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/practice/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type testEvent struct {
	shared.BaseDomainEvent
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "Test", uuid.New(), uuid.New())}
}

type testHandler struct {
	mu         sync.Mutex
	eventTypes []string
	handled    []shared.DomainEvent
	err        error
	panicWith  any
	onHandle   func()
}

func newTestHandler(eventTypes ...string) *testHandler {
	return &testHandler{eventTypes: eventTypes}
}

func (h *testHandler) EventTypes() []string { return h.eventTypes }

func (h *testHandler) Handle(_ context.Context, ev shared.DomainEvent) error {
	h.mu.Lock()
	h.handled = append(h.handled, ev)
	h.mu.Unlock()
	if h.onHandle != nil {
		h.onHandle()
	}
	if h.panicWith != nil {
		panic(h.panicWith)
	}
	return h.err
}

func (h *testHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handled)
}

func TestBus_PublishRoutesByType(t *testing.T) {
	bus := NewBus(zap.NewNop())
	completed := newTestHandler("PeriodCompleted")
	reopened := newTestHandler("TaskReopened")
	all := newTestHandler()
	bus.Subscribe(completed)
	bus.Subscribe(reopened)
	bus.Subscribe(all)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("PeriodCompleted"), nil, newTestEvent("Other")))

	assert.Equal(t, 1, completed.count())
	assert.Equal(t, 0, reopened.count())
	assert.Equal(t, 2, all.count())
}

func TestBus_SubscribeExplicitTypes(t *testing.T) {
	bus := NewBus(nil)
	h := newTestHandler("PeriodCompleted")
	bus.Subscribe(h, "InvoiceStatusChanged")

	_ = bus.Publish(context.Background(), newTestEvent("PeriodCompleted"), newTestEvent("InvoiceStatusChanged"))
	assert.Equal(t, 1, h.count())
}

func TestBus_RegistrationOrder(t *testing.T) {
	bus := NewBus(zap.NewNop())
	var order []string
	first := newTestHandler("E")
	first.onHandle = func() { order = append(order, "first") }
	second := newTestHandler("E")
	second.onHandle = func() { order = append(order, "second") }
	bus.Subscribe(first)
	bus.Subscribe(second)

	_ = bus.Publish(context.Background(), newTestEvent("E"))
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestBus_HandlerFailureIsIsolated(t *testing.T) {
	core, recorded := observer.New(zapcore.ErrorLevel)
	bus := NewBus(zap.New(core))

	failing := newTestHandler("E")
	failing.err = errors.New("boom")
	panicking := newTestHandler("E")
	panicking.panicWith = "kaboom"
	healthy := newTestHandler("E")
	bus.Subscribe(failing)
	bus.Subscribe(panicking)
	bus.Subscribe(healthy)

	err := bus.Publish(context.Background(), newTestEvent("E"))

	require.NoError(t, err)
	assert.Equal(t, 1, healthy.count())
	assert.Equal(t, 2, recorded.FilterMessage("event handler failed").Len())
	assert.Equal(t, 1, recorded.FilterMessage("event handler panicked").Len())
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus(zap.NewNop())
	h := newTestHandler("E")
	bus.Subscribe(h)
	bus.Unsubscribe(h)

	_ = bus.Publish(context.Background(), newTestEvent("E"))
	assert.Zero(t, h.count())
}
