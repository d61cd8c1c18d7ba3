package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandlerRegistry(t *testing.T) {
	t.Run("typed handlers come before wildcard handlers", func(t *testing.T) {
		r := NewHandlerRegistry()
		typed := newTestHandler("A")
		wild := newTestHandler()
		r.Register(wild)
		r.Register(typed, "A")

		hs := r.GetHandlers("A")
		assert.Len(t, hs, 2)
		assert.Same(t, typed, hs[0])
		assert.Same(t, wild, hs[1])
		assert.Len(t, r.GetHandlers("B"), 1)
	})

	t.Run("duplicate registration is ignored", func(t *testing.T) {
		r := NewHandlerRegistry()
		h := newTestHandler("A")
		r.Register(h, "A")
		r.Register(h, "A")
		r.Register(h)

		assert.Len(t, r.GetHandlers("A"), 1)
	})

	t.Run("unregister drops empty types", func(t *testing.T) {
		r := NewHandlerRegistry()
		h := newTestHandler("A", "B")
		other := newTestHandler("B")
		r.Register(h, "A", "B")
		r.Register(other, "B")

		r.Unregister(h)

		assert.Empty(t, r.GetHandlers("A"))
		assert.Len(t, r.GetHandlers("B"), 1)
		_, ok := r.handlers["A"]
		assert.False(t, ok)
	})
}
