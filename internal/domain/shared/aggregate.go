package shared

import "github.com/google/uuid"

// TenantAggregateRoot is the root of every engine aggregate. It buffers the events
// raised by state changes until the application service has saved the aggregate
// and pulls them for publishing.
type TenantAggregateRoot struct {
	BaseEntity
	TenantID uuid.UUID `json:"tenant_id"`

	pending []DomainEvent
}

// NewTenantAggregateRoot creates a new tenant-scoped aggregate root
func NewTenantAggregateRoot(tenantID uuid.UUID) TenantAggregateRoot {
	return TenantAggregateRoot{BaseEntity: NewBaseEntity(), TenantID: tenantID}
}

// AddDomainEvent queues event for publishing
func (a *TenantAggregateRoot) AddDomainEvent(event DomainEvent) {
	a.pending = append(a.pending, event)
}

// GetDomainEvents returns the queued events without clearing them
func (a *TenantAggregateRoot) GetDomainEvents() []DomainEvent {
	return a.pending
}

// ClearDomainEvents drops the queued events
func (a *TenantAggregateRoot) ClearDomainEvents() {
	a.pending = nil
}

// PullDomainEvents returns the queued events and clears them
func (a *TenantAggregateRoot) PullDomainEvents() []DomainEvent {
	events := a.pending
	a.pending = nil
	return events
}
