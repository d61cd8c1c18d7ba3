package finance

import (
	"github.com/google/uuid"
	"github.com/practice/backend/internal/domain/shared"
)

// EventTypeVoucherStatusChanged is raised on every accepted voucher status change
const EventTypeVoucherStatusChanged = "VoucherStatusChanged"

// VoucherStatusChangedEvent is raised when a voucher changes status
type VoucherStatusChangedEvent struct {
	shared.BaseDomainEvent
	VoucherID     uuid.UUID       `json:"voucher_id"`
	VoucherNumber string          `json:"voucher_number"`
	TypeCode      VoucherTypeCode `json:"type_code"`
	FromStatus    VoucherStatus   `json:"from_status"`
	ToStatus      VoucherStatus   `json:"to_status"`
}

// EventType returns the event type name
func (e *VoucherStatusChangedEvent) EventType() string {
	return EventTypeVoucherStatusChanged
}

// NewVoucherStatusChangedEvent creates a new VoucherStatusChangedEvent
func NewVoucherStatusChangedEvent(v *Voucher, from, to VoucherStatus) *VoucherStatusChangedEvent {
	return &VoucherStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeVoucherStatusChanged, "Voucher", v.ID, v.TenantID),
		VoucherID:       v.ID,
		VoucherNumber:   v.VoucherNumber,
		TypeCode:        v.TypeCode,
		FromStatus:      from,
		ToStatus:        to,
	}
}
