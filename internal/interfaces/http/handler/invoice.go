package handler

import (
	"github.com/gin-gonic/gin"
	appbilling "github.com/practice/backend/internal/application/billing"
	"github.com/practice/backend/internal/domain/billing"
	"github.com/practice/backend/internal/interfaces/http/dto"
)

// InvoiceHandler exposes invoice status changes. Posting and receipts follow
// from the status change inside the same request transaction.
type InvoiceHandler struct {
	BaseHandler
	invoices *appbilling.InvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoices *appbilling.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoices: invoices}
}

// ChangeStatus moves an invoice to another status
func (h *InvoiceHandler) ChangeStatus(c *gin.Context) {
	tenant, ok := h.requireTenant(c)
	if !ok {
		return
	}
	id, ok := h.bindID(c)
	if !ok {
		return
	}
	var req dto.StatusRequest
	if !h.bindJSON(c, &req) {
		return
	}

	inv, err := h.invoices.ChangeStatus(c.Request.Context(), appbilling.ChangeInvoiceStatusCommand{
		TenantID:  tenant,
		InvoiceID: id,
		Status:    billing.InvoiceStatus(req.Status),
		At:        parseAt(req.At),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, inv)
}
