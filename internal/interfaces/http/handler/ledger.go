package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appfinance "github.com/practice/backend/internal/application/finance"
	"github.com/practice/backend/internal/domain/finance"
	"github.com/practice/backend/internal/interfaces/http/dto"
)

// LedgerHandler exposes journal vouchers and the trial balance
type LedgerHandler struct {
	BaseHandler
	vouchers     *appfinance.VoucherService
	trialBalance *appfinance.TrialBalanceService
}

// NewLedgerHandler creates a new LedgerHandler
func NewLedgerHandler(vouchers *appfinance.VoucherService, trialBalance *appfinance.TrialBalanceService) *LedgerHandler {
	return &LedgerHandler{vouchers: vouchers, trialBalance: trialBalance}
}

// CreateJournal creates a draft journal voucher
func (h *LedgerHandler) CreateJournal(c *gin.Context) {
	tenant, ok := h.requireTenant(c)
	if !ok {
		return
	}
	var req dto.CreateJournalRequest
	if !h.bindJSON(c, &req) {
		return
	}
	date, err := time.Parse(dto.DateLayout, req.Date)
	if err != nil {
		h.BadRequest(c, "date must be a date")
		return
	}

	entries := make([]appfinance.JournalEntryInput, 0, len(req.Entries))
	for _, e := range req.Entries {
		entries = append(entries, appfinance.JournalEntryInput{
			AccountID: uuid.MustParse(e.AccountID),
			Debit:     e.Debit,
			Credit:    e.Credit,
			Narration: e.Narration,
		})
	}

	v, err := h.vouchers.CreateJournal(c.Request.Context(), appfinance.CreateJournalCommand{
		TenantID:  tenant,
		Date:      date,
		Narration: req.Narration,
		Entries:   entries,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, v)
}

// ChangeVoucherStatus posts, unposts or cancels a voucher
func (h *LedgerHandler) ChangeVoucherStatus(c *gin.Context) {
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

	v, err := h.vouchers.ChangeStatus(c.Request.Context(), appfinance.ChangeVoucherStatusCommand{
		TenantID:  tenant,
		VoucherID: id,
		Status:    finance.VoucherStatus(req.Status),
		At:        parseAt(req.At),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, v)
}

// TrialBalance compares every account balance with its transactions
func (h *LedgerHandler) TrialBalance(c *gin.Context) {
	tenant, ok := h.requireTenant(c)
	if !ok {
		return
	}
	result, err := h.trialBalance.Check(c.Request.Context(), tenant)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
