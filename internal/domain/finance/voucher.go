package finance

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/practice/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// VoucherTypeCode is the kind of accounting document
type VoucherTypeCode string

const (
	VoucherTypeReceipt VoucherTypeCode = "RECEIPT"
	VoucherTypeJournal VoucherTypeCode = "JOURNAL"
	VoucherTypePayment VoucherTypeCode = "PAYMENT"
)

// IsValid checks if the voucher type code is valid
func (c VoucherTypeCode) IsValid() bool {
	switch c {
	case VoucherTypeReceipt, VoucherTypeJournal, VoucherTypePayment:
		return true
	}
	return false
}

// VoucherType is the tenant's configuration of a voucher kind
type VoucherType struct {
	ID       uuid.UUID       `json:"id"`
	TenantID uuid.UUID       `json:"tenant_id"`
	Code     VoucherTypeCode `json:"code"`
	Name     string          `json:"name"`
	Prefix   string          `json:"prefix"`
}

// FormatVoucherNumber returns prefix-NNNNN
func FormatVoucherNumber(prefix string, seq int64) string {
	return fmt.Sprintf("%s-%05d", prefix, seq)
}

// VoucherSequence extracts NNNNN from a prefix-NNNNN voucher number
func VoucherSequence(prefix, number string) (int64, bool) {
	digits, ok := strings.CutPrefix(number, prefix+"-")
	if !ok || digits == "" {
		return 0, false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	seq, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, false
	}
	return seq, true
}

// VoucherStatus represents the status of a voucher
type VoucherStatus string

const (
	VoucherStatusDraft     VoucherStatus = "draft"
	VoucherStatusPosted    VoucherStatus = "posted"
	VoucherStatusCancelled VoucherStatus = "cancelled"
)

var voucherTransitions = map[VoucherStatus][]VoucherStatus{
	VoucherStatusDraft:     {VoucherStatusPosted, VoucherStatusCancelled},
	VoucherStatusPosted:    {VoucherStatusDraft, VoucherStatusCancelled},
	VoucherStatusCancelled: {VoucherStatusDraft},
}

// IsValid checks if the status is a valid VoucherStatus
func (s VoucherStatus) IsValid() bool {
	_, ok := voucherTransitions[s]
	return ok
}

// String returns the string representation of VoucherStatus
func (s VoucherStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the voucher can move from s to the target status
func (s VoucherStatus) CanTransitionTo(target VoucherStatus) bool {
	for _, allowed := range voucherTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// VoucherEntry is one debit or credit line of a voucher
type VoucherEntry struct {
	ID        uuid.UUID       `json:"id"`
	VoucherID uuid.UUID       `json:"voucher_id"`
	AccountID uuid.UUID       `json:"account_id"`
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`
	Narration string          `json:"narration"`
	SortOrder int             `json:"sort_order"`
}

// Voucher is a double-entry accounting document
type Voucher struct {
	shared.TenantAggregateRoot
	VoucherNumber string          `json:"voucher_number"`
	VoucherTypeID uuid.UUID       `json:"voucher_type_id"`
	TypeCode      VoucherTypeCode `json:"type_code"`
	Status        VoucherStatus   `json:"status"`
	Date          time.Time       `json:"date"`
	InvoiceID     *uuid.UUID      `json:"invoice_id,omitempty"`
	Narration     string          `json:"narration"`
	PostedAt      *time.Time      `json:"posted_at,omitempty"`
	Entries       []VoucherEntry  `json:"entries"`
}

// NewVoucher creates a draft voucher without entries
func NewVoucher(tenantID uuid.UUID, vt VoucherType, number string, date time.Time, narration string) (*Voucher, error) {
	if number == "" {
		return nil, shared.NewDomainError("INVALID_VOUCHER_NUMBER", "Voucher number cannot be empty")
	}
	if !vt.Code.IsValid() {
		return nil, shared.NewDomainError("INVALID_VOUCHER_TYPE", "Invalid voucher type")
	}
	return &Voucher{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		VoucherNumber:       number,
		VoucherTypeID:       vt.ID,
		TypeCode:            vt.Code,
		Status:              VoucherStatusDraft,
		Date:                date,
		Narration:           narration,
		Entries:             make([]VoucherEntry, 0, 2),
	}, nil
}

// AddEntry appends a line. Exactly one of debit and credit must be positive.
func (v *Voucher) AddEntry(accountID uuid.UUID, debit, credit decimal.Decimal, narration string) error {
	if accountID == uuid.Nil {
		return shared.NewDomainError("INVALID_ACCOUNT", "Entry account cannot be empty")
	}
	if debit.IsNegative() || credit.IsNegative() || debit.IsPositive() == credit.IsPositive() {
		return shared.NewDomainError("INVALID_ENTRY", "Entry must have exactly one positive side")
	}
	v.Entries = append(v.Entries, VoucherEntry{
		ID:        uuid.New(),
		VoucherID: v.ID,
		AccountID: accountID,
		Debit:     debit,
		Credit:    credit,
		Narration: narration,
		SortOrder: len(v.Entries),
	})
	return nil
}

// Totals returns the debit and credit sums of the entries
func (v *Voucher) Totals() (debit, credit decimal.Decimal) {
	debit, credit = decimal.Zero, decimal.Zero
	for _, e := range v.Entries {
		debit = debit.Add(e.Debit)
		credit = credit.Add(e.Credit)
	}
	return debit, credit
}

// Validate checks the voucher has at least two entries whose debits equal its credits
func (v *Voucher) Validate() error {
	if len(v.Entries) < 2 {
		return ErrUnbalancedVoucher
	}
	debit, credit := v.Totals()
	if !debit.Equal(credit) || !debit.IsPositive() {
		return ErrUnbalancedVoucher
	}
	return nil
}

// Postings returns one ledger transaction per entry
func (v *Voucher) Postings() []LedgerTransaction {
	id := v.ID
	invoiceID := v.InvoiceID
	txs := make([]LedgerTransaction, 0, len(v.Entries))
	for i := range v.Entries {
		entryID := v.Entries[i].ID
		txs = append(txs, LedgerTransaction{
			ID:          uuid.New(),
			TenantID:    v.TenantID,
			AccountID:   v.Entries[i].AccountID,
			Debit:       v.Entries[i].Debit,
			Credit:      v.Entries[i].Credit,
			Date:        v.Date,
			Source:      SourceVoucher,
			InvoiceID:   invoiceID,
			VoucherID:   &id,
			EntryID:     &entryID,
			Description: v.Narration,
		})
	}
	return txs
}

// ChangeStatus moves the voucher to another status and raises VoucherStatusChanged.
// Posting requires balanced entries.
func (v *Voucher) ChangeStatus(to VoucherStatus, at time.Time) error {
	if !to.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Invalid voucher status")
	}
	from := v.Status
	if from == to {
		return nil
	}
	if !from.CanTransitionTo(to) {
		return shared.NewTransitionError("Voucher", string(from), string(to))
	}
	if to == VoucherStatusPosted {
		if err := v.Validate(); err != nil {
			return err
		}
		v.PostedAt = &at
	} else {
		v.PostedAt = nil
	}

	v.Status = to
	v.Touch()
	v.AddDomainEvent(NewVoucherStatusChangedEvent(v, from, to))
	return nil
}
