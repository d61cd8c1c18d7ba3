package finance

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionSource identifies what produced a ledger transaction
type TransactionSource string

const (
	SourceInvoice TransactionSource = "invoice"
	SourceVoucher TransactionSource = "voucher"
)

// LedgerTransaction is one posted debit or credit leg against an account
type LedgerTransaction struct {
	ID          uuid.UUID         `json:"id"`
	TenantID    uuid.UUID         `json:"tenant_id"`
	AccountID   uuid.UUID         `json:"account_id"`
	Debit       decimal.Decimal   `json:"debit"`
	Credit      decimal.Decimal   `json:"credit"`
	Date        time.Time         `json:"date"`
	Source      TransactionSource `json:"source"`
	InvoiceID   *uuid.UUID        `json:"invoice_id,omitempty"`
	VoucherID   *uuid.UUID        `json:"voucher_id,omitempty"` // nil for invoice-direct postings
	EntryID     *uuid.UUID        `json:"entry_id,omitempty"`
	Description string            `json:"description"`
	CreatedAt   time.Time         `json:"created_at"`
}

// Net returns debit - credit, the effect of the transaction on its account balance
func (t LedgerTransaction) Net() decimal.Decimal {
	return t.Debit.Sub(t.Credit)
}

// NewInvoicePosting returns the balanced pair Dr customer / Cr income for an invoice total
func NewInvoicePosting(tenantID, invoiceID, customerAccountID, incomeAccountID uuid.UUID, amount decimal.Decimal, date time.Time, description string) []LedgerTransaction {
	inv := invoiceID
	leg := func(account uuid.UUID, debit, credit decimal.Decimal) LedgerTransaction {
		return LedgerTransaction{
			ID:          uuid.New(),
			TenantID:    tenantID,
			AccountID:   account,
			Debit:       debit,
			Credit:      credit,
			Date:        date,
			Source:      SourceInvoice,
			InvoiceID:   &inv,
			Description: description,
		}
	}
	return []LedgerTransaction{
		leg(customerAccountID, amount, decimal.Zero),
		leg(incomeAccountID, decimal.Zero, amount),
	}
}

// IsBalanced checks that the legs debit and credit the same total
func IsBalanced(txs []LedgerTransaction) bool {
	sum := decimal.Zero
	for _, t := range txs {
		sum = sum.Add(t.Net())
	}
	return sum.IsZero()
}
