package billing

import (
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ResolveTax returns round(amount * rate / 100, 2) and amount + tax
func ResolveTax(amount, ratePercent decimal.Decimal) (tax, total decimal.Decimal) {
	tax = amount.Mul(ratePercent).Div(hundred).Round(2)
	return tax, amount.Add(tax)
}

// PaymentTerms is an enumerated payment term
type PaymentTerms string

const (
	PaymentTermsNet15        PaymentTerms = "net_15"
	PaymentTermsNet30        PaymentTerms = "net_30"
	PaymentTermsNet45        PaymentTerms = "net_45"
	PaymentTermsNet60        PaymentTerms = "net_60"
	PaymentTermsDueOnReceipt PaymentTerms = "due_on_receipt"
)

// Days returns the offset of the terms from the issue date; unknown terms mean 30 days
func (t PaymentTerms) Days() int {
	switch t {
	case PaymentTermsNet15:
		return 15
	case PaymentTermsNet45:
		return 45
	case PaymentTermsNet60:
		return 60
	case PaymentTermsDueOnReceipt:
		return 0
	default:
		return 30
	}
}

// IsValid checks if the terms are one of the enumerated values
func (t PaymentTerms) IsValid() bool {
	switch t {
	case PaymentTermsNet15, PaymentTermsNet30, PaymentTermsNet45, PaymentTermsNet60, PaymentTermsDueOnReceipt:
		return true
	}
	return false
}

// ResolveDueDate returns the invoice due date for the terms
func ResolveDueDate(terms PaymentTerms, issueDate time.Time) time.Time {
	return issueDate.AddDate(0, 0, terms.Days())
}

// FirstTerms returns the first valid terms from the candidates
func FirstTerms(candidates ...PaymentTerms) PaymentTerms {
	for _, t := range candidates {
		if t.IsValid() {
			return t
		}
	}
	return PaymentTermsNet30
}
