package billing

import "github.com/practice/backend/internal/domain/shared"

var (
	// ErrNoValidPrice is returned when no level of the price chain yields an amount
	ErrNoValidPrice = shared.NewDomainError("NO_VALID_PRICE", "No valid price could be resolved")

	// ErrIncomeAccountUnmapped is returned when a recurring engagement has no income account
	ErrIncomeAccountUnmapped = shared.NewDomainError("INCOME_ACCOUNT_UNMAPPED", "No income account is mapped for the service or tenant")
)
