package finance

import "github.com/practice/backend/internal/domain/shared"

var (
	// ErrReceiptAccountMissing is returned when a receipt cannot find its cash/bank or customer account
	ErrReceiptAccountMissing = shared.NewDomainError("RECEIPT_ACCOUNT_MISSING", "Receipt requires a cash/bank default and a customer account")

	// ErrVoucherTypeMissing is returned when the tenant has no voucher type for a code
	ErrVoucherTypeMissing = shared.NewDomainError("VOUCHER_TYPE_MISSING", "Voucher type is not configured")

	// ErrUnbalancedVoucher is returned when entries number fewer than two or debits differ from credits
	ErrUnbalancedVoucher = shared.NewDomainError("UNBALANCED_VOUCHER", "Voucher entries must balance")
)
