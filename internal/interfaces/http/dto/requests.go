package dto

import "github.com/shopspring/decimal"

// DateLayout is the layout of date-only request fields
const DateLayout = "2006-01-02"

// GenerateRequest asks for the periods and tasks of an engagement up to as_of
type GenerateRequest struct {
	AsOf string `json:"as_of" binding:"required,datetime=2006-01-02"`
}

// StatusRequest moves an engagement, task, invoice or voucher to another status
type StatusRequest struct {
	Status string `json:"status" binding:"required,max=20"`
	// At is the RFC 3339 time of the change, defaulting to the server clock
	At string `json:"at" binding:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

// JournalEntryRequest is one line of a journal voucher
type JournalEntryRequest struct {
	AccountID string          `json:"account_id" binding:"required,uuid"`
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`
	Narration string          `json:"narration" binding:"max=500"`
}

// CreateJournalRequest creates a draft journal voucher
type CreateJournalRequest struct {
	Date      string                `json:"date" binding:"required,datetime=2006-01-02"`
	Narration string                `json:"narration" binding:"max=500"`
	Entries   []JournalEntryRequest `json:"entries" binding:"required,min=2,dive"`
}
