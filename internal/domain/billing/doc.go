// Package billing provides the invoice model and the pure billing rules of the practice.
//
// This package implements the billing bounded context, which is responsible for:
//   - Draft invoices created from completed engagements and periods
//   - The invoice status lifecycle (draft, sent, overdue, paid, cancelled)
//   - Flat-rate tax, payment-term due dates and tenant invoice numbering
//
// Key Aggregates:
//   - Invoice: Billing document with a single line item per generated invoice
//
// Read-only lookups:
//   - Service, Customer, CustomerPrice: Price and account sources
//   - TenantSettings: Numbering scheme and default ledger accounts
//
// The billing domain integrates with:
//   - Engagement domain: Completion of periods and one-off engagements
//   - Finance domain: Ledger postings driven by invoice status changes
package billing
