// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Structure:
// - base.go: Base persistence models (BaseModel, TenantAggregateModel)
// - practice.go: Engagements, task templates and configs, periods, tasks
// - billing.go: Invoices, services, customers, prices, tenant settings
// - ledger.go: Ledger accounts, ledger transactions, vouchers
package models
