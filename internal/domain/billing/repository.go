package billing

import (
	"context"

	"github.com/google/uuid"
)

// InvoiceRepository defines the interface for invoice persistence
type InvoiceRepository interface {
	// FindByIDForTenant finds an invoice with its items by ID for a specific tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Invoice, error)

	// Create inserts an invoice and its items
	Create(ctx context.Context, inv *Invoice) error

	// Save updates the invoice header
	Save(ctx context.Context, inv *Invoice) error

	// Delete removes an invoice and its items
	Delete(ctx context.Context, tenantID, id uuid.UUID) error

	// CountForTenant counts the invoices of a tenant
	CountForTenant(ctx context.Context, tenantID uuid.UUID) (int64, error)

	// CountWithPrefix counts the invoices of a tenant whose number starts with prefix
	CountWithPrefix(ctx context.Context, tenantID uuid.UUID, prefix string) (int64, error)

	// NumberExists checks whether an invoice number is taken within a tenant
	NumberExists(ctx context.Context, tenantID uuid.UUID, number string) (bool, error)

	// NumbersWithPrefix returns the invoice numbers of a tenant starting with prefix
	NumbersWithPrefix(ctx context.Context, tenantID uuid.UUID, prefix string) ([]string, error)
}

// ServiceRepository reads services
type ServiceRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Service, error)
}

// CustomerRepository reads customers
type CustomerRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Customer, error)
}

// CustomerPriceRepository reads customer-specific prices
type CustomerPriceRepository interface {
	// Find returns the price of a service for a customer, or nil if none is set
	Find(ctx context.Context, tenantID, customerID, serviceID uuid.UUID) (*CustomerPrice, error)
}

// TenantSettingsRepository reads tenant configuration
type TenantSettingsRepository interface {
	// FindByTenant returns the settings of a tenant, or nil if the tenant has none
	FindByTenant(ctx context.Context, tenantID uuid.UUID) (*TenantSettings, error)
}
