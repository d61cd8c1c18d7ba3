package persistence

import (
	"errors"

	"github.com/google/uuid"
	"github.com/practice/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// tenantScope applies tenant filtering to GORM queries
func tenantScope(tenantID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("tenant_id = ?", tenantID)
	}
}

// notFound maps gorm.ErrRecordNotFound to shared.ErrNotFound
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}
	return err
}
