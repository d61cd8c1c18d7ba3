package practice

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/practice/backend/internal/domain/shared"
)

// ErrGenerationInProgress is returned when another generation holds the engagement lock
var ErrGenerationInProgress = shared.NewDomainError("GENERATION_IN_PROGRESS", "Generation is already running for this engagement")

// GenerationLock serializes generation runs per engagement
type GenerationLock interface {
	// Acquire takes the lock for key for at most ttl. ok is false if someone else holds it.
	Acquire(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error)

	// Release frees the lock if it is still held with token
	Release(ctx context.Context, key, token string) error
}

// GenerationLockKey returns the lock key of an engagement
func GenerationLockKey(tenantID, engagementID uuid.UUID) string {
	return "practice:generate:" + tenantID.String() + ":" + engagementID.String()
}

// GenerationRecorder receives generation outcomes for metrics
type GenerationRecorder interface {
	RecordGeneration(ctx context.Context, tenantID uuid.UUID, periodsCreated, tasksCreated int)
}

type noopRecorder struct{}

func (noopRecorder) RecordGeneration(context.Context, uuid.UUID, int, int) {}
