package telemetry

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys
var (
	AttrTenantID = attribute.Key("tenant_id")
	AttrSource   = attribute.Key("source")
)

// EngineMetrics records generation and posting outcomes. It satisfies the
// recorder interfaces of the generator and the posting service.
type EngineMetrics struct {
	generationRuns  metric.Int64Counter
	periodsCreated  metric.Int64Counter
	tasksCreated    metric.Int64Counter
	postingLegs     metric.Int64Counter
	reversedLegs    metric.Int64Counter
	postingsApplied metric.Int64Counter
}

// NewEngineMetrics creates the engine instruments on meter
func NewEngineMetrics(meter metric.Meter) (*EngineMetrics, error) {
	m := &EngineMetrics{}
	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
		unit string
	}{
		{&m.generationRuns, "practice.generation.runs", "Completed generation runs", "{run}"},
		{&m.periodsCreated, "practice.generation.periods_created", "Periods created by generation", "{period}"},
		{&m.tasksCreated, "practice.generation.tasks_created", "Tasks created by generation", "{task}"},
		{&m.postingsApplied, "practice.ledger.postings", "Posting batches written to the ledger", "{posting}"},
		{&m.postingLegs, "practice.ledger.legs_posted", "Ledger transactions written", "{transaction}"},
		{&m.reversedLegs, "practice.ledger.legs_reversed", "Ledger transactions removed by reversal", "{transaction}"},
	}
	for _, c := range counters {
		counter, err := meter.Int64Counter(c.name, metric.WithDescription(c.desc), metric.WithUnit(c.unit))
		if err != nil {
			return nil, fmt.Errorf("create counter %s: %w", c.name, err)
		}
		*c.dst = counter
	}
	return m, nil
}

// RecordGeneration records one generation run
func (m *EngineMetrics) RecordGeneration(ctx context.Context, tenantID uuid.UUID, periodsCreated, tasksCreated int) {
	attrs := metric.WithAttributes(AttrTenantID.String(tenantID.String()))
	m.generationRuns.Add(ctx, 1, attrs)
	m.periodsCreated.Add(ctx, int64(periodsCreated), attrs)
	m.tasksCreated.Add(ctx, int64(tasksCreated), attrs)
}

// RecordPosting records a posting batch of legs transactions
func (m *EngineMetrics) RecordPosting(ctx context.Context, tenantID uuid.UUID, source string, legs int) {
	attrs := metric.WithAttributes(AttrTenantID.String(tenantID.String()), AttrSource.String(source))
	m.postingsApplied.Add(ctx, 1, attrs)
	m.postingLegs.Add(ctx, int64(legs), attrs)
}

// RecordReversal records legs transactions removed from the ledger
func (m *EngineMetrics) RecordReversal(ctx context.Context, tenantID uuid.UUID, source string, legs int64) {
	m.reversedLegs.Add(ctx, legs, metric.WithAttributes(AttrTenantID.String(tenantID.String()), AttrSource.String(source)))
}
