package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig controls the GORM tracing plugin
type DBTracingConfig struct {
	Enabled            bool
	LogFullSQL         bool // keep bound variables in db.statement; dev only
	SlowQueryThreshold time.Duration
	DBName             string
	TracerProvider     trace.TracerProvider // nil uses the global provider
}

type queryStartKey struct{}

// RegisterDBTracing installs otelgorm on db plus callbacks that tag each statement
// span with the table, affected rows and a slow-query marker.
func RegisterDBTracing(db *gorm.DB, cfg DBTracingConfig, logger *zap.Logger) error {
	if !cfg.Enabled {
		return nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(cfg.DBName)}
	if !cfg.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if cfg.TracerProvider != nil {
		opts = append(opts, otelgorm.WithTracerProvider(cfg.TracerProvider))
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	t := &statementTagger{slow: cfg.SlowQueryThreshold}
	cb := db.Callback()
	register := []func() error{
		func() error { return cb.Create().Before("gorm:create").Register("practice:start_create", t.before) },
		func() error { return cb.Create().After("gorm:create").Register("practice:tag_create", t.after) },
		func() error { return cb.Query().Before("gorm:query").Register("practice:start_query", t.before) },
		func() error { return cb.Query().After("gorm:query").Register("practice:tag_query", t.after) },
		func() error { return cb.Update().Before("gorm:update").Register("practice:start_update", t.before) },
		func() error { return cb.Update().After("gorm:update").Register("practice:tag_update", t.after) },
		func() error { return cb.Delete().Before("gorm:delete").Register("practice:start_delete", t.before) },
		func() error { return cb.Delete().After("gorm:delete").Register("practice:tag_delete", t.after) },
		func() error { return cb.Row().Before("gorm:row").Register("practice:start_row", t.before) },
		func() error { return cb.Row().After("gorm:row").Register("practice:tag_row", t.after) },
		func() error { return cb.Raw().Before("gorm:raw").Register("practice:start_raw", t.before) },
		func() error { return cb.Raw().After("gorm:raw").Register("practice:tag_raw", t.after) },
	}
	for _, r := range register {
		if err := r(); err != nil {
			return err
		}
	}

	logger.Info("database tracing enabled",
		zap.Bool("log_full_sql", cfg.LogFullSQL),
		zap.Duration("slow_query_threshold", cfg.SlowQueryThreshold),
	)
	return nil
}

type statementTagger struct {
	slow time.Duration
}

func (t *statementTagger) before(db *gorm.DB) {
	if db.Statement.Context != nil {
		db.Statement.Context = context.WithValue(db.Statement.Context, queryStartKey{}, time.Now())
	}
}

func (t *statementTagger) after(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
	if db.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
	}
	if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
		span.RecordError(db.Error)
		span.SetStatus(codes.Error, db.Error.Error())
	}
	if start, ok := ctx.Value(queryStartKey{}).(time.Time); ok && t.slow > 0 {
		if elapsed := time.Since(start); elapsed > t.slow {
			span.SetAttributes(
				attribute.Bool("db.slow_query", true),
				attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
			)
		}
	}
}
