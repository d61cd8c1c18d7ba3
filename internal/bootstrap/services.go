// Package bootstrap wires the application services and event handlers on top
// of a database connection. The server and the CLI share it.
package bootstrap

import (
	appbilling "github.com/practice/backend/internal/application/billing"
	appfinance "github.com/practice/backend/internal/application/finance"
	"github.com/practice/backend/internal/application/practice"
	"github.com/practice/backend/internal/application/uow"
	"github.com/practice/backend/internal/domain/billing"
	"github.com/practice/backend/internal/infrastructure/cache"
	"github.com/practice/backend/internal/infrastructure/config"
	"github.com/practice/backend/internal/infrastructure/event"
	"github.com/practice/backend/internal/infrastructure/persistence"
	"github.com/practice/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Options configures NewServices
type Options struct {
	Generator   practice.GeneratorConfig
	AutoCreator appbilling.AutoCreatorConfig
	// Lock defaults to an in-process lock
	Lock practice.GenerationLock
	// Metrics is optional
	Metrics *telemetry.EngineMetrics
	Logger  *zap.Logger
}

// OptionsFromConfig maps the generator and billing sections of cfg
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Generator: practice.GeneratorConfig{
			LookbackMonths:   cfg.Generator.LookbackMonths,
			LookaheadPeriods: cfg.Generator.LookaheadPeriods,
			LockTTL:          cfg.Generator.LockTTL,
		},
		AutoCreator: appbilling.AutoCreatorConfig{
			ReversionPolicy:     appbilling.ReversionPolicy(cfg.Billing.ReversionPolicy),
			DefaultPaymentTerms: billing.PaymentTerms(cfg.Billing.DefaultPaymentTerms),
		},
	}
}

// Services holds the wired application services
type Services struct {
	Scope        uow.TransactionScope
	Bus          *event.Bus
	Generator    *practice.GeneratorService
	Statuses     *practice.StatusService
	Invoices     *appbilling.InvoiceService
	Vouchers     *appfinance.VoucherService
	TrialBalance *appfinance.TrialBalanceService
	AutoCreator  *appbilling.AutoCreator
	Posting      *appfinance.PostingService
}

// NewServices builds the services on db. The auto-creator and the posting
// service are subscribed to the bus, so every status change carries its
// billing and ledger effects in the same transaction.
func NewServices(db *gorm.DB, opts Options) *Services {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	lock := opts.Lock
	if lock == nil {
		lock = cache.NewInMemoryGenerationLock()
	}

	scope := persistence.NewGormTransactionScope(db)
	bus := event.NewBus(log.Named("event"))

	var genOpts []practice.GeneratorOption
	var postOpts []appfinance.PostingOption
	if opts.Metrics != nil {
		genOpts = append(genOpts, practice.WithGenerationRecorder(opts.Metrics))
		postOpts = append(postOpts, appfinance.WithPostingRecorder(opts.Metrics))
	}

	s := &Services{
		Scope:        scope,
		Bus:          bus,
		Generator:    practice.NewGeneratorService(scope, lock, bus, opts.Generator, log.Named("generator"), genOpts...),
		Statuses:     practice.NewStatusService(scope, bus, log.Named("status")),
		Invoices:     appbilling.NewInvoiceService(scope, bus, log.Named("invoice")),
		Vouchers:     appfinance.NewVoucherService(scope, bus, log.Named("voucher")),
		TrialBalance: appfinance.NewTrialBalanceService(scope, log.Named("trial_balance")),
		AutoCreator:  appbilling.NewAutoCreator(scope, opts.AutoCreator, log.Named("auto_creator")),
		Posting:      appfinance.NewPostingService(scope, log.Named("posting"), postOpts...),
	}

	bus.Subscribe(s.AutoCreator)
	bus.Subscribe(s.Posting)
	log.Info("event handlers registered",
		zap.Strings("auto_creator_events", s.AutoCreator.EventTypes()),
		zap.Strings("posting_events", s.Posting.EventTypes()),
	)
	return s
}
