package router

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/practice/backend/internal/infrastructure/auth"
	"github.com/practice/backend/internal/infrastructure/config"
	"github.com/practice/backend/internal/infrastructure/logger"
	"github.com/practice/backend/internal/interfaces/http/handler"
	"github.com/practice/backend/internal/interfaces/http/middleware"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Handlers are the API handlers mounted by NewEngine
type Handlers struct {
	Practice *handler.PracticeHandler
	Invoice  *handler.InvoiceHandler
	Ledger   *handler.LedgerHandler
	System   *handler.SystemHandler
}

// EngineConfig holds what NewEngine needs besides the handlers
type EngineConfig struct {
	HTTP        config.HTTPConfig
	JWT         *auth.JWTService
	Logger      *zap.Logger
	ServiceName string
	Tracing     bool
	// Meter enables the HTTP metrics middleware when set
	Meter metric.Meter
}

// NewEngine builds the gin engine with the middleware chain and the API routes.
// Mutations require a tenant; bearer tokens are optional so the X-Tenant-ID
// header can identify the tenant on internal networks.
func NewEngine(cfg EngineConfig, h Handlers) (*gin.Engine, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		return nil, fmt.Errorf("set trusted proxies: %w", err)
	}

	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.HTTP.AllowOrigins

	engine.Use(
		middleware.RequestID(),
		logger.GinMiddleware(log),
		logger.Recovery(log),
		middleware.TracingWithConfig(middleware.TracingConfig{ServiceName: cfg.ServiceName, Enabled: cfg.Tracing}),
		middleware.SpanTagger(),
	)
	if cfg.Meter != nil {
		metrics, err := middleware.HTTPMetrics(cfg.Meter)
		if err != nil {
			return nil, err
		}
		engine.Use(metrics)
	}
	engine.Use(
		middleware.CORSWithConfig(cors),
		middleware.Secure(),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
	)

	jwtCfg := middleware.DefaultJWTConfig(cfg.JWT)
	jwtCfg.Optional = true
	jwtCfg.Logger = log
	tenantCfg := middleware.DefaultTenantConfig()
	tenantCfg.Logger = log

	engine.Use(
		middleware.JWTAuthMiddlewareWithConfig(jwtCfg),
		middleware.TenantMiddlewareWithConfig(tenantCfg),
	)

	middleware.SetupValidator()

	engine.GET("/health", h.System.Health)

	r := NewRouter(engine)
	r.Register(NewDomainGroup("system", "").GET("/health", h.System.Health))
	r.Register(NewDomainGroup("engagements", "/engagements").
		POST("/:id/generate", h.Practice.Generate).
		POST("/:id/regenerate", h.Practice.Regenerate).
		PATCH("/:id/status", h.Practice.ChangeEngagementStatus))
	r.Register(NewDomainGroup("tasks", "/tasks").
		PATCH("/:id/status", h.Practice.ChangeTaskStatus))
	r.Register(NewDomainGroup("invoices", "/invoices").
		PATCH("/:id/status", h.Invoice.ChangeStatus))
	r.Register(NewDomainGroup("vouchers", "/vouchers").
		POST("", h.Ledger.CreateJournal).
		PATCH("/:id/status", h.Ledger.ChangeVoucherStatus))
	r.Register(NewDomainGroup("ledger", "/ledger").
		GET("/trial-balance", h.Ledger.TrialBalance))
	r.Setup()

	for _, route := range r.Routes() {
		log.Debug("route registered",
			zap.String("group", route.Group),
			zap.String("method", route.Method),
			zap.String("path", route.Path),
		)
	}
	return engine, nil
}
