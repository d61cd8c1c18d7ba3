package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/practice/backend/internal/infrastructure/logger"
	"github.com/practice/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// Tenant context and header keys
const (
	TenantIDKey     = "tenant_id"
	TenantHeaderKey = "X-Tenant-ID"
)

// TenantMiddlewareConfig holds configuration for tenant middleware
type TenantMiddlewareConfig struct {
	// HeaderEnabled accepts the X-Tenant-ID header when no token supplied a tenant
	HeaderEnabled bool
	// SkipPaths are paths that don't require tenant context (e.g., health check)
	SkipPaths []string
	// Required determines if tenant context is mandatory
	Required bool
	Logger   *zap.Logger
}

// DefaultTenantConfig returns default tenant middleware configuration
func DefaultTenantConfig() TenantMiddlewareConfig {
	return TenantMiddlewareConfig{
		HeaderEnabled: true,
		SkipPaths:     []string{"/health", "/api/v1/health"},
		Required:      true,
	}
}

// TenantMiddleware resolves the tenant with the default configuration
func TenantMiddleware() gin.HandlerFunc {
	return TenantMiddlewareWithConfig(DefaultTenantConfig())
}

// TenantMiddlewareWithConfig resolves the tenant of the request.
// Extraction order: JWT claims > X-Tenant-ID header. A header naming a
// different tenant than the token is rejected.
func TenantMiddlewareWithConfig(cfg TenantMiddlewareConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, skipPath := range cfg.SkipPaths {
			if path == skipPath || strings.HasPrefix(path, skipPath+"/") {
				c.Next()
				return
			}
		}

		tenantID := GetJWTTenantID(c)
		method := "jwt"
		header := c.GetHeader(TenantHeaderKey)

		if tenantID != "" && header != "" && !strings.EqualFold(header, tenantID) {
			log.Warn("Tenant header does not match token",
				zap.String("token_tenant_id", tenantID),
				zap.String("header_tenant_id", header),
			)
			respondTenantError(c, http.StatusForbidden, dto.ErrCodeForbidden, "Tenant header does not match token")
			return
		}

		if tenantID == "" && cfg.HeaderEnabled && header != "" {
			tenantID = header
			method = "header"
		}

		if tenantID == "" {
			if cfg.Required {
				respondTenantError(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Tenant identification required")
				return
			}
			c.Next()
			return
		}

		parsed, err := uuid.Parse(tenantID)
		if err != nil {
			respondTenantError(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Invalid tenant ID format")
			return
		}
		tenantID = parsed.String()

		c.Set(TenantIDKey, tenantID)
		c.Request = c.Request.WithContext(logger.WithTenantID(c.Request.Context(), tenantID))
		log.Debug("Tenant identified", zap.String("tenant_id", tenantID), zap.String("method", method))

		c.Next()
	}
}

func respondTenantError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, dto.NewErrorResponseWithRequestID(code, message, GetRequestID(c)))
}

// GetTenantID retrieves the tenant ID from gin.Context
func GetTenantID(c *gin.Context) string {
	return c.GetString(TenantIDKey)
}

// GetTenantUUID retrieves the tenant ID as UUID from gin.Context.
// It returns uuid.Nil without error when no tenant was resolved.
func GetTenantUUID(c *gin.Context) (uuid.UUID, error) {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return uuid.Nil, nil
	}
	return uuid.Parse(tenantID)
}
