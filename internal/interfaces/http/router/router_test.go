package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())

	assert.NotNil(t, r)
	assert.Equal(t, "v1", r.apiVersion)
	assert.Empty(t, r.registrars)
}

func TestRouterWithAPIVersion(t *testing.T) {
	r := NewRouter(gin.New(), WithAPIVersion("v2"))

	assert.Equal(t, "v2", r.apiVersion)
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine, WithAPIVersion("v2"))
	r.Register(NewDomainGroup("invoices", "/invoices").
		PATCH("/:id/status", func(c *gin.Context) { c.String(http.StatusOK, c.Param("id")) }))
	r.Setup()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodPatch, "/api/v2/invoices/42/status", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "42", w.Body.String())

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodPatch, "/api/v1/invoices/42/status", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouterRoutes(t *testing.T) {
	noop := func(*gin.Context) {}
	r := NewRouter(gin.New())
	r.Register(NewDomainGroup("system", "").GET("/health", noop))
	r.Register(NewDomainGroup("vouchers", "/vouchers").
		POST("", noop).
		PATCH("/:id/status", noop))

	assert.Empty(t, r.Routes())
	r.Setup()

	assert.Equal(t, []Route{
		{Group: "system", Method: http.MethodGet, Path: "/api/v1/health"},
		{Group: "vouchers", Method: http.MethodPost, Path: "/api/v1/vouchers"},
		{Group: "vouchers", Method: http.MethodPatch, Path: "/api/v1/vouchers/:id/status"},
	}, r.Routes())
}

func TestDomainGroup(t *testing.T) {
	t.Run("name and prefix", func(t *testing.T) {
		g := NewDomainGroup("ledger", "/ledger")
		assert.Equal(t, "ledger", g.Name())
		assert.Equal(t, "/ledger", g.Prefix())
	})

	t.Run("chained methods", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("vouchers", "/vouchers").
			GET("", func(c *gin.Context) { c.String(http.StatusOK, "list") }).
			POST("", func(c *gin.Context) { c.String(http.StatusCreated, "create") }).
			PATCH("/:id/status", func(c *gin.Context) { c.String(http.StatusOK, "status") })
		g.RegisterRoutes(engine.Group("/api/v1"))

		tests := []struct {
			method string
			path   string
			status int
			body   string
		}{
			{http.MethodGet, "/api/v1/vouchers", http.StatusOK, "list"},
			{http.MethodPost, "/api/v1/vouchers", http.StatusCreated, "create"},
			{http.MethodPatch, "/api/v1/vouchers/1/status", http.StatusOK, "status"},
		}
		for _, tt := range tests {
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.status, w.Code, "%s %s", tt.method, tt.path)
			assert.Equal(t, tt.body, w.Body.String(), "%s %s", tt.method, tt.path)
		}
	})

	t.Run("group middleware runs before handlers", func(t *testing.T) {
		engine := gin.New()
		var order []string
		g := NewDomainGroup("tasks", "/tasks").
			Use(func(c *gin.Context) { order = append(order, "middleware"); c.Next() }).
			PATCH("/:id/status", func(c *gin.Context) { order = append(order, "handler"); c.Status(http.StatusOK) })
		g.RegisterRoutes(engine.Group("/api/v1"))

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodPatch, "/api/v1/tasks/1/status", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, []string{"middleware", "handler"}, order)
	})

	t.Run("middleware is scoped to the group", func(t *testing.T) {
		engine := gin.New()
		var calls int
		guarded := NewDomainGroup("a", "/a").
			Use(func(c *gin.Context) { calls++; c.Next() }).
			GET("", func(c *gin.Context) { c.Status(http.StatusOK) })
		open := NewDomainGroup("b", "/b").
			GET("", func(c *gin.Context) { c.Status(http.StatusOK) })
		r := NewRouter(engine)
		r.Register(guarded).Register(open)
		r.Setup()

		for _, path := range []string{"/api/v1/a", "/api/v1/b"} {
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
			assert.Equal(t, http.StatusOK, w.Code)
		}
		assert.Equal(t, 1, calls)
	})
}
