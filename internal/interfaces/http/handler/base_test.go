package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/practice/backend/internal/domain/shared"
	"github.com/practice/backend/internal/interfaces/http/dto"
	"github.com/practice/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// decodeResponse reads a dto.Response and re-decodes its data into data when given
func decodeResponse(t *testing.T, w *httptest.ResponseRecorder, data any) dto.Response {
	t.Helper()
	var raw struct {
		dto.Response
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	if data != nil && len(raw.Data) > 0 {
		require.NoError(t, json.Unmarshal(raw.Data, data))
	}
	return raw.Response
}

func TestBaseHandler_HandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "not found",
			err:        shared.NewDomainError("NOT_FOUND", "Invoice not found"),
			wantStatus: http.StatusNotFound,
			wantCode:   dto.ErrCodeNotFound,
		},
		{
			name:       "wrapped unbalanced voucher",
			err:        fmt.Errorf("post voucher: %w", shared.NewDomainError("UNBALANCED_VOUCHER", "Debits must equal credits")),
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   dto.ErrCodeUnbalancedVoucher,
		},
		{
			name:       "generation in progress",
			err:        shared.NewDomainError("GENERATION_IN_PROGRESS", "Generation already running"),
			wantStatus: http.StatusConflict,
			wantCode:   dto.ErrCodeGenerationInProgress,
		},
		{
			name:       "plain error is hidden",
			err:        errors.New("connection reset"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   dto.ErrCodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var h BaseHandler
			r := gin.New()
			var attached int
			r.GET("/", func(c *gin.Context) {
				h.HandleError(c, tt.err)
				attached = len(c.Errors)
			})

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

			assert.Equal(t, tt.wantStatus, w.Code)
			resp := decodeResponse(t, w, nil)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.Equal(t, 1, attached)
			if tt.wantStatus == http.StatusInternalServerError {
				assert.NotContains(t, resp.Error.Message, "connection reset")
			}
		})
	}
}

func TestBaseHandler_RequireTenant(t *testing.T) {
	tenant := uuid.New()
	tests := []struct {
		name       string
		set        string
		wantStatus int
	}{
		{name: "resolved", set: tenant.String(), wantStatus: http.StatusOK},
		{name: "missing", wantStatus: http.StatusUnauthorized},
		{name: "malformed", set: "acme", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var h BaseHandler
			var got uuid.UUID
			r := gin.New()
			r.GET("/", func(c *gin.Context) {
				if tt.set != "" {
					c.Set(middleware.TenantIDKey, tt.set)
				}
				id, ok := h.requireTenant(c)
				if !ok {
					return
				}
				got = id
				c.Status(http.StatusOK)
			})

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, tenant, got)
			}
		})
	}
}

func TestBaseHandler_BindID(t *testing.T) {
	var h BaseHandler
	r := gin.New()
	middleware.SetupValidator()
	r.GET("/items/:id", func(c *gin.Context) {
		id, ok := h.bindID(c)
		if !ok {
			return
		}
		c.String(http.StatusOK, id.String())
	})

	id := uuid.New()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/items/"+id.String(), nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, id.String(), w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/items/not-a-uuid", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeResponse(t, w, nil)
	require.NotNil(t, resp.Error)
	require.Len(t, resp.Error.Details, 1)
	assert.Equal(t, "id", resp.Error.Details[0].Field)
}

func TestBaseHandler_BindJSON(t *testing.T) {
	var h BaseHandler
	r := gin.New()
	middleware.SetupValidator()
	r.POST("/", func(c *gin.Context) {
		var req dto.GenerateRequest
		if !h.bindJSON(c, &req) {
			return
		}
		c.String(http.StatusOK, req.AsOf)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"as_of":"2025-03-31"}`)))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2025-03-31", w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"as_of":"31/03/2025"}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeResponse(t, w, nil)
	require.NotNil(t, resp.Error)
	require.Len(t, resp.Error.Details, 1)
	assert.Equal(t, "as_of", resp.Error.Details[0].Field)

	t.Run("chunked body over the limit", func(t *testing.T) {
		limited := gin.New()
		limited.Use(middleware.BodyLimit(16))
		limited.POST("/", func(c *gin.Context) {
			var req dto.GenerateRequest
			_ = h.bindJSON(c, &req)
		})
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"as_of":"2025-03-31","note":"`+strings.Repeat("x", 64)+`"}`))
		req.ContentLength = -1
		w := httptest.NewRecorder()
		limited.ServeHTTP(w, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		resp := decodeResponse(t, w, nil)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodePayloadTooLarge, resp.Error.Code)
	})
}

func TestParseAt(t *testing.T) {
	assert.True(t, parseAt("").IsZero())
	assert.True(t, parseAt("yesterday").IsZero())

	got := parseAt("2025-03-03T10:00:00+02:00")
	assert.Equal(t, time.UTC, got.Location())
	assert.True(t, got.Equal(time.Date(2025, time.March, 3, 8, 0, 0, 0, time.UTC)))
}
