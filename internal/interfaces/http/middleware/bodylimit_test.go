package middleware

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestBodyLimit(t *testing.T) {
	newRouter := func(limit int64) *gin.Engine {
		router := gin.New()
		router.Use(BodyLimit(limit))
		router.POST("/vouchers", func(c *gin.Context) {
			if _, err := io.ReadAll(c.Request.Body); err != nil {
				var tooLarge *http.MaxBytesError
				if errors.As(err, &tooLarge) {
					c.String(http.StatusRequestEntityTooLarge, "capped at %d", tooLarge.Limit)
					return
				}
				c.String(http.StatusBadRequest, err.Error())
				return
			}
			c.String(http.StatusOK, "ok")
		})
		return router
	}
	post := func(r *gin.Engine, body string, unknownLength bool) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/vouchers", strings.NewReader(body))
		if unknownLength {
			req.ContentLength = -1
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	tests := []struct {
		name          string
		limit         int64
		body          string
		unknownLength bool
		wantStatus    int
		wantBody      string
	}{
		{name: "within limit", limit: 1024, body: `{"lines":[]}`, wantStatus: http.StatusOK, wantBody: "ok"},
		{name: "declared length over limit", limit: 100, body: strings.Repeat("x", 200), wantStatus: http.StatusRequestEntityTooLarge, wantBody: "ERR_PAYLOAD_TOO_LARGE"},
		{name: "chunked body over limit", limit: 100, body: strings.Repeat("x", 200), unknownLength: true, wantStatus: http.StatusRequestEntityTooLarge, wantBody: "capped at 100"},
		{name: "zero limit disables the check", limit: 0, body: strings.Repeat("x", 200), wantStatus: http.StatusOK, wantBody: "ok"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := post(newRouter(tt.limit), tt.body, tt.unknownLength)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}
