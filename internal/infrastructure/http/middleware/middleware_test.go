package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/yuzvak/resale-backoffice/internal/infrastructure/http/response"
	"github.com/yuzvak/resale-backoffice/internal/pkg/logger"
)

func TestStationMiddleware(t *testing.T) {
	tests := []struct {
		name        string
		header      string
		wantStatus  int
		wantStation string
	}{
		{"default", "", http.StatusOK, "main"},
		{"explicit", "till-2", http.StatusOK, "till-2"},
		{"invalid", "till 2", http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			h := NewStationMiddleware("main")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = StationFrom(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/sell/list", nil)
			if tt.header != "" {
				req.Header.Set(StationHeader, tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if got != tt.wantStation {
				t.Errorf("station = %q, want %q", got, tt.wantStation)
			}
		})
	}
}

func TestRecoveryMiddlewareWritesInternalError(t *testing.T) {
	h := NewRecoveryMiddleware(logger.NewNopLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	var body response.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Code != "internal_error" {
		t.Errorf("code = %q", body.Code)
	}
}
