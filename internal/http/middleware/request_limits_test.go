package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/tendant/simple-signup/internal/httputil"
)

func TestRequestSizeLimit(t *testing.T) {
	handler := RequestSizeLimit(32)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Value string `json:"value"`
		}
		if err := httputil.DecodeJSON(r, &req); err != nil {
			httputil.DecodeError(w, err)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{name: "small body - accepted", body: `{"value":"abc"}`, wantStatus: http.StatusOK},
		{name: "too large - rejected", body: `{"value":"` + strings.Repeat("a", 64) + `"}`, wantStatus: http.StatusRequestEntityTooLarge},
		{name: "malformed - bad request", body: `{`, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v1/signup", bytes.NewReader([]byte(tt.body)))
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}

func TestRequestSizeLimit_Disabled(t *testing.T) {
	handler := RequestSizeLimit(0)(okHandler())
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(bytes.Repeat([]byte("a"), 1<<20)))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}
