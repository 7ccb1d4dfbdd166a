package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/vitrinehub/vitrine-backend/pkg/config"
)

func newAdminHandler(token string) http.Handler {
	return RequireAdminToken(config.AdminConfig{APIToken: token}, nil)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
}

func TestRequireAdminTokenRejectsWhenUnconfigured(t *testing.T) {
	handler := newAdminHandler("")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer anything")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
}

func TestRequireAdminTokenRejectsWrongToken(t *testing.T) {
	handler := newAdminHandler("ops-token")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer guess")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestRequireAdminTokenAcceptsConfiguredToken(t *testing.T) {
	handler := newAdminHandler("ops-token")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer ops-token")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}
