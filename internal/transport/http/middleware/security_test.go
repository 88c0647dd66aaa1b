package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/simulado-cea/simulado-service/internal/domain"
)

func TestSecurityHeaders(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	rr := serve(t, SecurityHeaders(false), ok, httptest.NewRequest(http.MethodGet, "/", nil))
	for _, h := range []string{"Content-Security-Policy", "X-Content-Type-Options", "X-Frame-Options", "Referrer-Policy", "Permissions-Policy"} {
		if rr.Header().Get(h) == "" {
			t.Fatalf("missing header %s", h)
		}
	}
	if !strings.Contains(rr.Header().Get("Content-Security-Policy"), "frame-src https://www.mercadopago.com") {
		t.Fatalf("csp must allow the checkout frame: %q", rr.Header().Get("Content-Security-Policy"))
	}
	if rr.Header().Get("Strict-Transport-Security") != "" {
		t.Fatalf("hsts must be off when disabled")
	}

	rr = serve(t, SecurityHeaders(true), ok, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Header().Get("Strict-Transport-Security") == "" {
		t.Fatalf("expected hsts")
	}
}

func TestRequireJSON(t *testing.T) {
	cases := []struct {
		method, ct string
		pass       bool
	}{
		{http.MethodPost, "application/json", true},
		{http.MethodPatch, "application/json; charset=utf-8", true},
		{http.MethodPost, "text/plain", false},
		{http.MethodPut, "", false},
		{http.MethodGet, "", true},
		{http.MethodDelete, "", true},
	}
	for _, tc := range cases {
		we := &writeErrRecorder{}
		next := &nextRecorder{}
		req := httptest.NewRequest(tc.method, "/api/x", nil)
		if tc.ct != "" {
			req.Header.Set("Content-Type", tc.ct)
		}
		serve(t, RequireJSON(we.fn), next, req)

		if tc.pass && next.calls != 1 {
			t.Fatalf("%s %q should pass", tc.method, tc.ct)
		}
		if !tc.pass && !domain.Is(we.last, "invalid_content_type") {
			t.Fatalf("%s %q should be rejected, got %v", tc.method, tc.ct, we.last)
		}
	}
}
