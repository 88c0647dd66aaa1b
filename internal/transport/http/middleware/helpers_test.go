package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/simulado-cea/simulado-service/internal/domain"
)

// ---- fakes ----

type fakeVerifier struct {
	p      domain.Principal
	err    error
	calls  int
	gotTok string
}

func (f *fakeVerifier) VerifyAccessToken(token string) (domain.Principal, error) {
	f.calls++
	f.gotTok = token
	return f.p, f.err
}

type fakeSessions struct {
	p  domain.Principal
	ok bool
}

func (f fakeSessions) Session(*http.Request) (domain.Principal, bool) { return f.p, f.ok }

type writeErrRecorder struct {
	calls int
	last  error
}

func (w *writeErrRecorder) fn(rw http.ResponseWriter, _ *http.Request, err error) {
	w.calls++
	w.last = err
	rw.WriteHeader(http.StatusTeapot)
}

// nextRecorder captures what the guarded handler saw in its context.
type nextRecorder struct {
	calls     int
	principal domain.Principal
	adminUser domain.AdminUser
	hasAdmin  bool
}

func (n *nextRecorder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	n.calls++
	n.principal, _ = PrincipalFromContext(r.Context())
	n.adminUser, n.hasAdmin = AdminUserFromContext(r.Context())
	w.WriteHeader(http.StatusOK)
}

func serve(t *testing.T, mw func(http.Handler) http.Handler, next http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	mw(next).ServeHTTP(rr, req)
	return rr
}

type fakeLimiter struct {
	dec    domain.RateDecision
	err    error
	gotKey string
	gotWin time.Duration
}

func (f *fakeLimiter) Allow(_ context.Context, key string, limit int, window time.Duration) (domain.RateDecision, error) {
	f.gotKey = key
	f.gotWin = window
	return f.dec, f.err
}
