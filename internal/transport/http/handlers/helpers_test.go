package http_handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/simulado-cea/simulado-service/internal/domain"
	"github.com/simulado-cea/simulado-service/internal/transport/http/middleware"
)

// mustJSONBody marshals v to JSON and returns an io.Reader for request body.
func mustJSONBody(t *testing.T, v any) io.Reader {
	t.Helper()

	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("json marshal: %v", err)
	}
	return bytes.NewReader(b)
}

// mustReadJSON decodes JSON from r into out. A {"data": ...} envelope is unwrapped.
func mustReadJSON(t *testing.T, r io.Reader, out any) {
	t.Helper()

	raw, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}

	wrapped := struct {
		Data json.RawMessage `json:"data"`
	}{}
	if err := json.Unmarshal(raw, &wrapped); err == nil && len(wrapped.Data) > 0 && wrapped.Data[0] == '{' {
		raw = wrapped.Data
	}
	if err := json.Unmarshal(raw, out); err != nil {
		t.Fatalf("decode json failed; body=%s err=%v", string(raw), err)
	}
}

type errorBody struct {
	Error struct {
		Code string            `json:"code"`
		Meta map[string]string `json:"meta"`
	} `json:"error"`
}

func mustErrorCode(t *testing.T, body io.Reader) string {
	t.Helper()
	var eb errorBody
	if err := json.NewDecoder(body).Decode(&eb); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return eb.Error.Code
}

// readCookie finds cookie by name from response headers.
func readCookie(res *http.Response, name string) *http.Cookie {
	for _, c := range res.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func withPrincipal(req *http.Request, p domain.Principal) *http.Request {
	return req.WithContext(middleware.WithPrincipal(req.Context(), p))
}

func withAdmin(req *http.Request, u domain.AdminUser) *http.Request {
	ctx := middleware.WithPrincipal(req.Context(), domain.Principal{ID: u.ID, Email: u.Email})
	ctx = middleware.WithAdminUser(ctx, u)
	return req.WithContext(ctx)
}

// withURLParam injects a chi URL param into request context.
func withURLParam(req *http.Request, key, val string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, val)

	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	return req.WithContext(ctx)
}

type fakeSessions struct {
	p  domain.Principal
	ok bool
}

func (f fakeSessions) Session(*http.Request) (domain.Principal, bool) { return f.p, f.ok }
