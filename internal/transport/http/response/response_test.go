package response

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/simulado-cea/simulado-service/internal/domain"
	pkgctx "github.com/simulado-cea/simulado-service/internal/pkg/context"
)

func mustDecodeJSONLine(t *testing.T, b []byte, dst any) {
	t.Helper()
	if err := json.NewDecoder(bytes.NewReader(b)).Decode(dst); err != nil {
		t.Fatalf("decode json: %v, body=%q", err, string(b))
	}
}

func newReqWithBody(t *testing.T, body string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

type decodeDst struct {
	A string `json:"a"`
	B int    `json:"b"`
}

func TestDecodeJSON_OK_SingleObject(t *testing.T) {
	var dst decodeDst
	if err := DecodeJSON(httptest.NewRecorder(), newReqWithBody(t, `{"a":"x","b":1}`), &dst); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	if dst.A != "x" || dst.B != 1 {
		t.Fatalf("unexpected dst: %+v", dst)
	}
}

func TestDecodeJSON_Invalid(t *testing.T) {
	cases := map[string]string{
		"truncated": `{"a":"x",`,
		"multiple":  `{}{}`,
		"empty":     ``,
		"too_large": `{"a":"` + strings.Repeat("x", MaxBodyBytes) + `"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			var dst decodeDst
			err := DecodeJSON(httptest.NewRecorder(), newReqWithBody(t, body), &dst)
			if !domain.Is(err, "invalid_json") {
				t.Fatalf("expected invalid_json, got %v", err)
			}
		})
	}
}

func TestWriteError_DomainError_MapsStatusCodeAndPayload(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req = req.WithContext(pkgctx.WithRequestID(req.Context(), "req-123"))
	rr := httptest.NewRecorder()

	WriteError(rr, req, domain.ErrMissingField("email"))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Fatalf("expected content-type json, got %q", ct)
	}

	var body ErrorBody
	mustDecodeJSONLine(t, rr.Body.Bytes(), &body)
	if body.Error.Code != "missing_field" || body.Error.Meta["field"] != "email" {
		t.Fatalf("unexpected body: %+v", body)
	}
	if body.Error.RequestID != "req-123" {
		t.Fatalf("expected request_id req-123, got %q", body.Error.RequestID)
	}
}

func TestWriteError_NonDomainError_HidesDetailsAndReturns500(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteError(rr, httptest.NewRequest(http.MethodGet, "/x", nil), errors.New("pq: password authentication failed"))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	var body ErrorBody
	mustDecodeJSONLine(t, rr.Body.Bytes(), &body)
	if body.Error.Code != "internal_error" {
		t.Fatalf("expected internal_error, got %q", body.Error.Code)
	}
	if strings.Contains(body.Error.Message, "pq") {
		t.Fatalf("leaked cause: %q", body.Error.Message)
	}
}

func TestWriteError_WrappedDomainError(t *testing.T) {
	rr := httptest.NewRecorder()
	err := errors.Join(errors.New("ctx"), domain.ErrAdminRequired())
	WriteError(rr, httptest.NewRequest(http.MethodGet, "/x", nil), err)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
}

func TestStatusFromKind_Mapping(t *testing.T) {
	cases := []struct {
		kind domain.ErrKind
		want int
	}{
		{domain.KindValidation, http.StatusBadRequest},
		{domain.KindAuth, http.StatusUnauthorized},
		{domain.KindForbidden, http.StatusForbidden},
		{domain.KindNotFound, http.StatusNotFound},
		{domain.KindConflict, http.StatusConflict},
		{domain.KindRateLimited, http.StatusTooManyRequests},
		{domain.KindUpstream, http.StatusBadGateway},
		{domain.KindInfrastructure, http.StatusServiceUnavailable},
		{domain.KindInternal, http.StatusInternalServerError},
		{"unknown", http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := StatusFromKind(tc.kind); got != tc.want {
			t.Fatalf("kind=%q expected %d got %d", tc.kind, tc.want, got)
		}
	}
}

func TestOKAndCreated_WrapData(t *testing.T) {
	rr := httptest.NewRecorder()
	OK(rr, map[string]string{"k": "v"})
	if rr.Code != http.StatusOK || strings.TrimSpace(rr.Body.String()) != `{"data":{"k":"v"}}` {
		t.Fatalf("unexpected OK: %d %s", rr.Code, rr.Body.String())
	}

	rr = httptest.NewRecorder()
	Created(rr, nil)
	if rr.Code != http.StatusCreated || strings.TrimSpace(rr.Body.String()) != `{"data":null}` {
		t.Fatalf("unexpected Created: %d %s", rr.Code, rr.Body.String())
	}
}

func TestText(t *testing.T) {
	rr := httptest.NewRecorder()
	Text(rr, http.StatusOK, "OK")
	if rr.Body.String() != "OK" || !strings.HasPrefix(rr.Header().Get("Content-Type"), "text/plain") {
		t.Fatalf("unexpected text response: %q %q", rr.Body.String(), rr.Header().Get("Content-Type"))
	}
}

func TestDecodeJSON_ReasonMeta(t *testing.T) {
	cases := []struct {
		name, body, reason string
	}{
		{"empty", ``, "empty"},
		{"truncated", `{"a":"x",`, "malformed"},
		{"wrong_type", `{"b":"nope"}`, "wrong_type"},
		{"trailing", `{}{}`, "trailing_data"},
		{"too_large", `{"a":"` + strings.Repeat("x", MaxBodyBytes) + `"}`, "too_large"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var dst decodeDst
			err := DecodeJSON(httptest.NewRecorder(), newReqWithBody(t, tc.body), &dst)
			var de *domain.Error
			if !errors.As(err, &de) {
				t.Fatalf("expected domain error, got %v", err)
			}
			if de.Meta["reason"] != tc.reason {
				t.Fatalf("expected reason %q, got %q", tc.reason, de.Meta["reason"])
			}
		})
	}
}

func TestDecodeJSON_TrailingWhitespaceAccepted(t *testing.T) {
	var dst decodeDst
	if err := DecodeJSON(httptest.NewRecorder(), newReqWithBody(t, "{\"a\":\"x\"}\n  "), &dst); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func TestWriteJSON_CacheControl(t *testing.T) {
	rr := httptest.NewRecorder()
	OK(rr, nil)
	if got := rr.Header().Get("Cache-Control"); got != "no-store" {
		t.Fatalf("expected no-store default, got %q", got)
	}

	rr = httptest.NewRecorder()
	rr.Header().Set("Cache-Control", "private, max-age=60")
	OK(rr, nil)
	if got := rr.Header().Get("Cache-Control"); got != "private, max-age=60" {
		t.Fatalf("handler value overwritten: %q", got)
	}
}
