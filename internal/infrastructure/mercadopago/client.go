package mercadopago

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	mpconfig "github.com/mercadopago/sdk-go/pkg/config"
	"github.com/mercadopago/sdk-go/pkg/mperror"
	mppayment "github.com/mercadopago/sdk-go/pkg/payment"
	"github.com/mercadopago/sdk-go/pkg/preference"

	"github.com/simulado-cea/simulado-service/internal/application/payment"
	"github.com/simulado-cea/simulado-service/internal/domain"
	"github.com/simulado-cea/simulado-service/internal/logger"
	pkgctx "github.com/simulado-cea/simulado-service/internal/pkg/context"
)

const (
	DefaultBaseURL = "https://api.mercadopago.com"

	currencyBRL = "BRL"
)

var ErrUnavailable = errors.New("mercadopago_unavailable")

// StatusError is a non-2xx answer from the gateway.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("mercadopago [%d]: %s", e.StatusCode, e.Message)
}

func (e *StatusError) retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

type ClientConfig struct {
	// BaseURL replaces the scheme and host the SDK targets. Empty keeps the public API.
	BaseURL     string
	AccessToken string
	Timeout     time.Duration
	// MaxRetries bounds GetPayment retries on 5xx/429/network errors. 0 disables retries.
	MaxRetries uint64
}

// Client implements payment.Gateway on top of the official SDK.
type Client struct {
	preferences preference.Client
	payments    mppayment.Client
	maxRetries  uint64
	newBO       func() backoff.BackOff
}

func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	base, err := url.Parse(strings.TrimRight(orDefault(cfg.BaseURL, DefaultBaseURL), "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("mercadopago base url %q: invalid", cfg.BaseURL)
	}

	httpClient := &http.Client{
		Timeout:   cfg.Timeout,
		Transport: &transport{base: base, next: http.DefaultTransport},
	}
	sdkCfg, err := mpconfig.New(cfg.AccessToken, mpconfig.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("mercadopago config: %w", err)
	}

	return &Client{
		preferences: preference.NewClient(sdkCfg),
		payments:    mppayment.NewClient(sdkCfg),
		maxRetries:  cfg.MaxRetries,
		newBO: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 200 * time.Millisecond
			b.MaxElapsedTime = 5 * time.Second
			return b
		},
	}, nil
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func (c *Client) CreatePreference(ctx context.Context, in payment.PreferenceRequest) (domain.PaymentPreference, error) {
	res, err := c.preferences.Create(ctx, preferenceRequest(in))
	if err != nil {
		return domain.PaymentPreference{}, gatewayError(err)
	}
	if res == nil || res.ID == "" {
		return domain.PaymentPreference{}, errors.New("decode preference: empty id")
	}
	return domain.PaymentPreference{
		ID:               res.ID,
		InitPoint:        res.InitPoint,
		SandboxInitPoint: res.SandboxInitPoint,
	}, nil
}

func preferenceRequest(in payment.PreferenceRequest) preference.Request {
	req := preference.Request{
		Payer: &preference.PayerRequest{
			Email: in.Payer.Email,
			Name:  in.Payer.Name,
		},
		BackURLs: &preference.BackURLsRequest{
			Success: in.BackURLs.Success,
			Failure: in.BackURLs.Failure,
			Pending: in.BackURLs.Pending,
		},
		AutoReturn:        in.AutoReturn,
		BinaryMode:        in.BinaryMode,
		ExternalReference: in.ExternalReference,
		PaymentMethods:    &preference.PaymentMethodsRequest{Installments: 1},
		NotificationURL:   in.NotificationURL,
		Metadata:          in.Metadata,
	}
	for _, it := range in.Items {
		req.Items = append(req.Items, preference.ItemRequest{
			ID:          it.ID,
			Title:       it.Title,
			Description: it.Description,
			Quantity:    it.Quantity,
			CurrencyID:  currencyBRL,
			UnitPrice:   it.UnitPrice,
		})
	}
	for _, t := range in.ExcludedPaymentTypes {
		req.PaymentMethods.ExcludedPaymentTypes = append(req.PaymentMethods.ExcludedPaymentTypes,
			preference.ExcludedPaymentTypeRequest{ID: t})
	}
	return req
}

// GetPayment fetches a payment, retrying transient failures with exponential backoff.
func (c *Client) GetPayment(ctx context.Context, id string) (payment.GatewayPayment, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return payment.GatewayPayment{}, domain.ErrMissingField("payment_id")
	}
	numID, err := strconv.Atoi(id)
	if err != nil {
		return payment.GatewayPayment{}, domain.ErrInvalidField("payment_id", "must be numeric")
	}

	var res *mppayment.Response
	op := func() error {
		r, err := c.payments.Get(ctx, numID)
		if err != nil {
			err = gatewayError(err)
			var se *StatusError
			if errors.As(err, &se) && !se.retryable() {
				return backoff.Permanent(err)
			}
			return err
		}
		res = r
		return nil
	}

	var bo backoff.BackOff = &backoff.StopBackOff{}
	if c.maxRetries > 0 {
		bo = backoff.WithMaxRetries(c.newBO(), c.maxRetries)
	}
	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		return payment.GatewayPayment{}, err
	}
	if res == nil {
		return payment.GatewayPayment{}, errors.New("decode payment: empty response")
	}

	raw, err := json.Marshal(res)
	if err != nil {
		return payment.GatewayPayment{}, fmt.Errorf("encode payment: %w", err)
	}
	out := payment.GatewayPayment{
		ID:                strconv.Itoa(res.ID),
		Status:            res.Status,
		StatusDetail:      res.StatusDetail,
		TransactionAmount: res.TransactionAmount,
		CurrencyID:        res.CurrencyID,
		PaymentMethodID:   res.PaymentMethodID,
		PaymentTypeID:     res.PaymentTypeID,
		Metadata:          res.Metadata,
		Raw:               raw,
	}
	if res.ID == 0 {
		out.ID = id
	}
	if out.Metadata == nil {
		out.Metadata = map[string]any{}
	}
	return out, nil
}

// gatewayError turns SDK response errors into StatusError; anything else
// never got an answer from the gateway.
func gatewayError(err error) error {
	var re *mperror.ResponseError
	if errors.As(err, &re) {
		return &StatusError{StatusCode: re.StatusCode, Message: errorMessage(re.Message, re.StatusCode)}
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

func errorMessage(body string, code int) string {
	var e struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal([]byte(body), &e) == nil {
		if e.Message != "" {
			return e.Message
		}
		if e.Error != "" {
			return e.Error
		}
	}
	return "unexpected status " + strconv.Itoa(code)
}

// transport points SDK requests at base and adds request correlation,
// idempotency keys and request logging.
type transport struct {
	base *url.URL
	next http.RoundTripper
}

func (t *transport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.URL.Scheme = t.base.Scheme
	req.URL.Host = t.base.Host
	req.URL.Path = t.base.Path + req.URL.Path
	req.URL.RawPath = ""
	req.Host = t.base.Host

	ctx := req.Context()
	if rid := pkgctx.GetRequestID(ctx); rid != "" {
		req.Header.Set("X-Request-ID", rid)
	}
	if req.Method == http.MethodPost && req.Header.Get("X-Idempotency-Key") == "" {
		req.Header.Set("X-Idempotency-Key", uuid.NewString())
	}

	log := logger.WithCtx(ctx).With().Str("method", req.Method).Str("path", req.URL.Path).Logger()
	start := time.Now()
	resp, err := t.next.RoundTrip(req)
	if err != nil {
		log.Warn().Err(err).Dur("duration", time.Since(start)).Msg("mercadopago_request_failed")
		return nil, err
	}
	log.Debug().Int("status", resp.StatusCode).Dur("duration", time.Since(start)).Msg("mercadopago_request_completed")
	return resp, nil
}
