package http_handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/simulado-cea/simulado-service/internal/application/payment"
	"github.com/simulado-cea/simulado-service/internal/domain"
	"github.com/simulado-cea/simulado-service/internal/logger"
	"github.com/simulado-cea/simulado-service/internal/transport/http/dto"
	"github.com/simulado-cea/simulado-service/internal/transport/http/middleware"
	"github.com/simulado-cea/simulado-service/internal/transport/http/response"
)

type PaymentService interface {
	CreatePreference(ctx context.Context, p domain.Principal, in payment.PreferenceInput, origin string) (payment.PreferenceResult, error)
	HandleNotification(ctx context.Context, topic, paymentID string) payment.Outcome
}

// maxWebhookBody bounds gateway notification bodies; real ones are a few hundred bytes.
const maxWebhookBody = 64 << 10

type PaymentHandler struct {
	svc PaymentService
}

func NewPaymentHandler(svc PaymentService) *PaymentHandler {
	return &PaymentHandler{svc: svc}
}

// Preferencias handles POST /api/pagamentos/preferencias.
func (h *PaymentHandler) Preferencias(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		response.WriteError(w, r, domain.ErrTokenMissing())
		return
	}

	var req dto.PreferenceRequest
	if err := response.DecodeJSON(w, r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	res, err := h.svc.CreatePreference(r.Context(), p, payment.PreferenceInput{
		Title:             req.Title,
		Description:       req.Description,
		Price:             req.Price,
		ExternalReference: req.ExternalReference,
		SuccessURL:        req.SuccessURL,
		FailureURL:        req.FailureURL,
		PendingURL:        req.PendingURL,
		Metadata:          req.Metadata,
	}, requestOrigin(r))
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, dto.NewPreferenceResponse(res))
}

// WebhookGET handles GET /api/pagamentos/webhook (topic or type, data.id or id in the query).
func (h *PaymentHandler) WebhookGET(w http.ResponseWriter, r *http.Request) {
	topic, id := queryNotification(r)
	h.notify(w, r, topic, id)
}

// WebhookPOST handles POST /api/pagamentos/webhook. The body may be empty or
// malformed; the query string is used for whatever the body does not carry.
func (h *PaymentHandler) WebhookPOST(w http.ResponseWriter, r *http.Request) {
	var n dto.WebhookNotification
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err == nil && len(strings.TrimSpace(string(body))) > 0 {
		if err := json.Unmarshal(body, &n); err != nil {
			logger.WithCtx(r.Context()).Warn().Err(err).Msg("webhook: unreadable body")
		}
	}

	topic, id := n.Resolve()
	qTopic, qID := queryNotification(r)
	if topic == "" {
		topic = qTopic
	}
	if id == "" {
		id = qID
	}
	h.notify(w, r, topic, id)
}

// notify processes the notification and always acknowledges with 200 "OK" so
// the gateway does not retry.
func (h *PaymentHandler) notify(w http.ResponseWriter, r *http.Request, topic, id string) {
	out := h.svc.HandleNotification(r.Context(), topic, id)
	logger.WithCtx(r.Context()).Info().
		Str("topic", topic).
		Str("payment_id", id).
		Str("outcome", string(out)).
		Msg("webhook processed")
	response.Text(w, http.StatusOK, "OK")
}

func queryNotification(r *http.Request) (topic, id string) {
	q := r.URL.Query()
	topic = q.Get("topic")
	if topic == "" {
		topic = q.Get("type")
	}
	id = q.Get("data.id")
	if id == "" {
		id = q.Get("id")
	}
	return topic, id
}

// requestOrigin rebuilds scheme://host of the incoming request.
func requestOrigin(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}
