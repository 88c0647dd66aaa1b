package payment

import (
	"context"
	"math"
	"strings"

	"github.com/simulado-cea/simulado-service/internal/domain"
	"github.com/simulado-cea/simulado-service/internal/logger"
	"github.com/simulado-cea/simulado-service/internal/metrics"
)

type PreferenceInput struct {
	Title             string
	Description       string
	Price             *float64
	ExternalReference string
	SuccessURL        string
	FailureURL        string
	PendingURL        string
	Metadata          map[string]any
}

type PreferenceResult struct {
	PreferenceID     string
	InitPoint        string
	SandboxInitPoint string
	PublicKey        string
}

// CreatePreference opens a PIX checkout for the principal.
// origin is the scheme://host of the incoming request; it is used for return URLs
// unless a public base URL is configured.
func (s *Service) CreatePreference(ctx context.Context, p domain.Principal, in PreferenceInput, origin string) (PreferenceResult, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = DefaultTitle
	}

	price := DefaultPrice
	if in.Price != nil && !math.IsNaN(*in.Price) && !math.IsInf(*in.Price, 0) {
		price = *in.Price
	}
	if price <= 0 {
		return PreferenceResult{}, domain.ErrInvalidAmount()
	}

	base := strings.TrimRight(origin, "/")
	if s.cfg.BaseURL != "" {
		base = strings.TrimRight(s.cfg.BaseURL, "/")
	}

	desc := in.Description
	if r := []rune(desc); len(r) > maxDescLength {
		desc = string(r[:maxDescLength])
	}

	meta := make(map[string]any, len(in.Metadata)+4)
	for k, v := range in.Metadata {
		meta[k] = v
	}
	// the webhook trusts userId, so the caller can never set it
	meta["userId"] = p.ID
	delete(meta, "user_id")
	if p.Email != "" {
		meta["email"] = p.Email
	}
	meta["value"] = price
	meta["paymentMethod"] = "pix"

	payer := Payer{Email: p.Email}
	if nome, ok := p.UserMetadata["nome"].(string); ok {
		payer.Name = nome
	}

	req := PreferenceRequest{
		Items: []Item{{
			ID:          ItemID,
			Title:       title,
			Description: desc,
			Quantity:    1,
			UnitPrice:   price,
		}},
		Payer: payer,
		BackURLs: BackURLs{
			Success: sameOriginOr(in.SuccessURL, base, "/pagamento/sucesso"),
			Failure: sameOriginOr(in.FailureURL, base, "/pagamento/erro"),
			Pending: sameOriginOr(in.PendingURL, base, "/pagamento/pendente"),
		},
		AutoReturn:           "approved",
		BinaryMode:           true,
		ExternalReference:    strings.TrimSpace(in.ExternalReference),
		ExcludedPaymentTypes: excludedPaymentTypes,
		Metadata:             meta,
	}
	if s.cfg.BaseURL != "" {
		req.NotificationURL = base + WebhookPath
	}

	pref, err := s.gw.CreatePreference(ctx, req)
	if err != nil {
		metrics.PaymentPreferencesTotal.WithLabelValues("gateway_error").Inc()
		logger.WithCtx(ctx).Error().Err(err).Str("user_id", p.ID).Msg("create payment preference failed")
		s.audit("payment.create_preference", map[string]string{
			"user_id": p.ID, "result": "error", "error_code": "payment_gateway_error",
		})
		return PreferenceResult{}, domain.ErrPaymentGateway(err)
	}

	metrics.PaymentPreferencesTotal.WithLabelValues("success").Inc()
	s.audit("payment.create_preference", map[string]string{
		"user_id": p.ID, "preference_id": pref.ID, "result": "success",
	})

	return PreferenceResult{
		PreferenceID:     pref.ID,
		InitPoint:        pref.InitPoint,
		SandboxInitPoint: pref.SandboxInitPoint,
		PublicKey:        s.cfg.PublicKey,
	}, nil
}

// sameOriginOr accepts a caller-supplied return URL only when it stays on base.
func sameOriginOr(candidate, base, path string) string {
	c := strings.TrimSpace(candidate)
	if c != "" && base != "" && (c == base || strings.HasPrefix(c, base+"/")) {
		return c
	}
	return base + path
}
