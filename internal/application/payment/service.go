package payment

import (
	"time"
)

const (
	DefaultTitle  = "Acesso Simulado CEA"
	DefaultPrice  = 29.9
	ItemID        = "simulado-cea-access"
	maxDescLength = 256

	// WebhookPath is where the gateway posts notifications.
	WebhookPath = "/api/pagamentos/webhook"
)

// Only PIX is offered; every other payment type is excluded at the gateway.
var excludedPaymentTypes = []string{"credit_card", "debit_card", "ticket", "atm", "bank_transfer"}

type Config struct {
	PublicKey string
	// BaseURL overrides the request origin when building return URLs.
	BaseURL string
}

type Service struct {
	gw    Gateway
	repo  PaymentRepo
	users UserStatusWriter
	pub   EventPublisher
	cfg   Config
	audit func(action string, fields map[string]string)
	now   func() time.Time
}

func NewService(gw Gateway, repo PaymentRepo, users UserStatusWriter, pub EventPublisher, cfg Config) *Service {
	return &Service{
		gw:    gw,
		repo:  repo,
		users: users,
		pub:   pub,
		cfg:   cfg,
		audit: func(string, map[string]string) {},
		now:   time.Now,
	}
}

func (s *Service) WithAudit(fn func(action string, fields map[string]string)) *Service {
	if fn != nil {
		s.audit = fn
	}
	return s
}
