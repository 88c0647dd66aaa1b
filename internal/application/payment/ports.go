package payment

import (
	"context"
	"encoding/json"

	"github.com/simulado-cea/simulado-service/internal/domain"
)

// Gateway is the payment provider, consumed as a black box.
type Gateway interface {
	CreatePreference(ctx context.Context, req PreferenceRequest) (domain.PaymentPreference, error)
	GetPayment(ctx context.Context, id string) (GatewayPayment, error)
}

type PaymentRepo interface {
	// Upsert inserts or replaces the row keyed by PaymentID.
	Upsert(ctx context.Context, p domain.Payment) error
}

type UserStatusWriter interface {
	SetStatus(ctx context.Context, userID string, status domain.UserStatus) error
}

type EventPublisher interface {
	PublishPaymentStatusChanged(ctx context.Context, evt domain.PaymentStatusChangedEvent) error
}

type Item struct {
	ID          string
	Title       string
	Description string
	Quantity    int
	UnitPrice   float64
}

type Payer struct {
	Email string
	Name  string
}

type BackURLs struct {
	Success string
	Failure string
	Pending string
}

// PreferenceRequest describes a checkout to create at the gateway.
type PreferenceRequest struct {
	Items                []Item
	Payer                Payer
	BackURLs             BackURLs
	AutoReturn           string
	BinaryMode           bool
	ExternalReference    string
	ExcludedPaymentTypes []string
	NotificationURL      string
	Metadata             map[string]any
}

// GatewayPayment is the gateway's view of a payment.
type GatewayPayment struct {
	ID                string
	Status            string
	StatusDetail      string
	TransactionAmount float64
	CurrencyID        string
	PaymentMethodID   string
	PaymentTypeID     string
	Metadata          map[string]any
	Raw               json.RawMessage
}

// UserID reads the owning user from metadata. The gateway may rewrite keys to snake_case.
func (p GatewayPayment) UserID() string {
	for _, k := range []string{"userId", "user_id"} {
		if s, ok := p.Metadata[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
