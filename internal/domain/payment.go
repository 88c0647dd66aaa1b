package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// Payment is the local record of a gateway payment (table pagamentos).
type Payment struct {
	PaymentID    string
	UserID       string
	Status       string
	StatusDetail string
	Valor        float64
	Moeda        string
	Metodo       string
	Tipo         string
	RawData      json.RawMessage
	UpdatedAt    time.Time
}

// UserStatusForPayment maps a gateway payment status to the directory status it implies.
// Unknown statuses pass through normalized.
func UserStatusForPayment(paymentStatus string) UserStatus {
	s := strings.ToLower(strings.TrimSpace(paymentStatus))
	switch s {
	case "approved":
		return StatusAtivo
	case "pending", "in_process":
		return StatusPendente
	case "rejected":
		return StatusSuspenso
	case "cancelled", "cancelled_by_collector":
		return StatusCancelado
	case "refunded", "charged_back":
		return StatusReembolso
	default:
		return UserStatus(s)
	}
}

// PaymentPreference is what the gateway returns when a checkout is created.
type PaymentPreference struct {
	ID               string
	InitPoint        string
	SandboxInitPoint string
}
