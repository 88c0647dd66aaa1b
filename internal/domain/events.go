package domain

import "time"

// Events published to the message broker. Consumers must tolerate unknown fields.

type UserStatusChangedEvent struct {
	UserID     string    `json:"user_id"`
	Status     string    `json:"status"`
	ChangedBy  string    `json:"changed_by"` // admin id, or "payment_webhook"
	OccurredAt time.Time `json:"occurred_at"`
}

type UserDeletedEvent struct {
	UserID     string    `json:"user_id"`
	DeletedBy  string    `json:"deleted_by"`
	OccurredAt time.Time `json:"occurred_at"`
}

type PaymentStatusChangedEvent struct {
	PaymentID  string    `json:"payment_id"`
	UserID     string    `json:"user_id"`
	Status     string    `json:"status"`
	UserStatus string    `json:"user_status"`
	Amount     float64   `json:"amount"`
	OccurredAt time.Time `json:"occurred_at"`
}
