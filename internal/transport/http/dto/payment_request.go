package dto

import "encoding/json"

type PreferenceRequest struct {
	Title             string         `json:"title" validate:"max=256"`
	Description       string         `json:"description"`
	Price             *float64       `json:"price"`
	ExternalReference string         `json:"externalReference" validate:"max=256"`
	SuccessURL        string         `json:"successUrl" validate:"omitempty,url"`
	FailureURL        string         `json:"failureUrl" validate:"omitempty,url"`
	PendingURL        string         `json:"pendingUrl" validate:"omitempty,url"`
	Metadata          map[string]any `json:"metadata"`
}

func (r *PreferenceRequest) Validate() error {
	return validateStruct(r)
}

// WebhookNotification is the body the gateway posts. Older notifications use
// "topic" and a top-level "id"; newer ones use "type" and "data.id".
type WebhookNotification struct {
	Topic string      `json:"topic"`
	Type  string      `json:"type"`
	ID    json.Number `json:"id"`
	Data  struct {
		ID json.Number `json:"id"`
	} `json:"data"`
}

// Resolve returns the notification topic and payment id, preferring topic and data.id.
func (n WebhookNotification) Resolve() (topic, id string) {
	topic = n.Topic
	if topic == "" {
		topic = n.Type
	}
	id = n.Data.ID.String()
	if id == "" {
		id = n.ID.String()
	}
	return topic, id
}
