package payment

// WebhookPayload is the provider notification body.
type WebhookPayload struct {
	Provider  string `json:"provider"`
	EventType string `json:"event_type"`
	PaymentID string `json:"payment_id"`
	Status    string `json:"status"`
	Signature string `json:"signature,omitempty"`
}

type WebhookResult struct {
	Processed bool   `json:"processed"`
	PaymentID string `json:"payment_id,omitempty"`
	Status    string `json:"status,omitempty"`
}

type WebhookResponse struct {
	Success bool `json:"success"`
	*WebhookResult
}
