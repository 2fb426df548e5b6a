package paymentgateway

import (
	"errors"
)

// Provider-side status vocabulary returned by MercadoPago.
const (
	ProviderStatusApproved    = "approved"
	ProviderStatusAuthorized  = "authorized"
	ProviderStatusPending     = "pending"
	ProviderStatusInProcess   = "in_process"
	ProviderStatusInMediation = "in_mediation"
	ProviderStatusRejected    = "rejected"
	ProviderStatusCancelled   = "cancelled"
	ProviderStatusRefunded    = "refunded"
	ProviderStatusChargedBack = "charged_back"
)

type StatusLookup struct {
	PaymentID         string
	ProviderPaymentID string
}

func (r *StatusLookup) Validate() error {
	if r.PaymentID == "" {
		return errors.New("payment_id is required")
	}
	if r.ProviderPaymentID == "" {
		return errors.New("provider_payment_id is required")
	}
	return nil
}

type StatusResult struct {
	ProviderPaymentID string  `json:"provider_payment_id"`
	Status            string  `json:"status"`
	StatusDetail      string  `json:"status_detail"`
	Amount            float64 `json:"amount"`
	Currency          string  `json:"currency"`
}
