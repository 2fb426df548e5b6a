package compat

import (
	"time"

	errors "github.com/autorentar/rental-payments/internal"
	"github.com/autorentar/rental-payments/internal/core/common/validation"
	"github.com/autorentar/rental-payments/internal/core/datamodel/payment"
)

type PaymentRow = payment.Payment

type PaymentInsert struct {
	BookingID         string  `json:"booking_id"`
	UserID            *string `json:"user_id,omitempty"`
	AmountCents       int64   `json:"amount_cents"`
	Currency          *string `json:"currency,omitempty"`
	Status            *string `json:"status,omitempty"`
	Provider          string  `json:"provider"`
	ProviderPaymentID *string `json:"provider_payment_id,omitempty"`
	ProviderIntentID  *string `json:"provider_intent_id,omitempty"`
	Description       *string `json:"description,omitempty"`
	PaymentMethodID   *string `json:"payment_method_id,omitempty"`
}

type PaymentUpdate struct {
	UserID            *string `json:"user_id,omitempty"`
	AmountCents       *int64  `json:"amount_cents,omitempty"`
	Currency          *string `json:"currency,omitempty"`
	Status            *string `json:"status,omitempty"`
	Provider          *string `json:"provider,omitempty"`
	ProviderPaymentID *string `json:"provider_payment_id,omitempty"`
	ProviderIntentID  *string `json:"provider_intent_id,omitempty"`
	Description       *string `json:"description,omitempty"`
	PaymentMethodID   *string `json:"payment_method_id,omitempty"`
}

type PaymentDTO struct {
	ID                string    `json:"id"`
	BookingID         string    `json:"booking_id"`
	UserID            *string   `json:"user_id,omitempty"`
	AmountCents       int64     `json:"amount_cents"`
	Currency          string    `json:"currency"`
	Status            string    `json:"status"`
	Provider          string    `json:"provider"`
	ProviderPaymentID *string   `json:"provider_payment_id,omitempty"`
	ProviderIntentID  *string   `json:"provider_intent_id,omitempty"`
	Description       *string   `json:"description,omitempty"`
	PaymentMethodID   *string   `json:"payment_method_id,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

var PaymentUpdatePolicies = map[string]Policy{
	"user_id":             Definedness,
	"amount_cents":        Definedness,
	"currency":            Definedness,
	"status":              Definedness,
	"provider":            Definedness,
	"provider_payment_id": Definedness,
	"provider_intent_id":  Definedness,
	"description":         Definedness,
	"payment_method_id":   Definedness,
}

var paymentUpdateRules = []fieldRule[PaymentUpdate]{
	{name: "user_id", columns: []string{"user_id"}, get: func(d PaymentUpdate) (any, bool) { return opt(d.UserID) }},
	{name: "amount_cents", columns: []string{"amount"}, get: func(d PaymentUpdate) (any, bool) { return opt(d.AmountCents) }},
	{name: "currency", columns: []string{"currency"}, get: func(d PaymentUpdate) (any, bool) { return opt(d.Currency) }},
	{name: "status", columns: []string{"status"}, get: func(d PaymentUpdate) (any, bool) { return opt(d.Status) }},
	{name: "provider", columns: []string{"provider"}, get: func(d PaymentUpdate) (any, bool) { return opt(d.Provider) }},
	{name: "provider_payment_id", columns: []string{"provider_payment_id"}, get: func(d PaymentUpdate) (any, bool) { return opt(d.ProviderPaymentID) }},
	{name: "provider_intent_id", columns: []string{"provider_intent_id"}, get: func(d PaymentUpdate) (any, bool) { return opt(d.ProviderIntentID) }},
	{name: "description", columns: []string{"description"}, get: func(d PaymentUpdate) (any, bool) { return opt(d.Description) }},
	{name: "payment_method_id", columns: []string{"payment_method_id"}, get: func(d PaymentUpdate) (any, bool) { return opt(d.PaymentMethodID) }},
}

func (m *Mapper) ToDBPaymentInsert(in PaymentInsert) (*PaymentRow, error) {
	status := payment.StatusRequiresPayment
	if in.Status != nil {
		status = *in.Status
	}
	currency := payment.DefaultCurrency
	if in.Currency != nil && *in.Currency != "" {
		currency = *in.Currency
	}

	v := validation.NewValidator()
	v.Field("provider", in.Provider).OneOf(errors.ErrCodeUnknownEnumValue, payment.Providers...)
	v.Field("status", status).OneOf(errors.ErrCodeUnknownEnumValue, payment.Statuses...)
	if appErr := v.Validate(); appErr != nil {
		return nil, appErr
	}

	return &PaymentRow{
		BookingID:         in.BookingID,
		UserID:            in.UserID,
		Amount:            in.AmountCents,
		Currency:          currency,
		Status:            status,
		Provider:          in.Provider,
		ProviderPaymentID: in.ProviderPaymentID,
		ProviderIntentID:  in.ProviderIntentID,
		Description:       in.Description,
		PaymentMethodID:   in.PaymentMethodID,
	}, nil
}

func (m *Mapper) ToDBPaymentUpdate(in PaymentUpdate) (Patch, error) {
	v := validation.NewValidator()
	if in.Provider != nil {
		v.Field("provider", *in.Provider).OneOf(errors.ErrCodeUnknownEnumValue, payment.Providers...)
	}
	if in.Status != nil {
		v.Field("status", *in.Status).OneOf(errors.ErrCodeUnknownEnumValue, payment.Statuses...)
	}
	if appErr := v.Validate(); appErr != nil {
		return nil, appErr
	}
	return mapUpdate(m, in, paymentUpdateRules, PaymentUpdatePolicies), nil
}

func FromDBPayment(row *PaymentRow) PaymentDTO {
	return PaymentDTO{
		ID:                row.ID,
		BookingID:         row.BookingID,
		UserID:            row.UserID,
		AmountCents:       row.Amount,
		Currency:          row.Currency,
		Status:            row.Status,
		Provider:          row.Provider,
		ProviderPaymentID: row.ProviderPaymentID,
		ProviderIntentID:  row.ProviderIntentID,
		Description:       row.Description,
		PaymentMethodID:   row.PaymentMethodID,
		CreatedAt:         row.CreatedAt,
		UpdatedAt:         row.UpdatedAt,
	}
}
