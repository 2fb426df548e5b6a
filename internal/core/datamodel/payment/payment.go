package payment

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusRequiresPayment = "requires_payment"
	StatusProcessing      = "processing"
	StatusSucceeded       = "succeeded"
	StatusCompleted       = "completed"
	StatusFailed          = "failed"
	StatusRefunded        = "refunded"
	StatusPartialRefund   = "partial_refund"
	StatusChargeback      = "chargeback"
)

const (
	ProviderMercadoPago = "mercadopago"
	ProviderStripe      = "stripe"
	ProviderOther       = "otro"
)

const DefaultCurrency = "ARS"

// Payment is one row of the payments table. Amount is in cents.
type Payment struct {
	ID                string    `gorm:"column:id;primaryKey"`
	BookingID         string    `gorm:"column:booking_id;not null;index"`
	UserID            *string   `gorm:"column:user_id"`
	Amount            int64     `gorm:"column:amount;not null"`
	Currency          string    `gorm:"column:currency;not null"`
	Status            string    `gorm:"column:status;not null;index"`
	Provider          string    `gorm:"column:provider;not null"`
	ProviderPaymentID *string   `gorm:"column:provider_payment_id;index"`
	ProviderIntentID  *string   `gorm:"column:provider_intent_id"`
	Description       *string   `gorm:"column:description"`
	PaymentMethodID   *string   `gorm:"column:payment_method_id"`
	CreatedAt         time.Time `gorm:"column:created_at"`
	UpdatedAt         time.Time `gorm:"column:updated_at"`
}

func (Payment) TableName() string {
	return "payments"
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// IsSplittable reports whether the payment reached the completed state.
// succeeded is the provider-facing synonym written by webhooks.
func (p *Payment) IsSplittable() bool {
	return p.Status == StatusCompleted || p.Status == StatusSucceeded
}

// Statuses lists every value the status column accepts.
var Statuses = []string{
	StatusRequiresPayment, StatusProcessing, StatusSucceeded, StatusCompleted,
	StatusFailed, StatusRefunded, StatusPartialRefund, StatusChargeback,
}

// Providers lists every value the provider column accepts.
var Providers = []string{ProviderMercadoPago, ProviderStripe, ProviderOther}
