package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypePaymentCompleted = "payment.completed"
	EventTypePaymentFailed    = "payment.failed"
	EventTypePaymentRefunded  = "payment.refunded"
)

type PaymentCompletedEvent struct {
	BaseEvent
	PaymentID         string `json:"payment_id"`
	BookingID         string `json:"booking_id"`
	Amount            int64  `json:"amount"`
	Provider          string `json:"provider"`
	ProviderPaymentID string `json:"provider_payment_id"`
}

func NewPaymentCompletedEvent(paymentID, bookingID string, amount int64, provider, providerPaymentID string) *PaymentCompletedEvent {
	return &PaymentCompletedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypePaymentCompleted,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"payment_id":          paymentID,
				"booking_id":          bookingID,
				"amount":              amount,
				"provider":            provider,
				"provider_payment_id": providerPaymentID,
			},
		},
		PaymentID:         paymentID,
		BookingID:         bookingID,
		Amount:            amount,
		Provider:          provider,
		ProviderPaymentID: providerPaymentID,
	}
}

// PaymentStatusEvent covers the failed and refunded transitions.
type PaymentStatusEvent struct {
	BaseEvent
	PaymentID string `json:"payment_id"`
	BookingID string `json:"booking_id"`
	Status    string `json:"status"`
}

func NewPaymentFailedEvent(paymentID, bookingID, status string) *PaymentStatusEvent {
	return newPaymentStatusEvent(EventTypePaymentFailed, paymentID, bookingID, status)
}

func NewPaymentRefundedEvent(paymentID, bookingID, status string) *PaymentStatusEvent {
	return newPaymentStatusEvent(EventTypePaymentRefunded, paymentID, bookingID, status)
}

func newPaymentStatusEvent(eventType, paymentID, bookingID, status string) *PaymentStatusEvent {
	return &PaymentStatusEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      eventType,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"payment_id": paymentID,
				"booking_id": bookingID,
				"status":     status,
			},
		},
		PaymentID: paymentID,
		BookingID: bookingID,
		Status:    status,
	}
}
