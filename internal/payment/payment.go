package payment

import (
	"context"

	"github.com/autorentar/rental-payments/internal/compat"
	"github.com/autorentar/rental-payments/internal/core/datamodel/payment"
	"github.com/autorentar/rental-payments/internal/core/events"
)

// RepositoryAPI is the persistence port for payments. Lookups return
// internal.ErrPaymentNotFound when nothing matches.
type RepositoryAPI interface {
	Create(ctx context.Context, p *payment.Payment) error
	GetByID(ctx context.Context, id string) (*payment.Payment, error)
	GetByProviderPaymentID(ctx context.Context, providerPaymentID string) (*payment.Payment, error)
	Update(ctx context.Context, id string, patch compat.Patch) error
	ListByStatus(ctx context.Context, status string, limit int) ([]*payment.Payment, error)
}

type ServiceAPI interface {
	CreatePayment(ctx context.Context, in compat.PaymentInsert) (*payment.Payment, error)
	GetPayment(ctx context.Context, id string) (*payment.Payment, error)
	HandleWebhookEvent(ctx context.Context, eventType, paymentID string) (*WebhookResult, error)
	TransitionTo(ctx context.Context, p *payment.Payment, status string) error
	ListByStatus(ctx context.Context, status string, limit int) ([]*payment.Payment, error)
}

// webhookTransitions maps handled webhook event types to the status they set.
var webhookTransitions = map[string]string{
	events.EventTypePaymentCompleted: payment.StatusSucceeded,
	events.EventTypePaymentFailed:    payment.StatusFailed,
	events.EventTypePaymentRefunded:  payment.StatusRefunded,
}

// StatusEvent returns the event published when a payment enters status.
func StatusEvent(status string) (string, bool) {
	switch status {
	case payment.StatusSucceeded, payment.StatusCompleted:
		return events.EventTypePaymentCompleted, true
	case payment.StatusFailed:
		return events.EventTypePaymentFailed, true
	case payment.StatusRefunded:
		return events.EventTypePaymentRefunded, true
	}
	return "", false
}
