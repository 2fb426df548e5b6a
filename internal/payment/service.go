package payment

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	errors "github.com/autorentar/rental-payments/internal"
	"github.com/autorentar/rental-payments/internal/compat"
	"github.com/autorentar/rental-payments/internal/core/datamodel/payment"
	"github.com/autorentar/rental-payments/internal/core/events"
)

type Service struct {
	repository RepositoryAPI
	eventBus   *events.EventBus
	mapper     *compat.Mapper
	logger     *slog.Logger
}

func NewService(repository RepositoryAPI, eventBus *events.EventBus, mapper *compat.Mapper, logger *slog.Logger) *Service {
	if mapper == nil {
		mapper = compat.NewMapper(nil)
	}
	return &Service{
		repository: repository,
		eventBus:   eventBus,
		mapper:     mapper,
		logger:     logger,
	}
}

func (s *Service) CreatePayment(ctx context.Context, in compat.PaymentInsert) (*payment.Payment, error) {
	row, err := s.mapper.ToDBPaymentInsert(in)
	if err != nil {
		return nil, err
	}
	if err := s.repository.Create(ctx, row); err != nil {
		s.logger.Error("failed to create payment record", "error", err, "booking_id", in.BookingID)
		return nil, fmt.Errorf("failed to create payment record: %w", err)
	}
	s.logger.Info("payment record created", "payment_id", row.ID, "booking_id", row.BookingID, "status", row.Status)
	return row, nil
}

// GetPayment looks a payment up by its id and then by the provider's id,
// since webhooks may carry either.
func (s *Service) GetPayment(ctx context.Context, id string) (*payment.Payment, error) {
	p, err := s.repository.GetByID(ctx, id)
	if err == nil {
		return p, nil
	}
	if !errors.HasCode(err, errors.ErrCodePaymentNotFound) {
		return nil, err
	}
	return s.repository.GetByProviderPaymentID(ctx, id)
}

func (s *Service) ListByStatus(ctx context.Context, status string, limit int) ([]*payment.Payment, error) {
	return s.repository.ListByStatus(ctx, status, limit)
}

// HandleWebhookEvent applies a provider event. Unhandled event types are a
// no-op with Processed false.
func (s *Service) HandleWebhookEvent(ctx context.Context, eventType, paymentID string) (*WebhookResult, error) {
	status, ok := webhookTransitions[eventType]
	if !ok {
		s.logger.Info("webhook event ignored", "event_type", eventType, "payment_id", paymentID)
		return &WebhookResult{Processed: false}, nil
	}

	p, err := s.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	if err := s.TransitionTo(ctx, p, status); err != nil {
		return nil, err
	}

	return &WebhookResult{Processed: true, PaymentID: p.ID, Status: status}, nil
}

// TransitionTo writes the new status and publishes the matching event.
// Completion is published synchronously so the split outcome reaches the
// caller; failures and refunds are fire-and-forget.
func (s *Service) TransitionTo(ctx context.Context, p *payment.Payment, status string) error {
	patch, err := s.mapper.ToDBPaymentUpdate(compat.PaymentUpdate{Status: &status})
	if err != nil {
		return err
	}
	if err := s.repository.Update(ctx, p.ID, patch); err != nil {
		return errors.NewInternalError("failed to update payment status", err)
	}

	s.logger.Info("payment status updated",
		"payment_id", p.ID,
		"old_status", p.Status,
		"new_status", status)
	p.Status = status

	eventType, ok := StatusEvent(status)
	if !ok || s.eventBus == nil {
		return nil
	}

	providerPaymentID := ""
	if p.ProviderPaymentID != nil {
		providerPaymentID = *p.ProviderPaymentID
	}

	switch eventType {
	case events.EventTypePaymentCompleted:
		event := events.NewPaymentCompletedEvent(p.ID, p.BookingID, p.Amount, p.Provider, providerPaymentID)
		if err := s.eventBus.PublishSync(ctx, event); err != nil {
			return splitFailure(err)
		}
		s.logger.Info("published payment completed event", "event_id", event.EventID())
	case events.EventTypePaymentFailed:
		_ = s.eventBus.Publish(ctx, events.NewPaymentFailedEvent(p.ID, p.BookingID, status))
	case events.EventTypePaymentRefunded:
		_ = s.eventBus.Publish(ctx, events.NewPaymentRefundedEvent(p.ID, p.BookingID, status))
	}
	return nil
}

// splitFailure keeps server-side split errors as they are and turns anything
// else into a 500, since the payment status is already written.
func splitFailure(err error) error {
	if appErr, ok := errors.IsAppError(err); ok && appErr.StatusCode >= http.StatusInternalServerError {
		return err
	}
	return errors.NewInternalError("Payment split failed", err)
}
