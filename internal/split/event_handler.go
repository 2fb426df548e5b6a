package split

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/autorentar/rental-payments/internal/core/events"
)

// OwnerResolver finds the car owner behind a booking.
type OwnerResolver interface {
	OwnerForBooking(ctx context.Context, bookingID string) (string, error)
}

type EventHandler struct {
	service ServiceAPI
	owners  OwnerResolver
	logger  *slog.Logger
}

func NewEventHandler(service ServiceAPI, owners OwnerResolver, logger *slog.Logger) *EventHandler {
	return &EventHandler{
		service: service,
		owners:  owners,
		logger:  logger,
	}
}

func (h *EventHandler) HandlePaymentCompleted(ctx context.Context, event events.Event) error {
	completed, ok := event.(*events.PaymentCompletedEvent)
	if !ok {
		h.logger.Error("invalid event type for payment completed handler", "event_type", event.EventType())
		return fmt.Errorf("expected PaymentCompletedEvent, got %T", event)
	}

	ownerID, err := h.owners.OwnerForBooking(ctx, completed.BookingID)
	if err != nil {
		return fmt.Errorf("resolve owner for booking %s: %w", completed.BookingID, err)
	}

	result, err := h.service.Process(ctx, Request{
		PaymentID: completed.PaymentID,
		OwnerID:   ownerID,
	})
	if err != nil {
		return fmt.Errorf("split payment %s: %w", completed.PaymentID, err)
	}

	h.logger.Info("payment split from webhook",
		"payment_id", completed.PaymentID,
		"owner_id", ownerID,
		"total_split_cents", result.TotalSplitCents,
		"event_id", completed.EventID())
	return nil
}

func (h *EventHandler) RegisterEventHandlers(eventBus *events.EventBus) {
	eventBus.Subscribe(events.EventTypePaymentCompleted, h.HandlePaymentCompleted)

	h.logger.Info("split event handlers registered",
		"handlers", []string{events.EventTypePaymentCompleted})
}
