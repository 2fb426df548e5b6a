package split_test

import (
	"context"
	"log/slog"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	errors "github.com/autorentar/rental-payments/internal"
	"github.com/autorentar/rental-payments/internal/core/datamodel/payment"
	"github.com/autorentar/rental-payments/internal/core/events"
	"github.com/autorentar/rental-payments/internal/split"
	"github.com/autorentar/rental-payments/internal/split/lock"
)

type staticOwners map[string]string

func (s staticOwners) OwnerForBooking(ctx context.Context, bookingID string) (string, error) {
	owner, ok := s[bookingID]
	if !ok {
		return "", errors.ErrOwnerNotFound
	}
	return owner, nil
}

var _ = Describe("Split EventHandler", func() {
	var (
		ctx    context.Context
		ledger *mockLedger
		bus    *events.EventBus
	)

	BeforeEach(func() {
		ctx = context.Background()
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		payments := &mockPaymentReader{payments: map[string]*payment.Payment{
			"pay-done": {ID: "pay-done", BookingID: "booking-1", Amount: 10000, Status: payment.StatusSucceeded},
		}}
		ledger = newMockLedger()
		service := split.NewService(payments, ledger, lock.NewLocal(), split.Options{Idempotent: true}, logger)

		bus = events.NewEventBus(logger)
		split.NewEventHandler(service, staticOwners{"booking-1": "owner-1"}, logger).RegisterEventHandlers(bus)
	})

	It("subscribes to payment completion", func() {
		Expect(bus.HasHandlers(events.EventTypePaymentCompleted)).To(BeTrue())
	})

	It("splits the payment for the car owner", func() {
		event := events.NewPaymentCompletedEvent("pay-done", "booking-1", 10000, payment.ProviderMercadoPago, "mp-1")

		Expect(bus.PublishSync(ctx, event)).To(Succeed())

		Expect(ledger.count()).To(Equal(3))
		Expect(ledger.txs[0].WalletID).To(Equal("owner-1"))
	})

	It("does not split twice when the event is replayed", func() {
		event := events.NewPaymentCompletedEvent("pay-done", "booking-1", 10000, payment.ProviderMercadoPago, "mp-1")

		Expect(bus.PublishSync(ctx, event)).To(Succeed())
		Expect(bus.PublishSync(ctx, event)).To(Succeed())

		Expect(ledger.count()).To(Equal(3))
	})

	It("fails when the booking has no owner", func() {
		event := events.NewPaymentCompletedEvent("pay-done", "booking-x", 10000, payment.ProviderMercadoPago, "mp-1")

		err := bus.PublishSync(ctx, event)

		Expect(errors.HasCode(err, errors.ErrCodeOwnerNotFound)).To(BeTrue())
		Expect(ledger.count()).To(BeZero())
	})
})
