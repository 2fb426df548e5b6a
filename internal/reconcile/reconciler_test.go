package reconcile_test

import (
	"context"
	stderrors "errors"
	"log/slog"
	"os"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/autorentar/rental-payments/internal"
	"github.com/autorentar/rental-payments/internal/core/datamodel/payment"
	"github.com/autorentar/rental-payments/internal/core/datamodel/paymentgateway"
	"github.com/autorentar/rental-payments/internal/reconcile"
)

type fakeProvider struct {
	statuses map[string]string
}

func (f *fakeProvider) Name() string { return payment.ProviderMercadoPago }

func (f *fakeProvider) Lookup(ctx context.Context, lookup paymentgateway.StatusLookup) (*paymentgateway.StatusResult, error) {
	status, ok := f.statuses[lookup.ProviderPaymentID]
	if !ok {
		return nil, stderrors.New("payment not found at provider")
	}
	return &paymentgateway.StatusResult{ProviderPaymentID: lookup.ProviderPaymentID, Status: status}, nil
}

type fakePayments struct {
	mu          sync.Mutex
	pending     []*payment.Payment
	transitions map[string]string
}

func (f *fakePayments) ListByStatus(ctx context.Context, status string, limit int) ([]*payment.Payment, error) {
	return f.pending, nil
}

func (f *fakePayments) TransitionTo(ctx context.Context, p *payment.Payment, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.transitions[p.ID] = status
	return nil
}

func strPtr(s string) *string { return &s }

var _ = Describe("Reconciler", func() {
	var (
		payments   *fakePayments
		reconciler *reconcile.Reconciler
	)

	BeforeEach(func() {
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		payments = &fakePayments{
			transitions: map[string]string{},
			pending: []*payment.Payment{
				{ID: "p-approved", Status: payment.StatusProcessing, Provider: payment.ProviderMercadoPago, ProviderPaymentID: strPtr("1001")},
				{ID: "p-rejected", Status: payment.StatusProcessing, Provider: payment.ProviderMercadoPago, ProviderPaymentID: strPtr("1002")},
				{ID: "p-in-process", Status: payment.StatusProcessing, Provider: payment.ProviderMercadoPago, ProviderPaymentID: strPtr("1003")},
				{ID: "p-unknown", Status: payment.StatusProcessing, Provider: payment.ProviderMercadoPago, ProviderPaymentID: strPtr("1004")},
				{ID: "p-stripe", Status: payment.StatusProcessing, Provider: payment.ProviderStripe, ProviderPaymentID: strPtr("pi_1")},
				{ID: "p-no-provider-id", Status: payment.StatusProcessing, Provider: payment.ProviderMercadoPago},
			},
		}
		provider := &fakeProvider{statuses: map[string]string{
			"1001": paymentgateway.ProviderStatusApproved,
			"1002": paymentgateway.ProviderStatusRejected,
			"1003": paymentgateway.ProviderStatusInProcess,
		}}
		reconciler = reconcile.NewReconciler(payments, []reconcile.Provider{provider}, internal.ReconcileConfig{
			MaxWorkers:   2,
			JobQueueSize: 10,
			BatchSize:    50,
			Timeout:      time.Second,
		}, logger)
	})

	AfterEach(func() {
		reconciler.Shutdown()
	})

	It("applies terminal provider statuses", func() {
		summary, err := reconciler.RunOnce(context.Background())

		Expect(err).NotTo(HaveOccurred())
		Expect(summary).To(Equal(reconcile.Summary{
			Checked:   6,
			Updated:   2,
			Unchanged: 1,
			Skipped:   2,
			Failed:    1,
		}))
		Expect(payments.transitions).To(Equal(map[string]string{
			"p-approved": payment.StatusSucceeded,
			"p-rejected": payment.StatusFailed,
		}))
	})
})

var _ = Describe("InternalStatus", func() {
	DescribeTable("maps provider statuses",
		func(providerStatus, expected string, terminal bool) {
			status, ok := reconcile.InternalStatus(providerStatus)
			Expect(ok).To(Equal(terminal))
			Expect(status).To(Equal(expected))
		},
		Entry("approved", paymentgateway.ProviderStatusApproved, payment.StatusSucceeded, true),
		Entry("cancelled", paymentgateway.ProviderStatusCancelled, payment.StatusFailed, true),
		Entry("refunded", paymentgateway.ProviderStatusRefunded, payment.StatusRefunded, true),
		Entry("charged back", paymentgateway.ProviderStatusChargedBack, payment.StatusChargeback, true),
		Entry("pending", paymentgateway.ProviderStatusPending, "", false),
	)
})
