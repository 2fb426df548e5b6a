package split_test

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	errors "github.com/autorentar/rental-payments/internal"
	"github.com/autorentar/rental-payments/internal/core/datamodel/payment"
	"github.com/autorentar/rental-payments/internal/core/datamodel/wallet"
	"github.com/autorentar/rental-payments/internal/split"
	"github.com/autorentar/rental-payments/internal/split/lock"
)

type mockPaymentReader struct {
	payments map[string]*payment.Payment
}

func (m *mockPaymentReader) GetPayment(ctx context.Context, id string) (*payment.Payment, error) {
	p, ok := m.payments[id]
	if !ok {
		return nil, errors.ErrPaymentNotFound
	}
	return p, nil
}

type mockLedger struct {
	mu        sync.Mutex
	txs       []*wallet.Transaction
	failLegs  map[string]error
	nextIDSeq int
}

func newMockLedger() *mockLedger {
	return &mockLedger{failLegs: map[string]error{}}
}

func (m *mockLedger) Record(ctx context.Context, tx *wallet.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failLegs[tx.SplitLeg]; err != nil {
		return err
	}
	m.nextIDSeq++
	tx.ID = fmt.Sprintf("tx-%d", m.nextIDSeq)
	m.txs = append(m.txs, tx)
	return nil
}

func (m *mockLedger) FindByReference(ctx context.Context, referenceID string) ([]*wallet.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*wallet.Transaction
	for _, tx := range m.txs {
		if tx.ReferenceID == referenceID {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (m *mockLedger) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.txs)
}

var _ = Describe("Service", func() {
	var (
		ctx      context.Context
		payments *mockPaymentReader
		ledger   *mockLedger
		opts     split.Options
		logger   *slog.Logger
	)

	newService := func() *split.Service {
		return split.NewService(payments, ledger, lock.NewLocal(), opts, logger)
	}

	BeforeEach(func() {
		ctx = context.Background()
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		payments = &mockPaymentReader{payments: map[string]*payment.Payment{
			"pay-done":    {ID: "pay-done", Amount: 10000, Status: payment.StatusCompleted},
			"pay-ok":      {ID: "pay-ok", Amount: 10001, Status: payment.StatusSucceeded},
			"pay-pending": {ID: "pay-pending", Amount: 10000, Status: "pending"},
			"pay-refund":  {ID: "pay-refund", Amount: 10000, Status: payment.StatusRefunded},
		}}
		ledger = newMockLedger()
		opts = split.Options{
			Idempotent:        true,
			PlatformWalletID:  "wallet-platform",
			InsuranceWalletID: "wallet-insurance",
		}
	})

	It("records three legs for a completed payment", func() {
		result, err := newService().Process(ctx, split.Request{PaymentID: "pay-done", OwnerID: "owner-1"})

		Expect(err).NotTo(HaveOccurred())
		Expect(result.OwnerTransactionID).NotTo(BeEmpty())
		Expect(result.PlatformTransactionID).NotTo(BeEmpty())
		Expect(result.InsuranceTransactionID).NotTo(BeNil())
		Expect(result.TotalSplitCents).To(Equal(int64(10000)))

		Expect(ledger.txs).To(HaveLen(3))
		Expect(ledger.txs[0].WalletID).To(Equal("owner-1"))
		Expect(ledger.txs[0].Amount).To(Equal(int64(8500)))
		Expect(ledger.txs[0].Type).To(Equal(wallet.TypeCredit))
		Expect(ledger.txs[0].Status).To(Equal(wallet.StatusCompleted))
		Expect(ledger.txs[1].WalletID).To(Equal("wallet-platform"))
		Expect(ledger.txs[2].WalletID).To(Equal("wallet-insurance"))
	})

	It("reports the recorded total, not the payment total", func() {
		result, err := newService().Process(ctx, split.Request{PaymentID: "pay-ok", OwnerID: "owner-1"})

		Expect(err).NotTo(HaveOccurred())
		Expect(result.TotalSplitCents).To(Equal(int64(10000)))
	})

	It("rejects missing ids", func() {
		_, err := newService().Process(ctx, split.Request{OwnerID: "owner-1"})

		appErr, ok := errors.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.Code).To(Equal(errors.ErrCodeMissingField))
		Expect(appErr.Error()).To(Equal("Missing required field: payment_id"))
	})

	It("rejects owner ids longer than a wallet id", func() {
		_, err := newService().Process(ctx, split.Request{PaymentID: "pay-ok", OwnerID: strings.Repeat("o", 65)})

		Expect(errors.HasCode(err, errors.ErrCodeValidationFailed)).To(BeTrue())
		Expect(ledger.txs).To(BeEmpty())
	})

	It("returns not found for unknown payments", func() {
		_, err := newService().Process(ctx, split.Request{PaymentID: "nope", OwnerID: "owner-1"})
		Expect(err).To(MatchError(errors.ErrPaymentNotFound))
	})

	DescribeTable("rejects payments that are not completed without writing",
		func(id string) {
			_, err := newService().Process(ctx, split.Request{PaymentID: id, OwnerID: "owner-1"})
			Expect(err).To(MatchError(errors.ErrInvalidPaymentState))
			Expect(ledger.count()).To(BeZero())
		},
		Entry("pending", "pay-pending"),
		Entry("refunded", "pay-refund"),
	)

	It("rejects a bad override before writing", func() {
		_, err := newService().Process(ctx, split.Request{
			PaymentID: "pay-done",
			OwnerID:   "owner-1",
			Config:    &split.Percentages{Owner: 50, Platform: 50, Insurance: 1},
		})

		Expect(err).To(MatchError(errors.ErrInvalidSplitConfig))
		Expect(ledger.count()).To(BeZero())
	})

	It("skips the insurance leg when its share is zero", func() {
		result, err := newService().Process(ctx, split.Request{
			PaymentID: "pay-done",
			OwnerID:   "owner-1",
			Config:    &split.Percentages{Owner: 90, Platform: 10},
		})

		Expect(err).NotTo(HaveOccurred())
		Expect(result.InsuranceTransactionID).To(BeNil())
		Expect(ledger.txs).To(HaveLen(2))
	})

	It("aborts when the owner leg fails", func() {
		ledger.failLegs[wallet.LegOwner] = fmt.Errorf("db down")

		_, err := newService().Process(ctx, split.Request{PaymentID: "pay-done", OwnerID: "owner-1"})
		Expect(err).To(MatchError(errors.ErrSplitRecordingFailed))
		Expect(ledger.count()).To(BeZero())
	})

	It("keeps owner and platform when the insurance leg fails", func() {
		ledger.failLegs[wallet.LegInsurance] = fmt.Errorf("constraint")

		result, err := newService().Process(ctx, split.Request{PaymentID: "pay-done", OwnerID: "owner-1"})
		Expect(err).NotTo(HaveOccurred())
		Expect(result.InsuranceTransactionID).To(BeNil())
		Expect(result.TotalSplitCents).To(Equal(int64(9500)))
	})

	It("falls back to placeholder wallets", func() {
		opts.PlatformWalletID = ""
		opts.InsuranceWalletID = ""

		_, err := newService().Process(ctx, split.Request{PaymentID: "pay-done", OwnerID: "owner-1"})
		Expect(err).NotTo(HaveOccurred())
		Expect(ledger.txs[1].WalletID).To(Equal(errors.DefaultPlatformWalletID))
		Expect(ledger.txs[2].WalletID).To(Equal(errors.DefaultInsuranceWalletID))
	})

	Context("idempotency", func() {
		It("returns the recorded legs on replay", func() {
			svc := newService()
			first, err := svc.Process(ctx, split.Request{PaymentID: "pay-done", OwnerID: "owner-1"})
			Expect(err).NotTo(HaveOccurred())

			second, err := svc.Process(ctx, split.Request{PaymentID: "pay-done", OwnerID: "owner-1"})
			Expect(err).NotTo(HaveOccurred())
			Expect(second).To(Equal(first))
			Expect(ledger.count()).To(Equal(3))
		})

		It("serializes concurrent splits of one payment", func() {
			svc := newService()
			var wg sync.WaitGroup
			for i := 0; i < 8; i++ {
				wg.Add(1)
				go func() {
					defer GinkgoRecover()
					defer wg.Done()
					_, err := svc.Process(ctx, split.Request{PaymentID: "pay-done", OwnerID: "owner-1"})
					Expect(err).NotTo(HaveOccurred())
				}()
			}
			wg.Wait()
			Expect(ledger.count()).To(Equal(3))
		})
	})
})
