package split_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	errors "github.com/autorentar/rental-payments/internal"
	"github.com/autorentar/rental-payments/internal/core/datamodel/payment"
	"github.com/autorentar/rental-payments/internal/split"
	"github.com/autorentar/rental-payments/internal/split/lock"
	"github.com/autorentar/rental-payments/internal/transport"
)

var _ = Describe("Split Handler", func() {
	var (
		ledger  *mockLedger
		handler *split.Handler
	)

	BeforeEach(func() {
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		payments := &mockPaymentReader{payments: map[string]*payment.Payment{
			"pay-done":    {ID: "pay-done", Amount: 10000, Status: payment.StatusCompleted},
			"pay-pending": {ID: "pay-pending", Amount: 10000, Status: payment.StatusProcessing},
		}}
		ledger = newMockLedger()
		service := split.NewService(payments, ledger, lock.NewLocal(), split.Options{
			Idempotent:        true,
			PlatformWalletID:  "wallet-platform",
			InsuranceWalletID: "wallet-insurance",
		}, logger)
		handler = split.NewHandler(transport.NewBaseHandler(logger), service)
	})

	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/process-payment-split", bytes.NewBufferString(body))
		w := httptest.NewRecorder()
		handler.ProcessSplit(w, req)
		return w
	}

	decodeError := func(w *httptest.ResponseRecorder) transport.ErrorResponse {
		var resp transport.ErrorResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		return resp
	}

	It("splits a completed payment", func() {
		w := post(`{"payment_id":"pay-done","owner_id":"owner-1"}`)

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Header().Get("Content-Type")).To(ContainSubstring("application/json"))

		var resp split.Response
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.Success).To(BeTrue())
		Expect(resp.Result.TotalSplitCents).To(Equal(int64(10000)))
		Expect(resp.Result.InsuranceTransactionID).NotTo(BeNil())
	})

	It("omits the insurance id when the insurance share is zero", func() {
		w := post(`{"payment_id":"pay-done","owner_id":"owner-1","config":{"owner_percentage":90,"platform_percentage":10,"insurance_percentage":0}}`)

		Expect(w.Code).To(Equal(http.StatusOK))
		var raw map[string]map[string]interface{}
		Expect(json.NewDecoder(w.Body).Decode(&raw)).To(Succeed())
		Expect(raw["result"]).NotTo(HaveKey("insurance_transaction_id"))
		Expect(raw["result"]).To(HaveKeyWithValue("total_split_cents", BeNumerically("==", 10000)))
	})

	It("rejects methods other than POST", func() {
		req := httptest.NewRequest(http.MethodGet, "/process-payment-split", nil)
		w := httptest.NewRecorder()

		handler.ProcessSplit(w, req)

		Expect(w.Code).To(Equal(http.StatusMethodNotAllowed))
	})

	It("rejects malformed JSON", func() {
		w := post(`{"payment_id":`)

		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(decodeError(w).Error).To(Equal("Invalid JSON payload"))
	})

	It("names the missing field", func() {
		w := post(`{"payment_id":"pay-done"}`)

		Expect(w.Code).To(Equal(http.StatusBadRequest))
		resp := decodeError(w)
		Expect(resp.Error).To(Equal("Missing required field: owner_id"))
		Expect(resp.Code).To(Equal(errors.ErrCodeMissingField))
	})

	It("rejects percentages that do not sum to 100", func() {
		w := post(`{"payment_id":"pay-done","owner_id":"owner-1","config":{"owner_percentage":80,"platform_percentage":10,"insurance_percentage":5}}`)

		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(decodeError(w).Code).To(Equal(errors.ErrCodeInvalidSplitConfig))
		Expect(ledger.count()).To(BeZero())
	})

	It("rejects payments that are not completed", func() {
		w := post(`{"payment_id":"pay-pending","owner_id":"owner-1"}`)

		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(decodeError(w).Code).To(Equal(errors.ErrCodeInvalidPaymentState))
	})

	It("returns 404 for unknown payments", func() {
		w := post(`{"payment_id":"nope","owner_id":"owner-1"}`)

		Expect(w.Code).To(Equal(http.StatusNotFound))
		Expect(decodeError(w).Code).To(Equal(errors.ErrCodePaymentNotFound))
	})
})
