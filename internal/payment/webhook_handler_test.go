package payment_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/autorentar/rental-payments/api"
	errors "github.com/autorentar/rental-payments/internal"
	"github.com/autorentar/rental-payments/internal/core/datamodel/payment"
	"github.com/autorentar/rental-payments/internal/core/events"
	paymentpkg "github.com/autorentar/rental-payments/internal/payment"
	"github.com/autorentar/rental-payments/internal/transport"
)

var _ = Describe("Webhook Handler", func() {
	var (
		repo    *memoryRepository
		bus     *events.EventBus
		handler *paymentpkg.WebhookHandler
	)

	BeforeEach(func() {
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		repo = newMemoryRepository(&payment.Payment{
			ID:        pendingPaymentID,
			BookingID: "booking-1",
			Amount:    10000,
			Currency:  payment.DefaultCurrency,
			Status:    payment.StatusProcessing,
			Provider:  payment.ProviderMercadoPago,
		})
		bus = events.NewEventBus(slogger)
		service := paymentpkg.NewService(repo, bus, nil, slogger)

		schema, err := paymentpkg.NewSchemaValidator(api.OpenAPISpec)
		Expect(err).NotTo(HaveOccurred())

		verifier := paymentpkg.NewHMACVerifier(errors.SecurityConfig{
			MercadoPagoSecret:  mpSecret,
			StripeSecret:       stripeSecret,
			SignatureTolerance: 5 * time.Minute,
		})
		handler = paymentpkg.NewWebhookHandler(transport.NewBaseHandler(slogger), service, verifier, schema)
	})

	post := func(body []byte, header string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/payment-webhook", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		if header != "" {
			req.Header.Set("X-Signature", header)
		}
		w := httptest.NewRecorder()
		handler.HandleWebhook(w, req)
		return w
	}

	signed := func(body []byte) *httptest.ResponseRecorder {
		return post(body, paymentpkg.SignHeader(payment.ProviderMercadoPago, mpSecret, time.Now().Unix(), body))
	}

	payloadFor := func(eventType, paymentID string) []byte {
		body, err := json.Marshal(paymentpkg.WebhookPayload{
			Provider:  payment.ProviderMercadoPago,
			EventType: eventType,
			PaymentID: paymentID,
			Status:    "approved",
		})
		Expect(err).NotTo(HaveOccurred())
		return body
	}

	decodeError := func(w *httptest.ResponseRecorder) transport.ErrorResponse {
		var resp transport.ErrorResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		return resp
	}

	It("rejects methods other than POST", func() {
		req := httptest.NewRequest(http.MethodGet, "/payment-webhook", nil)
		w := httptest.NewRecorder()

		handler.HandleWebhook(w, req)

		Expect(w.Code).To(Equal(http.StatusMethodNotAllowed))
	})

	It("rejects an empty body", func() {
		w := post(nil, "")

		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(decodeError(w).Code).To(Equal(errors.ErrCodeEmptyBody))
	})

	It("rejects bodies over the size limit with 413", func() {
		w := post(bytes.Repeat([]byte(" "), transport.MaxBodyBytes+1), "")

		Expect(w.Code).To(Equal(http.StatusRequestEntityTooLarge))
		Expect(decodeError(w).Code).To(Equal(errors.ErrCodePayloadTooLarge))
	})

	It("rejects malformed JSON", func() {
		w := post([]byte(`{"provider":`), "")

		Expect(w.Code).To(Equal(http.StatusBadRequest))
		resp := decodeError(w)
		Expect(resp.Error).To(Equal("Invalid JSON payload"))
		Expect(resp.Code).To(Equal(errors.ErrCodeInvalidPayload))
	})

	It("rejects payloads missing required fields", func() {
		w := signed([]byte(`{"provider":"mercadopago","event_type":"payment.completed"}`))

		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(decodeError(w).Code).To(Equal(errors.ErrCodeInvalidPayload))
	})

	It("rejects an unknown provider", func() {
		w := signed([]byte(`{"provider":"paypal","event_type":"payment.completed","payment_id":"p","status":"approved"}`))

		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("rejects an invalid signature", func() {
		w := post(payloadFor(events.EventTypePaymentCompleted, pendingPaymentID), "ts=1,v1=deadbeef")

		Expect(w.Code).To(Equal(http.StatusUnauthorized))
		Expect(decodeError(w).Code).To(Equal(errors.ErrCodeInvalidSignature))
		Expect(repo.status(pendingPaymentID)).To(Equal(payment.StatusProcessing))
	})

	It("rejects an unsigned delivery", func() {
		w := post(payloadFor(events.EventTypePaymentCompleted, pendingPaymentID), "")

		Expect(w.Code).To(Equal(http.StatusUnauthorized))
	})

	It("processes a signed payment.completed event", func() {
		w := signed(payloadFor(events.EventTypePaymentCompleted, pendingPaymentID))

		Expect(w.Code).To(Equal(http.StatusOK))
		var resp paymentpkg.WebhookResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.Success).To(BeTrue())
		Expect(resp.WebhookResult).NotTo(BeNil())
		Expect(resp.Processed).To(BeTrue())
		Expect(resp.PaymentID).To(Equal(pendingPaymentID))
		Expect(resp.Status).To(Equal(payment.StatusSucceeded))
		Expect(repo.status(pendingPaymentID)).To(Equal(payment.StatusSucceeded))
	})

	It("accepts the explicit signature field", func() {
		body, err := json.Marshal(paymentpkg.WebhookPayload{
			Provider:  payment.ProviderMercadoPago,
			EventType: events.EventTypePaymentFailed,
			PaymentID: pendingPaymentID,
			Status:    "rejected",
			Signature: paymentpkg.SignManifest(payment.ProviderMercadoPago, mpSecret, pendingPaymentID, events.EventTypePaymentFailed, "rejected"),
		})
		Expect(err).NotTo(HaveOccurred())

		w := post(body, "")

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(repo.status(pendingPaymentID)).To(Equal(payment.StatusFailed))
	})

	It("acknowledges unhandled event types without processing", func() {
		w := signed(payloadFor("payment.created", pendingPaymentID))

		Expect(w.Code).To(Equal(http.StatusOK))
		var raw map[string]interface{}
		Expect(json.NewDecoder(w.Body).Decode(&raw)).To(Succeed())
		Expect(raw).To(HaveKeyWithValue("success", true))
		Expect(raw).To(HaveKeyWithValue("processed", false))
		Expect(raw).NotTo(HaveKey("payment_id"))
	})

	It("returns 404 for an unknown payment", func() {
		w := signed(payloadFor(events.EventTypePaymentCompleted, "00000000-0000-0000-0000-00000000dead"))

		Expect(w.Code).To(Equal(http.StatusNotFound))
		Expect(decodeError(w).Code).To(Equal(errors.ErrCodePaymentNotFound))
	})

	It("returns 500 with the cause when the split fails", func() {
		bus.Subscribe(events.EventTypePaymentCompleted, func(ctx context.Context, e events.Event) error {
			return errors.ErrSplitRecordingFailed.WithCause(context.DeadlineExceeded)
		})

		w := signed(payloadFor(events.EventTypePaymentCompleted, pendingPaymentID))

		Expect(w.Code).To(Equal(http.StatusInternalServerError))
		resp := decodeError(w)
		Expect(resp.Code).To(Equal(errors.ErrCodeSplitRecordingFailed))
		Expect(resp.Message).To(ContainSubstring("deadline exceeded"))
	})

	It("returns 500 when the split is rejected after the status was written", func() {
		bus.Subscribe(events.EventTypePaymentCompleted, func(ctx context.Context, e events.Event) error {
			return fmt.Errorf("resolve owner: %w", errors.ErrOwnerNotFound)
		})

		w := signed(payloadFor(events.EventTypePaymentCompleted, pendingPaymentID))

		Expect(w.Code).To(Equal(http.StatusInternalServerError))
		resp := decodeError(w)
		Expect(resp.Code).To(Equal(errors.ErrCodeInternal))
		Expect(resp.Message).To(ContainSubstring("Car owner not found"))
		Expect(repo.status(pendingPaymentID)).To(Equal(payment.StatusSucceeded))
	})
})
