package compat_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	errors "github.com/autorentar/rental-payments/internal"
	"github.com/autorentar/rental-payments/internal/compat"
)

var _ = Describe("Payment mapping", func() {
	It("renames amount and applies status and currency defaults", func() {
		row, err := compat.ToDBPaymentInsert(compat.PaymentInsert{
			BookingID:   "b1",
			AmountCents: 125000,
			Provider:    "mercadopago",
		})

		Expect(err).NotTo(HaveOccurred())
		Expect(row.Amount).To(Equal(int64(125000)))
		Expect(row.Status).To(Equal("requires_payment"))
		Expect(row.Currency).To(Equal("ARS"))
	})

	It("accepts the otro provider", func() {
		_, err := compat.ToDBPaymentInsert(compat.PaymentInsert{BookingID: "b1", AmountCents: 1, Provider: "otro"})
		Expect(err).NotTo(HaveOccurred())
	})

	It("rejects an unknown provider", func() {
		_, err := compat.ToDBPaymentInsert(compat.PaymentInsert{BookingID: "b1", AmountCents: 1, Provider: "paypal"})

		Expect(err).To(HaveOccurred())
		appErr, ok := errors.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.Code).To(Equal(errors.ErrCodeUnknownEnumValue))
	})

	It("rejects an unknown status on update", func() {
		_, err := compat.ToDBPaymentUpdate(compat.PaymentUpdate{Status: strPtr("paid")})
		Expect(err).To(HaveOccurred())
	})

	It("maps a partial update", func() {
		patch, err := compat.ToDBPaymentUpdate(compat.PaymentUpdate{
			AmountCents: int64Ptr(0),
			Status:      strPtr("succeeded"),
		})

		Expect(err).NotTo(HaveOccurred())
		Expect(patch).To(HaveKeyWithValue("amount", int64(0)))
		Expect(patch).To(HaveKeyWithValue("status", "succeeded"))
		Expect(patch).To(HaveLen(2))
	})

	It("maps a stored payment back to cents", func() {
		dto := compat.FromDBPayment(&compat.PaymentRow{ID: "p1", Amount: 999, Status: "failed"})
		Expect(dto.AmountCents).To(Equal(int64(999)))
	})
})
