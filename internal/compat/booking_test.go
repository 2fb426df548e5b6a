package compat_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/autorentar/rental-payments/internal/compat"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }
func int64Ptr(i int64) *int64 { return &i }

var fixedNow = time.Date(2025, 3, 14, 10, 30, 0, 0, time.UTC)

var _ = Describe("Booking mapping", func() {
	var mapper *compat.Mapper

	BeforeEach(func() {
		mapper = compat.NewMapper(func() time.Time { return fixedNow })
	})

	Describe("ToDBBookingInsert", func() {
		It("renames fields and applies defaults", func() {
			row := mapper.ToDBBookingInsert(compat.BookingInsert{
				CarID:           "c1",
				RenterID:        "r1",
				StartDate:       "2024-01-01",
				EndDate:         "2024-01-05",
				TotalPriceCents: 5000,
			})

			Expect(row.CarID).To(Equal("c1"))
			Expect(row.RenterID).To(Equal("r1"))
			Expect(row.StartAt).To(Equal("2024-01-01"))
			Expect(row.EndAt).To(Equal("2024-01-05"))
			Expect(row.TotalAmount).To(Equal(int64(5000)))
			Expect(row.Status).To(Equal("pending"))
			Expect(row.GuaranteeType).To(BeNil())
			Expect(row.GuaranteeAmountCents).To(BeNil())
		})

		It("keeps an explicit status and guarantee", func() {
			row := compat.ToDBBookingInsert(compat.BookingInsert{
				CarID:                "c1",
				RenterID:             "r1",
				StartDate:            "2024-01-01",
				EndDate:              "2024-01-02",
				TotalPriceCents:      100,
				Status:               strPtr("confirmed"),
				GuaranteeType:        strPtr("deposit"),
				GuaranteeAmountCents: int64Ptr(25000),
			})

			Expect(row.Status).To(Equal("confirmed"))
			Expect(*row.GuaranteeType).To(Equal("deposit"))
			Expect(*row.GuaranteeAmountCents).To(Equal(int64(25000)))
		})
	})

	Describe("ToDBBookingUpdate", func() {
		It("returns only defined fields", func() {
			patch := mapper.ToDBBookingUpdate(compat.BookingUpdate{
				EndDate: strPtr("2024-02-01"),
			})

			Expect(patch).To(HaveLen(1))
			Expect(patch).To(HaveKeyWithValue("end_at", "2024-02-01"))
		})

		It("preserves zero values on definedness fields", func() {
			patch := mapper.ToDBBookingUpdate(compat.BookingUpdate{
				TotalPriceCents: int64Ptr(0),
				Notes:           strPtr(""),
			})

			Expect(patch).To(HaveKeyWithValue("total_amount", int64(0)))
			Expect(patch).To(HaveKeyWithValue("notes", ""))
		})

		It("stamps cancelled_at instead of copying the canceller", func() {
			patch := mapper.ToDBBookingUpdate(compat.BookingUpdate{
				CancelledByUserID: strPtr("u-9"),
				Status:            strPtr("cancelled"),
			})

			Expect(patch).NotTo(HaveKey("cancelled_by_user_id"))
			Expect(patch).To(HaveKeyWithValue("cancelled_at", fixedNow))
			Expect(patch).To(HaveKeyWithValue("status", "cancelled"))
		})

		It("ignores an empty canceller", func() {
			patch := mapper.ToDBBookingUpdate(compat.BookingUpdate{
				CancelledByUserID: strPtr(""),
			})

			Expect(patch).To(BeEmpty())
		})
	})

	It("maps a stored booking back to the dto", func() {
		dto := compat.FromDBBooking(&compat.BookingRow{
			ID:          "b1",
			CarID:       "c1",
			RenterID:    "r1",
			StartAt:     "2024-01-01",
			EndAt:       "2024-01-05",
			TotalAmount: 5000,
			Status:      "pending",
		})

		Expect(dto.StartDate).To(Equal("2024-01-01"))
		Expect(dto.EndDate).To(Equal("2024-01-05"))
		Expect(dto.TotalPriceCents).To(Equal(int64(5000)))
	})

	It("declares the canceller as the only truthy booking field", func() {
		for name, policy := range compat.BookingUpdatePolicies {
			if name == "cancelled_by_user_id" {
				Expect(policy).To(Equal(compat.Truthy))
			} else {
				Expect(policy).To(Equal(compat.Definedness), name)
			}
		}
	})
})
