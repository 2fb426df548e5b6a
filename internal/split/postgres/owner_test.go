package postgres_test

import (
	"context"

	"github.com/jmoiron/sqlx"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	errors "github.com/autorentar/rental-payments/internal"
	"github.com/autorentar/rental-payments/internal/core/datamodel/booking"
	"github.com/autorentar/rental-payments/internal/core/datamodel/car"
	"github.com/autorentar/rental-payments/internal/split/postgres"
)

var _ = Describe("OwnerRepository", func() {
	var (
		ctx       context.Context
		repo      *postgres.OwnerRepository
		bookingID string
	)

	BeforeEach(func() {
		ctx = context.Background()
		db := openSQLite()
		Expect(db.AutoMigrate(&car.Car{}, &booking.Booking{})).To(Succeed())

		c := &car.Car{
			OwnerID:     "owner-42",
			Title:       "Toyota Corolla 2022",
			BrandID:     car.UnknownTaxonID,
			ModelID:     car.UnknownTaxonID,
			Year:        2022,
			PricePerDay: 45000,
			Currency:    car.Currency,
			Fuel:        car.FuelNafta,
			Status:      car.StatusDraft,
		}
		Expect(db.Create(c).Error).To(Succeed())

		b := &booking.Booking{
			CarID:    c.ID,
			RenterID: "renter-1",
			StartAt:  "2025-03-20T10:00:00Z",
			EndAt:    "2025-03-23T10:00:00Z",
			Status:   booking.StatusConfirmed,
		}
		Expect(db.Create(b).Error).To(Succeed())
		bookingID = b.ID

		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		repo = postgres.NewOwnerRepository(sqlx.NewDb(sqlDB, "sqlite3"))
	})

	It("resolves the owner of the booked car", func() {
		owner, err := repo.OwnerForBooking(ctx, bookingID)

		Expect(err).NotTo(HaveOccurred())
		Expect(owner).To(Equal("owner-42"))
	})

	It("returns owner not found for an unknown booking", func() {
		_, err := repo.OwnerForBooking(ctx, "missing")

		Expect(err).To(MatchError(errors.ErrOwnerNotFound))
	})
})
