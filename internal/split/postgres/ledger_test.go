package postgres_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/autorentar/rental-payments/internal/core/datamodel/wallet"
	"github.com/autorentar/rental-payments/internal/split"
	"github.com/autorentar/rental-payments/internal/split/postgres"
)

func openSQLite() *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	Expect(err).NotTo(HaveOccurred())
	sqlDB, err := db.DB()
	Expect(err).NotTo(HaveOccurred())
	sqlDB.SetMaxOpenConns(1)
	return db
}

var _ = Describe("LedgerRepository", func() {
	var (
		ctx  context.Context
		repo split.LedgerAPI
	)

	credit := func(walletID, leg string, amount int64) *wallet.Transaction {
		return &wallet.Transaction{
			WalletID:    walletID,
			Amount:      amount,
			Type:        wallet.TypeCredit,
			Status:      wallet.StatusCompleted,
			ReferenceID: "pay-1",
			SplitLeg:    leg,
		}
	}

	BeforeEach(func() {
		ctx = context.Background()
		db := openSQLite()
		Expect(db.AutoMigrate(&wallet.Transaction{})).To(Succeed())
		repo = postgres.NewLedgerRepository(db)
	})

	It("records a transaction with a generated id", func() {
		tx := credit("owner-1", wallet.LegOwner, 8500)

		Expect(repo.Record(ctx, tx)).To(Succeed())
		Expect(tx.ID).NotTo(BeEmpty())
	})

	It("finds every leg recorded for a payment", func() {
		Expect(repo.Record(ctx, credit("owner-1", wallet.LegOwner, 8500))).To(Succeed())
		Expect(repo.Record(ctx, credit("platform", wallet.LegPlatform, 1000))).To(Succeed())

		legs, err := repo.FindByReference(ctx, "pay-1")

		Expect(err).NotTo(HaveOccurred())
		Expect(legs).To(HaveLen(2))

		none, err := repo.FindByReference(ctx, "pay-2")
		Expect(err).NotTo(HaveOccurred())
		Expect(none).To(BeEmpty())
	})

	It("refuses a second transaction with the same idempotency key", func() {
		key := wallet.LegKey("pay-1", wallet.LegOwner)
		first := credit("owner-1", wallet.LegOwner, 8500)
		first.IdempotencyKey = &key
		Expect(repo.Record(ctx, first)).To(Succeed())

		second := credit("owner-1", wallet.LegOwner, 8500)
		second.IdempotencyKey = &key

		Expect(repo.Record(ctx, second)).NotTo(Succeed())
	})

	It("accepts repeated legs without a key", func() {
		Expect(repo.Record(ctx, credit("owner-1", wallet.LegOwner, 8500))).To(Succeed())
		Expect(repo.Record(ctx, credit("owner-1", wallet.LegOwner, 8500))).To(Succeed())

		legs, err := repo.FindByReference(ctx, "pay-1")
		Expect(err).NotTo(HaveOccurred())
		Expect(legs).To(HaveLen(2))
	})
})
