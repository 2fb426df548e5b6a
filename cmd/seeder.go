package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/autorentar/rental-payments/internal/compat"
	"github.com/autorentar/rental-payments/internal/core/datamodel/booking"
	"github.com/autorentar/rental-payments/internal/core/datamodel/car"
	datamodelPayment "github.com/autorentar/rental-payments/internal/core/datamodel/payment"
	"github.com/autorentar/rental-payments/internal/core/events"
	"github.com/autorentar/rental-payments/internal/payment"
	"github.com/spf13/cobra"
)

const (
	seedOwnerID  = "11111111-1111-4111-8111-111111111111"
	seedRenterID = "22222222-2222-4222-8222-222222222222"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed a car, a confirmed booking and a processing payment, then print a signed sample webhook.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSeed(cmd.Context())
	},
}

func runSeed(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.IsProduction() {
		return fmt.Errorf("refusing to seed a production database")
	}

	app, err := newApp(cfg)
	if err != nil {
		return fmt.Errorf("failed to init app: %w", err)
	}
	defer app.Close()

	db := app.Gorm.WithContext(ctx)

	if clearData {
		for _, table := range []string{"wallet_transactions", "payments", "bookings", "cars"} {
			if err := db.Exec("DELETE FROM " + table).Error; err != nil {
				return fmt.Errorf("failed to clear %s: %w", table, err)
			}
		}
		fmt.Println("Cleared wallet_transactions, payments, bookings and cars")
	}

	fuel := compat.FuelGasoline
	city := "Córdoba"
	carRow := app.Mapper.ToDBCarInsert(compat.CarInsert{
		OwnerID:      seedOwnerID,
		Brand:        "Toyota",
		Model:        "Corolla",
		Year:         2022,
		PricePerDay:  45000,
		FuelType:     &fuel,
		LocationCity: &city,
	})
	carRow.Status = car.StatusActive
	if err := db.Create(carRow).Error; err != nil {
		return fmt.Errorf("failed to insert car: %w", err)
	}
	fmt.Println("Seeded car:", carRow.ID, carRow.Title)

	start := time.Now().AddDate(0, 0, 7).UTC()
	status := booking.StatusConfirmed
	bookingRow := app.Mapper.ToDBBookingInsert(compat.BookingInsert{
		CarID:           carRow.ID,
		RenterID:        seedRenterID,
		StartDate:       start.Format(time.RFC3339),
		EndDate:         start.AddDate(0, 0, 3).Format(time.RFC3339),
		TotalPriceCents: 13500000,
		Status:          &status,
	})
	if err := db.Create(bookingRow).Error; err != nil {
		return fmt.Errorf("failed to insert booking: %w", err)
	}
	fmt.Println("Seeded booking:", bookingRow.ID)

	processing := datamodelPayment.StatusProcessing
	providerID := fmt.Sprintf("%d", time.Now().Unix())
	p, err := app.PaymentService.CreatePayment(ctx, compat.PaymentInsert{
		BookingID:         bookingRow.ID,
		UserID:            &bookingRow.RenterID,
		AmountCents:       bookingRow.TotalAmount,
		Status:            &processing,
		Provider:          datamodelPayment.ProviderMercadoPago,
		ProviderPaymentID: &providerID,
	})
	if err != nil {
		return fmt.Errorf("failed to insert payment: %w", err)
	}
	fmt.Println("Seeded payment:", p.ID)

	body, err := json.Marshal(payment.WebhookPayload{
		Provider:  datamodelPayment.ProviderMercadoPago,
		EventType: events.EventTypePaymentCompleted,
		PaymentID: p.ID,
		Status:    "approved",
	})
	if err != nil {
		return fmt.Errorf("failed to build sample webhook: %w", err)
	}

	fmt.Println("Sample webhook:")
	fmt.Printf("  body: %s\n", body)
	if secret := cfg.Security.MercadoPagoSecret; secret != "" {
		fmt.Printf("  X-Signature: %s\n", payment.SignHeader(datamodelPayment.ProviderMercadoPago, secret, time.Now().Unix(), body))
	} else {
		fmt.Println("  (mercadopago_webhook_secret not set, enable allow_unsigned_webhooks to send it unsigned)")
	}
	return nil
}
