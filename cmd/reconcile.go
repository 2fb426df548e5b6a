package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/autorentar/rental-payments/internal/reconcile"
	"github.com/spf13/cobra"
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Reconcile processing payments with the provider",
	Long:  `Poll MercadoPago for payments stuck in processing and apply the status it reports.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReconcile()
	},
}

var (
	reconcileOnce     bool
	reconcileInterval time.Duration
	maxWorkers        int
	batchSize         int
)

func runReconcile() error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Security.MercadoPagoAccessToken == "" {
		return fmt.Errorf("security.mercadopago_access_token is required for reconcile")
	}

	// Use command line flags if provided, otherwise use config values
	rc := cfg.Payment.Reconcile
	rc.MaxWorkers = getIntFlag(maxWorkers, rc.MaxWorkers)
	rc.BatchSize = getIntFlag(batchSize, rc.BatchSize)

	app, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	mp, err := reconcile.NewMercadoPago(cfg.Security.MercadoPagoAccessToken)
	if err != nil {
		return err
	}

	reconciler := reconcile.NewReconciler(app.PaymentService, []reconcile.Provider{mp}, rc, app.Logger)
	defer reconciler.Shutdown()

	if reconcileOnce {
		summary, err := reconciler.RunOnce(context.Background())
		if err != nil {
			return err
		}
		fmt.Printf("checked=%d updated=%d unchanged=%d skipped=%d failed=%d\n",
			summary.Checked, summary.Updated, summary.Unchanged, summary.Skipped, summary.Failed)
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app.Logger.Info("reconcile worker is running. Press Ctrl+C to stop.",
		"interval", reconcileInterval,
		"max_workers", rc.MaxWorkers,
		"batch_size", rc.BatchSize)
	reconciler.Run(ctx, reconcileInterval)
	app.Logger.Info("reconcile worker stopped")
	return nil
}

func getIntFlag(flag, fallback int) int {
	if flag > 0 {
		return flag
	}
	return fallback
}

func init() {
	reconcileCmd.Flags().BoolVar(&reconcileOnce, "once", false, "run a single batch and exit")
	reconcileCmd.Flags().DurationVar(&reconcileInterval, "interval", time.Minute, "time between batches")
	reconcileCmd.Flags().IntVar(&maxWorkers, "workers", 0, "override payment.reconcile.max_workers")
	reconcileCmd.Flags().IntVar(&batchSize, "batch-size", 0, "override payment.reconcile.batch_size")

	rootCmd.AddCommand(reconcileCmd)
}
