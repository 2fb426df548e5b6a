package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/autorentar/rental-payments/internal/split"
	"github.com/spf13/cobra"
)

var splitCmd = &cobra.Command{
	Use:   "split",
	Short: "Payment split commands",
	Long:  `Run or replay the owner/platform/insurance split for a payment`,
}

var runSplitCmd = &cobra.Command{
	Use:   "run",
	Short: "Split a completed payment",
	Long:  `Split a completed payment. Replaying an already split payment returns the recorded legs.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSplit(cmd.Context())
	},
}

var (
	splitPaymentID string
	splitOwnerID   string
	splitOwner     float64
	splitPlatform  float64
	splitInsurance float64
)

func runSplit(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	app, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	req := split.Request{PaymentID: splitPaymentID, OwnerID: splitOwnerID}
	if splitOwner+splitPlatform+splitInsurance > 0 {
		req.Config = &split.Percentages{
			Owner:     splitOwner,
			Platform:  splitPlatform,
			Insurance: splitInsurance,
		}
	}

	result, err := app.SplitService.Process(ctx, req)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(split.Response{Success: true, Result: result})
}

func init() {
	runSplitCmd.Flags().StringVar(&splitPaymentID, "payment-id", "", "payment id or provider payment id")
	runSplitCmd.Flags().StringVar(&splitOwnerID, "owner-id", "", "owner wallet id")
	runSplitCmd.Flags().Float64Var(&splitOwner, "owner-percentage", 0, "override owner percentage")
	runSplitCmd.Flags().Float64Var(&splitPlatform, "platform-percentage", 0, "override platform percentage")
	runSplitCmd.Flags().Float64Var(&splitInsurance, "insurance-percentage", 0, "override insurance percentage")
	_ = runSplitCmd.MarkFlagRequired("payment-id")
	_ = runSplitCmd.MarkFlagRequired("owner-id")

	splitCmd.AddCommand(runSplitCmd)

	rootCmd.AddCommand(splitCmd)
}
