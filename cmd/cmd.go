package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/autorentar/rental-payments/internal"
	"github.com/autorentar/rental-payments/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	clearData  bool
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "rental-payments",
	Short: "Rental Payments",
	Long:  `Payment webhooks and owner/platform/insurance splits for car rentals.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*internal.Config, error) {
	// .env is optional and only fills variables that are not already set
	_ = godotenv.Load()

	// Check if we're running in Docker environment
	if os.Getenv("APP_ENV") == internal.EnvProduction || os.Getenv("DOCKER_ENV") == "true" {
		cfg := internal.LoadConfigFromEnv()
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("error validating config from environment: %w", err)
		}
		logger.Configure(cfg.Observability.Logging.Level, cfg.Observability.Logging.Format)
		return cfg, nil
	}

	// Load configuration from file (development)
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.SetEnvPrefix("ENV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config: %w", err)
	}

	var cfg internal.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("error validating config: %w", err)
	}

	logger.Configure(cfg.Observability.Logging.Level, cfg.Observability.Logging.Format)
	return &cfg, nil
}

// setDefaults covers keys whose zero value is meaningful, so ApplyDefaults
// cannot tell them apart from unset.
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", internal.EnvDevelopment)
	v.SetDefault("payment.split.idempotent", true)
	v.SetDefault("payment.split.remainder_policy", "drop_remainder")
	v.SetDefault("security.signature_tolerance", "5m")
	v.SetDefault("observability.logging.level", "debug")
	v.SetDefault("observability.logging.format", "text")
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", ".", "directory containing config.yml")
	seedCmd.Flags().BoolVar(&clearData, "clear", false, "Clear existing data before seeding")

	rootCmd.AddCommand(httpServerCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
}
