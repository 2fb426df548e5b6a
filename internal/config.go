package internal

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	// Placeholder wallets used when a deployment does not configure its own.
	DefaultPlatformWalletID  = "00000000-0000-0000-0000-000000000001"
	DefaultInsuranceWalletID = "00000000-0000-0000-0000-000000000002"
)

type Config struct {
	App           AppConfig           `mapstructure:"app"`
	Server        ServerConfig        `mapstructure:"http_server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Security      SecurityConfig      `mapstructure:"security"`
	Observability ObservabilityConfig `mapstructure:"observability"`
	Payment       PaymentConfig       `mapstructure:"payment"`
}

type AppConfig struct {
	Env string `mapstructure:"env"`
}

type ServerConfig struct {
	Port              int           `mapstructure:"port"`
	BaseURL           string        `mapstructure:"base_url"`
	AllowedOrigins    string        `mapstructure:"allowed_origins"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	Source          string        `mapstructure:"source"`
}

// RedisConfig is optional; an empty Addr disables the distributed split lock.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type SecurityConfig struct {
	// JWTSecret enables HS256 verification of split bearer tokens when set.
	JWTSecret              string        `mapstructure:"jwt_secret"`
	MercadoPagoSecret      string        `mapstructure:"mercadopago_webhook_secret"`
	StripeSecret           string        `mapstructure:"stripe_webhook_secret"`
	SignatureTolerance     time.Duration `mapstructure:"signature_tolerance"`
	AllowUnsignedWebhooks  bool          `mapstructure:"allow_unsigned_webhooks"`
	MercadoPagoAccessToken string        `mapstructure:"mercadopago_access_token"`
}

type PaymentConfig struct {
	Split     SplitConfig     `mapstructure:"split"`
	Reconcile ReconcileConfig `mapstructure:"reconcile"`
}

type SplitConfig struct {
	PlatformWalletID    string        `mapstructure:"platform_wallet_id"`
	InsuranceWalletID   string        `mapstructure:"insurance_wallet_id"`
	OwnerPercentage     float64       `mapstructure:"owner_percentage"`
	PlatformPercentage  float64       `mapstructure:"platform_percentage"`
	InsurancePercentage float64       `mapstructure:"insurance_percentage"`
	RemainderPolicy     string        `mapstructure:"remainder_policy"`
	Idempotent          bool          `mapstructure:"idempotent"`
	LockTTL             time.Duration `mapstructure:"lock_ttl"`
	// StrictWallets makes missing wallet ids a startup error in production.
	StrictWallets bool `mapstructure:"strict_wallets"`
}

type ReconcileConfig struct {
	MaxWorkers   int           `mapstructure:"max_workers"`
	JobQueueSize int           `mapstructure:"job_queue_size"`
	BatchSize    int           `mapstructure:"batch_size"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

type ObservabilityConfig struct {
	Logging LoggingConfig `mapstructure:"logging"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func (c *Config) IsProduction() bool {
	return c.App.Env == EnvProduction
}

// ApplyDefaults fills zero values that have a sensible fallback.
func (c *Config) ApplyDefaults() {
	if c.App.Env == "" {
		c.App.Env = EnvDevelopment
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 10
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 5
	}
	s := &c.Payment.Split
	if s.OwnerPercentage == 0 && s.PlatformPercentage == 0 && s.InsurancePercentage == 0 {
		s.OwnerPercentage, s.PlatformPercentage, s.InsurancePercentage = 85, 10, 5
	}
	if s.RemainderPolicy == "" {
		s.RemainderPolicy = "drop_remainder"
	}
	if s.LockTTL == 0 {
		s.LockTTL = 30 * time.Second
	}
	r := &c.Payment.Reconcile
	if r.MaxWorkers == 0 {
		r.MaxWorkers = 4
	}
	if r.JobQueueSize == 0 {
		r.JobQueueSize = 100
	}
	if r.BatchSize == 0 {
		r.BatchSize = 50
	}
	if r.Timeout == 0 {
		r.Timeout = 10 * time.Second
	}
}

// LoadConfigFromEnv builds the config for container deployments.
func LoadConfigFromEnv() *Config {
	cfg := &Config{
		App: AppConfig{
			Env: getEnv("APP_ENV", EnvProduction),
		},
		Server: ServerConfig{
			Port:              getEnvAsInt("PORT", 8080),
			BaseURL:           getEnv("BASE_URL", ""),
			AllowedOrigins:    getEnv("ALLOWED_ORIGINS", "*"),
			ReadHeaderTimeout: getEnvAsDuration("READ_HEADER_TIMEOUT", 5*time.Second),
			ReadTimeout:       getEnvAsDuration("READ_TIMEOUT", 15*time.Second),
			IdleTimeout:       getEnvAsDuration("IDLE_TIMEOUT", 60*time.Second),
			WriteTimeout:      getEnvAsDuration("WRITE_TIMEOUT", 15*time.Second),
		},
		Database: DatabaseConfig{
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			ConnMaxIdleTime: getEnvAsDuration("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
			Source:          getEnv("DATABASE_URL", ""),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Security: SecurityConfig{
			JWTSecret:              getEnv("JWT_SECRET", ""),
			MercadoPagoSecret:      getEnv("MERCADOPAGO_WEBHOOK_SECRET", ""),
			StripeSecret:           getEnv("STRIPE_WEBHOOK_SECRET", ""),
			SignatureTolerance:     getEnvAsDuration("SIGNATURE_TOLERANCE", 5*time.Minute),
			AllowUnsignedWebhooks:  getEnvAsBool("ALLOW_UNSIGNED_WEBHOOKS", false),
			MercadoPagoAccessToken: getEnv("MERCADOPAGO_ACCESS_TOKEN", ""),
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  getEnv("LOG_LEVEL", "info"),
				Format: getEnv("LOG_FORMAT", "json"),
			},
		},
		Payment: PaymentConfig{
			Split: SplitConfig{
				PlatformWalletID:    getEnv("PLATFORM_WALLET_ID", ""),
				InsuranceWalletID:   getEnv("INSURANCE_WALLET_ID", ""),
				OwnerPercentage:     getEnvAsFloat("SPLIT_OWNER_PERCENTAGE", 85),
				PlatformPercentage:  getEnvAsFloat("SPLIT_PLATFORM_PERCENTAGE", 10),
				InsurancePercentage: getEnvAsFloat("SPLIT_INSURANCE_PERCENTAGE", 5),
				RemainderPolicy:     getEnv("SPLIT_REMAINDER_POLICY", "drop_remainder"),
				Idempotent:          getEnvAsBool("SPLIT_IDEMPOTENT", true),
				LockTTL:             getEnvAsDuration("SPLIT_LOCK_TTL", 30*time.Second),
				StrictWallets:       getEnvAsBool("SPLIT_STRICT_WALLETS", false),
			},
			Reconcile: ReconcileConfig{
				MaxWorkers:   getEnvAsInt("RECONCILE_MAX_WORKERS", 4),
				JobQueueSize: getEnvAsInt("RECONCILE_JOB_QUEUE_SIZE", 100),
				BatchSize:    getEnvAsInt("RECONCILE_BATCH_SIZE", 50),
				Timeout:      getEnvAsDuration("RECONCILE_TIMEOUT", 10*time.Second),
			},
		},
	}
	cfg.ApplyDefaults()
	return cfg
}

// ----------------- HELPERS -----------------

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsFloat(key string, defaultVal float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultVal
}

// ----------------- VALIDATION -----------------

func (c *Config) Validate() error {
	var errs []string

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("server config: %v", err))
	}

	if err := c.Database.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("database config: %v", err))
	}

	if err := c.Security.Validate(c.IsProduction()); err != nil {
		errs = append(errs, fmt.Sprintf("security config: %v", err))
	}

	if err := c.Payment.Split.Validate(c.IsProduction()); err != nil {
		errs = append(errs, fmt.Sprintf("payment config: %v", err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

func (c *ServerConfig) Validate() error {
	if c.AllowedOrigins != "" {
		origins := strings.Split(c.AllowedOrigins, ",")
		for _, origin := range origins {
			origin = strings.TrimSpace(origin)
			if origin == "*" {
				continue
			}
			if _, err := url.Parse(origin); err != nil {
				return fmt.Errorf("invalid allowed origin %s: %w", origin, err)
			}
		}
	}
	if c.ReadTimeout < c.ReadHeaderTimeout {
		return errors.New("read_timeout must be >= read_header_timeout")
	}
	return nil
}

func (c *DatabaseConfig) Validate() error {
	if c.Source == "" {
		return errors.New("source is required")
	}
	if c.MaxIdleConns > c.MaxOpenConns {
		return errors.New("max_idle_conns cannot be greater than max_open_conns")
	}
	return nil
}

func (c *SecurityConfig) Validate(production bool) error {
	if production && c.AllowUnsignedWebhooks {
		return errors.New("allow_unsigned_webhooks must be disabled in production")
	}
	if c.SignatureTolerance < 0 {
		return errors.New("signature_tolerance cannot be negative")
	}
	return nil
}

func (c *SplitConfig) Validate(production bool) error {
	sum := c.OwnerPercentage + c.PlatformPercentage + c.InsurancePercentage
	if sum < 99.99 || sum > 100.01 {
		return fmt.Errorf("default split percentages must sum to 100, got %.2f", sum)
	}
	switch c.RemainderPolicy {
	case "drop_remainder", "allocate_to_platform", "allocate_to_largest_share":
	default:
		return fmt.Errorf("unknown remainder_policy %q", c.RemainderPolicy)
	}
	if production && c.StrictWallets {
		if c.PlatformWalletID == "" {
			return errors.New("platform_wallet_id is required in production")
		}
		if c.InsurancePercentage > 0 && c.InsuranceWalletID == "" {
			return errors.New("insurance_wallet_id is required in production")
		}
	}
	return nil
}

// ResolvedPlatformWallet returns the configured wallet or the placeholder, and
// whether the placeholder was used.
func (c *SplitConfig) ResolvedPlatformWallet() (string, bool) {
	if c.PlatformWalletID == "" {
		return DefaultPlatformWalletID, true
	}
	return c.PlatformWalletID, false
}

func (c *SplitConfig) ResolvedInsuranceWallet() (string, bool) {
	if c.InsuranceWalletID == "" {
		return DefaultInsuranceWalletID, true
	}
	return c.InsuranceWalletID, false
}
