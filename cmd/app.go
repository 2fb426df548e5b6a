package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/autorentar/rental-payments/internal"
	"github.com/autorentar/rental-payments/internal/compat"
	"github.com/autorentar/rental-payments/internal/core/events"
	"github.com/autorentar/rental-payments/internal/payment"
	paymentPostgres "github.com/autorentar/rental-payments/internal/payment/postgres"
	"github.com/autorentar/rental-payments/internal/split"
	"github.com/autorentar/rental-payments/internal/split/lock"
	splitPostgres "github.com/autorentar/rental-payments/internal/split/postgres"
	"github.com/autorentar/rental-payments/pkg/logger"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

const lockKeyPrefix = "rental-payments:"

// App holds the services shared by the server and the CLI commands.
type App struct {
	Config         *internal.Config
	Logger         *slog.Logger
	DB             *sqlx.DB
	Gorm           *gorm.DB
	Redis          *redis.Client
	EventBus       *events.EventBus
	Mapper         *compat.Mapper
	PaymentService *payment.Service
	SplitService   *split.Service
}

func newApp(cfg *internal.Config) (*App, error) {
	lg := logger.L()

	db, err := initDB(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db.DB}), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	app := &App{
		Config:   cfg,
		Logger:   lg,
		DB:       db,
		Gorm:     gdb,
		EventBus: events.NewEventBus(lg),
		Mapper:   compat.NewMapper(nil),
	}

	locker, err := app.initLocker()
	if err != nil {
		app.Close()
		return nil, err
	}

	app.PaymentService = payment.NewService(
		paymentPostgres.NewPaymentRepository(gdb),
		app.EventBus,
		app.Mapper,
		lg,
	)

	opts, err := split.OptionsFromConfig(cfg.Payment.Split)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("invalid split config: %w", err)
	}
	if _, placeholder := cfg.Payment.Split.ResolvedPlatformWallet(); placeholder {
		lg.Warn("platform wallet not configured, splits will credit the placeholder wallet")
	}
	if _, placeholder := cfg.Payment.Split.ResolvedInsuranceWallet(); placeholder && opts.Defaults.Insurance > 0 {
		lg.Warn("insurance wallet not configured, splits will credit the placeholder wallet")
	}

	app.SplitService = split.NewService(
		app.PaymentService,
		splitPostgres.NewLedgerRepository(gdb),
		locker,
		opts,
		lg,
	)

	split.NewEventHandler(app.SplitService, splitPostgres.NewOwnerRepository(db), lg).
		RegisterEventHandlers(app.EventBus)

	return app, nil
}

// initLocker uses Redis when configured so concurrent instances share split
// locks; a single instance falls back to an in-process lock.
func (a *App) initLocker() (split.Locker, error) {
	if a.Config.Redis.Addr == "" {
		a.Logger.Info("redis not configured, using in-process split lock")
		return lock.NewLocal(), nil
	}

	a.Redis = lock.NewClient(lock.Config{
		Addr:     a.Config.Redis.Addr,
		Password: a.Config.Redis.Password,
		DB:       a.Config.Redis.DB,
	})
	rl := lock.NewRedis(a.Redis, lockKeyPrefix)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rl.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	a.Logger.Info("using redis split lock", "addr", a.Config.Redis.Addr)
	return rl, nil
}

func (a *App) Close() {
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.Logger.Error("redis close error", "error", err)
		}
	}
	if err := a.DB.Close(); err != nil {
		a.Logger.Error("database close error", "error", err)
	}
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// verify connection; close underlying *sql.DB on failure
	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
