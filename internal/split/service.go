package split

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	errors "github.com/autorentar/rental-payments/internal"
	"github.com/autorentar/rental-payments/internal/core/datamodel/payment"
	"github.com/autorentar/rental-payments/internal/core/datamodel/wallet"
)

// PaymentReader returns internal.ErrPaymentNotFound for unknown ids.
type PaymentReader interface {
	GetPayment(ctx context.Context, id string) (*payment.Payment, error)
}

type LedgerAPI interface {
	Record(ctx context.Context, tx *wallet.Transaction) error
	FindByReference(ctx context.Context, referenceID string) ([]*wallet.Transaction, error)
}

// Locker serializes work on one key. release must be safe to call once.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), err error)
}

type ServiceAPI interface {
	Process(ctx context.Context, req Request) (*Result, error)
}

type Options struct {
	Defaults          Percentages
	Remainder         RemainderPolicy
	Idempotent        bool
	LockTTL           time.Duration
	PlatformWalletID  string
	InsuranceWalletID string
}

// OptionsFromConfig resolves wallets and policies from the payment.split section.
func OptionsFromConfig(cfg errors.SplitConfig) (Options, error) {
	policy, err := ParseRemainderPolicy(cfg.RemainderPolicy)
	if err != nil {
		return Options{}, err
	}
	return Options{
		Defaults: Percentages{
			Owner:     cfg.OwnerPercentage,
			Platform:  cfg.PlatformPercentage,
			Insurance: cfg.InsurancePercentage,
		},
		Remainder:         policy,
		Idempotent:        cfg.Idempotent,
		LockTTL:           cfg.LockTTL,
		PlatformWalletID:  cfg.PlatformWalletID,
		InsuranceWalletID: cfg.InsuranceWalletID,
	}, nil
}

type Service struct {
	payments PaymentReader
	ledger   LedgerAPI
	locker   Locker
	opts     Options
	logger   *slog.Logger
}

func NewService(payments PaymentReader, ledger LedgerAPI, locker Locker, opts Options, logger *slog.Logger) *Service {
	if opts.Defaults == (Percentages{}) {
		opts.Defaults = DefaultPercentages
	}
	if opts.Remainder == "" {
		opts.Remainder = DropRemainder
	}
	if opts.LockTTL <= 0 {
		opts.LockTTL = 30 * time.Second
	}
	return &Service{
		payments: payments,
		ledger:   ledger,
		locker:   locker,
		opts:     opts,
		logger:   logger,
	}
}

// Process splits a completed payment into owner, platform and insurance
// credits. Every check runs before the first ledger write.
func (s *Service) Process(ctx context.Context, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	p, err := s.payments.GetPayment(ctx, req.PaymentID)
	if err != nil {
		return nil, err
	}
	if !p.IsSplittable() {
		s.logger.Warn("split rejected, payment not completed",
			"payment_id", p.ID,
			"status", p.Status)
		return nil, errors.ErrInvalidPaymentState
	}

	alloc, err := Allocate(p.Amount, req.PercentagesOr(s.opts.Defaults), s.opts.Remainder)
	if err != nil {
		return nil, err
	}

	existing := map[string]*wallet.Transaction{}
	if s.opts.Idempotent {
		release, err := s.locker.Acquire(ctx, "split:"+p.ID, s.opts.LockTTL)
		if err != nil {
			return nil, errors.NewInternalError("failed to acquire split lock", err)
		}
		defer release()

		legs, err := s.ledger.FindByReference(ctx, p.ID)
		if err != nil {
			return nil, errors.NewInternalError("failed to read existing split", err)
		}
		for _, leg := range legs {
			existing[leg.SplitLeg] = leg
		}
		if len(existing) > 0 {
			s.logger.Info("payment already split, reusing recorded legs",
				"payment_id", p.ID,
				"legs", len(existing))
		}
	}

	result := &Result{}

	owner, err := s.recordLeg(ctx, existing, p.ID, req.OwnerID, wallet.LegOwner, alloc.Owner)
	if err != nil {
		return nil, errors.ErrSplitRecordingFailed.WithCause(err)
	}
	result.OwnerTransactionID = owner.ID
	result.TotalSplitCents += owner.Amount

	platformWallet := s.opts.PlatformWalletID
	if platformWallet == "" {
		platformWallet = errors.DefaultPlatformWalletID
		s.logger.Warn("platform wallet not configured, using placeholder", "wallet_id", platformWallet)
	}
	platform, err := s.recordLeg(ctx, existing, p.ID, platformWallet, wallet.LegPlatform, alloc.Platform)
	if err != nil {
		return nil, errors.ErrSplitRecordingFailed.WithCause(err)
	}
	result.PlatformTransactionID = platform.ID
	result.TotalSplitCents += platform.Amount

	if alloc.Insurance > 0 {
		insuranceWallet := s.opts.InsuranceWalletID
		if insuranceWallet == "" {
			insuranceWallet = errors.DefaultInsuranceWalletID
			s.logger.Warn("insurance wallet not configured, using placeholder", "wallet_id", insuranceWallet)
		}
		insurance, err := s.recordLeg(ctx, existing, p.ID, insuranceWallet, wallet.LegInsurance, alloc.Insurance)
		if err != nil {
			s.logger.Error("insurance leg not recorded",
				"payment_id", p.ID,
				"error", errors.ErrInsuranceRecordingFailed.WithCause(err))
		} else {
			result.InsuranceTransactionID = &insurance.ID
			result.TotalSplitCents += insurance.Amount
		}
	}

	s.logger.Info("payment split recorded",
		"payment_id", p.ID,
		"total_cents", p.Amount,
		"split_cents", result.TotalSplitCents,
		"remainder_cents", alloc.Remainder,
		"remainder_policy", s.opts.Remainder)

	return result, nil
}

func (s *Service) recordLeg(ctx context.Context, existing map[string]*wallet.Transaction, paymentID, walletID, leg string, amount int64) (*wallet.Transaction, error) {
	if tx, ok := existing[leg]; ok {
		return tx, nil
	}
	tx := &wallet.Transaction{
		WalletID:    walletID,
		Amount:      amount,
		Type:        wallet.TypeCredit,
		Status:      wallet.StatusCompleted,
		Description: fmt.Sprintf("%s share of payment %s", leg, paymentID),
		ReferenceID: paymentID,
		SplitLeg:    leg,
	}
	if s.opts.Idempotent {
		key := wallet.LegKey(paymentID, leg)
		tx.IdempotencyKey = &key
	}
	if err := s.ledger.Record(ctx, tx); err != nil {
		s.logger.Error("failed to record wallet transaction",
			"payment_id", paymentID,
			"leg", leg,
			"wallet_id", walletID,
			"error", err)
		return nil, err
	}
	return tx, nil
}
