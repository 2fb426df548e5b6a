package postgres

import (
	"context"
	"errors"
	"time"

	apperrors "github.com/autorentar/rental-payments/internal"
	"github.com/autorentar/rental-payments/internal/compat"
	"github.com/autorentar/rental-payments/internal/core/datamodel/payment"
	paymentpkg "github.com/autorentar/rental-payments/internal/payment"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) paymentpkg.RepositoryAPI {
	return &PaymentRepository{
		db: db,
	}
}

func (r *PaymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	return r.db.WithContext(ctx).Create(p).Error
}

// GetByID treats ids that are not uuids as missing; the column is typed uuid.
func (r *PaymentRepository) GetByID(ctx context.Context, id string) (*payment.Payment, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperrors.ErrPaymentNotFound
	}
	var p payment.Payment
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	return found(&p, err)
}

func (r *PaymentRepository) GetByProviderPaymentID(ctx context.Context, providerPaymentID string) (*payment.Payment, error) {
	var p payment.Payment
	err := r.db.WithContext(ctx).
		Where("provider_payment_id = ?", providerPaymentID).
		Order("created_at DESC").
		First(&p).Error
	return found(&p, err)
}

func (r *PaymentRepository) Update(ctx context.Context, id string, patch compat.Patch) error {
	updates := map[string]interface{}(patch)
	updates["updated_at"] = time.Now()
	res := r.db.WithContext(ctx).Model(&payment.Payment{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrPaymentNotFound
	}
	return nil
}

func (r *PaymentRepository) ListByStatus(ctx context.Context, status string, limit int) ([]*payment.Payment, error) {
	var payments []*payment.Payment
	q := r.db.WithContext(ctx).Where("status = ?", status).Order("created_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&payments).Error
	return payments, err
}

func found(p *payment.Payment, err error) (*payment.Payment, error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrPaymentNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}
