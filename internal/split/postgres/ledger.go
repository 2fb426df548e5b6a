package postgres

import (
	"context"

	"github.com/autorentar/rental-payments/internal/core/datamodel/wallet"
	"github.com/autorentar/rental-payments/internal/split"
	"gorm.io/gorm"
)

type LedgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) split.LedgerAPI {
	return &LedgerRepository{
		db: db,
	}
}

// Record appends a transaction. Rows are never updated or deleted.
func (r *LedgerRepository) Record(ctx context.Context, tx *wallet.Transaction) error {
	return r.db.WithContext(ctx).Create(tx).Error
}

func (r *LedgerRepository) FindByReference(ctx context.Context, referenceID string) ([]*wallet.Transaction, error) {
	var txs []*wallet.Transaction
	err := r.db.WithContext(ctx).
		Where("reference_id = ?", referenceID).
		Order("created_at ASC").
		Find(&txs).Error
	return txs, err
}
