package wallet

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	TypeCredit = "credit"
	TypeDebit  = "debit"

	StatusCompleted = "completed"
)

const (
	LegOwner     = "owner"
	LegPlatform  = "platform"
	LegInsurance = "insurance"
)

// Transaction is an append-only ledger entry. Amount is signed cents.
type Transaction struct {
	ID          string `gorm:"column:id;primaryKey"`
	WalletID    string `gorm:"column:wallet_id;not null;index"`
	Amount      int64  `gorm:"column:amount;not null"`
	Type        string `gorm:"column:type;not null"`
	Status      string `gorm:"column:status;not null"`
	Description string `gorm:"column:description"`
	ReferenceID string `gorm:"column:reference_id;not null;index"`
	SplitLeg    string `gorm:"column:split_leg;not null"`

	// IdempotencyKey is unique when set; unkeyed rows may repeat a leg.
	IdempotencyKey *string   `gorm:"column:idempotency_key;uniqueIndex:idx_wallet_tx_idempotency_key"`
	CreatedAt      time.Time `gorm:"column:created_at"`
}

// LegKey is the idempotency key of one split leg of a payment.
func LegKey(referenceID, leg string) string {
	return referenceID + ":" + leg
}

func (Transaction) TableName() string {
	return "wallet_transactions"
}

func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}
