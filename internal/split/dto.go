package split

import (
	"github.com/autorentar/rental-payments/internal/core/common/validation"
)

// maxWalletIDLength matches wallet_transactions.wallet_id.
const maxWalletIDLength = 64

type Request struct {
	PaymentID string       `json:"payment_id"`
	OwnerID   string       `json:"owner_id"`
	Config    *Percentages `json:"config,omitempty"`
}

func (r *Request) Validate() error {
	v := validation.NewValidator()
	v.Field("payment_id", r.PaymentID).Required()
	v.Field("owner_id", r.OwnerID).Required().MaxLength(maxWalletIDLength)
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

// PercentagesOr returns the caller override, or def when none was sent.
func (r *Request) PercentagesOr(def Percentages) Percentages {
	if r.Config == nil {
		return def
	}
	return *r.Config
}

type Result struct {
	OwnerTransactionID     string  `json:"owner_transaction_id"`
	PlatformTransactionID  string  `json:"platform_transaction_id"`
	InsuranceTransactionID *string `json:"insurance_transaction_id,omitempty"`
	TotalSplitCents        int64   `json:"total_split_cents"`
}

type Response struct {
	Success bool    `json:"success"`
	Result  *Result `json:"result"`
}
