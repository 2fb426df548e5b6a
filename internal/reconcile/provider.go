package reconcile

import (
	"context"
	"fmt"
	"strconv"

	"github.com/mercadopago/sdk-go/pkg/config"
	mppayment "github.com/mercadopago/sdk-go/pkg/payment"

	"github.com/autorentar/rental-payments/internal/core/datamodel/payment"
	"github.com/autorentar/rental-payments/internal/core/datamodel/paymentgateway"
)

// Provider fetches the provider's current view of a payment.
type Provider interface {
	Name() string
	Lookup(ctx context.Context, lookup paymentgateway.StatusLookup) (*paymentgateway.StatusResult, error)
}

type MercadoPago struct {
	client mppayment.Client
}

func NewMercadoPago(accessToken string) (*MercadoPago, error) {
	cfg, err := config.New(accessToken)
	if err != nil {
		return nil, fmt.Errorf("mercadopago config: %w", err)
	}
	return &MercadoPago{client: mppayment.NewClient(cfg)}, nil
}

func (m *MercadoPago) Name() string {
	return payment.ProviderMercadoPago
}

func (m *MercadoPago) Lookup(ctx context.Context, lookup paymentgateway.StatusLookup) (*paymentgateway.StatusResult, error) {
	if err := lookup.Validate(); err != nil {
		return nil, err
	}
	id, err := strconv.Atoi(lookup.ProviderPaymentID)
	if err != nil {
		return nil, fmt.Errorf("mercadopago payment id %q is not numeric", lookup.ProviderPaymentID)
	}

	res, err := m.client.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("mercadopago get payment %d: %w", id, err)
	}

	return &paymentgateway.StatusResult{
		ProviderPaymentID: lookup.ProviderPaymentID,
		Status:            res.Status,
		StatusDetail:      res.StatusDetail,
		Amount:            res.TransactionAmount,
		Currency:          res.CurrencyID,
	}, nil
}

// InternalStatus maps a MercadoPago status onto the payments table vocabulary.
// ok is false for statuses that are still in flight.
func InternalStatus(providerStatus string) (status string, ok bool) {
	switch providerStatus {
	case paymentgateway.ProviderStatusApproved:
		return payment.StatusSucceeded, true
	case paymentgateway.ProviderStatusRejected, paymentgateway.ProviderStatusCancelled:
		return payment.StatusFailed, true
	case paymentgateway.ProviderStatusRefunded:
		return payment.StatusRefunded, true
	case paymentgateway.ProviderStatusChargedBack:
		return payment.StatusChargeback, true
	}
	return "", false
}
