// Package reconcile re-checks payments stuck in processing against the
// provider and applies the status it reports, for webhooks that never arrived.
package reconcile

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/autorentar/rental-payments/internal"
	"github.com/autorentar/rental-payments/internal/core/datamodel/payment"
	"github.com/autorentar/rental-payments/internal/core/datamodel/paymentgateway"
)

type Outcome int

const (
	OutcomeUnchanged Outcome = iota
	OutcomeUpdated
	OutcomeSkipped
	OutcomeFailed
)

// PaymentService is the slice of the payment service the reconciler drives.
type PaymentService interface {
	ListByStatus(ctx context.Context, status string, limit int) ([]*payment.Payment, error)
	TransitionTo(ctx context.Context, p *payment.Payment, status string) error
}

type Summary struct {
	Checked   int `json:"checked"`
	Updated   int `json:"updated"`
	Unchanged int `json:"unchanged"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

type Reconciler struct {
	payments  PaymentService
	providers map[string]Provider
	batchSize int
	timeout   time.Duration
	pool      *Pool
	logger    *slog.Logger
}

func NewReconciler(payments PaymentService, providers []Provider, cfg internal.ReconcileConfig, logger *slog.Logger) *Reconciler {
	r := &Reconciler{
		payments:  payments,
		providers: make(map[string]Provider, len(providers)),
		batchSize: cfg.BatchSize,
		timeout:   cfg.Timeout,
		logger:    logger,
	}
	for _, p := range providers {
		r.providers[p.Name()] = p
	}
	if r.timeout <= 0 {
		r.timeout = 10 * time.Second
	}
	r.pool = NewPool(PoolConfig{
		MaxWorkers:   cfg.MaxWorkers,
		JobQueueSize: cfg.JobQueueSize,
	}, r.process, logger)
	return r
}

// RunOnce checks one batch of processing payments and waits for every job.
func (r *Reconciler) RunOnce(ctx context.Context) (Summary, error) {
	pending, err := r.payments.ListByStatus(ctx, payment.StatusProcessing, r.batchSize)
	if err != nil {
		return Summary{}, err
	}

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		summary Summary
	)
	record := func(o Outcome) {
		mu.Lock()
		defer mu.Unlock()
		switch o {
		case OutcomeUpdated:
			summary.Updated++
		case OutcomeUnchanged:
			summary.Unchanged++
		case OutcomeSkipped:
			summary.Skipped++
		case OutcomeFailed:
			summary.Failed++
		}
	}

	for _, p := range pending {
		summary.Checked++
		if _, ok := r.providers[p.Provider]; !ok || p.ProviderPaymentID == nil {
			record(OutcomeSkipped)
			continue
		}

		wg.Add(1)
		job := Job{Payment: p, done: func(o Outcome) {
			defer wg.Done()
			record(o)
		}}
		if err := r.pool.Submit(job); err != nil {
			wg.Done()
			record(OutcomeFailed)
		}
	}
	wg.Wait()

	r.logger.Info("reconcile batch finished",
		"checked", summary.Checked,
		"updated", summary.Updated,
		"unchanged", summary.Unchanged,
		"skipped", summary.Skipped,
		"failed", summary.Failed)

	return summary, nil
}

// Run reconciles every interval until ctx is cancelled.
func (r *Reconciler) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := r.RunOnce(ctx); err != nil {
			r.logger.Error("reconcile batch failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (r *Reconciler) Shutdown() {
	r.pool.Shutdown()
}

func (r *Reconciler) process(ctx context.Context, job Job) {
	outcome := OutcomeFailed
	defer func() {
		if job.done != nil {
			job.done(outcome)
		}
	}()

	p := job.Payment
	provider := r.providers[p.Provider]

	lookupCtx, cancel := internal.WithTimeout(ctx, r.timeout)
	defer cancel()

	res, err := provider.Lookup(lookupCtx, paymentgateway.StatusLookup{
		PaymentID:         p.ID,
		ProviderPaymentID: *p.ProviderPaymentID,
	})
	if err != nil {
		r.logger.Error("provider lookup failed", "payment_id", p.ID, "provider", p.Provider, "error", err)
		return
	}

	status, ok := InternalStatus(res.Status)
	if !ok || status == p.Status {
		r.logger.Debug("payment still in flight", "payment_id", p.ID, "provider_status", res.Status)
		outcome = OutcomeUnchanged
		return
	}

	if err := r.payments.TransitionTo(ctx, p, status); err != nil {
		r.logger.Error("reconcile transition failed", "payment_id", p.ID, "status", status, "error", err)
		return
	}

	r.logger.Info("payment reconciled",
		"payment_id", p.ID,
		"provider_status", res.Status,
		"status", status)
	outcome = OutcomeUpdated
}
