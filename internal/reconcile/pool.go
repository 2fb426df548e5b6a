package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/autorentar/rental-payments/internal/core/datamodel/payment"
)

// Job asks a worker to re-check one payment with its provider.
type Job struct {
	Payment *payment.Payment
	done    func(Outcome)
}

type Worker struct {
	ID         int
	WorkerPool chan chan Job
	JobChannel chan Job
	Logger     *slog.Logger
}

func NewWorker(id int, workerPool chan chan Job, logger *slog.Logger) *Worker {
	return &Worker{
		ID:         id,
		WorkerPool: workerPool,
		JobChannel: make(chan Job),
		Logger:     logger,
	}
}

func (w *Worker) Start(ctx context.Context, wg *sync.WaitGroup, processFunc func(context.Context, Job)) {
	wg.Add(1)
	go func() {
		defer wg.Done()

		for {
			select {
			case w.WorkerPool <- w.JobChannel:
			case <-ctx.Done():
				w.Logger.Debug("worker shutting down", "worker_id", w.ID)
				return
			}

			select {
			case job := <-w.JobChannel:
				w.Logger.Debug("worker processing job", "worker_id", w.ID, "payment_id", job.Payment.ID)
				processFunc(ctx, job)
			case <-ctx.Done():
				w.Logger.Debug("worker shutting down", "worker_id", w.ID)
				return
			}
		}
	}()
}

type PoolConfig struct {
	MaxWorkers   int
	JobQueueSize int
}

// Pool fans jobs out to a fixed set of workers through a bounded queue.
type Pool struct {
	logger *slog.Logger

	jobQueue   chan Job
	workerPool chan chan Job
	maxWorkers int
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	once       sync.Once
}

func NewPool(config PoolConfig, processFunc func(context.Context, Job), logger *slog.Logger) *Pool {
	ctx, cancel := context.WithCancel(context.Background())

	maxWorkers := config.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = 4
	}

	jobQueueSize := config.JobQueueSize
	if jobQueueSize <= 0 {
		jobQueueSize = 100
	}

	p := &Pool{
		logger:     logger,
		maxWorkers: maxWorkers,
		jobQueue:   make(chan Job, jobQueueSize),
		workerPool: make(chan chan Job, maxWorkers),
		ctx:        ctx,
		cancel:     cancel,
	}

	p.start(processFunc)

	return p
}

func (p *Pool) start(processFunc func(context.Context, Job)) {
	p.once.Do(func() {
		for i := 0; i < p.maxWorkers; i++ {
			worker := NewWorker(i, p.workerPool, p.logger)
			worker.Start(p.ctx, &p.wg, processFunc)
		}

		p.wg.Add(1)
		go p.dispatch()

		p.logger.Info("reconcile worker pool started",
			"max_workers", p.maxWorkers,
			"queue_size", cap(p.jobQueue))
	})
}

func (p *Pool) dispatch() {
	defer p.wg.Done()

	for {
		select {
		case job := <-p.jobQueue:
			select {
			case jobChannel := <-p.workerPool:
				select {
				case jobChannel <- job:
				case <-p.ctx.Done():
					p.logger.Info("dispatcher shutting down")
					return
				}
			case <-p.ctx.Done():
				p.logger.Info("dispatcher shutting down")
				return
			}
		case <-p.ctx.Done():
			p.logger.Info("dispatcher shutting down")
			return
		}
	}
}

// Submit queues a job without blocking.
func (p *Pool) Submit(job Job) error {
	select {
	case <-p.ctx.Done():
		return fmt.Errorf("reconcile pool is shut down")
	default:
	}

	select {
	case p.jobQueue <- job:
		return nil
	default:
		p.logger.Warn("reconcile queue full, rejecting job",
			"payment_id", job.Payment.ID,
			"queue_capacity", cap(p.jobQueue))
		return fmt.Errorf("reconcile queue full")
	}
}

func (p *Pool) Shutdown() {
	p.logger.Info("shutting down reconcile pool")
	p.cancel()
	p.wg.Wait()
	p.logger.Info("reconcile pool shutdown complete")
}
