package base

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	ErrQueueFull    = errors.New("job queue is full")
	ErrQueueStopped = errors.New("job queue is stopped")
)

const queueSize = 100

// Job is a unit of background work.
type Job func(ctx context.Context) error

// JobQueue runs enqueued jobs at most limitsPerMin times per minute.
type JobQueue struct {
	jobs         chan namedJob
	limitsPerMin int
	logger       *zap.Logger

	mu      sync.Mutex
	stopped bool
	wg      sync.WaitGroup
}

type namedJob struct {
	name string
	run  Job
}

func NewJobQueue(limitsPerMin int, logger *zap.Logger) *JobQueue {
	if limitsPerMin <= 0 {
		limitsPerMin = 1
	}
	return &JobQueue{
		jobs:         make(chan namedJob, queueSize),
		limitsPerMin: limitsPerMin,
		logger:       logger,
	}
}

// Start dispatches jobs until ctx is done. Jobs still pending then are dropped.
func (jq *JobQueue) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(time.Minute / time.Duration(jq.limitsPerMin))
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				jq.stop()
				return
			case job := <-jq.jobs:
				select {
				case <-ctx.Done():
					jq.drop(job)
					jq.stop()
					return
				case <-ticker.C:
				}
				go jq.run(ctx, job)
			}
		}
	}()
}

func (jq *JobQueue) stop() {
	jq.mu.Lock()
	jq.stopped = true
	jq.mu.Unlock()

	for {
		select {
		case job := <-jq.jobs:
			jq.drop(job)
		default:
			return
		}
	}
}

func (jq *JobQueue) drop(job namedJob) {
	jq.logger.Debug("job dropped", zap.String("job", job.name))
	jq.wg.Done()
}

func (jq *JobQueue) run(ctx context.Context, job namedJob) {
	defer jq.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			jq.logger.Error("job panicked", zap.String("job", job.name), zap.Any("panic", r))
		}
	}()

	start := time.Now()
	if err := job.run(ctx); err != nil {
		jq.logger.Error("job failed", zap.String("job", job.name), zap.Error(err))
		return
	}
	jq.logger.Debug("job done", zap.String("job", job.name), zap.Duration("took", time.Since(start)))
}

// Enqueue never blocks. Like sync.WaitGroup.Add, it must not race with a
// Wait that may see an empty queue.
func (jq *JobQueue) Enqueue(name string, job Job) error {
	jq.mu.Lock()
	defer jq.mu.Unlock()
	if jq.stopped {
		return ErrQueueStopped
	}

	jq.wg.Add(1)
	select {
	case jq.jobs <- namedJob{name: name, run: job}:
		return nil
	default:
		jq.wg.Done()
		return ErrQueueFull
	}
}

// Wait blocks until every enqueued job has run or been dropped.
func (jq *JobQueue) Wait() {
	jq.wg.Wait()
}
