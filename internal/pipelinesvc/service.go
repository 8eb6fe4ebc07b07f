// Package pipelinesvc owns the bounded submission queue and worker pool
// that drive the pipeline orchestrator per submitted URL, and tracks task
// status in memory with write-through persistence for restart recovery
// (spec.md §4.7).
//
// Grounded on the teacher's internal/infrastructure/concurrency
// (AdaptiveWorkerPool/Task/taskQueue/workerWithRecovery), retargeted from
// Lambda-environment-adaptive sizing to the spec's fixed max_concurrent
// worker budget and its enqueue/process_url/get_status shape.
package pipelinesvc

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"ingestgraph/internal/domain/shared"
	"ingestgraph/internal/domain/task"
	"ingestgraph/internal/graphstore"
	"ingestgraph/internal/ingesterrors"
	"ingestgraph/internal/pipeline"
	"ingestgraph/internal/txn"
)

// Config sizes the queue and worker pool (spec.md §6 configuration keys).
type Config struct {
	MaxConcurrent int
	QueueSize     int

	PopTimeout         time.Duration
	ReapInterval       time.Duration
	IdleSleep          time.Duration
	WorkerTimeout      time.Duration
	EnqueueTxTimeout   time.Duration
	StatusQueryTimeout time.Duration
}

// DefaultConfig mirrors spec.md §6's defaults: max_concurrent_pages=10.
func DefaultConfig() Config {
	return Config{
		MaxConcurrent:      10,
		QueueSize:          500,
		PopTimeout:         100 * time.Millisecond,
		ReapInterval:       1 * time.Second,
		IdleSleep:          50 * time.Millisecond,
		WorkerTimeout:      90 * time.Second,
		EnqueueTxTimeout:   5 * time.Second,
		StatusQueryTimeout: 10 * time.Second,
	}
}

// Service is the pipeline service of spec.md §4.7: submission queue, worker
// pool, and task-status tracking atop the orchestrator and graph store.
type Service struct {
	cfg          Config
	orchestrator *pipeline.Orchestrator
	store        graphstore.GraphStore
	logger       *zap.Logger
	clock        func() time.Time

	queue chan queueItem

	mu       sync.Mutex
	tasks    map[string]*task.Task
	inFlight map[string]struct{}

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewService builds a Service. Start must be called once before submitting
// work.
func NewService(cfg Config, orchestrator *pipeline.Orchestrator, store graphstore.GraphStore, logger *zap.Logger) *Service {
	return &Service{
		cfg:          cfg,
		orchestrator: orchestrator,
		store:        store,
		logger:       logger,
		clock:        time.Now,
		queue:        make(chan queueItem, cfg.QueueSize),
		tasks:        make(map[string]*task.Task),
		inFlight:     make(map[string]struct{}),
	}
}

// Start launches the dispatcher loop. Shutdown cancels it and awaits every
// in-flight worker before the store connection may be closed (spec.md §5).
func (s *Service) Start(ctx context.Context) {
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.wg.Add(1)
	go s.dispatchLoop(runCtx)
}

// Stop cancels the dispatcher and waits for every in-flight worker to exit;
// pending queue items are left undrained by design, matching spec.md §5's
// "pending queue items are drained without processing" shutdown note (the
// drain itself is a no-op here since an unbuffered consumer is unnecessary
// once the dispatcher has stopped popping).
func (s *Service) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

// EnqueueURLs creates a task covering every submitted URL, in one
// transaction, then pushes each submission onto the queue (spec.md §4.7
// enqueue_urls). If the transaction times out, the task is tracked in
// memory only so degraded stores still make progress.
func (s *Service) EnqueueURLs(ctx context.Context, submissions []Submission) (EnqueueResult, error) {
	if len(submissions) == 0 {
		return EnqueueResult{}, ingesterrors.Validation(string(ingesterrors.CodeMissingField), "at least one url is required").Build()
	}

	urls := make([]string, len(submissions))
	for i, sub := range submissions {
		urls[i] = sub.URL
	}

	now := s.clock()
	t, err := task.NewTask(urls, now)
	if err != nil {
		return EnqueueResult{}, err
	}

	s.mu.Lock()
	s.tasks[t.ID.String()] = t
	s.mu.Unlock()

	tx := txn.New()
	tx.AddStep("create_task",
		func(ctx context.Context) error {
			if s.store == nil {
				return nil
			}
			return s.store.CreateOrUpdateTask(ctx, t)
		},
		func(context.Context) error {
			s.mu.Lock()
			delete(s.tasks, t.ID.String())
			s.mu.Unlock()
			return nil
		},
	)

	txCtx, cancel := context.WithTimeout(ctx, s.cfg.EnqueueTxTimeout)
	defer cancel()

	if err := tx.Execute(txCtx); err != nil {
		if txCtx.Err() == context.DeadlineExceeded {
			s.logger.Warn("enqueue transaction timed out, falling back to memory-only task",
				zap.String("task_id", t.ID.String()))
			s.mu.Lock()
			s.tasks[t.ID.String()] = t
			s.mu.Unlock()
		} else {
			return EnqueueResult{}, ingesterrors.Wrap(err, "pipelinesvc", "failed to persist task")
		}
	}

	for _, sub := range submissions {
		s.queue <- queueItem{taskID: t.ID.String(), url: sub.URL, metadata: sub}
	}

	return EnqueueResult{
		TaskID:       t.ID.String(),
		URLsEnqueued: len(submissions),
		QueueSize:    len(s.queue),
		QueuedAt:     now,
	}, nil
}

// GetStatus reports a task's current status (spec.md §4.7 get_status).
// The fast path aggregates the in-memory copy; the slow path queries the
// store and repopulates memory, used after a worker-process restart.
func (s *Service) GetStatus(ctx context.Context, id shared.TaskID) (*task.Task, error) {
	s.mu.Lock()
	t, ok := s.tasks[id.String()]
	s.mu.Unlock()
	if ok {
		return t, nil
	}

	if s.store == nil {
		return nil, shared.ErrTaskNotFound
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.cfg.StatusQueryTimeout)
	defer cancel()

	t, err := s.store.GetTaskByID(storeCtx, id)
	if err != nil {
		if isTaskNotFound(err) {
			return nil, shared.ErrTaskNotFound
		}
		return nil, ingesterrors.Wrap(err, "pipelinesvc", "failed to query task status")
	}

	s.mu.Lock()
	s.tasks[id.String()] = t
	s.mu.Unlock()
	return t, nil
}

func isTaskNotFound(err error) bool {
	return err == shared.ErrTaskNotFound
}

// sortedKeys is a small determinism helper used when turning a page's
// keyword map into the flat Result.Keywords list spec.md §3 expects.
func sortedKeys(m map[string]float64) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
