package pipelinesvc

import (
	"context"
	"time"

	"go.uber.org/zap"

	"ingestgraph/internal/domain/page"
	"ingestgraph/internal/domain/task"
	"ingestgraph/internal/txn"
)

// dispatchLoop is the single worker-pool dispatcher (spec.md §4.7 "Worker
// loop"): it reaps nothing explicitly (workers remove themselves from
// inFlight on every exit path), throttles against max_concurrent, and spawns
// one goroutine per popped submission.
func (s *Service) dispatchLoop(ctx context.Context) {
	defer s.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		s.mu.Lock()
		n := len(s.inFlight)
		s.mu.Unlock()
		if n >= s.cfg.MaxConcurrent {
			sleepOrDone(ctx, s.cfg.IdleSleep)
			continue
		}

		item, ok := s.popWithTimeout(ctx, s.cfg.PopTimeout)
		if !ok {
			sleepOrDone(ctx, s.cfg.IdleSleep)
			continue
		}

		s.spawnWorker(ctx, item)
	}
}

func sleepOrDone(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

func (s *Service) popWithTimeout(ctx context.Context, d time.Duration) (queueItem, bool) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case item := <-s.queue:
		return item, true
	case <-timer.C:
		return queueItem{}, false
	case <-ctx.Done():
		return queueItem{}, false
	}
}

// spawnWorker runs one URL through process_url under an outer timeout,
// guaranteeing a status update and in-flight cleanup on every exit path
// (spec.md §4.7 worker loop / §8 queue-safety property).
func (s *Service) spawnWorker(ctx context.Context, item queueItem) {
	key := item.taskID + "|" + item.url
	s.mu.Lock()
	s.inFlight[key] = struct{}{}
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			s.mu.Lock()
			delete(s.inFlight, key)
			s.mu.Unlock()
		}()

		workerCtx, cancel := context.WithTimeout(ctx, s.cfg.WorkerTimeout)
		defer cancel()

		err := s.processURL(workerCtx, item)
		if err != nil {
			s.logger.Error("process_url failed",
				zap.String("task_id", item.taskID), zap.String("url", item.url), zap.Error(err))
		}
		if workerCtx.Err() == context.DeadlineExceeded {
			s.setURLStatus(ctx, item.taskID, item.url, task.StatusError, 0, "worker timed out", nil)
		}
	}()
}

// processURL drives one URL through the orchestrator and records its
// outcome, per spec.md §4.7 process_url.
func (s *Service) processURL(ctx context.Context, item queueItem) error {
	now := s.clock()
	s.setURLStatus(ctx, item.taskID, item.url, task.StatusProcessing, 0, "", nil)

	tx := txn.New()
	var resultErr error
	tx.AddStep("process_page",
		func(ctx context.Context) error {
			p, err := s.orchestrator.ProcessPage(ctx, item.url, "")
			if err != nil {
				resultErr = err
				return err
			}

			if item.metadata.Context != "" {
				if ctxErr := p.ApplyBrowserContext(item.metadata.Context, item.metadata.TabID, item.metadata.WindowID, item.metadata.BookmarkID); ctxErr != nil {
					return ctxErr
				}
				if item.metadata.Context == page.ContextActiveTab || item.metadata.Context == page.ContextOpenTab {
					p.RecordVisit(now)
				}
				if s.store != nil {
					if err := s.store.CreateOrUpdatePage(ctx, p); err != nil {
						return err
					}
				}
			}

			s.setURLStatus(ctx, item.taskID, item.url, task.StatusCompleted, 1.0, "", &task.Result{
				Keywords: sortedKeys(p.Keywords),
			})
			return nil
		},
		func(context.Context) error {
			s.setURLStatus(context.Background(), item.taskID, item.url, task.StatusError, 0, "rolled back", nil)
			return nil
		},
	)

	retryPolicy := txn.DefaultRetryPolicy()
	err := txn.RetryWithBackoff(ctx, item.taskID, retryPolicy, func() error { return tx.Execute(ctx) })
	if err != nil {
		msg := err.Error()
		if resultErr != nil {
			msg = resultErr.Error()
		}
		if hist := txn.History(err); hist != nil {
			s.logger.Warn("process_url exhausted retries",
				zap.String("task_id", item.taskID), zap.String("url", item.url),
				zap.Int("attempts", hist.AttemptCount), zap.Strings("error_codes", hist.ErrorCodes),
				zap.Time("first_error_at", hist.FirstErrorAt))
		}
		s.setURLStatus(context.Background(), item.taskID, item.url, task.StatusError, 0, msg, nil)
		return err
	}
	return nil
}

// setURLStatus updates a URL's status in the in-memory task and writes
// through to the store (spec.md §4.7: "in-memory map... write-through to
// the graph"). Store failures are logged, not propagated: the in-memory
// copy remains authoritative for get_status's fast path.
func (s *Service) setURLStatus(ctx context.Context, taskID, url string, status task.Status, progress float64, message string, result *task.Result) {
	s.mu.Lock()
	t, ok := s.tasks[taskID]
	s.mu.Unlock()
	if !ok {
		return
	}

	t.SetURLStatus(url, status, progress, message, result)

	if s.store == nil {
		return
	}
	if err := s.store.CreateOrUpdateTask(ctx, t); err != nil {
		s.logger.Warn("failed to write through task status", zap.String("task_id", taskID), zap.Error(err))
	}
}
