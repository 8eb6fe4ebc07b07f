// Package pipeline implements the stage coordinator and orchestrator that
// drive one Page through the fixed stage sequence (spec.md §4.5, §4.6),
// grounded on the teacher's Saga (internal/domain/services/saga.go):
// ordered step execution, per-step timeout, and an explicit terminal state
// rather than exceptions for control flow (spec.md §9 design note).
package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ingestgraph/internal/domain/page"
	"ingestgraph/internal/domain/stage"
	"ingestgraph/internal/ingesterrors"
)

// Registry maps a stage to the components that run during it.
type Registry map[stage.Name][]stage.Component

// Coordinator runs all components registered for one stage, under the
// stage's concurrency, timeout and retry policy (spec.md §4.5).
type Coordinator struct {
	registry Registry
	configs  map[stage.Name]stage.Config

	// custom guards writes to page.Custom["component_timings"/"validation_results"]
	// since concurrent_components=true runs components in separate goroutines
	// that would otherwise race on the same map (spec.md §5: components "MUST
	// NOT depend on each other's mutations except through page fields they
	// each own" — component_timings is coordinator-owned, not component-owned).
	custom sync.Mutex
}

// NewCoordinator builds a Coordinator over the given component registry and
// per-stage configuration.
func NewCoordinator(registry Registry, configs map[stage.Name]stage.Config) *Coordinator {
	return &Coordinator{registry: registry, configs: configs}
}

// ValidateStage invokes every registered component's Validate individually,
// recording each outcome and returning their conjunction (spec.md §4.5). A
// component whose Validate returns an error counts as false for that
// component but does not abort the stage by itself.
func (c *Coordinator) ValidateStage(ctx context.Context, p *page.Page, s stage.Name) bool {
	components := c.registry[s]
	results := make(map[string]bool, len(components))
	allValid := true

	for _, comp := range components {
		ok, err := comp.Validate(ctx, p)
		if err != nil {
			ok = false
		}
		results[comp.Name()] = ok
		if !ok {
			allValid = false
		}
	}

	c.recordValidationResults(p, s, results)
	return allValid
}

// ExecuteStage runs every component registered for s, honoring the stage's
// concurrency and retry policy, and records per-component elapsed time
// (spec.md §4.5 steps 2-4).
func (c *Coordinator) ExecuteStage(ctx context.Context, p *page.Page, s stage.Name) error {
	components := c.registry[s]
	if len(components) == 0 {
		return nil
	}

	cfg := c.configs[s]

	if cfg.ConcurrentComponents {
		return c.executeConcurrent(ctx, p, s, components, cfg)
	}
	return c.executeSequential(ctx, p, s, components, cfg)
}

func (c *Coordinator) executeSequential(ctx context.Context, p *page.Page, s stage.Name, components []stage.Component, cfg stage.Config) error {
	for _, comp := range components {
		if err := c.runWithRetry(ctx, p, s, comp, cfg); err != nil {
			return err
		}
	}
	return nil
}

func (c *Coordinator) executeConcurrent(ctx context.Context, p *page.Page, s stage.Name, components []stage.Component, cfg stage.Config) error {
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		firstErr error
	)

	for _, comp := range components {
		wg.Add(1)
		go func(comp stage.Component) {
			defer wg.Done()
			if err := c.runWithRetry(ctx, p, s, comp, cfg); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}
		}(comp)
	}
	wg.Wait()

	return firstErr
}

// runWithRetry runs one component under the stage's retry policy, recording
// elapsed time in page.Custom["component_timings"] regardless of outcome
// (spec.md §4.5 step 3).
func (c *Coordinator) runWithRetry(ctx context.Context, p *page.Page, s stage.Name, comp stage.Component, cfg stage.Config) error {
	retry := cfg.Retry
	if retry.MaxAttempts <= 0 {
		retry = stage.DefaultRetryConfig()
	}

	delay := time.Duration(retry.DelaySeconds * float64(time.Second))
	maxDelay := time.Duration(retry.MaxDelaySeconds * float64(time.Second))

	var lastErr error
	start := time.Now()
	for attempt := 1; attempt <= retry.MaxAttempts; attempt++ {
		lastErr = comp.Process(ctx, p)
		if lastErr == nil {
			break
		}
		if attempt < retry.MaxAttempts {
			select {
			case <-ctx.Done():
				lastErr = ctx.Err()
				attempt = retry.MaxAttempts
			case <-time.After(delay):
			}
			if retry.ExponentialBackoff {
				delay *= 2
				if delay > maxDelay {
					delay = maxDelay
				}
			}
		}
	}
	c.recordComponentTiming(p, comp.Name(), time.Since(start))

	if lastErr != nil {
		return ingesterrors.Component(string(ingesterrors.CodeComponentFailed),
			fmt.Sprintf("component %q failed after %d attempt(s)", comp.Name(), retry.MaxAttempts)).
			WithStage(string(s)).WithComponent(string(comp.Kind())).WithCause(lastErr).Build()
	}
	return nil
}

func (c *Coordinator) recordComponentTiming(p *page.Page, name string, d time.Duration) {
	c.custom.Lock()
	defer c.custom.Unlock()

	timings, _ := p.Custom["component_timings"].(map[string]int64)
	if timings == nil {
		timings = make(map[string]int64)
	}
	timings[name] = d.Milliseconds()
	p.Custom["component_timings"] = timings
}

func (c *Coordinator) recordValidationResults(p *page.Page, s stage.Name, results map[string]bool) {
	c.custom.Lock()
	defer c.custom.Unlock()

	byStage, _ := p.Custom["validation_results"].(map[stage.Name]map[string]bool)
	if byStage == nil {
		byStage = make(map[stage.Name]map[string]bool)
	}
	byStage[s] = results
	p.Custom["validation_results"] = byStage
}
