package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ingestgraph/internal/domain/page"
	"ingestgraph/internal/domain/shared"
	"ingestgraph/internal/domain/stage"
	"ingestgraph/internal/graphstore"
	"ingestgraph/internal/ingesterrors"
)

// Orchestrator advances a page through every stage in stage.Sequence,
// emitting lifecycle events and translating per-stage failures into the
// page's terminal state (spec.md §4.6).
type Orchestrator struct {
	coordinator *Coordinator
	configs     map[stage.Name]stage.Config
	handlers    []stage.Handler
	store       graphstore.GraphStore
	clock       func() time.Time
}

// NewOrchestrator builds an Orchestrator. handlers run synchronously, in
// registration order, for every emitted event; a handler that panics or
// returns is not itself allowed to disturb the pipeline (the Handler
// signature carries no error return, matching spec.md §4.6). store is
// consulted by URL before a fresh Page is minted, so resubmitting a known
// URL updates the existing Page instead of creating a duplicate (spec.md
// Testable Property 6, idempotent upsert); store may be nil, in which case
// every call creates a new Page.
func NewOrchestrator(coordinator *Coordinator, configs map[stage.Name]stage.Config, store graphstore.GraphStore, handlers ...stage.Handler) *Orchestrator {
	return &Orchestrator{coordinator: coordinator, configs: configs, handlers: handlers, store: store, clock: time.Now}
}

// ProcessPage drives url/content through initialize -> metadata -> content ->
// analysis -> storage (spec.md §4.6). Once stage processing has begun, the
// returned Page reflects the final status (active or error) whether or not
// an error is also returned; a URL that fails normalization or page lookup
// returns a nil Page with the error.
func (o *Orchestrator) ProcessPage(ctx context.Context, rawURL, content string) (*page.Page, error) {
	now := o.clock()

	normalized, err := normalizeURL(rawURL)
	if err != nil {
		return nil, ingesterrors.Validation(string(ingesterrors.CodeInvalidFormat), "failed to normalize url").WithCause(err).Build()
	}

	p, err := o.lookupOrCreatePage(ctx, normalized.URL, normalized.Domain, now)
	if err != nil {
		return nil, err
	}
	p.AdvanceTo(page.StatusInProgress, o.clock())
	p.AttachContent(content, page.SourceUnknown)

	for _, name := range stage.Sequence {
		if err := o.runStage(ctx, p, name); err != nil {
			o.abort(p, err)
			return p, err
		}
	}

	p.MarkActive(o.clock())
	o.emit(stage.NewCompleteEvent(nil, o.clock()))
	return p, nil
}

// lookupOrCreatePage looks the url up in the graph store first; a known url
// reuses its existing Page (reset via BeginReprocessing) rather than minting
// a fresh id, so resubmitting the same url is an update, not a duplicate
// (spec.md Testable Property 6, Scenario S5). With no store attached, or on
// a first sighting of the url, it falls through to page.NewPage.
func (o *Orchestrator) lookupOrCreatePage(ctx context.Context, url, domain string, now time.Time) (*page.Page, error) {
	if o.store != nil {
		existing, err := o.store.GetPageByURL(ctx, url)
		if err == nil {
			existing.BeginReprocessing(now)
			return existing, nil
		}
		if !errors.Is(err, shared.ErrPageNotFound) {
			return nil, err
		}
	}
	return page.NewPage(url, domain, now)
}

func (o *Orchestrator) runStage(ctx context.Context, p *page.Page, name stage.Name) error {
	cfg := o.configs[name]

	o.emit(stage.NewStageStartEvent(name, nil, o.clock()))
	start := o.clock()

	if cfg.ValidationRequired {
		if ok := o.coordinator.ValidateStage(ctx, p, name); !ok {
			err := ingesterrors.Validation(string(ingesterrors.CodeValidationFailed),
				fmt.Sprintf("%s validation failed", name)).WithStage(string(name)).Build()
			return o.handleStageError(p, name, cfg, err)
		}
	}

	stageCtx, cancel := context.WithTimeout(ctx, cfg.Timeout())
	defer cancel()

	err := o.coordinator.ExecuteStage(stageCtx, p, name)
	if err == nil && stageCtx.Err() == context.DeadlineExceeded {
		err = stageCtx.Err()
	}

	if err != nil {
		if stageCtx.Err() == context.DeadlineExceeded {
			err = ingesterrors.Timeout(string(ingesterrors.CodeStageTimeout),
				fmt.Sprintf("%s timed out after %s", name, cfg.Timeout())).WithStage(string(name)).WithCause(err).Build()
		}
		return o.handleStageError(p, name, cfg, err)
	}

	o.emit(stage.NewStageEndEvent(name, o.clock().Sub(start), nil, o.clock()))
	return nil
}

// handleStageError emits the stage-error event and decides whether the
// failure aborts the run (required stage) or is absorbed (optional stage),
// per spec.md §4.6 step 3e.
func (o *Orchestrator) handleStageError(p *page.Page, name stage.Name, cfg stage.Config, err error) error {
	o.emit(stage.NewStageErrorEvent(name, err, nil, o.clock()))
	if cfg.Required {
		return err
	}
	return nil
}

// abort marks the page as errored and emits the terminal error event
// (spec.md §4.6 step 4).
func (o *Orchestrator) abort(p *page.Page, err error) {
	p.MarkError(err.Error(), o.clock())
	o.emit(stage.NewAbortEvent(err.Error(), nil, o.clock()))
}

// AbortProcessing marks an in-flight page as errored with reason "aborted"
// without attempting to roll back prior stages, which are expected to have
// been individually transactional (spec.md §4.6 abort_processing).
func (o *Orchestrator) AbortProcessing(p *page.Page) {
	p.MarkError("aborted", o.clock())
	o.emit(stage.NewAbortEvent("aborted", nil, o.clock()))
}

func (o *Orchestrator) emit(event stage.Event) {
	for _, h := range o.handlers {
		o.safeInvoke(h, event)
	}
}

// safeInvoke isolates a misbehaving handler so it cannot disturb the
// pipeline: a panic is recovered and discarded; it is not logged.
func (o *Orchestrator) safeInvoke(h stage.Handler, event stage.Event) {
	defer func() {
		_ = recover()
	}()
	h(event)
}
