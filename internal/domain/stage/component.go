package stage

import (
	"context"

	"ingestgraph/internal/domain/page"
)

// Component is a pluggable unit of work for one stage (spec.md §4.4).
// Concrete components are values registered by stage in a map rather than
// discovered via dynamic dispatch/inheritance (spec.md §9 design note).
type Component interface {
	// Kind reports the component's category, for observability only.
	Kind() ComponentKind

	// Validate is a cheap precondition check; it returns false (with an
	// explanatory error) when the page is not ready for Process.
	Validate(ctx context.Context, p *page.Page) (bool, error)

	// Process may mutate p in place and/or perform transactional side
	// effects. It must be safe to retry.
	Process(ctx context.Context, p *page.Page) error

	// Name identifies the component for retry bookkeeping and logging.
	Name() string
}
