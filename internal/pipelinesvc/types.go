package pipelinesvc

import (
	"time"

	"ingestgraph/internal/domain/page"
)

// Submission is one URL handed to enqueue_urls, carrying the browser-context
// metadata the worker applies to the resulting page once processed
// (spec.md §4.7).
type Submission struct {
	URL        string
	Context    page.BrowserContext
	TabID      string
	WindowID   string
	BookmarkID string
}

// EnqueueResult is what enqueue_urls returns to its caller (spec.md §4.7
// step 5).
type EnqueueResult struct {
	TaskID       string
	URLsEnqueued int
	QueueSize    int
	QueuedAt     time.Time
}

// queueItem is one pending submission sitting in the bounded queue.
type queueItem struct {
	taskID   string
	url      string
	metadata Submission
}
