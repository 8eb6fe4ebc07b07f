// Package httpapi implements the Submission API (spec.md §6): the HTTP
// surface that enqueues URLs and reports task status. Out of scope for the
// core per spec.md §1 ("the HTTP surface that enqueues URLs"), but carried
// here as the ambient stack needed to drive the pipeline end to end.
//
// Grounded on the teacher's interfaces/http/rest (router.go's chi setup,
// handlers/node_handler.go's decode-validate-delegate-respond shape), with
// request validation via github.com/go-playground/validator/v10 the same
// way the teacher validates handler request bodies.
package httpapi

import (
	"time"

	"ingestgraph/internal/domain/page"
	"ingestgraph/internal/domain/task"
)

// AnalyzeRequest is the body of POST /analysis/analyze (spec.md §6).
type AnalyzeRequest struct {
	URL        string              `json:"url" validate:"required,url"`
	Context    page.BrowserContext `json:"context,omitempty" validate:"omitempty,oneof=active_tab open_tab background bookmarked history"`
	TabID      string              `json:"tab_id,omitempty"`
	WindowID   string              `json:"window_id,omitempty"`
	BookmarkID string              `json:"bookmark_id,omitempty"`
}

// BatchAnalyzeRequest is the body of the batch submission variant
// (spec.md §6: "Batch variants accept [{url, context, tab_id?, ...}, ...]").
type BatchAnalyzeRequest struct {
	Items []AnalyzeRequest `json:"items" validate:"required,min=1,max=500,dive"`
}

// AnalyzeResponse is the response shape common to both the single and
// batch submission endpoints (spec.md §6).
type AnalyzeResponse struct {
	TaskID   string  `json:"task_id"`
	Status   string  `json:"status"`
	Progress float64 `json:"progress"`
	Message  string  `json:"message,omitempty"`
}

// StatusResponse is the response body of GET /analysis/status/{task_id}
// (spec.md §6).
type StatusResponse struct {
	Status      task.Status `json:"status"`
	Progress    float64     `json:"progress"`
	Message     string      `json:"message,omitempty"`
	StartedAt   *time.Time  `json:"started_at,omitempty"`
	CompletedAt *time.Time  `json:"completed_at,omitempty"`
	Error       string      `json:"error,omitempty"`
}

// errorResponse is the body returned for any non-2xx response (spec.md §7:
// "User-visible failures arrive through the task status endpoint as
// {status: error, message, error_code}" — the same shape is reused for
// every handler error, not only status lookups).
type errorResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	ErrorCode string `json:"error_code"`
}
