package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"ingestgraph/internal/domain/shared"
	"ingestgraph/internal/ingesterrors"
	"ingestgraph/internal/pipelinesvc"
)

// AnalysisHandler implements the Submission API (spec.md §6): analyze,
// batch-analyze, and status lookup, all delegating to pipelinesvc.Service.
// Grounded on the teacher's handlers.NodeHandler (decode -> validate ->
// delegate -> respond), retargeted from a mediator/command-bus dispatch to
// a direct pipelinesvc.Service call since the pipeline service already
// owns its own queue and worker pool.
type AnalysisHandler struct {
	svc      *pipelinesvc.Service
	validate *validator.Validate
	logger   *zap.Logger
}

// NewAnalysisHandler builds an AnalysisHandler.
func NewAnalysisHandler(svc *pipelinesvc.Service, logger *zap.Logger) *AnalysisHandler {
	return &AnalysisHandler{svc: svc, validate: validator.New(), logger: logger}
}

// Analyze handles POST /analysis/analyze (spec.md §6).
func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, string(ingesterrors.CodeInvalidFormat), "invalid request body: "+err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, string(ingesterrors.CodeValidationFailed), err.Error())
		return
	}

	result, err := h.svc.EnqueueURLs(r.Context(), []pipelinesvc.Submission{toSubmission(req)})
	if err != nil {
		h.writeIngestErr(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, AnalyzeResponse{
		TaskID:   result.TaskID,
		Status:   "enqueued",
		Progress: 0,
		Message:  "",
	})
}

// AnalyzeBatch handles the batch submission variant (spec.md §6).
func (h *AnalysisHandler) AnalyzeBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchAnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, string(ingesterrors.CodeInvalidFormat), "invalid request body: "+err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, string(ingesterrors.CodeValidationFailed), err.Error())
		return
	}

	submissions := make([]pipelinesvc.Submission, len(req.Items))
	for i, item := range req.Items {
		submissions[i] = toSubmission(item)
	}

	result, err := h.svc.EnqueueURLs(r.Context(), submissions)
	if err != nil {
		h.writeIngestErr(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, AnalyzeResponse{
		TaskID:   result.TaskID,
		Status:   "enqueued",
		Progress: 0,
	})
}

// Status handles GET /analysis/status/{task_id} (spec.md §6).
func (h *AnalysisHandler) Status(w http.ResponseWriter, r *http.Request) {
	rawID := chi.URLParam(r, "task_id")
	id, err := shared.ParseTaskID(rawID)
	if err != nil {
		writeError(w, http.StatusBadRequest, string(ingesterrors.CodeInvalidTaskID), "invalid task id")
		return
	}

	t, err := h.svc.GetStatus(r.Context(), id)
	if err != nil {
		if errors.Is(err, shared.ErrTaskNotFound) {
			writeError(w, http.StatusNotFound, string(ingesterrors.CodeTaskNotFound), "task not found")
			return
		}
		h.writeIngestErr(w, err)
		return
	}

	resp := StatusResponse{
		Status:      t.Status,
		Progress:    t.Progress,
		StartedAt:   t.StartedAt,
		CompletedAt: t.CompletedAt,
	}
	if t.Status == "error" {
		resp.Error = t.Message
	} else {
		resp.Message = t.Message
	}
	writeJSON(w, http.StatusOK, resp)
}

func toSubmission(req AnalyzeRequest) pipelinesvc.Submission {
	return pipelinesvc.Submission{
		URL:        req.URL,
		Context:    req.Context,
		TabID:      req.TabID,
		WindowID:   req.WindowID,
		BookmarkID: req.BookmarkID,
	}
}

// writeIngestErr translates an *ingesterrors.Error into its HTTP status:
// validation failures are 400-like ("404-like unknown task" vs "query
// failed 5xx-like" per spec.md §4.7's get_status contract, generalized to
// every handler here), anything store-related is 5xx, everything else 500.
func (h *AnalysisHandler) writeIngestErr(w http.ResponseWriter, err error) {
	var ierr *ingesterrors.Error
	if errors.As(err, &ierr) {
		switch ierr.Kind {
		case ingesterrors.KindValidation:
			writeError(w, http.StatusBadRequest, ierr.Code, ierr.Message)
		case ingesterrors.KindTimeout:
			writeError(w, http.StatusGatewayTimeout, ierr.Code, ierr.Message)
		case ingesterrors.KindStore:
			writeError(w, http.StatusServiceUnavailable, ierr.Code, ierr.Message)
		default:
			h.logger.Error("unhandled request error", zap.Error(err))
			writeError(w, http.StatusInternalServerError, ierr.Code, ierr.Message)
		}
		return
	}
	h.logger.Error("unclassified request error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Status: "error", Message: message, ErrorCode: code})
}
