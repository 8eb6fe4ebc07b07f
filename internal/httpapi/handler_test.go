package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ingestgraph/internal/domain/stage"
	"ingestgraph/internal/pipeline"
	"ingestgraph/internal/pipelinesvc"
)

// newTestRouter builds a Router over a pipelinesvc.Service with an empty
// component registry (every stage is a no-op) and no backing store, so
// pages sail through to "active" without any network or store calls -
// enough to exercise the HTTP contract in isolation.
func newTestRouter(t *testing.T) (http.Handler, *pipelinesvc.Service) {
	t.Helper()
	logger := zap.NewNop()
	coordinator := pipeline.NewCoordinator(pipeline.Registry{}, stage.DefaultConfigs())
	orchestrator := pipeline.NewOrchestrator(coordinator, stage.DefaultConfigs(), nil)

	cfg := pipelinesvc.DefaultConfig()
	cfg.WorkerTimeout = 2 * time.Second
	svc := pipelinesvc.NewService(cfg, orchestrator, nil, logger)
	svc.Start(t.Context())
	t.Cleanup(svc.Stop)

	return NewRouter(svc, nil, logger).Setup(), svc
}

func TestAnalysisHandler_Analyze(t *testing.T) {
	router, _ := newTestRouter(t)

	body, _ := json.Marshal(AnalyzeRequest{URL: "https://example.com/a", Context: "active_tab", TabID: "t1", WindowID: "w1"})
	req := httptest.NewRequest(http.MethodPost, "/analysis/analyze", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)
	var resp AnalyzeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.TaskID)
	assert.Equal(t, "enqueued", resp.Status)
}

func TestAnalysisHandler_Analyze_ValidationFailure(t *testing.T) {
	router, _ := newTestRouter(t)

	body, _ := json.Marshal(AnalyzeRequest{URL: "not-a-url"})
	req := httptest.NewRequest(http.MethodPost, "/analysis/analyze", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalysisHandler_Status_UnknownTask(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/analysis/status/"+"00000000-0000-0000-0000-000000000000", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAnalysisHandler_Status_InvalidID(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/analysis/status/not-a-uuid", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalysisHandler_AnalyzeAndStatus_EventuallyCompletes(t *testing.T) {
	router, _ := newTestRouter(t)

	body, _ := json.Marshal(AnalyzeRequest{URL: "https://example.com/b"})
	req := httptest.NewRequest(http.MethodPost, "/analysis/analyze", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusAccepted, rec.Code)

	var enqueued AnalyzeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &enqueued))

	require.Eventually(t, func() bool {
		statusRec := httptest.NewRecorder()
		statusReq := httptest.NewRequest(http.MethodGet, "/analysis/status/"+enqueued.TaskID, nil)
		router.ServeHTTP(statusRec, statusReq)
		if statusRec.Code != http.StatusOK {
			return false
		}
		var resp StatusResponse
		_ = json.Unmarshal(statusRec.Body.Bytes(), &resp)
		return resp.Status == "completed"
	}, 2*time.Second, 10*time.Millisecond)
}
