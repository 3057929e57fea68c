package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/dashboard/internal/backend"
	"github.com/jonesrussell/north-cloud/dashboard/internal/handlers"
	"github.com/jonesrussell/north-cloud/dashboard/internal/jobs"
	"github.com/jonesrussell/north-cloud/dashboard/internal/logger"
	"github.com/jonesrussell/north-cloud/dashboard/internal/metrics"
	"github.com/jonesrussell/north-cloud/dashboard/internal/models"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeBackend implements the Lister, Actioner and JobReader slices that
// the jobs handler touches.
type fakeBackend struct {
	page      *models.JobPage
	job       *models.Job
	listErr   error
	jobErr    error
	actionErr error

	lastFilter *models.Status
	lastPage   int
	cancels    []string
	retries    []string
}

func (f *fakeBackend) ListJobs(_ context.Context, filter *models.Status, page, size int) (*models.JobPage, error) {
	f.lastFilter = filter
	f.lastPage = page
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := *f.page
	out.Page = page
	out.PageSize = size
	return &out, nil
}

func (f *fakeBackend) GetJob(_ context.Context, jobID string) (*models.Job, error) {
	if f.jobErr != nil {
		return nil, f.jobErr
	}
	j := *f.job
	j.JobID = jobID
	return &j, nil
}

func (f *fakeBackend) CancelJob(_ context.Context, jobID string) error {
	f.cancels = append(f.cancels, jobID)
	return f.actionErr
}

func (f *fakeBackend) RetryJob(_ context.Context, jobID string) error {
	f.retries = append(f.retries, jobID)
	return f.actionErr
}

func newJobsRouter(fb *fakeBackend) *gin.Engine {
	m := metrics.New(prometheus.NewRegistry())
	log := logger.NewNop()

	fetcher := jobs.NewFetcher(fb, 20, m, log)
	dispatcher := jobs.NewDispatcher(fb, m, log)
	h := handlers.NewJobsHandler(fetcher, dispatcher, fb, log)

	r := gin.New()
	r.GET("/api/v1/jobs", h.List)
	r.GET("/api/v1/jobs/:id", h.Detail)
	r.POST("/api/v1/jobs/:id/cancel", h.Cancel)
	r.POST("/api/v1/jobs/:id/retry", h.Retry)
	return r
}

func do(t *testing.T, r *gin.Engine, method, target string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, nil)
	r.ServeHTTP(w, req)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestListDecoratesJobs(t *testing.T) {
	fb := &fakeBackend{
		page: &models.JobPage{
			Jobs: []models.Job{
				{JobID: "j1", OverallStatus: models.StatusRunning, TotalTasks: 10, CompletedTasks: 4, FailedTasks: 1},
				{JobID: "j2", OverallStatus: models.StatusFailed, TotalTasks: 4, FailedTasks: 2},
			},
			Total:      2,
			TotalPages: 1,
		},
	}
	r := newJobsRouter(fb)

	w, body := do(t, r, http.MethodGet, "/api/v1/jobs")
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "ready", body["state"])
	assert.Equal(t, "ALL", body["filter"])

	views := body["jobs"].([]any)
	require.Len(t, views, 2)

	running := views[0].(map[string]any)
	assert.EqualValues(t, 50, running["progress"])
	assert.Equal(t, true, running["is_running"])
	assert.Equal(t, false, running["can_retry"])
	assert.Equal(t, "Running", running["badge"].(map[string]any)["label"])

	failed := views[1].(map[string]any)
	assert.Equal(t, false, failed["is_running"])
	assert.Equal(t, true, failed["can_retry"])
}

func TestListStatusFilterResetsPage(t *testing.T) {
	fb := &fakeBackend{page: &models.JobPage{Jobs: nil, Total: 0, TotalPages: 0}}
	r := newJobsRouter(fb)

	w, body := do(t, r, http.MethodGet, "/api/v1/jobs?page=3")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3, fb.lastPage)
	assert.EqualValues(t, 3, body["page"])

	// Changing the filter discards the page position.
	w, body = do(t, r, http.MethodGet, "/api/v1/jobs?status=FAILED")
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, fb.lastFilter)
	assert.Equal(t, models.StatusFailed, *fb.lastFilter)
	assert.Equal(t, 0, fb.lastPage)
	assert.EqualValues(t, 0, body["page"])
	assert.Equal(t, "FAILED", body["filter"])

	// ALL clears the filter.
	_, body = do(t, r, http.MethodGet, "/api/v1/jobs?status=ALL")
	assert.Nil(t, fb.lastFilter)
	assert.Equal(t, "ALL", body["filter"])
}

func TestListRejectsUnknownStatus(t *testing.T) {
	fb := &fakeBackend{page: &models.JobPage{}}
	r := newJobsRouter(fb)

	w, _ := do(t, r, http.MethodGet, "/api/v1/jobs?status=BOGUS")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = do(t, r, http.MethodGet, "/api/v1/jobs?page=-1")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListSurfacesFetchErrorInViewModel(t *testing.T) {
	fb := &fakeBackend{
		page:    &models.JobPage{},
		listErr: &backend.Error{Kind: backend.KindNetwork, Message: "connection refused"},
	}
	r := newJobsRouter(fb)

	// Fetch failures are part of the view model, not an HTTP failure.
	w, body := do(t, r, http.MethodGet, "/api/v1/jobs")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "error", body["state"])

	errView := body["error"].(map[string]any)
	assert.Equal(t, "network", errView["kind"])
	assert.Equal(t, "connection refused", errView["message"])
}

func TestDetailMapsNotFound(t *testing.T) {
	fb := &fakeBackend{
		page:   &models.JobPage{},
		jobErr: &backend.Error{Kind: backend.KindNotFound, StatusCode: 404, Message: "job not found"},
	}
	r := newJobsRouter(fb)

	w, body := do(t, r, http.MethodGet, "/api/v1/jobs/missing")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "job not found", body["error"])
}

func TestCancelRunningJob(t *testing.T) {
	fb := &fakeBackend{
		page: &models.JobPage{},
		job:  &models.Job{OverallStatus: models.StatusRunning, TotalTasks: 2},
	}
	r := newJobsRouter(fb)

	w, _ := do(t, r, http.MethodPost, "/api/v1/jobs/j1/cancel")
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, []string{"j1"}, fb.cancels)
}

func TestCancelIneligibleJobIsConflict(t *testing.T) {
	fb := &fakeBackend{
		page: &models.JobPage{},
		job:  &models.Job{OverallStatus: models.StatusCompleted},
	}
	r := newJobsRouter(fb)

	w, _ := do(t, r, http.MethodPost, "/api/v1/jobs/j1/cancel")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Empty(t, fb.cancels, "guard fires before any remote call")
}

func TestRetryFailedJob(t *testing.T) {
	fb := &fakeBackend{
		page: &models.JobPage{},
		job:  &models.Job{OverallStatus: models.StatusFailed, TotalTasks: 4, FailedTasks: 1},
	}
	r := newJobsRouter(fb)

	w, _ := do(t, r, http.MethodPost, "/api/v1/jobs/j1/retry")
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, []string{"j1"}, fb.retries)
}

func TestActionBackendConflictPassedThrough(t *testing.T) {
	fb := &fakeBackend{
		page:      &models.JobPage{},
		job:       &models.Job{OverallStatus: models.StatusRunning, TotalTasks: 2},
		actionErr: &backend.Error{Kind: backend.KindConflict, StatusCode: 409, Message: "job already completed"},
	}
	r := newJobsRouter(fb)

	w, body := do(t, r, http.MethodPost, "/api/v1/jobs/j1/cancel")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "job already completed", body["error"])
}
