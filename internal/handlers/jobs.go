// Package handlers contains the Gin handlers serving the dashboard page
// view models.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/north-cloud/dashboard/internal/backend"
	"github.com/jonesrussell/north-cloud/dashboard/internal/jobs"
	"github.com/jonesrussell/north-cloud/dashboard/internal/logger"
	"github.com/jonesrussell/north-cloud/dashboard/internal/models"
	"github.com/jonesrussell/north-cloud/dashboard/internal/status"
)

// JobReader is the read slice of the backend client used for job detail.
type JobReader interface {
	GetJob(ctx context.Context, jobID string) (*models.Job, error)
}

// JobsHandler serves the job-monitoring dashboard view model.
type JobsHandler struct {
	fetcher    *jobs.Fetcher
	dispatcher *jobs.Dispatcher
	reader     JobReader
	log        logger.Logger
}

// NewJobsHandler creates a jobs handler.
func NewJobsHandler(fetcher *jobs.Fetcher, dispatcher *jobs.Dispatcher, reader JobReader, log logger.Logger) *JobsHandler {
	return &JobsHandler{
		fetcher:    fetcher,
		dispatcher: dispatcher,
		reader:     reader,
		log:        log,
	}
}

// JobView is one job decorated with the derived display fields.
type JobView struct {
	models.Job
	Progress     int          `json:"progress"`
	Badge        status.Badge `json:"badge"`
	IsRunning    bool         `json:"is_running"`
	CanRetry     bool         `json:"can_retry"`
	IsCancelling bool         `json:"is_cancelling"`
	IsRetrying   bool         `json:"is_retrying"`
}

// SubTaskView is one subtask with its badge.
type SubTaskView struct {
	models.SubTask
	Badge status.Badge `json:"badge"`
}

// listResponse is the dashboard list view model. State distinguishes
// loading, ready (possibly empty) and error; Error persists until the
// next successful fetch.
type listResponse struct {
	State      jobs.ViewState `json:"state"`
	Jobs       []JobView      `json:"jobs"`
	Total      int            `json:"total"`
	TotalPages int            `json:"total_pages"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
	Filter     string         `json:"filter"`
	Error      *errorView     `json:"error,omitempty"`
}

type errorView struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// List handles GET /api/v1/jobs. Changing the status filter resets
// pagination to the first page; the response always reflects the snapshot
// after a fresh fetch so actions reconcile immediately.
func (h *JobsHandler) List(c *gin.Context) {
	if rawStatus, ok := c.GetQuery("status"); ok {
		if rawStatus == "" || rawStatus == "ALL" {
			h.fetcher.SetFilter(nil)
		} else {
			st, err := models.ParseStatus(rawStatus)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			h.fetcher.SetFilter(&st)
		}
	}

	if rawPage, ok := c.GetQuery("page"); ok {
		page, err := strconv.Atoi(rawPage)
		if err != nil || page < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "page must be a non-negative integer"})
			return
		}
		h.fetcher.SetPage(page)
	}

	// Fetch errors land in the snapshot; they are part of the view model,
	// not a failed request.
	_ = h.fetcher.Refresh(c.Request.Context())

	c.JSON(http.StatusOK, h.listView())
}

func (h *JobsHandler) listView() listResponse {
	snap := h.fetcher.Snapshot()

	views := make([]JobView, 0, len(snap.Jobs))
	for _, job := range snap.Jobs {
		views = append(views, h.jobView(job))
	}

	resp := listResponse{
		State:      snap.State,
		Jobs:       views,
		Total:      snap.Total,
		TotalPages: snap.TotalPages,
		Page:       snap.Page,
		PageSize:   snap.PageSize,
		Filter:     filterLabel(h.fetcher.Filter()),
	}
	if snap.Err != nil {
		resp.Error = newErrorView(snap.Err)
	}
	return resp
}

func (h *JobsHandler) jobView(job models.Job) JobView {
	action, pending := h.dispatcher.InFlight(job.JobID)
	return JobView{
		Job:          job,
		Progress:     jobs.Progress(job),
		Badge:        status.For(job.OverallStatus),
		IsRunning:    jobs.IsRunning(job),
		CanRetry:     jobs.CanRetry(job),
		IsCancelling: pending && action == jobs.ActionCancel,
		IsRetrying:   pending && action == jobs.ActionRetry,
	}
}

func filterLabel(f *models.Status) string {
	if f == nil {
		return "ALL"
	}
	return string(*f)
}

// Detail handles GET /api/v1/jobs/:id.
func (h *JobsHandler) Detail(c *gin.Context) {
	job, err := h.reader.GetJob(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeBackendError(c, h.log, err)
		return
	}

	subtasks := make([]SubTaskView, 0, len(job.SubTasks))
	for _, st := range job.SubTasks {
		subtasks = append(subtasks, SubTaskView{SubTask: st, Badge: status.For(st.Status)})
	}

	c.JSON(http.StatusOK, gin.H{
		"job":       h.jobView(*job),
		"sub_tasks": subtasks,
	})
}

// Cancel handles POST /api/v1/jobs/:id/cancel.
func (h *JobsHandler) Cancel(c *gin.Context) {
	h.action(c, h.dispatcher.Cancel)
}

// Retry handles POST /api/v1/jobs/:id/retry.
func (h *JobsHandler) Retry(c *gin.Context) {
	h.action(c, h.dispatcher.Retry)
}

func (h *JobsHandler) action(c *gin.Context, dispatch func(context.Context, models.Job) error) {
	id := c.Param("id")

	// The local eligibility guard needs a current snapshot of the job.
	job, err := h.reader.GetJob(c.Request.Context(), id)
	if err != nil {
		writeBackendError(c, h.log, err)
		return
	}

	if err := dispatch(c.Request.Context(), *job); err != nil {
		switch {
		case errors.Is(err, jobs.ErrActionInFlight),
			errors.Is(err, jobs.ErrNotCancellable),
			errors.Is(err, jobs.ErrNotRetryable):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			writeBackendError(c, h.log, err)
		}
		return
	}

	c.JSON(http.StatusAccepted, h.listView())
}

func newErrorView(err error) *errorView {
	ev := &errorView{
		Kind:    string(backend.KindOf(err)),
		Message: err.Error(),
	}
	var be *backend.Error
	if errors.As(err, &be) {
		// The backend's message, verbatim, without client-side wrapping.
		ev.Message = be.Message
		ev.Field = be.Field
	}
	return ev
}

// writeBackendError maps a classified backend error onto an HTTP response.
// Unknown errors are logged here so no failure path is silent.
func writeBackendError(c *gin.Context, log logger.Logger, err error) {
	ev := newErrorView(err)

	var code int
	switch backend.KindOf(err) {
	case backend.KindNotFound:
		code = http.StatusNotFound
	case backend.KindConflict:
		code = http.StatusConflict
	case backend.KindValidation:
		code = http.StatusBadRequest
	case backend.KindNetwork:
		code = http.StatusBadGateway
	default:
		code = http.StatusInternalServerError
		log.Error("Unclassified backend error", logger.Error(err))
	}

	c.JSON(code, gin.H{"error": ev.Message, "kind": ev.Kind, "field": ev.Field})
}
