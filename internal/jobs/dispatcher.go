package jobs

import (
	"context"
	"errors"
	"sync"

	"github.com/jonesrussell/north-cloud/dashboard/internal/logger"
	"github.com/jonesrussell/north-cloud/dashboard/internal/metrics"
	"github.com/jonesrussell/north-cloud/dashboard/internal/models"
)

// Action is a user-triggered job mutation.
type Action string

const (
	ActionCancel Action = "cancel"
	ActionRetry  Action = "retry"
)

// Dispatcher errors raised before any remote call is made.
var (
	// ErrActionInFlight means the same job already has an action pending;
	// the affordance should have been disabled.
	ErrActionInFlight = errors.New("an action for this job is already in flight")
	// ErrNotCancellable means the job is not pending or running.
	ErrNotCancellable = errors.New("job is not running and cannot be cancelled")
	// ErrNotRetryable means the job is not failed (or has no failed tasks).
	ErrNotRetryable = errors.New("job is not failed and cannot be retried")
)

// Actioner is the slice of the backend client the dispatcher needs.
type Actioner interface {
	CancelJob(ctx context.Context, jobID string) error
	RetryJob(ctx context.Context, jobID string) error
}

// Dispatcher issues cancel/retry commands. While a call is in flight the
// job carries a transient flag so duplicate submissions are rejected
// locally; the flag is cleared when the call completes regardless of
// outcome. No optimistic status mutation happens here; the authoritative
// state always comes from the next fetch.
type Dispatcher struct {
	actions Actioner
	log     logger.Logger
	metrics *metrics.Metrics

	// onSuccess, when set, is invoked after a successful dispatch so the
	// owner can trigger a list refresh.
	onSuccess func()

	mu       sync.Mutex
	inFlight map[string]Action
}

// NewDispatcher creates a dispatcher.
func NewDispatcher(actions Actioner, m *metrics.Metrics, log logger.Logger) *Dispatcher {
	return &Dispatcher{
		actions:  actions,
		log:      log,
		metrics:  m,
		inFlight: make(map[string]Action),
	}
}

// OnSuccess registers a hook run after every successful dispatch.
func (d *Dispatcher) OnSuccess(fn func()) {
	d.onSuccess = fn
}

// InFlight returns the pending action for a job, if any. Renderers use it
// to disable the initiating affordance.
func (d *Dispatcher) InFlight(jobID string) (Action, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	a, ok := d.inFlight[jobID]
	return a, ok
}

// Cancel requests cancellation of a running job. The job snapshot is used
// only for the local eligibility guard; the backend revalidates.
func (d *Dispatcher) Cancel(ctx context.Context, job models.Job) error {
	if !IsRunning(job) {
		return ErrNotCancellable
	}
	return d.dispatch(ctx, job.JobID, ActionCancel, d.actions.CancelJob)
}

// Retry requests a retry of a failed job.
func (d *Dispatcher) Retry(ctx context.Context, job models.Job) error {
	if !CanRetry(job) {
		return ErrNotRetryable
	}
	return d.dispatch(ctx, job.JobID, ActionRetry, d.actions.RetryJob)
}

func (d *Dispatcher) dispatch(ctx context.Context, jobID string, action Action, call func(context.Context, string) error) error {
	d.mu.Lock()
	if _, busy := d.inFlight[jobID]; busy {
		d.mu.Unlock()
		return ErrActionInFlight
	}
	d.inFlight[jobID] = action
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		delete(d.inFlight, jobID)
		d.mu.Unlock()
	}()

	// Single remote call, no automatic retry. Duplicate-effect protection
	// beyond the in-flight flag is the backend's responsibility.
	if err := call(ctx, jobID); err != nil {
		d.metrics.ActionsTotal.WithLabelValues(string(action), "error").Inc()
		d.log.Warn("Job action failed",
			logger.String("job_id", jobID),
			logger.String("action", string(action)),
			logger.Error(err),
		)
		return err
	}

	d.metrics.ActionsTotal.WithLabelValues(string(action), "success").Inc()
	d.log.Info("Job action dispatched",
		logger.String("job_id", jobID),
		logger.String("action", string(action)),
	)

	if d.onSuccess != nil {
		d.onSuccess()
	}
	return nil
}
