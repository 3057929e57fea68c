package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/jonesrussell/north-cloud/dashboard/internal/backend"
	"github.com/jonesrussell/north-cloud/dashboard/internal/logger"
	"github.com/jonesrussell/north-cloud/dashboard/internal/metrics"
	"github.com/jonesrussell/north-cloud/dashboard/internal/models"
)

// Lister is the slice of the backend client the fetcher needs.
type Lister interface {
	ListJobs(ctx context.Context, filter *models.Status, page, size int) (*models.JobPage, error)
}

// ViewState distinguishes the three observable list states. Loading,
// empty result and error are rendered differently and must never collapse
// into one another.
type ViewState string

const (
	// StateLoading means no fetch has completed yet.
	StateLoading ViewState = "loading"
	// StateReady means the snapshot reflects a successful fetch (possibly
	// with zero jobs).
	StateReady ViewState = "ready"
	// StateError means the last fetch failed; Err holds the failure and is
	// rendered persistently until the next successful fetch.
	StateError ViewState = "error"
)

// Snapshot is the immutable result of the most recently applied fetch.
type Snapshot struct {
	State      ViewState
	Jobs       []models.Job
	Total      int
	TotalPages int
	Page       int
	PageSize   int
	// Err is set while State is StateError. Jobs then still holds the last
	// successful result so the list does not blank out under a banner.
	Err       error
	FetchedAt time.Time
}

// Fetcher retrieves pages of jobs and owns the filter/pagination state
// machine. Completions are applied in request order: each fetch carries a
// monotonically increasing sequence number, and a completion loses if a
// fetch issued after it has already been applied.
type Fetcher struct {
	lister  Lister
	log     logger.Logger
	metrics *metrics.Metrics

	mu       sync.Mutex
	filter   *models.Status // nil means ALL
	page     int
	pageSize int

	nextSeq    uint64
	appliedSeq uint64
	closed     bool
	snapshot   Snapshot
}

// NewFetcher creates a fetcher with an empty loading snapshot.
func NewFetcher(lister Lister, pageSize int, m *metrics.Metrics, log logger.Logger) *Fetcher {
	if pageSize <= 0 {
		pageSize = 20
	}
	return &Fetcher{
		lister:   lister,
		log:      log,
		metrics:  m,
		pageSize: pageSize,
		snapshot: Snapshot{State: StateLoading, PageSize: pageSize},
	}
}

// SetFilter replaces the active status filter and resets pagination to the
// first page. A nil filter selects all statuses.
func (f *Fetcher) SetFilter(filter *models.Status) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.filter = filter
	f.page = 0
}

// Filter returns the active filter, nil meaning ALL.
func (f *Fetcher) Filter() *models.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.filter
}

// SetPage moves to the given zero-based page. Negative pages clamp to 0.
func (f *Fetcher) SetPage(page int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if page < 0 {
		page = 0
	}
	f.page = page
}

// Page returns the current zero-based page.
func (f *Fetcher) Page() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.page
}

// Snapshot returns the most recently applied state.
func (f *Fetcher) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshot
}

// Close stops the fetcher from applying any further completions. In-flight
// requests are allowed to finish; their results are discarded.
func (f *Fetcher) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

// Refresh performs one fetch with the current filter and page and applies
// the result unless a newer fetch has already been applied. The returned
// error is the fetch error regardless of whether the result was applied;
// it is never retried automatically.
func (f *Fetcher) Refresh(ctx context.Context) error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return nil
	}
	f.nextSeq++
	seq := f.nextSeq
	filter := f.filter
	page := f.page
	size := f.pageSize
	f.mu.Unlock()

	start := time.Now()
	result, err := f.lister.ListJobs(ctx, filter, page, size)
	f.metrics.FetchDurationSecs.Observe(time.Since(start).Seconds())

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil
	}
	if seq <= f.appliedSeq {
		// A fetch issued after this one already resolved. Applying this
		// result would roll the view back in time.
		f.metrics.StaleDroppedTotal.Inc()
		f.log.Debug("Dropping stale fetch completion",
			logger.Uint64("seq", seq),
			logger.Uint64("applied_seq", f.appliedSeq),
		)
		return err
	}
	f.appliedSeq = seq

	if err != nil {
		f.metrics.PollCyclesTotal.WithLabelValues("error").Inc()
		f.metrics.UpstreamErrorsTotal.WithLabelValues(string(backend.KindOf(err))).Inc()
		f.snapshot.State = StateError
		f.snapshot.Err = err
		f.snapshot.FetchedAt = time.Now()
		f.log.Warn("Job list fetch failed", logger.Error(err))
		return err
	}

	f.metrics.PollCyclesTotal.WithLabelValues("success").Inc()
	f.metrics.JobsDisplayed.Set(float64(len(result.Jobs)))
	f.snapshot = Snapshot{
		State:      StateReady,
		Jobs:       result.Jobs,
		Total:      result.Total,
		TotalPages: result.TotalPages,
		Page:       page,
		PageSize:   size,
		FetchedAt:  time.Now(),
	}
	return nil
}
