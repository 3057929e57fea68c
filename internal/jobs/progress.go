// Package jobs implements the job dashboard view model: the polled list
// fetcher, the progress aggregator and the cancel/retry dispatcher.
package jobs

import (
	"math"

	"github.com/jonesrussell/north-cloud/dashboard/internal/models"
)

const maxPercent = 100

// Progress returns the display progress of a job as an integer percentage
// in [0,100].
//
// Failed subtasks count as resolved: progress reflects how much of the job
// no longer needs work, not how much of it succeeded, so a job keeps moving
// forward on screen even amid partial failure. Progress depends only on the
// task counters, never on wall-clock time, and is non-decreasing for a
// fixed TotalTasks.
func Progress(job models.Job) int {
	if job.TotalTasks <= 0 {
		return 0
	}

	resolved := job.CompletedTasks + job.FailedTasks
	pct := int(math.Round(maxPercent * float64(resolved) / float64(job.TotalTasks)))
	if pct > maxPercent {
		return maxPercent
	}
	if pct < 0 {
		return 0
	}
	return pct
}

// IsRunning reports whether the job is still in flight from the user's
// point of view. Only running jobs expose the cancel affordance.
func IsRunning(job models.Job) bool {
	return job.OverallStatus == models.StatusPending || job.OverallStatus == models.StatusRunning
}

// CanRetry reports whether the job is eligible for a retry: it must have
// failed, and at least one subtask must actually have failed.
func CanRetry(job models.Job) bool {
	return job.OverallStatus == models.StatusFailed && job.FailedTasks > 0
}
