// Package models defines the data transfer objects shared between the
// backend client, the view-model packages, and the HTTP handlers.
package models

import (
	"fmt"
	"time"
)

// Status is the lifecycle state of a job or subtask. The set is closed;
// transitions are owned entirely by the backend.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusRunning   Status = "RUNNING"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
	StatusCancelled Status = "CANCELLED"
)

// Statuses lists every valid status in display order.
var Statuses = []Status{
	StatusPending,
	StatusRunning,
	StatusCompleted,
	StatusFailed,
	StatusCancelled,
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusRunning, StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether the status admits no further backend transitions.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// ParseStatus converts a string into a Status, rejecting unknown values.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", fmt.Errorf("unknown status %q", s)
	}
	return st, nil
}

// Job is one batch analysis request, read-only to this service. Snapshots
// are refreshed by polling; the backend owns all mutation.
type Job struct {
	JobID          string    `json:"job_id"`
	Topic          string    `json:"topic,omitempty"`
	BaseURL        string    `json:"base_url,omitempty"`
	OverallStatus  Status    `json:"overall_status"`
	CreatedAt      time.Time `json:"created_at"`
	TotalTasks     int       `json:"total_tasks"`
	CompletedTasks int       `json:"completed_tasks"`
	FailedTasks    int       `json:"failed_tasks"`
	ErrorMessage   string    `json:"error_message,omitempty"`
	SubTasks       []SubTask `json:"sub_tasks,omitempty"`
}

// SubTask is one unit of work within a job, handled by a single provider.
// Order within Job.SubTasks is display order.
type SubTask struct {
	SubTaskID  string `json:"sub_task_id"`
	ProviderID string `json:"provider_id"`
	TaskType   string `json:"task_type"`
	Status     Status `json:"status"`
	RetryCount int    `json:"retry_count"`
}

// JobPage is one page of job summaries.
type JobPage struct {
	Jobs       []Job `json:"jobs"`
	Total      int   `json:"total"`
	TotalPages int   `json:"total_pages"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
}
