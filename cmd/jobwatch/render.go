package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/jonesrussell/north-cloud/dashboard/internal/jobs"
	"github.com/jonesrussell/north-cloud/dashboard/internal/status"
)

const progressBarWidth = 20

// ANSI colors keyed by the badge color names.
var ansiColors = map[string]string{
	"gray":   "\033[90m",
	"blue":   "\033[34m",
	"green":  "\033[32m",
	"red":    "\033[31m",
	"yellow": "\033[33m",
}

const ansiReset = "\033[0m"

func renderSnapshot(snap jobs.Snapshot) {
	// Clear and home.
	fmt.Print("\033[2J\033[H")

	switch snap.State {
	case jobs.StateLoading:
		fmt.Println("Loading jobs...")
		return
	case jobs.StateError:
		fmt.Printf("! fetch failed: %v (showing last known list)\n\n", snap.Err)
	case jobs.StateReady:
		// fall through to the table
	}

	if len(snap.Jobs) == 0 {
		fmt.Println("No jobs.")
		return
	}

	fmt.Printf("%-36s  %-20s  %-11s  %-22s  %s\n", "JOB", "TOPIC", "STATUS", "PROGRESS", "TASKS")
	for _, job := range snap.Jobs {
		badge := status.For(job.OverallStatus)
		color := ansiColors[badge.Color]
		pct := jobs.Progress(job)

		fmt.Printf("%-36s  %-20s  %s%-11s%s  %s %3d%%  %d/%d (%d failed)\n",
			job.JobID,
			truncate(job.Topic, 20),
			color, badge.Label, ansiReset,
			progressBar(pct),
			pct,
			job.CompletedTasks+job.FailedTasks, job.TotalTasks, job.FailedTasks,
		)
	}

	fmt.Printf("\npage %d/%d  -  %d jobs total  -  refreshed %s\n",
		snap.Page+1, max(snap.TotalPages, 1), snap.Total, snap.FetchedAt.Format(time.TimeOnly))
}

func progressBar(pct int) string {
	filled := pct * progressBarWidth / 100
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", progressBarWidth-filled) + "]"
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
