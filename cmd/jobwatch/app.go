package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jonesrussell/north-cloud/dashboard/internal/backend"
	"github.com/jonesrussell/north-cloud/dashboard/internal/httpclient"
	"github.com/jonesrussell/north-cloud/dashboard/internal/jobs"
	"github.com/jonesrussell/north-cloud/dashboard/internal/logger"
	"github.com/jonesrussell/north-cloud/dashboard/internal/metrics"
	"github.com/jonesrussell/north-cloud/dashboard/internal/models"
	"github.com/jonesrussell/north-cloud/dashboard/internal/session"
)

const actionTimeout = 15 * time.Second

type app struct {
	client   *backend.Client
	tokens   *session.TokenFile
	log      logger.Logger
	metrics  *metrics.Metrics
	interval time.Duration
	filter   string
	pageSize int
}

func newApp() (*app, []string, error) {
	var (
		baseURL  string
		interval time.Duration
		filter   string
		pageSize int
		verbose  bool
	)

	flag.StringVar(&baseURL, "backend", envOr("BACKEND_BASE_URL", "http://localhost:8080"), "Backend base URL")
	flag.DurationVar(&interval, "interval", jobs.DefaultPollInterval, "Auto-refresh interval")
	flag.StringVar(&filter, "status", "ALL", "Status filter (ALL, PENDING, RUNNING, COMPLETED, FAILED, CANCELLED)")
	flag.IntVar(&pageSize, "page-size", 20, "Jobs per page")
	flag.BoolVar(&verbose, "v", false, "Verbose logging")
	flag.Parse()

	log := logger.NewNop()
	if verbose {
		log = logger.Must(logger.Config{Level: "debug", Development: true, OutputPaths: []string{"stderr"}})
	}

	tokenPath, err := session.DefaultTokenPath()
	if err != nil {
		return nil, nil, err
	}
	tokens := session.NewTokenFile(tokenPath)

	client := backend.New(baseURL, &httpclient.Config{Timeout: actionTimeout})
	if s := loadSession(tokens); s != nil {
		client.SetToken(s.AccessToken)
	}

	return &app{
		client:   client,
		tokens:   tokens,
		log:      log,
		metrics:  metrics.New(prometheus.NewRegistry()),
		interval: interval,
		filter:   strings.ToUpper(filter),
		pageSize: pageSize,
	}, flag.Args(), nil
}

// watch polls the job list and redraws the table until interrupted.
func (a *app) watch() error {
	fetcher := jobs.NewFetcher(a.client, a.pageSize, a.metrics, a.log)
	defer fetcher.Close()

	if a.filter != "" && a.filter != "ALL" {
		st, err := models.ParseStatus(a.filter)
		if err != nil {
			return err
		}
		fetcher.SetFilter(&st)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	poller := jobs.NewPoller(fetcher, a.interval, a.log)
	if err := poller.Start(ctx); err != nil {
		return err
	}
	defer poller.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	render := time.NewTicker(a.interval)
	defer render.Stop()

	renderSnapshot(fetcher.Snapshot())
	for {
		select {
		case <-sigCh:
			fmt.Println("\nStopped.")
			return nil
		case <-render.C:
			renderSnapshot(fetcher.Snapshot())
		}
	}
}

func (a *app) cancel(jobID string) error {
	return a.dispatch(jobID, jobs.ActionCancel)
}

func (a *app) retry(jobID string) error {
	return a.dispatch(jobID, jobs.ActionRetry)
}

func (a *app) dispatch(jobID string, action jobs.Action) error {
	ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
	defer cancel()

	job, err := a.client.GetJob(ctx, jobID)
	if err != nil {
		return describe(err)
	}

	dispatcher := jobs.NewDispatcher(a.client, a.metrics, a.log)

	switch action {
	case jobs.ActionCancel:
		err = dispatcher.Cancel(ctx, *job)
	case jobs.ActionRetry:
		err = dispatcher.Retry(ctx, *job)
	}
	if err != nil {
		return describe(err)
	}

	fmt.Printf("%s requested for job %s\n", action, jobID)
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// describe keeps backend messages verbatim but prefixes the classification
// so the terminal user sees the same signal the web UI would show.
func describe(err error) error {
	var be *backend.Error
	if errors.As(err, &be) {
		return fmt.Errorf("%s: %s", be.Kind, be.Message)
	}
	return err
}
