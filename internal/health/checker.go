// Package health exposes liveness and readiness checks for the dashboard.
package health

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// Status is the aggregate health of the service.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
)

const checkTimeout = 5 * time.Second

// CheckFunc probes one dependency and returns an error if it is unhealthy.
type CheckFunc func(ctx context.Context) error

// Checker runs named dependency checks.
type Checker struct {
	mu     sync.RWMutex
	checks map[string]CheckFunc
}

// NewChecker creates an empty checker.
func NewChecker() *Checker {
	return &Checker{checks: make(map[string]CheckFunc)}
}

// Register adds a named check.
func (c *Checker) Register(name string, fn CheckFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = fn
}

// Check runs every registered check and reports the aggregate status plus
// per-check results.
func (c *Checker) Check(ctx context.Context) (Status, map[string]string) {
	c.mu.RLock()
	checks := make(map[string]CheckFunc, len(c.checks))
	for name, fn := range c.checks {
		checks[name] = fn
	}
	c.mu.RUnlock()

	results := make(map[string]string, len(checks))
	status := StatusHealthy

	for name, fn := range checks {
		if err := fn(ctx); err != nil {
			results[name] = "error: " + err.Error()
			status = StatusUnhealthy
		} else {
			results[name] = "ok"
		}
	}

	return status, results
}

// Handler serves the full health report. Unhealthy maps to 503 so load
// balancers can act on it.
func (c *Checker) Handler() gin.HandlerFunc {
	return func(gc *gin.Context) {
		ctx, cancel := context.WithTimeout(gc.Request.Context(), checkTimeout)
		defer cancel()

		status, results := c.Check(ctx)

		code := http.StatusOK
		if status == StatusUnhealthy {
			code = http.StatusServiceUnavailable
		}

		gc.JSON(code, gin.H{
			"status":    status,
			"checks":    results,
			"timestamp": time.Now().Format(time.RFC3339),
		})
	}
}

// LivenessHandler always reports alive; it only proves the process serves
// requests.
func LivenessHandler() gin.HandlerFunc {
	return func(gc *gin.Context) {
		gc.JSON(http.StatusOK, gin.H{"status": "alive"})
	}
}
