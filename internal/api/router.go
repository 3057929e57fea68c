// Package api wires the Gin router for the dashboard service.
package api

import (
	"net/http/pprof"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jonesrussell/north-cloud/dashboard/internal/handlers"
	"github.com/jonesrussell/north-cloud/dashboard/internal/health"
	"github.com/jonesrussell/north-cloud/dashboard/internal/logger"
	"github.com/jonesrussell/north-cloud/dashboard/internal/metrics"
)

// Deps collects everything the router serves.
type Deps struct {
	Jobs     *handlers.JobsHandler
	Tools    *handlers.ToolsHandler
	Register *handlers.RegisterHandler
	Health   *health.Checker
	Metrics  *metrics.Metrics
	Registry *prometheus.Registry
	Log      logger.Logger

	Debug       bool
	CORSOrigins []string
}

// NewRouter builds the Gin engine with the standard middleware chain.
func NewRouter(d Deps) *gin.Engine {
	if !d.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(RequestIDMiddleware())
	router.Use(LoggerMiddleware(d.Log))
	router.Use(gin.Recovery())
	router.Use(CORSMiddleware(d.CORSOrigins))
	router.Use(d.Metrics.GinMiddleware())

	// Health and metrics
	router.GET("/health", d.Health.Handler())
	router.GET("/health/live", health.LivenessHandler())
	router.GET("/health/ready", d.Health.Handler())
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{})))

	// API v1
	v1 := router.Group("/api/v1")

	jobsGroup := v1.Group("/jobs")
	jobsGroup.GET("", d.Jobs.List)
	jobsGroup.GET("/:id", d.Jobs.Detail)
	jobsGroup.POST("/:id/cancel", d.Jobs.Cancel)
	jobsGroup.POST("/:id/retry", d.Jobs.Retry)

	v1.GET("/tools", d.Tools.List)

	v1.GET("/register/check", d.Register.CheckAvailability)
	v1.POST("/register", d.Register.Register)
	v1.POST("/logout", d.Register.Logout)

	// Profiling endpoints are only exposed in debug builds.
	if d.Debug {
		registerPprof(router)
	}

	return router
}

func registerPprof(router *gin.Engine) {
	debug := router.Group("/debug/pprof")
	debug.GET("/", gin.WrapF(pprof.Index))
	debug.GET("/cmdline", gin.WrapF(pprof.Cmdline))
	debug.GET("/profile", gin.WrapF(pprof.Profile))
	debug.GET("/symbol", gin.WrapF(pprof.Symbol))
	debug.GET("/trace", gin.WrapF(pprof.Trace))
	debug.GET("/:name", func(c *gin.Context) {
		pprof.Handler(c.Param("name")).ServeHTTP(c.Writer, c.Request)
	})
}
