// Package http assembles the gin router and the HTTP server lifecycle.
package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tendergate/tendergate/internal/infrastructure/monitoring/logging"
	"github.com/tendergate/tendergate/internal/infrastructure/monitoring/prometheus"
	"github.com/tendergate/tendergate/internal/interfaces/http/handlers"
)

// RouterDeps carries everything the router mounts.
type RouterDeps struct {
	Conditions *handlers.ConditionHandler
	Analysis   *handlers.AnalysisHandler
	Batch      *handlers.BatchHandler
	Health     *handlers.HealthHandler
	Metrics    *prometheus.Metrics
	Logger     logging.Logger
}

// NewRouter builds the gin engine with all routes and middleware mounted.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	if deps.Logger != nil {
		r.Use(requestLogger(deps.Logger))
	}
	if deps.Metrics != nil {
		r.Use(requestMetrics(deps.Metrics))
	}

	if deps.Health != nil {
		r.GET("/healthz", deps.Health.Live)
		r.GET("/readyz", deps.Health.Ready)
	}
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")
	{
		if deps.Conditions != nil {
			v1.POST("/conditions", deps.Conditions.Create)
			v1.GET("/conditions/:id", deps.Conditions.Get)
			v1.POST("/conditions/:id/classify", deps.Conditions.Classify)
			v1.GET("/tenders/:id/conditions", deps.Conditions.ListByTender)
		}
		if deps.Analysis != nil {
			v1.GET("/conditions/:id/gap-closures", deps.Analysis.GapClosures)
			v1.GET("/tenders/:id/strategy", deps.Analysis.Strategy)
			v1.GET("/tenders/:id/competitors", deps.Analysis.Competitors)
			v1.GET("/tenders/:id/competition", deps.Analysis.Competition)
		}
		if deps.Batch != nil {
			v1.POST("/tenders/:id/evaluate", deps.Batch.Evaluate)
		}
	}

	return r
}
