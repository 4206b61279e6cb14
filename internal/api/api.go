package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/guarzo/resalepricer/internal/model"
)

const (
	DefaultTimeout      = 60 * time.Second
	ServiceName         = "resale-price-analyzer"
	ServiceVersion      = "1.0.0"
	RequestIDContextKey = "request_id"
	RequestIDHeaderKey  = "X-Request-ID"
)

// Analyzer runs one price analysis.
type Analyzer interface {
	Analyze(ctx context.Context, req model.AnalysisRequest) (*model.PriceAnalysisResult, error)
}

// APIHandler serves the analysis API over gin.
type APIHandler struct {
	analyzer Analyzer
	timeout  time.Duration
	logger   *slog.Logger
}

// NewAPIHandler creates a handler. A non-positive timeout uses DefaultTimeout.
func NewAPIHandler(analyzer Analyzer, timeout time.Duration, logger *slog.Logger) *APIHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &APIHandler{
		analyzer: analyzer,
		timeout:  timeout,
		logger:   logger,
	}
}

// SetupRoutes configures all API routes
func (h *APIHandler) SetupRoutes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	router.Use(requestIDMiddleware())
	router.Use(loggerMiddleware(h.logger))
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	router.POST("/api/analyze-price", h.AnalyzePrice)
	router.GET("/health", h.HealthCheck)

	return router
}

// NewServer wraps the routes in an http.Server listening on addr.
func (h *APIHandler) NewServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h.SetupRoutes(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      h.timeout + 10*time.Second,
	}
}
