package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"github.com/guarzo/resalepricer/internal/model"
	"github.com/guarzo/resalepricer/internal/pricing"
)

// maxFieldLength bounds each request field before validation.
const maxFieldLength = 500

// AnalyzePrice handles POST /api/analyze-price requests
func (h *APIHandler) AnalyzePrice(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	var req model.AnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.handleError(c, err, http.StatusBadRequest, "request body must be a JSON analysis request")
		return
	}

	req = sanitizeRequest(req)

	result, err := h.analyzer.Analyze(ctx, req)
	if err != nil {
		var verr *pricing.ValidationError
		if errors.As(err, &verr) {
			h.handleError(c, err, http.StatusBadRequest, verr.Error())
			return
		}
		h.handleError(c, err, http.StatusInternalServerError, "Internal server error")
		return
	}

	c.JSON(http.StatusOK, result)
}

// HealthCheck handles GET /health requests
func (h *APIHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "OK",
		"service":   ServiceName,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   ServiceVersion,
	})
}

// handleError logs the error and sends appropriate HTTP response
func (h *APIHandler) handleError(c *gin.Context, err error, statusCode int, userMessage string) {
	requestID := c.GetString(RequestIDContextKey)
	if requestID == "" {
		requestID = "unknown"
	}

	level := slog.LevelError
	if statusCode < http.StatusInternalServerError {
		level = slog.LevelWarn
	}
	h.logger.Log(c.Request.Context(), level, "API error",
		slog.String("request_id", requestID),
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.String("error", err.Error()),
		slog.Int("status_code", statusCode),
	)

	c.JSON(statusCode, gin.H{
		"error":      userMessage,
		"request_id": requestID,
	})
}

func sanitizeRequest(req model.AnalysisRequest) model.AnalysisRequest {
	req.Keywords = sanitizeInput(req.Keywords)
	req.Category = sanitizeInput(req.Category)
	req.Condition = sanitizeInput(req.Condition)
	req.Brand = sanitizeInput(req.Brand)
	return req
}

// sanitizeInput strips control characters and invalid UTF-8, and caps the
// length in bytes without splitting a character.
func sanitizeInput(input string) string {
	input = strings.ToValidUTF8(input, "")
	input = strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, input)

	if len(input) > maxFieldLength {
		cut := maxFieldLength
		for cut > 0 && !utf8.RuneStart(input[cut]) {
			cut--
		}
		input = input[:cut]
	}
	return input
}
