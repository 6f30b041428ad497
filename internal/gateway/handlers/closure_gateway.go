package handlers

import (
	"context"
	"net/http"
	"time"

	"feedmart-pos/internal/closure"
	"feedmart-pos/internal/models"
	"feedmart-pos/internal/telemetry"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type SummarySource interface {
	DailySummary(ctx context.Context, date string) (*models.DailySummary, error)
}

type ClosureHTTPHandler struct {
	summaries SummarySource
	logger    *zap.Logger
	metrics   *telemetry.Metrics
}

func NewClosureHTTPHandler(summaries SummarySource, logger *zap.Logger, metrics *telemetry.Metrics) *ClosureHTTPHandler {
	return &ClosureHTTPHandler{summaries: summaries, logger: logger, metrics: metrics}
}

type CountedTender struct {
	Method models.PaymentMethod `json:"payment_method" binding:"required"`
	Amount string               `json:"amount"`
}

type VarianceRequest struct {
	Date    string          `json:"date" binding:"required"`
	Counted []CountedTender `json:"counted"`
	// Strict refuses blank counts for tenders that took money.
	Strict bool `json:"strict"`
}

type SummaryQuery struct {
	Date string `form:"date" binding:"required"`
}

func validDate(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

func (h *ClosureHTTPHandler) GetSummary(c *gin.Context) {
	var q SummaryQuery
	if err := c.ShouldBindQuery(&q); err != nil || !validDate(q.Date) {
		c.JSON(http.StatusBadRequest, errorResponse("date must be YYYY-MM-DD"))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	summary, err := h.summaries.DailySummary(ctx, q.Date)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Daily summary retrieved successfully", summary))
}

func (h *ClosureHTTPHandler) ComputeVariance(c *gin.Context) {
	var req VarianceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format: "+err.Error()))
		return
	}
	if !validDate(req.Date) {
		c.JSON(http.StatusBadRequest, errorResponse("date must be YYYY-MM-DD"))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	summary, err := h.summaries.DailySummary(ctx, req.Date)
	if err != nil {
		handleError(c, err)
		return
	}

	counted := make(map[models.PaymentMethod]string, len(req.Counted))
	for _, t := range req.Counted {
		counted[t.Method] = t.Amount
	}

	var report closure.Report
	if req.Strict {
		report, err = closure.ComputeStrict(*summary, counted)
		if err != nil {
			handleError(c, err)
			return
		}
	} else {
		report = closure.Compute(*summary, counted)
	}

	variances := make(map[string]float64, len(report.Tenders))
	for _, t := range report.Tenders {
		variances[t.Label], _ = t.Variance.Float64()
	}
	h.metrics.ClosureComputed(string(report.Status), variances)
	h.logger.Info("closure variance computed",
		zap.String("date", report.Date),
		zap.String("status", string(report.Status)),
		zap.String("total_variance", report.TotalVariance.StringFixed(2)),
		zap.Bool("defaulted_counts", report.HasDefaults()),
	)

	c.JSON(http.StatusOK, successResponse("Variance computed", report))
}
