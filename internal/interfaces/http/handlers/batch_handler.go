package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tendergate/tendergate/internal/application/batch"
	"github.com/tendergate/tendergate/internal/application/classification"
	"github.com/tendergate/tendergate/internal/domain/condition"
	"github.com/tendergate/tendergate/internal/infrastructure/messaging/kafka"
	"github.com/tendergate/tendergate/internal/infrastructure/monitoring/logging"
)

// BatchHandler serves whole-tender evaluation runs.
type BatchHandler struct {
	conditions   condition.Repository
	orchestrator batch.Orchestrator
	classifier   classification.Service
	facts        classification.FactSource
	events       *kafka.EventPublisher
	logger       logging.Logger
}

// NewBatchHandler wires the batch endpoint.  events may be nil.
func NewBatchHandler(
	conditions condition.Repository,
	orchestrator batch.Orchestrator,
	classifier classification.Service,
	facts classification.FactSource,
	events *kafka.EventPublisher,
	logger logging.Logger,
) *BatchHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &BatchHandler{
		conditions:   conditions,
		orchestrator: orchestrator,
		classifier:   classifier,
		facts:        facts,
		events:       events,
		logger:       logger.Named("http.batch"),
	}
}

type evaluateRequest struct {
	CompanyID string `json:"company_id" binding:"required"`
}

// Evaluate handles POST /api/v1/tenders/:id/evaluate.  The run is
// synchronous: the response carries the full result including per-item
// failures.
func (h *BatchHandler) Evaluate(c *gin.Context) {
	tenderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "invalid tender id")
		return
	}
	var req evaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}
	companyID, err := uuid.Parse(req.CompanyID)
	if err != nil {
		respondBadRequest(c, "invalid company_id")
		return
	}

	ctx := c.Request.Context()
	conditions, err := h.conditions.FindByTender(ctx, tenderID)
	if err != nil {
		respondError(c, err)
		return
	}

	classify := func(ctx context.Context, cond *condition.GateCondition) (*classification.Result, error) {
		facts, err := h.facts.GatherFacts(ctx, companyID, cond)
		if err != nil {
			return nil, err
		}
		return h.classifier.ClassifyAndRecord(ctx, cond, facts)
	}

	run, err := h.orchestrator.RunBatch(ctx, conditions, classify, nil)
	if err != nil {
		// A cancelled run still carries partial results; surface them.
		c.JSON(http.StatusOK, run)
		return
	}

	if h.events != nil {
		event := kafka.BatchCompletedEvent{
			TenderID:    tenderID.String(),
			Total:       run.Total,
			Failures:    len(run.Failures),
			CompletedAt: time.Now().UTC(),
		}
		if err := h.events.PublishBatchCompleted(ctx, event); err != nil {
			h.logger.Warn("publishing batch completion",
				logging.String("tender_id", event.TenderID),
				logging.Err(err))
		}
	}
	c.JSON(http.StatusOK, run)
}
