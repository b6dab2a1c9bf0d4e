package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tendergate/tendergate/internal/application/gapclosure"
	"github.com/tendergate/tendergate/internal/application/market"
	"github.com/tendergate/tendergate/internal/application/strategy"
	"github.com/tendergate/tendergate/internal/domain/condition"
	"github.com/tendergate/tendergate/internal/domain/reference"
	"github.com/tendergate/tendergate/internal/infrastructure/monitoring/logging"
)

// AnalysisHandler serves gap-closure, strategy and market analysis.
type AnalysisHandler struct {
	conditions condition.Repository
	tenders    reference.TenderRepository
	gaps       gapclosure.Service
	strategies strategy.Service
	markets    market.Service
	logger     logging.Logger
}

// NewAnalysisHandler wires the analysis endpoints.
func NewAnalysisHandler(
	conditions condition.Repository,
	tenders reference.TenderRepository,
	gaps gapclosure.Service,
	strategies strategy.Service,
	markets market.Service,
	logger logging.Logger,
) *AnalysisHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &AnalysisHandler{
		conditions: conditions,
		tenders:    tenders,
		gaps:       gaps,
		strategies: strategies,
		markets:    markets,
		logger:     logger.Named("http.analysis"),
	}
}

// GapClosures handles GET /api/v1/conditions/:id/gap-closures.
func (h *AnalysisHandler) GapClosures(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "invalid condition id")
		return
	}
	ctx := c.Request.Context()
	cond, err := h.conditions.FindByID(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	rec, err := h.gaps.SuggestClosures(ctx, cond)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// Strategy handles GET /api/v1/tenders/:id/strategy.
func (h *AnalysisHandler) Strategy(c *gin.Context) {
	tenderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "invalid tender id")
		return
	}
	ctx := c.Request.Context()
	conditions, err := h.conditions.FindByTender(ctx, tenderID)
	if err != nil {
		respondError(c, err)
		return
	}
	plan, err := h.strategies.OptimizeStrategy(ctx, conditions)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

// Competitors handles GET /api/v1/tenders/:id/competitors.
func (h *AnalysisHandler) Competitors(c *gin.Context) {
	tenderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "invalid tender id")
		return
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 {
			respondBadRequest(c, "limit must be a positive integer")
			return
		}
	}

	ctx := c.Request.Context()
	tender, err := h.tenders.FindTender(ctx, tenderID)
	if err != nil {
		respondError(c, err)
		return
	}
	predictions, err := h.markets.PredictCompetitors(ctx, tender, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"predictions": predictions, "count": len(predictions)})
}

// Competition handles GET /api/v1/tenders/:id/competition.
func (h *AnalysisHandler) Competition(c *gin.Context) {
	tenderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "invalid tender id")
		return
	}
	ctx := c.Request.Context()
	tender, err := h.tenders.FindTender(ctx, tenderID)
	if err != nil {
		respondError(c, err)
		return
	}
	summary, err := h.markets.AnalyzeCompetition(ctx, tender)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
