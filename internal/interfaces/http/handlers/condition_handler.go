package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tendergate/tendergate/internal/application/classification"
	"github.com/tendergate/tendergate/internal/domain/condition"
	"github.com/tendergate/tendergate/internal/infrastructure/monitoring/logging"
	"github.com/tendergate/tendergate/pkg/types/common"
)

// ConditionHandler serves gate-condition CRUD and classification.
type ConditionHandler struct {
	repo       condition.Repository
	classifier classification.Service
	facts      classification.FactSource
	logger     logging.Logger
}

// NewConditionHandler wires the condition endpoints.
func NewConditionHandler(
	repo condition.Repository,
	classifier classification.Service,
	facts classification.FactSource,
	logger logging.Logger,
) *ConditionHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &ConditionHandler{repo: repo, classifier: classifier, facts: facts, logger: logger.Named("http.condition")}
}

type createConditionRequest struct {
	TenderID            string   `json:"tender_id" binding:"required"`
	Ordinal             int      `json:"ordinal"`
	Text                string   `json:"text" binding:"required"`
	Category            string   `json:"category" binding:"required"`
	Mandatory           bool     `json:"mandatory"`
	Weight              float64  `json:"weight"`
	RequiredYears       *float64 `json:"required_years"`
	RequiredAmount      *float64 `json:"required_amount"`
	RequiredCount       *int     `json:"required_count"`
	LegalClassification string   `json:"legal_classification"`
	BearerScope         string   `json:"bearer_scope"`
	SourcePage          int      `json:"source_page"`
	SourceSection       string   `json:"source_section"`
}

// Create handles POST /api/v1/conditions.
func (h *ConditionHandler) Create(c *gin.Context) {
	var req createConditionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}
	tenderID, err := uuid.Parse(req.TenderID)
	if err != nil {
		respondBadRequest(c, "invalid tender_id")
		return
	}

	cond := &condition.GateCondition{
		TenderID:            tenderID,
		Ordinal:             req.Ordinal,
		Text:                req.Text,
		Category:            condition.RequirementCategory(req.Category),
		Mandatory:           req.Mandatory,
		Weight:              req.Weight,
		RequiredYears:       req.RequiredYears,
		RequiredAmount:      req.RequiredAmount,
		RequiredCount:       req.RequiredCount,
		Status:              condition.StatusUnknown,
		LegalClassification: condition.LegalClassification(req.LegalClassification),
		BearerScope:         condition.BearerScope(req.BearerScope),
		SourcePage:          req.SourcePage,
		SourceSection:       req.SourceSection,
	}
	if err := h.repo.Save(c.Request.Context(), cond); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cond)
}

// Get handles GET /api/v1/conditions/:id.
func (h *ConditionHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "invalid condition id")
		return
	}
	cond, err := h.repo.FindByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cond)
}

// ListByTender handles GET /api/v1/tenders/:id/conditions.  Supports
// page/page_size query parameters; count always reports the full total.
func (h *ConditionHandler) ListByTender(c *gin.Context) {
	tenderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "invalid tender id")
		return
	}
	var paging common.Pagination
	if err := c.ShouldBindQuery(&paging); err != nil {
		respondBadRequest(c, "invalid paging parameters")
		return
	}
	conditions, err := h.repo.FindByTender(c.Request.Context(), tenderID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"conditions": common.Page(conditions, paging),
		"count":      len(conditions),
	})
}

type classifyRequest struct {
	CompanyID string `json:"company_id" binding:"required"`
}

// Classify handles POST /api/v1/conditions/:id/classify.
func (h *ConditionHandler) Classify(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "invalid condition id")
		return
	}
	var req classifyRequest
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
	cond, err := h.repo.FindByID(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	facts, err := h.facts.GatherFacts(ctx, companyID, cond)
	if err != nil {
		respondError(c, err)
		return
	}
	result, err := h.classifier.ClassifyAndRecord(ctx, cond, facts)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
