package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/technofest-ar/platform-api/internal/auth"
	"github.com/technofest-ar/platform-api/internal/scoring"
	"github.com/technofest-ar/platform-api/internal/services"
)

// EvaluationHandler handles scoring endpoints
type EvaluationHandler struct {
	evaluations services.EvaluationService
}

// NewEvaluationHandler creates a new evaluation handler
func NewEvaluationHandler(evaluations services.EvaluationService) *EvaluationHandler {
	return &EvaluationHandler{evaluations: evaluations}
}

// SubmitEvaluation records the authenticated admin's score for a submission
func (h *EvaluationHandler) SubmitEvaluation(c *gin.Context) {
	adminID, ok := auth.AdminIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	submissionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid submission id"})
		return
	}

	var req services.AdminEvaluationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid evaluation payload: " + err.Error()})
		return
	}

	eval, err := h.evaluations.SubmitAdminEvaluation(adminID, submissionID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, eval)
}

// RunAutomated triggers the automated evaluation of one submission
func (h *EvaluationHandler) RunAutomated(c *gin.Context) {
	submissionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid submission id"})
		return
	}

	eval, err := h.evaluations.RunAutomated(c.Request.Context(), submissionID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, eval)
}

// RunAutomatedBulk evaluates every submission lacking an automated score
func (h *EvaluationHandler) RunAutomatedBulk(c *gin.Context) {
	result, err := h.evaluations.RunAutomatedBulk(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetEvaluations lists all evaluations of one submission
func (h *EvaluationHandler) GetEvaluations(c *gin.Context) {
	submissionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid submission id"})
		return
	}

	evals, err := h.evaluations.GetEvaluations(submissionID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"evaluations": evals, "count": len(evals)})
}

// GetScore returns the submission's aggregated score
func (h *EvaluationHandler) GetScore(c *gin.Context) {
	submissionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid submission id"})
		return
	}

	score, err := h.evaluations.GetScore(submissionID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, score)
}

// TopSubmissions returns the leaderboard; ?n= overrides the default size.
// An explicit n <= 0 yields an empty leaderboard.
func (h *EvaluationHandler) TopSubmissions(c *gin.Context) {
	n, err := strconv.Atoi(c.DefaultQuery("n", strconv.Itoa(scoring.DefaultTopN)))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "n must be an integer"})
		return
	}

	entries, err := h.evaluations.TopSubmissions(n)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"top": entries, "count": len(entries)})
}

// Stats returns evaluation coverage statistics
func (h *EvaluationHandler) Stats(c *gin.Context) {
	stats, err := h.evaluations.Stats()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
