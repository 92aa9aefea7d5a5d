package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/technofest-ar/platform-api/internal/services"
)

// RegistrationHandler handles team and individual registration endpoints
type RegistrationHandler struct {
	registration services.RegistrationService
}

// NewRegistrationHandler creates a new registration handler
func NewRegistrationHandler(registration services.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{registration: registration}
}

// RegisterTeam creates a team with its members
func (h *RegistrationHandler) RegisterTeam(c *gin.Context) {
	var req services.TeamRegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid team payload: " + err.Error()})
		return
	}

	detail, err := h.registration.RegisterTeam(req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, detail)
}

// GetTeam returns one team with its member roster
func (h *RegistrationHandler) GetTeam(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid team id"})
		return
	}

	detail, err := h.registration.GetTeam(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// ListTeams returns teams with pagination, optionally filtered by name
func (h *RegistrationHandler) ListTeams(c *gin.Context) {
	if name := c.Query("name"); name != "" {
		teams, err := h.registration.SearchTeams(name)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"teams": teams, "count": len(teams)})
		return
	}

	limit, offset := pagination(c)
	teams, err := h.registration.ListTeams(limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"teams": teams, "count": len(teams)})
}

type telegramLinkRequest struct {
	TelegramLink string `json:"telegram_link" binding:"required"`
}

// UpdateTelegramLink sets the team's Telegram group link
func (h *RegistrationHandler) UpdateTelegramLink(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid team id"})
		return
	}

	var req telegramLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "telegram_link is required"})
		return
	}

	if err := h.registration.UpdateTelegramLink(id, req.TelegramLink); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Telegram link updated"})
}

// RegisterIndividual creates a solo registrant
func (h *RegistrationHandler) RegisterIndividual(c *gin.Context) {
	var req services.IndividualRegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid individual payload: " + err.Error()})
		return
	}

	individual, err := h.registration.RegisterIndividual(req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, individual)
}

// ListIndividuals returns individual registrants; ?unassigned=true narrows to
// those not yet grouped into a team
func (h *RegistrationHandler) ListIndividuals(c *gin.Context) {
	if c.Query("unassigned") == "true" {
		individuals, err := h.registration.ListUnassigned()
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"individuals": individuals, "count": len(individuals)})
		return
	}

	limit, offset := pagination(c)
	individuals, err := h.registration.ListIndividuals(limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"individuals": individuals, "count": len(individuals)})
}

// AssignIndividuals groups unassigned individuals into a new team
func (h *RegistrationHandler) AssignIndividuals(c *gin.Context) {
	var req services.AssignTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid assignment payload: " + err.Error()})
		return
	}

	detail, err := h.registration.AssignIndividuals(req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, detail)
}

func pagination(c *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
