package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/technofest-ar/platform-api/internal/errors"
	"github.com/technofest-ar/platform-api/internal/models"
	"github.com/technofest-ar/platform-api/internal/repository"
)

// ProgramVersionHandler handles competition edition endpoints
type ProgramVersionHandler struct {
	versions repository.ProgramVersionRepository
}

// NewProgramVersionHandler creates a new program version handler
func NewProgramVersionHandler(versions repository.ProgramVersionRepository) *ProgramVersionHandler {
	return &ProgramVersionHandler{versions: versions}
}

type createVersionRequest struct {
	VersionNumber int    `json:"version_number" binding:"required"`
	VersionName   string `json:"version_name"`
}

// Create opens a new competition edition, deactivating the previous one
func (h *ProgramVersionHandler) Create(c *gin.Context) {
	var req createVersionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "version_number is required"})
		return
	}

	version := &models.ProgramVersion{
		VersionNumber: req.VersionNumber,
		VersionName:   req.VersionName,
	}
	if err := h.versions.Create(version); err != nil {
		respondError(c, apperrors.DatabaseError("failed to create program version", err))
		return
	}
	c.JSON(http.StatusCreated, version)
}

// List returns all editions, newest first
func (h *ProgramVersionHandler) List(c *gin.Context) {
	versions, err := h.versions.GetAll()
	if err != nil {
		respondError(c, apperrors.DatabaseError("failed to list program versions", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"versions": versions, "count": len(versions)})
}

// GetActive returns the currently active edition
func (h *ProgramVersionHandler) GetActive(c *gin.Context) {
	version, err := h.versions.GetActive()
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(c, apperrors.NotFound("no active program version", err))
			return
		}
		respondError(c, apperrors.DatabaseError("failed to load active program version", err))
		return
	}
	c.JSON(http.StatusOK, version)
}
