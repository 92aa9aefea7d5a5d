package api

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/technofest-ar/platform-api/internal/repository"
	"github.com/technofest-ar/platform-api/internal/services"
)

// allowedAttachmentExts are the file types accepted for project attachments
var allowedAttachmentExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".pdf":  true,
	".zip":  true,
}

// attachmentSlots are the multipart form fields an upload may carry
var attachmentSlots = []string{"image", "diagram", "design"}

// SubmissionHandler handles project submission endpoints
type SubmissionHandler struct {
	submissions services.SubmissionService
	uploadDir   string
}

// NewSubmissionHandler creates a new submission handler
func NewSubmissionHandler(submissions services.SubmissionService, uploadDir string) *SubmissionHandler {
	return &SubmissionHandler{submissions: submissions, uploadDir: uploadDir}
}

// Create registers a project submission
func (h *SubmissionHandler) Create(c *gin.Context) {
	var req services.SubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid submission payload: " + err.Error()})
		return
	}

	submission, err := h.submissions.Create(req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, submission)
}

// Get returns one submission
func (h *SubmissionHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid submission id"})
		return
	}

	submission, err := h.submissions.Get(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, submission)
}

// List returns submissions filtered by field or featured flag
func (h *SubmissionHandler) List(c *gin.Context) {
	limit, offset := pagination(c)
	filters := repository.SubmissionFilters{
		Field:        c.Query("field"),
		FeaturedOnly: c.Query("featured") == "true",
		Limit:        limit,
		Offset:       offset,
	}

	submissions, err := h.submissions.List(filters)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"submissions": submissions, "count": len(submissions)})
}

// GetByTeam returns all submissions of one team
func (h *SubmissionHandler) GetByTeam(c *gin.Context) {
	teamID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid team id"})
		return
	}

	submissions, err := h.submissions.GetByTeam(teamID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"submissions": submissions, "count": len(submissions)})
}

// UploadAttachments stores attachment files for a submission. Each slot
// (image, diagram, design) is optional; at least one must be present.
func (h *SubmissionHandler) UploadAttachments(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid submission id"})
		return
	}

	paths := make(map[string]string, len(attachmentSlots))
	uploaded := 0
	for _, slot := range attachmentSlots {
		file, err := c.FormFile(slot)
		if err != nil {
			continue
		}

		path, err := h.saveAttachment(c, slot, file)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		paths[slot] = path
		uploaded++
	}

	if uploaded == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "at least one attachment (image, diagram or design) is required",
		})
		return
	}

	submission, err := h.submissions.AttachFiles(id, paths["image"], paths["diagram"], paths["design"])
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, submission)
}

func (h *SubmissionHandler) saveAttachment(c *gin.Context, slot string, file *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedAttachmentExts[ext] {
		return "", fmt.Errorf("unsupported %s file type %q; allowed: png, jpg, jpeg, pdf, zip", slot, ext)
	}

	// Server-generated name; the client filename is never used on disk
	name := fmt.Sprintf("%s_%s%s", slot, uuid.New(), ext)
	path := filepath.Join(h.uploadDir, name)

	if err := c.SaveUploadedFile(file, path); err != nil {
		return "", fmt.Errorf("failed to store %s attachment", slot)
	}
	return path, nil
}

// DownloadAttachment streams one stored attachment
func (h *SubmissionHandler) DownloadAttachment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid submission id"})
		return
	}

	submission, err := h.submissions.Get(id)
	if err != nil {
		respondError(c, err)
		return
	}

	var path string
	switch c.Param("kind") {
	case "image":
		path = submission.ImagePath
	case "diagram":
		path = submission.DiagramPath
	case "design":
		path = submission.DesignPath
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "attachment kind must be image, diagram or design"})
		return
	}

	if path == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "the submission has no such attachment"})
		return
	}
	c.File(path)
}

// Featured lists submissions flagged for the public showcase
func (h *SubmissionHandler) Featured(c *gin.Context) {
	submissions, err := h.submissions.Featured()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"submissions": submissions, "count": len(submissions)})
}

type setFeaturedRequest struct {
	Featured *bool `json:"featured" binding:"required"`
}

// SetFeatured flags or unflags a submission for the public showcase
func (h *SubmissionHandler) SetFeatured(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid submission id"})
		return
	}

	var req setFeaturedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "featured is required"})
		return
	}

	if err := h.submissions.SetFeatured(id, *req.Featured); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Featured flag updated"})
}

// Stats returns submission statistics for the active edition
func (h *SubmissionHandler) Stats(c *gin.Context) {
	stats, err := h.submissions.Stats()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
