package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/technofest-ar/platform-api/internal/auth"
	"github.com/technofest-ar/platform-api/internal/services"
)

// AuthHandler handles admin account endpoints
type AuthHandler struct {
	authService   services.AuthService
	secureCookies bool
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService services.AuthService, secureCookies bool) *AuthHandler {
	return &AuthHandler{authService: authService, secureCookies: secureCookies}
}

// Register creates a new admin account gated by the registration code
func (h *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid registration payload: " + err.Error()})
		return
	}

	admin, err := h.authService.Register(req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Admin account created",
		"admin":   admin,
	})
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login verifies credentials and sets the auth cookie
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username and password are required"})
		return
	}

	resp, err := h.authService.Login(req.Username, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	// Cookie for browser clients; the token also works as a Bearer header
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie("auth_token", resp.Token, 24*3600, "/", "", h.secureCookies, true)

	c.JSON(http.StatusOK, resp)
}

// Logout clears the auth cookie
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetCookie("auth_token", "", -1, "/", "", h.secureCookies, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// Me returns the authenticated admin's profile
func (h *AuthHandler) Me(c *gin.Context) {
	adminID, ok := auth.AdminIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	admin, err := h.authService.GetAdmin(adminID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, admin)
}

// ListAdmins returns all admin accounts
func (h *AuthHandler) ListAdmins(c *gin.Context) {
	admins, err := h.authService.ListAdmins()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"admins": admins, "count": len(admins)})
}

type updateWeightRequest struct {
	Weight *float64 `json:"weight" binding:"required"`
}

// UpdateWeight adjusts an admin's evaluation weight (superadmin only)
func (h *AuthHandler) UpdateWeight(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid admin id"})
		return
	}

	var req updateWeightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "weight is required"})
		return
	}

	if err := h.authService.UpdateWeight(id, *req.Weight); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Evaluation weight updated"})
}
