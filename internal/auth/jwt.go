package auth

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Context keys set by JWTMiddleware
const (
	AdminIDKey    = "admin_id"
	UsernameKey   = "admin_username"
	SuperAdminKey = "is_superadmin"
)

// Claims represents JWT claims for an authenticated admin
type Claims struct {
	AdminID      uuid.UUID `json:"admin_id"`
	Username     string    `json:"username"`
	IsSuperAdmin bool      `json:"is_superadmin"`
	jwt.RegisteredClaims
}

// JWTService handles JWT token operations
type JWTService struct {
	secret []byte
}

// NewJWTService creates a new JWT service
func NewJWTService(secret string) *JWTService {
	return &JWTService{
		secret: []byte(secret),
	}
}

// GenerateToken generates a signed access token for an admin
func (j *JWTService) GenerateToken(claims Claims) (string, time.Time, error) {
	expiresAt := time.Now().Add(24 * time.Hour)
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		NotBefore: jwt.NewNumericDate(time.Now()),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(j.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ValidateToken validates a JWT token and returns its claims
func (j *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.secret, nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}

// JWTMiddleware validates tokens from the auth cookie or Authorization header
func JWTMiddleware(secret string) gin.HandlerFunc {
	service := NewJWTService(secret)
	return func(c *gin.Context) {
		// Try to get token from cookie first
		tokenString, err := c.Cookie("auth_token")
		if err != nil {
			authHeader := c.GetHeader("Authorization")
			if authHeader == "" {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
				c.Abort()
				return
			}

			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Bearer token required"})
				c.Abort()
				return
			}
		}

		claims, err := service.ValidateToken(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			c.Abort()
			return
		}

		c.Set(AdminIDKey, claims.AdminID)
		c.Set(UsernameKey, claims.Username)
		c.Set(SuperAdminKey, claims.IsSuperAdmin)
		c.Next()
	}
}

// RequireSuperAdmin rejects requests from non-superadmin accounts.
// Must run after JWTMiddleware.
func RequireSuperAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool(SuperAdminKey) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Superadmin access required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// AdminIDFromContext extracts the authenticated admin's ID set by JWTMiddleware
func AdminIDFromContext(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(AdminIDKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
