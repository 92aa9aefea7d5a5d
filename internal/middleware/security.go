package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/technofest-ar/platform-api/internal/logger"
	"github.com/technofest-ar/platform-api/pkg/config"
)

// SecurityHeadersMiddleware adds security headers to all responses
func SecurityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Prevent clickjacking attacks
		c.Header("X-Frame-Options", "DENY")

		// Prevent MIME-type confusion attacks
		c.Header("X-Content-Type-Options", "nosniff")

		// Control referrer information
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		// Content Security Policy for API endpoints
		csp := "default-src 'none'; " +
			"connect-src 'self'; " +
			"base-uri 'none'; " +
			"form-action 'none'"
		c.Header("Content-Security-Policy", csp)

		// Prevent caching of sensitive data
		c.Header("Cache-Control", "no-store, no-cache, must-revalidate, proxy-revalidate")
		c.Header("Pragma", "no-cache")

		c.Next()
	}
}

// CORSMiddleware handles Cross-Origin Resource Sharing with environment-based configuration
func CORSMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		var allowedOrigins []string
		if cfg.IsDevelopment() {
			allowedOrigins = []string{
				"http://localhost:3000",
				"http://localhost:5173",
				"http://localhost:8080",
				"http://127.0.0.1:3000",
				"http://127.0.0.1:5173",
				"http://127.0.0.1:8080",
			}
		} else {
			allowedOrigins = cfg.GetAllowedOrigins()
		}

		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin {
				c.Header("Access-Control-Allow-Origin", origin)
				break
			}
		}

		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization, X-Requested-With")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// InputValidationMiddleware enforces request size and content type limits
func InputValidationMiddleware(cfg *config.Config) gin.HandlerFunc {
	allowedTypes := []string{
		"application/json",
		"multipart/form-data",
		"application/x-www-form-urlencoded",
	}

	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, cfg.MaxRequestSize)

		if c.Request.Method == "POST" || c.Request.Method == "PUT" {
			contentType := c.GetHeader("Content-Type")
			if contentType == "" {
				c.JSON(http.StatusBadRequest, gin.H{
					"error": "Content-Type header is required",
				})
				c.Abort()
				return
			}

			isValidType := false
			for _, allowedType := range allowedTypes {
				if strings.HasPrefix(contentType, allowedType) {
					isValidType = true
					break
				}
			}

			if !isValidType {
				c.JSON(http.StatusUnsupportedMediaType, gin.H{
					"error":         "Unsupported content type",
					"allowed_types": allowedTypes,
				})
				c.Abort()
				return
			}
		}

		c.Next()
	}
}

// RateLimitingMiddleware provides basic per-IP rate limiting.
// In-memory only; a multi-instance deployment needs a shared store.
func RateLimitingMiddleware() gin.HandlerFunc {
	var mu sync.Mutex
	clients := make(map[string][]time.Time)

	return func(c *gin.Context) {
		clientIP := c.ClientIP()
		now := time.Now()

		mu.Lock()
		// Drop entries older than the one-minute window
		if timestamps, exists := clients[clientIP]; exists {
			var valid []time.Time
			for _, ts := range timestamps {
				if now.Sub(ts) <= time.Minute {
					valid = append(valid, ts)
				}
			}
			clients[clientIP] = valid
		}

		// 100 requests per minute per IP
		if len(clients[clientIP]) >= 100 {
			mu.Unlock()
			c.Header("Retry-After", "60")
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "Rate limit exceeded",
				"retry_after": "60",
			})
			c.Abort()
			return
		}

		clients[clientIP] = append(clients[clientIP], now)
		mu.Unlock()

		c.Next()
	}
}

// LoggingMiddleware logs each request with latency and client details
func LoggingMiddleware(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		clientIP := c.ClientIP()
		method := c.Request.Method
		statusCode := c.Writer.Status()

		if raw != "" {
			path = path + "?" + raw
		}

		log.Info(fmt.Sprintf("%3d | %13v | %15s | %-7s %s", statusCode, latency, clientIP, method, path))

		if statusCode >= 500 {
			log.Warn(fmt.Sprintf("%d response for %s %s from %s", statusCode, method, path, clientIP))
		}
	}
}
