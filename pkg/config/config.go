package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds application configuration
type Config struct {
	DatabaseURL string
	JWTSecret   string
	Port        string
	Environment string

	// Admin onboarding
	AdminRegistrationCode string
	SuperAdminUsername    string

	// Scoring scale. The two bounds must sum to 100; the final score is the
	// weighted admin mean (out of AdminScoreMax) plus the automated score
	// (out of AIScoreMax).
	AdminScoreMax float64
	AIScoreMax    float64

	// AI evaluation (OpenAI-compatible endpoint)
	AIAPIKey  string
	AIBaseURL string
	AIModel   string

	// Mail
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	MailFrom     string

	// Attachments
	UploadDir string

	// Security configuration
	AllowedOrigins  string
	TrustedProxies  string
	EnableRateLimit bool
	MaxRequestSize  int64
}

// New creates a new configuration instance from environment variables
func New() *Config {
	return &Config{
		DatabaseURL: getEnv("DATABASE_URL", ""),
		JWTSecret:   getEnv("JWT_SECRET", ""),
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENV", "development"),

		AdminRegistrationCode: getEnv("ADMIN_REGISTRATION_CODE", ""),
		SuperAdminUsername:    getEnv("SUPER_ADMIN_USERNAME", ""),

		AdminScoreMax: getEnvAsFloat("SCORE_ADMIN_MAX", 75),
		AIScoreMax:    getEnvAsFloat("SCORE_AI_MAX", 25),

		AIAPIKey:  getEnv("AI_API_KEY", ""),
		AIBaseURL: getEnv("AI_BASE_URL", "https://api.deepseek.com"),
		AIModel:   getEnv("AI_MODEL", "deepseek-chat"),

		SMTPHost:     getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:     getEnvAsInt("SMTP_PORT", 587),
		SMTPUser:     getEnv("SMTP_USER", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		MailFrom:     getEnv("MAIL_FROM", ""),

		UploadDir: getEnv("UPLOAD_DIR", "uploads"),

		AllowedOrigins:  getEnv("ALLOWED_ORIGINS", ""),
		TrustedProxies:  getEnv("TRUSTED_PROXIES", ""),
		EnableRateLimit: getEnv("ENABLE_RATE_LIMIT", "true") == "true",
		MaxRequestSize:  getEnvAsInt64("MAX_REQUEST_SIZE", 10*1024*1024), // 10MB default
	}
}

// Validate checks configuration invariants the rest of the system relies on.
// The two score bounds must form a single 100-point scale.
func (c *Config) Validate() error {
	if c.AdminScoreMax < 0 || c.AIScoreMax < 0 {
		return fmt.Errorf("score bounds must be non-negative (admin=%v, ai=%v)", c.AdminScoreMax, c.AIScoreMax)
	}
	if c.AdminScoreMax+c.AIScoreMax != 100 {
		return fmt.Errorf("SCORE_ADMIN_MAX + SCORE_AI_MAX must equal 100, got %v + %v", c.AdminScoreMax, c.AIScoreMax)
	}
	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// HasAICredentials returns true if the AI evaluation endpoint is configured
func (c *Config) HasAICredentials() bool {
	return c.AIAPIKey != ""
}

// HasSMTPCredentials returns true if outgoing mail is configured
func (c *Config) HasSMTPCredentials() bool {
	return c.SMTPUser != "" && c.SMTPPassword != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// GetAllowedOrigins returns a slice of allowed CORS origins
func (c *Config) GetAllowedOrigins() []string {
	if c.AllowedOrigins == "" {
		return []string{}
	}
	return strings.Split(c.AllowedOrigins, ",")
}

// GetTrustedProxies returns a slice of trusted proxy IPs
func (c *Config) GetTrustedProxies() []string {
	if c.TrustedProxies == "" {
		return []string{}
	}
	return strings.Split(c.TrustedProxies, ",")
}
