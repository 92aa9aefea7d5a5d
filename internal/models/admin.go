package models

import (
	"time"

	"github.com/google/uuid"
)

// Admin represents a competition administrator with login access.
// EvaluationWeight is the admin's voting power (0-100) when admin
// evaluations are averaged into a submission's final score.
type Admin struct {
	ID               uuid.UUID `json:"id"`
	Username         string    `json:"username"`
	Email            string    `json:"email"`
	PasswordHash     string    `json:"-"`
	FullName         string    `json:"full_name"`
	EvaluationWeight float64   `json:"evaluation_weight"`
	IsActive         bool      `json:"is_active"`
	IsSuperAdmin     bool      `json:"is_superadmin"`
	CreatedAt        time.Time `json:"created_at"`
}
