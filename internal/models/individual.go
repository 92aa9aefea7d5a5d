package models

import (
	"time"

	"github.com/google/uuid"
)

// Individual represents a solo registrant, with or without a project idea.
// Individuals without an idea are later assigned into staff-created teams.
type Individual struct {
	ID               uuid.UUID  `json:"id"`
	RegistrationType string     `json:"registration_type"`
	FullName         string     `json:"full_name"`
	MembershipNumber string     `json:"membership_number,omitempty"`
	Email            string     `json:"email"`
	Phone            string     `json:"phone"`
	TechnicalSkills  string     `json:"technical_skills"`
	Interests        string     `json:"interests"`
	ExperienceLevel  string     `json:"experience_level"`
	PreferredField   string     `json:"preferred_field"`
	ProjectIdea      string     `json:"project_idea,omitempty"`
	AssignedTeamID   *uuid.UUID `json:"assigned_team_id,omitempty"`
	ProgramVersionID uuid.UUID  `json:"program_version_id"`
	IsAssigned       bool       `json:"is_assigned"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}
