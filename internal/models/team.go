package models

import (
	"time"

	"github.com/google/uuid"
)

// Registration types for teams and individuals
const (
	RegistrationTeamWithIdea       = "team_with_idea"
	RegistrationTeamNoIdea         = "team_no_idea"
	RegistrationIndividualWithIdea = "individual_with_idea"
	RegistrationIndividualNoIdea   = "individual_no_idea"
)

// Team represents a registered competition team
type Team struct {
	ID                uuid.UUID `json:"id"`
	TeamName          string    `json:"team_name"`
	RegistrationType  string    `json:"registration_type"`
	Field             string    `json:"field"`
	InitialIdea       string    `json:"initial_idea"`
	TelegramGroupLink string    `json:"telegram_group_link"`
	ProgramVersionID  uuid.UUID `json:"program_version_id"`
	IsActive          bool      `json:"is_active"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// TeamMember represents one member of a team (3-6 per team)
type TeamMember struct {
	ID               uuid.UUID `json:"id"`
	TeamID           uuid.UUID `json:"team_id"`
	FullName         string    `json:"full_name"`
	Email            string    `json:"email"`
	Phone            string    `json:"phone"`
	IsLeader         bool      `json:"is_leader"`
	MembershipNumber string    `json:"membership_number,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}
