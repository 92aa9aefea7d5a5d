package models

import (
	"time"

	"github.com/google/uuid"
)

// Submission represents one project entry submitted by a team.
// A team may submit multiple versions within a program edition;
// SubmissionVersion counts up per team and edition.
type Submission struct {
	ID                   uuid.UUID `json:"id"`
	TeamID               uuid.UUID `json:"team_id"`
	ProgramVersionID     uuid.UUID `json:"program_version_id"`
	SubmissionVersion    int       `json:"submission_version"`
	Title                string    `json:"title"`
	ProblemStatement     string    `json:"problem_statement"`
	TechnicalDescription string    `json:"technical_description"`
	ScientificReference  string    `json:"scientific_reference"`
	Field                string    `json:"field"`
	ImagePath            string    `json:"image_path,omitempty"`
	DiagramPath          string    `json:"diagram_path,omitempty"`
	DesignPath           string    `json:"design_path,omitempty"`
	HasAttachments       bool      `json:"has_attachments"`
	IsComplete           bool      `json:"is_complete"`
	CharacterCount       int       `json:"character_count"`
	IsFeatured           bool      `json:"is_featured"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// ProgramVersion represents one edition of the competition; exactly one
// edition is active at a time and new registrations attach to it.
type ProgramVersion struct {
	ID            uuid.UUID `json:"id"`
	VersionNumber int       `json:"version_number"`
	VersionName   string    `json:"version_name"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
}
