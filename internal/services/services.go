package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/technofest-ar/platform-api/internal/ai"
	"github.com/technofest-ar/platform-api/internal/logger"
	"github.com/technofest-ar/platform-api/internal/mailer"
	"github.com/technofest-ar/platform-api/internal/models"
	"github.com/technofest-ar/platform-api/internal/pdf"
	"github.com/technofest-ar/platform-api/internal/repository"
	"github.com/technofest-ar/platform-api/internal/scoring"
	"github.com/technofest-ar/platform-api/pkg/config"
)

// Services contains all application services
type Services struct {
	Auth         AuthService
	Registration RegistrationService
	Submission   SubmissionService
	Evaluation   EvaluationService
	Export       ExportService
}

// RegisterAdminRequest is the payload for creating an admin account
type RegisterAdminRequest struct {
	Username         string `json:"username" binding:"required"`
	Email            string `json:"email" binding:"required,email"`
	Password         string `json:"password" binding:"required,min=8"`
	FullName         string `json:"full_name" binding:"required"`
	RegistrationCode string `json:"registration_code" binding:"required"`
}

// LoginResponse carries the issued token alongside the admin profile
type LoginResponse struct {
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expires_at"`
	Admin     *models.Admin `json:"admin"`
}

// AuthService defines the interface for admin account management
type AuthService interface {
	Register(req RegisterAdminRequest) (*models.Admin, error)
	Login(username, password string) (*LoginResponse, error)
	GetAdmin(id uuid.UUID) (*models.Admin, error)
	ListAdmins() ([]models.Admin, error)
	// UpdateWeight adjusts an admin's voting power; valid range is 0-100
	UpdateWeight(id uuid.UUID, weight float64) error
}

// MemberInput is one team member in a registration payload
type MemberInput struct {
	FullName         string `json:"full_name" binding:"required"`
	Email            string `json:"email" binding:"required,email"`
	Phone            string `json:"phone" binding:"required"`
	IsLeader         bool   `json:"is_leader"`
	MembershipNumber string `json:"membership_number"`
}

// TeamRegistrationRequest is the payload for registering a team
type TeamRegistrationRequest struct {
	TeamName         string        `json:"team_name" binding:"required"`
	RegistrationType string        `json:"registration_type" binding:"required"`
	Field            string        `json:"field" binding:"required"`
	InitialIdea      string        `json:"initial_idea"`
	Members          []MemberInput `json:"members" binding:"required"`
}

// IndividualRegistrationRequest is the payload for registering a solo participant
type IndividualRegistrationRequest struct {
	RegistrationType string `json:"registration_type" binding:"required"`
	FullName         string `json:"full_name" binding:"required"`
	MembershipNumber string `json:"membership_number"`
	Email            string `json:"email" binding:"required,email"`
	Phone            string `json:"phone" binding:"required"`
	TechnicalSkills  string `json:"technical_skills"`
	Interests        string `json:"interests"`
	ExperienceLevel  string `json:"experience_level"`
	PreferredField   string `json:"preferred_field" binding:"required"`
	ProjectIdea      string `json:"project_idea"`
}

// AssignTeamRequest groups unassigned individuals into a new team
type AssignTeamRequest struct {
	TeamName      string      `json:"team_name" binding:"required"`
	Field         string      `json:"field" binding:"required"`
	IndividualIDs []uuid.UUID `json:"individual_ids" binding:"required"`
}

// TeamDetail is a team together with its member roster
type TeamDetail struct {
	Team    *models.Team        `json:"team"`
	Members []models.TeamMember `json:"members"`
}

// RegistrationService defines the interface for participant onboarding
type RegistrationService interface {
	RegisterTeam(req TeamRegistrationRequest) (*TeamDetail, error)
	GetTeam(id uuid.UUID) (*TeamDetail, error)
	ListTeams(limit, offset int) ([]models.Team, error)
	SearchTeams(name string) ([]models.Team, error)
	UpdateTelegramLink(teamID uuid.UUID, link string) error

	RegisterIndividual(req IndividualRegistrationRequest) (*models.Individual, error)
	ListIndividuals(limit, offset int) ([]models.Individual, error)
	ListUnassigned() ([]models.Individual, error)
	// AssignIndividuals creates a team from 3-6 unassigned individuals
	AssignIndividuals(req AssignTeamRequest) (*TeamDetail, error)
}

// SubmissionRequest is the payload for submitting a project
type SubmissionRequest struct {
	MemberEmail          string `json:"member_email" binding:"required,email"`
	Title                string `json:"title" binding:"required"`
	ProblemStatement     string `json:"problem_statement" binding:"required"`
	TechnicalDescription string `json:"technical_description" binding:"required"`
	ScientificReference  string `json:"scientific_reference" binding:"required"`
	Field                string `json:"field" binding:"required"`
}

// SubmissionService defines the interface for project submissions
type SubmissionService interface {
	Create(req SubmissionRequest) (*models.Submission, error)
	Get(id uuid.UUID) (*models.Submission, error)
	List(filters repository.SubmissionFilters) ([]models.Submission, error)
	GetByTeam(teamID uuid.UUID) ([]models.Submission, error)
	// AttachFiles records stored attachment paths on the submission
	AttachFiles(id uuid.UUID, imagePath, diagramPath, designPath string) (*models.Submission, error)
	// Featured lists submissions flagged for the public showcase
	Featured() ([]models.Submission, error)
	SetFeatured(id uuid.UUID, featured bool) error
	Stats() (*repository.SubmissionStats, error)
}

// AdminEvaluationRequest is the payload for an admin scoring a submission.
// Score is a pointer so an explicit 0 survives binding; per-criterion
// sub-scores are optional.
type AdminEvaluationRequest struct {
	Score     *float64           `json:"score" binding:"required"`
	Notes     string             `json:"notes"`
	SubScores map[string]float64 `json:"sub_scores"`
}

// BulkItemResult is the per-submission outcome of a bulk automated run
type BulkItemResult struct {
	SubmissionID uuid.UUID `json:"submission_id"`
	Score        float64   `json:"score,omitempty"`
	Fallback     bool      `json:"fallback,omitempty"`
	Error        string    `json:"error,omitempty"`
}

// BulkRunResult summarizes a bulk automated evaluation run
type BulkRunResult struct {
	Total   int              `json:"total"`
	Scored  int              `json:"scored"`
	Failed  int              `json:"failed"`
	Details []BulkItemResult `json:"details"`
}

// TopEntry is one leaderboard row
type TopEntry struct {
	Rank         int            `json:"rank"`
	SubmissionID uuid.UUID      `json:"submission_id"`
	TeamID       uuid.UUID      `json:"team_id"`
	TeamName     string         `json:"team_name"`
	Title        string         `json:"title"`
	Field        string         `json:"field"`
	Score        scoring.Result `json:"score"`
}

// EvaluationService defines the interface for scoring submissions
type EvaluationService interface {
	// SubmitAdminEvaluation records or replaces one admin's score for a
	// submission; resubmission by the same admin updates the existing row
	SubmitAdminEvaluation(adminID, submissionID uuid.UUID, req AdminEvaluationRequest) (*models.Evaluation, error)
	// RunAutomated produces the submission's single automated evaluation
	RunAutomated(ctx context.Context, submissionID uuid.UUID) (*models.Evaluation, error)
	// RunAutomatedBulk evaluates every submission still lacking an automated
	// evaluation; one failure never aborts the rest
	RunAutomatedBulk(ctx context.Context) (*BulkRunResult, error)
	GetEvaluations(submissionID uuid.UUID) ([]models.Evaluation, error)
	GetScore(submissionID uuid.UUID) (*scoring.Result, error)
	// TopSubmissions returns the first n leaderboard entries; n <= 0 yields
	// an empty leaderboard
	TopSubmissions(n int) ([]TopEntry, error)
	Stats() (*repository.EvaluationStats, error)
}

// ExportService defines the interface for PDF reports and outgoing mail
type ExportService interface {
	ProjectPDF(submissionID uuid.UUID) ([]byte, error)
	RankedReportPDF() ([]byte, error)
	TeamPDF(teamID uuid.UUID) ([]byte, error)
	// SendTelegramInvites emails the team's Telegram link to all members and
	// logs each delivery attempt
	SendTelegramInvites(teamID uuid.UUID) ([]mailer.SendResult, error)
}

// NewServices creates a new Services instance with all dependencies
func NewServices(db *sql.DB, cfg *config.Config, log logger.Logger) *Services {
	repos := repository.NewRepositories(db)

	bounds := scoring.Bounds{AdminMax: cfg.AdminScoreMax, AIMax: cfg.AIScoreMax}
	aggregator := scoring.NewAggregator(bounds)

	scorer := ai.NewClient(cfg.AIAPIKey, cfg.AIBaseURL, cfg.AIModel, cfg.AIScoreMax)
	renderer := pdf.NewGenerator()
	mail := mailer.New(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.MailFrom)

	evaluation := newEvaluationService(repos, aggregator, scorer, log)

	return &Services{
		Auth:         newAuthService(repos, cfg),
		Registration: newRegistrationService(repos),
		Submission:   newSubmissionService(repos),
		Evaluation:   evaluation,
		Export:       newExportService(repos, evaluation, renderer, mail, bounds, log),
	}
}
