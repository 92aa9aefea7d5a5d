package repository

import (
	"errors"

	"github.com/google/uuid"
	"github.com/technofest-ar/platform-api/internal/models"
	"github.com/technofest-ar/platform-api/internal/scoring"
)

// ErrNotFound is returned when a requested row does not exist
var ErrNotFound = errors.New("not found")

// AdminRepository defines the interface for admin data access
type AdminRepository interface {
	GetByID(id uuid.UUID) (*models.Admin, error)
	GetByUsername(username string) (*models.Admin, error)
	ExistsByUsernameOrEmail(username, email string) (bool, error)
	Create(admin *models.Admin) error
	UpdateWeight(id uuid.UUID, weight float64) error
	GetAll() ([]models.Admin, error)
	Count() (int, error)
}

// TeamRepository defines the interface for team data access
type TeamRepository interface {
	GetByID(id uuid.UUID) (*models.Team, error)
	Create(team *models.Team) error
	UpdateTelegramLink(id uuid.UUID, link string) error
	GetAll(limit, offset int) ([]models.Team, error)
	SearchByName(name string) ([]models.Team, error)

	AddMember(member *models.TeamMember) error
	GetMembers(teamID uuid.UUID) ([]models.TeamMember, error)
	GetMemberByEmail(email string) (*models.TeamMember, error)
}

// IndividualRepository defines the interface for individual registrations
type IndividualRepository interface {
	GetByID(id uuid.UUID) (*models.Individual, error)
	Create(individual *models.Individual) error
	GetAll(limit, offset int) ([]models.Individual, error)
	GetUnassigned() ([]models.Individual, error)
	GetByIDs(ids []uuid.UUID) ([]models.Individual, error)
	MarkAssigned(id, teamID uuid.UUID) error
}

// SubmissionRepository defines the interface for project submission data access
type SubmissionRepository interface {
	GetByID(id uuid.UUID) (*models.Submission, error)
	Create(submission *models.Submission) error
	UpdateAttachments(submission *models.Submission) error
	GetAll(filters SubmissionFilters) ([]models.Submission, error)
	GetByTeam(teamID uuid.UUID) ([]models.Submission, error)
	CountByTeamAndVersion(teamID, programVersionID uuid.UUID) (int, error)
	GetFeatured() ([]models.Submission, error)
	SetFeatured(id uuid.UUID, featured bool) error
	GetStats(programVersionID uuid.UUID) (*SubmissionStats, error)
}

// EvaluationRepository defines the interface for evaluation data access.
// Upsert is the single writer of evaluation rows; the (submission_id,
// rater_key) pair is unique so concurrent writes by the same rater collapse
// into one row.
type EvaluationRepository interface {
	Upsert(eval *models.Evaluation) error
	GetBySubmission(submissionID uuid.UUID) ([]models.Evaluation, error)
	// GetRaterScores returns each evaluation's score joined with the issuing
	// admin's configured weight, in the shape the aggregator consumes.
	GetRaterScores(submissionID uuid.UUID) ([]scoring.RaterScore, error)
	GetSubmissionIDsWithoutAutomated() ([]uuid.UUID, error)
	GetStats() (*EvaluationStats, error)
}

// ProgramVersionRepository defines the interface for competition editions
type ProgramVersionRepository interface {
	GetActive() (*models.ProgramVersion, error)
	// Create deactivates all prior versions and inserts the new one as active
	Create(version *models.ProgramVersion) error
	GetAll() ([]models.ProgramVersion, error)
}

// EmailLogRepository defines the interface for the outgoing mail log
type EmailLogRepository interface {
	Create(entry *models.EmailLog) error
	MarkSent(id uuid.UUID) error
	MarkFailed(id uuid.UUID, reason string) error
	GetAll(limit, offset int) ([]models.EmailLog, error)
}

// TransactionManager defines the interface for database transaction management
type TransactionManager interface {
	WithTransaction(fn func(repos *Repositories) error) error
}

// Repositories groups all repository interfaces
type Repositories struct {
	Admin          AdminRepository
	Team           TeamRepository
	Individual     IndividualRepository
	Submission     SubmissionRepository
	Evaluation     EvaluationRepository
	ProgramVersion ProgramVersionRepository
	EmailLog       EmailLogRepository
	Tx             TransactionManager
}

// SubmissionFilters defines filters for querying submissions
type SubmissionFilters struct {
	Field        string
	FeaturedOnly bool
	Limit        int
	Offset       int
}

// SubmissionStats summarizes submissions within one program edition
type SubmissionStats struct {
	Total             int            `json:"total_projects"`
	WithAttachments   int            `json:"with_attachments"`
	FieldDistribution map[string]int `json:"field_distribution"`
}

// EvaluationStats summarizes evaluation coverage across submissions
type EvaluationStats struct {
	TotalSubmissions          int     `json:"total_submissions"`
	SubmissionsWithAutomated  int     `json:"submissions_with_automated"`
	SubmissionsWithAdmin      int     `json:"submissions_with_admin"`
	TotalEvaluations          int     `json:"total_evaluations"`
	AutomatedEvaluations      int     `json:"automated_evaluations"`
	AdminEvaluations          int     `json:"admin_evaluations"`
	AverageAutomatedScore     float64 `json:"average_automated_score"`
	AverageAdminScore         float64 `json:"average_admin_score"`
}
