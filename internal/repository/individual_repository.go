package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/technofest-ar/platform-api/internal/models"
)

// individualRepository implements IndividualRepository
type individualRepository struct {
	db dbExecutor
}

// NewIndividualRepository creates a new individual repository
func NewIndividualRepository(db dbExecutor) IndividualRepository {
	return &individualRepository{db: db}
}

const individualColumns = `id, registration_type, full_name, membership_number, email, phone, technical_skills, interests, experience_level, preferred_field, project_idea, assigned_team_id, program_version_id, is_assigned, created_at, updated_at`

func scanIndividual(row interface{ Scan(...interface{}) error }) (*models.Individual, error) {
	ind := &models.Individual{}
	err := row.Scan(
		&ind.ID, &ind.RegistrationType, &ind.FullName, &ind.MembershipNumber,
		&ind.Email, &ind.Phone, &ind.TechnicalSkills, &ind.Interests,
		&ind.ExperienceLevel, &ind.PreferredField, &ind.ProjectIdea,
		&ind.AssignedTeamID, &ind.ProgramVersionID, &ind.IsAssigned,
		&ind.CreatedAt, &ind.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return ind, nil
}

// GetByID retrieves an individual by ID
func (r *individualRepository) GetByID(id uuid.UUID) (*models.Individual, error) {
	query := `SELECT ` + individualColumns + ` FROM individuals WHERE id = $1`

	ind, err := scanIndividual(r.db.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("individual %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get individual: %w", err)
	}
	return ind, nil
}

// Create creates a new individual registration
func (r *individualRepository) Create(ind *models.Individual) error {
	if ind.ID == uuid.Nil {
		ind.ID = uuid.New()
	}
	now := time.Now()
	ind.CreatedAt = now
	ind.UpdatedAt = now

	query := `
		INSERT INTO individuals (id, registration_type, full_name, membership_number, email, phone, technical_skills, interests, experience_level, preferred_field, project_idea, assigned_team_id, program_version_id, is_assigned, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	_, err := r.db.Exec(query,
		ind.ID, ind.RegistrationType, ind.FullName, ind.MembershipNumber,
		ind.Email, ind.Phone, ind.TechnicalSkills, ind.Interests,
		ind.ExperienceLevel, ind.PreferredField, ind.ProjectIdea,
		ind.AssignedTeamID, ind.ProgramVersionID, ind.IsAssigned,
		ind.CreatedAt, ind.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create individual: %w", err)
	}
	return nil
}

// GetAll retrieves individuals with pagination
func (r *individualRepository) GetAll(limit, offset int) ([]models.Individual, error) {
	query := `SELECT ` + individualColumns + ` FROM individuals ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query individuals: %w", err)
	}
	defer rows.Close()

	return collectIndividuals(rows)
}

// GetUnassigned retrieves individuals not yet assigned to a team
func (r *individualRepository) GetUnassigned() ([]models.Individual, error) {
	query := `SELECT ` + individualColumns + ` FROM individuals WHERE is_assigned = false ORDER BY created_at`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query unassigned individuals: %w", err)
	}
	defer rows.Close()

	return collectIndividuals(rows)
}

// GetByIDs retrieves the individuals matching the given ids
func (r *individualRepository) GetByIDs(ids []uuid.UUID) ([]models.Individual, error) {
	query := `SELECT ` + individualColumns + ` FROM individuals WHERE id = ANY($1)`

	rows, err := r.db.Query(query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to query individuals by ids: %w", err)
	}
	defer rows.Close()

	return collectIndividuals(rows)
}

// MarkAssigned marks an individual as assigned to the given team
func (r *individualRepository) MarkAssigned(id, teamID uuid.UUID) error {
	query := `UPDATE individuals SET is_assigned = true, assigned_team_id = $2, updated_at = $3 WHERE id = $1`

	result, err := r.db.Exec(query, id, teamID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to mark individual assigned: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("individual %s: %w", id, ErrNotFound)
	}
	return nil
}

func collectIndividuals(rows *sql.Rows) ([]models.Individual, error) {
	var individuals []models.Individual
	for rows.Next() {
		ind, err := scanIndividual(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan individual: %w", err)
		}
		individuals = append(individuals, *ind)
	}
	return individuals, rows.Err()
}
