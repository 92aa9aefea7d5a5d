package repository

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/technofest-ar/platform-api/internal/models"
)

// submissionRepository implements SubmissionRepository
type submissionRepository struct {
	db dbExecutor
}

// NewSubmissionRepository creates a new submission repository
func NewSubmissionRepository(db dbExecutor) SubmissionRepository {
	return &submissionRepository{db: db}
}

const submissionColumns = `id, team_id, program_version_id, submission_version, title, problem_statement, technical_description, scientific_reference, field, image_path, diagram_path, design_path, has_attachments, is_complete, character_count, is_featured, created_at, updated_at`

func scanSubmission(row interface{ Scan(...interface{}) error }) (*models.Submission, error) {
	s := &models.Submission{}
	err := row.Scan(
		&s.ID, &s.TeamID, &s.ProgramVersionID, &s.SubmissionVersion,
		&s.Title, &s.ProblemStatement, &s.TechnicalDescription,
		&s.ScientificReference, &s.Field, &s.ImagePath, &s.DiagramPath,
		&s.DesignPath, &s.HasAttachments, &s.IsComplete, &s.CharacterCount,
		&s.IsFeatured, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// GetByID retrieves a submission by ID
func (r *submissionRepository) GetByID(id uuid.UUID) (*models.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE id = $1`

	s, err := scanSubmission(r.db.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("submission %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}
	return s, nil
}

// Create creates a new submission
func (r *submissionRepository) Create(s *models.Submission) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	now := time.Now()
	s.CreatedAt = now
	s.UpdatedAt = now

	query := `
		INSERT INTO submissions (` + submissionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`

	_, err := r.db.Exec(query,
		s.ID, s.TeamID, s.ProgramVersionID, s.SubmissionVersion,
		s.Title, s.ProblemStatement, s.TechnicalDescription,
		s.ScientificReference, s.Field, s.ImagePath, s.DiagramPath,
		s.DesignPath, s.HasAttachments, s.IsComplete, s.CharacterCount,
		s.IsFeatured, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create submission: %w", err)
	}
	return nil
}

// UpdateAttachments persists attachment paths and the has_attachments flag
func (r *submissionRepository) UpdateAttachments(s *models.Submission) error {
	s.UpdatedAt = time.Now()

	query := `
		UPDATE submissions SET
			image_path = $2, diagram_path = $3, design_path = $4,
			has_attachments = $5, updated_at = $6
		WHERE id = $1
	`

	result, err := r.db.Exec(query, s.ID, s.ImagePath, s.DiagramPath, s.DesignPath, s.HasAttachments, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update submission attachments: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("submission %s: %w", s.ID, ErrNotFound)
	}
	return nil
}

// GetAll retrieves submissions matching the filters
func (r *submissionRepository) GetAll(filters SubmissionFilters) ([]models.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions`
	args := []interface{}{}
	where := ``

	if filters.Field != "" {
		args = append(args, filters.Field)
		where = ` WHERE field = $` + strconv.Itoa(len(args))
	}
	if filters.FeaturedOnly {
		if where == "" {
			where = ` WHERE is_featured = true`
		} else {
			where += ` AND is_featured = true`
		}
	}

	query += where + ` ORDER BY created_at DESC`

	if filters.Limit > 0 {
		args = append(args, filters.Limit)
		query += ` LIMIT $` + strconv.Itoa(len(args))
	}
	if filters.Offset > 0 {
		args = append(args, filters.Offset)
		query += ` OFFSET $` + strconv.Itoa(len(args))
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query submissions: %w", err)
	}
	defer rows.Close()

	return collectSubmissions(rows)
}

// GetByTeam retrieves all submissions of a team, newest version first
func (r *submissionRepository) GetByTeam(teamID uuid.UUID) ([]models.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE team_id = $1 ORDER BY submission_version DESC`

	rows, err := r.db.Query(query, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to query team submissions: %w", err)
	}
	defer rows.Close()

	return collectSubmissions(rows)
}

// CountByTeamAndVersion counts a team's submissions within one program edition
func (r *submissionRepository) CountByTeamAndVersion(teamID, programVersionID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM submissions WHERE team_id = $1 AND program_version_id = $2`

	var count int
	if err := r.db.QueryRow(query, teamID, programVersionID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count submissions: %w", err)
	}
	return count, nil
}

// GetFeatured retrieves the submissions staff flagged for the leaderboard
func (r *submissionRepository) GetFeatured() ([]models.Submission, error) {
	return r.GetAll(SubmissionFilters{FeaturedOnly: true})
}

// SetFeatured flags or unflags a submission for the public showcase
func (r *submissionRepository) SetFeatured(id uuid.UUID, featured bool) error {
	query := `UPDATE submissions SET is_featured = $2, updated_at = $3 WHERE id = $1`

	result, err := r.db.Exec(query, id, featured, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update featured flag: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("submission %s: %w", id, ErrNotFound)
	}
	return nil
}

// GetStats summarizes submissions within one program edition
func (r *submissionRepository) GetStats(programVersionID uuid.UUID) (*SubmissionStats, error) {
	stats := &SubmissionStats{FieldDistribution: make(map[string]int)}

	query := `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE has_attachments)
		FROM submissions WHERE program_version_id = $1
	`
	if err := r.db.QueryRow(query, programVersionID).Scan(&stats.Total, &stats.WithAttachments); err != nil {
		return nil, fmt.Errorf("failed to get submission stats: %w", err)
	}

	rows, err := r.db.Query(`SELECT field, COUNT(*) FROM submissions WHERE program_version_id = $1 GROUP BY field`, programVersionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get field distribution: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var field string
		var count int
		if err := rows.Scan(&field, &count); err != nil {
			return nil, fmt.Errorf("failed to scan field distribution: %w", err)
		}
		stats.FieldDistribution[field] = count
	}
	return stats, rows.Err()
}

func collectSubmissions(rows *sql.Rows) ([]models.Submission, error) {
	var submissions []models.Submission
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		submissions = append(submissions, *s)
	}
	return submissions, rows.Err()
}
