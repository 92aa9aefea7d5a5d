package repository

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/technofest-ar/platform-api/internal/models"
	"github.com/technofest-ar/platform-api/internal/scoring"
)

// Postgres error codes relevant to concurrent upserts
const (
	pgUniqueViolation      = "23505"
	pgSerializationFailure = "40001"
)

// defaultRaterWeight is used if an evaluation's admin row has gone missing;
// matches the weight a freshly registered admin starts with.
const defaultRaterWeight = 10

// evaluationRepository implements EvaluationRepository
type evaluationRepository struct {
	db dbExecutor
}

// NewEvaluationRepository creates a new evaluation repository
func NewEvaluationRepository(db dbExecutor) EvaluationRepository {
	return &evaluationRepository{db: db}
}

// Upsert inserts or replaces the evaluation for (submission_id, rater_key)
// in a single statement. The unique constraint on the pair makes the
// exists-check-then-write atomic against concurrent writers of the same
// key; on conflict the score, notes and sub-scores are overwritten while
// created_at is preserved.
func (r *evaluationRepository) Upsert(eval *models.Evaluation) error {
	if eval.ID == uuid.Nil {
		eval.ID = uuid.New()
	}
	now := time.Now()

	subScoresJSON, err := json.Marshal(eval.SubScores)
	if err != nil {
		return fmt.Errorf("failed to marshal sub scores: %w", err)
	}

	query := `
		INSERT INTO evaluations (id, submission_id, admin_id, rater_key, is_automated, score, notes, sub_scores, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
		ON CONFLICT (submission_id, rater_key) DO UPDATE SET
			score = EXCLUDED.score,
			notes = EXCLUDED.notes,
			sub_scores = EXCLUDED.sub_scores,
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at, updated_at
	`

	err = r.db.QueryRow(query,
		eval.ID, eval.SubmissionID, eval.AdminID, eval.RaterKey,
		eval.Automated, eval.Score, eval.Notes, subScoresJSON, now,
	).Scan(&eval.ID, &eval.CreatedAt, &eval.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert evaluation: %w", err)
	}
	return nil
}

const evaluationColumns = `id, submission_id, admin_id, rater_key, is_automated, score, notes, sub_scores, created_at, updated_at`

// GetBySubmission retrieves all evaluations for a submission
func (r *evaluationRepository) GetBySubmission(submissionID uuid.UUID) ([]models.Evaluation, error) {
	query := `SELECT ` + evaluationColumns + ` FROM evaluations WHERE submission_id = $1 ORDER BY created_at`

	rows, err := r.db.Query(query, submissionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query evaluations: %w", err)
	}
	defer rows.Close()

	var evals []models.Evaluation
	for rows.Next() {
		var e models.Evaluation
		var subScoresJSON []byte
		err := rows.Scan(
			&e.ID, &e.SubmissionID, &e.AdminID, &e.RaterKey, &e.Automated,
			&e.Score, &e.Notes, &subScoresJSON, &e.CreatedAt, &e.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan evaluation: %w", err)
		}
		if len(subScoresJSON) > 0 {
			if err := json.Unmarshal(subScoresJSON, &e.SubScores); err != nil {
				return nil, fmt.Errorf("failed to unmarshal sub scores: %w", err)
			}
		}
		evals = append(evals, e)
	}
	return evals, rows.Err()
}

// GetRaterScores returns the submission's evaluations joined with each
// issuing admin's weight, in the aggregator's input shape. Automated
// evaluations carry no weight.
func (r *evaluationRepository) GetRaterScores(submissionID uuid.UUID) ([]scoring.RaterScore, error) {
	query := `
		SELECT e.score, COALESCE(a.evaluation_weight, $2), e.is_automated, e.updated_at
		FROM evaluations e
		LEFT JOIN admins a ON a.id = e.admin_id
		WHERE e.submission_id = $1
	`

	rows, err := r.db.Query(query, submissionID, defaultRaterWeight)
	if err != nil {
		return nil, fmt.Errorf("failed to query rater scores: %w", err)
	}
	defer rows.Close()

	var scores []scoring.RaterScore
	for rows.Next() {
		var rs scoring.RaterScore
		if err := rows.Scan(&rs.Score, &rs.Weight, &rs.Automated, &rs.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan rater score: %w", err)
		}
		scores = append(scores, rs)
	}
	return scores, rows.Err()
}

// GetSubmissionIDsWithoutAutomated lists submissions that still lack an
// automated evaluation, oldest first, for bulk evaluation runs.
func (r *evaluationRepository) GetSubmissionIDsWithoutAutomated() ([]uuid.UUID, error) {
	query := `
		SELECT s.id FROM submissions s
		WHERE NOT EXISTS (
			SELECT 1 FROM evaluations e
			WHERE e.submission_id = s.id AND e.is_automated = true
		)
		ORDER BY s.created_at
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query unevaluated submissions: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan submission id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// GetStats summarizes evaluation coverage and averages
func (r *evaluationRepository) GetStats() (*EvaluationStats, error) {
	stats := &EvaluationStats{}

	query := `
		SELECT
			(SELECT COUNT(*) FROM submissions),
			COUNT(DISTINCT submission_id) FILTER (WHERE is_automated),
			COUNT(DISTINCT submission_id) FILTER (WHERE NOT is_automated),
			COUNT(*),
			COUNT(*) FILTER (WHERE is_automated),
			COUNT(*) FILTER (WHERE NOT is_automated),
			COALESCE(AVG(score) FILTER (WHERE is_automated), 0),
			COALESCE(AVG(score) FILTER (WHERE NOT is_automated), 0)
		FROM evaluations
	`

	err := r.db.QueryRow(query).Scan(
		&stats.TotalSubmissions,
		&stats.SubmissionsWithAutomated,
		&stats.SubmissionsWithAdmin,
		&stats.TotalEvaluations,
		&stats.AutomatedEvaluations,
		&stats.AdminEvaluations,
		&stats.AverageAutomatedScore,
		&stats.AverageAdminScore,
	)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to get evaluation stats: %w", err)
	}
	return stats, nil
}

// IsRetryableWriteConflict reports whether the error is a transient
// concurrent-write conflict worth one retry: a unique violation from two
// raters racing the same key, or a serialization failure.
func IsRetryableWriteConflict(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return string(pqErr.Code) == pgUniqueViolation || string(pqErr.Code) == pgSerializationFailure
}
