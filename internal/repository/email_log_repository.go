package repository

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/technofest-ar/platform-api/internal/models"
)

// emailLogRepository implements EmailLogRepository
type emailLogRepository struct {
	db dbExecutor
}

// NewEmailLogRepository creates a new email log repository
func NewEmailLogRepository(db dbExecutor) EmailLogRepository {
	return &emailLogRepository{db: db}
}

// Create records a pending outgoing email
func (r *emailLogRepository) Create(entry *models.EmailLog) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.Status == "" {
		entry.Status = "pending"
	}
	entry.CreatedAt = time.Now()

	query := `
		INSERT INTO email_logs (id, recipient_email, subject, content, status, error_message, created_at, sent_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.Exec(query,
		entry.ID, entry.RecipientEmail, entry.Subject, entry.Content,
		entry.Status, entry.ErrorMessage, entry.CreatedAt, entry.SentAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create email log: %w", err)
	}
	return nil
}

// MarkSent flags a logged email as delivered
func (r *emailLogRepository) MarkSent(id uuid.UUID) error {
	query := `UPDATE email_logs SET status = 'sent', sent_at = $2 WHERE id = $1`

	if _, err := r.db.Exec(query, id, time.Now()); err != nil {
		return fmt.Errorf("failed to mark email sent: %w", err)
	}
	return nil
}

// MarkFailed flags a logged email as failed with the delivery error
func (r *emailLogRepository) MarkFailed(id uuid.UUID, reason string) error {
	query := `UPDATE email_logs SET status = 'failed', error_message = $2 WHERE id = $1`

	if _, err := r.db.Exec(query, id, reason); err != nil {
		return fmt.Errorf("failed to mark email failed: %w", err)
	}
	return nil
}

// GetAll retrieves email log entries, newest first
func (r *emailLogRepository) GetAll(limit, offset int) ([]models.EmailLog, error) {
	query := `
		SELECT id, recipient_email, subject, content, status, error_message, created_at, sent_at
		FROM email_logs ORDER BY created_at DESC LIMIT $1 OFFSET $2
	`

	rows, err := r.db.Query(query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query email logs: %w", err)
	}
	defer rows.Close()

	var logs []models.EmailLog
	for rows.Next() {
		var l models.EmailLog
		err := rows.Scan(&l.ID, &l.RecipientEmail, &l.Subject, &l.Content, &l.Status, &l.ErrorMessage, &l.CreatedAt, &l.SentAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan email log: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
