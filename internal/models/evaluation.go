package models

import (
	"time"

	"github.com/google/uuid"
)

// AutomatedRaterKey is the sentinel rater identity for the single automated
// evaluation a submission may carry. Admin evaluations use the admin's UUID
// string as rater key, so the (submission_id, rater_key) pair is unique per
// rater and upserts replace rather than duplicate.
const AutomatedRaterKey = "automated"

// Evaluation is one rater's score for one submission. AdminID is nil for
// the automated evaluation.
type Evaluation struct {
	ID           uuid.UUID          `json:"id"`
	SubmissionID uuid.UUID          `json:"submission_id"`
	AdminID      *uuid.UUID         `json:"admin_id,omitempty"`
	RaterKey     string             `json:"rater_key"`
	Automated    bool               `json:"automated"`
	Score        float64            `json:"score"`
	Notes        string             `json:"notes,omitempty"`
	SubScores    map[string]float64 `json:"sub_scores,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// EmailLog records one outgoing email and its delivery outcome
type EmailLog struct {
	ID             uuid.UUID  `json:"id"`
	RecipientEmail string     `json:"recipient_email"`
	Subject        string     `json:"subject"`
	Content        string     `json:"content,omitempty"`
	Status         string     `json:"status"` // pending, sent, failed
	ErrorMessage   string     `json:"error_message,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	SentAt         *time.Time `json:"sent_at,omitempty"`
}
