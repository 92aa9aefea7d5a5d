package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/technofest-ar/platform-api/internal/ai"
	apperrors "github.com/technofest-ar/platform-api/internal/errors"
	"github.com/technofest-ar/platform-api/internal/logger"
	"github.com/technofest-ar/platform-api/internal/models"
	"github.com/technofest-ar/platform-api/internal/repository"
	"github.com/technofest-ar/platform-api/internal/scoring"
)

// defaultRankingBatchSize is how many submissions one ranking page reads
const defaultRankingBatchSize = 1000

type evaluationService struct {
	repos      *repository.Repositories
	aggregator *scoring.Aggregator
	scorer     *ai.Client
	log        logger.Logger

	rankingBatchSize int
}

func newEvaluationService(repos *repository.Repositories, aggregator *scoring.Aggregator, scorer *ai.Client, log logger.Logger) *evaluationService {
	return &evaluationService{
		repos:            repos,
		aggregator:       aggregator,
		scorer:           scorer,
		log:              log,
		rankingBatchSize: defaultRankingBatchSize,
	}
}

// SubmitAdminEvaluation records one admin's score for a submission. The
// upsert keys on (submission, rater), so resubmitting replaces the admin's
// previous score instead of adding a second row. Write races are retried
// once; a second failure surfaces as a conflict.
func (s *evaluationService) SubmitAdminEvaluation(adminID, submissionID uuid.UUID, req AdminEvaluationRequest) (*models.Evaluation, error) {
	if req.Score == nil {
		return nil, apperrors.ValidationError("score is required", nil)
	}
	score := *req.Score

	bounds := s.aggregator.Bounds()
	if score < 0 || score > bounds.AdminMax {
		return nil, apperrors.ValidationError(
			fmt.Sprintf("score must be between 0 and %g, got %g", bounds.AdminMax, score), nil)
	}

	if err := s.requireSubmission(submissionID); err != nil {
		return nil, err
	}

	if _, err := s.repos.Admin.GetByID(adminID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("admin not found", err)
		}
		return nil, apperrors.DatabaseError("failed to load admin", err)
	}

	id := adminID
	eval := &models.Evaluation{
		SubmissionID: submissionID,
		AdminID:      &id,
		RaterKey:     adminID.String(),
		Score:        score,
		Notes:        req.Notes,
		SubScores:    req.SubScores,
	}

	if err := s.upsertWithRetry(eval); err != nil {
		return nil, err
	}
	return eval, nil
}

// RunAutomated produces the submission's single automated evaluation.
// Scorer degradation is not an error: the deterministic fallback score is
// stored and the degradation logged.
func (s *evaluationService) RunAutomated(ctx context.Context, submissionID uuid.UUID) (*models.Evaluation, error) {
	eval, _, err := s.runAutomated(ctx, submissionID)
	return eval, err
}

// runAutomated additionally reports whether the stored score came from the
// deterministic fallback rather than the live scorer.
func (s *evaluationService) runAutomated(ctx context.Context, submissionID uuid.UUID) (*models.Evaluation, bool, error) {
	submission, err := s.repos.Submission.GetByID(submissionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, false, apperrors.NotFound("submission not found", err)
		}
		return nil, false, apperrors.DatabaseError("failed to load submission", err)
	}

	verdict, err := s.scorer.Evaluate(ctx, ai.ProjectInput{
		Title:                submission.Title,
		ProblemStatement:     submission.ProblemStatement,
		TechnicalDescription: submission.TechnicalDescription,
		ScientificReference:  submission.ScientificReference,
		Field:                submission.Field,
	})
	if err != nil {
		return nil, false, apperrors.ExternalService("automated evaluation was cancelled", err)
	}
	if verdict.Fallback && s.scorer.HasLiveEndpoint() {
		s.log.Warn("automated scorer degraded to fallback", "submission", submissionID.String())
	}

	score := verdict.Score
	if max := s.aggregator.Bounds().AIMax; score > max {
		score = max
	}

	eval := &models.Evaluation{
		SubmissionID: submissionID,
		RaterKey:     models.AutomatedRaterKey,
		Automated:    true,
		Score:        score,
		Notes:        verdict.Notes,
		SubScores:    verdict.SubScores,
	}

	if err := s.upsertWithRetry(eval); err != nil {
		return nil, false, err
	}
	return eval, verdict.Fallback, nil
}

// RunAutomatedBulk evaluates every submission still lacking an automated
// evaluation. Each item succeeds or fails on its own; only context
// cancellation stops the run early.
func (s *evaluationService) RunAutomatedBulk(ctx context.Context) (*BulkRunResult, error) {
	ids, err := s.repos.Evaluation.GetSubmissionIDsWithoutAutomated()
	if err != nil {
		return nil, apperrors.DatabaseError("failed to find unevaluated submissions", err)
	}

	result := &BulkRunResult{Total: len(ids), Details: make([]BulkItemResult, 0, len(ids))}
	for _, id := range ids {
		if ctx.Err() != nil {
			return result, apperrors.ExternalService("bulk evaluation run was cancelled", ctx.Err())
		}

		eval, fallback, err := s.runAutomated(ctx, id)
		if err != nil {
			result.Failed++
			result.Details = append(result.Details, BulkItemResult{SubmissionID: id, Error: err.Error()})
			s.log.Error("bulk automated evaluation failed for submission", err, "submission", id.String())
			continue
		}

		result.Scored++
		result.Details = append(result.Details, BulkItemResult{
			SubmissionID: id,
			Score:        eval.Score,
			Fallback:     fallback,
		})
	}

	return result, nil
}

func (s *evaluationService) GetEvaluations(submissionID uuid.UUID) ([]models.Evaluation, error) {
	if err := s.requireSubmission(submissionID); err != nil {
		return nil, err
	}

	evals, err := s.repos.Evaluation.GetBySubmission(submissionID)
	if err != nil {
		return nil, apperrors.DatabaseError("failed to load evaluations", err)
	}
	return evals, nil
}

// GetScore aggregates a submission's evaluations into its current score
func (s *evaluationService) GetScore(submissionID uuid.UUID) (*scoring.Result, error) {
	if err := s.requireSubmission(submissionID); err != nil {
		return nil, err
	}

	raterScores, err := s.repos.Evaluation.GetRaterScores(submissionID)
	if err != nil {
		return nil, apperrors.DatabaseError("failed to load rater scores", err)
	}

	result := s.aggregator.Aggregate(raterScores)
	return &result, nil
}

// TopSubmissions ranks all submissions and returns the first n leaderboard
// entries. n <= 0 yields an empty leaderboard, never an error.
func (s *evaluationService) TopSubmissions(n int) ([]TopEntry, error) {
	if n <= 0 {
		return []TopEntry{}, nil
	}

	entries, err := s.rankAll()
	if err != nil {
		return nil, err
	}
	if n < len(entries) {
		entries = entries[:n]
	}
	return entries, nil
}

// rankAll aggregates and orders every submission (unscored ones last),
// paging through the store so large editions are ranked completely.
func (s *evaluationService) rankAll() ([]TopEntry, error) {
	var submissions []models.Submission
	for offset := 0; ; offset += s.rankingBatchSize {
		batch, err := s.repos.Submission.GetAll(repository.SubmissionFilters{Limit: s.rankingBatchSize, Offset: offset})
		if err != nil {
			return nil, apperrors.DatabaseError("failed to list submissions", err)
		}
		submissions = append(submissions, batch...)
		if len(batch) < s.rankingBatchSize {
			break
		}
	}

	byID := make(map[uuid.UUID]models.Submission, len(submissions))
	ranked := make([]scoring.RankedSubmission, 0, len(submissions))
	for _, sub := range submissions {
		raterScores, err := s.repos.Evaluation.GetRaterScores(sub.ID)
		if err != nil {
			return nil, apperrors.DatabaseError("failed to load rater scores", err)
		}
		byID[sub.ID] = sub
		ranked = append(ranked, scoring.RankedSubmission{
			SubmissionID: sub.ID,
			Result:       s.aggregator.Aggregate(raterScores),
		})
	}

	top := scoring.TopN(ranked, len(ranked))

	entries := make([]TopEntry, 0, len(top))
	for i, r := range top {
		sub := byID[r.SubmissionID]

		teamName := ""
		if team, err := s.repos.Team.GetByID(sub.TeamID); err == nil {
			teamName = team.TeamName
		}

		entries = append(entries, TopEntry{
			Rank:         i + 1,
			SubmissionID: sub.ID,
			TeamID:       sub.TeamID,
			TeamName:     teamName,
			Title:        sub.Title,
			Field:        sub.Field,
			Score:        r.Result,
		})
	}
	return entries, nil
}

func (s *evaluationService) Stats() (*repository.EvaluationStats, error) {
	stats, err := s.repos.Evaluation.GetStats()
	if err != nil {
		return nil, apperrors.DatabaseError("failed to load evaluation stats", err)
	}
	return stats, nil
}

func (s *evaluationService) requireSubmission(id uuid.UUID) error {
	if _, err := s.repos.Submission.GetByID(id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("submission not found", err)
		}
		return apperrors.DatabaseError("failed to load submission", err)
	}
	return nil
}

// upsertWithRetry writes the evaluation, retrying once when the database
// reports a unique or serialization race with a concurrent writer.
func (s *evaluationService) upsertWithRetry(eval *models.Evaluation) error {
	err := s.repos.Evaluation.Upsert(eval)
	if err == nil {
		return nil
	}
	if !repository.IsRetryableWriteConflict(err) {
		return apperrors.DatabaseError("failed to store evaluation", err)
	}

	s.log.Warn("retrying evaluation upsert after write conflict", "rater", eval.RaterKey)
	if err := s.repos.Evaluation.Upsert(eval); err != nil {
		if repository.IsRetryableWriteConflict(err) {
			return apperrors.Conflict("evaluation was updated concurrently, please retry", err)
		}
		return apperrors.DatabaseError("failed to store evaluation", err)
	}
	return nil
}
