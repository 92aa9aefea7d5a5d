package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/technofest-ar/platform-api/internal/ai"
	apperrors "github.com/technofest-ar/platform-api/internal/errors"
	"github.com/technofest-ar/platform-api/internal/logger"
	"github.com/technofest-ar/platform-api/internal/models"
	"github.com/technofest-ar/platform-api/internal/scoring"
)

func newTestEvaluationService(tr *testRepos) *evaluationService {
	aggregator := scoring.NewAggregator(scoring.DefaultBounds())
	scorer := ai.NewClient("", "", "deepseek-chat", 25)
	return newEvaluationService(tr.repos, aggregator, scorer, logger.NewSimpleLogger())
}

func TestSubmitAdminEvaluation_StoresScore(t *testing.T) {
	tr := newTestRepos()
	version := tr.seedActiveVersion()
	team, _ := tr.seedTeam(version.ID)
	sub := tr.seedSubmission(team.ID, version.ID)

	admin := &models.Admin{Username: "judge", Email: "judge@example.com", EvaluationWeight: 10}
	require.NoError(t, tr.admin.Create(admin))

	svc := newTestEvaluationService(tr)

	eval, err := svc.SubmitAdminEvaluation(admin.ID, sub.ID, AdminEvaluationRequest{Score: floatPtr(60), Notes: "good"})
	require.NoError(t, err)

	assert.Equal(t, admin.ID.String(), eval.RaterKey)
	assert.False(t, eval.Automated)
	assert.Equal(t, 60.0, eval.Score)
	require.NotNil(t, eval.AdminID)
	assert.Equal(t, admin.ID, *eval.AdminID)
}

func TestSubmitAdminEvaluation_ResubmissionReplaces(t *testing.T) {
	tr := newTestRepos()
	version := tr.seedActiveVersion()
	team, _ := tr.seedTeam(version.ID)
	sub := tr.seedSubmission(team.ID, version.ID)

	admin := &models.Admin{Username: "judge", Email: "judge@example.com"}
	require.NoError(t, tr.admin.Create(admin))

	svc := newTestEvaluationService(tr)

	first, err := svc.SubmitAdminEvaluation(admin.ID, sub.ID, AdminEvaluationRequest{Score: floatPtr(40)})
	require.NoError(t, err)

	second, err := svc.SubmitAdminEvaluation(admin.ID, sub.ID, AdminEvaluationRequest{Score: floatPtr(65)})
	require.NoError(t, err)

	// Same row updated, not a second one added
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)

	evals, err := svc.GetEvaluations(sub.ID)
	require.NoError(t, err)
	require.Len(t, evals, 1)
	assert.Equal(t, 65.0, evals[0].Score)
}

func TestSubmitAdminEvaluation_BoundViolationNamesBound(t *testing.T) {
	tr := newTestRepos()
	version := tr.seedActiveVersion()
	team, _ := tr.seedTeam(version.ID)
	sub := tr.seedSubmission(team.ID, version.ID)

	admin := &models.Admin{Username: "judge", Email: "judge@example.com"}
	require.NoError(t, tr.admin.Create(admin))

	svc := newTestEvaluationService(tr)

	_, err := svc.SubmitAdminEvaluation(admin.ID, sub.ID, AdminEvaluationRequest{Score: floatPtr(80)})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.Contains(t, err.Error(), "between 0 and 75")

	_, err = svc.SubmitAdminEvaluation(admin.ID, sub.ID, AdminEvaluationRequest{Score: floatPtr(-1)})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestSubmitAdminEvaluation_UnknownSubmission(t *testing.T) {
	tr := newTestRepos()
	admin := &models.Admin{Username: "judge", Email: "judge@example.com"}
	require.NoError(t, tr.admin.Create(admin))

	svc := newTestEvaluationService(tr)

	_, err := svc.SubmitAdminEvaluation(admin.ID, uuid.New(), AdminEvaluationRequest{Score: floatPtr(50)})
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestSubmitAdminEvaluation_RetriesWriteConflictOnce(t *testing.T) {
	tr := newTestRepos()
	version := tr.seedActiveVersion()
	team, _ := tr.seedTeam(version.ID)
	sub := tr.seedSubmission(team.ID, version.ID)

	admin := &models.Admin{Username: "judge", Email: "judge@example.com"}
	require.NoError(t, tr.admin.Create(admin))

	svc := newTestEvaluationService(tr)

	// First attempt hits a serialization failure, the retry succeeds
	tr.evaluation.upsertErrs = []error{&pq.Error{Code: "40001"}}
	eval, err := svc.SubmitAdminEvaluation(admin.ID, sub.ID, AdminEvaluationRequest{Score: floatPtr(55)})
	require.NoError(t, err)
	assert.Equal(t, 55.0, eval.Score)

	// Two consecutive conflicts surface as CONFLICT
	tr.evaluation.upsertErrs = []error{&pq.Error{Code: "23505"}, &pq.Error{Code: "23505"}}
	_, err = svc.SubmitAdminEvaluation(admin.ID, sub.ID, AdminEvaluationRequest{Score: floatPtr(56)})
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))

	// A non-retryable failure is not retried
	tr.evaluation.upsertErrs = []error{fmt.Errorf("connection reset")}
	_, err = svc.SubmitAdminEvaluation(admin.ID, sub.ID, AdminEvaluationRequest{Score: floatPtr(57)})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeDatabaseError, apperrors.CodeOf(err))
}

func TestRunAutomated_SingleRowPerSubmission(t *testing.T) {
	tr := newTestRepos()
	version := tr.seedActiveVersion()
	team, _ := tr.seedTeam(version.ID)
	sub := tr.seedSubmission(team.ID, version.ID)

	svc := newTestEvaluationService(tr)

	first, err := svc.RunAutomated(context.Background(), sub.ID)
	require.NoError(t, err)
	assert.True(t, first.Automated)
	assert.Equal(t, models.AutomatedRaterKey, first.RaterKey)
	assert.Nil(t, first.AdminID)
	assert.LessOrEqual(t, first.Score, 25.0)

	// Re-running replaces the automated row instead of adding another
	second, err := svc.RunAutomated(context.Background(), sub.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	evals, err := svc.GetEvaluations(sub.ID)
	require.NoError(t, err)
	require.Len(t, evals, 1)
	assert.True(t, evals[0].Automated)
}

func TestRunAutomated_UnknownSubmission(t *testing.T) {
	tr := newTestRepos()
	svc := newTestEvaluationService(tr)

	_, err := svc.RunAutomated(context.Background(), uuid.New())
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestRunAutomatedBulk_PerItemOutcome(t *testing.T) {
	tr := newTestRepos()
	version := tr.seedActiveVersion()
	team, _ := tr.seedTeam(version.ID)
	subA := tr.seedSubmission(team.ID, version.ID)
	subB := tr.seedSubmission(team.ID, version.ID)

	// One pending id points at a deleted submission and must fail alone
	missing := uuid.New()
	tr.evaluation.pendingAutomated = []uuid.UUID{subA.ID, missing, subB.ID}

	svc := newTestEvaluationService(tr)

	result, err := svc.RunAutomatedBulk(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 2, result.Scored)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Details, 3)
	assert.Empty(t, result.Details[0].Error)
	assert.NotEmpty(t, result.Details[1].Error)
	assert.Empty(t, result.Details[2].Error)
}

func TestRunAutomatedBulk_CancelledContext(t *testing.T) {
	tr := newTestRepos()
	version := tr.seedActiveVersion()
	team, _ := tr.seedTeam(version.ID)
	sub := tr.seedSubmission(team.ID, version.ID)
	tr.evaluation.pendingAutomated = []uuid.UUID{sub.ID}

	svc := newTestEvaluationService(tr)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := svc.RunAutomatedBulk(ctx)
	require.Error(t, err)
	assert.Equal(t, 0, result.Scored)
}

func TestGetScore_CombinesAdminAndAutomated(t *testing.T) {
	tr := newTestRepos()
	version := tr.seedActiveVersion()
	team, _ := tr.seedTeam(version.ID)
	sub := tr.seedSubmission(team.ID, version.ID)

	judgeA := &models.Admin{Username: "a", Email: "a@example.com", EvaluationWeight: 10}
	judgeB := &models.Admin{Username: "b", Email: "b@example.com", EvaluationWeight: 30}
	require.NoError(t, tr.admin.Create(judgeA))
	require.NoError(t, tr.admin.Create(judgeB))
	tr.evaluation.weights[judgeA.ID.String()] = 10
	tr.evaluation.weights[judgeB.ID.String()] = 30

	svc := newTestEvaluationService(tr)

	_, err := svc.SubmitAdminEvaluation(judgeA.ID, sub.ID, AdminEvaluationRequest{Score: floatPtr(60)})
	require.NoError(t, err)
	_, err = svc.SubmitAdminEvaluation(judgeB.ID, sub.ID, AdminEvaluationRequest{Score: floatPtr(75)})
	require.NoError(t, err)

	score, err := svc.GetScore(sub.ID)
	require.NoError(t, err)

	// (60*10 + 75*30) / 40 = 71.25
	assert.Equal(t, 71.25, score.AdminComponent)
	assert.Equal(t, 2, score.RaterCount)
	assert.False(t, score.HasAutomated)
	require.NotNil(t, score.Final)
	assert.Equal(t, 71.25, *score.Final)
}

func TestGetScore_UnscoredSubmission(t *testing.T) {
	tr := newTestRepos()
	version := tr.seedActiveVersion()
	team, _ := tr.seedTeam(version.ID)
	sub := tr.seedSubmission(team.ID, version.ID)

	svc := newTestEvaluationService(tr)

	score, err := svc.GetScore(sub.ID)
	require.NoError(t, err)
	assert.Nil(t, score.Final)
	assert.Equal(t, 0, score.RaterCount)
}

func TestTopSubmissions_OrderAndDefaultSize(t *testing.T) {
	tr := newTestRepos()
	version := tr.seedActiveVersion()
	team, _ := tr.seedTeam(version.ID)

	judge := &models.Admin{Username: "judge", Email: "judge@example.com", EvaluationWeight: 10}
	require.NoError(t, tr.admin.Create(judge))
	tr.evaluation.weights[judge.ID.String()] = 10

	svc := newTestEvaluationService(tr)

	scores := []float64{30, 70, 50, 10, 60, 20, 40}
	subs := make([]*models.Submission, 0, len(scores))
	for i, sc := range scores {
		sub := tr.seedSubmission(team.ID, version.ID)
		sub.Title = fmt.Sprintf("Project %d", i)
		subs = append(subs, sub)
		_, err := svc.SubmitAdminEvaluation(judge.ID, sub.ID, AdminEvaluationRequest{Score: floatPtr(sc)})
		require.NoError(t, err)
	}
	// One unscored submission must never enter the leaderboard ahead of
	// scored ones
	tr.seedSubmission(team.ID, version.ID)

	top, err := svc.TopSubmissions(scoring.DefaultTopN)
	require.NoError(t, err)
	require.Len(t, top, scoring.DefaultTopN)

	wantOrder := []float64{70, 60, 50, 40, 30}
	for i, entry := range top {
		assert.Equal(t, i+1, entry.Rank)
		require.NotNil(t, entry.Score.Final)
		assert.Equal(t, wantOrder[i], *entry.Score.Final)
		assert.Equal(t, "AgroTech", entry.TeamName)
	}
}

func TestTopSubmissions_ExplicitSize(t *testing.T) {
	tr := newTestRepos()
	version := tr.seedActiveVersion()
	team, _ := tr.seedTeam(version.ID)

	judge := &models.Admin{Username: "judge", Email: "judge@example.com", EvaluationWeight: 10}
	require.NoError(t, tr.admin.Create(judge))

	svc := newTestEvaluationService(tr)

	for i := 0; i < 4; i++ {
		sub := tr.seedSubmission(team.ID, version.ID)
		_, err := svc.SubmitAdminEvaluation(judge.ID, sub.ID, AdminEvaluationRequest{Score: floatPtr(float64(10 * (i + 1)))})
		require.NoError(t, err)
	}

	top, err := svc.TopSubmissions(2)
	require.NoError(t, err)
	assert.Len(t, top, 2)

	all, err := svc.TopSubmissions(100)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestSubmitAdminEvaluation_ZeroScoreAccepted(t *testing.T) {
	tr := newTestRepos()
	version := tr.seedActiveVersion()
	team, _ := tr.seedTeam(version.ID)
	sub := tr.seedSubmission(team.ID, version.ID)

	admin := &models.Admin{Username: "judge", Email: "judge@example.com"}
	require.NoError(t, tr.admin.Create(admin))

	svc := newTestEvaluationService(tr)

	// Zero is the lower edge of the valid range, not a missing value
	eval, err := svc.SubmitAdminEvaluation(admin.ID, sub.ID, AdminEvaluationRequest{Score: floatPtr(0)})
	require.NoError(t, err)
	assert.Equal(t, 0.0, eval.Score)

	evals, err := svc.GetEvaluations(sub.ID)
	require.NoError(t, err)
	require.Len(t, evals, 1)
	assert.Equal(t, 0.0, evals[0].Score)

	_, err = svc.SubmitAdminEvaluation(admin.ID, sub.ID, AdminEvaluationRequest{})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestSubmitAdminEvaluation_StoresSubScores(t *testing.T) {
	tr := newTestRepos()
	version := tr.seedActiveVersion()
	team, _ := tr.seedTeam(version.ID)
	sub := tr.seedSubmission(team.ID, version.ID)

	admin := &models.Admin{Username: "judge", Email: "judge@example.com"}
	require.NoError(t, tr.admin.Create(admin))

	svc := newTestEvaluationService(tr)

	req := AdminEvaluationRequest{
		Score:     floatPtr(62),
		Notes:     "strong prototype",
		SubScores: map[string]float64{"innovation": 18, "feasibility": 14},
	}
	_, err := svc.SubmitAdminEvaluation(admin.ID, sub.ID, req)
	require.NoError(t, err)

	evals, err := svc.GetEvaluations(sub.ID)
	require.NoError(t, err)
	require.Len(t, evals, 1)
	assert.Equal(t, 18.0, evals[0].SubScores["innovation"])
	assert.Equal(t, 14.0, evals[0].SubScores["feasibility"])

	// Resubmission overwrites the sub-scores along with the score
	req.SubScores = map[string]float64{"innovation": 20}
	_, err = svc.SubmitAdminEvaluation(admin.ID, sub.ID, req)
	require.NoError(t, err)

	evals, err = svc.GetEvaluations(sub.ID)
	require.NoError(t, err)
	require.Len(t, evals, 1)
	assert.Equal(t, 20.0, evals[0].SubScores["innovation"])
	assert.NotContains(t, evals[0].SubScores, "feasibility")
}

func TestRunAutomatedBulk_ReportsFallbackOnScorerFailure(t *testing.T) {
	tr := newTestRepos()
	version := tr.seedActiveVersion()
	team, _ := tr.seedTeam(version.ID)
	sub := tr.seedSubmission(team.ID, version.ID)
	tr.evaluation.pendingAutomated = []uuid.UUID{sub.ID}

	// A configured endpoint that cannot be reached degrades per item, and
	// the per-item status must say so
	aggregator := scoring.NewAggregator(scoring.DefaultBounds())
	scorer := ai.NewClient("test-key", "http://127.0.0.1:1", "deepseek-chat", 25)
	svc := newEvaluationService(tr.repos, aggregator, scorer, logger.NewSimpleLogger())

	result, err := svc.RunAutomatedBulk(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Scored)
	require.Len(t, result.Details, 1)
	assert.True(t, result.Details[0].Fallback)
	assert.Empty(t, result.Details[0].Error)
}

func TestTopSubmissions_NonPositiveSizeIsEmpty(t *testing.T) {
	tr := newTestRepos()
	version := tr.seedActiveVersion()
	team, _ := tr.seedTeam(version.ID)

	judge := &models.Admin{Username: "judge", Email: "judge@example.com"}
	require.NoError(t, tr.admin.Create(judge))

	svc := newTestEvaluationService(tr)

	sub := tr.seedSubmission(team.ID, version.ID)
	_, err := svc.SubmitAdminEvaluation(judge.ID, sub.ID, AdminEvaluationRequest{Score: floatPtr(50)})
	require.NoError(t, err)

	top, err := svc.TopSubmissions(0)
	require.NoError(t, err)
	assert.Empty(t, top)

	top, err = svc.TopSubmissions(-3)
	require.NoError(t, err)
	assert.Empty(t, top)
}

func TestTopSubmissions_PagesThroughAllSubmissions(t *testing.T) {
	tr := newTestRepos()
	version := tr.seedActiveVersion()
	team, _ := tr.seedTeam(version.ID)

	judge := &models.Admin{Username: "judge", Email: "judge@example.com", EvaluationWeight: 10}
	require.NoError(t, tr.admin.Create(judge))
	tr.evaluation.weights[judge.ID.String()] = 10

	svc := newTestEvaluationService(tr)
	svc.rankingBatchSize = 2

	for i := 0; i < 5; i++ {
		sub := tr.seedSubmission(team.ID, version.ID)
		_, err := svc.SubmitAdminEvaluation(judge.ID, sub.ID, AdminEvaluationRequest{Score: floatPtr(float64(10 * (i + 1)))})
		require.NoError(t, err)
	}

	// All five must be ranked even though each page holds only two
	top, err := svc.TopSubmissions(100)
	require.NoError(t, err)
	require.Len(t, top, 5)

	wantOrder := []float64{50, 40, 30, 20, 10}
	for i, entry := range top {
		require.NotNil(t, entry.Score.Final)
		assert.Equal(t, wantOrder[i], *entry.Score.Final)
	}
}
