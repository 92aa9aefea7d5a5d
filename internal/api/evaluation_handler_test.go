package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/technofest-ar/platform-api/internal/auth"
	apperrors "github.com/technofest-ar/platform-api/internal/errors"
	"github.com/technofest-ar/platform-api/internal/models"
	"github.com/technofest-ar/platform-api/internal/repository"
	"github.com/technofest-ar/platform-api/internal/scoring"
	"github.com/technofest-ar/platform-api/internal/services"
)

// Mock evaluation service for testing
type mockEvaluationService struct {
	evaluation *models.Evaluation
	score      *scoring.Result
	top        []services.TopEntry
	err        error

	lastSubmit services.AdminEvaluationRequest
	lastTopN   int
}

func (m *mockEvaluationService) SubmitAdminEvaluation(adminID, submissionID uuid.UUID, req services.AdminEvaluationRequest) (*models.Evaluation, error) {
	m.lastSubmit = req
	if m.err != nil {
		return nil, m.err
	}
	return m.evaluation, nil
}

func (m *mockEvaluationService) RunAutomated(ctx context.Context, submissionID uuid.UUID) (*models.Evaluation, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.evaluation, nil
}

func (m *mockEvaluationService) RunAutomatedBulk(ctx context.Context) (*services.BulkRunResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &services.BulkRunResult{Total: 1, Scored: 1}, nil
}

func (m *mockEvaluationService) GetEvaluations(submissionID uuid.UUID) ([]models.Evaluation, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.evaluation == nil {
		return nil, nil
	}
	return []models.Evaluation{*m.evaluation}, nil
}

func (m *mockEvaluationService) GetScore(submissionID uuid.UUID) (*scoring.Result, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.score, nil
}

func (m *mockEvaluationService) TopSubmissions(n int) ([]services.TopEntry, error) {
	m.lastTopN = n
	if m.err != nil {
		return nil, m.err
	}
	if n <= 0 {
		return []services.TopEntry{}, nil
	}
	return m.top, nil
}

func (m *mockEvaluationService) Stats() (*repository.EvaluationStats, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &repository.EvaluationStats{TotalSubmissions: 3}, nil
}

func setupEvaluationRouter(mock *mockEvaluationService, authenticated bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewEvaluationHandler(mock)

	router := gin.New()
	if authenticated {
		router.Use(func(c *gin.Context) {
			c.Set(auth.AdminIDKey, uuid.New())
			c.Next()
		})
	}
	router.POST("/submissions/:id/evaluations", handler.SubmitEvaluation)
	router.POST("/submissions/:id/evaluations/automated", handler.RunAutomated)
	router.GET("/submissions/:id/score", handler.GetScore)
	router.GET("/evaluations/top", handler.TopSubmissions)
	return router
}

func TestEvaluationHandler_SubmitEvaluation(t *testing.T) {
	final := 71.25
	mock := &mockEvaluationService{
		evaluation: &models.Evaluation{ID: uuid.New(), Score: 60},
		score:      &scoring.Result{Final: &final},
	}
	router := setupEvaluationRouter(mock, true)

	body, _ := json.Marshal(map[string]interface{}{"score": 60.0, "notes": "solid"})
	req, _ := http.NewRequest("POST", "/submissions/"+uuid.New().String()+"/evaluations", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	// Invalid submission id
	req, _ = http.NewRequest("POST", "/submissions/not-a-uuid/evaluations", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for bad id, got %d", resp.Code)
	}

	// Out-of-range score surfaces as a validation error
	mock.err = apperrors.ValidationError("score must be between 0 and 75, got 80", nil)
	req, _ = http.NewRequest("POST", "/submissions/"+uuid.New().String()+"/evaluations", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for validation error, got %d", resp.Code)
	}
}

func TestEvaluationHandler_SubmitEvaluationZeroScore(t *testing.T) {
	mock := &mockEvaluationService{evaluation: &models.Evaluation{ID: uuid.New(), Score: 0}}
	router := setupEvaluationRouter(mock, true)

	// An explicit zero is a valid score and must survive JSON binding
	body := []byte(`{"score": 0.0, "sub_scores": {"innovation": 0}}`)
	req, _ := http.NewRequest("POST", "/submissions/"+uuid.New().String()+"/evaluations", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200 for zero score, got %d: %s", resp.Code, resp.Body.String())
	}
	if mock.lastSubmit.Score == nil || *mock.lastSubmit.Score != 0 {
		t.Errorf("Expected score 0 passed to service, got %v", mock.lastSubmit.Score)
	}
	if mock.lastSubmit.SubScores["innovation"] != 0 {
		t.Errorf("Expected sub_scores forwarded to service, got %v", mock.lastSubmit.SubScores)
	}

	// A payload without a score never reaches the service
	req, _ = http.NewRequest("POST", "/submissions/"+uuid.New().String()+"/evaluations", bytes.NewReader([]byte(`{"notes": "no score"}`)))
	req.Header.Set("Content-Type", "application/json")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for missing score, got %d", resp.Code)
	}
}

func TestEvaluationHandler_SubmitEvaluationRequiresAuth(t *testing.T) {
	mock := &mockEvaluationService{evaluation: &models.Evaluation{ID: uuid.New()}}
	router := setupEvaluationRouter(mock, false)

	body, _ := json.Marshal(map[string]interface{}{"score": 60.0})
	req, _ := http.NewRequest("POST", "/submissions/"+uuid.New().String()+"/evaluations", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401 without auth context, got %d", resp.Code)
	}
}

func TestEvaluationHandler_GetScore(t *testing.T) {
	final := 88.5
	mock := &mockEvaluationService{score: &scoring.Result{Final: &final, RaterCount: 2}}
	router := setupEvaluationRouter(mock, true)

	req, _ := http.NewRequest("GET", "/submissions/"+uuid.New().String()+"/score", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.Code)
	}

	var result scoring.Result
	if err := json.Unmarshal(resp.Body.Bytes(), &result); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if result.Final == nil || *result.Final != 88.5 {
		t.Errorf("Expected final score 88.5, got %v", result.Final)
	}

	// Unknown submission
	mock.err = apperrors.NotFound("submission not found", nil)
	req, _ = http.NewRequest("GET", "/submissions/"+uuid.New().String()+"/score", nil)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 for unknown submission, got %d", resp.Code)
	}
}

func TestEvaluationHandler_TopSubmissions(t *testing.T) {
	mock := &mockEvaluationService{
		top: []services.TopEntry{
			{Rank: 1, TeamName: "AgroTech", Title: "Irrigation Monitor"},
			{Rank: 2, TeamName: "MedScan", Title: "X-Ray Triage"},
		},
	}
	router := setupEvaluationRouter(mock, true)

	req, _ := http.NewRequest("GET", "/evaluations/top", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.Code)
	}

	var response map[string]interface{}
	if err := json.Unmarshal(resp.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if count, ok := response["count"].(float64); !ok || count != 2 {
		t.Errorf("Expected count 2, got %v", response["count"])
	}

	// An absent n falls back to the default leaderboard size
	if mock.lastTopN != scoring.DefaultTopN {
		t.Errorf("Expected default size %d passed to service, got %d", scoring.DefaultTopN, mock.lastTopN)
	}

	// An explicit non-positive n yields an empty leaderboard, not an error
	req, _ = http.NewRequest("GET", "/evaluations/top?n=-1", nil)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200 for negative n, got %d", resp.Code)
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if count, ok := response["count"].(float64); !ok || count != 0 {
		t.Errorf("Expected count 0 for negative n, got %v", response["count"])
	}
	if mock.lastTopN != -1 {
		t.Errorf("Expected n=-1 passed through to service, got %d", mock.lastTopN)
	}

	// Non-numeric n is still rejected
	req, _ = http.NewRequest("GET", "/evaluations/top?n=five", nil)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for non-numeric n, got %d", resp.Code)
	}
}

func TestEvaluationHandler_RunAutomatedConflict(t *testing.T) {
	mock := &mockEvaluationService{err: apperrors.Conflict("evaluation was updated concurrently, please retry", nil)}
	router := setupEvaluationRouter(mock, true)

	req, _ := http.NewRequest("POST", "/submissions/"+uuid.New().String()+"/evaluations/automated", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusConflict {
		t.Errorf("Expected status 409 for concurrent update, got %d", resp.Code)
	}
}
