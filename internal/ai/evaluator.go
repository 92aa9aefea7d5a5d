package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// ProjectInput is the submission content sent for automated evaluation
type ProjectInput struct {
	Title                string
	ProblemStatement     string
	TechnicalDescription string
	ScientificReference  string
	Field                string
}

// Evaluation is the automated rater's verdict for one submission
type Evaluation struct {
	Score     float64            `json:"score"`
	SubScores map[string]float64 `json:"sub_scores"`
	Notes     string             `json:"notes"`
	Fallback  bool               `json:"fallback"`
}

// Client evaluates submissions through an OpenAI-compatible chat endpoint.
// With no API key it degrades to a deterministic content-hash evaluation so
// the rest of the pipeline keeps working in development.
type Client struct {
	client   *openai.Client
	model    string
	maxScore float64
}

// NewClient creates an evaluation client. apiKey may be empty, in which case
// every Evaluate call uses the fallback scorer.
func NewClient(apiKey, baseURL, model string, maxScore float64) *Client {
	c := &Client{model: model, maxScore: maxScore}

	if apiKey != "" {
		clientConfig := openai.DefaultConfig(apiKey)
		if baseURL != "" {
			clientConfig.BaseURL = baseURL
		}
		clientConfig.HTTPClient = &http.Client{Timeout: 60 * time.Second}
		c.client = openai.NewClientWithConfig(clientConfig)
	}

	return c
}

// HasLiveEndpoint reports whether a real model endpoint is configured
func (c *Client) HasLiveEndpoint() bool {
	return c.client != nil
}

// Evaluate scores a submission. Model failures and unparseable responses fall
// back to the deterministic scorer rather than failing the request.
func (c *Client) Evaluate(ctx context.Context, in ProjectInput) (*Evaluation, error) {
	if c.client == nil {
		return c.fallbackEvaluation(in), nil
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are an expert judge of technology projects. Always answer with JSON only.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: c.buildPrompt(in),
			},
		},
		Temperature: 0.3,
		MaxTokens:   1000,
	})
	if err != nil {
		// Context cancellation is the caller's signal, not a model failure
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return c.fallbackEvaluation(in), nil
	}

	if len(resp.Choices) == 0 {
		return c.fallbackEvaluation(in), nil
	}

	eval, err := c.parseResponse(resp.Choices[0].Message.Content)
	if err != nil {
		return c.fallbackEvaluation(in), nil
	}
	return eval, nil
}

func (c *Client) buildPrompt(in ProjectInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Evaluate the following project submission.\n\n")
	fmt.Fprintf(&b, "Title: %s\n", in.Title)
	fmt.Fprintf(&b, "Field: %s\n\n", in.Field)
	fmt.Fprintf(&b, "Problem statement:\n%s\n\n", in.ProblemStatement)
	fmt.Fprintf(&b, "Technical description:\n%s\n\n", in.TechnicalDescription)
	fmt.Fprintf(&b, "Scientific reference:\n%s\n\n", in.ScientificReference)
	fmt.Fprintf(&b, "Score the project on these criteria, %.0f points total, each criterion 0 to %.0f:\n", c.maxScore, c.maxScore/5)
	fmt.Fprintf(&b, "1. innovation: is the idea novel?\n")
	fmt.Fprintf(&b, "2. feasibility: is it technically achievable?\n")
	fmt.Fprintf(&b, "3. problem_solving: does it solve a real problem effectively?\n")
	fmt.Fprintf(&b, "4. technical_description: is the description precise and detailed?\n")
	fmt.Fprintf(&b, "5. scientific_reference: does the reference support the idea?\n\n")
	fmt.Fprintf(&b, "Answer with JSON only, exactly in this shape:\n")
	fmt.Fprintf(&b, `{"total_score": <sum out of %.0f>, "detailed_scores": {"innovation": <n>, "feasibility": <n>, "problem_solving": <n>, "technical_description": <n>, "scientific_reference": <n>}, "notes": "<recommendations for the team>"}`, c.maxScore)
	return b.String()
}

type modelVerdict struct {
	TotalScore     float64            `json:"total_score"`
	DetailedScores map[string]float64 `json:"detailed_scores"`
	Notes          string             `json:"notes"`
}

// parseResponse extracts the JSON object from the model output, tolerating
// surrounding prose or markdown fences.
func (c *Client) parseResponse(content string) (*Evaluation, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in model response")
	}

	var verdict modelVerdict
	if err := json.Unmarshal([]byte(content[start:end+1]), &verdict); err != nil {
		return nil, fmt.Errorf("failed to decode model response: %w", err)
	}

	score := verdict.TotalScore
	if score < 0 {
		score = 0
	}
	if score > c.maxScore {
		score = c.maxScore
	}

	return &Evaluation{
		Score:     score,
		SubScores: verdict.DetailedScores,
		Notes:     verdict.Notes,
	}, nil
}

// fallbackEvaluation derives a stable pseudo-score from the submission
// content so repeated runs agree on the same input.
func (c *Client) fallbackEvaluation(in ProjectInput) *Evaluation {
	h := fnv.New64a()
	h.Write([]byte(in.Title))
	h.Write([]byte(in.TechnicalDescription))
	v := h.Sum64()

	unit := c.maxScore / 5

	innovation := float64(2+v%4) / 5 * unit
	feasibility := float64(2+(v>>8)%4) / 5 * unit
	problemSolving := float64(2+(v>>16)%4) / 5 * unit
	reference := float64(1+(v>>24)%4) / 5 * unit

	// Longer technical descriptions earn more, capped at the criterion max
	techDesc := (2 + float64(len(in.TechnicalDescription))/500) / 5 * unit
	if techDesc > unit {
		techDesc = unit
	}

	total := innovation + feasibility + problemSolving + techDesc + reference
	if total > c.maxScore {
		total = c.maxScore
	}

	return &Evaluation{
		Score: total,
		SubScores: map[string]float64{
			"innovation":            innovation,
			"feasibility":           feasibility,
			"problem_solving":       problemSolving,
			"technical_description": techDesc,
			"scientific_reference":  reference,
		},
		Notes:    "Preliminary automated review: the idea looks promising; add more technical detail and strengthen the scientific references.",
		Fallback: true,
	}
}
