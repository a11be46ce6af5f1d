// Package oracle talks to the LLM that generates interview questions, scores
// answers and summarizes finished interviews. The service treats it as an
// opaque, fallible collaborator.
package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"interview-service/internal/domain"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultBaseURL points at Groq's OpenAI-compatible endpoint.
const DefaultBaseURL = "https://api.groq.com/openai/v1"

// DefaultModel is the chat model every oracle call goes through.
const DefaultModel = "llama-3.3-70b-versatile"

// Config carries the connection settings for the oracle backend.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	// Timeout bounds every oracle round trip. A timed-out scoring call is
	// indistinguishable from any other scoring failure to the caller.
	Timeout time.Duration
}

// Client wraps an OpenAI-compatible API client.
type Client struct {
	api     *openai.Client
	model   string
	timeout time.Duration
}

func NewClient(cfg Config) *Client {
	apiCfg := openai.DefaultConfig(cfg.APIKey)
	apiCfg.BaseURL = DefaultBaseURL
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		api:     openai.NewClientWithConfig(apiCfg),
		model:   model,
		timeout: cfg.Timeout,
	}
}

// FirstQuestion generates question 0 from the candidate profile alone.
func (c *Client) FirstQuestion(ctx context.Context, profile domain.Profile) (domain.QuestionDraft, error) {
	return c.generateQuestion(ctx, profile, nil)
}

// NextQuestion generates a follow-on question from the profile and all prior
// exchanges.
func (c *Client) NextQuestion(ctx context.Context, sc domain.SessionContext) (domain.QuestionDraft, error) {
	return c.generateQuestion(ctx, sc.Profile, sc.Exchanges)
}

func (c *Client) generateQuestion(ctx context.Context, profile domain.Profile, exchanges []domain.Exchange) (domain.QuestionDraft, error) {
	raw, err := c.chat(ctx, questionSystemPrompt, buildQuestionPrompt(profile, exchanges), 0.7)
	if err != nil {
		return domain.QuestionDraft{}, fmt.Errorf("generate question: %w", err)
	}
	draft, err := parseQuestionDraft(raw)
	if err != nil {
		// The model occasionally returns prose instead of JSON; fall back to
		// the canned bank rather than stalling the interview.
		return fallbackQuestion(len(exchanges)), nil
	}
	return draft, nil
}

// ScoreAnswer evaluates one answer along the three axes. Failures leave
// nothing recorded; retrying is the caller's decision.
func (c *Client) ScoreAnswer(ctx context.Context, question domain.Question, answerText string) (domain.Evaluation, error) {
	raw, err := c.chat(ctx, evalSystemPrompt, buildEvalPrompt(question, answerText), 0.1)
	if err != nil {
		return domain.Evaluation{}, fmt.Errorf("score answer: %w", err)
	}
	eval, err := parseEvaluation(raw)
	if err != nil {
		return domain.Evaluation{}, fmt.Errorf("parse evaluation: %w (raw: %s)", err, raw)
	}
	return eval, nil
}

// FinalReport asks the model for the session-level summary.
func (c *Client) FinalReport(ctx context.Context, sc domain.SessionContext) (domain.ReportDraft, error) {
	raw, err := c.chat(ctx, reportSystemPrompt, buildReportPrompt(sc), 0.3)
	if err != nil {
		return domain.ReportDraft{}, fmt.Errorf("final report: %w", err)
	}
	draft, err := parseReportDraft(raw)
	if err != nil {
		return domain.ReportDraft{}, fmt.Errorf("parse final report: %w (raw: %s)", err, raw)
	}
	return draft, nil
}

func (c *Client) chat(ctx context.Context, system, user string, temperature float32) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: temperature,
	})
	if err != nil {
		return "", fmt.Errorf("oracle API call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("oracle returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

type questionPayload struct {
	Type     string `json:"type"`
	Question string `json:"question"`
	Hint     string `json:"hint"`
}

func parseQuestionDraft(raw string) (domain.QuestionDraft, error) {
	var payload questionPayload
	if err := json.Unmarshal([]byte(stripFences(raw)), &payload); err != nil {
		return domain.QuestionDraft{}, err
	}
	if strings.TrimSpace(payload.Question) == "" {
		return domain.QuestionDraft{}, fmt.Errorf("empty question text")
	}
	kind := domain.KindConceptual
	if strings.EqualFold(payload.Type, string(domain.KindCoding)) {
		kind = domain.KindCoding
	}
	return domain.QuestionDraft{Text: payload.Question, Kind: kind, Hint: payload.Hint}, nil
}

type evaluationPayload struct {
	Correctness float64 `json:"correctness"`
	Depth       float64 `json:"depth"`
	Clarity     float64 `json:"clarity"`
	Feedback    string  `json:"feedback"`
}

func parseEvaluation(raw string) (domain.Evaluation, error) {
	var payload evaluationPayload
	if err := json.Unmarshal([]byte(stripFences(raw)), &payload); err != nil {
		return domain.Evaluation{}, err
	}
	return domain.Evaluation{
		Scores: domain.Scores{
			Correctness: clampScore(payload.Correctness),
			Depth:       clampScore(payload.Depth),
			Clarity:     clampScore(payload.Clarity),
		},
		Feedback: payload.Feedback,
	}, nil
}

func parseReportDraft(raw string) (domain.ReportDraft, error) {
	var payload struct {
		AverageScore float64  `json:"average_score"`
		Strengths    []string `json:"strengths"`
		WeakAreas    []string `json:"weak_areas"`
	}
	if err := json.Unmarshal([]byte(stripFences(raw)), &payload); err != nil {
		return domain.ReportDraft{}, err
	}
	return domain.ReportDraft{
		AverageScore: clampScore(payload.AverageScore),
		Strengths:    payload.Strengths,
		WeakAreas:    payload.WeakAreas,
	}, nil
}

// stripFences removes markdown code fences the model sometimes wraps its
// JSON in despite instructions.
func stripFences(raw string) string {
	raw = strings.ReplaceAll(raw, "```json", "")
	raw = strings.ReplaceAll(raw, "```", "")
	return strings.TrimSpace(raw)
}

func clampScore(v float64) int {
	score := int(math.Round(v))
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
