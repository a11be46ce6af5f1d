package oracle

import (
	"context"
	"strings"

	"interview-service/internal/domain"
)

// questionBank is the canned fallback set used when the model output cannot
// be parsed, and the full script of the Scripted oracle.
var questionBank = []domain.QuestionDraft{
	{Kind: domain.KindConceptual, Text: "Explain the difference between REST and GraphQL", Hint: "Think about data fetching"},
	{Kind: domain.KindCoding, Text: "Write a function to reverse a linked list", Hint: "Consider iterative or recursive approaches"},
	{Kind: domain.KindConceptual, Text: "What is the purpose of dependency injection?", Hint: "Focus on loose coupling"},
	{Kind: domain.KindCoding, Text: "Implement a binary search algorithm", Hint: "Time complexity should be O(log n)"},
	{Kind: domain.KindConceptual, Text: "Explain the CAP theorem in distributed systems", Hint: "Think about trade-offs"},
}

func fallbackQuestion(asked int) domain.QuestionDraft {
	return questionBank[asked%len(questionBank)]
}

// Scripted is a deterministic in-process oracle. It serves demo deployments
// with no API key configured, and tests that need predictable questions and
// scores.
type Scripted struct{}

func NewScripted() *Scripted {
	return &Scripted{}
}

func (s *Scripted) FirstQuestion(_ context.Context, _ domain.Profile) (domain.QuestionDraft, error) {
	return questionBank[0], nil
}

func (s *Scripted) NextQuestion(_ context.Context, sc domain.SessionContext) (domain.QuestionDraft, error) {
	return fallbackQuestion(len(sc.Exchanges)), nil
}

// ScoreAnswer grades purely on answer length: longer answers read as more
// thorough. Deterministic on input, which is all demo mode needs.
func (s *Scripted) ScoreAnswer(_ context.Context, _ domain.Question, answerText string) (domain.Evaluation, error) {
	words := len(strings.Fields(answerText))
	return domain.Evaluation{
		Scores: domain.Scores{
			Correctness: scriptedScore(50, words, 2),
			Depth:       scriptedScore(35, words, 3),
			Clarity:     scriptedScore(55, words, 1),
		},
		Feedback: "Scripted evaluation: scored on answer length only.",
	}, nil
}

func (s *Scripted) FinalReport(_ context.Context, sc domain.SessionContext) (domain.ReportDraft, error) {
	var total, n int
	for _, ex := range sc.Exchanges {
		if ex.Answer == nil {
			continue
		}
		total += ex.Answer.Scores.Correctness + ex.Answer.Scores.Depth + ex.Answer.Scores.Clarity
		n += 3
	}
	draft := domain.ReportDraft{
		Strengths: []string{"Completed every question of the interview"},
		WeakAreas: []string{"Scripted oracle cannot judge content; configure an API key for real feedback"},
	}
	if n > 0 {
		draft.AverageScore = total / n
	}
	return draft, nil
}

func scriptedScore(base, words, perWord int) int {
	score := base + words*perWord
	if score > 100 {
		return 100
	}
	return score
}
