package oracle

import (
	"strings"
	"testing"

	"interview-service/internal/domain"
)

func TestStripFences(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"a": 1}`, `{"a": 1}`},
		{"json fence", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"bare fence", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"whitespace", "  {\"a\": 1}\n", `{"a": 1}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := stripFences(tc.in); got != tc.want {
				t.Fatalf("stripFences(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestClampScore(t *testing.T) {
	cases := []struct {
		in   float64
		want int
	}{
		{85, 85},
		{85.4, 85},
		{85.5, 86},
		{-3, 0},
		{120, 100},
		{0, 0},
		{100, 100},
	}
	for _, tc := range cases {
		if got := clampScore(tc.in); got != tc.want {
			t.Fatalf("clampScore(%v) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestParseQuestionDraft(t *testing.T) {
	draft, err := parseQuestionDraft("```json\n{\"type\": \"coding\", \"question\": \"Reverse a string\", \"hint\": \"two pointers\"}\n```")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if draft.Kind != domain.KindCoding || draft.Text != "Reverse a string" || draft.Hint != "two pointers" {
		t.Fatalf("unexpected draft: %+v", draft)
	}

	// Unknown type falls back to conceptual rather than failing.
	draft, err = parseQuestionDraft(`{"type": "riddle", "question": "What walks on four legs?"}`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if draft.Kind != domain.KindConceptual {
		t.Fatalf("expected conceptual for unknown type, got %s", draft.Kind)
	}

	if _, err := parseQuestionDraft("I would ask about REST."); err == nil {
		t.Fatalf("expected error for non-JSON output")
	}
	if _, err := parseQuestionDraft(`{"type": "conceptual", "question": "  "}`); err == nil {
		t.Fatalf("expected error for empty question text")
	}
}

func TestParseEvaluation(t *testing.T) {
	eval, err := parseEvaluation(`{"correctness": 85.6, "depth": 75, "clarity": 130, "feedback": "solid"}`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if eval.Correctness != 86 || eval.Depth != 75 || eval.Clarity != 100 {
		t.Fatalf("unexpected scores: %+v", eval.Scores)
	}
	if eval.Feedback != "solid" {
		t.Fatalf("unexpected feedback: %q", eval.Feedback)
	}

	if _, err := parseEvaluation("great answer, 8/10"); err == nil {
		t.Fatalf("expected error for non-JSON output")
	}
}

func TestParseReportDraft(t *testing.T) {
	draft, err := parseReportDraft("```json\n{\"average_score\": 78.4, \"strengths\": [\"solid basics\"], \"weak_areas\": []}\n```")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if draft.AverageScore != 78 {
		t.Fatalf("expected average 78, got %d", draft.AverageScore)
	}
	if len(draft.Strengths) != 1 || draft.Strengths[0] != "solid basics" {
		t.Fatalf("unexpected strengths: %+v", draft.Strengths)
	}
}

func TestBuildQuestionPromptOpening(t *testing.T) {
	prompt := buildQuestionPrompt(domain.Profile{
		Name:       "Ada",
		Skills:     []string{"Go", "Postgres"},
		Experience: "4 years",
	}, nil)

	for _, want := range []string{
		"Ada",
		"Go, Postgres",
		"opening question",
		"3 conceptual questions and 2 coding questions",
		`{"type": "conceptual" or "coding", "question": "...", "hint": "..."}`,
	} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestBuildQuestionPromptWithHistory(t *testing.T) {
	answer := domain.Answer{
		Text:   "REST uses fixed endpoints.",
		Scores: domain.Scores{Correctness: 80, Depth: 60, Clarity: 70},
	}
	prompt := buildQuestionPrompt(domain.Profile{Name: "Ada"}, []domain.Exchange{
		{
			Question: domain.Question{Text: "Explain REST vs GraphQL", Kind: domain.KindConceptual},
			Answer:   &answer,
		},
	})

	for _, want := range []string{
		"Questions asked so far",
		"Explain REST vs GraphQL",
		"correctness 80, depth 60, clarity 70",
		"Ask question number 2",
	} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestBuildEvalPrompt(t *testing.T) {
	prompt := buildEvalPrompt(domain.Question{
		Text: "Implement binary search",
		Kind: domain.KindCoding,
	}, "def search(): ...")

	for _, want := range []string{
		"Implement binary search",
		"coding",
		"def search(): ...",
		`{"correctness": 85, "depth": 75, "clarity": 90, "feedback": "..."}`,
	} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestTruncateLongAnswers(t *testing.T) {
	long := strings.Repeat("x", 500)
	got := truncate(long, 400)
	if len(got) != 403 || !strings.HasSuffix(got, "...") {
		t.Fatalf("expected 400 chars plus ellipsis, got len %d", len(got))
	}
	if truncate("short", 400) != "short" {
		t.Fatalf("short strings must pass through unchanged")
	}
}

func TestProfileFallsBackToNA(t *testing.T) {
	prompt := buildQuestionPrompt(domain.Profile{}, nil)
	if !strings.Contains(prompt, "N/A") {
		t.Fatalf("empty profile fields should render as N/A:\n%s", prompt)
	}
}
