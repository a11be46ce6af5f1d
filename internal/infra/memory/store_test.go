package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"interview-service/internal/domain"
)

func TestStoreSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	session, first := seedSession(t, store, "session-1")

	got, err := store.GetSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if got.Status != domain.StatusInProgress {
		t.Fatalf("expected in_progress, got %s", got.Status)
	}

	questions, err := store.ListQuestions(ctx, session.ID)
	if err != nil {
		t.Fatalf("list questions: %v", err)
	}
	if len(questions) != 1 || questions[0].ID != first.ID {
		t.Fatalf("expected the seeded first question, got %+v", questions)
	}
}

func TestStoreUnknownSession(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	if _, err := store.GetSession(ctx, "nope"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	err := store.AppendQuestion(ctx, domain.Question{ID: "q", SessionID: "nope"})
	if !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound on append, got %v", err)
	}
}

func TestStoreQuestionsKeepCreationOrder(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	session, first := seedSession(t, store, "session-1")

	second := domain.Question{ID: "q-2", SessionID: session.ID, Text: "second"}
	third := domain.Question{ID: "q-3", SessionID: session.ID, Text: "third"}
	for _, q := range []domain.Question{second, third} {
		if err := store.AppendQuestion(ctx, q); err != nil {
			t.Fatalf("append question: %v", err)
		}
	}

	questions, _ := store.ListQuestions(ctx, session.ID)
	ids := []string{first.ID, second.ID, third.ID}
	for i, q := range questions {
		if q.ID != ids[i] {
			t.Fatalf("expected order %v, got %+v", ids, questions)
		}
	}
}

func TestStoreRejectsSecondAnswer(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	_, first := seedSession(t, store, "session-1")

	answer := domain.Answer{ID: "a-1", QuestionID: first.ID, Text: "first attempt"}
	if err := store.AppendAnswer(ctx, answer); err != nil {
		t.Fatalf("append answer: %v", err)
	}

	dup := domain.Answer{ID: "a-2", QuestionID: first.ID, Text: "second attempt"}
	if err := store.AppendAnswer(ctx, dup); !errors.Is(err, domain.ErrAlreadyAnswered) {
		t.Fatalf("expected ErrAlreadyAnswered, got %v", err)
	}

	answers, _ := store.ListAnswers(ctx, "session-1")
	if len(answers) != 1 || answers[0].Text != "first attempt" {
		t.Fatalf("first answer must win, got %+v", answers)
	}
}

func TestStoreCompleteSessionOnce(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	session, _ := seedSession(t, store, "session-1")

	report := domain.Report{AverageScore: 77, CompletedAt: time.Now()}
	if err := store.CompleteSession(ctx, session.ID, report); err != nil {
		t.Fatalf("complete session: %v", err)
	}
	if err := store.CompleteSession(ctx, session.ID, report); !errors.Is(err, domain.ErrSessionCompleted) {
		t.Fatalf("expected ErrSessionCompleted on second completion, got %v", err)
	}

	loaded, err := store.LoadReport(ctx, session.ID)
	if err != nil {
		t.Fatalf("load report: %v", err)
	}
	if loaded.AverageScore != 77 {
		t.Fatalf("expected persisted report, got %+v", loaded)
	}
}

func TestStoreReportNotReady(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	session, _ := seedSession(t, store, "session-1")

	if _, err := store.LoadReport(ctx, session.ID); !errors.Is(err, domain.ErrReportNotReady) {
		t.Fatalf("expected ErrReportNotReady, got %v", err)
	}
	if _, err := store.LoadReport(ctx, "nope"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func seedSession(t *testing.T, store *Store, id string) (domain.Session, domain.Question) {
	t.Helper()
	session := domain.Session{
		ID:          id,
		OwnerID:     "owner-1",
		Status:      domain.StatusInProgress,
		FixedLength: 5,
		CreatedAt:   time.Now(),
	}
	first := domain.Question{ID: id + "-q-1", SessionID: id, Text: "first question"}
	if err := store.CreateSession(context.Background(), session, first); err != nil {
		t.Fatalf("create session: %v", err)
	}
	return session, first
}
