package app

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"interview-service/internal/domain"

	"github.com/google/uuid"
)

// Store abstracts how sessions and their question/answer logs are persisted
// (in-memory, Postgres, etc). Questions are returned in creation order.
type Store interface {
	// CreateSession persists the session together with its first question, or
	// neither of them.
	CreateSession(ctx context.Context, session domain.Session, first domain.Question) error
	GetSession(ctx context.Context, sessionID string) (domain.Session, error)
	ListQuestions(ctx context.Context, sessionID string) ([]domain.Question, error)
	ListAnswers(ctx context.Context, sessionID string) ([]domain.Answer, error)
	AppendQuestion(ctx context.Context, question domain.Question) error
	// AppendAnswer fails with domain.ErrAlreadyAnswered if the question
	// already has one.
	AppendAnswer(ctx context.Context, answer domain.Answer) error
	CompleteSession(ctx context.Context, sessionID string, report domain.Report) error
}

// ReportRepository serves completed-session reports (possibly through a cache).
type ReportRepository interface {
	LoadReport(ctx context.Context, sessionID string) (domain.Report, error)
}

// Oracle is the external capability that generates questions, scores answers
// and summarizes completed sessions. It is fallible and network-bound; the
// service never retries on its behalf.
type Oracle interface {
	FirstQuestion(ctx context.Context, profile domain.Profile) (domain.QuestionDraft, error)
	NextQuestion(ctx context.Context, sc domain.SessionContext) (domain.QuestionDraft, error)
	ScoreAnswer(ctx context.Context, question domain.Question, answerText string) (domain.Evaluation, error)
	FinalReport(ctx context.Context, sc domain.SessionContext) (domain.ReportDraft, error)
}

// InterviewService owns the session progression: which question is current,
// accepting each answer exactly once, and detecting completion.
type InterviewService struct {
	store   Store
	reports ReportRepository
	oracle  Oracle
	length  int
	now     func() time.Time
	locks   sessionLocks
}

func NewInterviewService(store Store, reports ReportRepository, oracle Oracle, sessionLength int) *InterviewService {
	return NewInterviewServiceWithClock(store, reports, oracle, sessionLength, time.Now)
}

// NewInterviewServiceWithClock is test-only for deterministic timestamps.
func NewInterviewServiceWithClock(store Store, reports ReportRepository, oracle Oracle, sessionLength int, now func() time.Time) *InterviewService {
	return &InterviewService{
		store:   store,
		reports: reports,
		oracle:  oracle,
		length:  sessionLength,
		now:     now,
		locks:   sessionLocks{entries: make(map[string]*sync.Mutex)},
	}
}

// StartSession creates a session for the profile and produces question 0.
// Creation is atomic: either the session and its first question both exist,
// or neither does.
func (s *InterviewService) StartSession(ctx context.Context, ownerID string, profile domain.Profile) (domain.Session, domain.NumberedQuestion, error) {
	draft, err := s.oracle.FirstQuestion(ctx, profile)
	if err != nil {
		return domain.Session{}, domain.NumberedQuestion{}, fmt.Errorf("%w: %v", domain.ErrOracleUnavailable, err)
	}

	now := s.now()
	session := domain.Session{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Status:      domain.StatusInProgress,
		FixedLength: s.length,
		Profile:     profile,
		CreatedAt:   now,
	}
	first := domain.Question{
		ID:        uuid.NewString(),
		SessionID: session.ID,
		Text:      draft.Text,
		Kind:      draft.Kind,
		Hint:      draft.Hint,
		CreatedAt: now,
	}
	if err := s.store.CreateSession(ctx, session, first); err != nil {
		return domain.Session{}, domain.NumberedQuestion{}, fmt.Errorf("create session: %w", err)
	}
	return session, domain.NumberedQuestion{Question: first, SequenceIndex: 0}, nil
}

// CurrentQuestion returns the question at the tail of the log that has no
// answer yet. If a prior submission recorded its answer but crashed before
// producing a successor, this call repairs the session: it either requests
// the missing next question or, when the target length is reached, completes
// the session with a report.
func (s *InterviewService) CurrentQuestion(ctx context.Context, sessionID string) (domain.NumberedQuestion, error) {
	mu := s.locks.acquire(sessionID)
	mu.Lock()
	defer mu.Unlock()

	session, questions, answered, err := s.loadState(ctx, sessionID)
	if err != nil {
		return domain.NumberedQuestion{}, err
	}
	if session.Status == domain.StatusCompleted {
		return domain.NumberedQuestion{}, domain.ErrSessionCompleted
	}
	if len(questions) == 0 {
		log.Printf("invariant violation: session %s is live with an empty question log", sessionID)
		return domain.NumberedQuestion{}, domain.ErrNoCurrentQuestion
	}

	tail := questions[len(questions)-1]
	if _, ok := answered[tail.ID]; !ok {
		return domain.NumberedQuestion{Question: tail, SequenceIndex: len(questions) - 1}, nil
	}

	// Answered tail with no successor: interrupted submission.
	if len(answered) >= session.FixedLength {
		if _, err := s.complete(ctx, session, questions, answered); err != nil {
			return domain.NumberedQuestion{}, err
		}
		return domain.NumberedQuestion{}, domain.ErrSessionCompleted
	}
	next, err := s.appendNext(ctx, session, questions, answered)
	if err != nil {
		return domain.NumberedQuestion{}, err
	}
	return next, nil
}

// SubmitAnswer validates the submission against the current question, scores
// it through the oracle, records the answer, and either appends the next
// question or completes the session. Submissions for one session are strictly
// serialized; concurrent losers observe ErrStaleQuestion or
// ErrAlreadyAnswered rather than silent data loss.
func (s *InterviewService) SubmitAnswer(ctx context.Context, sessionID, questionID, text string) (domain.SubmitResult, error) {
	mu := s.locks.acquire(sessionID)
	mu.Lock()
	defer mu.Unlock()

	session, questions, answered, err := s.loadState(ctx, sessionID)
	if err != nil {
		return domain.SubmitResult{}, err
	}
	if session.Status == domain.StatusCompleted {
		return domain.SubmitResult{}, domain.ErrSessionCompleted
	}
	if len(questions) == 0 {
		log.Printf("invariant violation: session %s is live with an empty question log", sessionID)
		return domain.SubmitResult{}, domain.ErrNoCurrentQuestion
	}

	// Current question is the tail of the log, keyed by identity and never
	// by text: two questions with identical wording must not be confused.
	tail := questions[len(questions)-1]
	if questionID != tail.ID {
		return domain.SubmitResult{}, domain.ErrStaleQuestion
	}
	if _, ok := answered[tail.ID]; ok {
		return domain.SubmitResult{}, domain.ErrAlreadyAnswered
	}

	// The oracle is consulted before anything is written, so a scoring
	// failure leaves the session untouched.
	eval, err := s.oracle.ScoreAnswer(ctx, tail, text)
	if err != nil {
		return domain.SubmitResult{}, fmt.Errorf("%w: %v", domain.ErrScoringFailed, err)
	}

	answer := domain.Answer{
		ID:         uuid.NewString(),
		QuestionID: tail.ID,
		Text:       text,
		Scores:     eval.Scores,
		Feedback:   eval.Feedback,
		CreatedAt:  s.now(),
	}
	if err := s.store.AppendAnswer(ctx, answer); err != nil {
		return domain.SubmitResult{}, err
	}
	answered[tail.ID] = answer

	if len(answered) >= session.FixedLength {
		report, err := s.complete(ctx, session, questions, answered)
		if err != nil {
			return domain.SubmitResult{}, err
		}
		return domain.SubmitResult{
			Status:    domain.SubmitCompleted,
			LastScore: eval,
			Report:    &report,
		}, nil
	}

	next, err := s.appendNext(ctx, session, questions, answered)
	if err != nil {
		// The answer above is already durable; CurrentQuestion repairs the
		// session by re-requesting the successor.
		return domain.SubmitResult{}, err
	}
	return domain.SubmitResult{
		Status:    domain.SubmitNext,
		LastScore: eval,
		Question:  &next,
	}, nil
}

// Report returns the persisted report of a completed session.
func (s *InterviewService) Report(ctx context.Context, sessionID string) (domain.Report, error) {
	return s.reports.LoadReport(ctx, sessionID)
}

func (s *InterviewService) loadState(ctx context.Context, sessionID string) (domain.Session, []domain.Question, map[string]domain.Answer, error) {
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return domain.Session{}, nil, nil, err
	}
	questions, err := s.store.ListQuestions(ctx, sessionID)
	if err != nil {
		return domain.Session{}, nil, nil, fmt.Errorf("list questions: %w", err)
	}
	answers, err := s.store.ListAnswers(ctx, sessionID)
	if err != nil {
		return domain.Session{}, nil, nil, fmt.Errorf("list answers: %w", err)
	}
	answered := make(map[string]domain.Answer, len(answers))
	for _, a := range answers {
		answered[a.QuestionID] = a
	}
	return session, questions, answered, nil
}

// appendNext asks the oracle for the next question and appends it to the log.
func (s *InterviewService) appendNext(ctx context.Context, session domain.Session, questions []domain.Question, answered map[string]domain.Answer) (domain.NumberedQuestion, error) {
	draft, err := s.oracle.NextQuestion(ctx, sessionContext(session, questions, answered))
	if err != nil {
		return domain.NumberedQuestion{}, fmt.Errorf("%w: %v", domain.ErrOracleUnavailable, err)
	}
	question := domain.Question{
		ID:        uuid.NewString(),
		SessionID: session.ID,
		Text:      draft.Text,
		Kind:      draft.Kind,
		Hint:      draft.Hint,
		CreatedAt: s.now(),
	}
	if err := s.store.AppendQuestion(ctx, question); err != nil {
		return domain.NumberedQuestion{}, fmt.Errorf("append question: %w", err)
	}
	return domain.NumberedQuestion{Question: question, SequenceIndex: len(questions)}, nil
}

// complete derives the final report and marks the session completed. The
// oracle summary is preferred; if it fails the report is computed locally so
// that completion always succeeds once every question is answered.
func (s *InterviewService) complete(ctx context.Context, session domain.Session, questions []domain.Question, answered map[string]domain.Answer) (domain.Report, error) {
	answers := answersInOrder(questions, answered)
	completedAt := s.now()

	var report domain.Report
	draft, err := s.oracle.FinalReport(ctx, sessionContext(session, questions, answered))
	if err != nil {
		log.Printf("session %s: oracle final report failed, using local aggregate: %v", session.ID, err)
		report = FallbackReport(answers, completedAt)
	} else {
		report = domain.Report{
			AverageScore: draft.AverageScore,
			Axes:         axisMeans(answers),
			Strengths:    draft.Strengths,
			WeakAreas:    draft.WeakAreas,
			CompletedAt:  completedAt,
		}
	}

	if err := s.store.CompleteSession(ctx, session.ID, report); err != nil {
		return domain.Report{}, fmt.Errorf("complete session: %w", err)
	}
	s.locks.forget(session.ID)
	return report, nil
}

func sessionContext(session domain.Session, questions []domain.Question, answered map[string]domain.Answer) domain.SessionContext {
	exchanges := make([]domain.Exchange, 0, len(questions))
	for _, q := range questions {
		ex := domain.Exchange{Question: q}
		if a, ok := answered[q.ID]; ok {
			answer := a
			ex.Answer = &answer
		}
		exchanges = append(exchanges, ex)
	}
	return domain.SessionContext{Profile: session.Profile, Exchanges: exchanges}
}

func answersInOrder(questions []domain.Question, answered map[string]domain.Answer) []domain.Answer {
	answers := make([]domain.Answer, 0, len(answered))
	for _, q := range questions {
		if a, ok := answered[q.ID]; ok {
			answers = append(answers, a)
		}
	}
	return answers
}

// sessionLocks hands out one mutex per live session so that submissions for
// a session are processed one at a time while distinct sessions proceed in
// parallel.
type sessionLocks struct {
	mu      sync.Mutex
	entries map[string]*sync.Mutex
}

func (l *sessionLocks) acquire(sessionID string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	mu, ok := l.entries[sessionID]
	if !ok {
		mu = &sync.Mutex{}
		l.entries[sessionID] = mu
	}
	return mu
}

func (l *sessionLocks) forget(sessionID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, sessionID)
}
