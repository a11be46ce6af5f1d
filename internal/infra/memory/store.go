package memory

import (
	"context"
	"fmt"
	"sync"

	"interview-service/internal/domain"
)

// Store is an in-memory implementation of app.Store, used in tests and for
// running the service without Postgres.
type Store struct {
	mu              sync.RWMutex
	sessions        map[string]domain.Session
	questions       map[string][]domain.Question
	answers         map[string]domain.Answer
	questionSession map[string]string
}

func NewStore() *Store {
	return &Store{
		sessions:        make(map[string]domain.Session),
		questions:       make(map[string][]domain.Question),
		answers:         make(map[string]domain.Answer),
		questionSession: make(map[string]string),
	}
}

func (s *Store) CreateSession(_ context.Context, session domain.Session, first domain.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[session.ID]; ok {
		return fmt.Errorf("session %s already exists", session.ID)
	}
	s.sessions[session.ID] = session
	s.questions[session.ID] = []domain.Question{first}
	s.questionSession[first.ID] = session.ID
	return nil
}

func (s *Store) GetSession(_ context.Context, sessionID string) (domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	return session, nil
}

func (s *Store) ListQuestions(_ context.Context, sessionID string) ([]domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	questions := s.questions[sessionID]
	out := make([]domain.Question, len(questions))
	copy(out, questions)
	return out, nil
}

func (s *Store) ListAnswers(_ context.Context, sessionID string) ([]domain.Answer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Answer
	for _, q := range s.questions[sessionID] {
		if a, ok := s.answers[q.ID]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *Store) AppendQuestion(_ context.Context, question domain.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[question.SessionID]; !ok {
		return domain.ErrSessionNotFound
	}
	s.questions[question.SessionID] = append(s.questions[question.SessionID], question)
	s.questionSession[question.ID] = question.SessionID
	return nil
}

func (s *Store) AppendAnswer(_ context.Context, answer domain.Answer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.questionSession[answer.QuestionID]; !ok {
		return fmt.Errorf("unknown question %s", answer.QuestionID)
	}
	if _, ok := s.answers[answer.QuestionID]; ok {
		return domain.ErrAlreadyAnswered
	}
	s.answers[answer.QuestionID] = answer
	return nil
}

func (s *Store) CompleteSession(_ context.Context, sessionID string, report domain.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return domain.ErrSessionNotFound
	}
	if session.Status == domain.StatusCompleted {
		return domain.ErrSessionCompleted
	}
	session.Status = domain.StatusCompleted
	session.Report = &report
	s.sessions[sessionID] = session
	return nil
}

// LoadReport serves the persisted report of a completed session.
func (s *Store) LoadReport(_ context.Context, sessionID string) (domain.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return domain.Report{}, domain.ErrSessionNotFound
	}
	if session.Status != domain.StatusCompleted || session.Report == nil {
		return domain.Report{}, domain.ErrReportNotReady
	}
	return *session.Report, nil
}
