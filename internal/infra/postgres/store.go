package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"interview-service/internal/domain"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

const uniqueViolation = "23505"

// Store persists sessions and their question/answer logs in Postgres.
// Question order is the insertion order of the questions table; the
// at-most-one-answer rule is enforced by a unique index on
// answers.question_id in addition to the service-level check.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) CreateSession(ctx context.Context, session domain.Session, first domain.Question) error {
	profile, err := json.Marshal(session.Profile)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO sessions (id, owner_id, status, fixed_length, profile, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		session.ID, session.OwnerID, session.Status, session.FixedLength, profile, session.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	if err := insertQuestion(ctx, tx, first); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *Store) GetSession(ctx context.Context, sessionID string) (domain.Session, error) {
	var (
		session      domain.Session
		profileRaw   []byte
		averageScore *int
		axesRaw      []byte
		strengthsRaw []byte
		weakRaw      []byte
		completedAt  *time.Time
	)
	err := s.pool.QueryRow(ctx,
		`SELECT id, owner_id, status, fixed_length, profile, average_score, axes, strengths, weak_areas, created_at, completed_at
		 FROM sessions WHERE id=$1`, sessionID).
		Scan(&session.ID, &session.OwnerID, &session.Status, &session.FixedLength, &profileRaw,
			&averageScore, &axesRaw, &strengthsRaw, &weakRaw, &session.CreatedAt, &completedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	if err != nil {
		return domain.Session{}, fmt.Errorf("get session: %w", err)
	}
	if err := json.Unmarshal(profileRaw, &session.Profile); err != nil {
		return domain.Session{}, fmt.Errorf("unmarshal profile: %w", err)
	}
	if session.Status == domain.StatusCompleted && completedAt != nil {
		report, err := buildReport(averageScore, axesRaw, strengthsRaw, weakRaw, *completedAt)
		if err != nil {
			return domain.Session{}, err
		}
		session.Report = &report
	}
	return session, nil
}

func (s *Store) ListQuestions(ctx context.Context, sessionID string) ([]domain.Question, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, session_id, question, kind, hint, created_at
		 FROM questions WHERE session_id=$1 ORDER BY ord`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer rows.Close()

	var questions []domain.Question
	for rows.Next() {
		var q domain.Question
		if err := rows.Scan(&q.ID, &q.SessionID, &q.Text, &q.Kind, &q.Hint, &q.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

func (s *Store) ListAnswers(ctx context.Context, sessionID string) ([]domain.Answer, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT a.id, a.question_id, a.answer, a.correctness, a.depth, a.clarity, a.feedback, a.created_at
		 FROM answers a JOIN questions q ON q.id = a.question_id
		 WHERE q.session_id=$1 ORDER BY q.ord`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	defer rows.Close()

	var answers []domain.Answer
	for rows.Next() {
		var a domain.Answer
		if err := rows.Scan(&a.ID, &a.QuestionID, &a.Text, &a.Scores.Correctness, &a.Scores.Depth,
			&a.Scores.Clarity, &a.Feedback, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan answer: %w", err)
		}
		answers = append(answers, a)
	}
	return answers, rows.Err()
}

func (s *Store) AppendQuestion(ctx context.Context, question domain.Question) error {
	return insertQuestion(ctx, s.pool, question)
}

func (s *Store) AppendAnswer(ctx context.Context, answer domain.Answer) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO answers (id, question_id, answer, correctness, depth, clarity, feedback, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		answer.ID, answer.QuestionID, answer.Text, answer.Scores.Correctness, answer.Scores.Depth,
		answer.Scores.Clarity, answer.Feedback, answer.CreatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return domain.ErrAlreadyAnswered
	}
	if err != nil {
		return fmt.Errorf("insert answer: %w", err)
	}
	return nil
}

func (s *Store) CompleteSession(ctx context.Context, sessionID string, report domain.Report) error {
	axes, err := json.Marshal(report.Axes)
	if err != nil {
		return fmt.Errorf("marshal axes: %w", err)
	}
	strengths, err := json.Marshal(report.Strengths)
	if err != nil {
		return fmt.Errorf("marshal strengths: %w", err)
	}
	weakAreas, err := json.Marshal(report.WeakAreas)
	if err != nil {
		return fmt.Errorf("marshal weak areas: %w", err)
	}

	// Guarded on status so a completed session can never be rewritten.
	tag, err := s.pool.Exec(ctx,
		`UPDATE sessions
		 SET status=$2, average_score=$3, axes=$4, strengths=$5, weak_areas=$6, completed_at=$7
		 WHERE id=$1 AND status=$8`,
		sessionID, domain.StatusCompleted, report.AverageScore, axes, strengths, weakAreas,
		report.CompletedAt, domain.StatusInProgress)
	if err != nil {
		return fmt.Errorf("complete session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := s.GetSession(ctx, sessionID); errors.Is(err, domain.ErrSessionNotFound) {
			return domain.ErrSessionNotFound
		}
		return domain.ErrSessionCompleted
	}
	return nil
}

// LoadReport serves the persisted report of a completed session.
func (s *Store) LoadReport(ctx context.Context, sessionID string) (domain.Report, error) {
	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return domain.Report{}, err
	}
	if session.Status != domain.StatusCompleted || session.Report == nil {
		return domain.Report{}, domain.ErrReportNotReady
	}
	return *session.Report, nil
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

func insertQuestion(ctx context.Context, db execer, question domain.Question) error {
	_, err := db.Exec(ctx,
		`INSERT INTO questions (id, session_id, question, kind, hint, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		question.ID, question.SessionID, question.Text, question.Kind, question.Hint, question.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert question: %w", err)
	}
	return nil
}

func buildReport(averageScore *int, axesRaw, strengthsRaw, weakRaw []byte, completedAt time.Time) (domain.Report, error) {
	report := domain.Report{
		Strengths:   []string{},
		WeakAreas:   []string{},
		CompletedAt: completedAt,
	}
	if averageScore != nil {
		report.AverageScore = *averageScore
	}
	if len(axesRaw) > 0 {
		if err := json.Unmarshal(axesRaw, &report.Axes); err != nil {
			return domain.Report{}, fmt.Errorf("unmarshal axes: %w", err)
		}
	}
	if len(strengthsRaw) > 0 {
		if err := json.Unmarshal(strengthsRaw, &report.Strengths); err != nil {
			return domain.Report{}, fmt.Errorf("unmarshal strengths: %w", err)
		}
	}
	if len(weakRaw) > 0 {
		if err := json.Unmarshal(weakRaw, &report.WeakAreas); err != nil {
			return domain.Report{}, fmt.Errorf("unmarshal weak areas: %w", err)
		}
	}
	return report, nil
}
