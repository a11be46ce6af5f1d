package domain

import "time"

// SessionStatus is the lifecycle state of an interview session.
// The only transition is in_progress -> completed; completed is terminal.
type SessionStatus string

const (
	StatusInProgress SessionStatus = "in_progress"
	StatusCompleted  SessionStatus = "completed"
)

// QuestionKind distinguishes theory questions from coding exercises.
type QuestionKind string

const (
	KindConceptual QuestionKind = "conceptual"
	KindCoding     QuestionKind = "coding"
)

// Project is one portfolio entry from a parsed resume.
type Project struct {
	Name        string `json:"name"`
	Tech        string `json:"tech"`
	Description string `json:"description"`
}

// Profile is the candidate profile produced by an upstream resume-parsing step.
// The service treats it as opaque input for question generation.
type Profile struct {
	Name       string    `json:"name"`
	Skills     []string  `json:"skills"`
	Experience string    `json:"experience"`
	Projects   []Project `json:"projects,omitempty"`
}

// Session is one practice-interview attempt by one candidate.
type Session struct {
	ID          string        `json:"id"`
	OwnerID     string        `json:"ownerId"`
	Status      SessionStatus `json:"status"`
	FixedLength int           `json:"fixedLength"`
	Profile     Profile       `json:"profile"`
	CreatedAt   time.Time     `json:"createdAt"`
	// Report is set exactly once, when the session completes.
	Report *Report `json:"report,omitempty"`
}

// Question is one prompt within a session. Immutable once created.
// Its position in the session is its creation order in the question log;
// it is never identified by its text.
type Question struct {
	ID        string       `json:"id"`
	SessionID string       `json:"sessionId"`
	Text      string       `json:"text"`
	Kind      QuestionKind `json:"kind"`
	Hint      string       `json:"hint,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
}

// NumberedQuestion carries a question together with its 0-based position,
// derived from creation order rather than stored on the question itself.
type NumberedQuestion struct {
	Question
	SequenceIndex int `json:"sequenceIndex"`
}

// QuestionDraft is oracle output before the service assigns identity.
type QuestionDraft struct {
	Text string       `json:"question"`
	Kind QuestionKind `json:"type"`
	Hint string       `json:"hint,omitempty"`
}

// Scores holds the three evaluation axes, each in [0,100].
type Scores struct {
	Correctness int `json:"correctness"`
	Depth       int `json:"depth"`
	Clarity     int `json:"clarity"`
}

// Evaluation is the oracle's verdict on a single answer.
type Evaluation struct {
	Scores
	Feedback string `json:"feedback"`
}

// Answer is one response to one question. At most one answer exists per
// question; a second submission is rejected, never overwritten.
type Answer struct {
	ID         string    `json:"id"`
	QuestionID string    `json:"questionId"`
	Text       string    `json:"text"`
	Scores     Scores    `json:"scores"`
	Feedback   string    `json:"feedback"`
	CreatedAt  time.Time `json:"createdAt"`
}

// AxisMeans are the per-axis averages over all answered questions.
type AxisMeans struct {
	Correctness float64 `json:"correctness"`
	Depth       float64 `json:"depth"`
	Clarity     float64 `json:"clarity"`
}

// Report is the session-level aggregate produced at completion.
type Report struct {
	AverageScore int       `json:"averageScore"`
	Axes         AxisMeans `json:"axes"`
	Strengths    []string  `json:"strengths"`
	WeakAreas    []string  `json:"weakAreas"`
	CompletedAt  time.Time `json:"completedAt"`
}

// ReportDraft is the oracle-authored final summary, before completion
// metadata is attached.
type ReportDraft struct {
	AverageScore int      `json:"average_score"`
	Strengths    []string `json:"strengths"`
	WeakAreas    []string `json:"weak_areas"`
}

// Exchange pairs a question with its answer, if any.
type Exchange struct {
	Question Question
	Answer   *Answer
}

// SessionContext is what the oracle sees when generating the next question
// or the final report: the candidate profile plus all prior exchanges in
// creation order.
type SessionContext struct {
	Profile   Profile
	Exchanges []Exchange
}

// SubmitStatus tells the caller whether the interview continues or is done.
type SubmitStatus string

const (
	SubmitNext      SubmitStatus = "next"
	SubmitCompleted SubmitStatus = "completed"
)

// SubmitResult is the atomic response to an answer submission: the score
// for the answer just given, plus either the next question or the final
// report. Any "show feedback, then advance" pacing is the caller's concern.
type SubmitResult struct {
	Status    SubmitStatus      `json:"status"`
	LastScore Evaluation        `json:"lastScore"`
	Question  *NumberedQuestion `json:"question,omitempty"`
	Report    *Report           `json:"report,omitempty"`
}
