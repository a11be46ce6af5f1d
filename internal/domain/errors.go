package domain

import "errors"

var (
	// ErrSessionNotFound is returned when a session id is unknown.
	ErrSessionNotFound = errors.New("interview session not found")
	// ErrSessionCompleted is returned for operations on a finished session.
	ErrSessionCompleted = errors.New("interview session already completed")
	// ErrStaleQuestion is returned when a submission names a question that is
	// no longer the current one; the client should re-fetch and retry.
	ErrStaleQuestion = errors.New("question is no longer current")
	// ErrAlreadyAnswered is returned when the current question already has an
	// answer recorded; the first write wins.
	ErrAlreadyAnswered = errors.New("question already answered")
	// ErrOracleUnavailable indicates question or report generation failed.
	ErrOracleUnavailable = errors.New("interview oracle unavailable")
	// ErrScoringFailed indicates answer evaluation failed (including timeout);
	// no answer is recorded and the caller may retry.
	ErrScoringFailed = errors.New("answer scoring failed")
	// ErrReportNotReady is returned when a report is requested for a session
	// that has not completed.
	ErrReportNotReady = errors.New("interview report not ready")
	// ErrNoCurrentQuestion signals an empty question log on a live session.
	// This is an internal invariant violation, not a user error.
	ErrNoCurrentQuestion = errors.New("no current question for live session")
)
