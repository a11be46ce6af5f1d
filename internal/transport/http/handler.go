package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"interview-service/internal/app"
	"interview-service/internal/domain"
)

// Handler exposes the interview use cases as a JSON API. It does nothing but
// decode, call the service, and encode; all interview rules live in app.
type Handler struct {
	service *app.InterviewService
}

func NewHandler(service *app.InterviewService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /interviews", h.startInterview)
	mux.HandleFunc("GET /interviews/{id}/question", h.currentQuestion)
	mux.HandleFunc("POST /interviews/{id}/answers", h.submitAnswer)
	mux.HandleFunc("GET /interviews/{id}/report", h.report)
}

type startRequest struct {
	OwnerID string         `json:"ownerId"`
	Profile domain.Profile `json:"profile"`
}

type startResponse struct {
	InterviewID string                  `json:"interviewId"`
	FixedLength int                     `json:"fixedLength"`
	Question    domain.NumberedQuestion `json:"question"`
}

func (h *Handler) startInterview(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid start payload")
		return
	}
	if req.OwnerID == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "missing ownerId")
		return
	}

	session, question, err := h.service.StartSession(r.Context(), req.OwnerID, req.Profile)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, startResponse{
		InterviewID: session.ID,
		FixedLength: session.FixedLength,
		Question:    question,
	})
}

func (h *Handler) currentQuestion(w http.ResponseWriter, r *http.Request) {
	question, err := h.service.CurrentQuestion(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, question)
}

type submitRequest struct {
	QuestionID string `json:"questionId"`
	Text       string `json:"text"`
}

func (h *Handler) submitAnswer(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid answer payload")
		return
	}
	if req.QuestionID == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "missing questionId")
		return
	}

	result, err := h.service.SubmitAnswer(r.Context(), r.PathValue("id"), req.QuestionID, req.Text)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) report(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Report(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// mapError translates the domain taxonomy into transport terms. Stale and
// already-answered submissions read as "refresh and retry", not as generic
// failures, because the client recovers by re-fetching the current question.
func mapError(err error) (int, string, string) {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound, "session_not_found", "interview session not found"
	case errors.Is(err, domain.ErrSessionCompleted):
		return http.StatusConflict, "session_completed", "the interview is already completed"
	case errors.Is(err, domain.ErrStaleQuestion):
		return http.StatusConflict, "stale_question", "this question is no longer current; refresh the current question and retry"
	case errors.Is(err, domain.ErrAlreadyAnswered):
		return http.StatusConflict, "already_answered", "this question was already answered; refresh the current question"
	case errors.Is(err, domain.ErrReportNotReady):
		return http.StatusConflict, "report_not_ready", "the interview has not completed yet"
	case errors.Is(err, domain.ErrScoringFailed):
		return http.StatusBadGateway, "scoring_failed", "answer could not be scored; please retry"
	case errors.Is(err, domain.ErrOracleUnavailable):
		return http.StatusBadGateway, "oracle_unavailable", "question generation is unavailable; please retry"
	default:
		return http.StatusInternalServerError, "internal", "internal error"
	}
}

func writeDomainError(w http.ResponseWriter, err error) {
	status, code, message := mapError(err)
	if status == http.StatusInternalServerError {
		log.Printf("internal error: %v", err)
	}
	writeError(w, status, code, message)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorPayload{Code: code, Message: message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}
