package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"interview-service/internal/app"
	"interview-service/internal/domain"

	"github.com/gorilla/websocket"
)

// WSHandler runs an interview interactively over one websocket: the client
// receives the current question, sends answers, and gets scored feedback plus
// the next question (or the final report) in a single response each turn.
type WSHandler struct {
	service  *app.InterviewService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.InterviewService) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type answerPayload struct {
	QuestionID string `json:"questionId"`
	Text       string `json:"text"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

// ServeWS upgrades the request and drives the interview loop. Writes happen
// only from this loop, so no writer goroutine is needed.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("sessionId")
	if sessionID == "" {
		http.Error(w, "missing sessionId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	question, err := h.service.CurrentQuestion(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionCompleted) {
			h.sendReport(conn, r, sessionID)
			return
		}
		sendError(conn, err)
		return
	}
	_ = conn.WriteJSON(outboundMessage[domain.NumberedQuestion]{Type: "question", Payload: question})

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			return
		}
		switch inbound.Type {
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Code: "bad_request", Message: "invalid answer payload"}})
				continue
			}
			result, err := h.service.SubmitAnswer(r.Context(), sessionID, payload.QuestionID, payload.Text)
			if err != nil {
				sendError(conn, err)
				continue
			}
			_ = conn.WriteJSON(outboundMessage[domain.Evaluation]{Type: "result", Payload: result.LastScore})
			if result.Status == domain.SubmitCompleted {
				_ = conn.WriteJSON(outboundMessage[*domain.Report]{Type: "report", Payload: result.Report})
				return
			}
			_ = conn.WriteJSON(outboundMessage[*domain.NumberedQuestion]{Type: "question", Payload: result.Question})
		default:
			_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Code: "bad_request", Message: "unsupported message type"}})
		}
	}
}

func (h *WSHandler) sendReport(conn *websocket.Conn, r *http.Request, sessionID string) {
	report, err := h.service.Report(r.Context(), sessionID)
	if err != nil {
		sendError(conn, err)
		return
	}
	_ = conn.WriteJSON(outboundMessage[domain.Report]{Type: "report", Payload: report})
}

func sendError(conn *websocket.Conn, err error) {
	_, code, message := mapError(err)
	_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Code: code, Message: message}})
}
