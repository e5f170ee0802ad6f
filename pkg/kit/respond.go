package kit

import (
	"encoding/json"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type ErrorResponse struct {
	Error     string `json:"error"`
	Details   any    `json:"details,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// Violation is one field-level validation failure reported in a 400 body.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, r *http.Request, status int, msg string, details any) {
	reqID := chimw.GetReqID(r.Context())
	WriteJSON(w, status, ErrorResponse{
		Error:     msg,
		Details:   details,
		RequestID: reqID,
	})
}

func WriteViolations(w http.ResponseWriter, r *http.Request, msg string, vs []Violation) {
	WriteError(w, r, http.StatusBadRequest, msg, vs)
}

// WriteServerError logs err with the request id and answers with a generic 500.
// The client never sees err.
func WriteServerError(w http.ResponseWriter, r *http.Request, log *zap.Logger, msg string, err error) {
	if log != nil {
		log.Error(msg,
			zap.Error(err),
			zap.String("request_id", chimw.GetReqID(r.Context())),
			zap.String("path", r.URL.Path),
		)
	}
	WriteError(w, r, http.StatusInternalServerError, "server error", nil)
}
