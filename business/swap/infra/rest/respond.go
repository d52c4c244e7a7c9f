package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/basketfx/txprep/internal/apperror"
	"github.com/basketfx/txprep/internal/logger"
)

// envelope is the uniform response wrapper. Success responses carry
// data; failures carry a message and a machine-readable code.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeData(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: data})
}

// writeError maps the error taxonomy onto HTTP: validation failures are
// the caller's fault (4xx), everything upstream or internal is a 500.
func writeError(ctx context.Context, w http.ResponseWriter, log logger.LoggerInterface, err error) {
	status := apperror.StatusOf(err)
	code := apperror.GetCode(err)

	msg := "internal error"
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		msg = appErr.Message
	}

	if status >= http.StatusInternalServerError {
		log.Error(ctx, "request failed", "code", code, "error", err)
	} else {
		log.Debug(ctx, "request rejected", "code", code, "error", err)
	}

	writeJSON(w, status, envelope{Success: false, Error: msg, Code: string(code)})
}
