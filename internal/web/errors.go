package web

// errors.go provides unified JSON response handling for the web layer.
//
// Every error is logged server-side with the request ID for correlation
// and returned to the client as a small JSON body with a stable code.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/hokuro/spotd/internal/spot"
)

// ErrorResponse is the JSON structure for API error responses.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// respondError logs the technical error and writes a JSON error body.
func respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	code := codeFor(err, statusCode)

	slog.Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", code,
		"request_id", middleware.GetReqID(r.Context()),
	)

	writeJSONStatus(w, statusCode, ErrorResponse{Error: publicMessage(err, statusCode), Code: code})
}

// codeFor maps an error to a stable machine-readable code.
func codeFor(err error, statusCode int) string {
	switch {
	case errors.Is(err, spot.ErrNotFound):
		return "SPOT_NOT_FOUND"
	case statusCode == http.StatusBadRequest:
		return "BAD_REQUEST"
	case statusCode == http.StatusConflict:
		return "DUPLICATE_SPOT"
	case statusCode >= 500:
		return "INTERNAL"
	default:
		return "ERROR"
	}
}

// publicMessage hides internal detail for server faults; client faults get
// the real message so the caller can fix the request.
func publicMessage(err error, statusCode int) string {
	if statusCode >= 500 {
		return "internal server error"
	}
	return err.Error()
}

// writeJSON writes v as a 200 JSON response.
func writeJSON(w http.ResponseWriter, v any) {
	writeJSONStatus(w, http.StatusOK, v)
}

// writeJSONStatus writes v as JSON with the given status code.
func writeJSONStatus(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}
