package web

// errors.go provides unified error response handling for the web layer.
//
// It ensures all errors are:
//   - Logged with full technical details for debugging (server-side)
//   - Returned to clients as user-friendly messages with action suggestions
//   - Formatted as JSON for API routes and as an HTML fragment for pages
//
// The error flow:
//  1. Handler encounters an error
//  2. Calls respondError(w, r, err, 0) to derive the status, or passes one
//  3. Error is mapped via core.MapError to get user-friendly message
//  4. Technical error + context is logged with request ID for correlation
//  5. User message is rendered in appropriate format for the client

import (
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/parshv1234/ChemicalVisualizer/internal/auth"
	"github.com/parshv1234/ChemicalVisualizer/internal/core"
	"github.com/parshv1234/ChemicalVisualizer/internal/web/templates"
)

// statusError is a transport-level failure with a fixed message.
type statusError struct {
	msg string
}

func (e *statusError) Error() string { return e.msg }

var (
	errNoFile           = &statusError{msg: "no file provided"}
	errInvalidForm      = &statusError{msg: "invalid upload form"}
	errInvalidBody      = &statusError{msg: "invalid request body"}
	errRouteNotFound    = &statusError{msg: "route not found"}
	errMethodNotAllowed = &statusError{msg: "method not allowed"}
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error          string   `json:"error"`
	Message        string   `json:"message"`
	Action         string   `json:"action,omitempty"`
	Code           string   `json:"code"`
	MissingColumns []string `json:"missing_columns,omitempty"`
}

func errorBody(msg core.UserMessage, missing []string) ErrorResponse {
	return ErrorResponse{
		Error:          msg.Message,
		Message:        msg.Message,
		Action:         msg.Action,
		Code:           msg.Code,
		MissingColumns: missing,
	}
}

// statusFor picks the HTTP status for err.
func statusFor(err error) int {
	var (
		verr   *core.ValidationError
		rerr   *core.RenderError
		reqErr *auth.RequestError
		mbErr  *http.MaxBytesError
	)
	switch {
	case errors.As(err, &verr), errors.As(err, &reqErr):
		return http.StatusBadRequest
	case errors.As(err, &mbErr):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, core.ErrNotFound), errors.Is(err, errRouteNotFound):
		return http.StatusNotFound
	case errors.As(err, &rerr):
		return http.StatusInternalServerError
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrAuthenticationRequired):
		return http.StatusUnauthorized
	case errors.Is(err, errNoFile), errors.Is(err, errInvalidForm), errors.Is(err, errInvalidBody):
		return http.StatusBadRequest
	case errors.Is(err, errMethodNotAllowed):
		return http.StatusMethodNotAllowed
	case errors.Is(err, errRateLimited):
		return http.StatusTooManyRequests
	}
	return http.StatusInternalServerError
}

// userMessage maps err for display. Request validation failures keep their
// own field messages.
func userMessage(err error) (core.UserMessage, []string) {
	var reqErr *auth.RequestError
	if errors.As(err, &reqErr) {
		return core.UserMessage{
			Message: reqErr.Message,
			Action:  "Correct the highlighted fields and try again",
			Code:    "VAL001",
		}, nil
	}

	var mbErr *http.MaxBytesError
	if errors.As(err, &mbErr) {
		return core.MapError(errors.New("file too large")), nil
	}

	var verr *core.ValidationError
	if errors.As(err, &verr) {
		return core.MapError(err), verr.Missing
	}
	return core.MapError(err), nil
}

// respondError handles error responses with user-friendly messages.
// A statusCode of 0 derives the status from err.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	if statusCode == 0 {
		statusCode = statusFor(err)
	}
	msg, missing := userMessage(err)

	// Get request ID for correlation
	requestID := middleware.GetReqID(r.Context())

	level := slog.LevelWarn
	if statusCode >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	slog.Log(r.Context(), level, "request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", msg.Code,
		"request_id", requestID,
	)

	if wantsJSON(r) {
		writeJSON(w, statusCode, errorBody(msg, missing))
		return
	}
	respondErrorHTML(w, r, msg, statusCode)
}

// respondErrorHTML writes the error page fragment.
func respondErrorHTML(w http.ResponseWriter, r *http.Request, msg core.UserMessage, statusCode int) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	if err := templates.Layout("Error", templates.ErrorPage(msg)).Render(r.Context(), w); err != nil {
		slog.Error("render error page", "error", err)
	}
}

// wantsJSON checks if the client prefers JSON response.
func wantsJSON(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	contentType := r.Header.Get("Content-Type")

	// Check Accept header
	if strings.Contains(accept, "application/json") {
		return true
	}

	// Check if request is sending JSON
	if strings.Contains(contentType, "application/json") {
		return true
	}

	// API routes default to JSON
	if strings.HasPrefix(r.URL.Path, "/api/") || r.URL.Path == "/api" {
		return true
	}

	return false
}

// clientIP returns the host part of RemoteAddr.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
