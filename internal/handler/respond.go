package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	appI18n "github.com/pavelanni/interviewprep/internal/i18n"
)

var (
	vldOnce sync.Once
	vld     *validator.Validate
)

func getValidator() *validator.Validate {
	vldOnce.Do(func() { vld = validator.New() })
	return vld
}

type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(envelope{Success: true, Data: data}); err != nil {
		slog.Error("encode response", "error", err)
	}
}

// writeError sends {success: false, message} with an already localized message.
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(envelope{Success: false, Message: message}); err != nil {
		slog.Error("encode response", "error", err)
	}
}

// fail localizes msgID and sends it as an error response.
func fail(w http.ResponseWriter, r *http.Request, status int, msgID string) {
	writeError(w, status, appI18n.T(r.Context(), msgID))
}

func (h *Handler) internalError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	slog.Error(msg, "error", err, "request_id", middleware.GetReqID(r.Context()), "path", r.URL.Path)
	fail(w, r, http.StatusInternalServerError, "InternalError")
}

func (h *Handler) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	fail(w, r, http.StatusTooManyRequests, "TooManyRequests")
}

// decode reads a JSON body into dst and validates it. On failure it writes
// a 400 response and returns false.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.config.MaxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, appI18n.T(r.Context(), "InvalidJSON"))
			return false
		}
		fail(w, r, http.StatusBadRequest, "InvalidJSON")
		return false
	}
	if err := getValidator().Struct(dst); err != nil {
		var details []string
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			for _, fe := range ve {
				details = append(details, strings.ToLower(fe.Field())+": "+fe.Tag())
			}
		} else {
			details = append(details, err.Error())
		}
		writeError(w, http.StatusBadRequest, appI18n.Td(r.Context(), "ValidationFailed", map[string]any{
			"Details": strings.Join(details, ", "),
		}))
		return false
	}
	return true
}

// idParam parses a positive integer URL parameter. On failure it writes a
// 400 response and returns false.
func idParam(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		fail(w, r, http.StatusBadRequest, "InvalidID")
		return 0, false
	}
	return id, true
}
