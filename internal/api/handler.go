// Package api provides HTTP handlers for the TalentScout intake API.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ashureev/talentscout/internal/intake"
	"github.com/ashureev/talentscout/internal/provider"
	"github.com/ashureev/talentscout/internal/sessions"
	"github.com/ashureev/talentscout/internal/store"
)

// Handler provides common handler utilities.
type Handler struct {
	registry   *sessions.Registry
	controller *intake.Controller
	repo       store.Repository
}

// NewHandler creates a new Handler with common dependencies.
func NewHandler(registry *sessions.Registry, controller *intake.Controller, repo store.Repository) *Handler {
	return &Handler{
		registry:   registry,
		controller: controller,
		repo:       repo,
	}
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// StatusFor maps an intake action error to an HTTP status code.
func StatusFor(err error) int {
	var failure *provider.Failure
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, sessions.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, intake.ErrBlankAnswer):
		return http.StatusUnprocessableEntity
	case errors.Is(err, intake.ErrUnknownAction):
		return http.StatusBadRequest
	case errors.As(err, &failure), errors.Is(err, intake.ErrPersistence):
		return http.StatusServiceUnavailable
	case errors.Is(err, intake.ErrWrongPhase),
		errors.Is(err, intake.ErrRetreatRefused),
		errors.Is(err, intake.ErrIllegalJump),
		errors.Is(err, intake.ErrNotAnswered),
		errors.Is(err, intake.ErrAlreadySubmitted),
		errors.Is(err, intake.ErrGenerateExhausted):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
