package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ashureev/talentscout/internal/intake"
	"github.com/ashureev/talentscout/internal/store"
)

const maxActionBytes = 64 << 10

// IntakeHandler handles intake session and candidate endpoints.
type IntakeHandler struct {
	*Handler
}

// NewIntakeHandler creates a new intake handler.
func NewIntakeHandler(base *Handler) *IntakeHandler {
	return &IntakeHandler{Handler: base}
}

// RegisterRoutes registers intake routes.
func (h *IntakeHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Post("/sessions", h.CreateSession)
		r.Get("/sessions/{id}", h.GetSession)
		r.Post("/sessions/{id}/actions", h.Act)
		r.Delete("/sessions/{id}", h.DeleteSession)
		r.Get("/candidates", h.ListCandidates)
	})
}

// CreateSession starts a new intake session and returns its first step.
func (h *IntakeHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	id := h.registry.Create()

	var view intake.View
	if err := h.registry.With(id, func(s *intake.Session) error {
		view = intake.Render(s)
		return nil
	}); err != nil {
		Error(w, StatusFor(err), err.Error())
		return
	}

	JSON(w, http.StatusCreated, map[string]interface{}{
		"session_id": id,
		"view":       view,
	})
}

// GetSession renders the current step of a session.
func (h *IntakeHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var view intake.View
	if err := h.registry.With(id, func(s *intake.Session) error {
		view = intake.Render(s)
		return nil
	}); err != nil {
		Error(w, StatusFor(err), err.Error())
		return
	}

	JSON(w, http.StatusOK, view)
}

// Act applies one applicant action. The response always carries the
// resulting view; failed actions add an error message and a non-2xx status.
func (h *IntakeHandler) Act(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var action intake.Action
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxActionBytes)).Decode(&action); err != nil {
		Error(w, http.StatusBadRequest, "invalid action body")
		return
	}

	var (
		view      intake.View
		actionErr error
	)
	err := h.registry.With(id, func(s *intake.Session) error {
		actionErr = h.controller.Apply(r.Context(), s, action)
		if actionErr != nil {
			view = intake.RenderError(s, actionErr)
			return nil
		}
		view = intake.Render(s)
		return nil
	})
	if err != nil {
		Error(w, StatusFor(err), err.Error())
		return
	}

	if actionErr != nil {
		slog.Debug("Intake action rejected",
			"session_id", id,
			"action", action.Type,
			"phase", view.Phase,
			"error", actionErr)
		JSON(w, StatusFor(actionErr), view)
		return
	}
	JSON(w, http.StatusOK, view)
}

// DeleteSession abandons a session.
func (h *IntakeHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	h.registry.Remove(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

// ListCandidates returns every stored record in the candidates.json format.
func (h *IntakeHandler) ListCandidates(w http.ResponseWriter, r *http.Request) {
	records, err := h.repo.List(r.Context())
	if err != nil {
		slog.Error("Failed to list candidates", "error", err)
		Error(w, http.StatusInternalServerError, "failed to list candidates")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := store.WriteJSON(w, records); err != nil {
		slog.Error("Failed to write candidates", "error", err)
	}
}
