package ws

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/ashureev/talentscout/internal/intake"
	"github.com/ashureev/talentscout/internal/sessions"
)

const writeTimeout = 10 * time.Second

// Handler runs one intake conversation per WebSocket connection. Each
// incoming action message is answered by exactly one view message.
type Handler struct {
	registry       *sessions.Registry
	controller     *intake.Controller
	cm             *ConnManager
	allowedOrigins []string
	isDev          bool
}

// NewHandler creates a new WebSocket intake handler.
func NewHandler(registry *sessions.Registry, controller *intake.Controller, cm *ConnManager, allowedOrigins []string, isDev bool) *Handler {
	return &Handler{
		registry:       registry,
		controller:     controller,
		cm:             cm,
		allowedOrigins: allowedOrigins,
		isDev:          isDev,
	}
}

// message is one client frame: an intake action, or a ping.
type message struct {
	intake.Action
}

// ServeHTTP implements http.Handler for WebSocket upgrade. Without a
// session_id query parameter a new session is started.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	slog.Info("WebSocket connection request", "session_id", sessionID, "ip", r.RemoteAddr)

	if !h.checkOrigin(r) {
		http.Error(w, "origin not allowed", http.StatusForbidden)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("Failed to accept WebSocket", "error", err, "session_id", sessionID)
		return
	}
	defer func() {
		if closeErr := conn.Close(websocket.StatusNormalClosure, "session ended"); closeErr != nil {
			slog.Debug("Failed to close websocket", "error", closeErr, "session_id", sessionID)
		}
	}()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	if sessionID == "" {
		sessionID = h.registry.Create()
	}

	view, err := h.render(sessionID)
	if err != nil {
		slog.Warn("Intake session not found", "session_id", sessionID)
		if err := h.writeJSON(ctx, conn, map[string]string{"error": "session_not_found"}); err != nil {
			slog.Debug("Failed to send session_not_found error", "error", err)
		}
		return
	}

	h.cm.Register(sessionID, conn)
	defer h.cm.Unregister(sessionID, conn)

	if err := h.writeJSON(ctx, conn, view); err != nil {
		slog.Debug("Failed to send initial view", "error", err, "session_id", sessionID)
		return
	}

	h.inputLoop(ctx, conn, sessionID)
	slog.Info("Intake connection ended", "session_id", sessionID)
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	if h.isDev {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, o := range h.allowedOrigins {
		if o == "*" || o == origin {
			return true
		}
	}
	slog.Warn("WebSocket origin rejected", "origin", origin, "allowed", h.allowedOrigins)
	return false
}

func (h *Handler) inputLoop(ctx context.Context, conn *websocket.Conn, sessionID string) {
	for {
		var msg message
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			if websocket.CloseStatus(err) != -1 || errors.Is(err, context.Canceled) {
				slog.Debug("WebSocket closed by client", "session_id", sessionID)
			} else {
				slog.Warn("WebSocket read error", "error", err, "session_id", sessionID)
			}
			return
		}

		if msg.Type == "ping" {
			if err := h.writeJSON(ctx, conn, map[string]string{"type": "pong"}); err != nil {
				slog.Debug("Failed to send pong", "error", err)
			}
			continue
		}

		view, err := h.apply(ctx, sessionID, msg.Action)
		if err != nil {
			// The session expired while the connection was open.
			if err := h.writeJSON(ctx, conn, map[string]string{"error": "session_not_found"}); err != nil {
				slog.Debug("Failed to send session_not_found error", "error", err)
			}
			return
		}
		if err := h.writeJSON(ctx, conn, view); err != nil {
			slog.Debug("WebSocket write error", "error", err, "session_id", sessionID)
			return
		}
	}
}

func (h *Handler) render(sessionID string) (intake.View, error) {
	var view intake.View
	err := h.registry.With(sessionID, func(s *intake.Session) error {
		view = intake.Render(s)
		return nil
	})
	return view, err
}

func (h *Handler) apply(ctx context.Context, sessionID string, action intake.Action) (intake.View, error) {
	var view intake.View
	err := h.registry.With(sessionID, func(s *intake.Session) error {
		if err := h.controller.Apply(ctx, s, action); err != nil {
			slog.Debug("Intake action rejected", "session_id", sessionID, "action", action.Type, "error", err)
			view = intake.RenderError(s, err)
			return nil
		}
		view = intake.Render(s)
		return nil
	})
	return view, err
}

func (h *Handler) writeJSON(ctx context.Context, conn *websocket.Conn, v interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return wsjson.Write(ctx, conn, v)
}
