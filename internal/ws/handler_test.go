package ws

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/ashureev/talentscout/internal/domain"
	"github.com/ashureev/talentscout/internal/intake"
	"github.com/ashureev/talentscout/internal/provider"
	"github.com/ashureev/talentscout/internal/sessions"
	"github.com/ashureev/talentscout/internal/store"
)

type memorySink struct {
	mu   sync.Mutex
	subs []store.Submission
}

func (m *memorySink) Append(_ context.Context, sub store.Submission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs = append(m.subs, sub)
	return nil
}

func (m *memorySink) submissions() []store.Submission {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]store.Submission(nil), m.subs...)
}

func (m *memorySink) Name() string { return "memory" }

func newTestHandler(t *testing.T) (*httptest.Server, *sessionsFixture) {
	t.Helper()
	fx := newSessionsFixture()
	h := NewHandler(fx.registry, fx.controller, NewConnManager(), []string{"*"}, true)
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv, fx
}

func dial(t *testing.T, srv *httptest.Server, sessionID string) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	if sessionID != "" {
		url += "?session_id=" + sessionID
	}
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close(websocket.StatusNormalClosure, "") })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, a intake.Action) intake.View {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := wsjson.Write(ctx, conn, a); err != nil {
		t.Fatalf("write action: %v", err)
	}
	return read(t, conn)
}

func read(t *testing.T, conn *websocket.Conn) intake.View {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var view intake.View
	if err := wsjson.Read(ctx, conn, &view); err != nil {
		t.Fatalf("read view: %v", err)
	}
	return view
}

func TestConversationOverWebSocket(t *testing.T) {
	srv, fx := newTestHandler(t)
	conn := dial(t, srv, "")

	view := read(t, conn)
	if view.Phase != "fixed" || view.SessionID == "" {
		t.Fatalf("unexpected initial view: %+v", view)
	}

	view = send(t, conn, intake.Action{Type: intake.ActionConfirm, Value: ""})
	if view.Error == "" || view.Index != 0 {
		t.Errorf("blank answer should be rejected in place: %+v", view)
	}

	for _, v := range []string{"Ann", "a@b.com", "123", "NYC", "3", "Dev", "Go"} {
		view = send(t, conn, intake.Action{Type: intake.ActionConfirm, Value: v})
	}
	if view.Phase != "generate" || !strings.Contains(view.Notice, "Ann") {
		t.Fatalf("expected generate notice, got %+v", view)
	}
	view = send(t, conn, intake.Action{Type: intake.ActionGenerate})
	if view.Phase != "dynamic" || view.Prompt != "Explain channels." {
		t.Fatalf("expected first generated question, got %+v", view)
	}
	view = send(t, conn, intake.Action{Type: intake.ActionConfirm, Value: "They pass values."})
	if view.Phase != "review" {
		t.Fatalf("expected review, got %+v", view)
	}
	view = send(t, conn, intake.Action{Type: intake.ActionSubmit})
	if view.Phase != "submitted" {
		t.Fatalf("expected submitted, got %+v", view)
	}
	subs := fx.sink.submissions()
	if len(subs) != 1 || subs[0].SessionID != view.SessionID {
		t.Errorf("expected one submission for %s, got %+v", view.SessionID, subs)
	}
}

func TestResumeExistingSession(t *testing.T) {
	srv, fx := newTestHandler(t)
	id := fx.registry.Create()

	conn := dial(t, srv, id)
	view := read(t, conn)
	if view.SessionID != id {
		t.Errorf("expected session %s, got %s", id, view.SessionID)
	}
}

func TestUnknownSessionIsRejected(t *testing.T) {
	srv, _ := newTestHandler(t)
	conn := dial(t, srv, "missing")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var msg map[string]string
	if err := wsjson.Read(ctx, conn, &msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	if msg["error"] != "session_not_found" {
		t.Errorf("expected session_not_found, got %v", msg)
	}
}

func TestPing(t *testing.T) {
	srv, _ := newTestHandler(t)
	conn := dial(t, srv, "")
	_ = read(t, conn)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := wsjson.Write(ctx, conn, map[string]string{"type": "ping"}); err != nil {
		t.Fatalf("write ping: %v", err)
	}
	var msg map[string]string
	if err := wsjson.Read(ctx, conn, &msg); err != nil {
		t.Fatalf("read pong: %v", err)
	}
	if msg["type"] != "pong" {
		t.Errorf("expected pong, got %v", msg)
	}
}

func TestCheckOrigin(t *testing.T) {
	h := &Handler{allowedOrigins: []string{"https://jobs.example.com", "https://careers.example.com"}}
	req := httptest.NewRequest("GET", "/ws/intake", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	if h.checkOrigin(req) {
		t.Error("foreign origin should be rejected")
	}
	req.Header.Set("Origin", "https://jobs.example.com")
	if !h.checkOrigin(req) {
		t.Error("configured origin should be accepted")
	}
	req.Header.Set("Origin", "https://careers.example.com")
	if !h.checkOrigin(req) {
		t.Error("second configured origin should be accepted")
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type sessionsFixture struct {
	registry   *sessions.Registry
	controller *intake.Controller
	sink       *memorySink
}

func newSessionsFixture() *sessionsFixture {
	sink := &memorySink{}
	p := provider.Static{Questions: []string{"Explain channels."}}
	return &sessionsFixture{
		registry:   sessions.NewRegistry(domain.DefaultQuestions(), sessions.WithLogger(quietLogger())),
		controller: intake.NewController(p, sink, intake.WithLogger(quietLogger())),
		sink:       sink,
	}
}
