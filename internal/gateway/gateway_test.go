package gateway

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pauljones0/agriconnect/internal/app"
	"github.com/pauljones0/agriconnect/internal/config"
	"github.com/pauljones0/agriconnect/internal/identity"
	"github.com/pauljones0/agriconnect/internal/storage/memstore"
)

type wireEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	store := memstore.New()
	provider := identity.NewLocal(4)
	gw := NewServer(func(ctx context.Context, emit func(app.Event)) *app.App {
		return app.New(ctx, app.Deps{
			Store:    store,
			Identity: provider,
			Config:   &config.Config{RequireAcceptedConnection: true, InQueryBatchSize: 10, JobAlertRate: 100},
		}, emit)
	})
	srv := httptest.NewServer(gw)
	t.Cleanup(srv.Close)
	return gw, srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// waitFor reads events until match accepts one.
func waitFor(t *testing.T, conn *websocket.Conn, what string, match func(wireEvent) bool) wireEvent {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	for {
		var ev wireEvent
		if err := conn.ReadJSON(&ev); err != nil {
			t.Fatalf("waiting for %s: %v", what, err)
		}
		if match(ev) {
			return ev
		}
	}
}

func noticeFor(op string) func(wireEvent) bool {
	return func(ev wireEvent) bool {
		if ev.Type != app.EventNotice {
			return false
		}
		var n app.Notice
		return json.Unmarshal(ev.Data, &n) == nil && n.Op == op
	}
}

func TestSignUpStreamsSession(t *testing.T) {
	_, srv := newTestServer(t)
	conn := dial(t, srv)

	err := conn.WriteJSON(Command{Op: "sign_up", Name: "Amina", Email: "amina@example.com", Password: "secret1", FarmName: "Green Acres"})
	if err != nil {
		t.Fatal(err)
	}
	ev := waitFor(t, conn, "session", func(ev wireEvent) bool {
		return ev.Type == app.EventSession && len(ev.Data) > 0 && string(ev.Data) != "null"
	})
	var user struct {
		Name     string `json:"name"`
		Headline string `json:"headline"`
	}
	if err := json.Unmarshal(ev.Data, &user); err != nil {
		t.Fatal(err)
	}
	if user.Name != "Amina" || user.Headline != "Green Acres Farmer" {
		t.Errorf("session user = %+v", user)
	}

	if err := conn.WriteJSON(Command{Op: "select_tab", Tab: string(app.TabJobs)}); err != nil {
		t.Fatal(err)
	}
	waitFor(t, conn, "tab", func(ev wireEvent) bool {
		return ev.Type == app.EventTab && string(ev.Data) == `"jobs"`
	})
}

func TestCommandRejections(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		op      string
	}{
		{"unknown op", `{"op":"launch_rocket"}`, "launch_rocket"},
		{"malformed json", `{"op":`, "decode"},
		{"wrong field type", `{"op":"search","query":7}`, "decode"},
		{"job without details", `{"op":"post_job"}`, "post_job"},
		{"signed out action", `{"op":"create_post","text":"hi"}`, "create_post"},
	}
	_, srv := newTestServer(t)
	conn := dial(t, srv)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(tt.payload)); err != nil {
				t.Fatal(err)
			}
			waitFor(t, conn, "notice for "+tt.op, noticeFor(tt.op))
		})
	}
}

func TestShutdownClosesConnections(t *testing.T) {
	gw, srv := newTestServer(t)
	conn := dial(t, srv)
	if err := conn.WriteJSON(Command{Op: "sign_up", Name: "Bo", Email: "bo@example.com", Password: "secret1", FarmName: "Bo"}); err != nil {
		t.Fatal(err)
	}
	waitFor(t, conn, "session", func(ev wireEvent) bool { return ev.Type == app.EventSession })
	if gw.Clients() != 1 {
		t.Fatalf("Clients = %d, want 1", gw.Clients())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := gw.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if gw.Clients() != 0 {
		t.Errorf("Clients after shutdown = %d", gw.Clients())
	}

	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	// New connections are turned away.
	late := dial(t, srv)
	late.SetReadDeadline(time.Now().Add(3 * time.Second))
	_, _, err := late.ReadMessage()
	if !websocket.IsCloseError(err, websocket.CloseGoingAway) {
		t.Errorf("late connection read err = %v, want going away", err)
	}
}
