package core

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dialReloader(t *testing.T, lr LiveReloaderInterface) (*websocket.Conn, func()) {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(lr.Handler))
	url := "ws" + server.URL[len("http"):]

	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		server.Close()
		t.Fatalf("failed to connect to WebSocket: %v", err)
	}
	return ws, func() {
		ws.Close()
		server.Close()
	}
}

func waitForClients(lr LiveReloaderInterface, want int) bool {
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if lr.Clients() == want {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}

func TestLiveReloader_ClientConnectsAndReceivesReload(t *testing.T) {
	lr := NewLiveReloader()

	ws, cleanup := dialReloader(t, lr)
	defer cleanup()

	if !waitForClients(lr, 1) {
		t.Fatalf("expected 1 client, got %d", lr.Clients())
	}

	lr.Broadcast(ChangeEvent{Kind: TemplatesChanged, Path: "/jst.js", File: "editor/edit.jst.tpl"})

	ws.SetReadDeadline(time.Now().Add(1 * time.Second))
	_, msg, err := ws.ReadMessage()
	if err != nil {
		t.Fatalf("failed to read change message: %v", err)
	}
	want := `{"kind":"templates","path":"/jst.js","file":"editor/edit.jst.tpl"}`
	if string(msg) != want {
		t.Errorf("expected %s, got %s", want, msg)
	}
}

func TestLiveReloader_BroadcastOmitsEmptyFields(t *testing.T) {
	lr := NewLiveReloader()

	ws, cleanup := dialReloader(t, lr)
	defer cleanup()

	if !waitForClients(lr, 1) {
		t.Fatalf("expected 1 client, got %d", lr.Clients())
	}

	lr.Broadcast(ChangeEvent{Kind: TemplatesChanged})

	ws.SetReadDeadline(time.Now().Add(1 * time.Second))
	_, msg, err := ws.ReadMessage()
	if err != nil {
		t.Fatalf("failed to read change message: %v", err)
	}
	if string(msg) != `{"kind":"templates"}` {
		t.Errorf("unexpected message %s", msg)
	}
}

func TestLiveReloader_RemovesDisconnectedClients(t *testing.T) {
	lr := NewLiveReloader()

	ws, cleanup := dialReloader(t, lr)
	defer cleanup()

	if !waitForClients(lr, 1) {
		t.Fatalf("expected 1 client, got %d", lr.Clients())
	}

	_ = ws.Close()

	if !waitForClients(lr, 0) {
		t.Errorf("expected disconnected client to be dropped, still have %d", lr.Clients())
	}

	defer func() {
		if r := recover(); r != nil {
			t.Errorf("Broadcast panicked after client disconnect: %v", r)
		}
	}()

	lr.Broadcast(ChangeEvent{Kind: TemplatesChanged})
}

func TestLiveReloader_IgnoreUpgradeError(t *testing.T) {
	lr := NewLiveReloader()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	lr.Handler(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected HTTP 400 on upgrade failure, got %d", resp.StatusCode)
	}
	if lr.Clients() != 0 {
		t.Errorf("expected no clients after failed upgrade")
	}
}

func TestReloadClientScript(t *testing.T) {
	script := ReloadClientScript()

	if !strings.Contains(script, `"`+ReloadPath+`"`) {
		t.Errorf("expected script to reference %s, got:\n%s", ReloadPath, script)
	}
	if !strings.Contains(script, `"`+TemplatesChanged+`"`) {
		t.Errorf("expected script to handle %s events", TemplatesChanged)
	}
	if err := ValidateJS([]byte(script)); err != nil {
		t.Errorf("expected valid script, got %v", err)
	}
}
