package core

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/segmentio/encoding/json"
)

const ReloadPath = "/__backbone_reload"

// TemplatesChanged tells dev clients to fetch the bundle at Path again.
const TemplatesChanged = "templates"

type ChangeEvent struct {
	Kind string `json:"kind"`
	Path string `json:"path,omitempty"`
	File string `json:"file,omitempty"`
}

type LiveReloaderInterface interface {
	Broadcast(ChangeEvent)
	Handler(http.ResponseWriter, *http.Request)
	Clients() int
}

// LiveReloader keeps the dev websocket clients and pushes change events
// to them.
type LiveReloader struct {
	clients  map[*websocket.Conn]struct{}
	lock     sync.Mutex
	upgrader websocket.Upgrader
}

var NewLiveReloader = func() LiveReloaderInterface {
	return &LiveReloader{
		clients: make(map[*websocket.Conn]struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

func (lr *LiveReloader) Handler(w http.ResponseWriter, r *http.Request) {
	conn, err := lr.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	lr.lock.Lock()
	lr.clients[conn] = struct{}{}
	lr.lock.Unlock()

	go lr.drain(conn)
}

// drain discards client frames until the connection goes away.
func (lr *LiveReloader) drain(conn *websocket.Conn) {
	defer func() {
		lr.lock.Lock()
		delete(lr.clients, conn)
		lr.lock.Unlock()
		conn.Close()
	}()

	for {
		if _, _, err := conn.NextReader(); err != nil {
			return
		}
	}
}

func (lr *LiveReloader) Broadcast(event ChangeEvent) {
	msg, err := json.Marshal(event)
	if err != nil {
		return
	}

	lr.lock.Lock()
	defer lr.lock.Unlock()

	for conn := range lr.clients {
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			conn.Close()
			delete(lr.clients, conn)
		}
	}
}

func (lr *LiveReloader) Clients() int {
	lr.lock.Lock()
	defer lr.lock.Unlock()
	return len(lr.clients)
}

// ReloadClientScript is appended to dev bundles. On a templates event it
// loads the bundle again so JST is replaced in place; the page is only
// reloaded when that fails or the event is unknown.
func ReloadClientScript() string {
	return fmt.Sprintf(`(function(){
  if (typeof WebSocket === "undefined" || typeof location === "undefined") return;
  if (window.__backboneReload) return;
  window.__backboneReload = true;
  var proto = location.protocol === "https:" ? "wss://" : "ws://";
  var ws = new WebSocket(proto + location.host + %q);
  ws.onmessage = function(e) {
    var ev;
    try { ev = JSON.parse(e.data); } catch (err) { return location.reload(); }
    if (ev.kind !== %q || !ev.path) return location.reload();
    var s = document.createElement("script");
    s.src = ev.path + "?v=" + Date.now();
    s.onload = function() { s.parentNode.removeChild(s); };
    s.onerror = function() { location.reload(); };
    document.head.appendChild(s);
  };
})();`, ReloadPath, TemplatesChanged)
}
