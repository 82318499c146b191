// SPDX-License-Identifier: MIT
package transport

import (
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	applog "bandscope/internal/log"
)

// WebSocketTransport broadcasts frames as JSON to all connected clients.
// A browser plot connects to /ws and redraws on every frame.
type WebSocketTransport struct {
	addr      string
	upgrader  websocket.Upgrader
	clients   map[*websocket.Conn]bool
	clientsMu sync.Mutex
	broadcast chan *Frame
	server    *http.Server
}

// NewWebSocketTransport starts an HTTP server on addr with the /ws
// upgrade endpoint and a /healthz probe, then begins broadcasting.
func NewWebSocketTransport(addr string) *WebSocketTransport {
	wst := &WebSocketTransport{
		addr: addr,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // local tool, any origin may view
			},
		},
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan *Frame, 64),
	}
	wst.start()
	return wst
}

func (wst *WebSocketTransport) start() {
	router := mux.NewRouter()
	router.HandleFunc("/ws", wst.handleWebSocket)
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	wst.server = &http.Server{
		Addr:    wst.addr,
		Handler: router,
	}

	go func() {
		applog.Infof("websocket: listening on %s", wst.addr)
		if err := wst.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			applog.Errorf("websocket: server error: %v", err)
		}
	}()

	go wst.handleBroadcasts()
}

func (wst *WebSocketTransport) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := wst.upgrader.Upgrade(w, r, nil)
	if err != nil {
		applog.Errorf("websocket: upgrade error: %v", err)
		return
	}

	wst.clientsMu.Lock()
	wst.clients[conn] = true
	total := len(wst.clients)
	wst.clientsMu.Unlock()
	applog.Infof("websocket: client connected, total: %d", total)

	go func() {
		// Block until the client goes away.
		if _, _, err := conn.ReadMessage(); err != nil {
			wst.clientsMu.Lock()
			delete(wst.clients, conn)
			total := len(wst.clients)
			wst.clientsMu.Unlock()
			conn.Close()
			applog.Infof("websocket: client disconnected, total: %d", total)
		}
	}()
}

func (wst *WebSocketTransport) handleBroadcasts() {
	for frame := range wst.broadcast {
		wst.clientsMu.Lock()
		for client := range wst.clients {
			if err := client.WriteJSON(frame); err != nil {
				applog.Warnf("websocket: dropping client: %v", err)
				client.Close()
				delete(wst.clients, client)
			}
		}
		wst.clientsMu.Unlock()
	}
}

// Send queues the frame for broadcast. When the queue is full the frame is
// dropped; the tick loop must never block on a slow viewer.
func (wst *WebSocketTransport) Send(frame *Frame) error {
	select {
	case wst.broadcast <- frame:
	default:
	}
	return nil
}

// Close disconnects all clients and shuts down the HTTP server.
func (wst *WebSocketTransport) Close() error {
	applog.Infof("websocket: closing server")

	wst.clientsMu.Lock()
	for client := range wst.clients {
		client.Close()
	}
	wst.clients = make(map[*websocket.Conn]bool)
	wst.clientsMu.Unlock()

	if wst.server != nil {
		return wst.server.Close()
	}
	return nil
}

var _ Transport = (*WebSocketTransport)(nil)
