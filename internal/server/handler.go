package server

import (
	"bytes"
	"log"
	"net/http"
	"path"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/soar/padremap/internal/hub"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local use
	},
}

func handleWebSocket(h *hub.Hub, b *hub.Broadcaster, sel hub.SetSelector) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("[WARN] WebSocket upgrade failed: %v", err)
			return
		}

		client := hub.NewClient(h, conn)
		h.Register(client)

		// Send current state to the new client
		b.SendInitialState(client)

		go client.WritePump()
		go client.ReadPumpWithHandler(sel)
	}
}

// handleAssets serves the minified page assets from memory.
func handleAssets(assets map[string]asset) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(path.Clean(r.URL.Path), "/")
		if name == "" {
			name = "index.html"
		}

		a, ok := assets[name]
		if !ok {
			http.NotFound(w, r)
			return
		}
		if a.mediatype != "" {
			w.Header().Set("Content-Type", a.mediatype)
		}
		http.ServeContent(w, r, name, a.modified, bytes.NewReader(a.data))
	}
}
