package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ProgressMessage is broadcast to websocket clients while renders compute
type ProgressMessage struct {
	RenderID string  `json:"renderId"`
	Scene    string  `json:"scene"`
	Percent  float64 `json:"percent"`
	Status   string  `json:"status"` // "running", "completed", "cancelled", "failed"
}

type progressClient struct {
	conn *websocket.Conn
	send chan []byte
}

// progressHub fans render progress out to every connected websocket client.
// Slow clients are disconnected rather than allowed to block a render.
type progressHub struct {
	clients map[*progressClient]bool
	lock    sync.Mutex
	metrics *metrics
}

func newProgressHub(m *metrics) *progressHub {
	return &progressHub{clients: make(map[*progressClient]bool), metrics: m}
}

func (h *progressHub) publish(msg ProgressMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Error marshaling progress message: %v", err)
		return
	}

	h.lock.Lock()
	defer h.lock.Unlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.metrics.progressDropped.Inc()
			h.removeLocked(c)
		}
	}
}

// removeLocked drops a client; h.lock must be held
func (h *progressHub) removeLocked(c *progressClient) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	h.metrics.progressSessions.Dec()
}

func (h *progressHub) remove(c *progressClient) {
	h.lock.Lock()
	defer h.lock.Unlock()
	h.removeLocked(c)
}

// clientCount returns the number of connected clients
func (h *progressHub) clientCount() int {
	h.lock.Lock()
	defer h.lock.Unlock()
	return len(h.clients)
}

// serveWS upgrades the request and streams progress messages until the client goes away
func (h *progressHub) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("upgrade:", err)
		return
	}
	client := &progressClient{conn: conn, send: make(chan []byte, 64)}
	h.lock.Lock()
	h.clients[client] = true
	h.lock.Unlock()
	h.metrics.progressSessions.Inc()

	// reader; clients only send control frames, a read error means they left
	go func() {
		defer func() {
			h.remove(client)
			client.conn.Close()
		}()
		for {
			if _, _, err := client.conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	// writer
	go func() {
		ticker := time.NewTicker(time.Second * 30)
		defer func() {
			ticker.Stop()
			client.conn.Close()
		}()
		for {
			select {
			case msg, ok := <-client.send:
				if !ok {
					_ = client.conn.WriteMessage(websocket.CloseMessage, []byte{})
					return
				}
				if err := client.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
					return
				}
			case <-ticker.C:
				if err := client.conn.WriteMessage(websocket.PingMessage, []byte{}); err != nil {
					return
				}
			}
		}
	}()
}
