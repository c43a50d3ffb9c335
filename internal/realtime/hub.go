package realtime

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

type Event struct {
	Type     string `json:"type"`
	Resource string `json:"resource,omitempty"`
	Message  string `json:"message,omitempty"`
}

// client serializes writes; gorilla connections allow one writer at a time.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) write(fn func(*websocket.Conn) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return fn(c.conn)
}

// Hub fans refresh events out to every open connection of a user. It
// implements services.Notifier.
type Hub struct {
	clients  map[uint]map[*client]bool
	mu       sync.RWMutex
	upgrader websocket.Upgrader
	log      *logrus.Logger
}

// NewHub accepts upgrades from allowedOrigins, or from anywhere when
// allowAll is set. Requests without an Origin header are always accepted.
func NewHub(allowAll bool, allowedOrigins []string, log *logrus.Logger) *Hub {
	origins := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		origins[origin] = true
	}

	return &Hub{
		clients: make(map[uint]map[*client]bool),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return allowAll || origin == "" || origins[origin]
			},
		},
		log: log,
	}
}

// Notify tells the user's open connections that resource changed.
func (h *Hub) Notify(userID uint, resource string) {
	h.mu.RLock()
	clients, exists := h.clients[userID]
	if !exists || len(clients) == 0 {
		h.mu.RUnlock()
		return
	}

	clientsCopy := make([]*client, 0, len(clients))
	for c := range clients {
		clientsCopy = append(clientsCopy, c)
	}
	h.mu.RUnlock()

	event := Event{Type: "refresh", Resource: resource}

	for _, c := range clientsCopy {
		err := c.write(func(conn *websocket.Conn) error {
			return conn.WriteJSON(event)
		})

		if err != nil {
			h.log.WithError(err).WithField("user_id", userID).Warn("failed to deliver refresh event")
			h.remove(userID, c)
			c.conn.Close()
		}
	}
}

// Connections returns the number of open connections for userID.
func (h *Hub) Connections(userID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.clients[userID])
}

// Serve upgrades the request and blocks until the connection closes.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, userID uint) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	c := &client{conn: conn}

	conn.SetReadLimit(maxMessageSize)
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	h.add(userID, c)

	defer func() {
		h.remove(userID, c)
		conn.Close()
		h.log.WithField("user_id", userID).Debug("websocket connection closed")
	}()

	err = c.write(func(conn *websocket.Conn) error {
		return conn.WriteJSON(Event{Type: "connected", Message: "WebSocket connection established"})
	})
	if err != nil {
		return nil
	}

	done := make(chan struct{})
	defer close(done)

	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()

		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				err := c.write(func(conn *websocket.Conn) error {
					return conn.WriteMessage(websocket.PingMessage, nil)
				})
				if err != nil {
					return
				}
			}
		}
	}()

	for {
		if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			return nil
		}

		// Clients only listen; inbound frames are read to process control
		// messages and detect disconnects.
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.WithError(err).WithField("user_id", userID).Debug("websocket read error")
			}
			return nil
		}
	}
}

func (h *Hub) add(userID uint, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[userID] == nil {
		h.clients[userID] = make(map[*client]bool)
	}
	h.clients[userID][c] = true
}

func (h *Hub) remove(userID uint, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, exists := h.clients[userID]; exists {
		delete(clients, c)
		if len(clients) == 0 {
			delete(h.clients, userID)
		}
	}
}
