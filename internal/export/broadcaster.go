package export

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// writeTimeout bounds how long one slow client can hold up a cycle.
const writeTimeout = 100 * time.Millisecond

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// Broadcaster pushes every cycle's payload to all connected WebSocket clients.
// It is both an Exporter and the http.Handler clients connect to.
type Broadcaster struct {
	sel    Selection
	logger *zap.SugaredLogger

	mu      sync.Mutex
	clients map[*websocket.Conn]bool
	closed  bool
}

// NewBroadcaster creates a Broadcaster sending the selected fields.
func NewBroadcaster(sel Selection, logger *zap.SugaredLogger) (*Broadcaster, error) {
	if err := sel.Validate(); err != nil {
		return nil, fmt.Errorf("broadcaster selection: %w", err)
	}
	return &Broadcaster{
		sel:     sel,
		logger:  logger,
		clients: make(map[*websocket.Conn]bool),
	}, nil
}

// ServeHTTP handles WebSocket upgrade requests.
func (b *Broadcaster) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		b.logger.Warnw("websocket upgrade failed", "error", err)
		return
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		_ = conn.Close()
		return
	}
	b.clients[conn] = true
	b.mu.Unlock()

	defer b.drop(conn)

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// Clients returns the number of connected clients.
func (b *Broadcaster) Clients() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.clients)
}

// Export sends the cycle to every client. Clients that fail a write are
// disconnected; that is not an export error.
func (b *Broadcaster) Export(c Cycle) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.clients) == 0 {
		return nil
	}

	p, err := BuildPayload(c, b.sel)
	if err != nil {
		return err
	}
	msg, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	for conn := range b.clients {
		_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			b.logger.Debugw("dropping websocket client", "remote", conn.RemoteAddr().String(), "error", err)
			delete(b.clients, conn)
			_ = conn.Close()
		}
	}
	return nil
}

// Close disconnects all clients and refuses new ones.
func (b *Broadcaster) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	for conn := range b.clients {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "stream ended"),
			time.Now().Add(writeTimeout))
		_ = conn.Close()
		delete(b.clients, conn)
	}
	return nil
}

func (b *Broadcaster) drop(conn *websocket.Conn) {
	b.mu.Lock()
	delete(b.clients, conn)
	b.mu.Unlock()
	_ = conn.Close()
}
