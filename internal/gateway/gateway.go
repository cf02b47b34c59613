// Package gateway serves one application state container per WebSocket
// connection. Commands arrive as JSON objects and every state change is
// pushed back as a JSON event.
package gateway

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pauljones0/agriconnect/internal/app"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// Profile images travel base64 encoded inside a command.
	maxMessageSize = 2 << 20
	sendBuffer     = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// AppFactory builds the state container for a new connection.
type AppFactory func(ctx context.Context, emit func(app.Event)) *app.App

// Server upgrades requests to WebSocket connections and tracks them so they
// can all be closed on shutdown.
type Server struct {
	newApp AppFactory

	mu      sync.Mutex
	closed  bool
	clients map[*client]struct{}
	wg      sync.WaitGroup
}

func NewServer(newApp AppFactory) *Server {
	return &Server{
		newApp:  newApp,
		clients: make(map[*client]struct{}),
	}
}

// ServeHTTP handles one connection until the client goes away or the
// server shuts down.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("WebSocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &client{
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		done:   make(chan struct{}),
		cancel: cancel,
	}
	if !s.register(c) {
		cancel()
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(writeWait))
		conn.Close()
		return
	}
	defer s.unregister(c)

	slog.Info("Client connected", "remote", r.RemoteAddr)
	c.app = s.newApp(ctx, c.enqueue)

	go c.writePump()
	c.readPump(ctx)

	c.close()
	c.pending.Wait()
	c.app.Close()
	slog.Info("Client disconnected", "remote", r.RemoteAddr)
}

func (s *Server) register(c *client) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.clients[c] = struct{}{}
	s.wg.Add(1)
	return true
}

func (s *Server) unregister(c *client) {
	s.mu.Lock()
	delete(s.clients, c)
	s.mu.Unlock()
	s.wg.Done()
}

// Clients reports how many connections are open.
func (s *Server) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Shutdown closes every connection and waits until each one has released
// its subscriptions, or until ctx ends.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	open := make([]*client, 0, len(s.clients))
	for c := range s.clients {
		open = append(open, c)
	}
	s.mu.Unlock()

	slog.Info("Closing WebSocket connections", "count", len(open))
	for _, c := range open {
		c.close()
	}

	finished := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(finished)
	}()
	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type client struct {
	conn   *websocket.Conn
	app    *app.App
	send   chan []byte
	cancel context.CancelFunc

	// pending tracks commands running off the read loop.
	pending sync.WaitGroup

	once sync.Once
	done chan struct{}
}

// close ends both pumps. It is safe to call more than once.
func (c *client) close() {
	c.once.Do(func() {
		c.cancel()
		close(c.done)
		c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(writeWait))
		c.conn.Close()
	})
}

// enqueue hands an event to the write pump. A client that cannot keep up
// is disconnected rather than allowed to stall its App.
func (c *client) enqueue(e app.Event) {
	data, err := json.Marshal(e)
	if err != nil {
		slog.Error("Failed to encode event", "type", e.Type, "error", err)
		return
	}
	select {
	case c.send <- data:
	case <-c.done:
	default:
		slog.Warn("Client send buffer full, disconnecting", "remote", c.conn.RemoteAddr())
		c.close()
	}
}

func (c *client) readPump(ctx context.Context) {
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("WebSocket read failed", "remote", c.conn.RemoteAddr(), "error", err)
			}
			return
		}
		var cmd Command
		if err := json.Unmarshal(data, &cmd); err != nil {
			slog.Debug("Undecodable command", "error", err)
			c.app.Reject("decode", "That request could not be read.")
			continue
		}

		if slowOps[cmd.Op] {
			c.pending.Add(1)
			go func() {
				defer c.pending.Done()
				c.run(ctx, cmd)
			}()
			continue
		}
		c.run(ctx, cmd)
	}
}

func (c *client) run(ctx context.Context, cmd Command) {
	if err := dispatch(ctx, c.app, cmd); err != nil {
		slog.Debug("Command failed", "op", cmd.Op, "error", err)
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case data := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}
