package pipeview

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const reloadCommand = "reload"

// RemoteStatus is sent to websocket clients when they connect and after
// every reload attempt.
type RemoteStatus struct {
	Event  string `json:"event"`
	Source string `json:"source,omitempty"`
	Stats  *Stats `json:"stats,omitempty"`
	Error  string `json:"error,omitempty"`
}

// RemoteServer accepts reload requests over a websocket at /ws. A text
// message "reload" re-reads the geometry file; any other message is
// decoded as a geometry document.
type RemoteServer struct {
	path    string
	updates Updates
	log     *slog.Logger

	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]bool
	last    *Stats
}

func NewRemoteServer(path string, updates Updates, logger *slog.Logger) *RemoteServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &RemoteServer{
		path:    path,
		updates: updates,
		log:     logger.With("component", "remote"),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*websocket.Conn]bool),
	}
}

func (s *RemoteServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	return mux
}

// ListenAndServe serves until ctx is done.
func (s *RemoteServer) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Handler()}

	errc := make(chan error, 1)
	go func() {
		s.log.Info("remote reload listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("remote reload server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		s.closeClients()
		return srv.Shutdown(shutdownCtx)
	}
}

// SetCurrent records the stats sent to newly connected clients.
func (s *RemoteServer) SetCurrent(g *Geometry) {
	st := g.Stats()
	s.mu.Lock()
	s.last = &st
	s.mu.Unlock()
}

func (s *RemoteServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error("websocket upgrade", "err", err)
		return
	}

	if err := s.addClient(conn); err != nil {
		conn.Close()
		return
	}
	s.log.Info("client connected", "remote", r.RemoteAddr)

	defer func() {
		s.mu.Lock()
		delete(s.clients, conn)
		s.mu.Unlock()
		conn.Close()
		s.log.Info("client disconnected", "remote", r.RemoteAddr)
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		s.handleMessage(conn, msg)
	}
}

// addClient greets conn and registers it for broadcasts. A client that
// cannot receive the greeting is not registered.
func (s *RemoteServer) addClient(conn *websocket.Conn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.writeLocked(conn, RemoteStatus{Event: "hello", Stats: s.last}); err != nil {
		return err
	}
	s.clients[conn] = true
	return nil
}

func (s *RemoteServer) handleMessage(conn *websocket.Conn, msg []byte) {
	var (
		g      *Geometry
		err    error
		source string
	)
	if strings.TrimSpace(string(msg)) == reloadCommand {
		source = "file"
		if s.path == "" {
			err = errors.New("no geometry file to reload")
		} else {
			g, err = LoadGeometryFile(s.path)
		}
	} else {
		source = "message"
		g, err = DecodeGeometry(bytes.NewReader(msg))
	}

	if err != nil {
		s.log.Error("remote reload failed", "source", source, "err", err)
		s.mu.Lock()
		s.writeLocked(conn, RemoteStatus{Event: "error", Source: source, Error: err.Error()})
		s.mu.Unlock()
		return
	}

	s.updates.Publish(g)
	s.SetCurrent(g)
	st := g.Stats()
	s.Broadcast(RemoteStatus{Event: "applied", Source: source, Stats: &st})
}

// Broadcast sends status to every connected client. Clients that fail the
// write are dropped.
func (s *RemoteServer) Broadcast(status RemoteStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for client := range s.clients {
		if err := s.writeLocked(client, status); err != nil {
			client.Close()
			delete(s.clients, client)
		}
	}
}

// ClientCount is the number of connected websocket clients.
func (s *RemoteServer) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

func (s *RemoteServer) writeLocked(conn *websocket.Conn, status RemoteStatus) error {
	data, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("encode status: %w", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		s.log.Warn("websocket write", "err", err)
		return err
	}
	return nil
}

func (s *RemoteServer) closeClients() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for client := range s.clients {
		client.Close()
		delete(s.clients, client)
	}
}
