package web

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/netutil"

	"github.com/lanternpress/lantern/pkg/content"
	"github.com/lanternpress/lantern/pkg/infrastructure/logging"
	"github.com/lanternpress/lantern/pkg/readcache"
	"github.com/lanternpress/lantern/pkg/search"
)

// Event is pushed to websocket subscribers whenever a write changes what
// readers can observe.
type Event struct {
	Type   string    `json:"type"`
	PostID string    `json:"post_id,omitempty"`
	At     time.Time `json:"at"`
}

// Server is the HTTP front of the publishing backend. Writes go straight
// to the store and then invalidate the read cache and update the search
// index; reads go through the cached reader.
type Server struct {
	store  content.Store
	reader *readcache.Reader
	engine *search.Engine
	hook   *search.IndexHook
	logger *logging.Logger

	router   *mux.Router
	srv      *http.Server
	maxConns int

	wsUpgrader websocket.Upgrader
	wsMutex    sync.Mutex
	wsClients  map[*websocket.Conn]chan Event
}

// NewServer wires the API routes. maxConns bounds concurrent connections;
// zero means unlimited.
func NewServer(store content.Store, reader *readcache.Reader, engine *search.Engine, hook *search.IndexHook, logger *logging.Logger, maxConns int) *Server {
	s := &Server{
		store:    store,
		reader:   reader,
		engine:   engine,
		hook:     hook,
		logger:   logger.WithComponent("web"),
		maxConns: maxConns,
		wsUpgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		wsClients: make(map[*websocket.Conn]chan Event),
	}

	router := mux.NewRouter()

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/posts", s.handleListPosts).Methods("GET")
	api.HandleFunc("/posts", s.handleCreatePost).Methods("POST")
	api.HandleFunc("/posts/{id}", s.handleGetPost).Methods("GET")
	api.HandleFunc("/posts/{id}", s.handleUpdatePost).Methods("PUT")
	api.HandleFunc("/posts/{id}", s.handleDeletePost).Methods("DELETE")
	api.HandleFunc("/posts/{id}/comments", s.handleCreateComment).Methods("POST")
	api.HandleFunc("/comments/{id}", s.handleDeleteComment).Methods("DELETE")
	api.HandleFunc("/search", s.handleSearch).Methods("POST")
	api.HandleFunc("/users", s.handleCreateUser).Methods("POST")
	api.HandleFunc("/admin/users/{id}/status", s.handleSetUserStatus).Methods("POST")
	api.HandleFunc("/ws", s.handleWebSocket)

	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	s.router = router
	return s
}

// Handler exposes the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe blocks serving requests until ctx is cancelled or the
// listener fails.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	if s.maxConns > 0 {
		ln = netutil.LimitListener(ln, s.maxConns)
	}

	s.srv = &http.Server{
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.srv.Serve(ln)
	}()

	s.logger.Info("server listening", map[string]interface{}{"addr": ln.Addr().String()})

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

func (s *Server) broadcast(event Event) {
	s.wsMutex.Lock()
	defer s.wsMutex.Unlock()
	for conn, ch := range s.wsClients {
		select {
		case ch <- event:
		default:
			s.logger.Warn("websocket client lagging, dropping event", map[string]interface{}{
				"remote": conn.RemoteAddr().String(),
			})
		}
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", map[string]interface{}{"error": err.Error()})
		return
	}

	clientChan := make(chan Event, 64)

	s.wsMutex.Lock()
	s.wsClients[conn] = clientChan
	s.wsMutex.Unlock()

	defer func() {
		s.wsMutex.Lock()
		delete(s.wsClients, conn)
		s.wsMutex.Unlock()
		close(clientChan)
		conn.Close()
	}()

	go func() {
		for msg := range clientChan {
			if err := conn.WriteJSON(msg); err != nil {
				return
			}
		}
	}()

	// Drain incoming frames until the client goes away.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}
