// Package server exposes a running engine to remote viewers over websocket.
// Each frame the draw list is pushed to every client; clients send input
// back, which is published on the engine input topic.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zeusync/chickadee/internal/config"
	"github.com/zeusync/chickadee/internal/core/engine"
	"github.com/zeusync/chickadee/internal/core/events/bus"
	"github.com/zeusync/chickadee/internal/core/observability/log"
	"github.com/zeusync/chickadee/internal/core/scene"
)

// Source is the part of the engine the viewer reads.
type Source interface {
	Draw(fn func(scene.DrawItem) error) error
	Frame() uint64
	Dropped() uint64
}

var _ engine.Service = (*Server)(nil)

// Server is the websocket viewer
type Server struct {
	source Source
	bus    bus.EventBus
	sub    bus.Subscription

	// Client management
	clients     sync.Map // map[string]*ClientSession
	clientCount int64    // atomic

	broadcasts atomic.Uint64
	dropped    atomic.Uint64

	running int32 // atomic bool
	closed  int32 // atomic bool

	config config.ViewerConfig
	logger log.Log
	mux    *http.ServeMux
}

// NewServer creates a viewer for source. Frames are announced and input is
// published through b.
func NewServer(cfg config.ViewerConfig, source Source, b bus.EventBus, logger log.Log) (*Server, error) {
	if source == nil || b == nil {
		return nil, ErrInvalidConfig
	}
	if cfg.MaxClients <= 0 || cfg.SendBuffer <= 0 {
		return nil, ErrInvalidConfig
	}
	if logger == nil {
		logger = log.Nop()
	}

	s := &Server{
		source: source,
		bus:    b,
		config: cfg,
		logger: logger.With(log.String("component", "viewer")),
		mux:    http.NewServeMux(),
	}
	s.mux.HandleFunc("/ws", s.handleWebSocket)
	s.mux.HandleFunc("/healthz", s.handleHealth)

	sub, err := b.SubscribeTopic(bus.TopicEngine, engine.EventFrame, s.onFrame)
	if err != nil {
		return nil, err
	}
	s.sub = sub

	s.logger.Info("Server created",
		log.String("listen_addr", cfg.ListenAddr),
		log.Int("max_clients", cfg.MaxClients))
	return s, nil
}

func (s *Server) Name() string { return "viewer" }

// Handler serves /ws and /healthz.
func (s *Server) Handler() http.Handler { return s.mux }

// Run listens on the configured address until ctx is cancelled, then shuts
// down and disconnects every client.
func (s *Server) Run(ctx context.Context) error {
	if atomic.LoadInt32(&s.closed) == 1 {
		return ErrServerClosed
	}
	if !atomic.CompareAndSwapInt32(&s.running, 0, 1) {
		return ErrServerAlreadyRunning
	}
	defer atomic.StoreInt32(&s.running, 0)

	ln, err := net.Listen("tcp", s.config.ListenAddr)
	if err != nil {
		s.logger.Error("Failed to create listener", log.Error(err))
		return err
	}
	httpServer := &http.Server{
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("Server listening", log.String("addr", ln.Addr().String()))

	errCh := make(chan error, 1)
	go func() { errCh <- httpServer.Serve(ln) }()

	select {
	case err = <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = httpServer.Shutdown(shutdownCtx)
		cancel()
	}
	s.disconnectAll()
	s.logger.Info("Server stopped")
	return err
}

// Close detaches from the bus and disconnects every client.
func (s *Server) Close() error {
	if !atomic.CompareAndSwapInt32(&s.closed, 0, 1) {
		return nil // Already closed
	}
	s.disconnectAll()
	if s.sub != nil {
		return s.sub.Cancel()
	}
	return nil
}

func (s *Server) disconnectAll() {
	s.clients.Range(func(_, value any) bool {
		if session, ok := value.(*ClientSession); ok {
			session.close()
		}
		return true
	})
}

// ClientCount is the number of connected viewers.
func (s *Server) ClientCount() int64 { return atomic.LoadInt64(&s.clientCount) }
