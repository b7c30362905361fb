package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/zeusync/chickadee/internal/core/engine"
	"github.com/zeusync/chickadee/internal/core/input"
	"github.com/zeusync/chickadee/internal/core/observability/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// ClientSession represents a connected viewer
type ClientSession struct {
	ID          string
	conn        *websocket.Conn
	send        chan []byte
	done        chan struct{}
	once        sync.Once
	ConnectedAt time.Time
	LastSeen    int64 // atomic unix timestamp
}

func (c *ClientSession) close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if atomic.LoadInt32(&s.closed) == 1 {
		http.Error(w, ErrServerClosed.Error(), http.StatusServiceUnavailable)
		return
	}
	if int(atomic.AddInt64(&s.clientCount, 1)) > s.config.MaxClients {
		atomic.AddInt64(&s.clientCount, -1)
		s.logger.Warn("Maximum clients reached, rejecting connection", log.String("remote_addr", r.RemoteAddr))
		http.Error(w, ErrMaxClientsReached.Error(), http.StatusServiceUnavailable)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		atomic.AddInt64(&s.clientCount, -1)
		s.logger.Warn("Websocket upgrade failed", log.Error(err))
		return
	}
	if s.config.MaxMessageSize > 0 {
		conn.SetReadLimit(s.config.MaxMessageSize)
	}

	session := &ClientSession{
		ID:          uuid.NewString(),
		conn:        conn,
		send:        make(chan []byte, s.config.SendBuffer),
		done:        make(chan struct{}),
		ConnectedAt: time.Now(),
		LastSeen:    time.Now().Unix(),
	}
	s.clients.Store(session.ID, session)

	s.logger.Info("Client connected",
		log.String("client_id", session.ID),
		log.String("remote_addr", conn.RemoteAddr().String()),
		log.Int64("total_clients", s.ClientCount()))

	go s.writePump(session)
	s.readPump(session)
}

// readPump publishes client input until the connection fails.
func (s *Server) readPump(session *ClientSession) {
	defer func() {
		s.clients.Delete(session.ID)
		atomic.AddInt64(&s.clientCount, -1)
		session.close()
		s.logger.Info("Client disconnected",
			log.String("client_id", session.ID),
			log.Int64("total_clients", s.ClientCount()))
	}()

	for {
		_, data, err := session.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("Client read failed", log.String("client_id", session.ID), log.Error(err))
			}
			return
		}
		atomic.StoreInt64(&session.LastSeen, time.Now().Unix())

		ev, err := input.Decode(data)
		if err != nil {
			s.logger.Debug("Invalid input message", log.String("client_id", session.ID), log.Error(err))
			s.sendError(session, err)
			continue
		}
		if err = engine.PublishInput(s.bus, session.ID, ev); err != nil {
			s.logger.Warn("Input rejected", log.String("client_id", session.ID), log.Error(err))
		}
	}
}

func (s *Server) writePump(session *ClientSession) {
	for {
		select {
		case <-session.done:
			return
		case data := <-session.send:
			if s.config.WriteTimeout > 0 {
				_ = session.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
			}
			if err := session.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				s.logger.Debug("Client write failed", log.String("client_id", session.ID), log.Error(err))
				session.close()
				return
			}
		}
	}
}

type errorMessage struct {
	Error string `json:"error"`
}

func (s *Server) sendError(session *ClientSession, err error) {
	data, mErr := json.Marshal(errorMessage{Error: err.Error()})
	if mErr != nil {
		return
	}
	select {
	case session.send <- data:
	default:
	}
}
