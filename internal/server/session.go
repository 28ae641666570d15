package server

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/npezzotti/go-reelroom/internal/stats"
	"github.com/npezzotti/go-reelroom/internal/types"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingInterval   = (pongWait * 9) / 10
	maxMessageSize = 16 * 1024
	sendQueueSize  = 256
)

// Session is one websocket connection. Events are read and dispatched by a
// single goroutine, so user and room are only touched from Read.
type Session struct {
	id   string
	conn *websocket.Conn
	cs   *ChatServer
	log  *log.Logger
	send chan *ServerMessage

	ctx    context.Context
	cancel context.CancelFunc

	user *types.User
	room string

	stop           chan struct{}
	stopOnce       sync.Once
	disconnectOnce sync.Once
}

func NewSession(conn *websocket.Conn, cs *ChatServer, l *log.Logger) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		id:     uuid.NewString(),
		conn:   conn,
		cs:     cs,
		log:    l,
		send:   make(chan *ServerMessage, sendQueueSize),
		ctx:    ctx,
		cancel: cancel,
		stop:   make(chan struct{}),
	}
}

func (s *Session) Id() string {
	return s.id
}

func (s *Session) Write() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case msg := <-s.send:
			bytes, err := serializeMessage(msg)
			if err != nil {
				s.log.Println("failed to serialize message:", err)
				continue
			}

			if !s.writeMessage(websocket.TextMessage, bytes) {
				return
			}
		case <-s.stop:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			s.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "session closed"))
			return
		case <-ticker.C:
			if !s.writeMessage(websocket.PingMessage, nil) {
				return
			}
		}
	}
}

func (s *Session) Read() {
	defer func() {
		s.conn.Close()
		s.disconnect()
	}()

	s.conn.SetReadLimit(maxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error { s.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				s.log.Printf("ws: read: %v", err)
			}
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			s.log.Println("error parsing message:", err)
			s.queueMessage(ErrInvalidMessage(-1))
			continue
		}

		msg.Timestamp = Now()
		s.dispatch(&msg)
	}
}

func (s *Session) queueMessage(msg *ServerMessage) bool {
	select {
	case s.send <- msg:
	default:
		s.log.Printf("send queue full for session %s, dropping message", s.id)
		return false
	}

	return true
}

func serializeMessage(msg *ServerMessage) ([]byte, error) {
	return json.Marshal(msg)
}

func (s *Session) writeMessage(msgType int, msg []byte) bool {
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))

	if err := s.conn.WriteMessage(msgType, msg); err != nil {
		if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure,
			websocket.CloseNormalClosure) {
			s.log.Printf("write message: %s", err)
		}
		return false
	}

	return true
}

func (s *Session) stopSession() {
	s.stopOnce.Do(func() { close(s.stop) })
}

// disconnect runs the departure sequence once, however many times the
// transport reports closure.
func (s *Session) disconnect() {
	s.disconnectOnce.Do(func() {
		s.cancel()
		s.leaveCurrentRoom()
		s.stopSession()
		s.cs.deregisterSession(s)
	})
}

func (s *Session) sender() types.Sender {
	if s.user == nil {
		return types.Sender{}
	}
	return types.Sender{Id: s.user.Id, Username: s.user.Username}
}

// leaveCurrentRoom removes the session from its room and announces the
// departure to the sessions that remain.
func (s *Session) leaveCurrentRoom() {
	if s.room == "" {
		return
	}

	room := s.room
	s.room = ""

	size := s.cs.registry.Leave(room, s.id)
	if size == 0 {
		s.cs.stats.Decr(stats.NumActiveRooms)
	}
	s.log.Printf("session %s left project %q, %d online", s.id, room, size)

	s.cs.broadcastPresence(room, size, s.sender(), false)
}
