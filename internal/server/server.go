package server

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/npezzotti/go-reelroom/internal/database"
	"github.com/npezzotti/go-reelroom/internal/presence"
	"github.com/npezzotti/go-reelroom/internal/stats"
	"github.com/npezzotti/go-reelroom/internal/types"
	"github.com/samber/lo"
)

const defaultEventTimeout = 10 * time.Second

var ErrShuttingDown = errors.New("chat server is shutting down")

// Store is the persistence the relay needs: project and movie chatroom
// lookups for joins and the message store for sends and pins.
type Store interface {
	database.ProjectStore
	database.MessageStore
	GetMovieChatroom(ctx context.Context, chatroomId string) (database.MovieChatroom, error)
}

type TokenVerifier interface {
	Verify(ctx context.Context, token string) (types.User, error)
}

type Censor interface {
	Censor(text string) string
}

type nopCensor struct{}

func (nopCensor) Censor(text string) string { return text }

type ChatServer struct {
	log          *log.Logger
	db           Store
	auth         TokenVerifier
	censor       Censor
	registry     *presence.Registry
	stats        stats.StatsProvider
	validate     *validator.Validate
	eventTimeout time.Duration

	sessions     map[string]*Session
	sessionsLock sync.RWMutex

	register   chan *Session
	deregister chan *Session
	stop       chan struct{}
	stopOnce   sync.Once
	done       chan struct{}
}

func NewChatServer(logger *log.Logger, db Store, verifier TokenVerifier, censor Censor, registry *presence.Registry, su stats.StatsProvider) (*ChatServer, error) {
	if db == nil || verifier == nil || registry == nil || su == nil {
		return nil, errors.New("chat server: missing dependency")
	}
	if censor == nil {
		censor = nopCensor{}
	}

	su.RegisterMetric(stats.NumActiveSessions)
	su.RegisterMetric(stats.NumActiveRooms)
	su.RegisterMetric(stats.MessagesSent)

	return &ChatServer{
		log:          logger,
		db:           db,
		auth:         verifier,
		censor:       censor,
		registry:     registry,
		stats:        su,
		validate:     validator.New(validator.WithRequiredStructEnabled()),
		eventTimeout: defaultEventTimeout,
		sessions:     make(map[string]*Session),
		register:     make(chan *Session),
		deregister:   make(chan *Session),
		stop:         make(chan struct{}),
		done:         make(chan struct{}),
	}, nil
}

// Run owns the session lifecycle. Sessions are started only after they are
// registered, so a session is always reachable by broadcasts before it
// handles its first event.
func (cs *ChatServer) Run() {
	defer close(cs.done)

	stop := cs.stop
	stopping := false
	for {
		select {
		case s := <-cs.register:
			cs.log.Printf("registering session %s", s.id)
			cs.addSession(s)
			go s.Write()
			go s.Read()
			if stopping {
				s.stopSession()
			}
		case s := <-cs.deregister:
			cs.log.Printf("deregistering session %s", s.id)
			cs.removeSession(s)
			if stopping && cs.sessionCount() == 0 {
				return
			}
		case <-stop:
			stop = nil
			stopping = true
			if cs.sessionCount() == 0 {
				return
			}

			cs.log.Println("stopping all sessions")
			for _, s := range cs.getSessions() {
				s.stopSession()
			}
		}
	}
}

// RegisterSession hands a freshly upgraded session to the run loop, which
// starts its read and write pumps.
func (cs *ChatServer) RegisterSession(s *Session) error {
	select {
	case cs.register <- s:
		return nil
	case <-cs.done:
		return ErrShuttingDown
	}
}

func (cs *ChatServer) deregisterSession(s *Session) {
	select {
	case cs.deregister <- s:
	case <-cs.done:
	}
}

// Shutdown stops every session and waits for the run loop to exit.
func (cs *ChatServer) Shutdown(ctx context.Context) error {
	cs.log.Println("received shutdown signal")
	cs.stopOnce.Do(func() { close(cs.stop) })

	select {
	case <-cs.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (cs *ChatServer) addSession(s *Session) {
	cs.sessionsLock.Lock()
	cs.sessions[s.id] = s
	cs.sessionsLock.Unlock()

	cs.stats.Incr(stats.NumActiveSessions)
}

func (cs *ChatServer) removeSession(s *Session) {
	cs.sessionsLock.Lock()
	_, ok := cs.sessions[s.id]
	delete(cs.sessions, s.id)
	cs.sessionsLock.Unlock()

	if ok {
		cs.stats.Decr(stats.NumActiveSessions)
	}
}

func (cs *ChatServer) getSession(id string) (*Session, bool) {
	cs.sessionsLock.RLock()
	defer cs.sessionsLock.RUnlock()

	s, ok := cs.sessions[id]
	return s, ok
}

func (cs *ChatServer) getSessions() []*Session {
	cs.sessionsLock.RLock()
	defer cs.sessionsLock.RUnlock()

	return lo.Values(cs.sessions)
}

func (cs *ChatServer) sessionCount() int {
	cs.sessionsLock.RLock()
	defer cs.sessionsLock.RUnlock()

	return len(cs.sessions)
}

// broadcast queues msg for every session joined to room except skip. A full
// send queue drops the frame for that session only.
func (cs *ChatServer) broadcast(room string, msg *ServerMessage, skip string) {
	members := cs.registry.Members(room)
	if skip != "" {
		members = lo.Without(members, skip)
	}

	for _, id := range members {
		if s, ok := cs.getSession(id); ok {
			s.queueMessage(msg)
		}
	}
}

// broadcastPresence announces a membership change of room: the new
// occupancy followed by who joined or left.
func (cs *ChatServer) broadcastPresence(room string, size int, user types.Sender, joined bool) {
	cs.broadcast(room, notification(&Notification{
		OnlineUsers: &OnlineUsers{ProjectId: room, Count: size},
	}), "")

	change := &PresenceChange{ProjectId: room, User: user}
	if joined {
		cs.broadcast(room, notification(&Notification{UserJoined: change}), "")
	} else {
		cs.broadcast(room, notification(&Notification{UserLeft: change}), "")
	}
}

// HistoryCleared tells every session in projectId that its message history
// was deleted.
func (cs *ChatServer) HistoryCleared(projectId string) {
	cs.broadcast(projectId, notification(&Notification{
		HistoryCleared: &HistoryCleared{ProjectId: projectId},
	}), "")
}

// OnlineCount returns the number of sessions joined to projectId.
func (cs *ChatServer) OnlineCount(projectId string) int {
	return cs.registry.SizeOf(projectId)
}
