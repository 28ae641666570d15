package server

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/npezzotti/go-reelroom/internal/auth"
	"github.com/npezzotti/go-reelroom/internal/database"
	"github.com/npezzotti/go-reelroom/internal/stats"
	"github.com/npezzotti/go-reelroom/internal/types"
)

var (
	errForbidden      = errors.New("forbidden")
	ErrInvalidPayload = errors.New("invalid payload")

	ErrNotJoined    = fmt.Errorf("%w: join a project first", errForbidden)
	ErrWrongProject = fmt.Errorf("%w: not joined to this project", errForbidden)
)

// dispatch runs one client event to completion. Handler errors are turned
// into a response frame for the sender and never reach other sessions.
func (s *Session) dispatch(msg *ClientMessage) {
	if msg.eventCount() != 1 {
		s.queueMessage(ErrInvalidMessage(msg.Id))
		return
	}

	if msg.SendMessage != nil && msg.SendMessage.MessageType == "" {
		msg.SendMessage.MessageType = types.MessageTypeText
	}

	if err := s.cs.validate.Struct(msg); err != nil {
		s.log.Printf("session %s: invalid event: %v", s.id, err)
		s.queueMessage(ErrInvalidMessage(msg.Id))
		return
	}

	ctx, cancel := context.WithTimeout(s.ctx, s.cs.eventTimeout)
	defer cancel()

	var err error
	switch {
	case msg.JoinProject != nil:
		err = s.handleJoin(ctx, msg)
	case msg.SendMessage != nil:
		err = s.handleSend(ctx, msg)
	case msg.Typing != nil:
		err = s.handleTyping(msg.Typing, true)
	case msg.StopTyping != nil:
		err = s.handleTyping(msg.StopTyping, false)
	case msg.TogglePin != nil:
		err = s.handleTogglePin(ctx, msg)
	}

	if err != nil {
		s.log.Printf("session %s: %v", s.id, err)
		s.queueMessage(responseForError(msg.Id, err))
	}
}

func responseForError(id int, err error) *ServerMessage {
	var validationErrs validator.ValidationErrors
	switch {
	case errors.Is(err, auth.ErrInvalidToken):
		return ErrUnauthorized(id)
	case errors.Is(err, database.ErrNotFound):
		return ErrNotFound(id, err.Error())
	case errors.Is(err, errForbidden):
		return ErrForbidden(id, err.Error())
	case errors.Is(err, ErrInvalidPayload), errors.As(err, &validationErrs):
		return ErrInvalidMessage(id)
	default:
		return ErrInternalError(id)
	}
}

// joinTarget is a room a session may join: a project chatroom or an active
// movie chatroom.
type joinTarget struct {
	project *database.Project
	movie   *database.MovieChatroom
}

func (t joinTarget) id() string {
	if t.movie != nil {
		return t.movie.Id
	}
	return t.project.Id
}

// admits reports whether the user may chat in the room. Movie chatrooms are
// open to everyone.
func (t joinTarget) admits(user types.User) bool {
	if t.movie != nil {
		return true
	}
	return user.IsAdmin || t.project.HasParticipant(user.Id)
}

func (t joinTarget) result(online int) JoinResult {
	res := JoinResult{Online: online}
	if t.movie != nil {
		mc := t.movie.ToMovieChatroom()
		res.MovieChatroom = &mc
	} else {
		p := t.project.ToProject(online)
		res.Project = &p
	}
	return res
}

// lookupRoom resolves a room id to a project, falling back to active movie
// chatrooms.
func (s *Session) lookupRoom(ctx context.Context, roomId string) (joinTarget, error) {
	project, err := s.cs.db.GetProject(ctx, roomId)
	if err == nil {
		return joinTarget{project: &project}, nil
	}
	if !errors.Is(err, database.ErrNotFound) {
		return joinTarget{}, fmt.Errorf("get project: %w", err)
	}

	mc, err := s.cs.db.GetMovieChatroom(ctx, roomId)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return joinTarget{}, fmt.Errorf("project %q: %w", roomId, err)
		}
		return joinTarget{}, fmt.Errorf("get movie chatroom: %w", err)
	}
	if !mc.IsActive {
		return joinTarget{}, fmt.Errorf("movie chatroom %q has ended: %w", roomId, database.ErrNotFound)
	}

	return joinTarget{movie: &mc}, nil
}

func (s *Session) handleJoin(ctx context.Context, msg *ClientMessage) error {
	req := msg.JoinProject

	user, err := s.cs.auth.Verify(ctx, req.AuthToken)
	if err != nil {
		return fmt.Errorf("join %q: %w", req.ProjectId, err)
	}

	target, err := s.lookupRoom(ctx, req.ProjectId)
	if err != nil {
		return err
	}
	room := target.id()

	if user.IsBlocked {
		return fmt.Errorf("%w: user is blocked", errForbidden)
	}
	if !target.admits(user) {
		return fmt.Errorf("%w: not a participant of project %q", errForbidden, room)
	}

	if s.room == room {
		// the room only knows the identity that joined it
		if s.user != nil && s.user.Id != user.Id {
			return fmt.Errorf("%w: session already joined %q as another user", errForbidden, room)
		}
		s.user = &user
		s.queueMessage(NoErrOK(msg.Id, target.result(s.cs.registry.SizeOf(room))))
		return nil
	}

	// one room per session; the departure is announced under the old identity
	s.leaveCurrentRoom()
	s.user = &user

	size := s.cs.registry.Join(room, s.id)
	if size == 1 {
		s.cs.stats.Incr(stats.NumActiveRooms)
	}
	s.room = room
	s.log.Printf("session %s (%s) joined room %q, %d online", s.id, user.Username, room, size)

	s.queueMessage(NoErrOK(msg.Id, target.result(size)))
	s.cs.broadcastPresence(room, size, s.sender(), true)

	return nil
}

func (s *Session) handleSend(ctx context.Context, msg *ClientMessage) error {
	req := msg.SendMessage

	if s.room == "" {
		return ErrNotJoined
	}
	if req.ProjectId != s.room {
		return ErrWrongProject
	}
	if s.user.IsMuted {
		return fmt.Errorf("%w: user is muted", errForbidden)
	}
	if req.MessageType == types.MessageTypeFile && req.FileUrl == "" {
		return fmt.Errorf("%w: file messages require a fileUrl", ErrInvalidPayload)
	}

	saved, err := s.cs.db.CreateMessage(ctx, database.Message{
		Id:          uuid.NewString(),
		ProjectId:   s.room,
		SenderId:    s.user.Id,
		SenderName:  s.user.Username,
		Body:        s.cs.censor.Censor(req.Message),
		MessageType: req.MessageType,
		FileUrl:     req.FileUrl,
		FileName:    req.FileName,
		CreatedAt:   Now(),
	})
	if err != nil {
		return fmt.Errorf("create message: %w", err)
	}

	chatMsg := saved.ToChatMessage()
	s.queueMessage(NoErrAccepted(msg.Id, map[string]string{"message_id": chatMsg.Id}))
	s.cs.broadcast(s.room, &ServerMessage{
		BaseMessage: BaseMessage{
			Timestamp: Now(),
		},
		Message: &chatMsg,
	}, "")
	s.cs.stats.Incr(stats.MessagesSent)

	return nil
}

func (s *Session) handleTyping(req *TypingEvent, typing bool) error {
	if s.room == "" {
		return ErrNotJoined
	}
	if req.ProjectId != s.room {
		return ErrWrongProject
	}

	change := &PresenceChange{ProjectId: s.room, User: s.sender()}
	n := &Notification{StopTyping: change}
	if typing {
		n = &Notification{Typing: change}
	}
	s.cs.broadcast(s.room, notification(n), s.id)

	return nil
}

func (s *Session) handleTogglePin(ctx context.Context, msg *ClientMessage) error {
	req := msg.TogglePin

	if s.room == "" {
		return ErrNotJoined
	}

	stored, err := s.cs.db.GetMessageById(ctx, req.MessageId)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return fmt.Errorf("message %q: %w", req.MessageId, err)
		}
		return fmt.Errorf("get message: %w", err)
	}
	if stored.ProjectId != s.room {
		return ErrWrongProject
	}

	updated, err := s.cs.db.SetMessagePinned(ctx, req.MessageId, *req.Pinned)
	if err != nil {
		return fmt.Errorf("set message pinned: %w", err)
	}

	chatMsg := updated.ToChatMessage()
	s.queueMessage(NoErrOK(msg.Id, chatMsg))
	s.cs.broadcast(s.room, notification(&Notification{MessagePinned: &chatMsg}), "")

	return nil
}
