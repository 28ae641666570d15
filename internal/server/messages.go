package server

import (
	"net/http"
	"time"

	"github.com/npezzotti/go-reelroom/internal/types"
)

type BaseMessage struct {
	Id        int       `json:"id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ClientMessage is a single event sent by a client. Exactly one of the event
// fields is set per frame.
type ClientMessage struct {
	BaseMessage
	JoinProject *JoinProject `json:"joinProject,omitempty"`
	SendMessage *SendMessage `json:"sendMessage,omitempty"`
	Typing      *TypingEvent `json:"typing,omitempty"`
	StopTyping  *TypingEvent `json:"stopTyping,omitempty"`
	TogglePin   *TogglePin   `json:"togglePin,omitempty"`
}

func (m *ClientMessage) eventCount() int {
	n := 0
	if m.JoinProject != nil {
		n++
	}
	if m.SendMessage != nil {
		n++
	}
	if m.Typing != nil {
		n++
	}
	if m.StopTyping != nil {
		n++
	}
	if m.TogglePin != nil {
		n++
	}
	return n
}

type JoinProject struct {
	ProjectId string `json:"projectId" validate:"required,max=64"`
	AuthToken string `json:"authToken" validate:"required"`
}

type SendMessage struct {
	ProjectId   string `json:"projectId" validate:"required"`
	Message     string `json:"message" validate:"required_if=MessageType text,max=4000"`
	MessageType string `json:"messageType" validate:"oneof=text file"`
	FileUrl     string `json:"fileUrl,omitempty" validate:"omitempty,url"`
	FileName    string `json:"fileName,omitempty" validate:"max=255"`
}

type TypingEvent struct {
	ProjectId string `json:"projectId" validate:"required"`
}

type TogglePin struct {
	MessageId string `json:"messageId" validate:"required,uuid"`
	Pinned    *bool  `json:"pinned" validate:"required"`
}

type ServerMessage struct {
	BaseMessage
	Response     *Response          `json:"response,omitempty"`
	Message      *types.ChatMessage `json:"message,omitempty"`
	Notification *Notification      `json:"notification,omitempty"`
}

type Response struct {
	ResponseCode int    `json:"response_code"`
	Error        string `json:"error,omitempty"`
	Data         any    `json:"data,omitempty"`
}

type Notification struct {
	OnlineUsers    *OnlineUsers       `json:"onlineUsers,omitempty"`
	UserJoined     *PresenceChange    `json:"userJoined,omitempty"`
	UserLeft       *PresenceChange    `json:"userLeft,omitempty"`
	Typing         *PresenceChange    `json:"typing,omitempty"`
	StopTyping     *PresenceChange    `json:"stopTyping,omitempty"`
	MessagePinned  *types.ChatMessage `json:"messagePinned,omitempty"`
	HistoryCleared *HistoryCleared    `json:"historyCleared,omitempty"`
}

type OnlineUsers struct {
	ProjectId string `json:"projectId"`
	Count     int    `json:"count"`
}

type PresenceChange struct {
	ProjectId string       `json:"projectId"`
	User      types.Sender `json:"user"`
}

type HistoryCleared struct {
	ProjectId string `json:"projectId"`
}

// JoinResult is the payload of a successful joinProject response. Exactly one
// of Project and MovieChatroom is set.
type JoinResult struct {
	Project       *types.Project       `json:"project,omitempty"`
	MovieChatroom *types.MovieChatroom `json:"movieChatroom,omitempty"`
	Online        int                  `json:"online"`
}

func notification(n *Notification) *ServerMessage {
	return &ServerMessage{
		BaseMessage: BaseMessage{
			Timestamp: Now(),
		},
		Notification: n,
	}
}

func NoErrOK(id int, data any) *ServerMessage {
	return &ServerMessage{
		BaseMessage: BaseMessage{
			Id:        id,
			Timestamp: Now(),
		},
		Response: &Response{
			ResponseCode: http.StatusOK,
			Data:         data,
		},
	}
}

func NoErrAccepted(id int, data any) *ServerMessage {
	return &ServerMessage{
		BaseMessage: BaseMessage{
			Id:        id,
			Timestamp: Now(),
		},
		Response: &Response{
			ResponseCode: http.StatusAccepted,
			Data:         data,
		},
	}
}

func ErrUnauthorized(id int) *ServerMessage {
	return &ServerMessage{
		BaseMessage: BaseMessage{
			Id:        id,
			Timestamp: Now(),
		},
		Response: &Response{
			ResponseCode: http.StatusUnauthorized,
			Error:        "unauthorized",
		},
	}
}

func ErrForbidden(id int, reason string) *ServerMessage {
	return &ServerMessage{
		BaseMessage: BaseMessage{
			Id:        id,
			Timestamp: Now(),
		},
		Response: &Response{
			ResponseCode: http.StatusForbidden,
			Error:        reason,
		},
	}
}

func ErrNotFound(id int, reason string) *ServerMessage {
	return &ServerMessage{
		BaseMessage: BaseMessage{
			Id:        id,
			Timestamp: Now(),
		},
		Response: &Response{
			ResponseCode: http.StatusNotFound,
			Error:        reason,
		},
	}
}

func ErrInternalError(id int) *ServerMessage {
	return &ServerMessage{
		BaseMessage: BaseMessage{
			Id:        id,
			Timestamp: Now(),
		},
		Response: &Response{
			ResponseCode: http.StatusInternalServerError,
			Error:        "internal server error",
		},
	}
}

func ErrServiceUnavailable(id int) *ServerMessage {
	return &ServerMessage{
		BaseMessage: BaseMessage{
			Id:        id,
			Timestamp: Now(),
		},
		Response: &Response{
			ResponseCode: http.StatusServiceUnavailable,
			Error:        "service unavailable",
		},
	}
}

func ErrInvalidMessage(id int) *ServerMessage {
	msg := &ServerMessage{
		BaseMessage: BaseMessage{
			Timestamp: Now(),
		},
		Response: &Response{
			ResponseCode: http.StatusBadRequest,
			Error:        "invalid message format",
		},
	}

	if id > 0 {
		msg.Id = id
	}
	return msg
}

func Now() time.Time {
	return time.Now().UTC().Round(time.Millisecond)
}
