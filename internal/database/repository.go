package database

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")
)

// UserDirectory resolves identities for the relay and the chatroom manager.
type UserDirectory interface {
	GetAccountById(ctx context.Context, accountId int) (User, error)
	ListAllUserIds(ctx context.Context) ([]int, error)
}

type ProjectStore interface {
	GetProject(ctx context.Context, projectId string) (Project, error)
	UpdateChatSettings(ctx context.Context, params ChatSettingsParams) (Project, error)
	SetChatEndTime(ctx context.Context, projectId string, endTime time.Time) (Project, error)
	CloseChat(ctx context.Context, projectId string) error
	ListActiveProjects(ctx context.Context) ([]Project, error)
	ListChatroomStats(ctx context.Context) ([]ChatroomStats, error)
}

type MessageStore interface {
	CreateMessage(ctx context.Context, msg Message) (Message, error)
	GetMessageById(ctx context.Context, messageId string) (Message, error)
	SetMessagePinned(ctx context.Context, messageId string, pinned bool) (Message, error)
	SetMessageReported(ctx context.Context, messageId string) (Message, error)
	DeleteMessagesForProject(ctx context.Context, projectId string) (int64, error)
	CountMessagesForProject(ctx context.Context, projectId string) (int, error)
	ListMessagesForProject(ctx context.Context, projectId string, before time.Time, limit int) ([]Message, error)
}

type MovieChatroomStore interface {
	CreateMovieChatroom(ctx context.Context, params CreateMovieChatroomParams) (MovieChatroom, error)
	GetMovieChatroom(ctx context.Context, chatroomId string) (MovieChatroom, error)
	ActiveMovieChatroomExists(ctx context.Context, movieName string) (bool, error)
	ListActiveMovieChatrooms(ctx context.Context) ([]MovieChatroom, error)
	EndMovieChatroom(ctx context.Context, chatroomId string) error
}

// JoinRequestStore holds requests to become a project participant. Accepting
// a request adds the requester to the project's participants.
type JoinRequestStore interface {
	CreateJoinRequest(ctx context.Context, params CreateJoinRequestParams) (JoinRequest, error)
	GetJoinRequest(ctx context.Context, requestId int) (JoinRequest, error)
	ListSentJoinRequests(ctx context.Context, requesterId int) ([]JoinRequest, error)
	ListReceivedJoinRequests(ctx context.Context, ownerId int) ([]JoinRequest, error)
	AcceptJoinRequest(ctx context.Context, requestId int) (JoinRequest, error)
	RejectJoinRequest(ctx context.Context, requestId int) (JoinRequest, error)
	ListJoinableProjects(ctx context.Context, userId int) ([]Project, error)
}

type GoChatRepository interface {
	Ping() error
	CreateAccount(ctx context.Context, params CreateAccountParams) (User, error)
	GetAccountByEmail(ctx context.Context, email string) (User, error)
	UpdateUserStatus(ctx context.Context, params UpdateUserStatusParams) (User, error)
	CreateProject(ctx context.Context, params CreateProjectParams) (Project, error)
	UserDirectory
	ProjectStore
	MessageStore
	MovieChatroomStore
	JoinRequestStore
}
