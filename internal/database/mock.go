package database

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

type MockGoChatRepository struct {
	mock.Mock
}

func (m *MockGoChatRepository) Ping() error {
	args := m.Called()
	return args.Error(0)
}
func (m *MockGoChatRepository) CreateAccount(ctx context.Context, params CreateAccountParams) (User, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockGoChatRepository) GetAccountById(ctx context.Context, accountId int) (User, error) {
	args := m.Called(ctx, accountId)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockGoChatRepository) GetAccountByEmail(ctx context.Context, email string) (User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockGoChatRepository) ListAllUserIds(ctx context.Context) ([]int, error) {
	args := m.Called(ctx)
	if ids, ok := args.Get(0).([]int); ok {
		return ids, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *MockGoChatRepository) UpdateUserStatus(ctx context.Context, params UpdateUserStatusParams) (User, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockGoChatRepository) CreateProject(ctx context.Context, params CreateProjectParams) (Project, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(Project), args.Error(1)
}
func (m *MockGoChatRepository) GetProject(ctx context.Context, projectId string) (Project, error) {
	args := m.Called(ctx, projectId)
	return args.Get(0).(Project), args.Error(1)
}
func (m *MockGoChatRepository) UpdateChatSettings(ctx context.Context, params ChatSettingsParams) (Project, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(Project), args.Error(1)
}
func (m *MockGoChatRepository) SetChatEndTime(ctx context.Context, projectId string, endTime time.Time) (Project, error) {
	args := m.Called(ctx, projectId, endTime)
	return args.Get(0).(Project), args.Error(1)
}
func (m *MockGoChatRepository) CloseChat(ctx context.Context, projectId string) error {
	args := m.Called(ctx, projectId)
	return args.Error(0)
}
func (m *MockGoChatRepository) ListActiveProjects(ctx context.Context) ([]Project, error) {
	args := m.Called(ctx)
	if projects, ok := args.Get(0).([]Project); ok {
		return projects, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *MockGoChatRepository) ListChatroomStats(ctx context.Context) ([]ChatroomStats, error) {
	args := m.Called(ctx)
	if stats, ok := args.Get(0).([]ChatroomStats); ok {
		return stats, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *MockGoChatRepository) CreateMessage(ctx context.Context, msg Message) (Message, error) {
	args := m.Called(ctx, msg)
	return args.Get(0).(Message), args.Error(1)
}
func (m *MockGoChatRepository) GetMessageById(ctx context.Context, messageId string) (Message, error) {
	args := m.Called(ctx, messageId)
	return args.Get(0).(Message), args.Error(1)
}
func (m *MockGoChatRepository) SetMessagePinned(ctx context.Context, messageId string, pinned bool) (Message, error) {
	args := m.Called(ctx, messageId, pinned)
	return args.Get(0).(Message), args.Error(1)
}
func (m *MockGoChatRepository) SetMessageReported(ctx context.Context, messageId string) (Message, error) {
	args := m.Called(ctx, messageId)
	return args.Get(0).(Message), args.Error(1)
}
func (m *MockGoChatRepository) DeleteMessagesForProject(ctx context.Context, projectId string) (int64, error) {
	args := m.Called(ctx, projectId)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockGoChatRepository) CountMessagesForProject(ctx context.Context, projectId string) (int, error) {
	args := m.Called(ctx, projectId)
	return args.Int(0), args.Error(1)
}
func (m *MockGoChatRepository) ListMessagesForProject(ctx context.Context, projectId string, before time.Time, limit int) ([]Message, error) {
	args := m.Called(ctx, projectId, before, limit)
	if messages, ok := args.Get(0).([]Message); ok {
		return messages, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *MockGoChatRepository) CreateMovieChatroom(ctx context.Context, params CreateMovieChatroomParams) (MovieChatroom, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(MovieChatroom), args.Error(1)
}
func (m *MockGoChatRepository) ActiveMovieChatroomExists(ctx context.Context, movieName string) (bool, error) {
	args := m.Called(ctx, movieName)
	return args.Bool(0), args.Error(1)
}
func (m *MockGoChatRepository) ListActiveMovieChatrooms(ctx context.Context) ([]MovieChatroom, error) {
	args := m.Called(ctx)
	if chatrooms, ok := args.Get(0).([]MovieChatroom); ok {
		return chatrooms, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *MockGoChatRepository) EndMovieChatroom(ctx context.Context, chatroomId string) error {
	args := m.Called(ctx, chatroomId)
	return args.Error(0)
}
func (m *MockGoChatRepository) GetMovieChatroom(ctx context.Context, chatroomId string) (MovieChatroom, error) {
	args := m.Called(ctx, chatroomId)
	return args.Get(0).(MovieChatroom), args.Error(1)
}
func (m *MockGoChatRepository) CreateJoinRequest(ctx context.Context, params CreateJoinRequestParams) (JoinRequest, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(JoinRequest), args.Error(1)
}
func (m *MockGoChatRepository) GetJoinRequest(ctx context.Context, requestId int) (JoinRequest, error) {
	args := m.Called(ctx, requestId)
	return args.Get(0).(JoinRequest), args.Error(1)
}
func (m *MockGoChatRepository) ListSentJoinRequests(ctx context.Context, requesterId int) ([]JoinRequest, error) {
	args := m.Called(ctx, requesterId)
	if requests, ok := args.Get(0).([]JoinRequest); ok {
		return requests, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *MockGoChatRepository) ListReceivedJoinRequests(ctx context.Context, ownerId int) ([]JoinRequest, error) {
	args := m.Called(ctx, ownerId)
	if requests, ok := args.Get(0).([]JoinRequest); ok {
		return requests, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *MockGoChatRepository) AcceptJoinRequest(ctx context.Context, requestId int) (JoinRequest, error) {
	args := m.Called(ctx, requestId)
	return args.Get(0).(JoinRequest), args.Error(1)
}
func (m *MockGoChatRepository) RejectJoinRequest(ctx context.Context, requestId int) (JoinRequest, error) {
	args := m.Called(ctx, requestId)
	return args.Get(0).(JoinRequest), args.Error(1)
}
func (m *MockGoChatRepository) ListJoinableProjects(ctx context.Context, userId int) ([]Project, error) {
	args := m.Called(ctx, userId)
	if projects, ok := args.Get(0).([]Project); ok {
		return projects, args.Error(1)
	}
	return nil, args.Error(1)
}
