package api

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/npezzotti/go-reelroom/internal/database"
	"github.com/npezzotti/go-reelroom/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	adminUser  = database.User{Id: 1, Username: "admin", IsAdmin: true}
	memberUser = database.User{Id: 2, Username: "bob"}
	outsider   = database.User{Id: 3, Username: "carol"}

	testProject = database.Project{
		Id:           "P1",
		Title:        "Short film",
		OwnerId:      1,
		ChatActive:   true,
		Participants: []int{1, 2},
	}
)

func Test_healthCheck(t *testing.T) {
	tcases := []struct {
		name    string
		mockErr error
	}{
		{
			name:    "successful health check",
			mockErr: nil,
		},
		{
			name:    "failed health check",
			mockErr: errors.New("db error"),
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			db := &database.MockGoChatRepository{}
			defer db.AssertExpectations(t)
			db.On("Ping").Return(tc.mockErr).Once()

			app := newTestApp(t, db)
			rr := doRequest(t, app, http.MethodGet, "/healthz", nil, "")

			if tc.mockErr != nil {
				assert.Equal(t, http.StatusInternalServerError, rr.Code, "expected status code to be 500")
			} else {
				assert.Equal(t, http.StatusOK, rr.Code, "expected status code to be 200")
				assert.Equal(t, "OK", rr.Body.String(), "expected response body to be 'OK'")
			}
		})
	}
}

func TestCreateProjectHandler(t *testing.T) {
	t.Run("creates project owned by the caller", func(t *testing.T) {
		db := &database.MockGoChatRepository{}
		defer db.AssertExpectations(t)
		db.On("CreateProject", mock.Anything, database.CreateProjectParams{
			Id:          "PPBqWA9",
			Title:       "Short film",
			Description: "a test",
			OwnerId:     2,
		}).Return(database.Project{
			Id:           "PPBqWA9",
			Title:        "Short film",
			Description:  "a test",
			OwnerId:      2,
			Participants: []int{2},
		}, nil).Once()

		app := newTestApp(t, db)
		app.generateShortId = func() (string, error) { return "PPBqWA9", nil }

		rr := doRequest(t, app, http.MethodPost, "/api/projects", CreateProjectRequest{
			Title:       " Short film ",
			Description: "a test",
		}, testToken(t, 2))

		assert.Equal(t, http.StatusCreated, rr.Code)
		project := decodeBody[types.Project](t, rr)
		assert.Equal(t, "PPBqWA9", project.Id)
		assert.Equal(t, 2, project.OwnerId)
		assert.Equal(t, []int{2}, project.Participants)
	})

	t.Run("missing title", func(t *testing.T) {
		app := newTestApp(t, &database.MockGoChatRepository{})
		rr := doRequest(t, app, http.MethodPost, "/api/projects", CreateProjectRequest{}, testToken(t, 2))
		assertApiError(t, rr, http.StatusBadRequest)
	})

	t.Run("id generation fails", func(t *testing.T) {
		app := newTestApp(t, &database.MockGoChatRepository{})
		app.generateShortId = func() (string, error) { return "", errors.New("entropy") }

		rr := doRequest(t, app, http.MethodPost, "/api/projects", CreateProjectRequest{Title: "x"}, testToken(t, 2))
		assertApiError(t, rr, http.StatusInternalServerError)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		app := newTestApp(t, &database.MockGoChatRepository{})
		rr := doRequest(t, app, http.MethodPost, "/api/projects", CreateProjectRequest{Title: "x"}, "")
		assertApiError(t, rr, http.StatusUnauthorized)
	})
}

func TestGetProjectHandler(t *testing.T) {
	tcases := []struct {
		name         string
		user         database.User
		projectErr   error
		expectedCode int
	}{
		{name: "participant", user: memberUser, expectedCode: http.StatusOK},
		{name: "admin", user: adminUser, expectedCode: http.StatusOK},
		{name: "not a participant", user: outsider, expectedCode: http.StatusForbidden},
		{name: "project not found", user: memberUser, projectErr: database.ErrNotFound, expectedCode: http.StatusNotFound},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			db := &database.MockGoChatRepository{}
			defer db.AssertExpectations(t)
			db.On("GetAccountById", mock.Anything, tc.user.Id).Return(tc.user, nil).Once()
			if tc.projectErr != nil {
				db.On("GetProject", mock.Anything, "P1").Return(database.Project{}, tc.projectErr).Once()
			} else {
				db.On("GetProject", mock.Anything, "P1").Return(testProject, nil).Once()
			}

			app := newTestApp(t, db)
			rr := doRequest(t, app, http.MethodGet, "/api/projects/P1", nil, testToken(t, tc.user.Id))

			if tc.expectedCode != http.StatusOK {
				assertApiError(t, rr, tc.expectedCode)
				return
			}

			assert.Equal(t, http.StatusOK, rr.Code)
			project := decodeBody[types.Project](t, rr)
			assert.Equal(t, "P1", project.Id)
			assert.True(t, project.ChatActive)
			assert.Equal(t, 0, project.OnlineCount)
		})
	}
}

func TestGetMessagesHandler(t *testing.T) {
	created := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	messages := []database.Message{
		{Id: "m2", ProjectId: "P1", SenderId: 2, SenderName: "bob", Body: "second", MessageType: types.MessageTypeText, CreatedAt: created.Add(time.Minute)},
		{Id: "m1", ProjectId: "P1", SenderId: 1, SenderName: "admin", Body: "first", MessageType: types.MessageTypeText, CreatedAt: created},
	}

	t.Run("default page", func(t *testing.T) {
		db := &database.MockGoChatRepository{}
		defer db.AssertExpectations(t)
		db.On("GetAccountById", mock.Anything, 2).Return(memberUser, nil).Once()
		db.On("GetProject", mock.Anything, "P1").Return(testProject, nil).Once()
		db.On("ListMessagesForProject", mock.Anything, "P1", mock.MatchedBy(func(b time.Time) bool {
			return b.IsZero()
		}), defaultHistoryLimit).Return(messages, nil).Once()
		db.On("CountMessagesForProject", mock.Anything, "P1").Return(2, nil).Once()

		app := newTestApp(t, db)
		rr := doRequest(t, app, http.MethodGet, "/api/projects/P1/messages", nil, testToken(t, 2))

		assert.Equal(t, http.StatusOK, rr.Code)
		got := decodeBody[[]types.ChatMessage](t, rr)
		require.Len(t, got, 2)
		assert.Equal(t, "m2", got[0].Id, "expected newest first")
		assert.Equal(t, "2", rr.Header().Get("X-Total-Count"))
		assert.Equal(t, types.Sender{Id: 2, Username: "bob"}, got[0].Sender)
	})

	t.Run("limit and before", func(t *testing.T) {
		db := &database.MockGoChatRepository{}
		defer db.AssertExpectations(t)
		db.On("GetAccountById", mock.Anything, 2).Return(memberUser, nil).Once()
		db.On("GetProject", mock.Anything, "P1").Return(testProject, nil).Once()
		db.On("ListMessagesForProject", mock.Anything, "P1", mock.MatchedBy(func(b time.Time) bool {
			return b.Equal(created.Add(time.Minute))
		}), 1).Return(messages[1:], nil).Once()
		db.On("CountMessagesForProject", mock.Anything, "P1").Return(2, nil).Once()

		app := newTestApp(t, db)
		rr := doRequest(t, app, http.MethodGet, "/api/projects/P1/messages?limit=1&before=2026-10-16T12:01:00Z", nil, testToken(t, 2))

		assert.Equal(t, http.StatusOK, rr.Code)
		got := decodeBody[[]types.ChatMessage](t, rr)
		require.Len(t, got, 1)
		assert.Equal(t, "m1", got[0].Id)
	})

	for _, query := range []string{"?limit=abc", "?limit=-1", "?before=yesterday"} {
		t.Run("bad query "+query, func(t *testing.T) {
			db := &database.MockGoChatRepository{}
			defer db.AssertExpectations(t)
			db.On("GetAccountById", mock.Anything, 2).Return(memberUser, nil).Once()
			db.On("GetProject", mock.Anything, "P1").Return(testProject, nil).Once()

			app := newTestApp(t, db)
			rr := doRequest(t, app, http.MethodGet, "/api/projects/P1/messages"+query, nil, testToken(t, 2))
			assertApiError(t, rr, http.StatusBadRequest)
		})
	}

	t.Run("store failure", func(t *testing.T) {
		db := &database.MockGoChatRepository{}
		defer db.AssertExpectations(t)
		db.On("GetAccountById", mock.Anything, 2).Return(memberUser, nil).Once()
		db.On("GetProject", mock.Anything, "P1").Return(testProject, nil).Once()
		db.On("ListMessagesForProject", mock.Anything, "P1", mock.Anything, defaultHistoryLimit).Return(nil, errors.New("timeout")).Once()

		app := newTestApp(t, db)
		rr := doRequest(t, app, http.MethodGet, "/api/projects/P1/messages", nil, testToken(t, 2))
		assertApiError(t, rr, http.StatusInternalServerError)
	})
}

func TestReportMessageHandler(t *testing.T) {
	const (
		messageId = "3b9f2c4e-1d7a-4f6b-9e2c-8a5d0f1b7c3e"
		missingId = "9d4e7a1b-6c2f-4b8e-a3d5-0f7c9e2b1a64"
	)
	msg := database.Message{Id: messageId, ProjectId: "P1", SenderId: 1, SenderName: "admin", Body: "hi"}

	t.Run("reported", func(t *testing.T) {
		reported := msg
		reported.Reported = true

		db := &database.MockGoChatRepository{}
		defer db.AssertExpectations(t)
		db.On("GetMessageById", mock.Anything, messageId).Return(msg, nil).Once()
		db.On("GetAccountById", mock.Anything, 2).Return(memberUser, nil).Once()
		db.On("GetProject", mock.Anything, "P1").Return(testProject, nil).Once()
		db.On("SetMessageReported", mock.Anything, messageId).Return(reported, nil).Once()

		app := newTestApp(t, db)
		rr := doRequest(t, app, http.MethodPost, "/api/messages/"+messageId+"/report", nil, testToken(t, 2))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.True(t, decodeBody[types.ChatMessage](t, rr).Reported)
	})

	t.Run("movie chatroom message", func(t *testing.T) {
		inMovie := database.Message{Id: messageId, ProjectId: "M1", SenderId: 2, SenderName: "bob", Body: "hi"}
		reported := inMovie
		reported.Reported = true

		db := &database.MockGoChatRepository{}
		defer db.AssertExpectations(t)
		db.On("GetMessageById", mock.Anything, messageId).Return(inMovie, nil).Once()
		db.On("GetAccountById", mock.Anything, 3).Return(outsider, nil).Once()
		db.On("GetProject", mock.Anything, "M1").Return(database.Project{}, database.ErrNotFound).Once()
		db.On("GetMovieChatroom", mock.Anything, "M1").Return(database.MovieChatroom{Id: "M1", IsActive: true}, nil).Once()
		db.On("SetMessageReported", mock.Anything, messageId).Return(reported, nil).Once()

		app := newTestApp(t, db)
		rr := doRequest(t, app, http.MethodPost, "/api/messages/"+messageId+"/report", nil, testToken(t, 3))

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("unknown message", func(t *testing.T) {
		db := &database.MockGoChatRepository{}
		defer db.AssertExpectations(t)
		db.On("GetMessageById", mock.Anything, missingId).Return(database.Message{}, database.ErrNotFound).Once()

		app := newTestApp(t, db)
		rr := doRequest(t, app, http.MethodPost, "/api/messages/"+missingId+"/report", nil, testToken(t, 2))
		assertApiError(t, rr, http.StatusNotFound)
	})

	t.Run("malformed id never reaches the store", func(t *testing.T) {
		db := &database.MockGoChatRepository{}
		defer db.AssertExpectations(t)

		app := newTestApp(t, db)
		rr := doRequest(t, app, http.MethodPost, "/api/messages/nope/report", nil, testToken(t, 2))
		assertApiError(t, rr, http.StatusBadRequest)
		db.AssertNotCalled(t, "GetMessageById", mock.Anything, mock.Anything)
	})

	t.Run("outsider", func(t *testing.T) {
		db := &database.MockGoChatRepository{}
		defer db.AssertExpectations(t)
		db.On("GetMessageById", mock.Anything, messageId).Return(msg, nil).Once()
		db.On("GetAccountById", mock.Anything, 3).Return(outsider, nil).Once()
		db.On("GetProject", mock.Anything, "P1").Return(testProject, nil).Once()

		app := newTestApp(t, db)
		rr := doRequest(t, app, http.MethodPost, "/api/messages/"+messageId+"/report", nil, testToken(t, 3))
		assertApiError(t, rr, http.StatusForbidden)
	})
}

func TestListMovieChatroomsHandler(t *testing.T) {
	db := &database.MockGoChatRepository{}
	defer db.AssertExpectations(t)
	db.On("ListActiveMovieChatrooms", mock.Anything).Return([]database.MovieChatroom{
		{Id: "M1", MovieName: "Metropolis", IsActive: true},
	}, nil).Once()

	app := newTestApp(t, db)
	rr := doRequest(t, app, http.MethodGet, "/api/movie-chatrooms", nil, "")

	assert.Equal(t, http.StatusOK, rr.Code)
	got := decodeBody[[]types.MovieChatroom](t, rr)
	require.Len(t, got, 1)
	assert.Equal(t, "Metropolis", got[0].MovieName)
}

// newAdminApp returns an app whose store knows the admin user for every
// request.
func newAdminApp(t *testing.T, db *database.MockGoChatRepository) *GoChatApp {
	db.On("GetAccountById", mock.Anything, adminUser.Id).Return(adminUser, nil)
	return newTestApp(t, db)
}

func TestOpenChatroomHandler(t *testing.T) {
	end := time.Date(2026, 10, 17, 18, 0, 0, 0, time.UTC)

	t.Run("opened", func(t *testing.T) {
		db := &database.MockGoChatRepository{}
		defer db.AssertExpectations(t)
		db.On("GetProject", mock.Anything, "P1").Return(testProject, nil).Once()
		db.On("ListAllUserIds", mock.Anything).Return([]int{1, 2, 3}, nil).Once()
		db.On("UpdateChatSettings", mock.Anything, mock.MatchedBy(func(p database.ChatSettingsParams) bool {
			return p.ProjectId == "P1" && p.EndTime != nil && p.EndTime.Equal(end) && p.Name == nil
		})).Return(database.Project{
			Id:           "P1",
			ChatEndTime:  &end,
			ChatActive:   true,
			Participants: []int{1, 2, 3},
		}, nil).Once()

		app := newAdminApp(t, db)
		rr := doRequest(t, app, http.MethodPost, "/api/admin/chatrooms", OpenChatroomRequest{
			ProjectId: "P1",
			EndTime:   &end,
		}, testToken(t, adminUser.Id))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"project_id":"P1","name":"","end_time":"2026-10-17T18:00:00Z","participants_count":3}`, rr.Body.String())
	})

	t.Run("unknown project", func(t *testing.T) {
		db := &database.MockGoChatRepository{}
		defer db.AssertExpectations(t)
		db.On("GetProject", mock.Anything, "nope").Return(database.Project{}, database.ErrNotFound).Once()

		app := newAdminApp(t, db)
		rr := doRequest(t, app, http.MethodPost, "/api/admin/chatrooms", OpenChatroomRequest{ProjectId: "nope"}, testToken(t, adminUser.Id))
		assertApiError(t, rr, http.StatusNotFound)
	})

	t.Run("missing project id", func(t *testing.T) {
		db := &database.MockGoChatRepository{}
		app := newAdminApp(t, db)
		rr := doRequest(t, app, http.MethodPost, "/api/admin/chatrooms", OpenChatroomRequest{}, testToken(t, adminUser.Id))
		assertApiError(t, rr, http.StatusBadRequest)
	})

	t.Run("non admin", func(t *testing.T) {
		db := &database.MockGoChatRepository{}
		defer db.AssertExpectations(t)
		db.On("GetAccountById", mock.Anything, 2).Return(memberUser, nil).Once()

		app := newTestApp(t, db)
		rr := doRequest(t, app, http.MethodPost, "/api/admin/chatrooms", OpenChatroomRequest{ProjectId: "P1"}, testToken(t, 2))
		assertApiError(t, rr, http.StatusForbidden)
	})
}

func TestListChatroomsHandler(t *testing.T) {
	opened := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)

	db := &database.MockGoChatRepository{}
	defer db.AssertExpectations(t)
	db.On("ListActiveProjects", mock.Anything).Return([]database.Project{
		{Id: "P1", Title: "Short film", ChatActive: true, ChatOpenedAt: &opened},
	}, nil).Once()
	db.On("ListActiveMovieChatrooms", mock.Anything).Return([]database.MovieChatroom{
		{Id: "M1", MovieName: "Metropolis", IsActive: true, CreatedAt: opened.Add(time.Hour)},
	}, nil).Once()

	app := newAdminApp(t, db)
	rr := doRequest(t, app, http.MethodGet, "/api/admin/chatrooms", nil, testToken(t, adminUser.Id))

	assert.Equal(t, http.StatusOK, rr.Code)
	rooms := decodeBody[[]types.ActiveRoom](t, rr)
	require.Len(t, rooms, 2)
	assert.Equal(t, "M1", rooms[0].Id)
	assert.Equal(t, "P1", rooms[1].Id)
}

func TestChatroomSummariesHandler(t *testing.T) {
	db := &database.MockGoChatRepository{}
	defer db.AssertExpectations(t)
	db.On("ListChatroomStats", mock.Anything).Return([]database.ChatroomStats{
		{ProjectId: "P1", Title: "Short film", ChatActive: true, MessageCount: 12, ReportedCount: 1},
	}, nil).Once()

	app := newAdminApp(t, db)
	rr := doRequest(t, app, http.MethodGet, "/api/admin/chatrooms/summary", nil, testToken(t, adminUser.Id))

	assert.Equal(t, http.StatusOK, rr.Code)
	summaries := decodeBody[[]types.ChatroomSummary](t, rr)
	require.Len(t, summaries, 1)
	assert.Equal(t, 12, summaries[0].MessageCount)
	assert.Equal(t, 1, summaries[0].ReportedCount)
}

func TestSetChatroomTimerHandler(t *testing.T) {
	end := time.Date(2026, 10, 17, 20, 0, 0, 0, time.UTC)

	t.Run("updated", func(t *testing.T) {
		db := &database.MockGoChatRepository{}
		defer db.AssertExpectations(t)
		db.On("SetChatEndTime", mock.Anything, "P1", mock.MatchedBy(func(e time.Time) bool {
			return e.Equal(end)
		})).Return(database.Project{Id: "P1", ChatEndTime: &end, ChatActive: true}, nil).Once()

		app := newAdminApp(t, db)
		rr := doRequest(t, app, http.MethodPost, "/api/admin/chatrooms/P1/timer", ChatroomTimerRequest{EndTime: &end}, testToken(t, adminUser.Id))

		assert.Equal(t, http.StatusOK, rr.Code)
		project := decodeBody[types.Project](t, rr)
		require.NotNil(t, project.ChatEndTime)
		assert.True(t, project.ChatEndTime.Equal(end))
	})

	t.Run("missing end time", func(t *testing.T) {
		db := &database.MockGoChatRepository{}
		app := newAdminApp(t, db)
		rr := doRequest(t, app, http.MethodPost, "/api/admin/chatrooms/P1/timer", ChatroomTimerRequest{}, testToken(t, adminUser.Id))
		assertApiError(t, rr, http.StatusBadRequest)
	})

	t.Run("unknown project", func(t *testing.T) {
		db := &database.MockGoChatRepository{}
		defer db.AssertExpectations(t)
		db.On("SetChatEndTime", mock.Anything, "nope", mock.Anything).Return(database.Project{}, database.ErrNotFound).Once()

		app := newAdminApp(t, db)
		rr := doRequest(t, app, http.MethodPost, "/api/admin/chatrooms/nope/timer", ChatroomTimerRequest{EndTime: &end}, testToken(t, adminUser.Id))
		assertApiError(t, rr, http.StatusNotFound)
	})
}

func TestCloseChatroomHandler(t *testing.T) {
	t.Run("closed", func(t *testing.T) {
		db := &database.MockGoChatRepository{}
		defer db.AssertExpectations(t)
		db.On("GetProject", mock.Anything, "P1").Return(testProject, nil).Once()
		db.On("DeleteMessagesForProject", mock.Anything, "P1").Return(int64(5), nil).Once()
		db.On("CloseChat", mock.Anything, "P1").Return(nil).Once()

		app := newAdminApp(t, db)
		rr := doRequest(t, app, http.MethodDelete, "/api/admin/chatrooms/P1", nil, testToken(t, adminUser.Id))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, CloseChatroomResponse{ProjectId: "P1", DeletedMessages: 5}, decodeBody[CloseChatroomResponse](t, rr))
	})

	t.Run("unknown project", func(t *testing.T) {
		db := &database.MockGoChatRepository{}
		defer db.AssertExpectations(t)
		db.On("GetProject", mock.Anything, "nope").Return(database.Project{}, database.ErrNotFound).Once()

		app := newAdminApp(t, db)
		rr := doRequest(t, app, http.MethodDelete, "/api/admin/chatrooms/nope", nil, testToken(t, adminUser.Id))
		assertApiError(t, rr, http.StatusNotFound)
	})
}

func TestMovieChatroomHandlers(t *testing.T) {
	t.Run("create", func(t *testing.T) {
		db := &database.MockGoChatRepository{}
		defer db.AssertExpectations(t)
		db.On("ActiveMovieChatroomExists", mock.Anything, "Metropolis").Return(false, nil).Once()
		db.On("CreateMovieChatroom", mock.Anything, mock.MatchedBy(func(p database.CreateMovieChatroomParams) bool {
			return p.MovieName == "Metropolis" && p.Id != ""
		})).Return(database.MovieChatroom{Id: "M1", MovieName: "Metropolis", IsActive: true}, nil).Once()

		app := newAdminApp(t, db)
		rr := doRequest(t, app, http.MethodPost, "/api/admin/movie-chatrooms", CreateMovieChatroomRequest{MovieName: "Metropolis"}, testToken(t, adminUser.Id))

		assert.Equal(t, http.StatusCreated, rr.Code)
		assert.Equal(t, "M1", decodeBody[types.MovieChatroom](t, rr).Id)
	})

	t.Run("create duplicate", func(t *testing.T) {
		db := &database.MockGoChatRepository{}
		defer db.AssertExpectations(t)
		db.On("ActiveMovieChatroomExists", mock.Anything, "Metropolis").Return(true, nil).Once()

		app := newAdminApp(t, db)
		rr := doRequest(t, app, http.MethodPost, "/api/admin/movie-chatrooms", CreateMovieChatroomRequest{MovieName: "Metropolis"}, testToken(t, adminUser.Id))
		assertApiError(t, rr, http.StatusConflict)
	})

	t.Run("create without name", func(t *testing.T) {
		db := &database.MockGoChatRepository{}
		app := newAdminApp(t, db)
		rr := doRequest(t, app, http.MethodPost, "/api/admin/movie-chatrooms", CreateMovieChatroomRequest{}, testToken(t, adminUser.Id))
		assertApiError(t, rr, http.StatusBadRequest)
	})

	t.Run("end", func(t *testing.T) {
		db := &database.MockGoChatRepository{}
		defer db.AssertExpectations(t)
		db.On("EndMovieChatroom", mock.Anything, "M1").Return(nil).Once()
		db.On("EndMovieChatroom", mock.Anything, "M2").Return(database.ErrNotFound).Once()

		app := newAdminApp(t, db)
		rr := doRequest(t, app, http.MethodDelete, "/api/admin/movie-chatrooms/M1", nil, testToken(t, adminUser.Id))
		assert.Equal(t, http.StatusNoContent, rr.Code)

		rr = doRequest(t, app, http.MethodDelete, "/api/admin/movie-chatrooms/M2", nil, testToken(t, adminUser.Id))
		assertApiError(t, rr, http.StatusNotFound)
	})
}

func TestUpdateUserStatusHandler(t *testing.T) {
	muted := true

	t.Run("mute", func(t *testing.T) {
		db := &database.MockGoChatRepository{}
		defer db.AssertExpectations(t)
		db.On("UpdateUserStatus", mock.Anything, mock.MatchedBy(func(p database.UpdateUserStatusParams) bool {
			return p.UserId == 2 && p.IsBlocked == nil && p.IsMuted != nil && *p.IsMuted
		})).Return(database.User{Id: 2, Username: "bob", IsMuted: true}, nil).Once()

		app := newAdminApp(t, db)
		rr := doRequest(t, app, http.MethodPut, "/api/admin/users/2", UpdateUserStatusRequest{IsMuted: &muted}, testToken(t, adminUser.Id))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.True(t, decodeBody[types.User](t, rr).IsMuted)
	})

	t.Run("no change requested", func(t *testing.T) {
		db := &database.MockGoChatRepository{}
		app := newAdminApp(t, db)
		rr := doRequest(t, app, http.MethodPut, "/api/admin/users/2", UpdateUserStatusRequest{}, testToken(t, adminUser.Id))
		assertApiError(t, rr, http.StatusBadRequest)
	})

	t.Run("bad user id", func(t *testing.T) {
		db := &database.MockGoChatRepository{}
		app := newAdminApp(t, db)
		rr := doRequest(t, app, http.MethodPut, "/api/admin/users/bob", UpdateUserStatusRequest{IsMuted: &muted}, testToken(t, adminUser.Id))
		assertApiError(t, rr, http.StatusBadRequest)
	})

	t.Run("unknown user", func(t *testing.T) {
		db := &database.MockGoChatRepository{}
		defer db.AssertExpectations(t)
		db.On("UpdateUserStatus", mock.Anything, mock.Anything).Return(database.User{}, database.ErrNotFound).Once()

		app := newAdminApp(t, db)
		rr := doRequest(t, app, http.MethodPut, "/api/admin/users/99", UpdateUserStatusRequest{IsMuted: &muted}, testToken(t, adminUser.Id))
		assertApiError(t, rr, http.StatusNotFound)
	})
}

func Test_apiErrorFrom(t *testing.T) {
	tcases := []struct {
		err  error
		code int
	}{
		{database.ErrNotFound, http.StatusNotFound},
		{database.ErrConflict, http.StatusConflict},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range tcases {
		assert.Equal(t, tc.code, apiErrorFrom(tc.err).StatusCode, "unexpected status for %v", tc.err)
	}
}
