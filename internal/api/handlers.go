package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/npezzotti/go-reelroom/internal/database"
	"github.com/npezzotti/go-reelroom/internal/server"
	"github.com/npezzotti/go-reelroom/internal/types"
	"github.com/samber/lo"
)

const defaultHistoryLimit = 50

type CreateProjectRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
}

type OpenChatroomRequest struct {
	ProjectId string     `json:"project_id" validate:"required"`
	Name      *string    `json:"name"`
	EndTime   *time.Time `json:"end_time"`
}

type ChatroomTimerRequest struct {
	EndTime *time.Time `json:"end_time" validate:"required"`
}

type CreateMovieChatroomRequest struct {
	MovieName string     `json:"movie_name"`
	EndTime   *time.Time `json:"end_time"`
}

type UpdateUserStatusRequest struct {
	IsBlocked *bool `json:"is_blocked" validate:"required_without=IsMuted"`
	IsMuted   *bool `json:"is_muted"`
}

type CloseChatroomResponse struct {
	ProjectId       string `json:"project_id"`
	DeletedMessages int64  `json:"deleted_messages"`
}

func (s *GoChatApp) writeJson(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if v == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Printf("json encode: %v", err)
	}
}

func (s *GoChatApp) writeError(w http.ResponseWriter, e *ApiError) {
	s.writeJson(w, e.StatusCode, e)
}

// decodeRequest reads a JSON body into v and validates its struct tags.
func (s *GoChatApp) decodeRequest(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return err
	}

	return s.validate.Struct(v)
}

func (s *GoChatApp) healthCheck(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(); err != nil {
		s.log.Println("health check:", err)
		s.writeError(w, NewInternalServerError(err))
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (s *GoChatApp) createProject(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		s.writeError(w, NewUnauthorizedError())
		return
	}

	var req CreateProjectRequest
	if err := s.decodeRequest(r, &req); err != nil {
		s.writeError(w, NewBadRequestError())
		return
	}

	sid, err := s.generateShortId()
	if err != nil {
		s.log.Print("generateShortId:", err)
		s.writeError(w, NewInternalServerError(err))
		return
	}

	project, err := s.db.CreateProject(r.Context(), database.CreateProjectParams{
		Id:          sid,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		OwnerId:     userId,
	})
	if err != nil {
		s.log.Println("create project:", err)
		s.writeError(w, apiErrorFrom(err))
		return
	}

	s.writeJson(w, http.StatusCreated, project.ToProject(0))
}

// currentUser loads the account behind the request's token.
func (s *GoChatApp) currentUser(ctx context.Context) (database.User, *ApiError) {
	userId, ok := UserId(ctx)
	if !ok {
		return database.User{}, NewUnauthorizedError()
	}

	user, err := s.db.GetAccountById(ctx, userId)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return database.User{}, NewUnauthorizedError()
		}
		return database.User{}, NewInternalServerError(err)
	}

	return user, nil
}

// projectForUser loads a project the current user is allowed to read. Admins
// can read every project, everyone else only the ones they participate in.
func (s *GoChatApp) projectForUser(ctx context.Context, projectId string) (database.Project, *ApiError) {
	user, errResp := s.currentUser(ctx)
	if errResp != nil {
		return database.Project{}, errResp
	}

	project, err := s.db.GetProject(ctx, projectId)
	if err != nil {
		return database.Project{}, apiErrorFrom(err)
	}

	if user.IsBlocked || (!user.IsAdmin && !project.HasParticipant(user.Id)) {
		return database.Project{}, NewForbiddenError()
	}

	return project, nil
}

// checkRoomAccess is projectForUser extended to movie chatrooms, which every
// user may read.
func (s *GoChatApp) checkRoomAccess(ctx context.Context, roomId string) *ApiError {
	_, errResp := s.projectForUser(ctx, roomId)
	if errResp == nil || errResp.StatusCode != http.StatusNotFound {
		return errResp
	}

	if _, err := s.db.GetMovieChatroom(ctx, roomId); err != nil {
		return apiErrorFrom(err)
	}

	return nil
}

func (s *GoChatApp) getProject(w http.ResponseWriter, r *http.Request) {
	project, errResp := s.projectForUser(r.Context(), r.PathValue("id"))
	if errResp != nil {
		s.writeError(w, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, project.ToProject(s.cs.OnlineCount(project.Id)))
}

func (s *GoChatApp) getMessages(w http.ResponseWriter, r *http.Request) {
	project, errResp := s.projectForUser(r.Context(), r.PathValue("id"))
	if errResp != nil {
		s.writeError(w, errResp)
		return
	}

	limit := defaultHistoryLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		l, err := strconv.Atoi(limitStr)
		if err != nil || l <= 0 {
			s.writeError(w, NewBadRequestError())
			return
		}
		limit = l
	}

	var before time.Time
	if beforeStr := r.URL.Query().Get("before"); beforeStr != "" {
		b, err := time.Parse(time.RFC3339Nano, beforeStr)
		if err != nil {
			s.writeError(w, NewBadRequestError())
			return
		}
		before = b
	}

	messages, err := s.db.ListMessagesForProject(r.Context(), project.Id, before, limit)
	if err != nil {
		s.log.Println("list messages:", err)
		s.writeError(w, NewInternalServerError(err))
		return
	}

	total, err := s.db.CountMessagesForProject(r.Context(), project.Id)
	if err != nil {
		s.log.Println("count messages:", err)
		s.writeError(w, NewInternalServerError(err))
		return
	}
	w.Header().Set("X-Total-Count", strconv.Itoa(total))

	s.writeJson(w, http.StatusOK, lo.Map(messages, func(m database.Message, _ int) types.ChatMessage {
		return m.ToChatMessage()
	}))
}

func (s *GoChatApp) reportMessage(w http.ResponseWriter, r *http.Request) {
	messageId := r.PathValue("id")
	if err := s.validate.Var(messageId, "uuid"); err != nil {
		s.writeError(w, NewBadRequestError())
		return
	}

	msg, err := s.db.GetMessageById(r.Context(), messageId)
	if err != nil {
		s.writeError(w, apiErrorFrom(err))
		return
	}

	if errResp := s.checkRoomAccess(r.Context(), msg.ProjectId); errResp != nil {
		s.writeError(w, errResp)
		return
	}

	reported, err := s.db.SetMessageReported(r.Context(), msg.Id)
	if err != nil {
		s.log.Println("report message:", err)
		s.writeError(w, apiErrorFrom(err))
		return
	}

	s.writeJson(w, http.StatusOK, reported.ToChatMessage())
}

func (s *GoChatApp) listMovieChatrooms(w http.ResponseWriter, r *http.Request) {
	chatrooms, err := s.db.ListActiveMovieChatrooms(r.Context())
	if err != nil {
		s.writeError(w, NewInternalServerError(err))
		return
	}

	s.writeJson(w, http.StatusOK, lo.Map(chatrooms, func(mc database.MovieChatroom, _ int) types.MovieChatroom {
		return mc.ToMovieChatroom()
	}))
}

func (s *GoChatApp) openChatroom(w http.ResponseWriter, r *http.Request) {
	var req OpenChatroomRequest
	if err := s.decodeRequest(r, &req); err != nil {
		s.writeError(w, NewBadRequestError())
		return
	}

	res, err := s.chatrooms.Open(r.Context(), req.ProjectId, req.Name, req.EndTime)
	if err != nil {
		s.log.Println("open chatroom:", err)
		s.writeError(w, apiErrorFrom(err))
		return
	}

	s.writeJson(w, http.StatusOK, res)
}

func (s *GoChatApp) listChatrooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := s.chatrooms.ListActive(r.Context())
	if err != nil {
		s.writeError(w, NewInternalServerError(err))
		return
	}

	s.writeJson(w, http.StatusOK, rooms)
}

func (s *GoChatApp) chatroomSummaries(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.chatrooms.Summaries(r.Context())
	if err != nil {
		s.writeError(w, NewInternalServerError(err))
		return
	}

	s.writeJson(w, http.StatusOK, summaries)
}

func (s *GoChatApp) setChatroomTimer(w http.ResponseWriter, r *http.Request) {
	var req ChatroomTimerRequest
	if err := s.decodeRequest(r, &req); err != nil {
		s.writeError(w, NewBadRequestError())
		return
	}

	project, err := s.chatrooms.SetEndTime(r.Context(), r.PathValue("id"), *req.EndTime)
	if err != nil {
		s.writeError(w, apiErrorFrom(err))
		return
	}

	s.writeJson(w, http.StatusOK, project)
}

func (s *GoChatApp) closeChatroom(w http.ResponseWriter, r *http.Request) {
	projectId := r.PathValue("id")

	deleted, err := s.chatrooms.Close(r.Context(), projectId)
	if err != nil {
		s.log.Println("close chatroom:", err)
		s.writeError(w, apiErrorFrom(err))
		return
	}

	s.writeJson(w, http.StatusOK, CloseChatroomResponse{
		ProjectId:       projectId,
		DeletedMessages: deleted,
	})
}

func (s *GoChatApp) createMovieChatroom(w http.ResponseWriter, r *http.Request) {
	var req CreateMovieChatroomRequest
	if err := s.decodeRequest(r, &req); err != nil {
		s.writeError(w, NewBadRequestError())
		return
	}

	mc, err := s.chatrooms.CreateMovieChatroom(r.Context(), req.MovieName, req.EndTime)
	if err != nil {
		s.writeError(w, apiErrorFrom(err))
		return
	}

	s.writeJson(w, http.StatusCreated, mc)
}

func (s *GoChatApp) endMovieChatroom(w http.ResponseWriter, r *http.Request) {
	if err := s.chatrooms.EndMovieChatroom(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, apiErrorFrom(err))
		return
	}

	s.writeJson(w, http.StatusNoContent, nil)
}

func (s *GoChatApp) updateUserStatus(w http.ResponseWriter, r *http.Request) {
	userId, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		s.writeError(w, NewBadRequestError())
		return
	}

	var req UpdateUserStatusRequest
	if err := s.decodeRequest(r, &req); err != nil {
		s.writeError(w, NewBadRequestError())
		return
	}

	user, err := s.db.UpdateUserStatus(r.Context(), database.UpdateUserStatusParams{
		UserId:    userId,
		IsBlocked: req.IsBlocked,
		IsMuted:   req.IsMuted,
	})
	if err != nil {
		s.writeError(w, apiErrorFrom(err))
		return
	}

	s.writeJson(w, http.StatusOK, user.ToUser())
}

func (s *GoChatApp) serveWs(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			// only allow connections from allowed origins
			origin := r.Header.Get("Origin")
			if origin == "" {
				// if no origin header, allow the request
				return true
			}

			return slices.Contains(s.allowedOrigins, origin)
		},
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Println("error upgrading connection:", err)
		return
	}

	if err := s.cs.RegisterSession(server.NewSession(conn, s.cs, s.log)); err != nil {
		s.log.Println("register session:", err)
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "server shutting down"))
		conn.Close()
	}
}
