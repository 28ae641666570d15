package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/npezzotti/go-reelroom/internal/database"
	"github.com/npezzotti/go-reelroom/internal/types"
	"github.com/samber/lo"
)

type JoinRequestRequest struct {
	Role    string `json:"role" validate:"required,oneof=writer director producer cinematographer editor sound_designer actor other"`
	Message string `json:"message" validate:"required,max=500"`
}

func toJoinRequests(requests []database.JoinRequest) []types.JoinRequest {
	return lo.Map(requests, func(r database.JoinRequest, _ int) types.JoinRequest {
		return r.ToJoinRequest()
	})
}

func (s *GoChatApp) sendJoinRequest(w http.ResponseWriter, r *http.Request) {
	user, errResp := s.currentUser(r.Context())
	if errResp != nil {
		s.writeError(w, errResp)
		return
	}

	var req JoinRequestRequest
	if err := s.decodeRequest(r, &req); err != nil {
		s.writeError(w, NewBadRequestError())
		return
	}

	project, err := s.db.GetProject(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, apiErrorFrom(err))
		return
	}

	if project.HasParticipant(user.Id) {
		s.writeError(w, NewConflictError())
		return
	}

	// a second open request for the project is a conflict in the store
	jr, err := s.db.CreateJoinRequest(r.Context(), database.CreateJoinRequestParams{
		ProjectId:   project.Id,
		RequesterId: user.Id,
		Role:        req.Role,
		Message:     strings.TrimSpace(req.Message),
	})
	if err != nil {
		s.log.Println("create join request:", err)
		s.writeError(w, apiErrorFrom(err))
		return
	}

	s.writeJson(w, http.StatusCreated, jr.ToJoinRequest())
}

func (s *GoChatApp) listSentJoinRequests(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		s.writeError(w, NewUnauthorizedError())
		return
	}

	requests, err := s.db.ListSentJoinRequests(r.Context(), userId)
	if err != nil {
		s.writeError(w, NewInternalServerError(err))
		return
	}

	s.writeJson(w, http.StatusOK, toJoinRequests(requests))
}

func (s *GoChatApp) listReceivedJoinRequests(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		s.writeError(w, NewUnauthorizedError())
		return
	}

	requests, err := s.db.ListReceivedJoinRequests(r.Context(), userId)
	if err != nil {
		s.writeError(w, NewInternalServerError(err))
		return
	}

	s.writeJson(w, http.StatusOK, toJoinRequests(requests))
}

// pendingRequestForOwner loads a pending join request the current user may
// decide on: they own the project or are an admin.
func (s *GoChatApp) pendingRequestForOwner(ctx context.Context, rawId string) (database.JoinRequest, *ApiError) {
	requestId, err := strconv.Atoi(rawId)
	if err != nil {
		return database.JoinRequest{}, NewBadRequestError()
	}

	user, errResp := s.currentUser(ctx)
	if errResp != nil {
		return database.JoinRequest{}, errResp
	}

	jr, err := s.db.GetJoinRequest(ctx, requestId)
	if err != nil {
		return database.JoinRequest{}, apiErrorFrom(err)
	}

	if user.IsBlocked || (!user.IsAdmin && jr.OwnerId != user.Id) {
		return database.JoinRequest{}, NewForbiddenError()
	}
	if jr.Status != database.JoinRequestPending {
		return database.JoinRequest{}, NewConflictError()
	}

	return jr, nil
}

func (s *GoChatApp) acceptJoinRequest(w http.ResponseWriter, r *http.Request) {
	jr, errResp := s.pendingRequestForOwner(r.Context(), r.PathValue("id"))
	if errResp != nil {
		s.writeError(w, errResp)
		return
	}

	accepted, err := s.db.AcceptJoinRequest(r.Context(), jr.Id)
	if err != nil {
		s.log.Println("accept join request:", err)
		s.writeError(w, apiErrorFrom(err))
		return
	}
	s.log.Printf("user %d joined project %q", accepted.RequesterId, accepted.ProjectId)

	s.writeJson(w, http.StatusOK, accepted.ToJoinRequest())
}

func (s *GoChatApp) rejectJoinRequest(w http.ResponseWriter, r *http.Request) {
	jr, errResp := s.pendingRequestForOwner(r.Context(), r.PathValue("id"))
	if errResp != nil {
		s.writeError(w, errResp)
		return
	}

	rejected, err := s.db.RejectJoinRequest(r.Context(), jr.Id)
	if err != nil {
		s.log.Println("reject join request:", err)
		s.writeError(w, apiErrorFrom(err))
		return
	}

	s.writeJson(w, http.StatusOK, rejected.ToJoinRequest())
}

func (s *GoChatApp) listJoinableProjects(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		s.writeError(w, NewUnauthorizedError())
		return
	}

	projects, err := s.db.ListJoinableProjects(r.Context(), userId)
	if err != nil {
		s.writeError(w, NewInternalServerError(err))
		return
	}

	s.writeJson(w, http.StatusOK, lo.Map(projects, func(p database.Project, _ int) types.Project {
		return p.ToProject(s.cs.OnlineCount(p.Id))
	}))
}
