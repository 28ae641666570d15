package database

import "github.com/npezzotti/go-reelroom/internal/types"

func (u User) ToUser() types.User {
	return types.User{
		Id:           u.Id,
		Username:     u.Username,
		EmailAddress: u.EmailAddress,
		IsAdmin:      u.IsAdmin,
		IsBlocked:    u.IsBlocked,
		IsMuted:      u.IsMuted,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (p Project) ToProject(online int) types.Project {
	return types.Project{
		Id:           p.Id,
		Title:        p.Title,
		Description:  p.Description,
		OwnerId:      p.OwnerId,
		ChatName:     p.ChatName,
		ChatEndTime:  p.ChatEndTime,
		ChatActive:   p.ChatActive,
		ChatOpenedAt: p.ChatOpenedAt,
		Participants: p.Participants,
		OnlineCount:  online,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

// ToChatMessage returns the message as relayed to clients, with the sender
// resolved to its display name.
func (m Message) ToChatMessage() types.ChatMessage {
	return types.ChatMessage{
		Id:        m.Id,
		ProjectId: m.ProjectId,
		Sender: types.Sender{
			Id:       m.SenderId,
			Username: m.SenderName,
		},
		Message:     m.Body,
		MessageType: m.MessageType,
		FileUrl:     m.FileUrl,
		FileName:    m.FileName,
		Pinned:      m.Pinned,
		Reported:    m.Reported,
		CreatedAt:   m.CreatedAt,
	}
}

func (mc MovieChatroom) ToMovieChatroom() types.MovieChatroom {
	return types.MovieChatroom{
		Id:        mc.Id,
		MovieName: mc.MovieName,
		EndTime:   mc.EndTime,
		IsActive:  mc.IsActive,
		CreatedAt: mc.CreatedAt,
	}
}

func (s ChatroomStats) ToSummary(online int) types.ChatroomSummary {
	return types.ChatroomSummary{
		ProjectId:       s.ProjectId,
		Title:           s.Title,
		ChatName:        s.ChatName,
		ChatEndTime:     s.ChatEndTime,
		ChatActive:      s.ChatActive,
		MessageCount:    s.MessageCount,
		ReportedCount:   s.ReportedCount,
		LastMessageTime: s.LastMessageTime,
		Online:          online,
	}
}

func (r JoinRequest) ToJoinRequest() types.JoinRequest {
	return types.JoinRequest{
		Id:        r.Id,
		ProjectId: r.ProjectId,
		Title:     r.ProjectTitle,
		OwnerId:   r.OwnerId,
		Requester: types.Sender{
			Id:       r.RequesterId,
			Username: r.RequesterName,
		},
		Role:      r.Role,
		Message:   r.Message,
		Status:    r.Status,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}
