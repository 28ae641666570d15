package database

import "time"

type User struct {
	Id           int
	Username     string
	EmailAddress string
	PasswordHash string
	IsAdmin      bool
	IsBlocked    bool
	IsMuted      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Project struct {
	Id           string
	Title        string
	Description  string
	OwnerId      int
	ChatName     string
	ChatEndTime  *time.Time
	ChatActive   bool
	ChatOpenedAt *time.Time
	Participants []int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasParticipant reports whether the user may chat in the project's room.
// The owner always may.
func (p Project) HasParticipant(userId int) bool {
	if p.OwnerId == userId {
		return true
	}
	for _, id := range p.Participants {
		if id == userId {
			return true
		}
	}
	return false
}

type Message struct {
	Id          string
	ProjectId   string
	SenderId    int
	SenderName  string
	Body        string
	MessageType string
	FileUrl     string
	FileName    string
	Pinned      bool
	Reported    bool
	CreatedAt   time.Time
}

type MovieChatroom struct {
	Id        string
	MovieName string
	EndTime   *time.Time
	IsActive  bool
	CreatedAt time.Time
}

const (
	JoinRequestPending  = "pending"
	JoinRequestAccepted = "accepted"
	JoinRequestRejected = "rejected"
)

type JoinRequest struct {
	Id            int
	ProjectId     string
	ProjectTitle  string
	OwnerId       int
	RequesterId   int
	RequesterName string
	Role          string
	Message       string
	Status        string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type ChatroomStats struct {
	ProjectId       string
	Title           string
	ChatName        string
	ChatEndTime     *time.Time
	ChatActive      bool
	MessageCount    int
	ReportedCount   int
	LastMessageTime *time.Time
}

type CreateAccountParams struct {
	Username     string
	EmailAddress string
	PasswordHash string
}

type UpdateUserStatusParams struct {
	UserId    int
	IsBlocked *bool
	IsMuted   *bool
}

type CreateProjectParams struct {
	Id          string
	Title       string
	Description string
	OwnerId     int
}

// ChatSettingsParams opens a project's chatroom. Nil fields leave the stored
// value untouched.
type ChatSettingsParams struct {
	ProjectId      string
	Name           *string
	EndTime        *time.Time
	ParticipantIds []int
	OpenedAt       time.Time
}

type CreateMovieChatroomParams struct {
	Id        string
	MovieName string
	EndTime   *time.Time
	CreatedAt time.Time
}

type CreateJoinRequestParams struct {
	ProjectId   string
	RequesterId int
	Role        string
	Message     string
}
