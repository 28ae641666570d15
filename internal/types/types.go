package types

import (
	"time"
)

const (
	MessageTypeText = "text"
	MessageTypeFile = "file"
)

type User struct {
	Id           int       `json:"id"`
	Username     string    `json:"username"`
	EmailAddress string    `json:"email_address,omitempty"`
	Password     string    `json:"-"`
	IsAdmin      bool      `json:"is_admin,omitempty"`
	IsBlocked    bool      `json:"is_blocked,omitempty"`
	IsMuted      bool      `json:"is_muted,omitempty"`
	CreatedAt    time.Time `json:"created_at,omitempty"`
	UpdatedAt    time.Time `json:"updated_at,omitempty"`
}

// Sender is the identity attached to relayed messages and presence events.
type Sender struct {
	Id       int    `json:"id"`
	Username string `json:"username"`
}

type Project struct {
	Id           string     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description,omitempty"`
	OwnerId      int        `json:"owner_id"`
	ChatName     string     `json:"chat_name,omitempty"`
	ChatEndTime  *time.Time `json:"chat_end_time,omitempty"`
	ChatActive   bool       `json:"chat_active"`
	ChatOpenedAt *time.Time `json:"chat_opened_at,omitempty"`
	Participants []int      `json:"participants,omitempty"`
	OnlineCount  int        `json:"online_count"`
	CreatedAt    time.Time  `json:"created_at,omitempty"`
	UpdatedAt    time.Time  `json:"updated_at,omitempty"`
}

type ChatMessage struct {
	Id          string    `json:"id"`
	ProjectId   string    `json:"project_id"`
	Sender      Sender    `json:"sender"`
	Message     string    `json:"message"`
	MessageType string    `json:"message_type"`
	FileUrl     string    `json:"file_url,omitempty"`
	FileName    string    `json:"file_name,omitempty"`
	Pinned      bool      `json:"pinned"`
	Reported    bool      `json:"reported,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type MovieChatroom struct {
	Id        string     `json:"id"`
	MovieName string     `json:"movie_name"`
	EndTime   *time.Time `json:"end_time,omitempty"`
	IsActive  bool       `json:"is_active"`
	CreatedAt time.Time  `json:"created_at"`
}

const (
	RoomKindProject = "project"
	RoomKindMovie   = "movie"
)

// ActiveRoom is an entry of the merged list of open project chatrooms and
// movie chatrooms.
type ActiveRoom struct {
	Kind     string     `json:"kind"`
	Id       string     `json:"id"`
	Name     string     `json:"name"`
	EndTime  *time.Time `json:"end_time,omitempty"`
	OpenedAt time.Time  `json:"opened_at"`
	Online   int        `json:"online"`
}

type ChatroomSummary struct {
	ProjectId       string     `json:"project_id"`
	Title           string     `json:"title"`
	ChatName        string     `json:"chat_name,omitempty"`
	ChatEndTime     *time.Time `json:"chat_end_time,omitempty"`
	ChatActive      bool       `json:"chat_active"`
	MessageCount    int        `json:"message_count"`
	ReportedCount   int        `json:"reported_count"`
	LastMessageTime *time.Time `json:"last_message_time,omitempty"`
	Online          int        `json:"online"`
}

type JoinRequest struct {
	Id        int       `json:"id"`
	ProjectId string    `json:"project_id"`
	Title     string    `json:"project_title"`
	OwnerId   int       `json:"owner_id"`
	Requester Sender    `json:"requester"`
	Role      string    `json:"role"`
	Message   string    `json:"message,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
