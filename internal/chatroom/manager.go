// Package chatroom implements the administrative lifecycle of project
// chatrooms and movie chatrooms.
package chatroom

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/npezzotti/go-reelroom/internal/database"
	"github.com/npezzotti/go-reelroom/internal/types"
	"github.com/samber/lo"
	"github.com/teris-io/shortid"
)

var ErrValidation = errors.New("validation failed")

type Store interface {
	database.UserDirectory
	database.ProjectStore
	database.MessageStore
	database.MovieChatroomStore
}

// Relay is the live side of a chatroom: who is online and how to reach them.
type Relay interface {
	HistoryCleared(projectId string)
	OnlineCount(projectId string) int
}

type Manager struct {
	log             *log.Logger
	db              Store
	relay           Relay
	validate        *validator.Validate
	generateShortId func() (string, error)
	now             func() time.Time
}

func NewManager(logger *log.Logger, db Store, relay Relay) *Manager {
	return &Manager{
		log:             logger,
		db:              db,
		relay:           relay,
		validate:        validator.New(),
		generateShortId: shortid.Generate,
		now:             func() time.Time { return time.Now().UTC() },
	}
}

type OpenResult struct {
	ProjectId         string     `json:"project_id"`
	Name              string     `json:"name"`
	EndTime           *time.Time `json:"end_time,omitempty"`
	ParticipantsCount int        `json:"participants_count"`
}

// Open activates the chatroom of projectId and makes every known user a
// participant. Nil name or endTime keep the stored values. Presence is not
// touched, so calling Open on an open chatroom only refreshes its metadata.
func (m *Manager) Open(ctx context.Context, projectId string, name *string, endTime *time.Time) (OpenResult, error) {
	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if err := m.validate.Var(trimmed, "max=100"); err != nil {
			return OpenResult{}, fmt.Errorf("%w: chat name: %s", ErrValidation, err)
		}
		name = &trimmed
	}

	if _, err := m.db.GetProject(ctx, projectId); err != nil {
		return OpenResult{}, fmt.Errorf("get project %q: %w", projectId, err)
	}

	userIds, err := m.db.ListAllUserIds(ctx)
	if err != nil {
		return OpenResult{}, fmt.Errorf("list users: %w", err)
	}

	project, err := m.db.UpdateChatSettings(ctx, database.ChatSettingsParams{
		ProjectId:      projectId,
		Name:           name,
		EndTime:        endTime,
		ParticipantIds: userIds,
		OpenedAt:       m.now(),
	})
	if err != nil {
		return OpenResult{}, fmt.Errorf("update chat settings: %w", err)
	}

	m.log.Printf("opened chatroom for project %q with %d participants", projectId, len(project.Participants))

	return OpenResult{
		ProjectId:         project.Id,
		Name:              project.ChatName,
		EndTime:           project.ChatEndTime,
		ParticipantsCount: len(project.Participants),
	}, nil
}

// Close deletes the chatroom's history and clears its active flag. Joined
// sessions stay connected and are told the history is gone.
func (m *Manager) Close(ctx context.Context, projectId string) (int64, error) {
	if _, err := m.db.GetProject(ctx, projectId); err != nil {
		return 0, fmt.Errorf("get project %q: %w", projectId, err)
	}

	deleted, err := m.db.DeleteMessagesForProject(ctx, projectId)
	if err != nil {
		return 0, fmt.Errorf("delete messages: %w", err)
	}

	if err := m.db.CloseChat(ctx, projectId); err != nil {
		return deleted, fmt.Errorf("close chat: %w", err)
	}

	m.relay.HistoryCleared(projectId)
	m.log.Printf("closed chatroom for project %q, deleted %d messages", projectId, deleted)

	return deleted, nil
}

// SetEndTime records an advisory end time. Nothing closes the chatroom when
// it passes.
func (m *Manager) SetEndTime(ctx context.Context, projectId string, endTime time.Time) (types.Project, error) {
	project, err := m.db.SetChatEndTime(ctx, projectId, endTime)
	if err != nil {
		return types.Project{}, fmt.Errorf("set chat end time for %q: %w", projectId, err)
	}

	return project.ToProject(m.relay.OnlineCount(project.Id)), nil
}

// ListActive returns open project chatrooms and active movie chatrooms,
// most recently opened first.
func (m *Manager) ListActive(ctx context.Context) ([]types.ActiveRoom, error) {
	projects, err := m.db.ListActiveProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active projects: %w", err)
	}

	movies, err := m.db.ListActiveMovieChatrooms(ctx)
	if err != nil {
		return nil, fmt.Errorf("list movie chatrooms: %w", err)
	}

	rooms := lo.Map(projects, func(p database.Project, _ int) types.ActiveRoom {
		openedAt := p.UpdatedAt
		if p.ChatOpenedAt != nil {
			openedAt = *p.ChatOpenedAt
		}
		name := p.ChatName
		if name == "" {
			name = p.Title
		}
		return types.ActiveRoom{
			Kind:     types.RoomKindProject,
			Id:       p.Id,
			Name:     name,
			EndTime:  p.ChatEndTime,
			OpenedAt: openedAt,
			Online:   m.relay.OnlineCount(p.Id),
		}
	})

	rooms = append(rooms, lo.Map(movies, func(mc database.MovieChatroom, _ int) types.ActiveRoom {
		return types.ActiveRoom{
			Kind:     types.RoomKindMovie,
			Id:       mc.Id,
			Name:     mc.MovieName,
			EndTime:  mc.EndTime,
			OpenedAt: mc.CreatedAt,
			Online:   m.relay.OnlineCount(mc.Id),
		}
	})...)

	sort.SliceStable(rooms, func(i, j int) bool {
		return rooms[i].OpenedAt.After(rooms[j].OpenedAt)
	})

	return rooms, nil
}

// Summaries reports message activity for every chatroom that is open or
// still has history.
func (m *Manager) Summaries(ctx context.Context) ([]types.ChatroomSummary, error) {
	stats, err := m.db.ListChatroomStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("list chatroom stats: %w", err)
	}

	return lo.Map(stats, func(s database.ChatroomStats, _ int) types.ChatroomSummary {
		return s.ToSummary(m.relay.OnlineCount(s.ProjectId))
	}), nil
}

// CreateMovieChatroom starts an ad-hoc chatroom for a movie. Only one active
// chatroom may exist per movie name.
func (m *Manager) CreateMovieChatroom(ctx context.Context, movieName string, endTime *time.Time) (types.MovieChatroom, error) {
	movieName = strings.TrimSpace(movieName)
	if err := m.validate.Var(movieName, "required,max=200"); err != nil {
		return types.MovieChatroom{}, fmt.Errorf("%w: movie name: %s", ErrValidation, err)
	}

	exists, err := m.db.ActiveMovieChatroomExists(ctx, movieName)
	if err != nil {
		return types.MovieChatroom{}, fmt.Errorf("check movie chatroom: %w", err)
	}
	if exists {
		return types.MovieChatroom{}, fmt.Errorf("movie chatroom %q: %w", movieName, database.ErrConflict)
	}

	id, err := m.generateShortId()
	if err != nil {
		return types.MovieChatroom{}, fmt.Errorf("generate id: %w", err)
	}

	mc, err := m.db.CreateMovieChatroom(ctx, database.CreateMovieChatroomParams{
		Id:        id,
		MovieName: movieName,
		EndTime:   endTime,
		CreatedAt: m.now(),
	})
	if err != nil {
		return types.MovieChatroom{}, fmt.Errorf("create movie chatroom: %w", err)
	}

	return mc.ToMovieChatroom(), nil
}

func (m *Manager) EndMovieChatroom(ctx context.Context, chatroomId string) error {
	if err := m.db.EndMovieChatroom(ctx, chatroomId); err != nil {
		return fmt.Errorf("end movie chatroom %q: %w", chatroomId, err)
	}

	return nil
}
