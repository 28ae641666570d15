package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
)

const (
	defaultMessageLimit = 50
	maxMessageLimit     = 200

	accountColumns = "id, username, email, password_hash, is_admin, is_blocked, is_muted, created_at, updated_at"
	projectColumns = "id, title, description, owner_id, chat_name, chat_end_time, chat_active, chat_opened_at, created_at, updated_at"
	messageColumns = "m.id, m.project_id, m.sender_id, a.username, m.body, m.message_type, m.file_url, m.file_name, m.pinned, m.reported, m.created_at"
	movieColumns   = "id, movie_name, end_time, is_active, created_at"
)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (User, error) {
	var u User
	err := row.Scan(
		&u.Id,
		&u.Username,
		&u.EmailAddress,
		&u.PasswordHash,
		&u.IsAdmin,
		&u.IsBlocked,
		&u.IsMuted,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	return u, translateErr(err)
}

func scanProject(row rowScanner) (Project, error) {
	var (
		p        Project
		endTime  sql.NullTime
		openedAt sql.NullTime
	)
	err := row.Scan(
		&p.Id,
		&p.Title,
		&p.Description,
		&p.OwnerId,
		&p.ChatName,
		&endTime,
		&p.ChatActive,
		&openedAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return Project{}, translateErr(err)
	}

	p.ChatEndTime = nullTimePtr(endTime)
	p.ChatOpenedAt = nullTimePtr(openedAt)
	return p, nil
}

func scanMessage(row rowScanner) (Message, error) {
	var m Message
	err := row.Scan(
		&m.Id,
		&m.ProjectId,
		&m.SenderId,
		&m.SenderName,
		&m.Body,
		&m.MessageType,
		&m.FileUrl,
		&m.FileName,
		&m.Pinned,
		&m.Reported,
		&m.CreatedAt,
	)
	return m, translateErr(err)
}

func scanMovieChatroom(row rowScanner) (MovieChatroom, error) {
	var (
		mc      MovieChatroom
		endTime sql.NullTime
	)
	if err := row.Scan(&mc.Id, &mc.MovieName, &endTime, &mc.IsActive, &mc.CreatedAt); err != nil {
		return MovieChatroom{}, translateErr(err)
	}

	mc.EndTime = nullTimePtr(endTime)
	return mc, nil
}

func nullTimePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func (db *PgGoChatRepository) CreateAccount(ctx context.Context, params CreateAccountParams) (User, error) {
	now := time.Now().UTC()
	row := db.conn.QueryRowContext(ctx,
		"INSERT INTO accounts (username, email, password_hash, created_at, updated_at) "+
			"VALUES ($1, $2, $3, $4, $4) RETURNING "+accountColumns,
		params.Username,
		params.EmailAddress,
		params.PasswordHash,
		now,
	)

	return scanUser(row)
}

func (db *PgGoChatRepository) GetAccountById(ctx context.Context, id int) (User, error) {
	row := db.conn.QueryRowContext(ctx,
		"SELECT "+accountColumns+" FROM accounts WHERE id = $1 LIMIT 1",
		id,
	)

	return scanUser(row)
}

func (db *PgGoChatRepository) GetAccountByEmail(ctx context.Context, email string) (User, error) {
	row := db.conn.QueryRowContext(ctx,
		"SELECT "+accountColumns+" FROM accounts WHERE email = $1 LIMIT 1",
		email,
	)

	return scanUser(row)
}

func (db *PgGoChatRepository) ListAllUserIds(ctx context.Context) ([]int, error) {
	rows, err := db.conn.QueryContext(ctx, "SELECT id FROM accounts ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]int, 0)
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

func (db *PgGoChatRepository) UpdateUserStatus(ctx context.Context, params UpdateUserStatusParams) (User, error) {
	row := db.conn.QueryRowContext(ctx,
		"UPDATE accounts SET is_blocked = COALESCE($2, is_blocked), is_muted = COALESCE($3, is_muted), updated_at = $4 "+
			"WHERE id = $1 RETURNING "+accountColumns,
		params.UserId,
		nullBool(params.IsBlocked),
		nullBool(params.IsMuted),
		time.Now().UTC(),
	)

	return scanUser(row)
}

func nullBool(b *bool) sql.NullBool {
	if b == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *b, Valid: true}
}

func (db *PgGoChatRepository) CreateProject(ctx context.Context, params CreateProjectParams) (Project, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return Project{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	project, err := scanProject(tx.QueryRowContext(ctx,
		"INSERT INTO projects (id, title, description, owner_id, created_at, updated_at) "+
			"VALUES ($1, $2, $3, $4, $5, $5) RETURNING "+projectColumns,
		params.Id,
		params.Title,
		params.Description,
		params.OwnerId,
		now,
	))
	if err != nil {
		return Project{}, err
	}

	// the owner is always a participant of the project's chatroom
	_, err = tx.ExecContext(ctx,
		"INSERT INTO project_participants (project_id, account_id) VALUES ($1, $2)",
		project.Id,
		params.OwnerId,
	)
	if err != nil {
		return Project{}, err
	}

	if err = tx.Commit(); err != nil {
		return Project{}, err
	}

	project.Participants = []int{params.OwnerId}
	return project, nil
}

func (db *PgGoChatRepository) GetProject(ctx context.Context, projectId string) (Project, error) {
	project, err := scanProject(db.conn.QueryRowContext(ctx,
		"SELECT "+projectColumns+" FROM projects WHERE id = $1 LIMIT 1",
		projectId,
	))
	if err != nil {
		return Project{}, err
	}

	project.Participants, err = db.listParticipants(ctx, db.conn, projectId)
	if err != nil {
		return Project{}, err
	}

	return project, nil
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (db *PgGoChatRepository) listParticipants(ctx context.Context, q queryer, projectId string) ([]int, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT account_id FROM project_participants WHERE project_id = $1 ORDER BY account_id",
		projectId,
	)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	defer rows.Close()

	ids := make([]int, 0)
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

func (db *PgGoChatRepository) UpdateChatSettings(ctx context.Context, params ChatSettingsParams) (Project, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return Project{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	var name sql.NullString
	if params.Name != nil {
		name = sql.NullString{String: *params.Name, Valid: true}
	}
	var endTime sql.NullTime
	if params.EndTime != nil {
		endTime = sql.NullTime{Time: params.EndTime.UTC(), Valid: true}
	}

	project, err := scanProject(tx.QueryRowContext(ctx,
		"UPDATE projects SET chat_name = COALESCE($2, chat_name), chat_end_time = COALESCE($3, chat_end_time), "+
			"chat_active = TRUE, chat_opened_at = $4, updated_at = $4 WHERE id = $1 RETURNING "+projectColumns,
		params.ProjectId,
		name,
		endTime,
		params.OpenedAt.UTC(),
	))
	if err != nil {
		return Project{}, err
	}

	_, err = tx.ExecContext(ctx, "DELETE FROM project_participants WHERE project_id = $1", params.ProjectId)
	if err != nil {
		return Project{}, err
	}

	ids := make(pq.Int64Array, 0, len(params.ParticipantIds)+1)
	for _, id := range params.ParticipantIds {
		ids = append(ids, int64(id))
	}
	ids = append(ids, int64(project.OwnerId))

	_, err = tx.ExecContext(ctx,
		"INSERT INTO project_participants (project_id, account_id) "+
			"SELECT $1, unnest($2::int[]) ON CONFLICT DO NOTHING",
		params.ProjectId,
		ids,
	)
	if err != nil {
		return Project{}, err
	}

	project.Participants, err = db.listParticipants(ctx, tx, params.ProjectId)
	if err != nil {
		return Project{}, err
	}

	if err = tx.Commit(); err != nil {
		return Project{}, err
	}

	return project, nil
}

func (db *PgGoChatRepository) SetChatEndTime(ctx context.Context, projectId string, endTime time.Time) (Project, error) {
	return scanProject(db.conn.QueryRowContext(ctx,
		"UPDATE projects SET chat_end_time = $2, updated_at = $3 WHERE id = $1 RETURNING "+projectColumns,
		projectId,
		endTime.UTC(),
		time.Now().UTC(),
	))
}

func (db *PgGoChatRepository) CloseChat(ctx context.Context, projectId string) error {
	res, err := db.conn.ExecContext(ctx,
		"UPDATE projects SET chat_active = FALSE, updated_at = $2 WHERE id = $1",
		projectId,
		time.Now().UTC(),
	)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}

	return nil
}

func (db *PgGoChatRepository) ListActiveProjects(ctx context.Context) ([]Project, error) {
	rows, err := db.conn.QueryContext(ctx,
		"SELECT "+projectColumns+" FROM projects WHERE chat_active ORDER BY chat_opened_at DESC NULLS LAST",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	projects := make([]Project, 0)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		projects = append(projects, p)
	}

	return projects, rows.Err()
}

func (db *PgGoChatRepository) ListChatroomStats(ctx context.Context) ([]ChatroomStats, error) {
	query := `
		SELECT
				p.id,
				p.title,
				p.chat_name,
				p.chat_end_time,
				p.chat_active,
				COUNT(m.id) AS message_count,
				COUNT(m.id) FILTER (WHERE m.reported) AS reported_count,
				MAX(m.created_at) AS last_message_time
		FROM projects p
		LEFT JOIN messages m ON m.project_id = p.id
		GROUP BY p.id
		HAVING p.chat_active OR COUNT(m.id) > 0
		ORDER BY last_message_time DESC NULLS LAST;
`

	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list chatroom stats: %w", err)
	}
	defer rows.Close()

	stats := make([]ChatroomStats, 0)
	for rows.Next() {
		var (
			s        ChatroomStats
			endTime  sql.NullTime
			lastTime sql.NullTime
		)
		err := rows.Scan(
			&s.ProjectId,
			&s.Title,
			&s.ChatName,
			&endTime,
			&s.ChatActive,
			&s.MessageCount,
			&s.ReportedCount,
			&lastTime,
		)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}

		s.ChatEndTime = nullTimePtr(endTime)
		s.LastMessageTime = nullTimePtr(lastTime)
		stats = append(stats, s)
	}

	return stats, rows.Err()
}

func (db *PgGoChatRepository) CreateMessage(ctx context.Context, msg Message) (Message, error) {
	query := `
		WITH m AS (
			INSERT INTO messages (id, project_id, sender_id, body, message_type, file_url, file_name, pinned, reported, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE, FALSE, $8)
			RETURNING *
		)
		SELECT ` + messageColumns + `
		FROM m JOIN accounts a ON a.id = m.sender_id;
`

	return scanMessage(db.conn.QueryRowContext(ctx, query,
		msg.Id,
		msg.ProjectId,
		msg.SenderId,
		msg.Body,
		msg.MessageType,
		msg.FileUrl,
		msg.FileName,
		msg.CreatedAt,
	))
}

func (db *PgGoChatRepository) GetMessageById(ctx context.Context, messageId string) (Message, error) {
	return scanMessage(db.conn.QueryRowContext(ctx,
		"SELECT "+messageColumns+" FROM messages m JOIN accounts a ON a.id = m.sender_id WHERE m.id = $1",
		messageId,
	))
}

func (db *PgGoChatRepository) SetMessagePinned(ctx context.Context, messageId string, pinned bool) (Message, error) {
	query := `
		WITH m AS (
			UPDATE messages SET pinned = $2 WHERE id = $1 RETURNING *
		)
		SELECT ` + messageColumns + `
		FROM m JOIN accounts a ON a.id = m.sender_id;
`

	return scanMessage(db.conn.QueryRowContext(ctx, query, messageId, pinned))
}

func (db *PgGoChatRepository) SetMessageReported(ctx context.Context, messageId string) (Message, error) {
	query := `
		WITH m AS (
			UPDATE messages SET reported = TRUE WHERE id = $1 RETURNING *
		)
		SELECT ` + messageColumns + `
		FROM m JOIN accounts a ON a.id = m.sender_id;
`

	return scanMessage(db.conn.QueryRowContext(ctx, query, messageId))
}

func (db *PgGoChatRepository) DeleteMessagesForProject(ctx context.Context, projectId string) (int64, error) {
	res, err := db.conn.ExecContext(ctx, "DELETE FROM messages WHERE project_id = $1", projectId)
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}

func (db *PgGoChatRepository) CountMessagesForProject(ctx context.Context, projectId string) (int, error) {
	var n int
	err := db.conn.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM messages WHERE project_id = $1",
		projectId,
	).Scan(&n)

	return n, err
}

// ListMessagesForProject returns up to limit messages created before the
// given time, newest first. A zero before means now.
func (db *PgGoChatRepository) ListMessagesForProject(ctx context.Context, projectId string, before time.Time, limit int) ([]Message, error) {
	if limit <= 0 {
		limit = defaultMessageLimit
	}
	if limit > maxMessageLimit {
		limit = maxMessageLimit
	}
	if before.IsZero() {
		before = time.Now().UTC().Add(time.Second)
	}

	rows, err := db.conn.QueryContext(ctx,
		"SELECT "+messageColumns+" FROM messages m JOIN accounts a ON a.id = m.sender_id "+
			"WHERE m.project_id = $1 AND m.created_at < $2 ORDER BY m.created_at DESC LIMIT $3",
		projectId,
		before,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := make([]Message, 0, limit)
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		messages = append(messages, msg)
	}

	return messages, rows.Err()
}

func (db *PgGoChatRepository) CreateMovieChatroom(ctx context.Context, params CreateMovieChatroomParams) (MovieChatroom, error) {
	var endTime sql.NullTime
	if params.EndTime != nil {
		endTime = sql.NullTime{Time: params.EndTime.UTC(), Valid: true}
	}

	return scanMovieChatroom(db.conn.QueryRowContext(ctx,
		"INSERT INTO movie_chatrooms (id, movie_name, end_time, is_active, created_at) "+
			"VALUES ($1, $2, $3, TRUE, $4) RETURNING "+movieColumns,
		params.Id,
		params.MovieName,
		endTime,
		params.CreatedAt.UTC(),
	))
}

func (db *PgGoChatRepository) GetMovieChatroom(ctx context.Context, chatroomId string) (MovieChatroom, error) {
	return scanMovieChatroom(db.conn.QueryRowContext(ctx,
		"SELECT "+movieColumns+" FROM movie_chatrooms WHERE id = $1 LIMIT 1",
		chatroomId,
	))
}

func (db *PgGoChatRepository) ActiveMovieChatroomExists(ctx context.Context, movieName string) (bool, error) {
	var exists bool
	err := db.conn.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM movie_chatrooms WHERE movie_name = $1 AND is_active)",
		movieName,
	).Scan(&exists)

	return exists, err
}

func (db *PgGoChatRepository) ListActiveMovieChatrooms(ctx context.Context) ([]MovieChatroom, error) {
	rows, err := db.conn.QueryContext(ctx,
		"SELECT "+movieColumns+" FROM movie_chatrooms WHERE is_active ORDER BY created_at DESC",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	chatrooms := make([]MovieChatroom, 0)
	for rows.Next() {
		mc, err := scanMovieChatroom(rows)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		chatrooms = append(chatrooms, mc)
	}

	return chatrooms, rows.Err()
}

func (db *PgGoChatRepository) EndMovieChatroom(ctx context.Context, chatroomId string) error {
	res, err := db.conn.ExecContext(ctx,
		"UPDATE movie_chatrooms SET is_active = FALSE WHERE id = $1 AND is_active",
		chatroomId,
	)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}

	return nil
}
