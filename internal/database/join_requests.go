package database

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const (
	joinRequestColumns = "r.id, r.project_id, p.title, p.owner_id, r.requester_id, a.username, r.role, r.message, r.status, r.created_at, r.updated_at"
	joinRequestJoins   = " JOIN projects p ON p.id = r.project_id JOIN accounts a ON a.id = r.requester_id"
)

func scanJoinRequest(row rowScanner) (JoinRequest, error) {
	var r JoinRequest
	err := row.Scan(
		&r.Id,
		&r.ProjectId,
		&r.ProjectTitle,
		&r.OwnerId,
		&r.RequesterId,
		&r.RequesterName,
		&r.Role,
		&r.Message,
		&r.Status,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	return r, translateErr(err)
}

// CreateJoinRequest stores a pending request. A second open request for the
// same project and requester is a conflict.
func (db *PgGoChatRepository) CreateJoinRequest(ctx context.Context, params CreateJoinRequestParams) (JoinRequest, error) {
	query := `
		WITH r AS (
			INSERT INTO join_requests (project_id, requester_id, role, message, status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $6)
			RETURNING *
		)
		SELECT ` + joinRequestColumns + `
		FROM r` + joinRequestJoins + `;
`

	return scanJoinRequest(db.conn.QueryRowContext(ctx, query,
		params.ProjectId,
		params.RequesterId,
		params.Role,
		params.Message,
		JoinRequestPending,
		time.Now().UTC(),
	))
}

func (db *PgGoChatRepository) GetJoinRequest(ctx context.Context, requestId int) (JoinRequest, error) {
	return scanJoinRequest(db.conn.QueryRowContext(ctx,
		"SELECT "+joinRequestColumns+" FROM join_requests r"+joinRequestJoins+" WHERE r.id = $1",
		requestId,
	))
}

func (db *PgGoChatRepository) ListSentJoinRequests(ctx context.Context, requesterId int) ([]JoinRequest, error) {
	return db.listJoinRequests(ctx, "r.requester_id = $1", requesterId)
}

func (db *PgGoChatRepository) ListReceivedJoinRequests(ctx context.Context, ownerId int) ([]JoinRequest, error) {
	return db.listJoinRequests(ctx, "p.owner_id = $1", ownerId)
}

func (db *PgGoChatRepository) listJoinRequests(ctx context.Context, where string, accountId int) ([]JoinRequest, error) {
	rows, err := db.conn.QueryContext(ctx,
		"SELECT "+joinRequestColumns+" FROM join_requests r"+joinRequestJoins+
			" WHERE "+where+" ORDER BY r.created_at DESC",
		accountId,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	requests := make([]JoinRequest, 0)
	for rows.Next() {
		r, err := scanJoinRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		requests = append(requests, r)
	}

	return requests, rows.Err()
}

// AcceptJoinRequest marks a pending request accepted and adds the requester
// to the project's participants in one transaction. A request that is no
// longer pending is a conflict.
func (db *PgGoChatRepository) AcceptJoinRequest(ctx context.Context, requestId int) (JoinRequest, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return JoinRequest{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	req, err := scanJoinRequest(tx.QueryRowContext(ctx, resolveJoinRequestQuery,
		requestId,
		JoinRequestAccepted,
		time.Now().UTC(),
	))
	if err != nil {
		err = notPending(requestId, err)
		return JoinRequest{}, err
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO project_participants (project_id, account_id) VALUES ($1, $2) ON CONFLICT DO NOTHING",
		req.ProjectId,
		req.RequesterId,
	)
	if err != nil {
		return JoinRequest{}, err
	}

	if err = tx.Commit(); err != nil {
		return JoinRequest{}, err
	}

	return req, nil
}

func (db *PgGoChatRepository) RejectJoinRequest(ctx context.Context, requestId int) (JoinRequest, error) {
	req, err := scanJoinRequest(db.conn.QueryRowContext(ctx, resolveJoinRequestQuery,
		requestId,
		JoinRequestRejected,
		time.Now().UTC(),
	))
	if err != nil {
		return JoinRequest{}, notPending(requestId, err)
	}

	return req, nil
}

const resolveJoinRequestQuery = `
	WITH r AS (
		UPDATE join_requests SET status = $2, updated_at = $3
		WHERE id = $1 AND status = 'pending'
		RETURNING *
	)
	SELECT ` + joinRequestColumns + `
	FROM r` + joinRequestJoins + `;
`

func notPending(requestId int, err error) error {
	if errors.Is(err, ErrNotFound) {
		return fmt.Errorf("%w: join request %d is not pending", ErrConflict, requestId)
	}
	return err
}

// ListJoinableProjects returns the projects a user could ask to join: not
// owned by them, not already participated in, and without an open request.
func (db *PgGoChatRepository) ListJoinableProjects(ctx context.Context, userId int) ([]Project, error) {
	query := `
		SELECT ` + projectColumns + `
		FROM projects
		WHERE owner_id <> $1
			AND NOT EXISTS (
				SELECT 1 FROM project_participants pp
				WHERE pp.project_id = projects.id AND pp.account_id = $1
			)
			AND NOT EXISTS (
				SELECT 1 FROM join_requests r
				WHERE r.project_id = projects.id AND r.requester_id = $1 AND r.status IN ('pending', 'accepted')
			)
		ORDER BY created_at DESC;
`

	rows, err := db.conn.QueryContext(ctx, query, userId)
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
