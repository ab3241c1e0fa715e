package repository

import (
	"context"
	"time"

	"tailorbooks-backend/internal/db"
	"tailorbooks-backend/internal/domain"
)

type ActivityLogRepository struct {
	DB *db.Postgres
}

type CreateActivityLogInput struct {
	Title     string
	Message   string
	Actor     string
	Type      domain.ActivityLogType
	Timestamp time.Time
}

func (r ActivityLogRepository) Create(ctx context.Context, ownerUserID int64, in CreateActivityLogInput) (int64, error) {
	return insertActivityWith(ctx, r.DB.Pool, ownerUserID, domain.ActivityLog{
		Title:    in.Title,
		Message:  in.Message,
		Actor:    in.Actor,
		Type:     in.Type,
		LoggedAt: in.Timestamp,
	})
}

func (r ActivityLogRepository) List(ctx context.Context, ownerUserID int64, limit int) ([]domain.ActivityLog, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT id, title, message, actor, type, logged_at
		FROM activity_logs
		WHERE owner_user_id=$1
		ORDER BY logged_at DESC, id DESC
		LIMIT $2
	`, ownerUserID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ActivityLog
	for rows.Next() {
		var l domain.ActivityLog
		var typ string
		if err := rows.Scan(&l.ID, &l.Title, &l.Message, &l.Actor, &typ, &l.LoggedAt); err != nil {
			return nil, err
		}
		l.Type = domain.ActivityLogType(typ)
		out = append(out, l)
	}
	return out, rows.Err()
}

func insertActivityWith(ctx context.Context, q pgxQuerier, ownerUserID int64, l domain.ActivityLog) (int64, error) {
	if l.LoggedAt.IsZero() {
		l.LoggedAt = time.Now()
	}
	if l.Actor == "" {
		l.Actor = "System"
	}
	if l.Type == "" {
		l.Type = domain.LogInfo
	}
	var id int64
	err := q.QueryRow(ctx, `
		INSERT INTO activity_logs (owner_user_id, title, message, actor, type, logged_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING id
	`, ownerUserID, l.Title, l.Message, l.Actor, string(l.Type), l.LoggedAt).Scan(&id)
	return id, err
}
