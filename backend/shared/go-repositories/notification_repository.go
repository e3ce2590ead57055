package repositories

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-models"
)

type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Notification, error)
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Notification, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type notificationRepo struct{ db DB }

func NewNotificationRepository(db DB) NotificationRepository {
	return &notificationRepo{db: db}
}

func (r *notificationRepo) Create(ctx context.Context, n *models.Notification) error {
	var link []byte
	if n.Link != nil {
		link, _ = json.Marshal(n.Link)
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO notifications (id, user_id, title, message, is_read, link, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,NOW())
	`, n.ID, n.UserID, n.Title, n.Message, n.IsRead, link)
	return err
}

func (r *notificationRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Notification, error) {
	return scanNotification(r.db.QueryRow(ctx, baseSelectNotification()+" WHERE id=$1", id))
}

func (r *notificationRepo) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Notification, error) {
	rows, err := r.db.Query(ctx, baseSelectNotification()+" WHERE user_id=$1 ORDER BY created_at DESC", userID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanNotification)
}

func (r *notificationRepo) MarkRead(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `UPDATE notifications SET is_read=TRUE WHERE id=$1`, id)
	return err
}

func (r *notificationRepo) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	tag, err := r.db.Exec(ctx, `UPDATE notifications SET is_read=TRUE WHERE user_id=$1 AND is_read=FALSE`, userID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *notificationRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM notifications WHERE id=$1`, id)
	return err
}

func baseSelectNotification() string {
	return `SELECT id, user_id, title, message, is_read, link, created_at FROM notifications`
}

func scanNotification(row pgx.Row) (*models.Notification, error) {
	var n models.Notification
	var linkB []byte
	if err := row.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.IsRead, &linkB, &n.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	if len(linkB) > 0 {
		var l models.NotificationLink
		if json.Unmarshal(linkB, &l) == nil {
			n.Link = &l
		}
	}
	return &n, nil
}
