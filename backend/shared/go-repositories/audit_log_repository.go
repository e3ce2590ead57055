// backend/shared/go-repositories/audit_log_repository.go
package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-models"
)

type AuditLogRepository interface {
	Create(ctx context.Context, logEntry *models.AuditLog) error
	ListByTarget(ctx context.Context, targetID uuid.UUID) ([]*models.AuditLog, error)
}

type auditLogRepo struct {
	db DB
}

func NewAuditLogRepository(db DB) AuditLogRepository {
	return &auditLogRepo{db: db}
}

func (r *auditLogRepo) Create(ctx context.Context, logEntry *models.AuditLog) error {
	q := `
        INSERT INTO audit_logs (
            id, actor_id, actor_role, action, target_id, target_type, details, created_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
    `
	_, err := r.db.Exec(ctx, q,
		logEntry.ID,
		logEntry.ActorID,
		logEntry.ActorRole,
		logEntry.Action,
		logEntry.TargetID,
		logEntry.TargetType,
		logEntry.Details,
	)
	return err
}

func (r *auditLogRepo) ListByTarget(ctx context.Context, targetID uuid.UUID) ([]*models.AuditLog, error) {
	rows, err := r.db.Query(ctx, `
        SELECT id, actor_id, actor_role, action, target_id, target_type, details, created_at
        FROM audit_logs WHERE target_id=$1 ORDER BY created_at
    `, targetID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanAuditLog)
}

func scanAuditLog(row pgx.Row) (*models.AuditLog, error) {
	var l models.AuditLog
	var role, action, target string
	if err := row.Scan(&l.ID, &l.ActorID, &role, &action, &l.TargetID, &target, &l.Details, &l.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	l.ActorRole = models.RoleType(role)
	l.Action = models.AuditAction(action)
	l.TargetType = models.AuditTargetType(target)
	return &l, nil
}
