package services

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	internal_utils "github.com/lazar0830/sos-condo-sub000/backend/services/maintenance-service/internal/utils"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-models"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-repositories"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-utils"
	"github.com/sirupsen/logrus"
)

// AuditService records privileged mutations. Only Admin and SuperAdmin
// actions are kept; a failed write is logged and never fails the caller.
type AuditService struct {
	repo repositories.AuditLogRepository
}

func NewAuditService(repo repositories.AuditLogRepository) *AuditService {
	return &AuditService{repo: repo}
}

func (s *AuditService) Record(
	ctx context.Context,
	actor models.Actor,
	action models.AuditAction,
	targetType models.AuditTargetType,
	targetID uuid.UUID,
	details any,
) {
	if s == nil || (actor.Role != models.RoleAdmin && actor.Role != models.RoleSuperAdmin) {
		return
	}
	entry := &models.AuditLog{
		ID:         uuid.New(),
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Action:     action,
		TargetID:   targetID,
		TargetType: targetType,
	}
	if details != nil {
		raw, err := json.Marshal(details)
		if err == nil {
			msg := json.RawMessage(raw)
			entry.Details = &msg
		}
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		utils.Logger.WithError(err).WithFields(logrus.Fields{
			"actor":  actor.ID,
			"target": targetID,
			"action": action,
		}).Error("failed to write audit log")
	}
}

func (s *AuditService) ListForTarget(ctx context.Context, actor models.Actor, targetID uuid.UUID) ([]*models.AuditLog, error) {
	if actor.Role != models.RoleAdmin && actor.Role != models.RoleSuperAdmin {
		return nil, internal_utils.NewAuthorizationError("read the audit log")
	}
	logs, err := s.repo.ListByTarget(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if actor.IsSuperAdmin() {
		return logs, nil
	}
	return filter(logs, func(l *models.AuditLog) bool { return l.ActorID == actor.ID }), nil
}
