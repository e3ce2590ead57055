package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/lazar0830/sos-condo-sub000/backend/services/maintenance-service/internal/events"
	internal_utils "github.com/lazar0830/sos-condo-sub000/backend/services/maintenance-service/internal/utils"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-models"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-repositories"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-utils"
	"github.com/sirupsen/logrus"
)

// Notification link views understood by the clients.
const (
	LinkViewServiceRequest = "service_request"
	LinkViewTask           = "task"
)

type NotificationService struct {
	repo repositories.NotificationRepository
	bus  events.ChangePublisher
}

func NewNotificationService(repo repositories.NotificationRepository, bus events.ChangePublisher) *NotificationService {
	return &NotificationService{repo: repo, bus: bus}
}

// Notify stores an in-app notification. It is advisory: errors are logged.
func (s *NotificationService) Notify(ctx context.Context, userID uuid.UUID, title, message string, link *models.NotificationLink) {
	if s == nil || userID == uuid.Nil {
		return
	}
	n := &models.Notification{
		ID:      uuid.New(),
		UserID:  userID,
		Title:   title,
		Message: message,
		Link:    link,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		utils.Logger.WithError(err).WithFields(logrus.Fields{
			"user":  userID,
			"title": title,
		}).Warn("failed to store notification")
		return
	}
	events.Emit(ctx, s.bus, events.EntityNotification, n.ID, events.OpCreate)
}

func (s *NotificationService) List(ctx context.Context, actor models.Actor) ([]*models.Notification, error) {
	return s.repo.ListByUserID(ctx, actor.ID)
}

func (s *NotificationService) own(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.Notification, error) {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if n == nil || n.UserID != actor.ID {
		return nil, internal_utils.NewNotFoundError("notification", id)
	}
	return n, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, actor models.Actor, id uuid.UUID) error {
	if _, err := s.own(ctx, actor, id); err != nil {
		return err
	}
	if err := s.repo.MarkRead(ctx, id); err != nil {
		return err
	}
	events.Emit(ctx, s.bus, events.EntityNotification, id, events.OpUpdate)
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, actor models.Actor) (int64, error) {
	n, err := s.repo.MarkAllRead(ctx, actor.ID)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		events.Emit(ctx, s.bus, events.EntityNotification, actor.ID, events.OpUpdate)
	}
	return n, nil
}

func (s *NotificationService) Delete(ctx context.Context, actor models.Actor, id uuid.UUID) error {
	if _, err := s.own(ctx, actor, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	events.Emit(ctx, s.bus, events.EntityNotification, id, events.OpDelete)
	return nil
}
