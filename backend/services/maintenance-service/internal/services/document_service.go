package services

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/lazar0830/sos-condo-sub000/backend/services/maintenance-service/internal/events"
	"github.com/lazar0830/sos-condo-sub000/backend/services/maintenance-service/internal/storage"
	internal_utils "github.com/lazar0830/sos-condo-sub000/backend/services/maintenance-service/internal/utils"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-models"
)

// DocumentService handles contingency documents (insurance, emergency plans).
type DocumentService struct {
	repos Repositories
	scope *ScopeService
	blobs storage.BlobStore
	audit *AuditService
	bus   events.ChangePublisher
}

func NewDocumentService(repos Repositories, scope *ScopeService, blobs storage.BlobStore, audit *AuditService, bus events.ChangePublisher) *DocumentService {
	return &DocumentService{repos: repos, scope: scope, blobs: blobs, audit: audit, bus: bus}
}

// Upload stores the file and records it. A building id, when given, must be
// one the actor manages.
func (s *DocumentService) Upload(ctx context.Context, actor models.Actor, buildingID *uuid.UUID, title, filename string, r io.Reader) (*models.ContingencyDocument, error) {
	if !actor.Role.IsManagement() {
		return nil, internal_utils.NewAuthorizationError("upload contingency documents")
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, internal_utils.NewValidationError("title", "title is required")
	}
	if buildingID != nil {
		if _, err := s.scope.RequireBuilding(ctx, actor, *buildingID); err != nil {
			return nil, err
		}
	}
	id := uuid.New()
	url, err := s.blobs.Put(ctx, id, filename, r)
	if err != nil {
		return nil, fmt.Errorf("store document: %w", err)
	}
	doc := &models.ContingencyDocument{
		ID:           id,
		BuildingID:   buildingID,
		Title:        title,
		FileURL:      url,
		UploadedBy:   actor.DisplayName,
		UploadedByID: actor.ID,
	}
	if err := s.repos.Documents.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}
	events.Emit(ctx, s.bus, events.EntityDocument, doc.ID, events.OpCreate)
	return doc, nil
}

func (s *DocumentService) List(ctx context.Context, actor models.Actor) ([]*models.ContingencyDocument, error) {
	snap, err := s.scope.SnapshotFor(ctx, actor)
	if err != nil {
		return nil, err
	}
	return snap.Documents, nil
}

// Delete is allowed to the uploader, Admins and SuperAdmins.
func (s *DocumentService) Delete(ctx context.Context, actor models.Actor, id uuid.UUID) error {
	doc, err := s.repos.Documents.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if doc == nil {
		return internal_utils.NewNotFoundError("document", id)
	}
	visible, err := s.List(ctx, actor)
	if err != nil {
		return err
	}
	if !slices.ContainsFunc(visible, func(d *models.ContingencyDocument) bool { return d.ID == id }) {
		return internal_utils.NewNotFoundError("document", id)
	}
	uploader := doc.UploadedByID == actor.ID || doc.UploadedBy == actor.DisplayName
	if !uploader && actor.Role != models.RoleAdmin && actor.Role != models.RoleSuperAdmin {
		return internal_utils.NewAuthorizationError("delete document %q", doc.Title)
	}
	if err := s.repos.Documents.Delete(ctx, id); err != nil {
		return err
	}
	events.Emit(ctx, s.bus, events.EntityDocument, id, events.OpDelete)
	s.audit.Record(ctx, actor, models.AuditDelete, models.TargetContingencyDocument, id, map[string]string{"title": doc.Title})
	return nil
}
