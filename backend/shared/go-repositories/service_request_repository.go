package repositories

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-models"
)

type ServiceRequestRepository interface {
	Create(ctx context.Context, req *models.ServiceRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.ServiceRequest, error)

	List(ctx context.Context) ([]*models.ServiceRequest, error)
	ListByTaskID(ctx context.Context, taskID uuid.UUID) ([]*models.ServiceRequest, error)
	ListByProviderID(ctx context.Context, providerID uuid.UUID) ([]*models.ServiceRequest, error)

	UpdateIfVersion(ctx context.Context, req *models.ServiceRequest, expected int64) (pgconn.CommandTag, error)
	UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.ServiceRequest) error) error

	// Append-only collections are extended in place with jsonb concatenation.
	AppendComment(ctx context.Context, id uuid.UUID, c models.RequestComment) error
	AppendDocument(ctx context.Context, id uuid.UUID, d models.RequestDocument) error

	Delete(ctx context.Context, id uuid.UUID) error
}

type serviceRequestRepo struct {
	*BaseVersionedRepo[*models.ServiceRequest]
	db DB
}

func NewServiceRequestRepository(db DB) ServiceRequestRepository {
	r := &serviceRequestRepo{db: db}
	r.BaseVersionedRepo = NewBaseRepo(db, baseSelectRequest()+" WHERE id=$1", scanRequest)
	return r
}

func baseSelectRequest() string {
	return `
        SELECT
            id, task_id, provider_id, specialty, notes, status,
            scheduled_date, cost, is_urgent,
            status_history, comments, documents,
            created_by, row_version, created_at, updated_at
        FROM service_requests
    `
}

func scanRequest(row pgx.Row) (*models.ServiceRequest, error) {
	var req models.ServiceRequest
	var status string
	var historyB, commentsB, docsB []byte
	err := row.Scan(
		&req.ID, &req.TaskID, &req.ProviderID, &req.Specialty, &req.Notes, &status,
		&req.ScheduledDate, &req.Cost, &req.IsUrgent,
		&historyB, &commentsB, &docsB,
		&req.CreatedBy, &req.RowVersion, &req.CreatedAt, &req.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	req.Status = models.RequestStatusType(status)
	_ = json.Unmarshal(historyB, &req.StatusHistory)
	_ = json.Unmarshal(commentsB, &req.Comments)
	_ = json.Unmarshal(docsB, &req.Documents)
	return &req, nil
}

func (r *serviceRequestRepo) Create(ctx context.Context, req *models.ServiceRequest) error {
	history, _ := json.Marshal(nonNil(req.StatusHistory))
	comments, _ := json.Marshal(nonNil(req.Comments))
	docs, _ := json.Marshal(nonNil(req.Documents))
	_, err := r.db.Exec(ctx, `
        INSERT INTO service_requests (
            id, task_id, provider_id, specialty, notes, status,
            scheduled_date, cost, is_urgent,
            status_history, comments, documents,
            created_by, created_at, updated_at, row_version
        ) VALUES (
            $1,$2,$3,$4,$5,$6,
            $7,$8,$9,
            $10,$11,$12,
            $13,NOW(),NOW(),1
        )
    `,
		req.ID, req.TaskID, req.ProviderID, req.Specialty, req.Notes, req.Status,
		req.ScheduledDate, req.Cost, req.IsUrgent,
		history, comments, docs,
		req.CreatedBy,
	)
	return err
}

func (r *serviceRequestRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.ServiceRequest, error) {
	return r.BaseVersionedRepo.GetByID(ctx, id)
}

func (r *serviceRequestRepo) List(ctx context.Context) ([]*models.ServiceRequest, error) {
	rows, err := r.db.Query(ctx, baseSelectRequest()+" ORDER BY created_at")
	if err != nil {
		return nil, err
	}
	return collect(rows, scanRequest)
}

func (r *serviceRequestRepo) ListByTaskID(ctx context.Context, taskID uuid.UUID) ([]*models.ServiceRequest, error) {
	rows, err := r.db.Query(ctx, baseSelectRequest()+" WHERE task_id=$1 ORDER BY created_at", taskID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanRequest)
}

func (r *serviceRequestRepo) ListByProviderID(ctx context.Context, providerID uuid.UUID) ([]*models.ServiceRequest, error) {
	rows, err := r.db.Query(ctx, baseSelectRequest()+" WHERE provider_id=$1 ORDER BY created_at", providerID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanRequest)
}

// UpdateIfVersion writes the mutable fields plus the full status history.
// Comments and documents are only touched through the Append helpers.
func (r *serviceRequestRepo) UpdateIfVersion(
	ctx context.Context,
	req *models.ServiceRequest,
	expected int64,
) (pgconn.CommandTag, error) {
	history, _ := json.Marshal(nonNil(req.StatusHistory))
	return r.db.Exec(ctx, `
        UPDATE service_requests SET
            provider_id=$1, specialty=$2, notes=$3, status=$4,
            scheduled_date=$5, cost=$6, is_urgent=$7,
            status_history=$8,
            updated_at=NOW(), row_version=row_version+1
        WHERE id=$9 AND row_version=$10
    `,
		req.ProviderID, req.Specialty, req.Notes, req.Status,
		req.ScheduledDate, req.Cost, req.IsUrgent,
		history,
		req.ID, expected,
	)
}

func (r *serviceRequestRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.ServiceRequest) error) error {
	return r.BaseVersionedRepo.UpdateWithRetry(ctx, id, mutate, r.UpdateIfVersion)
}

func (r *serviceRequestRepo) AppendComment(ctx context.Context, id uuid.UUID, c models.RequestComment) error {
	b, _ := json.Marshal([]models.RequestComment{c})
	tag, err := r.db.Exec(ctx, `
        UPDATE service_requests
        SET comments = comments || $1::jsonb, updated_at=NOW()
        WHERE id=$2
    `, b, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *serviceRequestRepo) AppendDocument(ctx context.Context, id uuid.UUID, d models.RequestDocument) error {
	b, _ := json.Marshal([]models.RequestDocument{d})
	tag, err := r.db.Exec(ctx, `
        UPDATE service_requests
        SET documents = documents || $1::jsonb, updated_at=NOW()
        WHERE id=$2
    `, b, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *serviceRequestRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM service_requests WHERE id=$1`, id)
	return err
}

// nonNil keeps empty collections serialised as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
