package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-models"
)

type ContingencyDocumentRepository interface {
	Create(ctx context.Context, d *models.ContingencyDocument) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.ContingencyDocument, error)
	List(ctx context.Context) ([]*models.ContingencyDocument, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type contingencyDocRepo struct{ db DB }

func NewContingencyDocumentRepository(db DB) ContingencyDocumentRepository {
	return &contingencyDocRepo{db: db}
}

func (r *contingencyDocRepo) Create(ctx context.Context, d *models.ContingencyDocument) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO contingency_documents (id, building_id, title, file_url, uploaded_by, uploaded_by_id, uploaded_at)
		VALUES ($1,$2,$3,$4,$5,$6,NOW())
	`, d.ID, d.BuildingID, d.Title, d.FileURL, d.UploadedBy, d.UploadedByID)
	return err
}

func (r *contingencyDocRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.ContingencyDocument, error) {
	return scanContingencyDoc(r.db.QueryRow(ctx, baseSelectContingencyDoc()+" WHERE id=$1", id))
}

func (r *contingencyDocRepo) List(ctx context.Context) ([]*models.ContingencyDocument, error) {
	rows, err := r.db.Query(ctx, baseSelectContingencyDoc()+" ORDER BY uploaded_at DESC")
	if err != nil {
		return nil, err
	}
	return collect(rows, scanContingencyDoc)
}

func (r *contingencyDocRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM contingency_documents WHERE id=$1`, id)
	return err
}

func baseSelectContingencyDoc() string {
	return `SELECT id, building_id, title, file_url, uploaded_by, uploaded_by_id, uploaded_at FROM contingency_documents`
}

func scanContingencyDoc(row pgx.Row) (*models.ContingencyDocument, error) {
	var d models.ContingencyDocument
	if err := row.Scan(&d.ID, &d.BuildingID, &d.Title, &d.FileURL, &d.UploadedBy, &d.UploadedByID, &d.UploadedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &d, nil
}
