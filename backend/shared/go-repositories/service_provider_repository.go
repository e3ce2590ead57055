package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-models"
)

type ServiceProviderRepository interface {
	Create(ctx context.Context, p *models.ServiceProvider) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.ServiceProvider, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.ServiceProvider, error)
	List(ctx context.Context) ([]*models.ServiceProvider, error)

	UpdateIfVersion(ctx context.Context, p *models.ServiceProvider, expected int64) (pgconn.CommandTag, error)
	UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.ServiceProvider) error) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type providerRepo struct {
	*BaseVersionedRepo[*models.ServiceProvider]
	db DB
}

func NewServiceProviderRepository(db DB) ServiceProviderRepository {
	r := &providerRepo{db: db}
	r.BaseVersionedRepo = NewBaseRepo(db, baseSelectProvider()+" WHERE id=$1", scanProvider)
	return r
}

func (r *providerRepo) Create(ctx context.Context, p *models.ServiceProvider) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO service_providers (
			id, name, email, specialty, phone, contact_name, address,
			user_id, created_by, created_at, updated_at, row_version
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,NOW(),NOW(),1)
	`,
		p.ID, p.Name, p.Email, p.Specialty, p.Phone, p.ContactName, p.Address,
		p.UserID, p.CreatedBy,
	)
	return err
}

func (r *providerRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.ServiceProvider, error) {
	return r.BaseVersionedRepo.GetByID(ctx, id)
}

func (r *providerRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.ServiceProvider, error) {
	return scanProvider(r.db.QueryRow(ctx, baseSelectProvider()+" WHERE user_id=$1", userID))
}

func (r *providerRepo) List(ctx context.Context) ([]*models.ServiceProvider, error) {
	rows, err := r.db.Query(ctx, baseSelectProvider()+" ORDER BY name")
	if err != nil {
		return nil, err
	}
	return collect(rows, scanProvider)
}

func (r *providerRepo) UpdateIfVersion(ctx context.Context, p *models.ServiceProvider, expected int64) (pgconn.CommandTag, error) {
	return r.db.Exec(ctx, `
		UPDATE service_providers SET
			name=$1, email=$2, specialty=$3, phone=$4, contact_name=$5,
			address=$6, user_id=$7,
			updated_at=NOW(), row_version=row_version+1
		WHERE id=$8 AND row_version=$9
	`,
		p.Name, p.Email, p.Specialty, p.Phone, p.ContactName,
		p.Address, p.UserID,
		p.ID, expected,
	)
}

func (r *providerRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.ServiceProvider) error) error {
	return r.BaseVersionedRepo.UpdateWithRetry(ctx, id, mutate, r.UpdateIfVersion)
}

func (r *providerRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM service_providers WHERE id=$1`, id)
	return err
}

func baseSelectProvider() string {
	return `
		SELECT id, name, email, specialty, phone, contact_name, address,
		       user_id, created_by, row_version, created_at, updated_at
		FROM service_providers`
}

func scanProvider(row pgx.Row) (*models.ServiceProvider, error) {
	var p models.ServiceProvider
	if err := row.Scan(
		&p.ID, &p.Name, &p.Email, &p.Specialty, &p.Phone, &p.ContactName, &p.Address,
		&p.UserID, &p.CreatedBy, &p.RowVersion, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}
