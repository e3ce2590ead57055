package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-models"
)

/* ------------------------------------------------------------------
   Public interface
------------------------------------------------------------------ */

type BuildingRepository interface {
	Create(ctx context.Context, b *models.Building) error

	GetByID(ctx context.Context, id uuid.UUID) (*models.Building, error)
	List(ctx context.Context) ([]*models.Building, error)
	ListByCreators(ctx context.Context, creatorIDs []uuid.UUID) ([]*models.Building, error)

	Update(ctx context.Context, b *models.Building) error
	Delete(ctx context.Context, id uuid.UUID) error
}

/* ------------------------------------------------------------------
   Implementation
------------------------------------------------------------------ */

type buildingRepo struct{ db DB }

func NewBuildingRepository(db DB) BuildingRepository {
	return &buildingRepo{db: db}
}

/* ---------- Create ---------- */

func (r *buildingRepo) Create(ctx context.Context, b *models.Building) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO buildings (
			id,name,address,created_by,created_at,updated_at
		) VALUES ($1,$2,$3,$4,NOW(),NOW())
	`, b.ID, b.Name, b.Address, b.CreatedBy)
	return err
}

/* ---------- Reads ---------- */

func (r *buildingRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Building, error) {
	row := r.db.QueryRow(ctx, baseSelectBuilding()+" WHERE id=$1", id)
	return scanBuilding(row)
}

func (r *buildingRepo) List(ctx context.Context) ([]*models.Building, error) {
	rows, err := r.db.Query(ctx, baseSelectBuilding()+" ORDER BY name")
	if err != nil {
		return nil, err
	}
	return collect(rows, scanBuilding)
}

func (r *buildingRepo) ListByCreators(ctx context.Context, creatorIDs []uuid.UUID) ([]*models.Building, error) {
	rows, err := r.db.Query(ctx, baseSelectBuilding()+" WHERE created_by = ANY($1) ORDER BY name", creatorIDs)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanBuilding)
}

/* ---------- Update / Delete ---------- */

func (r *buildingRepo) Update(ctx context.Context, b *models.Building) error {
	_, err := r.db.Exec(ctx, `
		UPDATE buildings SET
		      name=$1,address=$2,updated_at=NOW()
		WHERE id=$3
	`, b.Name, b.Address, b.ID)
	return err
}

// Delete is a no-op when the row is already gone.
func (r *buildingRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM buildings WHERE id=$1`, id)
	return err
}

/* ---------- internals ---------- */

func baseSelectBuilding() string {
	return `
		SELECT id,name,address,created_by,created_at,updated_at
		FROM buildings`
}

func scanBuilding(row pgx.Row) (*models.Building, error) {
	var b models.Building
	if err := row.Scan(
		&b.ID, &b.Name, &b.Address, &b.CreatedBy, &b.CreatedAt, &b.UpdatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}
