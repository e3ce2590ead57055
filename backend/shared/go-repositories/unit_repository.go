package repositories

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-models"
)

/* ───────────── public interface ───────────── */

type UnitRepository interface {
	Create(ctx context.Context, u *models.Unit) error
	CreateMany(ctx context.Context, list []models.Unit) error

	GetByID(ctx context.Context, id uuid.UUID) (*models.Unit, error)
	List(ctx context.Context) ([]*models.Unit, error)
	ListByBuildingID(ctx context.Context, bldgID uuid.UUID) ([]*models.Unit, error)

	Update(ctx context.Context, u *models.Unit) error
	Delete(ctx context.Context, id uuid.UUID) error
}

/* ───────────── implementation ───────────── */

type unitRepo struct{ db DB }

func NewUnitRepository(db DB) UnitRepository {
	return &unitRepo{db: db}
}

/* ---------- create ---------- */

func (r *unitRepo) Create(ctx context.Context, u *models.Unit) error {
	occupant, _ := json.Marshal(u.Occupant)
	_, err := r.db.Exec(ctx, `
		INSERT INTO units (
			id, building_id, unit_number, occupant, image_urls, created_at
		) VALUES ($1,$2,$3,$4,$5,NOW())
	`, u.ID, u.BuildingID, u.UnitNumber, occupant, u.ImageURLs)
	return err
}

func (r *unitRepo) CreateMany(ctx context.Context, list []models.Unit) error {
	for i := range list {
		if err := r.Create(ctx, &list[i]); err != nil {
			return err
		}
	}
	return nil
}

/* ---------- reads ---------- */

func (r *unitRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Unit, error) {
	return scanUnit(r.db.QueryRow(ctx, baseSelectUnit()+" WHERE id=$1", id))
}

func (r *unitRepo) List(ctx context.Context) ([]*models.Unit, error) {
	rows, err := r.db.Query(ctx, baseSelectUnit()+" ORDER BY building_id, unit_number")
	if err != nil {
		return nil, err
	}
	return collect(rows, scanUnit)
}

func (r *unitRepo) ListByBuildingID(ctx context.Context, bldgID uuid.UUID) ([]*models.Unit, error) {
	rows, err := r.db.Query(ctx, baseSelectUnit()+" WHERE building_id=$1 ORDER BY unit_number", bldgID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanUnit)
}

/* ---------- update / delete ---------- */

func (r *unitRepo) Update(ctx context.Context, u *models.Unit) error {
	occupant, _ := json.Marshal(u.Occupant)
	_, err := r.db.Exec(ctx, `
		UPDATE units SET unit_number=$1, occupant=$2, image_urls=$3
		WHERE id=$4
	`, u.UnitNumber, occupant, u.ImageURLs, u.ID)
	return err
}

func (r *unitRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM units WHERE id=$1`, id)
	return err
}

/* ---------- helpers ---------- */

func baseSelectUnit() string {
	return `
		SELECT id, building_id, unit_number, occupant, image_urls, created_at
		FROM units`
}

func scanUnit(row pgx.Row) (*models.Unit, error) {
	var u models.Unit
	var occupantB []byte
	if err := row.Scan(
		&u.ID, &u.BuildingID, &u.UnitNumber, &occupantB, &u.ImageURLs, &u.CreatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	if len(occupantB) > 0 && string(occupantB) != "null" {
		var occ models.Occupant
		if err := json.Unmarshal(occupantB, &occ); err == nil {
			u.Occupant = &occ
		}
	}
	return &u, nil
}
