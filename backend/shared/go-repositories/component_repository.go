package repositories

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-models"
)

type ComponentRepository interface {
	Create(ctx context.Context, c *models.Component) error

	GetByID(ctx context.Context, id uuid.UUID) (*models.Component, error)
	List(ctx context.Context) ([]*models.Component, error)
	ListByBuildingID(ctx context.Context, bldgID uuid.UUID) ([]*models.Component, error)
	ListByUnitID(ctx context.Context, unitID uuid.UUID) ([]*models.Component, error)

	Update(ctx context.Context, c *models.Component) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type componentRepo struct{ db DB }

func NewComponentRepository(db DB) ComponentRepository {
	return &componentRepo{db: db}
}

func (r *componentRepo) Create(ctx context.Context, c *models.Component) error {
	class, _ := json.Marshal(c.Classification)
	_, err := r.db.Exec(ctx, `
		INSERT INTO components (
			id, building_id, unit_id, classification, name,
			brand, model, serial_number, install_date, warranty_end_date,
			image_urls, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,NOW())
	`,
		c.ID, c.BuildingID, c.UnitID, class, c.Name,
		c.Brand, c.Model, c.SerialNumber, c.InstallDate, c.WarrantyEndDate,
		c.ImageURLs,
	)
	return err
}

func (r *componentRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Component, error) {
	return scanComponent(r.db.QueryRow(ctx, baseSelectComponent()+" WHERE id=$1", id))
}

func (r *componentRepo) List(ctx context.Context) ([]*models.Component, error) {
	rows, err := r.db.Query(ctx, baseSelectComponent()+" ORDER BY building_id, name")
	if err != nil {
		return nil, err
	}
	return collect(rows, scanComponent)
}

func (r *componentRepo) ListByBuildingID(ctx context.Context, bldgID uuid.UUID) ([]*models.Component, error) {
	rows, err := r.db.Query(ctx, baseSelectComponent()+" WHERE building_id=$1 ORDER BY name", bldgID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanComponent)
}

func (r *componentRepo) ListByUnitID(ctx context.Context, unitID uuid.UUID) ([]*models.Component, error) {
	rows, err := r.db.Query(ctx, baseSelectComponent()+" WHERE unit_id=$1 ORDER BY name", unitID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanComponent)
}

func (r *componentRepo) Update(ctx context.Context, c *models.Component) error {
	class, _ := json.Marshal(c.Classification)
	_, err := r.db.Exec(ctx, `
		UPDATE components SET
			unit_id=$1, classification=$2, name=$3,
			brand=$4, model=$5, serial_number=$6,
			install_date=$7, warranty_end_date=$8, image_urls=$9
		WHERE id=$10
	`,
		c.UnitID, class, c.Name,
		c.Brand, c.Model, c.SerialNumber,
		c.InstallDate, c.WarrantyEndDate, c.ImageURLs,
		c.ID,
	)
	return err
}

func (r *componentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM components WHERE id=$1`, id)
	return err
}

func baseSelectComponent() string {
	return `
		SELECT id, building_id, unit_id, classification, name,
		       brand, model, serial_number, install_date, warranty_end_date,
		       image_urls, created_at
		FROM components`
}

func scanComponent(row pgx.Row) (*models.Component, error) {
	var c models.Component
	var classB []byte
	err := row.Scan(
		&c.ID, &c.BuildingID, &c.UnitID, &classB, &c.Name,
		&c.Brand, &c.Model, &c.SerialNumber, &c.InstallDate, &c.WarrantyEndDate,
		&c.ImageURLs, &c.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	_ = json.Unmarshal(classB, &c.Classification)
	return &c, nil
}
