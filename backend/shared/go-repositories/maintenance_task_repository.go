package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-models"
)

/* ------------------------------------------------------------------
   Public interface
------------------------------------------------------------------ */

type MaintenanceTaskRepository interface {
	Create(ctx context.Context, t *models.MaintenanceTask) error
	CreateMany(ctx context.Context, list []*models.MaintenanceTask) error

	GetByID(ctx context.Context, id uuid.UUID) (*models.MaintenanceTask, error)
	List(ctx context.Context) ([]*models.MaintenanceTask, error)
	ListByBuildingID(ctx context.Context, buildingID uuid.UUID) ([]*models.MaintenanceTask, error)
	ListByRecurringTaskID(ctx context.Context, masterID uuid.UUID) ([]*models.MaintenanceTask, error)
	ListByComponentID(ctx context.Context, componentID uuid.UUID) ([]*models.MaintenanceTask, error)
	ListByUnitID(ctx context.Context, unitID uuid.UUID) ([]*models.MaintenanceTask, error)

	Update(ctx context.Context, t *models.MaintenanceTask) error
	UpdateIfVersion(ctx context.Context, t *models.MaintenanceTask, expected int64) (pgconn.CommandTag, error)
	UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.MaintenanceTask) error) error
	Delete(ctx context.Context, id uuid.UUID) error
}

/* ------------------------------------------------------------------
   Implementation
------------------------------------------------------------------ */

type taskRepo struct {
	*BaseVersionedRepo[*models.MaintenanceTask]
	db DB
}

func NewMaintenanceTaskRepository(db DB) MaintenanceTaskRepository {
	r := &taskRepo{db: db}
	selectStmt := baseSelectTask() + " WHERE id=$1"
	r.BaseVersionedRepo = NewBaseRepo(db, selectStmt, scanTask)
	return r
}

/* ---------- Create ---------- */

func (r *taskRepo) Create(ctx context.Context, t *models.MaintenanceTask) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO maintenance_tasks (
            id, building_id, component_id, unit_id, name, description,
            specialty, recurrence, status, cost, provider_id,
            task_date, start_date, end_date, recurring_task_id,
            created_by, created_at, updated_at, row_version
        ) VALUES (
            $1,$2,$3,$4,$5,$6,
            $7,$8,$9,$10,$11,
            $12,$13,$14,$15,
            $16,NOW(),NOW(),1
        )
    `,
		t.ID, t.BuildingID, t.ComponentID, t.UnitID, t.Name, t.Description,
		t.Specialty, t.Recurrence, t.Status, t.Cost, t.ProviderID,
		t.TaskDate, t.StartDate, t.EndDate, t.RecurringTaskID,
		t.CreatedBy,
	)
	return err
}

func (r *taskRepo) CreateMany(ctx context.Context, list []*models.MaintenanceTask) error {
	for _, t := range list {
		if err := r.Create(ctx, t); err != nil {
			return err
		}
	}
	return nil
}

/* ---------- Reads ---------- */

func (r *taskRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.MaintenanceTask, error) {
	return r.BaseVersionedRepo.GetByID(ctx, id)
}

func (r *taskRepo) List(ctx context.Context) ([]*models.MaintenanceTask, error) {
	return r.listWhere(ctx, "")
}

func (r *taskRepo) ListByBuildingID(ctx context.Context, buildingID uuid.UUID) ([]*models.MaintenanceTask, error) {
	return r.listWhere(ctx, " WHERE building_id=$1", buildingID)
}

func (r *taskRepo) ListByRecurringTaskID(ctx context.Context, masterID uuid.UUID) ([]*models.MaintenanceTask, error) {
	return r.listWhere(ctx, " WHERE recurring_task_id=$1", masterID)
}

func (r *taskRepo) ListByComponentID(ctx context.Context, componentID uuid.UUID) ([]*models.MaintenanceTask, error) {
	return r.listWhere(ctx, " WHERE component_id=$1", componentID)
}

func (r *taskRepo) ListByUnitID(ctx context.Context, unitID uuid.UUID) ([]*models.MaintenanceTask, error) {
	return r.listWhere(ctx, " WHERE unit_id=$1", unitID)
}

func (r *taskRepo) listWhere(ctx context.Context, where string, args ...any) ([]*models.MaintenanceTask, error) {
	rows, err := r.db.Query(ctx, baseSelectTask()+where+" ORDER BY COALESCE(task_date, start_date), created_at", args...)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanTask)
}

/* ---------- Updates ---------- */

func (r *taskRepo) Update(ctx context.Context, t *models.MaintenanceTask) error {
	_, err := r.update(ctx, t, false, 0)
	return err
}

func (r *taskRepo) UpdateIfVersion(ctx context.Context, t *models.MaintenanceTask, expected int64) (pgconn.CommandTag, error) {
	return r.update(ctx, t, true, expected)
}

func (r *taskRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.MaintenanceTask) error) error {
	return r.BaseVersionedRepo.UpdateWithRetry(ctx, id, mutate, r.UpdateIfVersion)
}

func (r *taskRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM maintenance_tasks WHERE id=$1`, id)
	return err
}

/* ---------- internals ---------- */

func (r *taskRepo) update(
	ctx context.Context,
	t *models.MaintenanceTask,
	check bool,
	expected int64,
) (pgconn.CommandTag, error) {
	sql := `
        UPDATE maintenance_tasks SET
            component_id=$1, unit_id=$2, name=$3, description=$4,
            specialty=$5, status=$6, cost=$7, provider_id=$8,
            task_date=$9, start_date=$10, end_date=$11,
            updated_at=NOW()`
	args := []any{
		t.ComponentID, t.UnitID, t.Name, t.Description,
		t.Specialty, t.Status, t.Cost, t.ProviderID,
		t.TaskDate, t.StartDate, t.EndDate,
	}
	if check {
		sql += `, row_version=row_version+1 WHERE id=$12 AND row_version=$13`
		args = append(args, t.ID, expected)
	} else {
		sql += `, row_version=row_version+1 WHERE id=$12`
		args = append(args, t.ID)
	}
	return r.db.Exec(ctx, sql, args...)
}

func baseSelectTask() string {
	return `
        SELECT
            id, building_id, component_id, unit_id, name, description,
            specialty, recurrence, status, cost, provider_id,
            task_date, start_date, end_date, recurring_task_id,
            created_by, row_version, created_at, updated_at
        FROM maintenance_tasks
    `
}

func scanTask(row pgx.Row) (*models.MaintenanceTask, error) {
	var t models.MaintenanceTask
	var recurrence, status string
	err := row.Scan(
		&t.ID, &t.BuildingID, &t.ComponentID, &t.UnitID, &t.Name, &t.Description,
		&t.Specialty, &recurrence, &status, &t.Cost, &t.ProviderID,
		&t.TaskDate, &t.StartDate, &t.EndDate, &t.RecurringTaskID,
		&t.CreatedBy, &t.RowVersion, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	t.Recurrence = models.RecurrenceType(recurrence)
	t.Status = models.TaskStatusType(status)
	return &t, nil
}
