package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-models"
)

type ExpenseRepository interface {
	Create(ctx context.Context, e *models.Expense) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Expense, error)
	List(ctx context.Context) ([]*models.Expense, error)
	ListByBuildingID(ctx context.Context, buildingID uuid.UUID) ([]*models.Expense, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type expenseRepo struct{ db DB }

func NewExpenseRepository(db DB) ExpenseRepository {
	return &expenseRepo{db: db}
}

func (r *expenseRepo) Create(ctx context.Context, e *models.Expense) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO expenses (id, building_id, component_id, year, cost, description, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,NOW())
	`, e.ID, e.BuildingID, e.ComponentID, e.Year, e.Cost, e.Description)
	return err
}

func (r *expenseRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Expense, error) {
	return scanExpense(r.db.QueryRow(ctx, baseSelectExpense()+" WHERE id=$1", id))
}

func (r *expenseRepo) List(ctx context.Context) ([]*models.Expense, error) {
	rows, err := r.db.Query(ctx, baseSelectExpense()+" ORDER BY year DESC, created_at")
	if err != nil {
		return nil, err
	}
	return collect(rows, scanExpense)
}

func (r *expenseRepo) ListByBuildingID(ctx context.Context, buildingID uuid.UUID) ([]*models.Expense, error) {
	rows, err := r.db.Query(ctx, baseSelectExpense()+" WHERE building_id=$1 ORDER BY year DESC, created_at", buildingID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanExpense)
}

func (r *expenseRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM expenses WHERE id=$1`, id)
	return err
}

func baseSelectExpense() string {
	return `SELECT id, building_id, component_id, year, cost, description, created_at FROM expenses`
}

func scanExpense(row pgx.Row) (*models.Expense, error) {
	var e models.Expense
	if err := row.Scan(&e.ID, &e.BuildingID, &e.ComponentID, &e.Year, &e.Cost, &e.Description, &e.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}
