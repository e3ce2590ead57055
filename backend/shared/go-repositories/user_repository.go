package repositories

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-models"
)

type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type userRepo struct {
	db DB
}

func NewUserRepository(db DB) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) Create(ctx context.Context, u *models.User) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO users (id, email, username, role, password_hash, created_by, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,NOW())
	`, u.ID, strings.ToLower(u.Email), u.Username, u.Role, u.PasswordHash, u.CreatedBy)
	return err
}

func (r *userRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return scanUser(r.db.QueryRow(ctx, baseSelectUser()+" WHERE id=$1", id))
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return scanUser(r.db.QueryRow(ctx, baseSelectUser()+" WHERE email=$1", strings.ToLower(email)))
}

func (r *userRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return scanUser(r.db.QueryRow(ctx, baseSelectUser()+" WHERE username=$1", username))
}

func (r *userRepo) List(ctx context.Context) ([]*models.User, error) {
	rows, err := r.db.Query(ctx, baseSelectUser()+" ORDER BY created_at")
	if err != nil {
		return nil, err
	}
	return collect(rows, scanUser)
}

func (r *userRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM users WHERE id=$1`, id)
	return err
}

func baseSelectUser() string {
	return `SELECT id, email, username, role, password_hash, created_by, created_at FROM users`
}

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	var role string
	if err := row.Scan(&u.ID, &u.Email, &u.Username, &role, &u.PasswordHash, &u.CreatedBy, &u.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	u.Role = models.RoleType(role)
	return &u, nil
}
