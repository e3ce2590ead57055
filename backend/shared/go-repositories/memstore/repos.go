package memstore

import (
	"context"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-models"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-repositories"
)

/* ------------------------------------------------------------------
   Accessors
------------------------------------------------------------------ */

func (s *Store) Buildings() repositories.BuildingRepository                       { return &buildingRepo{s} }
func (s *Store) Units() repositories.UnitRepository                               { return &unitRepo{s} }
func (s *Store) Components() repositories.ComponentRepository                     { return &componentRepo{s} }
func (s *Store) Tasks() repositories.MaintenanceTaskRepository                    { return &taskRepo{s} }
func (s *Store) Providers() repositories.ServiceProviderRepository                { return &providerRepo{s} }
func (s *Store) Requests() repositories.ServiceRequestRepository                  { return &requestRepo{s} }
func (s *Store) Expenses() repositories.ExpenseRepository                         { return &expenseRepo{s} }
func (s *Store) Users() repositories.UserRepository                               { return &userRepo{s} }
func (s *Store) Notifications() repositories.NotificationRepository               { return &notificationRepo{s} }
func (s *Store) ContingencyDocuments() repositories.ContingencyDocumentRepository { return &contingencyRepo{s} }
func (s *Store) AuditLogs() repositories.AuditLogRepository                       { return &auditRepo{s} }

func ptr[T any](v T, ok bool) *T {
	if !ok {
		return nil
	}
	return &v
}

func ptrs[T any](vs []T) []*T {
	out := make([]*T, len(vs))
	for i := range vs {
		out[i] = &vs[i]
	}
	return out
}

/* ---------- buildings ---------- */

type buildingRepo struct{ s *Store }

func (r *buildingRepo) Create(_ context.Context, b *models.Building) error {
	now := r.s.Now()
	b.CreatedAt, b.UpdatedAt = now, now
	return insert(r.s, r.s.buildings, b.ID, *b)
}

func (r *buildingRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Building, error) {
	v, ok := get(r.s, r.s.buildings, id)
	return ptr(v, ok), nil
}

func (r *buildingRepo) List(_ context.Context) ([]*models.Building, error) {
	return ptrs(list(r.s, r.s.buildings, nil)), nil
}

func (r *buildingRepo) ListByCreators(_ context.Context, creatorIDs []uuid.UUID) ([]*models.Building, error) {
	return ptrs(list(r.s, r.s.buildings, func(b models.Building) bool {
		return slices.Contains(creatorIDs, b.CreatedBy)
	})), nil
}

func (r *buildingRepo) Update(_ context.Context, b *models.Building) error {
	b.UpdatedAt = r.s.Now()
	_, err := replace(r.s, r.s.buildings, b.ID, nil, *b)
	return err
}

func (r *buildingRepo) Delete(_ context.Context, id uuid.UUID) error {
	return remove(r.s, r.s.buildings, id)
}

/* ---------- units ---------- */

type unitRepo struct{ s *Store }

func cloneUnit(u models.Unit) models.Unit {
	u.ImageURLs = slices.Clone(u.ImageURLs)
	if u.Occupant != nil {
		occ := *u.Occupant
		u.Occupant = &occ
	}
	return u
}

func (r *unitRepo) Create(_ context.Context, u *models.Unit) error {
	u.CreatedAt = r.s.Now()
	return insert(r.s, r.s.units, u.ID, cloneUnit(*u))
}

func (r *unitRepo) CreateMany(ctx context.Context, list []models.Unit) error {
	for i := range list {
		if err := r.Create(ctx, &list[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *unitRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Unit, error) {
	u, ok := get(r.s, r.s.units, id)
	return ptr(cloneUnit(u), ok), nil
}

func (r *unitRepo) List(_ context.Context) ([]*models.Unit, error) {
	return ptrs(list(r.s, r.s.units, nil)), nil
}

func (r *unitRepo) ListByBuildingID(_ context.Context, bldgID uuid.UUID) ([]*models.Unit, error) {
	return ptrs(list(r.s, r.s.units, func(u models.Unit) bool { return u.BuildingID == bldgID })), nil
}

func (r *unitRepo) Update(_ context.Context, u *models.Unit) error {
	_, err := replace(r.s, r.s.units, u.ID, nil, cloneUnit(*u))
	return err
}

func (r *unitRepo) Delete(_ context.Context, id uuid.UUID) error {
	return remove(r.s, r.s.units, id)
}

/* ---------- components ---------- */

type componentRepo struct{ s *Store }

func (r *componentRepo) Create(_ context.Context, c *models.Component) error {
	c.CreatedAt = r.s.Now()
	cp := *c
	cp.ImageURLs = slices.Clone(c.ImageURLs)
	return insert(r.s, r.s.components, c.ID, cp)
}

func (r *componentRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Component, error) {
	v, ok := get(r.s, r.s.components, id)
	return ptr(v, ok), nil
}

func (r *componentRepo) List(_ context.Context) ([]*models.Component, error) {
	return ptrs(list(r.s, r.s.components, nil)), nil
}

func (r *componentRepo) ListByBuildingID(_ context.Context, bldgID uuid.UUID) ([]*models.Component, error) {
	return ptrs(list(r.s, r.s.components, func(c models.Component) bool { return c.BuildingID == bldgID })), nil
}

func (r *componentRepo) ListByUnitID(_ context.Context, unitID uuid.UUID) ([]*models.Component, error) {
	return ptrs(list(r.s, r.s.components, func(c models.Component) bool {
		return c.UnitID != nil && *c.UnitID == unitID
	})), nil
}

func (r *componentRepo) Update(_ context.Context, c *models.Component) error {
	cp := *c
	cp.ImageURLs = slices.Clone(c.ImageURLs)
	_, err := replace(r.s, r.s.components, c.ID, nil, cp)
	return err
}

func (r *componentRepo) Delete(_ context.Context, id uuid.UUID) error {
	return remove(r.s, r.s.components, id)
}

/* ---------- maintenance tasks ---------- */

type taskRepo struct{ s *Store }

func (r *taskRepo) Create(_ context.Context, t *models.MaintenanceTask) error {
	now := r.s.Now()
	t.CreatedAt, t.UpdatedAt = now, now
	t.RowVersion = 1
	return insert(r.s, r.s.tasks, t.ID, *t)
}

func (r *taskRepo) CreateMany(ctx context.Context, list []*models.MaintenanceTask) error {
	for _, t := range list {
		if err := r.Create(ctx, t); err != nil {
			return err
		}
	}
	return nil
}

func (r *taskRepo) GetByID(_ context.Context, id uuid.UUID) (*models.MaintenanceTask, error) {
	v, ok := get(r.s, r.s.tasks, id)
	return ptr(v, ok), nil
}

func (r *taskRepo) List(_ context.Context) ([]*models.MaintenanceTask, error) {
	return ptrs(list(r.s, r.s.tasks, nil)), nil
}

func (r *taskRepo) ListByBuildingID(_ context.Context, buildingID uuid.UUID) ([]*models.MaintenanceTask, error) {
	return ptrs(list(r.s, r.s.tasks, func(t models.MaintenanceTask) bool { return t.BuildingID == buildingID })), nil
}

func (r *taskRepo) ListByRecurringTaskID(_ context.Context, masterID uuid.UUID) ([]*models.MaintenanceTask, error) {
	return ptrs(list(r.s, r.s.tasks, func(t models.MaintenanceTask) bool {
		return t.RecurringTaskID != nil && *t.RecurringTaskID == masterID
	})), nil
}

func (r *taskRepo) ListByComponentID(_ context.Context, componentID uuid.UUID) ([]*models.MaintenanceTask, error) {
	return ptrs(list(r.s, r.s.tasks, func(t models.MaintenanceTask) bool {
		return t.ComponentID != nil && *t.ComponentID == componentID
	})), nil
}

func (r *taskRepo) ListByUnitID(_ context.Context, unitID uuid.UUID) ([]*models.MaintenanceTask, error) {
	return ptrs(list(r.s, r.s.tasks, func(t models.MaintenanceTask) bool {
		return t.UnitID != nil && *t.UnitID == unitID
	})), nil
}

func (r *taskRepo) Update(ctx context.Context, t *models.MaintenanceTask) error {
	stored, ok := get(r.s, r.s.tasks, t.ID)
	if !ok {
		return nil
	}
	_, err := r.UpdateIfVersion(ctx, t, stored.RowVersion)
	return err
}

func (r *taskRepo) UpdateIfVersion(_ context.Context, t *models.MaintenanceTask, expected int64) (pgconn.CommandTag, error) {
	next := *t
	next.RowVersion = expected + 1
	next.UpdatedAt = r.s.Now()
	return replace(r.s, r.s.tasks, t.ID, func(stored models.MaintenanceTask) bool {
		return stored.RowVersion == expected
	}, next)
}

func (r *taskRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.MaintenanceTask) error) error {
	return repositories.WithRetry(ctx, repositories.DefaultMaxRetries, id, r.GetByID, r.UpdateIfVersion, mutate)
}

func (r *taskRepo) Delete(_ context.Context, id uuid.UUID) error {
	return remove(r.s, r.s.tasks, id)
}

/* ---------- service providers ---------- */

type providerRepo struct{ s *Store }

func (r *providerRepo) Create(_ context.Context, p *models.ServiceProvider) error {
	now := r.s.Now()
	p.CreatedAt, p.UpdatedAt = now, now
	p.RowVersion = 1
	return insert(r.s, r.s.providers, p.ID, *p)
}

func (r *providerRepo) GetByID(_ context.Context, id uuid.UUID) (*models.ServiceProvider, error) {
	v, ok := get(r.s, r.s.providers, id)
	return ptr(v, ok), nil
}

func (r *providerRepo) GetByUserID(_ context.Context, userID uuid.UUID) (*models.ServiceProvider, error) {
	found := list(r.s, r.s.providers, func(p models.ServiceProvider) bool {
		return p.UserID != nil && *p.UserID == userID
	})
	if len(found) == 0 {
		return nil, nil
	}
	return &found[0], nil
}

func (r *providerRepo) List(_ context.Context) ([]*models.ServiceProvider, error) {
	return ptrs(list(r.s, r.s.providers, nil)), nil
}

func (r *providerRepo) UpdateIfVersion(_ context.Context, p *models.ServiceProvider, expected int64) (pgconn.CommandTag, error) {
	next := *p
	next.RowVersion = expected + 1
	next.UpdatedAt = r.s.Now()
	return replace(r.s, r.s.providers, p.ID, func(stored models.ServiceProvider) bool {
		return stored.RowVersion == expected
	}, next)
}

func (r *providerRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.ServiceProvider) error) error {
	return repositories.WithRetry(ctx, repositories.DefaultMaxRetries, id, r.GetByID, r.UpdateIfVersion, mutate)
}

func (r *providerRepo) Delete(_ context.Context, id uuid.UUID) error {
	return remove(r.s, r.s.providers, id)
}

/* ---------- service requests ---------- */

type requestRepo struct{ s *Store }

func cloneRequest(req models.ServiceRequest) models.ServiceRequest {
	req.StatusHistory = slices.Clone(req.StatusHistory)
	req.Comments = slices.Clone(req.Comments)
	req.Documents = slices.Clone(req.Documents)
	return req
}

func (r *requestRepo) Create(_ context.Context, req *models.ServiceRequest) error {
	now := r.s.Now()
	req.CreatedAt, req.UpdatedAt = now, now
	req.RowVersion = 1
	return insert(r.s, r.s.requests, req.ID, cloneRequest(*req))
}

func (r *requestRepo) GetByID(_ context.Context, id uuid.UUID) (*models.ServiceRequest, error) {
	req, ok := get(r.s, r.s.requests, id)
	return ptr(cloneRequest(req), ok), nil
}

func (r *requestRepo) List(_ context.Context) ([]*models.ServiceRequest, error) {
	return ptrs(list(r.s, r.s.requests, nil)), nil
}

func (r *requestRepo) ListByTaskID(_ context.Context, taskID uuid.UUID) ([]*models.ServiceRequest, error) {
	return ptrs(list(r.s, r.s.requests, func(req models.ServiceRequest) bool { return req.TaskID == taskID })), nil
}

func (r *requestRepo) ListByProviderID(_ context.Context, providerID uuid.UUID) ([]*models.ServiceRequest, error) {
	return ptrs(list(r.s, r.s.requests, func(req models.ServiceRequest) bool { return req.ProviderID == providerID })), nil
}

// UpdateIfVersion keeps the stored comments and documents, mirroring the
// SQL implementation which only appends to them.
func (r *requestRepo) UpdateIfVersion(_ context.Context, req *models.ServiceRequest, expected int64) (pgconn.CommandTag, error) {
	stored, ok := get(r.s, r.s.requests, req.ID)
	if !ok {
		return pgconn.CommandTag("UPDATE 0"), nil
	}
	next := cloneRequest(*req)
	next.Comments = slices.Clone(stored.Comments)
	next.Documents = slices.Clone(stored.Documents)
	next.RowVersion = expected + 1
	next.UpdatedAt = r.s.Now()
	return replace(r.s, r.s.requests, req.ID, func(cur models.ServiceRequest) bool {
		return cur.RowVersion == expected
	}, next)
}

func (r *requestRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.ServiceRequest) error) error {
	return repositories.WithRetry(ctx, repositories.DefaultMaxRetries, id, r.GetByID, r.UpdateIfVersion, mutate)
}

func (r *requestRepo) appendTo(id uuid.UUID, apply func(*models.ServiceRequest)) error {
	stored, ok := get(r.s, r.s.requests, id)
	if !ok {
		return repositories.ErrNotFound
	}
	next := cloneRequest(stored)
	apply(&next)
	next.UpdatedAt = r.s.Now()
	_, err := replace(r.s, r.s.requests, id, nil, next)
	return err
}

func (r *requestRepo) AppendComment(_ context.Context, id uuid.UUID, c models.RequestComment) error {
	return r.appendTo(id, func(req *models.ServiceRequest) { req.Comments = append(req.Comments, c) })
}

func (r *requestRepo) AppendDocument(_ context.Context, id uuid.UUID, d models.RequestDocument) error {
	return r.appendTo(id, func(req *models.ServiceRequest) { req.Documents = append(req.Documents, d) })
}

func (r *requestRepo) Delete(_ context.Context, id uuid.UUID) error {
	return remove(r.s, r.s.requests, id)
}

/* ---------- expenses ---------- */

type expenseRepo struct{ s *Store }

func (r *expenseRepo) Create(_ context.Context, e *models.Expense) error {
	e.CreatedAt = r.s.Now()
	return insert(r.s, r.s.expenses, e.ID, *e)
}

func (r *expenseRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Expense, error) {
	v, ok := get(r.s, r.s.expenses, id)
	return ptr(v, ok), nil
}

func (r *expenseRepo) List(_ context.Context) ([]*models.Expense, error) {
	return ptrs(list(r.s, r.s.expenses, nil)), nil
}

func (r *expenseRepo) ListByBuildingID(_ context.Context, buildingID uuid.UUID) ([]*models.Expense, error) {
	return ptrs(list(r.s, r.s.expenses, func(e models.Expense) bool { return e.BuildingID == buildingID })), nil
}

func (r *expenseRepo) Delete(_ context.Context, id uuid.UUID) error {
	return remove(r.s, r.s.expenses, id)
}

/* ---------- users ---------- */

type userRepo struct{ s *Store }

func (r *userRepo) Create(_ context.Context, u *models.User) error {
	u.CreatedAt = r.s.Now()
	u.Email = strings.ToLower(u.Email)
	return insert(r.s, r.s.users, u.ID, *u)
}

func (r *userRepo) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	v, ok := get(r.s, r.s.users, id)
	return ptr(v, ok), nil
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	found := list(r.s, r.s.users, func(u models.User) bool { return strings.EqualFold(u.Email, email) })
	if len(found) == 0 {
		return nil, nil
	}
	return &found[0], nil
}

func (r *userRepo) GetByUsername(_ context.Context, username string) (*models.User, error) {
	found := list(r.s, r.s.users, func(u models.User) bool { return u.Username == username })
	if len(found) == 0 {
		return nil, nil
	}
	return &found[0], nil
}

func (r *userRepo) List(_ context.Context) ([]*models.User, error) {
	return ptrs(list(r.s, r.s.users, nil)), nil
}

func (r *userRepo) Delete(_ context.Context, id uuid.UUID) error {
	return remove(r.s, r.s.users, id)
}

/* ---------- notifications ---------- */

type notificationRepo struct{ s *Store }

func (r *notificationRepo) Create(_ context.Context, n *models.Notification) error {
	n.CreatedAt = r.s.Now()
	return insert(r.s, r.s.notifications, n.ID, *n)
}

func (r *notificationRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Notification, error) {
	v, ok := get(r.s, r.s.notifications, id)
	return ptr(v, ok), nil
}

// ListByUserID returns newest first, like the SQL implementation.
func (r *notificationRepo) ListByUserID(_ context.Context, userID uuid.UUID) ([]*models.Notification, error) {
	found := list(r.s, r.s.notifications, func(n models.Notification) bool { return n.UserID == userID })
	slices.Reverse(found)
	return ptrs(found), nil
}

func (r *notificationRepo) MarkRead(_ context.Context, id uuid.UUID) error {
	n, ok := get(r.s, r.s.notifications, id)
	if !ok {
		return nil
	}
	n.IsRead = true
	_, err := replace(r.s, r.s.notifications, id, nil, n)
	return err
}

func (r *notificationRepo) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	for _, item := range list(r.s, r.s.notifications, func(n models.Notification) bool {
		return n.UserID == userID && !n.IsRead
	}) {
		if err := r.MarkRead(ctx, item.ID); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func (r *notificationRepo) Delete(_ context.Context, id uuid.UUID) error {
	return remove(r.s, r.s.notifications, id)
}

/* ---------- contingency documents ---------- */

type contingencyRepo struct{ s *Store }

func (r *contingencyRepo) Create(_ context.Context, d *models.ContingencyDocument) error {
	d.UploadedAt = r.s.Now()
	return insert(r.s, r.s.contingency, d.ID, *d)
}

func (r *contingencyRepo) GetByID(_ context.Context, id uuid.UUID) (*models.ContingencyDocument, error) {
	v, ok := get(r.s, r.s.contingency, id)
	return ptr(v, ok), nil
}

func (r *contingencyRepo) List(_ context.Context) ([]*models.ContingencyDocument, error) {
	return ptrs(list(r.s, r.s.contingency, nil)), nil
}

func (r *contingencyRepo) Delete(_ context.Context, id uuid.UUID) error {
	return remove(r.s, r.s.contingency, id)
}

/* ---------- audit logs ---------- */

type auditRepo struct{ s *Store }

func (r *auditRepo) Create(_ context.Context, l *models.AuditLog) error {
	l.CreatedAt = r.s.Now()
	return insert(r.s, r.s.audit, l.ID, *l)
}

func (r *auditRepo) ListByTarget(_ context.Context, targetID uuid.UUID) ([]*models.AuditLog, error) {
	return ptrs(list(r.s, r.s.audit, func(l models.AuditLog) bool { return l.TargetID == targetID })), nil
}
