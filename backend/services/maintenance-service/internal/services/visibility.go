package services

import (
	"github.com/google/uuid"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-models"
)

// BuildingSet is the set of building ids an actor may see.
type BuildingSet map[uuid.UUID]struct{}

func (s BuildingSet) Has(id uuid.UUID) bool {
	_, ok := s[id]
	return ok
}

// Snapshot is the shared data graph, or the part of it one actor sees.
type Snapshot struct {
	Buildings     []*models.Building            `json:"buildings"`
	Units         []*models.Unit                `json:"units"`
	Components    []*models.Component           `json:"components"`
	Tasks         []*models.MaintenanceTask     `json:"tasks"`
	Requests      []*models.ServiceRequest      `json:"requests"`
	Providers     []*models.ServiceProvider     `json:"providers"`
	Expenses      []*models.Expense             `json:"expenses"`
	Users         []*models.User                `json:"users"`
	Notifications []*models.Notification        `json:"notifications"`
	Documents     []*models.ContingencyDocument `json:"documents"`
}

// managedBy returns the ids of the PropertyManagers the admin created.
func managedBy(adminID uuid.UUID, users []*models.User) map[uuid.UUID]*models.User {
	out := map[uuid.UUID]*models.User{}
	for _, u := range users {
		if u.Role == models.RolePropertyManager && u.CreatedBy != nil && *u.CreatedBy == adminID {
			out[u.ID] = u
		}
	}
	return out
}

/*
VisibleBuildingIDs is the single source of building scope:
  - SuperAdmin: every building.
  - Admin: buildings it created or that a PropertyManager it created did.
  - PropertyManager: buildings it created.
  - ServiceProvider: none (see ProviderView).
*/
func VisibleBuildingIDs(actor models.Actor, buildings []*models.Building, users []*models.User) BuildingSet {
	set := BuildingSet{}
	switch actor.Role {
	case models.RoleSuperAdmin:
		for _, b := range buildings {
			set[b.ID] = struct{}{}
		}
	case models.RoleAdmin:
		managers := managedBy(actor.ID, users)
		for _, b := range buildings {
			if _, ok := managers[b.CreatedBy]; ok || b.CreatedBy == actor.ID {
				set[b.ID] = struct{}{}
			}
		}
	case models.RolePropertyManager:
		for _, b := range buildings {
			if b.CreatedBy == actor.ID {
				set[b.ID] = struct{}{}
			}
		}
	}
	return set
}

func filter[T any](list []*T, keep func(*T) bool) []*T {
	out := make([]*T, 0, len(list))
	for _, v := range list {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}

/*
Scope returns the part of snap the actor may see. It is pure and cheap
enough to run on every read. Service providers get nothing but their own
notifications here; their view is ProviderView.
*/
func Scope(actor models.Actor, snap Snapshot) Snapshot {
	out := Snapshot{
		Notifications: filter(snap.Notifications, func(n *models.Notification) bool { return n.UserID == actor.ID }),
	}
	if !actor.Role.IsManagement() {
		return out
	}

	visible := VisibleBuildingIDs(actor, snap.Buildings, snap.Users)
	inScope := func(id uuid.UUID) bool { return visible.Has(id) }

	out.Buildings = filter(snap.Buildings, func(b *models.Building) bool { return inScope(b.ID) })
	out.Units = filter(snap.Units, func(u *models.Unit) bool { return inScope(u.BuildingID) })
	out.Components = filter(snap.Components, func(c *models.Component) bool { return inScope(c.BuildingID) })
	out.Tasks = filter(snap.Tasks, func(t *models.MaintenanceTask) bool { return inScope(t.BuildingID) })
	out.Expenses = filter(snap.Expenses, func(e *models.Expense) bool { return inScope(e.BuildingID) })

	taskBuilding := make(map[uuid.UUID]uuid.UUID, len(snap.Tasks))
	for _, t := range snap.Tasks {
		taskBuilding[t.ID] = t.BuildingID
	}
	out.Requests = filter(snap.Requests, func(r *models.ServiceRequest) bool {
		b, ok := taskBuilding[r.TaskID]
		return ok && inScope(b)
	})

	out.Providers = scopeProviders(actor, snap.Providers, snap.Users)
	out.Users = scopeUsers(actor, snap.Users)
	out.Documents = scopeDocuments(actor, snap.Documents, snap.Users)
	return out
}

func scopeProviders(actor models.Actor, providers []*models.ServiceProvider, users []*models.User) []*models.ServiceProvider {
	switch actor.Role {
	case models.RoleSuperAdmin, models.RoleAdmin:
		return filter(providers, func(*models.ServiceProvider) bool { return true })
	case models.RolePropertyManager:
		roles := make(map[uuid.UUID]models.RoleType, len(users))
		for _, u := range users {
			roles[u.ID] = u.Role
		}
		return filter(providers, func(p *models.ServiceProvider) bool {
			if p.CreatedBy == actor.ID {
				return true
			}
			r := roles[p.CreatedBy]
			return r == models.RoleSuperAdmin || r == models.RoleAdmin
		})
	}
	return nil
}

// scopeUsers returns the accounts an actor manages, itself included.
func scopeUsers(actor models.Actor, users []*models.User) []*models.User {
	switch actor.Role {
	case models.RoleSuperAdmin:
		return filter(users, func(*models.User) bool { return true })
	case models.RoleAdmin:
		managers := managedBy(actor.ID, users)
		return filter(users, func(u *models.User) bool {
			if u.ID == actor.ID {
				return true
			}
			if u.CreatedBy == nil {
				return false
			}
			_, byManager := managers[*u.CreatedBy]
			return *u.CreatedBy == actor.ID || byManager
		})
	case models.RolePropertyManager:
		return filter(users, func(u *models.User) bool {
			return u.ID == actor.ID || (u.CreatedBy != nil && *u.CreatedBy == actor.ID)
		})
	}
	return nil
}

// Contingency documents only record the uploader's display name.
func scopeDocuments(actor models.Actor, docs []*models.ContingencyDocument, users []*models.User) []*models.ContingencyDocument {
	switch actor.Role {
	case models.RoleSuperAdmin:
		return filter(docs, func(*models.ContingencyDocument) bool { return true })
	case models.RoleAdmin:
		names := map[string]struct{}{actor.DisplayName: {}}
		for _, m := range managedBy(actor.ID, users) {
			names[m.Username] = struct{}{}
		}
		return filter(docs, func(d *models.ContingencyDocument) bool {
			_, ok := names[d.UploadedBy]
			return ok
		})
	case models.RolePropertyManager:
		return filter(docs, func(d *models.ContingencyDocument) bool { return d.UploadedBy == actor.DisplayName })
	}
	return nil
}

/*
ProviderView is what a ServiceProvider actor sees: the requests addressed
to its linked profile and the tasks and buildings those reach. A nil
profile sees no requests.
*/
func ProviderView(actor models.Actor, profile *models.ServiceProvider, snap Snapshot) Snapshot {
	out := Snapshot{
		Notifications: filter(snap.Notifications, func(n *models.Notification) bool { return n.UserID == actor.ID }),
	}
	if profile == nil {
		return out
	}
	out.Providers = []*models.ServiceProvider{profile}
	out.Requests = filter(snap.Requests, func(r *models.ServiceRequest) bool { return r.ProviderID == profile.ID })

	taskIDs := map[uuid.UUID]struct{}{}
	for _, r := range out.Requests {
		taskIDs[r.TaskID] = struct{}{}
	}
	out.Tasks = filter(snap.Tasks, func(t *models.MaintenanceTask) bool {
		_, ok := taskIDs[t.ID]
		return ok
	})

	buildingIDs := BuildingSet{}
	for _, t := range out.Tasks {
		buildingIDs[t.BuildingID] = struct{}{}
	}
	out.Buildings = filter(snap.Buildings, func(b *models.Building) bool { return buildingIDs.Has(b.ID) })
	return out
}
