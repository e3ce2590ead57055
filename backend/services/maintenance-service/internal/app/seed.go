package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lazar0830/sos-condo-sub000/backend/services/maintenance-service/internal/dtos"
	"github.com/lazar0830/sos-condo-sub000/backend/services/maintenance-service/internal/services"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-models"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-seeding"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-utils"
)

// DemoPassword is the login password of every fixture account.
const DemoPassword = "DemoCondo2025"

// Seeder runs the demo fixture through the services so it obeys the same
// rules as live traffic.
type Seeder struct {
	Repos     services.Repositories
	Accounts  *services.AccountService
	Property  *services.PropertyService
	Providers *services.ProviderService
	Tasks     *services.TaskService
}

type seedState struct {
	actors     map[string]models.Actor
	buildings  map[string]uuid.UUID
	components map[string]uuid.UUID
	providers  map[string]uuid.UUID
}

func (st *seedState) actor(key string) (models.Actor, error) {
	a, ok := st.actors[key]
	if !ok {
		return models.Actor{}, fmt.Errorf("fixture references unknown account %q", key)
	}
	return a, nil
}

func parseDay(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, fmt.Errorf("bad fixture date %q: %w", s, err)
	}
	return &t, nil
}

/*
SeedAllTestData loads the embedded demo fixture. It is skipped when the
first fixture account already exists.
*/
func (s *Seeder) SeedAllTestData(ctx context.Context) error {
	f, err := seeding.LoadDemoFixture()
	if err != nil {
		return err
	}
	if len(f.Accounts) > 0 {
		existing, err := s.Repos.Users.GetByEmail(ctx, utils.NormalizeEmail(f.Accounts[0].Email))
		if err != nil {
			return fmt.Errorf("check existing seed account: %w", err)
		}
		if existing != nil {
			utils.Logger.Info("seed data already present; skipping seeding")
			return nil
		}
	}

	root, err := s.Repos.Users.GetByID(ctx, seeding.DefaultSuperAdminID)
	if err != nil {
		return err
	}
	if root == nil {
		return fmt.Errorf("default super admin missing; seed it first")
	}
	st := &seedState{
		actors:     map[string]models.Actor{"superadmin": root.AsActor()},
		buildings:  map[string]uuid.UUID{},
		components: map[string]uuid.UUID{},
		providers:  map[string]uuid.UUID{},
	}

	// management accounts first; provider logins need their profile
	logins := map[string]seeding.AccountFixture{}
	for _, a := range f.Accounts {
		if models.RoleType(a.Role) == models.RoleServiceProvider {
			logins[a.Key] = a
			continue
		}
		if err := s.seedAccount(ctx, st, a, nil); err != nil {
			return err
		}
	}
	if err := s.seedBuildings(ctx, st, f.Buildings); err != nil {
		return err
	}
	for _, p := range f.Providers {
		creator, err := st.actor(p.CreatedBy)
		if err != nil {
			return err
		}
		in := dtos.CreateProviderRequest{Name: p.Name, Email: p.Email, Specialty: p.Specialty}
		if p.Phone != "" {
			in.Phone = utils.StrPtr(p.Phone)
		}
		created, err := s.Providers.CreateProvider(ctx, creator, in)
		if err != nil {
			return fmt.Errorf("seed provider %s: %w", p.Key, err)
		}
		st.providers[p.Key] = created.ID
		if login, ok := logins[p.Login]; ok {
			if err := s.seedAccount(ctx, st, login, &created.ID); err != nil {
				return err
			}
		}
	}
	if err := s.seedTasks(ctx, st, f.Tasks); err != nil {
		return err
	}

	utils.Logger.Infof("seeding completed: %d accounts, %d buildings, %d providers, %d tasks",
		len(st.actors)-1, len(st.buildings), len(st.providers), len(f.Tasks))
	return nil
}

func (s *Seeder) seedAccount(ctx context.Context, st *seedState, a seeding.AccountFixture, providerID *uuid.UUID) error {
	creator, err := st.actor(a.CreatedBy)
	if err != nil {
		return err
	}
	resp, err := s.Accounts.ProvisionUser(ctx, creator, dtos.ProvisionUserRequest{
		Email:      a.Email,
		Username:   a.Username,
		Role:       models.RoleType(a.Role),
		Password:   utils.StrPtr(DemoPassword),
		ProviderID: providerID,
	})
	if err != nil {
		return fmt.Errorf("seed account %s: %w", a.Key, err)
	}
	id, err := uuid.Parse(resp.User.ID)
	if err != nil {
		return err
	}
	st.actors[a.Key] = models.Actor{ID: id, Role: resp.User.Role, DisplayName: resp.User.Username, Email: resp.User.Email}
	return nil
}

func (s *Seeder) seedBuildings(ctx context.Context, st *seedState, list []seeding.BuildingFixture) error {
	for _, bf := range list {
		owner, err := st.actor(bf.CreatedBy)
		if err != nil {
			return err
		}
		b, err := s.Property.CreateBuilding(ctx, owner, dtos.CreateBuildingRequest{Name: bf.Name, Address: bf.Address})
		if err != nil {
			return fmt.Errorf("seed building %s: %w", bf.Key, err)
		}
		st.buildings[bf.Key] = b.ID

		units := map[string]uuid.UUID{}
		for _, uf := range bf.Units {
			in := dtos.CreateUnitRequest{UnitNumber: uf.Number}
			if uf.Occupant != nil {
				in.Occupant = &dtos.OccupantRequest{
					Name:      uf.Occupant.Name,
					Type:      models.OccupantType(uf.Occupant.Type),
					StartDate: utils.DateOnly(time.Now()),
				}
			}
			u, err := s.Property.CreateUnit(ctx, owner, b.ID, in)
			if err != nil {
				return fmt.Errorf("seed unit %s/%s: %w", bf.Key, uf.Number, err)
			}
			units[uf.Number] = u.ID
		}

		for _, cf := range bf.Components {
			in := dtos.CreateComponentRequest{
				Name: cf.Name,
				Classification: models.Classification{
					Type:        cf.Type,
					Category:    cf.Category,
					SubCategory: cf.SubCategory,
				},
			}
			if cf.Brand != "" {
				in.Brand = utils.StrPtr(cf.Brand)
			}
			if cf.Unit != "" {
				id, ok := units[cf.Unit]
				if !ok {
					return fmt.Errorf("component %s references unknown unit %q", cf.Key, cf.Unit)
				}
				in.UnitID = &id
			}
			c, err := s.Property.CreateComponent(ctx, owner, b.ID, in)
			if err != nil {
				return fmt.Errorf("seed component %s: %w", cf.Key, err)
			}
			st.components[cf.Key] = c.ID
		}
	}
	return nil
}

func (s *Seeder) seedTasks(ctx context.Context, st *seedState, list []seeding.TaskFixture) error {
	for _, tf := range list {
		buildingID, ok := st.buildings[tf.Building]
		if !ok {
			return fmt.Errorf("task %q references unknown building %q", tf.Name, tf.Building)
		}
		b, err := s.Repos.Buildings.GetByID(ctx, buildingID)
		if err != nil || b == nil {
			return fmt.Errorf("reload building %s: %w", tf.Building, err)
		}
		owner := models.Actor{}
		for _, a := range st.actors {
			if a.ID == b.CreatedBy {
				owner = a
			}
		}

		in := dtos.CreateTaskRequest{
			BuildingID: buildingID,
			Name:       tf.Name,
			Specialty:  tf.Specialty,
			Recurrence: models.RecurrenceType(tf.Recurrence),
		}
		if tf.Component != "" {
			id, ok := st.components[tf.Component]
			if !ok {
				return fmt.Errorf("task %q references unknown component %q", tf.Name, tf.Component)
			}
			in.ComponentID = &id
		}
		if in.TaskDate, err = parseDay(tf.TaskDate); err != nil {
			return err
		}
		if in.StartDate, err = parseDay(tf.StartDate); err != nil {
			return err
		}
		if in.EndDate, err = parseDay(tf.EndDate); err != nil {
			return err
		}
		if _, err := s.Tasks.CreateTask(ctx, owner, in); err != nil {
			return fmt.Errorf("seed task %q: %w", tf.Name, err)
		}
	}
	return nil
}
