package services

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/lazar0830/sos-condo-sub000/backend/services/maintenance-service/internal/dtos"
	"github.com/lazar0830/sos-condo-sub000/backend/services/maintenance-service/internal/events"
	"github.com/lazar0830/sos-condo-sub000/backend/services/maintenance-service/internal/storage"
	internal_utils "github.com/lazar0830/sos-condo-sub000/backend/services/maintenance-service/internal/utils"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-models"
)

// PropertyService manages buildings, units, components and expenses.
type PropertyService struct {
	repos Repositories
	scope *ScopeService
	blobs storage.BlobStore
	audit *AuditService
	bus   events.ChangePublisher
}

func NewPropertyService(repos Repositories, scope *ScopeService, blobs storage.BlobStore, audit *AuditService, bus events.ChangePublisher) *PropertyService {
	return &PropertyService{repos: repos, scope: scope, blobs: blobs, audit: audit, bus: bus}
}

/* ---------- buildings ---------- */

func (s *PropertyService) CreateBuilding(ctx context.Context, actor models.Actor, in dtos.CreateBuildingRequest) (*models.Building, error) {
	if !actor.Role.IsManagement() {
		return nil, internal_utils.NewAuthorizationError("create buildings")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, internal_utils.NewValidationError("name", "building name is required")
	}
	addr := strings.TrimSpace(in.Address)
	if addr == "" {
		return nil, internal_utils.NewValidationError("address", "building address is required")
	}
	b := &models.Building{
		ID:        uuid.New(),
		Name:      name,
		Address:   addr,
		CreatedBy: actor.ID,
	}
	if err := s.repos.Buildings.Create(ctx, b); err != nil {
		return nil, fmt.Errorf("create building: %w", err)
	}
	events.Emit(ctx, s.bus, events.EntityBuilding, b.ID, events.OpCreate)
	s.audit.Record(ctx, actor, models.AuditCreate, models.TargetBuilding, b.ID, map[string]string{"name": b.Name})
	return b, nil
}

func (s *PropertyService) GetBuilding(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.Building, error) {
	return s.scope.RequireBuilding(ctx, actor, id)
}

func (s *PropertyService) ListBuildings(ctx context.Context, actor models.Actor) ([]*models.Building, error) {
	if actor.Role == models.RoleServiceProvider {
		snap, err := s.scope.SnapshotFor(ctx, actor)
		return snap.Buildings, err
	}
	_, list, err := s.scope.VisibleBuildings(ctx, actor)
	return list, err
}

func (s *PropertyService) UpdateBuilding(ctx context.Context, actor models.Actor, id uuid.UUID, in dtos.UpdateBuildingRequest) (*models.Building, error) {
	b, err := s.scope.RequireBuilding(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		if b.Name = strings.TrimSpace(*in.Name); b.Name == "" {
			return nil, internal_utils.NewValidationError("name", "building name is required")
		}
	}
	if in.Address != nil {
		if b.Address = strings.TrimSpace(*in.Address); b.Address == "" {
			return nil, internal_utils.NewValidationError("address", "building address is required")
		}
	}
	if err := s.repos.Buildings.Update(ctx, b); err != nil {
		return nil, err
	}
	events.Emit(ctx, s.bus, events.EntityBuilding, id, events.OpUpdate)
	return b, nil
}

/* ---------- units ---------- */

func occupantFrom(in *dtos.OccupantRequest) (*models.Occupant, error) {
	if in == nil {
		return nil, nil
	}
	if in.Type != models.OccupantOwner && in.Type != models.OccupantRenter {
		return nil, internal_utils.NewValidationError("occupant.type", "must be OWNER or RENTER")
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, internal_utils.NewValidationError("occupant.name", "occupant name is required")
	}
	if in.EndDate != nil && in.EndDate.Before(in.StartDate) {
		return nil, internal_utils.NewValidationError("occupant.end_date", "end date is before start date")
	}
	return &models.Occupant{
		Name:      strings.TrimSpace(in.Name),
		Type:      in.Type,
		StartDate: clonePtr(&in.StartDate),
		EndDate:   clonePtr(in.EndDate),
	}, nil
}

// checkUnitNumber rejects a unit number already used in the same building.
func (s *PropertyService) checkUnitNumber(ctx context.Context, buildingID uuid.UUID, number string, self uuid.UUID) error {
	units, err := s.repos.Units.ListByBuildingID(ctx, buildingID)
	if err != nil {
		return err
	}
	for _, u := range units {
		if u.ID != self && strings.EqualFold(u.UnitNumber, number) {
			return &internal_utils.ConflictError{
				Message:  fmt.Sprintf("Unit %s already exists in this building", number),
				Blocking: []internal_utils.Reference{{Type: "unit", ID: u.ID, Name: u.UnitNumber}},
			}
		}
	}
	return nil
}

func (s *PropertyService) CreateUnit(ctx context.Context, actor models.Actor, buildingID uuid.UUID, in dtos.CreateUnitRequest) (*models.Unit, error) {
	if _, err := s.scope.RequireBuilding(ctx, actor, buildingID); err != nil {
		return nil, err
	}
	number := strings.TrimSpace(in.UnitNumber)
	if number == "" {
		return nil, internal_utils.NewValidationError("unit_number", "unit number is required")
	}
	occ, err := occupantFrom(in.Occupant)
	if err != nil {
		return nil, err
	}
	if err := s.checkUnitNumber(ctx, buildingID, number, uuid.Nil); err != nil {
		return nil, err
	}
	u := &models.Unit{
		ID:         uuid.New(),
		BuildingID: buildingID,
		UnitNumber: number,
		Occupant:   occ,
		ImageURLs:  []string{},
	}
	if err := s.repos.Units.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("create unit: %w", err)
	}
	events.Emit(ctx, s.bus, events.EntityUnit, u.ID, events.OpCreate)
	return u, nil
}

func (s *PropertyService) requireUnit(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.Unit, error) {
	u, err := s.repos.Units.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, internal_utils.NewNotFoundError("unit", id)
	}
	if _, err := s.scope.RequireBuilding(ctx, actor, u.BuildingID); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *PropertyService) GetUnit(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.Unit, error) {
	return s.requireUnit(ctx, actor, id)
}

func (s *PropertyService) ListUnits(ctx context.Context, actor models.Actor, buildingID uuid.UUID) ([]*models.Unit, error) {
	if _, err := s.scope.RequireBuilding(ctx, actor, buildingID); err != nil {
		return nil, err
	}
	return s.repos.Units.ListByBuildingID(ctx, buildingID)
}

func (s *PropertyService) UpdateUnit(ctx context.Context, actor models.Actor, id uuid.UUID, in dtos.UpdateUnitRequest) (*models.Unit, error) {
	u, err := s.requireUnit(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if in.UnitNumber != nil {
		number := strings.TrimSpace(*in.UnitNumber)
		if number == "" {
			return nil, internal_utils.NewValidationError("unit_number", "unit number is required")
		}
		if err := s.checkUnitNumber(ctx, u.BuildingID, number, u.ID); err != nil {
			return nil, err
		}
		u.UnitNumber = number
	}
	switch {
	case in.ClearOccupant:
		u.Occupant = nil
	case in.Occupant != nil:
		if u.Occupant, err = occupantFrom(in.Occupant); err != nil {
			return nil, err
		}
	}
	if err := s.repos.Units.Update(ctx, u); err != nil {
		return nil, err
	}
	events.Emit(ctx, s.bus, events.EntityUnit, id, events.OpUpdate)
	return u, nil
}

func (s *PropertyService) AddUnitImage(ctx context.Context, actor models.Actor, id uuid.UUID, filename string, r io.Reader) (string, error) {
	u, err := s.requireUnit(ctx, actor, id)
	if err != nil {
		return "", err
	}
	url, err := s.blobs.Put(ctx, u.ID, filename, r)
	if err != nil {
		return "", fmt.Errorf("store unit image: %w", err)
	}
	u.ImageURLs = append(u.ImageURLs, url)
	if err := s.repos.Units.Update(ctx, u); err != nil {
		return "", err
	}
	events.Emit(ctx, s.bus, events.EntityUnit, id, events.OpUpdate)
	return url, nil
}

/* ---------- components ---------- */

// checkComponentUnit enforces that a component's unit is in its building.
func (s *PropertyService) checkComponentUnit(ctx context.Context, buildingID uuid.UUID, unitID *uuid.UUID) error {
	if unitID == nil {
		return nil
	}
	u, err := s.repos.Units.GetByID(ctx, *unitID)
	if err != nil {
		return err
	}
	if u == nil || u.BuildingID != buildingID {
		return internal_utils.NewValidationError("unit_id", "unit does not belong to this building")
	}
	return nil
}

func validateClassification(c models.Classification) error {
	if strings.TrimSpace(c.Type) == "" {
		return internal_utils.NewValidationError("classification.type", "component type is required")
	}
	return nil
}

func (s *PropertyService) CreateComponent(ctx context.Context, actor models.Actor, buildingID uuid.UUID, in dtos.CreateComponentRequest) (*models.Component, error) {
	if _, err := s.scope.RequireBuilding(ctx, actor, buildingID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, internal_utils.NewValidationError("name", "component name is required")
	}
	if err := validateClassification(in.Classification); err != nil {
		return nil, err
	}
	if err := s.checkComponentUnit(ctx, buildingID, in.UnitID); err != nil {
		return nil, err
	}
	if in.InstallDate != nil && in.WarrantyEndDate != nil && in.WarrantyEndDate.Before(*in.InstallDate) {
		return nil, internal_utils.NewValidationError("warranty_end_date", "warranty ends before install date")
	}
	c := &models.Component{
		ID:              uuid.New(),
		BuildingID:      buildingID,
		UnitID:          in.UnitID,
		Classification:  in.Classification,
		Name:            strings.TrimSpace(in.Name),
		Brand:           in.Brand,
		Model:           in.Model,
		SerialNumber:    in.SerialNumber,
		InstallDate:     in.InstallDate,
		WarrantyEndDate: in.WarrantyEndDate,
		ImageURLs:       []string{},
	}
	if err := s.repos.Components.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create component: %w", err)
	}
	events.Emit(ctx, s.bus, events.EntityComponent, c.ID, events.OpCreate)
	return c, nil
}

func (s *PropertyService) requireComponent(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.Component, error) {
	c, err := s.repos.Components.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, internal_utils.NewNotFoundError("component", id)
	}
	if _, err := s.scope.RequireBuilding(ctx, actor, c.BuildingID); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *PropertyService) GetComponent(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.Component, error) {
	return s.requireComponent(ctx, actor, id)
}

func (s *PropertyService) ListComponents(ctx context.Context, actor models.Actor, buildingID uuid.UUID) ([]*models.Component, error) {
	if _, err := s.scope.RequireBuilding(ctx, actor, buildingID); err != nil {
		return nil, err
	}
	return s.repos.Components.ListByBuildingID(ctx, buildingID)
}

func (s *PropertyService) UpdateComponent(ctx context.Context, actor models.Actor, id uuid.UUID, in dtos.UpdateComponentRequest) (*models.Component, error) {
	c, err := s.requireComponent(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	switch {
	case in.ClearUnit:
		c.UnitID = nil
	case in.UnitID != nil:
		if err := s.checkComponentUnit(ctx, c.BuildingID, in.UnitID); err != nil {
			return nil, err
		}
		c.UnitID = in.UnitID
	}
	if in.Classification != nil {
		if err := validateClassification(*in.Classification); err != nil {
			return nil, err
		}
		c.Classification = *in.Classification
	}
	if in.Name != nil {
		if c.Name = strings.TrimSpace(*in.Name); c.Name == "" {
			return nil, internal_utils.NewValidationError("name", "component name is required")
		}
	}
	if in.Brand != nil {
		c.Brand = in.Brand
	}
	if in.Model != nil {
		c.Model = in.Model
	}
	if in.SerialNumber != nil {
		c.SerialNumber = in.SerialNumber
	}
	if in.InstallDate != nil {
		c.InstallDate = in.InstallDate
	}
	if in.WarrantyEndDate != nil {
		c.WarrantyEndDate = in.WarrantyEndDate
	}
	if err := s.repos.Components.Update(ctx, c); err != nil {
		return nil, err
	}
	events.Emit(ctx, s.bus, events.EntityComponent, id, events.OpUpdate)
	return c, nil
}

func (s *PropertyService) AddComponentImage(ctx context.Context, actor models.Actor, id uuid.UUID, filename string, r io.Reader) (string, error) {
	c, err := s.requireComponent(ctx, actor, id)
	if err != nil {
		return "", err
	}
	url, err := s.blobs.Put(ctx, c.ID, filename, r)
	if err != nil {
		return "", fmt.Errorf("store component image: %w", err)
	}
	c.ImageURLs = append(c.ImageURLs, url)
	if err := s.repos.Components.Update(ctx, c); err != nil {
		return "", err
	}
	events.Emit(ctx, s.bus, events.EntityComponent, id, events.OpUpdate)
	return url, nil
}

/* ---------- expenses ---------- */

func (s *PropertyService) CreateExpense(ctx context.Context, actor models.Actor, buildingID uuid.UUID, in dtos.CreateExpenseRequest) (*models.Expense, error) {
	if _, err := s.scope.RequireBuilding(ctx, actor, buildingID); err != nil {
		return nil, err
	}
	c, err := s.repos.Components.GetByID(ctx, in.ComponentID)
	if err != nil {
		return nil, err
	}
	if c == nil || c.BuildingID != buildingID {
		return nil, internal_utils.NewValidationError("component_id", "component does not belong to this building")
	}
	if in.Cost < 0 {
		return nil, internal_utils.NewValidationError("cost", "cost cannot be negative")
	}
	if in.Year <= 0 {
		return nil, internal_utils.NewValidationError("year", "year is required")
	}
	e := &models.Expense{
		ID:          uuid.New(),
		BuildingID:  buildingID,
		ComponentID: in.ComponentID,
		Year:        in.Year,
		Cost:        in.Cost,
		Description: in.Description,
	}
	if err := s.repos.Expenses.Create(ctx, e); err != nil {
		return nil, fmt.Errorf("create expense: %w", err)
	}
	events.Emit(ctx, s.bus, events.EntityExpense, e.ID, events.OpCreate)
	return e, nil
}

func (s *PropertyService) ListExpenses(ctx context.Context, actor models.Actor, buildingID uuid.UUID) ([]*models.Expense, error) {
	if _, err := s.scope.RequireBuilding(ctx, actor, buildingID); err != nil {
		return nil, err
	}
	return s.repos.Expenses.ListByBuildingID(ctx, buildingID)
}

func (s *PropertyService) DeleteExpense(ctx context.Context, actor models.Actor, id uuid.UUID) error {
	e, err := s.repos.Expenses.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if e == nil {
		return internal_utils.NewNotFoundError("expense", id)
	}
	if _, err := s.scope.RequireBuilding(ctx, actor, e.BuildingID); err != nil {
		return err
	}
	if err := s.repos.Expenses.Delete(ctx, id); err != nil {
		return err
	}
	events.Emit(ctx, s.bus, events.EntityExpense, id, events.OpDelete)
	s.audit.Record(ctx, actor, models.AuditDelete, models.TargetExpense, id, map[string]any{"year": e.Year, "cost": e.Cost})
	return nil
}

// ExpenseSummary totals visible expenses per building and year, optionally
// for a single year. Rows are ordered by building name then year.
func (s *PropertyService) ExpenseSummary(ctx context.Context, actor models.Actor, year *int) ([]dtos.ExpenseSummary, error) {
	snap, err := s.scope.SnapshotFor(ctx, actor)
	if err != nil {
		return nil, err
	}
	names := make(map[uuid.UUID]string, len(snap.Buildings))
	for _, b := range snap.Buildings {
		names[b.ID] = b.Name
	}
	type key struct {
		building uuid.UUID
		year     int
	}
	totals := map[key]*dtos.ExpenseSummary{}
	for _, e := range snap.Expenses {
		if year != nil && e.Year != *year {
			continue
		}
		k := key{e.BuildingID, e.Year}
		row, ok := totals[k]
		if !ok {
			row = &dtos.ExpenseSummary{BuildingID: e.BuildingID, BuildingName: names[e.BuildingID], Year: e.Year}
			totals[k] = row
		}
		row.Total += e.Cost
		row.Count++
	}
	out := make([]dtos.ExpenseSummary, 0, len(totals))
	for _, row := range totals {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].BuildingName != out[j].BuildingName {
			return out[i].BuildingName < out[j].BuildingName
		}
		return out[i].Year < out[j].Year
	})
	return out, nil
}
