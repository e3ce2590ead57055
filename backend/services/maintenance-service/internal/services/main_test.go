package services

import (
	"testing"

	"github.com/lazar0830/sos-condo-sub000/backend/services/maintenance-service/internal/events"
	"github.com/lazar0830/sos-condo-sub000/backend/services/maintenance-service/internal/storage"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-models"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-testhelpers"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-utils"
)

// testEnv wires every service over one in-memory store.
type testEnv struct {
	*testhelpers.TestHelper
	Repos    Repositories
	Bus      *events.LocalBus
	Scope    *ScopeService
	Requests *RequestService
	Cascade  *CascadeService
	Tasks    *TaskService
	Property *PropertyService
	Provider *ProviderService
	Accounts *AccountService
	Notes    *NotificationService
	Docs     *DocumentService
	Audit    *AuditService
	Sweeper  *ReconcileService
	Feed     *FeedService

	SuperAdmin models.Actor
	Admin      models.Actor
	Manager    models.Actor
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	h := testhelpers.NewTestHelper(t)
	repos := Repositories{
		Buildings:     h.BuildingRepo,
		Units:         h.UnitRepo,
		Components:    h.ComponentRepo,
		Tasks:         h.TaskRepo,
		Requests:      h.RequestRepo,
		Providers:     h.ProviderRepo,
		Expenses:      h.ExpenseRepo,
		Users:         h.UserRepo,
		Notifications: h.NotificationRepo,
		Documents:     h.ContingencyRepo,
		AuditLogs:     h.AuditRepo,
	}
	blobs, err := storage.NewDiskBlobStore(t.TempDir(), "http://localhost:8080")
	if err != nil {
		t.Fatal(err)
	}

	bus := events.NewLocalBus()
	scope := NewScopeService(repos)
	audit := NewAuditService(repos.AuditLogs)
	notes := NewNotificationService(repos.Notifications, bus)
	ai := NewOpenAIService("")

	env := &testEnv{
		TestHelper: h,
		Repos:      repos,
		Bus:        bus,
		Scope:      scope,
		Audit:      audit,
		Notes:      notes,
		Requests:   NewRequestService(repos, scope, notes, NewDisabledOutreachService(), ai, blobs, audit, bus),
		Cascade:    NewCascadeService(repos, scope, audit, bus),
		Tasks:      NewTaskService(repos, scope, ai, audit, bus),
		Property:   NewPropertyService(repos, scope, blobs, audit, bus),
		Provider:   NewProviderService(repos, scope, utils.SyntaxOnlyContactValidator(), audit, bus),
		Accounts:   NewAccountService(repos, scope, h.PrivateKey, audit, bus),
		Docs:       NewDocumentService(repos, scope, blobs, audit, bus),
		Sweeper:    NewReconcileService(repos, scope, bus),
		Feed:       NewFeedService(scope, bus),
	}

	env.SuperAdmin = h.CreateTestUser(models.RoleSuperAdmin, "root", nil)
	env.Admin = h.CreateTestUser(models.RoleAdmin, "alice-admin", &env.SuperAdmin)
	env.Manager = h.CreateTestUser(models.RolePropertyManager, "pat-manager", &env.Admin)
	return env
}

// providerLogin creates a provider profile with a linked login.
func (e *testEnv) providerLogin(createdBy models.Actor, name, specialty string) (*models.ServiceProvider, models.Actor) {
	p := e.CreateTestProvider(createdBy, name, specialty)
	actor := e.CreateTestUser(models.RoleServiceProvider, name+"-login", &createdBy)
	err := e.ProviderRepo.UpdateWithRetry(e.Ctx, p.ID, func(sp *models.ServiceProvider) error {
		sp.UserID = &actor.ID
		return nil
	})
	if err != nil {
		e.T.Fatal(err)
	}
	p.UserID = &actor.ID
	return p, actor
}
