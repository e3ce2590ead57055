package integration

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/lazar0830/sos-condo-sub000/backend/services/maintenance-service/internal/controllers"
	"github.com/lazar0830/sos-condo-sub000/backend/services/maintenance-service/internal/events"
	"github.com/lazar0830/sos-condo-sub000/backend/services/maintenance-service/internal/routes"
	"github.com/lazar0830/sos-condo-sub000/backend/services/maintenance-service/internal/services"
	"github.com/lazar0830/sos-condo-sub000/backend/services/maintenance-service/internal/storage"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-models"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-testhelpers"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-utils"
	"github.com/stretchr/testify/require"
)

const testBaseURL = "http://localhost:8080"

// fakePinger stands in for the database pool behind /health.
type fakePinger struct{ err error }

func (p *fakePinger) Ping(context.Context) error { return p.err }

// server is the full router over an in-memory store.
type server struct {
	*testhelpers.TestHelper
	Router   *mux.Router
	Pinger   *fakePinger
	Accounts *services.AccountService
	Blobs    *storage.DiskBlobStore

	SuperAdmin models.Actor
	Admin      models.Actor
	Manager    models.Actor
}

func newServer(t *testing.T) *server {
	t.Helper()
	h := testhelpers.NewTestHelper(t)
	repos := services.Repositories{
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
	blobs, err := storage.NewDiskBlobStore(t.TempDir(), testBaseURL)
	require.NoError(t, err)

	bus := events.NewLocalBus()
	scope := services.NewScopeService(repos)
	audit := services.NewAuditService(repos.AuditLogs)
	notes := services.NewNotificationService(repos.Notifications, bus)
	ai := services.NewOpenAIService("")
	accounts := services.NewAccountService(repos, scope, h.PrivateKey, audit, bus)
	pinger := &fakePinger{}

	router := routes.NewRouter(&h.PrivateKey.PublicKey, blobs.Root, routes.Controllers{
		Health:        controllers.NewHealthController(pinger),
		Accounts:      controllers.NewAccountController(accounts, services.NewLoginRateLimiter(h.Store.RateLimits())),
		Property:      controllers.NewPropertyController(services.NewPropertyService(repos, scope, blobs, audit, bus)),
		Tasks:         controllers.NewTaskController(services.NewTaskService(repos, scope, ai, audit, bus)),
		Requests:      controllers.NewRequestController(services.NewRequestService(repos, scope, notes, services.NewDisabledOutreachService(), ai, blobs, audit, bus)),
		Providers:     controllers.NewProviderController(services.NewProviderService(repos, scope, utils.SyntaxOnlyContactValidator(), audit, bus)),
		Cascade:       controllers.NewCascadeController(services.NewCascadeService(repos, scope, audit, bus)),
		Notifications: controllers.NewNotificationController(notes),
		Documents:     controllers.NewDocumentController(services.NewDocumentService(repos, scope, blobs, audit, bus)),
		Admin:         controllers.NewAdminController(audit, services.NewReconcileService(repos, scope, bus)),
		Feed:          controllers.NewFeedController(services.NewFeedService(scope, bus)),
	})

	s := &server{
		TestHelper: h,
		Router:     router,
		Pinger:     pinger,
		Accounts:   accounts,
		Blobs:      blobs,
	}
	s.SuperAdmin = h.CreateTestUser(models.RoleSuperAdmin, "root", nil)
	s.Admin = h.CreateTestUser(models.RoleAdmin, "alice-admin", &s.SuperAdmin)
	s.Manager = h.CreateTestUser(models.RolePropertyManager, "pat-manager", &s.Admin)
	return s
}

// do sends a JSON request as actor (no token when actor is nil).
func (s *server) do(method, url string, actor *models.Actor, body any) *httptest.ResponseRecorder {
	var payload []byte
	if body != nil {
		payload = s.MustJSON(body)
	}
	token := ""
	if actor != nil {
		token = s.CreateJWT(*actor)
	}
	return s.Serve(s.Router, s.BuildAuthRequest(method, url, token, payload))
}

// providerLogin creates a provider profile with a linked login.
func (s *server) providerLogin(createdBy models.Actor, name, specialty string) (*models.ServiceProvider, models.Actor) {
	p := s.CreateTestProvider(createdBy, name, specialty)
	actor := s.CreateTestUser(models.RoleServiceProvider, name+"-login", &createdBy)
	require.NoError(s.T, s.ProviderRepo.UpdateWithRetry(s.Ctx, p.ID, func(sp *models.ServiceProvider) error {
		sp.UserID = &actor.ID
		return nil
	}))
	return p, actor
}

func actorPtr(a models.Actor) *models.Actor { return &a }

// errorBody mirrors utils.ErrorResponse with typed details.
type errorBody[D any] struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details D      `json:"details"`
}

// withID fills the {id} placeholder of a route.
func withID(route string, id uuid.UUID) string {
	return strings.Replace(route, "{id}", id.String(), 1)
}
