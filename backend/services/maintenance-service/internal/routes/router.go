package routes

import (
	"crypto/rsa"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/lazar0830/sos-condo-sub000/backend/services/maintenance-service/internal/controllers"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-middleware"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-models"
)

// Controllers is everything the router mounts.
type Controllers struct {
	Health        *controllers.HealthController
	Accounts      *controllers.AccountController
	Property      *controllers.PropertyController
	Tasks         *controllers.TaskController
	Requests      *controllers.RequestController
	Providers     *controllers.ProviderController
	Cascade       *controllers.CascadeController
	Notifications *controllers.NotificationController
	Documents     *controllers.DocumentController
	Admin         *controllers.AdminController
	Feed          *controllers.FeedController
}

/*
NewRouter mounts the public routes (health, login, uploaded files) and
everything else behind AuthMiddleware. Literal paths are registered ahead
of their {id} siblings so mux matches them first.
*/
func NewRouter(pub *rsa.PublicKey, filesRoot string, c Controllers) *mux.Router {
	router := mux.NewRouter()

	// Public
	if c.Health != nil {
		router.HandleFunc(Health, c.Health.HealthCheckHandler).Methods(http.MethodGet)
	}
	router.HandleFunc(AuthLogin, c.Accounts.LoginHandler).Methods(http.MethodPost)
	if filesRoot != "" {
		router.PathPrefix(Files).Handler(http.StripPrefix(Files, http.FileServer(http.Dir(filesRoot)))).Methods(http.MethodGet)
	}

	secured := router.NewRoute().Subrouter()
	secured.Use(middleware.AuthMiddleware(pub))

	secured.HandleFunc(AuthMe, c.Accounts.MeHandler).Methods(http.MethodGet)
	secured.HandleFunc(Users, c.Accounts.ListUsersHandler).Methods(http.MethodGet)
	secured.HandleFunc(Users, c.Accounts.ProvisionUserHandler).Methods(http.MethodPost)

	// Buildings
	secured.HandleFunc(Buildings, c.Property.ListBuildingsHandler).Methods(http.MethodGet)
	secured.HandleFunc(Buildings, c.Property.CreateBuildingHandler).Methods(http.MethodPost)
	secured.HandleFunc(Building, c.Property.GetBuildingHandler).Methods(http.MethodGet)
	secured.HandleFunc(Building, c.Property.UpdateBuildingHandler).Methods(http.MethodPatch)
	secured.HandleFunc(Building, c.Cascade.DeleteBuildingHandler).Methods(http.MethodDelete)
	secured.HandleFunc(BuildingUnits, c.Property.ListUnitsHandler).Methods(http.MethodGet)
	secured.HandleFunc(BuildingUnits, c.Property.CreateUnitHandler).Methods(http.MethodPost)
	secured.HandleFunc(BuildingComponents, c.Property.ListComponentsHandler).Methods(http.MethodGet)
	secured.HandleFunc(BuildingComponents, c.Property.CreateComponentHandler).Methods(http.MethodPost)
	secured.HandleFunc(BuildingExpenses, c.Property.ListExpensesHandler).Methods(http.MethodGet)
	secured.HandleFunc(BuildingExpenses, c.Property.CreateExpenseHandler).Methods(http.MethodPost)

	// Units, components, expenses
	secured.HandleFunc(Unit, c.Property.GetUnitHandler).Methods(http.MethodGet)
	secured.HandleFunc(Unit, c.Property.UpdateUnitHandler).Methods(http.MethodPatch)
	secured.HandleFunc(Unit, c.Cascade.DeleteUnitHandler).Methods(http.MethodDelete)
	secured.HandleFunc(UnitImages, c.Property.AddUnitImageHandler).Methods(http.MethodPost)
	secured.HandleFunc(Component, c.Property.GetComponentHandler).Methods(http.MethodGet)
	secured.HandleFunc(Component, c.Property.UpdateComponentHandler).Methods(http.MethodPatch)
	secured.HandleFunc(Component, c.Cascade.DeleteComponentHandler).Methods(http.MethodDelete)
	secured.HandleFunc(ComponentImages, c.Property.AddComponentImageHandler).Methods(http.MethodPost)
	secured.HandleFunc(ExpenseSummary, c.Property.ExpenseSummaryHandler).Methods(http.MethodGet)
	secured.HandleFunc(Expense, c.Property.DeleteExpenseHandler).Methods(http.MethodDelete)

	// Tasks
	secured.HandleFunc(Tasks, c.Tasks.ListTasksHandler).Methods(http.MethodGet)
	secured.HandleFunc(Tasks, c.Tasks.CreateTaskHandler).Methods(http.MethodPost)
	secured.HandleFunc(Task, c.Tasks.GetTaskHandler).Methods(http.MethodGet)
	secured.HandleFunc(Task, c.Tasks.UpdateTaskHandler).Methods(http.MethodPatch)
	secured.HandleFunc(Task, c.Cascade.DeleteTaskHandler).Methods(http.MethodDelete)
	secured.HandleFunc(TaskStatus, c.Tasks.SetTaskStatusHandler).Methods(http.MethodPut, http.MethodPatch)
	secured.HandleFunc(TaskChecklist, c.Tasks.ChecklistHandler).Methods(http.MethodGet)

	// Service requests
	secured.HandleFunc(Requests, c.Requests.ListRequestsHandler).Methods(http.MethodGet)
	secured.HandleFunc(Requests, c.Requests.CreateRequestHandler).Methods(http.MethodPost)
	secured.HandleFunc(RequestDraftEmail, c.Requests.DraftEmailHandler).Methods(http.MethodPost)
	secured.HandleFunc(Request, c.Requests.GetRequestHandler).Methods(http.MethodGet)
	secured.HandleFunc(Request, c.Requests.UpdateRequestHandler).Methods(http.MethodPatch)
	secured.HandleFunc(RequestTransition, c.Requests.TransitionHandler).Methods(http.MethodPost)
	secured.HandleFunc(RequestComments, c.Requests.AddCommentHandler).Methods(http.MethodPost)
	secured.HandleFunc(RequestDocuments, c.Requests.AttachDocumentHandler).Methods(http.MethodPost)

	// Providers
	secured.HandleFunc(Providers, c.Providers.ListProvidersHandler).Methods(http.MethodGet)
	secured.HandleFunc(Providers, c.Providers.CreateProviderHandler).Methods(http.MethodPost)
	secured.HandleFunc(Provider, c.Providers.GetProviderHandler).Methods(http.MethodGet)
	secured.HandleFunc(Provider, c.Providers.UpdateProviderHandler).Methods(http.MethodPatch)
	secured.HandleFunc(Provider, c.Cascade.DeleteProviderHandler).Methods(http.MethodDelete)
	secured.HandleFunc(ProviderDashboard, c.Requests.ProviderDashboardHandler).Methods(http.MethodGet)

	// Notifications
	secured.HandleFunc(Notifications, c.Notifications.ListHandler).Methods(http.MethodGet)
	secured.HandleFunc(NotificationReadAll, c.Notifications.MarkAllReadHandler).Methods(http.MethodPost)
	secured.HandleFunc(NotificationRead, c.Notifications.MarkReadHandler).Methods(http.MethodPost)
	secured.HandleFunc(Notification, c.Notifications.DeleteHandler).Methods(http.MethodDelete)

	// Contingency documents
	secured.HandleFunc(Documents, c.Documents.ListHandler).Methods(http.MethodGet)
	secured.HandleFunc(Documents, c.Documents.UploadHandler).Methods(http.MethodPost)
	secured.HandleFunc(Document, c.Documents.DeleteHandler).Methods(http.MethodDelete)

	// Live feed
	secured.HandleFunc(Feed, c.Feed.StreamHandler).Methods(http.MethodGet)

	// Admin only
	admin := secured.NewRoute().Subrouter()
	admin.Use(middleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin))
	admin.HandleFunc(Audit, c.Admin.AuditTrailHandler).Methods(http.MethodGet)
	admin.HandleFunc(AdminOrphanSweep, c.Admin.OrphanSweepHandler).Methods(http.MethodPost)

	return router
}
