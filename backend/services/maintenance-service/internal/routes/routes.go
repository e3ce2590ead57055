package routes

const (
	// Health
	Health = "/health"

	// Auth (public login, then the caller's own profile)
	AuthLogin = "/api/v1/auth/login"
	AuthMe    = "/api/v1/auth/me"

	// Accounts
	Users = "/api/v1/users"

	// Buildings and what hangs off them
	Buildings          = "/api/v1/buildings"
	Building           = "/api/v1/buildings/{id}"
	BuildingUnits      = "/api/v1/buildings/{id}/units"
	BuildingComponents = "/api/v1/buildings/{id}/components"
	BuildingExpenses   = "/api/v1/buildings/{id}/expenses"

	Unit            = "/api/v1/units/{id}"
	UnitImages      = "/api/v1/units/{id}/images"
	Component       = "/api/v1/components/{id}"
	ComponentImages = "/api/v1/components/{id}/images"

	ExpenseSummary = "/api/v1/expenses/summary"
	Expense        = "/api/v1/expenses/{id}"

	// Maintenance tasks
	Tasks         = "/api/v1/tasks"
	Task          = "/api/v1/tasks/{id}"
	TaskStatus    = "/api/v1/tasks/{id}/status"
	TaskChecklist = "/api/v1/tasks/{id}/checklist"

	// Service requests
	Requests          = "/api/v1/requests"
	RequestDraftEmail = "/api/v1/requests/draft-email"
	Request           = "/api/v1/requests/{id}"
	RequestTransition = "/api/v1/requests/{id}/transition"
	RequestComments   = "/api/v1/requests/{id}/comments"
	RequestDocuments  = "/api/v1/requests/{id}/documents"

	// Service providers
	Providers         = "/api/v1/providers"
	Provider          = "/api/v1/providers/{id}"
	ProviderDashboard = "/api/v1/provider/dashboard"

	// Notifications
	Notifications       = "/api/v1/notifications"
	NotificationReadAll = "/api/v1/notifications/read-all"
	Notification        = "/api/v1/notifications/{id}"
	NotificationRead    = "/api/v1/notifications/{id}/read"

	// Contingency documents
	Documents = "/api/v1/documents"
	Document  = "/api/v1/documents/{id}"

	// Audit trail of one record
	Audit = "/api/v1/audit/{id}"

	// Live snapshot feed (server-sent events)
	Feed = "/api/v1/feed"

	// Admin endpoints
	AdminOrphanSweep = "/api/v1/admin/orphan-sweep"

	// Uploaded files, served from the blob directory
	Files = "/files/"
)
