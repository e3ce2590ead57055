package testhelpers

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"testing"

	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-repositories"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-repositories/memstore"
	"github.com/stretchr/testify/require"
)

// TestHelper bundles an in-memory store, its repositories and a signing key
// for the service and controller tests.
type TestHelper struct {
	T          *testing.T
	Ctx        context.Context
	Store      *memstore.Store
	PrivateKey *rsa.PrivateKey

	// Repositories
	UserRepo         repositories.UserRepository
	BuildingRepo     repositories.BuildingRepository
	UnitRepo         repositories.UnitRepository
	ComponentRepo    repositories.ComponentRepository
	TaskRepo         repositories.MaintenanceTaskRepository
	ProviderRepo     repositories.ServiceProviderRepository
	RequestRepo      repositories.ServiceRequestRepository
	ExpenseRepo      repositories.ExpenseRepository
	NotificationRepo repositories.NotificationRepository
	ContingencyRepo  repositories.ContingencyDocumentRepository
	AuditRepo        repositories.AuditLogRepository
}

// NewTestHelper builds a fresh, isolated environment per test.
func NewTestHelper(t *testing.T) *TestHelper {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err, "generate RSA key")

	store := memstore.New()
	return &TestHelper{
		T:                t,
		Ctx:              context.Background(),
		Store:            store,
		PrivateKey:       key,
		UserRepo:         store.Users(),
		BuildingRepo:     store.Buildings(),
		UnitRepo:         store.Units(),
		ComponentRepo:    store.Components(),
		TaskRepo:         store.Tasks(),
		ProviderRepo:     store.Providers(),
		RequestRepo:      store.Requests(),
		ExpenseRepo:      store.Expenses(),
		NotificationRepo: store.Notifications(),
		ContingencyRepo:  store.ContingencyDocuments(),
		AuditRepo:        store.AuditLogs(),
	}
}
