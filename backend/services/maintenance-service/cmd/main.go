// meta-service/services/maintenance-service/cmd/main.go

package main

import (
	"context"
	"net/http"
	_ "time/tzdata"

	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-repositories"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-seeding"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-utils"
	cron "github.com/robfig/cron/v3"
	"github.com/rs/cors"

	"github.com/lazar0830/sos-condo-sub000/backend/services/maintenance-service/internal/app"
	"github.com/lazar0830/sos-condo-sub000/backend/services/maintenance-service/internal/config"
	"github.com/lazar0830/sos-condo-sub000/backend/services/maintenance-service/internal/constants"
	"github.com/lazar0830/sos-condo-sub000/backend/services/maintenance-service/internal/controllers"
	"github.com/lazar0830/sos-condo-sub000/backend/services/maintenance-service/internal/routes"
	"github.com/lazar0830/sos-condo-sub000/backend/services/maintenance-service/internal/services"
)

func main() {
	utils.InitLogger(config.AppName)
	cfg := config.LoadConfig()
	defer cfg.Close()

	application, err := app.NewApp(cfg)
	if err != nil {
		utils.Logger.Fatal("Failed to initialize maintenance-service:", err)
	}
	defer application.Close()

	repos := services.Repositories{
		Buildings:     repositories.NewBuildingRepository(application.DB),
		Units:         repositories.NewUnitRepository(application.DB),
		Components:    repositories.NewComponentRepository(application.DB),
		Tasks:         repositories.NewMaintenanceTaskRepository(application.DB),
		Requests:      repositories.NewServiceRequestRepository(application.DB),
		Providers:     repositories.NewServiceProviderRepository(application.DB),
		Expenses:      repositories.NewExpenseRepository(application.DB),
		Users:         repositories.NewUserRepository(application.DB),
		Notifications: repositories.NewNotificationRepository(application.DB),
		Documents:     repositories.NewContingencyDocumentRepository(application.DB),
		AuditLogs:     repositories.NewAuditLogRepository(application.DB),
	}

	openAIKey := ""
	if cfg.LDFlag_OpenAIDrafting {
		openAIKey = cfg.OpenAIAPIKey
	}
	openaiSvc := services.NewOpenAIService(openAIKey)
	outreach := services.NewOutreachService(cfg)

	contacts := utils.SyntaxOnlyContactValidator()
	if cfg.LDFlag_ValidateContactsRemote {
		contacts = utils.NewContactValidator(outreach.TwilioClient(), cfg.SendGridAPIKey, true)
	}

	scope := services.NewScopeService(repos)
	audit := services.NewAuditService(repos.AuditLogs)
	notes := services.NewNotificationService(repos.Notifications, application.Bus)

	requestService := services.NewRequestService(repos, scope, notes, outreach, openaiSvc, application.Blobs, audit, application.Bus)
	cascadeService := services.NewCascadeService(repos, scope, audit, application.Bus)
	taskService := services.NewTaskService(repos, scope, openaiSvc, audit, application.Bus)
	propertyService := services.NewPropertyService(repos, scope, application.Blobs, audit, application.Bus)
	providerService := services.NewProviderService(repos, scope, contacts, audit, application.Bus)
	accountService := services.NewAccountService(repos, scope, cfg.RSAPrivateKey, audit, application.Bus)
	documentService := services.NewDocumentService(repos, scope, application.Blobs, audit, application.Bus)
	sweeper := services.NewReconcileService(repos, scope, application.Bus)
	feedService := services.NewFeedService(scope, application.Bus)
	loginLimiter := services.NewLoginRateLimiter(repositories.NewRateLimitRepository(application.DB))

	if err := seeding.SeedDefaultSuperAdmin(context.Background(), repos.Users, cfg.DefaultSuperAdminEmail, cfg.DefaultSuperAdminPassword); err != nil {
		utils.Logger.WithError(err).Fatal("Failed to seed default super admin")
	}

	if cfg.LDFlag_SeedDbWithTestData {
		seeder := &app.Seeder{
			Repos:     repos,
			Accounts:  accountService,
			Property:  propertyService,
			Providers: providerService,
			Tasks:     taskService,
		}
		if err := seeder.SeedAllTestData(context.Background()); err != nil {
			utils.Logger.WithError(err).Fatal("Failed to seed test data")
		} else {
			utils.Logger.Info("Seeded test data successfully")
		}
	}

	router := routes.NewRouter(cfg.RSAPublicKey, application.Blobs.Root, routes.Controllers{
		Health:        controllers.NewHealthController(application.DB),
		Accounts:      controllers.NewAccountController(accountService, loginLimiter),
		Property:      controllers.NewPropertyController(propertyService),
		Tasks:         controllers.NewTaskController(taskService),
		Requests:      controllers.NewRequestController(requestService),
		Providers:     controllers.NewProviderController(providerService),
		Cascade:       controllers.NewCascadeController(cascadeService),
		Notifications: controllers.NewNotificationController(notes),
		Documents:     controllers.NewDocumentController(documentService),
		Admin:         controllers.NewAdminController(audit, sweeper),
		Feed:          controllers.NewFeedController(feedService),
	})

	c := cron.New()
	_, sweepErr := c.AddFunc(constants.OrphanSweepSchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), constants.OrphanSweepTimeout)
		defer cancel()
		res, e := sweeper.RunOrphanSweep(ctx)
		if e != nil {
			utils.Logger.WithError(e).Error("Scheduled orphan sweep failed")
			return
		}
		utils.Logger.Infof("Orphan sweep removed %+v", res)
	})
	if sweepErr != nil {
		utils.Logger.WithError(sweepErr).Fatal("Failed to schedule orphan sweep cron")
	}
	_, cleanupErr := c.AddFunc(constants.RateLimitCleanupSchedule, func() {
		_ = loginLimiter.CleanupExpired(context.Background())
	})
	if cleanupErr != nil {
		utils.Logger.WithError(cleanupErr).Fatal("Failed to schedule rate limit cleanup cron")
	}
	c.Start()
	defer c.Stop()

	allowedOrigins := []string{cfg.AppUrl}
	if !cfg.LDFlag_CORSHighSecurity {
		allowedOrigins = append(allowedOrigins, utils.CORSLowSecurityAllowedOriginLocalhost)
	}

	co := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "Last-Event-ID"},
		AllowCredentials: true,
	})

	utils.Logger.Infof("Starting %s on port: %s", cfg.AppName, cfg.AppPort)
	if err := http.ListenAndServe(":"+cfg.AppPort, co.Handler(router)); err != nil {
		utils.Logger.Fatal("maintenance-service failed to start:", err)
	}
}
