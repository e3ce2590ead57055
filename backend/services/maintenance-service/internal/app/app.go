package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/lazar0830/sos-condo-sub000/backend/services/maintenance-service/internal/config"
	"github.com/lazar0830/sos-condo-sub000/backend/services/maintenance-service/internal/events"
	"github.com/lazar0830/sos-condo-sub000/backend/services/maintenance-service/internal/storage"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-utils"
)

const (
	maxRetries     = 5
	connectTimeout = 5 * time.Second
	initialBackoff = 500 * time.Millisecond
)

type App struct {
	Config *config.Config
	DB     *pgxpool.Pool
	Bus    events.Bus
	Blobs  *storage.DiskBlobStore

	nats *events.NATSBus
}

func NewApp(cfg *config.Config) (*App, error) {
	dbURL, err := databaseURL(cfg)
	if err != nil {
		return nil, err
	}
	dbPool, err := connectWithBackoff(dbURL, cfg.AppName)
	if err != nil {
		return nil, err
	}

	blobs, err := storage.NewDiskBlobStore(cfg.BlobDir, cfg.AppUrl)
	if err != nil {
		dbPool.Close()
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     dbPool,
		Blobs:  blobs,
	}

	if cfg.LDFlag_UseNatsChangeFeed {
		nc, err := events.ConnectNATS(cfg.NatsURL, cfg.AppName)
		if err != nil {
			dbPool.Close()
			return nil, err
		}
		app.nats = events.NewNATSBus(nc)
		app.Bus = app.nats
		utils.Logger.Infof("Change feed on NATS (%s)", nc.ConnectedUrl())
	} else {
		app.Bus = events.NewLocalBus()
		utils.Logger.Info("Change feed is in-process; NATS disabled.")
	}
	return app, nil
}

func (a *App) Close() {
	if a.nats != nil {
		a.nats.Close()
	}
	if a.DB != nil {
		a.DB.Close()
		utils.Logger.Infof("%s DB connection closed.", a.Config.AppName)
	}
}

// databaseURL picks the per-run role when isolated schemas are on.
func databaseURL(cfg *config.Config) (string, error) {
	if !cfg.LDFlag_UsingIsolatedSchema {
		utils.Logger.Infof("Isolated schema disabled; using public schema for %s.", cfg.AppName)
		return cfg.DBUrl, nil
	}
	role, err := utils.IsolatedRoleName(cfg.UniqueRunnerID, cfg.UniqueRunNumber)
	if err != nil {
		return "", err
	}
	utils.Logger.Infof("Using isolated schema for %s; role=%s", cfg.AppName, role)
	return utils.WithIsolatedRole(cfg.DBUrl, cfg.UniqueRunnerID, cfg.UniqueRunNumber)
}

// connectWithBackoff retries the pool connect, doubling the wait each time.
func connectWithBackoff(dbURL, appName string) (*pgxpool.Pool, error) {
	wait := initialBackoff
	for attempt := 1; ; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		pool, err := newDBPool(ctx, dbURL)
		cancel()
		if err == nil {
			utils.Logger.Infof("%s connected to DB on attempt %d", appName, attempt)
			return pool, nil
		}
		if attempt == maxRetries {
			return nil, fmt.Errorf("unable to connect after %d attempts: %w", maxRetries, err)
		}
		utils.Logger.WithError(err).Warnf("DB connect attempt %d/%d failed; retrying in %v", attempt, maxRetries, wait)
		time.Sleep(wait)
		wait *= 2
	}
}

func newDBPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	cfg.MaxConnIdleTime = 2 * time.Minute
	cfg.HealthCheckPeriod = 30 * time.Second
	return pgxpool.ConnectConfig(ctx, cfg)
}
