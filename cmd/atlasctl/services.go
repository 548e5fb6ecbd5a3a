package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/dhis2-sre/im-atlas/internal/log"
	"github.com/dhis2-sre/im-atlas/pkg/atlas"
	"github.com/dhis2-sre/im-atlas/pkg/cleanup"
	"github.com/dhis2-sre/im-atlas/pkg/cluster"
	"github.com/dhis2-sre/im-atlas/pkg/config"
	"github.com/dhis2-sre/im-atlas/pkg/event"
	"github.com/dhis2-sre/im-atlas/pkg/lock"
	"github.com/dhis2-sre/im-atlas/pkg/model"
	"github.com/dhis2-sre/im-atlas/pkg/storage"
	"github.com/google/uuid"
)

type clusterService interface {
	FindAll(ctx context.Context, filter cluster.Filter) ([]model.Cluster, error)
	RefreshStatus(ctx context.Context, id uuid.UUID) (cluster.StatusResult, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type cleanupService interface {
	RunScheduledCleanup(ctx context.Context) ([]cleanup.Report, error)
	CleanupEventClusters(ctx context.Context, eventID string) (cleanup.Report, error)
}

type services struct {
	cluster clusterService
	cleanup cleanupService
}

// servicesFactory is called once a command runs so --help works without any configuration.
type servicesFactory func() (services, error)

func newServices() (services, error) {
	cfg := config.NewCLI()

	logger := slog.New(log.New(log.NewPrettyJSONHandler(os.Stderr, &log.PrettyJSONHandlerOptions{
		PrettyPrint: cfg.LogPretty,
	})))

	db, err := storage.NewDatabase(logger, cfg.Postgresql)
	if err != nil {
		return services{}, err
	}

	atlasClient, err := atlas.New(atlas.ClientConfig{
		PublicKey:  cfg.Atlas.PublicKey,
		PrivateKey: cfg.Atlas.PrivateKey,
		OrgID:      cfg.Atlas.OrgID,
		BaseURL:    cfg.Atlas.BaseURL,
	})
	if err != nil {
		return services{}, err
	}

	eventRepository := event.NewRepository(db)
	// atlasctl never provisions so an in process lock is enough
	clusterService := cluster.NewService(logger, cluster.NewRepository(db), atlasClient, eventRepository, lock.NewMemoryLocker())
	cleanupService := cleanup.NewService(logger, clusterService, eventRepository)

	return services{cluster: clusterService, cleanup: cleanupService}, nil
}
