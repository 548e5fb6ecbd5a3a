package storage

import (
	"fmt"
	"log/slog"

	"github.com/dhis2-sre/im-atlas/pkg/config"
	"github.com/dhis2-sre/im-atlas/pkg/model"
	slogGorm "github.com/orandin/slog-gorm"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// activeClusterIndex allows only one cluster per event and team which is neither deleted nor failed.
const activeClusterIndex = `CREATE UNIQUE INDEX IF NOT EXISTS idx_clusters_active_event_team
ON clusters (event_id, team_id)
WHERE status NOT IN ('deleted', 'error')`

func NewDatabase(logger *slog.Logger, c config.Postgresql) (*gorm.DB, error) {
	host := c.Host
	port := c.Port
	username := c.Username
	password := c.Password
	name := c.DatabaseName

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable", host, username, password, name, port)

	databaseConfig := gorm.Config{
		Logger:         slogGorm.New(slogGorm.WithHandler(logger.Handler())),
		TranslateError: true,
	}

	db, err := gorm.Open(postgres.Open(dsn), &databaseConfig)
	if err != nil {
		return nil, err
	}

	err = db.Use(otelgorm.NewPlugin())
	if err != nil {
		return nil, fmt.Errorf("failed to setup tracing of database: %v", err)
	}

	err = db.AutoMigrate(
		&model.Event{},
		&model.Cluster{},
	)
	if err != nil {
		return nil, err
	}

	err = db.Exec(activeClusterIndex).Error
	if err != nil {
		return nil, fmt.Errorf("failed to create active cluster index: %v", err)
	}

	return db, nil
}
