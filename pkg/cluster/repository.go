package cluster

import (
	"context"
	"errors"
	"fmt"

	"github.com/dhis2-sre/im-atlas/internal/errdef"
	"github.com/dhis2-sre/im-atlas/pkg/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

//goland:noinspection GoExportedFuncWithUnexportedType
func NewRepository(db *gorm.DB) *repository {
	return &repository{db}
}

type repository struct {
	db *gorm.DB
}

func (r repository) find(ctx context.Context, id uuid.UUID) (model.Cluster, error) {
	var cluster model.Cluster
	err := r.db.
		WithContext(ctx).
		Where("id = ?", id).
		First(&cluster).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Cluster{}, errdef.NewNotFound("cluster with id %q doesn't exist", id)
	}

	if err != nil {
		return model.Cluster{}, fmt.Errorf("failed to find cluster: %v", err)
	}

	return cluster, nil
}

// Filter narrows down clusters by event and or team. Empty fields match any value.
type Filter struct {
	EventID string
	TeamID  string
}

func (r repository) findAll(ctx context.Context, filter Filter) ([]model.Cluster, error) {
	query := r.db.WithContext(ctx)
	if filter.EventID != "" {
		query = query.Where("event_id = ?", filter.EventID)
	}
	if filter.TeamID != "" {
		query = query.Where("team_id = ?", filter.TeamID)
	}

	var clusters []model.Cluster
	err := query.
		Order("created_at desc").
		Find(&clusters).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find clusters: %v", err)
	}

	return clusters, nil
}

// findNonTerminal returns the cluster of the given team which is neither deleted nor failed.
func (r repository) findNonTerminal(ctx context.Context, eventID, teamID string) (model.Cluster, error) {
	var cluster model.Cluster
	err := r.db.
		WithContext(ctx).
		Where("event_id = ? AND team_id = ?", eventID, teamID).
		Where("status NOT IN ?", model.TerminalClusterStatuses).
		First(&cluster).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Cluster{}, errdef.NewNotFound("no active cluster for team %q in event %q", teamID, eventID)
	}

	if err != nil {
		return model.Cluster{}, fmt.Errorf("failed to find active cluster: %v", err)
	}

	return cluster, nil
}

func (r repository) findNonTerminalByEvent(ctx context.Context, eventID string) ([]model.Cluster, error) {
	var clusters []model.Cluster
	err := r.db.
		WithContext(ctx).
		Where("event_id = ?", eventID).
		Where("status NOT IN ?", model.TerminalClusterStatuses).
		Order("created_at").
		Find(&clusters).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find active clusters of event %q: %v", eventID, err)
	}

	return clusters, nil
}

func (r repository) countNonTerminalByEvent(ctx context.Context, eventID string) (int64, error) {
	var count int64
	err := r.db.
		WithContext(ctx).
		Model(&model.Cluster{}).
		Where("event_id = ?", eventID).
		Where("status NOT IN ?", model.TerminalClusterStatuses).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count active clusters of event %q: %v", eventID, err)
	}

	return count, nil
}

func (r repository) create(ctx context.Context, cluster *model.Cluster) error {
	// only use ctx for values (logging) and not cancellation signals on cud operations for now. ctx
	// cancellation can lead to rollbacks which we should decide individually.
	ctx = context.WithoutCancel(ctx)

	err := r.db.WithContext(ctx).Create(cluster).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errdef.NewConflict("an active cluster already exists for team %q in event %q", cluster.TeamID, cluster.EventID)
	}

	return err
}

func (r repository) save(ctx context.Context, cluster *model.Cluster) error {
	// only use ctx for values (logging) and not cancellation signals on cud operations for now. ctx
	// cancellation can lead to rollbacks which we should decide individually.
	ctx = context.WithoutCancel(ctx)

	return r.db.WithContext(ctx).Save(cluster).Error
}

// deleteTerminal removes deleted and failed clusters of the given team so it can be provisioned
// again.
func (r repository) deleteTerminal(ctx context.Context, eventID, teamID string) (int64, error) {
	// only use ctx for values (logging) and not cancellation signals on cud operations for now. ctx
	// cancellation can lead to rollbacks which we should decide individually.
	ctx = context.WithoutCancel(ctx)

	result := r.db.
		WithContext(ctx).
		Where("event_id = ? AND team_id = ?", eventID, teamID).
		Where("status IN ?", model.TerminalClusterStatuses).
		Delete(&model.Cluster{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to purge clusters of team %q in event %q: %v", teamID, eventID, result.Error)
	}

	return result.RowsAffected, nil
}
