// Package event reads hackathon events and their Atlas provisioning settings. Events are managed
// elsewhere on the platform.
package event

import (
	"context"
	"errors"
	"fmt"

	"github.com/dhis2-sre/im-atlas/internal/errdef"
	"github.com/dhis2-sre/im-atlas/pkg/model"
	"gorm.io/gorm"
)

//goland:noinspection GoExportedFuncWithUnexportedType
func NewRepository(db *gorm.DB) *repository {
	return &repository{db}
}

type repository struct {
	db *gorm.DB
}

// Create is only used to seed events in tests and local setups.
func (r repository) Create(ctx context.Context, event *model.Event) error {
	// only cancel on deadline exceeded
	ctx = context.WithoutCancel(ctx)
	return r.db.WithContext(ctx).Create(event).Error
}

func (r repository) Find(ctx context.Context, id string) (model.Event, error) {
	var event model.Event
	err := r.db.
		WithContext(ctx).
		Where("id = ?", id).
		First(&event).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Event{}, errdef.NewNotFound("event with id %q doesn't exist", id)
	}

	if err != nil {
		return model.Event{}, fmt.Errorf("failed to find event: %v", err)
	}

	return event, nil
}

// FindConcludedWithAutoCleanup returns the concluded events whose clusters are removed once the
// event is over.
func (r repository) FindConcludedWithAutoCleanup(ctx context.Context) ([]model.Event, error) {
	var events []model.Event
	err := r.db.
		WithContext(ctx).
		Where("status = ?", model.EventStatusConcluded).
		Where("atlas_provisioning_auto_cleanup_on_event_end = ?", true).
		Order("created_at").
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find concluded events: %v", err)
	}

	return events, nil
}
