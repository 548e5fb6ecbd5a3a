package cleanup

import (
	"context"
	"sort"
	"sync/atomic"

	"github.com/dhis2-sre/im-atlas/internal/errdef"
	"github.com/dhis2-sre/im-atlas/pkg/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type mockClusterService struct{ mock.Mock }

func (m *mockClusterService) FindActiveByEvent(ctx context.Context, eventID string) ([]model.Cluster, error) {
	called := m.Called(ctx, eventID)
	clusters, ok := called.Get(0).([]model.Cluster)
	if ok {
		return clusters, called.Error(1)
	}
	return nil, called.Error(1)
}

func (m *mockClusterService) HasActiveClusters(ctx context.Context, eventID string) (bool, error) {
	called := m.Called(ctx, eventID)
	return called.Bool(0), called.Error(1)
}

func (m *mockClusterService) Delete(ctx context.Context, id uuid.UUID) error {
	called := m.Called(ctx, id)
	return called.Error(0)
}

type fakeEvents map[string]model.Event

func (f fakeEvents) Find(_ context.Context, id string) (model.Event, error) {
	event, ok := f[id]
	if !ok {
		return model.Event{}, errdef.NewNotFound("event with id %q doesn't exist", id)
	}
	return event, nil
}

func (f fakeEvents) FindConcludedWithAutoCleanup(_ context.Context) ([]model.Event, error) {
	var events []model.Event
	for _, event := range f {
		if event.Status == model.EventStatusConcluded && event.AtlasProvisioning.AutoCleanupOnEventEnd {
			events = append(events, event)
		}
	}
	sort.Slice(events, func(i, j int) bool { return events[i].ID < events[j].ID })
	return events, nil
}

type countingEvents struct {
	fakeEvents
	calls atomic.Int32
}

func (c *countingEvents) FindConcludedWithAutoCleanup(ctx context.Context) ([]model.Event, error) {
	c.calls.Add(1)
	return c.fakeEvents.FindConcludedWithAutoCleanup(ctx)
}
