package cluster

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/dhis2-sre/im-atlas/internal/errdef"
	"github.com/dhis2-sre/im-atlas/pkg/atlas"
	"github.com/dhis2-sre/im-atlas/pkg/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type fakeRepository struct {
	mu        sync.Mutex
	clusters  map[uuid.UUID]model.Cluster
	createErr error
	// saving a cluster in this status fails
	failSave model.ClusterStatus
}

func newFakeRepository(clusters ...model.Cluster) *fakeRepository {
	r := &fakeRepository{clusters: map[uuid.UUID]model.Cluster{}}
	for _, c := range clusters {
		r.clusters[c.ID] = c
	}
	return r
}

func (r *fakeRepository) all() []model.Cluster {
	r.mu.Lock()
	defer r.mu.Unlock()

	var clusters []model.Cluster
	for _, c := range r.clusters {
		clusters = append(clusters, c)
	}
	return clusters
}

func (r *fakeRepository) get(id uuid.UUID) model.Cluster {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.clusters[id]
}

func (r *fakeRepository) find(_ context.Context, id uuid.UUID) (model.Cluster, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.clusters[id]
	if !ok {
		return model.Cluster{}, errdef.NewNotFound("cluster with id %q doesn't exist", id)
	}
	return c, nil
}

func (r *fakeRepository) findAll(_ context.Context, filter Filter) ([]model.Cluster, error) {
	var clusters []model.Cluster
	for _, c := range r.all() {
		if (filter.EventID == "" || c.EventID == filter.EventID) && (filter.TeamID == "" || c.TeamID == filter.TeamID) {
			clusters = append(clusters, c)
		}
	}
	return clusters, nil
}

func (r *fakeRepository) findNonTerminal(_ context.Context, eventID, teamID string) (model.Cluster, error) {
	for _, c := range r.all() {
		if c.EventID == eventID && c.TeamID == teamID && !c.Status.IsTerminal() {
			return c, nil
		}
	}
	return model.Cluster{}, errdef.NewNotFound("no active cluster")
}

func (r *fakeRepository) findNonTerminalByEvent(_ context.Context, eventID string) ([]model.Cluster, error) {
	var clusters []model.Cluster
	for _, c := range r.all() {
		if c.EventID == eventID && !c.Status.IsTerminal() {
			clusters = append(clusters, c)
		}
	}
	slices.SortFunc(clusters, func(a, b model.Cluster) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return clusters, nil
}

func (r *fakeRepository) countNonTerminalByEvent(ctx context.Context, eventID string) (int64, error) {
	clusters, err := r.findNonTerminalByEvent(ctx, eventID)
	return int64(len(clusters)), err
}

func (r *fakeRepository) create(_ context.Context, cluster *model.Cluster) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.createErr != nil {
		return r.createErr
	}
	r.clusters[cluster.ID] = *cluster
	return nil
}

func (r *fakeRepository) save(_ context.Context, cluster *model.Cluster) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failSave != "" && cluster.Status == r.failSave {
		return errors.New("database is gone")
	}
	r.clusters[cluster.ID] = *cluster
	return nil
}

func (r *fakeRepository) deleteTerminal(_ context.Context, eventID, teamID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var deleted int64
	for id, c := range r.clusters {
		if c.EventID == eventID && c.TeamID == teamID && c.Status.IsTerminal() {
			delete(r.clusters, id)
			deleted++
		}
	}
	return deleted, nil
}

type fakeEvents map[string]model.Event

func (f fakeEvents) Find(_ context.Context, id string) (model.Event, error) {
	event, ok := f[id]
	if !ok {
		return model.Event{}, errdef.NewNotFound("event %q doesn't exist", id)
	}
	return event, nil
}

type mockAtlasClient struct{ mock.Mock }

func (m *mockAtlasClient) CreateProject(ctx context.Context, name string) (*atlas.Project, error) {
	args := m.Called(ctx, name)
	project, _ := args.Get(0).(*atlas.Project)
	return project, args.Error(1)
}

func (m *mockAtlasClient) GetProjectByName(ctx context.Context, name string) (*atlas.Project, error) {
	args := m.Called(ctx, name)
	project, _ := args.Get(0).(*atlas.Project)
	return project, args.Error(1)
}

func (m *mockAtlasClient) DeleteProject(ctx context.Context, projectID string) error {
	return m.Called(ctx, projectID).Error(0)
}

func (m *mockAtlasClient) CreateFreeCluster(ctx context.Context, projectID string, request atlas.CreateClusterRequest) (*atlas.Cluster, error) {
	args := m.Called(ctx, projectID, request)
	cluster, _ := args.Get(0).(*atlas.Cluster)
	return cluster, args.Error(1)
}

func (m *mockAtlasClient) GetCluster(ctx context.Context, projectID, name string) (*atlas.Cluster, error) {
	args := m.Called(ctx, projectID, name)
	cluster, _ := args.Get(0).(*atlas.Cluster)
	return cluster, args.Error(1)
}

func (m *mockAtlasClient) DeleteCluster(ctx context.Context, projectID, name string) error {
	return m.Called(ctx, projectID, name).Error(0)
}

func (m *mockAtlasClient) CreateDatabaseUser(ctx context.Context, projectID, clusterName, username, password string) (*atlas.DatabaseUser, error) {
	args := m.Called(ctx, projectID, clusterName, username, password)
	user, _ := args.Get(0).(*atlas.DatabaseUser)
	return user, args.Error(1)
}

func (m *mockAtlasClient) ListDatabaseUsers(ctx context.Context, projectID string) ([]atlas.DatabaseUser, error) {
	args := m.Called(ctx, projectID)
	users, _ := args.Get(0).([]atlas.DatabaseUser)
	return users, args.Error(1)
}

func (m *mockAtlasClient) UpdateDatabaseUserPassword(ctx context.Context, projectID, username, password string) error {
	return m.Called(ctx, projectID, username, password).Error(0)
}

func (m *mockAtlasClient) AddIPAccessList(ctx context.Context, projectID string, entries ...atlas.AccessListEntry) ([]atlas.AccessListEntry, error) {
	args := m.Called(ctx, projectID, entries)
	added, _ := args.Get(0).([]atlas.AccessListEntry)
	return added, args.Error(1)
}
