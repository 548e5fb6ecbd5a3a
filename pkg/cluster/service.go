package cluster

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/dhis2-sre/im-atlas/internal/errdef"
	"github.com/dhis2-sre/im-atlas/pkg/atlas"
	"github.com/dhis2-sre/im-atlas/pkg/lock"
	"github.com/dhis2-sre/im-atlas/pkg/metrics"
	"github.com/dhis2-sre/im-atlas/pkg/model"
	"github.com/google/uuid"
)

const openAccessComment = "Open access for hackathon"

//goland:noinspection GoExportedFuncWithUnexportedType
func NewService(logger *slog.Logger, clusterRepository clusterRepository, atlasClient atlasClient, eventRepository eventRepository, locker locker) *Service {
	return &Service{
		logger:            logger,
		clusterRepository: clusterRepository,
		atlasClient:       atlasClient,
		eventRepository:   eventRepository,
		locker:            locker,
		now:               time.Now,
	}
}

type clusterRepository interface {
	find(ctx context.Context, id uuid.UUID) (model.Cluster, error)
	findAll(ctx context.Context, filter Filter) ([]model.Cluster, error)
	findNonTerminal(ctx context.Context, eventID, teamID string) (model.Cluster, error)
	findNonTerminalByEvent(ctx context.Context, eventID string) ([]model.Cluster, error)
	countNonTerminalByEvent(ctx context.Context, eventID string) (int64, error)
	create(ctx context.Context, cluster *model.Cluster) error
	save(ctx context.Context, cluster *model.Cluster) error
	deleteTerminal(ctx context.Context, eventID, teamID string) (int64, error)
}

type atlasClient interface {
	CreateProject(ctx context.Context, name string) (*atlas.Project, error)
	GetProjectByName(ctx context.Context, name string) (*atlas.Project, error)
	DeleteProject(ctx context.Context, projectID string) error
	CreateFreeCluster(ctx context.Context, projectID string, request atlas.CreateClusterRequest) (*atlas.Cluster, error)
	GetCluster(ctx context.Context, projectID, name string) (*atlas.Cluster, error)
	DeleteCluster(ctx context.Context, projectID, name string) error
	CreateDatabaseUser(ctx context.Context, projectID, clusterName, username, password string) (*atlas.DatabaseUser, error)
	ListDatabaseUsers(ctx context.Context, projectID string) ([]atlas.DatabaseUser, error)
	UpdateDatabaseUserPassword(ctx context.Context, projectID, username, password string) error
	AddIPAccessList(ctx context.Context, projectID string, entries ...atlas.AccessListEntry) ([]atlas.AccessListEntry, error)
}

type eventRepository interface {
	Find(ctx context.Context, id string) (model.Event, error)
}

type locker interface {
	Lock(ctx context.Context, key string) (lock.Unlock, error)
}

type Service struct {
	logger            *slog.Logger
	clusterRepository clusterRepository
	atlasClient       atlasClient
	eventRepository   eventRepository
	locker            locker
	now               func() time.Time
}

type ProvisionRequest struct {
	EventID   string
	TeamID    string
	ProjectID string
	UserID    string
	// Provider and Region fall back to the defaults of the event if empty.
	Provider string
	Region   string
}

// Credentials are only ever returned once. The password is not stored.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type ProvisionResult struct {
	Cluster     model.Cluster `json:"cluster"`
	Credentials Credentials   `json:"credentials"`
}

func (s *Service) Find(ctx context.Context, id uuid.UUID) (model.Cluster, error) {
	return s.clusterRepository.find(ctx, id)
}

func (s *Service) FindAll(ctx context.Context, filter Filter) ([]model.Cluster, error) {
	return s.clusterRepository.findAll(ctx, filter)
}

// FindActiveByEvent returns all clusters of an event which are neither deleted nor failed.
func (s *Service) FindActiveByEvent(ctx context.Context, eventID string) ([]model.Cluster, error) {
	return s.clusterRepository.findNonTerminalByEvent(ctx, eventID)
}

func (s *Service) HasActiveClusters(ctx context.Context, eventID string) (bool, error) {
	count, err := s.clusterRepository.countNonTerminalByEvent(ctx, eventID)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Provision creates an Atlas project, a free tier cluster and a database user for the given
// team. Remote resources left over from an earlier attempt are adopted. On failure the project,
// created or adopted, is removed again and no cluster record is stored.
func (s *Service) Provision(ctx context.Context, request ProvisionRequest) (*ProvisionResult, error) {
	result, err := s.provision(ctx, request)
	switch {
	case err == nil:
		metrics.RecordProvision(metrics.ResultSuccess)
	case errdef.IsConflict(err):
		metrics.RecordProvision(metrics.ResultConflict)
	default:
		metrics.RecordProvision(metrics.ResultError)
	}
	return result, err
}

func (s *Service) provision(ctx context.Context, request ProvisionRequest) (*ProvisionResult, error) {
	event, err := s.eventRepository.Find(ctx, request.EventID)
	if err != nil {
		return nil, err
	}

	settings := event.AtlasProvisioning
	if !settings.Enabled {
		return nil, errdef.NewForbidden("atlas provisioning is not enabled for event %q", event.ID)
	}

	provider := request.Provider
	if provider == "" {
		provider = settings.DefaultProvider
	}
	region := request.Region
	if region == "" {
		region = settings.DefaultRegion
	}
	if provider == "" || region == "" {
		return nil, errdef.NewBadRequest("provider and region are required as event %q has no defaults", event.ID)
	}
	if !settings.AllowsProvider(provider) {
		return nil, errdef.NewBadRequest("provider %q is not allowed for event %q", provider, event.ID)
	}
	if !settings.AllowsRegion(region) {
		return nil, errdef.NewBadRequest("region %q is not allowed for event %q", region, event.ID)
	}

	key := fmt.Sprintf("atlas-provision:%s:%s", request.EventID, request.TeamID)
	unlock, err := s.locker.Lock(ctx, key)
	if errors.Is(err, lock.ErrLocked) {
		return nil, errdef.NewConflict("cluster for team %q in event %q is already being provisioned", request.TeamID, request.EventID)
	}
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := unlock(); err != nil {
			s.logger.WarnContext(ctx, "Failed to release provisioning lock", "key", key, "error", err)
		}
	}()

	_, err = s.clusterRepository.findNonTerminal(ctx, request.EventID, request.TeamID)
	if err == nil {
		return nil, errdef.NewConflict("an active cluster already exists for team %q in event %q", request.TeamID, request.EventID)
	}
	if !errdef.IsNotFound(err) {
		return nil, err
	}

	purged, err := s.clusterRepository.deleteTerminal(ctx, request.EventID, request.TeamID)
	if err != nil {
		return nil, err
	}
	if purged > 0 {
		s.logger.InfoContext(ctx, "Purged terminal clusters", "eventId", request.EventID, "teamId", request.TeamID, "count", purged)
	}

	projectName := atlas.ProjectName(request.EventID, request.TeamID)
	project, existed, err := s.findOrCreateProject(ctx, projectName)
	if err != nil {
		return nil, err
	}

	result, err := s.provisionProject(ctx, request, settings, project, existed, provider, region)
	if err != nil {
		s.rollback(ctx, project.ID)
		return nil, err
	}

	s.logger.InfoContext(ctx, "Provisioned cluster", "clusterId", result.Cluster.ID, "eventId", request.EventID, "teamId", request.TeamID, "atlasProjectId", project.ID, "adopted", existed)
	return result, nil
}

func (s *Service) findOrCreateProject(ctx context.Context, name string) (*atlas.Project, bool, error) {
	project, err := s.atlasClient.GetProjectByName(ctx, name)
	if err == nil {
		return project, true, nil
	}
	if !atlas.IsNotFound(err) {
		return nil, false, fmt.Errorf("failed to find atlas project %q: %w", name, err)
	}

	project, err = s.atlasClient.CreateProject(ctx, name)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create atlas project %q: %w", name, err)
	}
	return project, false, nil
}

func (s *Service) provisionProject(ctx context.Context, request ProvisionRequest, settings model.AtlasProvisioning, project *atlas.Project, existed bool, provider, region string) (*ProvisionResult, error) {
	remote, err := s.findOrCreateCluster(ctx, project.ID, existed, provider, region)
	if err != nil {
		return nil, err
	}

	username := atlas.Username(request.TeamID)
	password, err := atlas.GeneratePassword(atlas.DefaultPasswordLength)
	if err != nil {
		return nil, err
	}
	if err := s.ensureDatabaseUser(ctx, project.ID, existed, username, password); err != nil {
		return nil, err
	}

	now := s.now()
	var accessList []model.IPAccessEntry
	if settings.OpenNetworkAccess {
		entry := atlas.AccessListEntry{CIDRBlock: atlas.OpenCIDRBlock, Comment: openAccessComment}
		if _, err := s.atlasClient.AddIPAccessList(ctx, project.ID, entry); err != nil {
			return nil, fmt.Errorf("failed to open network access of atlas project %q: %w", project.ID, err)
		}
		accessList = append(accessList, model.IPAccessEntry{
			CIDRBlock: atlas.OpenCIDRBlock,
			Comment:   openAccessComment,
			AddedAt:   now,
			AddedBy:   request.UserID,
		})
	}

	cluster := model.Cluster{
		ID:                       uuid.New(),
		EventID:                  request.EventID,
		TeamID:                   request.TeamID,
		ProjectID:                request.ProjectID,
		ProvisionedBy:            request.UserID,
		AtlasProjectID:           project.ID,
		AtlasProjectName:         project.Name,
		AtlasClusterName:         atlas.ClusterName,
		AtlasClusterID:           remote.ID,
		ConnectionString:         atlas.TagConnectionString(remote.ConnectionStrings.StandardSrv),
		StandardConnectionString: atlas.TagConnectionString(remote.ConnectionStrings.Standard),
		DatabaseUsers: []model.DatabaseUser{
			{Username: username, CreatedAt: now, CreatedBy: request.UserID},
		},
		IPAccessList:    accessList,
		Status:          model.ClusterStatusCreating,
		LastStatusCheck: &now,
		ProviderName:    provider,
		RegionName:      region,
		MongoDBVersion:  remote.MongoDBVersion,
	}
	if err := s.clusterRepository.create(ctx, &cluster); err != nil {
		return nil, err
	}

	return &ProvisionResult{
		Cluster:     cluster,
		Credentials: Credentials{Username: username, Password: password},
	}, nil
}

func (s *Service) findOrCreateCluster(ctx context.Context, projectID string, existed bool, provider, region string) (*atlas.Cluster, error) {
	if existed {
		remote, err := s.atlasClient.GetCluster(ctx, projectID, atlas.ClusterName)
		if err == nil {
			return remote, nil
		}
		if !atlas.IsNotFound(err) {
			return nil, fmt.Errorf("failed to find atlas cluster of project %q: %w", projectID, err)
		}
	}

	remote, err := s.atlasClient.CreateFreeCluster(ctx, projectID, atlas.CreateClusterRequest{
		Name:         atlas.ClusterName,
		ProviderName: provider,
		RegionName:   region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create atlas cluster in project %q: %w", projectID, err)
	}
	return remote, nil
}

// ensureDatabaseUser creates the team user. An existing user of an adopted project gets the new
// password so the returned credentials are valid.
func (s *Service) ensureDatabaseUser(ctx context.Context, projectID string, existed bool, username, password string) error {
	if existed {
		users, err := s.atlasClient.ListDatabaseUsers(ctx, projectID)
		if err != nil {
			return fmt.Errorf("failed to list database users of atlas project %q: %w", projectID, err)
		}

		if slices.ContainsFunc(users, func(u atlas.DatabaseUser) bool { return u.Username == username }) {
			if err := s.atlasClient.UpdateDatabaseUserPassword(ctx, projectID, username, password); err != nil {
				return fmt.Errorf("failed to reset password of database user %q: %w", username, err)
			}
			return nil
		}
	}

	if _, err := s.atlasClient.CreateDatabaseUser(ctx, projectID, atlas.ClusterName, username, password); err != nil {
		return fmt.Errorf("failed to create database user %q: %w", username, err)
	}
	return nil
}

func (s *Service) rollback(ctx context.Context, projectID string) {
	ctx = context.WithoutCancel(ctx)

	s.logger.WarnContext(ctx, "Rolling back atlas project", "atlasProjectId", projectID)
	if err := s.atlasClient.DeleteProject(ctx, projectID); err != nil {
		s.logger.ErrorContext(ctx, "Failed to roll back atlas project", "atlasProjectId", projectID, "error", err)
	}
}

type StatusResult struct {
	RemoteState      string              `json:"remoteState"`
	LocalStatus      model.ClusterStatus `json:"localStatus"`
	ConnectionString string              `json:"connectionString"`
	MongoDBVersion   string              `json:"mongoDBVersion"`
}

// RefreshStatus reads the state of the cluster from Atlas and stores it. A failure to read the
// state is stored on the cluster before it's returned.
func (s *Service) RefreshStatus(ctx context.Context, id uuid.UUID) (StatusResult, error) {
	cluster, err := s.clusterRepository.find(ctx, id)
	if err != nil {
		return StatusResult{}, err
	}

	if cluster.Status == model.ClusterStatusDeleted {
		return StatusResult{
			RemoteState:      atlas.StateDeleted,
			LocalStatus:      model.ClusterStatusDeleted,
			ConnectionString: cluster.ConnectionString,
			MongoDBVersion:   cluster.MongoDBVersion,
		}, nil
	}

	now := s.now()
	cluster.LastStatusCheck = &now

	remote, err := s.atlasClient.GetCluster(ctx, cluster.AtlasProjectID, cluster.AtlasClusterName)
	if err != nil {
		cluster.Status = model.ClusterStatusError
		cluster.ErrorMessage = fmt.Sprintf("failed to refresh status: %v", err)
		if saveErr := s.clusterRepository.save(ctx, &cluster); saveErr != nil {
			s.logger.ErrorContext(ctx, "Failed to save cluster", "clusterId", cluster.ID, "error", saveErr)
		}
		return StatusResult{}, fmt.Errorf("failed to refresh status of cluster %q: %w", cluster.ID, err)
	}

	cluster.Status = atlas.MapStateToStatus(remote.StateName)
	cluster.ErrorMessage = ""
	if cluster.Status == model.ClusterStatusDeleted && cluster.DeletedAt == nil {
		cluster.DeletedAt = &now
	}
	cluster.ConnectionString = atlas.TagConnectionString(remote.ConnectionStrings.StandardSrv)
	cluster.StandardConnectionString = atlas.TagConnectionString(remote.ConnectionStrings.Standard)
	cluster.MongoDBVersion = remote.MongoDBVersion
	if remote.ID != "" {
		cluster.AtlasClusterID = remote.ID
	}
	if err := s.clusterRepository.save(ctx, &cluster); err != nil {
		return StatusResult{}, err
	}

	return StatusResult{
		RemoteState:      remote.StateName,
		LocalStatus:      cluster.Status,
		ConnectionString: cluster.ConnectionString,
		MongoDBVersion:   cluster.MongoDBVersion,
	}, nil
}

// Delete tears down the Atlas cluster and its project. Atlas deletes clusters asynchronously so
// the project can still contain the terminating cluster. Such a project is left for a later
// cleanup and the cluster is marked deleted regardless.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	cluster, err := s.clusterRepository.find(ctx, id)
	if err != nil {
		return err
	}

	if cluster.Status == model.ClusterStatusDeleted {
		return nil
	}

	err = s.delete(ctx, &cluster)
	if err != nil {
		metrics.RecordTeardown(metrics.ResultError)

		cluster.Status = model.ClusterStatusError
		cluster.ErrorMessage = fmt.Sprintf("failed to delete cluster: %v", err)
		if saveErr := s.clusterRepository.save(ctx, &cluster); saveErr != nil {
			s.logger.ErrorContext(ctx, "Failed to save cluster", "clusterId", cluster.ID, "error", saveErr)
		}
		return fmt.Errorf("failed to delete cluster %q: %w", cluster.ID, err)
	}

	metrics.RecordTeardown(metrics.ResultSuccess)
	return nil
}

func (s *Service) delete(ctx context.Context, cluster *model.Cluster) error {
	cluster.Status = model.ClusterStatusDeleting
	if err := s.clusterRepository.save(ctx, cluster); err != nil {
		return err
	}

	logger := s.logger.With("clusterId", cluster.ID, "atlasProjectId", cluster.AtlasProjectID)

	err := s.atlasClient.DeleteCluster(ctx, cluster.AtlasProjectID, cluster.AtlasClusterName)
	if err != nil && !atlas.IsNotFound(err) {
		logger.WarnContext(ctx, "Failed to delete atlas cluster", "error", err)
	}

	err = s.atlasClient.DeleteProject(ctx, cluster.AtlasProjectID)
	if atlas.IsConflict(err) {
		logger.WarnContext(ctx, "Atlas project still contains a terminating cluster, leaving it for a later cleanup", "error", err)
	} else if err != nil && !atlas.IsNotFound(err) {
		logger.WarnContext(ctx, "Failed to delete atlas project", "error", err)
	}

	now := s.now()
	cluster.Status = model.ClusterStatusDeleted
	cluster.DeletedAt = &now
	cluster.ErrorMessage = ""
	if err := s.clusterRepository.save(ctx, cluster); err != nil {
		return err
	}

	logger.InfoContext(ctx, "Deleted cluster")
	return nil
}
