// Package cleanup tears down the clusters of concluded events. Cleanup runs on a schedule and
// whenever an event transitions into concluded.
package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dhis2-sre/im-atlas/pkg/metrics"
	"github.com/dhis2-sre/im-atlas/pkg/model"
	"github.com/google/uuid"
)

func NewService(logger *slog.Logger, clusterService clusterService, eventRepository eventRepository) *Service {
	return &Service{
		logger:          logger,
		clusterService:  clusterService,
		eventRepository: eventRepository,
	}
}

type clusterService interface {
	FindActiveByEvent(ctx context.Context, eventID string) ([]model.Cluster, error)
	HasActiveClusters(ctx context.Context, eventID string) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type eventRepository interface {
	Find(ctx context.Context, id string) (model.Event, error)
	FindConcludedWithAutoCleanup(ctx context.Context) ([]model.Event, error)
}

type Service struct {
	logger          *slog.Logger
	clusterService  clusterService
	eventRepository eventRepository
	// tracks cleanups started by HandleEventStatusChange
	running sync.WaitGroup
}

// Report is the outcome of cleaning up the clusters of one event.
type Report struct {
	EventID         string   `json:"eventId"`
	EventName       string   `json:"eventName"`
	ClustersFound   int      `json:"clustersFound"`
	ClustersDeleted int      `json:"clustersDeleted"`
	Errors          []string `json:"errors"`
}

// FindEventsNeedingCleanup returns the ids of concluded events with auto cleanup enabled which
// still have at least one cluster that isn't deleted or failed. Events whose clusters can't be
// counted are logged and skipped.
func (s *Service) FindEventsNeedingCleanup(ctx context.Context) ([]string, error) {
	events, err := s.eventRepository.FindConcludedWithAutoCleanup(ctx)
	if err != nil {
		return nil, err
	}

	var ids []string
	for _, event := range events {
		active, err := s.clusterService.HasActiveClusters(ctx, event.ID)
		if err != nil {
			s.logger.ErrorContext(ctx, "Failed to count clusters of event", "eventId", event.ID, "error", err)
			continue
		}
		if active {
			ids = append(ids, event.ID)
		}
	}

	return ids, nil
}

// CleanupEventClusters deletes every cluster of the event that isn't deleted or failed. A failing
// teardown is recorded in the report and doesn't stop the remaining ones.
func (s *Service) CleanupEventClusters(ctx context.Context, eventID string) (Report, error) {
	report := Report{EventID: eventID, Errors: []string{}}

	event, err := s.eventRepository.Find(ctx, eventID)
	if err != nil {
		return report, err
	}
	report.EventName = event.Name

	if !event.AtlasProvisioning.AutoCleanupOnEventEnd {
		s.logger.InfoContext(ctx, "Auto cleanup disabled for event", "eventId", eventID)
		return report, nil
	}

	clusters, err := s.clusterService.FindActiveByEvent(ctx, eventID)
	if err != nil {
		return report, err
	}
	report.ClustersFound = len(clusters)

	for _, cluster := range clusters {
		err := s.clusterService.Delete(ctx, cluster.ID)
		if err != nil {
			s.logger.ErrorContext(ctx, "Failed to delete cluster during cleanup", "eventId", eventID, "clusterId", cluster.ID, "teamId", cluster.TeamID, "error", err)
			report.Errors = append(report.Errors, fmt.Sprintf("cluster %s of team %s: %v", cluster.ID, cluster.TeamID, err))
			metrics.RecordCleanup(metrics.ResultError)
			continue
		}
		report.ClustersDeleted++
		metrics.RecordCleanup(metrics.ResultSuccess)
	}

	return report, nil
}

// RunScheduledCleanup cleans up every event returned by FindEventsNeedingCleanup. Events which
// can't be cleaned up are logged and skipped.
func (s *Service) RunScheduledCleanup(ctx context.Context) ([]Report, error) {
	eventIDs, err := s.FindEventsNeedingCleanup(ctx)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Starting scheduled cleanup", "events", len(eventIDs))

	reports := make([]Report, 0, len(eventIDs))
	for _, eventID := range eventIDs {
		report, err := s.CleanupEventClusters(ctx, eventID)
		if err != nil {
			s.logger.ErrorContext(ctx, "Failed to clean up event", "eventId", eventID, "error", err)
			continue
		}
		reports = append(reports, report)
	}

	s.logger.InfoContext(ctx, "Scheduled cleanup ended", "events", len(reports))
	return reports, nil
}

// OnEventConcluded cleans up the clusters of an event which just concluded.
func (s *Service) OnEventConcluded(ctx context.Context, eventID string) {
	report, err := s.CleanupEventClusters(ctx, eventID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to clean up concluded event", "eventId", eventID, "error", err)
		return
	}

	s.logger.InfoContext(ctx, "Cleaned up concluded event",
		"eventId", eventID,
		"clustersFound", report.ClustersFound,
		"clustersDeleted", report.ClustersDeleted,
		"errors", len(report.Errors),
	)
}

// HandleEventStatusChange starts OnEventConcluded in the background if the event transitioned into
// concluded. It returns whether a cleanup was started.
func (s *Service) HandleEventStatusChange(ctx context.Context, eventID string, previous, current model.EventStatus) bool {
	if current != model.EventStatusConcluded || previous == model.EventStatusConcluded {
		return false
	}

	ctx = context.WithoutCancel(ctx)
	s.running.Add(1)
	go func() {
		defer s.running.Done()
		s.OnEventConcluded(ctx, eventID)
	}()

	return true
}

// Wait blocks until every cleanup started by HandleEventStatusChange has finished.
func (s *Service) Wait() {
	s.running.Wait()
}

// Run calls RunScheduledCleanup every interval until ctx is done.
func (s *Service) Run(ctx context.Context, interval time.Duration) error {
	s.logger.InfoContext(ctx, "Cleanup scheduler started", "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.InfoContext(ctx, "Cleanup scheduler stopped")
			return nil
		case <-ticker.C:
			_, err := s.RunScheduledCleanup(ctx)
			if err != nil {
				s.logger.ErrorContext(ctx, "Scheduled cleanup failed", "error", err)
			}
		}
	}
}
