package main

import (
	"fmt"

	"github.com/dhis2-sre/im-atlas/pkg/cluster"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

type printerFor func(cmd *cobra.Command) printer

// Cleanup returns the cleanup command.
func Cleanup(factory servicesFactory, printerFor printerFor) *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Clean up the clusters of every concluded event",
		Long: `Cleanup deletes the clusters of concluded events with auto cleanup enabled.

This is what the service runs on a schedule. Events which can't be cleaned up are
logged and skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := factory()
			if err != nil {
				return err
			}

			reports, err := s.cleanup.RunScheduledCleanup(cmd.Context())
			if err != nil {
				return err
			}

			return printerFor(cmd)(reports)
		},
	}
}

// CleanupEvent returns the cleanup-event command.
func CleanupEvent(factory servicesFactory, printerFor printerFor) *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup-event EVENT_ID",
		Short: "Clean up the clusters of one event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := factory()
			if err != nil {
				return err
			}

			report, err := s.cleanup.CleanupEventClusters(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			return printerFor(cmd)(report)
		},
	}
}

// List returns the list command.
func List(factory servicesFactory, printerFor printerFor) *cobra.Command {
	var filter cluster.Filter

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List clusters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := factory()
			if err != nil {
				return err
			}

			clusters, err := s.cluster.FindAll(cmd.Context(), filter)
			if err != nil {
				return err
			}

			return printerFor(cmd)(clusters)
		},
	}

	cmd.Flags().StringVar(&filter.EventID, "event", "", "Only list clusters of this event")
	cmd.Flags().StringVar(&filter.TeamID, "team", "", "Only list clusters of this team")

	return cmd
}

// Refresh returns the refresh command.
func Refresh(factory servicesFactory, printerFor printerFor) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh CLUSTER_ID",
		Short: "Read the state of a cluster from Atlas and store it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseClusterID(args[0])
			if err != nil {
				return err
			}

			s, err := factory()
			if err != nil {
				return err
			}

			status, err := s.cluster.RefreshStatus(cmd.Context(), id)
			if err != nil {
				return err
			}

			return printerFor(cmd)(status)
		},
	}
}

// Delete returns the delete command.
func Delete(factory servicesFactory, printerFor printerFor) *cobra.Command {
	return &cobra.Command{
		Use:   "delete CLUSTER_ID",
		Short: "Delete a cluster and its Atlas project",
		Long: `Delete removes the Atlas cluster and the project it lives in.

WARNING: This operation is irreversible. All data stored in the cluster will be lost.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseClusterID(args[0])
			if err != nil {
				return err
			}

			s, err := factory()
			if err != nil {
				return err
			}

			err = s.cluster.Delete(cmd.Context(), id)
			if err != nil {
				return err
			}

			return printerFor(cmd)(map[string]string{"id": id.String(), "status": "deleted"})
		},
	}
}

func parseClusterID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.UUID{}, fmt.Errorf("invalid cluster id %q: %v", s, err)
	}
	return id, nil
}
