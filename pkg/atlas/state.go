package atlas

import "github.com/dhis2-sre/im-atlas/pkg/model"

// Cluster states as reported in the stateName of a cluster.
const (
	StateIdle      = "IDLE"
	StateCreating  = "CREATING"
	StateUpdating  = "UPDATING"
	StateRepairing = "REPAIRING"
	StateDeleting  = "DELETING"
	StateDeleted   = "DELETED"
)

var stateToStatus = map[string]model.ClusterStatus{
	StateIdle:      model.ClusterStatusActive,
	StateCreating:  model.ClusterStatusCreating,
	StateUpdating:  model.ClusterStatusActive,
	StateRepairing: model.ClusterStatusActive,
	StateDeleting:  model.ClusterStatusDeleting,
	StateDeleted:   model.ClusterStatusDeleted,
}

// MapStateToStatus maps an Atlas cluster state to the status of the local cluster record. States
// which aren't known are mapped to active.
func MapStateToStatus(state string) model.ClusterStatus {
	if status, ok := stateToStatus[state]; ok {
		return status
	}
	return model.ClusterStatusActive
}
