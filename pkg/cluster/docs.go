// Package cluster provisions, refreshes and tears down MongoDB Atlas clusters of hackathon teams.
//
// Every team taking part in an event can have one cluster which isn't deleted or failed. The
// Atlas project and cluster names are derived from the event and team ids so an interrupted
// provisioning is resumed by adopting what already exists in Atlas.
package cluster

import "github.com/dhis2-sre/im-atlas/pkg/model"

// swagger:parameters provisionCluster
type _ struct {
	// in: path
	// required: true
	EventID string `json:"eventId"`

	// in: path
	// required: true
	TeamID string `json:"teamId"`

	// in: body
	// required: true
	Body ProvisionClusterRequest
}

// swagger:parameters findClusterById refreshClusterStatus deleteCluster
type _ struct {
	// The cluster ID
	// in: path
	// required: true
	ID string `json:"id"`
}

// swagger:response Clusters
type ClustersResponse struct {
	// List of clusters
	// in: body
	Body []model.Cluster
}

// swagger:response Cluster
type _ struct {
	// in: body
	Body model.Cluster
}

// swagger:response ProvisionResult
type _ struct {
	// in: body
	Body ProvisionResult
}

// swagger:response StatusResult
type _ struct {
	// in: body
	Body StatusResult
}
