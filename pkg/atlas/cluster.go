package atlas

import (
	"context"
	"net/http"
	"net/url"
)

const (
	// FreeTierInstanceSize is the shared single node tier.
	FreeTierInstanceSize = "M0"
	tenantProviderName   = "TENANT"
)

type Cluster struct {
	ID                string            `json:"id"`
	Name              string            `json:"name"`
	GroupID           string            `json:"groupId"`
	StateName         string            `json:"stateName"`
	MongoDBVersion    string            `json:"mongoDBVersion"`
	ClusterType       string            `json:"clusterType"`
	ConnectionStrings ConnectionStrings `json:"connectionStrings"`
	ReplicationSpecs  []ReplicationSpec `json:"replicationSpecs"`
}

type ConnectionStrings struct {
	Standard    string `json:"standard"`
	StandardSrv string `json:"standardSrv"`
}

type ReplicationSpec struct {
	RegionConfigs []RegionConfig `json:"regionConfigs"`
}

type RegionConfig struct {
	ProviderName        string        `json:"providerName"`
	BackingProviderName string        `json:"backingProviderName,omitempty"`
	RegionName          string        `json:"regionName"`
	Priority            int           `json:"priority"`
	ElectableSpecs      HardwareSpecs `json:"electableSpecs"`
}

type HardwareSpecs struct {
	InstanceSize string `json:"instanceSize"`
}

// Provider returns the cloud provider backing the cluster. Free tier clusters report TENANT as
// provider and the actual cloud provider as backing provider.
func (c Cluster) Provider() string {
	region, ok := c.firstRegion()
	if !ok {
		return ""
	}
	if region.BackingProviderName != "" {
		return region.BackingProviderName
	}
	return region.ProviderName
}

func (c Cluster) Region() string {
	region, _ := c.firstRegion()
	return region.RegionName
}

func (c Cluster) firstRegion() (RegionConfig, bool) {
	if len(c.ReplicationSpecs) == 0 || len(c.ReplicationSpecs[0].RegionConfigs) == 0 {
		return RegionConfig{}, false
	}
	return c.ReplicationSpecs[0].RegionConfigs[0], true
}

type CreateClusterRequest struct {
	Name         string
	ProviderName string
	RegionName   string
}

type createClusterBody struct {
	Name                         string            `json:"name"`
	ClusterType                  string            `json:"clusterType"`
	ReplicationSpecs             []ReplicationSpec `json:"replicationSpecs"`
	TerminationProtectionEnabled bool              `json:"terminationProtectionEnabled"`
}

// CreateFreeCluster requests a single node free tier cluster. Atlas accepts the request and
// creates the cluster asynchronously, the returned cluster is in state CREATING.
func (c *Client) CreateFreeCluster(ctx context.Context, projectID string, request CreateClusterRequest) (*Cluster, error) {
	body := createClusterBody{
		Name:        request.Name,
		ClusterType: "REPLICASET",
		ReplicationSpecs: []ReplicationSpec{
			{
				RegionConfigs: []RegionConfig{
					{
						ProviderName:        tenantProviderName,
						BackingProviderName: request.ProviderName,
						RegionName:          request.RegionName,
						Priority:            7,
						ElectableSpecs:      HardwareSpecs{InstanceSize: FreeTierInstanceSize},
					},
				},
			},
		},
	}

	var cluster Cluster
	path := "/groups/" + url.PathEscape(projectID) + "/clusters"
	if err := c.request(ctx, "CreateCluster", http.MethodPost, path, body, &cluster); err != nil {
		return nil, err
	}
	return &cluster, nil
}

func (c *Client) GetCluster(ctx context.Context, projectID, name string) (*Cluster, error) {
	var cluster Cluster
	path := "/groups/" + url.PathEscape(projectID) + "/clusters/" + url.PathEscape(name)
	if err := c.request(ctx, "GetCluster", http.MethodGet, path, nil, &cluster); err != nil {
		return nil, err
	}
	return &cluster, nil
}

func (c *Client) DeleteCluster(ctx context.Context, projectID, name string) error {
	path := "/groups/" + url.PathEscape(projectID) + "/clusters/" + url.PathEscape(name)
	return c.request(ctx, "DeleteCluster", http.MethodDelete, path, nil, nil)
}
