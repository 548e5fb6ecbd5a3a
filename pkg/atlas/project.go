package atlas

import (
	"context"
	"net/http"
	"net/url"
)

type Project struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	OrgID        string `json:"orgId"`
	ClusterCount int    `json:"clusterCount"`
}

type createProjectRequest struct {
	Name  string `json:"name"`
	OrgID string `json:"orgId"`
}

// CreateProject creates a project in the organization the client is configured with.
func (c *Client) CreateProject(ctx context.Context, name string) (*Project, error) {
	var project Project
	body := createProjectRequest{Name: name, OrgID: c.orgID}
	if err := c.request(ctx, "CreateProject", http.MethodPost, "/groups", body, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// GetProjectByName returns the project with the given name. A missing project results in an
// error satisfying [IsNotFound].
func (c *Client) GetProjectByName(ctx context.Context, name string) (*Project, error) {
	var project Project
	path := "/groups/byName/" + url.PathEscape(name)
	if err := c.request(ctx, "GetProjectByName", http.MethodGet, path, nil, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// DeleteProject deletes a project. Atlas answers 409 as long as the project still contains a
// cluster, including one that is being terminated.
func (c *Client) DeleteProject(ctx context.Context, projectID string) error {
	path := "/groups/" + url.PathEscape(projectID)
	return c.request(ctx, "DeleteProject", http.MethodDelete, path, nil, nil)
}
