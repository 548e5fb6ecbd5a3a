package atlas

import (
	"context"
	"net/http"
	"net/url"
)

const (
	authenticationDatabase = "admin"
	defaultRole            = "readWriteAnyDatabase"
)

type DatabaseUser struct {
	Username     string  `json:"username"`
	Password     string  `json:"password,omitempty"`
	DatabaseName string  `json:"databaseName"`
	GroupID      string  `json:"groupId,omitempty"`
	Roles        []Role  `json:"roles"`
	Scopes       []Scope `json:"scopes,omitempty"`
}

type Role struct {
	RoleName     string `json:"roleName"`
	DatabaseName string `json:"databaseName"`
}

type Scope struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// CreateDatabaseUser creates a user able to read and write any database of the given cluster.
func (c *Client) CreateDatabaseUser(ctx context.Context, projectID, clusterName, username, password string) (*DatabaseUser, error) {
	body := DatabaseUser{
		Username:     username,
		Password:     password,
		DatabaseName: authenticationDatabase,
		GroupID:      projectID,
		Roles:        []Role{{RoleName: defaultRole, DatabaseName: authenticationDatabase}},
		Scopes:       []Scope{{Name: clusterName, Type: "CLUSTER"}},
	}

	var user DatabaseUser
	path := "/groups/" + url.PathEscape(projectID) + "/databaseUsers"
	if err := c.request(ctx, "CreateDatabaseUser", http.MethodPost, path, body, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) ListDatabaseUsers(ctx context.Context, projectID string) ([]DatabaseUser, error) {
	var users page[DatabaseUser]
	path := "/groups/" + url.PathEscape(projectID) + "/databaseUsers" + listQuery
	if err := c.request(ctx, "ListDatabaseUsers", http.MethodGet, path, nil, &users); err != nil {
		return nil, err
	}
	return users.Results, nil
}

func (c *Client) DeleteDatabaseUser(ctx context.Context, projectID, username string) error {
	path := "/groups/" + url.PathEscape(projectID) + "/databaseUsers/" + authenticationDatabase + "/" + url.PathEscape(username)
	return c.request(ctx, "DeleteDatabaseUser", http.MethodDelete, path, nil, nil)
}

// UpdateDatabaseUserPassword replaces the password of an existing user.
func (c *Client) UpdateDatabaseUserPassword(ctx context.Context, projectID, username, password string) error {
	body := struct {
		Password string `json:"password"`
	}{Password: password}

	path := "/groups/" + url.PathEscape(projectID) + "/databaseUsers/" + authenticationDatabase + "/" + url.PathEscape(username)
	return c.request(ctx, "UpdateDatabaseUser", http.MethodPatch, path, body, nil)
}
