package atlas

import (
	"context"
	"net/http"
	"net/url"
)

// OpenCIDRBlock allows access from anywhere.
const OpenCIDRBlock = "0.0.0.0/0"

type AccessListEntry struct {
	CIDRBlock string `json:"cidrBlock,omitempty"`
	IPAddress string `json:"ipAddress,omitempty"`
	Comment   string `json:"comment,omitempty"`
	GroupID   string `json:"groupId,omitempty"`
}

// AddIPAccessList adds entries to the project access list. Atlas treats entries that already exist
// as no-ops.
func (c *Client) AddIPAccessList(ctx context.Context, projectID string, entries ...AccessListEntry) ([]AccessListEntry, error) {
	var result page[AccessListEntry]
	path := "/groups/" + url.PathEscape(projectID) + "/accessList"
	if err := c.request(ctx, "AddIPAccessList", http.MethodPost, path, entries, &result); err != nil {
		return nil, err
	}
	return result.Results, nil
}

func (c *Client) ListIPAccessList(ctx context.Context, projectID string) ([]AccessListEntry, error) {
	var result page[AccessListEntry]
	path := "/groups/" + url.PathEscape(projectID) + "/accessList" + listQuery
	if err := c.request(ctx, "ListIPAccessList", http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return result.Results, nil
}

// DeleteIPAccessListEntry removes an entry given either as CIDR block or IP address.
func (c *Client) DeleteIPAccessListEntry(ctx context.Context, projectID, entry string) error {
	path := "/groups/" + url.PathEscape(projectID) + "/accessList/" + url.PathEscape(entry)
	return c.request(ctx, "DeleteIPAccessListEntry", http.MethodDelete, path, nil, nil)
}
