package atlas_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dhis2-sre/im-atlas/pkg/atlas"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mediaType = "application/vnd.atlas.2023-02-01+json"

func newClient(t *testing.T, handler http.HandlerFunc) *atlas.Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := atlas.New(atlas.ClientConfig{
		OrgID:   "org-1",
		BaseURL: server.URL + "/api/atlas/v2",
	}, atlas.WithHTTPClient(server.Client()))
	require.NoError(t, err)
	return client
}

func TestNew(t *testing.T) {
	t.Run("RequiresOrgID", func(t *testing.T) {
		_, err := atlas.New(atlas.ClientConfig{PublicKey: "public", PrivateKey: "private"})

		assert.ErrorContains(t, err, "organization id is required")
	})

	t.Run("RequiresKeys", func(t *testing.T) {
		_, err := atlas.New(atlas.ClientConfig{OrgID: "org-1"})

		assert.ErrorContains(t, err, "public and private key are required")
	})

	t.Run("CreatesDigestClient", func(t *testing.T) {
		client, err := atlas.New(atlas.ClientConfig{OrgID: "org-1", PublicKey: "public", PrivateKey: "private"})

		require.NoError(t, err)
		assert.NotNil(t, client)
	})
}

func TestCreateProject(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/atlas/v2/groups", r.URL.Path)
		assert.Equal(t, mediaType, r.Header.Get("Accept"))
		assert.Equal(t, mediaType, r.Header.Get("Content-Type"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "hackathon-d4e5f6-d6c5b4", body["name"])
		assert.Equal(t, "org-1", body["orgId"])

		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id":"p-1","name":"hackathon-d4e5f6-d6c5b4","orgId":"org-1"}`)
	})

	project, err := client.CreateProject(context.Background(), "hackathon-d4e5f6-d6c5b4")

	require.NoError(t, err)
	assert.Equal(t, "p-1", project.ID)
	assert.Equal(t, "hackathon-d4e5f6-d6c5b4", project.Name)
}

func TestGetProjectByNameNotFound(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/atlas/v2/groups/byName/hackathon-missing", r.URL.Path)

		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"detail":"No group with name hackathon-missing exists.","error":404,"errorCode":"GROUP_NAME_NOT_FOUND","reason":"Not Found"}`)
	})

	_, err := client.GetProjectByName(context.Background(), "hackathon-missing")

	require.Error(t, err)
	assert.True(t, atlas.IsNotFound(err))
	assert.False(t, atlas.IsConflict(err))

	var atlasErr *atlas.Error
	require.True(t, errors.As(err, &atlasErr))
	assert.Equal(t, http.StatusNotFound, atlasErr.StatusCode)
	assert.Equal(t, "GROUP_NAME_NOT_FOUND", atlasErr.ErrorCode)
	assert.Equal(t, "Not Found", atlasErr.Reason)
	assert.JSONEq(t, `{"detail":"No group with name hackathon-missing exists.","error":404,"errorCode":"GROUP_NAME_NOT_FOUND","reason":"Not Found"}`, string(atlasErr.Payload))
	assert.EqualError(t, err, "atlas API error 404 (GROUP_NAME_NOT_FOUND): No group with name hackathon-missing exists.")
}

func TestErrorWithoutJSONBody(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, "upstream unavailable\n")
	})

	err := client.DeleteProject(context.Background(), "p-1")

	assert.Equal(t, http.StatusBadGateway, atlas.StatusCode(err))
	assert.EqualError(t, err, "atlas API error 502: upstream unavailable")
}

func TestDeleteProjectConflict(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/atlas/v2/groups/p-1", r.URL.Path)

		w.WriteHeader(http.StatusConflict)
		_, _ = io.WriteString(w, `{"error":409,"errorCode":"CANNOT_CLOSE_GROUP_ACTIVE_ATLAS_CLUSTERS"}`)
	})

	err := client.DeleteProject(context.Background(), "p-1")

	assert.True(t, atlas.IsConflict(err))
}

func TestNoContent(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/atlas/v2/groups/p-1/clusters/hackathon-cluster", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})

	err := client.DeleteCluster(context.Background(), "p-1", atlas.ClusterName)

	assert.NoError(t, err)
}

func TestTransportError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client, err := atlas.New(atlas.ClientConfig{OrgID: "org-1", BaseURL: url}, atlas.WithHTTPClient(http.DefaultClient))
	require.NoError(t, err)

	_, err = client.GetCluster(context.Background(), "p-1", atlas.ClusterName)

	require.Error(t, err)
	assert.ErrorContains(t, err, "atlas request failed: GET /groups/p-1/clusters/hackathon-cluster")
	assert.Equal(t, 0, atlas.StatusCode(err))
}

func TestCreateFreeCluster(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/atlas/v2/groups/p-1/clusters", r.URL.Path)

		var body struct {
			Name             string                  `json:"name"`
			ClusterType      string                  `json:"clusterType"`
			ReplicationSpecs []atlas.ReplicationSpec `json:"replicationSpecs"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "hackathon-cluster", body.Name)
		assert.Equal(t, "REPLICASET", body.ClusterType)
		require.Len(t, body.ReplicationSpecs, 1)
		require.Len(t, body.ReplicationSpecs[0].RegionConfigs, 1)
		region := body.ReplicationSpecs[0].RegionConfigs[0]
		assert.Equal(t, "TENANT", region.ProviderName)
		assert.Equal(t, "AWS", region.BackingProviderName)
		assert.Equal(t, "US_EAST_1", region.RegionName)
		assert.Equal(t, "M0", region.ElectableSpecs.InstanceSize)

		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{
			"id": "c-1",
			"name": "hackathon-cluster",
			"stateName": "CREATING",
			"mongoDBVersion": "8.0.4",
			"replicationSpecs": [{"regionConfigs": [{"providerName": "TENANT", "backingProviderName": "AWS", "regionName": "US_EAST_1", "electableSpecs": {"instanceSize": "M0"}}]}]
		}`)
	})

	cluster, err := client.CreateFreeCluster(context.Background(), "p-1", atlas.CreateClusterRequest{
		Name:         atlas.ClusterName,
		ProviderName: "AWS",
		RegionName:   "US_EAST_1",
	})

	require.NoError(t, err)
	assert.Equal(t, "c-1", cluster.ID)
	assert.Equal(t, atlas.StateCreating, cluster.StateName)
	assert.Equal(t, "AWS", cluster.Provider())
	assert.Equal(t, "US_EAST_1", cluster.Region())
}

func TestGetCluster(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		_, _ = io.WriteString(w, `{
			"id": "c-1",
			"name": "hackathon-cluster",
			"stateName": "IDLE",
			"mongoDBVersion": "8.0.4",
			"connectionStrings": {"standard": "mongodb://a:27017/?ssl=true", "standardSrv": "mongodb+srv://c.mongodb.net"}
		}`)
	})

	cluster, err := client.GetCluster(context.Background(), "p-1", atlas.ClusterName)

	require.NoError(t, err)
	assert.Equal(t, "IDLE", cluster.StateName)
	assert.Equal(t, "mongodb+srv://c.mongodb.net", cluster.ConnectionStrings.StandardSrv)
	assert.Equal(t, "mongodb://a:27017/?ssl=true", cluster.ConnectionStrings.Standard)
	assert.Equal(t, "", cluster.Provider())
}

func TestDatabaseUsers(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			assert.Equal(t, "/api/atlas/v2/groups/p-1/databaseUsers", r.URL.Path)

			var user atlas.DatabaseUser
			require.NoError(t, json.NewDecoder(r.Body).Decode(&user))
			assert.Equal(t, "team-d6c5b4", user.Username)
			assert.Equal(t, "secret", user.Password)
			assert.Equal(t, "admin", user.DatabaseName)
			assert.Equal(t, []atlas.Role{{RoleName: "readWriteAnyDatabase", DatabaseName: "admin"}}, user.Roles)
			assert.Equal(t, []atlas.Scope{{Name: "hackathon-cluster", Type: "CLUSTER"}}, user.Scopes)

			w.WriteHeader(http.StatusCreated)
			_, _ = io.WriteString(w, `{"username":"team-d6c5b4","databaseName":"admin"}`)
		case http.MethodGet:
			assert.Equal(t, "/api/atlas/v2/groups/p-1/databaseUsers", r.URL.Path)
			assert.Equal(t, "500", r.URL.Query().Get("itemsPerPage"))

			_, _ = io.WriteString(w, `{"results":[{"username":"team-d6c5b4","databaseName":"admin"}],"totalCount":1}`)
		case http.MethodPatch:
			assert.Equal(t, "/api/atlas/v2/groups/p-1/databaseUsers/admin/team-d6c5b4", r.URL.Path)

			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, map[string]string{"password": "rotated"}, body)

			_, _ = io.WriteString(w, `{"username":"team-d6c5b4","databaseName":"admin"}`)
		case http.MethodDelete:
			assert.Equal(t, "/api/atlas/v2/groups/p-1/databaseUsers/admin/team-d6c5b4", r.URL.Path)
			w.WriteHeader(http.StatusNoContent)
		}
	})
	ctx := context.Background()

	created, err := client.CreateDatabaseUser(ctx, "p-1", atlas.ClusterName, "team-d6c5b4", "secret")
	require.NoError(t, err)
	assert.Equal(t, "team-d6c5b4", created.Username)
	assert.Empty(t, created.Password)

	users, err := client.ListDatabaseUsers(ctx, "p-1")
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "team-d6c5b4", users[0].Username)

	require.NoError(t, client.UpdateDatabaseUserPassword(ctx, "p-1", "team-d6c5b4", "rotated"))

	require.NoError(t, client.DeleteDatabaseUser(ctx, "p-1", "team-d6c5b4"))
}

func TestIPAccessList(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			assert.Equal(t, "/api/atlas/v2/groups/p-1/accessList", r.URL.Path)

			var entries []atlas.AccessListEntry
			require.NoError(t, json.NewDecoder(r.Body).Decode(&entries))
			assert.Equal(t, []atlas.AccessListEntry{{CIDRBlock: "0.0.0.0/0", Comment: "open"}}, entries)

			w.WriteHeader(http.StatusCreated)
			_, _ = io.WriteString(w, `{"results":[{"cidrBlock":"0.0.0.0/0","comment":"open","groupId":"p-1"}],"totalCount":1}`)
		case http.MethodGet:
			_, _ = io.WriteString(w, `{"results":[{"cidrBlock":"0.0.0.0/0","comment":"open","groupId":"p-1"}],"totalCount":1}`)
		case http.MethodDelete:
			assert.Equal(t, "/api/atlas/v2/groups/p-1/accessList/0.0.0.0%2F0", r.URL.EscapedPath())
			w.WriteHeader(http.StatusNoContent)
		}
	})
	ctx := context.Background()

	added, err := client.AddIPAccessList(ctx, "p-1", atlas.AccessListEntry{CIDRBlock: atlas.OpenCIDRBlock, Comment: "open"})
	require.NoError(t, err)
	require.Len(t, added, 1)
	assert.Equal(t, "p-1", added[0].GroupID)

	entries, err := client.ListIPAccessList(ctx, "p-1")
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	require.NoError(t, client.DeleteIPAccessListEntry(ctx, "p-1", atlas.OpenCIDRBlock))
}
