package handler

import (
	"testing"

	"github.com/dhis2-sre/im-atlas/pkg/model"
	"github.com/stretchr/testify/assert"
)

func TestCanWriteCluster_isOwner(t *testing.T) {
	user := model.User{ID: "user-1"}
	cluster := model.Cluster{ProvisionedBy: "user-1"}

	assert.True(t, CanWriteCluster(user, cluster))
}

func TestCanWriteCluster_isAdministrator(t *testing.T) {
	user := model.User{ID: "user-1", Groups: []string{"other group", model.AdministratorGroupName}}
	cluster := model.Cluster{ProvisionedBy: "user-2"}

	assert.True(t, CanWriteCluster(user, cluster))
}

func TestCanWriteCluster_isTeamMember(t *testing.T) {
	user := model.User{ID: "user-1", Groups: []string{"team-1"}}
	cluster := model.Cluster{TeamID: "team-1", ProvisionedBy: "user-2"}

	assert.False(t, CanWriteCluster(user, cluster))
}

func TestCanWriteCluster_emptyOwner(t *testing.T) {
	assert.False(t, CanWriteCluster(model.User{}, model.Cluster{}))
}

func TestCanReadCluster_isTeamMember(t *testing.T) {
	user := model.User{ID: "user-1", Groups: []string{"team-1"}}
	cluster := model.Cluster{TeamID: "team-1", ProvisionedBy: "user-2"}

	assert.True(t, CanReadCluster(user, cluster))
}

func TestCanReadCluster_AccessDenied(t *testing.T) {
	user := model.User{ID: "user-1", Groups: []string{"team-2"}}
	cluster := model.Cluster{TeamID: "team-1", ProvisionedBy: "user-2"}

	assert.False(t, CanReadCluster(user, cluster))
}
