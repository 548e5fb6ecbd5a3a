package handler

import "github.com/dhis2-sre/im-atlas/pkg/model"

// CanReadCluster returns true if the user is an administrator, provisioned the cluster or is a
// member of the team owning it.
func CanReadCluster(user model.User, cluster model.Cluster) bool {
	return user.IsAdministrator() ||
		isOwner(user, cluster) ||
		user.IsMemberOf(cluster.TeamID)
}

// CanWriteCluster returns true if the user is an administrator or provisioned the cluster.
func CanWriteCluster(user model.User, cluster model.Cluster) bool {
	return user.IsAdministrator() || isOwner(user, cluster)
}

func isOwner(user model.User, cluster model.Cluster) bool {
	return user.ID != "" && user.ID == cluster.ProvisionedBy
}
