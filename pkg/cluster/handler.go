package cluster

import (
	"net/http"

	"github.com/dhis2-sre/im-atlas/internal/errdef"
	"github.com/dhis2-sre/im-atlas/internal/handler"
	"github.com/dhis2-sre/im-atlas/pkg/model"
	"github.com/gin-gonic/gin"
)

func NewHandler(clusterService *Service) Handler {
	return Handler{clusterService}
}

type Handler struct {
	clusterService *Service
}

type ProvisionClusterRequest struct {
	ProjectID string `json:"projectId" binding:"required"`
	Provider  string `json:"provider" binding:"omitempty,oneOf=AWS GCP AZURE"`
	Region    string `json:"region"`
}

// Provision cluster
func (h Handler) Provision(c *gin.Context) {
	// swagger:route POST /events/{eventId}/teams/{teamId}/clusters provisionCluster
	//
	// Provision cluster
	//
	// Provision a free tier Atlas cluster for a team. The returned password is never shown again.
	//
	// security:
	//   oauth2:
	//
	// responses:
	//   201: ProvisionResult
	//   400: Error
	//   401: Error
	//   403: Error
	//   404: Error
	//   409: Error
	//   415: Error
	//   502: Error
	user, err := handler.GetUserFromContext(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	eventID := c.Param("eventId")
	teamID := c.Param("teamId")
	if !user.IsAdministrator() && !user.IsMemberOf(teamID) {
		_ = c.Error(errdef.NewForbidden("user %q is not a member of team %q", user.ID, teamID))
		return
	}

	var request ProvisionClusterRequest
	if err := handler.DataBinder(c, &request); err != nil {
		_ = c.Error(err)
		return
	}

	result, err := h.clusterService.Provision(c.Request.Context(), ProvisionRequest{
		EventID:   eventID,
		TeamID:    teamID,
		ProjectID: request.ProjectID,
		UserID:    user.ID,
		Provider:  request.Provider,
		Region:    request.Region,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// FindAll find all clusters
func (h Handler) FindAll(c *gin.Context) {
	// swagger:route GET /clusters findAllClusters
	//
	// Find all clusters
	//
	// Find all clusters the user can read, optionally filtered by event and team
	//
	// security:
	//   oauth2:
	//
	// responses:
	//   200: Clusters
	//   401: Error
	user, err := handler.GetUserFromContext(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	clusters, err := h.clusterService.FindAll(c.Request.Context(), Filter{
		EventID: c.Query("eventId"),
		TeamID:  c.Query("teamId"),
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	readable := make([]model.Cluster, 0, len(clusters))
	for _, cluster := range clusters {
		if handler.CanReadCluster(user, cluster) {
			readable = append(readable, cluster)
		}
	}

	c.JSON(http.StatusOK, readable)
}

// Find cluster by id
func (h Handler) Find(c *gin.Context) {
	// swagger:route GET /clusters/{id} findClusterById
	//
	// Find cluster
	//
	// Find a cluster by its id
	//
	// security:
	//   oauth2:
	//
	// responses:
	//   200: Cluster
	//   400: Error
	//   401: Error
	//   403: Error
	//   404: Error
	cluster, ok := h.authorizedCluster(c, handler.CanReadCluster)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, cluster)
}

// Refresh cluster status
func (h Handler) Refresh(c *gin.Context) {
	// swagger:route POST /clusters/{id}/refresh refreshClusterStatus
	//
	// Refresh cluster status
	//
	// Read the state of the cluster from Atlas and store it
	//
	// security:
	//   oauth2:
	//
	// responses:
	//   200: StatusResult
	//   400: Error
	//   401: Error
	//   403: Error
	//   404: Error
	//   502: Error
	cluster, ok := h.authorizedCluster(c, handler.CanReadCluster)
	if !ok {
		return
	}

	status, err := h.clusterService.RefreshStatus(c.Request.Context(), cluster.ID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, status)
}

// Delete cluster
func (h Handler) Delete(c *gin.Context) {
	// swagger:route DELETE /clusters/{id} deleteCluster
	//
	// Delete cluster
	//
	// Delete the Atlas cluster and its project
	//
	// security:
	//   oauth2:
	//
	// responses:
	//   204:
	//   400: Error
	//   401: Error
	//   403: Error
	//   404: Error
	cluster, ok := h.authorizedCluster(c, handler.CanWriteCluster)
	if !ok {
		return
	}

	err := h.clusterService.Delete(c.Request.Context(), cluster.ID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h Handler) authorizedCluster(c *gin.Context, allowed func(model.User, model.Cluster) bool) (model.Cluster, bool) {
	user, err := handler.GetUserFromContext(c)
	if err != nil {
		_ = c.Error(err)
		return model.Cluster{}, false
	}

	id, err := handler.GetIDPathParameter(c, "id")
	if err != nil {
		_ = c.Error(err)
		return model.Cluster{}, false
	}

	cluster, err := h.clusterService.Find(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return model.Cluster{}, false
	}

	if !allowed(user, cluster) {
		_ = c.Error(errdef.NewForbidden("access denied to cluster %q", cluster.ID))
		return model.Cluster{}, false
	}

	return cluster, true
}
