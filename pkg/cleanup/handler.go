package cleanup

import (
	"net/http"

	"github.com/dhis2-sre/im-atlas/internal/handler"
	"github.com/dhis2-sre/im-atlas/pkg/model"
	"github.com/gin-gonic/gin"
)

func NewHandler(cleanupService *Service) Handler {
	return Handler{cleanupService}
}

type Handler struct {
	cleanupService *Service
}

// Cleanup event clusters
func (h Handler) Cleanup(c *gin.Context) {
	// swagger:route POST /events/{eventId}/cleanup cleanupEvent
	//
	// Clean up event clusters
	//
	// Delete every cluster of the event which isn't deleted or failed. Requires the event to have auto cleanup enabled.
	//
	// security:
	//   oauth2:
	//
	// responses:
	//   200: CleanupReport
	//   401: Error
	//   403: Error
	//   404: Error
	report, err := h.cleanupService.CleanupEventClusters(c.Request.Context(), c.Param("eventId"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, report)
}

type StatusChangeRequest struct {
	PreviousStatus model.EventStatus `json:"previousStatus"`
	Status         model.EventStatus `json:"status" binding:"required,oneOf=draft upcoming active concluded"`
}

type StatusChangeResponse struct {
	CleanupStarted bool `json:"cleanupStarted"`
}

// StatusChange notifies about an event status change
func (h Handler) StatusChange(c *gin.Context) {
	// swagger:route POST /events/{eventId}/status-changes eventStatusChange
	//
	// Event status change
	//
	// Notify about an event status change. Clusters are cleaned up in the background if the event concluded.
	//
	// security:
	//   oauth2:
	//
	// responses:
	//   202: StatusChangeResponse
	//   400: Error
	//   401: Error
	//   403: Error
	//   415: Error
	var request StatusChangeRequest
	if err := handler.DataBinder(c, &request); err != nil {
		_ = c.Error(err)
		return
	}

	started := h.cleanupService.HandleEventStatusChange(c.Request.Context(), c.Param("eventId"), request.PreviousStatus, request.Status)

	c.JSON(http.StatusAccepted, StatusChangeResponse{CleanupStarted: started})
}
