package cleanup

import (
	"github.com/gin-gonic/gin"
)

type AuthenticationMiddleware interface {
	TokenAuthentication(context *gin.Context)
}

type AuthorizationMiddleware interface {
	RequireAdministrator(context *gin.Context)
}

func Routes(r gin.IRouter, authenticationMiddleware AuthenticationMiddleware, authorizationMiddleware AuthorizationMiddleware, handler Handler) {
	administratorRouter := r.Group("")
	administratorRouter.Use(authenticationMiddleware.TokenAuthentication, authorizationMiddleware.RequireAdministrator)
	administratorRouter.POST("/events/:eventId/cleanup", handler.Cleanup)
	administratorRouter.POST("/events/:eventId/status-changes", handler.StatusChange)
}
