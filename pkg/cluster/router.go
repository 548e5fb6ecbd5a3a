package cluster

import (
	"github.com/gin-gonic/gin"
)

type AuthenticationMiddleware interface {
	TokenAuthentication(context *gin.Context)
}

func Routes(r gin.IRouter, authenticationMiddleware AuthenticationMiddleware, handler Handler) {
	tokenAuthenticationRouter := r.Group("")
	tokenAuthenticationRouter.Use(authenticationMiddleware.TokenAuthentication)
	tokenAuthenticationRouter.POST("/events/:eventId/teams/:teamId/clusters", handler.Provision)
	tokenAuthenticationRouter.GET("/clusters", handler.FindAll)
	tokenAuthenticationRouter.GET("/clusters/:id", handler.Find)
	tokenAuthenticationRouter.POST("/clusters/:id/refresh", handler.Refresh)
	tokenAuthenticationRouter.DELETE("/clusters/:id", handler.Delete)
}
