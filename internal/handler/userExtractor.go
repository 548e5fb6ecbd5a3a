package handler

import (
	"github.com/dhis2-sre/im-atlas/internal/errdef"
	"github.com/dhis2-sre/im-atlas/pkg/model"
	"github.com/gin-gonic/gin"
)

// GetUserFromContext returns the user put on the request context by the authentication middleware.
func GetUserFromContext(c *gin.Context) (model.User, error) {
	user, ok := model.GetUserFromContext(c.Request.Context())
	if !ok {
		return model.User{}, errdef.NewUnauthorized("user not found on context")
	}
	return user, nil
}
