package middleware

import (
	"log/slog"

	"github.com/dhis2-sre/im-atlas/internal/errdef"
	"github.com/dhis2-sre/im-atlas/internal/handler"
	"github.com/gin-gonic/gin"
)

func NewAuthorization(logger *slog.Logger) AuthorizationMiddleware {
	return AuthorizationMiddleware{logger: logger}
}

type AuthorizationMiddleware struct {
	logger *slog.Logger
}

// RequireAdministrator has to run after TokenAuthentication.
func (m AuthorizationMiddleware) RequireAdministrator(c *gin.Context) {
	user, err := handler.GetUserFromContext(c)
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}

	if !user.IsAdministrator() {
		m.logger.WarnContext(c.Request.Context(), "User tried to access administrator restricted endpoint", "userId", user.ID)
		_ = c.Error(errdef.NewForbidden("administrator access denied"))
		c.Abort()
		return
	}

	c.Next()
}
