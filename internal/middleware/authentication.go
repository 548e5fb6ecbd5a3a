package middleware

import (
	"log/slog"

	"github.com/dhis2-sre/im-atlas/internal/errdef"
	"github.com/dhis2-sre/im-atlas/pkg/model"
	"github.com/dhis2-sre/im-atlas/pkg/token"
	"github.com/gin-gonic/gin"
	"github.com/lestrrat-go/jwx/v2/jwk"
)

// NewAuthentication verifies tokens issued by the platform using the given RSA public key.
func NewAuthentication(logger *slog.Logger, publicKey jwk.Key) AuthenticationMiddleware {
	return AuthenticationMiddleware{
		logger:    logger,
		publicKey: publicKey,
	}
}

type AuthenticationMiddleware struct {
	logger    *slog.Logger
	publicKey jwk.Key
}

// TokenAuthentication puts the user of a valid bearer token on the request context.
func (m AuthenticationMiddleware) TokenAuthentication(c *gin.Context) {
	user, err := token.ParseRequest(c.Request, m.publicKey)
	if err != nil {
		m.logger.InfoContext(c.Request.Context(), "Token not valid", "error", err)
		_ = c.Error(errdef.NewUnauthorized("token not valid"))
		c.Abort()
		return
	}

	ctx := model.NewContextWithUser(c.Request.Context(), user)
	c.Request = c.Request.WithContext(ctx)
	c.Next()
}
