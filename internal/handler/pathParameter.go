package handler

import (
	"github.com/dhis2-sre/im-atlas/internal/errdef"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GetIDPathParameter parses the given path parameter as a UUID.
func GetIDPathParameter(c *gin.Context, parameter string) (uuid.UUID, error) {
	value := c.Param(parameter)
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, errdef.NewBadRequest("error parsing %q: %v", parameter, err)
	}
	return id, nil
}
