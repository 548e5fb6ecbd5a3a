package model

import (
	"context"
	"slices"
)

const AdministratorGroupName = "administrators"

// User is the actor extracted from the access token. Users are managed by the platform, this
// service never persists them.
type User struct {
	ID     string   `json:"id"`
	Email  string   `json:"email"`
	Groups []string `json:"groups"`
}

func (u User) IsMemberOf(group string) bool {
	return slices.Contains(u.Groups, group)
}

func (u User) IsAdministrator() bool {
	return u.IsMemberOf(AdministratorGroupName)
}

type ctxKey int

var userKey ctxKey

// NewContextWithUser returns a new [context.Context] that carries the given user.
func NewContextWithUser(ctx context.Context, user User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// GetUserFromContext returns the user stored in the ctx, if any.
func GetUserFromContext(ctx context.Context) (User, bool) {
	user, ok := ctx.Value(userKey).(User)
	return user, ok
}
