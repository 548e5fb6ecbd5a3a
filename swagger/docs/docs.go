// Package docs holds the swagger definitions shared by all routes.
package docs

// swagger:response Error
type Error struct {
	// The error message
	// in: body
	Message string
}
