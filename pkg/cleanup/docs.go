package cleanup

// swagger:parameters cleanupEvent
type _ struct {
	// in: path
	// required: true
	EventID string `json:"eventId"`
}

// swagger:parameters eventStatusChange
type _ struct {
	// in: path
	// required: true
	EventID string `json:"eventId"`

	// in: body
	// required: true
	Body StatusChangeRequest
}

// swagger:response CleanupReport
type _ struct {
	// in: body
	Body Report
}

// swagger:response StatusChangeResponse
type _ struct {
	// in: body
	Body StatusChangeResponse
}
