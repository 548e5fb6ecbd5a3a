package atlas

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error is returned for every non-2xx response of the Atlas Admin API.
type Error struct {
	StatusCode int             `json:"-"`
	ErrorCode  string          `json:"errorCode"`
	Detail     string          `json:"detail"`
	Reason     string          `json:"reason"`
	Payload    json.RawMessage `json:"-"`
}

func (e *Error) Error() string {
	if e.ErrorCode != "" {
		return fmt.Sprintf("atlas API error %d (%s): %s", e.StatusCode, e.ErrorCode, e.Detail)
	}
	if e.Detail != "" {
		return fmt.Sprintf("atlas API error %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("atlas API error %d", e.StatusCode)
}

// newError parses the error body if it is JSON and falls back to using it as the detail.
func newError(statusCode int, body []byte) *Error {
	e := &Error{StatusCode: statusCode}
	if json.Valid(body) {
		e.Payload = body
		_ = json.Unmarshal(body, e)
		return e
	}

	e.Detail = strings.TrimSpace(string(body))
	return e
}

// StatusCode returns the HTTP status code of an Atlas API error found in err's chain or 0 if there
// is none.
func StatusCode(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.StatusCode
	}
	return 0
}

// IsNotFound returns true if err is an Atlas API error with status 404.
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

// IsConflict returns true if err is an Atlas API error with status 409.
func IsConflict(err error) bool {
	return StatusCode(err) == http.StatusConflict
}
