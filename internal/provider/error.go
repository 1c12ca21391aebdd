package provider

import "fmt"

// Error is a failure reported by the aggregation provider, carrying its
// provider-specific error code alongside the message.
type Error struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("provider error %s: %s (http %d)", e.Code, e.Message, e.StatusCode)
}
