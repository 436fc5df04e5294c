package client

import (
	"errors"
	"fmt"
)

var (
	ErrUnavailable       = errors.New("server unavailable")
	ErrRejected          = errors.New("request rejected")
	ErrMalformedResponse = errors.New("malformed response")
)

// RejectedError carries the message the backend returned with an error status.
type RejectedError struct {
	Status  int
	Message string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("%s (%d): %s", ErrRejected, e.Status, e.Message)
}

func (e *RejectedError) Unwrap() error {
	return ErrRejected
}

// Message returns the text to show a user for err: the backend's own message
// for rejections, otherwise the error string.
func Message(err error) string {
	var rej *RejectedError
	if errors.As(err, &rej) && rej.Message != "" {
		return rej.Message
	}
	return err.Error()
}
