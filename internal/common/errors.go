// Package common defines sentinel errors and small helpers shared by the
// client and server halves of boardingpass. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors.
	ErrorValidation = errors.New("validation error")
	ErrorUpstream   = errors.New("upstream error")
)
