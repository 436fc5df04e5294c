// Package services contains the backend's business logic: verifying linked
// accounts against the allow list, accepting wallet submissions and issuing
// boarding passes.
package services

import (
	"errors"
	"fmt"
)

// ErrMismatch means the linked accounts no longer match the stored member.
var ErrMismatch = errors.New("user information mismatch")

// RequestError is a rejection the API answers with HTTP 400 and Message.
type RequestError struct {
	Message string
	Err     error
}

func (e *RequestError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

func reject(message string, err error) error {
	return &RequestError{Message: message, Err: err}
}

// Rejection messages.
const (
	MsgInvalidPayload      = "Invalid payload."
	MsgInvalidRequest      = "Invalid request."
	MsgTwitterAuthFailed   = "Failed Twitter Authentication Request."
	MsgDiscordOAuthFailed  = "Bad Discord OAuth2 Response."
	MsgDiscordLookupFailed = "Bad Discord Lookup Response."
	MsgTwitterAccessFailed = "Bad Twitter Access Response."
	MsgTwitterLookupFailed = "Failed Twitter Lookup Request."
	MsgSneaky              = "Don't try to be sneaky."
	MsgMismatch            = "User information mismatch."
	MsgRoleFailed          = "Failed Role Allocation."
	MsgNotAllowListed      = "User is not allowlisted."
	MsgAlreadySubmitted    = "User has already submitted a wallet address."
	MsgAddressSubmitted    = "Address has been submitted."
	MsgAddressNotListed    = "Address is not allowlisted."
	MsgProfileNotPopulated = "Profile not populated."
)

func invalidAddress(addr string) string {
	return fmt.Sprintf("%s is not a valid Ethereum address.", addr)
}
