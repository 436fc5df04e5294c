// Package client talks to the allow-list backend and bootstraps the local
// SQLite database.
//
// The Client interface is the transport contract used by the onboarding
// service; HTTPClient implements it over JSON/HTTP. Failures are mapped to
// sentinel errors that callers match with errors.Is: ErrUnavailable when the
// backend cannot be reached, ErrRejected when it answers with an error body,
// and ErrMalformedResponse when the body cannot be understood. Deadlines
// surface as context.DeadlineExceeded in addition to ErrUnavailable.
package client
