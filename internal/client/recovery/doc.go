// Package recovery turns an incoming redirect plus the locally persisted
// progress into onboarding events, so the multi-redirect OAuth flow
// survives the client being restarted between steps.
//
// The persisted values are advisory: they are never trusted for
// eligibility, only for re-seeding the session and for display.
package recovery
