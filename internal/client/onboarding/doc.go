// Package onboarding implements the boarding-pass onboarding flow as an
// explicit state machine.
//
// # Overview
//
// A Session is a plain value describing where the user is in the flow:
//
//	Start -> DiscordLinked -> TwitterLinked -> Verified -> WalletConnected -> Submitted
//	Start -> RecoveryCheck -> AllowListedDirect
//
// The second line is the branch for returning users who only want to look up
// their allow-list status by wallet address.
//
// Transition is pure: it takes a Session and an Event and returns the next
// Session. Side effects that must follow a state change (fetching the Twitter
// authorization URL, checking the allow-list by address) are described by
// Reactions and executed by the caller. Machine wraps a Session behind a
// mutex for use from concurrent dispatchers.
//
// UI affordances ("show verify", "show claim", ...) are methods on Session
// derived from the phase and outcome fields; they are never stored.
package onboarding
