package onboarding

// Event is a tagged input to Transition. The set of events is closed: only
// the types declared in this file are accepted.
type Event interface {
	Name() string
	isEvent()
}

// AccountConnected carries the address returned by the wallet provider.
type AccountConnected struct {
	Address string
}

// DiscordLinked carries a Discord authorization code, from the redirect or
// from the persisted store.
type DiscordLinked struct {
	Code string
}

// TwitterAuthURLReady carries the URL for step one of Twitter OAuth.
type TwitterAuthURLReady struct {
	URL string
}

// TwitterLinked carries the request token and verifier from the Twitter redirect.
type TwitterLinked struct {
	Token    string
	Verifier string
}

// VerifyResult is the backend's answer to the Discord/Twitter verification.
type VerifyResult struct {
	AllowListed         bool
	DiscordUsername     string
	TwitterUsername     string
	TwitterID           string
	DiscordRefreshToken string
	Message             string
}

// AllowListResult is the backend's answer to an allow-list lookup by address.
type AllowListResult struct {
	AllowListed     bool
	TwitterUsername string
	Message         string
}

// SubmitResult is the backend's answer to the wallet submission.
type SubmitResult struct {
	Success bool
	Message string
}

// RecoveryCheckRequested enters the returning-user branch.
type RecoveryCheckRequested struct{}

// BeginBusy marks an external call as in flight.
type BeginBusy struct{}

// EndBusy clears the in-flight marker.
type EndBusy struct{}

// Failed records an error message without discarding any other state.
type Failed struct {
	Message string
}

// Reset returns the session to its initial value.
type Reset struct{}

func (AccountConnected) Name() string       { return "AccountConnected" }
func (DiscordLinked) Name() string          { return "DiscordLinked" }
func (TwitterAuthURLReady) Name() string    { return "TwitterAuthURLReady" }
func (TwitterLinked) Name() string          { return "TwitterLinked" }
func (VerifyResult) Name() string           { return "VerifyResult" }
func (AllowListResult) Name() string        { return "AllowListResult" }
func (SubmitResult) Name() string           { return "SubmitResult" }
func (RecoveryCheckRequested) Name() string { return "RecoveryCheckRequested" }
func (BeginBusy) Name() string              { return "BeginBusy" }
func (EndBusy) Name() string                { return "EndBusy" }
func (Failed) Name() string                 { return "Failed" }
func (Reset) Name() string                  { return "Reset" }

func (AccountConnected) isEvent()       {}
func (DiscordLinked) isEvent()          {}
func (TwitterAuthURLReady) isEvent()    {}
func (TwitterLinked) isEvent()          {}
func (VerifyResult) isEvent()           {}
func (AllowListResult) isEvent()        {}
func (SubmitResult) isEvent()           {}
func (RecoveryCheckRequested) isEvent() {}
func (BeginBusy) isEvent()              {}
func (EndBusy) isEvent()                {}
func (Failed) isEvent()                 {}
func (Reset) isEvent()                  {}
