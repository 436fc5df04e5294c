package onboarding

// Profile holds the identifiers the backend returns after verification.
type Profile struct {
	DiscordUsername     string
	DiscordRefreshToken string
	TwitterUsername     string
	TwitterID           string
}

// Session is the in-memory state of one onboarding run. It is a value type:
// copies are independent and two sessions compare equal with ==.
type Session struct {
	Phase Phase

	WalletAddress   string
	DiscordCode     string
	TwitterAuthURL  string
	TwitterToken    string
	TwitterVerifier string

	AllowListed Tristate
	Submitted   Tristate
	Profile     Profile

	Busy      bool
	LastError string
	// Notice is the last negative message from the backend, such as
	// "User is not allowlisted.". It is informational, not an error.
	Notice string
}

// Initial returns the state of a fresh run.
func Initial() Session {
	return Session{}
}

// DiscordLinked reports whether a Discord authorization code has been recorded.
func (s Session) DiscordLinked() bool {
	switch s.Phase {
	case PhaseDiscordLinked, PhaseTwitterLinked, PhaseVerified, PhaseWalletConnected, PhaseSubmitted:
		return true
	}
	return false
}

// TwitterLinked reports whether the Twitter redirect has been recorded.
func (s Session) TwitterLinked() bool {
	switch s.Phase {
	case PhaseTwitterLinked, PhaseVerified, PhaseWalletConnected, PhaseSubmitted:
		return true
	}
	return false
}

// Verified reports whether the backend has answered the verification.
func (s Session) Verified() bool {
	switch s.Phase {
	case PhaseVerified, PhaseWalletConnected, PhaseSubmitted:
		return true
	}
	return false
}

// WalletConnected reports whether the wallet provider returned an address.
func (s Session) WalletConnected() bool {
	return s.WalletAddress != ""
}

func (s Session) ShowConnectDiscord() bool {
	return !s.Phase.InRecoveryBranch()
}

func (s Session) ShowConnectTwitter() bool {
	if s.Phase.InRecoveryBranch() {
		return false
	}
	return s.DiscordLinked() || s.AllowListed == Yes
}

func (s Session) ShowVerify() bool {
	return s.Phase == PhaseTwitterLinked
}

func (s Session) ShowNotAllowListed() bool {
	return s.AllowListed == No
}

func (s Session) ShowConnectWallet() bool {
	switch s.Phase {
	case PhaseVerified:
		return s.AllowListed == Yes
	case PhaseRecoveryCheck:
		return true
	}
	return false
}

func (s Session) ShowSubmit() bool {
	return s.Phase == PhaseWalletConnected
}

// ShowRecoveryEntry is the "Already submitted your wallet?" entry point.
func (s Session) ShowRecoveryEntry() bool {
	return s.Phase == PhaseStart
}

func (s Session) ShowClaim() bool {
	switch s.Phase {
	case PhaseSubmitted:
		return true
	case PhaseAllowListedDirect:
		return s.AllowListed == Yes
	}
	return false
}

// ClaimUsername is the Twitter username the claim link is built from.
func (s Session) ClaimUsername() string {
	return s.Profile.TwitterUsername
}
