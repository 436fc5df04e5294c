package onboarding

// Phase is a named state of the onboarding flow.
type Phase int

const (
	PhaseStart Phase = iota
	PhaseDiscordLinked
	PhaseTwitterLinked
	PhaseVerified
	PhaseWalletConnected
	PhaseSubmitted
	PhaseRecoveryCheck
	PhaseAllowListedDirect
)

var phaseNames = map[Phase]string{
	PhaseStart:             "start",
	PhaseDiscordLinked:     "discord_linked",
	PhaseTwitterLinked:     "twitter_linked",
	PhaseVerified:          "verified",
	PhaseWalletConnected:   "wallet_connected",
	PhaseSubmitted:         "submitted",
	PhaseRecoveryCheck:     "recovery_check",
	PhaseAllowListedDirect: "allowlisted_direct",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return "unknown"
}

// InRecoveryBranch reports whether p belongs to the returning-user branch.
func (p Phase) InRecoveryBranch() bool {
	return p == PhaseRecoveryCheck || p == PhaseAllowListedDirect
}

// Tristate is an optional boolean: unknown until a server says otherwise.
type Tristate int

const (
	Unknown Tristate = iota
	Yes
	No
)

// TristateOf converts a server boolean.
func TristateOf(b bool) Tristate {
	if b {
		return Yes
	}
	return No
}

func (t Tristate) String() string {
	switch t {
	case Yes:
		return "yes"
	case No:
		return "no"
	default:
		return "unknown"
	}
}
