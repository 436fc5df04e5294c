package onboarding

// Reaction is a follow-up external action implied by an accepted event.
type Reaction int

const (
	// ReactFetchTwitterAuthURL asks the backend for the Twitter OAuth URL.
	ReactFetchTwitterAuthURL Reaction = iota + 1
	// ReactCheckAllowList looks up the allow-list by wallet address.
	ReactCheckAllowList
)

func (r Reaction) String() string {
	switch r {
	case ReactFetchTwitterAuthURL:
		return "fetch_twitter_auth_url"
	case ReactCheckAllowList:
		return "check_allowlist"
	default:
		return "unknown"
	}
}

// Reactions lists the actions to run after e was accepted and produced next.
func Reactions(next Session, e Event) []Reaction {
	switch e.(type) {
	case DiscordLinked:
		if next.Phase == PhaseDiscordLinked && next.TwitterAuthURL == "" {
			return []Reaction{ReactFetchTwitterAuthURL}
		}
	case AccountConnected:
		if next.Phase == PhaseRecoveryCheck && next.WalletAddress != "" {
			return []Reaction{ReactCheckAllowList}
		}
	}
	return nil
}
