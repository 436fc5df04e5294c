package onboarding

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownEvent signals a programming error: an event outside the
	// closed set was passed to Transition.
	ErrUnknownEvent = errors.New("unknown onboarding event")

	// ErrEventNotAllowed is returned when an event is not permitted in the
	// current phase. The session is returned unchanged.
	ErrEventNotAllowed = errors.New("event not allowed in current phase")
)

func notAllowed(s Session, e Event) error {
	return fmt.Errorf("%w: %s in phase %s", ErrEventNotAllowed, e.Name(), s.Phase)
}

// Transition applies e to s and returns the next session. It has no side
// effects; the same (s, e) pair always yields the same result.
func Transition(s Session, e Event) (Session, error) {
	switch ev := e.(type) {
	case Reset:
		return Initial(), nil

	case BeginBusy:
		s.Busy = true
		return s, nil

	case EndBusy:
		s.Busy = false
		return s, nil

	case Failed:
		s.LastError = ev.Message
		return s, nil

	case DiscordLinked:
		if ev.Code == "" || (s.Phase != PhaseStart && s.Phase != PhaseDiscordLinked) {
			return s, notAllowed(s, e)
		}
		s.DiscordCode = ev.Code
		s.Phase = PhaseDiscordLinked
		s.LastError = ""
		return s, nil

	case TwitterAuthURLReady:
		if ev.URL == "" || !s.DiscordLinked() {
			return s, notAllowed(s, e)
		}
		s.TwitterAuthURL = ev.URL
		s.LastError = ""
		return s, nil

	case TwitterLinked:
		if ev.Token == "" || ev.Verifier == "" {
			return s, notAllowed(s, e)
		}
		if s.Phase != PhaseDiscordLinked && s.Phase != PhaseTwitterLinked {
			return s, notAllowed(s, e)
		}
		s.TwitterToken = ev.Token
		s.TwitterVerifier = ev.Verifier
		s.Phase = PhaseTwitterLinked
		s.LastError = ""
		return s, nil

	case VerifyResult:
		if s.Phase != PhaseTwitterLinked {
			return s, notAllowed(s, e)
		}
		s.AllowListed = TristateOf(ev.AllowListed)
		s.Profile = Profile{
			DiscordUsername:     ev.DiscordUsername,
			DiscordRefreshToken: ev.DiscordRefreshToken,
			TwitterUsername:     ev.TwitterUsername,
			TwitterID:           ev.TwitterID,
		}
		s.Notice = ""
		if !ev.AllowListed {
			s.Notice = ev.Message
		}
		s.Phase = PhaseVerified
		s.LastError = ""
		return s, nil

	case AccountConnected:
		if ev.Address == "" {
			return s, notAllowed(s, e)
		}
		switch {
		case s.Phase == PhaseVerified && s.AllowListed == Yes:
			s.Phase = PhaseWalletConnected
		case s.Phase == PhaseRecoveryCheck:
		default:
			return s, notAllowed(s, e)
		}
		s.WalletAddress = ev.Address
		s.LastError = ""
		return s, nil

	case RecoveryCheckRequested:
		if s.Phase != PhaseStart {
			return s, notAllowed(s, e)
		}
		s.Phase = PhaseRecoveryCheck
		return s, nil

	case AllowListResult:
		if s.Phase != PhaseRecoveryCheck {
			return s, notAllowed(s, e)
		}
		s.AllowListed = TristateOf(ev.AllowListed)
		s.Profile.TwitterUsername = ev.TwitterUsername
		s.Notice = ""
		if !ev.AllowListed {
			s.Notice = ev.Message
		}
		s.Phase = PhaseAllowListedDirect
		s.LastError = ""
		return s, nil

	case SubmitResult:
		if s.Phase != PhaseWalletConnected {
			return s, notAllowed(s, e)
		}
		s.Submitted = TristateOf(ev.Success)
		if ev.Success {
			s.Phase = PhaseSubmitted
			s.Notice = ""
		} else {
			s.Notice = ev.Message
		}
		s.LastError = ""
		return s, nil

	default:
		return s, fmt.Errorf("%w: %T", ErrUnknownEvent, e)
	}
}
