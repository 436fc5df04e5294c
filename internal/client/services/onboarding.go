// Package services contains the client's application services. The
// onboarding service owns the session state machine and performs the
// external calls that move it forward.
package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/boardingpass/internal/api"
	"github.com/dmitrijs2005/boardingpass/internal/client/client"
	"github.com/dmitrijs2005/boardingpass/internal/client/onboarding"
	"github.com/dmitrijs2005/boardingpass/internal/client/recovery"
	"github.com/dmitrijs2005/boardingpass/internal/client/wallet"
	"github.com/dmitrijs2005/boardingpass/internal/ethaddr"
	"github.com/dmitrijs2005/boardingpass/internal/logging"
)

// ErrActionUnavailable is returned when an action is not offered by the
// current session.
var ErrActionUnavailable = errors.New("action not available")

// OnboardingService drives one onboarding session.
//
// Contract:
//   - Every dispatcher rejects with ErrActionUnavailable when the session does
//     not offer the action, and with onboarding.ErrBusy while another call is
//     in flight.
//   - Each call is bracketed by BeginBusy/EndBusy and runs under the
//     configured timeout. Failures end up in Session().LastError and are not
//     returned.
//   - Only programming errors (an unknown event) are returned besides the two
//     rejections above.
type OnboardingService interface {
	Session() onboarding.Session
	Subscribe(o onboarding.Observer)

	// Mount seeds the session from a redirect query and persisted progress.
	Mount(ctx context.Context, query url.Values) error
	FetchTwitterAuthURL(ctx context.Context) error
	Verify(ctx context.Context) error
	Submit(ctx context.Context) error
	ConnectWallet(ctx context.Context) error
	CheckAllowList(ctx context.Context) error
	EnterRecoveryCheck(ctx context.Context) error
	// AccountsChanged resets the session when the wallet's active account
	// no longer matches the connected address, and reports whether it did.
	AccountsChanged(ctx context.Context, account string) (bool, error)
	ClearProgress(ctx context.Context) error

	CachedAllowListed(ctx context.Context) onboarding.Tristate
	ClaimURL() (string, error)
	Ping(ctx context.Context) error
}

type onboardingService struct {
	machine  *onboarding.Machine
	client   client.Client
	wallet   wallet.Provider
	recovery *recovery.Adapter
	timeout  time.Duration
	logger   logging.Logger

	walletPending atomic.Bool
}

const defaultTimeout = 30 * time.Second

func NewOnboardingService(c client.Client, w wallet.Provider, r *recovery.Adapter, timeout time.Duration, logger logging.Logger) OnboardingService {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &onboardingService{
		machine:  onboarding.NewMachine(),
		client:   c,
		wallet:   w,
		recovery: r,
		timeout:  timeout,
		logger:   logger,
	}
}

func (s *onboardingService) Session() onboarding.Session {
	return s.machine.Session()
}

func (s *onboardingService) Subscribe(o onboarding.Observer) {
	s.machine.Subscribe(o)
}

func (s *onboardingService) Ping(ctx context.Context) error {
	return s.client.Ping(ctx)
}

func (s *onboardingService) Mount(ctx context.Context, query url.Values) error {
	events, err := s.recovery.Recover(ctx, query)
	if err != nil {
		s.logger.Error(ctx, "recover progress", "error", err)
		_, err = s.dispatch(ctx, onboarding.Failed{Message: "could not read saved progress"})
		return err
	}

	var pending []onboarding.Reaction
	for _, e := range events {
		reactions, err := s.dispatch(ctx, e)
		if err != nil {
			return err
		}
		pending = append(pending, reactions...)
	}
	return s.react(ctx, pending)
}

func (s *onboardingService) FetchTwitterAuthURL(ctx context.Context) error {
	return s.run(ctx, "fetch twitter auth url", onboarding.Session.ShowConnectTwitter,
		func(ctx context.Context, _ onboarding.Session) (onboarding.Event, error) {
			u, err := s.client.TwitterAuthURL(ctx)
			if err != nil {
				return nil, err
			}
			return onboarding.TwitterAuthURLReady{URL: u}, nil
		})
}

// Verify persists the outcome only once the machine has accepted it, so a
// result dropped after a reset leaves the saved Discord code in place.
func (s *onboardingService) Verify(ctx context.Context) error {
	persist := func(ctx context.Context, e onboarding.Event) {
		res, ok := e.(onboarding.VerifyResult)
		if !ok {
			return
		}
		if err := s.recovery.RecordVerified(ctx, res.AllowListed); err != nil {
			s.logger.Warn(ctx, "could not persist verification", "error", err)
		}
	}
	return s.runThen(ctx, "verify", onboarding.Session.ShowVerify,
		func(ctx context.Context, cur onboarding.Session) (onboarding.Event, error) {
			resp, err := s.client.Verify(ctx, api.VerifyRequest{
				DiscordCode:     cur.DiscordCode,
				TwitterToken:    cur.TwitterToken,
				TwitterVerifier: cur.TwitterVerifier,
			})
			if err != nil {
				return nil, err
			}

			ev := onboarding.VerifyResult{AllowListed: resp.Success, Message: resp.Message}
			if resp.Discord != nil {
				ev.DiscordUsername = resp.Discord.Username
				ev.DiscordRefreshToken = resp.Discord.RefreshToken
			}
			if resp.Twitter != nil {
				ev.TwitterUsername = resp.Twitter.Username
				ev.TwitterID = resp.Twitter.ID
			}
			return ev, nil
		}, persist)
}

func (s *onboardingService) Submit(ctx context.Context) error {
	return s.run(ctx, "submit", onboarding.Session.ShowSubmit,
		func(ctx context.Context, cur onboarding.Session) (onboarding.Event, error) {
			resp, err := s.client.Submit(ctx, api.SubmitRequest{
				DiscordRefresh: cur.Profile.DiscordRefreshToken,
				TwitterID:      cur.Profile.TwitterID,
				WalletAddress:  cur.WalletAddress,
			})
			if err != nil {
				return nil, err
			}
			return onboarding.SubmitResult{Success: resp.Success, Message: resp.Message}, nil
		})
}

// ConnectWallet asks the wallet for an account. It is a no-op while a request
// is outstanding or once an address is known, except in the returning-user
// branch where a known address retries the allow-list lookup.
func (s *onboardingService) ConnectWallet(ctx context.Context) error {
	cur := s.machine.Session()
	if cur.WalletConnected() {
		if cur.Phase == onboarding.PhaseRecoveryCheck {
			return s.CheckAllowList(ctx)
		}
		return nil
	}
	if !s.walletPending.CompareAndSwap(false, true) {
		return nil
	}
	defer s.walletPending.Store(false)

	return s.run(ctx, "connect wallet", onboarding.Session.ShowConnectWallet,
		func(ctx context.Context, _ onboarding.Session) (onboarding.Event, error) {
			addr, err := s.wallet.RequestAccounts(ctx)
			if err != nil {
				return nil, err
			}
			return onboarding.AccountConnected{Address: addr}, nil
		})
}

func (s *onboardingService) CheckAllowList(ctx context.Context) error {
	offered := func(cur onboarding.Session) bool {
		return cur.Phase == onboarding.PhaseRecoveryCheck && cur.WalletConnected()
	}
	return s.run(ctx, "check allowlist", offered,
		func(ctx context.Context, cur onboarding.Session) (onboarding.Event, error) {
			resp, err := s.client.AllowListed(ctx, cur.WalletAddress)
			if err != nil {
				return nil, err
			}
			return onboarding.AllowListResult{
				AllowListed:     resp.Success,
				TwitterUsername: resp.Username,
				Message:         resp.Message,
			}, nil
		})
}

func (s *onboardingService) EnterRecoveryCheck(ctx context.Context) error {
	cur := s.machine.Session()
	if !cur.ShowRecoveryEntry() {
		return fmt.Errorf("%w: returning user check", ErrActionUnavailable)
	}
	if cur.Busy {
		return onboarding.ErrBusy
	}
	_, err := s.dispatch(ctx, onboarding.RecoveryCheckRequested{})
	return err
}

// AccountsChanged ignores accounts appearing before an address is connected,
// including the one the wallet authorises during ConnectWallet.
func (s *onboardingService) AccountsChanged(ctx context.Context, account string) (bool, error) {
	connected := s.machine.Session().WalletAddress
	if connected == "" || ethaddr.Equal(account, connected) {
		return false, nil
	}
	s.logger.Info(ctx, "wallet account changed, restarting onboarding", "from", connected, "to", account)
	if _, err := s.dispatch(ctx, onboarding.Reset{}); err != nil {
		return false, err
	}
	return true, nil
}

// ClearProgress forgets persisted progress. The in-memory session is kept.
func (s *onboardingService) ClearProgress(ctx context.Context) error {
	if err := s.recovery.Clear(ctx); err != nil {
		s.logger.Error(ctx, "clear progress", "error", err)
		_, err = s.dispatch(ctx, onboarding.Failed{Message: "could not clear saved progress"})
		return err
	}
	return nil
}

func (s *onboardingService) CachedAllowListed(ctx context.Context) onboarding.Tristate {
	t, err := s.recovery.CachedAllowListed(ctx)
	if err != nil {
		s.logger.Warn(ctx, "read cached allowlist flag", "error", err)
	}
	return t
}

func (s *onboardingService) ClaimURL() (string, error) {
	cur := s.machine.Session()
	if !cur.ShowClaim() {
		return "", fmt.Errorf("%w: claim", ErrActionUnavailable)
	}
	return s.client.ClaimURL(cur.ClaimUsername()), nil
}

// run performs one bracketed external call.
func (s *onboardingService) run(
	ctx context.Context,
	action string,
	offered func(onboarding.Session) bool,
	call func(ctx context.Context, cur onboarding.Session) (onboarding.Event, error),
) error {
	return s.runThen(ctx, action, offered, call, nil)
}

// runThen is run with a hook invoked after the machine accepts the result.
func (s *onboardingService) runThen(
	ctx context.Context,
	action string,
	offered func(onboarding.Session) bool,
	call func(ctx context.Context, cur onboarding.Session) (onboarding.Event, error),
	accepted func(ctx context.Context, e onboarding.Event),
) error {
	if !offered(s.machine.Session()) {
		return fmt.Errorf("%w: %s", ErrActionUnavailable, action)
	}
	ticket, err := s.machine.Begin()
	if err != nil {
		return err
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	ev, err := call(callCtx, s.machine.Session())
	cancel()
	if err != nil {
		s.logger.Warn(ctx, action+" failed", "error", err)
		ev = onboarding.Failed{Message: failureMessage(err)}
	} else {
		s.logger.Debug(ctx, action+" finished", "event", ev.Name())
	}

	_, reactions, err := s.machine.Settle(ticket, ev)
	switch {
	case errors.Is(err, onboarding.ErrStaleCall):
		s.logger.Warn(ctx, "dropped result of a call started before a reset", "action", action)
		return nil
	case errors.Is(err, onboarding.ErrEventNotAllowed):
		s.logger.Warn(ctx, "dropped stale event", "error", err)
		return nil
	case err != nil:
		return fmt.Errorf("dispatch: %w", err)
	}

	if accepted != nil {
		accepted(ctx, ev)
	}
	return s.react(ctx, reactions)
}

// dispatch applies e, dropping events the current phase no longer accepts.
func (s *onboardingService) dispatch(ctx context.Context, e onboarding.Event) ([]onboarding.Reaction, error) {
	_, reactions, err := s.machine.Dispatch(e)
	switch {
	case err == nil:
		return reactions, nil
	case errors.Is(err, onboarding.ErrEventNotAllowed):
		s.logger.Warn(ctx, "dropped stale event", "error", err)
		return nil, nil
	default:
		return nil, fmt.Errorf("dispatch: %w", err)
	}
}

func (s *onboardingService) react(ctx context.Context, reactions []onboarding.Reaction) error {
	for _, r := range reactions {
		var err error
		switch r {
		case onboarding.ReactFetchTwitterAuthURL:
			err = s.FetchTwitterAuthURL(ctx)
		case onboarding.ReactCheckAllowList:
			err = s.CheckAllowList(ctx)
		}
		if errors.Is(err, onboarding.ErrBusy) || errors.Is(err, ErrActionUnavailable) {
			s.logger.Warn(ctx, "reaction skipped", "reaction", r.String(), "error", err)
			continue
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func failureMessage(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, wallet.ErrUserRejected):
		return "wallet request was rejected"
	case errors.Is(err, wallet.ErrNoProvider):
		return "no wallet provider found"
	case errors.Is(err, wallet.ErrNoAccounts):
		return "wallet has no accounts"
	case errors.Is(err, client.ErrUnavailable):
		return "server unavailable"
	default:
		return client.Message(err)
	}
}
