package cli

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/boardingpass/internal/client/onboarding"
	"github.com/dmitrijs2005/boardingpass/internal/client/services"
)

// report prints the outcome of a command followed by any error or notice
// the session gained since the last report.
func (a *App) report(ctx context.Context, err error) {
	switch {
	case err == nil:
	case errors.Is(err, services.ErrActionUnavailable):
		printlnFn(warnf("not available right now, type 'help' to see what is"))
	case errors.Is(err, onboarding.ErrBusy):
		printlnFn(warnf("another action is still running"))
	default:
		printlnFn(errorf("%v", err))
	}

	s := a.service.Session()

	a.mu.Lock()
	newError := s.LastError != "" && s.LastError != a.shownError
	newNotice := s.Notice != "" && s.Notice != a.shownNotice
	a.shownError = s.LastError
	a.shownNotice = s.Notice
	a.mu.Unlock()

	if newError {
		printlnFn(errorf("%s", s.LastError))
	}
	if newNotice {
		printlnFn(warnf("%s", s.Notice))
	}
	if err == nil && !newError {
		if steps := nextSteps(s); len(steps) > 0 {
			printlnFn(infof("next: %s", strings.Join(steps, ", ")))
		}
	}
}

func (a *App) open(ctx context.Context, what, link string) {
	printlnFn(fmt.Sprintf("%s:\n  %s", what, link))
	if err := a.openURL(link); err != nil {
		a.logger.Debug(ctx, "browser open failed", "error", err)
	}
}

func (a *App) helpText() string {
	cmds := append(nextSteps(a.service.Session()), "status", "resume <url>", "clear", "exit")
	return "Available commands: " + strings.Join(cmds, ", ")
}

func (a *App) Status(ctx context.Context) error {
	out, err := renderStatus(a.service.Session(), a.service.CachedAllowListed(ctx), a.Mode())
	if err != nil {
		return err
	}
	printlnFn(out)
	return nil
}

func (a *App) Discord(ctx context.Context) error {
	if !canLinkDiscord(a.service.Session()) {
		a.report(ctx, services.ErrActionUnavailable)
		return services.ErrActionUnavailable
	}
	if a.config.DiscordClientID == "" {
		err := errors.New("discord client id is not configured")
		a.report(ctx, err)
		return err
	}
	a.open(ctx, "Authorize with Discord", discordAuthURL(a.config, a.state))
	return nil
}

func (a *App) Twitter(ctx context.Context) error {
	s := a.service.Session()
	if !canLinkTwitter(s) {
		a.report(ctx, services.ErrActionUnavailable)
		return services.ErrActionUnavailable
	}
	if s.TwitterAuthURL == "" {
		if err := a.service.FetchTwitterAuthURL(ctx); err != nil {
			a.report(ctx, err)
			return err
		}
		s = a.service.Session()
	}
	if s.TwitterAuthURL == "" {
		a.report(ctx, nil)
		return nil
	}
	a.open(ctx, "Authorize with Twitter", s.TwitterAuthURL)
	return nil
}

func (a *App) Verify(ctx context.Context) error {
	err := a.service.Verify(ctx)
	if err == nil {
		if s := a.service.Session(); s.AllowListed == onboarding.Yes {
			printlnFn(successf("you are on the allow list"))
		}
	}
	a.report(ctx, err)
	return err
}

func (a *App) Wallet(ctx context.Context) error {
	err := a.service.ConnectWallet(ctx)
	if err == nil {
		if s := a.service.Session(); s.WalletConnected() {
			printlnFn(successf("wallet %s connected", s.WalletAddress))
		}
	}
	a.report(ctx, err)
	return err
}

func (a *App) Submit(ctx context.Context) error {
	err := a.service.Submit(ctx)
	if err == nil && a.service.Session().Submitted == onboarding.Yes {
		printlnFn(successf("wallet submitted, type 'claim' for your boarding pass"))
	}
	a.report(ctx, err)
	return err
}

func (a *App) Returning(ctx context.Context) error {
	err := a.service.EnterRecoveryCheck(ctx)
	a.report(ctx, err)
	return err
}

func (a *App) Claim(ctx context.Context) error {
	link, err := a.service.ClaimURL()
	if err != nil {
		a.report(ctx, err)
		return err
	}
	a.open(ctx, "Your boarding pass", link)
	return nil
}

func (a *App) Clear(ctx context.Context) error {
	err := a.service.ClearProgress(ctx)
	if err == nil {
		printlnFn(successf("saved progress cleared"))
	}
	a.report(ctx, err)
	return err
}

// Resume accepts a redirect URL pasted by the user, for when the local
// listener could not receive it.
func (a *App) Resume(ctx context.Context, raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || raw == "" {
		err = fmt.Errorf("invalid redirect url %q", raw)
		a.report(ctx, err)
		return err
	}
	err = a.handleRedirect(ctx, u.Query())
	a.report(ctx, err)
	return err
}
