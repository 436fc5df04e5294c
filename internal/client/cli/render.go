package cli

import (
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"golang.org/x/term"

	"github.com/dmitrijs2005/boardingpass/internal/client/onboarding"
)

// configureOutput drops colors when stdout is not a terminal.
func configureOutput() {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		pterm.DisableStyling()
	}
}

func banner() string {
	return pterm.Info.Sprint("Boarding pass onboarding (type 'help' for commands)")
}

func infof(format string, args ...any) string {
	return pterm.Info.Sprint(fmt.Sprintf(format, args...))
}

func successf(format string, args ...any) string {
	return pterm.Success.Sprint(fmt.Sprintf(format, args...))
}

func warnf(format string, args ...any) string {
	return pterm.Warning.Sprint(fmt.Sprintf(format, args...))
}

func errorf(format string, args ...any) string {
	return pterm.Error.Sprint(fmt.Sprintf(format, args...))
}

func check(ok bool) string {
	if ok {
		return "yes"
	}
	return "no"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// renderStatus draws the session as a two column table.
func renderStatus(s onboarding.Session, cached onboarding.Tristate, mode Mode) (string, error) {
	data := pterm.TableData{
		{"Step", "State"},
		{"Phase", s.Phase.String()},
		{"Discord linked", check(s.DiscordLinked())},
		{"Twitter linked", check(s.TwitterLinked())},
		{"Allow-listed", s.AllowListed.String()},
		{"Wallet", orDash(s.WalletAddress)},
		{"Submitted", s.Submitted.String()},
		{"Twitter user", orDash(s.Profile.TwitterUsername)},
		{"Saved allow-list flag", cached.String()},
		{"Backend", orDash(string(mode))},
	}
	if s.Busy {
		data = append(data, []string{"Busy", "yes"})
	}
	if s.LastError != "" {
		data = append(data, []string{"Last error", s.LastError})
	}
	if s.Notice != "" {
		data = append(data, []string{"Notice", s.Notice})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
}

func canLinkDiscord(s onboarding.Session) bool {
	return s.ShowConnectDiscord() && !s.DiscordLinked()
}

func canLinkTwitter(s onboarding.Session) bool {
	return s.ShowConnectTwitter() && !s.TwitterLinked()
}

// nextSteps lists the commands the session currently offers.
func nextSteps(s onboarding.Session) []string {
	var cmds []string
	if canLinkDiscord(s) {
		cmds = append(cmds, "discord")
	}
	if canLinkTwitter(s) {
		cmds = append(cmds, "twitter")
	}
	if s.ShowVerify() {
		cmds = append(cmds, "verify")
	}
	if s.ShowConnectWallet() {
		cmds = append(cmds, "wallet")
	}
	if s.ShowSubmit() {
		cmds = append(cmds, "submit")
	}
	if s.ShowRecoveryEntry() {
		cmds = append(cmds, "returning")
	}
	if s.ShowClaim() {
		cmds = append(cmds, "claim")
	}
	return cmds
}
