package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/boardingpass/internal/flagx"
)

var knownFlags = []string{"-s", "-l", "-r", "-d", "-w", "-f", "-t", "-i", "-p", "-v"}

// parseFlags overlays cfg with command-line flags. Durations are given in
// seconds. Panics on malformed values.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], knownFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerURL, "s", cfg.ServerURL, "backend base URL")
	fs.StringVar(&cfg.CallbackAddr, "l", cfg.CallbackAddr, "address for the OAuth redirect listener")
	fs.StringVar(&cfg.RedirectURI, "r", cfg.RedirectURI, "redirect URI registered with the OAuth providers")
	fs.StringVar(&cfg.DiscordClientID, "d", cfg.DiscordClientID, "Discord OAuth client id")
	fs.StringVar(&cfg.WalletRPC, "w", cfg.WalletRPC, "wallet JSON-RPC endpoint")
	fs.StringVar(&cfg.DatabasePath, "f", cfg.DatabasePath, "local database file")
	requestTimeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	accountPollInterval := fs.Int("p", int(cfg.AccountPollInterval.Seconds()), "wallet account poll interval (in seconds)")
	fs.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "verbose logging")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RequestTimeout = time.Duration(*requestTimeout) * time.Second
	cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
	cfg.AccountPollInterval = time.Duration(*accountPollInterval) * time.Second
}
