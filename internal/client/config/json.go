package config

import (
	"time"

	"github.com/dmitrijs2005/boardingpass/internal/flagx"
	"github.com/dmitrijs2005/boardingpass/internal/timex"
)

// JsonConfig mirrors Config for unmarshalling. Durations accept "3s" or
// integer nanoseconds.
type JsonConfig struct {
	ServerURL           string         `json:"server_url"`
	CallbackAddr        string         `json:"callback_addr"`
	RedirectURI         string         `json:"redirect_uri"`
	DiscordClientID     string         `json:"discord_client_id"`
	DiscordAuthURL      string         `json:"discord_auth_url"`
	WalletRPC           string         `json:"wallet_rpc"`
	DatabasePath        string         `json:"database_path"`
	RequestTimeout      timex.Duration `json:"request_timeout"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval"`
	AccountPollInterval timex.Duration `json:"account_poll_interval"`
	Verbose             *bool          `json:"verbose"`
}

// parseJson overlays cfg with the file named by -c/-config. Fields absent
// from the file keep their current values. Panics on read or parse errors.
func parseJson(cfg *Config) {
	path := flagx.JsonConfigFlags()
	if path == "" {
		return
	}

	var jc JsonConfig
	if err := flagx.ReadJSON(path, &jc); err != nil {
		panic(err)
	}

	setString(&cfg.ServerURL, jc.ServerURL)
	setString(&cfg.CallbackAddr, jc.CallbackAddr)
	setString(&cfg.RedirectURI, jc.RedirectURI)
	setString(&cfg.DiscordClientID, jc.DiscordClientID)
	setString(&cfg.DiscordAuthURL, jc.DiscordAuthURL)
	setString(&cfg.WalletRPC, jc.WalletRPC)
	setString(&cfg.DatabasePath, jc.DatabasePath)
	setDuration(&cfg.RequestTimeout, jc.RequestTimeout)
	setDuration(&cfg.OnlineCheckInterval, jc.OnlineCheckInterval)
	setDuration(&cfg.AccountPollInterval, jc.AccountPollInterval)
	if jc.Verbose != nil {
		cfg.Verbose = *jc.Verbose
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration != 0 {
		*dst = v.Duration
	}
}
