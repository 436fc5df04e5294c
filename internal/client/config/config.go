package config

import "time"

// Config holds runtime settings for the onboarding client.
type Config struct {
	// ServerURL is the base URL of the allow-list backend.
	ServerURL string
	// CallbackAddr is where the local redirect listener binds.
	CallbackAddr string
	// RedirectURI is the URI registered with Discord and Twitter; it must
	// resolve to CallbackAddr.
	RedirectURI     string
	DiscordClientID string
	DiscordAuthURL  string
	// WalletRPC is the wallet's JSON-RPC endpoint.
	WalletRPC    string
	DatabasePath string

	RequestTimeout      time.Duration
	OnlineCheckInterval time.Duration
	AccountPollInterval time.Duration
	Verbose             bool
}

func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:1337"
	c.CallbackAddr = "127.0.0.1:5173"
	c.RedirectURI = "http://localhost:5173/"
	c.DiscordClientID = ""
	c.DiscordAuthURL = "https://discord.com/api/oauth2/authorize"
	c.WalletRPC = "http://127.0.0.1:1248"
	c.DatabasePath = "onboarding.db"
	c.RequestTimeout = 30 * time.Second
	c.OnlineCheckInterval = 3 * time.Second
	c.AccountPollInterval = 3 * time.Second
	c.Verbose = false
}

// LoadConfig applies defaults, then the JSON file, then flags. Later sources
// take precedence.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
