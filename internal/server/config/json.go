package config

import (
	"time"

	"github.com/dmitrijs2005/boardingpass/internal/flagx"
	"github.com/dmitrijs2005/boardingpass/internal/timex"
)

// JsonConfig mirrors Config for unmarshalling. Durations accept "10s" or
// integer nanoseconds.
type JsonConfig struct {
	ListenAddr      string         `json:"listen_addr"`
	DatabaseDSN     string         `json:"database_dsn"`
	AllowedOrigins  string         `json:"allowed_origins"`
	LogFile         string         `json:"log_file"`
	LogLevel        string         `json:"log_level"`
	RequestTimeout  timex.Duration `json:"request_timeout"`
	ShutdownTimeout timex.Duration `json:"shutdown_timeout"`
	EnvFile         string         `json:"env_file"`

	DiscordAPIBase     string `json:"discord_api_base"`
	DiscordClientID    string `json:"discord_client_id"`
	DiscordRedirectURI string `json:"discord_redirect_uri"`
	DiscordGuildID     string `json:"discord_guild_id"`
	DiscordRoleID      string `json:"discord_role_id"`

	TwitterAPIBase     string `json:"twitter_api_base"`
	TwitterCallbackURL string `json:"twitter_callback_url"`

	AssetStore     string `json:"asset_store"`
	AssetsDir      string `json:"assets_dir"`
	S3Bucket       string `json:"s3_bucket"`
	S3Prefix       string `json:"s3_prefix"`
	S3Region       string `json:"s3_region"`
	S3BaseEndpoint string `json:"s3_base_endpoint"`
}

// parseJson overlays cfg with the file named by -c/-config. Secrets are
// only read from the environment. Panics on read or parse errors.
func parseJson(cfg *Config) {
	path := flagx.JsonConfigFlags()
	if path == "" {
		return
	}

	var jc JsonConfig
	if err := flagx.ReadJSON(path, &jc); err != nil {
		panic(err)
	}

	setString(&cfg.ListenAddr, jc.ListenAddr)
	setString(&cfg.DatabaseDSN, jc.DatabaseDSN)
	setString(&cfg.AllowedOrigins, jc.AllowedOrigins)
	setString(&cfg.LogFile, jc.LogFile)
	setString(&cfg.LogLevel, jc.LogLevel)
	setDuration(&cfg.RequestTimeout, jc.RequestTimeout)
	setDuration(&cfg.ShutdownTimeout, jc.ShutdownTimeout)
	setString(&cfg.EnvFile, jc.EnvFile)

	setString(&cfg.DiscordAPIBase, jc.DiscordAPIBase)
	setString(&cfg.DiscordClientID, jc.DiscordClientID)
	setString(&cfg.DiscordRedirectURI, jc.DiscordRedirectURI)
	setString(&cfg.DiscordGuildID, jc.DiscordGuildID)
	setString(&cfg.DiscordRoleID, jc.DiscordRoleID)

	setString(&cfg.TwitterAPIBase, jc.TwitterAPIBase)
	setString(&cfg.TwitterCallbackURL, jc.TwitterCallbackURL)

	setString(&cfg.AssetStore, jc.AssetStore)
	setString(&cfg.AssetsDir, jc.AssetsDir)
	setString(&cfg.S3Bucket, jc.S3Bucket)
	setString(&cfg.S3Prefix, jc.S3Prefix)
	setString(&cfg.S3Region, jc.S3Region)
	setString(&cfg.S3BaseEndpoint, jc.S3BaseEndpoint)
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
