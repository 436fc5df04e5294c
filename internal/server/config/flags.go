package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/boardingpass/internal/flagx"
)

var knownFlags = []string{"-a", "-d", "-o", "-l", "-g", "-s", "-x", "-b", "-t"}

// parseFlags overlays cfg with command-line flags. The timeout is given in
// seconds. Panics on malformed values.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], knownFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ListenAddr, "a", cfg.ListenAddr, "address and port to run server")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "database DSN")
	fs.StringVar(&cfg.AllowedOrigins, "o", cfg.AllowedOrigins, "comma-separated CORS origins")
	fs.StringVar(&cfg.LogFile, "l", cfg.LogFile, "log file (stdout when empty)")
	fs.StringVar(&cfg.LogLevel, "g", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.AssetStore, "s", cfg.AssetStore, "asset store: dir or s3")
	fs.StringVar(&cfg.AssetsDir, "x", cfg.AssetsDir, "assets directory")
	fs.StringVar(&cfg.S3Bucket, "b", cfg.S3Bucket, "S3 bucket")
	requestTimeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "outbound request timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RequestTimeout = time.Duration(*requestTimeout) * time.Second
}
