// Package server wires the allow-list backend together: logging, the
// members database, the Discord and Twitter clients, pass rendering and
// the HTTP API.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/boardingpass/internal/httpx"
	"github.com/dmitrijs2005/boardingpass/internal/logging"
	"github.com/dmitrijs2005/boardingpass/internal/server/config"
	"github.com/dmitrijs2005/boardingpass/internal/server/discord"
	"github.com/dmitrijs2005/boardingpass/internal/server/httpapi"
	"github.com/dmitrijs2005/boardingpass/internal/server/passes"
	"github.com/dmitrijs2005/boardingpass/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/boardingpass/internal/server/services"
	"github.com/dmitrijs2005/boardingpass/internal/server/twitter"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	server *httpapi.Server
}

// openDatabase is a seam for tests.
var openDatabase = repomanager.OpenDatabase

// NewLogger builds the zerolog-backed logger described by c.
func NewLogger(c *config.Config) logging.Logger {
	out := logging.FileOptions{Path: c.LogFile, MaxSizeMB: 10, MaxBackups: 5, MaxAgeDays: 28}.Output()
	return logging.NewZerologLogger(out, logging.ParseLevel(c.LogLevel))
}

func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	m := repomanager.NewPostgresRepositoryManager()

	db, err := openDatabase(ctx, c.DatabaseDSN, m)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	hc := httpx.StandardClient(httpx.NewClient(httpx.Options{Timeout: c.RequestTimeout}, logger))

	dc := discord.NewHTTPClient(discord.Options{
		APIBase:      c.DiscordAPIBase,
		ClientID:     c.DiscordClientID,
		ClientSecret: c.DiscordClientSecret,
		RedirectURI:  c.DiscordRedirectURI,
		BotToken:     c.DiscordBotToken,
		GuildID:      c.DiscordGuildID,
		RoleID:       c.DiscordRoleID,
	}, hc)

	tc := twitter.NewHTTPClient(twitter.Options{
		APIBase:        c.TwitterAPIBase,
		ConsumerKey:    c.TwitterAPIKey,
		ConsumerSecret: c.TwitterAPISecret,
		BearerToken:    c.TwitterBearerToken,
		CallbackURL:    c.TwitterCallbackURL,
	}, hc)

	assets, err := newAssetStore(ctx, c)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	svc := services.NewAllowListService(db, m, dc, tc, passes.NewRenderer(assets, hc), logger)
	srv := httpapi.NewServer(c.ListenAddr, c.Origins(), c.ShutdownTimeout, svc, logger)

	return &App{config: c, logger: logger, db: db, server: srv}, nil
}

func newAssetStore(ctx context.Context, c *config.Config) (passes.AssetStore, error) {
	if c.AssetStore != "s3" {
		return passes.NewDirStore(c.AssetsDir), nil
	}
	s, err := passes.NewS3Store(ctx, passes.S3Options{
		Bucket:       c.S3Bucket,
		Prefix:       c.S3Prefix,
		Region:       c.S3Region,
		BaseEndpoint: c.S3BaseEndpoint,
		AccessKey:    c.S3AccessKey,
		SecretKey:    c.S3SecretKey,
	})
	if err != nil {
		return nil, fmt.Errorf("asset store init error: %w", err)
	}
	return s, nil
}

// Run serves until ctx is canceled or SIGINT/SIGTERM/SIGQUIT arrives.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()
	defer app.db.Close()

	app.logger.Info(ctx, "Starting app...")

	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, "server stopped", "error", err)
		return err
	}

	app.logger.Info(ctx, "App stopped")
	return nil
}
