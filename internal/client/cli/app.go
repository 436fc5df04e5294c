package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/pkg/browser"

	"github.com/dmitrijs2005/boardingpass/internal/client/client"
	"github.com/dmitrijs2005/boardingpass/internal/client/config"
	"github.com/dmitrijs2005/boardingpass/internal/client/recovery"
	"github.com/dmitrijs2005/boardingpass/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/boardingpass/internal/client/services"
	"github.com/dmitrijs2005/boardingpass/internal/client/wallet"
	"github.com/dmitrijs2005/boardingpass/internal/common"
	"github.com/dmitrijs2005/boardingpass/internal/httpx"
	"github.com/dmitrijs2005/boardingpass/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type App struct {
	config  *config.Config
	service services.OnboardingService
	watcher *wallet.Watcher
	db      *sql.DB
	logger  logging.Logger

	// state is the Discord OAuth state issued by this process.
	state   string
	openURL func(string) error

	mu          sync.Mutex
	mode        Mode
	shownError  string
	shownNotice string
}

func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	db, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}

	hc := httpx.NewClient(httpx.Options{Timeout: c.RequestTimeout}, logger)
	apiClient, err := client.NewHTTPClient(c.ServerURL, hc)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	state, err := common.MakeRandHexString(16)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("generate oauth state: %w", err)
	}

	provider := wallet.NewRPCProvider(c.WalletRPC, hc)
	store := recovery.NewMetadataStore(metadata.NewSQLiteRepository(db))
	svc := services.NewOnboardingService(apiClient, provider, recovery.NewAdapter(store, logger), c.RequestTimeout, logger)

	return &App{
		config:  c,
		service: svc,
		watcher: wallet.NewWatcher(provider, c.AccountPollInterval, c.RequestTimeout, logger),
		db:      db,
		logger:  logger,
		state:   state,
		openURL: browser.OpenURL,
	}, nil
}

// Run mounts the session, starts the redirect listener and watchers, and
// blocks in the REPL until the user exits or ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	defer a.db.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	configureOutput()
	printlnFn(banner())

	stop, err := a.startCallbackServer(ctx)
	if err != nil {
		printlnFn(warnf("redirect listener unavailable (%v); paste redirect URLs with 'resume <url>'", err))
	} else {
		defer stop()
	}

	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)
	go a.watcher.Run(ctx, a.accountChanged)

	if err := a.service.Mount(ctx, nil); err != nil {
		return err
	}
	a.report(ctx, nil)

	runREPL(ctx, a, a.getStatus, bufio.NewScanner(os.Stdin))
	return nil
}

func (a *App) accountChanged(ctx context.Context, account string) {
	reset, err := a.service.AccountsChanged(ctx, account)
	if err != nil {
		a.logger.Error(ctx, "reset after account change", "error", err)
		return
	}
	if reset {
		printlnFn(warnf("wallet account changed, onboarding restarted"))
	}
}

func (a *App) setMode(ctx context.Context, mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed {
		a.logger.Info(ctx, "backend status changed", "mode", mode)
	}
}

func (a *App) Mode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
			err := a.service.Ping(pingCtx)
			cancel()

			if err != nil {
				a.setMode(ctx, ModeOffline)
			} else {
				a.setMode(ctx, ModeOnline)
			}

		case <-ctx.Done():
			return
		}
	}
}

func (a *App) getStatus() string {
	s := a.service.Session()
	status := s.Phase.String()
	if s.Busy {
		status += " busy"
	}
	if m := a.Mode(); m != "" {
		status += " " + string(m)
	}
	return fmt.Sprintf("(%s)", status)
}
