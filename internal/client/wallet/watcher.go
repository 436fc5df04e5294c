package wallet

import (
	"context"
	"time"

	"github.com/dmitrijs2005/boardingpass/internal/logging"
)

// Watcher polls the provider for the active account and reports changes.
type Watcher struct {
	provider Provider
	interval time.Duration
	timeout  time.Duration
	logger   logging.Logger
}

func NewWatcher(p Provider, interval, timeout time.Duration, logger logging.Logger) *Watcher {
	return &Watcher{provider: p, interval: interval, timeout: timeout, logger: logger}
}

// Run blocks until ctx is cancelled. The first successful poll establishes
// the baseline; afterwards onChange is called whenever the active account
// differs from the previous poll, including when it becomes empty. Poll
// errors are logged and skipped.
func (w *Watcher) Run(ctx context.Context, onChange func(ctx context.Context, account string)) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	var (
		current string
		known   bool
	)

	for {
		select {
		case <-ticker.C:
			account, err := w.active(ctx)
			if err != nil {
				w.logger.Debug(ctx, "account poll failed", "error", err)
				continue
			}
			if known && account != current {
				w.logger.Info(ctx, "wallet account changed", "from", current, "to", account)
				onChange(ctx, account)
			}
			current, known = account, true

		case <-ctx.Done():
			return
		}
	}
}

func (w *Watcher) active(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	accounts, err := w.provider.Accounts(ctx)
	if err != nil {
		return "", err
	}
	if len(accounts) == 0 {
		return "", nil
	}
	return accounts[0], nil
}
