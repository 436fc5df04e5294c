package recovery

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/boardingpass/internal/client/onboarding"
	"github.com/dmitrijs2005/boardingpass/internal/logging"
)

const (
	KeyDiscordCode = "discord_code"
	KeyAllowListed = "whitelisted"
)

// Query parameters delivered by the OAuth providers.
const (
	ParamCode          = "code"
	ParamOAuthToken    = "oauth_token"
	ParamOAuthVerifier = "oauth_verifier"
)

type Adapter struct {
	store  Store
	logger logging.Logger
}

func NewAdapter(store Store, logger logging.Logger) *Adapter {
	return &Adapter{store: store, logger: logger}
}

// Recover returns the events implied by the redirect query and the persisted
// Discord code. A code in the query wins over the persisted one and replaces
// it. It never touches the network.
func (a *Adapter) Recover(ctx context.Context, query url.Values) ([]onboarding.Event, error) {
	var events []onboarding.Event

	code := strings.TrimSpace(query.Get(ParamCode))
	if code != "" {
		if err := a.store.Set(ctx, KeyDiscordCode, code); err != nil {
			return nil, fmt.Errorf("persist discord code: %w", err)
		}
	} else {
		stored, ok, err := a.store.Get(ctx, KeyDiscordCode)
		if err != nil {
			return nil, fmt.Errorf("read discord code: %w", err)
		}
		if ok {
			code = strings.TrimSpace(stored)
		}
	}
	if code != "" {
		events = append(events, onboarding.DiscordLinked{Code: code})
	}

	token, verifier := query.Get(ParamOAuthToken), query.Get(ParamOAuthVerifier)
	if token != "" && verifier != "" {
		events = append(events, onboarding.TwitterLinked{Token: token, Verifier: verifier})
	}

	a.logger.Debug(ctx, "recovered redirect state", "events", len(events))
	return events, nil
}

// Clear forgets all persisted progress.
func (a *Adapter) Clear(ctx context.Context) error {
	for _, key := range []string{KeyDiscordCode, KeyAllowListed} {
		if err := a.store.Remove(ctx, key); err != nil {
			return fmt.Errorf("remove %s: %w", key, err)
		}
	}
	return nil
}

// RecordVerified drops the spent Discord code and caches the verification
// outcome.
func (a *Adapter) RecordVerified(ctx context.Context, allowListed bool) error {
	if err := a.store.Remove(ctx, KeyDiscordCode); err != nil {
		return fmt.Errorf("remove %s: %w", KeyDiscordCode, err)
	}
	if err := a.store.Set(ctx, KeyAllowListed, strconv.FormatBool(allowListed)); err != nil {
		return fmt.Errorf("persist %s: %w", KeyAllowListed, err)
	}
	return nil
}

// CachedAllowListed returns the last cached verification outcome. It is for
// display only.
func (a *Adapter) CachedAllowListed(ctx context.Context) (onboarding.Tristate, error) {
	v, ok, err := a.store.Get(ctx, KeyAllowListed)
	if err != nil {
		return onboarding.Unknown, fmt.Errorf("read %s: %w", KeyAllowListed, err)
	}
	if !ok {
		return onboarding.Unknown, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return onboarding.Unknown, nil
	}
	return onboarding.TristateOf(b), nil
}
