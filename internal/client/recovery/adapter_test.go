package recovery

import (
	"context"
	"database/sql"
	"errors"
	"net/url"
	"testing"

	"github.com/dmitrijs2005/boardingpass/internal/client/onboarding"
	"github.com/dmitrijs2005/boardingpass/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/boardingpass/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func newAdapter(t *testing.T) (*Adapter, *MemoryStore) {
	t.Helper()
	store := NewMemoryStore()
	return NewAdapter(store, logging.Nop{}), store
}

func TestRecover_QueryCodeWinsAndIsPersisted(t *testing.T) {
	a, store := newAdapter(t)
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, KeyDiscordCode, "xyz"))

	events, err := a.Recover(ctx, url.Values{"code": {"abc"}})
	require.NoError(t, err)
	assert.Equal(t, []onboarding.Event{onboarding.DiscordLinked{Code: "abc"}}, events)

	v, ok, _ := store.Get(ctx, KeyDiscordCode)
	assert.True(t, ok)
	assert.Equal(t, "abc", v)
}

func TestRecover_PersistedCodeWithoutQuery(t *testing.T) {
	a, store := newAdapter(t)
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, KeyDiscordCode, "xyz"))

	events, err := a.Recover(ctx, url.Values{})
	require.NoError(t, err)
	assert.Equal(t, []onboarding.Event{onboarding.DiscordLinked{Code: "xyz"}}, events)
}

func TestRecover_BlankPersistedCodeIgnored(t *testing.T) {
	a, store := newAdapter(t)
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, KeyDiscordCode, "  "))

	events, err := a.Recover(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestRecover_TwitterRedirect(t *testing.T) {
	a, store := newAdapter(t)
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, KeyDiscordCode, "abc"))

	q, err := url.ParseQuery("oauth_token=tok&oauth_verifier=ver")
	require.NoError(t, err)

	events, err := a.Recover(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, []onboarding.Event{
		onboarding.DiscordLinked{Code: "abc"},
		onboarding.TwitterLinked{Token: "tok", Verifier: "ver"},
	}, events)
}

func TestRecover_PartialTwitterRedirectIgnored(t *testing.T) {
	a, _ := newAdapter(t)

	events, err := a.Recover(context.Background(), url.Values{"oauth_token": {"tok"}})
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestRecover_EventsDriveMachine(t *testing.T) {
	a, store := newAdapter(t)
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, KeyDiscordCode, "abc"))

	events, err := a.Recover(ctx, url.Values{"oauth_token": {"t"}, "oauth_verifier": {"v"}})
	require.NoError(t, err)

	m := onboarding.NewMachine()
	for _, e := range events {
		_, _, err := m.Dispatch(e)
		require.NoError(t, err)
	}
	assert.True(t, m.Session().ShowVerify())
}

func TestRecordVerifiedAndCache(t *testing.T) {
	a, store := newAdapter(t)
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, KeyDiscordCode, "abc"))

	cached, err := a.CachedAllowListed(ctx)
	require.NoError(t, err)
	assert.Equal(t, onboarding.Unknown, cached)

	require.NoError(t, a.RecordVerified(ctx, true))

	_, ok, _ := store.Get(ctx, KeyDiscordCode)
	assert.False(t, ok, "spent code must be removed")
	cached, err = a.CachedAllowListed(ctx)
	require.NoError(t, err)
	assert.Equal(t, onboarding.Yes, cached)

	require.NoError(t, a.RecordVerified(ctx, false))
	cached, _ = a.CachedAllowListed(ctx)
	assert.Equal(t, onboarding.No, cached)
}

func TestCachedAllowListed_GarbageIsUnknown(t *testing.T) {
	a, store := newAdapter(t)
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, KeyAllowListed, "maybe"))

	cached, err := a.CachedAllowListed(ctx)
	require.NoError(t, err)
	assert.Equal(t, onboarding.Unknown, cached)
}

func TestClear(t *testing.T) {
	a, store := newAdapter(t)
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, KeyDiscordCode, "abc"))
	require.NoError(t, store.Set(ctx, KeyAllowListed, "true"))

	require.NoError(t, a.Clear(ctx))

	events, err := a.Recover(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, events)
	cached, _ := a.CachedAllowListed(ctx)
	assert.Equal(t, onboarding.Unknown, cached)
}

type failingStore struct{ err error }

func (f failingStore) Get(context.Context, string) (string, bool, error) { return "", false, f.err }
func (f failingStore) Set(context.Context, string, string) error         { return f.err }
func (f failingStore) Remove(context.Context, string) error              { return f.err }

func TestAdapter_StoreErrorsWrapped(t *testing.T) {
	boom := errors.New("disk full")
	a := NewAdapter(failingStore{err: boom}, logging.Nop{})
	ctx := context.Background()

	_, err := a.Recover(ctx, url.Values{"code": {"abc"}})
	assert.ErrorIs(t, err, boom)
	_, err = a.Recover(ctx, nil)
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, a.Clear(ctx), boom)
	assert.ErrorIs(t, a.RecordVerified(ctx, true), boom)
	_, err = a.CachedAllowListed(ctx)
	assert.ErrorIs(t, err, boom)
}

func TestMetadataStore_RoundTrip(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	_, err = db.Exec(`CREATE TABLE metadata (key TEXT PRIMARY KEY, value TEXT, updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP)`)
	require.NoError(t, err)

	store := NewMetadataStore(metadata.NewSQLiteRepository(db))
	a := NewAdapter(store, logging.Nop{})
	ctx := context.Background()

	_, err = a.Recover(ctx, url.Values{"code": {"abc"}})
	require.NoError(t, err)

	// A later start without a query still sees the code.
	events, err := NewAdapter(store, logging.Nop{}).Recover(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, []onboarding.Event{onboarding.DiscordLinked{Code: "abc"}}, events)

	require.NoError(t, store.Remove(ctx, KeyDiscordCode))
	_, ok, err := store.Get(ctx, KeyDiscordCode)
	require.NoError(t, err)
	assert.False(t, ok)
}
