package cli

import (
	"context"
	"net/url"
	"sync"

	"github.com/dmitrijs2005/boardingpass/internal/client/onboarding"
)

type fakeService struct {
	mu sync.Mutex

	session onboarding.Session
	cached  onboarding.Tristate
	pingErr error
	err     error
	reset   bool

	calls   []string
	queries []url.Values

	// onFetch runs inside FetchTwitterAuthURL.
	onFetch func(s *onboarding.Session)
}

func (f *fakeService) record(name string) {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	f.mu.Unlock()
}

func (f *fakeService) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeService) Session() onboarding.Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.session
}

func (f *fakeService) Subscribe(onboarding.Observer) {}

func (f *fakeService) Mount(_ context.Context, q url.Values) error {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	f.mu.Unlock()
	f.record("mount")
	return f.err
}

func (f *fakeService) FetchTwitterAuthURL(context.Context) error {
	f.record("fetch")
	if f.onFetch != nil {
		f.mu.Lock()
		f.onFetch(&f.session)
		f.mu.Unlock()
	}
	return f.err
}

func (f *fakeService) Verify(context.Context) error { f.record("verify"); return f.err }
func (f *fakeService) Submit(context.Context) error { f.record("submit"); return f.err }
func (f *fakeService) ConnectWallet(context.Context) error {
	f.record("wallet")
	return f.err
}
func (f *fakeService) CheckAllowList(context.Context) error {
	f.record("check")
	return f.err
}
func (f *fakeService) EnterRecoveryCheck(context.Context) error {
	f.record("returning")
	return f.err
}
func (f *fakeService) AccountsChanged(context.Context, string) (bool, error) {
	f.record("accounts_changed")
	return f.reset, f.err
}
func (f *fakeService) ClearProgress(context.Context) error {
	f.record("clear")
	return f.err
}
func (f *fakeService) CachedAllowListed(context.Context) onboarding.Tristate { return f.cached }
func (f *fakeService) ClaimURL() (string, error) {
	f.record("claim")
	if f.err != nil {
		return "", f.err
	}
	return "http://backend/claim?username=" + f.Session().ClaimUsername(), nil
}
func (f *fakeService) Ping(context.Context) error { return f.pingErr }
