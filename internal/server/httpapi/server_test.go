package httpapi

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/boardingpass/internal/api"
	"github.com/dmitrijs2005/boardingpass/internal/logging"
)

// slowAuthService answers TwitterAuthURL after a delay, giving up only if
// the request context ends first.
type slowAuthService struct {
	fakeService
	delay   time.Duration
	started chan struct{}
}

func (s *slowAuthService) TwitterAuthURL(ctx context.Context) (string, error) {
	close(s.started)
	select {
	case <-time.After(s.delay):
		return "https://api.twitter.com/oauth/authenticate?oauth_token=slow", nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

func TestRun_DrainsInFlightRequestsOnShutdown(t *testing.T) {
	addr := freeAddr(t)
	svc := &slowAuthService{delay: 300 * time.Millisecond, started: make(chan struct{})}
	srv := NewServer(addr, nil, 2*time.Second, svc, logging.Nop{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	base := fmt.Sprintf("http://%s", addr)
	require.Eventually(t, func() bool {
		resp, err := http.Get(base + api.PathHealth)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return true
	}, 2*time.Second, 10*time.Millisecond)

	type result struct {
		status int
		body   string
		err    error
	}
	got := make(chan result, 1)
	go func() {
		resp, err := http.Get(base + api.PathTwitterToken)
		if err != nil {
			got <- result{err: err}
			return
		}
		defer resp.Body.Close()
		b, _ := io.ReadAll(resp.Body)
		got <- result{status: resp.StatusCode, body: string(b)}
	}()

	<-svc.started
	cancel()

	r := <-got
	require.NoError(t, r.err)
	assert.Equal(t, http.StatusOK, r.status)
	assert.Contains(t, r.body, "oauth_token=slow")

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop after draining")
	}
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	t.Parallel()

	srv := NewServer("127.0.0.1:0", nil, time.Second, &fakeService{}, logging.Nop{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- srv.Run(ctx)
	}()

	select {
	case err := <-done:
		t.Fatalf("server exited too early: %v", err)
	case <-time.After(150 * time.Millisecond):
	}

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop within timeout after context cancel")
	}
}

func TestRun_ReturnsErrorOnBadAddress(t *testing.T) {
	t.Parallel()

	srv := NewServer("127.0.0.1:99999", nil, time.Second, &fakeService{}, logging.Nop{})
	require.Error(t, srv.Run(context.Background()))
}
