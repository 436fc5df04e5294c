package httpapi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/boardingpass/internal/api"
	"github.com/dmitrijs2005/boardingpass/internal/logging"
	"github.com/dmitrijs2005/boardingpass/internal/server/services"
)

type fakeService struct {
	authURL   string
	verify    *api.VerifyResponse
	submit    *api.SubmitResponse
	listed    *api.AllowListResponse
	pass      *services.Pass
	err       error
	pingErr   error
	gotVerify api.VerifyRequest
	gotSubmit api.SubmitRequest
	gotAddr   string
	gotUser   string
}

func (f *fakeService) TwitterAuthURL(context.Context) (string, error) { return f.authURL, f.err }
func (f *fakeService) Ping(context.Context) error                      { return f.pingErr }

func (f *fakeService) Verify(_ context.Context, req api.VerifyRequest) (*api.VerifyResponse, error) {
	f.gotVerify = req
	return f.verify, f.err
}

func (f *fakeService) Submit(_ context.Context, req api.SubmitRequest) (*api.SubmitResponse, error) {
	f.gotSubmit = req
	return f.submit, f.err
}

func (f *fakeService) AllowListed(_ context.Context, address string) (*api.AllowListResponse, error) {
	f.gotAddr = address
	return f.listed, f.err
}

func (f *fakeService) Claim(_ context.Context, username string) (*services.Pass, error) {
	f.gotUser = username
	return f.pass, f.err
}

func newTestServer(svc services.AllowListService) *httptest.Server {
	s := NewServer("127.0.0.1:0", []string{"https://app.example"}, time.Second, svc, logging.Nop{})
	return httptest.NewServer(s.Router())
}

func decode[T any](t *testing.T, body io.Reader) T {
	t.Helper()
	var v T
	require.NoError(t, render.DecodeJSON(body, &v))
	return v
}

func TestHealth(t *testing.T) {
	svc := &fakeService{}
	ts := newTestServer(svc)
	defer ts.Close()

	resp, err := http.Get(ts.URL + api.PathHealth)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", decode[api.HealthResponse](t, resp.Body).Status)

	svc.pingErr = errors.New("down")
	resp2, err := http.Get(ts.URL + api.PathHealth)
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp2.StatusCode)
}

func TestTwitterToken(t *testing.T) {
	ts := newTestServer(&fakeService{authURL: "https://api.twitter.com/oauth/authenticate?oauth_token=t"})
	defer ts.Close()

	resp, err := http.Get(ts.URL + api.PathTwitterToken)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "https://api.twitter.com/oauth/authenticate?oauth_token=t",
		decode[api.TwitterTokenResponse](t, resp.Body).AuthURL)
}

func TestVerify(t *testing.T) {
	svc := &fakeService{verify: &api.VerifyResponse{
		Success: true,
		Discord: &api.DiscordProfile{Username: "pilot#0001", RefreshToken: "r"},
		Twitter: &api.TwitterProfile{Username: "pilot", ID: "42"},
	}}
	ts := newTestServer(svc)
	defer ts.Close()

	body := `{"discordCode":"c","twitterToken":"t","twitterVerifier":"v"}`
	resp, err := http.Post(ts.URL+api.PathVerify, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, api.VerifyRequest{DiscordCode: "c", TwitterToken: "t", TwitterVerifier: "v"}, svc.gotVerify)
	out := decode[api.VerifyResponse](t, resp.Body)
	assert.True(t, out.Success)
	assert.Equal(t, "42", out.Twitter.ID)
}

func TestVerify_MalformedBody(t *testing.T) {
	ts := newTestServer(&fakeService{})
	defer ts.Close()

	resp, err := http.Post(ts.URL+api.PathVerify, "application/json", strings.NewReader("{"))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, services.MsgInvalidPayload, decode[api.ErrorResponse](t, resp.Body).Error)
}

func TestSubmit_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"rejection", &services.RequestError{Message: services.MsgMismatch, Err: services.ErrMismatch}, http.StatusBadRequest, services.MsgMismatch},
		{"internal", errors.New("db down"), http.StatusInternalServerError, "Internal Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(&fakeService{err: tt.err})
			defer ts.Close()

			body := `{"discordRefresh":"r","twitterId":"42","walletAddress":"0x0"}`
			resp, err := http.Post(ts.URL+api.PathSubmit, "application/json", strings.NewReader(body))
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, tt.wantMsg, decode[api.ErrorResponse](t, resp.Body).Error)
		})
	}
}

func TestSubmit_Success(t *testing.T) {
	svc := &fakeService{submit: &api.SubmitResponse{Success: true, Message: services.MsgAddressSubmitted}}
	ts := newTestServer(svc)
	defer ts.Close()

	body := `{"discordRefresh":"r","twitterId":"42","walletAddress":"0xabc"}`
	resp, err := http.Post(ts.URL+api.PathSubmit, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "0xabc", svc.gotSubmit.WalletAddress)
	assert.Equal(t, services.MsgAddressSubmitted, decode[api.SubmitResponse](t, resp.Body).Message)
}

func TestAllowListed(t *testing.T) {
	svc := &fakeService{listed: &api.AllowListResponse{Success: true, Username: "pilot"}}
	ts := newTestServer(svc)
	defer ts.Close()

	resp, err := http.Get(ts.URL + api.PathAllowListed + "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", svc.gotAddr)
	assert.Equal(t, "pilot", decode[api.AllowListResponse](t, resp.Body).Username)
}

func TestClaim(t *testing.T) {
	png := []byte("\x89PNG fake")
	svc := &fakeService{pass: &services.Pass{Filename: "BP_pilot.png", PNG: png}}
	ts := newTestServer(svc)
	defer ts.Close()

	resp, err := http.Get(ts.URL + api.PathClaim + "?username=pilot")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "pilot", svc.gotUser)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	assert.Equal(t, "attachment; filename=BP_pilot.png", resp.Header.Get("Content-Disposition"))

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, png, data)
}

func TestClaim_NotAllowListed(t *testing.T) {
	ts := newTestServer(&fakeService{err: &services.RequestError{Message: services.MsgNotAllowListed}})
	defer ts.Close()

	resp, err := http.Get(ts.URL + api.PathClaim + "?username=ghost")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, services.MsgNotAllowListed, decode[api.ErrorResponse](t, resp.Body).Error)
}

func TestCORS(t *testing.T) {
	ts := newTestServer(&fakeService{})
	defer ts.Close()

	req, err := http.NewRequest(http.MethodOptions, ts.URL+api.PathVerify, nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "https://app.example", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(&fakeService{})
	defer ts.Close()

	health, err := http.Get(ts.URL + api.PathHealth)
	require.NoError(t, err)
	health.Body.Close()

	resp, err := http.Get(ts.URL + api.PathMetrics)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(data), `boardingpass_http_requests_total{route="/healthz",status="200"}`)
}
