package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/dmitrijs2005/boardingpass/internal/api"
)

const maxErrorBody = 4 << 10

type HTTPClient struct {
	baseURL string
	http    *retryablehttp.Client
}

func NewHTTPClient(baseURL string, hc *retryablehttp.Client) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("server url %q: scheme must be http or https", baseURL)
	}
	return &HTTPClient{baseURL: strings.TrimRight(u.String(), "/"), http: hc}, nil
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	var out api.HealthResponse
	return c.do(ctx, http.MethodGet, api.PathHealth, nil, &out)
}

func (c *HTTPClient) TwitterAuthURL(ctx context.Context) (string, error) {
	var out api.TwitterTokenResponse
	if err := c.do(ctx, http.MethodGet, api.PathTwitterToken, nil, &out); err != nil {
		return "", err
	}
	if out.AuthURL == "" {
		return "", fmt.Errorf("%w: empty auth_url", ErrMalformedResponse)
	}
	return out.AuthURL, nil
}

func (c *HTTPClient) Verify(ctx context.Context, req api.VerifyRequest) (*api.VerifyResponse, error) {
	var out api.VerifyResponse
	if err := c.do(ctx, http.MethodPost, api.PathVerify, req, &out); err != nil {
		return nil, err
	}
	if out.Success && (out.Discord == nil || out.Twitter == nil) {
		return nil, fmt.Errorf("%w: verification succeeded without a profile", ErrMalformedResponse)
	}
	return &out, nil
}

func (c *HTTPClient) Submit(ctx context.Context, req api.SubmitRequest) (*api.SubmitResponse, error) {
	var out api.SubmitResponse
	if err := c.do(ctx, http.MethodPost, api.PathSubmit, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) AllowListed(ctx context.Context, address string) (*api.AllowListResponse, error) {
	var out api.AllowListResponse
	if err := c.do(ctx, http.MethodGet, api.PathAllowListed+url.PathEscape(address), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) ClaimURL(username string) string {
	return c.baseURL + api.PathClaim + "?" + url.Values{"username": {username}}.Encode()
}

func (c *HTTPClient) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return c.mapError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.statusError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

func (c *HTTPClient) statusError(resp *http.Response) error {
	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var e api.ErrorResponse
	if err := json.Unmarshal(data, &e); err != nil || e.Error == "" {
		e.Error = http.StatusText(resp.StatusCode)
	}
	return &RejectedError{Status: resp.StatusCode, Message: e.Error}
}

func (c *HTTPClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
