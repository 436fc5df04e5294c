// Package twitter wraps the Twitter endpoints the backend needs: the
// OAuth 1.0a sign-in handshake and bearer-token user lookups.
package twitter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/dghubble/oauth1"
)

var (
	ErrRequestToken = errors.New("twitter request token failed")
	ErrAccessToken  = errors.New("twitter access token failed")
	ErrLookup       = errors.New("twitter user lookup failed")
)

const DefaultAPIBase = "https://api.twitter.com"

// Identity is the account that completed the sign-in.
type Identity struct {
	ID       string
	Username string
}

type Client interface {
	// AuthURL starts a sign-in and returns the authenticate page URL.
	AuthURL(ctx context.Context) (string, error)
	// AccessToken finishes a sign-in and reports who signed in.
	AccessToken(ctx context.Context, token, verifier string) (*Identity, error)
	// Username resolves a user id to the current screen name.
	Username(ctx context.Context, id string) (string, error)
	// ProfileImageURL returns the 400x400 avatar URL for username.
	ProfileImageURL(ctx context.Context, username string) (string, error)
}

type Options struct {
	APIBase        string
	ConsumerKey    string
	ConsumerSecret string
	BearerToken    string
	CallbackURL    string
}

type HTTPClient struct {
	opts  Options
	oauth *oauth1.Config
	http  *http.Client
}

func NewHTTPClient(opts Options, hc *http.Client) *HTTPClient {
	if opts.APIBase == "" {
		opts.APIBase = DefaultAPIBase
	}
	opts.APIBase = strings.TrimRight(opts.APIBase, "/")

	return &HTTPClient{
		opts: opts,
		oauth: &oauth1.Config{
			ConsumerKey:    opts.ConsumerKey,
			ConsumerSecret: opts.ConsumerSecret,
			CallbackURL:    opts.CallbackURL,
			Endpoint: oauth1.Endpoint{
				RequestTokenURL: opts.APIBase + "/oauth/request_token",
				AuthorizeURL:    opts.APIBase + "/oauth/authenticate",
				AccessTokenURL:  opts.APIBase + "/oauth/access_token",
			},
		},
		http: hc,
	}
}

func (c *HTTPClient) AuthURL(ctx context.Context) (string, error) {
	requestToken, _, err := c.oauth.RequestToken()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrRequestToken, err)
	}
	u, err := c.oauth.AuthorizationURL(requestToken)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrRequestToken, err)
	}
	return u.String(), nil
}

// AccessToken posts the token and verifier to the access_token endpoint. The
// form-encoded reply carries user_id and screen_name next to the tokens.
func (c *HTTPClient) AccessToken(ctx context.Context, token, verifier string) (*Identity, error) {
	q := url.Values{"oauth_token": {token}, "oauth_verifier": {verifier}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.APIBase+"/oauth/access_token?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAccessToken, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrAccessToken, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAccessToken, err)
	}
	values, err := url.ParseQuery(string(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAccessToken, err)
	}

	id := &Identity{ID: values.Get("user_id"), Username: values.Get("screen_name")}
	if id.ID == "" || id.Username == "" {
		return nil, fmt.Errorf("%w: missing user_id or screen_name", ErrAccessToken)
	}
	return id, nil
}

type userResponse struct {
	Data struct {
		ID              string `json:"id"`
		Username        string `json:"username"`
		ProfileImageURL string `json:"profile_image_url"`
	} `json:"data"`
}

func (c *HTTPClient) lookup(ctx context.Context, path string) (*userResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.opts.APIBase+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.opts.BearerToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLookup, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrLookup, resp.StatusCode)
	}

	var ur userResponse
	if err := json.NewDecoder(resp.Body).Decode(&ur); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLookup, err)
	}
	return &ur, nil
}

func (c *HTTPClient) Username(ctx context.Context, id string) (string, error) {
	ur, err := c.lookup(ctx, "/2/users/"+url.PathEscape(id))
	if err != nil {
		return "", err
	}
	if ur.Data.Username == "" {
		return "", fmt.Errorf("%w: no username for %s", ErrLookup, id)
	}
	return ur.Data.Username, nil
}

func (c *HTTPClient) ProfileImageURL(ctx context.Context, username string) (string, error) {
	ur, err := c.lookup(ctx, "/2/users/by/username/"+url.PathEscape(username)+"?user.fields=profile_image_url")
	if err != nil {
		return "", err
	}
	if ur.Data.ProfileImageURL == "" {
		return "", fmt.Errorf("%w: no profile image for %s", ErrLookup, username)
	}
	return strings.Replace(ur.Data.ProfileImageURL, "normal", "400x400", 1), nil
}
