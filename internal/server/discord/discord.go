// Package discord talks to the Discord API on behalf of the backend: OAuth2
// code exchange and refresh, the current-user lookup and role grants.
package discord

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
)

var (
	ErrTokenExchange = errors.New("discord token exchange failed")
	ErrLookup        = errors.New("discord user lookup failed")
	ErrRoleGrant     = errors.New("discord role grant failed")
)

const DefaultAPIBase = "https://discord.com/api"

// Identity is the Discord user behind an access token.
type Identity struct {
	ID string
	// Username is "name#discriminator".
	Username string
}

type Client interface {
	// Exchange trades an authorization code for tokens.
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	// Refresh trades a refresh token for a fresh access token.
	Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error)
	Me(ctx context.Context, accessToken string) (*Identity, error)
	// GrantRole gives the configured guild role to userID.
	GrantRole(ctx context.Context, userID string) error
}

type Options struct {
	APIBase      string
	ClientID     string
	ClientSecret string
	RedirectURI  string
	BotToken     string
	GuildID      string
	RoleID       string
}

type HTTPClient struct {
	opts  Options
	oauth *oauth2.Config
	http  *http.Client
}

func NewHTTPClient(opts Options, hc *http.Client) *HTTPClient {
	if opts.APIBase == "" {
		opts.APIBase = DefaultAPIBase
	}
	opts.APIBase = strings.TrimRight(opts.APIBase, "/")

	return &HTTPClient{
		opts: opts,
		oauth: &oauth2.Config{
			ClientID:     opts.ClientID,
			ClientSecret: opts.ClientSecret,
			RedirectURL:  opts.RedirectURI,
			Scopes:       []string{"identify"},
			Endpoint: oauth2.Endpoint{
				AuthURL:   opts.APIBase + "/oauth2/authorize",
				TokenURL:  opts.APIBase + "/oauth2/token",
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		http: hc,
	}
}

func (c *HTTPClient) withClient(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, c.http)
}

func (c *HTTPClient) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	tok, err := c.oauth.Exchange(c.withClient(ctx), code)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTokenExchange, err)
	}
	return tok, nil
}

func (c *HTTPClient) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	ts := c.oauth.TokenSource(c.withClient(ctx), &oauth2.Token{RefreshToken: refreshToken})
	tok, err := ts.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTokenExchange, err)
	}
	return tok, nil
}

type meResponse struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Discriminator string `json:"discriminator"`
}

func (c *HTTPClient) Me(ctx context.Context, accessToken string) (*Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.opts.APIBase+"/users/@me", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLookup, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrLookup, resp.StatusCode)
	}

	var me meResponse
	if err := json.NewDecoder(resp.Body).Decode(&me); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLookup, err)
	}
	if me.ID == "" {
		return nil, fmt.Errorf("%w: empty user id", ErrLookup)
	}

	return &Identity{ID: me.ID, Username: me.Username + "#" + me.Discriminator}, nil
}

func (c *HTTPClient) GrantRole(ctx context.Context, userID string) error {
	u := fmt.Sprintf("%s/v9/guilds/%s/members/%s/roles/%s", c.opts.APIBase, c.opts.GuildID, userID, c.opts.RoleID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bot "+c.opts.BotToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRoleGrant, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("%w: status %d", ErrRoleGrant, resp.StatusCode)
	}
	return nil
}
