// Package api holds the JSON bodies exchanged between the onboarding client
// and the allow-list backend.
package api

const (
	PathTwitterToken = "/oauth1/twitter/token"
	PathVerify       = "/oauth/verify"
	PathSubmit       = "/submit"
	PathAllowListed  = "/allowlisted/"
	PathClaim        = "/claim"
	PathHealth       = "/healthz"
	PathMetrics      = "/metrics"
)

type TwitterTokenResponse struct {
	AuthURL string `json:"auth_url"`
}

type VerifyRequest struct {
	DiscordCode     string `json:"discordCode"`
	TwitterToken    string `json:"twitterToken"`
	TwitterVerifier string `json:"twitterVerifier"`
}

type DiscordProfile struct {
	Username     string `json:"username"`
	RefreshToken string `json:"refresh_token"`
}

type TwitterProfile struct {
	Username string `json:"username"`
	ID       string `json:"id"`
}

type VerifyResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Discord *DiscordProfile `json:"discord,omitempty"`
	Twitter *TwitterProfile `json:"twitter,omitempty"`
}

type SubmitRequest struct {
	DiscordRefresh string `json:"discordRefresh"`
	TwitterID      string `json:"twitterId"`
	WalletAddress  string `json:"walletAddress"`
}

type SubmitResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type AllowListResponse struct {
	Success  bool   `json:"success"`
	Username string `json:"username,omitempty"`
	Message  string `json:"message,omitempty"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

// ErrorResponse is sent with HTTP 400 for malformed or rejected requests.
type ErrorResponse struct {
	Error string `json:"error"`
}
