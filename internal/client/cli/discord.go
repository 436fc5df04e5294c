package cli

import (
	"golang.org/x/oauth2"

	"github.com/dmitrijs2005/boardingpass/internal/client/config"
)

// discordAuthURL builds the authorize URL for the identify scope. The code
// comes back to RedirectURI together with state.
func discordAuthURL(c *config.Config, state string) string {
	oc := &oauth2.Config{
		ClientID:    c.DiscordClientID,
		RedirectURL: c.RedirectURI,
		Scopes:      []string{"identify"},
		Endpoint: oauth2.Endpoint{
			AuthURL: c.DiscordAuthURL,
		},
	}
	return oc.AuthCodeURL(state, oauth2.SetAuthURLParam("prompt", "consent"))
}
