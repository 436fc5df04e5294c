// Package cli is the interactive onboarding client.
//
// It wires configuration, the local database, the backend and wallet
// clients and the onboarding service, then runs a REPL next to a local
// HTTP listener that receives the OAuth redirects from Discord and Twitter.
// Background watchers track backend reachability and wallet account
// changes.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
