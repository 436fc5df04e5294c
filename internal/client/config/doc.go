// Package config loads runtime configuration for the onboarding client.
//
// Sources, later ones winning:
//
//  1. Built-in defaults ((*Config).LoadDefaults).
//  2. An optional JSON file given with -c or -config.
//  3. Command-line flags.
//
// Flags
//
//	-s string   backend base URL
//	-l string   listen address for OAuth redirects
//	-r string   redirect URI registered with Discord and Twitter
//	-d string   Discord OAuth client id
//	-w string   wallet JSON-RPC endpoint
//	-f string   local database file
//	-t int      request timeout (seconds)
//	-i int      backend reachability check interval (seconds)
//	-p int      wallet account poll interval (seconds)
//	-v          verbose logging
//
// # JSON
//
//	{
//	  "server_url": "http://127.0.0.1:1337",
//	  "discord_client_id": "1019447189027688449",
//	  "request_timeout": "30s"
//	}
package config
