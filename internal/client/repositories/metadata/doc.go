// Package metadata stores small string values by key in the client's local
// SQLite database. It backs the redirect-recovery store.
package metadata
