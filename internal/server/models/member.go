// Package models holds the server's persistent records.
package models

import "time"

// Member is one allow-list entry. Handles come from the import; the ids
// are filled in on the first successful verification and Address once the
// member submits a wallet.
type Member struct {
	ID        string
	Twitter   string
	TwitterID string
	Discord   string
	DiscordID string
	Address   string
	Project   string
	CreatedAt time.Time
}

// ProfilePopulated reports whether both provider ids are known.
func (m *Member) ProfilePopulated() bool {
	return m.TwitterID != "" && m.DiscordID != ""
}

// HasAddress reports whether a wallet was already submitted.
func (m *Member) HasAddress() bool {
	return m.Address != ""
}
