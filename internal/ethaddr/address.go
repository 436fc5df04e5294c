// Package ethaddr validates and normalises Ethereum account addresses.
//
// Normalised addresses use the mixed-case checksum encoding from EIP-55, the
// same form wallets report and the allow-list stores.
package ethaddr

import (
	"encoding/hex"
	"errors"
	"strings"

	"golang.org/x/crypto/sha3"
)

// ErrInvalidAddress is returned when a string is not a 20-byte hex address.
var ErrInvalidAddress = errors.New("invalid ethereum address")

const addressHexLen = 40

func stripPrefix(s string) string {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return s[2:]
	}
	return s
}

// IsHexAddress reports whether s is 40 hex characters, optionally 0x-prefixed.
// Letter case is not checked.
func IsHexAddress(s string) bool {
	body := stripPrefix(s)
	if len(body) != addressHexLen {
		return false
	}
	_, err := hex.DecodeString(body)
	return err == nil
}

// IsAddress reports whether s is a valid address. All-lower and all-upper
// hex bodies are accepted as-is; mixed case must carry a valid checksum.
func IsAddress(s string) bool {
	if !IsHexAddress(s) {
		return false
	}
	body := stripPrefix(s)
	if body == strings.ToLower(body) || body == strings.ToUpper(body) {
		return true
	}
	sum, err := Checksum(s)
	if err != nil {
		return false
	}
	return stripPrefix(sum) == body
}

// Checksum returns the EIP-55 encoding of s with a 0x prefix.
func Checksum(s string) (string, error) {
	if !IsHexAddress(s) {
		return "", ErrInvalidAddress
	}
	lower := strings.ToLower(stripPrefix(s))

	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(lower))
	digest := h.Sum(nil)

	out := make([]byte, 0, addressHexLen+2)
	out = append(out, '0', 'x')
	for i := 0; i < len(lower); i++ {
		c := lower[i]
		nibble := digest[i/2]
		if i%2 == 0 {
			nibble >>= 4
		} else {
			nibble &= 0x0f
		}
		if c >= 'a' && c <= 'f' && nibble >= 8 {
			c -= 'a' - 'A'
		}
		out = append(out, c)
	}
	return string(out), nil
}

// Equal compares two addresses ignoring case and prefix.
func Equal(a, b string) bool {
	return strings.EqualFold(stripPrefix(a), stripPrefix(b))
}
