package crypto

import (
	"crypto/rand"
	"encoding/base64"
)

// NewSessionToken returns an opaque bearer token. The token itself is the
// admin_sessions primary key; there is nothing to decode or verify offline.
func NewSessionToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
