package discord

import (
	"crypto/ed25519"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"

	"github.com/bwmarrin/discordgo"
)

var ErrBadPublicKey = errors.New("discord: invalid public key")

// ParsePublicKey decodes the application's hex public key.
func ParsePublicKey(hexKey string) (ed25519.PublicKey, error) {
	b, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPublicKey, err)
	}
	if len(b) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("%w: got %d bytes", ErrBadPublicKey, len(b))
	}
	return ed25519.PublicKey(b), nil
}

// VerifyRequest checks the X-Signature-Ed25519 header over timestamp+body.
// The request body is left readable.
func VerifyRequest(r *http.Request, key ed25519.PublicKey) bool {
	if len(key) != ed25519.PublicKeySize {
		return false
	}
	if r.Header.Get("X-Signature-Timestamp") == "" || r.Header.Get("X-Signature-Ed25519") == "" {
		return false
	}
	return discordgo.VerifyInteraction(r, key)
}
