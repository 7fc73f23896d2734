package signer

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"hash"
)

// Codec lists the signer methods the handlers rely on.
// Implementations must be safe for concurrent use.
type Codec interface {
	EncodeLeaderboardCursor(scope string, offset int) string
	DecodeLeaderboardCursor(token string) (scope string, offset int, err error)
}

// HMAC implements Codec using HMAC-SHA256 for integrity.
// It encodes payloads as base64 URL without padding.
type HMAC struct {
	key []byte
	h   func() hash.Hash
}

// NewHMAC creates an HMAC signer with the provided secret key.
func NewHMAC(key []byte) *HMAC {
	return &HMAC{key: append([]byte(nil), key...), h: sha256.New}
}

// seal signs the payload and returns a base64url token payload||sig.
func (c *HMAC) seal(payload []byte) string {
	mac := hmac.New(c.h, c.key)
	mac.Write(payload)
	sig := mac.Sum(nil)
	buf := append(payload[:len(payload):len(payload)], sig...)
	return base64.RawURLEncoding.EncodeToString(buf)
}

// open verifies the token and returns the payload bytes.
func (c *HMAC) open(token string, minPayloadLen int) ([]byte, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, err
	}
	if len(raw) < minPayloadLen+32 {
		return nil, errors.New("invalid_cursor_length")
	}
	payload := raw[:len(raw)-32]
	sig := raw[len(raw)-32:]
	mac := hmac.New(c.h, c.key)
	mac.Write(payload)
	expected := mac.Sum(nil)
	if !hmac.Equal(sig, expected) {
		return nil, errors.New("invalid_cursor_signature")
	}
	return payload, nil
}

// Leaderboard signer: offset(uint32) + scopeLen(uint16) + scope bytes.
// The scope binds a cursor to the board it was issued for.
func (c *HMAC) EncodeLeaderboardCursor(scope string, offset int) string {
	scopeBytes := []byte(scope)
	payload := make([]byte, 4+2+len(scopeBytes))
	binary.BigEndian.PutUint32(payload[0:4], uint32(offset))
	binary.BigEndian.PutUint16(payload[4:6], uint16(len(scopeBytes)))
	copy(payload[6:], scopeBytes)
	return c.seal(payload)
}

func (c *HMAC) DecodeLeaderboardCursor(token string) (string, int, error) {
	payload, err := c.open(token, 6)
	if err != nil {
		return "", 0, err
	}
	offset := int(binary.BigEndian.Uint32(payload[0:4]))
	scopeLen := int(binary.BigEndian.Uint16(payload[4:6]))
	if 6+scopeLen != len(payload) {
		return "", 0, errors.New("invalid_cursor_payload")
	}
	return string(payload[6:]), offset, nil
}
