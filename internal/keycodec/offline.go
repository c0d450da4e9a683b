package keycodec

import (
	"crypto/hmac"
	"crypto/sha256"
	"errors"
)

// OfflineCodec derives deterministic offline validation codes.
// A client holding a code issued during a prior online validation can
// confirm a key/hardware pairing with no network access. The derivation is
// keyed with a server-side secret so clients cannot mint codes themselves.
type OfflineCodec struct {
	secret []byte
}

const offlineCodeLength = 8

// NewOfflineCodec builds a codec from the server-side derivation secret.
func NewOfflineCodec(secret []byte) (*OfflineCodec, error) {
	if len(secret) == 0 {
		return nil, errors.New("offline code secret is required")
	}
	return &OfflineCodec{secret: secret}, nil
}

// Code derives the 8-character offline code for a key/hardware pairing.
// Changing either input changes the code.
func (c *OfflineCodec) Code(key, hardwareID string) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(key))
	mac.Write([]byte{0})
	mac.Write([]byte(hardwareID))
	sum := mac.Sum(nil)

	out := make([]byte, offlineCodeLength)
	for i := range out {
		out[i] = Alphabet[int(sum[i])%len(Alphabet)]
	}
	return string(out)
}

// Verify recomputes the code and compares in constant time.
func (c *OfflineCodec) Verify(key, hardwareID, code string) bool {
	expected := c.Code(key, hardwareID)
	return hmac.Equal([]byte(expected), []byte(code))
}
