package keycodec

import (
	"fmt"
	"strings"
)

// Checksum computes a 4-digit additive code over the key string.
// This is a typo/tamper guard for support workflows, not a security
// control; anyone holding a key can recompute it.
func Checksum(key string) string {
	var sum int
	for i, r := range key {
		sum += int(r) * (i + 1)
	}
	return fmt.Sprintf("%04d", sum%10000)
}

// AddChecksum appends the checksum as a trailing segment.
func AddChecksum(key string) string {
	return key + Separator + Checksum(key)
}

// VerifyChecksum splits the trailing segment and recomputes.
// Keys without a checksum segment fail verification.
func VerifyChecksum(keyWithChecksum string) bool {
	idx := strings.LastIndex(keyWithChecksum, Separator)
	if idx <= 0 || idx == len(keyWithChecksum)-1 {
		return false
	}
	key, check := keyWithChecksum[:idx], keyWithChecksum[idx+1:]
	if len(check) != 4 {
		return false
	}
	return Checksum(key) == check
}

// StripChecksum removes a verified trailing checksum segment.
// The key is returned unchanged when no valid checksum is present.
func StripChecksum(keyWithChecksum string) string {
	if !VerifyChecksum(keyWithChecksum) {
		return keyWithChecksum
	}
	idx := strings.LastIndex(keyWithChecksum, Separator)
	return keyWithChecksum[:idx]
}
