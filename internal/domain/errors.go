package domain

import "errors"

var (
	// ErrNotFound is returned when the requested resource does not exist.
	// Keeping this sentinel in domain allows adapters to map it consistently to 404/NOT_FOUND.
	ErrNotFound = errors.New("resource not found")
	// ErrInvalidCredentials hides whether the identifier or the password failed.
	// The reason is to prevent account-enumeration side channels.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountDisabled covers banned/suspended accounts, checked before the password.
	ErrAccountDisabled = errors.New("account disabled")
	ErrSessionRevoked  = errors.New("session revoked")
	ErrSessionExpired  = errors.New("session expired")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrInvalidInput    = errors.New("invalid input")
	ErrConflict        = errors.New("conflict")
	ErrRateLimited     = errors.New("rate limited")

	// Token failure taxonomy. All are terminal for the current request;
	// refresh/retry is the caller's responsibility.
	ErrTokenExpired        = errors.New("token expired")
	ErrInvalidToken        = errors.New("invalid token")
	ErrInvalidTokenType    = errors.New("invalid token type")
	ErrFingerprintMismatch = errors.New("token fingerprint mismatch")

	// ErrTokenReuseDetected signals token-family compromise on refresh.
	// The session is revoked before this is returned, never soft-retried.
	ErrTokenReuseDetected = errors.New("refresh token reuse detected")

	// ErrMaxActivationsReached is returned when a license activation would
	// exceed the quota. The quota check and increment are one atomic unit.
	ErrMaxActivationsReached = errors.New("max activations reached")
)
