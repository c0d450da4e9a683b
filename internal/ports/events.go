package ports

import "context"

// Event type names published by the core. Subscribers (audit, alerting)
// attach through the EventPublisher implementation, not a global bus.
const (
	EventUserRegistered         = "user.registered"
	EventUserLogin              = "user.login"
	EventSessionRevoked         = "session.revoked"
	EventLicenseCreated         = "license.created"
	EventLicenseActivated       = "license.activated"
	EventLicenseDeactivated     = "license.deactivated"
	EventLicenseRevoked         = "license.revoked"
	EventActivationLimitReached = "activation.limit_reached"
	EventSuspiciousActivity     = "security.suspicious_activity"
	EventTokenReuseDetected     = "security.token_reuse"
)

// EventPublisher is the outbound domain-event publish port.
// The application uses this abstraction to keep subscriber concerns in
// adapters; publishing is best-effort and must never block a primary flow.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, payload []byte) error
}
