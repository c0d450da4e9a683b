package application

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dcaplatform/authcore/internal/domain"
	"github.com/dcaplatform/authcore/internal/ports"
)

// In-memory fakes for the outbound ports. Every fake is safe for
// concurrent use so the quota race test can hammer them from goroutines.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[uuid.UUID]domain.User{}}
}

func (r *fakeUserRepo) Create(_ context.Context, user domain.User) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.UserID] = user
	return user, nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, userID uuid.UUID) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) FindByIdentifier(_ context.Context, identifier string) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	lowered := strings.ToLower(identifier)
	for _, user := range r.users {
		if user.Email == lowered || user.Username == identifier || (user.DiscordID != "" && user.DiscordID == identifier) {
			return user, nil
		}
	}
	return domain.User{}, domain.ErrNotFound
}

func (r *fakeUserRepo) ExistsEmail(_ context.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeUserRepo) ExistsUsername(_ context.Context, username string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeUserRepo) ExistsDiscordID(_ context.Context, discordID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.DiscordID == discordID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeUserRepo) UpdateStatus(_ context.Context, userID uuid.UUID, status domain.UserStatus, updatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok {
		return domain.ErrNotFound
	}
	user.Status = status
	user.UpdatedAt = updatedAt
	r.users[userID] = user
	return nil
}

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]domain.Session
	failNext error
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: map[uuid.UUID]domain.Session{}}
}

func (r *fakeSessionRepo) Create(_ context.Context, session domain.Session) (domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failNext != nil {
		err := r.failNext
		r.failNext = nil
		return domain.Session{}, err
	}
	r.sessions[session.SessionID] = session
	return session, nil
}

func (r *fakeSessionRepo) GetByID(_ context.Context, sessionID uuid.UUID) (domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[sessionID]
	if !ok {
		return domain.Session{}, domain.ErrNotFound
	}
	return session, nil
}

func (r *fakeSessionRepo) Update(_ context.Context, session domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[session.SessionID]; !ok {
		return domain.ErrNotFound
	}
	r.sessions[session.SessionID] = session
	return nil
}

func (r *fakeSessionRepo) ListActiveByUser(_ context.Context, userID uuid.UUID) ([]domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Session
	for _, s := range r.sessions {
		if s.UserID == userID && s.Status == domain.SessionStatusActive {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeSessionRepo) ListRecentByUser(_ context.Context, userID uuid.UUID, since time.Time) ([]domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Session
	for _, s := range r.sessions {
		if s.UserID == userID && s.LastActivityAt.After(since) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeSessionRepo) RevokeAllByUser(_ context.Context, userID uuid.UUID, reason string, revokedAt time.Time, exceptSessionID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var revoked int64
	for id, s := range r.sessions {
		if s.UserID != userID || s.Status != domain.SessionStatusActive || id == exceptSessionID {
			continue
		}
		at := revokedAt
		s.Status = domain.SessionStatusRevoked
		s.RevokedAt = &at
		s.RevokeReason = reason
		r.sessions[id] = s
		revoked++
	}
	return revoked, nil
}

func (r *fakeSessionRepo) MarkExpiredBefore(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var marked int64
	for id, s := range r.sessions {
		if s.Status == domain.SessionStatusActive && s.ExpiredByClock(now) {
			s.Status = domain.SessionStatusExpired
			r.sessions[id] = s
			marked++
		}
	}
	return marked, nil
}

type fakeLicenseRepo struct {
	mu    sync.Mutex
	byID  map[uuid.UUID]domain.LicenseKey
	byKey map[string]uuid.UUID
}

func newFakeLicenseRepo() *fakeLicenseRepo {
	return &fakeLicenseRepo{
		byID:  map[uuid.UUID]domain.LicenseKey{},
		byKey: map[string]uuid.UUID{},
	}
}

func (r *fakeLicenseRepo) Create(_ context.Context, license domain.LicenseKey) (domain.LicenseKey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byKey[license.Key]; exists {
		return domain.LicenseKey{}, domain.ErrConflict
	}
	r.byID[license.LicenseID] = license
	r.byKey[license.Key] = license.LicenseID
	return license, nil
}

func (r *fakeLicenseRepo) GetByKey(_ context.Context, key string) (domain.LicenseKey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byKey[key]
	if !ok {
		return domain.LicenseKey{}, domain.ErrNotFound
	}
	return r.byID[id], nil
}

func (r *fakeLicenseRepo) GetByID(_ context.Context, licenseID uuid.UUID) (domain.LicenseKey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	license, ok := r.byID[licenseID]
	if !ok {
		return domain.LicenseKey{}, domain.ErrNotFound
	}
	return license, nil
}

func (r *fakeLicenseRepo) KeyExists(_ context.Context, key string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.byKey[key]
	return ok, nil
}

func (r *fakeLicenseRepo) Update(_ context.Context, license domain.LicenseKey) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[license.LicenseID]; !ok {
		return domain.ErrNotFound
	}
	r.byID[license.LicenseID] = license
	return nil
}

func (r *fakeLicenseRepo) IncrementActivationsIfBelow(_ context.Context, licenseID uuid.UUID, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	license, ok := r.byID[licenseID]
	if !ok {
		return false, domain.ErrNotFound
	}
	if license.CurrentActivations >= license.MaxActivations {
		return false, nil
	}
	license.CurrentActivations++
	license.UpdatedAt = now
	r.byID[licenseID] = license
	return true, nil
}

func (r *fakeLicenseRepo) DecrementActivations(_ context.Context, licenseID uuid.UUID, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	license, ok := r.byID[licenseID]
	if !ok {
		return domain.ErrNotFound
	}
	if license.CurrentActivations > 0 {
		license.CurrentActivations--
	}
	license.UpdatedAt = now
	r.byID[licenseID] = license
	return nil
}

type fakeActivationRepo struct {
	mu       sync.Mutex
	rows     map[uuid.UUID]domain.Activation
	failNext error
}

func newFakeActivationRepo() *fakeActivationRepo {
	return &fakeActivationRepo{rows: map[uuid.UUID]domain.Activation{}}
}

func (r *fakeActivationRepo) Create(_ context.Context, activation domain.Activation) (domain.Activation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failNext != nil {
		err := r.failNext
		r.failNext = nil
		return domain.Activation{}, err
	}
	r.rows[activation.ActivationID] = activation
	return activation, nil
}

func (r *fakeActivationRepo) Find(_ context.Context, licenseID uuid.UUID, hardwareID string) (domain.Activation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.rows {
		if a.LicenseID == licenseID && a.HardwareID == hardwareID {
			return a, nil
		}
	}
	return domain.Activation{}, domain.ErrNotFound
}

func (r *fakeActivationRepo) Update(_ context.Context, activation domain.Activation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[activation.ActivationID]; !ok {
		return domain.ErrNotFound
	}
	r.rows[activation.ActivationID] = activation
	return nil
}

func (r *fakeActivationRepo) ListByLicense(_ context.Context, licenseID uuid.UUID) ([]domain.Activation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Activation
	for _, a := range r.rows {
		if a.LicenseID == licenseID {
			out = append(out, a)
		}
	}
	return out, nil
}

type fakeAuditRepo struct {
	mu      sync.Mutex
	records []domain.KeyValidation
	failing bool
}

func newFakeAuditRepo() *fakeAuditRepo { return &fakeAuditRepo{} }

func (r *fakeAuditRepo) AppendKeyValidation(_ context.Context, record domain.KeyValidation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failing {
		return fmt.Errorf("audit store down")
	}
	r.records = append(r.records, record)
	return nil
}

func (r *fakeAuditRepo) ListKeyValidationsSince(_ context.Context, licenseID uuid.UUID, since time.Time) ([]domain.KeyValidation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.KeyValidation
	for _, rec := range r.records {
		if rec.LicenseID == licenseID && rec.CreatedAt.After(since) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *fakeAuditRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

type fakeAttemptRepo struct {
	mu       sync.Mutex
	attempts []ports.LoginAttempt
}

func newFakeAttemptRepo() *fakeAttemptRepo { return &fakeAttemptRepo{} }

func (r *fakeAttemptRepo) Insert(_ context.Context, attempt ports.LoginAttempt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts = append(r.attempts, attempt)
	return nil
}

type fakeRateLimiter struct {
	mu     sync.Mutex
	counts map[string]int
}

func newFakeRateLimiter() *fakeRateLimiter {
	return &fakeRateLimiter{counts: map[string]int{}}
}

func (l *fakeRateLimiter) Allow(_ context.Context, key string, limit int, _ time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.counts[key]++
	return l.counts[key] <= limit, nil
}

func (l *fakeRateLimiter) Reset(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.counts, key)
	return nil
}

type fakeRevocationStore struct {
	mu      sync.Mutex
	revoked map[uuid.UUID]bool
}

func newFakeRevocationStore() *fakeRevocationStore {
	return &fakeRevocationStore{revoked: map[uuid.UUID]bool{}}
}

func (s *fakeRevocationStore) MarkRevoked(_ context.Context, sessionID uuid.UUID, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[sessionID] = true
	return nil
}

func (s *fakeRevocationStore) IsRevoked(_ context.Context, sessionID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revoked[sessionID], nil
}

type fakeValidationCache struct {
	mu      sync.Mutex
	entries map[string]ports.CachedValidation
}

func newFakeValidationCache() *fakeValidationCache {
	return &fakeValidationCache{entries: map[string]ports.CachedValidation{}}
}

func (c *fakeValidationCache) Get(_ context.Context, key string) (*ports.CachedValidation, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok {
		return nil, nil
	}
	return &entry, nil
}

func (c *fakeValidationCache) Put(_ context.Context, key string, value ports.CachedValidation, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	return nil
}

func (c *fakeValidationCache) Invalidate(_ context.Context, keyPrefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if strings.HasPrefix(key, keyPrefix) {
			delete(c.entries, key)
		}
	}
	return nil
}

type recordedEvent struct {
	Type    string
	Payload []byte
}

type fakeEventPublisher struct {
	mu     sync.Mutex
	events []recordedEvent
}

func newFakeEventPublisher() *fakeEventPublisher { return &fakeEventPublisher{} }

func (p *fakeEventPublisher) Publish(_ context.Context, eventType string, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{Type: eventType, Payload: payload})
	return nil
}

func (p *fakeEventPublisher) typesSeen() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

func (p *fakeEventPublisher) sawType(eventType string) bool {
	for _, t := range p.typesSeen() {
		if t == eventType {
			return true
		}
	}
	return false
}

// fakeHasher avoids bcrypt cost in orchestrator tests. Hashing is a plain
// digest; policy checks are reduced to a minimum length.
type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) {
	if len(password) < domain.MinPasswordLength {
		return "", domain.ErrInvalidInput
	}
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:]), nil
}

func (fakeHasher) Verify(password, hash string) bool {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:]) == hash
}

func (fakeHasher) ScoreStrength(password string) ports.StrengthResult {
	return ports.StrengthResult{Score: 3, Acceptable: len(password) >= domain.MinPasswordLength}
}

func (fakeHasher) GenerateSecurePassword(length int, _ ports.CharsetFlags) (string, error) {
	return strings.Repeat("x", length), nil
}
