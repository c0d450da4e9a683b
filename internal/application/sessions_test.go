package application

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/dcaplatform/authcore/internal/domain"
	"github.com/dcaplatform/authcore/internal/ports"
)

type sessionFixture struct {
	manager     *SessionManager
	sessions    *fakeSessionRepo
	revocations *fakeRevocationStore
	events      *fakeEventPublisher
	now         time.Time
}

func newSessionFixture(t *testing.T, cfg Config) *sessionFixture {
	t.Helper()
	f := &sessionFixture{
		sessions:    newFakeSessionRepo(),
		revocations: newFakeRevocationStore(),
		events:      newFakeEventPublisher(),
		now:         time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	f.manager = NewSessionManager(SessionManagerDependencies{
		Config:      cfg,
		Sessions:    f.sessions,
		Revocations: f.revocations,
		Events:      f.events,
	})
	f.manager.nowFn = func() time.Time { return f.now }
	return f
}

func (f *sessionFixture) advance(d time.Duration) { f.now = f.now.Add(d) }

func TestSessionCreateEvictsOldestAtLimit(t *testing.T) {
	t.Parallel()
	f := newSessionFixture(t, Config{MaxConcurrentSessions: 3})
	ctx := context.Background()
	userID := uuid.New()

	var created []domain.Session
	for i := 0; i < 3; i++ {
		s, err := f.manager.Create(ctx, userID, domain.DeviceInfo{IPAddress: "10.0.0.1"})
		if err != nil {
			t.Fatalf("create session %d: %v", i, err)
		}
		created = append(created, s)
		f.advance(time.Minute)
	}

	// The fourth session must evict the first (oldest activity).
	fourth, err := f.manager.Create(ctx, userID, domain.DeviceInfo{})
	if err != nil {
		t.Fatalf("create fourth session: %v", err)
	}

	oldest, err := f.sessions.GetByID(ctx, created[0].SessionID)
	if err != nil {
		t.Fatalf("load oldest: %v", err)
	}
	if oldest.Status != domain.SessionStatusRevoked {
		t.Fatalf("oldest status = %s, want REVOKED", oldest.Status)
	}
	if oldest.RevokeReason != revokeReasonConcurrency {
		t.Fatalf("revoke reason = %q", oldest.RevokeReason)
	}

	active, _ := f.sessions.ListActiveByUser(ctx, userID)
	if len(active) != 3 {
		t.Fatalf("active sessions = %d, want 3", len(active))
	}
	for _, s := range created[1:] {
		if got, _ := f.sessions.GetByID(ctx, s.SessionID); got.Status != domain.SessionStatusActive {
			t.Fatalf("session %s status = %s, want ACTIVE", s.SessionID, got.Status)
		}
	}
	if got, _ := f.sessions.GetByID(ctx, fourth.SessionID); got.Status != domain.SessionStatusActive {
		t.Fatalf("new session not active")
	}
	if !f.events.sawType(ports.EventSessionRevoked) {
		t.Fatal("expected session.revoked event for eviction")
	}
}

func TestSessionValidateLazyExpiry(t *testing.T) {
	t.Parallel()
	f := newSessionFixture(t, Config{SessionAbsoluteTTL: time.Hour, SessionIdleTimeout: 30 * time.Minute})
	ctx := context.Background()

	s, err := f.manager.Create(ctx, uuid.New(), domain.DeviceInfo{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	f.advance(31 * time.Minute)
	check, err := f.manager.Validate(ctx, s.SessionID, ValidateOptions{CheckExpiry: true, CheckIdle: true})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if check.Valid || check.Reason != SessionReasonExpired {
		t.Fatalf("validation = %+v, want expired", check)
	}

	// The terminal transition must have been persisted.
	stored, _ := f.sessions.GetByID(ctx, s.SessionID)
	if stored.Status != domain.SessionStatusExpired {
		t.Fatalf("stored status = %s, want EXPIRED", stored.Status)
	}

	// Terminal states never transition back.
	f.advance(-20 * time.Minute)
	check, _ = f.manager.Validate(ctx, s.SessionID, ValidateOptions{CheckExpiry: true, CheckIdle: true})
	if check.Valid {
		t.Fatal("expired session validated after clock rollback")
	}
}

func TestSessionValidateSlidesIdleWindow(t *testing.T) {
	t.Parallel()
	f := newSessionFixture(t, Config{SessionAbsoluteTTL: 24 * time.Hour, SessionIdleTimeout: 30 * time.Minute})
	ctx := context.Background()

	s, err := f.manager.Create(ctx, uuid.New(), domain.DeviceInfo{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Touch the session every 20 minutes; the idle window must keep sliding.
	for i := 0; i < 4; i++ {
		f.advance(20 * time.Minute)
		check, err := f.manager.Validate(ctx, s.SessionID, ValidateOptions{CheckExpiry: true, CheckIdle: true, UpdateActivity: true})
		if err != nil {
			t.Fatalf("validate %d: %v", i, err)
		}
		if !check.Valid {
			t.Fatalf("validation %d invalid: %+v", i, check)
		}
	}

	stored, _ := f.sessions.GetByID(ctx, s.SessionID)
	if !stored.LastActivityAt.Equal(f.now) {
		t.Fatalf("last activity = %v, want %v", stored.LastActivityAt, f.now)
	}
}

func TestSessionValidateUnknownSession(t *testing.T) {
	t.Parallel()
	f := newSessionFixture(t, Config{})
	check, err := f.manager.Validate(context.Background(), uuid.New(), ValidateOptions{})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if check.Valid || check.Reason != SessionReasonInvalid {
		t.Fatalf("validation = %+v, want invalid", check)
	}
}

func TestSessionRevokeIsIdempotent(t *testing.T) {
	t.Parallel()
	f := newSessionFixture(t, Config{})
	ctx := context.Background()

	s, _ := f.manager.Create(ctx, uuid.New(), domain.DeviceInfo{})
	if err := f.manager.Revoke(ctx, s.SessionID, "logout"); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if err := f.manager.Revoke(ctx, s.SessionID, "logout"); err != nil {
		t.Fatalf("second revoke: %v", err)
	}

	stored, _ := f.sessions.GetByID(ctx, s.SessionID)
	if stored.Status != domain.SessionStatusRevoked || stored.RevokedAt == nil {
		t.Fatalf("stored = %+v, want revoked with timestamp", stored)
	}
	if revoked, _ := f.revocations.IsRevoked(ctx, s.SessionID); !revoked {
		t.Fatal("revocation marker missing")
	}
}

func TestSessionRevokeAllKeepsException(t *testing.T) {
	t.Parallel()
	f := newSessionFixture(t, Config{MaxConcurrentSessions: 10})
	ctx := context.Background()
	userID := uuid.New()

	var keep domain.Session
	for i := 0; i < 4; i++ {
		s, _ := f.manager.Create(ctx, userID, domain.DeviceInfo{})
		if i == 2 {
			keep = s
		}
	}

	revoked, err := f.manager.RevokeAll(ctx, userID, "logout all", keep.SessionID)
	if err != nil {
		t.Fatalf("revoke all: %v", err)
	}
	if revoked != 3 {
		t.Fatalf("revoked = %d, want 3", revoked)
	}
	active, _ := f.sessions.ListActiveByUser(ctx, userID)
	if len(active) != 1 || active[0].SessionID != keep.SessionID {
		t.Fatalf("surviving sessions = %+v, want only %s", active, keep.SessionID)
	}
}

func TestCheckAnomaliesAppendsTags(t *testing.T) {
	t.Parallel()
	f := newSessionFixture(t, Config{MaxConcurrentSessions: 10, AnomalyWindow: 2 * time.Hour})
	ctx := context.Background()
	userID := uuid.New()

	locations := []string{"US", "DE", "JP", "BR", "AU"}
	var last domain.Session
	for i, loc := range locations {
		s, err := f.manager.Create(ctx, userID, domain.DeviceInfo{
			Location:  loc,
			IPAddress: "203.0.113." + string(rune('1'+i)),
		})
		if err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
		last = s
		f.advance(time.Minute)
	}

	detected, err := f.manager.CheckAnomalies(ctx, last.SessionID)
	if err != nil {
		t.Fatalf("check anomalies: %v", err)
	}
	want := map[string]bool{AnomalyRapidLocationChanges: false, AnomalyMultipleIPAddresses: false}
	for _, tag := range detected {
		if _, ok := want[tag]; ok {
			want[tag] = true
		}
	}
	for tag, seen := range want {
		if !seen {
			t.Fatalf("tag %s not detected in %v", tag, detected)
		}
	}

	stored, _ := f.sessions.GetByID(ctx, last.SessionID)
	for tag := range want {
		if !stored.HasSecurityFlag(tag) {
			t.Fatalf("tag %s not persisted", tag)
		}
	}
	if !f.events.sawType(ports.EventSuspiciousActivity) {
		t.Fatal("expected suspicious activity event")
	}

	// Second run detects the same anomalies but appends nothing new.
	before := len(stored.SecurityFlags)
	if _, err := f.manager.CheckAnomalies(ctx, last.SessionID); err != nil {
		t.Fatalf("second check: %v", err)
	}
	stored, _ = f.sessions.GetByID(ctx, last.SessionID)
	if len(stored.SecurityFlags) != before {
		t.Fatalf("flags grew on repeat check: %v", stored.SecurityFlags)
	}
}

func TestFlaggedSessionFailsValidation(t *testing.T) {
	t.Parallel()
	f := newSessionFixture(t, Config{})
	ctx := context.Background()

	s, _ := f.manager.Create(ctx, uuid.New(), domain.DeviceInfo{})
	stored, _ := f.sessions.GetByID(ctx, s.SessionID)
	stored.SecurityFlags = []string{AnomalyMultipleIPAddresses}
	if err := f.sessions.Update(ctx, stored); err != nil {
		t.Fatalf("seed flag: %v", err)
	}

	check, err := f.manager.Validate(ctx, s.SessionID, ValidateOptions{CheckExpiry: true, CheckIdle: true})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if check.Valid || check.Reason != SessionReasonSuspicious {
		t.Fatalf("validation = %+v, want suspicious", check)
	}
}

func TestCleanupExpiredMarksCrossedSessions(t *testing.T) {
	t.Parallel()
	f := newSessionFixture(t, Config{MaxConcurrentSessions: 10, SessionAbsoluteTTL: time.Hour, SessionIdleTimeout: time.Hour})
	ctx := context.Background()
	userID := uuid.New()

	for i := 0; i < 3; i++ {
		if _, err := f.manager.Create(ctx, userID, domain.DeviceInfo{}); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}
	f.advance(2 * time.Hour)
	fresh, _ := f.manager.Create(ctx, userID, domain.DeviceInfo{})

	marked, err := f.manager.CleanupExpired(ctx)
	if err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if marked != 3 {
		t.Fatalf("marked = %d, want 3", marked)
	}
	if got, _ := f.sessions.GetByID(ctx, fresh.SessionID); got.Status != domain.SessionStatusActive {
		t.Fatalf("fresh session status = %s", got.Status)
	}
}
