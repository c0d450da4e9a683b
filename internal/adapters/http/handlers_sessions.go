package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dcaplatform/authcore/internal/domain"
)

type sessionView struct {
	SessionID      uuid.UUID `json:"session_id"`
	DeviceType     string    `json:"device_type,omitempty"`
	UserAgent      string    `json:"user_agent,omitempty"`
	IPAddress      string    `json:"ip_address,omitempty"`
	Location       string    `json:"location,omitempty"`
	SecurityFlags  []string  `json:"security_flags,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	LastActivityAt time.Time `json:"last_activity_at"`
	ExpiresAt      time.Time `json:"expires_at"`
	Current        bool      `json:"current"`
}

func (h *Handler) listSessions(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing claims")
		return
	}

	sessions, err := h.sessions.ListActive(r.Context(), claims.UserID)
	if err != nil {
		writeMappedError(r.Context(), w, "list_sessions", err)
		return
	}

	views := make([]sessionView, 0, len(sessions))
	for _, s := range sessions {
		views = append(views, toSessionView(s, claims.SessionID))
	}
	writeSuccess(w, http.StatusOK, map[string]any{"sessions": views})
}

func (h *Handler) revokeSession(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing claims")
		return
	}
	sessionID, err := uuid.Parse(chi.URLParam(r, "session_id"))
	if err != nil {
		writeValidationError(r.Context(), w, "revoke_session", err)
		return
	}

	// Only the owner may revoke a session.
	session, err := h.sessions.Get(r.Context(), sessionID)
	if err != nil {
		writeMappedError(r.Context(), w, "revoke_session", err)
		return
	}
	if session.UserID != claims.UserID {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "resource not found")
		return
	}

	if err := h.sessions.Revoke(r.Context(), sessionID, "revoked by user"); err != nil {
		writeMappedError(r.Context(), w, "revoke_session", err)
		return
	}
	writeMessage(w, http.StatusOK, "Session revoked")
}

func (h *Handler) revokeAllSessions(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing claims")
		return
	}

	revoked, err := h.auth.LogoutAll(r.Context(), claims.UserID, claims.SessionID)
	if err != nil {
		writeMappedError(r.Context(), w, "revoke_all_sessions", err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]int64{"revoked": revoked})
}

func toSessionView(s domain.Session, currentSessionID uuid.UUID) sessionView {
	return sessionView{
		SessionID:      s.SessionID,
		DeviceType:     s.Device.DeviceType,
		UserAgent:      s.Device.UserAgent,
		IPAddress:      s.Device.IPAddress,
		Location:       s.Device.Location,
		SecurityFlags:  s.SecurityFlags,
		CreatedAt:      s.CreatedAt,
		LastActivityAt: s.LastActivityAt,
		ExpiresAt:      s.ExpiresAt,
		Current:        s.SessionID == currentSessionID,
	}
}
