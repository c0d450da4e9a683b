package http

import (
	"net/http"

	"github.com/dcaplatform/authcore/internal/application"
	"github.com/dcaplatform/authcore/internal/ports"
)

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req application.RegisterRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "register", err)
		return
	}
	if req.Device.IPAddress == "" {
		req.Device.IPAddress = readIP(r)
	}
	if req.Device.UserAgent == "" {
		req.Device.UserAgent = r.UserAgent()
	}
	if req.Fingerprint == "" {
		req.Fingerprint = deviceFingerprint(r)
	}

	res, err := h.auth.Register(r.Context(), req)
	if err != nil {
		writeMappedError(r.Context(), w, "register", err)
		return
	}
	writeSuccess(w, http.StatusCreated, res)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req application.LoginRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "login", err)
		return
	}
	if req.Device.IPAddress == "" {
		req.Device.IPAddress = readIP(r)
	}
	if req.Device.UserAgent == "" {
		req.Device.UserAgent = r.UserAgent()
	}
	if req.Fingerprint == "" {
		req.Fingerprint = deviceFingerprint(r)
	}

	res, err := h.auth.Login(r.Context(), req)
	if err != nil {
		writeMappedError(r.Context(), w, "login", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	var req application.RefreshRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "refresh", err)
		return
	}
	if req.Fingerprint == "" {
		req.Fingerprint = deviceFingerprint(r)
	}

	res, err := h.auth.Refresh(r.Context(), req)
	if err != nil {
		writeMappedError(r.Context(), w, "refresh", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "logout", err)
		return
	}
	if err := h.auth.Logout(r.Context(), req.RefreshToken, deviceFingerprint(r)); err != nil {
		writeMappedError(r.Context(), w, "logout", err)
		return
	}
	writeMessage(w, http.StatusOK, "Logged out successfully")
}

func (h *Handler) passwordScore(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "password_score", err)
		return
	}
	writeSuccess(w, http.StatusOK, h.auth.ScorePassword(req.Password))
}

func (h *Handler) passwordSuggest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Length  int  `json:"length"`
		Upper   bool `json:"upper"`
		Lower   bool `json:"lower"`
		Digits  bool `json:"digits"`
		Symbols bool `json:"symbols"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "password_suggest", err)
		return
	}
	classes := ports.CharsetFlags{Upper: req.Upper, Lower: req.Lower, Digits: req.Digits, Symbols: req.Symbols}
	if !classes.Upper && !classes.Lower && !classes.Digits && !classes.Symbols {
		classes = ports.CharsetFlags{Upper: true, Lower: true, Digits: true, Symbols: true}
	}

	password, err := h.auth.SuggestPassword(req.Length, classes)
	if err != nil {
		writeMappedError(r.Context(), w, "password_suggest", err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]string{"password": password})
}
