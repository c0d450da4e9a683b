package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dcaplatform/authcore/internal/application"
)

const maxBatchSize = 1000

func (h *Handler) validateLicense(w http.ResponseWriter, r *http.Request) {
	var in application.ValidateLicenseInput
	if err := decodeBody(r, &in); err != nil {
		writeValidationError(r.Context(), w, "validate_license", err)
		return
	}
	if in.IPAddress == "" {
		in.IPAddress = readIP(r)
	}

	result, err := h.licenses.Validate(r.Context(), in)
	if err != nil {
		writeMappedError(r.Context(), w, "validate_license", err)
		return
	}
	writeSuccess(w, http.StatusOK, result)
}

func (h *Handler) activateLicense(w http.ResponseWriter, r *http.Request) {
	var in application.ActivateLicenseInput
	if err := decodeBody(r, &in); err != nil {
		writeValidationError(r.Context(), w, "activate_license", err)
		return
	}
	if in.IPAddress == "" {
		in.IPAddress = readIP(r)
	}

	result, err := h.licenses.Activate(r.Context(), in)
	if err != nil {
		writeMappedError(r.Context(), w, "activate_license", err)
		return
	}
	writeSuccess(w, http.StatusOK, result)
}

func (h *Handler) deactivateLicense(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Key        string `json:"key"`
		HardwareID string `json:"hardware_id"`
	}
	if err := decodeBody(r, &in); err != nil {
		writeValidationError(r.Context(), w, "deactivate_license", err)
		return
	}

	if err := h.licenses.Deactivate(r.Context(), in.Key, in.HardwareID); err != nil {
		writeMappedError(r.Context(), w, "deactivate_license", err)
		return
	}
	writeMessage(w, http.StatusOK, "Activation released")
}

func (h *Handler) verifyOfflineCode(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Key        string `json:"key"`
		HardwareID string `json:"hardware_id"`
		Code       string `json:"code"`
	}
	if err := decodeBody(r, &in); err != nil {
		writeValidationError(r.Context(), w, "verify_offline_code", err)
		return
	}

	valid := h.licenses.VerifyOfflineCode(in.Key, in.HardwareID, in.Code)
	writeSuccess(w, http.StatusOK, map[string]bool{"valid": valid})
}

func (h *Handler) issueLicense(w http.ResponseWriter, r *http.Request) {
	var in application.IssueLicenseInput
	if err := decodeBody(r, &in); err != nil {
		writeValidationError(r.Context(), w, "issue_license", err)
		return
	}

	license, err := h.licenses.Issue(r.Context(), in)
	if err != nil {
		writeMappedError(r.Context(), w, "issue_license", err)
		return
	}
	writeSuccess(w, http.StatusCreated, license)
}

func (h *Handler) issueLicenseBatch(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Count int `json:"count"`
		application.IssueLicenseInput
	}
	if err := decodeBody(r, &in); err != nil {
		writeValidationError(r.Context(), w, "issue_license_batch", err)
		return
	}
	if in.Count < 1 || in.Count > maxBatchSize {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "count must be between 1 and 1000")
		return
	}

	licenses, err := h.licenses.IssueBatch(r.Context(), in.Count, in.IssueLicenseInput)
	if err != nil {
		writeMappedError(r.Context(), w, "issue_license_batch", err)
		return
	}
	writeSuccess(w, http.StatusCreated, map[string]any{"licenses": licenses})
}

func (h *Handler) revokeLicense(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Reason string `json:"reason"`
	}
	if err := decodeBody(r, &in); err != nil {
		writeValidationError(r.Context(), w, "revoke_license", err)
		return
	}

	if err := h.licenses.Revoke(r.Context(), chi.URLParam(r, "key"), in.Reason); err != nil {
		writeMappedError(r.Context(), w, "revoke_license", err)
		return
	}
	writeMessage(w, http.StatusOK, "License revoked")
}

func (h *Handler) suspendLicense(w http.ResponseWriter, r *http.Request) {
	if err := h.licenses.Suspend(r.Context(), chi.URLParam(r, "key")); err != nil {
		writeMappedError(r.Context(), w, "suspend_license", err)
		return
	}
	writeMessage(w, http.StatusOK, "License suspended")
}

func (h *Handler) reactivateLicense(w http.ResponseWriter, r *http.Request) {
	if err := h.licenses.Reactivate(r.Context(), chi.URLParam(r, "key")); err != nil {
		writeMappedError(r.Context(), w, "reactivate_license", err)
		return
	}
	writeMessage(w, http.StatusOK, "License reactivated")
}

func (h *Handler) licenseStats(w http.ResponseWriter, r *http.Request) {
	since := time.Now().Add(-30 * 24 * time.Hour)
	if raw := r.URL.Query().Get("since"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "since must be RFC 3339")
			return
		}
		since = parsed
	}

	stats, err := h.licenses.Stats(r.Context(), chi.URLParam(r, "key"), since)
	if err != nil {
		writeMappedError(r.Context(), w, "license_stats", err)
		return
	}
	writeSuccess(w, http.StatusOK, stats)
}
