package postgres

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dcaplatform/authcore/internal/domain"
)

func toJSONB(v any) string {
	raw, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(raw)
}

func fromJSONB[T any](raw string) T {
	var out T
	if raw != "" {
		_ = json.Unmarshal([]byte(raw), &out)
	}
	return out
}

func nullableString(v string) *string {
	trimmed := strings.TrimSpace(v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func stringOrEmpty(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func isUniqueViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

func toUserModel(user domain.User) userModel {
	return userModel{
		UserID:        user.UserID,
		Email:         user.Email,
		Username:      user.Username,
		DiscordID:     nullableString(user.DiscordID),
		Status:        string(user.Status),
		Roles:         toJSONB(user.Roles),
		PasswordHash:  user.PasswordHash,
		EmailVerified: user.EmailVerified,
		Metadata:      toJSONB(user.Metadata),
		CreatedAt:     user.CreatedAt,
		UpdatedAt:     user.UpdatedAt,
	}
}

func toDomainUser(rec userModel) domain.User {
	return domain.User{
		UserID:        rec.UserID,
		Email:         rec.Email,
		Username:      rec.Username,
		DiscordID:     stringOrEmpty(rec.DiscordID),
		Status:        domain.UserStatus(rec.Status),
		Roles:         fromJSONB[[]string](rec.Roles),
		PasswordHash:  rec.PasswordHash,
		EmailVerified: rec.EmailVerified,
		Metadata:      fromJSONB[domain.Metadata](rec.Metadata),
		CreatedAt:     rec.CreatedAt,
		UpdatedAt:     rec.UpdatedAt,
	}
}

func toSessionModel(session domain.Session) sessionModel {
	return sessionModel{
		SessionID:        session.SessionID,
		UserID:           session.UserID,
		Status:           string(session.Status),
		RefreshTokenHash: session.RefreshTokenHash,
		AccessTokenHash:  session.AccessTokenHash,
		TokenFamilyID:    session.TokenFamilyID,
		DeviceType:       session.Device.DeviceType,
		FingerprintHash:  session.Device.FingerprintHash,
		UserAgent:        session.Device.UserAgent,
		IPAddress:        nullableString(session.Device.IPAddress),
		Location:         session.Device.Location,
		SecurityFlags:    toJSONB(session.SecurityFlags),
		CreatedAt:        session.CreatedAt,
		LastActivityAt:   session.LastActivityAt,
		IdleTimeoutAt:    session.IdleTimeoutAt,
		ExpiresAt:        session.ExpiresAt,
		RevokedAt:        session.RevokedAt,
		RevokeReason:     session.RevokeReason,
	}
}

func toDomainSession(rec sessionModel) domain.Session {
	return domain.Session{
		SessionID:        rec.SessionID,
		UserID:           rec.UserID,
		Status:           domain.SessionStatus(rec.Status),
		RefreshTokenHash: rec.RefreshTokenHash,
		AccessTokenHash:  rec.AccessTokenHash,
		TokenFamilyID:    rec.TokenFamilyID,
		Device: domain.DeviceInfo{
			DeviceType:      rec.DeviceType,
			FingerprintHash: rec.FingerprintHash,
			UserAgent:       rec.UserAgent,
			IPAddress:       stringOrEmpty(rec.IPAddress),
			Location:        rec.Location,
		},
		SecurityFlags:  fromJSONB[[]string](rec.SecurityFlags),
		CreatedAt:      rec.CreatedAt,
		LastActivityAt: rec.LastActivityAt,
		IdleTimeoutAt:  rec.IdleTimeoutAt,
		ExpiresAt:      rec.ExpiresAt,
		RevokedAt:      rec.RevokedAt,
		RevokeReason:   rec.RevokeReason,
	}
}

func toLicenseModel(license domain.LicenseKey) licenseModel {
	return licenseModel{
		LicenseID:          license.LicenseID,
		Key:                license.Key,
		Type:               string(license.Type),
		Status:             string(license.Status),
		UserID:             license.UserID,
		MaxActivations:     license.MaxActivations,
		CurrentActivations: license.CurrentActivations,
		ValidFrom:          license.ValidFrom,
		ExpiresAt:          license.ExpiresAt,
		GracePeriodDays:    license.GracePeriodDays,
		IPWhitelist:        toJSONB(license.IPWhitelist),
		RequiresHardwareID: license.RequiresHardwareID,
		Features:           toJSONB(license.Features),
		Metadata:           toJSONB(license.Metadata),
		CreatedAt:          license.CreatedAt,
		UpdatedAt:          license.UpdatedAt,
	}
}

func toDomainLicense(rec licenseModel) domain.LicenseKey {
	return domain.LicenseKey{
		LicenseID:          rec.LicenseID,
		Key:                rec.Key,
		Type:               domain.LicenseType(rec.Type),
		Status:             domain.LicenseStatus(rec.Status),
		UserID:             rec.UserID,
		MaxActivations:     rec.MaxActivations,
		CurrentActivations: rec.CurrentActivations,
		ValidFrom:          rec.ValidFrom,
		ExpiresAt:          rec.ExpiresAt,
		GracePeriodDays:    rec.GracePeriodDays,
		IPWhitelist:        fromJSONB[[]string](rec.IPWhitelist),
		RequiresHardwareID: rec.RequiresHardwareID,
		Features:           fromJSONB[map[string]bool](rec.Features),
		Metadata:           fromJSONB[domain.Metadata](rec.Metadata),
		CreatedAt:          rec.CreatedAt,
		UpdatedAt:          rec.UpdatedAt,
	}
}

func toActivationModel(activation domain.Activation) activationModel {
	return activationModel{
		ActivationID:  activation.ActivationID,
		LicenseID:     activation.LicenseID,
		HardwareID:    activation.HardwareID,
		DeviceName:    activation.DeviceName,
		IPAddress:     activation.IPAddress,
		Status:        string(activation.Status),
		ActivatedAt:   activation.ActivatedAt,
		LastSeenAt:    activation.LastSeenAt,
		DeactivatedAt: activation.DeactivatedAt,
	}
}

func toDomainActivation(rec activationModel) domain.Activation {
	return domain.Activation{
		ActivationID:  rec.ActivationID,
		LicenseID:     rec.LicenseID,
		HardwareID:    rec.HardwareID,
		DeviceName:    rec.DeviceName,
		IPAddress:     rec.IPAddress,
		Status:        domain.ActivationStatus(rec.Status),
		ActivatedAt:   rec.ActivatedAt,
		LastSeenAt:    rec.LastSeenAt,
		DeactivatedAt: rec.DeactivatedAt,
	}
}

func toKeyValidationModel(record domain.KeyValidation) keyValidationModel {
	model := keyValidationModel{
		ID:         record.ID,
		Key:        record.Key,
		Valid:      record.Valid,
		ReasonCode: record.ReasonCode,
		HardwareID: record.HardwareID,
		IPAddress:  record.IPAddress,
		CreatedAt:  record.CreatedAt,
	}
	if record.LicenseID != uuid.Nil {
		id := record.LicenseID
		model.LicenseID = &id
	}
	return model
}

func toDomainKeyValidation(rec keyValidationModel) domain.KeyValidation {
	record := domain.KeyValidation{
		ID:         rec.ID,
		Key:        rec.Key,
		Valid:      rec.Valid,
		ReasonCode: rec.ReasonCode,
		HardwareID: rec.HardwareID,
		IPAddress:  rec.IPAddress,
		CreatedAt:  rec.CreatedAt,
	}
	if rec.LicenseID != nil {
		record.LicenseID = *rec.LicenseID
	}
	return record
}
