package postgres

import (
	"gorm.io/gorm"

	"github.com/dcaplatform/authcore/internal/ports"
)

// Repositories bundles every Postgres-backed port implementation behind one
// constructor so bootstrap wires the whole bunch at once.
type Repositories struct {
	Users         ports.UserRepository
	Sessions      ports.SessionRepository
	LoginAttempts ports.LoginAttemptRepository
	Licenses      ports.LicenseRepository
	Activations   ports.ActivationRepository
	Audit         ports.AuditRepository
}

func NewRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Users:         &userRepository{db: db},
		Sessions:      &sessionRepository{db: db},
		LoginAttempts: &loginAttemptRepository{db: db},
		Licenses:      &licenseRepository{db: db},
		Activations:   &activationRepository{db: db},
		Audit:         &auditRepository{db: db},
	}
}
