package identity

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository persists login accounts.
type UserRepository interface {
	Create(ctx context.Context, u *User) error
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByUsernameAndRole(ctx context.Context, username string, role Role) (*User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// PatientRepository persists patient profiles.
type PatientRepository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	GetByPublicID(ctx context.Context, publicID string) (*Patient, error)
	GetByUsername(ctx context.Context, username string) (*Patient, error)
	GetByName(ctx context.Context, name string) (*Patient, error)
}

// DoctorRepository persists doctor profiles.
type DoctorRepository interface {
	Create(ctx context.Context, d *Doctor) error
	GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error)
	GetByPublicID(ctx context.Context, publicID string) (*Doctor, error)
	GetByUsername(ctx context.Context, username string) (*Doctor, error)
}

// AdminRepository persists admin profiles. The deployment model is a single
// hospital, so reads fetch the earliest-created admin row.
type AdminRepository interface {
	Create(ctx context.Context, a *Admin) error
	GetFirst(ctx context.Context) (*Admin, error)
	SetActiveConnections(ctx context.Context, count int) error
}
