package records

import (
	"context"

	"github.com/google/uuid"
)

// RecordRepository persists medical records. Descriptions are stored exactly
// as handed over; encryption is the service's concern.
type RecordRepository interface {
	Create(ctx context.Context, r *MedicalRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*MedicalRecord, error)
	Update(ctx context.Context, r *MedicalRecord) error

	// ListForPatient returns a patient's records, newest upload first.
	ListForPatient(ctx context.Context, patientID uuid.UUID) ([]MedicalRecord, error)

	// LatestForPair returns the most recently uploaded record between a
	// patient and a doctor, or nil when none exists.
	LatestForPair(ctx context.Context, patientID, doctorID uuid.UUID) (*MedicalRecord, error)
}

// PatientRef and DoctorRef are the identity projections records needs.
type PatientRef struct {
	ID       uuid.UUID
	PublicID string
	Name     string
}

type DoctorRef struct {
	ID       uuid.UUID
	PublicID string
	Name     string
}

// Directory resolves patient and doctor references. Resolve methods accept
// internal uuids or PAT/DOC codes and return (nil, nil) when absent.
type Directory interface {
	ResolvePatient(ctx context.Context, ref string) (*PatientRef, error)
	ResolveDoctor(ctx context.Context, ref string) (*DoctorRef, error)
	DoctorByID(ctx context.Context, id uuid.UUID) (*DoctorRef, error)
}
