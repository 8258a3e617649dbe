package scheduling

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AppointmentRepository persists appointments. All list methods return rows
// in a deterministic order so handlers never re-sort.
type AppointmentRepository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	SetStatus(ctx context.Context, id uuid.UUID, status Status) error

	CountByStatus(ctx context.Context, status Status) (int, error)
	CountDistinctDoctors(ctx context.Context, status Status) (int, error)
	CountDistinctPatients(ctx context.Context, status Status) (int, error)

	// ListByStatus pages through appointments of one status, newest first,
	// returning the page and the total count.
	ListByStatus(ctx context.Context, status Status, limit, offset int) ([]Appointment, int, error)

	// ListScheduled returns every scheduled appointment, newest first.
	ListScheduled(ctx context.Context) ([]Appointment, error)

	// ListScheduledForDoctorBetween returns a doctor's scheduled
	// appointments with a date in [from, to), ascending by time.
	ListScheduledForDoctorBetween(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]Appointment, error)

	// ListAllForDoctor returns every appointment a doctor has ever had,
	// oldest first.
	ListAllForDoctor(ctx context.Context, doctorID uuid.UUID) ([]Appointment, error)

	// ListScheduledForPatient returns a patient's scheduled appointments,
	// ascending by date then time.
	ListScheduledForPatient(ctx context.Context, patientID uuid.UUID) ([]Appointment, error)
}

// PatientInfo and DoctorInfo are the display projections scheduling needs
// from the identity domain.
type PatientInfo struct {
	ID          uuid.UUID
	PublicID    string
	Name        string
	Gender      string
	Age         int
	ContactInfo *string
}

type DoctorInfo struct {
	ID       uuid.UUID
	PublicID string
	Name     string
}

// Directory resolves patient and doctor references. Resolve methods accept
// either an internal uuid or a PAT/DOC code; ByID methods return (nil, nil)
// when the profile no longer exists.
type Directory interface {
	ResolvePatient(ctx context.Context, ref string) (*PatientInfo, error)
	ResolveDoctor(ctx context.Context, ref string) (*DoctorInfo, error)
	PatientByID(ctx context.Context, id uuid.UUID) (*PatientInfo, error)
	DoctorByID(ctx context.Context, id uuid.UUID) (*DoctorInfo, error)
}

// AdminInfo is the admin profile projection used by the stats endpoints.
type AdminInfo struct {
	Name         string `json:"name"`
	Username     string `json:"username"`
	HospitalName string `json:"hospital_name"`
}

// CounterStore owns the cached active-connection counter. The counter is
// only ever overwritten with a full recount.
type CounterStore interface {
	SetActiveConnections(ctx context.Context, count int) error
	AdminProfile(ctx context.Context) (*AdminInfo, error)
}
