package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	ErrNotFound        = errors.New("appointment not found")
	ErrPatientNotFound = errors.New("patient not found")
	ErrDoctorNotFound  = errors.New("doctor not found")
	ErrAdminNotFound   = errors.New("admin not found")
	ErrValidation      = errors.New("validation failed")
)

const (
	defaultCondition   = "General Checkup"
	defaultContactInfo = "Not provided"
)

// Service implements appointment booking and the read views derived from it.
type Service struct {
	appts   AppointmentRepository
	dir     Directory
	counter CounterStore
	logger  zerolog.Logger
}

func NewService(appts AppointmentRepository, dir Directory, counter CounterStore, logger zerolog.Logger) *Service {
	return &Service{
		appts:   appts,
		dir:     dir,
		counter: counter,
		logger:  logger.With().Str("component", "scheduling").Logger(),
	}
}

// Connect books an appointment between a patient and a doctor. Both parties
// must exist before anything is written.
func (s *Service) Connect(ctx context.Context, in *ConnectInput) (*Appointment, error) {
	if in.PatientID == "" || in.DoctorID == "" {
		return nil, fmt.Errorf("%w: patientId and doctorId are required", ErrValidation)
	}

	patient, err := s.dir.ResolvePatient(ctx, in.PatientID)
	if err != nil {
		return nil, err
	}
	if patient == nil {
		return nil, ErrPatientNotFound
	}
	doctor, err := s.dir.ResolveDoctor(ctx, in.DoctorID)
	if err != nil {
		return nil, err
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}

	date, err := time.Parse("2006-01-02", in.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrValidation)
	}
	if !ValidTime(in.Time) {
		return nil, fmt.Errorf("%w: time must be HH:MM", ErrValidation)
	}

	now := time.Now().UTC()
	appt := &Appointment{
		ID:        uuid.New(),
		PatientID: patient.ID,
		DoctorID:  doctor.ID,
		Date:      date,
		Time:      in.Time,
		Status:    StatusScheduled,
		Notes:     in.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.appts.Create(ctx, appt); err != nil {
		return nil, err
	}

	if err := s.refreshCounter(ctx); err != nil {
		s.logger.Error().Err(err).Msg("counter refresh after booking failed")
	}
	return appt, nil
}

// refreshCounter overwrites the cached admin counter with a full recount of
// scheduled appointments.
func (s *Service) refreshCounter(ctx context.Context) error {
	count, err := s.appts.CountByStatus(ctx, StatusScheduled)
	if err != nil {
		return err
	}
	return s.counter.SetActiveConnections(ctx, count)
}

// ActiveConnections returns every scheduled appointment joined with patient
// and doctor display fields. A deleted profile degrades to a placeholder
// instead of breaking the listing.
func (s *Service) ActiveConnections(ctx context.Context) ([]Connection, error) {
	appts, err := s.appts.ListScheduled(ctx)
	if err != nil {
		return nil, err
	}
	conns := make([]Connection, 0, len(appts))
	for i := range appts {
		conns = append(conns, s.toConnection(ctx, &appts[i]))
	}
	return conns, nil
}

func (s *Service) toConnection(ctx context.Context, a *Appointment) Connection {
	conn := Connection{
		AppointmentID: a.ID,
		PatientName:   "Unknown Patient",
		DoctorName:    "Unknown Doctor",
		Date:          a.Date,
		Time:          a.Time,
		Status:        a.Status,
		Notes:         a.Notes,
	}
	if p, err := s.dir.PatientByID(ctx, a.PatientID); err == nil && p != nil {
		conn.PatientPublicID = p.PublicID
		conn.PatientName = p.Name
	}
	if d, err := s.dir.DoctorByID(ctx, a.DoctorID); err == nil && d != nil {
		conn.DoctorPublicID = d.PublicID
		conn.DoctorName = d.Name
	}
	return conn
}

// UpdateStatus moves an appointment to the given status and refreshes the
// cached counter with a full recount.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) (*Appointment, int, error) {
	if !status.Valid() {
		return nil, 0, fmt.Errorf("%w: invalid status %q", ErrValidation, status)
	}
	appt, err := s.appts.GetByID(ctx, id)
	if err != nil {
		return nil, 0, err
	}
	if appt == nil {
		return nil, 0, ErrNotFound
	}
	if err := s.appts.SetStatus(ctx, id, status); err != nil {
		return nil, 0, err
	}
	appt.Status = status
	appt.UpdatedAt = time.Now().UTC()

	count, err := s.appts.CountByStatus(ctx, StatusScheduled)
	if err != nil {
		return nil, 0, err
	}
	if err := s.counter.SetActiveConnections(ctx, count); err != nil {
		return nil, 0, err
	}
	return appt, count, nil
}

// Cancel is the patient-facing path to a cancelled status.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	appt, _, err := s.UpdateStatus(ctx, id, StatusCancelled)
	return appt, err
}

// SyncConnections recounts scheduled appointments, persists the count, and
// returns it.
func (s *Service) SyncConnections(ctx context.Context) (int, error) {
	count, err := s.appts.CountByStatus(ctx, StatusScheduled)
	if err != nil {
		return 0, err
	}
	if err := s.counter.SetActiveConnections(ctx, count); err != nil {
		return 0, err
	}
	return count, nil
}

// AdminStats is the admin profile plus the live-derived connection count.
type AdminStats struct {
	AdminInfo
	ActiveConnections int `json:"activeConnections"`
}

func (s *Service) AdminStats(ctx context.Context) (*AdminStats, error) {
	profile, err := s.counter.AdminProfile(ctx)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrAdminNotFound
	}
	count, err := s.appts.CountByStatus(ctx, StatusScheduled)
	if err != nil {
		return nil, err
	}
	return &AdminStats{AdminInfo: *profile, ActiveConnections: count}, nil
}

// DashboardStats aggregates over scheduled appointments only.
func (s *Service) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	doctors, err := s.appts.CountDistinctDoctors(ctx, StatusScheduled)
	if err != nil {
		return nil, err
	}
	patients, err := s.appts.CountDistinctPatients(ctx, StatusScheduled)
	if err != nil {
		return nil, err
	}
	active, err := s.appts.CountByStatus(ctx, StatusScheduled)
	if err != nil {
		return nil, err
	}
	return &DashboardStats{Doctors: doctors, Patients: patients, ActiveConnections: active}, nil
}

// TodayForDoctor returns the doctor's scheduled appointments for the
// calendar day containing now, ascending by time.
func (s *Service) TodayForDoctor(ctx context.Context, doctorRef string, now time.Time) ([]DoctorDayAppointment, error) {
	doctor, err := s.dir.ResolveDoctor(ctx, doctorRef)
	if err != nil {
		return nil, err
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}

	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)
	appts, err := s.appts.ListScheduledForDoctorBetween(ctx, doctor.ID, from, to)
	if err != nil {
		return nil, err
	}

	day := make([]DoctorDayAppointment, 0, len(appts))
	for i := range appts {
		a := &appts[i]
		row := DoctorDayAppointment{
			AppointmentID: a.ID,
			PatientName:   "Unknown Patient",
			Time:          a.Time,
			Notes:         a.Notes,
		}
		if p, err := s.dir.PatientByID(ctx, a.PatientID); err == nil && p != nil {
			row.PatientPublicID = p.PublicID
			row.PatientName = p.Name
			row.PatientAge = p.Age
			row.PatientGender = p.Gender
		}
		day = append(day, row)
	}
	return day, nil
}

// PatientsOfDoctor walks every appointment the doctor has ever had, oldest
// first, and returns each patient once. The notes of the first appointment
// become the patient's condition.
func (s *Service) PatientsOfDoctor(ctx context.Context, doctorRef string) ([]DoctorPatient, error) {
	doctor, err := s.dir.ResolveDoctor(ctx, doctorRef)
	if err != nil {
		return nil, err
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}

	appts, err := s.appts.ListAllForDoctor(ctx, doctor.ID)
	if err != nil {
		return nil, err
	}

	seen := make(map[uuid.UUID]bool)
	roster := make([]DoctorPatient, 0)
	for i := range appts {
		a := &appts[i]
		if seen[a.PatientID] {
			continue
		}
		seen[a.PatientID] = true

		p, err := s.dir.PatientByID(ctx, a.PatientID)
		if err != nil {
			return nil, err
		}
		if p == nil {
			continue
		}
		entry := DoctorPatient{
			PatientPublicID: p.PublicID,
			Name:            p.Name,
			Age:             p.Age,
			Gender:          p.Gender,
			Condition:       defaultCondition,
			ContactInfo:     defaultContactInfo,
		}
		if a.Notes != "" {
			entry.Condition = a.Notes
		}
		if p.ContactInfo != nil && *p.ContactInfo != "" {
			entry.ContactInfo = *p.ContactInfo
		}
		roster = append(roster, entry)
	}
	return roster, nil
}

// UpcomingForPatient returns the patient's scheduled appointments whose
// combined date and time is not in the past, ascending.
func (s *Service) UpcomingForPatient(ctx context.Context, patientRef string, now time.Time) ([]UpcomingAppointment, error) {
	patient, err := s.dir.ResolvePatient(ctx, patientRef)
	if err != nil {
		return nil, err
	}
	if patient == nil {
		return nil, ErrPatientNotFound
	}

	appts, err := s.appts.ListScheduledForPatient(ctx, patient.ID)
	if err != nil {
		return nil, err
	}

	upcoming := make([]UpcomingAppointment, 0, len(appts))
	for i := range appts {
		a := &appts[i]
		startsAt, err := a.StartsAt(now.Location())
		if err != nil {
			s.logger.Warn().Err(err).Str("appointment_id", a.ID.String()).
				Msg("skipping appointment with unparsable time")
			continue
		}
		if startsAt.Before(now) {
			continue
		}
		row := UpcomingAppointment{
			AppointmentID: a.ID,
			DoctorName:    "Unknown Doctor",
			Date:          a.Date,
			Time:          a.Time,
			Notes:         a.Notes,
		}
		if d, err := s.dir.DoctorByID(ctx, a.DoctorID); err == nil && d != nil {
			row.DoctorPublicID = d.PublicID
			row.DoctorName = d.Name
		}
		upcoming = append(upcoming, row)
	}
	return upcoming, nil
}

// ListByStatus pages through appointments of one status as joined
// connections, newest first.
func (s *Service) ListByStatus(ctx context.Context, status Status, limit, offset int) ([]Connection, int, error) {
	if !status.Valid() {
		return nil, 0, fmt.Errorf("%w: invalid status %q", ErrValidation, status)
	}
	appts, total, err := s.appts.ListByStatus(ctx, status, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	conns := make([]Connection, 0, len(appts))
	for i := range appts {
		conns = append(conns, s.toConnection(ctx, &appts[i]))
	}
	return conns, total, nil
}
