package scheduling

import (
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
)

// Status is an appointment's lifecycle state. Scheduled appointments are the
// only ones that count as active connections.
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusScheduled, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// timePattern is the 24h wall-clock format appointments are booked with.
var timePattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// ValidTime reports whether s is a well-formed HH:MM time.
func ValidTime(s string) bool {
	return timePattern.MatchString(s)
}

// Appointment links a patient and a doctor on a date at an HH:MM time.
// Patient and doctor references are internal uuids; the human-facing PAT/DOC
// codes are resolved at the API boundary.
type Appointment struct {
	ID        uuid.UUID `db:"id" json:"id"`
	PatientID uuid.UUID `db:"patient_id" json:"patient_id"`
	DoctorID  uuid.UUID `db:"doctor_id" json:"doctor_id"`
	Date      time.Time `db:"appointment_date" json:"appointment_date"`
	Time      string    `db:"appointment_time" json:"appointment_time"`
	Status    Status    `db:"status" json:"status"`
	Notes     string    `db:"notes" json:"notes"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// StartsAt combines the calendar date with the HH:MM time in loc.
func (a *Appointment) StartsAt(loc *time.Location) (time.Time, error) {
	t, err := time.Parse("15:04", a.Time)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse appointment time %q: %w", a.Time, err)
	}
	return time.Date(a.Date.Year(), a.Date.Month(), a.Date.Day(),
		t.Hour(), t.Minute(), 0, 0, loc), nil
}

// ConnectInput is the booking payload. PatientID and DoctorID accept either
// internal uuids or the human-facing PAT/DOC codes.
type ConnectInput struct {
	PatientID string `json:"patientId"`
	DoctorID  string `json:"doctorId"`
	Date      string `json:"date"` // YYYY-MM-DD
	Time      string `json:"time"` // HH:MM
	Notes     string `json:"notes"`
}

// Connection is the admin-facing joined view of an active appointment.
type Connection struct {
	AppointmentID   uuid.UUID `json:"appointment_id"`
	PatientPublicID string    `json:"patient_id"`
	PatientName     string    `json:"patient_name"`
	DoctorPublicID  string    `json:"doctor_id"`
	DoctorName      string    `json:"doctor_name"`
	Date            time.Time `json:"appointment_date"`
	Time            string    `json:"appointment_time"`
	Status          Status    `json:"status"`
	Notes           string    `json:"notes"`
}

// DoctorDayAppointment is one row of a doctor's daily schedule.
type DoctorDayAppointment struct {
	AppointmentID   uuid.UUID `json:"appointment_id"`
	PatientPublicID string    `json:"patient_id"`
	PatientName     string    `json:"patient_name"`
	PatientAge      int       `json:"patient_age"`
	PatientGender   string    `json:"patient_gender"`
	Time            string    `json:"appointment_time"`
	Notes           string    `json:"notes"`
}

// DoctorPatient is one deduplicated patient in a doctor's patient roster.
// Condition carries the notes of the first appointment that introduced the
// patient to this doctor.
type DoctorPatient struct {
	PatientPublicID string `json:"patient_id"`
	Name            string `json:"name"`
	Age             int    `json:"age"`
	Gender          string `json:"gender"`
	Condition       string `json:"condition"`
	ContactInfo     string `json:"contact_info"`
}

// UpcomingAppointment is one row of a patient's forward-looking schedule.
type UpcomingAppointment struct {
	AppointmentID  uuid.UUID `json:"appointment_id"`
	DoctorPublicID string    `json:"doctor_id"`
	DoctorName     string    `json:"doctor_name"`
	Date           time.Time `json:"appointment_date"`
	Time           string    `json:"appointment_time"`
	Notes          string    `json:"notes"`
}

// DashboardStats is derived entirely from scheduled appointments.
type DashboardStats struct {
	Doctors           int `json:"doctors"`
	Patients          int `json:"patients"`
	ActiveConnections int `json:"activeConnections"`
}
