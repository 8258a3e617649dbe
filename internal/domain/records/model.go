package records

import (
	"time"

	"github.com/google/uuid"
)

// MedicalRecord maps to the medical_records table. Description holds
// ciphertext at rest; it is only ever decrypted on the response path.
// FileName is the stored object name of the encrypted upload, empty when the
// record has no file.
type MedicalRecord struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	PatientID      uuid.UUID  `db:"patient_id" json:"patient_id"`
	DoctorID       uuid.UUID  `db:"doctor_id" json:"doctor_id"`
	AppointmentID  *uuid.UUID `db:"appointment_id" json:"appointment_id,omitempty"`
	Diagnosis      string     `db:"diagnosis" json:"diagnosis"`
	Prescription   string     `db:"prescription" json:"prescription"`
	TestsSuggested string     `db:"tests_suggested" json:"tests_suggested"`
	Description    string     `db:"description" json:"-"`
	FileName       string     `db:"file_name" json:"file_name,omitempty"`
	UploadedAt     time.Time  `db:"uploaded_at" json:"uploaded_at"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
}

// RecordView is the API shape of a record: plaintext description plus the
// doctor's display name.
type RecordView struct {
	ID             uuid.UUID  `json:"id"`
	PatientID      uuid.UUID  `json:"patient_id"`
	DoctorID       uuid.UUID  `json:"doctor_id"`
	AppointmentID  *uuid.UUID `json:"appointment_id,omitempty"`
	DoctorName     string     `json:"doctor_name"`
	Diagnosis      string     `json:"diagnosis"`
	Prescription   string     `json:"prescription"`
	TestsSuggested string     `json:"tests_suggested"`
	Description    string     `json:"description"`
	FileName       string     `json:"file_name,omitempty"`
	UploadedAt     time.Time  `json:"uploaded_at"`
	CreatedAt      time.Time  `json:"created_at"`
}
