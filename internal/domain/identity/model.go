package identity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Role identifies which profile entity corresponds to a user account.
type Role string

const (
	RoleAdmin   Role = "Admin"
	RoleDoctor  Role = "Doctor"
	RolePatient Role = "Patient"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleDoctor, RolePatient:
		return true
	}
	return false
}

var validBloodGroups = map[string]bool{
	"A+": true, "A-": true, "B+": true, "B-": true,
	"O+": true, "O-": true, "AB+": true, "AB-": true,
}

// User maps to the users table. The password hash never leaves the API.
type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         Role      `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Patient maps to the patients table. PublicID is the human-facing
// PAT#### code, assigned once at creation and never reassigned.
type Patient struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	PublicID    string     `db:"patient_id" json:"patient_id"`
	Name        string     `db:"name" json:"name"`
	Username    string     `db:"username" json:"username"`
	Gender      string     `db:"gender" json:"gender"`
	DOB         *time.Time `db:"dob" json:"dob,omitempty"`
	Age         int        `db:"age" json:"age"`
	BloodGroup  string     `db:"blood_group" json:"blood_group"`
	ContactInfo *string    `db:"contact_info" json:"contact_info,omitempty"`
	Address     *string    `db:"address" json:"address,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}

// Doctor maps to the doctors table. PublicID is the DOC#### code.
type Doctor struct {
	ID          uuid.UUID `db:"id" json:"id"`
	PublicID    string    `db:"doctor_id" json:"doctor_id"`
	Name        string    `db:"name" json:"name"`
	Username    string    `db:"username" json:"username"`
	Gender      string    `db:"gender" json:"gender"`
	Age         int       `db:"age" json:"age"`
	BloodGroup  string    `db:"blood_group" json:"blood_group"`
	UID         string    `db:"uid" json:"uid"`
	ContactInfo *string   `db:"contact_info" json:"contact_info,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Admin maps to the admins table. ActiveConnections is a cached count of
// scheduled appointments, refreshed by full recount; it is never treated
// as a source of truth.
type Admin struct {
	ID                uuid.UUID `db:"id" json:"id"`
	Name              string    `db:"name" json:"name"`
	Username          string    `db:"username" json:"username"`
	HospitalName      string    `db:"hospital_name" json:"hospital_name"`
	PasswordHash      string    `db:"password_hash" json:"-"`
	ActiveConnections int       `db:"active_connections" json:"active_connections"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
}

// CreateAccountInput is the role-polymorphic account creation payload.
// Which fields are required depends on the role.
type CreateAccountInput struct {
	Username     string `json:"username"`
	Password     string `json:"password"`
	Role         Role   `json:"role"`
	Name         string `json:"name"`
	Gender       string `json:"gender"`
	DOB          string `json:"dob"` // YYYY-MM-DD
	Age          int    `json:"age"`
	BloodGroup   string `json:"blood_group"`
	UID          string `json:"uid"`
	ContactInfo  string `json:"contact_info"`
	Address      string `json:"address"`
	HospitalName string `json:"hospital_name"`
}

// Validate checks the role-specific required fields before anything is
// persisted, so a failed creation leaves no orphan rows.
func (in *CreateAccountInput) Validate() error {
	if in.Username == "" || in.Password == "" || in.Role == "" {
		return fmt.Errorf("%w: username, password, and role are required", ErrValidation)
	}
	if !in.Role.Valid() {
		return fmt.Errorf("%w: unknown role %q", ErrValidation, in.Role)
	}

	switch in.Role {
	case RoleDoctor:
		if in.Name == "" || in.Gender == "" || in.Age == 0 || in.BloodGroup == "" || in.UID == "" {
			return fmt.Errorf("%w: doctor requires name, gender, age, blood_group, and uid", ErrValidation)
		}
		if !validBloodGroups[in.BloodGroup] {
			return fmt.Errorf("%w: invalid blood group %q", ErrValidation, in.BloodGroup)
		}
	case RolePatient:
		if in.Name == "" || in.Gender == "" || in.DOB == "" || in.Age == 0 || in.BloodGroup == "" {
			return fmt.Errorf("%w: patient requires name, gender, dob, age, and blood_group", ErrValidation)
		}
		if !validBloodGroups[in.BloodGroup] {
			return fmt.Errorf("%w: invalid blood group %q", ErrValidation, in.BloodGroup)
		}
		if _, err := time.Parse("2006-01-02", in.DOB); err != nil {
			return fmt.Errorf("%w: dob must be YYYY-MM-DD", ErrValidation)
		}
	case RoleAdmin:
		if in.Name == "" || in.HospitalName == "" {
			return fmt.Errorf("%w: admin requires name and hospital_name", ErrValidation)
		}
	}
	return nil
}
