package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// isUniqueViolation reports whether err is a Postgres unique violation on the
// named constraint. An empty constraint matches any unique violation.
func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

type userRepoPG struct{ pool *pgxpool.Pool }

func NewUserRepoPG(pool *pgxpool.Pool) UserRepository {
	return &userRepoPG{pool: pool}
}

const userCols = `id, username, password_hash, role, created_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepoPG) Create(ctx context.Context, u *User) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (id, username, password_hash, role, created_at)
		VALUES ($1,$2,$3,$4,$5)`,
		u.ID, u.Username, u.PasswordHash, u.Role, u.CreatedAt)
	if isUniqueViolation(err, "users_username_key") {
		return ErrUsernameTaken
	}
	return err
}

func (r *userRepoPG) GetByUsername(ctx context.Context, username string) (*User, error) {
	return scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userCols+` FROM users WHERE username = $1`, username))
}

func (r *userRepoPG) GetByUsernameAndRole(ctx context.Context, username string, role Role) (*User, error) {
	return scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userCols+` FROM users WHERE username = $1 AND role = $2`, username, role))
}

func (r *userRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	return err
}

// ---------------------------------------------------------------------------
// Patients
// ---------------------------------------------------------------------------

type patientRepoPG struct{ pool *pgxpool.Pool }

func NewPatientRepoPG(pool *pgxpool.Pool) PatientRepository {
	return &patientRepoPG{pool: pool}
}

const patientCols = `id, patient_id, name, username, gender, dob, age, blood_group,
	contact_info, address, created_at`

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.PublicID, &p.Name, &p.Username, &p.Gender, &p.DOB, &p.Age,
		&p.BloodGroup, &p.ContactInfo, &p.Address, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *patientRepoPG) Create(ctx context.Context, p *Patient) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO patients (id, patient_id, name, username, gender, dob, age, blood_group,
			contact_info, address, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		p.ID, p.PublicID, p.Name, p.Username, p.Gender, p.DOB, p.Age, p.BloodGroup,
		p.ContactInfo, p.Address, p.CreatedAt)
	if isUniqueViolation(err, "patients_patient_id_key") {
		return ErrDuplicatePublicID
	}
	return err
}

func (r *patientRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return scanPatient(r.pool.QueryRow(ctx,
		`SELECT `+patientCols+` FROM patients WHERE id = $1`, id))
}

func (r *patientRepoPG) GetByPublicID(ctx context.Context, publicID string) (*Patient, error) {
	return scanPatient(r.pool.QueryRow(ctx,
		`SELECT `+patientCols+` FROM patients WHERE patient_id = $1`, publicID))
}

func (r *patientRepoPG) GetByUsername(ctx context.Context, username string) (*Patient, error) {
	return scanPatient(r.pool.QueryRow(ctx,
		`SELECT `+patientCols+` FROM patients WHERE username = $1`, username))
}

func (r *patientRepoPG) GetByName(ctx context.Context, name string) (*Patient, error) {
	return scanPatient(r.pool.QueryRow(ctx,
		`SELECT `+patientCols+` FROM patients WHERE name = $1 ORDER BY created_at LIMIT 1`, name))
}

// ---------------------------------------------------------------------------
// Doctors
// ---------------------------------------------------------------------------

type doctorRepoPG struct{ pool *pgxpool.Pool }

func NewDoctorRepoPG(pool *pgxpool.Pool) DoctorRepository {
	return &doctorRepoPG{pool: pool}
}

const doctorCols = `id, doctor_id, name, username, gender, age, blood_group, uid,
	contact_info, created_at`

func scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor
	err := row.Scan(&d.ID, &d.PublicID, &d.Name, &d.Username, &d.Gender, &d.Age,
		&d.BloodGroup, &d.UID, &d.ContactInfo, &d.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *doctorRepoPG) Create(ctx context.Context, d *Doctor) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO doctors (id, doctor_id, name, username, gender, age, blood_group, uid,
			contact_info, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		d.ID, d.PublicID, d.Name, d.Username, d.Gender, d.Age, d.BloodGroup, d.UID,
		d.ContactInfo, d.CreatedAt)
	if isUniqueViolation(err, "doctors_doctor_id_key") {
		return ErrDuplicatePublicID
	}
	return err
}

func (r *doctorRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return scanDoctor(r.pool.QueryRow(ctx,
		`SELECT `+doctorCols+` FROM doctors WHERE id = $1`, id))
}

func (r *doctorRepoPG) GetByPublicID(ctx context.Context, publicID string) (*Doctor, error) {
	return scanDoctor(r.pool.QueryRow(ctx,
		`SELECT `+doctorCols+` FROM doctors WHERE doctor_id = $1`, publicID))
}

func (r *doctorRepoPG) GetByUsername(ctx context.Context, username string) (*Doctor, error) {
	return scanDoctor(r.pool.QueryRow(ctx,
		`SELECT `+doctorCols+` FROM doctors WHERE username = $1`, username))
}

// ---------------------------------------------------------------------------
// Admins
// ---------------------------------------------------------------------------

type adminRepoPG struct{ pool *pgxpool.Pool }

func NewAdminRepoPG(pool *pgxpool.Pool) AdminRepository {
	return &adminRepoPG{pool: pool}
}

const adminCols = `id, name, username, hospital_name, password_hash, active_connections, created_at`

func scanAdmin(row pgx.Row) (*Admin, error) {
	var a Admin
	err := row.Scan(&a.ID, &a.Name, &a.Username, &a.HospitalName, &a.PasswordHash,
		&a.ActiveConnections, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *adminRepoPG) Create(ctx context.Context, a *Admin) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO admins (id, name, username, hospital_name, password_hash,
			active_connections, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		a.ID, a.Name, a.Username, a.HospitalName, a.PasswordHash,
		a.ActiveConnections, a.CreatedAt)
	return err
}

func (r *adminRepoPG) GetFirst(ctx context.Context) (*Admin, error) {
	return scanAdmin(r.pool.QueryRow(ctx,
		`SELECT `+adminCols+` FROM admins ORDER BY created_at LIMIT 1`))
}

func (r *adminRepoPG) SetActiveConnections(ctx context.Context, count int) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE admins SET active_connections = $1
		WHERE id = (SELECT id FROM admins ORDER BY created_at LIMIT 1)`, count)
	return err
}
