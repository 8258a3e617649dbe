package records

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type recordRepoPG struct{ pool *pgxpool.Pool }

func NewRecordRepoPG(pool *pgxpool.Pool) RecordRepository {
	return &recordRepoPG{pool: pool}
}

const recordCols = `id, patient_id, doctor_id, appointment_id, diagnosis, prescription,
	tests_suggested, description, file_name, uploaded_at, created_at`

func scanRecord(row pgx.Row) (*MedicalRecord, error) {
	var r MedicalRecord
	err := row.Scan(&r.ID, &r.PatientID, &r.DoctorID, &r.AppointmentID, &r.Diagnosis,
		&r.Prescription, &r.TestsSuggested, &r.Description, &r.FileName,
		&r.UploadedAt, &r.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (r *recordRepoPG) Create(ctx context.Context, rec *MedicalRecord) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO medical_records (id, patient_id, doctor_id, appointment_id, diagnosis,
			prescription, tests_suggested, description, file_name, uploaded_at, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		rec.ID, rec.PatientID, rec.DoctorID, rec.AppointmentID, rec.Diagnosis,
		rec.Prescription, rec.TestsSuggested, rec.Description, rec.FileName,
		rec.UploadedAt, rec.CreatedAt)
	return err
}

func (r *recordRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*MedicalRecord, error) {
	return scanRecord(r.pool.QueryRow(ctx,
		`SELECT `+recordCols+` FROM medical_records WHERE id = $1`, id))
}

func (r *recordRepoPG) Update(ctx context.Context, rec *MedicalRecord) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE medical_records
		SET diagnosis = $2, prescription = $3, tests_suggested = $4, description = $5,
			file_name = $6, uploaded_at = $7
		WHERE id = $1`,
		rec.ID, rec.Diagnosis, rec.Prescription, rec.TestsSuggested, rec.Description,
		rec.FileName, rec.UploadedAt)
	return err
}

func (r *recordRepoPG) ListForPatient(ctx context.Context, patientID uuid.UUID) ([]MedicalRecord, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+recordCols+` FROM medical_records
		WHERE patient_id = $1
		ORDER BY uploaded_at DESC`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MedicalRecord
	for rows.Next() {
		var rec MedicalRecord
		if err := rows.Scan(&rec.ID, &rec.PatientID, &rec.DoctorID, &rec.AppointmentID,
			&rec.Diagnosis, &rec.Prescription, &rec.TestsSuggested, &rec.Description,
			&rec.FileName, &rec.UploadedAt, &rec.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *recordRepoPG) LatestForPair(ctx context.Context, patientID, doctorID uuid.UUID) (*MedicalRecord, error) {
	return scanRecord(r.pool.QueryRow(ctx, `
		SELECT `+recordCols+` FROM medical_records
		WHERE patient_id = $1 AND doctor_id = $2
		ORDER BY uploaded_at DESC
		LIMIT 1`, patientID, doctorID))
}
