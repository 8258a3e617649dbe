package records

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/punithchavan/CHIKITSA/internal/platform/filestore"
	"github.com/punithchavan/CHIKITSA/internal/platform/phi"
)

var (
	ErrNotFound        = errors.New("medical record not found")
	ErrPatientNotFound = errors.New("patient not found")
	ErrDoctorNotFound  = errors.New("doctor not found")
	ErrValidation      = errors.New("validation failed")
)

const unknownDoctor = "Unknown Doctor"

// Service implements medical-record creation, update, and retrieval. The
// description field and every uploaded file are encrypted before they reach
// persistent storage.
type Service struct {
	records RecordRepository
	dir     Directory
	cipher  phi.Cipher
	files   filestore.Store
	logger  zerolog.Logger
}

// NewService wires the record store, the identity directory, the field
// cipher, and the (already encrypting) file store.
func NewService(records RecordRepository, dir Directory, cipher phi.Cipher, files filestore.Store, logger zerolog.Logger) *Service {
	return &Service{
		records: records,
		dir:     dir,
		cipher:  cipher,
		files:   files,
		logger:  logger.With().Str("component", "records").Logger(),
	}
}

// CreateInput carries the multipart fields of a new record. File is nil when
// no upload accompanies the record.
type CreateInput struct {
	PatientID      string
	DoctorID       string
	AppointmentID  string
	Diagnosis      string
	Prescription   string
	TestsSuggested string
	Description    string
	FileName       string
	File           io.Reader
}

// Create encrypts the description, stores the file (if any), and only then
// writes the DB row. A failed row write removes the stored file so no row
// can ever reference a file that was never durably written and vice versa.
func (s *Service) Create(ctx context.Context, in *CreateInput) (*MedicalRecord, error) {
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

	var apptID *uuid.UUID
	if in.AppointmentID != "" {
		id, err := uuid.Parse(in.AppointmentID)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid appointmentId", ErrValidation)
		}
		apptID = &id
	}

	description := ""
	if in.Description != "" {
		description, err = s.cipher.Encrypt(in.Description)
		if err != nil {
			return nil, fmt.Errorf("encrypt description: %w", err)
		}
	}

	fileName := ""
	if in.File != nil {
		fileName = filestore.ObjectName(in.FileName) + ".enc"
		if err := s.files.Save(ctx, fileName, in.File); err != nil {
			return nil, fmt.Errorf("store file: %w", err)
		}
	}

	now := time.Now().UTC()
	rec := &MedicalRecord{
		ID:             uuid.New(),
		PatientID:      patient.ID,
		DoctorID:       doctor.ID,
		AppointmentID:  apptID,
		Diagnosis:      in.Diagnosis,
		Prescription:   in.Prescription,
		TestsSuggested: in.TestsSuggested,
		Description:    description,
		FileName:       fileName,
		UploadedAt:     now,
		CreatedAt:      now,
	}
	if err := s.records.Create(ctx, rec); err != nil {
		if fileName != "" {
			if delErr := s.files.Delete(ctx, fileName); delErr != nil {
				s.logger.Error().Err(delErr).Str("file", fileName).
					Msg("failed to remove file after record write failure")
			}
		}
		return nil, err
	}
	return rec, nil
}

// UpdateInput carries the updatable fields of a record. Nil pointers leave
// the stored value untouched.
type UpdateInput struct {
	RecordID       string
	Diagnosis      *string
	Prescription   *string
	TestsSuggested *string
	Description    *string
	FileName       string
	File           io.Reader
}

// Update replaces the record's fields and, when a new file is supplied,
// swaps the stored object. The old object is deleted after the row is
// updated; a failed deletion is logged and tolerated since the row no longer
// references it.
func (s *Service) Update(ctx context.Context, in *UpdateInput) (*MedicalRecord, error) {
	id, err := uuid.Parse(in.RecordID)
	if err != nil {
		return nil, ErrNotFound
	}
	rec, err := s.records.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrNotFound
	}

	if in.Diagnosis != nil {
		rec.Diagnosis = *in.Diagnosis
	}
	if in.Prescription != nil {
		rec.Prescription = *in.Prescription
	}
	if in.TestsSuggested != nil {
		rec.TestsSuggested = *in.TestsSuggested
	}
	if in.Description != nil {
		if *in.Description == "" {
			rec.Description = ""
		} else {
			ct, err := s.cipher.Encrypt(*in.Description)
			if err != nil {
				return nil, fmt.Errorf("encrypt description: %w", err)
			}
			rec.Description = ct
		}
	}

	oldFile := ""
	if in.File != nil {
		newName := filestore.ObjectName(in.FileName) + ".enc"
		if err := s.files.Save(ctx, newName, in.File); err != nil {
			return nil, fmt.Errorf("store file: %w", err)
		}
		oldFile = rec.FileName
		rec.FileName = newName
	}

	rec.UploadedAt = time.Now().UTC()
	if err := s.records.Update(ctx, rec); err != nil {
		if in.File != nil {
			if delErr := s.files.Delete(ctx, rec.FileName); delErr != nil {
				s.logger.Error().Err(delErr).Str("file", rec.FileName).
					Msg("failed to remove file after record update failure")
			}
		}
		return nil, err
	}

	if oldFile != "" {
		if err := s.files.Delete(ctx, oldFile); err != nil {
			s.logger.Warn().Err(err).Str("file", oldFile).
				Msg("failed to delete replaced file")
		}
	}
	return rec, nil
}

// ListForPatient returns the patient's records newest first, descriptions
// decrypted. A record whose description cannot be decrypted fails the whole
// request; ciphertext is never returned.
func (s *Service) ListForPatient(ctx context.Context, patientRef string) ([]RecordView, error) {
	patient, err := s.dir.ResolvePatient(ctx, patientRef)
	if err != nil {
		return nil, err
	}
	if patient == nil {
		return nil, ErrPatientNotFound
	}

	recs, err := s.records.ListForPatient(ctx, patient.ID)
	if err != nil {
		return nil, err
	}

	views := make([]RecordView, 0, len(recs))
	for i := range recs {
		view, err := s.toView(ctx, &recs[i])
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}
	return views, nil
}

// LatestForPair returns the most recent record between a patient and a
// doctor.
func (s *Service) LatestForPair(ctx context.Context, patientRef, doctorRef string) (*RecordView, error) {
	patient, err := s.dir.ResolvePatient(ctx, patientRef)
	if err != nil {
		return nil, err
	}
	if patient == nil {
		return nil, ErrPatientNotFound
	}
	doctor, err := s.dir.ResolveDoctor(ctx, doctorRef)
	if err != nil {
		return nil, err
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}

	rec, err := s.records.LatestForPair(ctx, patient.ID, doctor.ID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrNotFound
	}
	return s.toView(ctx, rec)
}

func (s *Service) toView(ctx context.Context, rec *MedicalRecord) (*RecordView, error) {
	view := &RecordView{
		ID:             rec.ID,
		PatientID:      rec.PatientID,
		DoctorID:       rec.DoctorID,
		AppointmentID:  rec.AppointmentID,
		DoctorName:     unknownDoctor,
		Diagnosis:      rec.Diagnosis,
		Prescription:   rec.Prescription,
		TestsSuggested: rec.TestsSuggested,
		FileName:       rec.FileName,
		UploadedAt:     rec.UploadedAt,
		CreatedAt:      rec.CreatedAt,
	}
	if rec.Description != "" {
		plain, err := s.cipher.Decrypt(rec.Description)
		if err != nil {
			return nil, fmt.Errorf("record %s: %w", rec.ID, err)
		}
		view.Description = plain
	}
	if d, err := s.dir.DoctorByID(ctx, rec.DoctorID); err == nil && d != nil {
		view.DoctorName = d.Name
	}
	return view, nil
}
