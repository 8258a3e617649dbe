package identity

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrUserNotFound       = errors.New("user not found")
	ErrProfileNotFound    = errors.New("profile not found")
	ErrInvalidCredentials = errors.New("incorrect password")
	ErrUsernameTaken      = errors.New("username already taken")

	// ErrDuplicatePublicID is returned by repositories on a PAT/DOC code
	// collision; the service retries with a fresh code.
	ErrDuplicatePublicID = errors.New("public id already assigned")
)

const publicIDAttempts = 5

// Service implements account creation, login, and profile lookup.
type Service struct {
	users    UserRepository
	patients PatientRepository
	doctors  DoctorRepository
	admins   AdminRepository
	logger   zerolog.Logger
}

func NewService(users UserRepository, patients PatientRepository, doctors DoctorRepository, admins AdminRepository, logger zerolog.Logger) *Service {
	return &Service{
		users:    users,
		patients: patients,
		doctors:  doctors,
		admins:   admins,
		logger:   logger.With().Str("component", "identity").Logger(),
	}
}

// newPublicID builds a human-facing code like PAT4821 or DOC0937.
func newPublicID(prefix string) string {
	return fmt.Sprintf("%s%04d", prefix, rand.Intn(10000))
}

// CreateAccount validates the input, creates the login account, then creates
// the role-specific profile. If the profile write fails the account row is
// removed so no half-created identity survives.
func (s *Service) CreateAccount(ctx context.Context, in *CreateAccountInput) (*User, any, error) {
	if err := in.Validate(); err != nil {
		return nil, nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, fmt.Errorf("hash password: %w", err)
	}

	user := &User{
		ID:           uuid.New(),
		Username:     in.Username,
		PasswordHash: string(hash),
		Role:         in.Role,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, nil, err
	}

	profile, err := s.createProfile(ctx, user, in)
	if err != nil {
		if delErr := s.users.Delete(ctx, user.ID); delErr != nil {
			s.logger.Error().Err(delErr).
				Str("user_id", user.ID.String()).
				Msg("failed to remove account after profile creation failure")
		}
		return nil, nil, err
	}

	s.logger.Info().
		Str("user_id", user.ID.String()).
		Str("role", string(user.Role)).
		Msg("account created")
	return user, profile, nil
}

func (s *Service) createProfile(ctx context.Context, user *User, in *CreateAccountInput) (any, error) {
	switch in.Role {
	case RolePatient:
		dob, err := time.Parse("2006-01-02", in.DOB)
		if err != nil {
			return nil, fmt.Errorf("%w: dob must be YYYY-MM-DD", ErrValidation)
		}
		p := &Patient{
			ID:         uuid.New(),
			Name:       in.Name,
			Username:   in.Username,
			Gender:     in.Gender,
			DOB:        &dob,
			Age:        in.Age,
			BloodGroup: in.BloodGroup,
			CreatedAt:  user.CreatedAt,
		}
		if in.ContactInfo != "" {
			p.ContactInfo = &in.ContactInfo
		}
		if in.Address != "" {
			p.Address = &in.Address
		}
		for attempt := 0; attempt < publicIDAttempts; attempt++ {
			p.PublicID = newPublicID("PAT")
			err = s.patients.Create(ctx, p)
			if !errors.Is(err, ErrDuplicatePublicID) {
				break
			}
		}
		if err != nil {
			return nil, err
		}
		return p, nil

	case RoleDoctor:
		d := &Doctor{
			ID:         uuid.New(),
			Name:       in.Name,
			Username:   in.Username,
			Gender:     in.Gender,
			Age:        in.Age,
			BloodGroup: in.BloodGroup,
			UID:        in.UID,
			CreatedAt:  user.CreatedAt,
		}
		if in.ContactInfo != "" {
			d.ContactInfo = &in.ContactInfo
		}
		var err error
		for attempt := 0; attempt < publicIDAttempts; attempt++ {
			d.PublicID = newPublicID("DOC")
			err = s.doctors.Create(ctx, d)
			if !errors.Is(err, ErrDuplicatePublicID) {
				break
			}
		}
		if err != nil {
			return nil, err
		}
		return d, nil

	case RoleAdmin:
		a := &Admin{
			ID:           uuid.New(),
			Name:         in.Name,
			Username:     in.Username,
			HospitalName: in.HospitalName,
			PasswordHash: user.PasswordHash,
			CreatedAt:    user.CreatedAt,
		}
		if err := s.admins.Create(ctx, a); err != nil {
			return nil, err
		}
		return a, nil
	}
	return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, in.Role)
}

// Login checks the username and password against the users table. An unknown
// username and a wrong password are distinct failures so the handler can keep
// their separate status codes.
func (s *Service) Login(ctx context.Context, username, password string) (*User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// DoctorByUsername resolves the login account first, then the profile, so a
// missing account and a missing profile are reported distinctly.
func (s *Service) DoctorByUsername(ctx context.Context, username string) (*Doctor, error) {
	user, err := s.users.GetByUsernameAndRole(ctx, username, RoleDoctor)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	doc, err := s.doctors.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, ErrProfileNotFound
	}
	return doc, nil
}

// PatientByUsername mirrors DoctorByUsername for the patient role.
func (s *Service) PatientByUsername(ctx context.Context, username string) (*Patient, error) {
	user, err := s.users.GetByUsernameAndRole(ctx, username, RolePatient)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	p, err := s.patients.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProfileNotFound
	}
	return p, nil
}

// PatientByName looks a patient up by exact display name.
func (s *Service) PatientByName(ctx context.Context, name string) (*Patient, error) {
	p, err := s.patients.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProfileNotFound
	}
	return p, nil
}

// ResolvePatient accepts either an internal uuid or a PAT#### code.
func (s *Service) ResolvePatient(ctx context.Context, ref string) (*Patient, error) {
	var (
		p   *Patient
		err error
	)
	if id, parseErr := uuid.Parse(ref); parseErr == nil {
		p, err = s.patients.GetByID(ctx, id)
	} else {
		p, err = s.patients.GetByPublicID(ctx, ref)
	}
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProfileNotFound
	}
	return p, nil
}

// ResolveDoctor accepts either an internal uuid or a DOC#### code.
func (s *Service) ResolveDoctor(ctx context.Context, ref string) (*Doctor, error) {
	var (
		d   *Doctor
		err error
	)
	if id, parseErr := uuid.Parse(ref); parseErr == nil {
		d, err = s.doctors.GetByID(ctx, id)
	} else {
		d, err = s.doctors.GetByPublicID(ctx, ref)
	}
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, ErrProfileNotFound
	}
	return d, nil
}

// FirstAdmin returns the hospital's admin profile.
func (s *Service) FirstAdmin(ctx context.Context) (*Admin, error) {
	a, err := s.admins.GetFirst(ctx)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, ErrProfileNotFound
	}
	return a, nil
}
