package identity

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

type mockUserRepo struct {
	mu        sync.Mutex
	users     map[uuid.UUID]*User
	createErr error
	deleted   []uuid.UUID
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[uuid.UUID]*User)}
}

func (m *mockUserRepo) Create(_ context.Context, u *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	for _, existing := range m.users {
		if existing.Username == u.Username {
			return ErrUsernameTaken
		}
	}
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepo) GetByUsernameAndRole(_ context.Context, username string, role Role) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username && u.Role == role {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockUserRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users)
}

type mockPatientRepo struct {
	mu        sync.Mutex
	patients  map[uuid.UUID]*Patient
	createErr error
}

func newMockPatientRepo() *mockPatientRepo {
	return &mockPatientRepo{patients: make(map[uuid.UUID]*Patient)}
}

func (m *mockPatientRepo) Create(_ context.Context, p *Patient) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	for _, existing := range m.patients {
		if existing.PublicID == p.PublicID {
			return ErrDuplicatePublicID
		}
	}
	cp := *p
	m.patients[p.ID] = &cp
	return nil
}

func (m *mockPatientRepo) GetByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.patients[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (m *mockPatientRepo) GetByPublicID(_ context.Context, publicID string) (*Patient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.patients {
		if p.PublicID == publicID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *mockPatientRepo) GetByUsername(_ context.Context, username string) (*Patient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.patients {
		if p.Username == username {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *mockPatientRepo) GetByName(_ context.Context, name string) (*Patient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.patients {
		if p.Name == name {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

type mockDoctorRepo struct {
	mu        sync.Mutex
	doctors   map[uuid.UUID]*Doctor
	createErr error
}

func newMockDoctorRepo() *mockDoctorRepo {
	return &mockDoctorRepo{doctors: make(map[uuid.UUID]*Doctor)}
}

func (m *mockDoctorRepo) Create(_ context.Context, d *Doctor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	for _, existing := range m.doctors {
		if existing.PublicID == d.PublicID {
			return ErrDuplicatePublicID
		}
	}
	cp := *d
	m.doctors[d.ID] = &cp
	return nil
}

func (m *mockDoctorRepo) GetByID(_ context.Context, id uuid.UUID) (*Doctor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d, ok := m.doctors[id]; ok {
		cp := *d
		return &cp, nil
	}
	return nil, nil
}

func (m *mockDoctorRepo) GetByPublicID(_ context.Context, publicID string) (*Doctor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.doctors {
		if d.PublicID == publicID {
			cp := *d
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *mockDoctorRepo) GetByUsername(_ context.Context, username string) (*Doctor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.doctors {
		if d.Username == username {
			cp := *d
			return &cp, nil
		}
	}
	return nil, nil
}

type mockAdminRepo struct {
	mu     sync.Mutex
	admins []*Admin
}

func newMockAdminRepo() *mockAdminRepo { return &mockAdminRepo{} }

func (m *mockAdminRepo) Create(_ context.Context, a *Admin) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *a
	m.admins = append(m.admins, &cp)
	return nil
}

func (m *mockAdminRepo) GetFirst(_ context.Context) (*Admin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.admins) == 0 {
		return nil, nil
	}
	cp := *m.admins[0]
	return &cp, nil
}

func (m *mockAdminRepo) SetActiveConnections(_ context.Context, count int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.admins) > 0 {
		m.admins[0].ActiveConnections = count
	}
	return nil
}
