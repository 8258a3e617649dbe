package scheduling

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type mockApptRepo struct {
	mu        sync.Mutex
	appts     map[uuid.UUID]*Appointment
	createErr error
}

func newMockApptRepo() *mockApptRepo {
	return &mockApptRepo{appts: make(map[uuid.UUID]*Appointment)}
}

func (m *mockApptRepo) snapshot() []Appointment {
	out := make([]Appointment, 0, len(m.appts))
	for _, a := range m.appts {
		out = append(out, *a)
	}
	return out
}

func (m *mockApptRepo) Create(_ context.Context, a *Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	cp := *a
	m.appts[a.ID] = &cp
	return nil
}

func (m *mockApptRepo) GetByID(_ context.Context, id uuid.UUID) (*Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.appts[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, nil
}

func (m *mockApptRepo) SetStatus(_ context.Context, id uuid.UUID, status Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.appts[id]; ok {
		a.Status = status
		a.UpdatedAt = time.Now().UTC()
	}
	return nil
}

func (m *mockApptRepo) CountByStatus(_ context.Context, status Status) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, a := range m.appts {
		if a.Status == status {
			n++
		}
	}
	return n, nil
}

func (m *mockApptRepo) CountDistinctDoctors(_ context.Context, status Status) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := make(map[uuid.UUID]bool)
	for _, a := range m.appts {
		if a.Status == status {
			seen[a.DoctorID] = true
		}
	}
	return len(seen), nil
}

func (m *mockApptRepo) CountDistinctPatients(_ context.Context, status Status) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := make(map[uuid.UUID]bool)
	for _, a := range m.appts {
		if a.Status == status {
			seen[a.PatientID] = true
		}
	}
	return len(seen), nil
}

func (m *mockApptRepo) ListByStatus(_ context.Context, status Status, limit, offset int) ([]Appointment, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var matched []Appointment
	for _, a := range m.snapshot() {
		if a.Status == status {
			matched = append(matched, a)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	total := len(matched)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func (m *mockApptRepo) ListScheduled(_ context.Context) ([]Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Appointment
	for _, a := range m.snapshot() {
		if a.Status == StatusScheduled {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *mockApptRepo) ListScheduledForDoctorBetween(_ context.Context, doctorID uuid.UUID, from, to time.Time) ([]Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Appointment
	for _, a := range m.snapshot() {
		if a.DoctorID == doctorID && a.Status == StatusScheduled &&
			!a.Date.Before(from) && a.Date.Before(to) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Time < out[j].Time })
	return out, nil
}

func (m *mockApptRepo) ListAllForDoctor(_ context.Context, doctorID uuid.UUID) ([]Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Appointment
	for _, a := range m.snapshot() {
		if a.DoctorID == doctorID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *mockApptRepo) ListScheduledForPatient(_ context.Context, patientID uuid.UUID) ([]Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Appointment
	for _, a := range m.snapshot() {
		if a.PatientID == patientID && a.Status == StatusScheduled {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].Time < out[j].Time
	})
	return out, nil
}

type mockDirectory struct {
	patients map[uuid.UUID]*PatientInfo
	doctors  map[uuid.UUID]*DoctorInfo
}

func newMockDirectory() *mockDirectory {
	return &mockDirectory{
		patients: make(map[uuid.UUID]*PatientInfo),
		doctors:  make(map[uuid.UUID]*DoctorInfo),
	}
}

func (m *mockDirectory) addPatient(publicID, name, gender string, age int) *PatientInfo {
	p := &PatientInfo{ID: uuid.New(), PublicID: publicID, Name: name, Gender: gender, Age: age}
	m.patients[p.ID] = p
	return p
}

func (m *mockDirectory) addDoctor(publicID, name string) *DoctorInfo {
	d := &DoctorInfo{ID: uuid.New(), PublicID: publicID, Name: name}
	m.doctors[d.ID] = d
	return d
}

func (m *mockDirectory) ResolvePatient(_ context.Context, ref string) (*PatientInfo, error) {
	if id, err := uuid.Parse(ref); err == nil {
		return m.patients[id], nil
	}
	for _, p := range m.patients {
		if p.PublicID == ref {
			return p, nil
		}
	}
	return nil, nil
}

func (m *mockDirectory) ResolveDoctor(_ context.Context, ref string) (*DoctorInfo, error) {
	if id, err := uuid.Parse(ref); err == nil {
		return m.doctors[id], nil
	}
	for _, d := range m.doctors {
		if d.PublicID == ref {
			return d, nil
		}
	}
	return nil, nil
}

func (m *mockDirectory) PatientByID(_ context.Context, id uuid.UUID) (*PatientInfo, error) {
	return m.patients[id], nil
}

func (m *mockDirectory) DoctorByID(_ context.Context, id uuid.UUID) (*DoctorInfo, error) {
	return m.doctors[id], nil
}

type mockCounterStore struct {
	mu      sync.Mutex
	admin   *AdminInfo
	counter int
	writes  int
}

func newMockCounterStore() *mockCounterStore {
	return &mockCounterStore{admin: &AdminInfo{Name: "Hospital Admin", Username: "admin", HospitalName: "City Care"}}
}

func (m *mockCounterStore) SetActiveConnections(_ context.Context, count int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter = count
	m.writes++
	return nil
}

func (m *mockCounterStore) AdminProfile(_ context.Context) (*AdminInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.admin, nil
}

func (m *mockCounterStore) value() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counter
}
