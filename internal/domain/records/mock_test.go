package records

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

type mockRecordRepo struct {
	mu        sync.Mutex
	records   map[uuid.UUID]*MedicalRecord
	createErr error
	updateErr error
}

func newMockRecordRepo() *mockRecordRepo {
	return &mockRecordRepo{records: make(map[uuid.UUID]*MedicalRecord)}
}

func (m *mockRecordRepo) Create(_ context.Context, r *MedicalRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	cp := *r
	m.records[r.ID] = &cp
	return nil
}

func (m *mockRecordRepo) GetByID(_ context.Context, id uuid.UUID) (*MedicalRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.records[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, nil
}

func (m *mockRecordRepo) Update(_ context.Context, r *MedicalRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.records[r.ID]; !ok {
		return ErrNotFound
	}
	cp := *r
	m.records[r.ID] = &cp
	return nil
}

func (m *mockRecordRepo) ListForPatient(_ context.Context, patientID uuid.UUID) ([]MedicalRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []MedicalRecord
	for _, r := range m.records {
		if r.PatientID == patientID {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UploadedAt.After(out[j].UploadedAt) })
	return out, nil
}

func (m *mockRecordRepo) LatestForPair(_ context.Context, patientID, doctorID uuid.UUID) (*MedicalRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var latest *MedicalRecord
	for _, r := range m.records {
		if r.PatientID != patientID || r.DoctorID != doctorID {
			continue
		}
		if latest == nil || r.UploadedAt.After(latest.UploadedAt) {
			latest = r
		}
	}
	if latest == nil {
		return nil, nil
	}
	cp := *latest
	return &cp, nil
}

type mockDirectory struct {
	patients map[uuid.UUID]*PatientRef
	doctors  map[uuid.UUID]*DoctorRef
}

func newMockDirectory() *mockDirectory {
	return &mockDirectory{
		patients: make(map[uuid.UUID]*PatientRef),
		doctors:  make(map[uuid.UUID]*DoctorRef),
	}
}

func (m *mockDirectory) addPatient(publicID, name string) *PatientRef {
	p := &PatientRef{ID: uuid.New(), PublicID: publicID, Name: name}
	m.patients[p.ID] = p
	return p
}

func (m *mockDirectory) addDoctor(publicID, name string) *DoctorRef {
	d := &DoctorRef{ID: uuid.New(), PublicID: publicID, Name: name}
	m.doctors[d.ID] = d
	return d
}

func (m *mockDirectory) ResolvePatient(_ context.Context, ref string) (*PatientRef, error) {
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

func (m *mockDirectory) ResolveDoctor(_ context.Context, ref string) (*DoctorRef, error) {
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

func (m *mockDirectory) DoctorByID(_ context.Context, id uuid.UUID) (*DoctorRef, error) {
	return m.doctors[id], nil
}
