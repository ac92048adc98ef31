package scheduling

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	appointmentRepo "voltserve/database/repository/appointment"
	centerRepo "voltserve/database/repository/center"
	catalogRepo "voltserve/database/repository/servicecatalog"
	technicianRepo "voltserve/database/repository/technician"
	"voltserve/models"
)

// memoryAppointments is an in-memory AppointmentRepository mirroring the
// mongo implementation's filter and version semantics.
type memoryAppointments struct {
	mu    sync.Mutex
	byID  map[string]*models.Appointment
	techs *memoryTechnicians
}

func newMemoryAppointments(techs *memoryTechnicians) *memoryAppointments {
	return &memoryAppointments{byID: make(map[string]*models.Appointment), techs: techs}
}

func (m *memoryAppointments) put(appt models.Appointment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := appt
	m.byID[appt.ID] = &cp
}

func (m *memoryAppointments) GetByID(id string) (*models.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	appt, ok := m.byID[id]
	if !ok {
		return nil, appointmentRepo.ErrNotFound
	}
	cp := *appt
	cp.History = append([]models.WorkflowEntry(nil), appt.History...)
	return &cp, nil
}

func (m *memoryAppointments) GetByNumber(number string) (*models.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, appt := range m.byID {
		if appt.Number == number {
			cp := *appt
			return &cp, nil
		}
	}
	return nil, appointmentRepo.ErrNotFound
}

func (m *memoryAppointments) FindOverlapping(centerID, date string, start, end int) ([]models.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Appointment
	for _, appt := range m.byID {
		if appt.CenterID != centerID || appt.Status.IsTerminal() {
			continue
		}
		if appt.Overlaps(date, start, end) {
			out = append(out, *appt)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memoryAppointments) ListByCenterDate(centerID, date string) ([]models.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Appointment
	for _, appt := range m.byID {
		if appt.CenterID == centerID && appt.Date == date {
			out = append(out, *appt)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out, nil
}

func (m *memoryAppointments) ListByTechnicianDate(technicianID, date string) ([]models.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Appointment
	for _, appt := range m.byID {
		if appt.TechnicianID == technicianID && appt.Date == date {
			out = append(out, *appt)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out, nil
}

func (m *memoryAppointments) ListByCustomer(customerID string, limit, offset int64) ([]models.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Appointment
	for _, appt := range m.byID {
		if appt.CustomerID == customerID {
			out = append(out, *appt)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].Start > out[j].Start
	})
	if offset >= int64(len(out)) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memoryAppointments) ListOverdue(date string, nowMinute, graceMin int) ([]models.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Appointment
	for _, appt := range m.byID {
		if appt.Date == date && appt.Status == models.StatusConfirmed && appt.Start < nowMinute-graceMin {
			out = append(out, *appt)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out, nil
}

func (m *memoryAppointments) CommitBooking(_ context.Context, appt *models.Appointment, workloadDelta int) error {
	m.mu.Lock()
	if _, exists := m.byID[appt.ID]; exists {
		m.mu.Unlock()
		return fmt.Errorf("duplicate appointment id %s", appt.ID)
	}
	cp := *appt
	m.byID[appt.ID] = &cp
	m.mu.Unlock()

	if appt.TechnicianID != "" && workloadDelta != 0 {
		return m.techs.AdjustWorkload(appt.TechnicianID, workloadDelta)
	}
	return nil
}

func (m *memoryAppointments) UpdateStatus(id string, version int, status models.AppointmentStatus, entry models.WorkflowEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	appt, ok := m.byID[id]
	if !ok || appt.Version != version {
		return appointmentRepo.ErrVersionConflict
	}
	appt.Status = status
	appt.History = append(appt.History, entry)
	appt.Version++
	return nil
}

func (m *memoryAppointments) UpdateSchedule(id string, version int, date string, start, end int, spillover bool, entry models.WorkflowEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	appt, ok := m.byID[id]
	if !ok || appt.Version != version {
		return appointmentRepo.ErrVersionConflict
	}
	appt.Date = date
	appt.Start = start
	appt.End = end
	appt.SpilloverFlag = spillover
	appt.Status = models.StatusRescheduled
	appt.History = append(appt.History, entry)
	appt.Version++
	return nil
}

func (m *memoryAppointments) UpdateTechnician(id string, version int, technicianID string, entry models.WorkflowEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	appt, ok := m.byID[id]
	if !ok || appt.Version != version {
		return appointmentRepo.ErrVersionConflict
	}
	appt.TechnicianID = technicianID
	appt.History = append(appt.History, entry)
	appt.Version++
	return nil
}

type memoryTechnicians struct {
	mu   sync.Mutex
	byID map[string]*models.Technician
}

func newMemoryTechnicians() *memoryTechnicians {
	return &memoryTechnicians{byID: make(map[string]*models.Technician)}
}

func (m *memoryTechnicians) put(t models.Technician) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := t
	m.byID[t.ID] = &cp
}

func (m *memoryTechnicians) GetByID(id string) (*models.Technician, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.byID[id]
	if !ok {
		return nil, technicianRepo.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *memoryTechnicians) ListByCenter(centerID string) ([]models.Technician, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Technician
	for _, t := range m.byID {
		if t.CenterID == centerID {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memoryTechnicians) Create(t *models.Technician) error {
	m.put(*t)
	return nil
}

func (m *memoryTechnicians) Update(t *models.Technician) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[t.ID]; !ok {
		return technicianRepo.ErrNotFound
	}
	cp := *t
	m.byID[t.ID] = &cp
	return nil
}

func (m *memoryTechnicians) AdjustWorkload(id string, delta int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.byID[id]
	if !ok {
		return technicianRepo.ErrNotFound
	}
	t.WorkloadPercent += delta
	if t.WorkloadPercent < 0 {
		t.WorkloadPercent = 0
	}
	if t.WorkloadPercent > 100 {
		t.WorkloadPercent = 100
	}
	return nil
}

func (m *memoryTechnicians) SetStatus(id string, status models.TechnicianStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.byID[id]
	if !ok {
		return technicianRepo.ErrNotFound
	}
	t.Status = status
	return nil
}

type memoryCatalog struct {
	byID map[string]models.Service
}

func newMemoryCatalog(services ...models.Service) *memoryCatalog {
	m := &memoryCatalog{byID: make(map[string]models.Service)}
	for _, s := range services {
		m.byID[s.ID] = s
	}
	return m
}

func (m *memoryCatalog) GetByID(id string) (*models.Service, error) {
	s, ok := m.byID[id]
	if !ok {
		return nil, catalogRepo.ErrNotFound
	}
	return &s, nil
}

func (m *memoryCatalog) GetMany(ids []string) ([]models.Service, error) {
	var out []models.Service
	for _, id := range ids {
		if s, ok := m.byID[id]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memoryCatalog) List() ([]models.Service, error) {
	var out []models.Service
	for _, s := range m.byID {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memoryCatalog) Create(s *models.Service) error {
	m.byID[s.ID] = *s
	return nil
}

func (m *memoryCatalog) Update(s *models.Service) error {
	if _, ok := m.byID[s.ID]; !ok {
		return catalogRepo.ErrNotFound
	}
	m.byID[s.ID] = *s
	return nil
}

func (m *memoryCatalog) Delete(id string) error {
	if _, ok := m.byID[id]; !ok {
		return catalogRepo.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

type memoryCenters struct {
	byID map[string]models.ServiceCenter
}

func newMemoryCenters(centers ...models.ServiceCenter) *memoryCenters {
	m := &memoryCenters{byID: make(map[string]models.ServiceCenter)}
	for _, c := range centers {
		m.byID[c.ID] = c
	}
	return m
}

func (m *memoryCenters) GetByID(id string) (*models.ServiceCenter, error) {
	c, ok := m.byID[id]
	if !ok {
		return nil, centerRepo.ErrNotFound
	}
	return &c, nil
}

func (m *memoryCenters) List() ([]models.ServiceCenter, error) {
	var out []models.ServiceCenter
	for _, c := range m.byID {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memoryCenters) Create(c *models.ServiceCenter) error {
	m.byID[c.ID] = *c
	return nil
}

func (m *memoryCenters) Update(c *models.ServiceCenter) error {
	if _, ok := m.byID[c.ID]; !ok {
		return centerRepo.ErrNotFound
	}
	m.byID[c.ID] = *c
	return nil
}

// memoryLocker grants every acquisition; lock contention paths are covered by
// the sequencing of the tests themselves.
type memoryLocker struct {
	mu       sync.Mutex
	acquired []string
}

type memoryLockHandle struct{}

func (memoryLockHandle) Release(context.Context) error { return nil }

func (l *memoryLocker) Acquire(_ context.Context, key string, _ time.Duration) (LockHandle, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.acquired = append(l.acquired, key)
	return memoryLockHandle{}, nil
}

type memorySequencer struct {
	mu   sync.Mutex
	seqs map[string]int
}

func newMemorySequencer() *memorySequencer {
	return &memorySequencer{seqs: make(map[string]int)}
}

func (s *memorySequencer) Next(_ context.Context, centerID, date string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := centerID + ":" + date
	s.seqs[key]++
	return s.seqs[key], nil
}

// testFixture bundles the engine, workflow and backing fakes for one test.
type testFixture struct {
	engine   *DefaultSchedulingEngine
	workflow *WorkflowService
	appts    *memoryAppointments
	techs    *memoryTechnicians
	catalog  *memoryCatalog
	centers  *memoryCenters
	locker   *memoryLocker
	now      time.Time
}

// fixtureNow is two days before the default booking date, well clear of the
// two-hour lead time.
var fixtureNow = time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)

func newFixture() *testFixture {
	techs := newMemoryTechnicians()
	appts := newMemoryAppointments(techs)
	catalog := newMemoryCatalog(
		models.Service{ID: "svc-battery", Name: "Battery Diagnostics", Category: models.CategoryBattery, EstimatedMinutes: 60, RequiredSkill: models.SkillAdvanced, BasePrice: 120},
		models.Service{ID: "svc-rotation", Name: "Tire Rotation", Category: models.CategoryMaintenance, EstimatedMinutes: 30, RequiredSkill: models.SkillBasic, BasePrice: 40},
		models.Service{ID: "svc-motor", Name: "Motor Inspection", Category: models.CategoryMotor, EstimatedMinutes: 90, RequiredSkill: models.SkillExpert, BasePrice: 250},
	)
	centers := newMemoryCenters(models.ServiceCenter{
		ID:          "c1",
		Name:        "Downtown Service Center",
		OpenMinute:  8 * 60,
		CloseMinute: 17 * 60,
		BayCount:    3,
	})
	locker := &memoryLocker{}

	f := &testFixture{
		appts:   appts,
		techs:   techs,
		catalog: catalog,
		centers: centers,
		locker:  locker,
		now:     fixtureNow,
	}
	f.engine = &DefaultSchedulingEngine{
		Appointments: appts,
		Technicians:  techs,
		Catalog:      catalog,
		Centers:      centers,
		Locker:       locker,
		Sequencer:    newMemorySequencer(),
		Policy: Policy{
			GranularityMin:   30,
			MinLeadTimeMin:   120,
			AllowSpillover:   true,
			AutoStartEnabled: true,
			LockTTL:          5 * time.Second,
		},
		Now: func() time.Time { return f.now },
	}
	f.workflow = &WorkflowService{
		Appointments:     appts,
		Technicians:      techs,
		AutoStartEnabled: true,
		Now:              func() time.Time { return f.now },
	}
	return f
}

func (f *testFixture) addTechnician(id string, mutate func(*models.Technician)) {
	t := models.Technician{
		ID:       id,
		CenterID: "c1",
		Name:     "Tech " + id,
		Skills: []models.Skill{
			{Category: models.CategoryBattery, Proficiency: 4, Certified: true},
			{Category: models.CategoryMaintenance, Proficiency: 3},
		},
		YearsExperience: 5,
		Status:          models.TechnicianAvailable,
	}
	if mutate != nil {
		mutate(&t)
	}
	f.techs.put(t)
}

func (f *testFixture) addAppointment(id string, mutate func(*models.Appointment)) models.Appointment {
	appt := models.Appointment{
		ID:              id,
		Number:          "APT-20260903-9" + id,
		CenterID:        "c1",
		CustomerID:      "cust-1",
		Date:            "2026-09-03",
		Start:           9 * 60,
		End:             10 * 60,
		DurationMinutes: 60,
		Priority:        models.PriorityNormal,
		Status:          models.StatusConfirmed,
		Version:         1,
		CreatedAt:       fixtureNow,
	}
	if mutate != nil {
		mutate(&appt)
	}
	f.appts.put(appt)
	return appt
}

func draftFor(serviceIDs ...string) models.BookingDraft {
	reqs := make([]models.ServiceRequest, 0, len(serviceIDs))
	for _, id := range serviceIDs {
		reqs = append(reqs, models.ServiceRequest{ServiceID: id})
	}
	return models.BookingDraft{
		CenterID:   "c1",
		CustomerID: "cust-1",
		VehicleID:  "veh-1",
		Services:   reqs,
		Date:       "2026-09-03",
		Time:       "09:00",
	}
}
