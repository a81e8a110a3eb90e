// Package memstore is an in-process store with the same method set as the
// Postgres store. It backs demo mode and the unit tests.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"clinic-scheduler/internal/caltime"
	"clinic-scheduler/internal/model"
	"clinic-scheduler/internal/store"
)

type Store struct {
	mu            sync.RWMutex
	doctors       map[string]*model.Doctor
	patients      map[string]*model.Patient
	appointments  map[string]*model.Appointment
	notifications map[string]*model.Notification
	seq           int // insertion order for notifications
	order         map[string]int
}

func New() *Store {
	return &Store{
		doctors:       make(map[string]*model.Doctor),
		patients:      make(map[string]*model.Patient),
		appointments:  make(map[string]*model.Appointment),
		notifications: make(map[string]*model.Notification),
		order:         make(map[string]int),
	}
}

// -- doctors --

func (s *Store) CreateDoctor(_ context.Context, d *model.Doctor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.doctors {
		if strings.EqualFold(e.Email, d.Email) {
			return store.ErrDuplicate
		}
	}
	c := *d
	now := time.Now()
	c.CreatedAt, c.UpdatedAt = now, now
	s.doctors[d.ID] = &c
	return nil
}

func (s *Store) DoctorByEmail(_ context.Context, email string) (*model.Doctor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, d := range s.doctors {
		if d.Email == email {
			c := *d
			return &c, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) GetDoctor(_ context.Context, id string) (*model.Doctor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.doctors[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	c := *d
	return &c, nil
}

// -- appointments --

func (s *Store) CreateAppointment(_ context.Context, a *model.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.appointments[a.ID]; ok {
		return store.ErrDuplicate
	}
	s.appointments[a.ID] = a.Clone()
	return nil
}

// ReserveAppointment inserts a and returns the active appointments of the
// same doctor it overlaps. With exclusive set any overlap aborts the insert
// with store.ErrConflict.
func (s *Store) ReserveAppointment(_ context.Context, a *model.Appointment, exclusive bool) ([]*model.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.appointments[a.ID]; ok {
		return nil, store.ErrDuplicate
	}
	var overlaps []*model.Appointment
	for _, b := range s.appointments {
		if b.DoctorID == a.DoctorID && b.Status.Active() && a.Overlaps(b) {
			overlaps = append(overlaps, b.Clone())
		}
	}
	sort.SliceStable(overlaps, func(i, j int) bool { return overlaps[i].Instant().Before(overlaps[j].Instant()) })
	if exclusive && len(overlaps) > 0 {
		return overlaps, store.ErrConflict
	}
	s.appointments[a.ID] = a.Clone()
	return overlaps, nil
}

func (s *Store) GetAppointment(_ context.Context, id string) (*model.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.appointments[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return a.Clone(), nil
}

func (s *Store) ListAppointments(_ context.Context, doctorID string) ([]*model.Appointment, error) {
	return s.filterAppointments(func(a *model.Appointment) bool { return a.DoctorID == doctorID }), nil
}

func (s *Store) ListPatientAppointments(_ context.Context, patientID string) ([]*model.Appointment, error) {
	return s.filterAppointments(func(a *model.Appointment) bool { return a.PatientID == patientID }), nil
}

func (s *Store) ListActiveBetween(_ context.Context, from, to caltime.Date) ([]*model.Appointment, error) {
	return s.filterAppointments(func(a *model.Appointment) bool {
		return a.Status.Active() && !a.Date.Before(from) && !a.Date.After(to)
	}), nil
}

func (s *Store) filterAppointments(keep func(*model.Appointment) bool) []*model.Appointment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*model.Appointment
	for _, a := range s.appointments {
		if keep(a) {
			out = append(out, a.Clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Instant().Before(out[j].Instant()) })
	return out
}

// UpdateAppointment is a compare-and-swap on the stored status and version.
func (s *Store) UpdateAppointment(_ context.Context, a *model.Appointment, expected model.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.appointments[a.ID]
	if !ok {
		return store.ErrNotFound
	}
	if cur.Status != expected || cur.Version != a.Version {
		return store.ErrConflict
	}
	a.Version++
	s.appointments[a.ID] = a.Clone()
	return nil
}

func (s *Store) MarkReminderSent(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.appointments[id]
	if !ok {
		return store.ErrNotFound
	}
	if a.ReminderSentAt != nil {
		return store.ErrConflict
	}
	a.ReminderSentAt = &at
	a.Version++
	return nil
}

func (s *Store) DeleteAppointment(_ context.Context, id, doctorID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.appointments[id]
	if !ok || a.DoctorID != doctorID {
		return store.ErrNotFound
	}
	delete(s.appointments, id)
	return nil
}

// -- patients --

func (s *Store) CreatePatient(_ context.Context, p *model.Patient) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.patients[p.ID]; ok {
		return store.ErrDuplicate
	}
	c := *p
	now := time.Now()
	c.CreatedAt, c.UpdatedAt = now, now
	s.patients[p.ID] = &c
	return nil
}

func (s *Store) GetPatient(_ context.Context, id string) (*model.Patient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.patients[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	c := *p
	return &c, nil
}

func (s *Store) PatientByEmail(_ context.Context, doctorID, email string) (*model.Patient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.patients {
		if p.DoctorID == doctorID && strings.EqualFold(p.Email, email) {
			c := *p
			return &c, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) ListPatients(_ context.Context, doctorID string) ([]*model.Patient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*model.Patient
	for _, p := range s.patients {
		if p.DoctorID == doctorID {
			c := *p
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LastName != out[j].LastName {
			return out[i].LastName < out[j].LastName
		}
		return out[i].FirstName < out[j].FirstName
	})
	return out, nil
}

func (s *Store) PatchPatient(_ context.Context, id string, patch model.PatientPatch) (*model.Patient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.patients[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	patch.Apply(p)
	p.UpdatedAt = time.Now()
	c := *p
	return &c, nil
}

// -- notifications --

func (s *Store) CreateNotification(_ context.Context, n *model.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *n
	s.notifications[n.ID] = &c
	s.seq++
	s.order[n.ID] = s.seq
	return nil
}

func (s *Store) ListNotifications(_ context.Context, recipientID string, unreadOnly bool) ([]*model.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*model.Notification
	for _, n := range s.notifications {
		if n.RecipientID != recipientID || (unreadOnly && n.Read) {
			continue
		}
		c := *n
		out = append(out, &c)
	}
	// newest first
	sort.Slice(out, func(i, j int) bool { return s.order[out[i].ID] > s.order[out[j].ID] })
	return out, nil
}

func (s *Store) MarkNotificationRead(_ context.Context, id, recipientID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notifications[id]
	if !ok || n.RecipientID != recipientID {
		return store.ErrNotFound
	}
	n.Read = true
	return nil
}
