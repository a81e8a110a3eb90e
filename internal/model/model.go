package model

import (
	"encoding/json"
	"strings"
	"time"

	"clinic-scheduler/internal/caltime"
)

const DefaultDurationMins = 30

// Doctor is an account that owns patients and appointments.
type Doctor struct {
	ID           string
	Email        string
	PasswordHash string
	Name         string
	Specialty    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusNoShow    Status = "no_show"
)

func (s Status) Valid() bool {
	switch s {
	case StatusScheduled, StatusConfirmed, StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// Terminal statuses admit no further transition.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusNoShow
}

// Active appointments still occupy their slot.
func (s Status) Active() bool {
	return s == StatusScheduled || s == StatusConfirmed
}

type Appointment struct {
	ID              string
	DoctorID        string
	PatientID       string
	Date            caltime.Date
	Time            caltime.Clock
	DurationMins    int
	Title           string
	Description     string
	Status          Status
	NoShowReason    string
	ClinicalHistory json.RawMessage
	Notes           string
	ReminderSentAt  *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
	// Version counts stored writes. Guarded updates compare it with the
	// value that was read.
	Version int
}

// Instant is the naive start of the appointment.
func (a *Appointment) Instant() time.Time {
	return caltime.Combine(a.Date, a.Time)
}

// Duration is the booked length, falling back to DefaultDurationMins.
func (a *Appointment) Duration() time.Duration {
	d := a.DurationMins
	if d <= 0 {
		d = DefaultDurationMins
	}
	return time.Duration(d) * time.Minute
}

// Overlaps reports whether the time ranges of a and b intersect. Doctor and
// status are not compared.
func (a *Appointment) Overlaps(b *Appointment) bool {
	as, bs := a.Instant(), b.Instant()
	return as.Before(bs.Add(b.Duration())) && bs.Before(as.Add(a.Duration()))
}

// SameSlot reports whether b starts at the same doctor/date/time as a.
func (a *Appointment) SameSlot(b *Appointment) bool {
	return a.DoctorID == b.DoctorID && a.Date.Equal(b.Date) && a.Time.Compare(b.Time) == 0
}

// Clone returns a deep copy.
func (a *Appointment) Clone() *Appointment {
	c := *a
	if a.ClinicalHistory != nil {
		c.ClinicalHistory = append(json.RawMessage(nil), a.ClinicalHistory...)
	}
	if a.ReminderSentAt != nil {
		t := *a.ReminderSentAt
		c.ReminderSentAt = &t
	}
	return &c
}

type Patient struct {
	ID          string
	DoctorID    string
	FirstName   string
	LastName    string
	Phone       string
	Email       string
	DateOfBirth *caltime.Date
	Gender      string
	Address     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (p *Patient) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// PatientPatch lists every mutable patient field; nil means untouched.
type PatientPatch struct {
	FirstName   *string
	LastName    *string
	Phone       *string
	Email       *string
	DateOfBirth *caltime.Date
	Gender      *string
	Address     *string
}

func (p *PatientPatch) Empty() bool {
	return p == nil || (p.FirstName == nil && p.LastName == nil && p.Phone == nil &&
		p.Email == nil && p.DateOfBirth == nil && p.Gender == nil && p.Address == nil)
}

// Apply copies every set field onto dst.
func (p *PatientPatch) Apply(dst *Patient) {
	if p == nil {
		return
	}
	if p.FirstName != nil {
		dst.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		dst.LastName = *p.LastName
	}
	if p.Phone != nil {
		dst.Phone = *p.Phone
	}
	if p.Email != nil {
		dst.Email = *p.Email
	}
	if p.DateOfBirth != nil {
		d := *p.DateOfBirth
		dst.DateOfBirth = &d
	}
	if p.Gender != nil {
		dst.Gender = *p.Gender
	}
	if p.Address != nil {
		dst.Address = *p.Address
	}
}

type RecipientKind string

const (
	RecipientDoctor  RecipientKind = "doctor"
	RecipientPatient RecipientKind = "patient"
)

type NotificationType string

const (
	NotifyInfo    NotificationType = "info"
	NotifySuccess NotificationType = "success"
	NotifyWarning NotificationType = "warning"
	NotifyError   NotificationType = "error"
)

type Notification struct {
	ID            string
	RecipientID   string
	RecipientKind RecipientKind
	Title         string
	Message       string
	Type          NotificationType
	Read          bool
	AppointmentID string
	CreatedAt     time.Time
}
