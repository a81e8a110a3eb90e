// Package alert classifies upcoming appointments by how soon they start.
// All comparisons use naive wall-clock values: the appointment date and time
// are never shifted by a zone, and callers pass now as read on the clinic
// wall clock.
package alert

import (
	"fmt"
	"sort"
	"time"

	"clinic-scheduler/internal/caltime"
	"clinic-scheduler/internal/model"
)

type Level string

const (
	LevelNone    Level = "none"
	LevelOverdue Level = "overdue"
	LevelUrgent  Level = "urgent"
	LevelWarning Level = "warning"
	LevelInfo    Level = "info"
)

const (
	UrgentWithin  = 10
	WarningWithin = 60
)

// Severity maps a level onto the notification type used when the alert is
// persisted to an inbox.
func (l Level) Severity() model.NotificationType {
	switch l {
	case LevelOverdue:
		return model.NotifyError
	case LevelUrgent, LevelWarning:
		return model.NotifyWarning
	default:
		return model.NotifyInfo
	}
}

type Classification struct {
	Level   Level
	Message string
	// Minutes until the appointment starts, rounded away from zero and
	// negative when overdue. 10m01s counts as 11.
	Minutes int
}

// Classify buckets a by the time left until it starts. Only scheduled and
// confirmed appointments are eligible.
func Classify(now time.Time, a *model.Appointment) Classification {
	if !a.Status.Active() {
		return Classification{Level: LevelNone}
	}

	now = caltime.Naive(now)
	at := a.Instant()
	mins := wholeMinutes(at.Sub(now))

	switch {
	case at.Before(now):
		return Classification{Level: LevelOverdue, Message: "appointment overdue", Minutes: mins}
	case mins <= UrgentWithin:
		return Classification{Level: LevelUrgent, Message: fmt.Sprintf("appointment in %d minutes", mins), Minutes: mins}
	case mins <= WarningWithin:
		return Classification{
			Level:   LevelWarning,
			Message: fmt.Sprintf("appointment in %dh %dm", mins/60, mins%60),
			Minutes: mins,
		}
	case a.Date.Equal(caltime.DateOf(now).AddDays(1)):
		return Classification{
			Level:   LevelInfo,
			Message: "appointment tomorrow at " + a.Time.HHMM(),
			Minutes: mins,
		}
	}
	return Classification{Level: LevelNone, Minutes: mins}
}

// wholeMinutes rounds d away from zero, so a bucket bound of N minutes
// compares against the exact duration.
func wholeMinutes(d time.Duration) int {
	m := int(d / time.Minute)
	switch {
	case d > 0 && d%time.Minute != 0:
		m++
	case d < 0 && d%time.Minute != 0:
		m--
	}
	return m
}

// SortByInstant orders appts by start, keeping the input order for ties.
func SortByInstant(appts []*model.Appointment) {
	sort.SliceStable(appts, func(i, j int) bool {
		return appts[i].Instant().Before(appts[j].Instant())
	})
}

type Upcoming struct {
	Appointment    *model.Appointment
	Classification Classification
}

// ListUpcoming returns the active appointments in appts ordered by start,
// each with its classification. appts is not reordered.
func ListUpcoming(now time.Time, appts []*model.Appointment) []Upcoming {
	sorted := make([]*model.Appointment, 0, len(appts))
	for _, a := range appts {
		if a.Status.Active() {
			sorted = append(sorted, a)
		}
	}
	SortByInstant(sorted)

	out := make([]Upcoming, 0, len(sorted))
	for _, a := range sorted {
		out = append(out, Upcoming{Appointment: a, Classification: Classify(now, a)})
	}
	return out
}

// Next returns the earliest active appointment that has not started yet.
func Next(now time.Time, appts []*model.Appointment) (*model.Appointment, bool) {
	now = caltime.Naive(now)
	for _, u := range ListUpcoming(now, appts) {
		if !u.Appointment.Instant().Before(now) {
			return u.Appointment, true
		}
	}
	return nil, false
}
