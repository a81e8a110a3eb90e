package alert

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinic-scheduler/internal/caltime"
	"clinic-scheduler/internal/model"
)

func at(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, time.UTC)
}

func appt(id string, d caltime.Date, c caltime.Clock, s model.Status) *model.Appointment {
	return &model.Appointment{ID: id, Date: d, Time: c, Status: s}
}

var jan15 = caltime.NewDate(2024, time.January, 15)

func TestClassify(t *testing.T) {
	ten := caltime.NewClock(10, 0, 0)
	tests := []struct {
		name    string
		now     time.Time
		date    caltime.Date
		level   Level
		message string
	}{
		{"urgent five minutes", at(2024, 1, 15, 9, 55), jan15, LevelUrgent, "appointment in 5 minutes"},
		{"urgent at start", at(2024, 1, 15, 10, 0), jan15, LevelUrgent, "appointment in 0 minutes"},
		{"overdue", at(2024, 1, 15, 10, 5), jan15, LevelOverdue, "appointment overdue"},
		{"urgent boundary", at(2024, 1, 15, 9, 50), jan15, LevelUrgent, "appointment in 10 minutes"},
		{"partial minute rounds up", at(2024, 1, 15, 9, 55).Add(30 * time.Second), jan15, LevelUrgent, "appointment in 5 minutes"},
		{"just past urgent", at(2024, 1, 15, 9, 49).Add(time.Second), jan15, LevelWarning, "appointment in 0h 11m"},
		{"just past warning", at(2024, 1, 15, 8, 59).Add(59 * time.Second), jan15, LevelNone, ""},
		{"warning", at(2024, 1, 15, 9, 15), jan15, LevelWarning, "appointment in 0h 45m"},
		{"warning boundary", at(2024, 1, 15, 9, 0), jan15, LevelWarning, "appointment in 1h 0m"},
		{"later today", at(2024, 1, 15, 8, 0), jan15, LevelNone, ""},
		{"tomorrow", at(2024, 1, 14, 18, 0), jan15, LevelInfo, "appointment tomorrow at 10:00"},
		{"day after tomorrow", at(2024, 1, 13, 18, 0), jan15, LevelNone, ""},
		{"tomorrow across month", at(2024, 1, 31, 20, 0), caltime.NewDate(2024, time.February, 1), LevelInfo, "appointment tomorrow at 10:00"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := Classify(tc.now, appt("a", tc.date, ten, model.StatusScheduled))
			assert.Equal(t, tc.level, c.Level)
			if tc.message != "" {
				assert.Equal(t, tc.message, c.Message)
			}
		})
	}
}

func TestClassifyInactiveIsNone(t *testing.T) {
	now := at(2024, 1, 15, 9, 55)
	for _, s := range []model.Status{model.StatusCompleted, model.StatusCancelled, model.StatusNoShow} {
		for _, offset := range []int{-120, -1, 0, 5, 45, 24 * 60} {
			instant := now.Add(time.Duration(offset) * time.Minute)
			a := appt("a", caltime.DateOf(instant), caltime.ClockOf(instant), s)
			assert.Equal(t, LevelNone, Classify(now, a).Level, "%s at %+d", s, offset)
		}
	}
}

func TestClassifyOverdueIffBeforeNow(t *testing.T) {
	now := at(2024, 3, 10, 14, 30)
	for offset := -180; offset <= 180; offset += 7 {
		instant := now.Add(time.Duration(offset) * time.Minute)
		for _, s := range []model.Status{model.StatusScheduled, model.StatusConfirmed} {
			a := appt("a", caltime.DateOf(instant), caltime.ClockOf(instant), s)
			got := Classify(now, a).Level == LevelOverdue
			assert.Equal(t, instant.Before(now), got, "offset %d", offset)
		}
	}
}

func TestClassifyMinutesRoundAwayFromZero(t *testing.T) {
	a := appt("a", jan15, caltime.NewClock(10, 0, 0), model.StatusScheduled)
	assert.Equal(t, 11, Classify(at(2024, 1, 15, 9, 49).Add(time.Second), a).Minutes)
	assert.Equal(t, 0, Classify(at(2024, 1, 15, 10, 0), a).Minutes)

	late := Classify(at(2024, 1, 15, 10, 0).Add(30*time.Second), a)
	assert.Equal(t, LevelOverdue, late.Level)
	assert.Equal(t, -1, late.Minutes)
}

func TestClassifyIgnoresZone(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*60*60)
	now := time.Date(2024, time.January, 15, 9, 55, 0, 0, loc)
	c := Classify(now, appt("a", jan15, caltime.NewClock(10, 0, 0), model.StatusConfirmed))
	assert.Equal(t, LevelUrgent, c.Level)
	assert.Equal(t, 5, c.Minutes)
}

func TestSeverity(t *testing.T) {
	assert.Equal(t, model.NotifyError, LevelOverdue.Severity())
	assert.Equal(t, model.NotifyWarning, LevelUrgent.Severity())
	assert.Equal(t, model.NotifyWarning, LevelWarning.Severity())
	assert.Equal(t, model.NotifyInfo, LevelInfo.Severity())
}

func TestSortByInstantStable(t *testing.T) {
	nine := caltime.NewClock(9, 0, 0)
	appts := []*model.Appointment{
		appt("c", jan15.AddDays(1), nine, model.StatusScheduled),
		appt("a1", jan15, nine, model.StatusScheduled),
		appt("b", jan15, caltime.NewClock(8, 30, 0), model.StatusScheduled),
		appt("a2", jan15, nine, model.StatusConfirmed),
	}
	SortByInstant(appts)

	ids := make([]string, len(appts))
	for i, a := range appts {
		ids[i] = a.ID
	}
	assert.Equal(t, []string{"b", "a1", "a2", "c"}, ids)
}

func TestListUpcoming(t *testing.T) {
	sep := func(d int) caltime.Date { return caltime.NewDate(2025, time.September, d) }
	in := []*model.Appointment{
		appt("17", sep(17), caltime.NewClock(9, 0, 0), model.StatusScheduled),
		appt("8b", sep(8), caltime.NewClock(15, 0, 0), model.StatusConfirmed),
		appt("gone", sep(6), caltime.NewClock(9, 0, 0), model.StatusCancelled),
		appt("5", sep(5), caltime.NewClock(11, 0, 0), model.StatusScheduled),
		appt("8a", sep(8), caltime.NewClock(9, 30, 0), model.StatusScheduled),
	}
	now := at(2025, 9, 7, 12, 0)
	ups := ListUpcoming(now, in)

	ids := make([]string, len(ups))
	for i, u := range ups {
		ids[i] = u.Appointment.ID
	}
	assert.Equal(t, []string{"5", "8a", "8b", "17"}, ids)
	assert.Equal(t, LevelOverdue, ups[0].Classification.Level)
	assert.Equal(t, LevelInfo, ups[1].Classification.Level)
	assert.Equal(t, "17", in[0].ID, "input must not be reordered")

	next, ok := Next(now, in)
	require.True(t, ok)
	assert.Equal(t, "8a", next.ID)
}

func TestNextNone(t *testing.T) {
	_, ok := Next(at(2024, 1, 15, 12, 0), []*model.Appointment{
		appt("a", jan15, caltime.NewClock(9, 0, 0), model.StatusScheduled),
	})
	assert.False(t, ok)
}
