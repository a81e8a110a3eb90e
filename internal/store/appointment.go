package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"clinic-scheduler/internal/caltime"
	"clinic-scheduler/internal/model"
)

// date and time travel as text so the driver never applies a zone.
const appointmentCols = `id, doctor_id, patient_id, date::text, to_char(time, 'HH24:MI:SS'),
	duration_mins, title, description, status, no_show_reason,
	COALESCE(clinical_history::text, ''), notes, reminder_sent_at, created_at, updated_at, version`

func scanAppointment(row pgx.Row) (*model.Appointment, error) {
	var (
		a            model.Appointment
		date, clock  string
		status, hist string
	)
	err := row.Scan(&a.ID, &a.DoctorID, &a.PatientID, &date, &clock,
		&a.DurationMins, &a.Title, &a.Description, &status, &a.NoShowReason,
		&hist, &a.Notes, &a.ReminderSentAt, &a.CreatedAt, &a.UpdatedAt, &a.Version)
	if err != nil {
		return nil, err
	}
	if a.Date, err = caltime.ParseDate(date); err != nil {
		return nil, fmt.Errorf("appointment %s: %w", a.ID, err)
	}
	if a.Time, err = caltime.ParseClock(clock); err != nil {
		return nil, fmt.Errorf("appointment %s: %w", a.ID, err)
	}
	a.Status = model.Status(status)
	if hist != "" {
		a.ClinicalHistory = json.RawMessage(hist)
	}
	return &a, nil
}

func collectAppointments(rows pgx.Rows) ([]*model.Appointment, error) {
	defer rows.Close()
	var out []*model.Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) CreateAppointment(ctx context.Context, a *model.Appointment) error {
	return duplicate(insertAppointment(ctx, s.pool, a))
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func insertAppointment(ctx context.Context, db execer, a *model.Appointment) error {
	_, err := db.Exec(ctx,
		`INSERT INTO appointments
		   (id, doctor_id, patient_id, date, time, duration_mins, title, description,
		    status, no_show_reason, clinical_history, notes, created_at, updated_at)
		 VALUES ($1,$2,$3,$4::date,$5::time,$6,$7,$8,$9,$10,NULLIF($11,'')::jsonb,$12,$13,$13)`,
		a.ID, a.DoctorID, a.PatientID, a.Date.String(), a.Time.String(), a.DurationMins,
		a.Title, a.Description, string(a.Status), a.NoShowReason, string(a.ClinicalHistory),
		a.Notes, a.CreatedAt,
	)
	return err
}

// lockDoctor serialises appointment writes of one doctor until tx ends.
func lockDoctor(ctx context.Context, tx pgx.Tx, doctorID string) error {
	_, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext('appointments:' || $1))`, doctorID)
	return err
}

// ReserveAppointment inserts a and returns the active appointments of the
// same doctor it overlaps. With exclusive set any overlap aborts the insert
// with ErrConflict. The check and the insert hold the doctor's lock.
func (s *Store) ReserveAppointment(ctx context.Context, a *model.Appointment, exclusive bool) ([]*model.Appointment, error) {
	var overlaps []*model.Appointment
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if err := lockDoctor(ctx, tx, a.DoctorID); err != nil {
			return err
		}
		// one day either side catches ranges that cross midnight
		rows, err := tx.Query(ctx,
			`SELECT `+appointmentCols+` FROM appointments
			 WHERE doctor_id = $1 AND status IN ('scheduled','confirmed')
			   AND date BETWEEN $2::date - 1 AND $2::date + 1
			 ORDER BY date, time`, a.DoctorID, a.Date.String())
		if err != nil {
			return err
		}
		near, err := collectAppointments(rows)
		if err != nil {
			return err
		}
		for _, b := range near {
			if b.ID != a.ID && a.Overlaps(b) {
				overlaps = append(overlaps, b)
			}
		}
		if exclusive && len(overlaps) > 0 {
			return ErrConflict
		}
		return insertAppointment(ctx, tx, a)
	})
	return overlaps, duplicate(err)
}

func (s *Store) GetAppointment(ctx context.Context, id string) (*model.Appointment, error) {
	a, err := scanAppointment(s.pool.QueryRow(ctx,
		`SELECT `+appointmentCols+` FROM appointments WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return a, nil
}

// ListAppointments returns every appointment of a doctor, unfiltered by
// date; callers filter in memory.
func (s *Store) ListAppointments(ctx context.Context, doctorID string) ([]*model.Appointment, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+appointmentCols+` FROM appointments
		 WHERE doctor_id = $1 ORDER BY date, time`, doctorID)
	if err != nil {
		return nil, err
	}
	return collectAppointments(rows)
}

func (s *Store) ListPatientAppointments(ctx context.Context, patientID string) ([]*model.Appointment, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+appointmentCols+` FROM appointments
		 WHERE patient_id = $1 ORDER BY date, time`, patientID)
	if err != nil {
		return nil, err
	}
	return collectAppointments(rows)
}

// ListActiveBetween returns scheduled/confirmed appointments of every doctor
// dated within [from, to].
func (s *Store) ListActiveBetween(ctx context.Context, from, to caltime.Date) ([]*model.Appointment, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+appointmentCols+` FROM appointments
		 WHERE status IN ('scheduled','confirmed')
		   AND date BETWEEN $1::date AND $2::date
		 ORDER BY date, time`, from.String(), to.String())
	if err != nil {
		return nil, err
	}
	return collectAppointments(rows)
}

// UpdateAppointment writes a only if the stored row still has the expected
// status and the version a was read at. On success a.Version is advanced.
// The write holds the doctor's lock so it orders against reservations.
func (s *Store) UpdateAppointment(ctx context.Context, a *model.Appointment, expected model.Status) error {
	var version int
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if err := lockDoctor(ctx, tx, a.DoctorID); err != nil {
			return err
		}
		return tx.QueryRow(ctx,
			`UPDATE appointments
			 SET date=$1::date, time=$2::time, duration_mins=$3, title=$4, description=$5,
			     status=$6, no_show_reason=$7, clinical_history=NULLIF($8,'')::jsonb,
			     notes=$9, reminder_sent_at=$10, updated_at=$11, version=version+1
			 WHERE id=$12 AND status=$13 AND version=$14
			 RETURNING version`,
			a.Date.String(), a.Time.String(), a.DurationMins, a.Title, a.Description,
			string(a.Status), a.NoShowReason, string(a.ClinicalHistory),
			a.Notes, a.ReminderSentAt, a.UpdatedAt, a.ID, string(expected), a.Version,
		).Scan(&version)
	})
	if errors.Is(err, pgx.ErrNoRows) {
		if _, err := s.GetAppointment(ctx, a.ID); err != nil {
			return err
		}
		return ErrConflict
	}
	if err != nil {
		return err
	}
	a.Version = version
	return nil
}

// MarkReminderSent sets reminder_sent_at once; a second call is a conflict.
func (s *Store) MarkReminderSent(ctx context.Context, id string, at time.Time) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE appointments SET reminder_sent_at=$1, version=version+1
		 WHERE id=$2 AND reminder_sent_at IS NULL`, at, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrConflict
	}
	return nil
}

// DeleteAppointment physically removes the row. Administrative use only.
func (s *Store) DeleteAppointment(ctx context.Context, id, doctorID string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM appointments WHERE id=$1 AND doctor_id=$2`, id, doctorID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
