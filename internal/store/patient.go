package store

import (
	"context"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"clinic-scheduler/internal/caltime"
	"clinic-scheduler/internal/model"
)

const patientCols = `id, doctor_id, first_name, last_name, phone, email,
	COALESCE(date_of_birth::text, ''), gender, address, created_at, updated_at`

func scanPatient(row pgx.Row) (*model.Patient, error) {
	var (
		p   model.Patient
		dob string
	)
	err := row.Scan(&p.ID, &p.DoctorID, &p.FirstName, &p.LastName, &p.Phone, &p.Email,
		&dob, &p.Gender, &p.Address, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if dob != "" {
		d, err := caltime.ParseDate(dob)
		if err != nil {
			return nil, err
		}
		p.DateOfBirth = &d
	}
	return &p, nil
}

func dateArg(d *caltime.Date) string {
	if d == nil {
		return ""
	}
	return d.String()
}

func (s *Store) CreatePatient(ctx context.Context, p *model.Patient) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO patients
		   (id, doctor_id, first_name, last_name, phone, email, date_of_birth, gender, address)
		 VALUES ($1,$2,$3,$4,$5,$6,NULLIF($7,'')::date,$8,$9)`,
		p.ID, p.DoctorID, p.FirstName, p.LastName, p.Phone, p.Email,
		dateArg(p.DateOfBirth), p.Gender, p.Address,
	)
	return duplicate(err)
}

func (s *Store) GetPatient(ctx context.Context, id string) (*model.Patient, error) {
	p, err := scanPatient(s.pool.QueryRow(ctx,
		`SELECT `+patientCols+` FROM patients WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return p, nil
}

func (s *Store) PatientByEmail(ctx context.Context, doctorID, email string) (*model.Patient, error) {
	p, err := scanPatient(s.pool.QueryRow(ctx,
		`SELECT `+patientCols+` FROM patients
		 WHERE doctor_id = $1 AND lower(email) = lower($2)
		 ORDER BY created_at LIMIT 1`, doctorID, email))
	if err != nil {
		return nil, notFound(err)
	}
	return p, nil
}

func (s *Store) ListPatients(ctx context.Context, doctorID string) ([]*model.Patient, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+patientCols+` FROM patients
		 WHERE doctor_id = $1 ORDER BY last_name, first_name`, doctorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// PatchPatient updates only the columns set in patch.
func (s *Store) PatchPatient(ctx context.Context, id string, patch model.PatientPatch) (*model.Patient, error) {
	var (
		sets []string
		args []any
	)
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, col+"=$"+strconv.Itoa(len(args)))
	}
	if patch.FirstName != nil {
		add("first_name", *patch.FirstName)
	}
	if patch.LastName != nil {
		add("last_name", *patch.LastName)
	}
	if patch.Phone != nil {
		add("phone", *patch.Phone)
	}
	if patch.Email != nil {
		add("email", *patch.Email)
	}
	if patch.DateOfBirth != nil {
		args = append(args, patch.DateOfBirth.String())
		sets = append(sets, "date_of_birth=$"+strconv.Itoa(len(args))+"::date")
	}
	if patch.Gender != nil {
		add("gender", *patch.Gender)
	}
	if patch.Address != nil {
		add("address", *patch.Address)
	}
	if len(sets) == 0 {
		return s.GetPatient(ctx, id)
	}

	args = append(args, id)
	q := `UPDATE patients SET ` + strings.Join(sets, ", ") + `, updated_at=NOW()
	      WHERE id=$` + strconv.Itoa(len(args)) + ` RETURNING ` + patientCols
	p, err := scanPatient(s.pool.QueryRow(ctx, q, args...))
	if err != nil {
		return nil, notFound(err)
	}
	return p, nil
}
