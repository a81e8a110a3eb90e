package store

import (
	"context"

	"clinic-scheduler/internal/model"
)

func (s *Store) CreateDoctor(ctx context.Context, d *model.Doctor) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO doctors (id, email, password_hash, name, specialty) VALUES ($1,$2,$3,$4,$5)`,
		d.ID, d.Email, d.PasswordHash, d.Name, d.Specialty,
	)
	return duplicate(err)
}

func (s *Store) DoctorByEmail(ctx context.Context, email string) (*model.Doctor, error) {
	return s.doctorWhere(ctx, `email = $1`, email)
}

func (s *Store) GetDoctor(ctx context.Context, id string) (*model.Doctor, error) {
	return s.doctorWhere(ctx, `id = $1`, id)
}

func (s *Store) doctorWhere(ctx context.Context, cond string, arg any) (*model.Doctor, error) {
	d := &model.Doctor{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, email, password_hash, name, specialty, created_at, updated_at
		 FROM doctors WHERE `+cond, arg,
	).Scan(&d.ID, &d.Email, &d.PasswordHash, &d.Name, &d.Specialty, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return d, nil
}
