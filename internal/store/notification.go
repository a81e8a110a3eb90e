package store

import (
	"context"

	"clinic-scheduler/internal/model"
)

func (s *Store) CreateNotification(ctx context.Context, n *model.Notification) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO notifications
		   (id, recipient_id, recipient_kind, title, message, type, appointment_id, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,NULLIF($7,'')::uuid,$8)`,
		n.ID, n.RecipientID, string(n.RecipientKind), n.Title, n.Message,
		string(n.Type), n.AppointmentID, n.CreatedAt,
	)
	return err
}

func (s *Store) ListNotifications(ctx context.Context, recipientID string, unreadOnly bool) ([]*model.Notification, error) {
	q := `SELECT id, recipient_id, recipient_kind, title, message, type, read,
	             COALESCE(appointment_id::text, ''), created_at
	      FROM notifications WHERE recipient_id = $1`
	if unreadOnly {
		q += ` AND read = false`
	}
	q += ` ORDER BY created_at DESC LIMIT 200`

	rows, err := s.pool.Query(ctx, q, recipientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Notification
	for rows.Next() {
		var (
			n         model.Notification
			kind, typ string
		)
		if err := rows.Scan(&n.ID, &n.RecipientID, &kind, &n.Title, &n.Message,
			&typ, &n.Read, &n.AppointmentID, &n.CreatedAt); err != nil {
			return nil, err
		}
		n.RecipientKind = model.RecipientKind(kind)
		n.Type = model.NotificationType(typ)
		out = append(out, &n)
	}
	return out, rows.Err()
}

func (s *Store) MarkNotificationRead(ctx context.Context, id, recipientID string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE notifications SET read = true WHERE id = $1 AND recipient_id = $2`,
		id, recipientID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
