package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"slotpoll/internal/apperr"
	"slotpoll/internal/db"
	"slotpoll/internal/model"
)

// CreatePoll inserts the event and all of its time slots in one
// transaction and returns the new event id. Either every row lands or
// none does.
func (s *Store) CreatePoll(ctx context.Context, adminID, title string, description *string, slots []model.TimeSlotInput) (string, error) {
	if strings.TrimSpace(title) == "" {
		return "", apperr.New(apperr.KindValidation, "empty_title")
	}
	if len(slots) == 0 {
		return "", apperr.New(apperr.KindValidation, "no_time_slots")
	}

	event := model.NewEvent(adminID, title, description)
	err := s.db.WithTx(ctx, func(tx db.DBTX) error {
		if _, err := tx.Exec(ctx, `
			INSERT INTO events (id, title, description, admin_id, created_at)
			VALUES ($1, $2, $3, $4, $5)
		`, event.ID, event.Title, event.Description, event.AdminID, event.CreatedAt); err != nil {
			return err
		}
		for _, input := range slots {
			slot := model.NewTimeSlot(event.ID, input.StartsAt, input.EndsAt)
			if _, err := tx.Exec(ctx, `
				INSERT INTO time_slots (id, event_id, starts_at, ends_at)
				VALUES ($1, $2, $3, $4)
			`, slot.ID, slot.EventID, slot.StartsAt, slot.EndsAt); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return "", storage(err)
	}
	return event.ID, nil
}

// DeletePoll removes the event and, through the cascade rules, its slots,
// participants, and votes. Existence and ownership are distinct failures:
// a foreign event reports Forbidden, a missing one NotFound.
func (s *Store) DeletePoll(ctx context.Context, adminID, eventID string) error {
	var ownerID string
	row := s.db.Pool.QueryRow(ctx, `SELECT admin_id FROM events WHERE id = $1`, eventID)
	if err := row.Scan(&ownerID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.New(apperr.KindNotFound, "event_not_found")
		}
		return storage(err)
	}
	if ownerID != adminID {
		return apperr.New(apperr.KindForbidden, "not_owner")
	}

	tag, err := s.db.Pool.Exec(ctx, `DELETE FROM events WHERE id = $1 AND admin_id = $2`, eventID, adminID)
	if err != nil {
		return storage(err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.New(apperr.KindNotFound, "event_not_found")
	}
	return nil
}

// ListPolls returns the admin's events, newest first.
func (s *Store) ListPolls(ctx context.Context, adminID string) ([]model.Event, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT id, title, description, admin_id, created_at
		FROM events
		WHERE admin_id = $1
		ORDER BY created_at DESC, id
	`, adminID)
	if err != nil {
		return nil, storage(err)
	}
	defer rows.Close()

	events := []model.Event{}
	for rows.Next() {
		var event model.Event
		if err := rows.Scan(&event.ID, &event.Title, &event.Description, &event.AdminID, &event.CreatedAt); err != nil {
			return nil, storage(err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, storage(err)
	}
	return events, nil
}
