package repository

import (
	"context"
	"strings"

	"slotpoll/internal/apperr"
	"slotpoll/internal/db"
	"slotpoll/internal/model"
)

// SubmitVote creates a participant and writes their full vote set in one
// transaction, returning the new participant id. The whole batch is
// validated against the event's slots before any row is written; one bad
// slot id rejects the entire submission.
func (s *Store) SubmitVote(ctx context.Context, eventID, participantName string, votes []model.VoteInput) (string, error) {
	name := strings.TrimSpace(participantName)
	if name == "" {
		return "", apperr.New(apperr.KindValidation, "empty_participant_name")
	}

	exists, err := s.eventExists(ctx, eventID)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", apperr.New(apperr.KindNotFound, "event_not_found")
	}

	if err := s.validateSlotMembership(ctx, eventID, votes); err != nil {
		return "", err
	}

	participant := model.NewParticipant(eventID, name)
	err = s.db.WithTx(ctx, func(tx db.DBTX) error {
		if _, err := tx.Exec(ctx, `
			INSERT INTO participants (id, event_id, name, created_at)
			VALUES ($1, $2, $3, $4)
		`, participant.ID, participant.EventID, participant.Name, participant.CreatedAt); err != nil {
			return err
		}
		// Upsert keyed on (participant_id, time_slot_id): a duplicate
		// resubmission under the same participant id overwrites instead
		// of erroring.
		for _, vote := range votes {
			if _, err := tx.Exec(ctx, `
				INSERT INTO votes (participant_id, time_slot_id, available)
				VALUES ($1, $2, $3)
				ON CONFLICT (participant_id, time_slot_id)
				DO UPDATE SET available = EXCLUDED.available
			`, participant.ID, vote.TimeSlotID, vote.Available); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return "", storage(err)
	}
	return participant.ID, nil
}

// ReplaceVotes swaps a participant's entire vote set for the given one in
// one transaction: a slot omitted from votes loses its prior vote. Returns
// the participant id unchanged.
func (s *Store) ReplaceVotes(ctx context.Context, eventID, participantID string, votes []model.VoteInput) (string, error) {
	if len(votes) == 0 {
		return "", apperr.New(apperr.KindValidation, "no_votes")
	}

	var exists bool
	row := s.db.Pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM participants WHERE id = $1 AND event_id = $2)
	`, participantID, eventID)
	if err := row.Scan(&exists); err != nil {
		return "", storage(err)
	}
	if !exists {
		return "", apperr.New(apperr.KindNotFound, "participant_not_found")
	}

	if err := s.validateSlotMembership(ctx, eventID, votes); err != nil {
		return "", err
	}

	err := s.db.WithTx(ctx, func(tx db.DBTX) error {
		if _, err := tx.Exec(ctx, `
			DELETE FROM votes
			WHERE participant_id = $1
			  AND time_slot_id IN (SELECT id FROM time_slots WHERE event_id = $2)
		`, participantID, eventID); err != nil {
			return err
		}
		for _, vote := range votes {
			if _, err := tx.Exec(ctx, `
				INSERT INTO votes (participant_id, time_slot_id, available)
				VALUES ($1, $2, $3)
			`, participantID, vote.TimeSlotID, vote.Available); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return "", storage(err)
	}
	return participantID, nil
}

func (s *Store) eventExists(ctx context.Context, eventID string) (bool, error) {
	var exists bool
	row := s.db.Pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM events WHERE id = $1)`, eventID)
	if err := row.Scan(&exists); err != nil {
		return false, storage(err)
	}
	return exists, nil
}

// validateSlotMembership checks every vote's slot against the event's own
// slots before any write begins.
func (s *Store) validateSlotMembership(ctx context.Context, eventID string, votes []model.VoteInput) error {
	if len(votes) == 0 {
		return nil
	}
	rows, err := s.db.Pool.Query(ctx, `SELECT id FROM time_slots WHERE event_id = $1`, eventID)
	if err != nil {
		return storage(err)
	}
	defer rows.Close()

	slotIDs := map[string]struct{}{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return storage(err)
		}
		slotIDs[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return storage(err)
	}

	for _, vote := range votes {
		if _, ok := slotIDs[vote.TimeSlotID]; !ok {
			return apperr.New(apperr.KindValidation, "slot_not_in_event")
		}
	}
	return nil
}
