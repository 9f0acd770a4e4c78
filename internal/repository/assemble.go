package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"slotpoll/internal/apperr"
	"slotpoll/internal/model"
)

// GetPoll materializes the read-model for one event: the header, every
// slot with its availability tally (zero-vote slots included), and every
// participant with their ballot. Performs no writes; safe to run
// concurrently with ledger transactions, which stay invisible until they
// commit.
func (s *Store) GetPoll(ctx context.Context, eventID string) (model.PollDetail, error) {
	var event model.Event
	row := s.db.Pool.QueryRow(ctx, `
		SELECT id, title, description, admin_id, created_at
		FROM events
		WHERE id = $1
	`, eventID)
	if err := row.Scan(&event.ID, &event.Title, &event.Description, &event.AdminID, &event.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.PollDetail{}, apperr.New(apperr.KindNotFound, "event_not_found")
		}
		return model.PollDetail{}, storage(err)
	}

	slots, err := s.slotTallies(ctx, eventID)
	if err != nil {
		return model.PollDetail{}, err
	}
	participants, err := s.eventParticipants(ctx, eventID)
	if err != nil {
		return model.PollDetail{}, err
	}
	votes, err := s.eventVotes(ctx, eventID)
	if err != nil {
		return model.PollDetail{}, err
	}

	return assemblePoll(event, slots, participants, votes), nil
}

// slotTallies returns the event's slots ordered by start time, each with
// the number of available votes. Left join keeps zero-vote slots at 0.
func (s *Store) slotTallies(ctx context.Context, eventID string) ([]model.SlotTally, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT ts.id, ts.event_id, ts.starts_at, ts.ends_at,
		       COUNT(*) FILTER (WHERE v.available) AS available_count
		FROM time_slots ts
		LEFT JOIN votes v ON v.time_slot_id = ts.id
		WHERE ts.event_id = $1
		GROUP BY ts.id
		ORDER BY ts.starts_at ASC, ts.id
	`, eventID)
	if err != nil {
		return nil, storage(err)
	}
	defer rows.Close()

	slots := []model.SlotTally{}
	for rows.Next() {
		var slot model.SlotTally
		if err := rows.Scan(&slot.ID, &slot.EventID, &slot.StartsAt, &slot.EndsAt, &slot.AvailableCount); err != nil {
			return nil, storage(err)
		}
		slots = append(slots, slot)
	}
	if err := rows.Err(); err != nil {
		return nil, storage(err)
	}
	return slots, nil
}

func (s *Store) eventParticipants(ctx context.Context, eventID string) ([]model.Participant, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT id, event_id, name, created_at
		FROM participants
		WHERE event_id = $1
		ORDER BY created_at ASC, id
	`, eventID)
	if err != nil {
		return nil, storage(err)
	}
	defer rows.Close()

	participants := []model.Participant{}
	for rows.Next() {
		var participant model.Participant
		if err := rows.Scan(&participant.ID, &participant.EventID, &participant.Name, &participant.CreatedAt); err != nil {
			return nil, storage(err)
		}
		participants = append(participants, participant)
	}
	if err := rows.Err(); err != nil {
		return nil, storage(err)
	}
	return participants, nil
}

func (s *Store) eventVotes(ctx context.Context, eventID string) ([]model.Vote, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT v.participant_id, v.time_slot_id, v.available
		FROM votes v
		JOIN time_slots ts ON ts.id = v.time_slot_id
		WHERE ts.event_id = $1
	`, eventID)
	if err != nil {
		return nil, storage(err)
	}
	defer rows.Close()

	votes := []model.Vote{}
	for rows.Next() {
		var vote model.Vote
		if err := rows.Scan(&vote.ParticipantID, &vote.TimeSlotID, &vote.Available); err != nil {
			return nil, storage(err)
		}
		votes = append(votes, vote)
	}
	if err := rows.Err(); err != nil {
		return nil, storage(err)
	}
	return votes, nil
}

// assemblePoll joins the three reads into one PollDetail. Slot and
// participant order is preserved; each participant's ballot carries their
// votes in no particular order.
func assemblePoll(event model.Event, slots []model.SlotTally, participants []model.Participant, votes []model.Vote) model.PollDetail {
	byParticipant := map[string][]model.VoteInput{}
	for _, vote := range votes {
		byParticipant[vote.ParticipantID] = append(byParticipant[vote.ParticipantID], model.VoteInput{
			TimeSlotID: vote.TimeSlotID,
			Available:  vote.Available,
		})
	}

	ballots := make([]model.ParticipantBallot, 0, len(participants))
	for _, participant := range participants {
		ballot := model.ParticipantBallot{Participant: participant}
		if entries, ok := byParticipant[participant.ID]; ok {
			ballot.Votes = entries
		} else {
			ballot.Votes = []model.VoteInput{}
		}
		ballots = append(ballots, ballot)
	}

	return model.PollDetail{
		Event:        event,
		TimeSlots:    slots,
		Participants: ballots,
	}
}
