package model

import (
	"time"

	"github.com/google/uuid"
)

type Admin struct {
	ID           string
	Name         string
	PasswordHash string
	CreatedAt    time.Time
}

type AdminSession struct {
	ID        string
	AdminID   string
	CreatedAt time.Time
}

type Event struct {
	ID          string
	Title       string
	Description *string
	AdminID     string
	CreatedAt   time.Time
}

type TimeSlot struct {
	ID       string
	EventID  string
	StartsAt time.Time
	EndsAt   time.Time
}

type Participant struct {
	ID        string
	EventID   string
	Name      string
	CreatedAt time.Time
}

// Vote is identified by (ParticipantID, TimeSlotID); at most one row per pair.
type Vote struct {
	ParticipantID string
	TimeSlotID    string
	Available     bool
}

// TimeSlotInput is a candidate slot submitted at poll creation.
type TimeSlotInput struct {
	StartsAt time.Time
	EndsAt   time.Time
}

// VoteInput is one availability entry of a participant's submission.
type VoteInput struct {
	TimeSlotID string
	Available  bool
}

func NewAdmin(name, passwordHash string) Admin {
	return Admin{
		ID:           uuid.NewString(),
		Name:         name,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
}

func NewEvent(adminID, title string, description *string) Event {
	return Event{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
		AdminID:     adminID,
		CreatedAt:   time.Now().UTC(),
	}
}

func NewTimeSlot(eventID string, startsAt, endsAt time.Time) TimeSlot {
	return TimeSlot{
		ID:       uuid.NewString(),
		EventID:  eventID,
		StartsAt: startsAt.UTC(),
		EndsAt:   endsAt.UTC(),
	}
}

func NewParticipant(eventID, name string) Participant {
	return Participant{
		ID:        uuid.NewString(),
		EventID:   eventID,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
}
