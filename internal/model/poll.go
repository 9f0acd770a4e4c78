package model

// SlotTally is a time slot with its aggregate availability count.
type SlotTally struct {
	TimeSlot
	AvailableCount int64
}

// ParticipantBallot is a participant with their own vote subset.
type ParticipantBallot struct {
	Participant
	Votes []VoteInput
}

// PollDetail is the full read-model of one event: header, ordered slots
// with tallies, and ordered participants with their ballots.
type PollDetail struct {
	Event
	TimeSlots    []SlotTally
	Participants []ParticipantBallot
}
