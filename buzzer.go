package main

import (
	"time"
)

// QuestionPayload identifies the question a buzzer round is open for.
type QuestionPayload struct {
	Category string `json:"category"`
	Points   int    `json:"points"`
}

// BuzzEntry is one accepted buzz. Name and Timestamp are snapshots taken when
// the coordinator accepted the buzz; ordering is by position in the race, not
// by comparing timestamps.
type BuzzEntry struct {
	PlayerID  string `json:"playerId"`
	Name      string `json:"name"`
	Timestamp int64  `json:"timestamp"` // unix milliseconds
}

// BuzzerRace tracks the arrival order for the current question round. The
// first entry is the winner; later entries give the quizmaster the "others who
// buzzed" ordering. Owned and serialized by the Hub, like the Registry.
type BuzzerRace struct {
	entries  []BuzzEntry
	locked   bool
	question *QuestionPayload
}

func newBuzzerRace() *BuzzerRace {
	return &BuzzerRace{}
}

// Activate opens a round for the given question, clearing any previous
// entries. Activating twice in a row simply resets the round again.
func (race *BuzzerRace) Activate(question *QuestionPayload) {
	race.entries = nil
	race.locked = false
	race.question = question
}

// Reset closes the round and clears all entries.
func (race *BuzzerRace) Reset() {
	race.entries = nil
	race.locked = false
	race.question = nil
}

// RecordBuzz appends a buzz for playerID unless that player already buzzed
// this round. The locked flag flips once a winner exists, but it never gates
// acceptance: every non-duplicate player still lands in the secondary order
// the quizmaster sees.
func (race *BuzzerRace) RecordBuzz(playerID, name string) (BuzzEntry, bool) {
	for _, e := range race.entries {
		if e.PlayerID == playerID {
			return BuzzEntry{}, false
		}
	}

	entry := BuzzEntry{
		PlayerID:  playerID,
		Name:      name,
		Timestamp: time.Now().UnixMilli(),
	}
	race.entries = append(race.entries, entry)
	race.locked = true
	return entry, true
}

// Entries returns a copy of the arrival order, winner first.
func (race *BuzzerRace) Entries() []BuzzEntry {
	entries := make([]BuzzEntry, len(race.entries))
	copy(entries, race.entries)
	return entries
}

// Locked reports whether a winner has already buzzed in this round.
func (race *BuzzerRace) Locked() bool {
	return race.locked
}

// ActiveQuestion returns the currently open question, or nil between rounds.
func (race *BuzzerRace) ActiveQuestion() *QuestionPayload {
	return race.question
}
