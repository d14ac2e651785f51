package main

// Messages coming from clients. Type selects the variant; the other fields
// are only meaningful for the types noted alongside them.
type ClientMessage struct {
	Type     string           `json:"type"`               // "join", "buzz", "activate-buzzer", "reset-buzzer", "update-score", "get-players", "reset-game"
	Name     string           `json:"name,omitempty"`     // join
	PlayerID string           `json:"playerId,omitempty"` // join / update-score
	Points   int              `json:"points,omitempty"`   // update-score
	Question *QuestionPayload `json:"question,omitempty"` // activate-buzzer
}

// IdentityMessage carries a player's identity back to the joining client,
// as "join-success" for a new player or "rejoin-success" for a reconnect.
type IdentityMessage struct {
	Type   string          `json:"type"`
	Player *PlayerIdentity `json:"player"`
}

// PresenceMessage announces a player rejoining or leaving, as
// "player-rejoined" or "player-left".
type PresenceMessage struct {
	Type  string `json:"type"`
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// PlayersUpdateMessage carries the deduplicated roster, in join order.
type PlayersUpdateMessage struct {
	Type    string            `json:"type"` // "players-update"
	Players []*PlayerIdentity `json:"players"`
}

// BuzzReceivedMessage announces an accepted buzz to everyone.
type BuzzReceivedMessage struct {
	Type      string `json:"type"` // "buzz-received"
	PlayerID  string `json:"playerId"`
	Name      string `json:"name"`
	Timestamp int64  `json:"timestamp"`
}

// BuzzerActiveMessage opens a round for the given question on every client.
type BuzzerActiveMessage struct {
	Type     string           `json:"type"` // "buzzer-active"
	Question *QuestionPayload `json:"question"`
}

// SignalMessage is for payload-free broadcasts: "buzzer-reset", "game-reset".
type SignalMessage struct {
	Type string `json:"type"`
}

func newPlayersUpdate(players []*PlayerIdentity) PlayersUpdateMessage {
	if players == nil {
		players = []*PlayerIdentity{}
	}
	return PlayersUpdateMessage{
		Type:    "players-update",
		Players: players,
	}
}
