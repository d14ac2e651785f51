package main

// PlayerIdentity is the durable record for one player. PlayerID is generated
// client-side and survives reconnects; SessionID tracks whichever websocket
// connection currently speaks for this player.
type PlayerIdentity struct {
	PlayerID  string `json:"playerId"`
	Name      string `json:"name"`
	Score     int    `json:"score"`
	SessionID string `json:"-"`
}

// Registry maps live sessions to player identities. It is keyed by session id,
// but every mutation scans by player id first so a player never appears twice.
// The registry has no locking of its own; the owning Hub serializes all access.
type Registry struct {
	bySession map[string]*PlayerIdentity
	sessions  []string // session ids in bind order; lookups scan this, so the earliest-bound session wins between duplicates
	joined    []string // player ids in first-join order, for stable listings
}

func newRegistry() *Registry {
	return &Registry{
		bySession: make(map[string]*PlayerIdentity),
	}
}

// UpsertOnJoin binds playerID to sessionID. If the player is already known,
// the existing identity is rebound to the new session and returned unchanged;
// the incoming name is ignored so a stale cached name on the client cannot
// clobber the established one. Otherwise a fresh identity starts at score 0.
// The second return reports whether this was a rebind.
func (reg *Registry) UpsertOnJoin(playerID, name, sessionID string) (*PlayerIdentity, bool) {
	if existing := reg.FindByPlayerID(playerID); existing != nil {
		// Drop the stale session key so a disconnect/rejoin cycle
		// cannot leave an orphaned duplicate behind.
		for sid, p := range reg.bySession {
			if p.PlayerID == playerID && sid != sessionID {
				reg.dropSession(sid)
			}
		}
		existing.SessionID = sessionID
		reg.bindSession(sessionID, existing)
		return existing, true
	}

	player := &PlayerIdentity{
		PlayerID:  playerID,
		Name:      name,
		Score:     0,
		SessionID: sessionID,
	}
	reg.bindSession(sessionID, player)
	reg.joined = append(reg.joined, playerID)
	return player, false
}

func (reg *Registry) bindSession(sessionID string, player *PlayerIdentity) {
	if _, rebound := reg.bySession[sessionID]; !rebound {
		reg.sessions = append(reg.sessions, sessionID)
	}
	reg.bySession[sessionID] = player
}

func (reg *Registry) dropSession(sessionID string) {
	delete(reg.bySession, sessionID)
	for i, sid := range reg.sessions {
		if sid == sessionID {
			reg.sessions = append(reg.sessions[:i], reg.sessions[i+1:]...)
			break
		}
	}
}

func (reg *Registry) FindBySessionID(sessionID string) *PlayerIdentity {
	return reg.bySession[sessionID]
}

// FindByPlayerID scans sessions in bind order, so if duplicate entries for a
// player ever coexist, the earliest-bound one is returned consistently.
func (reg *Registry) FindByPlayerID(playerID string) *PlayerIdentity {
	for _, sid := range reg.sessions {
		if p, ok := reg.bySession[sid]; ok && p.PlayerID == playerID {
			return p
		}
	}
	return nil
}

// AdjustScore adds delta (which may be negative) to the player's score.
// Returns nil when no identity has that playerID; nothing is created.
func (reg *Registry) AdjustScore(playerID string, delta int) *PlayerIdentity {
	player := reg.FindByPlayerID(playerID)
	if player == nil {
		return nil
	}
	player.Score += delta
	return player
}

// ListDeduplicated returns one identity per distinct playerID, in first-join
// order. Duplicates resolve the same way FindByPlayerID does: the entry under
// the earliest-bound session wins, and stale ones are hidden.
func (reg *Registry) ListDeduplicated() []*PlayerIdentity {
	players := make([]*PlayerIdentity, 0, len(reg.joined))
	for _, playerID := range reg.joined {
		if p := reg.FindByPlayerID(playerID); p != nil {
			players = append(players, p)
		}
	}
	return players
}

// Len reports the number of distinct players, for the status endpoints.
func (reg *Registry) Len() int {
	return len(reg.ListDeduplicated())
}

// ClearAll removes every identity. Only game-reset calls this; a disconnect
// never does, since identities are retained for reconnection.
func (reg *Registry) ClearAll() {
	reg.bySession = make(map[string]*PlayerIdentity)
	reg.sessions = nil
	reg.joined = nil
}
