package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *Config {
	return &Config{wsIdleTimeout: time.Minute}
}

func newTestClient(sessionID string) *Client {
	return &Client{
		send:      make(chan any, 32),
		sessionID: sessionID,
	}
}

// drain empties a client's send buffer without blocking.
func drain(c *Client) []any {
	var msgs []any
	for {
		select {
		case msg := <-c.send:
			msgs = append(msgs, msg)
		default:
			return msgs
		}
	}
}

// recv waits for the next message on a client's send channel.
func recv(t *testing.T, c *Client) any {
	t.Helper()
	select {
	case msg := <-c.send:
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
		return nil
	}
}

func connect(h *Hub, c *Client) {
	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()
}

func TestJoinNewPlayer(t *testing.T) {
	cfg := testConfig()
	h := newHub()
	c := newTestClient("sess-1")
	connect(h, c)

	h.handleJoin(cfg, c, ClientMessage{Type: "join", Name: "Alice", PlayerID: "p1"})

	msgs := drain(c)
	require.Len(t, msgs, 2)

	success, ok := msgs[0].(IdentityMessage)
	require.True(t, ok)
	assert.Equal(t, "join-success", success.Type)
	assert.Equal(t, "Alice", success.Player.Name)
	assert.Equal(t, 0, success.Player.Score)

	update, ok := msgs[1].(PlayersUpdateMessage)
	require.True(t, ok)
	require.Len(t, update.Players, 1)
	assert.Equal(t, "p1", update.Players[0].PlayerID)
}

func TestJoinWithoutPlayerIDFallsBackToSession(t *testing.T) {
	cfg := testConfig()
	h := newHub()
	c := newTestClient("sess-1")
	connect(h, c)

	h.handleJoin(cfg, c, ClientMessage{Type: "join", Name: "Alice"})

	player := h.registry.FindBySessionID("sess-1")
	require.NotNil(t, player)
	assert.Equal(t, "sess-1", player.PlayerID)
}

func TestRejoinPreservesScore(t *testing.T) {
	cfg := testConfig()
	h := newHub()

	c1 := newTestClient("sess-1")
	connect(h, c1)
	h.handleJoin(cfg, c1, ClientMessage{Type: "join", Name: "Alice", PlayerID: "p1"})
	h.handleScore(cfg, ClientMessage{Type: "update-score", PlayerID: "p1", Points: 40})
	drain(c1)

	// Phone drops; identity sticks around.
	h.handleDisconnect(cfg, c1)

	c2 := newTestClient("sess-2")
	connect(h, c2)
	h.handleJoin(cfg, c2, ClientMessage{Type: "join", Name: "Alice", PlayerID: "p1"})

	msgs := drain(c2)
	require.Len(t, msgs, 3)

	rejoin, ok := msgs[0].(IdentityMessage)
	require.True(t, ok)
	assert.Equal(t, "rejoin-success", rejoin.Type)
	assert.Equal(t, 40, rejoin.Player.Score)

	presence, ok := msgs[1].(PresenceMessage)
	require.True(t, ok)
	assert.Equal(t, "player-rejoined", presence.Type)
	assert.Equal(t, 40, presence.Score)

	update, ok := msgs[2].(PlayersUpdateMessage)
	require.True(t, ok)
	require.Len(t, update.Players, 1)
	assert.Equal(t, 40, update.Players[0].Score)
}

func TestBuzzFromUnboundSessionIsDropped(t *testing.T) {
	cfg := testConfig()
	h := newHub()
	c := newTestClient("sess-1")
	connect(h, c)

	h.handleBuzz(cfg, c)

	assert.Empty(t, drain(c))
	assert.Empty(t, h.race.Entries())
}

func TestDuplicateBuzzProducesNoBroadcast(t *testing.T) {
	cfg := testConfig()
	h := newHub()
	c := newTestClient("sess-1")
	connect(h, c)
	h.handleJoin(cfg, c, ClientMessage{Type: "join", Name: "Alice", PlayerID: "p1"})
	h.handleActivate(cfg, &QuestionPayload{Category: "History", Points: 20})
	drain(c)

	h.handleBuzz(cfg, c)
	first := drain(c)
	require.Len(t, first, 1)
	buzz, ok := first[0].(BuzzReceivedMessage)
	require.True(t, ok)
	assert.Equal(t, "buzz-received", buzz.Type)
	assert.Equal(t, "p1", buzz.PlayerID)

	// Second buzz before any reset: no mutation, no broadcast.
	h.handleBuzz(cfg, c)
	assert.Empty(t, drain(c))
	assert.Len(t, h.race.Entries(), 1)
}

func TestScoreUpdateUnknownPlayerNoBroadcast(t *testing.T) {
	cfg := testConfig()
	h := newHub()
	c := newTestClient("sess-1")
	connect(h, c)
	h.handleJoin(cfg, c, ClientMessage{Type: "join", Name: "Alice", PlayerID: "p1"})
	drain(c)

	h.handleScore(cfg, ClientMessage{Type: "update-score", PlayerID: "ghost", Points: 10})

	assert.Empty(t, drain(c))
	assert.Nil(t, h.registry.FindByPlayerID("ghost"))
}

func TestGameResetIsTotal(t *testing.T) {
	cfg := testConfig()
	h := newHub()
	c := newTestClient("sess-1")
	connect(h, c)
	h.handleJoin(cfg, c, ClientMessage{Type: "join", Name: "Alice", PlayerID: "p1"})
	h.handleScore(cfg, ClientMessage{Type: "update-score", PlayerID: "p1", Points: 50})
	h.handleActivate(cfg, &QuestionPayload{Category: "History", Points: 20})
	h.handleBuzz(cfg, c)
	drain(c)

	h.handleGameReset(cfg)

	msgs := drain(c)
	require.Len(t, msgs, 2)
	reset, ok := msgs[0].(SignalMessage)
	require.True(t, ok)
	assert.Equal(t, "game-reset", reset.Type)
	update, ok := msgs[1].(PlayersUpdateMessage)
	require.True(t, ok)
	assert.Empty(t, update.Players)

	assert.Empty(t, h.registry.ListDeduplicated())
	assert.Empty(t, h.race.Entries())
	assert.Nil(t, h.race.ActiveQuestion())
}

func TestDisconnectRetainsIdentity(t *testing.T) {
	cfg := testConfig()
	h := newHub()

	c1 := newTestClient("sess-1")
	c2 := newTestClient("sess-2")
	connect(h, c1)
	connect(h, c2)
	h.handleJoin(cfg, c1, ClientMessage{Type: "join", Name: "Alice", PlayerID: "p1"})
	h.handleScore(cfg, ClientMessage{Type: "update-score", PlayerID: "p1", Points: 20})
	drain(c1)
	drain(c2)

	h.handleDisconnect(cfg, c1)

	msgs := drain(c2)
	require.Len(t, msgs, 1)
	left, ok := msgs[0].(PresenceMessage)
	require.True(t, ok)
	assert.Equal(t, "player-left", left.Type)
	assert.Equal(t, "Alice", left.Name)
	assert.Equal(t, 20, left.Score)

	// The identity is retained for reconnection.
	player := h.registry.FindByPlayerID("p1")
	require.NotNil(t, player)
	assert.Equal(t, 20, player.Score)
}

func TestDisconnectUnboundSessionIsSilent(t *testing.T) {
	cfg := testConfig()
	h := newHub()

	c1 := newTestClient("sess-1")
	c2 := newTestClient("sess-2")
	connect(h, c1)
	connect(h, c2)

	h.handleDisconnect(cfg, c1)

	assert.Empty(t, drain(c2))
}

func TestDispatchDropsUnknownTypes(t *testing.T) {
	cfg := testConfig()
	h := newHub()
	c := newTestClient("sess-1")
	connect(h, c)

	h.dispatch(cfg, command{client: c, msg: ClientMessage{Type: "launch-missiles"}})

	assert.Empty(t, drain(c))
}

func TestDispatchRecoversFromPanics(t *testing.T) {
	cfg := testConfig()
	h := newHub()

	// A nil client panics inside the handler; the coordinator must survive.
	assert.NotPanics(t, func() {
		h.dispatch(cfg, command{client: nil, msg: ClientMessage{Type: "buzz"}})
	})

	// And it still works afterwards.
	c := newTestClient("sess-1")
	connect(h, c)
	h.handleJoin(cfg, c, ClientMessage{Type: "join", Name: "Alice", PlayerID: "p1"})
	assert.NotEmpty(t, drain(c))
}

// TestFullGameFlow runs a two-player game through the hub's channels, the way
// real connections do.
func TestFullGameFlow(t *testing.T) {
	cfg := testConfig()
	h := newHub()
	go h.run(cfg)

	alice := newTestClient("sess-a")
	bob := newTestClient("sess-b")
	h.register <- alice
	h.register <- bob

	h.commands <- command{client: alice, msg: ClientMessage{Type: "join", Name: "Alice", PlayerID: "p1"}}
	success := recv(t, alice).(IdentityMessage)
	assert.Equal(t, "join-success", success.Type)
	assert.Equal(t, 0, success.Player.Score)
	recv(t, alice) // players-update
	recv(t, bob)   // players-update

	h.commands <- command{client: bob, msg: ClientMessage{Type: "join", Name: "Bob", PlayerID: "p2"}}
	success = recv(t, bob).(IdentityMessage)
	assert.Equal(t, "join-success", success.Type)
	recv(t, alice)
	recv(t, bob)

	h.commands <- command{client: alice, msg: ClientMessage{Type: "activate-buzzer", Question: &QuestionPayload{Category: "X", Points: 10}}}
	active := recv(t, alice).(BuzzerActiveMessage)
	assert.Equal(t, "X", active.Question.Category)
	recv(t, bob)

	h.commands <- command{client: alice, msg: ClientMessage{Type: "buzz"}}
	h.commands <- command{client: bob, msg: ClientMessage{Type: "buzz"}}
	firstBuzz := recv(t, alice).(BuzzReceivedMessage)
	secondBuzz := recv(t, alice).(BuzzReceivedMessage)
	assert.Equal(t, "p1", firstBuzz.PlayerID)
	assert.Equal(t, "p2", secondBuzz.PlayerID)
	recv(t, bob)
	recv(t, bob)

	h.commands <- command{client: alice, msg: ClientMessage{Type: "update-score", PlayerID: "p1", Points: 10}}
	update := recv(t, alice).(PlayersUpdateMessage)
	require.Len(t, update.Players, 2)
	assert.Equal(t, 10, update.Players[0].Score)
	assert.Equal(t, 0, update.Players[1].Score)
	recv(t, bob)

	h.commands <- command{client: alice, msg: ClientMessage{Type: "reset-buzzer"}}
	reset := recv(t, alice).(SignalMessage)
	assert.Equal(t, "buzzer-reset", reset.Type)
	recv(t, bob)

	h.commands <- command{client: bob, msg: ClientMessage{Type: "get-players"}}
	update = recv(t, bob).(PlayersUpdateMessage)
	require.Len(t, update.Players, 2)
	assert.Equal(t, "Alice", update.Players[0].Name)
	assert.Equal(t, 10, update.Players[0].Score)
	assert.Equal(t, "Bob", update.Players[1].Name)
	assert.Empty(t, drain(alice))

	h.mu.RLock()
	entries := h.race.Entries()
	h.mu.RUnlock()
	assert.Empty(t, entries)
}
