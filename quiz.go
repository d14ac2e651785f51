// Kvizzing buzzer game
//
// A quizmaster opens questions from a board; players race to buzz in from
// their phones. The server is the single authority for who is connected, what
// everyone's score is, and the exact order buzzes arrived in.
//
// Features:
// - One shared game per server process, over /quiz/ws
// - Players identified by a client-generated id kept in localStorage, so a
//   dropped phone connection rejoins with name and score intact
// - Buzz arrival order is hub processing order; one buzz per player per round
// - Later buzzes still land in a secondary order shown to the quizmaster
// - Score awards and deductions per question, no floor
// - In-browser QR code to get players onto the join page, backed by go-qrcode

package main

import (
	"crypto/rand"
	_ "embed"
	"encoding/hex"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
)

type Client struct {
	conn      *websocket.Conn
	send      chan any
	sessionID string
}

type command struct {
	client *Client
	msg    ClientMessage
}

// Hub owns the registry and the buzzer race. Every mutation happens on the
// run goroutine under mu, so commands never interleave: a buzz race between
// two phones is settled by whichever command the hub drains first.
type Hub struct {
	clients  map[*Client]bool
	registry *Registry
	race     *BuzzerRace

	register chan *Client
	unreg    chan *Client
	commands chan command

	mu sync.RWMutex
}

func newHub() *Hub {
	return &Hub{
		clients:  make(map[*Client]bool),
		registry: newRegistry(),
		race:     newBuzzerRace(),
		register: make(chan *Client),
		unreg:    make(chan *Client),
		commands: make(chan command),
	}
}

func (h *Hub) run(cfg *Config) {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			h.mu.Unlock()

		case c := <-h.unreg:
			h.handleDisconnect(cfg, c)

		case cmd := <-h.commands:
			h.dispatch(cfg, cmd)
		}
	}
}

// dispatch routes one command, isolating panics so a bad message cannot take
// the coordinator down for every other connection.
func (h *Hub) dispatch(cfg *Config, cmd command) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("%s | PANIC: in %q handler: %v", time.Now().Format(logDate), cmd.msg.Type, r)
		}
	}()

	switch cmd.msg.Type {
	case "join":
		h.handleJoin(cfg, cmd.client, cmd.msg)
	case "buzz":
		h.handleBuzz(cfg, cmd.client)
	case "activate-buzzer":
		h.handleActivate(cfg, cmd.msg.Question)
	case "reset-buzzer":
		h.handleReset(cfg)
	case "update-score":
		h.handleScore(cfg, cmd.msg)
	case "get-players":
		h.handleGetPlayers(cmd.client)
	case "reset-game":
		h.handleGameReset(cfg)
	default:
		logf(cfg, "GAME: Dropping unknown message type %q", cmd.msg.Type)
	}
}

// sendLocked queues msg for one client, dropping the client if its send
// buffer is full. Assumes h.mu is held.
func (h *Hub) sendLocked(c *Client, msg any) {
	select {
	case c.send <- msg:
	default:
		delete(h.clients, c)
		close(c.send)
	}
}

// broadcastLocked queues msg for every connected client. Assumes h.mu is held.
func (h *Hub) broadcastLocked(msg any) {
	for client := range h.clients {
		h.sendLocked(client, msg)
	}
}

// handleJoin processes "join" messages. A known playerId is rebound to the
// new session keeping its name and score; an unseen one becomes a new player.
func (h *Hub) handleJoin(cfg *Config, c *Client, msg ClientMessage) {
	playerID := msg.PlayerID
	if playerID == "" {
		playerID = c.sessionID
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	player, rebound := h.registry.UpsertOnJoin(playerID, msg.Name, c.sessionID)

	if rebound {
		h.sendLocked(c, IdentityMessage{Type: "rejoin-success", Player: player})
		h.broadcastLocked(PresenceMessage{
			Type:  "player-rejoined",
			Name:  player.Name,
			Score: player.Score,
		})
		logf(cfg, "GAME: Player %q reconnected with %d points", player.Name, player.Score)
	} else {
		h.sendLocked(c, IdentityMessage{Type: "join-success", Player: player})
		logf(cfg, "GAME: Player %q joined", player.Name)
	}

	h.broadcastLocked(newPlayersUpdate(h.registry.ListDeduplicated()))
}

// handleBuzz records a buzz for whichever player this session belongs to.
// Sessions without an identity, and duplicate buzzes, are dropped without a
// broadcast; the player sees nothing, which matches their already-disabled
// buzzer button.
func (h *Hub) handleBuzz(cfg *Config, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	player := h.registry.FindBySessionID(c.sessionID)
	if player == nil {
		return
	}

	entry, accepted := h.race.RecordBuzz(player.PlayerID, player.Name)
	if !accepted {
		return
	}

	h.broadcastLocked(BuzzReceivedMessage{
		Type:      "buzz-received",
		PlayerID:  entry.PlayerID,
		Name:      entry.Name,
		Timestamp: entry.Timestamp,
	})
	logf(cfg, "GAME: Buzz from %q, position %d", player.Name, len(h.race.Entries()))
}

func (h *Hub) handleActivate(cfg *Config, question *QuestionPayload) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.race.Activate(question)
	h.broadcastLocked(BuzzerActiveMessage{Type: "buzzer-active", Question: question})
	if question != nil {
		logf(cfg, "GAME: Buzzer activated for %q (%d points)", question.Category, question.Points)
	} else {
		logf(cfg, "GAME: Buzzer activated")
	}
}

func (h *Hub) handleReset(cfg *Config) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.race.Reset()
	h.broadcastLocked(SignalMessage{Type: "buzzer-reset"})
	logf(cfg, "GAME: Buzzer reset")
}

// handleScore adjusts a player's score. An unknown playerId is a silent
// no-op: nothing is created and nothing is broadcast.
func (h *Hub) handleScore(cfg *Config, msg ClientMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()

	player := h.registry.AdjustScore(msg.PlayerID, msg.Points)
	if player == nil {
		return
	}

	h.broadcastLocked(newPlayersUpdate(h.registry.ListDeduplicated()))
	logf(cfg, "GAME: Adjusted %q by %d points, now %d", player.Name, msg.Points, player.Score)
}

func (h *Hub) handleGetPlayers(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.sendLocked(c, newPlayersUpdate(h.registry.ListDeduplicated()))
}

func (h *Hub) handleGameReset(cfg *Config) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.registry.ClearAll()
	h.race.Reset()
	h.broadcastLocked(SignalMessage{Type: "game-reset"})
	h.broadcastLocked(newPlayersUpdate(nil))
	logf(cfg, "GAME: Game reset")
}

// handleDisconnect drops the connection but keeps the identity around, so
// the player can pick their score back up by rejoining.
func (h *Hub) handleDisconnect(cfg *Config, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}

	player := h.registry.FindBySessionID(c.sessionID)
	if player == nil {
		return
	}

	h.broadcastLocked(PresenceMessage{
		Type:  "player-left",
		Name:  player.Name,
		Score: player.Score,
	})
	logf(cfg, "GAME: Player %q disconnected with %d points", player.Name, player.Score)
}

// PlayerCount is the only state the HTTP surface reads; everything else
// reaches observers through broadcasts.
func (h *Hub) PlayerCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.registry.Len()
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func newSessionID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		log.Println("rand.Read error:", err)
		return ""
	}
	return hex.EncodeToString(buf)
}

func serveWS(cfg *Config, h *Hub) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		sessionID := newSessionID()
		if sessionID == "" {
			http.Error(w, "unable to assign session id", http.StatusInternalServerError)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println("upgrade error:", err)
			return
		}

		client := &Client{
			conn:      conn,
			send:      make(chan any, 8),
			sessionID: sessionID,
		}

		h.register <- client

		go client.writePump(cfg)
		client.readPump(cfg, h)
	}
}

func (c *Client) readPump(cfg *Config, h *Hub) {
	defer func() {
		h.unreg <- c
		_ = c.conn.Close()
	}()

	_ = c.conn.SetReadDeadline(time.Now().Add(cfg.wsIdleTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(cfg.wsIdleTimeout))
	})

	for {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(cfg.wsIdleTimeout))

		h.commands <- command{
			client: c,
			msg:    msg,
		}
	}
}

func (c *Client) writePump(cfg *Config) {
	ticker := time.NewTicker(cfg.wsIdleTimeout / 2)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// QR handler: generates a PNG QR code for the player join URL using go-qrcode.
func qrHandler(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	// Derive scheme (respecting TLS and X-Forwarded-Proto if present).
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	// We are at .../play/qr; strip the trailing "/qr" to get the join URL.
	path := strings.TrimSuffix(r.URL.Path, "/qr")

	url := scheme + "://" + r.Host + path

	const qrSize = 320 // mobile-friendly size
	png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
	if err != nil {
		http.Error(w, "qr generation failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}

// ---- Static file paths ----

//go:embed quiz/host.html
var hostHTML []byte

//go:embed quiz/play.html
var playHTML []byte

func serveGamePage(cfg *Config, page []byte) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.Header().Set("Expires", time.Now().Add(time.Hour).UTC().Format(http.TimeFormat))
		securityHeaders(cfg, w)

		_, _ = w.Write(page)
	}
}

// registerQuizGame sets up routes so that:
//   - $path/host     → quizmaster board and scoring controls
//   - $path/play     → player buzzer screen
//   - $path/play/qr  → PNG QR code for the player URL
//   - $path/ws       → the shared game websocket
//   - $path/api/rounds → quiz board content as JSON
func registerQuizGame(cfg *Config, path string, mux *httprouter.Router, hub *Hub, errs chan<- error) {
	mux.GET(cfg.prefix+path+"/host", serveGamePage(cfg, hostHTML))
	mux.GET(cfg.prefix+path+"/play", serveGamePage(cfg, playHTML))
	mux.GET(cfg.prefix+path+"/play/qr", qrHandler)
	mux.GET(cfg.prefix+path+"/ws", serveWS(cfg, hub))
	mux.GET(cfg.prefix+path+"/api/rounds", serveRounds(cfg, errs))
}
