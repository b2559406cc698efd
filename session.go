/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Shared guessing sessions
//
// Every session lives under $prefix/guess/:gameid and holds one game at a
// time. All players connected to a session guess against the same answer
// and see every guess as it is made.
//
// Features:
// - WebSockets per game ID: /guess/:gameid and /guess/:gameid/ws
// - First connection to a session becomes its host
// - Only the host can surrender or restart with new settings
// - Players identified by cookie (playerID) and keep their name on reconnect
// - Optional per-guess time limit; an expired turn costs one attempt
// - Sessions auto-reaped after configurable idle timeout
// - Random 8-char game IDs via crypto/rand, with server-side collision check
// - In-browser QR button to share the current session, backed by go-qrcode

package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Seednode/guessr/feedback"
	"github.com/Seednode/guessr/game"
	"github.com/Seednode/guessr/profile"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
)

const (
	playerCookieName = "guessr_id"
	maxUsernameLen   = 32
	maxGameIDLen     = 32
)

// Player holds the data we store server-side
type Player struct {
	PlayerID string
	Username string
}

// Messages coming from clients
type ClientMessage struct {
	Type     string             `json:"type"`               // "join", "guess", "surrender", "restart"
	Username string             `json:"username,omitempty"` // join
	Name     string             `json:"name,omitempty"`     // guess
	Settings *feedback.Settings `json:"settings,omitempty"` // restart
}

// SimpleMessage is for errors shown only to the offending client.
type SimpleMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// SessionInfoMessage is sent immediately on connect so the client knows
// what role this cookie has and which traits are compared.
type SessionInfoMessage struct {
	Type       string                 `json:"type"` // "session_info"
	GameID     string                 `json:"game_id"`
	IsExisting bool                   `json:"is_existing"`
	IsHost     bool                   `json:"is_host"`
	Username   string                 `json:"username,omitempty"`
	Attributes []profile.AttributeDef `json:"attributes"`
}

type PlayerState struct {
	Username string `json:"username"`
	Online   bool   `json:"online"`
	Host     bool   `json:"host,omitempty"`
}

// GameStateMessage carries everything a client needs to redraw the board.
type GameStateMessage struct {
	Type     string             `json:"type"` // "game_state"
	State    game.State         `json:"state"`
	History  []game.GuessRecord `json:"history"`
	Players  []PlayerState      `json:"players"`
	Deadline *time.Time         `json:"deadline,omitempty"`
}

// GuessResultMessage informs everyone about a guess outcome.
type GuessResultMessage struct {
	Type    string           `json:"type"` // "guess_result"
	Guess   game.GuessRecord `json:"guess"`
	Message string           `json:"message"`
}

type Client struct {
	conn     *websocket.Conn
	send     chan any
	playerID string
}

type clientRequest struct {
	client *Client
	msg    ClientMessage
}

type Hub struct {
	id string
	gm *GameManager

	clients map[*Client]bool
	players []Player

	register chan *Client
	unreg    chan *Client
	joins    chan clientRequest
	guesses  chan clientRequest
	hostCmds chan clientRequest
	timeouts chan int
	done     chan struct{}
	once     sync.Once

	mu sync.RWMutex

	createdAt    time.Time
	lastActive   time.Time
	hostPlayerID string

	game     *game.Game
	timer    *time.Timer
	turn     int
	deadline time.Time
}

func newHub(gm *GameManager, gameID string, g *game.Game) *Hub {
	now := time.Now()
	return &Hub{
		id:         gameID,
		gm:         gm,
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unreg:      make(chan *Client),
		joins:      make(chan clientRequest),
		guesses:    make(chan clientRequest),
		hostCmds:   make(chan clientRequest),
		timeouts:   make(chan int),
		done:       make(chan struct{}),
		createdAt:  now,
		lastActive: now,
		game:       g,
	}
}

func (h *Hub) run(cfg *Config) {
	for {
		select {
		case <-h.done:
			return

		case c := <-h.register:
			h.handleRegister(c)

		case c := <-h.unreg:
			h.mu.Lock()
			h.lastActive = time.Now()

			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			h.broadcastGameStateLocked()
			h.mu.Unlock()

		case jr := <-h.joins:
			h.handleJoin(cfg, jr)

		case gr := <-h.guesses:
			h.handleGuess(cfg, gr)

		case cmd := <-h.hostCmds:
			h.handleHostCommand(cfg, cmd)

		case turn := <-h.timeouts:
			h.handleTimeout(cfg, turn)
		}
	}
}

// submit hands a request to the hub loop, giving up once the hub is closed.
func submit[T any](h *Hub, ch chan T, v T) bool {
	select {
	case ch <- v:
		return true
	case <-h.done:
		return false
	}
}

// sendLocked queues msg for c, dropping the client if it cannot keep up.
func (h *Hub) sendLocked(c *Client, msg any) {
	if _, ok := h.clients[c]; !ok {
		return
	}

	select {
	case c.send <- msg:
	default:
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *Hub) broadcastLocked(msg any) {
	for c := range h.clients {
		h.sendLocked(c, msg)
	}
}

func (h *Hub) playerLocked(playerID string) (*Player, bool) {
	for i := range h.players {
		if h.players[i].PlayerID == playerID {
			return &h.players[i], true
		}
	}

	return nil, false
}

func (h *Hub) playerStatesLocked() []PlayerState {
	online := make(map[string]bool, len(h.clients))
	for c := range h.clients {
		online[c.playerID] = true
	}

	out := make([]PlayerState, 0, len(h.players))
	for _, p := range h.players {
		out = append(out, PlayerState{
			Username: p.Username,
			Online:   online[p.PlayerID],
			Host:     p.PlayerID == h.hostPlayerID,
		})
	}

	return out
}

func (h *Hub) gameStateLocked() GameStateMessage {
	msg := GameStateMessage{
		Type:    "game_state",
		State:   h.game.State(),
		History: h.game.History(),
		Players: h.playerStatesLocked(),
	}
	if !h.deadline.IsZero() && !h.game.Over() {
		d := h.deadline
		msg.Deadline = &d
	}

	return msg
}

func (h *Hub) broadcastGameStateLocked() {
	h.broadcastLocked(h.gameStateLocked())
}

// armTimerLocked starts the clock for the next guess. Any pending timeout
// from an earlier turn is ignored once the turn counter moves on.
func (h *Hub) armTimerLocked() {
	if h.timer != nil {
		h.timer.Stop()
	}
	h.turn++
	h.deadline = time.Time{}

	limit := h.gm.cfg.timeLimit
	if limit <= 0 || h.game.Over() {
		return
	}

	turn := h.turn
	h.deadline = time.Now().Add(limit)
	h.timer = time.AfterFunc(limit, func() {
		submit(h, h.timeouts, turn)
	})
}

func (h *Hub) handleRegister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.lastActive = time.Now()

	// First connection becomes host
	if h.hostPlayerID == "" {
		h.hostPlayerID = c.playerID
	}

	h.clients[c] = true

	p, isExisting := h.playerLocked(c.playerID)
	info := SessionInfoMessage{
		Type:       "session_info",
		GameID:     h.id,
		IsExisting: isExisting,
		IsHost:     c.playerID == h.hostPlayerID,
		Attributes: h.gm.e.schema.Attributes,
	}
	if isExisting {
		info.Username = p.Username
	}

	h.sendLocked(c, info)
	h.broadcastGameStateLocked()
}

// handleJoin processes "join" messages.
func (h *Hub) handleJoin(cfg *Config, jr clientRequest) {
	c := jr.client
	username := strings.TrimSpace(jr.msg.Username)

	h.mu.Lock()
	defer h.mu.Unlock()

	h.lastActive = time.Now()

	switch {
	case username == "":
		h.sendLocked(c, SimpleMessage{Type: "error", Message: "Please choose a username."})

		return
	case len([]rune(username)) > maxUsernameLen:
		h.sendLocked(c, SimpleMessage{Type: "error", Message: fmt.Sprintf("Usernames are limited to %d characters.", maxUsernameLen)})

		return
	}

	for _, p := range h.players {
		if p.PlayerID != c.playerID && p.Username == username {
			h.sendLocked(c, SimpleMessage{Type: "error", Message: "That username is already taken. Please choose a different username."})

			return
		}
	}

	if p, ok := h.playerLocked(c.playerID); ok {
		p.Username = username
	} else {
		h.players = append(h.players, Player{
			PlayerID: c.playerID,
			Username: username,
		})
		logf(cfg, "GAMES: Player %q joined %s", username, h.id)
	}

	if h.timer == nil {
		h.armTimerLocked()
	}

	h.sendLocked(c, SessionInfoMessage{
		Type:       "session_info",
		GameID:     h.id,
		IsExisting: true,
		IsHost:     c.playerID == h.hostPlayerID,
		Username:   username,
		Attributes: h.gm.e.schema.Attributes,
	})
	h.broadcastGameStateLocked()
}

func guessErrorText(err error, name string) string {
	switch {
	case errors.Is(err, game.ErrUnknownCharacter):
		return fmt.Sprintf("No character is called %q.", name)
	case errors.Is(err, game.ErrAlreadyGuessed):
		return fmt.Sprintf("%q has already been guessed.", name)
	case errors.Is(err, game.ErrGameOver):
		return "This game is over. Ask the host to start another."
	default:
		return err.Error()
	}
}

// handleGuess processes a player's guess against the shared answer.
func (h *Hub) handleGuess(cfg *Config, gr clientRequest) {
	c := gr.client
	name := strings.TrimSpace(gr.msg.Name)

	h.mu.Lock()
	defer h.mu.Unlock()

	h.lastActive = time.Now()

	p, ok := h.playerLocked(c.playerID)
	if !ok {
		h.sendLocked(c, SimpleMessage{Type: "error", Message: "Join the game before guessing."})

		return
	}
	if name == "" {
		return
	}

	rec, err := h.game.GuessBy(p.Username, name)
	if err != nil {
		h.sendLocked(c, SimpleMessage{Type: "error", Message: guessErrorText(err, name)})

		return
	}

	text := p.Username + " guessed " + rec.Name + "."
	if rec.Correct {
		text = p.Username + " found the answer: " + rec.Name + "!"
	}
	logf(cfg, "GAMES: %q guessed %q in %s (correct: %t)", p.Username, rec.Name, h.id, rec.Correct)

	h.broadcastLocked(GuessResultMessage{
		Type:    "guess_result",
		Guess:   rec,
		Message: text,
	})

	h.armTimerLocked()
	h.broadcastGameStateLocked()
}

func (h *Hub) handleTimeout(cfg *Config, turn int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if turn != h.turn {
		return
	}

	if err := h.game.TimeUp(); err != nil {
		return
	}
	logf(cfg, "GAMES: Time ran out in %s", h.id)

	h.armTimerLocked()
	h.broadcastGameStateLocked()
}

// handleHostCommand processes host-only commands: surrender and restart.
func (h *Hub) handleHostCommand(cfg *Config, cmd clientRequest) {
	c := cmd.client
	msg := cmd.msg

	h.mu.Lock()
	defer h.mu.Unlock()

	h.lastActive = time.Now()

	if h.hostPlayerID == "" || c.playerID != h.hostPlayerID {
		h.sendLocked(c, SimpleMessage{Type: "error", Message: "Only the host can do that."})

		return
	}

	switch msg.Type {
	case "surrender":
		if err := h.game.Surrender(); err != nil {
			h.sendLocked(c, SimpleMessage{Type: "error", Message: guessErrorText(err, "")})

			return
		}
		logf(cfg, "GAMES: Host surrendered %s", h.id)

	case "restart":
		s := h.game.Settings()
		if msg.Settings != nil {
			s = *msg.Settings
		}

		g, err := h.gm.nextGame(s)
		if err != nil {
			h.sendLocked(c, SimpleMessage{Type: "error", Message: err.Error()})

			return
		}
		h.game = g
		logf(cfg, "GAMES: Host restarted %s", h.id)
	}

	h.armTimerLocked()
	h.broadcastGameStateLocked()
}

// closeAll disconnects all clients of this hub and stops its loop.
func (h *Hub) closeAll() {
	h.once.Do(func() { close(h.done) })

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.timer != nil {
		h.timer.Stop()
	}

	for c := range h.clients {
		close(c.send)
		_ = c.conn.Close()
		delete(h.clients, c)
	}
}

var upgrader = websocket.Upgrader{
	HandshakeTimeout: timeout,
	ReadBufferSize:   1024,
	WriteBufferSize:  1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func getOrSetPlayerID(cfg *Config, w http.ResponseWriter, r *http.Request) (string, error) {
	if c, err := r.Cookie(playerCookieName); err == nil && c.Value != "" {
		return c.Value, nil
	}

	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	id := hex.EncodeToString(buf)

	cookiePath := cfg.prefix
	if cookiePath == "" {
		cookiePath = "/"
	}

	http.SetCookie(w, &http.Cookie{
		Name:     playerCookieName,
		Value:    id,
		Path:     cookiePath,
		HttpOnly: true,
		Secure:   cfg.scheme() == "https",
		SameSite: http.SameSiteLaxMode,
	})

	return id, nil
}

func validGameID(id string) bool {
	if id == "" || len(id) > maxGameIDLen {
		return false
	}

	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		default:
			return false
		}
	}

	return true
}

// newGameForEngine starts a game over the loaded characters. n numbers the
// games of this process so that a fixed seed yields a fixed sequence.
func newGameForEngine(cfg *Config, e *engine, s feedback.Settings, n uint64) (*game.Game, error) {
	return game.New(e.index, cfg.gameOptions(e.schema.Attributes, s, n))
}

// GameManager holds a set of hubs keyed by game ID, so each $path/$gameid
// is its own isolated session.
type GameManager struct {
	mu          sync.Mutex
	cfg         *Config
	e           *engine
	hubs        map[string]*Hub
	games       atomic.Uint64
	idleTimeout time.Duration
}

func newGameManager(ctx context.Context, cfg *Config, e *engine) *GameManager {
	gm := &GameManager{
		cfg:         cfg,
		e:           e,
		hubs:        make(map[string]*Hub),
		idleTimeout: cfg.sessionTimeout,
	}
	if gm.idleTimeout > 0 {
		go gm.reaperLoop(ctx)
	}

	return gm
}

func (gm *GameManager) nextGame(s feedback.Settings) (*game.Game, error) {
	return newGameForEngine(gm.cfg, gm.e, s, gm.games.Add(1))
}

func (gm *GameManager) getHub(gameID string) (*Hub, error) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if hub, ok := gm.hubs[gameID]; ok {
		return hub, nil
	}

	g, err := gm.nextGame(gm.e.settings)
	if err != nil {
		return nil, err
	}

	hub := newHub(gm, gameID, g)
	gm.hubs[gameID] = hub
	go hub.run(gm.cfg)

	return hub, nil
}

// newGameID generates a crypto-random game ID and ensures it doesn't
// collide with existing games.
func (gm *GameManager) newGameID() string {
	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	for {
		buf := make([]byte, 8)
		if _, err := rand.Read(buf); err != nil {
			panic("crypto/rand failure: " + err.Error())
		}
		out := make([]byte, 8)
		for i := range out {
			out[i] = letters[int(buf[i])%len(letters)]
		}
		id := string(out)

		gm.mu.Lock()
		_, exists := gm.hubs[id]
		gm.mu.Unlock()

		if !exists {
			return id
		}
	}
}

// reaperLoop periodically removes hubs that have been idle longer than idleTimeout.
func (gm *GameManager) reaperLoop(ctx context.Context) {
	ticker := time.NewTicker(gm.idleTimeout / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			gm.reap(time.Now().Add(-gm.idleTimeout))
		}
	}
}

func (gm *GameManager) reap(cutoff time.Time) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	for id, hub := range gm.hubs {
		hub.mu.RLock()
		last := hub.lastActive
		hub.mu.RUnlock()

		if last.Before(cutoff) {
			delete(gm.hubs, id)
			logf(gm.cfg, "GAMES: Reaped idle game %s", id)
			go hub.closeAll()
		}
	}
}

func (gm *GameManager) closeAll() {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	for id, hub := range gm.hubs {
		delete(gm.hubs, id)
		hub.closeAll()
	}
}

// WebSocket handler that picks the hub based on :gameid
func serveWSForManager(cfg *Config, gm *GameManager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		gameID := ps.ByName("gameid")
		if !validGameID(gameID) {
			http.Error(w, "invalid game id", http.StatusBadRequest)
			return
		}

		playerID, err := getOrSetPlayerID(cfg, w, r)
		if err != nil {
			logf(cfg, "ERROR: Assigning player id: %v", err)
			http.Error(w, "unable to assign player id", http.StatusInternalServerError)
			return
		}

		hub, err := gm.getHub(gameID)
		if err != nil {
			logf(cfg, "ERROR: Starting game %s: %v", gameID, err)
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logf(cfg, "ERROR: Upgrading %s: %v", realIP(r), err)
			return
		}

		client := &Client{
			conn:     conn,
			send:     make(chan any, 16),
			playerID: playerID,
		}

		if !submit(hub, hub.register, client) {
			_ = conn.Close()
			return
		}

		go client.writePump()
		client.readPump(hub)
	}
}

func (c *Client) readPump(h *Hub) {
	defer func() {
		submit(h, h.unreg, c)
		_ = c.conn.Close()
	}()

	for {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}

		req := clientRequest{client: c, msg: msg}

		var ok bool
		switch msg.Type {
		case "join":
			ok = submit(h, h.joins, req)
		case "guess":
			ok = submit(h, h.guesses, req)
		case "surrender", "restart":
			ok = submit(h, h.hostCmds, req)
		default:
			// ignore unknown types
			ok = true
		}
		if !ok {
			return
		}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(timeout))
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

// QR handler: generates a PNG QR code for the current game URL using go-qrcode.
func qrHandler(cfg *Config) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if !validGameID(ps.ByName("gameid")) {
			http.Error(w, "invalid game id", http.StatusBadRequest)
			return
		}

		// Derive scheme (respecting TLS and X-Forwarded-Proto if present).
		scheme := cfg.scheme()
		if proto := r.Header.Get("X-Forwarded-Proto"); proto == "http" || proto == "https" {
			scheme = proto
		}

		// We are at /.../:gameid/qr; strip trailing "/qr" to get the game URL.
		url := scheme + "://" + r.Host + strings.TrimSuffix(r.URL.Path, "/qr")

		const qrSize = 320 // mobile-friendly size
		png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
		if err != nil {
			http.Error(w, "qr generation failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		securityHeaders(cfg, w)
		_, _ = w.Write(png)
	}
}

func serveGamePage(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if !validGameID(ps.ByName("gameid")) {
			http.NotFound(w, r)
			return
		}

		if _, err := getOrSetPlayerID(cfg, w, r); err != nil {
			errs <- err
		}

		if _, err := writeAsset(cfg, w, "assets/index.html"); err != nil {
			errs <- err
		}
	}
}

// redirectNewGame handles GET /path by generating a new random game ID
// (with server-side collision detection) and redirecting to /path/:gameid.
func redirectNewGame(cfg *Config, path string, gm *GameManager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		gameID := gm.newGameID()
		logf(cfg, "GAMES: Created game %s/%s", path, gameID)
		http.Redirect(w, r, cfg.prefix+path+"/"+gameID, http.StatusTemporaryRedirect)
	}
}

// registerGuessGame sets up routes so that:
//   - $path                  → redirects to new random game (8-char ID)
//   - $path/:gameid          → HTML client
//   - $path/:gameid/ws       → WebSocket for that game
//   - $path/:gameid/qr       → PNG QR code for that game URL
func registerGuessGame(cfg *Config, path string, gm *GameManager, mux *httprouter.Router, errs chan<- error) {
	mux.GET(cfg.prefix+path, redirectNewGame(cfg, path, gm))

	mux.GET(cfg.prefix+path+"/:gameid", serveGamePage(cfg, errs))

	mux.GET(cfg.prefix+path+"/:gameid/ws", serveWSForManager(cfg, gm))

	mux.GET(cfg.prefix+path+"/:gameid/qr", qrHandler(cfg))
}
