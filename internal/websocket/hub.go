package websocket

import (
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/scythe504/rosco-backend/internal"
	"github.com/scythe504/rosco-backend/internal/game"
)

// =============================================================================
// HUB
// =============================================================================

const (
	maxNameLength = 20
	defaultName   = "Jugador"
)

const (
	msgRoomNotFound  = "Sala inexistente"
	msgRoomFull      = "Sala llena"
	msgAlreadyInRoom = "Ya estás en la sala"
	msgCreateFailed  = "No se pudo crear la sala"
)

// Game is the set of room operations the transport drives.
type Game interface {
	CreateRoom(playerID, name string) (string, error)
	JoinRoom(code, playerID, name string) error
	SubmitAnswer(code, playerID, answer string) game.Outcome
	Pasapalabra(code, playerID string) game.Outcome
	Leave(code, playerID string)
}

type Options struct {
	AllowedOrigins []string
	RateLimit      float64
	RateBurst      int
}

// Hub tracks websocket connections and their room membership. It implements
// game.Notifier.
type Hub struct {
	game     Game
	upgrader websocket.Upgrader
	limit    rate.Limit
	burst    int

	mu      sync.RWMutex
	clients map[string]*client
	rooms   map[string]map[string]*client
}

var _ game.Notifier = (*Hub)(nil)

func NewHub(opts Options) *Hub {
	h := &Hub{
		limit:   rate.Limit(opts.RateLimit),
		burst:   opts.RateBurst,
		clients: make(map[string]*client),
		rooms:   make(map[string]map[string]*client),
	}
	if opts.RateLimit <= 0 {
		h.limit = rate.Inf
	}
	if h.burst <= 0 {
		h.burst = 1
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     checkOrigin(opts.AllowedOrigins),
	}
	return h
}

// SetGame binds the room operations. It must be called before serving.
func (h *Hub) SetGame(g Game) {
	h.game = g
}

func checkOrigin(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 || slices.Contains(allowed, "*") {
		return func(r *http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || slices.Contains(allowed, origin)
	}
}

// ServeHTTP upgrades the request and runs the connection until it closes.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("[HandleWebSocket] upgrade failed")
		return
	}

	c := newClient(h, uuid.NewString(), conn, rate.NewLimiter(h.limit, h.burst))
	h.register(c)
	log.Info().Str("player", c.id).Str("remote", r.RemoteAddr).Msg("[HandleWebSocket] connected")

	go c.writePump()
	h.sendTo(c, internal.TypeSession, internal.SessionData{ID: c.id})
	c.readPump()
}

// Shutdown tells every connection to close.
func (h *Hub) Shutdown() {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		c.conn.Close()
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.id] = c
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c.id]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c.id)
	code := c.room
	h.leaveLocked(c)
	close(c.send)
	h.mu.Unlock()

	if code != "" {
		h.game.Leave(code, c.id)
	}
	log.Info().Str("player", c.id).Str("room", code).Msg("[removePlayer] disconnected")
}

// joinRoom moves c into code's member set. It returns the room c left and
// whether membership changed at all.
func (h *Hub) joinRoom(c *client, code string) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	prev := c.room
	if prev == code {
		return "", false
	}
	h.leaveLocked(c)
	members, ok := h.rooms[code]
	if !ok {
		members = make(map[string]*client)
		h.rooms[code] = members
	}
	members[c.id] = c
	c.room = code
	return prev, true
}

func (h *Hub) leaveRoom(c *client, code string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c.room == code {
		h.leaveLocked(c)
	}
}

func (h *Hub) leaveLocked(c *client) {
	if c.room == "" {
		return
	}
	if members, ok := h.rooms[c.room]; ok {
		delete(members, c.id)
		if len(members) == 0 {
			delete(h.rooms, c.room)
		}
	}
	c.room = ""
}

func (h *Hub) currentRoom(c *client) string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return c.room
}

// GameUpdate broadcasts a snapshot to the room's members.
func (h *Hub) GameUpdate(code string, snapshot internal.Snapshot) {
	frame, err := encode(internal.TypeGameUpdate, snapshot)
	if err != nil {
		log.Error().Err(err).Str("room", code).Msg("[SafeBroadcastToRoom] encode failed")
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.rooms[code] {
		c.enqueue(frame)
	}
}

// RoomClosed drops the membership of a removed room.
func (h *Hub) RoomClosed(code string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, c := range h.rooms[code] {
		c.room = ""
	}
	delete(h.rooms, code)
}

func (h *Hub) sendTo(c *client, msgType string, data any) {
	frame, err := encode(msgType, data)
	if err != nil {
		log.Error().Err(err).Str("type", msgType).Msg("[SafeWriteJSON] encode failed")
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.clients[c.id]; ok {
		c.enqueue(frame)
	}
}

func encode(msgType string, data any) ([]byte, error) {
	return json.Marshal(internal.Message[any]{Type: msgType, Data: data})
}

// =============================================================================
// MESSAGE ROUTING
// =============================================================================

func (h *Hub) handleMessage(c *client, raw []byte) {
	var baseMsg internal.Message[json.RawMessage]
	if err := json.Unmarshal(raw, &baseMsg); err != nil {
		log.Debug().Err(err).Str("player", c.id).Msg("[handleMessages] failed to parse base message")
		return
	}

	switch baseMsg.Type {
	case internal.TypeCreateRoom:
		var data internal.CreateRoomData
		if !decode(c, baseMsg, &data) {
			return
		}
		h.handleCreateRoom(c, data)
	case internal.TypeJoinRoom:
		var data internal.JoinRoomData
		if !decode(c, baseMsg, &data) {
			return
		}
		h.handleJoinRoom(c, data)
	case internal.TypeAnswer:
		var data internal.AnswerData
		if !decode(c, baseMsg, &data) {
			return
		}
		outcome := h.game.SubmitAnswer(h.roomFor(c, data.RoomID), c.id, data.Answer)
		log.Debug().Str("player", c.id).Str("outcome", string(outcome)).Msg("[handleMessages] answer")
	case internal.TypePasapalabra:
		var data internal.PasapalabraData
		if !decode(c, baseMsg, &data) {
			return
		}
		outcome := h.game.Pasapalabra(h.roomFor(c, data.RoomID), c.id)
		log.Debug().Str("player", c.id).Str("outcome", string(outcome)).Msg("[handleMessages] pasapalabra")
	default:
		log.Debug().Str("player", c.id).Str("type", baseMsg.Type).Msg("[handleMessages] unknown message type")
	}
}

func decode(c *client, msg internal.Message[json.RawMessage], v any) bool {
	if len(msg.Data) == 0 {
		return true
	}
	if err := json.Unmarshal(msg.Data, v); err != nil {
		log.Debug().Err(err).Str("player", c.id).Str("type", msg.Type).Msg("[handleMessages] wrong json")
		return false
	}
	return true
}

func (h *Hub) roomFor(c *client, roomID string) string {
	if code := game.NormalizeCode(roomID); code != "" {
		return code
	}
	return h.currentRoom(c)
}

func (h *Hub) handleCreateRoom(c *client, data internal.CreateRoomData) {
	code, err := h.game.CreateRoom(c.id, SanitizeName(data.Name))
	if err != nil {
		log.Error().Err(err).Str("player", c.id).Msg("[handleCreateRoom] create failed")
		h.sendTo(c, internal.TypeErrorMsg, msgCreateFailed)
		return
	}
	if prev, _ := h.joinRoom(c, code); prev != "" {
		h.game.Leave(prev, c.id)
	}
	h.sendTo(c, internal.TypeRoomCreated, code)
}

func (h *Hub) handleJoinRoom(c *client, data internal.JoinRoomData) {
	code := game.NormalizeCode(data.RoomID)
	// Membership comes first so the joiner receives the game start.
	prev, moved := h.joinRoom(c, code)
	if err := h.game.JoinRoom(code, c.id, SanitizeName(data.Name)); err != nil {
		if moved {
			h.leaveRoom(c, code)
			if prev != "" {
				h.joinRoom(c, prev)
			}
		}
		log.Debug().Err(err).Str("player", c.id).Str("room", code).Msg("[handleJoinRoom] join rejected")
		h.sendTo(c, internal.TypeErrorMsg, errorText(err))
		return
	}
	if moved && prev != "" {
		h.game.Leave(prev, c.id)
	}
}

func errorText(err error) string {
	switch {
	case errors.Is(err, game.ErrRoomNotFound):
		return msgRoomNotFound
	case errors.Is(err, game.ErrRoomFull):
		return msgRoomFull
	case errors.Is(err, game.ErrAlreadyInRoom):
		return msgAlreadyInRoom
	default:
		return err.Error()
	}
}

// SanitizeName trims name and caps it at 20 runes. Empty names become "Jugador".
func SanitizeName(name string) string {
	name = strings.TrimSpace(name)
	if utf8.RuneCountInString(name) > maxNameLength {
		name = strings.TrimSpace(string([]rune(name)[:maxNameLength]))
	}
	if name == "" {
		return defaultName
	}
	return name
}
