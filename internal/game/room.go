package game

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/scythe504/rosco-backend/internal"
	"github.com/scythe504/rosco-backend/internal/catalog"
)

// =============================================================================
// ROOM REGISTRY
// =============================================================================

// Rules are the per-game constants applied to every room.
type Rules struct {
	TimePerPlayer time.Duration
	WrongPenalty  int
	RevealDelay   time.Duration
}

func DefaultRules() Rules {
	return Rules{
		TimePerPlayer: internal.TimePerPlayer,
		WrongPenalty:  internal.WrongPenalty,
		RevealDelay:   internal.RevealDuration,
	}
}

// Registry owns every live room. The registry lock is always taken before a
// room lock and never while one is held.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*internal.Room

	catalog   catalog.Catalog
	notifier  Notifier
	scheduler Scheduler
	codes     CodeGenerator
	now       func() time.Time

	rules       Rules
	finishedTTL time.Duration
	idleTTL     time.Duration

	generation atomic.Uint64
}

type Option func(*Registry)

func WithRules(rules Rules) Option {
	return func(r *Registry) { r.rules = rules }
}

func WithScheduler(s Scheduler) Option {
	return func(r *Registry) { r.scheduler = s }
}

func WithCodeGenerator(g CodeGenerator) Option {
	return func(r *Registry) { r.codes = g }
}

func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

// WithEviction sets how long finished and idle rooms are kept. Zero disables a rule.
func WithEviction(finished, idle time.Duration) Option {
	return func(r *Registry) {
		r.finishedTTL = finished
		r.idleTTL = idle
	}
}

func NewRegistry(cat catalog.Catalog, notifier Notifier, opts ...Option) *Registry {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	r := &Registry{
		rooms:     make(map[string]*internal.Room),
		catalog:   cat,
		notifier:  notifier,
		scheduler: realScheduler{},
		codes:     RandomCode,
		now:       time.Now,
		rules:     DefaultRules(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// CreateRoom builds a fresh rosco and seats playerID as player 0.
func (r *Registry) CreateRoom(playerID, name string) (string, error) {
	letters, questions, err := catalog.Pick(r.catalog)
	if err != nil {
		return "", err
	}
	now := r.now()
	game := internal.NewGameState(letters, questions, int(r.rules.TimePerPlayer/time.Second))
	host := internal.NewPlayer(playerID, name)

	r.mu.Lock()
	code, err := r.newCodeLocked()
	if err != nil {
		r.mu.Unlock()
		return "", err
	}
	room := internal.NewRoom(code, host, game, now)
	r.rooms[code] = room
	r.mu.Unlock()

	log.Info().Str("room", code).Str("player", playerID).Int("letters", len(letters)).
		Msg("[CreateRoom] room created")

	room.Mu.Lock()
	r.publishLocked(room)
	room.Mu.Unlock()
	return code, nil
}

func (r *Registry) newCodeLocked() (string, error) {
	for length := DefaultCodeLen; length <= maxCodeLen; length++ {
		for attempt := 0; attempt < attemptsPerLength; attempt++ {
			code := NormalizeCode(r.codes(length))
			if _, taken := r.rooms[code]; !taken && code != "" {
				return code, nil
			}
		}
		log.Warn().Int("length", length).Msg("[newCode] code collisions, growing code length")
	}
	return "", ErrCodeSpaceExhausted
}

// JoinRoom seats playerID as player 1 and starts the game.
func (r *Registry) JoinRoom(code, playerID, name string) error {
	room, ok := r.Get(code)
	if !ok {
		log.Debug().Str("room", code).Str("player", playerID).Msg("[JoinRoom] room not found")
		return ErrRoomNotFound
	}

	room.Mu.Lock()
	defer room.Mu.Unlock()

	if room.Closed {
		return ErrRoomNotFound
	}
	if room.PlayerIndex(playerID) >= 0 {
		return ErrAlreadyInRoom
	}
	if room.IsFull() {
		log.Debug().Str("room", room.Code).Str("player", playerID).Msg("[JoinRoom] room full")
		return ErrRoomFull
	}

	room.Players = append(room.Players, internal.NewPlayer(playerID, name))
	room.Game.Started = true
	room.LastActivity = r.now()

	log.Info().Str("room", room.Code).Str("player", playerID).Msg("[JoinRoom] player joined, game started")
	r.publishLocked(room)
	return nil
}

func (r *Registry) Get(code string) (*internal.Room, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room, ok := r.rooms[NormalizeCode(code)]
	return room, ok
}

// Snapshot returns the current public view of a room.
func (r *Registry) Snapshot(code string) (internal.Snapshot, error) {
	room, ok := r.Get(code)
	if !ok {
		return internal.Snapshot{}, ErrRoomNotFound
	}
	room.Mu.Lock()
	defer room.Mu.Unlock()
	if room.Closed {
		return internal.Snapshot{}, ErrRoomNotFound
	}
	return room.Snapshot(), nil
}

// JoinableRoom returns the code of a room waiting for its second player, or "".
func (r *Registry) JoinableRoom() string {
	for _, room := range r.list() {
		room.Mu.Lock()
		open := !room.Closed && !room.Game.Started && !room.IsFull()
		code := room.Code
		room.Mu.Unlock()
		if open {
			return code
		}
	}
	return ""
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

// Remove drops a room, cancels its pending reveal and tells its members.
func (r *Registry) Remove(code string) bool {
	code = NormalizeCode(code)
	r.mu.Lock()
	room, ok := r.rooms[code]
	delete(r.rooms, code)
	r.mu.Unlock()
	if !ok {
		return false
	}

	room.Mu.Lock()
	defer room.Mu.Unlock()
	r.closeLocked(room)
	log.Info().Str("room", code).Msg("[Remove] room removed")
	return true
}

// Leave handles a disconnected member. A room whose only member leaves
// before the game starts is removed; started games keep running.
func (r *Registry) Leave(code, playerID string) {
	room, ok := r.Get(code)
	if !ok {
		return
	}
	room.Mu.Lock()
	abandoned := !room.Closed && !room.Game.Started &&
		room.GetPlayerCount() == 1 && room.PlayerIndex(playerID) == 0
	room.Mu.Unlock()

	if abandoned {
		log.Info().Str("room", room.Code).Str("player", playerID).Msg("[Leave] host left unstarted room")
		r.removeIfSame(room)
	}
}

// Sweep evicts finished rooms past the finished TTL and rooms without
// player activity past the idle TTL. It returns how many were removed.
func (r *Registry) Sweep(now time.Time) int {
	removed := 0
	for _, room := range r.list() {
		room.Mu.Lock()
		evict := !room.Closed && r.expiredLocked(room, now)
		room.Mu.Unlock()
		if evict && r.removeIfSame(room) {
			removed++
		}
	}
	if removed > 0 {
		log.Info().Int("removed", removed).Int("remaining", r.Len()).Msg("[Sweep] rooms evicted")
	}
	return removed
}

func (r *Registry) expiredLocked(room *internal.Room, now time.Time) bool {
	if r.finishedTTL > 0 && room.Game.Finished && now.Sub(room.FinishedAt) >= r.finishedTTL {
		return true
	}
	return r.idleTTL > 0 && now.Sub(room.LastActivity) >= r.idleTTL
}

func (r *Registry) removeIfSame(room *internal.Room) bool {
	r.mu.Lock()
	if r.rooms[room.Code] != room {
		r.mu.Unlock()
		return false
	}
	delete(r.rooms, room.Code)
	r.mu.Unlock()

	room.Mu.Lock()
	defer room.Mu.Unlock()
	r.closeLocked(room)
	return true
}

func (r *Registry) closeLocked(room *internal.Room) {
	if room.Closed {
		return
	}
	room.Closed = true
	if room.Pending != nil {
		room.Pending.Stop()
		room.Pending = nil
	}
	r.notifier.RoomClosed(room.Code)
}

func (r *Registry) list() []*internal.Room {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rooms := make([]*internal.Room, 0, len(r.rooms))
	for _, room := range r.rooms {
		rooms = append(rooms, room)
	}
	return rooms
}

// publishLocked pushes the room view to the notifier. Callers hold room.Mu,
// which keeps updates of one room in mutation order.
func (r *Registry) publishLocked(room *internal.Room) {
	r.notifier.GameUpdate(room.Code, room.Snapshot())
}
