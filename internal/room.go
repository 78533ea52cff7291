package internal

import (
	"sync"
	"time"
)

type Room struct {
	Code    string
	Players []*Player
	Game    *GameState

	CreatedAt    time.Time
	LastActivity time.Time
	FinishedAt   time.Time

	// Pending is the armed reveal transition, nil when none is scheduled.
	Pending *PendingReveal
	// Closed is set once the room is removed from the registry.
	Closed bool

	Mu sync.Mutex
}

// PendingReveal is the single deferred transition a room may hold.
type PendingReveal struct {
	Generation uint64
	Next       int
	Finish     bool
	Stop       func() bool
}

func NewRoom(code string, host *Player, game *GameState, now time.Time) *Room {
	return &Room{
		Code:         code,
		Players:      []*Player{host},
		Game:         game,
		CreatedAt:    now,
		LastActivity: now,
	}
}

// Methods (Room Struct)
func (r *Room) GetPlayerByIndex(index int) *Player {
	if index < 0 || index >= len(r.Players) {
		return nil
	}
	return r.Players[index]
}

func (r *Room) PlayerIndex(playerID string) int {
	for i, p := range r.Players {
		if p.Id == playerID {
			return i
		}
	}
	return -1
}

func (r *Room) GetPlayerCount() int {
	return len(r.Players)
}

func (r *Room) IsFull() bool {
	return len(r.Players) >= MaxPlayersPerRoom
}

// IsTurnOf reports whether playerID holds the turn.
func (r *Room) IsTurnOf(playerID string) bool {
	p := r.GetPlayerByIndex(r.Game.Turn)
	return p != nil && p.Id == playerID
}

// Snapshot copies the public view of the room. Callers hold r.Mu.
func (r *Room) Snapshot() Snapshot {
	players := make([]PlayerSnapshot, 0, len(r.Players))
	for _, p := range r.Players {
		players = append(players, CreatePlayerSnapshot(p))
	}
	return Snapshot{
		Players: players,
		Game:    r.Game.Copy(),
	}
}
