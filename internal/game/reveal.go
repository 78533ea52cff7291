package game

import (
	"github.com/rs/zerolog/log"

	"github.com/scythe504/rosco-backend/internal"
)

// armRevealLocked schedules the end of the reveal window. The next letter is
// decided now, since results cannot change while the room is paused.
func (r *Registry) armRevealLocked(room *internal.Room, from int) {
	if room.Pending != nil {
		room.Pending.Stop()
	}
	next, ok := nextPending(room.Game, from)
	gen := r.generation.Add(1)
	code := room.Code

	timer := r.scheduler.AfterFunc(r.rules.RevealDelay, func() {
		r.fireReveal(code, gen)
	})
	room.Pending = &internal.PendingReveal{
		Generation: gen,
		Next:       next,
		Finish:     !ok,
		Stop:       timer.Stop,
	}
}

// fireReveal applies a pending reveal unless the room is gone or the
// transition was replaced.
func (r *Registry) fireReveal(code string, gen uint64) {
	room, ok := r.Get(code)
	if !ok {
		log.Debug().Str("room", code).Msg("[fireReveal] room gone, dropping reveal")
		return
	}
	room.Mu.Lock()
	defer room.Mu.Unlock()

	p := room.Pending
	if room.Closed || p == nil || p.Generation != gen {
		return
	}
	room.Pending = nil

	g := room.Game
	g.Paused = false
	g.Reveal = nil
	if p.Finish {
		r.finishLocked(room)
	} else {
		g.LetterIndex = p.Next
	}
	r.publishLocked(room)
}
