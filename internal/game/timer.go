package game

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/scythe504/rosco-backend/internal"
)

// =============================================================================
// TIMER MANAGEMENT
// =============================================================================

// Tick drains one second from the turn holder's clock in every running room
// and pushes the new view. It returns the number of rooms touched.
func (r *Registry) Tick() int {
	touched := 0
	for _, room := range r.list() {
		room.Mu.Lock()
		if r.tickLocked(room) {
			touched++
			r.publishLocked(room)
		}
		room.Mu.Unlock()
	}
	return touched
}

func (r *Registry) tickLocked(room *internal.Room) bool {
	g := room.Game
	if room.Closed || !g.Started || g.Finished || g.Paused {
		return false
	}

	if g.Timer[g.Turn] > 0 {
		g.Timer[g.Turn]--
	}
	if g.Timer[g.Turn] <= 0 {
		if other := g.OtherTurn(); g.Timer[other] > 0 {
			g.Turn = other
		}
	}
	if g.Timer[0] <= 0 && g.Timer[1] <= 0 {
		r.finishLocked(room)
	}
	return true
}

// Heartbeat drives Registry.Tick and Registry.Sweep from periodic tickers.
type Heartbeat struct {
	registry      *Registry
	tickers       TickerSource
	interval      time.Duration
	sweepInterval time.Duration
}

func NewHeartbeat(registry *Registry, tickers TickerSource, interval, sweepInterval time.Duration) *Heartbeat {
	if tickers == nil {
		tickers = realTickers{}
	}
	return &Heartbeat{
		registry:      registry,
		tickers:       tickers,
		interval:      interval,
		sweepInterval: sweepInterval,
	}
}

// Run blocks until ctx is done.
func (h *Heartbeat) Run(ctx context.Context) {
	ticks, stopTicks := h.tickers.Create(h.interval)
	defer stopTicks()
	sweeps, stopSweeps := h.tickers.Create(h.sweepInterval)
	defer stopSweeps()

	log.Info().Dur("interval", h.interval).Dur("sweepInterval", h.sweepInterval).Msg("[Heartbeat] started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("[Heartbeat] stopped")
			return
		case <-ticks:
			n := h.registry.Tick()
			log.Trace().Int("rooms", n).Msg("[Heartbeat] tick")
		case now := <-sweeps:
			h.registry.Sweep(now)
		}
	}
}
