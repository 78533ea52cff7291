package game

import "time"

type Timer interface {
	Stop() bool
}

// Scheduler runs f once after d.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// TickerSource creates periodic tick channels.
type TickerSource interface {
	Create(d time.Duration) (ticks <-chan time.Time, stop func())
}

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

type realTickers struct{}

func (realTickers) Create(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}

func NewTickerSource() TickerSource {
	return realTickers{}
}
