package game

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/scythe504/rosco-backend/internal"
	"github.com/scythe504/rosco-backend/internal/catalog"
)

var spanishLetters = []string{
	"A", "B", "C", "D", "E", "F", "G", "H", "I", "J", "K", "L", "M", "N",
	"Ñ", "O", "P", "Q", "R", "S", "T", "U", "V", "W", "X", "Y", "Z",
}

// newTestCatalog has exactly one question per letter, answered "<letter>ANS".
func newTestCatalog(t *testing.T, letters ...string) *catalog.Memory {
	t.Helper()
	if len(letters) == 0 {
		letters = spanishLetters
	}
	entries := make([]catalog.Entry, 0, len(letters))
	for _, l := range letters {
		entries = append(entries, catalog.Entry{
			Letter:   l,
			Question: fmt.Sprintf("Con la %s", l),
			Answer:   l + "ANS",
		})
	}
	c, err := catalog.NewMemory(entries, nil)
	require.NoError(t, err)
	return c
}

type fakeTimer struct {
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

type fakeScheduler struct {
	mu     sync.Mutex
	timers []*fakeTimer
	delays []time.Duration
}

func (s *fakeScheduler) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &fakeTimer{f: f}
	s.timers = append(s.timers, t)
	s.delays = append(s.delays, d)
	return t
}

// Fire runs the i-th armed callback even if it was stopped, as a late
// time.AfterFunc callback would.
func (s *fakeScheduler) Fire(i int) {
	s.mu.Lock()
	t := s.timers[i]
	t.fired = true
	s.mu.Unlock()
	t.f()
}

func (s *fakeScheduler) FireLast() {
	s.Fire(s.Len() - 1)
}

func (s *fakeScheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

type notification struct {
	code     string
	snapshot internal.Snapshot
	closed   bool
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []notification
}

func (n *recordingNotifier) GameUpdate(code string, snapshot internal.Snapshot) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, notification{code: code, snapshot: snapshot})
}

func (n *recordingNotifier) RoomClosed(code string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, notification{code: code, closed: true})
}

func (n *recordingNotifier) Events() []notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notification(nil), n.events...)
}

func (n *recordingNotifier) Last() notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.events) == 0 {
		return notification{}
	}
	return n.events[len(n.events)-1]
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	reg       *Registry
	scheduler *fakeScheduler
	notifier  *recordingNotifier
	clock     *fakeClock
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{
		scheduler: &fakeScheduler{},
		notifier:  &recordingNotifier{},
		clock:     newFakeClock(),
	}
	base := []Option{WithScheduler(f.scheduler), WithClock(f.clock.Now)}
	f.reg = NewRegistry(newTestCatalog(t), f.notifier, append(base, opts...)...)
	return f
}

// startedRoom creates a room hosted by "p0" and joined by "p1".
func (f *fixture) startedRoom(t *testing.T) string {
	t.Helper()
	code, err := f.reg.CreateRoom("p0", "Ana")
	require.NoError(t, err)
	require.NoError(t, f.reg.JoinRoom(code, "p1", "Beto"))
	return code
}

// mutate edits a room's state under its lock.
func (f *fixture) mutate(t *testing.T, code string, fn func(room *internal.Room)) {
	t.Helper()
	room, ok := f.reg.Get(code)
	require.True(t, ok)
	room.Mu.Lock()
	defer room.Mu.Unlock()
	fn(room)
}

func (f *fixture) snapshot(t *testing.T, code string) internal.Snapshot {
	t.Helper()
	snap, err := f.reg.Snapshot(code)
	require.NoError(t, err)
	return snap
}
