package game

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scythe504/rosco-backend/internal"
)

func TestCreateRoom(t *testing.T) {
	f := newFixture(t)

	code, err := f.reg.CreateRoom("p0", "Ana")
	require.NoError(t, err)
	assert.Len(t, code, DefaultCodeLen)
	assert.Equal(t, strings.ToUpper(code), code)

	snap := f.snapshot(t, code)
	require.Len(t, snap.Players, 1)
	assert.Equal(t, internal.PlayerSnapshot{ID: "p0", Username: "Ana"}, snap.Players[0])
	assert.False(t, snap.Game.Started)
	assert.Equal(t, spanishLetters, snap.Game.Letters)
	assert.Equal(t, [2]int{180, 180}, snap.Game.Timer)
	assert.Equal(t, "AANS", snap.Game.Questions["A"].Answer)

	last := f.notifier.Last()
	assert.Equal(t, code, last.code)
	assert.Len(t, last.snapshot.Players, 1)
}

func TestCreateRoom_RetriesCollisions(t *testing.T) {
	codes := []string{"AAAAA", "AAAAA", "aaaaa", "BBBBB"}
	f := newFixture(t, WithCodeGenerator(func(int) string {
		c := codes[0]
		codes = codes[1:]
		return c
	}))

	first, err := f.reg.CreateRoom("p0", "Ana")
	require.NoError(t, err)
	second, err := f.reg.CreateRoom("p1", "Beto")
	require.NoError(t, err)

	assert.Equal(t, "AAAAA", first)
	assert.Equal(t, "BBBBB", second)
}

func TestCreateRoom_GrowsCodeLength(t *testing.T) {
	f := newFixture(t, WithCodeGenerator(func(n int) string {
		if n == DefaultCodeLen {
			return "AAAAA"
		}
		return strings.Repeat("B", n)
	}))

	_, err := f.reg.CreateRoom("p0", "Ana")
	require.NoError(t, err)
	code, err := f.reg.CreateRoom("p1", "Beto")
	require.NoError(t, err)
	assert.Equal(t, "BBBBBB", code)
}

func TestCreateRoom_CodeSpaceExhausted(t *testing.T) {
	f := newFixture(t, WithCodeGenerator(func(int) string { return "SAME" }))

	_, err := f.reg.CreateRoom("p0", "Ana")
	require.NoError(t, err)
	_, err = f.reg.CreateRoom("p1", "Beto")
	assert.ErrorIs(t, err, ErrCodeSpaceExhausted)
}

func TestJoinRoom(t *testing.T) {
	f := newFixture(t)
	code, err := f.reg.CreateRoom("p0", "Ana")
	require.NoError(t, err)

	t.Run("unknown code", func(t *testing.T) {
		assert.ErrorIs(t, f.reg.JoinRoom("NOPE1", "p1", "Beto"), ErrRoomNotFound)
	})

	t.Run("host joins again", func(t *testing.T) {
		assert.ErrorIs(t, f.reg.JoinRoom(code, "p0", "Ana"), ErrAlreadyInRoom)
		assert.Len(t, f.snapshot(t, code).Players, 1)
	})

	t.Run("case insensitive code starts the game", func(t *testing.T) {
		require.NoError(t, f.reg.JoinRoom(" "+strings.ToLower(code)+" ", "p1", "Beto"))

		snap := f.snapshot(t, code)
		assert.True(t, snap.Game.Started)
		require.Len(t, snap.Players, 2)
		assert.Equal(t, "p1", snap.Players[1].ID)
		assert.Equal(t, 0, snap.Game.Turn)
	})

	t.Run("third player", func(t *testing.T) {
		before := len(f.notifier.Events())
		assert.ErrorIs(t, f.reg.JoinRoom(code, "p2", "Carla"), ErrRoomFull)
		assert.Len(t, f.snapshot(t, code).Players, 2)
		assert.Len(t, f.notifier.Events(), before)
	})
}

func TestJoinableRoom(t *testing.T) {
	f := newFixture(t)
	assert.Empty(t, f.reg.JoinableRoom())

	started := f.startedRoom(t)
	assert.Empty(t, f.reg.JoinableRoom())

	waiting, err := f.reg.CreateRoom("p2", "Carla")
	require.NoError(t, err)
	assert.Equal(t, waiting, f.reg.JoinableRoom())
	assert.NotEqual(t, started, waiting)
}

func TestRemove_NotifiesAndForgets(t *testing.T) {
	f := newFixture(t)
	code := f.startedRoom(t)

	assert.True(t, f.reg.Remove(code))
	assert.False(t, f.reg.Remove(code))

	_, ok := f.reg.Get(code)
	assert.False(t, ok)
	_, err := f.reg.Snapshot(code)
	assert.ErrorIs(t, err, ErrRoomNotFound)

	last := f.notifier.Last()
	assert.True(t, last.closed)
	assert.Equal(t, code, last.code)
}

func TestLeave(t *testing.T) {
	f := newFixture(t)

	waiting, err := f.reg.CreateRoom("p0", "Ana")
	require.NoError(t, err)
	f.reg.Leave(waiting, "p0")
	_, ok := f.reg.Get(waiting)
	assert.False(t, ok, "abandoned unstarted room is removed")

	started := f.startedRoom(t)
	f.reg.Leave(started, "p0")
	_, ok = f.reg.Get(started)
	assert.True(t, ok, "started games keep running")
}

func TestSweep(t *testing.T) {
	f := newFixture(t, WithEviction(10*time.Minute, time.Hour))

	finished := f.startedRoom(t)
	f.mutate(t, finished, func(room *internal.Room) {
		room.Game.Finished = true
		room.FinishedAt = f.clock.Now()
	})
	idle, err := f.reg.CreateRoom("p2", "Carla")
	require.NoError(t, err)

	assert.Zero(t, f.reg.Sweep(f.clock.Now().Add(9*time.Minute)))
	assert.Equal(t, 1, f.reg.Sweep(f.clock.Now().Add(10*time.Minute)))
	_, ok := f.reg.Get(finished)
	assert.False(t, ok)

	assert.Equal(t, 1, f.reg.Sweep(f.clock.Now().Add(time.Hour)))
	_, ok = f.reg.Get(idle)
	assert.False(t, ok)
	assert.Zero(t, f.reg.Len())
}

func TestSweep_ZeroTTLDisablesEviction(t *testing.T) {
	f := newFixture(t, WithEviction(0, 0))
	code := f.startedRoom(t)
	f.mutate(t, code, func(room *internal.Room) {
		room.Game.Finished = true
		room.FinishedAt = f.clock.Now()
	})

	assert.Zero(t, f.reg.Sweep(f.clock.Now().Add(24*time.Hour)))
	assert.Equal(t, 1, f.reg.Len())
}

func TestSweep_ActivityResetsIdle(t *testing.T) {
	f := newFixture(t, WithEviction(0, time.Hour))
	code := f.startedRoom(t)

	f.clock.Advance(50 * time.Minute)
	f.reg.Pasapalabra(code, "p0")

	assert.Zero(t, f.reg.Sweep(f.clock.Now().Add(30*time.Minute)))
	assert.Equal(t, 1, f.reg.Sweep(f.clock.Now().Add(time.Hour)))
}
