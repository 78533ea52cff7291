package websocket

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scythe504/rosco-backend/internal"
	"github.com/scythe504/rosco-backend/internal/catalog"
	"github.com/scythe504/rosco-backend/internal/game"
)

type harness struct {
	hub      *Hub
	registry *game.Registry
	server   *httptest.Server
}

func newHarness(t *testing.T, opts Options) *harness {
	t.Helper()
	c, err := catalog.NewMemory([]catalog.Entry{
		{Letter: "A", Question: "Con la A", Answer: "AGUILA"},
		{Letter: "B", Question: "Con la B", Answer: "BOTE"},
		{Letter: "C", Question: "Con la C", Answer: "CASA"},
	}, nil)
	require.NoError(t, err)

	hub := NewHub(opts)
	rules := game.DefaultRules()
	rules.RevealDelay = 20 * time.Millisecond
	reg := game.NewRegistry(c, hub, game.WithRules(rules))
	hub.SetGame(reg)

	srv := httptest.NewServer(hub)
	t.Cleanup(srv.Close)
	return &harness{hub: hub, registry: reg, server: srv}
}

func (h *harness) dial(t *testing.T) (*websocket.Conn, string) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(h.server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	var session internal.SessionData
	readType(t, conn, internal.TypeSession, &session)
	require.NotEmpty(t, session.ID)
	return conn, session.ID
}

func send(t *testing.T, conn *websocket.Conn, msgType string, data any) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(internal.Message[any]{Type: msgType, Data: data}))
}

// readType reads frames until one of msgType arrives and decodes its data into v.
func readType(t *testing.T, conn *websocket.Conn, msgType string, v any) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		var msg internal.Message[json.RawMessage]
		require.NoError(t, conn.ReadJSON(&msg))
		if msg.Type != msgType {
			continue
		}
		if v != nil {
			require.NoError(t, json.Unmarshal(msg.Data, v))
		}
		return
	}
}

// readSnapshot reads game updates until one satisfies cond.
func readSnapshot(t *testing.T, conn *websocket.Conn, cond func(internal.Snapshot) bool) internal.Snapshot {
	t.Helper()
	for {
		var snap internal.Snapshot
		readType(t, conn, internal.TypeGameUpdate, &snap)
		if cond(snap) {
			return snap
		}
	}
}

func createRoom(t *testing.T, conn *websocket.Conn, name string) string {
	t.Helper()
	send(t, conn, internal.TypeCreateRoom, internal.CreateRoomData{Name: name})
	var code string
	readType(t, conn, internal.TypeRoomCreated, &code)
	require.NotEmpty(t, code)
	return code
}

func TestHub_FullGameFlow(t *testing.T) {
	h := newHarness(t, Options{})

	host, hostID := h.dial(t)
	guest, guestID := h.dial(t)
	assert.NotEqual(t, hostID, guestID)

	code := createRoom(t, host, "  Ana  ")
	send(t, guest, internal.TypeJoinRoom, internal.JoinRoomData{RoomID: strings.ToLower(code), Name: "Beto"})

	started := func(s internal.Snapshot) bool { return s.Game.Started }
	for _, conn := range []*websocket.Conn{host, guest} {
		snap := readSnapshot(t, conn, started)
		require.Len(t, snap.Players, 2)
		assert.Equal(t, internal.PlayerSnapshot{ID: hostID, Username: "Ana"}, snap.Players[0])
		assert.Equal(t, guestID, snap.Players[1].ID)
		assert.Equal(t, []string{"A", "B", "C"}, snap.Game.Letters)
	}

	send(t, host, internal.TypeAnswer, internal.AnswerData{RoomID: code, Answer: "aguila"})
	for _, conn := range []*websocket.Conn{host, guest} {
		snap := readSnapshot(t, conn, func(s internal.Snapshot) bool { return s.Game.Paused })
		assert.Equal(t, 1, snap.Players[0].Score)
		require.NotNil(t, snap.Game.Reveal)
		assert.True(t, snap.Game.Reveal.Correct)
	}
	for _, conn := range []*websocket.Conn{host, guest} {
		snap := readSnapshot(t, conn, func(s internal.Snapshot) bool { return !s.Game.Paused })
		assert.Equal(t, 1, snap.Game.LetterIndex)
	}

	send(t, host, internal.TypePasapalabra, internal.PasapalabraData{RoomID: code})
	snap := readSnapshot(t, guest, func(s internal.Snapshot) bool { return s.Game.Turn == 1 })
	assert.True(t, snap.Game.Passed[1])
	assert.Equal(t, 2, snap.Game.LetterIndex)
}

func TestHub_JoinErrors(t *testing.T) {
	h := newHarness(t, Options{})

	host, _ := h.dial(t)
	guest, _ := h.dial(t)
	third, _ := h.dial(t)

	var text string
	send(t, guest, internal.TypeJoinRoom, internal.JoinRoomData{RoomID: "NOPE1", Name: "Beto"})
	readType(t, guest, internal.TypeErrorMsg, &text)
	assert.Equal(t, "Sala inexistente", text)

	code := createRoom(t, host, "Ana")
	send(t, host, internal.TypeJoinRoom, internal.JoinRoomData{RoomID: code, Name: "Ana"})
	readType(t, host, internal.TypeErrorMsg, &text)
	assert.Equal(t, "Ya estás en la sala", text)

	send(t, guest, internal.TypeJoinRoom, internal.JoinRoomData{RoomID: code, Name: "Beto"})
	readSnapshot(t, host, func(s internal.Snapshot) bool { return s.Game.Started })

	send(t, third, internal.TypeJoinRoom, internal.JoinRoomData{RoomID: code, Name: "Carla"})
	readType(t, third, internal.TypeErrorMsg, &text)
	assert.Equal(t, "Sala llena", text)
}

func TestHub_IgnoresMalformedFrames(t *testing.T) {
	h := newHarness(t, Options{})
	conn, _ := h.dial(t)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	send(t, conn, "draw-pixel", map[string]int{"x": 1})
	send(t, conn, internal.TypeJoinRoom, "not an object")

	code := createRoom(t, conn, "Ana")
	assert.Len(t, code, game.DefaultCodeLen)
}

func TestHub_DisconnectAbandonsWaitingRoom(t *testing.T) {
	h := newHarness(t, Options{})
	conn, _ := h.dial(t)
	createRoom(t, conn, "Ana")
	require.Equal(t, 1, h.registry.Len())

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool {
		return h.registry.Len() == 0 && h.hub.ClientCount() == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHub_RateLimitsInboundFrames(t *testing.T) {
	h := newHarness(t, Options{RateLimit: 0.001, RateBurst: 1})
	conn, _ := h.dial(t)

	for i := 0; i < 3; i++ {
		send(t, conn, internal.TypeCreateRoom, internal.CreateRoomData{Name: "Ana"})
	}
	readType(t, conn, internal.TypeRoomCreated, nil)
	assert.Never(t, func() bool { return h.registry.Len() > 1 }, 200*time.Millisecond, 10*time.Millisecond)
}

func TestCheckOrigin(t *testing.T) {
	req := httptest.NewRequest("GET", "/ws", nil)
	req.Header.Set("Origin", "https://evil.example")

	assert.True(t, checkOrigin([]string{"*"})(req))
	assert.False(t, checkOrigin([]string{"https://rosco.example"})(req))

	req.Header.Set("Origin", "https://rosco.example")
	assert.True(t, checkOrigin([]string{"https://rosco.example"})(req))
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  Ana ", "Ana"},
		{"", "Jugador"},
		{"   ", "Jugador"},
		{"ÑandúÑandúÑandúÑandúÑandú", "ÑandúÑandúÑandúÑandú"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeName(tt.in), "input %q", tt.in)
	}
}
