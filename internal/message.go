package internal

// Inbound message types.
const (
	TypeCreateRoom  = "create-room"
	TypeJoinRoom    = "join-room"
	TypeAnswer      = "answer"
	TypePasapalabra = "pasapalabra"
)

// Outbound message types.
const (
	TypeSession     = "session"
	TypeRoomCreated = "room-created"
	TypeErrorMsg    = "error-msg"
	TypeGameUpdate  = "game-update"
)

type Message[T any] struct {
	Type string `json:"type"`
	Data T      `json:"data"`
}

type CreateRoomData struct {
	Name string `json:"name"`
}

type JoinRoomData struct {
	RoomID string `json:"roomId"`
	Name   string `json:"name"`
}

type AnswerData struct {
	RoomID string `json:"roomId"`
	Answer string `json:"answer"`
}

type PasapalabraData struct {
	RoomID string `json:"roomId"`
}

type SessionData struct {
	ID string `json:"id"`
}
