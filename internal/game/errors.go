package game

import "errors"

var (
	ErrRoomNotFound       = errors.New("room not found")
	ErrRoomFull           = errors.New("room full")
	ErrAlreadyInRoom      = errors.New("player already in room")
	ErrCodeSpaceExhausted = errors.New("no unused room code available")
)
