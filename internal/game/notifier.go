package game

import "github.com/scythe504/rosco-backend/internal"

// Notifier pushes room views to the room's members. Implementations are
// called with the room locked: they must not block and must not call back
// into the Registry.
type Notifier interface {
	GameUpdate(code string, snapshot internal.Snapshot)
	RoomClosed(code string)
}

type NopNotifier struct{}

func (NopNotifier) GameUpdate(string, internal.Snapshot) {}
func (NopNotifier) RoomClosed(string)                    {}
