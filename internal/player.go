package internal

import "time"

type Player struct {
	Id       string    `json:"id"`
	Username string    `json:"name"`
	Score    int       `json:"score"`
	JoinedAt time.Time `json:"-"`

	// Statistics
	CorrectAnswers int `json:"-"`
	WrongAnswers   int `json:"-"`
	Passes         int `json:"-"`
}

type PlayerSnapshot struct {
	ID       string `json:"id"`
	Username string `json:"name"`
	Score    int    `json:"score"`
}

func NewPlayer(id, username string) *Player {
	return &Player{
		Id:       id,
		Username: username,
		JoinedAt: time.Now(),
	}
}

// AddScore applies delta and clamps the result at zero.
func (p *Player) AddScore(delta int) {
	p.Score = max(p.Score+delta, 0)
}

func CreatePlayerSnapshot(p *Player) PlayerSnapshot {
	return PlayerSnapshot{
		ID:       p.Id,
		Username: p.Username,
		Score:    p.Score,
	}
}
