package internal

import (
	"maps"
	"time"
)

const (
	MaxPlayersPerRoom = 2
	TimePerPlayer     = 180 * time.Second
	WrongPenalty      = 2
	RevealDuration    = 2000 * time.Millisecond
	TickInterval      = 1 * time.Second
)

type Result string

const (
	ResultCorrect Result = "correct"
	ResultWrong   Result = "wrong"
)

type Question struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Reveal is shown to both players while the game is paused after an answer.
type Reveal struct {
	Index   int    `json:"index"`
	Answer  string `json:"answer"`
	Correct bool   `json:"correct"`
}

type GameState struct {
	Started  bool `json:"started"`
	Finished bool `json:"finished"`
	Paused   bool `json:"paused"`

	Turn        int                 `json:"turn"`
	LetterIndex int                 `json:"letterIndex"`
	Letters     []string            `json:"letters"`
	Questions   map[string]Question `json:"questions"`

	Results map[int]Result `json:"results"`
	Passed  map[int]bool   `json:"passed"`

	Timer [MaxPlayersPerRoom]int `json:"timer"`

	Reveal *Reveal `json:"reveal"`
}

// NewGameState builds an unstarted game over letters with secondsPerPlayer on each clock.
func NewGameState(letters []string, questions map[string]Question, secondsPerPlayer int) *GameState {
	return &GameState{
		Letters:   append([]string(nil), letters...),
		Questions: questions,
		Results:   make(map[int]Result),
		Passed:    make(map[int]bool),
		Timer:     [MaxPlayersPerRoom]int{secondsPerPlayer, secondsPerPlayer},
	}
}

// CurrentQuestion returns the letter and question being asked.
func (g *GameState) CurrentQuestion() (string, Question) {
	if g.LetterIndex < 0 || g.LetterIndex >= len(g.Letters) {
		return "", Question{}
	}
	letter := g.Letters[g.LetterIndex]
	return letter, g.Questions[letter]
}

// OtherTurn is the index of the player not holding the turn.
func (g *GameState) OtherTurn() int {
	return (g.Turn + 1) % MaxPlayersPerRoom
}

// Copy returns a deep copy safe to hand outside the room lock.
func (g *GameState) Copy() GameState {
	c := *g
	c.Letters = append([]string(nil), g.Letters...)
	c.Questions = maps.Clone(g.Questions)
	c.Results = maps.Clone(g.Results)
	c.Passed = maps.Clone(g.Passed)
	if g.Reveal != nil {
		r := *g.Reveal
		c.Reveal = &r
	}
	return c
}

type Snapshot struct {
	Players []PlayerSnapshot `json:"players"`
	Game    GameState        `json:"game"`
}

type Response struct {
	StatusCode    int   `json:"status_code"`
	RespStartTime int64 `json:"resp_time_start_ms"`
	RespEndTime   int64 `json:"resp_time_end_ms"`
	NetRespTime   int64 `json:"net_resp_time_ms"`
	Data          any   `json:"data"`
}

type GameResultData struct {
	PlayerID string `json:"player_id"`
	Username string `json:"username"`
	Score    int    `json:"score"`
	Position int    `json:"position"`

	Correct int `json:"correct"`
	Wrong   int `json:"wrong"`
	Passes  int `json:"passes"`
}

type FinalResults struct {
	Leaderboard []GameResultData `json:"leaderboard"` // sorted by score
	Winner      string           `json:"winner,omitempty"`
	Tie         bool             `json:"tie"`
	Finished    bool             `json:"finished"`
	Correct     int              `json:"correct"`
	Wrong       int              `json:"wrong"`
	Unanswered  int              `json:"unanswered"`
}
