package game

import (
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/scythe504/rosco-backend/internal"
)

// =============================================================================
// ANSWER HANDLING
// =============================================================================

// Outcome reports what a player action did to the room.
type Outcome string

const (
	OutcomeIgnored  Outcome = "ignored"
	OutcomeCorrect  Outcome = "correct"
	OutcomeWrong    Outcome = "wrong"
	OutcomePassed   Outcome = "passed"
	OutcomeFinished Outcome = "finished"
)

// NormalizeAnswer trims surrounding whitespace and upper-cases s.
func NormalizeAnswer(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// SubmitAnswer grades the turn holder's answer to the current letter. The
// room is paused for the reveal window and the board advances when it ends.
func (r *Registry) SubmitAnswer(code, playerID, answer string) Outcome {
	room, ok := r.Get(code)
	if !ok {
		return OutcomeIgnored
	}
	room.Mu.Lock()
	defer room.Mu.Unlock()

	if !r.actionableLocked(room, playerID) {
		log.Debug().Str("room", room.Code).Str("player", playerID).Msg("[SubmitAnswer] ignored")
		return OutcomeIgnored
	}

	g := room.Game
	idx := g.LetterIndex
	letter, q := g.CurrentQuestion()
	player := room.Players[g.Turn]
	correct := NormalizeAnswer(answer) == NormalizeAnswer(q.Answer)

	delete(g.Passed, idx)
	outcome := OutcomeCorrect
	if correct {
		g.Results[idx] = internal.ResultCorrect
		player.AddScore(1)
		player.CorrectAnswers++
	} else {
		outcome = OutcomeWrong
		g.Results[idx] = internal.ResultWrong
		player.AddScore(-r.rules.WrongPenalty)
		player.WrongAnswers++
		g.Turn = g.OtherTurn()
	}

	g.Paused = true
	g.Reveal = &internal.Reveal{Index: idx, Answer: q.Answer, Correct: correct}
	room.LastActivity = r.now()
	r.armRevealLocked(room, idx)

	log.Debug().Str("room", room.Code).Str("player", playerID).Str("letter", letter).
		Str("outcome", string(outcome)).Int("score", player.Score).Msg("[SubmitAnswer] answer graded")
	r.publishLocked(room)
	return outcome
}

// Pasapalabra passes the current letter to the other player.
func (r *Registry) Pasapalabra(code, playerID string) Outcome {
	room, ok := r.Get(code)
	if !ok {
		return OutcomeIgnored
	}
	room.Mu.Lock()
	defer room.Mu.Unlock()

	if !r.actionableLocked(room, playerID) {
		log.Debug().Str("room", room.Code).Str("player", playerID).Msg("[Pasapalabra] ignored")
		return OutcomeIgnored
	}

	g := room.Game
	idx := g.LetterIndex
	g.Passed[idx] = true
	room.Players[g.Turn].Passes++
	room.LastActivity = r.now()

	outcome := OutcomePassed
	if next, ok := nextPending(g, idx); ok {
		g.LetterIndex = next
		g.Turn = g.OtherTurn()
	} else {
		outcome = OutcomeFinished
		r.finishLocked(room)
	}

	log.Debug().Str("room", room.Code).Str("player", playerID).Int("letterIndex", g.LetterIndex).
		Msg("[Pasapalabra] letter passed")
	r.publishLocked(room)
	return outcome
}

func (r *Registry) actionableLocked(room *internal.Room, playerID string) bool {
	g := room.Game
	return !room.Closed && g.Started && !g.Finished && !g.Paused && room.IsTurnOf(playerID)
}

func (r *Registry) finishLocked(room *internal.Room) {
	room.Game.Finished = true
	room.FinishedAt = r.now()
	log.Info().Str("room", room.Code).Msg("[finish] game finished")
}
