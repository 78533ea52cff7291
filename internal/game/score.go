package game

import (
	"slices"

	"github.com/scythe504/rosco-backend/internal"
)

// Results compiles the leaderboard and board totals of a room. It can be
// called at any time; Finished tells whether the game is over.
func (r *Registry) Results(code string) (internal.FinalResults, error) {
	room, ok := r.Get(code)
	if !ok {
		return internal.FinalResults{}, ErrRoomNotFound
	}
	room.Mu.Lock()
	defer room.Mu.Unlock()
	if room.Closed {
		return internal.FinalResults{}, ErrRoomNotFound
	}
	return CalculateFinalResults(room), nil
}

// CalculateFinalResults builds results from a room. Callers hold room.Mu.
func CalculateFinalResults(room *internal.Room) internal.FinalResults {
	results := internal.FinalResults{Finished: room.Game.Finished}

	playerData := make([]internal.GameResultData, 0, len(room.Players))
	for _, player := range room.Players {
		playerData = append(playerData, internal.GameResultData{
			PlayerID: player.Id,
			Username: player.Username,
			Score:    player.Score,
			Correct:  player.CorrectAnswers,
			Wrong:    player.WrongAnswers,
			Passes:   player.Passes,
		})
	}
	slices.SortStableFunc(playerData, func(a, b internal.GameResultData) int {
		return b.Score - a.Score
	})
	for idx := range playerData {
		playerData[idx].Position = idx + 1
	}
	results.Leaderboard = playerData

	switch {
	case len(playerData) > 1 && playerData[0].Score == playerData[1].Score:
		results.Tie = true
	case len(playerData) > 0:
		results.Winner = playerData[0].Username
	}

	for _, res := range room.Game.Results {
		switch res {
		case internal.ResultCorrect:
			results.Correct++
		case internal.ResultWrong:
			results.Wrong++
		}
	}
	results.Unanswered = len(room.Game.Letters) - results.Correct - results.Wrong
	return results
}
