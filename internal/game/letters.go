package game

import "github.com/scythe504/rosco-backend/internal"

// NextPendingIndex returns the first index after from, wrapping around the
// ring of total letters at most once, that has no entry in results. It
// returns false when every index already has a result.
func NextPendingIndex(results map[int]internal.Result, total, from int) (int, bool) {
	if total <= 0 {
		return 0, false
	}
	for i := 1; i <= total; i++ {
		idx := ((from+i)%total + total) % total
		if _, done := results[idx]; !done {
			return idx, true
		}
	}
	return 0, false
}

func nextPending(g *internal.GameState, from int) (int, bool) {
	return NextPendingIndex(g.Results, len(g.Letters), from)
}
