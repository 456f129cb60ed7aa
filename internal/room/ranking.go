package room

import "sort"

// pointsByRank holds the award for ranks 1..len; every later rank gets minPoints.
var pointsByRank = []int{10, 7, 5}

const minPoints = 2

// PointsFor returns the points awarded for a 1-indexed rank.
func PointsFor(rank int) int {
	if rank >= 1 && rank <= len(pointsByRank) {
		return pointsByRank[rank-1]
	}
	return minPoints
}

// Rank orders players and writes Rank and Points back onto each of them.
//
// Ordering:
//   - Winners above non-winners.
//   - Among winners, earlier WinTime first.
//   - Among non-winners, fewer rounds used first.
//
// Remaining ties keep join order. The input slice itself is not reordered.
func Rank(players []*Player) {
	ordered := append([]*Player(nil), players...)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.Won != b.Won {
			return a.Won
		}
		if a.Won {
			return a.WinTime.Before(b.WinTime)
		}
		return a.RoundsUsed() < b.RoundsUsed()
	})
	for i, p := range ordered {
		p.Rank = i + 1
		p.Points = PointsFor(p.Rank)
	}
}
