package duel

import (
	"math"

	"campusduel/internal/model"
)

// Scoring calibration. Distances are in normalized campus-map units where
// the map diagonal is on the order of 1.0.
const (
	MaxScore      = 1000
	PerfectRadius = 0.005 // at or inside: full score
	ZeroRadius    = 0.75  // at or beyond: zero

	// A wrong floor halves the distance score instead of zeroing it.
	floorPenaltyNum = 1
	floorPenaltyDen = 2
)

// Distance is the Euclidean distance between two map points.
func Distance(a, b model.Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// Score maps one player's guess against the round truth. A nil guess or a
// guess without a location (timeout) scores zero with no distance. The
// function is pure: both clients must render identical results from the
// same record.
func Score(g *model.Guess, trueLocation model.Point, trueFloor *int) model.PlayerResult {
	if g == nil || g.Location == nil {
		return model.PlayerResult{Score: 0, Guess: g}
	}

	d := Distance(*g.Location, trueLocation)
	s := distanceScore(d)

	// Floor only matters where the location has one.
	if trueFloor != nil && s > 0 {
		if g.Floor == nil || *g.Floor != *trueFloor {
			s = s * floorPenaltyNum / floorPenaltyDen
		}
	}

	return model.PlayerResult{Distance: &d, Score: s, Guess: g}
}

// distanceScore decays quadratically from MaxScore at PerfectRadius down to
// zero at ZeroRadius.
func distanceScore(d float64) int {
	switch {
	case d <= PerfectRadius:
		return MaxScore
	case d >= ZeroRadius:
		return 0
	}
	frac := (ZeroRadius - d) / (ZeroRadius - PerfectRadius)
	return int(math.Round(MaxScore * frac * frac))
}
