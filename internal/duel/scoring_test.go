package duel

import (
	"testing"
	"time"

	"campusduel/internal/model"
)

func intPtr(n int) *int { return &n }

func guessAt(x, y float64) *model.Guess {
	return &model.Guess{Location: &model.Point{X: x, Y: y}, SubmittedAt: time.Unix(100, 0)}
}

func TestScoreIsDeterministic(t *testing.T) {
	truth := model.Point{X: 0.3, Y: 0.7}
	g := guessAt(0.45, 0.52)

	first := Score(g, truth, nil)
	second := Score(g, truth, nil)

	if first.Score != second.Score {
		t.Fatalf("score not deterministic: %d vs %d", first.Score, second.Score)
	}
	if *first.Distance != *second.Distance {
		t.Fatalf("distance not deterministic: %f vs %f", *first.Distance, *second.Distance)
	}
}

func TestScorePerfectGuess(t *testing.T) {
	truth := model.Point{X: 0.5, Y: 0.5}
	res := Score(guessAt(0.5, 0.5), truth, nil)
	if res.Score != MaxScore {
		t.Fatalf("distance 0 score = %d, want %d", res.Score, MaxScore)
	}
	if res.Distance == nil || *res.Distance != 0 {
		t.Fatalf("expected zero distance, got %v", res.Distance)
	}
}

func TestScoreBeyondZeroRadius(t *testing.T) {
	truth := model.Point{X: 0, Y: 0}
	res := Score(guessAt(1.0, 1.0), truth, nil)
	if res.Score != 0 {
		t.Fatalf("far guess score = %d, want 0", res.Score)
	}
	if res.Distance == nil {
		t.Fatalf("a real miss must still carry a distance")
	}
}

func TestScoreDecaysMonotonically(t *testing.T) {
	truth := model.Point{X: 0, Y: 0}
	prev := MaxScore + 1
	for d := 0.0; d <= 0.8; d += 0.05 {
		res := Score(guessAt(d, 0), truth, nil)
		if res.Score > prev {
			t.Fatalf("score increased with distance: %d after %d at d=%f", res.Score, prev, d)
		}
		prev = res.Score
	}
}

func TestScoreTimeoutGuess(t *testing.T) {
	truth := model.Point{X: 0.5, Y: 0.5}
	res := Score(TimeoutGuess(time.Unix(200, 0)), truth, intPtr(2))
	if res.Score != 0 {
		t.Fatalf("timeout score = %d, want 0", res.Score)
	}
	if res.Distance != nil {
		t.Fatalf("timeout must have nil distance, got %f", *res.Distance)
	}
}

func TestScoreNilGuess(t *testing.T) {
	res := Score(nil, model.Point{X: 0.1, Y: 0.1}, nil)
	if res.Score != 0 || res.Distance != nil {
		t.Fatalf("nil guess should score 0 with no distance, got %+v", res)
	}
}

func TestScoreFloorPenalty(t *testing.T) {
	truth := model.Point{X: 0.5, Y: 0.5}

	right := guessAt(0.52, 0.5)
	right.Floor = intPtr(3)
	wrong := guessAt(0.52, 0.5)
	wrong.Floor = intPtr(1)
	missing := guessAt(0.52, 0.5)

	correct := Score(right, truth, intPtr(3))
	penalized := Score(wrong, truth, intPtr(3))
	noFloor := Score(missing, truth, intPtr(3))

	if correct.Score <= 0 {
		t.Fatalf("expected positive score for near guess, got %d", correct.Score)
	}
	if penalized.Score != correct.Score/2 {
		t.Fatalf("wrong floor score = %d, want half of %d", penalized.Score, correct.Score)
	}
	if noFloor.Score != correct.Score/2 {
		t.Fatalf("missing floor score = %d, want half of %d", noFloor.Score, correct.Score)
	}
	if penalized.Score == 0 {
		t.Fatalf("wrong floor must penalize, not zero out")
	}
}

func TestScoreFloorIgnoredWithoutFloorConcept(t *testing.T) {
	truth := model.Point{X: 0.5, Y: 0.5}
	g := guessAt(0.52, 0.5)
	g.Floor = intPtr(7)

	withFloor := Score(g, truth, nil)
	plain := Score(guessAt(0.52, 0.5), truth, nil)
	if withFloor.Score != plain.Score {
		t.Fatalf("floor must be ignored when location has none: %d vs %d", withFloor.Score, plain.Score)
	}
}
