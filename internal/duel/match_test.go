package duel

import (
	"testing"
	"time"

	"campusduel/internal/model"
)

func TestNewRoundSeedsGuessSlots(t *testing.T) {
	r := NewRound(3, testLocation(), testPlayers, time.Unix(1000, 0))
	if r.Number != 3 {
		t.Fatalf("round number = %d, want 3", r.Number)
	}
	if r.Multiplier != RoundMultiplier(3) {
		t.Fatalf("multiplier = %d, want %d", r.Multiplier, RoundMultiplier(3))
	}
	if len(r.Guesses) != 2 {
		t.Fatalf("expected a guess slot per player, got %d", len(r.Guesses))
	}
	for id, g := range r.Guesses {
		if g != nil {
			t.Fatalf("slot %s pre-filled: %+v", id, g)
		}
	}
}

func TestFinalizeRoundTimeoutScenario(t *testing.T) {
	// A submits 0.10 map units from truth; B never submits and is recorded
	// as a timeout. A must come out undamaged, B damaged by
	// score(A) * multiplier.
	opened := time.Unix(1000, 0)
	r := NewRound(1, testLocation(), testPlayers, opened)
	r.Guesses["p_alice"] = guessAt(r.TrueLocation.X+0.10, r.TrueLocation.Y)
	r.Guesses["p_bob"] = TimeoutGuess(opened.Add(20 * time.Second))

	health := map[string]int{"p_alice": StartingHealth, "p_bob": StartingHealth}
	rec, after := FinalizeRound(r, testPlayers, health, opened.Add(20*time.Second))

	scoreA := rec.Results["p_alice"].Score
	if scoreA <= 0 {
		t.Fatalf("expected positive score for A, got %d", scoreA)
	}
	if rec.Results["p_bob"].Score != 0 {
		t.Fatalf("timeout must score zero, got %d", rec.Results["p_bob"].Score)
	}
	if rec.Results["p_bob"].Distance != nil {
		t.Fatalf("timeout result must have nil distance")
	}
	if rec.DamagedPlayer != "p_bob" {
		t.Fatalf("damaged = %q, want p_bob", rec.DamagedPlayer)
	}
	if rec.Damage != scoreA*r.Multiplier {
		t.Fatalf("damage = %d, want %d", rec.Damage, scoreA*r.Multiplier)
	}
	if after["p_alice"] != StartingHealth {
		t.Fatalf("winner's health changed: %d", after["p_alice"])
	}
	if after["p_bob"] != StartingHealth-rec.Damage {
		t.Fatalf("loser's health = %d, want %d", after["p_bob"], StartingHealth-rec.Damage)
	}
}

func TestFinalizeRoundTie(t *testing.T) {
	r := NewRound(2, testLocation(), testPlayers, time.Unix(1000, 0))
	r.Guesses["p_alice"] = guessAt(r.TrueLocation.X+0.05, r.TrueLocation.Y)
	r.Guesses["p_bob"] = guessAt(r.TrueLocation.X-0.05, r.TrueLocation.Y)

	health := map[string]int{"p_alice": 2000, "p_bob": 1500}
	rec, after := FinalizeRound(r, testPlayers, health, time.Unix(1060, 0))

	if rec.Damage != 0 || rec.DamagedPlayer != "" {
		t.Fatalf("tie must deal no damage: %+v", rec)
	}
	if after["p_alice"] != 2000 || after["p_bob"] != 1500 {
		t.Fatalf("tie changed health: %v", after)
	}
}

func TestDecideOutcomeContinues(t *testing.T) {
	out := DecideOutcome(testPlayers,
		map[string]int{"p_alice": 100, "p_bob": 2000},
		map[string]int{"p_alice": 900, "p_bob": 1400},
		3, 5)
	if out != nil {
		t.Fatalf("match must continue, got %+v", out)
	}
}

func TestDecideOutcomeHealthExhaustion(t *testing.T) {
	out := DecideOutcome(testPlayers,
		map[string]int{"p_alice": 0, "p_bob": 700},
		map[string]int{"p_alice": 2000, "p_bob": 2500},
		4, 0)
	if out == nil || out.WinnerID != "p_bob" {
		t.Fatalf("survivor must win, got %+v", out)
	}
	if out.ForfeitBy != "" {
		t.Fatalf("health exhaustion is not a forfeit")
	}
}

func TestDecideOutcomeClassicRoundLimit(t *testing.T) {
	out := DecideOutcome(testPlayers,
		map[string]int{"p_alice": 1800, "p_bob": 900},
		map[string]int{"p_alice": 3000, "p_bob": 2100},
		5, 5)
	if out == nil || out.WinnerID != "p_alice" {
		t.Fatalf("higher health must win at the round limit, got %+v", out)
	}
}

func TestDecideOutcomeEndlessIgnoresRoundCount(t *testing.T) {
	out := DecideOutcome(testPlayers,
		map[string]int{"p_alice": 50, "p_bob": 60},
		map[string]int{"p_alice": 9000, "p_bob": 9100},
		40, 0)
	if out != nil {
		t.Fatalf("endless mode must only end on health exhaustion, got %+v", out)
	}
}

func TestDecideOutcomeTiebreaks(t *testing.T) {
	// Simultaneous zero-out: total score breaks the tie.
	out := DecideOutcome(testPlayers,
		map[string]int{"p_alice": 0, "p_bob": 0},
		map[string]int{"p_alice": 4100, "p_bob": 3900},
		6, 0)
	if out == nil || out.WinnerID != "p_alice" {
		t.Fatalf("higher total score must break a health tie, got %+v", out)
	}

	// Everything equal: lexical id order as the final deterministic break.
	out = DecideOutcome(testPlayers,
		map[string]int{"p_alice": 0, "p_bob": 0},
		map[string]int{"p_alice": 4000, "p_bob": 4000},
		6, 0)
	if out == nil || out.WinnerID != "p_alice" {
		t.Fatalf("lexical tiebreak failed, got %+v", out)
	}
}

func TestForfeitOutcome(t *testing.T) {
	out := ForfeitOutcome("p_bob", "p_alice")
	if out.WinnerID != "p_alice" || out.ForfeitBy != "p_bob" {
		t.Fatalf("unexpected forfeit outcome: %+v", out)
	}
}

func TestTotalScoreAcrossHistory(t *testing.T) {
	m := &model.Match{
		RoundHistory: []model.RoundRecord{
			{RoundNumber: 1, Results: map[string]model.PlayerResult{"p_alice": {Score: 700}, "p_bob": {Score: 200}}},
			{RoundNumber: 2, Results: map[string]model.PlayerResult{"p_alice": {Score: 300}, "p_bob": {Score: 950}}},
		},
	}
	if got := m.TotalScore("p_alice"); got != 1000 {
		t.Fatalf("total = %d, want 1000", got)
	}
	if got := m.TotalScore("p_bob"); got != 1150 {
		t.Fatalf("total = %d, want 1150", got)
	}
}
