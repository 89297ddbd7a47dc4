package duel

import (
	"testing"
	"time"

	"campusduel/internal/model"
)

var testPlayers = []model.Player{
	{ID: "p_alice", DisplayName: "Alice"},
	{ID: "p_bob", DisplayName: "Bob"},
}

func testLocation() *model.Location {
	return &model.Location{
		ID:           "loc_1",
		ImageRef:     "photos/library-steps.jpg",
		TrueLocation: model.Point{X: 0.42, Y: 0.31},
	}
}

func fixedTiming(seconds int) model.TimingConfig {
	return model.TimingConfig{Mode: model.TimingSimultaneousFixed, RoundSeconds: seconds}
}

func countdownTiming(seconds int) model.TimingConfig {
	return model.TimingConfig{Mode: model.TimingCountdownAfterFirstGuess, CountdownSeconds: seconds}
}

func TestSimultaneousFixedDeadline(t *testing.T) {
	opened := time.Unix(1000, 0)
	r := NewRound(1, testLocation(), testPlayers, opened)
	cfg := fixedTiming(20)

	deadline, ok := Deadline(r, cfg)
	if !ok {
		t.Fatalf("fixed mode must always have a deadline")
	}
	if !deadline.Equal(opened.Add(20 * time.Second)) {
		t.Fatalf("deadline = %v, want openedAt+20s", deadline)
	}

	if Expired(r, cfg, opened.Add(19*time.Second)) {
		t.Fatalf("round expired before the window closed")
	}
	if !Expired(r, cfg, opened.Add(20*time.Second)) {
		t.Fatalf("round must expire exactly at the deadline")
	}
}

func TestCountdownHasNoDeadlineBeforeFirstGuess(t *testing.T) {
	opened := time.Unix(1000, 0)
	r := NewRound(1, testLocation(), testPlayers, opened)
	cfg := countdownTiming(10)

	if _, ok := Deadline(r, cfg); ok {
		t.Fatalf("no deadline may exist before the first guess")
	}
	if Expired(r, cfg, opened.Add(time.Hour)) {
		t.Fatalf("round expired with nobody having guessed")
	}
}

func TestCountdownStartsAtFirstGuess(t *testing.T) {
	opened := time.Unix(1000, 0)
	r := NewRound(1, testLocation(), testPlayers, opened)
	cfg := countdownTiming(10)

	first := opened.Add(3 * time.Second)
	r.FirstGuessAt = &first
	r.Guesses["p_alice"] = guessAt(0.4, 0.3)

	deadline, ok := Deadline(r, cfg)
	if !ok {
		t.Fatalf("deadline must exist once someone guessed")
	}
	if !deadline.Equal(first.Add(10 * time.Second)) {
		t.Fatalf("deadline = %v, want firstGuessAt+10s", deadline)
	}
	if !Expired(r, cfg, first.Add(10*time.Second)) {
		t.Fatalf("laggard must time out when the countdown elapses")
	}
}

func TestMissingPlayersAndCompletion(t *testing.T) {
	r := NewRound(2, testLocation(), testPlayers, time.Unix(1000, 0))

	missing := MissingPlayers(r, testPlayers)
	if len(missing) != 2 {
		t.Fatalf("fresh round should miss both players, got %v", missing)
	}
	if Complete(r, testPlayers) {
		t.Fatalf("fresh round cannot be complete")
	}

	r.Guesses["p_alice"] = guessAt(0.1, 0.1)
	if Complete(r, testPlayers) {
		t.Fatalf("one guess does not complete the round")
	}

	// A timeout guess counts toward completion the same as a real one.
	r.Guesses["p_bob"] = TimeoutGuess(time.Unix(1020, 0))
	if !Complete(r, testPlayers) {
		t.Fatalf("round with a guess per player must be complete")
	}
}

func TestTimeoutGuessShape(t *testing.T) {
	g := TimeoutGuess(time.Unix(55, 0))
	if !g.IsTimeout {
		t.Fatalf("timeout guess must be marked")
	}
	if g.Location != nil || g.Floor != nil {
		t.Fatalf("timeout guess carries no location or floor: %+v", g)
	}
}
