package duel

import (
	"sort"
	"time"

	"campusduel/internal/model"
)

// NewRound opens a fresh round over a catalog location. The guesses map is
// pre-seeded with a nil entry per player; the multiplier is fixed here and
// never changes while the round is open.
func NewRound(number int, loc *model.Location, players []model.Player, now time.Time) *model.Round {
	guesses := make(map[string]*model.Guess, len(players))
	for _, p := range players {
		guesses[p.ID] = nil
	}
	return &model.Round{
		Number:       number,
		ImageRef:     loc.ImageRef,
		TrueLocation: loc.TrueLocation,
		TrueFloor:    loc.TrueFloor,
		Multiplier:   RoundMultiplier(number),
		OpenedAt:     now,
		Guesses:      guesses,
	}
}

// FinalizeRound scores every guess, resolves damage, and produces the
// immutable history record plus the post-round health map. Pure; invoked
// exactly once per round by the synchronization layer.
func FinalizeRound(r *model.Round, players []model.Player, health map[string]int, now time.Time) (model.RoundRecord, map[string]int) {
	results := make(map[string]model.PlayerResult, len(players))
	for _, p := range players {
		results[p.ID] = Score(r.Guesses[p.ID], r.TrueLocation, r.TrueFloor)
	}

	a, b := players[0].ID, players[1].ID
	damage, damaged := ResolveDamage(a, results[a].Score, b, results[b].Score, r.Multiplier)
	healthAfter := ApplyDamage(health, damaged, damage)

	rec := model.RoundRecord{
		RoundNumber:   r.Number,
		ImageRef:      r.ImageRef,
		TrueLocation:  r.TrueLocation,
		TrueFloor:     r.TrueFloor,
		Multiplier:    r.Multiplier,
		Results:       results,
		Damage:        damage,
		DamagedPlayer: damaged,
		HealthAfter:   healthAfter,
		FinalizedAt:   now,
	}
	return rec, healthAfter
}

// DecideOutcome evaluates the win condition after a finalized round.
// totalScores must include the just-finalized round. Returns nil while the
// match continues. totalRounds of zero means endless: only health exhaustion
// ends the match.
func DecideOutcome(players []model.Player, healthAfter map[string]int, totalScores map[string]int, roundNumber, totalRounds int) *model.Outcome {
	anyDead := false
	for _, p := range players {
		if healthAfter[p.ID] <= 0 {
			anyDead = true
		}
	}
	roundsExhausted := totalRounds > 0 && roundNumber >= totalRounds
	if !anyDead && !roundsExhausted {
		return nil
	}

	return &model.Outcome{WinnerID: pickWinner(players, healthAfter, totalScores)}
}

// ForfeitOutcome ends the match in the opponent's favor regardless of
// health or score.
func ForfeitOutcome(leaverID, opponentID string) *model.Outcome {
	return &model.Outcome{WinnerID: opponentID, ForfeitBy: leaverID}
}

// pickWinner orders by health, then by total score across the history, then
// by lexical id so the result is deterministic on any client.
func pickWinner(players []model.Player, health map[string]int, totalScores map[string]int) string {
	ids := make([]string, len(players))
	for i, p := range players {
		ids[i] = p.ID
	}
	sort.Slice(ids, func(i, j int) bool {
		if health[ids[i]] != health[ids[j]] {
			return health[ids[i]] > health[ids[j]]
		}
		if totalScores[ids[i]] != totalScores[ids[j]] {
			return totalScores[ids[i]] > totalScores[ids[j]]
		}
		return ids[i] < ids[j]
	})
	return ids[0]
}
