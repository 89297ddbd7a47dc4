package duel

import (
	"time"

	"campusduel/internal/model"
)

// Default timing parameters for new matches.
const (
	DefaultRoundSeconds     = 60
	DefaultCountdownSeconds = 15
)

// Deadline returns the instant the open round must be force-closed. Under
// countdown_after_first_guess no deadline exists until someone has guessed,
// in which case ok is false.
func Deadline(r *model.Round, cfg model.TimingConfig) (deadline time.Time, ok bool) {
	switch cfg.Mode {
	case model.TimingCountdownAfterFirstGuess:
		if r.FirstGuessAt == nil {
			return time.Time{}, false
		}
		return r.FirstGuessAt.Add(time.Duration(cfg.CountdownSeconds) * time.Second), true
	default:
		return r.OpenedAt.Add(time.Duration(cfg.RoundSeconds) * time.Second), true
	}
}

// Expired reports whether the round's deadline has passed at now.
func Expired(r *model.Round, cfg model.TimingConfig, now time.Time) bool {
	deadline, ok := Deadline(r, cfg)
	return ok && !now.Before(deadline)
}

// MissingPlayers lists players who have not submitted any guess yet.
func MissingPlayers(r *model.Round, players []model.Player) []string {
	var missing []string
	for _, p := range players {
		if r.Guesses[p.ID] == nil {
			missing = append(missing, p.ID)
		}
	}
	return missing
}

// Complete reports the closing condition shared by both timing modes: every
// player holds either a real or a timeout guess.
func Complete(r *model.Round, players []model.Player) bool {
	return len(MissingPlayers(r, players)) == 0
}

// TimeoutGuess builds the synthesized zero-score guess recorded for a
// player who missed the deadline. It carries no location and no floor.
func TimeoutGuess(now time.Time) *model.Guess {
	return &model.Guess{SubmittedAt: now, IsTimeout: true}
}
