package model

import "time"

// RoundView is the active round as seen by one player. The opponent's guess
// is never exposed while the round is open, only whether it was submitted.
type RoundView struct {
	Number            int        `json:"number"`
	ImageRef          string     `json:"imageRef"`
	Multiplier        int        `json:"multiplier"`
	OpenedAt          time.Time  `json:"openedAt"`
	FirstGuessAt      *time.Time `json:"firstGuessAt,omitempty"`
	OwnGuess          *Guess     `json:"ownGuess,omitempty"`
	OpponentSubmitted bool       `json:"opponentSubmitted"`
}

// MatchView is the client-facing read model for one player.
type MatchView struct {
	ID           string         `json:"id"`
	Players      []Player       `json:"players"`
	HostID       string         `json:"hostId"`
	Phase        MatchPhase     `json:"phase"`
	Timing       TimingConfig   `json:"timing"`
	TotalRounds  int            `json:"totalRounds"`
	Health       map[string]int `json:"health"`
	CurrentRound *RoundView     `json:"currentRound,omitempty"`
	RoundHistory []RoundRecord  `json:"roundHistory"`
	Outcome      *Outcome       `json:"outcome,omitempty"`
}

// NewMatchView projects the shared record into what viewerID is allowed to
// see. True location and opponent guess for the active round are withheld.
func NewMatchView(m *Match, viewerID string) *MatchView {
	view := &MatchView{
		ID:           m.ID,
		Players:      m.Players,
		HostID:       m.HostID,
		Phase:        m.Phase,
		Timing:       m.Timing,
		TotalRounds:  m.TotalRounds,
		Health:       m.Health,
		RoundHistory: m.RoundHistory,
		Outcome:      m.Outcome,
	}
	if m.CurrentRound != nil {
		r := m.CurrentRound
		rv := &RoundView{
			Number:       r.Number,
			ImageRef:     r.ImageRef,
			Multiplier:   r.Multiplier,
			OpenedAt:     r.OpenedAt,
			FirstGuessAt: r.FirstGuessAt,
			OwnGuess:     r.Guesses[viewerID],
		}
		for id, g := range r.Guesses {
			if id != viewerID && g != nil {
				rv.OpponentSubmitted = true
			}
		}
		view.CurrentRound = rv
	}
	return view
}
