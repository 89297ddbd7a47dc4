package model

import "time"

type MatchPhase string

const (
	PhaseLobby       MatchPhase = "lobby"
	PhaseGuessing    MatchPhase = "guessing"
	PhaseRoundResult MatchPhase = "round_result"
	PhaseGameOver    MatchPhase = "game_over"
)

type TimingMode string

const (
	// TimingSimultaneousFixed gives both players the same fixed window,
	// started when the round opens.
	TimingSimultaneousFixed TimingMode = "simultaneous_fixed"
	// TimingCountdownAfterFirstGuess has no deadline until one player
	// submits; the other then gets a short countdown.
	TimingCountdownAfterFirstGuess TimingMode = "countdown_after_first_guess"
)

// TimingConfig is fixed at match creation.
type TimingConfig struct {
	Mode             TimingMode `json:"mode" bson:"mode"`
	RoundSeconds     int        `json:"roundSeconds" bson:"roundSeconds"`         // simultaneous_fixed window
	CountdownSeconds int        `json:"countdownSeconds" bson:"countdownSeconds"` // post-first-guess countdown
}

// Point is a position in normalized campus-map units.
type Point struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// Guess is one player's submission for a round. A timeout guess has
// IsTimeout set, no location and no floor.
type Guess struct {
	Location    *Point    `json:"location,omitempty" bson:"location,omitempty"`
	Floor       *int      `json:"floor,omitempty" bson:"floor,omitempty"`
	SubmittedAt time.Time `json:"submittedAt" bson:"submittedAt"`
	IsTimeout   bool      `json:"isTimeout" bson:"isTimeout"`
}

// Round is the currently active round, before it is finalized into a
// RoundRecord. Guesses holds an entry per player id; nil means not yet
// submitted.
type Round struct {
	Number       int               `json:"number" bson:"number"`
	ImageRef     string            `json:"imageRef" bson:"imageRef"`
	TrueLocation Point             `json:"trueLocation" bson:"trueLocation"`
	TrueFloor    *int              `json:"trueFloor,omitempty" bson:"trueFloor,omitempty"`
	Multiplier   int               `json:"multiplier" bson:"multiplier"`
	OpenedAt     time.Time         `json:"openedAt" bson:"openedAt"`
	FirstGuessAt *time.Time        `json:"firstGuessAt,omitempty" bson:"firstGuessAt,omitempty"`
	Guesses      map[string]*Guess `json:"guesses" bson:"guesses"`
}

// PlayerResult is one player's outcome for a finalized round. Distance is
// nil when the player never placed a guess.
type PlayerResult struct {
	Distance *float64 `json:"distance,omitempty" bson:"distance,omitempty"`
	Score    int      `json:"score" bson:"score"`
	Guess    *Guess   `json:"guess,omitempty" bson:"guess,omitempty"`
}

// RoundRecord is immutable once appended to the match history.
type RoundRecord struct {
	RoundNumber   int                     `json:"roundNumber" bson:"roundNumber"`
	ImageRef      string                  `json:"imageRef" bson:"imageRef"`
	TrueLocation  Point                   `json:"trueLocation" bson:"trueLocation"`
	TrueFloor     *int                    `json:"trueFloor,omitempty" bson:"trueFloor,omitempty"`
	Multiplier    int                     `json:"multiplier" bson:"multiplier"`
	Results       map[string]PlayerResult `json:"results" bson:"results"`
	Damage        int                     `json:"damage" bson:"damage"`
	DamagedPlayer string                  `json:"damagedPlayer,omitempty" bson:"damagedPlayer,omitempty"` // empty on a tie
	HealthAfter   map[string]int          `json:"healthAfter" bson:"healthAfter"`
	FinalizedAt   time.Time               `json:"finalizedAt" bson:"finalizedAt"`
}

// Outcome exists only once a match is over; Match.Outcome is non-nil iff
// Phase is game_over.
type Outcome struct {
	WinnerID  string `json:"winnerId" bson:"winnerId"`
	ForfeitBy string `json:"forfeitBy,omitempty" bson:"forfeitBy,omitempty"`
}

// Match is the shared record both clients play against. All mutations go
// through conditional updates in the repository so that guess intake is
// write-partitioned per player and finalization applies at most once.
type Match struct {
	ID            string         `json:"id" bson:"_id"`
	Players       []Player       `json:"players" bson:"players"` // exactly two once the lobby fills
	HostID        string         `json:"hostId" bson:"hostId"`
	Phase         MatchPhase     `json:"phase" bson:"phase"`
	Timing        TimingConfig   `json:"timing" bson:"timing"`
	TotalRounds   int            `json:"totalRounds" bson:"totalRounds"` // 0 = endless
	Health        map[string]int `json:"health" bson:"health"`
	CurrentRound  *Round         `json:"currentRound,omitempty" bson:"currentRound,omitempty"`
	RoundHistory  []RoundRecord  `json:"roundHistory" bson:"roundHistory"`
	UsedImageRefs []string       `json:"usedImageRefs" bson:"usedImageRefs"`
	Outcome       *Outcome       `json:"outcome,omitempty" bson:"outcome,omitempty"`
	CreatedAt     time.Time      `json:"createdAt" bson:"createdAt"`
}

// PlayerByID returns the player entry for id, or nil.
func (m *Match) PlayerByID(id string) *Player {
	for i := range m.Players {
		if m.Players[i].ID == id {
			return &m.Players[i]
		}
	}
	return nil
}

// OpponentOf returns the other player's id, or "" if id is not in the match.
func (m *Match) OpponentOf(id string) string {
	for i := range m.Players {
		if m.Players[i].ID != id {
			continue
		}
		for j := range m.Players {
			if j != i {
				return m.Players[j].ID
			}
		}
	}
	return ""
}

// HasPlayer reports whether id is one of the match players.
func (m *Match) HasPlayer(id string) bool {
	return m.PlayerByID(id) != nil
}

// TotalScore sums a player's round scores across the finalized history.
func (m *Match) TotalScore(id string) int {
	total := 0
	for _, rec := range m.RoundHistory {
		if res, ok := rec.Results[id]; ok {
			total += res.Score
		}
	}
	return total
}
