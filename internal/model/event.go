package model

// MatchEventType labels change notifications on the shared match record.
type MatchEventType string

const (
	EventPlayerJoined   MatchEventType = "player_joined"
	EventMatchStarted   MatchEventType = "match_started"
	EventGuessSubmitted MatchEventType = "guess_submitted"
	EventRoundFinalized MatchEventType = "round_finalized"
	EventRoundOpened    MatchEventType = "round_opened"
	EventMatchOver      MatchEventType = "match_over"
)

// MatchEvent is the thin push notification fanned out whenever the shared
// record changes. Clients re-read their view on receipt; the event itself
// never carries another player's guess.
type MatchEvent struct {
	Type     MatchEventType `json:"type"`
	MatchID  string         `json:"matchId"`
	PlayerID string         `json:"playerId,omitempty"` // actor, where meaningful
	Round    int            `json:"round,omitempty"`
}
