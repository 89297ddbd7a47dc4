package model

// Player is an identity reference; profiles live in the identity service,
// the engine only carries id and display name.
type Player struct {
	ID          string `json:"id" bson:"id"`
	DisplayName string `json:"displayName" bson:"displayName"`
}

// JoinResponse is returned when a player creates or joins a match.
type JoinResponse struct {
	PlayerID string     `json:"playerId"`
	Token    string     `json:"token"`
	Match    *MatchView `json:"match"`
}
