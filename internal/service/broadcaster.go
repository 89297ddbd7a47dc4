package service

// Broadcaster interface for WebSocket broadcasting (avoids import cycle)
type Broadcaster interface {
	BroadcastToMatch(matchID string, msgType string, payload interface{})
	BroadcastToPlayer(matchID, playerID string, msgType string, payload interface{})
	DisconnectMatch(matchID string)
}
