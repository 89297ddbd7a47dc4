package model

import "github.com/golang-jwt/jwt/v5"

// PlayerClaims is the match-scoped JWT payload issued on create/join.
type PlayerClaims struct {
	MatchID  string `json:"matchId"`
	PlayerID string `json:"playerId"`
	jwt.RegisteredClaims
}
