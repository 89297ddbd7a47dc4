package duel

// StartingHealth is each player's pool at match creation.
const StartingHealth = 3000

// RoundMultiplier is the damage escalation factor for a round. It steps up
// every two rounds: 1, 1, 2, 2, 3, 3, ...
func RoundMultiplier(roundNumber int) int {
	return (roundNumber + 1) / 2
}

// ResolveDamage determines who takes damage for a round and how much. The
// lower-scoring player takes the score difference scaled by the multiplier.
// Equal scores are a tie: zero damage, nobody damaged.
func ResolveDamage(idA string, scoreA int, idB string, scoreB int, multiplier int) (damage int, damagedPlayer string) {
	switch {
	case scoreA == scoreB:
		return 0, ""
	case scoreA > scoreB:
		return (scoreA - scoreB) * multiplier, idB
	default:
		return (scoreB - scoreA) * multiplier, idA
	}
}

// ApplyDamage returns a new health map with the damage applied, clamped at
// zero. The undamaged player's pool is untouched.
func ApplyDamage(health map[string]int, damagedPlayer string, damage int) map[string]int {
	after := make(map[string]int, len(health))
	for id, hp := range health {
		after[id] = hp
	}
	if damagedPlayer == "" || damage <= 0 {
		return after
	}
	hp := after[damagedPlayer] - damage
	if hp < 0 {
		hp = 0
	}
	after[damagedPlayer] = hp
	return after
}
