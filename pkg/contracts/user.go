package contracts

import "time"

// DefaultReputation is the weight assigned to a user that has never been
// adjusted, and the fallback weight when a reputation lookup fails.
const DefaultReputation = 1.0

// User is a participant in the fact-checking community.
//
// Reputation is a scalar weight reflecting historical alignment with
// consensus. It is unbounded in both directions: no floor or ceiling is
// enforced anywhere in the core.
type User struct {
	ID         string    `json:"id"`
	Username   string    `json:"username"`
	Reputation float64   `json:"reputation"`
	CreatedAt  time.Time `json:"created_at"`
}
