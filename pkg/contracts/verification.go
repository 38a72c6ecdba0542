package contracts

import (
	"fmt"
	"time"
)

// Stance is one user's position on a claim.
type Stance string

const (
	StanceSupport Stance = "support"
	StanceRefute  Stance = "refute"
	StanceUnclear Stance = "unclear"
)

// Stances lists all stances in tie-break priority order. When accumulated
// weights are exactly equal the earlier stance wins, so verdicts are
// deterministic regardless of record ordering.
var Stances = []Stance{StanceSupport, StanceRefute, StanceUnclear}

// ParseStance validates s against the closed stance set.
func ParseStance(s string) (Stance, error) {
	switch Stance(s) {
	case StanceSupport, StanceRefute, StanceUnclear:
		return Stance(s), nil
	}
	return "", fmt.Errorf("invalid stance %q", s)
}

// Verification is one user's stance submission against a claim. Verifications
// are immutable once created; there is no edit or delete operation. Multiple
// verifications by the same user on the same claim are not deduplicated and
// each counts independently.
type Verification struct {
	ID          string    `json:"id"`
	ClaimID     string    `json:"claim_id"`
	AuthorID    string    `json:"author_id"`
	Stance      Stance    `json:"stance"`
	SourceURL   string    `json:"source_url,omitempty"`
	Explanation string    `json:"explanation,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
