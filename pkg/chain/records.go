package chain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/peerfact-labs/peerfact/pkg/contracts"
)

// RecordReputation records a reputation snapshot for a user and mines it
// immediately. Returns the new block hash.
func (c *Chain) RecordReputation(userID string, reputation float64, verificationCount int, accuracy float64) string {
	c.AddTransaction(TxReputationUpdate, map[string]any{
		"user_id":            userID,
		"reputation":         reputation,
		"verification_count": verificationCount,
		"accuracy":           accuracy,
	})
	return c.MinePending()
}

// RecordClaimVerdict records a claim's verdict snapshot together with a hash
// over the verification set that produced it, and mines it immediately.
func (c *Chain) RecordClaimVerdict(claimID string, verifications []contracts.Verification, verdict contracts.Verdict) string {
	c.AddTransaction(TxClaimVerdict, map[string]any{
		"claim_id":           claimID,
		"verification_count": len(verifications),
		"verdict":            verdictData(verdict),
		"verification_hash":  hashVerifications(verifications),
	})
	return c.MinePending()
}

func verdictData(v contracts.Verdict) map[string]any {
	return map[string]any{
		"label":      v.Label,
		"confidence": v.Confidence,
		"support":    v.SupportCount,
		"refute":     v.RefuteCount,
		"unclear":    v.UnclearCount,
	}
}

func hashVerifications(verifications []contracts.Verification) string {
	raw, err := json.Marshal(verifications)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

// UserHistory is the tamper-evidence report for one user's reputation.
type UserHistory struct {
	UserID         string          `json:"user_id"`
	RecordsFound   int             `json:"records_found"`
	History        []HistoryRecord `json:"reputation_history"`
	ChainIntegrity bool            `json:"chain_integrity"`
}

// ReputationHistory returns every recorded reputation snapshot for a user
// plus a whole-chain integrity flag.
func (c *Chain) ReputationHistory(userID string) UserHistory {
	records := c.transactions(TxReputationUpdate, "user_id", userID)
	ok, _ := c.Verify()
	return UserHistory{
		UserID:         userID,
		RecordsFound:   len(records),
		History:        records,
		ChainIntegrity: ok,
	}
}

// ClaimHistory is the tamper-evidence report for one claim's verdicts.
type ClaimHistory struct {
	ClaimID        string          `json:"claim_id"`
	RecordsFound   int             `json:"records_found"`
	History        []HistoryRecord `json:"verdict_history"`
	ChainIntegrity bool            `json:"chain_integrity"`
}

// VerdictHistory returns every recorded verdict snapshot for a claim plus a
// whole-chain integrity flag.
func (c *Chain) VerdictHistory(claimID string) ClaimHistory {
	records := c.transactions(TxClaimVerdict, "claim_id", claimID)
	ok, _ := c.Verify()
	return ClaimHistory{
		ClaimID:        claimID,
		RecordsFound:   len(records),
		History:        records,
		ChainIntegrity: ok,
	}
}
