// Package service wires storage, the consensus engine, the analysis
// collaborators and the integrity chain into the operations exposed over the
// API. All cross-component sequencing lives here; handlers stay thin.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/peerfact-labs/peerfact/pkg/analysis"
	"github.com/peerfact-labs/peerfact/pkg/chain"
	"github.com/peerfact-labs/peerfact/pkg/consensus"
	"github.com/peerfact-labs/peerfact/pkg/contracts"
	"github.com/peerfact-labs/peerfact/pkg/reporting"
	"github.com/peerfact-labs/peerfact/pkg/store"
)

// ErrValidation marks client input errors. Callers map it to a 400 response
// with errors.Is.
var ErrValidation = errors.New("validation failed")

const maxClaimLength = 5000

// Store is the persistence surface the service requires. The in-memory and
// SQLite backends both satisfy it.
type Store interface {
	store.UserStore
	store.ClaimStore
	store.VerificationLedger
	store.StatusStore
}

// Service implements every operation of the fact-checking core.
type Service struct {
	store       Store
	reputations store.ReputationStore
	engine      *consensus.Engine
	feedback    *consensus.FeedbackPolicy
	reporter    *reporting.Reporter
	analyzer    analysis.Analyzer
	chain       *chain.Chain
	logger      *slog.Logger
	clock       func() time.Time
}

// New assembles a service. The reputation store may be a different backend
// than the main store (Redis in multi-process deployments); when they are the
// same object both views observe the same state.
func New(st Store, reputations store.ReputationStore, analyzer analysis.Analyzer, ch *chain.Chain) *Service {
	engine := consensus.NewEngine(st, reputations)
	return &Service{
		store:       st,
		reputations: reputations,
		engine:      engine,
		feedback:    consensus.NewFeedbackPolicy(engine, reputations),
		reporter:    reporting.NewReporter(st, st, engine),
		analyzer:    analyzer,
		chain:       ch,
		logger:      slog.Default().With("component", "service"),
		clock:       time.Now,
	}
}

// WithClock overrides the clock for testing.
func (s *Service) WithClock(clock func() time.Time) *Service {
	s.clock = clock
	return s
}

// BootstrapUser registers a new participant at the default reputation.
func (s *Service) BootstrapUser(ctx context.Context, username string) (contracts.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return contracts.User{}, fmt.Errorf("%w: username is required", ErrValidation)
	}

	user := contracts.User{
		ID:         uuid.NewString(),
		Username:   username,
		Reputation: contracts.DefaultReputation,
		CreatedAt:  s.clock().UTC(),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return contracts.User{}, fmt.Errorf("create user: %w", err)
	}

	s.logger.InfoContext(ctx, "user bootstrapped", "user_id", user.ID, "username", username)
	return user, nil
}

// GetUser returns one user by id.
func (s *Service) GetUser(ctx context.Context, id string) (contracts.User, error) {
	return s.store.GetUser(ctx, id)
}

// CreateClaim registers a claim and runs the analysis collaborator over its
// text. Analysis is best effort: a failing analyzer logs a warning and the
// claim is stored without an annotation.
func (s *Service) CreateClaim(ctx context.Context, authorID, text, link string) (contracts.Claim, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return contracts.Claim{}, fmt.Errorf("%w: claim text is required", ErrValidation)
	}
	if len(text) > maxClaimLength {
		return contracts.Claim{}, fmt.Errorf("%w: claim text exceeds %d characters", ErrValidation, maxClaimLength)
	}
	if _, err := s.store.GetUser(ctx, authorID); err != nil {
		return contracts.Claim{}, fmt.Errorf("resolve author: %w", err)
	}

	claim := contracts.Claim{
		ID:        uuid.NewString(),
		AuthorID:  authorID,
		Text:      text,
		Link:      link,
		CreatedAt: s.clock().UTC(),
	}

	if s.analyzer != nil {
		annotation, err := s.analyzer.Analyze(ctx, text, link)
		if err != nil {
			s.logger.WarnContext(ctx, "claim analysis failed, storing without annotation",
				"claim_id", claim.ID, "error", err)
		} else {
			claim.Annotation = &annotation
		}
	}

	if err := s.store.CreateClaim(ctx, claim); err != nil {
		return contracts.Claim{}, fmt.Errorf("create claim: %w", err)
	}

	s.logger.InfoContext(ctx, "claim created", "claim_id", claim.ID, "author_id", authorID)
	return claim, nil
}

// decorate fills a claim's display verdict fields from a fresh computation.
func (s *Service) decorate(ctx context.Context, claim *contracts.Claim) error {
	verdict, err := s.engine.ComputeVerdict(ctx, claim.ID)
	if err != nil {
		return err
	}
	claim.SupportCount = verdict.SupportCount
	claim.RefuteCount = verdict.RefuteCount
	claim.UnclearCount = verdict.UnclearCount
	claim.Confidence = verdict.Confidence
	return nil
}

// ListClaims returns claims newest first, each carrying current verdict
// counters.
func (s *Service) ListClaims(ctx context.Context, limit int) ([]contracts.Claim, error) {
	claims, err := s.store.ListClaims(ctx, limit)
	if err != nil {
		return nil, err
	}
	for i := range claims {
		if err := s.decorate(ctx, &claims[i]); err != nil {
			return nil, err
		}
	}
	return claims, nil
}

// ClaimDetail is a claim with its verification records and current verdict.
type ClaimDetail struct {
	Claim         contracts.Claim          `json:"claim"`
	Verifications []contracts.Verification `json:"verifications"`
	Verdict       contracts.Verdict        `json:"verdict"`
}

// GetClaim returns one claim together with its ledger records and verdict.
func (s *Service) GetClaim(ctx context.Context, id string) (ClaimDetail, error) {
	claim, err := s.store.GetClaim(ctx, id)
	if err != nil {
		return ClaimDetail{}, err
	}
	verifications, err := s.store.VerificationsForClaim(ctx, id)
	if err != nil {
		return ClaimDetail{}, err
	}
	verdict, err := s.engine.ComputeVerdict(ctx, id)
	if err != nil {
		return ClaimDetail{}, err
	}
	claim.SupportCount = verdict.SupportCount
	claim.RefuteCount = verdict.RefuteCount
	claim.UnclearCount = verdict.UnclearCount
	claim.Confidence = verdict.Confidence
	return ClaimDetail{Claim: claim, Verifications: verifications, Verdict: verdict}, nil
}

// Verdict computes the current verdict for a claim. Unknown claims are an
// error even though the engine itself would return Unverified, so that reads
// of a mistyped id do not look like an empty consensus.
func (s *Service) Verdict(ctx context.Context, claimID string) (contracts.Verdict, error) {
	if _, err := s.store.GetClaim(ctx, claimID); err != nil {
		return contracts.Verdict{}, err
	}
	return s.engine.ComputeVerdict(ctx, claimID)
}

// VerificationInput is the submission payload for RecordVerification.
type VerificationInput struct {
	ClaimID     string
	AuthorID    string
	Stance      string
	SourceURL   string
	Explanation string
}

// VerificationReceipt reports the outcome of one accepted submission.
type VerificationReceipt struct {
	Verification contracts.Verification   `json:"verification"`
	Verdict      contracts.Verdict        `json:"verdict"`
	Feedback     consensus.FeedbackResult `json:"feedback"`
	BlockHash    string                   `json:"block_hash,omitempty"`
}

// RecordVerification validates a stance submission, appends it to the ledger,
// applies reputation feedback against the recomputed verdict and records both
// outcomes on the integrity chain. Validation happens before the append, so a
// rejected submission leaves the ledger untouched.
func (s *Service) RecordVerification(ctx context.Context, in VerificationInput) (VerificationReceipt, error) {
	stance, err := contracts.ParseStance(in.Stance)
	if err != nil {
		return VerificationReceipt{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if _, err := s.store.GetClaim(ctx, in.ClaimID); err != nil {
		return VerificationReceipt{}, fmt.Errorf("resolve claim: %w", err)
	}
	if _, err := s.store.GetUser(ctx, in.AuthorID); err != nil {
		return VerificationReceipt{}, fmt.Errorf("resolve author: %w", err)
	}

	v := contracts.Verification{
		ID:          uuid.NewString(),
		ClaimID:     in.ClaimID,
		AuthorID:    in.AuthorID,
		Stance:      stance,
		SourceURL:   in.SourceURL,
		Explanation: in.Explanation,
		CreatedAt:   s.clock().UTC(),
	}
	if err := s.store.AppendVerification(ctx, v); err != nil {
		return VerificationReceipt{}, fmt.Errorf("append verification: %w", err)
	}

	feedback, err := s.feedback.Apply(ctx, v)
	if err != nil {
		return VerificationReceipt{}, err
	}

	receipt := VerificationReceipt{
		Verification: v,
		Verdict:      feedback.Verdict,
		Feedback:     feedback,
	}

	if s.chain != nil {
		verifications, err := s.store.VerificationsForClaim(ctx, in.ClaimID)
		if err != nil {
			s.logger.WarnContext(ctx, "chain snapshot skipped", "claim_id", in.ClaimID, "error", err)
			return receipt, nil
		}
		receipt.BlockHash = s.chain.RecordClaimVerdict(in.ClaimID, verifications, feedback.Verdict)

		count, accuracy := s.userStats(ctx, in.AuthorID)
		s.chain.RecordReputation(in.AuthorID, feedback.NewReputation, count, accuracy)
	}

	s.logger.InfoContext(ctx, "verification recorded",
		"verification_id", v.ID, "claim_id", in.ClaimID, "author_id", in.AuthorID,
		"stance", stance, "verdict", feedback.Verdict.Label, "delta", feedback.Delta)
	return receipt, nil
}

// userStats computes a user's verification count and alignment accuracy
// against current verdicts. Failures degrade to zeroes; the stats only feed
// the chain snapshot and must never fail a submission.
func (s *Service) userStats(ctx context.Context, userID string) (int, float64) {
	all, err := s.store.AllVerifications(ctx)
	if err != nil {
		return 0, 0
	}

	verdicts := make(map[string]contracts.Stance)
	var total, aligned int
	for _, v := range all {
		if v.AuthorID != userID {
			continue
		}
		total++
		stance, ok := verdicts[v.ClaimID]
		if !ok {
			verdict, err := s.engine.ComputeVerdict(ctx, v.ClaimID)
			if err != nil {
				continue
			}
			stance = contracts.StanceForLabel(verdict.Label)
			verdicts[v.ClaimID] = stance
		}
		if v.Stance == stance {
			aligned++
		}
	}
	if total == 0 {
		return 0, 0
	}
	return total, float64(aligned) / float64(total)
}

// UserLeaderboard ranks users by reputation.
func (s *Service) UserLeaderboard(ctx context.Context, limit int) ([]reporting.UserRow, error) {
	return s.reporter.UserLeaderboard(ctx, limit)
}

// SourceLeaderboard ranks source domains by reliability.
func (s *Service) SourceLeaderboard(ctx context.Context, limit int) ([]reporting.SourceRow, error) {
	return s.reporter.SourceLeaderboard(ctx, limit)
}

// Analyze runs the analysis collaborator over arbitrary text without creating
// a claim.
func (s *Service) Analyze(ctx context.Context, text, sourceURL string) (contracts.Annotation, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return contracts.Annotation{}, fmt.Errorf("%w: text is required", ErrValidation)
	}
	if s.analyzer == nil {
		return contracts.Annotation{}, errors.New("no analyzer configured")
	}
	return s.analyzer.Analyze(ctx, text, sourceURL)
}

// ChainStatus returns integrity-chain statistics.
func (s *Service) ChainStatus() chain.Stats {
	return s.chain.Status()
}

// UserChainHistory returns a user's recorded reputation snapshots.
func (s *Service) UserChainHistory(userID string) chain.UserHistory {
	return s.chain.ReputationHistory(userID)
}

// ClaimChainHistory returns a claim's recorded verdict snapshots.
func (s *Service) ClaimChainHistory(claimID string) chain.ClaimHistory {
	return s.chain.VerdictHistory(claimID)
}

// RecordStatus stores a liveness ping from a named client.
func (s *Service) RecordStatus(ctx context.Context, clientName string) (store.StatusCheck, error) {
	clientName = strings.TrimSpace(clientName)
	if clientName == "" {
		return store.StatusCheck{}, fmt.Errorf("%w: client_name is required", ErrValidation)
	}
	check := store.StatusCheck{
		ID:         uuid.NewString(),
		ClientName: clientName,
		Timestamp:  s.clock().UTC(),
	}
	if err := s.store.RecordStatus(ctx, check); err != nil {
		return store.StatusCheck{}, fmt.Errorf("record status: %w", err)
	}
	return check, nil
}

// ListStatus returns recorded status checks.
func (s *Service) ListStatus(ctx context.Context) ([]store.StatusCheck, error) {
	return s.store.ListStatus(ctx)
}
