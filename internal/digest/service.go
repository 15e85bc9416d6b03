// internal/digest/service.go

package digest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/aicompleteme/completeme-backend/internal/ai"
)

var (
	ErrMissingUserID   = errors.New("missing user id")
	ErrInvalidUserID   = errors.New("invalid user id")
	ErrPremiumRequired = errors.New("premium subscription required")
)

const dateLayout = "2006-01-02"

// GatePolicy decides whether a user may generate a digest.
type GatePolicy func(ctx context.Context, userID string) (bool, error)

// AllowAll is the beta policy: every authenticated user is let through.
func AllowAll(ctx context.Context, userID string) (bool, error) {
	return true, nil
}

// PremiumGate checks the stored premium flag. Swapping this in re-enables
// subscription gating without touching the pipeline.
func PremiumGate(repo Repository) GatePolicy {
	return func(ctx context.Context, userID string) (bool, error) {
		return repo.IsPremium(ctx, userID)
	}
}

// Service orchestrates the digest pipeline: candidate selection, narrative
// generation and the daily upsert.
type Service interface {
	GenerateDigest(ctx context.Context, userID string) (*Digest, error)
	GetTodayDigest(ctx context.Context, userID string) (*Digest, error)
	GenerateDailyDigests(ctx context.Context) error
}

type service struct {
	repo      Repository
	selector  Selector
	generator *Generator
	cache     *redis.Client
	gate      GatePolicy
	topN      int
}

// NewService wires the digest pipeline. cache may be nil; the service then
// serves reads straight from Postgres.
func NewService(repo Repository, selector Selector, generator *Generator, cache *redis.Client, gate GatePolicy, topN int) Service {
	if gate == nil {
		gate = AllowAll
	}
	if topN <= 0 {
		topN = 3
	}
	return &service{
		repo:      repo,
		selector:  selector,
		generator: generator,
		cache:     cache,
		gate:      gate,
		topN:      topN,
	}
}

// GenerateDigest runs the full pipeline for one user and persists the result.
// The contract is "always regenerate on request": an existing row for today is
// overwritten in place, never duplicated.
func (s *service) GenerateDigest(ctx context.Context, userID string) (*Digest, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}
	if _, err := uuid.Parse(userID); err != nil {
		return nil, ErrInvalidUserID
	}

	allowed, err := s.gate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("gate check: %w", err)
	}
	if !allowed {
		return nil, ErrPremiumRequired
	}

	started := time.Now()
	today := started.Format(dateLayout)

	profile, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	candidates, err := s.selector.SelectTopCandidates(ctx, userID, s.topN)
	if err != nil {
		return nil, err
	}
	for _, sc := range candidates {
		RecordCompatibilityScore(float64(sc.Score))
	}

	content, live, err := s.generator.Generate(ctx, profile, candidates)
	if err != nil {
		RecordAIOutcome(aiOutcome(err))
		return nil, err
	}
	RecordAIOutcome("ok")

	digest := s.assembleDigest(userID, today, candidates, content)

	persisted, err := s.repo.UpsertDigest(ctx, digest)
	if err != nil {
		return nil, err
	}

	s.cacheDigest(ctx, persisted)
	RecordDigestGenerated(live)
	RecordGenerationTime(time.Since(started))

	return persisted, nil
}

// GetTodayDigest returns today's persisted digest, cache-first.
func (s *service) GetTodayDigest(ctx context.Context, userID string) (*Digest, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}
	if _, err := uuid.Parse(userID); err != nil {
		return nil, ErrInvalidUserID
	}

	today := time.Now().Format(dateLayout)

	if cached := s.cachedDigest(ctx, userID, today); cached != nil {
		return cached, nil
	}

	digest, err := s.repo.GetDigest(ctx, userID, today)
	if err != nil {
		return nil, err
	}

	s.cacheDigest(ctx, digest)
	return digest, nil
}

// GenerateDailyDigests runs the pipeline for every recently active user.
// Per-user failures are logged and skipped; gateway throttling or exhausted
// credits abort the run since every remaining user would hit the same wall.
func (s *service) GenerateDailyDigests(ctx context.Context) error {
	userIDs, err := s.repo.GetActiveUserIDs(ctx, 30)
	if err != nil {
		return err
	}

	for _, userID := range userIDs {
		if _, err := s.GenerateDigest(ctx, userID); err != nil {
			if errors.Is(err, ai.ErrRateLimited) || errors.Is(err, ai.ErrPaymentRequired) {
				return fmt.Errorf("daily digest run aborted: %w", err)
			}
			log.Printf("daily digest failed for user %s: %v", userID, err)
		}
	}

	return nil
}

func (s *service) assembleDigest(userID, today string, candidates []*ScoredCandidate, content *DigestContent) *Digest {
	profiles := make(CompatibleProfileList, 0, len(candidates))
	deltas := make(ScoreDeltaList, 0, len(candidates))

	for i, sc := range candidates {
		score := compatibilityScore(sc)

		if i < s.topN {
			profiles = append(profiles, CompatibleProfile{
				ID:                 sc.Candidate.MatchedUserID,
				Name:               displayName(sc.Candidate.Profile),
				CompatibilityScore: score,
				Summary:            matchSummary(sc),
			})
		}

		deltas = append(deltas, ScoreDelta{
			MatchID:       sc.Candidate.MatchedUserID,
			ScoreChange:   "+new",
			PreviousScore: 0,
			CurrentScore:  score,
		})
	}

	starters := content.ConversationStarters
	if starters == nil {
		starters = []ConversationStarter{}
	}

	return &Digest{
		UserID:                 userID,
		DigestDate:             today,
		NewCompatibleProfiles:  profiles,
		ProfileScoreDeltas:     deltas,
		AIConversationStarters: ConversationStarterList(starters),
		Content: DigestBody{
			Greeting:   content.Greeting,
			Insights:   content.Insights,
			Motivation: content.Motivation,
		},
	}
}

// compatibilityScore prefers the upstream precomputed score when present,
// otherwise normalizes the heuristic score to the same 0-1 range.
func compatibilityScore(sc *ScoredCandidate) float64 {
	if sc.Candidate.CompatibilityScore != nil {
		return *sc.Candidate.CompatibilityScore
	}
	return float64(sc.Score) / 100
}

func matchSummary(sc *ScoredCandidate) string {
	if sc.Candidate.MatchSummary != nil && *sc.Candidate.MatchSummary != "" {
		return *sc.Candidate.MatchSummary
	}
	if len(sc.SharedInterests) > 0 {
		return fmt.Sprintf("Strong compatibility based on shared interests in %s", strings.Join(sc.SharedInterests, " and "))
	}
	return "Recommended for you"
}

func aiOutcome(err error) string {
	switch {
	case errors.Is(err, ai.ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ai.ErrPaymentRequired):
		return "payment_required"
	default:
		return "error"
	}
}

// Cache helpers. The cache is read-through for GetTodayDigest and refreshed
// after every upsert; entries expire at local midnight along with the key's
// calendar date.

func digestCacheKey(userID, date string) string {
	return fmt.Sprintf("digest:%s:%s", userID, date)
}

func (s *service) cachedDigest(ctx context.Context, userID, date string) *Digest {
	if s.cache == nil {
		return nil
	}

	raw, err := s.cache.Get(ctx, digestCacheKey(userID, date)).Bytes()
	if err != nil {
		return nil
	}

	var digest Digest
	if err := json.Unmarshal(raw, &digest); err != nil {
		return nil
	}
	return &digest
}

func (s *service) cacheDigest(ctx context.Context, digest *Digest) {
	if s.cache == nil {
		return
	}

	raw, err := json.Marshal(digest)
	if err != nil {
		return
	}

	now := time.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).Add(24 * time.Hour)

	if err := s.cache.Set(ctx, digestCacheKey(digest.UserID, digest.DigestDate), raw, time.Until(midnight)).Err(); err != nil {
		log.Printf("failed to cache digest for user %s: %v", digest.UserID, err)
	}
}
