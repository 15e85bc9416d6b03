package digest

// ScoringConfig holds the heuristic weights and the display clamp range.
// These are product-tuning constants, not calibrated probabilities; callers
// must not treat the resulting score as one.
type ScoringConfig struct {
	BaseScore            int
	SharedInterestPoints int
	SharedInterestCap    int
	PersonalityBonus     int
	CloseAgeRange        int
	CloseAgeBonus        int
	NearAgeRange         int
	NearAgeBonus         int
	ScoreFloor           int
	ScoreCeiling         int
	MaxSharedInterests   int
	MaxOwnInterests      int
}

// DefaultScoringConfig returns the production weights.
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		BaseScore:            50,
		SharedInterestPoints: 10,
		SharedInterestCap:    30,
		PersonalityBonus:     15,
		CloseAgeRange:        2,
		CloseAgeBonus:        10,
		NearAgeRange:         5,
		NearAgeBonus:         5,
		ScoreFloor:           60,
		ScoreCeiling:         98,
		MaxSharedInterests:   3,
		MaxOwnInterests:      2,
	}
}

// Scorer computes a compatibility score for a profile pair. Pure function:
// no I/O, no randomness, always returns a valid score.
type Scorer interface {
	Score(user, candidate *Profile) (int, []string)
}

type heuristicScorer struct {
	cfg ScoringConfig
}

// NewScorer creates a scorer with the given weights.
func NewScorer(cfg ScoringConfig) Scorer {
	return &heuristicScorer{cfg: cfg}
}

// Score returns the clamped compatibility score and the interest tags to
// display alongside it.
func (s *heuristicScorer) Score(user, candidate *Profile) (int, []string) {
	score := s.cfg.BaseScore

	shared := sharedInterests(user.Interests, candidate.Interests)

	bonus := len(shared) * s.cfg.SharedInterestPoints
	if bonus > s.cfg.SharedInterestCap {
		bonus = s.cfg.SharedInterestCap
	}
	score += bonus

	if user.PersonalityType != nil && candidate.PersonalityType != nil &&
		*user.PersonalityType == *candidate.PersonalityType {
		score += s.cfg.PersonalityBonus
	}

	if user.Age != nil && candidate.Age != nil {
		ageDiff := *user.Age - *candidate.Age
		if ageDiff < 0 {
			ageDiff = -ageDiff
		}
		switch {
		case ageDiff <= s.cfg.CloseAgeRange:
			score += s.cfg.CloseAgeBonus
		case ageDiff <= s.cfg.NearAgeRange:
			score += s.cfg.NearAgeBonus
		}
	}

	if score < s.cfg.ScoreFloor {
		score = s.cfg.ScoreFloor
	}
	if score > s.cfg.ScoreCeiling {
		score = s.cfg.ScoreCeiling
	}

	return score, s.displayInterests(shared, candidate.Interests)
}

// displayInterests picks the tags shown next to the score. The UI always gets
// something: with no overlap, the candidate's own interests stand in.
func (s *heuristicScorer) displayInterests(shared, candidateInterests []string) []string {
	if len(shared) > 0 {
		if len(shared) > s.cfg.MaxSharedInterests {
			return shared[:s.cfg.MaxSharedInterests]
		}
		return shared
	}

	own := make([]string, 0, s.cfg.MaxOwnInterests)
	for _, interest := range candidateInterests {
		if len(own) == s.cfg.MaxOwnInterests {
			break
		}
		own = append(own, interest)
	}
	return own
}

// sharedInterests returns the intersection in the user's declared order.
// Missing lists are treated as empty sets.
func sharedInterests(userInterests, candidateInterests []string) []string {
	if len(userInterests) == 0 || len(candidateInterests) == 0 {
		return nil
	}

	candidateSet := make(map[string]bool, len(candidateInterests))
	for _, interest := range candidateInterests {
		candidateSet[interest] = true
	}

	var shared []string
	for _, interest := range userInterests {
		if candidateSet[interest] {
			shared = append(shared, interest)
		}
	}
	return shared
}
