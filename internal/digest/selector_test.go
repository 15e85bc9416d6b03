package digest

import (
	"context"
	"errors"
	"testing"
)

func newTestSelector(repo Repository) Selector {
	return NewSelector(repo, NewScorer(DefaultScoringConfig()), 20)
}

func TestSelectTopCandidatesExcludesDenylistedNames(t *testing.T) {
	repo := newFakeRepo()
	repo.profiles["user-1"] = &Profile{
		ID:              "user-1",
		Interests:       []string{"hiking"},
		Age:             intPtr(28),
		PersonalityType: strPtr("adventurer"),
	}
	repo.candidates["user-1"] = []*CandidateMatch{
		// Perfect match on paper, but a known seed profile.
		candidateProfile("c-1", "Jordan", 28, "adventurer", "hiking"),
		candidateProfile("c-2", "Riley", 40, "thinker", "chess"),
	}

	result, err := newTestSelector(repo).SelectTopCandidates(context.Background(), "user-1", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, sc := range result {
		if *sc.Candidate.Profile.Name == "Jordan" {
			t.Fatal("denylisted candidate appeared in selector output")
		}
	}
	if len(result) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(result))
	}
}

func TestSelectTopCandidatesExcludesPlaceholderPhotos(t *testing.T) {
	repo := newFakeRepo()
	repo.profiles["user-1"] = &Profile{ID: "user-1"}

	withPhoto := candidateProfile("c-1", "Riley", 30, "adventurer", "hiking")
	withPhoto.Profile.Photos = []string{"/assets/profile-silhouette.png"}
	clean := candidateProfile("c-2", "Casey", 30, "adventurer", "hiking")

	repo.candidates["user-1"] = []*CandidateMatch{withPhoto, clean}

	result, err := newTestSelector(repo).SelectTopCandidates(context.Background(), "user-1", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result) != 1 || result[0].Candidate.MatchedUserID != "c-2" {
		t.Fatalf("expected only the clean candidate, got %d results", len(result))
	}
}

func TestSelectTopCandidatesReturnsPlaceholderWhenPoolEmpty(t *testing.T) {
	repo := newFakeRepo()
	repo.profiles["user-1"] = &Profile{ID: "user-1", Location: strPtr("Denver, CO")}

	result, err := newTestSelector(repo).SelectTopCandidates(context.Background(), "user-1", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result) != 1 {
		t.Fatalf("expected exactly one placeholder, got %d", len(result))
	}
	if name := *result[0].Candidate.Profile.Name; name != "Alex" {
		t.Fatalf("expected placeholder Alex, got %s", name)
	}
	if result[0].Score != 87 {
		t.Fatalf("expected placeholder score 87, got %d", result[0].Score)
	}
	if loc := *result[0].Candidate.Profile.Location; loc != "Denver, CO" {
		t.Fatalf("expected user's location on placeholder, got %s", loc)
	}
}

func TestSelectTopCandidatesLocalityFilter(t *testing.T) {
	repo := newFakeRepo()
	repo.profiles["user-1"] = &Profile{ID: "user-1", Location: strPtr("Hartford, CT")}

	sameRegion := candidateProfile("c-1", "Riley", 30, "adventurer", "hiking")
	sameRegion.Profile.Location = strPtr("Stamford, CT")
	otherRegion := candidateProfile("c-2", "Casey", 30, "adventurer", "hiking")
	otherRegion.Profile.Location = strPtr("Boston, MA")
	noRegion := candidateProfile("c-3", "Quinn", 30, "adventurer", "hiking")

	repo.candidates["user-1"] = []*CandidateMatch{sameRegion, otherRegion, noRegion}

	result, err := newTestSelector(repo).SelectTopCandidates(context.Background(), "user-1", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ids := map[string]bool{}
	for _, sc := range result {
		ids[sc.Candidate.MatchedUserID] = true
	}
	if !ids["c-1"] {
		t.Fatal("same-region candidate was filtered out")
	}
	if ids["c-2"] {
		t.Fatal("other-region candidate was kept")
	}
	// Undeterminable region fails open.
	if !ids["c-3"] {
		t.Fatal("candidate without region was filtered out")
	}
}

func TestSelectTopCandidatesRanksAndLimits(t *testing.T) {
	repo := newFakeRepo()
	repo.profiles["user-1"] = &Profile{
		ID:              "user-1",
		Interests:       []string{"hiking", "photography", "music"},
		Age:             intPtr(28),
		PersonalityType: strPtr("adventurer"),
	}
	repo.candidates["user-1"] = []*CandidateMatch{
		candidateProfile("c-low", "Riley", 50, "thinker", "chess"),
		candidateProfile("c-high", "Casey", 28, "adventurer", "hiking", "photography", "music"),
		candidateProfile("c-mid", "Quinn", 29, "adventurer", "hiking"),
		candidateProfile("c-tie-1", "Drew", 50, "thinker", "chess"),
		candidateProfile("c-tie-2", "Sky", 50, "thinker", "chess"),
	}

	result, err := newTestSelector(repo).SelectTopCandidates(context.Background(), "user-1", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result) != 3 {
		t.Fatalf("expected 3 candidates, got %d", len(result))
	}
	if result[0].Candidate.MatchedUserID != "c-high" {
		t.Fatalf("expected c-high first, got %s", result[0].Candidate.MatchedUserID)
	}
	if result[1].Candidate.MatchedUserID != "c-mid" {
		t.Fatalf("expected c-mid second, got %s", result[1].Candidate.MatchedUserID)
	}
	// Floor-score ties keep fetch order.
	if result[2].Candidate.MatchedUserID != "c-low" {
		t.Fatalf("expected c-low third by fetch order, got %s", result[2].Candidate.MatchedUserID)
	}
}

func TestSelectTopCandidatesPropagatesRepositoryErrors(t *testing.T) {
	repo := newFakeRepo()
	repo.profiles["user-1"] = &Profile{ID: "user-1"}
	repo.listErr = errors.New("connection refused")

	_, err := newTestSelector(repo).SelectTopCandidates(context.Background(), "user-1", 3)
	if !errors.Is(err, repo.listErr) {
		t.Fatalf("expected repository error to propagate, got %v", err)
	}
}
