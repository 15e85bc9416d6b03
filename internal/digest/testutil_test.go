package digest

import (
	"context"
	"time"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

// fakeRepo is an in-memory Repository for pipeline tests. UpsertDigest
// mimics the unique-key semantics of the Postgres implementation: one row
// per (user_id, digest_date), updated in place.
type fakeRepo struct {
	profiles    map[string]*Profile
	candidates  map[string][]*CandidateMatch
	digests     map[string]*Digest
	premium     map[string]bool
	activeUsers []string

	getProfileErr error
	listErr       error
	upsertErr     error

	upsertCalls int
	nextID      int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		profiles:   make(map[string]*Profile),
		candidates: make(map[string][]*CandidateMatch),
		digests:    make(map[string]*Digest),
		premium:    make(map[string]bool),
	}
}

func (f *fakeRepo) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	if f.getProfileErr != nil {
		return nil, f.getProfileErr
	}
	profile, ok := f.profiles[userID]
	if !ok {
		return nil, ErrProfileNotFound
	}
	return profile, nil
}

func (f *fakeRepo) ListCandidates(ctx context.Context, userID string, limit int) ([]*CandidateMatch, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	pool := f.candidates[userID]
	if len(pool) > limit {
		pool = pool[:limit]
	}
	out := make([]*CandidateMatch, len(pool))
	copy(out, pool)
	return out, nil
}

func (f *fakeRepo) GetDigest(ctx context.Context, userID, date string) (*Digest, error) {
	digest, ok := f.digests[userID+"|"+date]
	if !ok {
		return nil, ErrDigestNotFound
	}
	return digest, nil
}

func (f *fakeRepo) UpsertDigest(ctx context.Context, digest *Digest) (*Digest, error) {
	if f.upsertErr != nil {
		return nil, f.upsertErr
	}
	f.upsertCalls++

	key := digest.UserID + "|" + digest.DigestDate
	now := time.Now()

	if existing, ok := f.digests[key]; ok {
		digest.ID = existing.ID
		digest.CreatedAt = existing.CreatedAt
	} else {
		f.nextID++
		digest.ID = f.nextID
		digest.CreatedAt = now
	}
	digest.UpdatedAt = now

	f.digests[key] = digest
	return digest, nil
}

func (f *fakeRepo) GetActiveUserIDs(ctx context.Context, daysActive int) ([]string, error) {
	return f.activeUsers, nil
}

func (f *fakeRepo) IsPremium(ctx context.Context, userID string) (bool, error) {
	if _, ok := f.profiles[userID]; !ok {
		return false, ErrProfileNotFound
	}
	return f.premium[userID], nil
}

func candidateProfile(id, name string, age int, personality string, interests ...string) *CandidateMatch {
	return &CandidateMatch{
		MatchedUserID: id,
		Profile: &Profile{
			ID:              id,
			Name:            strPtr(name),
			Age:             intPtr(age),
			PersonalityType: strPtr(personality),
			Interests:       interests,
		},
	}
}
