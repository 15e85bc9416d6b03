package digest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrDigestNotFound  = errors.New("digest not found")
)

// Repository is the persistence boundary of the digest pipeline. The upsert
// primitive, keyed on the UNIQUE (user_id, digest_date) pair, is what
// enforces the one-digest-per-user-per-day invariant under concurrency.
type Repository interface {
	GetProfile(ctx context.Context, userID string) (*Profile, error)
	ListCandidates(ctx context.Context, userID string, limit int) ([]*CandidateMatch, error)
	GetDigest(ctx context.Context, userID, date string) (*Digest, error)
	UpsertDigest(ctx context.Context, digest *Digest) (*Digest, error)
	GetActiveUserIDs(ctx context.Context, daysActive int) ([]string, error)
	IsPremium(ctx context.Context, userID string) (bool, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a Postgres-backed repository.
func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	var profile Profile
	query := `
        SELECT id, name, age, personality_type, interests, photos,
               bio, occupation, location, zip_code
        FROM profiles
        WHERE id = $1
    `

	err := r.db.GetContext(ctx, &profile, query, userID)
	if err == sql.ErrNoRows {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}

	return &profile, nil
}

// ListCandidates returns the candidate pool: other profiles with a name and a
// personality classification, joined with any precomputed match record for
// this user. Precomputed matches sort first, newest first.
func (r *postgresRepository) ListCandidates(ctx context.Context, userID string, limit int) ([]*CandidateMatch, error) {
	query := `
        SELECT p.id, p.name, p.age, p.personality_type, p.interests, p.photos,
               p.bio, p.occupation, p.location, p.zip_code,
               pm.compatibility_score, pm.ai_match_summary
        FROM profiles p
        LEFT JOIN premium_matches pm
               ON pm.matched_user_id = p.id AND pm.user_id = $1
        WHERE p.id <> $1
              AND p.personality_type IS NOT NULL
              AND p.name IS NOT NULL
        ORDER BY pm.match_timestamp DESC NULLS LAST, p.created_at DESC
        LIMIT $2
    `

	rows, err := r.db.QueryxContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	defer rows.Close()

	var candidates []*CandidateMatch
	for rows.Next() {
		var profile Profile
		var candidate CandidateMatch

		err := rows.Scan(
			&profile.ID, &profile.Name, &profile.Age, &profile.PersonalityType,
			&profile.Interests, &profile.Photos, &profile.Bio,
			&profile.Occupation, &profile.Location, &profile.ZipCode,
			&candidate.CompatibilityScore, &candidate.MatchSummary,
		)
		if err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}

		candidate.MatchedUserID = profile.ID
		candidate.Profile = &profile
		candidates = append(candidates, &candidate)
	}

	return candidates, rows.Err()
}

func (r *postgresRepository) GetDigest(ctx context.Context, userID, date string) (*Digest, error) {
	var digest Digest
	query := `
        SELECT id, user_id, to_char(digest_date, 'YYYY-MM-DD') AS digest_date,
               new_compatible_profiles, profile_score_deltas,
               ai_conversation_starters, digest_content, created_at, updated_at
        FROM compatibility_digests
        WHERE user_id = $1 AND digest_date = $2::date
    `

	err := r.db.GetContext(ctx, &digest, query, userID, date)
	if err == sql.ErrNoRows {
		return nil, ErrDigestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get digest: %w", err)
	}

	return &digest, nil
}

// UpsertDigest inserts or updates the row for (user_id, digest_date). The
// unique key makes concurrent same-day requests last-writer-wins instead of
// producing duplicate rows.
func (r *postgresRepository) UpsertDigest(ctx context.Context, digest *Digest) (*Digest, error) {
	query := `
        INSERT INTO compatibility_digests (
            user_id, digest_date, new_compatible_profiles,
            profile_score_deltas, ai_conversation_starters, digest_content
        ) VALUES ($1, $2::date, $3, $4, $5, $6)
        ON CONFLICT (user_id, digest_date)
        DO UPDATE SET
            new_compatible_profiles = EXCLUDED.new_compatible_profiles,
            profile_score_deltas = EXCLUDED.profile_score_deltas,
            ai_conversation_starters = EXCLUDED.ai_conversation_starters,
            digest_content = EXCLUDED.digest_content,
            updated_at = CURRENT_TIMESTAMP
        RETURNING id, created_at, updated_at
    `

	err := r.db.QueryRowxContext(
		ctx, query,
		digest.UserID, digest.DigestDate, digest.NewCompatibleProfiles,
		digest.ProfileScoreDeltas, digest.AIConversationStarters, digest.Content,
	).Scan(&digest.ID, &digest.CreatedAt, &digest.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("upsert digest: %w", err)
	}

	return digest, nil
}

func (r *postgresRepository) GetActiveUserIDs(ctx context.Context, daysActive int) ([]string, error) {
	var userIDs []string
	query := `
        SELECT id FROM profiles
        WHERE last_active >= NOW() - make_interval(days => $1)
              AND personality_type IS NOT NULL
              AND name IS NOT NULL
        ORDER BY last_active DESC
    `

	if err := r.db.SelectContext(ctx, &userIDs, query, daysActive); err != nil {
		return nil, fmt.Errorf("get active users: %w", err)
	}

	return userIDs, nil
}

func (r *postgresRepository) IsPremium(ctx context.Context, userID string) (bool, error) {
	var premium bool
	query := `SELECT COALESCE(premium_active, FALSE) FROM profiles WHERE id = $1`

	err := r.db.GetContext(ctx, &premium, query, userID)
	if err == sql.ErrNoRows {
		return false, ErrProfileNotFound
	}
	if err != nil {
		return false, fmt.Errorf("check premium: %w", err)
	}

	return premium, nil
}
