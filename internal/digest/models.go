package digest

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/lib/pq"
)

// Profile is the read-only view of a user profile consumed by the digest
// pipeline. Profile editing lives in a separate service.
type Profile struct {
	ID              string         `json:"id" db:"id"`
	Name            *string        `json:"name" db:"name"`
	Age             *int           `json:"age" db:"age"`
	PersonalityType *string        `json:"personality_type" db:"personality_type"`
	Interests       pq.StringArray `json:"interests" db:"interests"`
	Photos          pq.StringArray `json:"photos,omitempty" db:"photos"`
	Bio             *string        `json:"bio,omitempty" db:"bio"`
	Occupation      *string        `json:"occupation,omitempty" db:"occupation"`
	Location        *string        `json:"location,omitempty" db:"location"`
	ZipCode         *string        `json:"zip_code,omitempty" db:"zip_code"`
}

// CandidateMatch pairs a candidate profile with this user, optionally carrying
// a score and summary precomputed by an upstream matching job.
type CandidateMatch struct {
	MatchedUserID      string   `json:"matched_user_id" db:"matched_user_id"`
	CompatibilityScore *float64 `json:"compatibility_score,omitempty" db:"compatibility_score"`
	MatchSummary       *string  `json:"ai_match_summary,omitempty" db:"ai_match_summary"`
	Profile            *Profile `json:"profile"`
}

// ScoredCandidate is a candidate after heuristic scoring. Transient: only its
// summary fields are persisted, embedded in a Digest.
type ScoredCandidate struct {
	Candidate       *CandidateMatch `json:"candidate"`
	Score           int             `json:"score"`
	SharedInterests []string        `json:"shared_interests"`
}

// ConversationStarter ties an AI-generated opener to a specific match.
type ConversationStarter struct {
	MatchID string `json:"matchId"`
	Name    string `json:"name"`
	Starter string `json:"starter"`
}

// DigestContent is the JSON contract the AI gateway is asked to produce.
type DigestContent struct {
	Greeting             string                `json:"greeting"`
	Insights             []string              `json:"insights"`
	ConversationStarters []ConversationStarter `json:"conversationStarters"`
	Motivation           string                `json:"motivation"`
}

// CompatibleProfile is the persisted summary of a scored candidate.
type CompatibleProfile struct {
	ID                 string  `json:"id"`
	Name               string  `json:"name"`
	CompatibilityScore float64 `json:"compatibility_score"`
	Summary            string  `json:"summary"`
}

// ScoreDelta records a candidate's score movement. First-seen candidates get
// the "+new" marker with a zero previous score.
type ScoreDelta struct {
	MatchID       string  `json:"match_id"`
	ScoreChange   string  `json:"score_change"`
	PreviousScore float64 `json:"previous_score"`
	CurrentScore  float64 `json:"current_score"`
}

// DigestBody is the narrative portion of the persisted digest.
type DigestBody struct {
	Greeting   string   `json:"greeting"`
	Insights   []string `json:"insights"`
	Motivation string   `json:"motivation"`
}

// Digest is the daily per-user artifact. At most one row exists per
// (user_id, digest_date); same-day regeneration updates the row in place.
type Digest struct {
	ID                     int64                   `json:"id" db:"id"`
	UserID                 string                  `json:"user_id" db:"user_id"`
	DigestDate             string                  `json:"digest_date" db:"digest_date"`
	NewCompatibleProfiles  CompatibleProfileList   `json:"new_compatible_profiles" db:"new_compatible_profiles"`
	ProfileScoreDeltas     ScoreDeltaList          `json:"profile_score_deltas" db:"profile_score_deltas"`
	AIConversationStarters ConversationStarterList `json:"ai_conversation_starters" db:"ai_conversation_starters"`
	Content                DigestBody              `json:"digest_content" db:"digest_content"`
	CreatedAt              time.Time               `json:"created_at" db:"created_at"`
	UpdatedAt              time.Time               `json:"updated_at" db:"updated_at"`
}

// JSONB collection types for the digest payload columns.

type CompatibleProfileList []CompatibleProfile

type ScoreDeltaList []ScoreDelta

type ConversationStarterList []ConversationStarter

func (l CompatibleProfileList) Value() (driver.Value, error)   { return jsonbValue(l) }
func (l *CompatibleProfileList) Scan(value interface{}) error  { return jsonbScan(value, l) }
func (l ScoreDeltaList) Value() (driver.Value, error)          { return jsonbValue(l) }
func (l *ScoreDeltaList) Scan(value interface{}) error         { return jsonbScan(value, l) }
func (l ConversationStarterList) Value() (driver.Value, error) { return jsonbValue(l) }
func (l *ConversationStarterList) Scan(value interface{}) error {
	return jsonbScan(value, l)
}

// Value implements the driver.Valuer interface for DigestBody
func (b DigestBody) Value() (driver.Value, error) { return jsonbValue(b) }

// Scan implements the sql.Scanner interface for DigestBody
func (b *DigestBody) Scan(value interface{}) error { return jsonbScan(value, b) }

func jsonbValue(v interface{}) (driver.Value, error) {
	return json.Marshal(v)
}

func jsonbScan(src, dst interface{}) error {
	if src == nil {
		return nil
	}
	bytes, ok := src.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(bytes, dst)
}
