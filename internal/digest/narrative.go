package digest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aicompleteme/completeme-backend/internal/ai"
)

const narrativeSystemPrompt = "You are a helpful AI dating coach that creates personalized daily digest summaries. Always respond with valid JSON."

// Generator turns a profile and its ranked candidates into digest narrative
// content via a single AI completion. The model call is best-effort
// enrichment: a transport failure propagates, a malformed body degrades to
// the fixed fallback content instead of aborting the pipeline.
type Generator struct {
	client ai.Client
}

// NewGenerator creates a narrative generator backed by the given AI client.
func NewGenerator(client ai.Client) *Generator {
	return &Generator{client: client}
}

// Generate returns the digest content and whether it came from a live model
// response (false means the fallback was substituted after a parse failure).
func (g *Generator) Generate(ctx context.Context, profile *Profile, candidates []*ScoredCandidate) (*DigestContent, bool, error) {
	prompt, err := buildNarrativePrompt(profile, candidates)
	if err != nil {
		return nil, false, fmt.Errorf("build prompt: %w", err)
	}

	raw, err := g.client.Generate(ctx, narrativeSystemPrompt, prompt)
	if err != nil {
		return nil, false, err
	}

	content, ok := parseDigestContent(raw)
	if !ok {
		return fallbackDigestContent(), false, nil
	}
	return content, true, nil
}

// parseDigestContent extracts the documented JSON contract from free-text
// model output. No semantic validation of the content is performed.
func parseDigestContent(raw string) (*DigestContent, bool) {
	cleaned := stripCodeFences(raw)

	candidate := firstJSONObject(cleaned)
	if candidate == "" {
		candidate = firstJSONObject(raw)
	}
	if candidate == "" {
		return nil, false
	}

	var content DigestContent
	if err := json.Unmarshal([]byte(candidate), &content); err != nil {
		return nil, false
	}
	return &content, true
}

// fallbackDigestContent is the fixed, still-coherent digest used when the
// model produced non-conforming text.
func fallbackDigestContent() *DigestContent {
	return &DigestContent{
		Greeting: "Welcome to your daily AI Complete Me digest!",
		Insights: []string{
			"Your profile shows great authenticity and depth",
			"You're attracting quality matches based on shared interests",
			"Your communication style suggests strong emotional intelligence",
		},
		ConversationStarters: []ConversationStarter{
			{
				MatchID: "sample",
				Name:    "Your Match",
				Starter: "I noticed we both love adventure - what's the most spontaneous trip you've ever taken?",
			},
		},
		Motivation: "Keep being your authentic self - the right connections are finding you!",
	}
}

// promptMatch is the candidate shape serialized into the prompt.
type promptMatch struct {
	MatchedUserID      string        `json:"matched_user_id"`
	CompatibilityScore int           `json:"compatibility_score"`
	SharedInterests    []string      `json:"shared_interests,omitempty"`
	MatchSummary       string        `json:"match_summary,omitempty"`
	Profile            promptProfile `json:"profile"`
}

type promptProfile struct {
	Name      string   `json:"name"`
	Age       *int     `json:"age,omitempty"`
	Interests []string `json:"interests,omitempty"`
}

func buildNarrativePrompt(profile *Profile, candidates []*ScoredCandidate) (string, error) {
	profileJSON, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return "", err
	}

	matches := make([]promptMatch, 0, len(candidates))
	for _, sc := range candidates {
		m := promptMatch{
			MatchedUserID:      sc.Candidate.MatchedUserID,
			CompatibilityScore: sc.Score,
			SharedInterests:    sc.SharedInterests,
			Profile: promptProfile{
				Name:      displayName(sc.Candidate.Profile),
				Age:       sc.Candidate.Profile.Age,
				Interests: sc.Candidate.Profile.Interests,
			},
		}
		if sc.Candidate.MatchSummary != nil {
			m.MatchSummary = *sc.Candidate.MatchSummary
		}
		matches = append(matches, m)
	}

	matchesJSON, err := json.MarshalIndent(matches, "", "  ")
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("You are a dating app AI assistant creating a personalized daily digest. Generate insights based on this user's profile and recent matches.\n\n")
	b.WriteString("User Profile:\n")
	b.Write(profileJSON)
	b.WriteString("\n\nRecent Matches:\n")
	b.Write(matchesJSON)
	b.WriteString("\n\nPlease generate:\n")
	b.WriteString("1. A warm, personalized greeting\n")
	b.WriteString("2. 3-5 insights about their recent matches\n")
	b.WriteString("3. 2-3 AI-generated conversation starters for their best matches\n")
	b.WriteString("4. A motivational closing message\n\n")
	b.WriteString("Keep the tone friendly, encouraging, and insightful. Focus on meaningful connections rather than superficial aspects.\n\n")
	b.WriteString("Return the response as a JSON object with this structure:\n")
	b.WriteString(`{
  "greeting": "Personalized greeting here",
  "insights": ["insight 1", "insight 2", "insight 3"],
  "conversationStarters": [
    {"matchId": "match_id", "name": "match_name", "starter": "conversation starter"},
    {"matchId": "match_id", "name": "match_name", "starter": "conversation starter"}
  ],
  "motivation": "Motivational closing message"
}`)
	b.WriteString("\n")

	return b.String(), nil
}

func displayName(p *Profile) string {
	if p != nil && p.Name != nil && *p.Name != "" {
		return *p.Name
	}
	return "Anonymous"
}
