package digest

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aicompleteme/completeme-backend/internal/ai"
)

func testCandidates() []*ScoredCandidate {
	c := candidateProfile("c-1", "Sam", 26, "creative", "reading", "travel")
	return []*ScoredCandidate{{Candidate: c, Score: 78, SharedInterests: []string{"reading"}}}
}

func TestGenerateUsesLiveContentVerbatim(t *testing.T) {
	client := &ai.MockClient{Response: `{
        "greeting": "Good morning, Taylor!",
        "insights": ["insight one", "insight two", "insight three"],
        "conversationStarters": [{"matchId": "c-1", "name": "Sam", "starter": "Ask about their last trip"}],
        "motivation": "Go get them!"
    }`}
	generator := NewGenerator(client)

	content, live, err := generator.Generate(context.Background(), &Profile{ID: "user-1"}, testCandidates())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !live {
		t.Fatal("expected live content")
	}
	if content.Greeting != "Good morning, Taylor!" {
		t.Fatalf("unexpected greeting: %q", content.Greeting)
	}
	if len(content.ConversationStarters) != 1 || content.ConversationStarters[0].MatchID != "c-1" {
		t.Fatalf("unexpected conversation starters: %+v", content.ConversationStarters)
	}
}

func TestGenerateParsesFencedAndWrappedJSON(t *testing.T) {
	responses := []string{
		"```json\n{\"greeting\":\"hi\",\"insights\":[\"a\"],\"conversationStarters\":[],\"motivation\":\"m\"}\n```",
		"Sure, here is your digest:\n{\"greeting\":\"hi\",\"insights\":[\"a\"],\"conversationStarters\":[],\"motivation\":\"m\"}",
	}

	for _, response := range responses {
		generator := NewGenerator(&ai.MockClient{Response: response})
		content, live, err := generator.Generate(context.Background(), &Profile{}, testCandidates())
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", response, err)
		}
		if !live || content.Greeting != "hi" {
			t.Fatalf("expected live parse for %q, got live=%v greeting=%q", response, live, content.Greeting)
		}
	}
}

func TestGenerateFallsBackOnMalformedBody(t *testing.T) {
	generator := NewGenerator(&ai.MockClient{Response: "I'm sorry, I can't produce JSON today."})

	content, live, err := generator.Generate(context.Background(), &Profile{}, testCandidates())
	if err != nil {
		t.Fatalf("expected graceful degradation, got error: %v", err)
	}
	if live {
		t.Fatal("expected fallback content")
	}

	// Fallback satisfies the same schema as live content.
	if content.Greeting == "" || content.Motivation == "" {
		t.Fatal("fallback missing greeting or motivation")
	}
	if len(content.Insights) != 3 {
		t.Fatalf("expected 3 fallback insights, got %d", len(content.Insights))
	}
	if len(content.ConversationStarters) != 1 || content.ConversationStarters[0].MatchID != "sample" {
		t.Fatalf("unexpected fallback starters: %+v", content.ConversationStarters)
	}
}

func TestGeneratePropagatesTransportErrors(t *testing.T) {
	generator := NewGenerator(&ai.MockClient{Err: ai.ErrRateLimited})

	_, _, err := generator.Generate(context.Background(), &Profile{}, testCandidates())
	if !errors.Is(err, ai.ErrRateLimited) {
		t.Fatalf("expected rate limit error, got %v", err)
	}
}

func TestBuildNarrativePromptIncludesProfileAndMatches(t *testing.T) {
	name := "Taylor"
	profile := &Profile{ID: "user-1", Name: &name, Interests: []string{"hiking"}}

	prompt, err := buildNarrativePrompt(profile, testCandidates())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{"Taylor", "Sam", "c-1", "conversationStarters", "matchId"} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q", want)
		}
	}
}

func TestFirstJSONObject(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"leading text", `result: {"a":1} trailing`, `{"a":1}`},
		{"nested", `{"a":{"b":2}}`, `{"a":{"b":2}}`},
		{"brace in string", `{"a":"}{"}`, `{"a":"}{"}`},
		{"escaped quote", `{"a":"\"}\""}`, `{"a":"\"}\""}`},
		{"unbalanced", `{"a":1`, ""},
		{"no object", "nothing here", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := firstJSONObject(tt.input); got != tt.want {
				t.Fatalf("firstJSONObject(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
		{`{"a":1}`, `{"a":1}`},
		{"\uFEFF{\"a\":1}", `{"a":1}`},
	}

	for _, tt := range tests {
		if got := stripCodeFences(tt.input); got != tt.want {
			t.Fatalf("stripCodeFences(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
