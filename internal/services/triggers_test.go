package services

import (
	"testing"

	"github.com/codyseavey/card-linker/internal/models"
)

func TestExtractTriggers(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected []Trigger
	}{
		{
			name:     "no triggers",
			content:  "just chatting about [brackets] and {braces}",
			expected: nil,
		},
		{
			name:     "single image",
			content:  "look at [[lom]]",
			expected: []Trigger{{Kind: models.MatchImage, Query: "lom"}},
		},
		{
			name:    "mixed kinds in order of occurrence",
			content: "{{gandalf}} beats [[balrog]] but not {{1U231}}",
			expected: []Trigger{
				{Kind: models.MatchWiki, Query: "gandalf"},
				{Kind: models.MatchImage, Query: "balrog"},
				{Kind: models.MatchWiki, Query: "1U231"},
			},
		},
		{
			name:     "mentions skipped",
			content:  "[[@Gandalf]] and [[Gandalf]]",
			expected: []Trigger{{Kind: models.MatchImage, Query: "Gandalf"}},
		},
		{
			name:     "unclosed mention does not hide a later trigger",
			content:  "[[@user hi [[lom]]",
			expected: []Trigger{{Kind: models.MatchImage, Query: "lom"}},
		},
		{
			name:     "unclosed wiki mention",
			content:  "{{@user {{gandalf}} and [[@x]]",
			expected: []Trigger{{Kind: models.MatchWiki, Query: "gandalf"}},
		},
		{
			name:     "empty query",
			content:  "[[]] {{}}",
			expected: []Trigger{{Kind: models.MatchImage, Query: ""}, {Kind: models.MatchWiki, Query: ""}},
		},
		{
			name:     "triggers do not span lines",
			content:  "[[lo\nm]] [[owk]]",
			expected: []Trigger{{Kind: models.MatchImage, Query: "owk"}},
		},
		{
			name:     "lazy match",
			content:  "[[one]] ]] [[two]]",
			expected: []Trigger{{Kind: models.MatchImage, Query: "one"}, {Kind: models.MatchImage, Query: "two"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractTriggers(tt.content)
			if len(got) != len(tt.expected) {
				t.Fatalf("Expected %d triggers, got %d: %+v", len(tt.expected), len(got), got)
			}
			for i := range got {
				if got[i].Kind != tt.expected[i].Kind || got[i].Query != tt.expected[i].Query {
					t.Errorf("Trigger %d = %s %q, want %s %q", i, got[i].Kind, got[i].Query, tt.expected[i].Kind, tt.expected[i].Query)
				}
			}
		})
	}
}
