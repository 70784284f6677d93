package story

import (
	"reflect"
	"testing"
)

func TestGenerateTags(t *testing.T) {
	tests := []struct {
		name        string
		description string
		storyType   Type
		expected    []string
	}{
		{
			name:        "story type tag only",
			description: "configure workspace color theme",
			storyType:   TypeStory,
			expected:    []string{"story"},
		},
		{
			name:        "technology keywords in table order",
			description: "API with database and authentication",
			storyType:   TypeStory,
			expected:    []string{"story", "api", "database", "authentication"},
		},
		{
			name:        "epic type tag first",
			description: "security review of backend services",
			storyType:   TypeEpic,
			expected:    []string{"epic", "backend", "security"},
		},
		{
			name:        "repeated keywords deduplicated",
			description: "auth service calling the auth provider",
			storyType:   TypeTask,
			expected:    []string{"task", "authentication"},
		},
		{
			name:        "case insensitive matching",
			description: "Improve UI performance metrics",
			storyType:   TypeStory,
			expected:    []string{"story", "performance", "ui-ux"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GenerateTags(tt.description, tt.storyType)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("GenerateTags(%q, %q) = %v, want %v", tt.description, tt.storyType, got, tt.expected)
			}
		})
	}
}
