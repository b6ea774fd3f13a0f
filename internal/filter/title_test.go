package filter

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func mustCompile(t *testing.T, pattern string) *regexp.Regexp {
	t.Helper()
	re, err := regexp.Compile("(?i)(" + pattern + ")")
	if err != nil {
		t.Fatalf("compiling %q: %v", pattern, err)
	}
	return re
}

func TestTitleAccepts(t *testing.T) {
	include := mustCompile(t, "software|engineer|sde|backend|fullstack|developer")
	exclude := mustCompile(t, "principal|intern|staff|director|manager|junior")

	f := NewTitle(include, exclude)

	tests := []struct {
		name     string
		title    string
		expected bool
	}{
		{
			name:     "backend engineer accepted",
			title:    "Backend Engineer",
			expected: true,
		},
		{
			name:     "case insensitive inclusion",
			title:    "SOFTWARE DEVELOPER",
			expected: true,
		},
		{
			name:     "principal excluded despite inclusion match",
			title:    "Principal Software Engineer",
			expected: false,
		},
		{
			name:     "no inclusion keyword",
			title:    "Accountant",
			expected: false,
		},
		{
			name:     "empty title",
			title:    "",
			expected: false,
		},
		{
			name:     "intern substring rejects internship",
			title:    "Software Engineering Internship",
			expected: false,
		},
		{
			// Substring matching is inherited behavior: "intern" also hits
			// "international", so this legitimate title is rejected.
			name:     "intern substring rejects international",
			title:    "Software Engineer, International Payments",
			expected: false,
		},
		{
			name:     "partial inclusion match inside a word",
			title:    "Site Reliability Engineering Lead",
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, f.Accepts(tt.title))
		})
	}
}

func TestTitleNilExcludeExcludesNothing(t *testing.T) {
	f := NewTitle(mustCompile(t, "engineer"), nil)

	assert.True(t, f.Accepts("Principal Engineer"))
	assert.False(t, f.Accepts("Accountant"))
}
