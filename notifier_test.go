package main

import (
	"strings"
	"testing"
)

func TestBuildRecommendationMessage(t *testing.T) {
	msg := buildRecommendationMessage(Issue{
		Number:        42,
		Title:         "Crash on startup",
		PriorityScore: 27.5,
		HTMLURL:       "https://github.com/octocat/hello/issues/42",
		Labels:        []string{"bug", "help wanted"},
	})

	for _, want := range []string{
		"⭐",
		"#42 Crash on startup",
		"(27.50)",
		"https://github.com/octocat/hello/issues/42",
		"Labels: bug, help wanted",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q\nmessage: %s", want, msg)
		}
	}
}

func TestBuildRecommendationMessageEmojiTiers(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{45, "🔥"},
		{30, "🔥"},
		{20, "⭐"},
		{15, "⭐"},
		{5, "✨"},
	}

	for _, tt := range tests {
		msg := buildRecommendationMessage(Issue{Number: 1, Title: "x", PriorityScore: tt.score})
		if !strings.HasPrefix(msg, tt.want) {
			t.Errorf("score %v message starts with %q, want %q", tt.score, msg[:4], tt.want)
		}
	}
}

func TestBuildRecommendationMessageNoLabels(t *testing.T) {
	msg := buildRecommendationMessage(Issue{Number: 1, Title: "x"})
	if strings.Contains(msg, "Labels:") {
		t.Error("message should omit the labels line when there are none")
	}
}

func TestTruncateString(t *testing.T) {
	tests := []struct {
		input  string
		maxLen int
		want   string
	}{
		{"short", 80, "short"},
		{"exactly", 7, "exactly"},
		{"this is too long", 7, "this is..."},
	}

	for _, tt := range tests {
		if got := truncateString(tt.input, tt.maxLen); got != tt.want {
			t.Errorf("truncateString(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
		}
	}
}
