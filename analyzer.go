package main

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Analysis is the result of a deep look at one issue.
type Analysis struct {
	Issue             Issue
	CommentsCount     int
	Complexity        Complexity
	PotentialFiles    []string
	SuggestedApproach string
}

// IssueAnalyzer inspects a single issue together with its comment thread.
type IssueAnalyzer struct {
	client *AgentClient
	log    *Logger
}

func NewIssueAnalyzer(client *AgentClient, logger *Logger) *IssueAnalyzer {
	return &IssueAnalyzer{client: client, log: logger}
}

// Analyze fetches the issue and its comments, classifies complexity,
// scans for file mentions and suggests an approach. A missing issue is a
// hard error; a failed comment fetch degrades to an analysis without
// comment text.
func (a *IssueAnalyzer) Analyze(ctx context.Context, number int) (*Analysis, error) {
	issue, err := a.client.GetIssue(ctx, number)
	if err != nil {
		return nil, err
	}

	comments, err := a.client.GetComments(ctx, number)
	if err != nil {
		a.log.Warn("Could not fetch comments for issue #%d: %v", number, err)
		comments = nil
	}

	var builder strings.Builder
	builder.WriteString(issue.Body)
	for _, comment := range comments {
		builder.WriteString(" ")
		builder.WriteString(comment.Body)
	}
	allText := builder.String()

	complexity := classifyComplexity(len(issue.Body), strings.Count(allText, "```"))

	return &Analysis{
		Issue:             issue,
		CommentsCount:     len(comments),
		Complexity:        complexity,
		PotentialFiles:    findFileMentions(allText),
		SuggestedApproach: suggestApproach(issue.Title, complexity),
	}, nil
}

// classifyComplexity buckets an issue by body length and total fence
// markers across body and comments. Markers are counted individually
// here, not in pairs.
func classifyComplexity(bodyLength, fenceMarkers int) Complexity {
	switch {
	case bodyLength > 500 || fenceMarkers > 4:
		return ComplexityHigh
	case bodyLength > 200 || fenceMarkers > 2:
		return ComplexityMedium
	default:
		return ComplexityLow
	}
}

var fileExtensions = []string{".go", ".py", ".js", ".html", ".css", ".md"}

// findFileMentions scans whitespace-separated tokens for things that look
// like file paths. The result is deduplicated and sorted.
func findFileMentions(text string) []string {
	seen := make(map[string]bool)
	for _, word := range strings.Fields(text) {
		if !looksLikeFile(word) {
			continue
		}
		trimmed := strings.Trim(word, ".,()[]{}:;\"'")
		if trimmed != "" {
			seen[trimmed] = true
		}
	}

	files := make([]string, 0, len(seen))
	for file := range seen {
		files = append(files, file)
	}
	sort.Strings(files)
	return files
}

func looksLikeFile(word string) bool {
	if strings.Contains(word, ".") && strings.Contains(word, "/") {
		return true
	}
	for _, ext := range fileExtensions {
		if strings.HasSuffix(word, ext) {
			return true
		}
	}
	return false
}

// suggestApproach produces a canned recommendation keyed on title keywords.
func suggestApproach(title string, complexity Complexity) string {
	lower := strings.ToLower(title)
	level := strings.ToLower(string(complexity))

	switch {
	case strings.Contains(lower, "bug") || strings.Contains(lower, "fix"):
		return fmt.Sprintf("This appears to be a bug fix with %s complexity. Recommend debugging and creating a test case first.", level)
	case strings.Contains(lower, "feature") || strings.Contains(lower, "add"):
		return fmt.Sprintf("This is a feature request with %s complexity. Recommend starting with requirements clarification and design.", level)
	case strings.Contains(lower, "documentation") || strings.Contains(lower, "docs"):
		return "This is a documentation task. Update relevant docs and ensure examples are working."
	default:
		return fmt.Sprintf("General task with %s complexity. Analyze requirements and break down into smaller steps.", level)
	}
}
