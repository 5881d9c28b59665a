package main

import (
	"fmt"
	"io"
	"strings"
)

const (
	summaryBorder   = 80
	descBorder      = 40
	descTruncateLen = 300
)

// Presenter renders issues and analyses to a writer, normally os.Stdout.
type Presenter struct {
	w io.Writer
}

func NewPresenter(w io.Writer) *Presenter {
	return &Presenter{w: w}
}

// PrintIssue writes the bordered summary block for a single issue.
func (p *Presenter) PrintIssue(issue Issue) {
	border := strings.Repeat("=", summaryBorder)

	fmt.Fprintf(p.w, "\n%s\n", border)
	fmt.Fprintf(p.w, "Issue #%d: %s\n", issue.Number, issue.Title)
	fmt.Fprintf(p.w, "%s\n", border)
	fmt.Fprintf(p.w, "Status: %s\n", issue.State)
	fmt.Fprintf(p.w, "Created: %s\n", issue.CreatedAt)
	fmt.Fprintf(p.w, "Author: %s\n", issue.Author)

	if len(issue.Assignees) > 0 {
		fmt.Fprintf(p.w, "Assigned to: %s\n", strings.Join(issue.Assignees, ", "))
	}
	if len(issue.Labels) > 0 {
		fmt.Fprintf(p.w, "Labels: %s\n", strings.Join(issue.Labels, ", "))
	}
	if issue.Scored {
		fmt.Fprintf(p.w, "Priority Score: %.2f\n", issue.PriorityScore)
	}

	fmt.Fprintf(p.w, "\nDescription:\n")
	fmt.Fprintf(p.w, "%s\n", strings.Repeat("-", descBorder))
	fmt.Fprintf(p.w, "%s\n", truncateBody(issue.Body))
	fmt.Fprintf(p.w, "\nURL: %s\n", issue.HTMLURL)
	fmt.Fprintf(p.w, "%s\n\n", border)
}

func truncateBody(body string) string {
	if body == "" {
		return "No description provided"
	}
	if len(body) > descTruncateLen {
		return body[:descTruncateLen] + "..."
	}
	return body
}

func (p *Presenter) PrintIssueList(repository string, issues []Issue) {
	fmt.Fprintf(p.w, "\nFound %d issues in %s:\n", len(issues), repository)
	for _, issue := range issues {
		p.PrintIssue(issue)
	}
}

func (p *Presenter) PrintPrioritized(repository string, issues []Issue, limit int) {
	fmt.Fprintf(p.w, "\nTop %d prioritized issues in %s:\n", limit, repository)
	if len(issues) > limit {
		issues = issues[:limit]
	}
	for _, issue := range issues {
		p.PrintIssue(issue)
	}
}

// PrintAssigned reports the full count found but displays at most limit
// summaries.
func (p *Presenter) PrintAssigned(repository, username string, issues []Issue, limit int) {
	fmt.Fprintf(p.w, "\nFound %d issues assigned to %s in %s:\n", len(issues), username, repository)
	if len(issues) > limit {
		issues = issues[:limit]
	}
	for _, issue := range issues {
		p.PrintIssue(issue)
	}
}

func (p *Presenter) PrintRecommendations(repository string, recommended []Issue) {
	border := strings.Repeat("=", summaryBorder)

	fmt.Fprintf(p.w, "\nRecommended issues to work on in %s:\n", repository)
	fmt.Fprintf(p.w, "%s\n", border)
	fmt.Fprintf(p.w, "Based on your expertise and issue characteristics, here are the top %d issues you could contribute to:\n", len(recommended))
	fmt.Fprintf(p.w, "%s\n", border)

	for i, issue := range recommended {
		fmt.Fprintf(p.w, "\nRECOMMENDATION #%d:\n", i+1)
		p.PrintIssue(issue)
		fmt.Fprintf(p.w, "Why this issue: \n")
		for _, reason := range RecommendationReasons(issue) {
			fmt.Fprintf(p.w, "  ✅ %s\n", reason)
		}
	}
}

func (p *Presenter) PrintAnalysis(analysis *Analysis) {
	border := strings.Repeat("=", summaryBorder)

	p.PrintIssue(analysis.Issue)

	fmt.Fprintf(p.w, "Detailed Analysis:\n")
	fmt.Fprintf(p.w, "%s\n", border)
	fmt.Fprintf(p.w, "Complexity: %s\n", analysis.Complexity)
	fmt.Fprintf(p.w, "Comments: %d\n", analysis.CommentsCount)

	if len(analysis.PotentialFiles) > 0 {
		fmt.Fprintf(p.w, "\nPotentially related files:\n")
		for _, file := range analysis.PotentialFiles {
			fmt.Fprintf(p.w, "- %s\n", file)
		}
	}

	fmt.Fprintf(p.w, "\nSuggested approach:\n")
	fmt.Fprintf(p.w, "%s\n", analysis.SuggestedApproach)
	fmt.Fprintf(p.w, "%s\n\n", border)
}
