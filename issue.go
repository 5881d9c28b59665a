package main

import (
	"time"

	"github.com/google/go-github/v58/github"
)

// issueTimeLayout is the timestamp format the GitHub API serves for
// created_at. The trailing Z is matched literally and the parsed time is UTC.
const issueTimeLayout = "2006-01-02T15:04:05Z"

type Complexity string

const (
	ComplexityLow    Complexity = "Low"
	ComplexityMedium Complexity = "Medium"
	ComplexityHigh   Complexity = "High"
)

// Issue is the agent's view of a GitHub issue. CreatedAt keeps the raw
// wire-format string; the scorer owns parsing it so that a missing or
// malformed timestamp surfaces as a TimestampError instead of a silent zero.
type Issue struct {
	Number    int
	Title     string
	Body      string
	State     string
	CreatedAt string
	Comments  int
	Labels    []string
	Assignees []string
	Author    string
	HTMLURL   string

	// Computed by the prioritization engine.
	PriorityScore       float64
	ExpertiseMatch      bool
	ContributorFriendly bool
	ComplexityEstimate  Complexity
	Scored              bool
}

type Comment struct {
	Author string
	Body   string
}

func fromGitHubIssue(gi *github.Issue) Issue {
	issue := Issue{
		Number:   gi.GetNumber(),
		Title:    gi.GetTitle(),
		Body:     gi.GetBody(),
		State:    gi.GetState(),
		Comments: gi.GetComments(),
		Author:   gi.GetUser().GetLogin(),
		HTMLURL:  gi.GetHTMLURL(),
	}

	if gi.CreatedAt != nil {
		issue.CreatedAt = gi.CreatedAt.Time.UTC().Format(time.RFC3339)
	}

	for _, label := range gi.Labels {
		issue.Labels = append(issue.Labels, label.GetName())
	}
	for _, user := range gi.Assignees {
		issue.Assignees = append(issue.Assignees, user.GetLogin())
	}

	return issue
}

func fromGitHubComment(gc *github.IssueComment) Comment {
	return Comment{
		Author: gc.GetUser().GetLogin(),
		Body:   gc.GetBody(),
	}
}
