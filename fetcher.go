package main

import (
	"context"
	"fmt"

	"github.com/google/go-github/v58/github"
)

// GetIssues pages through the repository's issues list until the requested
// count is satisfied or a short page signals the end of the data. Transient
// request failures are logged and end the walk, so callers see whatever was
// collected so far and cannot distinguish a failure from an empty list.
func (c *AgentClient) GetIssues(ctx context.Context, state, sortBy, direction string, limit int) []Issue {
	if limit <= 0 {
		return nil
	}

	perPage := limit
	if perPage > 100 {
		perPage = 100
	}

	var issues []Issue
	for page := 1; len(issues) < limit; page++ {
		opts := &github.IssueListByRepoOptions{
			State:     state,
			Sort:      sortBy,
			Direction: direction,
			ListOptions: github.ListOptions{
				Page:    page,
				PerPage: perPage,
			},
		}

		var batch []*github.Issue
		err := c.withRetry(ctx, func() (*github.Response, error) {
			var resp *github.Response
			var err error
			batch, resp, err = c.gh.Issues.ListByRepo(ctx, c.owner, c.repo, opts)
			return resp, err
		})
		if err != nil {
			c.log.Error("error fetching issues page %d for %s: %v", page, c.Repository(), err)
			break
		}

		if len(batch) == 0 {
			break
		}

		for _, gi := range batch {
			issues = append(issues, fromGitHubIssue(gi))
		}

		if len(batch) < perPage {
			break
		}
	}

	if len(issues) > limit {
		issues = issues[:limit]
	}

	c.log.Debug("fetched %d issues from %s", len(issues), c.Repository())
	return issues
}

// GetAssignedIssues filters the most recent open issues down to the ones
// assigned to the given username.
func (c *AgentClient) GetAssignedIssues(ctx context.Context, username string) []Issue {
	issues := c.GetIssues(ctx, "open", "created", "desc", 100)

	var assigned []Issue
	for _, issue := range issues {
		for _, assignee := range issue.Assignees {
			if assignee == username {
				assigned = append(assigned, issue)
				break
			}
		}
	}
	return assigned
}

func (c *AgentClient) GetIssue(ctx context.Context, number int) (Issue, error) {
	var gi *github.Issue
	err := c.withRetry(ctx, func() (*github.Response, error) {
		var resp *github.Response
		var err error
		gi, resp, err = c.gh.Issues.Get(ctx, c.owner, c.repo, number)
		return resp, err
	})
	if err != nil {
		if isNotFound(err) {
			return Issue{}, &NotFoundError{Number: number}
		}
		return Issue{}, fmt.Errorf("failed to get issue #%d: %w", number, err)
	}
	return fromGitHubIssue(gi), nil
}

func (c *AgentClient) GetComments(ctx context.Context, number int) ([]Comment, error) {
	var batch []*github.IssueComment
	err := c.withRetry(ctx, func() (*github.Response, error) {
		var resp *github.Response
		var err error
		batch, resp, err = c.gh.Issues.ListComments(ctx, c.owner, c.repo, number, &github.IssueListCommentsOptions{
			ListOptions: github.ListOptions{PerPage: 100},
		})
		return resp, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list comments for issue #%d: %w", number, err)
	}

	comments := make([]Comment, 0, len(batch))
	for _, gc := range batch {
		comments = append(comments, fromGitHubComment(gc))
	}
	return comments, nil
}
