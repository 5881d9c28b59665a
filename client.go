package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-github/v58/github"
	"golang.org/x/oauth2"
)

// defaultMinRemaining is the quota buffer kept in reserve. When the core
// rate limit drops to this value or below, the client blocks until the
// reset time before issuing the next request.
const defaultMinRemaining = 5

// RetryPolicy bounds how often a rate-limited request is reissued.
// MaxAttempts counts the original call, so 2 means exactly one retry.
type RetryPolicy struct {
	MaxAttempts int
	Margin      time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 2,
		Margin:      time.Second,
	}
}

type NotFoundError struct {
	Number int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("issue #%d not found", e.Number)
}

// AgentClient wraps the GitHub client for a single repository and layers the
// rate-limit back-off on top of every call. sleep and now are swappable so
// tests can observe waits without blocking.
type AgentClient struct {
	gh           *github.Client
	owner        string
	repo         string
	retry        RetryPolicy
	minRemaining int
	sleep        func(time.Duration)
	now          func() time.Time
	log          *Logger
}

func NewAgentClient(repository, token string, logger *Logger) (*AgentClient, error) {
	owner, repo, err := splitRepository(repository)
	if err != nil {
		return nil, err
	}

	var gh *github.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		gh = github.NewClient(oauth2.NewClient(context.Background(), ts))
	} else {
		gh = github.NewClient(nil)
	}

	return &AgentClient{
		gh:           gh,
		owner:        owner,
		repo:         repo,
		retry:        DefaultRetryPolicy(),
		minRemaining: defaultMinRemaining,
		sleep:        time.Sleep,
		now:          time.Now,
		log:          logger,
	}, nil
}

func splitRepository(repository string) (owner, repo string, err error) {
	parts := strings.Split(repository, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repository %q, expected owner/repo", repository)
	}
	return parts[0], parts[1], nil
}

func (c *AgentClient) Repository() string {
	return c.owner + "/" + c.repo
}

// VerifyConnection checks that the configured repository is reachable with
// the current credentials. Callers treat a failure here as fatal.
func (c *AgentClient) VerifyConnection(ctx context.Context) error {
	err := c.withRetry(ctx, func() (*github.Response, error) {
		_, resp, err := c.gh.Repositories.Get(ctx, c.owner, c.repo)
		return resp, err
	})
	if err != nil {
		return fmt.Errorf("failed to connect to GitHub repository %s: %w", c.Repository(), err)
	}

	c.log.Info("successfully connected to GitHub repository %s", c.Repository())
	return nil
}

// waitForQuota polls the rate-limit endpoint and blocks until the reset time
// plus the retry margin when the remaining quota is at or below the buffer.
// Failure to read the endpoint is only a warning.
func (c *AgentClient) waitForQuota(ctx context.Context) {
	limits, _, err := c.gh.RateLimit.Get(ctx)
	if err != nil {
		c.log.Warn("could not check rate limits: %v", err)
		return
	}

	core := limits.GetCore()
	if core == nil || core.Remaining > c.minRemaining {
		return
	}

	wait := core.Reset.Time.Sub(c.now())
	if wait < 0 {
		wait = 0
	}
	wait += c.retry.Margin

	c.log.Warn("only %d API calls remaining, waiting %s for quota reset", core.Remaining, wait.Round(time.Second))
	c.sleep(wait)
}

// withRetry runs one API call under the rate-limit policy: quota check
// first, then the call, and on a rate-limit rejection a blocking wait until
// the advertised reset before reissuing, bounded by RetryPolicy.MaxAttempts.
func (c *AgentClient) withRetry(ctx context.Context, call func() (*github.Response, error)) error {
	var err error
	for attempt := 1; attempt <= c.retry.MaxAttempts; attempt++ {
		c.waitForQuota(ctx)

		_, err = call()
		if err == nil {
			return nil
		}

		var rateErr *github.RateLimitError
		if !errors.As(err, &rateErr) || attempt == c.retry.MaxAttempts {
			return err
		}

		wait := rateErr.Rate.Reset.Time.Sub(c.now())
		if wait < 0 {
			wait = 0
		}
		wait += c.retry.Margin

		c.log.Warn("rate limit exceeded, waiting %s before retrying", wait.Round(time.Second))
		c.sleep(wait)
	}
	return err
}

func (c *AgentClient) CreateComment(ctx context.Context, number int, body string) (Comment, error) {
	var created *github.IssueComment
	err := c.withRetry(ctx, func() (*github.Response, error) {
		var resp *github.Response
		var err error
		created, resp, err = c.gh.Issues.CreateComment(ctx, c.owner, c.repo, number, &github.IssueComment{
			Body: github.String(body),
		})
		return resp, err
	})
	if err != nil {
		if isNotFound(err) {
			return Comment{}, &NotFoundError{Number: number}
		}
		return Comment{}, fmt.Errorf("failed to comment on issue #%d: %w", number, err)
	}
	return fromGitHubComment(created), nil
}

func isNotFound(err error) bool {
	var ghErr *github.ErrorResponse
	return errors.As(err, &ghErr) &&
		ghErr.Response != nil &&
		ghErr.Response.StatusCode == http.StatusNotFound
}
