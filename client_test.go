package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/google/go-github/v58/github"
)

var clientNow = time.Date(2024, 5, 11, 12, 0, 0, 0, time.UTC)

func testLogger() *Logger {
	logger := NewLogger("error", "text")
	logger.SetOutput(io.Discard)
	return logger
}

// testClient wires an AgentClient to an httptest server and records every
// sleep instead of blocking.
type testClient struct {
	client *AgentClient
	slept  []time.Duration
}

func newTestClient(t *testing.T, mux *http.ServeMux) *testClient {
	t.Helper()

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client, err := NewAgentClient("octocat/hello", "", testLogger())
	if err != nil {
		t.Fatalf("NewAgentClient() error = %v", err)
	}

	base, err := url.Parse(srv.URL + "/")
	if err != nil {
		t.Fatalf("url.Parse() error = %v", err)
	}
	client.gh.BaseURL = base
	client.gh.UploadURL = base

	tc := &testClient{client: client}
	client.now = func() time.Time { return clientNow }
	client.sleep = func(d time.Duration) { tc.slept = append(tc.slept, d) }
	return tc
}

// serveRateLimit registers a /rate_limit handler reporting the given
// remaining quota with a reset a fixed distance in the future.
func serveRateLimit(mux *http.ServeMux, remaining int, reset time.Time) {
	mux.HandleFunc("/rate_limit", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"resources":{"core":{"limit":5000,"remaining":%d,"reset":%d}}}`, remaining, reset.Unix())
	})
}

func TestVerifyConnection(t *testing.T) {
	mux := http.NewServeMux()
	serveRateLimit(mux, 5000, clientNow.Add(time.Hour))
	mux.HandleFunc("/repos/octocat/hello", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"full_name":"octocat/hello"}`)
	})

	tc := newTestClient(t, mux)
	if err := tc.client.VerifyConnection(context.Background()); err != nil {
		t.Errorf("VerifyConnection() error = %v", err)
	}
}

func TestVerifyConnectionUnreachableRepo(t *testing.T) {
	mux := http.NewServeMux()
	serveRateLimit(mux, 5000, clientNow.Add(time.Hour))
	mux.HandleFunc("/repos/octocat/hello", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message":"Not Found"}`)
	})

	tc := newTestClient(t, mux)
	if err := tc.client.VerifyConnection(context.Background()); err == nil {
		t.Error("VerifyConnection() error = nil, want error")
	}
}

func TestWaitForQuotaBlocksUntilReset(t *testing.T) {
	reset := clientNow.Add(5 * time.Second)
	mux := http.NewServeMux()
	serveRateLimit(mux, 3, reset)
	mux.HandleFunc("/repos/octocat/hello", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	})

	tc := newTestClient(t, mux)
	if err := tc.client.VerifyConnection(context.Background()); err != nil {
		t.Fatalf("VerifyConnection() error = %v", err)
	}

	if len(tc.slept) != 1 {
		t.Fatalf("slept %d times, want 1", len(tc.slept))
	}
	want := 5*time.Second + tc.client.retry.Margin
	if tc.slept[0] != want {
		t.Errorf("slept %v, want %v", tc.slept[0], want)
	}
}

func TestWaitForQuotaAboveBufferDoesNotSleep(t *testing.T) {
	mux := http.NewServeMux()
	serveRateLimit(mux, defaultMinRemaining+1, clientNow.Add(time.Hour))
	mux.HandleFunc("/repos/octocat/hello", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	})

	tc := newTestClient(t, mux)
	if err := tc.client.VerifyConnection(context.Background()); err != nil {
		t.Fatalf("VerifyConnection() error = %v", err)
	}
	if len(tc.slept) != 0 {
		t.Errorf("slept %d times, want 0", len(tc.slept))
	}
}

func TestWaitForQuotaPastResetClampsToMargin(t *testing.T) {
	mux := http.NewServeMux()
	serveRateLimit(mux, 0, clientNow.Add(-time.Minute))
	mux.HandleFunc("/repos/octocat/hello", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	})

	tc := newTestClient(t, mux)
	if err := tc.client.VerifyConnection(context.Background()); err != nil {
		t.Fatalf("VerifyConnection() error = %v", err)
	}
	if len(tc.slept) != 1 || tc.slept[0] != tc.client.retry.Margin {
		t.Errorf("slept = %v, want one sleep of %v", tc.slept, tc.client.retry.Margin)
	}
}

func TestWithRetryRecoversFromRateLimitRejection(t *testing.T) {
	reset := clientNow.Add(3 * time.Second)
	calls := 0

	mux := http.NewServeMux()
	serveRateLimit(mux, 5000, clientNow.Add(time.Hour))
	mux.HandleFunc("/repos/octocat/hello", func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Header().Set("X-Ratelimit-Limit", "5000")
			w.Header().Set("X-Ratelimit-Remaining", "0")
			w.Header().Set("X-Ratelimit-Reset", fmt.Sprint(reset.Unix()))
			w.WriteHeader(http.StatusForbidden)
			fmt.Fprint(w, `{"message":"API rate limit exceeded"}`)
			return
		}
		fmt.Fprint(w, `{}`)
	})

	tc := newTestClient(t, mux)
	if err := tc.client.VerifyConnection(context.Background()); err != nil {
		t.Fatalf("VerifyConnection() error = %v", err)
	}

	if calls != 2 {
		t.Errorf("repository endpoint called %d times, want 2", calls)
	}
	if len(tc.slept) != 1 {
		t.Fatalf("slept %d times, want 1", len(tc.slept))
	}
	want := 3*time.Second + tc.client.retry.Margin
	if tc.slept[0] != want {
		t.Errorf("slept %v, want %v", tc.slept[0], want)
	}
}

func TestWithRetryGivesUpAfterMaxAttempts(t *testing.T) {
	calls := 0

	mux := http.NewServeMux()
	serveRateLimit(mux, 5000, clientNow.Add(time.Hour))
	mux.HandleFunc("/repos/octocat/hello", func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("X-Ratelimit-Limit", "5000")
		w.Header().Set("X-Ratelimit-Remaining", "0")
		w.Header().Set("X-Ratelimit-Reset", fmt.Sprint(clientNow.Add(time.Second).Unix()))
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"message":"API rate limit exceeded"}`)
	})

	tc := newTestClient(t, mux)
	err := tc.client.VerifyConnection(context.Background())
	if err == nil {
		t.Fatal("VerifyConnection() error = nil, want rate limit error")
	}

	var rateErr *github.RateLimitError
	if !errors.As(err, &rateErr) {
		t.Errorf("error = %v, want RateLimitError", err)
	}
	if calls != tc.client.retry.MaxAttempts {
		t.Errorf("repository endpoint called %d times, want %d", calls, tc.client.retry.MaxAttempts)
	}
}

func TestCreateComment(t *testing.T) {
	mux := http.NewServeMux()
	serveRateLimit(mux, 5000, clientNow.Add(time.Hour))
	mux.HandleFunc("/repos/octocat/hello/issues/7/comments", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		fmt.Fprint(w, `{"body":"thanks","user":{"login":"octocat"}}`)
	})

	tc := newTestClient(t, mux)
	comment, err := tc.client.CreateComment(context.Background(), 7, "thanks")
	if err != nil {
		t.Fatalf("CreateComment() error = %v", err)
	}
	if comment.Author != "octocat" {
		t.Errorf("Author = %q, want octocat", comment.Author)
	}
}

func TestCreateCommentMissingIssue(t *testing.T) {
	mux := http.NewServeMux()
	serveRateLimit(mux, 5000, clientNow.Add(time.Hour))
	mux.HandleFunc("/repos/octocat/hello/issues/404/comments", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message":"Not Found"}`)
	})

	tc := newTestClient(t, mux)
	_, err := tc.client.CreateComment(context.Background(), 404, "hello")

	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("CreateComment() error = %v, want NotFoundError", err)
	}
	if notFound.Number != 404 {
		t.Errorf("Number = %d, want 404", notFound.Number)
	}
}

func TestSplitRepository(t *testing.T) {
	tests := []struct {
		input   string
		owner   string
		repo    string
		wantErr bool
	}{
		{"octocat/hello", "octocat", "hello", false},
		{"octocat", "", "", true},
		{"octocat/hello/extra", "", "", true},
		{"/hello", "", "", true},
		{"octocat/", "", "", true},
		{"", "", "", true},
	}

	for _, tt := range tests {
		owner, repo, err := splitRepository(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("splitRepository(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if owner != tt.owner || repo != tt.repo {
			t.Errorf("splitRepository(%q) = %q, %q, want %q, %q", tt.input, owner, repo, tt.owner, tt.repo)
		}
	}
}
