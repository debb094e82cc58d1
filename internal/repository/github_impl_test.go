package repository

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/compozy/repovault/internal/ratelimit"
	"github.com/google/go-github/v74/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubTransport serves canned API responses without any network.
type stubTransport struct {
	handle func(req *http.Request) (status int, link string, body string)
}

func (t *stubTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	status, link, body := t.handle(req)
	header := http.Header{"Content-Type": []string{"application/json"}}
	if link != "" {
		header.Set("Link", link)
	}
	return &http.Response{
		StatusCode: status,
		Header:     header,
		Body:       io.NopCloser(strings.NewReader(body)),
		Request:    req,
	}, nil
}

func newStubRepository(handle func(req *http.Request) (int, string, string)) GithubRepository {
	client := github.NewClient(&http.Client{Transport: &stubTransport{handle: handle}})
	return NewGithubRepositoryFromClient(client, "acme", "widgets", ratelimit.New(nil))
}

func TestGithubRepository_ListIssues(t *testing.T) {
	t.Run("Should follow pagination and drop pull requests", func(t *testing.T) {
		repo := newStubRepository(func(req *http.Request) (int, string, string) {
			if req.URL.Query().Get("page") == "2" {
				return http.StatusOK, "", `[{"number": 3, "title": "third"}]`
			}
			link := fmt.Sprintf("<%s&page=2>; rel=\"next\"", req.URL.String())
			return http.StatusOK, link, `[
				{"number": 1, "title": "first"},
				{"number": 2, "title": "a PR", "pull_request": {"url": "https://api.github.com/repos/acme/widgets/pulls/2"}}
			]`
		})

		issues, err := repo.ListIssues(context.Background())
		require.NoError(t, err)
		require.Len(t, issues, 2)
		assert.Equal(t, 1, issues[0].GetNumber())
		assert.Equal(t, 3, issues[1].GetNumber())
	})
}

func TestGithubRepository_ListSubIssues(t *testing.T) {
	t.Run("Should return sub-issues as issues", func(t *testing.T) {
		repo := newStubRepository(func(req *http.Request) (int, string, string) {
			require.Contains(t, req.URL.Path, "/issues/10/sub_issues")
			return http.StatusOK, "", `[{"number": 11, "title": "child"}, {"number": 12, "title": "second child"}]`
		})

		children, err := repo.ListSubIssues(context.Background(), 10)
		require.NoError(t, err)
		require.Len(t, children, 2)
		assert.Equal(t, 11, children[0].GetNumber())
		assert.Equal(t, 12, children[1].GetNumber())
	})
}

func TestGithubRepository_BranchExists(t *testing.T) {
	t.Run("Should report a missing branch without error", func(t *testing.T) {
		repo := newStubRepository(func(req *http.Request) (int, string, string) {
			return http.StatusNotFound, "", `{"message": "Branch not found"}`
		})

		exists, err := repo.BranchExists(context.Background(), "gone")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("Should report an existing branch", func(t *testing.T) {
		repo := newStubRepository(func(req *http.Request) (int, string, string) {
			return http.StatusOK, "", `{"name": "main"}`
		})

		exists, err := repo.BranchExists(context.Background(), "main")
		require.NoError(t, err)
		assert.True(t, exists)
	})
}
