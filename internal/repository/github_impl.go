package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/compozy/repovault/internal/config"
	"github.com/compozy/repovault/internal/ratelimit"
	"github.com/google/go-github/v74/github"
	"golang.org/x/oauth2"
)

const listPageSize = 100

// githubRepository is the implementation of the GithubRepository
// interface. All calls run through the rate-limited invoker.
type githubRepository struct {
	client  *github.Client
	invoker *ratelimit.Invoker
	owner   string
	repo    string
}

// NewGithubRepository creates a new GithubRepository with validation.
func NewGithubRepository(token, owner, repo string, invoker *ratelimit.Invoker) (GithubRepository, error) {
	if err := config.ValidateGitHubToken(token); err != nil {
		return nil, fmt.Errorf("invalid GitHub token: %w", err)
	}
	if err := config.ValidateGitHubOwnerRepo(owner, repo); err != nil {
		return nil, fmt.Errorf("invalid repository configuration: %w", err)
	}
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: strings.TrimSpace(token)},
	)
	tc := oauth2.NewClient(context.Background(), ts)
	client := github.NewClient(tc)
	return &githubRepository{
		client:  client,
		invoker: invoker,
		owner:   owner,
		repo:    repo,
	}, nil
}

// NewGithubRepositoryFromClient wires an existing client, for tests
// against a stub transport.
func NewGithubRepositoryFromClient(client *github.Client, owner, repo string, invoker *ratelimit.Invoker) GithubRepository {
	return &githubRepository{client: client, invoker: invoker, owner: owner, repo: repo}
}

func (r *githubRepository) ListLabels(ctx context.Context) ([]*github.Label, error) {
	var all []*github.Label
	opts := &github.ListOptions{PerPage: listPageSize}
	for {
		var page []*github.Label
		var resp *github.Response
		err := r.invoker.Do(ctx, "list labels", func(ctx context.Context) (*github.Response, error) {
			var err error
			page, resp, err = r.client.Issues.ListLabels(ctx, r.owner, r.repo, opts)
			return resp, err
		})
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if resp.NextPage == 0 {
			return all, nil
		}
		opts.Page = resp.NextPage
	}
}

func (r *githubRepository) CreateLabel(ctx context.Context, label *github.Label) error {
	return r.invoker.Do(ctx, "create label", func(ctx context.Context) (*github.Response, error) {
		_, resp, err := r.client.Issues.CreateLabel(ctx, r.owner, r.repo, label)
		return resp, err
	})
}

func (r *githubRepository) UpdateLabel(ctx context.Context, name string, label *github.Label) error {
	return r.invoker.Do(ctx, "update label", func(ctx context.Context) (*github.Response, error) {
		_, resp, err := r.client.Issues.EditLabel(ctx, r.owner, r.repo, name, label)
		return resp, err
	})
}

func (r *githubRepository) DeleteLabel(ctx context.Context, name string) error {
	return r.invoker.Do(ctx, "delete label", func(ctx context.Context) (*github.Response, error) {
		return r.client.Issues.DeleteLabel(ctx, r.owner, r.repo, name)
	})
}

func (r *githubRepository) ListMilestones(ctx context.Context) ([]*github.Milestone, error) {
	var all []*github.Milestone
	opts := &github.MilestoneListOptions{
		State:       "all",
		ListOptions: github.ListOptions{PerPage: listPageSize},
	}
	for {
		var page []*github.Milestone
		var resp *github.Response
		err := r.invoker.Do(ctx, "list milestones", func(ctx context.Context) (*github.Response, error) {
			var err error
			page, resp, err = r.client.Issues.ListMilestones(ctx, r.owner, r.repo, opts)
			return resp, err
		})
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if resp.NextPage == 0 {
			return all, nil
		}
		opts.Page = resp.NextPage
	}
}

func (r *githubRepository) CreateMilestone(ctx context.Context, milestone *github.Milestone) (*github.Milestone, error) {
	var created *github.Milestone
	err := r.invoker.Do(ctx, "create milestone", func(ctx context.Context) (*github.Response, error) {
		var resp *github.Response
		var err error
		created, resp, err = r.client.Issues.CreateMilestone(ctx, r.owner, r.repo, milestone)
		return resp, err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (r *githubRepository) CloseMilestone(ctx context.Context, number int) error {
	state := "closed"
	return r.invoker.Do(ctx, "close milestone", func(ctx context.Context) (*github.Response, error) {
		_, resp, err := r.client.Issues.EditMilestone(ctx, r.owner, r.repo, number, &github.Milestone{State: &state})
		return resp, err
	})
}

// ListIssues returns every issue in the repository, excluding pull
// requests, which GitHub reports through the same endpoint.
func (r *githubRepository) ListIssues(ctx context.Context) ([]*github.Issue, error) {
	var all []*github.Issue
	opts := &github.IssueListByRepoOptions{
		State:       "all",
		ListOptions: github.ListOptions{PerPage: listPageSize},
	}
	for {
		var page []*github.Issue
		var resp *github.Response
		err := r.invoker.Do(ctx, "list issues", func(ctx context.Context) (*github.Response, error) {
			var err error
			page, resp, err = r.client.Issues.ListByRepo(ctx, r.owner, r.repo, opts)
			return resp, err
		})
		if err != nil {
			return nil, err
		}
		for _, issue := range page {
			if issue.IsPullRequest() {
				continue
			}
			all = append(all, issue)
		}
		if resp.NextPage == 0 {
			return all, nil
		}
		opts.ListOptions.Page = resp.NextPage
	}
}

func (r *githubRepository) CreateIssue(ctx context.Context, req *github.IssueRequest) (*github.Issue, error) {
	var created *github.Issue
	err := r.invoker.Do(ctx, "create issue", func(ctx context.Context) (*github.Response, error) {
		var resp *github.Response
		var err error
		created, resp, err = r.client.Issues.Create(ctx, r.owner, r.repo, req)
		return resp, err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (r *githubRepository) CloseIssue(ctx context.Context, number int) error {
	state := "closed"
	return r.invoker.Do(ctx, "close issue", func(ctx context.Context) (*github.Response, error) {
		_, resp, err := r.client.Issues.Edit(ctx, r.owner, r.repo, number, &github.IssueRequest{State: &state})
		return resp, err
	})
}

func (r *githubRepository) GetIssueID(ctx context.Context, number int) (int64, error) {
	var issue *github.Issue
	err := r.invoker.Do(ctx, "get issue", func(ctx context.Context) (*github.Response, error) {
		var resp *github.Response
		var err error
		issue, resp, err = r.client.Issues.Get(ctx, r.owner, r.repo, number)
		return resp, err
	})
	if err != nil {
		return 0, err
	}
	return issue.GetID(), nil
}

// ListIssueComments lists every comment in the repository; issue number
// zero selects the repo-wide endpoint, which covers issues and pull
// requests alike.
func (r *githubRepository) ListIssueComments(ctx context.Context) ([]*github.IssueComment, error) {
	var all []*github.IssueComment
	sort := "created"
	opts := &github.IssueListCommentsOptions{
		Sort:        &sort,
		ListOptions: github.ListOptions{PerPage: listPageSize},
	}
	for {
		var page []*github.IssueComment
		var resp *github.Response
		err := r.invoker.Do(ctx, "list comments", func(ctx context.Context) (*github.Response, error) {
			var err error
			page, resp, err = r.client.Issues.ListComments(ctx, r.owner, r.repo, 0, opts)
			return resp, err
		})
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if resp.NextPage == 0 {
			return all, nil
		}
		opts.Page = resp.NextPage
	}
}

func (r *githubRepository) CreateIssueComment(ctx context.Context, number int, body string) error {
	comment := &github.IssueComment{Body: github.Ptr(body)}
	return r.invoker.Do(ctx, "create comment", func(ctx context.Context) (*github.Response, error) {
		_, resp, err := r.client.Issues.CreateComment(ctx, r.owner, r.repo, number, comment)
		return resp, err
	})
}

func (r *githubRepository) ListSubIssues(ctx context.Context, parentNumber int) ([]*github.Issue, error) {
	var all []*github.Issue
	opts := &github.IssueListOptions{ListOptions: github.ListOptions{PerPage: listPageSize}}
	for {
		var page []*github.SubIssue
		var resp *github.Response
		err := r.invoker.Do(ctx, "list sub-issues", func(ctx context.Context) (*github.Response, error) {
			var err error
			page, resp, err = r.client.SubIssue.ListByIssue(ctx, r.owner, r.repo, int64(parentNumber), opts)
			return resp, err
		})
		if err != nil {
			return nil, err
		}
		// SubIssue is a defined type over Issue.
		for _, child := range page {
			all = append(all, (*github.Issue)(child))
		}
		if resp.NextPage == 0 {
			return all, nil
		}
		opts.ListOptions.Page = resp.NextPage
	}
}

func (r *githubRepository) AddSubIssue(ctx context.Context, parentNumber int, childID int64) error {
	return r.invoker.Do(ctx, "add sub-issue", func(ctx context.Context) (*github.Response, error) {
		_, resp, err := r.client.SubIssue.Add(ctx, r.owner, r.repo, int64(parentNumber),
			github.SubIssueRequest{SubIssueID: childID})
		return resp, err
	})
}

func (r *githubRepository) ListPullRequests(ctx context.Context) ([]*github.PullRequest, error) {
	var all []*github.PullRequest
	opts := &github.PullRequestListOptions{
		State:       "all",
		ListOptions: github.ListOptions{PerPage: listPageSize},
	}
	for {
		var page []*github.PullRequest
		var resp *github.Response
		err := r.invoker.Do(ctx, "list pull requests", func(ctx context.Context) (*github.Response, error) {
			var err error
			page, resp, err = r.client.PullRequests.List(ctx, r.owner, r.repo, opts)
			return resp, err
		})
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if resp.NextPage == 0 {
			return all, nil
		}
		opts.Page = resp.NextPage
	}
}

func (r *githubRepository) CreatePullRequest(ctx context.Context, req *github.NewPullRequest) (*github.PullRequest, error) {
	var created *github.PullRequest
	err := r.invoker.Do(ctx, "create pull request", func(ctx context.Context) (*github.Response, error) {
		var resp *github.Response
		var err error
		created, resp, err = r.client.PullRequests.Create(ctx, r.owner, r.repo, req)
		return resp, err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (r *githubRepository) BranchExists(ctx context.Context, branch string) (bool, error) {
	var found bool
	err := r.invoker.Do(ctx, "get branch", func(ctx context.Context) (*github.Response, error) {
		_, resp, err := r.client.Repositories.GetBranch(ctx, r.owner, r.repo, branch, 1)
		if resp != nil && resp.StatusCode == 404 {
			found = false
			return resp, nil
		}
		if err == nil {
			found = true
		}
		return resp, err
	})
	if err != nil {
		return false, err
	}
	return found, nil
}

func (r *githubRepository) ListReviews(ctx context.Context, pullNumber int) ([]*github.PullRequestReview, error) {
	var all []*github.PullRequestReview
	opts := &github.ListOptions{PerPage: listPageSize}
	for {
		var page []*github.PullRequestReview
		var resp *github.Response
		err := r.invoker.Do(ctx, "list reviews", func(ctx context.Context) (*github.Response, error) {
			var err error
			page, resp, err = r.client.PullRequests.ListReviews(ctx, r.owner, r.repo, pullNumber, opts)
			return resp, err
		})
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if resp.NextPage == 0 {
			return all, nil
		}
		opts.Page = resp.NextPage
	}
}

func (r *githubRepository) ListReleases(ctx context.Context) ([]*github.RepositoryRelease, error) {
	var all []*github.RepositoryRelease
	opts := &github.ListOptions{PerPage: listPageSize}
	for {
		var page []*github.RepositoryRelease
		var resp *github.Response
		err := r.invoker.Do(ctx, "list releases", func(ctx context.Context) (*github.Response, error) {
			var err error
			page, resp, err = r.client.Repositories.ListReleases(ctx, r.owner, r.repo, opts)
			return resp, err
		})
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if resp.NextPage == 0 {
			return all, nil
		}
		opts.Page = resp.NextPage
	}
}

func (r *githubRepository) CreateRelease(ctx context.Context, release *github.RepositoryRelease) error {
	return r.invoker.Do(ctx, "create release", func(ctx context.Context) (*github.Response, error) {
		_, resp, err := r.client.Repositories.CreateRelease(ctx, r.owner, r.repo, release)
		return resp, err
	})
}
