package repository

import (
	"context"

	"github.com/google/go-github/v74/github"
)

// GithubRepository defines the interface for GitHub API operations.
// List methods paginate internally and return raw API types; the
// strategies own the conversion to and from snapshot records. Every
// call goes through the rate-limited invoker.

type GithubRepository interface {
	// Labels
	ListLabels(ctx context.Context) ([]*github.Label, error)
	CreateLabel(ctx context.Context, label *github.Label) error
	UpdateLabel(ctx context.Context, name string, label *github.Label) error
	DeleteLabel(ctx context.Context, name string) error

	// Milestones
	ListMilestones(ctx context.Context) ([]*github.Milestone, error)
	CreateMilestone(ctx context.Context, milestone *github.Milestone) (*github.Milestone, error)
	CloseMilestone(ctx context.Context, number int) error

	// Issues
	ListIssues(ctx context.Context) ([]*github.Issue, error)
	CreateIssue(ctx context.Context, req *github.IssueRequest) (*github.Issue, error)
	CloseIssue(ctx context.Context, number int) error
	GetIssueID(ctx context.Context, number int) (int64, error)

	// Comments
	ListIssueComments(ctx context.Context) ([]*github.IssueComment, error)
	CreateIssueComment(ctx context.Context, number int, body string) error

	// Sub-issues
	ListSubIssues(ctx context.Context, parentNumber int) ([]*github.Issue, error)
	AddSubIssue(ctx context.Context, parentNumber int, childID int64) error

	// Pull requests and reviews
	ListPullRequests(ctx context.Context) ([]*github.PullRequest, error)
	CreatePullRequest(ctx context.Context, req *github.NewPullRequest) (*github.PullRequest, error)
	BranchExists(ctx context.Context, branch string) (bool, error)
	ListReviews(ctx context.Context, pullNumber int) ([]*github.PullRequestReview, error)

	// Releases
	ListReleases(ctx context.Context) ([]*github.RepositoryRelease, error)
	CreateRelease(ctx context.Context, release *github.RepositoryRelease) error
}
