package entity

import (
	"context"

	"github.com/compozy/repovault/internal/domain"
	"github.com/google/go-github/v74/github"
	"github.com/stretchr/testify/mock"
)

// Mock for repository.GithubRepository
type mockGithubRepository struct {
	mock.Mock
}

func (m *mockGithubRepository) ListLabels(ctx context.Context) ([]*github.Label, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*github.Label), args.Error(1)
}

func (m *mockGithubRepository) CreateLabel(ctx context.Context, label *github.Label) error {
	args := m.Called(ctx, label)
	return args.Error(0)
}

func (m *mockGithubRepository) UpdateLabel(ctx context.Context, name string, label *github.Label) error {
	args := m.Called(ctx, name, label)
	return args.Error(0)
}

func (m *mockGithubRepository) DeleteLabel(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

func (m *mockGithubRepository) ListMilestones(ctx context.Context) ([]*github.Milestone, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*github.Milestone), args.Error(1)
}

func (m *mockGithubRepository) CreateMilestone(ctx context.Context, milestone *github.Milestone) (*github.Milestone, error) {
	args := m.Called(ctx, milestone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*github.Milestone), args.Error(1)
}

func (m *mockGithubRepository) CloseMilestone(ctx context.Context, number int) error {
	args := m.Called(ctx, number)
	return args.Error(0)
}

func (m *mockGithubRepository) ListIssues(ctx context.Context) ([]*github.Issue, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*github.Issue), args.Error(1)
}

func (m *mockGithubRepository) CreateIssue(ctx context.Context, req *github.IssueRequest) (*github.Issue, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*github.Issue), args.Error(1)
}

func (m *mockGithubRepository) CloseIssue(ctx context.Context, number int) error {
	args := m.Called(ctx, number)
	return args.Error(0)
}

func (m *mockGithubRepository) GetIssueID(ctx context.Context, number int) (int64, error) {
	args := m.Called(ctx, number)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockGithubRepository) ListIssueComments(ctx context.Context) ([]*github.IssueComment, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*github.IssueComment), args.Error(1)
}

func (m *mockGithubRepository) CreateIssueComment(ctx context.Context, number int, body string) error {
	args := m.Called(ctx, number, body)
	return args.Error(0)
}

func (m *mockGithubRepository) ListSubIssues(ctx context.Context, parentNumber int) ([]*github.Issue, error) {
	args := m.Called(ctx, parentNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*github.Issue), args.Error(1)
}

func (m *mockGithubRepository) AddSubIssue(ctx context.Context, parentNumber int, childID int64) error {
	args := m.Called(ctx, parentNumber, childID)
	return args.Error(0)
}

func (m *mockGithubRepository) ListPullRequests(ctx context.Context) ([]*github.PullRequest, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*github.PullRequest), args.Error(1)
}

func (m *mockGithubRepository) CreatePullRequest(ctx context.Context, req *github.NewPullRequest) (*github.PullRequest, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*github.PullRequest), args.Error(1)
}

func (m *mockGithubRepository) BranchExists(ctx context.Context, branch string) (bool, error) {
	args := m.Called(ctx, branch)
	return args.Bool(0), args.Error(1)
}

func (m *mockGithubRepository) ListReviews(ctx context.Context, pullNumber int) ([]*github.PullRequestReview, error) {
	args := m.Called(ctx, pullNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*github.PullRequestReview), args.Error(1)
}

func (m *mockGithubRepository) ListReleases(ctx context.Context) ([]*github.RepositoryRelease, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*github.RepositoryRelease), args.Error(1)
}

func (m *mockGithubRepository) CreateRelease(ctx context.Context, release *github.RepositoryRelease) error {
	args := m.Called(ctx, release)
	return args.Error(0)
}

// Mock for repository.SnapshotRepository
type mockSnapshotRepository struct {
	mock.Mock
}

func (m *mockSnapshotRepository) WriteEntity(ctx context.Context, entity domain.EntityName, items any) error {
	args := m.Called(ctx, entity, items)
	return args.Error(0)
}

func (m *mockSnapshotRepository) ReadEntity(ctx context.Context, entity domain.EntityName, out any) error {
	args := m.Called(ctx, entity, out)
	return args.Error(0)
}

func (m *mockSnapshotRepository) EntityExists(entity domain.EntityName) (bool, error) {
	args := m.Called(entity)
	return args.Bool(0), args.Error(1)
}

func (m *mockSnapshotRepository) WriteManifest(ctx context.Context, manifest *domain.Manifest) error {
	args := m.Called(ctx, manifest)
	return args.Error(0)
}

func (m *mockSnapshotRepository) ReadManifest(ctx context.Context) (*domain.Manifest, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Manifest), args.Error(1)
}

func (m *mockSnapshotRepository) MirrorPath() string {
	args := m.Called()
	return args.String(0)
}

// Mock for repository.GitRepository
type mockGitRepository struct {
	mock.Mock
}

func (m *mockGitRepository) MirrorClone(ctx context.Context, path, url string) error {
	args := m.Called(ctx, path, url)
	return args.Error(0)
}

func (m *mockGitRepository) PushMirror(ctx context.Context, path, url string) error {
	args := m.Called(ctx, path, url)
	return args.Error(0)
}

func (m *mockGitRepository) MirrorExists(path string) bool {
	args := m.Called(path)
	return args.Bool(0)
}

// readEntityItems stubs ReadEntity to populate out with items.
func readEntityItems[T any](items []T) func(mock.Arguments) {
	return func(args mock.Arguments) {
		out := args.Get(2).(*[]T)
		*out = items
	}
}
