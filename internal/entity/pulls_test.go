package entity

import (
	"context"
	"testing"
	"time"

	"github.com/compozy/repovault/internal/domain"
	"github.com/compozy/repovault/internal/remap"
	"github.com/compozy/repovault/internal/strategy"
	"github.com/google/go-github/v74/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestPullsSave(t *testing.T) {
	t.Run("Should snapshot selected pull requests with branch refs", func(t *testing.T) {
		api := new(mockGithubRepository)
		store := new(mockSnapshotRepository)
		created := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
		api.On("ListPullRequests", mock.Anything).Return([]*github.PullRequest{
			{
				Number:    github.Ptr(4),
				Title:     github.Ptr("Add retry"),
				State:     github.Ptr("open"),
				User:      &github.User{Login: github.Ptr("octocat")},
				Head:      &github.PullRequestBranch{Ref: github.Ptr("feature/retry")},
				Base:      &github.PullRequestBranch{Ref: github.Ptr("main")},
				CreatedAt: &github.Timestamp{Time: created},
			},
		}, nil)
		store.On("WriteEntity", mock.Anything, domain.EntityPullRequests, []domain.PullRequest{
			{
				Number:    4,
				Title:     "Add retry",
				State:     "open",
				Author:    "octocat",
				Head:      "feature/retry",
				Base:      "main",
				CreatedAt: created,
			},
		}).Return(nil)

		strat, err := newPullsSave(&strategy.Context{API: api, Store: store})
		require.NoError(t, err)
		result := strat.Run(context.Background())

		assert.Equal(t, domain.StatusDone, result.Status)
		assert.Equal(t, 1, result.Created)
		store.AssertExpectations(t)
	})
}

func TestPullsRestore(t *testing.T) {
	t.Run("Should create the pull request and record its new number", func(t *testing.T) {
		api := new(mockGithubRepository)
		store := new(mockSnapshotRepository)
		ids := remap.NewMap()
		store.On("ReadEntity", mock.Anything, domain.EntityPullRequests, mock.Anything).
			Run(readEntityItems([]domain.PullRequest{
				{Number: 4, Title: "Add retry", Body: "backoff", Head: "feature/retry", Base: "main"},
			})).Return(nil)
		api.On("BranchExists", mock.Anything, "feature/retry").Return(true, nil)
		api.On("BranchExists", mock.Anything, "main").Return(true, nil)
		api.On("CreatePullRequest", mock.Anything, &github.NewPullRequest{
			Title: github.Ptr("Add retry"),
			Body:  github.Ptr("backoff"),
			Head:  github.Ptr("feature/retry"),
			Base:  github.Ptr("main"),
		}).Return(&github.PullRequest{Number: github.Ptr(17)}, nil)

		strat, err := newPullsRestore(&strategy.Context{API: api, Store: store, IDs: ids})
		require.NoError(t, err)
		result := strat.Run(context.Background())

		assert.Equal(t, domain.StatusDone, result.Status)
		assert.Equal(t, 1, result.Created)
		mapped, ok := ids.Resolve(domain.EntityPullRequests, 4)
		require.True(t, ok)
		assert.Equal(t, 17, mapped)
		api.AssertExpectations(t)
	})

	t.Run("Should skip with a warning when a branch is missing", func(t *testing.T) {
		api := new(mockGithubRepository)
		store := new(mockSnapshotRepository)
		store.On("ReadEntity", mock.Anything, domain.EntityPullRequests, mock.Anything).
			Run(readEntityItems([]domain.PullRequest{
				{Number: 4, Title: "Add retry", Head: "feature/retry", Base: "main"},
			})).Return(nil)
		api.On("BranchExists", mock.Anything, "feature/retry").Return(false, nil)

		strat, err := newPullsRestore(&strategy.Context{API: api, Store: store, IDs: remap.NewMap()})
		require.NoError(t, err)
		result := strat.Run(context.Background())

		assert.Equal(t, domain.StatusDone, result.Status)
		assert.Equal(t, 0, result.Created)
		assert.Equal(t, 1, result.Skipped)
		require.Len(t, result.Warnings, 1)
		assert.Contains(t, result.Warnings[0], "#4")
		assert.Contains(t, result.Warnings[0], "feature/retry")
		api.AssertNotCalled(t, "CreatePullRequest", mock.Anything, mock.Anything)
	})

	t.Run("Should keep restoring other pull requests after a skip", func(t *testing.T) {
		api := new(mockGithubRepository)
		store := new(mockSnapshotRepository)
		ids := remap.NewMap()
		store.On("ReadEntity", mock.Anything, domain.EntityPullRequests, mock.Anything).
			Run(readEntityItems([]domain.PullRequest{
				{Number: 4, Title: "Gone branch", Head: "deleted", Base: "main"},
				{Number: 5, Title: "Still here", Head: "develop", Base: "main"},
			})).Return(nil)
		api.On("BranchExists", mock.Anything, "deleted").Return(false, nil)
		api.On("BranchExists", mock.Anything, "develop").Return(true, nil)
		api.On("BranchExists", mock.Anything, "main").Return(true, nil)
		api.On("CreatePullRequest", mock.Anything, mock.Anything).
			Return(&github.PullRequest{Number: github.Ptr(18)}, nil)

		strat, err := newPullsRestore(&strategy.Context{API: api, Store: store, IDs: ids})
		require.NoError(t, err)
		result := strat.Run(context.Background())

		assert.Equal(t, 1, result.Created)
		assert.Equal(t, 1, result.Skipped)
		mapped, ok := ids.Resolve(domain.EntityPullRequests, 5)
		require.True(t, ok)
		assert.Equal(t, 18, mapped)
	})
}
