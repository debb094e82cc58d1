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

func TestReviewsSave(t *testing.T) {
	t.Run("Should collect reviews across pull requests", func(t *testing.T) {
		api := new(mockGithubRepository)
		store := new(mockSnapshotRepository)
		submitted := time.Date(2024, 5, 2, 14, 0, 0, 0, time.UTC)
		api.On("ListPullRequests", mock.Anything).Return([]*github.PullRequest{
			{Number: github.Ptr(3)},
		}, nil)
		api.On("ListReviews", mock.Anything, 3).Return([]*github.PullRequestReview{
			{
				ID:          github.Ptr(int64(900)),
				User:        &github.User{Login: github.Ptr("octocat")},
				State:       github.Ptr("APPROVED"),
				Body:        github.Ptr("ship it"),
				SubmittedAt: &github.Timestamp{Time: submitted},
			},
		}, nil)
		store.On("WriteEntity", mock.Anything, domain.EntityReviews, []domain.Review{
			{ID: 900, PullNumber: 3, Author: "octocat", State: "APPROVED", Body: "ship it", CreatedAt: submitted},
		}).Return(nil)

		strat, err := newReviewsSave(&strategy.Context{API: api, Store: store})
		require.NoError(t, err)
		result := strat.Run(context.Background())

		assert.Equal(t, domain.StatusDone, result.Status)
		assert.Equal(t, 1, result.Created)
		store.AssertExpectations(t)
	})
}

func TestReviewsRestore(t *testing.T) {
	t.Run("Should restore a review as an annotated comment on the remapped pull request", func(t *testing.T) {
		api := new(mockGithubRepository)
		store := new(mockSnapshotRepository)
		ids := remap.NewMap()
		ids.Put(domain.EntityPullRequests, 3, 21)
		store.On("ReadEntity", mock.Anything, domain.EntityReviews, mock.Anything).
			Run(readEntityItems([]domain.Review{
				{ID: 900, PullNumber: 3, State: "APPROVED", Body: "ship it"},
			})).Return(nil)
		api.On("CreateIssueComment", mock.Anything, 21, "**Review (APPROVED)**\n\nship it").Return(nil)

		strat, err := newReviewsRestore(&strategy.Context{API: api, Store: store, IDs: ids})
		require.NoError(t, err)
		result := strat.Run(context.Background())

		assert.Equal(t, domain.StatusDone, result.Status)
		assert.Equal(t, 1, result.Created)
		api.AssertExpectations(t)
	})

	t.Run("Should replay reviews in submission order", func(t *testing.T) {
		api := new(mockGithubRepository)
		store := new(mockSnapshotRepository)
		ids := remap.NewMap()
		ids.Put(domain.EntityPullRequests, 3, 21)
		base := time.Date(2024, 5, 2, 14, 0, 0, 0, time.UTC)
		store.On("ReadEntity", mock.Anything, domain.EntityReviews, mock.Anything).
			Run(readEntityItems([]domain.Review{
				{ID: 2, PullNumber: 3, State: "APPROVED", Body: "second", CreatedAt: base.Add(time.Hour)},
				{ID: 1, PullNumber: 3, State: "CHANGES_REQUESTED", Body: "first", CreatedAt: base},
			})).Return(nil)
		var bodies []string
		api.On("CreateIssueComment", mock.Anything, 21, mock.Anything).
			Run(func(args mock.Arguments) { bodies = append(bodies, args.String(2)) }).
			Return(nil)

		strat, err := newReviewsRestore(&strategy.Context{API: api, Store: store, IDs: ids})
		require.NoError(t, err)
		result := strat.Run(context.Background())

		assert.Equal(t, 2, result.Created)
		require.Len(t, bodies, 2)
		assert.Contains(t, bodies[0], "first")
		assert.Contains(t, bodies[1], "second")
	})

	t.Run("Should skip reviews whose pull request was not restored", func(t *testing.T) {
		api := new(mockGithubRepository)
		store := new(mockSnapshotRepository)
		store.On("ReadEntity", mock.Anything, domain.EntityReviews, mock.Anything).
			Run(readEntityItems([]domain.Review{
				{ID: 900, PullNumber: 99, State: "APPROVED", Body: "orphaned"},
			})).Return(nil)

		strat, err := newReviewsRestore(&strategy.Context{API: api, Store: store, IDs: remap.NewMap()})
		require.NoError(t, err)
		result := strat.Run(context.Background())

		assert.Equal(t, domain.StatusDone, result.Status)
		assert.Equal(t, 0, result.Created)
		assert.Equal(t, 1, result.Skipped)
		require.Len(t, result.Warnings, 1)
		assert.Contains(t, result.Warnings[0], "#99")
		api.AssertNotCalled(t, "CreateIssueComment", mock.Anything, mock.Anything, mock.Anything)
	})
}
