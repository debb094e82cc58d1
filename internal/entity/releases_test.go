package entity

import (
	"context"
	"testing"
	"time"

	"github.com/compozy/repovault/internal/domain"
	"github.com/compozy/repovault/internal/strategy"
	"github.com/google/go-github/v74/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestReleaseLess(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("Should order semver tags numerically", func(t *testing.T) {
		a := domain.Release{TagName: "v1.2.0"}
		b := domain.Release{TagName: "v1.10.0"}
		assert.True(t, releaseLess(a, b))
		assert.False(t, releaseLess(b, a))
	})

	t.Run("Should fall back to creation time for non-semver tags", func(t *testing.T) {
		a := domain.Release{TagName: "nightly-b", CreatedAt: base}
		b := domain.Release{TagName: "nightly-a", CreatedAt: base.Add(time.Hour)}
		assert.True(t, releaseLess(a, b))
		assert.False(t, releaseLess(b, a))
	})
}

func TestReleasesRestore(t *testing.T) {
	t.Run("Should recreate releases oldest first", func(t *testing.T) {
		api := new(mockGithubRepository)
		store := new(mockSnapshotRepository)
		store.On("ReadEntity", mock.Anything, domain.EntityReleases, mock.Anything).
			Run(readEntityItems([]domain.Release{
				{TagName: "v2.0.0"},
				{TagName: "v1.0.0"},
				{TagName: "v1.5.0", Prerelease: true},
			})).Return(nil)
		var tags []string
		api.On("CreateRelease", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				tags = append(tags, args.Get(1).(*github.RepositoryRelease).GetTagName())
			}).
			Return(nil)

		strat, err := newReleasesRestore(&strategy.Context{API: api, Store: store})
		require.NoError(t, err)
		result := strat.Run(context.Background())

		assert.Equal(t, domain.StatusDone, result.Status)
		assert.Equal(t, 3, result.Created)
		assert.Equal(t, []string{"v1.0.0", "v1.5.0", "v2.0.0"}, tags)
	})
}
