package entity

import (
	"context"
	"fmt"
	"sort"

	"github.com/Masterminds/semver/v3"
	"github.com/compozy/repovault/internal/domain"
	"github.com/compozy/repovault/internal/strategy"
	"github.com/google/go-github/v74/github"
)

// ReleasesDescriptor declares the releases entity. A release points at
// a git tag, so restore depends on the mirror push having recreated
// the tags first.
func ReleasesDescriptor() strategy.Descriptor {
	return strategy.Descriptor{
		Name:           domain.EntityReleases,
		Dependencies:   []domain.EntityName{domain.EntityGitRepository},
		DefaultEnabled: true,
		NewSave:        newReleasesSave,
		NewRestore:     newReleasesRestore,
	}
}

func newReleasesSave(sctx *strategy.Context) (strategy.Strategy, error) {
	if err := strategy.Require(domain.EntityReleases, "apiClient", sctx.API != nil); err != nil {
		return nil, err
	}
	if err := strategy.Require(domain.EntityReleases, "storageService", sctx.Store != nil); err != nil {
		return nil, err
	}
	return &strategy.Pipeline[*github.RepositoryRelease, domain.Release]{
		Entity: domain.EntityReleases,
		Read: func(ctx context.Context) ([]*github.RepositoryRelease, error) {
			return sctx.API.ListReleases(ctx)
		},
		Transform: func(_ context.Context, items []*github.RepositoryRelease, _ *domain.Result) ([]domain.Release, error) {
			records := make([]domain.Release, 0, len(items))
			for _, release := range items {
				records = append(records, domain.Release{
					TagName:    release.GetTagName(),
					Name:       release.GetName(),
					Body:       release.GetBody(),
					Draft:      release.GetDraft(),
					Prerelease: release.GetPrerelease(),
					CreatedAt:  release.GetCreatedAt().Time,
				})
			}
			return records, nil
		},
		Write: func(ctx context.Context, items []domain.Release, result *domain.Result) error {
			if err := sctx.Store.WriteEntity(ctx, domain.EntityReleases, items); err != nil {
				return err
			}
			result.Created = len(items)
			return nil
		},
	}, nil
}

func newReleasesRestore(sctx *strategy.Context) (strategy.Strategy, error) {
	if err := strategy.Require(domain.EntityReleases, "apiClient", sctx.API != nil); err != nil {
		return nil, err
	}
	if err := strategy.Require(domain.EntityReleases, "storageService", sctx.Store != nil); err != nil {
		return nil, err
	}
	return &strategy.Pipeline[domain.Release, domain.Release]{
		Entity: domain.EntityReleases,
		Read: func(ctx context.Context) ([]domain.Release, error) {
			var records []domain.Release
			if err := sctx.Store.ReadEntity(ctx, domain.EntityReleases, &records); err != nil {
				return nil, err
			}
			return records, nil
		},
		Transform: func(_ context.Context, items []domain.Release, _ *domain.Result) ([]domain.Release, error) {
			sorted := make([]domain.Release, len(items))
			copy(sorted, items)
			sort.SliceStable(sorted, func(i, j int) bool {
				return releaseLess(sorted[i], sorted[j])
			})
			return sorted, nil
		},
		Write: func(ctx context.Context, items []domain.Release, result *domain.Result) error {
			for _, record := range items {
				payload := &github.RepositoryRelease{
					TagName:    github.Ptr(record.TagName),
					Name:       github.Ptr(record.Name),
					Body:       github.Ptr(record.Body),
					Draft:      github.Ptr(record.Draft),
					Prerelease: github.Ptr(record.Prerelease),
				}
				if err := sctx.API.CreateRelease(ctx, payload); err != nil {
					return fmt.Errorf("failed to create release %q: %w", record.TagName, err)
				}
				result.Created++
			}
			return nil
		},
	}, nil
}

// releaseLess orders releases for recreation: semver order when both
// tags parse as semver, creation time otherwise.
func releaseLess(a, b domain.Release) bool {
	va, errA := semver.NewVersion(a.TagName)
	vb, errB := semver.NewVersion(b.TagName)
	if errA == nil && errB == nil {
		return va.LessThan(vb)
	}
	return a.CreatedAt.Before(b.CreatedAt)
}
