package entity

import (
	"context"
	"fmt"

	"github.com/compozy/repovault/internal/domain"
	"github.com/compozy/repovault/internal/strategy"
	"github.com/google/go-github/v74/github"
)

// PullRequestsDescriptor declares the pull requests entity. Restore is
// best effort: a PR can only be recreated when its head and base
// branches still exist in the target, which the git mirror restore
// normally guarantees.
func PullRequestsDescriptor() strategy.Descriptor {
	return strategy.Descriptor{
		Name:           domain.EntityPullRequests,
		Dependencies:   []domain.EntityName{domain.EntityLabels, domain.EntityMilestones},
		DefaultEnabled: true,
		NewSave:        newPullsSave,
		NewRestore:     newPullsRestore,
	}
}

func newPullsSave(sctx *strategy.Context) (strategy.Strategy, error) {
	if err := strategy.Require(domain.EntityPullRequests, "apiClient", sctx.API != nil); err != nil {
		return nil, err
	}
	if err := strategy.Require(domain.EntityPullRequests, "storageService", sctx.Store != nil); err != nil {
		return nil, err
	}
	filter := sctx.Filter(domain.EntityPullRequests)
	return &strategy.Pipeline[*github.PullRequest, domain.PullRequest]{
		Entity: domain.EntityPullRequests,
		Read: func(ctx context.Context) ([]*github.PullRequest, error) {
			pulls, err := sctx.API.ListPullRequests(ctx)
			if err != nil {
				return nil, err
			}
			selected := pulls[:0]
			for _, pull := range pulls {
				if filter.Includes(pull.GetNumber()) {
					selected = append(selected, pull)
				}
			}
			return selected, nil
		},
		Transform: func(_ context.Context, items []*github.PullRequest, _ *domain.Result) ([]domain.PullRequest, error) {
			records := make([]domain.PullRequest, 0, len(items))
			for _, pull := range items {
				record := domain.PullRequest{
					Number:    pull.GetNumber(),
					Title:     pull.GetTitle(),
					Body:      pull.GetBody(),
					State:     pull.GetState(),
					Author:    pull.GetUser().GetLogin(),
					Head:      pull.GetHead().GetRef(),
					Base:      pull.GetBase().GetRef(),
					Milestone: pull.GetMilestone().GetNumber(),
					CreatedAt: pull.GetCreatedAt().Time,
				}
				for _, label := range pull.Labels {
					record.Labels = append(record.Labels, label.GetName())
				}
				if pull.MergedAt != nil {
					merged := pull.GetMergedAt().Time
					record.MergedAt = &merged
				}
				records = append(records, record)
			}
			return records, nil
		},
		Write: func(ctx context.Context, items []domain.PullRequest, result *domain.Result) error {
			if err := sctx.Store.WriteEntity(ctx, domain.EntityPullRequests, items); err != nil {
				return err
			}
			result.Created = len(items)
			return nil
		},
	}, nil
}

func newPullsRestore(sctx *strategy.Context) (strategy.Strategy, error) {
	if err := strategy.Require(domain.EntityPullRequests, "apiClient", sctx.API != nil); err != nil {
		return nil, err
	}
	if err := strategy.Require(domain.EntityPullRequests, "storageService", sctx.Store != nil); err != nil {
		return nil, err
	}
	if err := strategy.Require(domain.EntityPullRequests, "identifierMap", sctx.IDs != nil); err != nil {
		return nil, err
	}
	filter := sctx.Filter(domain.EntityPullRequests)
	return &strategy.Pipeline[domain.PullRequest, domain.PullRequest]{
		Entity: domain.EntityPullRequests,
		Read: func(ctx context.Context) ([]domain.PullRequest, error) {
			var records []domain.PullRequest
			if err := sctx.Store.ReadEntity(ctx, domain.EntityPullRequests, &records); err != nil {
				return nil, err
			}
			selected := records[:0]
			for _, record := range records {
				if filter.Includes(record.Number) {
					selected = append(selected, record)
				}
			}
			return selected, nil
		},
		Transform: func(_ context.Context, items []domain.PullRequest, _ *domain.Result) ([]domain.PullRequest, error) {
			return items, nil
		},
		Write: func(ctx context.Context, items []domain.PullRequest, result *domain.Result) error {
			for _, record := range items {
				ok, err := branchesExist(ctx, sctx, record)
				if err != nil {
					return err
				}
				if !ok {
					result.Warn(domain.NewDataIntegrityError(domain.EntityPullRequests,
						"PR #%d needs branches %q and %q which do not exist in the target; skipped",
						record.Number, record.Head, record.Base))
					result.Skipped++
					continue
				}
				req := &github.NewPullRequest{
					Title: github.Ptr(record.Title),
					Body:  github.Ptr(attribution(sctx.PreserveMetadata, record.Author, record.CreatedAt, record.Body)),
					Head:  github.Ptr(record.Head),
					Base:  github.Ptr(record.Base),
				}
				created, err := sctx.API.CreatePullRequest(ctx, req)
				if err != nil {
					return fmt.Errorf("failed to create pull request %q: %w", record.Title, err)
				}
				sctx.IDs.Put(domain.EntityPullRequests, record.Number, created.GetNumber())
				result.Created++
			}
			return nil
		},
	}, nil
}

func branchesExist(ctx context.Context, sctx *strategy.Context, record domain.PullRequest) (bool, error) {
	for _, branch := range []string{record.Head, record.Base} {
		exists, err := sctx.API.BranchExists(ctx, branch)
		if err != nil {
			return false, fmt.Errorf("failed to check branch %q: %w", branch, err)
		}
		if !exists {
			return false, nil
		}
	}
	return true, nil
}
