package entity

import (
	"context"
	"fmt"
	"sort"

	"github.com/compozy/repovault/internal/domain"
	"github.com/compozy/repovault/internal/strategy"
)

// ReviewsDescriptor declares the pull request reviews entity. Reviews
// cannot be authored on behalf of other users, so restore recreates
// them as annotated comments on the remapped pull request.
func ReviewsDescriptor() strategy.Descriptor {
	return strategy.Descriptor{
		Name:           domain.EntityReviews,
		Dependencies:   []domain.EntityName{domain.EntityPullRequests},
		DefaultEnabled: true,
		NewSave:        newReviewsSave,
		NewRestore:     newReviewsRestore,
	}
}

func newReviewsSave(sctx *strategy.Context) (strategy.Strategy, error) {
	if err := strategy.Require(domain.EntityReviews, "apiClient", sctx.API != nil); err != nil {
		return nil, err
	}
	if err := strategy.Require(domain.EntityReviews, "storageService", sctx.Store != nil); err != nil {
		return nil, err
	}
	filter := sctx.Filter(domain.EntityReviews)
	return &strategy.Pipeline[domain.Review, domain.Review]{
		Entity: domain.EntityReviews,
		Read: func(ctx context.Context) ([]domain.Review, error) {
			pulls, err := sctx.API.ListPullRequests(ctx)
			if err != nil {
				return nil, err
			}
			var records []domain.Review
			for _, pull := range pulls {
				number := pull.GetNumber()
				if !filter.Includes(number) {
					continue
				}
				reviews, err := sctx.API.ListReviews(ctx, number)
				if err != nil {
					return nil, fmt.Errorf("failed to list reviews of #%d: %w", number, err)
				}
				for _, review := range reviews {
					records = append(records, domain.Review{
						ID:         review.GetID(),
						PullNumber: number,
						Author:     review.GetUser().GetLogin(),
						State:      review.GetState(),
						Body:       review.GetBody(),
						CreatedAt:  review.GetSubmittedAt().Time,
					})
				}
			}
			return records, nil
		},
		Transform: func(_ context.Context, items []domain.Review, _ *domain.Result) ([]domain.Review, error) {
			return items, nil
		},
		Write: func(ctx context.Context, items []domain.Review, result *domain.Result) error {
			if err := sctx.Store.WriteEntity(ctx, domain.EntityReviews, items); err != nil {
				return err
			}
			result.Created = len(items)
			return nil
		},
	}, nil
}

func newReviewsRestore(sctx *strategy.Context) (strategy.Strategy, error) {
	if err := strategy.Require(domain.EntityReviews, "apiClient", sctx.API != nil); err != nil {
		return nil, err
	}
	if err := strategy.Require(domain.EntityReviews, "storageService", sctx.Store != nil); err != nil {
		return nil, err
	}
	if err := strategy.Require(domain.EntityReviews, "identifierMap", sctx.IDs != nil); err != nil {
		return nil, err
	}
	filter := sctx.Filter(domain.EntityReviews)
	return &strategy.Pipeline[domain.Review, commentPayload]{
		Entity: domain.EntityReviews,
		Read: func(ctx context.Context) ([]domain.Review, error) {
			var records []domain.Review
			if err := sctx.Store.ReadEntity(ctx, domain.EntityReviews, &records); err != nil {
				return nil, err
			}
			selected := records[:0]
			for _, record := range records {
				if filter.Includes(record.PullNumber) {
					selected = append(selected, record)
				}
			}
			return selected, nil
		},
		Transform: func(_ context.Context, items []domain.Review, result *domain.Result) ([]commentPayload, error) {
			sorted := make([]domain.Review, len(items))
			copy(sorted, items)
			sort.SliceStable(sorted, func(i, j int) bool {
				return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
			})
			payloads := make([]commentPayload, 0, len(sorted))
			for _, record := range sorted {
				parent, ok := sctx.IDs.Resolve(domain.EntityPullRequests, record.PullNumber)
				if !ok {
					result.Warn(domain.NewDataIntegrityError(domain.EntityReviews,
						"review %d references unmapped pull request #%d; skipped", record.ID, record.PullNumber))
					result.Skipped++
					continue
				}
				body := fmt.Sprintf("**Review (%s)**\n\n%s", record.State, record.Body)
				payloads = append(payloads, commentPayload{
					parent: parent,
					body:   attribution(sctx.PreserveMetadata, record.Author, record.CreatedAt, body),
				})
			}
			return payloads, nil
		},
		Write: func(ctx context.Context, items []commentPayload, result *domain.Result) error {
			for _, payload := range items {
				if err := sctx.API.CreateIssueComment(ctx, payload.parent, payload.body); err != nil {
					return fmt.Errorf("failed to create review comment on #%d: %w", payload.parent, err)
				}
				result.Created++
			}
			return nil
		},
	}, nil
}
