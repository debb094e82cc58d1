package entity

import (
	"context"
	"fmt"

	"github.com/compozy/repovault/internal/domain"
	"github.com/compozy/repovault/internal/strategy"
	"github.com/google/go-github/v74/github"
)

// MilestonesDescriptor declares the milestones entity. Issues and pull
// requests reference milestones by number, so restore records the
// original-to-new number mapping.
func MilestonesDescriptor() strategy.Descriptor {
	return strategy.Descriptor{
		Name:           domain.EntityMilestones,
		DefaultEnabled: true,
		NewSave:        newMilestonesSave,
		NewRestore:     newMilestonesRestore,
	}
}

func newMilestonesSave(sctx *strategy.Context) (strategy.Strategy, error) {
	if err := strategy.Require(domain.EntityMilestones, "apiClient", sctx.API != nil); err != nil {
		return nil, err
	}
	if err := strategy.Require(domain.EntityMilestones, "storageService", sctx.Store != nil); err != nil {
		return nil, err
	}
	return &strategy.Pipeline[*github.Milestone, domain.Milestone]{
		Entity: domain.EntityMilestones,
		Read: func(ctx context.Context) ([]*github.Milestone, error) {
			return sctx.API.ListMilestones(ctx)
		},
		Transform: func(_ context.Context, items []*github.Milestone, _ *domain.Result) ([]domain.Milestone, error) {
			records := make([]domain.Milestone, 0, len(items))
			for _, m := range items {
				record := domain.Milestone{
					Number:      m.GetNumber(),
					Title:       m.GetTitle(),
					State:       m.GetState(),
					Description: m.GetDescription(),
					CreatedAt:   m.GetCreatedAt().Time,
				}
				if m.DueOn != nil {
					due := m.GetDueOn().Time
					record.DueOn = &due
				}
				records = append(records, record)
			}
			return records, nil
		},
		Write: func(ctx context.Context, items []domain.Milestone, result *domain.Result) error {
			if err := sctx.Store.WriteEntity(ctx, domain.EntityMilestones, items); err != nil {
				return err
			}
			result.Created = len(items)
			return nil
		},
	}, nil
}

func newMilestonesRestore(sctx *strategy.Context) (strategy.Strategy, error) {
	if err := strategy.Require(domain.EntityMilestones, "apiClient", sctx.API != nil); err != nil {
		return nil, err
	}
	if err := strategy.Require(domain.EntityMilestones, "storageService", sctx.Store != nil); err != nil {
		return nil, err
	}
	if err := strategy.Require(domain.EntityMilestones, "identifierMap", sctx.IDs != nil); err != nil {
		return nil, err
	}
	return &strategy.Pipeline[domain.Milestone, domain.Milestone]{
		Entity: domain.EntityMilestones,
		Read: func(ctx context.Context) ([]domain.Milestone, error) {
			var records []domain.Milestone
			if err := sctx.Store.ReadEntity(ctx, domain.EntityMilestones, &records); err != nil {
				return nil, err
			}
			return records, nil
		},
		Transform: func(_ context.Context, items []domain.Milestone, _ *domain.Result) ([]domain.Milestone, error) {
			return items, nil
		},
		Write: func(ctx context.Context, items []domain.Milestone, result *domain.Result) error {
			existing, err := sctx.API.ListMilestones(ctx)
			if err != nil {
				return fmt.Errorf("failed to list existing milestones: %w", err)
			}
			byTitle := make(map[string]int, len(existing))
			for _, m := range existing {
				byTitle[m.GetTitle()] = m.GetNumber()
			}
			for _, record := range items {
				// A milestone with the same title already exists; map
				// to it instead of creating a duplicate.
				if number, ok := byTitle[record.Title]; ok {
					sctx.IDs.Put(domain.EntityMilestones, record.Number, number)
					result.Skipped++
					continue
				}
				payload := &github.Milestone{
					Title:       github.Ptr(record.Title),
					Description: github.Ptr(record.Description),
				}
				if record.DueOn != nil {
					payload.DueOn = &github.Timestamp{Time: *record.DueOn}
				}
				created, err := sctx.API.CreateMilestone(ctx, payload)
				if err != nil {
					return fmt.Errorf("failed to create milestone %q: %w", record.Title, err)
				}
				sctx.IDs.Put(domain.EntityMilestones, record.Number, created.GetNumber())
				if record.State == "closed" {
					if err := sctx.API.CloseMilestone(ctx, created.GetNumber()); err != nil {
						return fmt.Errorf("failed to close milestone %q: %w", record.Title, err)
					}
				}
				result.Created++
			}
			return nil
		},
	}, nil
}
