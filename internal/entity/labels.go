package entity

import (
	"context"
	"fmt"

	"github.com/compozy/repovault/internal/conflict"
	"github.com/compozy/repovault/internal/domain"
	"github.com/compozy/repovault/internal/strategy"
	"github.com/google/go-github/v74/github"
)

// LabelsDescriptor declares the labels entity. Labels have no
// dependencies; their unique key is the label name, which makes them
// the canonical conflict-policy entity.
func LabelsDescriptor() strategy.Descriptor {
	return strategy.Descriptor{
		Name:           domain.EntityLabels,
		DefaultEnabled: true,
		NewSave:        newLabelsSave,
		NewRestore:     newLabelsRestore,
	}
}

func newLabelsSave(sctx *strategy.Context) (strategy.Strategy, error) {
	if err := strategy.Require(domain.EntityLabels, "apiClient", sctx.API != nil); err != nil {
		return nil, err
	}
	if err := strategy.Require(domain.EntityLabels, "storageService", sctx.Store != nil); err != nil {
		return nil, err
	}
	return &strategy.Pipeline[*github.Label, domain.Label]{
		Entity: domain.EntityLabels,
		Read: func(ctx context.Context) ([]*github.Label, error) {
			return sctx.API.ListLabels(ctx)
		},
		Transform: func(_ context.Context, items []*github.Label, _ *domain.Result) ([]domain.Label, error) {
			records := make([]domain.Label, 0, len(items))
			for _, l := range items {
				records = append(records, domain.Label{
					Name:        l.GetName(),
					Color:       l.GetColor(),
					Description: l.GetDescription(),
				})
			}
			return records, nil
		},
		Write: func(ctx context.Context, items []domain.Label, result *domain.Result) error {
			if err := sctx.Store.WriteEntity(ctx, domain.EntityLabels, items); err != nil {
				return err
			}
			result.Created = len(items)
			return nil
		},
	}, nil
}

// labels restore requires conflictPolicy: the target may already carry
// a default label set and the policy decides what happens to it.
func newLabelsRestore(sctx *strategy.Context) (strategy.Strategy, error) {
	if err := strategy.Require(domain.EntityLabels, "apiClient", sctx.API != nil); err != nil {
		return nil, err
	}
	if err := strategy.Require(domain.EntityLabels, "storageService", sctx.Store != nil); err != nil {
		return nil, err
	}
	if err := strategy.Require(domain.EntityLabels, "conflictPolicy", sctx.Conflicts != ""); err != nil {
		return nil, err
	}
	return &strategy.Pipeline[domain.Label, domain.Label]{
		Entity: domain.EntityLabels,
		Read: func(ctx context.Context) ([]domain.Label, error) {
			var records []domain.Label
			if err := sctx.Store.ReadEntity(ctx, domain.EntityLabels, &records); err != nil {
				return nil, err
			}
			return records, nil
		},
		Transform: func(_ context.Context, items []domain.Label, _ *domain.Result) ([]domain.Label, error) {
			return items, nil
		},
		Write: func(ctx context.Context, items []domain.Label, result *domain.Result) error {
			existing, err := sctx.API.ListLabels(ctx)
			if err != nil {
				return fmt.Errorf("failed to list existing labels: %w", err)
			}
			existingKeys := make([]string, 0, len(existing))
			for _, l := range existing {
				existingKeys = append(existingKeys, l.GetName())
			}
			incomingKeys := make([]string, 0, len(items))
			for _, l := range items {
				incomingKeys = append(incomingKeys, l.Name)
			}
			resolution, err := conflict.Resolve(sctx.Conflicts, domain.EntityLabels, existingKeys, incomingKeys)
			if err != nil {
				return err
			}
			for _, name := range resolution.DeleteFirst {
				if err := sctx.API.DeleteLabel(ctx, name); err != nil {
					return fmt.Errorf("failed to delete label %q: %w", name, err)
				}
			}
			for _, label := range items {
				payload := &github.Label{
					Name:        github.Ptr(label.Name),
					Color:       github.Ptr(label.Color),
					Description: github.Ptr(label.Description),
				}
				switch resolution.PerItem[label.Name] {
				case conflict.ActionCreate:
					if err := sctx.API.CreateLabel(ctx, payload); err != nil {
						return fmt.Errorf("failed to create label %q: %w", label.Name, err)
					}
					result.Created++
				case conflict.ActionUpdate:
					if err := sctx.API.UpdateLabel(ctx, label.Name, payload); err != nil {
						return fmt.Errorf("failed to update label %q: %w", label.Name, err)
					}
					result.Updated++
				case conflict.ActionSkip:
					result.Skipped++
				}
			}
			return nil
		},
	}, nil
}
