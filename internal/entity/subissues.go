package entity

import (
	"context"
	"fmt"

	"github.com/compozy/repovault/internal/domain"
	"github.com/compozy/repovault/internal/strategy"
)

// SubIssuesDescriptor declares the sub-issue hierarchy entity. Parent
// and child are both issues, so links restore in a second phase after
// the issues entity has populated the identifier map in full; the
// dependency edge gives exactly that ordering.
func SubIssuesDescriptor() strategy.Descriptor {
	return strategy.Descriptor{
		Name:           domain.EntitySubIssues,
		Dependencies:   []domain.EntityName{domain.EntityIssues},
		DefaultEnabled: true,
		NewSave:        newSubIssuesSave,
		NewRestore:     newSubIssuesRestore,
	}
}

func newSubIssuesSave(sctx *strategy.Context) (strategy.Strategy, error) {
	if err := strategy.Require(domain.EntitySubIssues, "apiClient", sctx.API != nil); err != nil {
		return nil, err
	}
	if err := strategy.Require(domain.EntitySubIssues, "storageService", sctx.Store != nil); err != nil {
		return nil, err
	}
	filter := sctx.Filter(domain.EntitySubIssues)
	return &strategy.Pipeline[domain.SubIssueLink, domain.SubIssueLink]{
		Entity: domain.EntitySubIssues,
		Read: func(ctx context.Context) ([]domain.SubIssueLink, error) {
			issues, err := sctx.API.ListIssues(ctx)
			if err != nil {
				return nil, err
			}
			var links []domain.SubIssueLink
			for _, issue := range issues {
				parent := issue.GetNumber()
				if !filter.Includes(parent) {
					continue
				}
				children, err := sctx.API.ListSubIssues(ctx, parent)
				if err != nil {
					return nil, fmt.Errorf("failed to list sub-issues of #%d: %w", parent, err)
				}
				for _, child := range children {
					links = append(links, domain.SubIssueLink{
						ParentNumber: parent,
						ChildNumber:  child.GetNumber(),
					})
				}
			}
			return links, nil
		},
		Transform: func(_ context.Context, items []domain.SubIssueLink, _ *domain.Result) ([]domain.SubIssueLink, error) {
			return items, nil
		},
		Write: func(ctx context.Context, items []domain.SubIssueLink, result *domain.Result) error {
			if err := sctx.Store.WriteEntity(ctx, domain.EntitySubIssues, items); err != nil {
				return err
			}
			result.Created = len(items)
			return nil
		},
	}, nil
}

func newSubIssuesRestore(sctx *strategy.Context) (strategy.Strategy, error) {
	if err := strategy.Require(domain.EntitySubIssues, "apiClient", sctx.API != nil); err != nil {
		return nil, err
	}
	if err := strategy.Require(domain.EntitySubIssues, "storageService", sctx.Store != nil); err != nil {
		return nil, err
	}
	if err := strategy.Require(domain.EntitySubIssues, "identifierMap", sctx.IDs != nil); err != nil {
		return nil, err
	}
	filter := sctx.Filter(domain.EntitySubIssues)
	return &strategy.Pipeline[domain.SubIssueLink, domain.SubIssueLink]{
		Entity: domain.EntitySubIssues,
		Read: func(ctx context.Context) ([]domain.SubIssueLink, error) {
			var links []domain.SubIssueLink
			if err := sctx.Store.ReadEntity(ctx, domain.EntitySubIssues, &links); err != nil {
				return nil, err
			}
			selected := links[:0]
			for _, link := range links {
				if filter.Includes(link.ParentNumber) {
					selected = append(selected, link)
				}
			}
			return selected, nil
		},
		Transform: func(_ context.Context, items []domain.SubIssueLink, result *domain.Result) ([]domain.SubIssueLink, error) {
			remapped := make([]domain.SubIssueLink, 0, len(items))
			for _, link := range items {
				parent, parentOK := sctx.IDs.Resolve(domain.EntityIssues, link.ParentNumber)
				child, childOK := sctx.IDs.Resolve(domain.EntityIssues, link.ChildNumber)
				if !parentOK || !childOK {
					result.Warn(domain.NewDataIntegrityError(domain.EntitySubIssues,
						"link #%d -> #%d references an unmapped issue; skipped", link.ParentNumber, link.ChildNumber))
					result.Skipped++
					continue
				}
				remapped = append(remapped, domain.SubIssueLink{ParentNumber: parent, ChildNumber: child})
			}
			return remapped, nil
		},
		Write: func(ctx context.Context, items []domain.SubIssueLink, result *domain.Result) error {
			for _, link := range items {
				// The sub-issue API takes the child's issue id, not its
				// number.
				childID, err := sctx.API.GetIssueID(ctx, link.ChildNumber)
				if err != nil {
					return fmt.Errorf("failed to resolve issue id for #%d: %w", link.ChildNumber, err)
				}
				if err := sctx.API.AddSubIssue(ctx, link.ParentNumber, childID); err != nil {
					return fmt.Errorf("failed to link #%d under #%d: %w", link.ChildNumber, link.ParentNumber, err)
				}
				result.Created++
			}
			return nil
		},
	}, nil
}
