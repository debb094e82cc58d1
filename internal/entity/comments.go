package entity

import (
	"context"
	"fmt"
	"sort"

	"github.com/compozy/repovault/internal/domain"
	"github.com/compozy/repovault/internal/strategy"
	"github.com/google/go-github/v74/github"
)

// IssueCommentsDescriptor declares the comments entity. GitHub serves
// issue and pull request comments through the same endpoint, so the
// entity depends on both parents.
func IssueCommentsDescriptor() strategy.Descriptor {
	return strategy.Descriptor{
		Name:           domain.EntityIssueComments,
		Dependencies:   []domain.EntityName{domain.EntityIssues, domain.EntityPullRequests},
		DefaultEnabled: true,
		NewSave:        newCommentsSave,
		NewRestore:     newCommentsRestore,
	}
}

func newCommentsSave(sctx *strategy.Context) (strategy.Strategy, error) {
	if err := strategy.Require(domain.EntityIssueComments, "apiClient", sctx.API != nil); err != nil {
		return nil, err
	}
	if err := strategy.Require(domain.EntityIssueComments, "storageService", sctx.Store != nil); err != nil {
		return nil, err
	}
	filter := sctx.Filter(domain.EntityIssueComments)
	return &strategy.Pipeline[*github.IssueComment, domain.Comment]{
		Entity: domain.EntityIssueComments,
		Read: func(ctx context.Context) ([]*github.IssueComment, error) {
			comments, err := sctx.API.ListIssueComments(ctx)
			if err != nil {
				return nil, err
			}
			// The selective filter targets parent issue numbers.
			selected := comments[:0]
			for _, comment := range comments {
				if filter.Includes(parentNumberFromURL(comment.GetIssueURL())) {
					selected = append(selected, comment)
				}
			}
			return selected, nil
		},
		Transform: func(_ context.Context, items []*github.IssueComment, result *domain.Result) ([]domain.Comment, error) {
			records := make([]domain.Comment, 0, len(items))
			for _, comment := range items {
				parent := parentNumberFromURL(comment.GetIssueURL())
				if parent == 0 {
					result.Warn(domain.NewDataIntegrityError(domain.EntityIssueComments,
						"comment %d has malformed issue URL %q; skipped", comment.GetID(), comment.GetIssueURL()))
					result.Skipped++
					continue
				}
				records = append(records, domain.Comment{
					ID:           comment.GetID(),
					ParentNumber: parent,
					Body:         comment.GetBody(),
					Author:       comment.GetUser().GetLogin(),
					CreatedAt:    comment.GetCreatedAt().Time,
				})
			}
			return records, nil
		},
		Write: func(ctx context.Context, items []domain.Comment, result *domain.Result) error {
			if err := sctx.Store.WriteEntity(ctx, domain.EntityIssueComments, items); err != nil {
				return err
			}
			result.Created = len(items)
			return nil
		},
	}, nil
}

// commentPayload is a comment ready to create against its remapped
// parent.
type commentPayload struct {
	parent int
	body   string
}

func newCommentsRestore(sctx *strategy.Context) (strategy.Strategy, error) {
	if err := strategy.Require(domain.EntityIssueComments, "apiClient", sctx.API != nil); err != nil {
		return nil, err
	}
	if err := strategy.Require(domain.EntityIssueComments, "storageService", sctx.Store != nil); err != nil {
		return nil, err
	}
	if err := strategy.Require(domain.EntityIssueComments, "identifierMap", sctx.IDs != nil); err != nil {
		return nil, err
	}
	filter := sctx.Filter(domain.EntityIssueComments)
	return &strategy.Pipeline[domain.Comment, commentPayload]{
		Entity: domain.EntityIssueComments,
		Read: func(ctx context.Context) ([]domain.Comment, error) {
			var records []domain.Comment
			if err := sctx.Store.ReadEntity(ctx, domain.EntityIssueComments, &records); err != nil {
				return nil, err
			}
			selected := records[:0]
			for _, record := range records {
				if filter.Includes(record.ParentNumber) {
					selected = append(selected, record)
				}
			}
			return selected, nil
		},
		Transform: func(_ context.Context, items []domain.Comment, result *domain.Result) ([]commentPayload, error) {
			// Conversation chronology is preserved by creation order,
			// so sort by original timestamp regardless of file order.
			sorted := make([]domain.Comment, len(items))
			copy(sorted, items)
			sort.SliceStable(sorted, func(i, j int) bool {
				return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
			})
			payloads := make([]commentPayload, 0, len(sorted))
			for _, record := range sorted {
				parent, ok := sctx.IDs.Resolve(domain.EntityIssues, record.ParentNumber)
				if !ok {
					parent, ok = sctx.IDs.Resolve(domain.EntityPullRequests, record.ParentNumber)
				}
				if !ok {
					result.Warn(domain.NewDataIntegrityError(domain.EntityIssueComments,
						"comment %d references unmapped parent #%d; skipped", record.ID, record.ParentNumber))
					result.Skipped++
					continue
				}
				payloads = append(payloads, commentPayload{
					parent: parent,
					body:   attribution(sctx.PreserveMetadata, record.Author, record.CreatedAt, record.Body),
				})
			}
			return payloads, nil
		},
		Write: func(ctx context.Context, items []commentPayload, result *domain.Result) error {
			for _, payload := range items {
				if err := sctx.API.CreateIssueComment(ctx, payload.parent, payload.body); err != nil {
					return fmt.Errorf("failed to create comment on #%d: %w", payload.parent, err)
				}
				result.Created++
			}
			return nil
		},
	}, nil
}
